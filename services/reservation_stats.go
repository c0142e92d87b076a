package services

import (
	"context"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/utils"
)

// ReservationStats is the reservation side of the front-desk dashboard.
type ReservationStats struct {
	Total           int64                              `json:"total"`
	ByStatus        map[models.ReservationStatus]int64 `json:"byStatus"`
	Revenue         float64                            `json:"revenue"`
	ArrivalsToday   int64                              `json:"arrivalsToday"`
	DeparturesToday int64                              `json:"departuresToday"`
}

// countReservations returns a count for every status, zero included.
func countReservations(ctx context.Context, repo repositories.ReservationRepository) (map[models.ReservationStatus]int64, error) {
	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		return nil, storeErr("reservations", "count", err)
	}
	if counts == nil {
		counts = make(map[models.ReservationStatus]int64, len(models.AllReservationStatuses))
	}
	for _, st := range models.AllReservationStatuses {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

// collectReservationStats sums finalized totals and counts today's arrivals
// and departures. Cancelled and archived stays are not expected at the desk.
func collectReservationStats(ctx context.Context, repo repositories.ReservationRepository, today time.Time) (ReservationStats, error) {
	counts, err := countReservations(ctx, repo)
	if err != nil {
		return ReservationStats{}, err
	}
	stats := ReservationStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}

	finalized, err := repo.FindByStatus(ctx, models.StatusFinalized)
	if err != nil {
		return ReservationStats{}, storeErr("reservations", models.StatusFinalized, err)
	}
	var revenue float64
	for i := range finalized {
		revenue += finalized[i].TotalWithDiscount()
	}
	stats.Revenue = utils.Round2(revenue)

	touching, err := repo.FindByPeriod(ctx, today, today)
	if err != nil {
		return ReservationStats{}, storeErr("reservations", utils.FormatDate(today), err)
	}
	for _, r := range touching {
		if r.Status == models.StatusCancelled || r.Status == models.StatusArchived {
			continue
		}
		if r.StartDate.Equal(today) {
			stats.ArrivalsToday++
		}
		if r.EndDate.Equal(today) {
			stats.DeparturesToday++
		}
	}
	return stats, nil
}

// Stats reports reservation counts, revenue and today's movements.
func (s *ReservationService) Stats(ctx context.Context) (ReservationStats, error) {
	return collectReservationStats(ctx, s.reservations, s.clock.Today())
}
