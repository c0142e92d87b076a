package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-reservation/metrics"
	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// saveAttempts bounds the reload-and-retry loop on version conflicts.
const saveAttempts = 3

type ReservationDeps struct {
	Rooms        repositories.RoomRepository
	Reservations repositories.ReservationRepository
	Oracle       *AvailabilityOracle
	Discounts    *DiscountEvaluator
	Catalog      *CatalogService
	RoomService  *RoomService
	Locker       Locker
	Payments     PaymentProcessor
	Audit        AuditSink
	Notify       NotificationSink
	Clock        Clock
	LockWait     time.Duration
	Logger       *zap.SugaredLogger
}

// ReservationService drives a reservation through its lifecycle. Every
// mutation runs under the lock of the reservation's room.
type ReservationService struct {
	rooms        repositories.RoomRepository
	reservations repositories.ReservationRepository
	oracle       *AvailabilityOracle
	discounts    *DiscountEvaluator
	catalog      *CatalogService
	roomSvc      *RoomService
	locker       Locker
	payments     PaymentProcessor
	audit        AuditSink
	notify       NotificationSink
	clock        Clock
	lockWait     time.Duration
	logger       *zap.SugaredLogger
}

func NewReservationService(d ReservationDeps) *ReservationService {
	return &ReservationService{
		rooms:        d.Rooms,
		reservations: d.Reservations,
		oracle:       d.Oracle,
		discounts:    d.Discounts,
		catalog:      d.Catalog,
		roomSvc:      d.RoomService,
		locker:       d.Locker,
		payments:     d.Payments,
		audit:        d.Audit,
		notify:       d.Notify,
		clock:        d.Clock,
		lockWait:     d.LockWait,
		logger:       d.Logger,
	}
}

type CreateReservationInput struct {
	ClientID  uint
	RoomID    uint
	StartDate time.Time
	EndDate   time.Time
}

func (s *ReservationService) Create(ctx context.Context, actor Actor, in CreateReservationInput) (*models.Reservation, error) {
	if in.ClientID == 0 {
		return nil, validationf("client is required")
	}
	if in.RoomID == 0 {
		return nil, validationf("room is required")
	}
	start := utils.DateOf(in.StartDate, time.UTC)
	end := utils.DateOf(in.EndDate, time.UTC)
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	if start.Before(s.clock.Today()) {
		return nil, validationf("start date %s is in the past", utils.FormatDate(start))
	}

	unlock, err := acquire(ctx, s.locker, RoomLockKey(in.RoomID), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer unlock()

	room, err := s.rooms.FindByID(ctx, in.RoomID)
	if err != nil {
		return nil, storeErr("room", in.RoomID, err)
	}
	ok, err := s.oracle.IsAvailable(ctx, room.ID, start, end)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.RoomUnavailableRejections.Inc()
		return nil, fmt.Errorf("%w: room %s for %s..%s", ErrRoomUnavailable,
			room.RoomNumber, utils.FormatDate(start), utils.FormatDate(end))
	}

	nights := utils.DaysBetween(start, end)
	if nights < 1 {
		nights = 1
	}
	res := &models.Reservation{
		RoomID:     room.ID,
		ClientID:   in.ClientID,
		StartDate:  start,
		EndDate:    end,
		Nights:     nights,
		BasePrice:  utils.Round2(room.PricePerNight * float64(nights)),
		ServiceIDs: datatypes.JSONSlice[uint]{},
		Status:     models.StatusProcessing,
	}
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, storeErr("reservation", "new", err)
	}

	metrics.ReservationsCreated.Inc()
	s.audit.Record(actor.String(), "RESERVATION_CREATE",
		fmt.Sprintf("room %s from %s to %s", room.RoomNumber, utils.FormatDate(start), utils.FormatDate(end)),
		"Reservation", res.ID)
	s.notify.Notify("New reservation",
		fmt.Sprintf("Reservation %d for room %s (%s to %s)", res.ID, room.RoomNumber, utils.FormatDate(start), utils.FormatDate(end)),
		"RESERVATION", AudienceStaff)
	return res, nil
}

// mutate loads the reservation, locks its room, reloads and applies fn, then
// saves. A version conflict reloads and reapplies fn; fn must be free of side
// effects that cannot be repeated. With recompute set, the room status is
// re-derived before the lock is released.
func (s *ReservationService) mutate(
	ctx context.Context,
	id uint,
	recompute bool,
	fn func(r *models.Reservation) error,
) (*models.Reservation, models.ReservationStatus, error) {
	current, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, "", storeErr("reservation", id, err)
	}

	unlock, err := acquire(ctx, s.locker, RoomLockKey(current.RoomID), s.lockWait)
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		r, err := s.reservations.FindByID(ctx, id)
		if err != nil {
			return nil, "", storeErr("reservation", id, err)
		}
		from := r.Status
		if err := fn(r); err != nil {
			return nil, from, err
		}
		err = s.reservations.Save(ctx, r)
		if errors.Is(err, repositories.ErrVersionConflict) && attempt < saveAttempts {
			s.logger.Debugw("reservation version conflict, retrying", "reservation", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, from, storeErr("reservation", id, err)
		}

		if from != r.Status {
			metrics.ReservationTransitions.WithLabelValues(string(from), string(r.Status)).Inc()
		}
		if recompute {
			if _, err := s.roomSvc.recompute(ctx, r.RoomID); err != nil {
				s.logger.Warnw("room recompute failed, next sync pass will fix it",
					"room", r.RoomID, "reservation", id, "error", err)
			}
		}
		return r, from, nil
	}
}

func requireStatus(r *models.Reservation, op string, allowed ...models.ReservationStatus) error {
	if r.Status.In(allowed...) {
		return nil
	}
	return transitionf("cannot %s reservation %d in status %s", op, r.ID, r.Status)
}

func requireUnpaid(r *models.Reservation, op string) error {
	if r.Paid() {
		return transitionf("cannot %s reservation %d: already paid", op, r.ID)
	}
	return nil
}

// AttachServices replaces the service list. Each listed id is billed once per
// occurrence. The first call moves a Processing reservation to Pending, which
// may occupy the room if the stay covers today.
func (s *ReservationService) AttachServices(ctx context.Context, actor Actor, id uint, serviceIDs []uint) (*models.Reservation, error) {
	subtotal, err := s.catalog.priceServices(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	ids := make(datatypes.JSONSlice[uint], len(serviceIDs))
	copy(ids, serviceIDs)

	r, _, err := s.mutate(ctx, id, true, func(r *models.Reservation) error {
		if err := requireStatus(r, "attach services to", models.LiveStatuses...); err != nil {
			return err
		}
		if err := requireUnpaid(r, "attach services to"); err != nil {
			return err
		}
		r.ServiceIDs = ids
		r.ServicesSubtotal = subtotal
		if r.DiscountAmount > r.Subtotal() {
			r.DiscountAmount = r.Subtotal()
		}
		if r.Status == models.StatusProcessing {
			r.Status = models.StatusPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_SERVICES",
		fmt.Sprintf("%d services attached, subtotal %.2f", len(ids), subtotal), "Reservation", id)
	return r, nil
}

// ApplyDiscount consumes one use of the coupon immediately. Replacing or
// removing the discount later does not give the use back.
func (s *ReservationService) ApplyDiscount(ctx context.Context, actor Actor, id uint, code string) (*models.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("reservation", id, err)
	}
	unlockRoom, err := acquire(ctx, s.locker, RoomLockKey(r.RoomID), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer unlockRoom()

	if r, err = s.reservations.FindByID(ctx, id); err != nil {
		return nil, storeErr("reservation", id, err)
	}
	if err := requireStatus(r, "discount", models.LiveStatuses...); err != nil {
		return nil, err
	}
	if err := requireUnpaid(r, "discount"); err != nil {
		return nil, err
	}

	base := r.Subtotal()
	d, err := s.discounts.ValidateAndFind(ctx, code, base)
	if err != nil {
		metrics.DiscountApplications.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if r.DiscountID != nil && *r.DiscountID == d.ID {
		return r, nil
	}

	// Room lock first, discount lock second, everywhere.
	unlockDiscount, err := acquire(ctx, s.locker, DiscountLockKey(d.ID), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer unlockDiscount()

	// Revalidate under the lock: it may have been deactivated or used up meanwhile.
	if d, err = s.discounts.ValidateAndFind(ctx, code, base); err != nil {
		metrics.DiscountApplications.WithLabelValues("rejected").Inc()
		return nil, err
	}
	amount := s.discounts.ComputeAmount(d, base)
	if err := s.discounts.IncrementUsage(ctx, d); err != nil {
		metrics.DiscountApplications.WithLabelValues("exhausted").Inc()
		return nil, err
	}

	discountID := d.ID
	r.DiscountID = &discountID
	r.DiscountCode = d.Code
	r.DiscountAmount = amount
	if err := s.reservations.Save(ctx, r); err != nil {
		if relErr := s.discounts.releaseUsage(ctx, d.ID); relErr != nil {
			s.logger.Errorw("failed to release discount use after write failure",
				"discount", d.Code, "reservation", id, "error", relErr)
		}
		return nil, storeErr("reservation", id, err)
	}

	metrics.DiscountApplications.WithLabelValues("applied").Inc()
	s.audit.Record(actor.String(), "RESERVATION_DISCOUNT",
		fmt.Sprintf("discount %s applied, amount %.2f", d.Code, amount), "Reservation", id)
	return r, nil
}

func (s *ReservationService) RemoveDiscount(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	var removed string
	r, _, err := s.mutate(ctx, id, false, func(r *models.Reservation) error {
		if err := requireStatus(r, "remove discount from", models.LiveStatuses...); err != nil {
			return err
		}
		if err := requireUnpaid(r, "remove discount from"); err != nil {
			return err
		}
		removed = r.DiscountCode
		r.DiscountID = nil
		r.DiscountCode = ""
		r.DiscountAmount = 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	if removed != "" {
		s.audit.Record(actor.String(), "RESERVATION_DISCOUNT_REMOVE",
			fmt.Sprintf("discount %s removed", removed), "Reservation", id)
	}
	return r, nil
}

// Pay charges TotalWithDiscount once. The charge is not repeated when the
// save has to be retried.
func (s *ReservationService) Pay(ctx context.Context, actor Actor, id uint, method PaymentMethod) (*models.Reservation, error) {
	var ref string
	r, _, err := s.mutate(ctx, id, false, func(r *models.Reservation) error {
		if err := requireStatus(r, "pay", models.StatusPending, models.StatusActive); err != nil {
			return err
		}
		if err := requireUnpaid(r, "pay"); err != nil {
			return err
		}
		if ref == "" {
			charged, err := s.payments.Charge(ctx, PaymentRequest{
				ReservationID: r.ID,
				ClientID:      r.ClientID,
				Amount:        r.TotalWithDiscount(),
				Method:        method,
			})
			if err != nil {
				return fmt.Errorf("charge reservation %d: %w", r.ID, err)
			}
			ref = charged
		}
		r.PaymentRef = &ref
		r.PaymentMethod = string(method)
		return nil
	})
	if err != nil {
		if ref != "" {
			s.logger.Errorw("payment charged but not recorded", "reservation", id, "ref", ref, "error", err)
		}
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_PAY",
		fmt.Sprintf("paid %.2f by %s, ref %s", r.TotalWithDiscount(), method, ref), "Reservation", id)
	return r, nil
}

func (s *ReservationService) CheckIn(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	r, _, err := s.mutate(ctx, id, true, func(r *models.Reservation) error {
		if err := requireStatus(r, "check in", models.StatusPending); err != nil {
			return err
		}
		r.Status = models.StatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_CHECKIN", "guest checked in", "Reservation", id)
	s.notify.Notify("Check-in", fmt.Sprintf("Reservation %d checked in", id), "CHECKIN", AudienceStaff)
	return r, nil
}

func (s *ReservationService) CheckOut(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	now := s.clock.Now()
	r, _, err := s.mutate(ctx, id, true, func(r *models.Reservation) error {
		if err := requireStatus(r, "check out", models.StatusActive); err != nil {
			return err
		}
		r.Status = models.StatusFinalized
		r.ActualCheckout = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_CHECKOUT", "guest checked out", "Reservation", id)
	s.notify.Notify("Check-out", fmt.Sprintf("Reservation %d checked out", id), "CHECKOUT", AudienceStaff)
	return r, nil
}

// Cancel does not check who may cancel; callers gate that by role and ownership.
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	r, from, err := s.mutate(ctx, id, true, func(r *models.Reservation) error {
		if err := requireStatus(r, "cancel", models.LiveStatuses...); err != nil {
			return err
		}
		r.Status = models.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_CANCEL", fmt.Sprintf("cancelled from %s", from), "Reservation", id)
	s.notify.Notify("Reservation cancelled", fmt.Sprintf("Reservation %d was cancelled by %s", id, actor), "CANCELLATION", AudienceStaff)
	return r, nil
}

// Finalize closes a live reservation regardless of its dates.
func (s *ReservationService) Finalize(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	r, from, err := s.mutate(ctx, id, true, func(r *models.Reservation) error {
		if err := requireStatus(r, "finalize", models.LiveStatuses...); err != nil {
			return err
		}
		r.Status = models.StatusFinalized
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_FINALIZE", fmt.Sprintf("forced from %s", from), "Reservation", id)
	return r, nil
}

func (s *ReservationService) Archive(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	r, _, err := s.mutate(ctx, id, false, func(r *models.Reservation) error {
		if err := requireStatus(r, "archive", models.StatusFinalized, models.StatusCancelled); err != nil {
			return err
		}
		r.Status = models.StatusArchived
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor.String(), "RESERVATION_ARCHIVE", "archived", "Reservation", id)
	return r, nil
}

// HardDelete removes a Finalized or Cancelled reservation for good.
func (s *ReservationService) HardDelete(ctx context.Context, actor Actor, id uint) error {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return storeErr("reservation", id, err)
	}
	unlock, err := acquire(ctx, s.locker, RoomLockKey(r.RoomID), s.lockWait)
	if err != nil {
		return err
	}
	defer unlock()

	if r, err = s.reservations.FindByID(ctx, id); err != nil {
		return storeErr("reservation", id, err)
	}
	if !r.Status.IsClosed() {
		return transitionf("reservation %d has active state %s", id, r.Status)
	}
	if err := s.reservations.DeleteByID(ctx, id); err != nil {
		return storeErr("reservation", id, err)
	}
	s.audit.Record(actor.String(), "RESERVATION_DELETE", fmt.Sprintf("deleted in status %s", r.Status), "Reservation", id)
	return nil
}

// ---------------------------
// Queries
// ---------------------------

func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("reservation", id, err)
	}
	return r, nil
}

// List returns every reservation, or only those in the given statuses.
func (s *ReservationService) List(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	var (
		list []models.Reservation
		err  error
	)
	if len(statuses) == 0 {
		list, err = s.reservations.FindAll(ctx)
	} else {
		list, err = s.reservations.FindByStatus(ctx, statuses...)
	}
	if err != nil {
		return nil, storeErr("reservations", "list", err)
	}
	return list, nil
}

func (s *ReservationService) ListByClient(ctx context.Context, clientID uint) ([]models.Reservation, error) {
	list, err := s.reservations.FindByClient(ctx, clientID)
	return list, storeErr("client reservations", clientID, err)
}

func (s *ReservationService) ListByRoom(ctx context.Context, roomID uint) ([]models.Reservation, error) {
	list, err := s.reservations.FindByRoom(ctx, roomID)
	return list, storeErr("room reservations", roomID, err)
}

func (s *ReservationService) ListByPeriod(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	from, to = utils.DateOf(from, time.UTC), utils.DateOf(to, time.UTC)
	if to.Before(from) {
		return nil, validationf("period end is before its start")
	}
	list, err := s.reservations.FindByPeriod(ctx, from, to)
	return list, storeErr("reservations", "period", err)
}

type Quote struct {
	RoomID        uint    `json:"roomId"`
	RoomNumber    string  `json:"roomNumber"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"pricePerNight"`
	BasePrice     float64 `json:"basePrice"`
	Available     bool    `json:"available"`
}

// Quote prices a stay without reserving anything.
func (s *ReservationService) Quote(ctx context.Context, roomID uint, start, end time.Time) (*Quote, error) {
	start, end = utils.DateOf(start, time.UTC), utils.DateOf(end, time.UTC)
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, storeErr("room", roomID, err)
	}
	ok, err := s.oracle.IsAvailable(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	nights := utils.DaysBetween(start, end)
	return &Quote{
		RoomID:        room.ID,
		RoomNumber:    room.RoomNumber,
		StartDate:     utils.FormatDate(start),
		EndDate:       utils.FormatDate(end),
		Nights:        nights,
		PricePerNight: room.PricePerNight,
		BasePrice:     utils.Round2(room.PricePerNight * float64(nights)),
		Available:     ok,
	}, nil
}

// IsOwner reports whether actor is the client holding the reservation.
func IsOwner(actor Actor, r *models.Reservation) bool {
	return actor.Role == RoleClient && actor.ClientID != 0 && actor.ClientID == r.ClientID
}

// CheckAccess lets holders of staffCap act on any reservation. Anyone else
// must own r and, when ownCap is set, also hold ownCap.
func CheckAccess(actor Actor, r *models.Reservation, staffCap, ownCap Capability) error {
	if Can(actor.Role, staffCap) {
		return nil
	}
	if IsOwner(actor, r) && (ownCap == "" || Can(actor.Role, ownCap)) {
		return nil
	}
	return fmt.Errorf("%w: reservation %d is not accessible to %s", ErrForbidden, r.ID, actor)
}
