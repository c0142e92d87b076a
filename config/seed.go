package config

import (
	"context"
	"errors"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/repositories"

	"go.uber.org/zap"
)

var seedRooms = []models.Room{
	{RoomNumber: "101", Type: "Simple", PricePerNight: 50},
	{RoomNumber: "102", Type: "Simple", PricePerNight: 50},
	{RoomNumber: "103", Type: "Doble", PricePerNight: 80},
	{RoomNumber: "104", Type: "Doble", PricePerNight: 80},
	{RoomNumber: "201", Type: "Matrimonial", PricePerNight: 120},
	{RoomNumber: "202", Type: "Matrimonial", PricePerNight: 120},
	{RoomNumber: "203", Type: "Suite Junior", PricePerNight: 150},
	{RoomNumber: "204", Type: "Suite Junior", PricePerNight: 150},
	{RoomNumber: "205", Type: "Suite Presidencial", PricePerNight: 200},
	{RoomNumber: "206", Type: "Suite Presidencial", PricePerNight: 200},
}

var seedServices = []models.ExtraService{
	{Name: "Spa", Description: "Massages and wellness treatments", Price: 120},
	{Name: "Gym 24/7", Description: "Fitness room open all day", Price: 0},
	{Name: "Infinity Pool", Description: "Pool access with towel service", Price: 0},
	{Name: "Gourmet Restaurant", Description: "Dinner at the hotel restaurant", Price: 85},
	{Name: "Premium Bar", Description: "Cocktails and wine selection", Price: 45},
	{Name: "Room Service", Description: "Dinner served in the room", Price: 65},
	{Name: "Event Hall", Description: "Hall for weddings and conferences", Price: 500},
	{Name: "Private Transfer", Description: "Airport transfer and private tours", Price: 150},
}

// SeedDatabase fills an empty store with rooms, services and the launch
// coupons. Existing rows are left alone, so it is safe on every start.
func SeedDatabase(ctx context.Context, store *repositories.Store, today time.Time, log *zap.SugaredLogger) error {
	existing, err := store.Rooms.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, r := range seedRooms {
			room := r
			room.Status = models.RoomAvailable
			if err := store.Rooms.Save(ctx, &room); err != nil {
				return err
			}
		}
		log.Infow("rooms seeded", "count", len(seedRooms))
	}

	services, err := store.Services.FindAll(ctx, false)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		for _, s := range seedServices {
			svc := s
			svc.Active = true
			if err := store.Services.Save(ctx, &svc); err != nil {
				return err
			}
		}
		log.Infow("services seeded", "count", len(seedServices))
	}

	until := today.AddDate(1, 0, 0)
	coupons := []models.Discount{
		{Code: "VERANO2025", Description: "Summer 2025", Kind: models.DiscountPercentage, Value: 20, UsesMax: 100},
		{Code: "BIENVENIDA", Description: "Welcome discount", Kind: models.DiscountFixedAmount, Value: 50, UsesMax: 50},
	}
	for _, c := range coupons {
		if _, err := store.Discounts.FindByCode(ctx, c.Code); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		d := c
		d.ValidFrom = today
		d.ValidTo = until
		d.Active = true
		if err := store.Discounts.Save(ctx, &d); err != nil {
			return err
		}
		log.Infow("discount seeded", "code", d.Code)
	}
	return nil
}
