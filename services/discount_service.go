package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/utils"
)

type DiscountService struct {
	repo   repositories.DiscountRepository
	locker Locker
	audit  AuditSink
	wait   time.Duration
}

func NewDiscountService(repo repositories.DiscountRepository, locker Locker, audit AuditSink, lockWait time.Duration) *DiscountService {
	return &DiscountService{repo: repo, locker: locker, audit: audit, wait: lockWait}
}

type DiscountInput struct {
	Code              string              `json:"code" binding:"required"`
	Description       string              `json:"description"`
	Kind              models.DiscountKind `json:"kind" binding:"required"`
	Value             float64             `json:"value" binding:"gt=0"`
	MinAmount         *float64            `json:"minAmount"`
	MaxDiscountAmount *float64            `json:"maxDiscountAmount"`
	UsesMax           int                 `json:"usesMax" binding:"gt=0"`
	ValidFrom         string              `json:"validFrom" binding:"required,isodate"`
	ValidTo           string              `json:"validTo" binding:"required,isodate"`
}

func (in DiscountInput) toModel() (*models.Discount, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, validationf("discount code is required")
	}
	if !in.Kind.Valid() {
		return nil, validationf("unknown discount kind %q", in.Kind)
	}
	if in.Value <= 0 {
		return nil, validationf("discount value must be positive")
	}
	if in.Kind == models.DiscountPercentage && in.Value > 100 {
		return nil, validationf("percentage discount cannot exceed 100")
	}
	if in.UsesMax <= 0 {
		return nil, validationf("usesMax must be positive")
	}
	if in.MinAmount != nil && *in.MinAmount < 0 {
		return nil, validationf("minAmount cannot be negative")
	}
	if in.MaxDiscountAmount != nil && *in.MaxDiscountAmount <= 0 {
		return nil, validationf("maxDiscountAmount must be positive")
	}
	from, err := utils.ParseDate(in.ValidFrom)
	if err != nil {
		return nil, validationf("%v", err)
	}
	to, err := utils.ParseDate(in.ValidTo)
	if err != nil {
		return nil, validationf("%v", err)
	}
	if to.Before(from) {
		return nil, validationf("validTo is before validFrom")
	}
	return &models.Discount{
		Code:              code,
		Description:       in.Description,
		Kind:              in.Kind,
		Value:             in.Value,
		MinAmount:         in.MinAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		UsesMax:           in.UsesMax,
		ValidFrom:         from,
		ValidTo:           to,
		Active:            true,
	}, nil
}

func (s *DiscountService) Create(ctx context.Context, actor Actor, in DiscountInput) (*models.Discount, error) {
	d, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByCode(ctx, d.Code); err == nil {
		return nil, validationf("discount %s already exists", d.Code)
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, storeErr("discount", d.Code, err)
	}
	s.audit.Record(actor.String(), "DISCOUNT_CREATE", fmt.Sprintf("discount %s created", d.Code), "Discount", d.ID)
	return d, nil
}

func (s *DiscountService) List(ctx context.Context) ([]models.Discount, error) {
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("discounts", "all", err)
	}
	return list, nil
}

func (s *DiscountService) Get(ctx context.Context, code string) (*models.Discount, error) {
	d, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, storeErr("discount", code, err)
	}
	return d, nil
}

// Deactivate takes the discount lock so it cannot interleave with an
// application that already validated the code.
func (s *DiscountService) Deactivate(ctx context.Context, actor Actor, code string) (*models.Discount, error) {
	d, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	unlock, err := acquire(ctx, s.locker, DiscountLockKey(d.ID), s.wait)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if d, err = s.repo.FindByID(ctx, d.ID); err != nil {
		return nil, storeErr("discount", code, err)
	}
	if !d.Active {
		return d, nil
	}
	d.Active = false
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, storeErr("discount", d.Code, err)
	}
	s.audit.Record(actor.String(), "DISCOUNT_DEACTIVATE", fmt.Sprintf("discount %s deactivated", d.Code), "Discount", d.ID)
	return d, nil
}
