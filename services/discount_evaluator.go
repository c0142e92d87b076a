package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/utils"
)

// DiscountEvaluator validates coupons and consumes their uses.
type DiscountEvaluator struct {
	repo  repositories.DiscountRepository
	clock Clock
}

func NewDiscountEvaluator(repo repositories.DiscountRepository, clock Clock) *DiscountEvaluator {
	return &DiscountEvaluator{repo: repo, clock: clock}
}

func discountInvalid(code, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrDiscountInvalid, code, reason)
}

// ValidateAndFind returns the discount when code can be applied to baseAmount
// today. Every rejection wraps ErrDiscountInvalid; an unknown code also wraps
// ErrNotFound.
func (e *DiscountEvaluator) ValidateAndFind(ctx context.Context, code string, baseAmount float64) (*models.Discount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, discountInvalid(code, "is empty")
	}
	d, err := e.repo.FindByCode(ctx, code)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w: code %s", ErrDiscountInvalid, ErrNotFound, code)
	}
	if err != nil {
		return nil, storeErr("discount", code, err)
	}
	if reason := e.rejection(d, baseAmount); reason != "" {
		return nil, discountInvalid(code, reason)
	}
	return d, nil
}

func (e *DiscountEvaluator) rejection(d *models.Discount, baseAmount float64) string {
	today := e.clock.Today()
	switch {
	case !d.Active:
		return "is inactive"
	case today.Before(utils.DateOf(d.ValidFrom, nil)):
		return "is not valid yet"
	case today.After(utils.DateOf(d.ValidTo, nil)):
		return "has expired"
	case d.MinAmount != nil && baseAmount < *d.MinAmount:
		return fmt.Sprintf("requires a minimum of %.2f", *d.MinAmount)
	case d.Exhausted():
		return "has no uses left"
	}
	return ""
}

// ComputeAmount never returns a negative amount nor one above baseAmount.
func (e *DiscountEvaluator) ComputeAmount(d *models.Discount, baseAmount float64) float64 {
	return ComputeDiscountAmount(d, baseAmount)
}

func ComputeDiscountAmount(d *models.Discount, baseAmount float64) float64 {
	if baseAmount <= 0 || d.Value <= 0 {
		return 0
	}
	var amount float64
	switch d.Kind {
	case models.DiscountPercentage:
		amount = baseAmount * d.Value / 100
		if d.MaxDiscountAmount != nil && amount > *d.MaxDiscountAmount {
			amount = *d.MaxDiscountAmount
		}
	case models.DiscountFixedAmount:
		amount = math.Min(d.Value, baseAmount)
	}
	return utils.Round2(math.Max(0, amount))
}

// IncrementUsage consumes one use. The store enforces usesCurrent < usesMax
// atomically, so losing a race reports ErrDiscountInvalid instead of overshooting.
func (e *DiscountEvaluator) IncrementUsage(ctx context.Context, d *models.Discount) error {
	err := e.repo.IncrementUsage(ctx, d.ID)
	if errors.Is(err, repositories.ErrUsageExhausted) {
		return discountInvalid(d.Code, "has no uses left")
	}
	if err != nil {
		return storeErr("discount", d.Code, err)
	}
	d.UsesCurrent++
	return nil
}

func (e *DiscountEvaluator) releaseUsage(ctx context.Context, id uint) error {
	return e.repo.ReleaseUsage(ctx, id)
}
