package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "CARD"
	PaymentWallet   PaymentMethod = "WALLET"
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))); m {
	case PaymentCard, PaymentWallet, PaymentCash, PaymentTransfer:
		return m, nil
	}
	return "", validationf("unsupported payment method %q", raw)
}

type PaymentRequest struct {
	ReservationID uint
	ClientID      uint
	Amount        float64
	Method        PaymentMethod
}

// PaymentProcessor charges a reservation and returns the provider reference.
type PaymentProcessor interface {
	Charge(ctx context.Context, req PaymentRequest) (string, error)
}

// LocalPaymentProcessor accepts every charge and issues a reference. It is
// the default when no provider is configured.
type LocalPaymentProcessor struct {
	logger *zap.SugaredLogger
}

func NewLocalPaymentProcessor(logger *zap.SugaredLogger) *LocalPaymentProcessor {
	return &LocalPaymentProcessor{logger: logger}
}

func (p *LocalPaymentProcessor) Charge(ctx context.Context, req PaymentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Amount < 0 {
		return "", validationf("payment amount cannot be negative")
	}
	ref := "PAY-" + strings.ToUpper(uuid.NewString())
	p.logger.Infow("payment recorded",
		"reservation", req.ReservationID,
		"amount", req.Amount,
		"method", req.Method,
		"ref", ref)
	return ref, nil
}
