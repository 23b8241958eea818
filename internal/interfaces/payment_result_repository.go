package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

// PaymentResultRepository defines the contract for resolved result storage
type PaymentResultRepository interface {
	Record(ctx context.Context, result models.PaymentResult) error
	GetByOrderCode(ctx context.Context, orderCode string) (*models.PaymentResult, error)
}
