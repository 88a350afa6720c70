package contract

import (
	"context"

	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/repository/specification"
)

type SubscriptionPaymentRepository interface {
	Create(ctx context.Context, payment *entity.SubscriptionPayment) error
	Update(ctx context.Context, payment *entity.SubscriptionPayment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPayment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPayment, error)
}
