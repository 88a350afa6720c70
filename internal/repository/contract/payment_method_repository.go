package contract

import (
	"context"

	"github.com/google/uuid"

	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/repository/specification"
)

type PaymentMethodRepository interface {
	Create(ctx context.Context, method *entity.PaymentMethod) error
	Update(ctx context.Context, method *entity.PaymentMethod) error
	// SoftDelete marks the method deleted; financial records are never hard-deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// ClearDefaults unsets is_default on every live method of the user. Must be
	// called inside the same transaction that sets the new default.
	ClearDefaults(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
