package contract

import (
	"context"

	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/repository/specification"
)

type BillingKeyRepository interface {
	Create(ctx context.Context, req *entity.BillingKeyRequest) error
	Update(ctx context.Context, req *entity.BillingKeyRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BillingKeyRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BillingKeyRequest, error)
}
