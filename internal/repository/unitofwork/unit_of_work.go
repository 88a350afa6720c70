package unitofwork

import (
	"context"

	"subscription-billing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProductRepository() contract.ProductRepository
	BillingKeyRepository() contract.BillingKeyRepository
	PaymentMethodRepository() contract.PaymentMethodRepository
	SubscriptionRepository() contract.SubscriptionRepository
	SubscriptionPaymentRepository() contract.SubscriptionPaymentRepository
}
