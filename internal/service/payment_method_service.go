// FILE: internal/service/payment_method_service.go
package service

import (
	"context"

	"github.com/google/uuid"

	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/repository/specification"
	"subscription-billing-be/internal/repository/unitofwork"
)

type IPaymentMethodService interface {
	ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.PaymentMethodResponse, error)
	SetDefault(ctx context.Context, userId, methodId uuid.UUID) error
	Delete(ctx context.Context, userId, methodId uuid.UUID) error
}

type paymentMethodService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewPaymentMethodService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IPaymentMethodService {
	return &paymentMethodService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *paymentMethodService) ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.PaymentMethodResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	methods, err := uow.PaymentMethodRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		responses = append(responses, &dto.PaymentMethodResponse{
			Id:               m.Id,
			Type:             string(m.Type),
			Provider:         string(m.Provider),
			MaskedCardNumber: m.MaskedCardNumber,
			IsDefault:        m.IsDefault,
			CreatedAt:        m.CreatedAt,
		})
	}
	return responses, nil
}

// SetDefault moves the default flag to the given method. ClearDefaults and the
// flag set share one transaction so no reader ever observes two defaults.
func (s *paymentMethodService) SetDefault(ctx context.Context, userId, methodId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	method, err := uow.PaymentMethodRepository().FindOne(ctx,
		specification.ByID{ID: methodId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if method == nil {
		return apperror.NotFound("payment method")
	}

	if err := uow.PaymentMethodRepository().ClearDefaults(ctx, userId); err != nil {
		return err
	}
	method.IsDefault = true
	if err := uow.PaymentMethodRepository().Update(ctx, method); err != nil {
		return err
	}

	return uow.Commit()
}

// Delete soft-deletes a payment method. When the default is removed, the most
// recently added surviving method is promoted so a default always exists while
// the user has any method at all.
func (s *paymentMethodService) Delete(ctx context.Context, userId, methodId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	method, err := uow.PaymentMethodRepository().FindOne(ctx,
		specification.ByID{ID: methodId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if method == nil {
		return apperror.NotFound("payment method")
	}

	wasDefault := method.IsDefault
	if err := uow.PaymentMethodRepository().SoftDelete(ctx, method.Id); err != nil {
		return err
	}

	if wasDefault {
		successor, err := uow.PaymentMethodRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.OrderBy{Field: "created_at", Desc: true},
		)
		if err != nil {
			return err
		}
		if successor != nil {
			successor.IsDefault = true
			if err := uow.PaymentMethodRepository().Update(ctx, successor); err != nil {
				return err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("PaymentMethodService", "payment method removed", map[string]interface{}{
		"user_id":           userId.String(),
		"payment_method_id": methodId.String(),
		"was_default":       wasDefault,
	})
	return nil
}
