// FILE: internal/service/subscription_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/repository/specification"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/pkg/billingclock"
	"subscription-billing-be/pkg/events"
)

type ISubscriptionService interface {
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	// CancelSubscription returns true when this call performed the
	// cancellation and false when the subscription was already cancelled.
	CancelSubscription(ctx context.Context, subscriptionId uuid.UUID, reason string) (bool, error)
	UpdateAutoRenew(ctx context.Context, subscriptionId uuid.UUID, autoRenew bool) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, subscriptionId uuid.UUID) (*dto.SubscriptionResponse, error)
	ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.SubscriptionResponse, error)
	ListPayments(ctx context.Context, subscriptionId uuid.UUID) ([]*dto.SubscriptionPaymentResponse, error)
	ListProducts(ctx context.Context) ([]*dto.ProductResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  EventPublisher
	log        logger.ILogger
	now        func() time.Time
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	publisher EventPublisher,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// CreateSubscription opens an ACTIVE subscription against an already
// registered payment method. The billing-key approval flow creates its
// subscription itself; this path serves users who re-subscribe later.
func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	activeCount, err := uow.SubscriptionRepository().Count(ctx,
		specification.UserOwnedBy{UserID: req.UserId},
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
	)
	if err != nil {
		return nil, err
	}
	if activeCount > 0 {
		return nil, apperror.ErrDuplicateActiveSubscription
	}

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: req.ProductId})
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, apperror.NotFound("product")
	}

	methodCount, err := uow.PaymentMethodRepository().Count(ctx, specification.UserOwnedBy{UserID: req.UserId})
	if err != nil {
		return nil, err
	}
	if methodCount == 0 {
		return nil, apperror.ErrNoPaymentMethodAvailable
	}

	now := s.now()
	nextPayment := billingclock.AddPeriod(now, product.BillingPeriod)
	subscription := &entity.Subscription{
		UserId:          req.UserId,
		ProductId:       product.Id,
		Status:          entity.SubscriptionStatusActive,
		StartDate:       now,
		EndDate:         nextPayment,
		NextPaymentDate: nextPayment,
		AutoRenew:       true,
	}
	if err := uow.SubscriptionRepository().Create(ctx, subscription); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeSubscriptionCreated, map[string]interface{}{
		"subscription_id": subscription.Id.String(),
		"user_id":         req.UserId.String(),
		"product_id":      product.Id.String(),
	})

	return toSubscriptionResponse(subscription), nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, subscriptionId uuid.UUID, reason string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	subscription, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return false, err
	}
	if subscription == nil {
		return false, apperror.NotFound("subscription")
	}
	if subscription.Status == entity.SubscriptionStatusCancelled {
		// Already terminal. CancelReason and CancelledAt keep their
		// original values.
		return false, nil
	}

	now := s.now()
	subscription.Status = entity.SubscriptionStatusCancelled
	subscription.AutoRenew = false
	subscription.CancelledAt = &now
	if reason != "" {
		subscription.CancelReason = &reason
	}
	if err := uow.SubscriptionRepository().Update(ctx, subscription); err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, err
	}

	s.publishEvent(ctx, events.TypeSubscriptionCancelled, map[string]interface{}{
		"subscription_id": subscription.Id.String(),
		"user_id":         subscription.UserId.String(),
		"reason":          reason,
	})

	s.log.Info("SubscriptionService", "subscription cancelled", map[string]interface{}{
		"subscription_id": subscription.Id.String(),
	})
	return true, nil
}

func (s *subscriptionService) UpdateAutoRenew(ctx context.Context, subscriptionId uuid.UUID, autoRenew bool) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	subscription, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, apperror.NotFound("subscription")
	}
	if subscription.Status == entity.SubscriptionStatusCancelled {
		return nil, apperror.Validation("cancelled subscriptions cannot change auto-renew")
	}

	subscription.AutoRenew = autoRenew
	if err := uow.SubscriptionRepository().Update(ctx, subscription); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return toSubscriptionResponse(subscription), nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, subscriptionId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	subscription, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, apperror.NotFound("subscription")
	}
	return toSubscriptionResponse(subscription), nil
}

func (s *subscriptionService) ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	subscriptions, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SubscriptionResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		responses = append(responses, toSubscriptionResponse(sub))
	}
	return responses, nil
}

func (s *subscriptionService) ListPayments(ctx context.Context, subscriptionId uuid.UUID) ([]*dto.SubscriptionPaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subscription, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, apperror.NotFound("subscription")
	}

	payments, err := uow.SubscriptionPaymentRepository().FindAll(ctx,
		specification.Filter("subscription_id", subscriptionId),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SubscriptionPaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, &dto.SubscriptionPaymentResponse{
			Id:          p.Id,
			MerchantUid: p.MerchantUid,
			Status:      string(p.Status),
			Amount:      p.Amount,
			PaidAt:      p.PaidAt,
			Provider:    string(p.Provider),
			FailReason:  p.FailReason,
			CreatedAt:   p.CreatedAt,
		})
	}
	return responses, nil
}

func (s *subscriptionService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx,
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "price", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, &dto.ProductResponse{
			Id:            p.Id,
			Name:          p.Name,
			Price:         p.Price,
			BillingPeriod: string(p.BillingPeriod),
		})
	}
	return responses, nil
}

func (s *subscriptionService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("SubscriptionService", "event publish failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

func toSubscriptionResponse(sub *entity.Subscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		Id:              sub.Id,
		UserId:          sub.UserId,
		ProductId:       sub.ProductId,
		Status:          string(sub.Status),
		StartDate:       sub.StartDate,
		EndDate:         sub.EndDate,
		NextPaymentDate: sub.NextPaymentDate,
		AutoRenew:       sub.AutoRenew,
		CancelReason:    sub.CancelReason,
		CancelledAt:     sub.CancelledAt,
	}
}
