// FILE: internal/service/billing_key_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/repository/specification"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/pkg/billingclock"
	"subscription-billing-be/pkg/events"
	"subscription-billing-be/pkg/pg"
)

type IBillingKeyService interface {
	RequestBillingKey(ctx context.Context, req *dto.IssueBillingKeyRequest) (*dto.IssueBillingKeyResponse, error)
	ApproveBillingKey(ctx context.Context, req *dto.ApproveBillingKeyRequest) (*dto.ApproveBillingKeyResponse, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type billingKeyService struct {
	uowFactory unitofwork.RepositoryFactory
	pgClient   pg.Client
	publisher  EventPublisher
	log        logger.ILogger
	now        func() time.Time
}

func NewBillingKeyService(
	uowFactory unitofwork.RepositoryFactory,
	pgClient pg.Client,
	publisher EventPublisher,
	log logger.ILogger,
) IBillingKeyService {
	return &billingKeyService{
		uowFactory: uowFactory,
		pgClient:   pgClient,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// RequestBillingKey opens a billing-key issuance flow: it mints the merchant
// and customer uids, persists a REQUESTED row and returns the provider
// authorization payload the front end needs to launch the consent screen.
// No provider call happens here.
func (s *billingKeyService) RequestBillingKey(ctx context.Context, req *dto.IssueBillingKeyRequest) (*dto.IssueBillingKeyResponse, error) {
	provider, err := pg.ResolveProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}

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

	merchantUid := newBillingKeyMerchantUid()
	customerUid := newCustomerUid(req.UserId)

	payload, err := pg.BuildAuthPayload(provider, pg.AuthPayloadParams{
		MerchantUid: merchantUid,
		CustomerUid: customerUid,
		ProductName: product.Name,
		Amount:      product.Price,
		BuyerEmail:  req.Email,
		BuyerName:   req.Name,
	})
	if err != nil {
		return nil, err
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	productId := req.ProductId
	bkr := &entity.BillingKeyRequest{
		UserId:         req.UserId,
		MerchantUid:    merchantUid,
		CustomerUid:    customerUid,
		Status:         entity.BillingKeyRequested,
		Provider:       provider,
		RequestPayload: string(payloadJSON),
		ProductId:      &productId,
	}
	if err := uow.BillingKeyRepository().Create(ctx, bkr); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("BillingKeyService", "billing key requested", map[string]interface{}{
		"user_id":      req.UserId.String(),
		"merchant_uid": merchantUid,
		"provider":     string(provider),
	})

	return &dto.IssueBillingKeyResponse{
		MerchantUid: merchantUid,
		CustomerUid: customerUid,
		RequestData: payload,
	}, nil
}

// ApproveBillingKey finalizes issuance after the user passed the provider's
// consent screen. It confirms the billing key with the provider, then in one
// transaction registers the payment method as the user's default, marks the
// request APPROVED and opens the ACTIVE subscription.
func (s *billingKeyService) ApproveBillingKey(ctx context.Context, req *dto.ApproveBillingKeyRequest) (*dto.ApproveBillingKeyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	bkr, err := uow.BillingKeyRepository().FindOne(ctx, specification.ByMerchantUid{MerchantUid: req.MerchantUid})
	if err != nil {
		return nil, err
	}
	if bkr == nil {
		return nil, apperror.ErrBillingKeyRequestNotFound
	}
	if bkr.CustomerUid != req.CustomerUid || bkr.UserId != req.UserId {
		return nil, apperror.Validation("approval does not match the original request")
	}
	if !bkr.CanTransition(entity.BillingKeyApproved) {
		return nil, apperror.Validation("billing key request already finalized as %s", bkr.Status)
	}

	keyInfo, err := s.pgClient.GetBillingKey(ctx, bkr.CustomerUid)
	if err != nil {
		s.failRequest(ctx, bkr, err)
		return nil, fmt.Errorf("%w: %v", apperror.ErrBillingKeyApprovalFailed, err)
	}

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: req.ProductId})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NotFound("product")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The provider call ran outside the transaction. A webhook may have
	// finalized this request meanwhile, so re-read and re-check before the
	// APPROVED write.
	bkr, err = uow.BillingKeyRepository().FindOne(ctx, specification.ByMerchantUid{MerchantUid: req.MerchantUid})
	if err != nil {
		return nil, err
	}
	if bkr == nil {
		return nil, apperror.ErrBillingKeyRequestNotFound
	}
	if !bkr.CanTransition(entity.BillingKeyApproved) {
		return nil, apperror.Validation("billing key request already finalized as %s", bkr.Status)
	}

	if err := uow.PaymentMethodRepository().ClearDefaults(ctx, bkr.UserId); err != nil {
		return nil, err
	}

	method := &entity.PaymentMethod{
		UserId:           bkr.UserId,
		Type:             entity.PaymentMethodCard,
		Provider:         bkr.Provider,
		MaskedCardNumber: keyInfo.CardNumberMasked,
		CustomerUid:      bkr.CustomerUid,
		IsDefault:        true,
	}
	if err := uow.PaymentMethodRepository().Create(ctx, method); err != nil {
		return nil, err
	}

	bkr.Status = entity.BillingKeyApproved
	bkr.PgToken = req.PgToken
	bkr.PaymentMethodId = &method.Id
	if err := uow.BillingKeyRepository().Update(ctx, bkr); err != nil {
		return nil, err
	}

	now := s.now()
	nextPayment := billingclock.AddPeriod(now, product.BillingPeriod)
	subscription := &entity.Subscription{
		UserId:          bkr.UserId,
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

	s.publish(ctx, events.TypeBillingKeyApproved, map[string]interface{}{
		"user_id":           bkr.UserId.String(),
		"merchant_uid":      bkr.MerchantUid,
		"payment_method_id": method.Id.String(),
	})
	s.publish(ctx, events.TypeSubscriptionCreated, map[string]interface{}{
		"subscription_id":   subscription.Id.String(),
		"user_id":           bkr.UserId.String(),
		"product_id":        product.Id.String(),
		"next_payment_date": subscription.NextPaymentDate.Format(time.RFC3339),
	})

	s.log.Info("BillingKeyService", "billing key approved", map[string]interface{}{
		"user_id":         bkr.UserId.String(),
		"merchant_uid":    bkr.MerchantUid,
		"subscription_id": subscription.Id.String(),
	})

	return &dto.ApproveBillingKeyResponse{
		MerchantUid:     bkr.MerchantUid,
		CustomerUid:     bkr.CustomerUid,
		Status:          string(entity.BillingKeyApproved),
		PaymentMethodId: method.Id,
		UserId:          bkr.UserId,
		SubscriptionId:  subscription.Id,
	}, nil
}

// failRequest marks the issuance FAILED in its own transaction so the audit
// row survives even though the approval call errors out.
func (s *billingKeyService) failRequest(ctx context.Context, bkr *entity.BillingKeyRequest, cause error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.log.Error("BillingKeyService", "failed to open tx for FAILED transition", map[string]interface{}{"error": err.Error()})
		return
	}
	defer uow.Rollback()

	bkr.Status = entity.BillingKeyFailed
	if err := uow.BillingKeyRepository().Update(ctx, bkr); err != nil {
		s.log.Error("BillingKeyService", "failed to persist FAILED transition", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := uow.Commit(); err != nil {
		s.log.Error("BillingKeyService", "failed to commit FAILED transition", map[string]interface{}{"error": err.Error()})
		return
	}

	s.log.Warn("BillingKeyService", "billing key approval rejected by provider", map[string]interface{}{
		"merchant_uid": bkr.MerchantUid,
		"error":        cause.Error(),
	})
}

func (s *billingKeyService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("BillingKeyService", "event publish failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
