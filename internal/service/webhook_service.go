// FILE: internal/service/webhook_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/repository/specification"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/pkg/events"
	"subscription-billing-be/pkg/pg"
)

type IWebhookService interface {
	// HandleNotification reconciles one provider webhook. Errors are for the
	// caller's log only; the HTTP layer acknowledges regardless so the
	// provider does not re-deliver forever.
	HandleNotification(ctx context.Context, req *dto.WebhookRequest) error
}

type webhookService struct {
	uowFactory unitofwork.RepositoryFactory
	pgClient   pg.Client
	publisher  EventPublisher
	log        logger.ILogger
	now        func() time.Time
}

func NewWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	pgClient pg.Client,
	publisher EventPublisher,
	log logger.ILogger,
) IWebhookService {
	return &webhookService{
		uowFactory: uowFactory,
		pgClient:   pgClient,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

func (s *webhookService) HandleNotification(ctx context.Context, req *dto.WebhookRequest) error {
	// The webhook body is untrusted. Re-fetch the payment from the provider
	// and reconcile against that record only.
	info, err := s.pgClient.GetPayment(ctx, req.ImpUid)
	if err != nil {
		s.log.Error("WebhookService", "failed to fetch authoritative payment", map[string]interface{}{
			"imp_uid": req.ImpUid,
			"error":   err.Error(),
		})
		return err
	}

	if info.MerchantUid != req.MerchantUid {
		mismatch := fmt.Errorf("%w: claimed %s, provider holds %s", apperror.ErrWebhookMismatch, req.MerchantUid, info.MerchantUid)
		s.log.Warn("WebhookService", "notification discarded", map[string]interface{}{
			"imp_uid": req.ImpUid,
			"error":   mismatch.Error(),
		})
		return nil
	}

	switch {
	case strings.HasPrefix(info.MerchantUid, billingKeyMerchantPrefix):
		return s.reconcileBillingKey(ctx, info)
	case strings.HasPrefix(info.MerchantUid, recurringMerchantPrefix):
		return s.reconcileRecurringPayment(ctx, info)
	default:
		s.log.Warn("WebhookService", "unrecognized merchant uid format, discarded", map[string]interface{}{
			"merchant_uid": info.MerchantUid,
		})
		return nil
	}
}

// reconcileBillingKey applies failure and cancellation outcomes to the
// issuance request. A paid outcome is left to the synchronous approval path,
// which is the only flow with the context to register the payment method.
func (s *webhookService) reconcileBillingKey(ctx context.Context, info *pg.PaymentInfo) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	bkr, err := uow.BillingKeyRepository().FindOne(ctx, specification.ByMerchantUid{MerchantUid: info.MerchantUid})
	if err != nil {
		return err
	}
	if bkr == nil {
		s.log.Warn("WebhookService", "billing key notification for unknown request, discarded", map[string]interface{}{
			"merchant_uid": info.MerchantUid,
		})
		return nil
	}

	var next entity.BillingKeyRequestStatus
	switch info.Status {
	case "failed":
		next = entity.BillingKeyFailed
	case "cancelled":
		next = entity.BillingKeyCancelled
	default:
		return nil
	}

	if !bkr.CanTransition(next) {
		// Already finalized; re-delivery is a no-op.
		return nil
	}

	bkr.Status = next
	if err := uow.BillingKeyRepository().Update(ctx, bkr); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("WebhookService", "billing key request reconciled", map[string]interface{}{
		"merchant_uid": bkr.MerchantUid,
		"status":       string(next),
	})
	return nil
}

func (s *webhookService) reconcileRecurringPayment(ctx context.Context, info *pg.PaymentInfo) error {
	newStatus, ok := paymentStatusFromProvider(info.Status)
	if !ok {
		s.log.Warn("WebhookService", "unknown provider payment status, discarded", map[string]interface{}{
			"merchant_uid": info.MerchantUid,
			"status":       info.Status,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	payment, err := uow.SubscriptionPaymentRepository().FindOne(ctx,
		specification.ByMerchantUid{MerchantUid: info.MerchantUid},
	)
	if err != nil {
		return err
	}
	if payment != nil && payment.IsTerminal(newStatus) {
		// Duplicate delivery of a state we already hold.
		return nil
	}

	settledNow := false
	if payment == nil {
		// The webhook outran the charge path. The order id encodes the
		// subscription, so the attempt row can be created retroactively.
		subscriptionId, ok := parseRecurringMerchantUid(info.MerchantUid)
		if !ok {
			s.log.Warn("WebhookService", "unparseable recurring order id, discarded", map[string]interface{}{
				"merchant_uid": info.MerchantUid,
			})
			return nil
		}
		owner, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
		if err != nil {
			return err
		}
		if owner == nil {
			s.log.Warn("WebhookService", "recurring notification for unknown subscription, discarded", map[string]interface{}{
				"merchant_uid": info.MerchantUid,
			})
			return nil
		}

		payment = &entity.SubscriptionPayment{
			SubscriptionId: subscriptionId,
			MerchantUid:    info.MerchantUid,
			Status:         newStatus,
			Amount:         info.Amount,
			Provider:       entity.PaymentProvider(info.PgProvider),
			RawResponse:    info.Raw,
		}
		applyProviderOutcome(payment, info, newStatus)
		if err := uow.SubscriptionPaymentRepository().Create(ctx, payment); err != nil {
			return err
		}
		settledNow = newStatus == entity.SubscriptionPaymentPaid
	} else {
		payment.Status = newStatus
		payment.RawResponse = info.Raw
		applyProviderOutcome(payment, info, newStatus)
		if err := uow.SubscriptionPaymentRepository().Update(ctx, payment); err != nil {
			return err
		}
		settledNow = newStatus == entity.SubscriptionPaymentPaid
	}

	subscription, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: payment.SubscriptionId})
	if err != nil {
		return err
	}
	if subscription == nil {
		return apperror.NotFound("subscription")
	}

	if settledNow {
		product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: subscription.ProductId})
		if err != nil {
			return err
		}
		if product != nil {
			advanceBillingDates(subscription, product.BillingPeriod)
			if err := uow.SubscriptionRepository().Update(ctx, subscription); err != nil {
				return err
			}
		}
	}

	if newStatus == entity.SubscriptionPaymentCanceled && subscription.Status == entity.SubscriptionStatusActive {
		now := s.now()
		reason := "payment cancelled by provider"
		subscription.Status = entity.SubscriptionStatusCancelled
		subscription.AutoRenew = false
		subscription.CancelledAt = &now
		subscription.CancelReason = &reason
		if err := uow.SubscriptionRepository().Update(ctx, subscription); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("WebhookService", "recurring payment reconciled", map[string]interface{}{
		"merchant_uid":    payment.MerchantUid,
		"subscription_id": payment.SubscriptionId.String(),
		"status":          string(newStatus),
	})

	if settledNow {
		s.publishEvent(ctx, events.TypeRecurringPaymentPaid, map[string]interface{}{
			"subscription_id": payment.SubscriptionId.String(),
			"merchant_uid":    payment.MerchantUid,
			"amount":          payment.Amount,
		})
	}
	if newStatus == entity.SubscriptionPaymentCanceled {
		s.publishEvent(ctx, events.TypeSubscriptionCancelled, map[string]interface{}{
			"subscription_id": payment.SubscriptionId.String(),
			"reason":          "payment cancelled by provider",
		})
	}
	return nil
}

func paymentStatusFromProvider(status string) (entity.SubscriptionPaymentStatus, bool) {
	switch status {
	case "paid":
		return entity.SubscriptionPaymentPaid, true
	case "failed":
		return entity.SubscriptionPaymentFailed, true
	case "cancelled":
		return entity.SubscriptionPaymentCanceled, true
	default:
		return "", false
	}
}

func applyProviderOutcome(payment *entity.SubscriptionPayment, info *pg.PaymentInfo, status entity.SubscriptionPaymentStatus) {
	switch status {
	case entity.SubscriptionPaymentPaid:
		paidAt := time.Unix(info.PaidAt, 0)
		payment.PaidAt = &paidAt
		payment.FailReason = nil
	case entity.SubscriptionPaymentFailed:
		if info.FailReason != "" {
			reason := info.FailReason
			payment.FailReason = &reason
		}
	}
}

func (s *webhookService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("WebhookService", "event publish failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
