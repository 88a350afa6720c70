// FILE: internal/service/scheduler_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/pkg/mailer"
	"subscription-billing-be/internal/repository/specification"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/pkg/billingclock"
	"subscription-billing-be/pkg/events"
	"subscription-billing-be/pkg/pg"
)

const (
	chargeDueTopic    = "recurring_charge_due"
	schedulerLockKey  = "billing:scheduler:daily_lock"
	schedulerLockTTL  = 23 * time.Hour
	defaultMaxRetries = 10
)

type ISchedulerService interface {
	// RunDaily selects every subscription due today and enqueues one charge
	// job per subscription. Returns the number of jobs enqueued.
	RunDaily(ctx context.Context) (int, error)

	// StartWorker consumes charge jobs until ctx is done. Each job runs in
	// its own goroutine so one subscription's retry backoff never delays
	// another's charge.
	StartWorker(ctx context.Context) error

	// ProcessSubscription runs the full charge-with-retry cycle for one
	// subscription.
	ProcessSubscription(ctx context.Context, subscriptionId uuid.UUID) error

	// Wait blocks until all in-flight charge cycles have finished.
	Wait()
}

type chargeJob struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
}

type SchedulerOptions struct {
	MaxRetries  int
	BackoffBase time.Duration // attempt n sleeps BackoffBase << n
	Now         func() time.Time
}

type schedulerService struct {
	uowFactory unitofwork.RepositoryFactory
	pgClient   pg.Client
	pubSub     *PubSub
	redis      *redis.Client
	publisher  EventPublisher
	mail       mailer.IEmailService
	log        logger.ILogger

	maxRetries  int
	backoffBase time.Duration
	now         func() time.Time

	workerWg sync.WaitGroup
}

// PubSub is the minimal watermill surface the scheduler needs, satisfied by
// *gochannel.GoChannel on both sides.
type PubSub struct {
	message.Publisher
	message.Subscriber
}

func NewPubSub(pub message.Publisher, sub message.Subscriber) *PubSub {
	return &PubSub{Publisher: pub, Subscriber: sub}
}

func NewSchedulerService(
	uowFactory unitofwork.RepositoryFactory,
	pgClient pg.Client,
	pubSub *PubSub,
	redisClient *redis.Client,
	publisher EventPublisher,
	mail mailer.IEmailService,
	log logger.ILogger,
	opts SchedulerOptions,
) ISchedulerService {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &schedulerService{
		uowFactory:  uowFactory,
		pgClient:    pgClient,
		pubSub:      pubSub,
		redis:       redisClient,
		publisher:   publisher,
		mail:        mail,
		log:         log,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		now:         opts.Now,
	}
}

func (s *schedulerService) RunDaily(ctx context.Context) (int, error) {
	if !s.acquireDailyLock(ctx) {
		s.log.Info("SchedulerService", "daily run skipped, lock held by another instance", nil)
		return 0, nil
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	due, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
		specification.AutoRenewing{},
		specification.DueWithin{From: dayStart, To: dayEnd},
	)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, sub := range due {
		payload, err := json.Marshal(chargeJob{SubscriptionId: sub.Id})
		if err != nil {
			return enqueued, err
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := s.pubSub.Publish(chargeDueTopic, msg); err != nil {
			s.log.Error("SchedulerService", "failed to enqueue charge job", map[string]interface{}{
				"subscription_id": sub.Id.String(),
				"error":           err.Error(),
			})
			continue
		}
		enqueued++
	}

	s.log.Info("SchedulerService", "daily run enqueued charge jobs", map[string]interface{}{
		"due":      len(due),
		"enqueued": enqueued,
		"window":   dayStart.Format("2006-01-02"),
	})
	return enqueued, nil
}

// acquireDailyLock uses a redis SET NX with a sub-day TTL so exactly one
// instance runs the batch. Without redis configured the lock degrades to
// always-acquired, which is fine for a single-instance deployment.
func (s *schedulerService) acquireDailyLock(ctx context.Context) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, schedulerLockKey, s.now().Format(time.RFC3339), schedulerLockTTL).Result()
	if err != nil {
		s.log.Warn("SchedulerService", "redis lock unavailable, proceeding without it", map[string]interface{}{
			"error": err.Error(),
		})
		return true
	}
	return ok
}

func (s *schedulerService) StartWorker(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, chargeDueTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var job chargeJob
			if err := json.Unmarshal(msg.Payload, &job); err != nil {
				s.log.Error("SchedulerService", "malformed charge job", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			msg.Ack()

			s.workerWg.Add(1)
			go func(id uuid.UUID) {
				defer s.workerWg.Done()
				if err := s.ProcessSubscription(ctx, id); err != nil {
					s.log.Error("SchedulerService", "charge cycle failed", map[string]interface{}{
						"subscription_id": id.String(),
						"error":           err.Error(),
					})
				}
			}(job.SubscriptionId)
		}
	}()
	return nil
}

// Wait blocks until all in-flight charge cycles have finished.
func (s *schedulerService) Wait() {
	s.workerWg.Wait()
}

func (s *schedulerService) ProcessSubscription(ctx context.Context, subscriptionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subscription, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return err
	}
	if subscription == nil {
		return apperror.NotFound("subscription")
	}
	if !subscription.IsActive() || !subscription.AutoRenew {
		s.log.Info("SchedulerService", "subscription no longer chargeable, skipping", map[string]interface{}{
			"subscription_id": subscriptionId.String(),
			"status":          string(subscription.Status),
			"auto_renew":      subscription.AutoRenew,
		})
		return nil
	}

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: subscription.ProductId})
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NotFound("product")
	}
	if product.Price == 0 {
		s.log.Info("SchedulerService", "zero-price product, nothing to charge", map[string]interface{}{
			"subscription_id": subscriptionId.String(),
			"product_id":      product.Id.String(),
		})
		return nil
	}

	method, err := s.resolvePaymentMethod(ctx, uow, subscription)
	if err != nil {
		return err
	}
	if method == nil {
		s.recordNoMethodFailure(ctx, subscription, product)
		return nil
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		info, chargeErr := s.chargeOnce(ctx, subscription, product, method, attempt)
		if chargeErr == nil {
			s.publishEvent(ctx, events.TypeRecurringPaymentPaid, map[string]interface{}{
				"subscription_id": subscription.Id.String(),
				"merchant_uid":    info.MerchantUid,
				"amount":          info.Amount,
			})
			return nil
		}

		s.log.Warn("SchedulerService", "charge attempt failed", map[string]interface{}{
			"subscription_id": subscription.Id.String(),
			"attempt":         attempt,
			"error":           chargeErr.Error(),
		})
		s.publishEvent(ctx, events.TypeRecurringPaymentFailed, map[string]interface{}{
			"subscription_id": subscription.Id.String(),
			"attempt":         attempt,
		})

		if attempt == s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoffBase << attempt):
		}
	}

	// Retry budget spent. The subscription stays ACTIVE; closing it is an
	// operator decision, not the scheduler's.
	s.alertExhausted(ctx, subscription, product)
	return nil
}

// resolvePaymentMethod prefers the method behind the last successful payment,
// falling back to the user's default.
func (s *schedulerService) resolvePaymentMethod(ctx context.Context, uow unitofwork.UnitOfWork, subscription *entity.Subscription) (*entity.PaymentMethod, error) {
	lastPaid, err := uow.SubscriptionPaymentRepository().FindOne(ctx,
		specification.Filter("subscription_id", subscription.Id),
		specification.ByStatus{Status: string(entity.SubscriptionPaymentPaid)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if lastPaid != nil && lastPaid.PaymentMethodId != nil {
		method, err := uow.PaymentMethodRepository().FindOne(ctx, specification.ByID{ID: *lastPaid.PaymentMethodId})
		if err != nil {
			return nil, err
		}
		if method != nil {
			return method, nil
		}
	}

	return uow.PaymentMethodRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: subscription.UserId},
		specification.DefaultOnly{},
	)
}

// chargeOnce performs one provider charge and persists the attempt. A nil
// error means the provider settled the payment and the subscription's dates
// were advanced.
func (s *schedulerService) chargeOnce(ctx context.Context, subscription *entity.Subscription, product *entity.Product, method *entity.PaymentMethod, attempt int) (*pg.PaymentInfo, error) {
	merchantUid := newRecurringMerchantUid(subscription.Id)

	info, err := s.pgClient.RequestCharge(ctx, pg.ChargeRequest{
		CustomerUid: method.CustomerUid,
		MerchantUid: merchantUid,
		Name:        product.Name,
		Amount:      product.Price,
	})
	if err != nil {
		reason := err.Error()
		s.recordAttempt(ctx, subscription, &entity.SubscriptionPayment{
			SubscriptionId:  subscription.Id,
			PaymentMethodId: &method.Id,
			MerchantUid:     merchantUid,
			Status:          entity.SubscriptionPaymentFailed,
			Amount:          product.Price,
			Provider:        method.Provider,
			FailReason:      &reason,
		}, nil)
		return nil, err
	}

	if info.Status != "paid" {
		reason := info.FailReason
		if reason == "" {
			reason = fmt.Sprintf("provider returned status %q", info.Status)
		}
		s.recordAttempt(ctx, subscription, &entity.SubscriptionPayment{
			SubscriptionId:  subscription.Id,
			PaymentMethodId: &method.Id,
			MerchantUid:     merchantUid,
			Status:          entity.SubscriptionPaymentFailed,
			Amount:          info.Amount,
			Provider:        method.Provider,
			RawResponse:     info.Raw,
			FailReason:      &reason,
		}, nil)
		return nil, fmt.Errorf("charge not settled: %s", reason)
	}

	paidAt := time.Unix(info.PaidAt, 0)
	if info.PaidAt == 0 {
		paidAt = s.now()
	}
	if err := s.recordAttempt(ctx, subscription, &entity.SubscriptionPayment{
		SubscriptionId:  subscription.Id,
		PaymentMethodId: &method.Id,
		MerchantUid:     merchantUid,
		Status:          entity.SubscriptionPaymentPaid,
		Amount:          info.Amount,
		PaidAt:          &paidAt,
		Provider:        method.Provider,
		RawResponse:     info.Raw,
	}, product); err != nil {
		return nil, err
	}
	return info, nil
}

// recordAttempt persists one charge attempt and, when the attempt settled,
// advances the subscription's billing dates. The row is looked up by merchant
// uid first because the provider webhook may have reconciled this very charge
// before we got here; in that case the existing row wins and nothing is
// advanced twice.
func (s *schedulerService) recordAttempt(ctx context.Context, subscription *entity.Subscription, attempt *entity.SubscriptionPayment, product *entity.Product) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	existing, err := uow.SubscriptionPaymentRepository().FindOne(ctx,
		specification.ByMerchantUid{MerchantUid: attempt.MerchantUid},
	)
	if err != nil {
		return err
	}

	settledNow := false
	if existing == nil {
		if err := uow.SubscriptionPaymentRepository().Create(ctx, attempt); err != nil {
			return err
		}
		settledNow = attempt.Status == entity.SubscriptionPaymentPaid
	} else if !existing.IsTerminal(attempt.Status) {
		existing.Status = attempt.Status
		existing.PaidAt = attempt.PaidAt
		existing.RawResponse = attempt.RawResponse
		existing.FailReason = attempt.FailReason
		if err := uow.SubscriptionPaymentRepository().Update(ctx, existing); err != nil {
			return err
		}
		settledNow = attempt.Status == entity.SubscriptionPaymentPaid
	}

	if settledNow && product != nil {
		fresh, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscription.Id})
		if err != nil {
			return err
		}
		if fresh != nil {
			advanceBillingDates(fresh, product.BillingPeriod)
			if err := uow.SubscriptionRepository().Update(ctx, fresh); err != nil {
				return err
			}
			*subscription = *fresh
		}
	}

	return uow.Commit()
}

// advanceBillingDates moves NextPaymentDate forward one billing period and
// keeps EndDate in step with the newly paid-through horizon.
func advanceBillingDates(subscription *entity.Subscription, period entity.BillingPeriod) {
	subscription.NextPaymentDate = billingclock.AddPeriod(subscription.NextPaymentDate, period)
	if subscription.NextPaymentDate.After(subscription.EndDate) {
		subscription.EndDate = subscription.NextPaymentDate
	}
}

func (s *schedulerService) recordNoMethodFailure(ctx context.Context, subscription *entity.Subscription, product *entity.Product) {
	reason := apperror.ErrNoPaymentMethodAvailable.Error()
	if err := s.recordAttempt(ctx, subscription, &entity.SubscriptionPayment{
		SubscriptionId: subscription.Id,
		MerchantUid:    newRecurringMerchantUid(subscription.Id),
		Status:         entity.SubscriptionPaymentFailed,
		Amount:         product.Price,
		Provider:       entity.PaymentProvider(""),
		FailReason:     &reason,
	}, nil); err != nil {
		s.log.Error("SchedulerService", "failed to record no-method failure", map[string]interface{}{
			"subscription_id": subscription.Id.String(),
			"error":           err.Error(),
		})
	}

	s.log.Error("SchedulerService", "no payment method available for due subscription", map[string]interface{}{
		"subscription_id": subscription.Id.String(),
		"user_id":         subscription.UserId.String(),
	})
	s.sendAlert(
		"due subscription has no payment method",
		fmt.Sprintf("subscription %s (user %s) is due but no payment method could be resolved", subscription.Id, subscription.UserId),
	)
}

func (s *schedulerService) alertExhausted(ctx context.Context, subscription *entity.Subscription, product *entity.Product) {
	s.log.Error("SchedulerService", "charge retry budget exhausted", map[string]interface{}{
		"subscription_id": subscription.Id.String(),
		"user_id":         subscription.UserId.String(),
		"product_id":      product.Id.String(),
		"attempts":        s.maxRetries,
	})
	s.publishEvent(ctx, events.TypeRecurringPaymentExhausted, map[string]interface{}{
		"subscription_id": subscription.Id.String(),
		"user_id":         subscription.UserId.String(),
		"attempts":        s.maxRetries,
	})
	s.sendAlert(
		"recurring charge retries exhausted",
		fmt.Sprintf("subscription %s (user %s, product %s) failed all %d charge attempts and needs manual follow-up",
			subscription.Id, subscription.UserId, product.Name, s.maxRetries),
	)
}

func (s *schedulerService) sendAlert(subject, body string) {
	if s.mail == nil {
		return
	}
	if err := s.mail.SendOperatorAlert(subject, body); err != nil {
		s.log.Warn("SchedulerService", "operator alert email failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *schedulerService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("SchedulerService", "event publish failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
