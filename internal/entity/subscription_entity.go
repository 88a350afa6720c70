// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type SubscriptionPaymentStatus string
type BillingPeriod string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"

	SubscriptionPaymentPaid     SubscriptionPaymentStatus = "PAID"
	SubscriptionPaymentFailed   SubscriptionPaymentStatus = "FAILED"
	SubscriptionPaymentCanceled SubscriptionPaymentStatus = "CANCELED"

	BillingPeriodDaily   BillingPeriod = "daily"
	BillingPeriodWeekly  BillingPeriod = "weekly"
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// Subscription is a standing agreement to charge a user periodically for a
// product. NextPaymentDate is always >= StartDate and advances only after a
// charge attempt for that date has been recorded. CANCELLED is terminal and
// forces AutoRenew=false.
type Subscription struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	ProductId       uuid.UUID
	Status          SubscriptionStatus
	StartDate       time.Time
	EndDate         time.Time
	NextPaymentDate time.Time
	AutoRenew       bool
	CancelReason    *string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// SubscriptionPayment records one charge attempt, successful or failed.
// MerchantUid is unique per attempt and encodes the owning subscription id
// (recurring_<subscriptionId>_<nonce>) so a webhook arriving before the
// synchronous path wrote its row can still be reconciled.
type SubscriptionPayment struct {
	Id              uuid.UUID
	SubscriptionId  uuid.UUID
	PaymentMethodId *uuid.UUID
	MerchantUid     string
	Status          SubscriptionPaymentStatus
	Amount          int64
	PaidAt          *time.Time
	Provider        PaymentProvider
	RawResponse     string
	FailReason      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal reports whether the payment already settled with the given
// status. This is the idempotence guard shared by the scheduler and the
// webhook reconciler.
func (p *SubscriptionPayment) IsTerminal(status SubscriptionPaymentStatus) bool {
	return p.Status == status
}
