package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubscriptionRequest struct {
	UserId    uuid.UUID `json:"user_id" validate:"required"`
	ProductId uuid.UUID `json:"product_id" validate:"required"`
}

type CancelSubscriptionRequest struct {
	SubscriptionId uuid.UUID `json:"subscription_id" validate:"required"`
	Reason         string    `json:"reason"`
}

type CancelSubscriptionResponse struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	Cancelled      bool      `json:"cancelled"`
}

type SubscriptionResponse struct {
	Id              uuid.UUID  `json:"id"`
	UserId          uuid.UUID  `json:"user_id"`
	ProductId       uuid.UUID  `json:"product_id"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	NextPaymentDate time.Time  `json:"next_payment_date"`
	AutoRenew       bool       `json:"auto_renew"`
	CancelReason    *string    `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

type SubscriptionPaymentResponse struct {
	Id          uuid.UUID  `json:"id"`
	MerchantUid string     `json:"merchant_uid"`
	Status      string     `json:"status"`
	Amount      int64      `json:"amount"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Provider    string     `json:"provider"`
	FailReason  *string    `json:"fail_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PaymentMethodResponse struct {
	Id               uuid.UUID `json:"id"`
	Type             string    `json:"type"`
	Provider         string    `json:"provider"`
	MaskedCardNumber string    `json:"masked_card_number"`
	IsDefault        bool      `json:"is_default"`
	CreatedAt        time.Time `json:"created_at"`
}

type ProductResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	BillingPeriod string    `json:"billing_period"`
}
