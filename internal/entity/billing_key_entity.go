// FILE: internal/entity/billing_key_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type BillingKeyRequestStatus string
type PaymentProvider string

const (
	BillingKeyRequested BillingKeyRequestStatus = "REQUESTED"
	BillingKeyApproved  BillingKeyRequestStatus = "APPROVED"
	BillingKeyFailed    BillingKeyRequestStatus = "FAILED"
	BillingKeyCancelled BillingKeyRequestStatus = "CANCELLED"

	ProviderKakao PaymentProvider = "kakaopay"
	ProviderToss  PaymentProvider = "tosspay"
	ProviderNaver PaymentProvider = "naverpay"
)

// BillingKeyRequest is one billing-key issuance attempt. Rows are append-only:
// status moves REQUESTED -> {APPROVED, FAILED, CANCELLED} and never backward,
// and requests are kept forever as the audit trail of the issuance flow.
type BillingKeyRequest struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	MerchantUid     string // globally unique, immutable once created
	CustomerUid     string
	Status          BillingKeyRequestStatus
	Provider        PaymentProvider
	RequestPayload  string // serialized provider authorization payload
	PgToken         string // provider callback token, set on approval
	ProductId       *uuid.UUID
	PaymentMethodId *uuid.UUID // set only when status becomes APPROVED
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanTransition reports whether the status machine allows moving to next.
func (r *BillingKeyRequest) CanTransition(next BillingKeyRequestStatus) bool {
	return r.Status == BillingKeyRequested && next != BillingKeyRequested
}
