package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	PaymentMethodCard PaymentMethodType = "card"
)

// PaymentMethod is a reusable charge target backed by a provider billing key.
// Soft-deleted only; the full PAN is never stored, only the provider mask.
type PaymentMethod struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	Type             PaymentMethodType
	Provider         PaymentProvider
	MaskedCardNumber string
	CustomerUid      string // provider billing-key / customer reference
	IsDefault        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}
