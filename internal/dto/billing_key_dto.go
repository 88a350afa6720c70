// FILE: internal/dto/billing_key_dto.go
package dto

import (
	"github.com/google/uuid"
)

type IssueBillingKeyRequest struct {
	UserId    uuid.UUID `json:"user_id" validate:"required"`
	ProductId uuid.UUID `json:"product_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Name      string    `json:"name" validate:"required"`
	Provider  string    `json:"provider" validate:"required"`
}

type IssueBillingKeyResponse struct {
	MerchantUid string                 `json:"merchant_uid"`
	CustomerUid string                 `json:"customer_uid"`
	RequestData map[string]interface{} `json:"request_data"`
}

type ApproveBillingKeyRequest struct {
	PgToken       string    `json:"pg_token" validate:"required"`
	MerchantUid   string    `json:"merchant_uid" validate:"required"`
	CustomerUid   string    `json:"customer_uid" validate:"required"`
	TransactionId string    `json:"transaction_id"`
	ProductId     uuid.UUID `json:"product_id" validate:"required"`
	UserId        uuid.UUID `json:"user_id" validate:"required"`
}

type ApproveBillingKeyResponse struct {
	MerchantUid     string    `json:"merchant_uid"`
	CustomerUid     string    `json:"customer_uid"`
	Status          string    `json:"status"`
	PaymentMethodId uuid.UUID `json:"payment_method_id"`
	UserId          uuid.UUID `json:"user_id"`
	SubscriptionId  uuid.UUID `json:"subscription_id"`
}
