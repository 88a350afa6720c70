package dto

// WebhookRequest is the aggregator's asynchronous payment notification.
// The payload is treated strictly as a "go check" signal: amounts and status
// are re-fetched from the provider, never trusted from the webhook body.
type WebhookRequest struct {
	ImpUid      string `json:"imp_uid" validate:"required"`
	MerchantUid string `json:"merchant_uid" validate:"required"`
	Status      string `json:"status"`
}
