package events

import "time"

// Billing event types published to the bus.
const (
	TypeBillingKeyApproved        = "BILLING_KEY_APPROVED"
	TypeSubscriptionCreated       = "SUBSCRIPTION_CREATED"
	TypeSubscriptionCancelled     = "SUBSCRIPTION_CANCELLED"
	TypeRecurringPaymentPaid      = "RECURRING_PAYMENT_PAID"
	TypeRecurringPaymentFailed    = "RECURRING_PAYMENT_FAILED"
	TypeRecurringPaymentExhausted = "RECURRING_PAYMENT_EXHAUSTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RECURRING_PAYMENT_PAID").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used across services.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
