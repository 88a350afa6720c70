package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the billing error taxonomy. Callers branch with
// errors.Is; the HTTP error middleware maps them to status codes.
var (
	// ErrValidation: bad input, 4xx, never retried.
	ErrValidation = errors.New("validation error")

	// ErrResourceNotFound: requested record does not exist, 404.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrProviderUnavailable: transient payment-provider failure. Retryable
	// for scheduled charges, surfaced immediately for synchronous flows.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrDuplicateActiveSubscription: user already has an ACTIVE subscription;
	// only one billing key may be in flight per user.
	ErrDuplicateActiveSubscription = errors.New("user already has an active subscription")

	// ErrBillingKeyRequestNotFound: approval referenced an unknown merchant uid.
	ErrBillingKeyRequestNotFound = errors.New("billing key request not found")

	// ErrBillingKeyApprovalFailed: provider rejected the registration. Terminal;
	// the caller must restart the issuance flow.
	ErrBillingKeyApprovalFailed = errors.New("billing key approval failed")

	// ErrWebhookMismatch: webhook-claimed merchant uid diverges from the
	// provider's authoritative record. Logged and discarded, never an HTTP error.
	ErrWebhookMismatch = errors.New("webhook merchant uid mismatch")

	// ErrNoPaymentMethodAvailable: no charge target could be resolved for a due
	// subscription. Terminal for that day's attempt.
	ErrNoPaymentMethodAvailable = errors.New("no payment method available")
)

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(resource string) error {
	return fmt.Errorf("%w: %s", ErrResourceNotFound, resource)
}

func ProviderUnavailable(cause error) error {
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, cause)
}
