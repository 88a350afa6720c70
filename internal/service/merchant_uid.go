package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	billingKeyMerchantPrefix = "subscribe_"
	recurringMerchantPrefix  = "recurring_"
	customerUidPrefix        = "customer_"
)

func newBillingKeyMerchantUid() string {
	return billingKeyMerchantPrefix + uuid.New().String()
}

func newCustomerUid(userId uuid.UUID) string {
	return fmt.Sprintf("%s%s_%d", customerUidPrefix, userId.String(), time.Now().UnixMilli())
}

// newRecurringMerchantUid mints a fresh order id for one charge attempt. The
// nonce is a uuid rather than a timestamp so two attempts can never share an
// order id, no matter how close together they run.
func newRecurringMerchantUid(subscriptionId uuid.UUID) string {
	return fmt.Sprintf("%s%s_%s", recurringMerchantPrefix, subscriptionId.String(), uuid.New().String())
}

// parseRecurringMerchantUid recovers the subscription id from a recurring
// charge order id. Webhooks can arrive before the charge attempt was
// persisted, so the id has to be reconstructable from the order id alone.
func parseRecurringMerchantUid(merchantUid string) (uuid.UUID, bool) {
	if !strings.HasPrefix(merchantUid, recurringMerchantPrefix) {
		return uuid.Nil, false
	}
	rest := strings.TrimPrefix(merchantUid, recurringMerchantPrefix)
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest[:idx])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
