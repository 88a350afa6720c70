package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRecurringMerchantUidRoundTrip(t *testing.T) {
	subscriptionId := uuid.New()

	merchantUid := newRecurringMerchantUid(subscriptionId)
	if !strings.HasPrefix(merchantUid, "recurring_") {
		t.Fatalf("unexpected prefix: %s", merchantUid)
	}

	parsed, ok := parseRecurringMerchantUid(merchantUid)
	if !ok {
		t.Fatalf("failed to parse %s", merchantUid)
	}
	if parsed != subscriptionId {
		t.Fatalf("got %s, want %s", parsed, subscriptionId)
	}
}

func TestRecurringMerchantUidUniquePerAttempt(t *testing.T) {
	subscriptionId := uuid.New()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		merchantUid := newRecurringMerchantUid(subscriptionId)
		if _, dup := seen[merchantUid]; dup {
			t.Fatalf("duplicate order id on attempt %d: %s", i, merchantUid)
		}
		seen[merchantUid] = struct{}{}
	}
}

func TestParseRecurringMerchantUid(t *testing.T) {
	tests := []struct {
		name        string
		merchantUid string
		wantOk      bool
	}{
		{
			name:        "valid",
			merchantUid: "recurring_d2719f10-9c1b-4c3a-9e56-0d53aa2b7001_1756600000000",
			wantOk:      true,
		},
		{
			name:        "wrong prefix",
			merchantUid: "subscribe_d2719f10-9c1b-4c3a-9e56-0d53aa2b7001",
			wantOk:      false,
		},
		{
			name:        "missing nonce segment",
			merchantUid: "recurring_d2719f10-9c1b-4c3a-9e56-0d53aa2b7001",
			wantOk:      false,
		},
		{
			name:        "garbage id",
			merchantUid: "recurring_not-a-uuid_1756600000000",
			wantOk:      false,
		},
		{
			name:        "empty",
			merchantUid: "",
			wantOk:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseRecurringMerchantUid(tt.merchantUid)
			if ok != tt.wantOk {
				t.Errorf("parseRecurringMerchantUid(%q) ok = %v, want %v", tt.merchantUid, ok, tt.wantOk)
			}
		})
	}
}

func TestCustomerUidFormat(t *testing.T) {
	userId := uuid.New()
	customerUid := newCustomerUid(userId)
	if !strings.HasPrefix(customerUid, "customer_"+userId.String()+"_") {
		t.Fatalf("unexpected customer uid: %s", customerUid)
	}
}
