package pg

import (
	"errors"
	"testing"

	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/entity"
)

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		code    string
		want    entity.PaymentProvider
		wantErr bool
	}{
		{code: "kakaopay", want: entity.ProviderKakao},
		{code: "tosspay", want: entity.ProviderToss},
		{code: "naverpay", want: entity.ProviderNaver},
		{code: "paypal", wantErr: true},
		{code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ResolveProvider(tt.code)
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrValidation) {
					t.Fatalf("want validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildAuthPayload(t *testing.T) {
	params := AuthPayloadParams{
		MerchantUid: "subscribe_abc",
		CustomerUid: "customer_u_1",
		ProductName: "Pro Plan",
		Amount:      14900,
		BuyerEmail:  "user@example.com",
		BuyerName:   "Test User",
	}

	payload, err := BuildAuthPayload(entity.ProviderKakao, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload["pg"] != "kakaopay.TC0ONETIME" {
		t.Errorf("pg = %v", payload["pg"])
	}
	if payload["merchant_uid"] != "subscribe_abc" {
		t.Errorf("merchant_uid = %v", payload["merchant_uid"])
	}
	if payload["customer_uid"] != "customer_u_1" {
		t.Errorf("customer_uid = %v", payload["customer_uid"])
	}
	if payload["amount"] != int64(14900) {
		t.Errorf("amount = %v", payload["amount"])
	}
	if payload["pay_method"] != "card" {
		t.Errorf("pay_method = %v", payload["pay_method"])
	}
}

func TestPgCode(t *testing.T) {
	if got := PgCode(entity.ProviderToss); got != "tosspay.tosstest" {
		t.Errorf("PgCode(toss) = %s", got)
	}
}
