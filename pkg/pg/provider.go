package pg

import (
	"subscription-billing-be/internal/apperror"
	"subscription-billing-be/internal/entity"
)

// AuthPayloadParams carries everything a provider needs to open its
// billing-key consent flow on the front end.
type AuthPayloadParams struct {
	MerchantUid string
	CustomerUid string
	ProductName string
	Amount      int64
	BuyerEmail  string
	BuyerName   string
}

// strategy binds a provider variant to its aggregator PG code and its
// authorization payload shape. Adding a provider means adding one table row,
// not another branch in the issuer.
type strategy struct {
	PgCode       string
	BuildPayload func(p AuthPayloadParams) map[string]interface{}
}

var strategies = map[entity.PaymentProvider]strategy{
	entity.ProviderKakao: {
		PgCode: "kakaopay.TC0ONETIME",
		BuildPayload: func(p AuthPayloadParams) map[string]interface{} {
			return map[string]interface{}{
				"pg":           "kakaopay.TC0ONETIME",
				"pay_method":   "card",
				"merchant_uid": p.MerchantUid,
				"customer_uid": p.CustomerUid,
				"name":         p.ProductName,
				"amount":       p.Amount,
				"buyer_email":  p.BuyerEmail,
				"buyer_name":   p.BuyerName,
			}
		},
	},
	entity.ProviderToss: {
		PgCode: "tosspay.tosstest",
		BuildPayload: func(p AuthPayloadParams) map[string]interface{} {
			return map[string]interface{}{
				"pg":           "tosspay.tosstest",
				"pay_method":   "card",
				"merchant_uid": p.MerchantUid,
				"customer_uid": p.CustomerUid,
				"name":         p.ProductName,
				"amount":       p.Amount,
				"buyer_email":  p.BuyerEmail,
				"buyer_name":   p.BuyerName,
			}
		},
	},
	entity.ProviderNaver: {
		PgCode: "naverpay",
		BuildPayload: func(p AuthPayloadParams) map[string]interface{} {
			return map[string]interface{}{
				"pg":           "naverpay",
				"pay_method":   "card",
				"merchant_uid": p.MerchantUid,
				"customer_uid": p.CustomerUid,
				"name":         p.ProductName,
				"amount":       p.Amount,
				"buyer_email":  p.BuyerEmail,
				"buyer_name":   p.BuyerName,
			}
		},
	},
}

// ResolveProvider maps a request-supplied provider code onto the strategy
// table. Unknown codes are a validation error, not a provider outage.
func ResolveProvider(code string) (entity.PaymentProvider, error) {
	provider := entity.PaymentProvider(code)
	if _, ok := strategies[provider]; !ok {
		return "", apperror.Validation("unsupported payment provider %q", code)
	}
	return provider, nil
}

// BuildAuthPayload returns the provider-specific authorization payload for
// the billing-key consent flow.
func BuildAuthPayload(provider entity.PaymentProvider, p AuthPayloadParams) (map[string]interface{}, error) {
	s, ok := strategies[provider]
	if !ok {
		return nil, apperror.Validation("unsupported payment provider %q", provider)
	}
	return s.BuildPayload(p), nil
}

// PgCode returns the aggregator-side PG code for the provider.
func PgCode(provider entity.PaymentProvider) string {
	return strategies[provider].PgCode
}
