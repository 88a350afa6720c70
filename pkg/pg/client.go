// Package pg is the client for the payment-provider aggregator REST API.
// It holds no state beyond a cached access token; retry decisions belong to
// callers.
package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"subscription-billing-be/internal/apperror"
)

const tokenCacheKey = "pg_access_token"

// BillingKeyInfo is the aggregator's view of a registered billing key.
type BillingKeyInfo struct {
	CustomerUid      string `json:"customer_uid"`
	CardName         string `json:"card_name"`
	CardNumberMasked string `json:"card_number"`
	PgProvider       string `json:"pg_provider"`
}

// PaymentInfo is the aggregator's authoritative record of one payment.
type PaymentInfo struct {
	ImpUid           string `json:"imp_uid"`
	MerchantUid      string `json:"merchant_uid"`
	Status           string `json:"status"` // paid | failed | cancelled
	Amount           int64  `json:"amount"`
	PaidAt           int64  `json:"paid_at"` // epoch seconds, 0 when unpaid
	CardNumberMasked string `json:"card_number"`
	PgProvider       string `json:"pg_provider"`
	FailReason       string `json:"fail_reason"`
	Raw              string `json:"-"`
}

type ChargeRequest struct {
	CustomerUid string
	MerchantUid string
	Name        string
	Amount      int64
}

type Client interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetBillingKey(ctx context.Context, customerUid string) (*BillingKeyInfo, error)
	GetPayment(ctx context.Context, impUid string) (*PaymentInfo, error)
	RequestCharge(ctx context.Context, req ChargeRequest) (*PaymentInfo, error)
	CancelCharge(ctx context.Context, merchantUid, reason string) error
}

type client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	tokenCache *gocache.Cache
}

func NewClient(baseURL, apiKey, apiSecret string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
		tokenCache: gocache.New(gocache.NoExpiration, 5*time.Minute),
	}
}

// envelope is the aggregator's uniform response wrapper.
// code != 0 means the provider rejected the call.
type envelope struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

func (c *client) GetAccessToken(ctx context.Context) (string, error) {
	if tok, found := c.tokenCache.Get(tokenCacheKey); found {
		return tok.(string), nil
	}

	body := map[string]string{
		"imp_key":    c.apiKey,
		"imp_secret": c.apiSecret,
	}
	var res struct {
		AccessToken string `json:"access_token"`
		ExpiredAt   int64  `json:"expired_at"`
		Now         int64  `json:"now"`
	}
	if _, err := c.call(ctx, http.MethodPost, "/users/getToken", "", body, &res); err != nil {
		return "", err
	}

	// Expire the cached token a minute early so in-flight calls never carry
	// a token the provider is about to reject.
	ttl := time.Duration(res.ExpiredAt-res.Now)*time.Second - time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.tokenCache.Set(tokenCacheKey, res.AccessToken, ttl)
	return res.AccessToken, nil
}

func (c *client) GetBillingKey(ctx context.Context, customerUid string) (*BillingKeyInfo, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	var info BillingKeyInfo
	path := fmt.Sprintf("/subscribe/customers/%s", customerUid)
	if _, err := c.call(ctx, http.MethodGet, path, token, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *client) GetPayment(ctx context.Context, impUid string) (*PaymentInfo, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	var info PaymentInfo
	path := fmt.Sprintf("/payments/%s", impUid)
	raw, err := c.call(ctx, http.MethodGet, path, token, nil, &info)
	if err != nil {
		return nil, err
	}
	info.Raw = raw
	return &info, nil
}

func (c *client) RequestCharge(ctx context.Context, req ChargeRequest) (*PaymentInfo, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"customer_uid": req.CustomerUid,
		"merchant_uid": req.MerchantUid,
		"name":         req.Name,
		"amount":       req.Amount,
	}
	var info PaymentInfo
	raw, err := c.call(ctx, http.MethodPost, "/subscribe/payments/again", token, body, &info)
	if err != nil {
		return nil, err
	}
	info.Raw = raw
	return &info, nil
}

func (c *client) CancelCharge(ctx context.Context, merchantUid, reason string) error {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"merchant_uid": merchantUid,
		"reason":       reason,
	}
	_, err = c.call(ctx, http.MethodPost, "/payments/cancel", token, body, nil)
	return err
}

// call performs one aggregator round trip. Transport errors, non-2xx statuses
// and non-zero envelope codes all collapse into ErrProviderUnavailable; the
// caller decides whether the operation is retryable.
func (c *client) call(ctx context.Context, method, path, token string, body interface{}, out interface{}) (string, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.ProviderUnavailable(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.ProviderUnavailable(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperror.ProviderUnavailable(fmt.Errorf("pg %s %s: status %d: %s", method, path, resp.StatusCode, string(bodyBytes)))
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return "", apperror.ProviderUnavailable(fmt.Errorf("pg %s %s: malformed response: %v", method, path, err))
	}
	if env.Code != 0 {
		return "", apperror.ProviderUnavailable(fmt.Errorf("pg %s %s: code %d: %s", method, path, env.Code, env.Message))
	}
	if out != nil {
		if err := json.Unmarshal(env.Response, out); err != nil {
			return "", apperror.ProviderUnavailable(fmt.Errorf("pg %s %s: malformed payload: %v", method, path, err))
		}
	}
	return string(env.Response), nil
}
