package pg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"subscription-billing-be/internal/apperror"
)

func tokenResponse(w http.ResponseWriter) {
	now := time.Now().Unix()
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    0,
		"message": "",
		"response": map[string]interface{}{
			"access_token": "token-abc",
			"now":          now,
			"expired_at":   now + 1800,
		},
	})
}

func TestGetAccessTokenIsCached(t *testing.T) {
	var tokenCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/getToken" {
			atomic.AddInt32(&tokenCalls, 1)
			tokenResponse(w)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", time.Second)

	for i := 0; i < 3; i++ {
		token, err := c.GetAccessToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "token-abc" {
			t.Fatalf("token = %s", token)
		}
	}

	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Errorf("token endpoint called %d times, want 1", n)
	}
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/getToken":
			tokenResponse(w)
		case "/payments/imp_123":
			if r.Header.Get("Authorization") != "Bearer token-abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0,
				"response": map[string]interface{}{
					"imp_uid":      "imp_123",
					"merchant_uid": "recurring_abc_1",
					"status":       "paid",
					"amount":       14900,
					"paid_at":      1756600000,
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", time.Second)
	info, err := c.GetPayment(context.Background(), "imp_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.MerchantUid != "recurring_abc_1" || info.Status != "paid" || info.Amount != 14900 {
		t.Errorf("unexpected payment info: %+v", info)
	}
	if info.Raw == "" {
		t.Error("raw response should be preserved")
	}
}

func TestProviderErrorsCollapseToUnavailable(t *testing.T) {
	t.Run("non-zero envelope code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/users/getToken" {
				tokenResponse(w)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    -1,
				"message": "invalid imp_uid",
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "key", "secret", time.Second)
		_, err := c.GetPayment(context.Background(), "imp_bad")
		if !errors.Is(err, apperror.ErrProviderUnavailable) {
			t.Fatalf("want ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("http 500", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "key", "secret", time.Second)
		_, err := c.GetAccessToken(context.Background())
		if !errors.Is(err, apperror.ErrProviderUnavailable) {
			t.Fatalf("want ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "key", "secret", 200*time.Millisecond)
		_, err := c.GetAccessToken(context.Background())
		if !errors.Is(err, apperror.ErrProviderUnavailable) {
			t.Fatalf("want ErrProviderUnavailable, got %v", err)
		}
	})
}

func TestRequestCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/getToken":
			tokenResponse(w)
		case "/subscribe/payments/again":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["customer_uid"] != "customer_u_1" {
				t.Errorf("customer_uid = %v", body["customer_uid"])
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0,
				"response": map[string]interface{}{
					"imp_uid":      "imp_999",
					"merchant_uid": body["merchant_uid"],
					"status":       "paid",
					"amount":       body["amount"],
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", time.Second)
	info, err := c.RequestCharge(context.Background(), ChargeRequest{
		CustomerUid: "customer_u_1",
		MerchantUid: "recurring_abc_2",
		Name:        "Pro Plan",
		Amount:      14900,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ImpUid != "imp_999" || info.Status != "paid" {
		t.Errorf("unexpected charge result: %+v", info)
	}
}
