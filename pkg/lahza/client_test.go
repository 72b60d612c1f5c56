package lahza

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "lahza-test"})
}

func testConfig(baseURL string) config.LahzaConfig {
	return config.LahzaConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "wh_secret",
		BaseURL:       baseURL,
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, testConfig("https://api.lahza.io"), nil); err != errLoggerRequired {
		t.Fatalf("expected logger error, got %v", err)
	}

	cfg := testConfig("https://api.lahza.io")
	cfg.SecretKey = ""
	if _, err := NewClient(ctx, cfg, testLogger()); err != errSecretKeyRequired {
		t.Fatalf("expected secret key error, got %v", err)
	}

	cfg = testConfig("https://api.lahza.io")
	cfg.WebhookSecret = ""
	if _, err := NewClient(ctx, cfg, testLogger()); err != errWebhookSecretRequired {
		t.Fatalf("expected webhook secret error, got %v", err)
	}
}

func TestInitializeSendsMinorUnits(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Fatalf("unexpected auth header %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"reference":         "ord-1",
				"authorization_url": "https://checkout.lahza.io/ord-1",
				"status":            "pending",
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), testConfig(srv.URL), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	tx, err := client.Initialize(context.Background(), InitializeInput{
		Reference: "ord-1",
		Email:     "buyer@example.com",
		Amount:    decimal.RequireFromString("90.50"),
		Currency:  enums.CurrencyILS,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if captured["amount"] != float64(9050) {
		t.Fatalf("expected amount in minor units, got %v", captured["amount"])
	}
	if captured["currency"] != "ILS" {
		t.Fatalf("expected ILS currency, got %v", captured["currency"])
	}
	if tx.AuthorizationURL != "https://checkout.lahza.io/ord-1" {
		t.Fatalf("unexpected checkout url %s", tx.AuthorizationURL)
	}
}

func TestInitializeValidatesInput(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("https://api.lahza.io"), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Initialize(context.Background(), InitializeInput{
		Reference: "ord-1",
		Email:     "buyer@example.com",
		Amount:    decimal.Zero,
		Currency:  enums.CurrencyILS,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestVerifyMapsGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "transaction not found"})
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), testConfig(srv.URL), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Verify(context.Background(), "missing-ref")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("https://api.lahza.io"), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	body := []byte(`{"event":"charge.success","data":{"reference":"ord-1"}}`)
	mac := hmac.New(sha512.New, []byte("wh_secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	header := http.Header{}
	header.Set("X-Lahza-Signature", signature)
	if !client.VerifyWebhookSignature(body, header) {
		t.Fatal("expected signature to verify")
	}

	header.Set("X-Lahza-Signature", "deadbeef")
	if client.VerifyWebhookSignature(body, header) {
		t.Fatal("expected forged signature to fail")
	}

	if client.VerifyWebhookSignature(body, http.Header{}) {
		t.Fatal("expected missing signature to fail")
	}
}
