package lahza

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

const (
	defaultTimeout  = 15 * time.Second
	signatureHeader = "X-Lahza-Signature"
)

var (
	errSecretKeyRequired     = errors.New("lahza secret key is required")
	errWebhookSecretRequired = errors.New("lahza webhook secret is required")
	errLoggerRequired        = errors.New("lahza logger is required")
)

// Client wraps the Lahza REST API with centralized auth, logging, and error mapping.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	secretKey     string
	webhookSecret string
	callbackURL   string
	logger        *logger.Logger
}

// InitializeInput carries the fields needed to open a charge with the gateway.
type InitializeInput struct {
	Reference string
	Email     string
	Amount    decimal.Decimal
	Currency  enums.Currency
}

// Transaction is the subset of the gateway transaction we consume.
type Transaction struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	Status           string `json:"status"`
	AmountMinor      int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient initializes the Lahza wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.LahzaConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("lahza base url is required")
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		baseURL:       baseURL,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		callbackURL:   strings.TrimSpace(cfg.CallbackURL),
		logger:        logg,
	}

	logg.Info(ctx, "lahza client initialized")
	return c, nil
}

// Initialize opens a pending transaction with the gateway and returns the
// hosted checkout URL. Amount is converted to minor units (agorot/cents).
func (c *Client) Initialize(ctx context.Context, input InitializeInput) (*Transaction, error) {
	if strings.TrimSpace(input.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer email is required")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	payload := map[string]any{
		"reference": input.Reference,
		"email":     input.Email,
		"amount":    input.Amount.Shift(2).IntPart(),
		"currency":  input.Currency.String(),
	}
	if c.callbackURL != "" {
		payload["callback_url"] = c.callbackURL
	}

	var tx Transaction
	if err := c.post(ctx, "/transaction/initialize", payload, &tx); err != nil {
		return nil, err
	}
	if tx.Reference == "" {
		tx.Reference = input.Reference
	}
	return &tx, nil
}

// Verify fetches the terminal state of a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}

	var tx Transaction
	if err := c.get(ctx, "/transaction/verify/"+reference, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// VerifyWebhookSignature checks the HMAC header the gateway attaches to
// webhook deliveries against the shared webhook secret.
func (c *Client) VerifyWebhookSignature(body []byte, header http.Header) bool {
	provided := strings.TrimSpace(header.Get(signatureHeader))
	if provided == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment gateway")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read gateway response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"body": string(raw)})
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway envelope")
	}
	if !envelope.Status {
		return pkgerrors.New(pkgerrors.CodeDependency, "gateway rejected request").
			WithDetails(map[string]any{"message": envelope.Message})
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway data")
		}
	}
	return nil
}
