package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"habitbot-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// yookassaProvider implements the Provider interface against the
// YooKassa payments API.
type yookassaProvider struct {
	config     config.PaymentsConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewYooKassaProvider creates a new YooKassa-backed payment provider
func NewYooKassaProvider(cfg config.PaymentsConfig, logger *zap.Logger) (Provider, error) {
	if cfg.ShopID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("payment credentials are required")
	}

	return &yookassaProvider{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}, nil
}

type yookassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type yookassaConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type yookassaCreateRequest struct {
	Amount       yookassaAmount       `json:"amount"`
	Capture      bool                 `json:"capture"`
	Confirmation yookassaConfirmation `json:"confirmation"`
	Description  string               `json:"description"`
	Metadata     map[string]string    `json:"metadata"`
}

type yookassaPayment struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Confirmation *yookassaConfirmation `json:"confirmation,omitempty"`
}

// CreatePayment opens a checkout session. The Idempotence-Key header makes
// the create call safe to retry.
func (p *yookassaProvider) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Checkout, error) {
	p.logger.Debug("Creating payment",
		zap.Int64("user_id", req.UserID),
		zap.String("amount", req.Amount))

	body := yookassaCreateRequest{
		Amount:       yookassaAmount{Value: req.Amount, Currency: req.Currency},
		Capture:      true,
		Confirmation: yookassaConfirmation{Type: "redirect", ReturnURL: req.ReturnURL},
		Description:  req.Description,
		Metadata:     map[string]string{"user_id": strconv.FormatInt(req.UserID, 10)},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create payment request: %w", err)
	}

	idempotenceKey := uuid.New().String()

	var created yookassaPayment
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			p.config.APIURL+"/payments", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Idempotence-Key", idempotenceKey)
		httpReq.SetBasicAuth(p.config.ShopID, p.config.SecretKey)

		return p.doJSON(httpReq, "create payment", &created)
	}

	if err := backoff.Retry(operation, p.retryPolicy(ctx)); err != nil {
		p.logger.Error("Failed to create payment", zap.Error(err))
		return nil, err
	}

	if created.ID == "" || created.Confirmation == nil || created.Confirmation.ConfirmationURL == "" {
		return nil, ProviderError{Operation: "create payment",
			Cause: fmt.Errorf("incomplete response from processor")}
	}

	p.logger.Info("Payment created",
		zap.String("provider_id", created.ID),
		zap.Int64("user_id", req.UserID))

	return &Checkout{
		ProviderID:      created.ID,
		ConfirmationURL: created.Confirmation.ConfirmationURL,
	}, nil
}

// GetPaymentStatus fetches the authoritative payment status.
func (p *yookassaProvider) GetPaymentStatus(ctx context.Context, providerID string) (string, error) {
	var fetched yookassaPayment
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
			p.config.APIURL+"/payments/"+providerID, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.SetBasicAuth(p.config.ShopID, p.config.SecretKey)

		return p.doJSON(httpReq, "get payment", &fetched)
	}

	if err := backoff.Retry(operation, p.retryPolicy(ctx)); err != nil {
		p.logger.Error("Failed to fetch payment status",
			zap.String("provider_id", providerID),
			zap.Error(err))
		return "", err
	}

	return fetched.Status, nil
}

// doJSON executes the request and decodes the response, classifying
// failures so the retry loop only repeats transient ones.
func (p *yookassaProvider) doJSON(req *http.Request, operation string, out interface{}) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		// Network-level failure, retryable
		return ProviderError{Operation: operation, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProviderError{Operation: operation, Cause: err}
	}

	if resp.StatusCode >= 400 {
		provErr := ProviderError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("unexpected status: %s", string(respBody)),
		}
		if !provErr.Temporary() {
			return backoff.Permanent(provErr)
		}
		return provErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return backoff.Permanent(ProviderError{Operation: operation, Cause: err})
	}

	return nil
}

// retryPolicy allows exactly one re-attempt on transient failures.
func (p *yookassaProvider) retryPolicy(ctx context.Context) backoff.BackOff {
	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = 500 * time.Millisecond
	strategy.MaxInterval = 2 * time.Second

	return backoff.WithContext(backoff.WithMaxRetries(strategy, 1), ctx)
}
