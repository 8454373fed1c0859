package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiTimeout = 20 * time.Second

var (
	ErrAPIRequestFailed = errors.New("storefront api request failed")
	ErrVerifyRejected   = errors.New("payment verification rejected")
)

// TokenSource supplies the bearer token for the authenticated API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// APIClient implements PaymentsAPI against the storefront HTTP API.
type APIClient struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func NewAPIClient(baseURL string, tokens TokenSource) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: apiTimeout},
	}
}

type apiOrderRequest struct {
	ProductName string `json:"product_name"`
	Amount      int64  `json:"amount"`
}

type apiOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

func (c *APIClient) CreateOrder(ctx context.Context, productName string, amountMajor int64) (OrderSummary, error) {
	var resp apiOrderResponse
	err := c.post(ctx, "/api/payments/orders", apiOrderRequest{
		ProductName: productName,
		Amount:      amountMajor,
	}, &resp)
	if err != nil {
		return OrderSummary{}, err
	}
	if resp.OrderID == "" {
		return OrderSummary{}, fmt.Errorf("%w: empty order id", ErrAPIRequestFailed)
	}
	return OrderSummary{
		OrderID:     resp.OrderID,
		AmountMinor: resp.Amount,
		Currency:    resp.Currency,
		KeyID:       resp.KeyID,
	}, nil
}

type apiVerifyRequest struct {
	OrderID     string `json:"razorpay_order_id"`
	PaymentID   string `json:"razorpay_payment_id"`
	Signature   string `json:"razorpay_signature"`
	ProductName string `json:"product_name"`
	Amount      int64  `json:"amount"`
}

type apiVerifyResponse struct {
	Success bool `json:"success"`
}

func (c *APIClient) VerifyPayment(ctx context.Context, confirm Confirmation, productName string, amountMajor int64) error {
	var resp apiVerifyResponse
	err := c.post(ctx, "/api/payments/verify", apiVerifyRequest{
		OrderID:     confirm.OrderID,
		PaymentID:   confirm.PaymentID,
		Signature:   confirm.Signature,
		ProductName: productName,
		Amount:      amountMajor,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return ErrVerifyRejected
	}
	return nil
}

func (c *APIClient) post(ctx context.Context, path string, body any, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call storefront api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d", ErrAPIRequestFailed, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
