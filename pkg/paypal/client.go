// Package paypal is a minimal client for the PayPal Orders v2 API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pawfund/pawfund-backend/pkg/breaker"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath      = "/v1/oauth2/token"
	ordersPath     = "/v2/checkout/orders"
	requestTimeout = 15 * time.Second
	breakerTimeout = 30 * time.Second
)

// ErrNotConfigured is returned when PayPal credentials are missing.
var ErrNotConfigured = errors.New("paypal is not configured")

// Options customises the client beyond what config carries.
type Options struct {
	BaseURL   string
	ReturnURL string
	CancelURL string
	// HTTPClient is the transport used for token and API calls.
	HTTPClient *http.Client
}

// Client talks to PayPal with OAuth2 client-credential tokens.
type Client struct {
	cfg       config.PayPalConfig
	baseURL   string
	returnURL string
	cancelURL string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker
}

// ClientConfig is the public data the browser SDK needs.
type ClientConfig struct {
	ClientID string `json:"clientId"`
	Mode     string `json:"mode"`
}

// Order is the result of creating an order.
type Order struct {
	ID         string `json:"orderId"`
	Status     string `json:"status"`
	ApproveURL string `json:"approveUrl,omitempty"`
}

// Capture is the result of capturing an approved order.
type Capture struct {
	OrderID       string          `json:"orderId"`
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PayerEmail    string          `json:"payerEmail,omitempty"`
}

// New builds a PayPal client. Credentials are optional at boot; calls fail
// with ErrNotConfigured until they are set.
func New(cfg config.PayPalConfig, opts Options, logg *logger.Logger) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = cfg.BaseURL()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &Client{
		cfg:       cfg,
		baseURL:   base,
		returnURL: opts.ReturnURL,
		cancelURL: opts.CancelURL,
		http:      cc.Client(tokenCtx),
		cb:        breaker.New("paypal", breakerTimeout, logg),
	}
}

// Config returns the public client id and mode.
func (c *Client) Config() ClientConfig {
	mode := c.cfg.Mode
	if mode == "" {
		mode = "sandbox"
	}
	return ClientConfig{ClientID: c.cfg.ClientID, Mode: mode}
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type createOrderRequest struct {
	Intent             string `json:"intent"`
	ApplicationContext struct {
		ReturnURL string `json:"return_url,omitempty"`
		CancelURL string `json:"cancel_url,omitempty"`
	} `json:"application_context"`
	PurchaseUnits []struct {
		Amount      amountPayload `json:"amount"`
		Description string        `json:"description,omitempty"`
	} `json:"purchase_units"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string        `json:"id"`
				Status string        `json:"status"`
				Amount amountPayload `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Payer struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

// CreateOrder opens a CAPTURE-intent order for amount in the configured currency.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, description string) (*Order, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	var req createOrderRequest
	req.Intent = "CAPTURE"
	req.ApplicationContext.ReturnURL = c.returnURL
	req.ApplicationContext.CancelURL = c.cancelURL
	req.PurchaseUnits = make([]struct {
		Amount      amountPayload `json:"amount"`
		Description string        `json:"description,omitempty"`
	}, 1)
	req.PurchaseUnits[0].Amount = amountPayload{CurrencyCode: c.currency(), Value: amount.StringFixed(2)}
	req.PurchaseUnits[0].Description = description

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, ordersPath, req, &resp); err != nil {
		return nil, err
	}
	order := &Order{ID: resp.ID, Status: resp.Status}
	for _, l := range resp.Links {
		if l.Rel == "approve" {
			order.ApproveURL = l.Href
		}
	}
	return order, nil
}

// CaptureOrder captures an approved order. The first capture's id and status
// win over the order-level values.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("order id is required")
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, ordersPath+"/"+url.PathEscape(orderID)+"/capture", nil, &resp); err != nil {
		return nil, err
	}

	capture := &Capture{
		OrderID:       resp.ID,
		TransactionID: resp.ID,
		Status:        resp.Status,
		Currency:      c.currency(),
		PayerEmail:    resp.Payer.EmailAddress,
	}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		first := resp.PurchaseUnits[0].Payments.Captures[0]
		capture.TransactionID = first.ID
		capture.Status = first.Status
		if first.Amount.CurrencyCode != "" {
			capture.Currency = first.Amount.CurrencyCode
		}
		if v, err := decimal.NewFromString(first.Amount.Value); err == nil {
			capture.Amount = v
		}
	}
	return capture, nil
}

func (c *Client) currency() string {
	if c.cfg.Currency == "" {
		return "USD"
	}
	return c.cfg.Currency
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return ErrNotConfigured
	}

	_, err := c.cb.Execute(func() (any, error) {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("paypal %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read paypal response: %w", err)
		}
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
		}
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return nil, fmt.Errorf("decode paypal response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}

// APIError is a non-2xx answer from PayPal.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal api status %d: %s", e.StatusCode, e.Body)
}
