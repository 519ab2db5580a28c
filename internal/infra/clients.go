package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
)

// PricingClient fetches the current market price for a traded unit.
// Pricing sits in the order-creation critical path: one attempt, short
// timeout, and the caller fails the whole creation on error.
type PricingClient struct {
	url        string
	httpClient *http.Client
}

// NewPricingClient creates a pricing client with the given timeout.
func NewPricingClient(url string, timeout time.Duration) *PricingClient {
	return &PricingClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CurrentPrice returns the market price quote.
func (c *PricingClient) CurrentPrice(ctx context.Context) (domain.PriceQuote, error) {
	var quote domain.PriceQuote

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return quote, domain.NewUpstreamError("pricing", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return quote, domain.NewUpstreamError("pricing", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return quote, domain.NewUpstreamError("pricing", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return quote, domain.NewUpstreamError("pricing", err)
	}
	if err := json.Unmarshal(body, &quote); err != nil {
		return quote, domain.NewUpstreamError("pricing", err)
	}

	return quote, nil
}

// AuditClient posts audit events to the audit sink.
type AuditClient struct {
	url        string
	httpClient *http.Client
}

// NewAuditClient creates an audit sink client with the given timeout.
func NewAuditClient(url string, timeout time.Duration) *AuditClient {
	return &AuditClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Post delivers one audit event synchronously.
func (c *AuditClient) Post(ctx context.Context, ev domain.AuditEvent) error {
	if err := postJSON(ctx, c.httpClient, c.url, ev); err != nil {
		return domain.NewUpstreamError("audit", err)
	}
	return nil
}

// NotificationClient posts notifications to the notification sink.
type NotificationClient struct {
	url        string
	httpClient *http.Client
}

// NewNotificationClient creates a notification sink client with the given timeout.
func NewNotificationClient(url string, timeout time.Duration) *NotificationClient {
	return &NotificationClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send delivers one notification. Best effort: callers may drop the error.
func (c *NotificationClient) Send(ctx context.Context, n domain.Notification) error {
	if err := postJSON(ctx, c.httpClient, c.url, n); err != nil {
		return domain.NewUpstreamError("notification", err)
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
