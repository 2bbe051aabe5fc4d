package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"handspeak/internal/domain"
	"handspeak/internal/infra/metrics"
)

// Client delivers emergency alerts to a contact's phone through an SMS
// gateway. An unconfigured client silently drops alerts so the SOS flow
// keeps working on devices without a gateway.
type Client struct {
	gatewayURL string
	token      string
	from       string
	httpClient *http.Client
}

func NewClient(gatewayURL, token, from string) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		token:      token,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SendAlert(ctx context.Context, contact domain.EmergencyContact, message string) error {
	if c.gatewayURL == "" || c.token == "" {
		return nil
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("from", c.from)
	data.Set("to", contact.Phone)
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAlert("error")
		return fmt.Errorf("sending alert to %s: %w", contact.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveAlert("error")
		return fmt.Errorf("sms gateway error for %s: %s", contact.Name, resp.Status)
	}

	metrics.ObserveAlert(metrics.OutcomeOK)
	return nil
}
