package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"handspeak/internal/domain"
	"handspeak/internal/infra"
)

// Client pushes outputs back to the companion device over its local
// HTTP API: synthesized speech to play, intents to launch (dialer, SMS
// composer) and vibration patterns. It is the outbound half of the
// device link; the capture gateway is the inbound half.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Play sends synthesized audio for the device to play out loud.
func (c *Client) Play(ctx context.Context, audio []byte) error {
	if err := c.doRequest(ctx, "/api/play", "audio/mpeg", audio); err != nil {
		return fmt.Errorf("playing audio: %w", err)
	}
	return nil
}

// Launch asks the device to open the app behind an intent URI, such as
// the dialer for tel: or the SMS composer for sms:.
func (c *Client) Launch(ctx context.Context, intent domain.Intent) error {
	body, err := json.Marshal(map[string]string{
		"kind": string(intent.Kind),
		"uri":  intent.URI,
	})
	if err != nil {
		return fmt.Errorf("marshaling intent: %w", err)
	}

	if err := c.doRequest(ctx, "/api/intent", "application/json", body); err != nil {
		return fmt.Errorf("launching intent: %w", err)
	}
	return nil
}

// Pulse sends a vibration pattern, in milliseconds, alternating
// vibrate and pause.
func (c *Client) Pulse(pattern ...time.Duration) {
	millis := make([]int64, len(pattern))
	for i, d := range pattern {
		millis[i] = d.Milliseconds()
	}

	body, err := json.Marshal(map[string]any{"pattern": millis})
	if err != nil {
		return
	}

	// Haptic feedback is fire-and-forget; a lost pulse is not worth
	// blocking the caller.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.doRequest(ctx, "/api/vibrate", "application/json", body)
}

func (c *Client) doRequest(ctx context.Context, path, contentType string, body []byte) error {
	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("unauthorized: check the companion device token")
		}

		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return fmt.Errorf("companion API error %d (retryable): %s", resp.StatusCode, string(respBody))
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("companion API error %d: %s", resp.StatusCode, string(respBody))
		}

		return nil
	})
}
