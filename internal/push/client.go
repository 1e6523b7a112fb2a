// Package push delivers mobile notifications through OneSignal and decides,
// on a clock-driven cadence, which daily digests and pre-task alerts to send.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	oneSignalEndpoint = "https://onesignal.com/api/v1/notifications"
	requestTimeout    = 10 * time.Second
)

// Client sends notifications through the OneSignal REST API. A Client built
// without credentials is disabled: Send logs and returns nil without making
// a network call, so the rest of the system runs unchanged in development.
type Client struct {
	appID      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a OneSignal client. Empty credentials produce a disabled
// client rather than an error.
func NewClient(appID, apiKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		appID:      appID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     log.With(slog.String("component", "push_client")),
	}
}

// Enabled reports whether the client has credentials to send with.
func (c *Client) Enabled() bool {
	return c.appID != "" && c.apiKey != ""
}

// notificationPayload is the OneSignal create-notification request body.
// included_segments targets every subscribed device; collapse_id makes a
// later notification of the same kind replace the earlier one on-device.
type notificationPayload struct {
	AppID            string            `json:"app_id"`
	IncludedSegments []string          `json:"included_segments"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	CollapseID       string            `json:"collapse_id,omitempty"`
}

// Send delivers one notification to all subscribed devices. Delivery is
// best-effort: failures are logged and returned, but callers treat them as
// non-fatal and never retry within the same cycle.
func (c *Client) Send(ctx context.Context, title, message, collapseID string) error {
	if !c.Enabled() {
		c.logger.Debug("push disabled, skipping notification",
			slog.String("title", title))
		return nil
	}

	payload := notificationPayload{
		AppID:            c.appID,
		IncludedSegments: []string{"Subscribed Users"},
		Headings:         map[string]string{"en": title},
		Contents:         map[string]string{"en": message},
		CollapseID:       collapseID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oneSignalEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("push delivery failed",
			slog.String("title", title),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("push rejected",
			slog.String("title", title),
			slog.Int("status", resp.StatusCode),
			slog.String("response", string(respBody)))
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}

	c.logger.Info("push delivered", slog.String("title", title))
	return nil
}
