// Package notify delivers push notifications to registered devices.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"letterbox/internal/lb"
)

// DefaultOneSignalURL is the OneSignal create-notification endpoint.
const DefaultOneSignalURL = "https://onesignal.com/api/v1/notifications"

// ErrMissingCredentials is returned when the app id or REST key is not configured.
var ErrMissingCredentials = errors.New("onesignal app id and rest api key are required")

// OneSignalNotifier sends notifications through the OneSignal REST API.
// Transient failures (connection errors, 429 and 5xx) are retried with backoff.
type OneSignalNotifier struct {
	appID  string
	apiKey string
	url    string
	client *retryablehttp.Client
}

// NewOneSignalNotifier creates a notifier. An empty url selects DefaultOneSignalURL.
func NewOneSignalNotifier(appID, apiKey, url string, logger lb.Logger) (*OneSignalNotifier, error) {
	if appID == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	if url == "" {
		url = DefaultOneSignalURL
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = logger

	return &OneSignalNotifier{
		appID:  appID,
		apiKey: apiKey,
		url:    url,
		client: client,
	}, nil
}

type oneSignalRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	Data             map[string]string `json:"data"`
	ContentAvailable bool              `json:"content_available"`
	Priority         int               `json:"priority"`
}

type oneSignalResponse struct {
	ID         string          `json:"id"`
	Recipients int             `json:"recipients"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

// Send posts one notification addressed to all recipients.
func (o *OneSignalNotifier) Send(ctx context.Context, recipients []string, n lb.Notification) (*lb.Delivery, error) {
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}

	body, err := json.Marshal(oneSignalRequest{
		AppID:            o.appID,
		IncludePlayerIDs: recipients,
		Headings:         map[string]string{"en": n.Title},
		Contents:         map[string]string{"en": n.Body},
		Data:             data,
		// Deliver even when the app is closed.
		ContentAvailable: true,
		Priority:         10,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding onesignal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, o.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating onesignal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending onesignal request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading onesignal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("onesignal returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var out oneSignalResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding onesignal response: %w", err)
	}
	// OneSignal answers 200 with an errors field when no recipient is subscribed.
	if out.ID == "" && len(out.Errors) > 0 && string(out.Errors) != "null" {
		return nil, fmt.Errorf("onesignal rejected notification: %s", out.Errors)
	}

	return &lb.Delivery{ID: out.ID, Recipients: out.Recipients}, nil
}

// Compile-time check that OneSignalNotifier implements lb.Notifier interface
var _ lb.Notifier = (*OneSignalNotifier)(nil)
