// Package slack delivers rule alerts to a Slack channel via the
// chat.postMessage API. The engine only decides whether and when to
// send; everything about formatting and transport lives here.
package slack

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

	"vigil/internal/engine"
)

const defaultAPIURL = "https://slack.com/api/chat.postMessage"

// ErrChannelRequired means a token was configured without a channel to
// post to.
var ErrChannelRequired = errors.New("slack channel is required when a token is configured")

// Config holds Slack notifier configuration. An empty token disables
// notification entirely; a token without a channel is a configuration
// error surfaced at startup, not at send time.
type Config struct {
	Token   string
	Channel string
}

// ValidateConfig enforces the token/channel pairing rule.
func ValidateConfig(cfg Config) error {
	if cfg.Token != "" && cfg.Channel == "" {
		return ErrChannelRequired
	}
	return nil
}

// NewNotifier returns the notifier matching the configuration: a real
// client when a token is present, otherwise a no-op that never sends
// but lets rule evaluation and counting proceed.
func NewNotifier(cfg Config) (engine.Notifier, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return Noop{}, nil
	}
	return NewClient(cfg), nil
}

// Client posts alert messages to Slack.
type Client struct {
	token      string
	channel    string
	apiURL     string
	httpClient *http.Client
}

// NewClient builds a Slack client with a bounded request timeout so a
// slow delivery cannot stall frame processing beyond it.
func NewClient(cfg Config) *Client {
	return &Client{
		token:      cfg.Token,
		channel:    cfg.Channel,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled implements engine.Notifier.
func (c *Client) Enabled() bool { return true }

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type block struct {
	Type string     `json:"type"`
	Text *blockText `json:"text,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send implements engine.Notifier. timestamp is nanoseconds since the
// stream origin and is rendered as elapsed time for readability.
func (c *Client) Send(ctx context.Context, camName, ruleName string, timestamp int64) error {
	detail := fmt.Sprintf("*Rule Name:* %s\n*When:* %safter origin\n*Camera Name:* %s",
		ruleName, readableTime(timestamp), camName)

	payload := map[string]any{
		"channel": c.channel,
		"text":    "*A new event has occurred:* \n" + detail,
		"blocks": []block{
			{Type: "section", Text: &blockText{Type: "mrkdwn", Text: ":warning: *A new event has occurred:*"}},
			{Type: "section", Text: &blockText{Type: "mrkdwn", Text: detail}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("slack API error: %s", apiResp.Error)
	}
	return nil
}

// readableTime renders a nanosecond offset as "H hours M minutes
// S seconds " within a 24 hour window, omitting zero components.
func readableTime(timestamp int64) string {
	seconds := int64(float64(timestamp) / 1e9)
	seconds %= 24 * 3600
	hours := seconds / 3600
	seconds %= 3600
	minutes := seconds / 60
	seconds %= 60

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%d hours ", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%d minutes ", minutes)
	}
	if seconds > 0 {
		fmt.Fprintf(&b, "%d seconds ", seconds)
	}
	return b.String()
}

// Noop is the notifier used when no Slack token is configured. It never
// sends; the alert gate sees it as unconfigured and never approves.
type Noop struct{}

// Enabled implements engine.Notifier.
func (Noop) Enabled() bool { return false }

// Send implements engine.Notifier.
func (Noop) Send(context.Context, string, string, int64) error { return nil }

var (
	_ engine.Notifier = (*Client)(nil)
	_ engine.Notifier = Noop{}
)
