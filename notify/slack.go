package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/salesmesh/config"
)

// SlackSink posts report summaries to an incoming webhook.
type SlackSink struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *http.Client
}

// NewSlackSink builds a sink for the given webhook configuration.
func NewSlackSink(cfg config.SlackConfig) *SlackSink {
	return &SlackSink{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		username:   cfg.Username,
		iconEmoji:  cfg.IconEmoji,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Sink.
func (s *SlackSink) Name() string { return "slack" }

// Send posts the report summary as a single webhook message.
func (s *SlackSink) Send(ctx context.Context, report Report) error {
	payload := map[string]string{
		"text":       report.Summary,
		"username":   s.username,
		"icon_emoji": s.iconEmoji,
	}
	if s.channel != "" {
		payload["channel"] = s.channel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, msg)
	}

	return nil
}
