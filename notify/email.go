package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/salesmesh/config"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// EmailSink delivers the full report document by email through the SendGrid
// v3 REST API.
type EmailSink struct {
	apiKey   string
	from     string
	to       string
	company  config.CompanyConfig
	endpoint string
	client   *http.Client
}

// NewEmailSink builds a sink for the given email configuration. The company
// profile feeds the signature block appended to every message.
func NewEmailSink(cfg config.EmailConfig, company config.CompanyConfig) *EmailSink {
	return &EmailSink{
		apiKey:   cfg.SendGridAPIKey,
		from:     cfg.From,
		to:       cfg.To,
		company:  company,
		endpoint: sendGridEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name implements Sink.
func (s *EmailSink) Name() string { return "email" }

// Send mails the report document, wrapped in a styled HTML shell.
func (s *EmailSink) Send(ctx context.Context, report Report) error {
	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": s.to}}},
		},
		"from":    map[string]string{"email": s.from},
		"subject": report.Subject,
		"content": []map[string]string{
			{"type": "text/html", "value": s.wrapHTML(report.Document)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sendgrid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, msg)
	}

	return nil
}

// wrapHTML puts the markdown document into a minimal styled page. The body is
// rendered preformatted rather than converted, which reads fine in every
// client and cannot mangle agent output.
func (s *EmailSink) wrapHTML(document string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
.footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #ecf0f1; font-size: 0.9em; color: #7f8c8d; }
</style>
</head>
<body>
<div style="white-space: pre-wrap;">%s</div>
<div class="footer">
<p><strong>%s</strong><br>
Email: %s<br>
Web: <a href="%s">%s</a></p>
</div>
</body>
</html>`,
		html.EscapeString(document),
		html.EscapeString(s.company.Name),
		html.EscapeString(s.company.ContactEmail),
		s.company.Website,
		html.EscapeString(s.company.Website),
	)
}
