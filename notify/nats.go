package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/hupe1980/salesmesh/config"
)

// NATSSink publishes finished run reports to a NATS subject so downstream
// automation (CRM sync, archival, follow-up schedulers) can react without
// polling the API.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to the configured NATS server.
func NewNATSSink(cfg config.NATSConfig) (*NATSSink, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("salesmesh-notify"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "salesmesh.runs"
	}

	return &NATSSink{conn: conn, subject: subject}, nil
}

// Name implements Sink.
func (s *NATSSink) Name() string { return "nats" }

// Send publishes the report as JSON on "<subject>.<kind>".
func (s *NATSSink) Send(ctx context.Context, report Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := s.conn.Publish(s.subject+"."+report.Kind, data); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	return s.conn.Flush()
}

// Close drains the connection.
func (s *NATSSink) Close() error {
	s.conn.Close()
	return nil
}
