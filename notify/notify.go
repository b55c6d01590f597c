package notify

import (
	"context"
	"io"

	"github.com/hupe1980/salesmesh/config"
	"github.com/hupe1980/salesmesh/logging"
)

// Report is the notification payload of one finished pipeline run.
type Report struct {
	RunID    string `json:"run_id"`
	Kind     string `json:"kind"`
	Company  string `json:"company"`
	Subject  string `json:"subject"`
	Summary  string `json:"summary"`
	Document string `json:"document"`
}

// Sink delivers a report to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, report Report) error
}

// Delivery records the outcome of one sink for one report.
type Delivery struct {
	Sink    string `json:"sink"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Fanout sends each report to every configured sink. Failures are logged and
// reported back per sink, never propagated.
type Fanout struct {
	sinks  []Sink
	logger logging.Logger
}

// NewFanout builds a fanout over the given sinks.
func NewFanout(logger logging.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Fanout{sinks: sinks, logger: logger}
}

// FromConfig assembles a fanout with every sink the configuration enables.
// Sinks that fail to initialize are skipped with a warning so one
// misconfigured integration cannot take the others down.
func FromConfig(cfg *config.Config, logger logging.Logger) *Fanout {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	var sinks []Sink

	if cfg.Notify.Slack.WebhookURL != "" {
		sinks = append(sinks, NewSlackSink(cfg.Notify.Slack))
	}
	if cfg.Notify.Email.SendGridAPIKey != "" && cfg.Notify.Email.To != "" {
		sinks = append(sinks, NewEmailSink(cfg.Notify.Email, cfg.Company))
	}
	if cfg.Notify.Telegram.Token != "" && cfg.Notify.Telegram.ChatID != 0 {
		sink, err := NewTelegramSink(cfg.Notify.Telegram)
		if err != nil {
			logger.Warn("telegram sink disabled: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.Notify.NATS.URL != "" {
		sink, err := NewNATSSink(cfg.Notify.NATS)
		if err != nil {
			logger.Warn("nats sink disabled: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}

	return NewFanout(logger, sinks...)
}

// Send delivers the report to every sink and returns one delivery record per
// sink, in registration order.
func (f *Fanout) Send(ctx context.Context, report Report) []Delivery {
	deliveries := make([]Delivery, 0, len(f.sinks))

	for _, sink := range f.sinks {
		d := Delivery{Sink: sink.Name(), Success: true}
		if err := sink.Send(ctx, report); err != nil {
			d.Success = false
			d.Error = err.Error()
			f.logger.Warn("notification via %s failed: %v", sink.Name(), err)
		} else {
			f.logger.Debug("notification via %s delivered for run %s", sink.Name(), report.RunID)
		}
		deliveries = append(deliveries, d)
	}

	return deliveries
}

// Sinks returns the names of the registered sinks.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, sink := range f.sinks {
		names[i] = sink.Name()
	}
	return names
}

// Close releases sinks that hold connections.
func (f *Fanout) Close() {
	for _, sink := range f.sinks {
		if closer, ok := sink.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
