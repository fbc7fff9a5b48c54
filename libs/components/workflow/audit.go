package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ksb/portal/libs/shared/mq"
	"github.com/ksb/portal/libs/shared/observability"
)

// AuditWorker consumes template lifecycle events and writes one audit log
// line per event.
type AuditWorker struct {
	logger *slog.Logger
}

// NewAuditWorker constructs an audit worker. A nil logger uses the default.
func NewAuditWorker(logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{logger: logger.With("module", "template-audit")}
}

// HandleMessage decodes and records one event from Kafka. Malformed
// messages are returned as errors; the consumer logs them and moves on.
func (w *AuditWorker) HandleMessage(ctx context.Context, msg mq.Message) error {
	if w == nil {
		return fmt.Errorf("template audit worker not initialised")
	}

	ev, err := ParseTemplateEvent(msg.Value)
	if err != nil {
		observability.TemplateEvents.WithLabelValues("invalid").Inc()
		return err
	}
	if header := msg.Headers["event"]; header != "" && header != ev.Event {
		w.logger.Warn("event header does not match payload", "header", header, "event", ev.Event)
	}

	observability.TemplateEvents.WithLabelValues(ev.Event).Inc()
	w.logger.InfoContext(ctx, "template audit",
		"event", ev.Event,
		"templateId", ev.TemplateID,
		"name", ev.Name,
		"licenseType", ev.LicenseType,
		"steps", ev.StepCount,
		"occurredAt", ev.OccurredAt,
	)
	return nil
}
