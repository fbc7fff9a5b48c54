package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Template lifecycle event names.
const (
	EventTemplateCreated = "template.created"
	EventTemplateUpdated = "template.updated"
	EventTemplateDeleted = "template.deleted"
)

// EventPublisher encodes and sends a keyed event. *mq.Producer satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any, headers map[string]string) error
}

// TemplateEvent is published after a template is created, updated or deleted.
type TemplateEvent struct {
	Event       string      `json:"event"`
	TemplateID  string      `json:"templateId"`
	Name        string      `json:"name,omitempty"`
	LicenseType LicenseType `json:"licenseType,omitempty"`
	StepCount   int         `json:"stepCount"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

func newTemplateEvent(event string, t Template, at time.Time) TemplateEvent {
	return TemplateEvent{
		Event:       event,
		TemplateID:  t.ID,
		Name:        t.Name,
		LicenseType: t.LicenseType,
		StepCount:   len(t.Steps),
		OccurredAt:  at.UTC(),
	}
}

// ParseTemplateEvent decodes a published event.
func ParseTemplateEvent(data []byte) (TemplateEvent, error) {
	var ev TemplateEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return TemplateEvent{}, fmt.Errorf("decode template event: %w", err)
	}
	if ev.Event == "" || ev.TemplateID == "" {
		return TemplateEvent{}, fmt.Errorf("decode template event: missing event or templateId")
	}
	return ev, nil
}
