package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateEvent(t *testing.T) {
	ev, err := ParseTemplateEvent([]byte(`{"event":"template.updated","templateId":"tpl-1","stepCount":4,"occurredAt":"2024-05-04T12:00:00Z"}`))

	require.NoError(t, err)
	assert.Equal(t, EventTemplateUpdated, ev.Event)
	assert.Equal(t, "tpl-1", ev.TemplateID)
	assert.Equal(t, 4, ev.StepCount)
	assert.True(t, ev.OccurredAt.Equal(time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)))
}

func TestParseTemplateEventRejectsIncompletePayloads(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{`,
		"no event":      `{"templateId":"tpl-1"}`,
		"no templateId": `{"event":"template.created"}`,
	} {
		_, err := ParseTemplateEvent([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestNewTemplateEventNormalizesToUTC(t *testing.T) {
	at := time.Date(2024, 5, 4, 15, 0, 0, 0, time.FixedZone("EAT", 3*60*60))

	ev := newTemplateEvent(EventTemplateCreated, validTemplate(), at)

	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
	assert.Equal(t, 12, ev.OccurredAt.Hour())
	assert.Equal(t, 1, ev.StepCount)
	assert.Equal(t, LicenseMillers, ev.LicenseType)
}
