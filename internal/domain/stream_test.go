package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIndicatorUpdatedEvent_Valid(t *testing.T) {
	tests := []struct {
		name     string
		event    IndicatorUpdatedEvent
		expected bool
	}{
		{
			name:     "indicator and period present",
			event:    IndicatorUpdatedEvent{EventID: uuid.New(), IndicatorID: "unemployment", Period: "2023"},
			expected: true,
		},
		{
			name:     "missing period",
			event:    IndicatorUpdatedEvent{EventID: uuid.New(), IndicatorID: "unemployment"},
			expected: false,
		},
		{
			name:     "missing indicator",
			event:    IndicatorUpdatedEvent{EventID: uuid.New(), Period: "2023"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Valid())
		})
	}
}

func TestIndicatorUpdatedEvent_Defaults(t *testing.T) {
	event := IndicatorUpdatedEvent{IndicatorID: "unemployment", Period: "2023"}
	assert.Equal(t, []string{"region"}, event.LevelsOr([]string{"region"}))
	assert.Equal(t, []string{"en"}, event.LocalesOr([]string{"en"}))

	event.Levels = []string{"department", "commune"}
	event.Locales = []string{"fr"}
	assert.Equal(t, []string{"department", "commune"}, event.LevelsOr([]string{"region"}))
	assert.Equal(t, []string{"fr"}, event.LocalesOr([]string{"en"}))
}
