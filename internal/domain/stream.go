package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamIndicatorUpdated = "stream:indicator:updated"
	StreamIndicatorEncoded = "stream:indicator:encoded"
)

// IndicatorUpdatedEvent - входящее событие об обновлении значений индикатора
type IndicatorUpdatedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	IndicatorID string    `json:"indicator_id"`
	Period      string    `json:"period"`
	Levels      []string  `json:"levels,omitempty"`
	Locales     []string  `json:"locales,omitempty"`
}

// Valid проверяет наличие обязательных полей
func (e *IndicatorUpdatedEvent) Valid() bool {
	return e.IndicatorID != "" && e.Period != ""
}

// LevelsOr возвращает уровни события или значения по умолчанию
func (e *IndicatorUpdatedEvent) LevelsOr(def []string) []string {
	if len(e.Levels) > 0 {
		return e.Levels
	}
	return def
}

// LocalesOr возвращает локали события или значения по умолчанию
func (e *IndicatorUpdatedEvent) LocalesOr(def []string) []string {
	if len(e.Locales) > 0 {
		return e.Locales
	}
	return def
}

// EncodingDoneEvent - результат перекодирования одного уровня
type EncodingDoneEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	IndicatorID string    `json:"indicator_id"`
	Period      string    `json:"period"`
	Level       string    `json:"level"`
	Features    int       `json:"features"`
	Error       string    `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
