package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"zaman/internal/core"
)

// TelemetryMessage carries one recorded telemetry event to the export
// worker. ID lets consumers drop redeliveries.
type TelemetryMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	T         int64           `json:"t"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTelemetryMessage wraps ev with a fresh ID and the publish time.
func NewTelemetryMessage(ev core.TelemetryEvent) *TelemetryMessage {
	return &TelemetryMessage{
		ID:        uuid.NewString(),
		Event:     ev.Event,
		Payload:   ev.Payload,
		T:         ev.T,
		Timestamp: time.Now(),
	}
}

// TelemetryEvent returns the event as it was stored.
func (m *TelemetryMessage) TelemetryEvent() core.TelemetryEvent {
	return core.TelemetryEvent{T: m.T, Event: m.Event, Payload: m.Payload}
}

func (m *TelemetryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TelemetryMessageFromJSON(data []byte) (*TelemetryMessage, error) {
	var msg TelemetryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
