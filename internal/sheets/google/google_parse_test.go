package google

import (
	"encoding/json"
	"testing"

	"zaman/internal/core"
)

func TestEventRowRoundTrip(t *testing.T) {
	ev := core.TelemetryEvent{T: 1760000000000, Event: "goal_applied", Payload: json.RawMessage(`{"sum":1000}`)}

	row := eventRow(ev)
	if len(row) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(row))
	}
	if row[0] != "2025-10-09T08:53:20Z" {
		t.Errorf("unexpected time cell %v", row[0])
	}

	got, err := parseEventRow(row)
	if err != nil {
		t.Fatalf("parseEventRow: %v", err)
	}
	if got.T != ev.T || got.Event != ev.Event || string(got.Payload) != string(ev.Payload) {
		t.Errorf("got %+v, want %+v", got, ev)
	}
}

func TestParseEventRow(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		wantErr bool
	}{
		{"header", []any{"time", "t", "event", "payload"}, true},
		{"short", []any{"2025-10-09T08:53:20Z", "1"}, true},
		{"no payload", []any{"2025-10-09T08:53:20Z", "1760000000000", "chat_opened"}, false},
		{"empty event", []any{"", "1760000000000", " "}, true},
		{"bad payload", []any{"", "1760000000000", "x", "{oops"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEventRow(tt.row)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseEventRow(%v) error = %v, wantErr %v", tt.row, err, tt.wantErr)
			}
		})
	}
}
