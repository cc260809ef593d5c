package google

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zaman/internal/core"
)

// Column layout: A time (RFC3339, UTC), B epoch millis, C event, D payload.
func eventRow(ev core.TelemetryEvent) []any {
	payload := ""
	if len(ev.Payload) > 0 {
		payload = string(ev.Payload)
	}
	return []any{
		ev.Time().UTC().Format(time.RFC3339),
		strconv.FormatInt(ev.T, 10),
		ev.Event,
		payload,
	}
}

func parseEventRow(row []any) (core.TelemetryEvent, error) {
	cells := toStrings(row)
	if len(cells) < 3 {
		return core.TelemetryEvent{}, fmt.Errorf("short row: %d cells", len(cells))
	}

	millis, err := strconv.ParseInt(strings.TrimSpace(cells[1]), 10, 64)
	if err != nil {
		return core.TelemetryEvent{}, fmt.Errorf("bad timestamp %q", cells[1])
	}

	ev := core.TelemetryEvent{T: millis, Event: strings.TrimSpace(cells[2])}
	if p := strings.TrimSpace(safeGet(cells, 3)); p != "" {
		ev.Payload = json.RawMessage(p)
	}
	if err := ev.Validate(); err != nil {
		return core.TelemetryEvent{}, err
	}
	return ev, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
