package sheets

import (
	"context"

	"zaman/internal/core"
)

// Ports for outbound adapters.
type (
	// TelemetryWriter appends telemetry events to an export destination.
	TelemetryWriter interface {
		// AppendEvents writes events in order and returns a reference to the
		// written range.
		AppendEvents(ctx context.Context, events []core.TelemetryEvent) (ref string, err error)
	}

	// TelemetryReader reads back exported events.
	TelemetryReader interface {
		ListEvents(ctx context.Context) ([]core.TelemetryEvent, error)
	}
)
