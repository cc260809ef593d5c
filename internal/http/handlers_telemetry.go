package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"zaman/internal/core"
	"zaman/internal/log"
)

type trackRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	// DedupeKey records the event at most once per key for the lifetime
	// of the process.
	DedupeKey string `json:"dedupeKey,omitempty"`
}

type trackResponse struct {
	Recorded bool                 `json:"recorded"`
	Event    *core.TelemetryEvent `json:"event,omitempty"`
}

func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req trackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	req.Event = strings.TrimSpace(req.Event)
	if string(req.Payload) == "null" {
		req.Payload = nil
	}
	// Validate up front so bad input is a 422, not a storage error.
	candidate := core.TelemetryEvent{Event: req.Event, Payload: req.Payload}
	if err := candidate.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	var (
		resp trackResponse
		err  error
	)
	if key := strings.TrimSpace(req.DedupeKey); key != "" {
		resp.Recorded, err = s.deps.Telemetry.Once(ctx, s.deps.Seen, key, req.Event, req.Payload)
	} else {
		var ev core.TelemetryEvent
		ev, err = s.deps.Telemetry.Track(ctx, req.Event, req.Payload)
		if err == nil {
			resp.Recorded, resp.Event = true, &ev
		}
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to record telemetry",
			log.FieldEvent, req.Event,
			log.FieldError, err)
		captureError(r, err)
		ErrorResponse(http.StatusServiceUnavailable, "storage_unavailable", msgStorageUnavailable).Write(w)
		return
	}

	status := http.StatusCreated
	if resp.Recorded {
		s.appMetrics.eventsTracked.Add(1)
	} else {
		status = http.StatusOK
	}
	NewJSONResponse().Status(status).Body(resp).Write(w)
}

// handleListEvents returns the telemetry log, oldest first. The optional
// limit query parameter keeps only the newest entries.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := queryInt64(r, "limit", 0)
	if err != nil || limit < 0 {
		BadRequestError("limit must be a non-negative integer").Write(w)
		return
	}

	events, err := s.deps.Telemetry.List(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to list telemetry", log.FieldError, err, log.FieldOperation, log.OpList)
		ErrorResponse(http.StatusServiceUnavailable, "storage_unavailable", msgStorageUnavailable).Write(w)
		return
	}
	if events == nil {
		events = []core.TelemetryEvent{}
	}
	total := len(events)
	if limit > 0 && int64(total) > limit {
		events = events[total-int(limit):]
	}
	OK(map[string]any{"events": events, "total": total}).Write(w)
}
