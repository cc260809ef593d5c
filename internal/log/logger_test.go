package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_JSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf, Component: ComponentCatalog})

	logger.Info("catalog loaded", FieldProducts, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentCatalog {
		t.Errorf("component = %v, want %s", rec[FieldComponent], ComponentCatalog)
	}
	if rec[FieldProducts] != float64(3) {
		t.Errorf("products = %v, want 3", rec[FieldProducts])
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record should be written")
	}
}

func TestFromContext_InjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With(FieldRequestID, "req-1")
	ctx := context.WithValue(context.Background(), LoggerContextKey, logger)

	FromContext(ctx).Info("inside")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("expected request id in output, got %q", buf.String())
	}
}

func TestStructuredLogger_LogHTTPEnd(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	r := httptest.NewRequest(http.MethodPost, "/api/chat?x=1", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusBadGateway, 12, "10.0.0.1")

	out := buf.String()
	for _, want := range []string{"level=ERROR", "status_code=502", "client_ip=10.0.0.1", "component=http"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != ComponentApp {
		t.Errorf("FromContext without logger = %+v", l)
	}
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))

	sl.LogError(context.Background(), "store failed", errors.New("disk full"), ComponentStorage, OpAppend, nil)

	out := buf.String()
	for _, want := range []string{"component=storage", "operation=append", `error="disk full"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}
