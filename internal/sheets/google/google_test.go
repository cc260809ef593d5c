package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"zaman/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/nonexistent/key.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AppendEvents(t *testing.T) {
	var got gsheet.ValueRange
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":append") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			t.Errorf("expected RAW input option, got %q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"Telemetry!A2:D3","updatedRows":2}}`))
	})

	ref, err := c.AppendEvents(context.Background(), []core.TelemetryEvent{
		{T: 1760000000000, Event: "chat_opened"},
		{T: 1760000001000, Event: "goal_applied", Payload: json.RawMessage(`{"sum":5}`)},
	})
	if err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	if ref != "Telemetry!A2:D3" {
		t.Errorf("unexpected ref %q", ref)
	}
	if len(got.Values) != 2 {
		t.Fatalf("expected 2 rows sent, got %d", len(got.Values))
	}
	if got.Values[1][2] != "goal_applied" || got.Values[1][3] != `{"sum":5}` {
		t.Errorf("unexpected second row %v", got.Values[1])
	}
}

func TestClient_AppendEvents_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	})
	ref, err := c.AppendEvents(context.Background(), nil)
	if err != nil || ref != "" {
		t.Errorf("expected empty no-op, got %q, %v", ref, err)
	}
}

func TestClient_AppendEvents_Invalid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected for invalid events")
	})
	if _, err := c.AppendEvents(context.Background(), []core.TelemetryEvent{{T: 1}}); err == nil {
		t.Error("expected validation error")
	}
}

func TestClient_AppendEvents_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})
	_, err := c.AppendEvents(context.Background(), []core.TelemetryEvent{{T: 1, Event: "x"}})
	if err == nil || !strings.Contains(err.Error(), "append to sheet Telemetry") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ListEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Telemetry!A1:D3","majorDimension":"ROWS","values":[
			["time","t","event","payload"],
			["2025-10-09T08:53:20Z","1760000000000","chat_opened"],
			["2025-10-09T08:53:21Z","1760000001000","goal_applied","{\"sum\":5}"]
		]}`))
	})

	events, err := c.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Event != "goal_applied" || string(events[1].Payload) != `{"sum":5}` {
		t.Errorf("unexpected event %+v", events[1])
	}
}
