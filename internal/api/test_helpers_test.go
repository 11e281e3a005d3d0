// ABOUTME: Shared test helpers: httptest-backed clients and envelope writers
// ABOUTME: Used by the auth, session, file, and streaming tests

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient spins up an httptest server with the given handler and
// returns a client pointed at it. Both are torn down with the test.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(srv.URL, Options{})
	t.Cleanup(client.Close)
	return client, srv
}

// writeEnvelope writes a {"status","data","message"} response body.
func writeEnvelope(t *testing.T, w http.ResponseWriter, status string, data any, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{"status": status}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encoding envelope: %v", err)
	}
}

// collectEvents drains an event channel into a slice.
func collectEvents(events <-chan SSEEvent) []SSEEvent {
	var out []SSEEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}
