package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/placement-engine/internal/types"
)

// streamWriter frames live search deliveries as Server-Sent Events: result
// sets as "results" events, non-fatal failures as "error" events.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newStreamWriter prepares the response for event streaming. It fails when
// the underlying writer cannot flush incrementally.
func newStreamWriter(w http.ResponseWriter) (*streamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &streamWriter{w: w, flusher: flusher}, nil
}

// writeResults emits one recomputed result set.
func (s *streamWriter) writeResults(rs *types.ResultSet) error {
	return s.writeEvent("results", rs)
}

// writeError emits a failure event, keeping the stream open.
func (s *streamWriter) writeError(message string) {
	s.writeEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

func (s *streamWriter) writeEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
