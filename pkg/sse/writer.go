package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Writer emits SSE events on an http.ResponseWriter. Every write is flushed
// immediately so callers see events as they happen rather than when a buffer
// fills.
type Writer struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// NewWriter wraps an http.ResponseWriter for SSE output.
func NewWriter(w http.ResponseWriter) *Writer {
	return &Writer{w: w, rc: http.NewResponseController(w)}
}

// WriteEvent frames payload as
//
//	event: <name>\n
//	data: <minified-json>\n
//	\n
//
// and flushes it to the caller.
func (s *Writer) WriteEvent(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", name, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("writing %s event: %w", name, err)
	}
	return s.flush()
}

// WriteRaw forwards bytes unchanged and flushes. Used by the passthrough
// streaming path where the upstream already speaks the caller's framing.
func (s *Writer) WriteRaw(b []byte) error {
	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("writing raw chunk: %w", err)
	}
	return s.flush()
}

func (s *Writer) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("flushing: %w", err)
	}
	return nil
}
