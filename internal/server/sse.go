package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/contract-review/internal/pipeline"
)

// SSE event names
const (
	EventStep     = "step"
	EventComplete = "complete"
	EventError    = "error"
)

var errStreamClosed = errors.New("event stream closed")

// EventStream writes review progress as Server-Sent Events. Every event gets
// an increasing id. After complete or error no further events are written.
// It is safe for concurrent use.
type EventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	closed  bool
}

// NewEventStream sets the event-stream headers on w
func NewEventStream(w http.ResponseWriter) (*EventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &EventStream{w: w, flusher: flusher, nextID: 1}, nil
}

func (s *EventStream) write(event string, data any, final bool) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.closed = final
	s.flusher.Flush()
	return nil
}

// Progress sends one pipeline progress event
func (s *EventStream) Progress(ev pipeline.ProgressEvent) error {
	return s.write(EventStep, ev, false)
}

// Fail sends the terminal error event with the status the error maps to
func (s *EventStream) Fail(err error) error {
	return s.write(EventError, map[string]any{
		"error":  err.Error(),
		"status": HTTPStatus(err),
	}, true)
}

// Complete sends the terminal event carrying the review payload
func (s *EventStream) Complete(resp ReviewResponse) error {
	return s.write(EventComplete, resp, true)
}
