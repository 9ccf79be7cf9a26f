package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

// Content types for streamed chat responses.
const (
	ContentTypeNDJSON = "application/x-ndjson"
	ContentTypeSSE    = "text/event-stream"
)

// frameWriter delivers chat frames to a client as they are produced.
type frameWriter interface {
	WriteFrame(frame types.StreamFrame) error
	Done() error
}

// newFrameWriter picks SSE when the client asks for text/event-stream and
// newline-delimited JSON otherwise. Headers are set but not yet sent.
func newFrameWriter(w http.ResponseWriter, r *http.Request) (frameWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	if strings.Contains(r.Header.Get("Accept"), ContentTypeSSE) {
		return NewSSEWriter(w, flusher), nil
	}
	return newNDJSONWriter(w, flusher), nil
}

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter, flusher http.Flusher) *SSEWriter {
	w.Header().Set("Content-Type", ContentTypeSSE)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &SSEWriter{w: w, flusher: flusher}
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteFrame sends a message event, or an error event for error frames.
func (s *SSEWriter) WriteFrame(frame types.StreamFrame) error {
	if frame.Error != "" {
		return s.WriteEvent("error", frame)
	}
	return s.WriteEvent("message", frame)
}

// Done sends the completion event.
func (s *SSEWriter) Done() error {
	return s.WriteEvent("done", types.StreamFrame{Done: true})
}

type ndjsonWriter struct {
	enc     *json.Encoder
	flusher http.Flusher
}

func newNDJSONWriter(w http.ResponseWriter, flusher http.Flusher) *ndjsonWriter {
	w.Header().Set("Content-Type", ContentTypeNDJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	return &ndjsonWriter{enc: json.NewEncoder(w), flusher: flusher}
}

// WriteFrame writes one JSON object followed by a newline.
func (n *ndjsonWriter) WriteFrame(frame types.StreamFrame) error {
	if err := n.enc.Encode(frame); err != nil {
		return err
	}
	n.flusher.Flush()
	return nil
}

// Done is a no-op; the end of the body marks the end of the stream.
func (n *ndjsonWriter) Done() error { return nil }
