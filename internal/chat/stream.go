package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Event is one chunk of the UI message stream understood by the web client.
type Event struct {
	Type       string          `json:"type"`
	MessageID  string          `json:"messageId,omitempty"`
	ID         string          `json:"id,omitempty"`
	Delta      string          `json:"delta,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`
}

const (
	EventStart          = "start"
	EventStartStep      = "start-step"
	EventTextStart      = "text-start"
	EventTextDelta      = "text-delta"
	EventTextEnd        = "text-end"
	EventToolInput      = "tool-input-available"
	EventToolOutput     = "tool-output-available"
	EventFinishStep     = "finish-step"
	EventError          = "error"
	EventFinish         = "finish"
	uiMessageStreamHead = "x-vercel-ai-ui-message-stream"
)

// Emitter receives the events of one turn in order.
type Emitter interface {
	Emit(Event) error
}

// SSEWriter writes events as server-sent events and flushes after each one.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

var ErrStreamingUnsupported = errors.New("response writer does not support flushing")

func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set(uiMessageStreamHead, "v1")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &SSEWriter{w: w, flusher: f}, nil
}

func (s *SSEWriter) Emit(ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Done terminates the stream.
func (s *SSEWriter) Done() error {
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
