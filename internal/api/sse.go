// ABOUTME: SSE event type and line-oriented parsing for the chat stream
// ABOUTME: Only "data: " lines carry payloads; malformed JSON lines are skipped

package api

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Event types the server emits on the wire. EventError is also
// synthesized locally for transport failures so callers consume every
// failure mode through the one event channel.
const (
	EventPlain        = "plain"
	EventImage        = "image"
	EventRecord       = "record"
	EventFile         = "file"
	EventEnd          = "end"
	EventComplete     = "complete"
	EventBreak        = "break"
	EventMessageSaved = "message_saved"
	EventError        = "error"
)

// Chain types distinguishing regular output from reasoning output.
const (
	ChainNormal    = "normal"
	ChainReasoning = "reasoning"
)

// SSEEvent is one parsed line of the streaming response.
type SSEEvent struct {
	// Type is the event type from the wire, EventPlain when absent.
	Type string

	// Data is the event payload text.
	Data string

	// Streaming marks incremental chunks of a response still being
	// generated.
	Streaming bool

	// ChainType is ChainNormal or ChainReasoning.
	ChainType string

	// Raw is the full decoded JSON object for callers needing fields
	// beyond the ones lifted above. Nil for locally synthesized events.
	Raw map[string]any
}

// errorEvent builds a locally synthesized error event.
func errorEvent(msg string) SSEEvent {
	return SSEEvent{Type: EventError, Data: msg, ChainType: ChainNormal}
}

// newLineScanner wraps a stream body in a line scanner sized for large
// events.
func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), streamLineLimit)
	return s
}

// sseDataPrefix marks payload-bearing lines. Everything else on the
// stream (comments, keep-alives, event/id fields) is ignored, never an
// error.
const sseDataPrefix = "data: "

// parseSSELine parses one line of the stream. The second return is
// false when the line carries no event: empty lines, non-data lines,
// and lines whose JSON is malformed. A garbled line must not abort an
// otherwise healthy stream, so malformed JSON is swallowed here.
func parseSSELine(line string) (SSEEvent, bool) {
	line = strings.TrimPrefix(line, "\ufeff")
	if !strings.HasPrefix(line, sseDataPrefix) {
		return SSEEvent{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line[len(sseDataPrefix):]), &raw); err != nil {
		return SSEEvent{}, false
	}

	ev := SSEEvent{
		Type:      EventPlain,
		ChainType: ChainNormal,
		Raw:       raw,
	}
	if t, ok := raw["type"].(string); ok && t != "" {
		ev.Type = t
	}
	if d, ok := raw["data"].(string); ok {
		ev.Data = d
	}
	if s, ok := raw["streaming"].(bool); ok {
		ev.Streaming = s
	}
	if ct, ok := raw["chain_type"].(string); ok && ct != "" {
		ev.ChainType = ct
	}
	return ev, true
}
