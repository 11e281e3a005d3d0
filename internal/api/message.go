// ABOUTME: Outgoing message payloads: plain text or a list of typed parts
// ABOUTME: Marshals to the backend's string-or-array message field

package api

import "encoding/json"

// MessagePart is one segment of a structured message.
type MessagePart struct {
	Type         string `json:"type"`
	Text         string `json:"text,omitempty"`
	AttachmentID string `json:"attachment_id,omitempty"`
}

// Message is the outgoing message payload. The wire field accepts
// either a bare string or a list of typed parts; Message is the tagged
// union covering both.
type Message struct {
	text  string
	parts []MessagePart
}

// TextMessage wraps plain text.
func TextMessage(text string) Message {
	return Message{text: text}
}

// PartsMessage wraps a list of typed parts.
func PartsMessage(parts ...MessagePart) Message {
	return Message{parts: parts}
}

// MarshalJSON encodes the part list when present, the bare string
// otherwise.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.parts != nil {
		return json.Marshal(m.parts)
	}
	return json.Marshal(m.text)
}
