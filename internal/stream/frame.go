// Package stream is the client side of the real-time agent channel: one
// WebSocket per session carrying user entries out and acknowledgement,
// token and audio frames in.
package stream

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Wire discriminants.
const (
	TypeAck      = "ACK"
	TypeToken    = "TOKEN"
	TypeAudio    = "AUDIO"
	TypeNewEntry = "NEW_ENTRY"
)

// Frame is an inbound frame: Ack, Token or Audio.
type Frame interface {
	frameType() string
}

// Ack is informational; it never changes state.
type Ack struct {
	Status string
}

// Token is an incremental piece of the assistant's reply.
type Token struct {
	Text string
}

// Audio is the decoded terminal audio payload of a reply.
type Audio struct {
	Data []byte
}

func (Ack) frameType() string   { return TypeAck }
func (Token) frameType() string { return TypeToken }
func (Audio) frameType() string { return TypeAudio }

// ProtocolError describes an inbound frame that could not be classified.
type ProtocolError struct {
	Reason string
	Raw    []byte
}

func (e *ProtocolError) Error() string {
	return "protocol violation: " + e.Reason
}

type envelope struct {
	Type    string          `json:"type"`
	Status  json.RawMessage `json:"status"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeFrame classifies a raw inbound message.
func DecodeFrame(data []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("malformed frame: %v", err), Raw: data}
	}

	switch env.Type {
	case TypeAck:
		return Ack{Status: rawString(env.Status)}, nil
	case TypeToken:
		var text string
		if err := json.Unmarshal(env.Payload, &text); err != nil {
			return nil, &ProtocolError{Reason: "token payload is not a string", Raw: data}
		}
		return Token{Text: text}, nil
	case TypeAudio:
		var encoded string
		if err := json.Unmarshal(env.Payload, &encoded); err != nil {
			return nil, &ProtocolError{Reason: "audio payload is not a string", Raw: data}
		}
		audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return nil, &ProtocolError{Reason: fmt.Sprintf("audio payload is not base64: %v", err), Raw: data}
		}
		return Audio{Data: audio}, nil
	case "":
		return nil, &ProtocolError{Reason: "frame has no type", Raw: data}
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown frame type %q", env.Type), Raw: data}
	}
}

// rawString returns a JSON string's value, or the raw JSON for other kinds.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

type newEntry struct {
	Type    string          `json:"type"`
	Payload newEntryPayload `json:"payload"`
}

type newEntryPayload struct {
	RawText string `json:"raw_text"`
}

// EncodeNewEntry builds the outbound frame carrying a user message.
func EncodeNewEntry(text string) ([]byte, error) {
	return json.Marshal(newEntry{Type: TypeNewEntry, Payload: newEntryPayload{RawText: text}})
}
