package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ServerBoundMessage is the envelope for every line sent to the server.
// Exactly one field is set.
type ServerBoundMessage struct {
	UpdateRequest *UpdateRequest `json:"UpdateRequest,omitempty"`
	ActivateScene *string        `json:"ActivateScene,omitempty"`
}

// Envelope wraps an action for the wire
func Envelope(a Action) (ServerBoundMessage, error) {
	switch a.Kind {
	case ActionUpdate:
		req := a.Update
		return ServerBoundMessage{UpdateRequest: &req}, nil
	case ActionActivateScene:
		id := a.SceneID
		return ServerBoundMessage{ActivateScene: &id}, nil
	default:
		return ServerBoundMessage{}, fmt.Errorf("cannot send action of kind %d", a.Kind)
	}
}

// Action unwraps the envelope
func (m ServerBoundMessage) Action() (Action, error) {
	switch {
	case m.UpdateRequest != nil && m.ActivateScene == nil:
		return NewUpdate(*m.UpdateRequest), nil
	case m.ActivateScene != nil && m.UpdateRequest == nil:
		return NewActivateScene(*m.ActivateScene), nil
	default:
		return Action{}, errors.New("envelope must carry exactly one message")
	}
}

// EncodeLine serializes an action as one newline-terminated record
func EncodeLine(a Action) ([]byte, error) {
	msg, err := Envelope(a)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", a, err)
	}
	return append(b, '\n'), nil
}

// DecodeLine parses one server-bound record, with or without its terminator
func DecodeLine(line []byte) (ServerBoundMessage, error) {
	var msg ServerBoundMessage
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSuffix(line, []byte("\n"))))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		return ServerBoundMessage{}, fmt.Errorf("failed to decode message: %w", err)
	}
	if _, err := msg.Action(); err != nil {
		return ServerBoundMessage{}, err
	}
	return msg, nil
}

// ClientBoundMessage is a message received from the server. Only the
// variant tag is interpreted; the payload is kept raw.
type ClientBoundMessage struct {
	Type    string
	Payload json.RawMessage
}

// ParseClientBound decodes an inbound line. Unit variants arrive as a bare
// JSON string, data variants as a single-key object.
func ParseClientBound(line []byte) (ClientBoundMessage, error) {
	line = bytes.TrimSpace(line)

	var tag string
	if err := json.Unmarshal(line, &tag); err == nil {
		return ClientBoundMessage{Type: tag}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return ClientBoundMessage{}, fmt.Errorf("invalid server message: %w", err)
	}
	if len(fields) != 1 {
		return ClientBoundMessage{}, fmt.Errorf("server message has %d tags, want 1", len(fields))
	}
	for k, v := range fields {
		return ClientBoundMessage{Type: k, Payload: v}, nil
	}
	return ClientBoundMessage{}, nil
}
