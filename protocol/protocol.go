// Package protocol defines the messages exchanged with the device control
// server. Messages are JSON, one per line, using externally tagged unions:
// a variant is an object with a single key naming it.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// UpdateRequest asks the server to apply a change to one device. The
// payload is a JSON object forwarded verbatim; its fields belong to the
// server, so only device_id is ever read here.
type UpdateRequest json.RawMessage

// ParseUpdate checks that data is a JSON object and keeps a copy of it
func ParseUpdate(data []byte) (UpdateRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("update request must be an object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("update request must be an object")
	}
	return UpdateRequest(bytes.Clone(data)), nil
}

// DeviceID returns the device_id field, or "" when it is missing or not a string
func (r UpdateRequest) DeviceID() string {
	var head struct {
		DeviceID any `json:"device_id"`
	}
	if json.Unmarshal(r, &head) != nil {
		return ""
	}
	id, _ := head.DeviceID.(string)
	return id
}

// MarshalJSON writes the payload unchanged
func (r UpdateRequest) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("{}"), nil
	}
	return r, nil
}

func (r *UpdateRequest) UnmarshalJSON(data []byte) error {
	req, err := ParseUpdate(data)
	if err != nil {
		return err
	}
	*r = req
	return nil
}

// ActionKind selects the variant of an Action
type ActionKind int

const (
	ActionUpdate ActionKind = iota + 1
	ActionActivateScene
)

func (k ActionKind) String() string {
	switch k {
	case ActionUpdate:
		return "update"
	case ActionActivateScene:
		return "activate_scene"
	default:
		return "unknown"
	}
}

// Action is an outbound command produced by a matched trigger
type Action struct {
	Kind    ActionKind
	Update  UpdateRequest // set when Kind == ActionUpdate
	SceneID string        // set when Kind == ActionActivateScene
}

// NewUpdate wraps an update request as an Action
func NewUpdate(req UpdateRequest) Action {
	return Action{Kind: ActionUpdate, Update: req}
}

// NewActivateScene builds a scene activation Action
func NewActivateScene(sceneID string) Action {
	return Action{Kind: ActionActivateScene, SceneID: sceneID}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionUpdate:
		if id := a.Update.DeviceID(); id != "" {
			return "update " + id
		}
		return "update"
	case ActionActivateScene:
		return "scene " + a.SceneID
	default:
		return "invalid action"
	}
}

// Equal reports whether two actions carry the same command
func (a Action) Equal(b Action) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ActionUpdate:
		return jsonEqual(a.Update, b.Update)
	case ActionActivateScene:
		return a.SceneID == b.SceneID
	default:
		return true
	}
}

// jsonEqual compares two payloads as decoded values, ignoring layout and key order
func jsonEqual(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return bytes.Equal(a, b)
	}
	return reflect.DeepEqual(va, vb)
}

// MarshalJSON writes the configuration form: {"Update": {...}} or {"ActivateScene": "id"}
func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionUpdate:
		return json.Marshal(map[string]UpdateRequest{"Update": a.Update})
	case ActionActivateScene:
		return json.Marshal(map[string]string{"ActivateScene": a.SceneID})
	default:
		return nil, fmt.Errorf("cannot encode action of kind %d", a.Kind)
	}
}

// UnmarshalJSON accepts the tagged forms and, for older configurations, a
// bare update request object.
func (a *Action) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("action must be an object: %w", err)
	}

	if raw, ok := fields["Update"]; ok && len(fields) == 1 {
		req, err := ParseUpdate(raw)
		if err != nil {
			return fmt.Errorf("invalid update action: %w", err)
		}
		*a = NewUpdate(req)
		return nil
	}

	if raw, ok := fields["ActivateScene"]; ok && len(fields) == 1 {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("invalid scene action: %w", err)
		}
		if id == "" {
			return errors.New("scene action requires an id")
		}
		*a = NewActivateScene(id)
		return nil
	}

	if _, ok := fields["device_id"]; ok {
		req, err := ParseUpdate(data)
		if err != nil {
			return fmt.Errorf("invalid update request: %w", err)
		}
		*a = NewUpdate(req)
		return nil
	}

	return fmt.Errorf("unknown action %s", data)
}

// UnmarshalTOML decodes an action from a TOML inline table by way of its JSON form
func (a *Action) UnmarshalTOML(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}
	return a.UnmarshalJSON(data)
}
