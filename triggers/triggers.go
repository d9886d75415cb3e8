// Package triggers holds the static mapping from input events to actions.
//
// A Table is built once from configuration and never modified afterwards,
// so it is safe to share between any number of device listeners.
package triggers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"devicectrl/inputbridge/platform"
	"devicectrl/inputbridge/protocol"
)

// Trigger selects the raw events an entry reacts to. A nil DeviceNames
// matches every device and a nil Value matches every event value.
type Trigger struct {
	DeviceNames []string         `json:"device_names,omitempty" toml:"device_names,omitempty"`
	Key         platform.KeyCode `json:"key" toml:"key"`
	Value       *int32           `json:"value,omitempty" toml:"value,omitempty"`
}

// Matches reports whether an event with code and value from the named device satisfies the trigger
func (t Trigger) Matches(device string, code platform.KeyCode, value int32) bool {
	if t.Key != code {
		return false
	}
	if t.Value != nil && *t.Value != value {
		return false
	}
	if t.DeviceNames != nil && !slices.Contains(t.DeviceNames, device) {
		return false
	}
	return true
}

// Equal compares triggers field by field. Device names are a set, so their
// order and repeats do not matter.
func (t Trigger) Equal(o Trigger) bool {
	if t.Key != o.Key {
		return false
	}
	if (t.Value == nil) != (o.Value == nil) || (t.Value != nil && *t.Value != *o.Value) {
		return false
	}
	if (t.DeviceNames == nil) != (o.DeviceNames == nil) {
		return false
	}
	return slices.Equal(nameSet(t.DeviceNames), nameSet(o.DeviceNames))
}

func nameSet(names []string) []string {
	set := slices.Clone(names)
	slices.Sort(set)
	return slices.Compact(set)
}

func (t Trigger) String() string {
	var b strings.Builder
	b.WriteString(t.Key.String())
	if t.Value != nil {
		fmt.Fprintf(&b, "=%d", *t.Value)
	}
	if t.DeviceNames == nil {
		b.WriteString(" on any device")
	} else {
		fmt.Fprintf(&b, " on %q", t.DeviceNames)
	}
	return b.String()
}

// Entry binds a trigger to the actions it emits, in order
type Entry struct {
	Trigger Trigger           `json:"trigger" toml:"trigger"`
	Actions []protocol.Action `json:"actions" toml:"actions"`
}

// UnmarshalJSON accepts either a [trigger, actions] pair or an object with
// trigger and actions fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("action entry must be [trigger, actions], got %d elements", len(pair))
		}
		var out Entry
		if err := json.Unmarshal(pair[0], &out.Trigger); err != nil {
			return fmt.Errorf("invalid trigger: %w", err)
		}
		if err := json.Unmarshal(pair[1], &out.Actions); err != nil {
			return fmt.Errorf("invalid actions for %s: %w", out.Trigger, err)
		}
		*e = out
		return nil
	}

	type plain Entry
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*e = Entry(out)
	return nil
}

// Table is the ordered, read-only list of entries
type Table struct {
	entries []Entry
}

// NewTable copies entries into a new table
func NewTable(entries []Entry) *Table {
	t := &Table{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		trig := e.Trigger
		trig.DeviceNames = slices.Clone(e.Trigger.DeviceNames)
		if e.Trigger.Value != nil {
			v := *e.Trigger.Value
			trig.Value = &v
		}
		t.entries[i] = Entry{Trigger: trig, Actions: slices.Clone(e.Actions)}
	}
	return t
}

// Len returns the number of entries
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in table order
func (t *Table) Entries() []Entry {
	return slices.Clone(t.entries)
}

// Match returns the actions of every matching entry, concatenated in table
// order. The result is nil when nothing matches or every match is empty.
func (t *Table) Match(device string, code platform.KeyCode, value int32) []protocol.Action {
	var actions []protocol.Action
	for _, e := range t.entries {
		if e.Trigger.Matches(device, code, value) {
			actions = append(actions, e.Actions...)
		}
	}
	return actions
}
