package triggers

import (
	"encoding/json"
	"testing"

	"devicectrl/inputbridge/platform"
	"devicectrl/inputbridge/protocol"
)

const (
	keyA  = platform.KeyCode(30)
	keyF1 = platform.KeyCode(59)
)

func intPtr(v int32) *int32 { return &v }

func scenes(ids ...string) []protocol.Action {
	out := make([]protocol.Action, 0, len(ids))
	for _, id := range ids {
		out = append(out, protocol.NewActivateScene(id))
	}
	return out
}

func sameActions(t *testing.T, got, want []protocol.Action) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d actions, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("action %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTriggerMatches(t *testing.T) {
	cases := []struct {
		name    string
		trigger Trigger
		device  string
		code    platform.KeyCode
		value   int32
		want    bool
	}{
		{"any device", Trigger{Key: keyA}, "whatever", keyA, 1, true},
		{"other key", Trigger{Key: keyA}, "kbd", keyF1, 1, false},
		{"listed device", Trigger{Key: keyA, DeviceNames: []string{"kbd", "remote"}}, "remote", keyA, 1, true},
		{"unlisted device", Trigger{Key: keyA, DeviceNames: []string{"kbd"}}, "remote", keyA, 1, false},
		{"empty device list", Trigger{Key: keyA, DeviceNames: []string{}}, "kbd", keyA, 1, false},
		{"value equal", Trigger{Key: keyA, Value: intPtr(1)}, "kbd", keyA, 1, true},
		{"value differs", Trigger{Key: keyA, Value: intPtr(2)}, "kbd", keyA, 1, false},
	}
	for _, tc := range cases {
		if got := tc.trigger.Matches(tc.device, tc.code, tc.value); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTriggerEqual(t *testing.T) {
	a := Trigger{Key: keyA, DeviceNames: []string{"kbd"}, Value: intPtr(1)}
	b := Trigger{Key: keyA, DeviceNames: []string{"kbd"}, Value: intPtr(1)}
	if !a.Equal(b) {
		t.Fatalf("expected equal triggers")
	}
	if a.Equal(Trigger{Key: keyA, DeviceNames: []string{"kbd"}}) {
		t.Fatalf("nil value compared equal to set value")
	}
	if (Trigger{Key: keyA}).Equal(Trigger{Key: keyA, DeviceNames: []string{}}) {
		t.Fatalf("any-device compared equal to no-device")
	}
}

func TestTriggerEqualIgnoresDeviceOrder(t *testing.T) {
	a := Trigger{Key: keyA, DeviceNames: []string{"remote", "kbd"}}
	if !a.Equal(Trigger{Key: keyA, DeviceNames: []string{"kbd", "remote"}}) {
		t.Fatalf("reordered device names compared unequal")
	}
	if !a.Equal(Trigger{Key: keyA, DeviceNames: []string{"kbd", "remote", "kbd"}}) {
		t.Fatalf("repeated device name compared unequal")
	}
	if a.Equal(Trigger{Key: keyA, DeviceNames: []string{"kbd", "mouse"}}) {
		t.Fatalf("different device names compared equal")
	}
	if a.DeviceNames[0] != "remote" {
		t.Fatalf("Equal reordered the caller's slice: %v", a.DeviceNames)
	}
}

func TestTableMatchConcatenatesInOrder(t *testing.T) {
	table := NewTable([]Entry{
		{Trigger: Trigger{Key: keyA}, Actions: scenes("first", "second")},
		{Trigger: Trigger{Key: keyF1}, Actions: scenes("unrelated")},
		{Trigger: Trigger{Key: keyA, DeviceNames: []string{"kbd"}}, Actions: scenes("third")},
	})

	sameActions(t, table.Match("kbd", keyA, 1), scenes("first", "second", "third"))
	sameActions(t, table.Match("remote", keyA, 1), scenes("first", "second"))
}

func TestTableMatchEmptyActions(t *testing.T) {
	table := NewTable([]Entry{{Trigger: Trigger{Key: keyA}}})
	if got := table.Match("kbd", keyA, 1); len(got) != 0 {
		t.Fatalf("expected no actions, got %v", got)
	}
}

func TestNewTableCopiesEntries(t *testing.T) {
	names := []string{"kbd"}
	entries := []Entry{{Trigger: Trigger{Key: keyA, DeviceNames: names}, Actions: scenes("x")}}
	table := NewTable(entries)

	names[0] = "changed"
	entries[0].Actions[0] = protocol.NewActivateScene("changed")

	sameActions(t, table.Match("kbd", keyA, 1), scenes("x"))
}

func TestEntryUnmarshalJSON(t *testing.T) {
	doc := `[
		[{"device_names": ["keyboard-A"], "key": "KEY_A", "value": 1}, [{"ActivateScene": "movie-mode"}]],
		{"trigger": {"key": "59"}, "actions": [{"Update": {"device_id": "lamp", "change": {"power": true}}}]},
		[{"key": "KEY_F1"}, []]
	]`
	var entries []Entry
	if err := json.Unmarshal([]byte(doc), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := Trigger{Key: keyA, DeviceNames: []string{"keyboard-A"}, Value: intPtr(1)}
	if !entries[0].Trigger.Equal(want) {
		t.Fatalf("expected %v, got %v", want, entries[0].Trigger)
	}
	sameActions(t, entries[0].Actions, scenes("movie-mode"))

	if entries[1].Trigger.Key != keyF1 || entries[1].Trigger.DeviceNames != nil || entries[1].Trigger.Value != nil {
		t.Fatalf("unexpected trigger %+v", entries[1].Trigger)
	}
	if len(entries[1].Actions) != 1 || entries[1].Actions[0].Kind != protocol.ActionUpdate {
		t.Fatalf("unexpected actions %v", entries[1].Actions)
	}
	if len(entries[2].Actions) != 0 {
		t.Fatalf("expected empty action list, got %v", entries[2].Actions)
	}
}

func TestEntryUnmarshalJSONErrors(t *testing.T) {
	for _, in := range []string{
		`[{"key": "KEY_A"}]`,
		`[{"key": "KEY_BOGUS"}, []]`,
		`[{"key": "KEY_A"}, [{"Dance": 1}]]`,
	} {
		var e Entry
		if err := json.Unmarshal([]byte(in), &e); err == nil {
			t.Fatalf("%s: expected error", in)
		}
	}
}
