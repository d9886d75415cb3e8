package platform

import "testing"

func TestIsDeviceNode(t *testing.T) {
	cases := map[string]bool{
		"/dev/input/event3": true,
		"event12":           true,
		"/dev/input/mice":   false,
		"/dev/input/mouse0": false,
		"/dev/input/js0":    false,
		"/dev/input/by-id":  false,
	}
	for path, want := range cases {
		if got := IsDeviceNode(path); got != want {
			t.Fatalf("%s: expected %v, got %v", path, want, got)
		}
	}
}

func TestEventPressed(t *testing.T) {
	cases := []struct {
		ev   Event
		want bool
	}{
		{Event{Type: EvKey, Code: 30, Value: 1}, true},
		{Event{Type: EvKey, Code: 30, Value: 0}, false},
		{Event{Type: EvKey, Code: 30, Value: 2}, false},
		{Event{Type: EvRel, Code: 8, Value: 1}, false},
		{Event{Type: EvSyn, Value: 1}, false},
	}
	for _, tc := range cases {
		if got := tc.ev.Pressed(); got != tc.want {
			t.Fatalf("%+v: expected %v, got %v", tc.ev, tc.want, got)
		}
	}
}
