package devices

import (
	"testing"
	"time"

	"devicectrl/inputbridge/outbound"
	"devicectrl/inputbridge/platform/platformtest"
	"devicectrl/inputbridge/protocol"
	"devicectrl/inputbridge/triggers"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistrySpawnAndRelease(t *testing.T) {
	table := triggers.NewTable([]triggers.Entry{
		{Trigger: triggers.Trigger{Key: keyK1}, Actions: []protocol.Action{scene("x")}},
	})
	q := outbound.New(8)
	root := q.Sender()
	defer root.Close()
	reg := NewRegistry(table, root)

	dev := platformtest.NewFakeDevice("/dev/input/event3", "remote")
	if !reg.Spawn(dev) {
		t.Fatalf("first spawn refused")
	}
	if !reg.Active("/dev/input/event3") {
		t.Fatalf("device not registered")
	}

	dup := platformtest.NewFakeDevice("/dev/input/event3", "remote")
	if reg.Spawn(dup) {
		t.Fatalf("second listener for the same path accepted")
	}
	if !dup.Closed() {
		t.Fatalf("refused handle not closed")
	}

	dev.Press(keyK1)
	if a := receive(t, q); a.SceneID != "x" {
		t.Fatalf("unexpected action %v", a)
	}

	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].Name != "remote" || snap[0].Path != "/dev/input/event3" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	dev.Unplug()
	reg.Wait()
	if reg.Active("/dev/input/event3") {
		t.Fatalf("entry not removed after listener stopped")
	}
	if !dev.Closed() {
		t.Fatalf("handle not released after listener stopped")
	}
}

func TestRegistryListenersAreIndependent(t *testing.T) {
	table := triggers.NewTable([]triggers.Entry{
		{Trigger: triggers.Trigger{Key: keyK1}, Actions: []protocol.Action{scene("still-here")}},
	})
	q := outbound.New(8)
	root := q.Sender()
	defer root.Close()
	reg := NewRegistry(table, root)

	a := platformtest.NewFakeDevice("/dev/input/event0", "a")
	b := platformtest.NewFakeDevice("/dev/input/event1", "b")
	reg.Spawn(a)
	reg.Spawn(b)

	a.Unplug()
	waitFor(t, func() bool { return !reg.Active("/dev/input/event0") })

	b.Press(keyK1)
	if got := receive(t, q); got.SceneID != "still-here" {
		t.Fatalf("unexpected action %v", got)
	}
	if len(reg.Snapshot()) != 1 {
		t.Fatalf("expected one remaining device, got %+v", reg.Snapshot())
	}
	b.Unplug()
	reg.Wait()
}
