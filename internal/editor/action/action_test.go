package action

import (
	"errors"
	"testing"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
	"github.com/dshills/nodestorm/internal/editor/timeline"
	"github.com/dshills/nodestorm/internal/event"
	"github.com/dshills/nodestorm/internal/event/topic"
)

func newTestRegistry() *graph.Registry {
	reg := graph.NewRegistry()
	reg.Register(&graph.Archetype{Name: "math.add", SlotCount: 2, BoxCount: 2})
	reg.Register(&graph.Archetype{Name: "values.array", Resizable: true, BoxCount: 1})
	reg.Register(&graph.Archetype{Name: "track.anim"})
	reg.Register(&graph.Archetype{Name: "track.group"})
	return reg
}

func newTestDoc(opts ...graph.Option) *graph.Document {
	return graph.NewDocument(newTestRegistry(), opts...)
}

func TestValueEditRoundTrip(t *testing.T) {
	doc := newTestDoc()
	n, err := doc.Root().NewNode("sum", "math.add")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	n.SetValue(0, 1.5)
	n.SetValue(1, -2)
	before := snapshot.CaptureValues(n)

	n.SetValue(0, 7)
	n.SetValue(1, 8)
	after := snapshot.CaptureValues(n)

	edit, err := NewValueEdit(n, before, after, false)
	if err != nil {
		t.Fatalf("NewValueEdit: %v", err)
	}

	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !snapshot.CaptureValues(n).Equal(before) {
		t.Errorf("after Undo, values = %v, want before-state", n.CopyValues())
	}

	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !snapshot.CaptureValues(n).Equal(after) {
		t.Errorf("after Do, values = %v, want after-state", n.CopyValues())
	}
}

func TestValueEditResizableRoundTrip(t *testing.T) {
	doc := newTestDoc()
	n, err := doc.Root().NewNode("arr", "values.array")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	before := snapshot.CaptureValues(n)
	if err := n.WriteValues([]float32{1, 2, 3}, true); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}
	after := snapshot.CaptureValues(n)

	edit, err := NewValueEdit(n, before, after, false)
	if err != nil {
		t.Fatalf("NewValueEdit: %v", err)
	}
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if n.SlotCount() != 0 {
		t.Errorf("after Undo, slot count = %d, want 0", n.SlotCount())
	}
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if n.SlotCount() != 3 {
		t.Errorf("after Do, slot count = %d, want 3", n.SlotCount())
	}
}

func TestValueEditSizeMismatchFailsFast(t *testing.T) {
	doc := newTestDoc()
	n, err := doc.Root().NewNode("sum", "math.add")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	before := snapshot.Snapshot{Entity: n.Handle(), Payload: snapshot.EncodeValues([]float32{1, 2})}
	after := snapshot.Snapshot{Entity: n.Handle(), Payload: snapshot.EncodeValues([]float32{1, 2, 3})}

	_, err = NewValueEdit(n, before, after, false)
	var sizeErr *graph.SizeMismatchError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("NewValueEdit error = %v, want SizeMismatchError", err)
	}
	if sizeErr.Want != 2 || sizeErr.Got != 3 {
		t.Errorf("SizeMismatchError = want %d got %d, expected want 2 got 3", sizeErr.Want, sizeErr.Got)
	}
}

func TestConnectionEditRoundTrip(t *testing.T) {
	bus := event.NewBus()
	doc := newTestDoc(graph.WithBus(bus))
	a, err := doc.Root().NewNode("a", "math.add")
	if err != nil {
		t.Fatalf("NewNode a: %v", err)
	}
	b, err := doc.Root().NewNode("b", "math.add")
	if err != nil {
		t.Fatalf("NewNode b: %v", err)
	}
	a0, _ := a.Box(0)
	b0, _ := b.Box(0)

	edit := NewConnectionEdit(a)
	if err := graph.Connect(a0, b0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := edit.End(a); err != nil {
		t.Fatalf("End: %v", err)
	}
	after := snapshot.CaptureTopology(a)

	notified := make(map[handle.EntityHandle]int)
	bus.Subscribe(topic.GraphConnectionsChanged, func(ev event.Event) {
		notified[ev.Payload.(handle.EntityHandle)]++
	})

	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if a0.LinkCount() != 0 {
		t.Errorf("after Undo, a.box0 has %d links, want 0", a0.LinkCount())
	}
	if b0.LinkCount() != 0 {
		t.Errorf("after Undo, b.box0 has %d links, want 0", b0.LinkCount())
	}
	for h, count := range notified {
		if count != 1 {
			t.Errorf("port %v notified %d times, want exactly 1", h, count)
		}
	}
	if notified[b0.Handle()] != 1 {
		t.Errorf("remote port %v not notified on clear", b0.Handle())
	}

	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !a0.LinkedTo(b0) || !b0.LinkedTo(a0) {
		t.Error("after Do, link not restored on both ends")
	}
	if !snapshot.CaptureTopology(a).Equal(after) {
		t.Error("after Do, topology is not bit-identical to the recorded after-state")
	}
}

func TestConnectionEditLifecycle(t *testing.T) {
	doc := newTestDoc()
	a, err := doc.Root().NewNode("a", "math.add")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	edit := NewConnectionEdit(a)
	if err := edit.Do(doc); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("Do before End = %v, want ErrNotFinalized", err)
	}
	if err := edit.End(a); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := edit.End(a); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("second End = %v, want ErrAlreadyFinalized", err)
	}
}

func addTrack(t *testing.T, doc *graph.Document, name, archetype, group string, flags timeline.Flags) *timeline.Track {
	t.Helper()
	tr := timeline.NewTrack(name, archetype)
	tr.SetFlags(flags)
	tr.SetGroup(group)
	if _, err := doc.Timeline().Add(tr); err != nil {
		t.Fatalf("Add %q: %v", name, err)
	}
	return tr
}

func TestStructuralAddRemoveInverse(t *testing.T) {
	doc := newTestDoc()
	addTrack(t, doc, "rig", "track.group", "", timeline.FlagGroup)
	child := addTrack(t, doc, "arm", "track.anim", "rig", 0)
	child.SetColor(0xff00ff00)

	edit, err := NewTrackAdded(child, doc, nil)
	if err != nil {
		t.Fatalf("NewTrackAdded: %v", err)
	}

	// Undo of an add removes the track.
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if doc.Timeline().Has("arm") {
		t.Fatal("after Undo, track still present")
	}

	// Do rebuilds it exactly as recorded.
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	got, ok := doc.Timeline().Track("arm")
	if !ok {
		t.Fatal("after Do, track absent")
	}
	if got.Color() != 0xff00ff00 {
		t.Errorf("rebuilt color = %#x, want %#x", got.Color(), 0xff00ff00)
	}
	if got.Group() != "rig" {
		t.Errorf("rebuilt group = %q, want %q", got.Group(), "rig")
	}
	if got.Archetype() != "track.anim" {
		t.Errorf("rebuilt archetype = %q, want %q", got.Archetype(), "track.anim")
	}
}

func TestStructuralReplayMissingParent(t *testing.T) {
	doc := newTestDoc()
	addTrack(t, doc, "rig", "track.group", "", timeline.FlagGroup)
	child := addTrack(t, doc, "arm", "track.anim", "rig", 0)

	edit, err := NewTrackAdded(child, doc, nil)
	if err != nil {
		t.Fatalf("NewTrackAdded: %v", err)
	}
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, err := doc.Timeline().Remove("rig"); err != nil {
		t.Fatalf("Remove rig: %v", err)
	}

	// The recorded parent is gone; replay re-attaches top-level.
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	got, ok := doc.Timeline().Track("arm")
	if !ok {
		t.Fatal("after Do, track absent")
	}
	if got.Group() != "" {
		t.Errorf("rebuilt group = %q, want top-level", got.Group())
	}
}

func TestStructuralReplayAlreadyApplied(t *testing.T) {
	doc := newTestDoc()
	child := addTrack(t, doc, "arm", "track.anim", "", 0)

	edit, err := NewTrackAdded(child, doc, nil)
	if err != nil {
		t.Fatalf("NewTrackAdded: %v", err)
	}

	// The track is still present; replaying the add is a logged no-op.
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do with track present: %v", err)
	}
	if doc.Timeline().Len() != 1 {
		t.Errorf("track count = %d, want 1", doc.Timeline().Len())
	}

	// Remove twice through Undo: the second is a logged no-op too.
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("second Undo: %v", err)
	}
}

func TestRename(t *testing.T) {
	doc := newTestDoc()
	addTrack(t, doc, "old", "track.anim", "", 0)

	edit := NewRename("old", "new")
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !doc.Timeline().Has("new") || doc.Timeline().Has("old") {
		t.Error("after Do, rename not applied")
	}
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !doc.Timeline().Has("old") || doc.Timeline().Has("new") {
		t.Error("after Undo, rename not reverted")
	}
}

func TestReorderRoundTrip(t *testing.T) {
	doc := newTestDoc()
	addTrack(t, doc, "a", "track.anim", "", 0)
	addTrack(t, doc, "b", "track.anim", "", 0)
	addTrack(t, doc, "c", "track.anim", "", 0)

	a, _ := doc.Timeline().Track("a")
	before := Placement{Group: "", Order: a.Order()}

	edit := NewReorder("a", before, Placement{Group: "", Order: 5})
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if a.Order() != 2 {
		t.Errorf("after Do, order = %d, want 2 (end of group)", a.Order())
	}
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if a.Order() != 0 {
		t.Errorf("after Undo, order = %d, want 0", a.Order())
	}
}

func TestDurationEdit(t *testing.T) {
	doc := newTestDoc()
	doc.Timeline().SetDuration(1)

	edit := NewDurationEdit(1, 2.5)
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := doc.Timeline().Duration(); got != 2.5 {
		t.Errorf("after Do, duration = %v, want 2.5", got)
	}
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := doc.Timeline().Duration(); got != 1 {
		t.Errorf("after Undo, duration = %v, want 1", got)
	}
}

func TestHeaderEdit(t *testing.T) {
	doc := newTestDoc()
	tr := addTrack(t, doc, "arm", "track.anim", "", 0)

	before, err := snapshot.CaptureTrackHeader(tr, doc.Registry())
	if err != nil {
		t.Fatalf("CaptureTrackHeader: %v", err)
	}
	tr.SetColor(0xdeadbeef)
	tr.SetFlags(timeline.FlagMuted)
	after, err := snapshot.CaptureTrackHeader(tr, doc.Registry())
	if err != nil {
		t.Fatalf("CaptureTrackHeader: %v", err)
	}

	edit := NewHeaderEdit("arm", before, after, doc.FormatVersion())
	if err := edit.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tr.Color() != 0 || tr.Flags() != 0 {
		t.Errorf("after Undo, color = %#x flags = %v, want zero header", tr.Color(), tr.Flags())
	}
	if err := edit.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if tr.Color() != 0xdeadbeef || tr.Flags() != timeline.FlagMuted {
		t.Errorf("after Do, color = %#x flags = %v, want recorded header", tr.Color(), tr.Flags())
	}
}

// loggedAction records replay calls so composite ordering is
// observable.
type loggedAction struct {
	name     string
	log      *[]string
	released *int
}

func (a *loggedAction) Do(*graph.Document) error {
	*a.log = append(*a.log, "do:"+a.name)
	return nil
}

func (a *loggedAction) Undo(*graph.Document) error {
	*a.log = append(*a.log, "undo:"+a.name)
	return nil
}

func (a *loggedAction) Description() string { return a.name }

func (a *loggedAction) Release() {
	if a.released != nil {
		*a.released++
	}
}

func TestCompositeOrdering(t *testing.T) {
	var log []string
	doc := newTestDoc()
	c, err := NewComposite(
		&loggedAction{name: "A", log: &log},
		&loggedAction{name: "B", log: &log},
		&loggedAction{name: "C", log: &log},
	)
	if err != nil {
		t.Fatalf("NewComposite: %v", err)
	}

	if err := c.Do(doc); err != nil {
		t.Fatalf("Do: %v", err)
	}
	wantDo := []string{"do:A", "do:B", "do:C"}
	if !equalStrings(log, wantDo) {
		t.Errorf("Do order = %v, want %v", log, wantDo)
	}

	// Undo runs in the same list order as Do, not reversed.
	log = nil
	if err := c.Undo(doc); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	wantUndo := []string{"undo:A", "undo:B", "undo:C"}
	if !equalStrings(log, wantUndo) {
		t.Errorf("Undo order = %v, want %v", log, wantUndo)
	}

	if got := c.Description(); got != "C" {
		t.Errorf("Description = %q, want last sub-action's %q", got, "C")
	}
}

func TestCompositeNeedsTwo(t *testing.T) {
	var log []string
	if _, err := NewComposite(&loggedAction{name: "A", log: &log}); err == nil {
		t.Error("NewComposite with one action should fail")
	}
	if _, err := NewComposite(); err == nil {
		t.Error("NewComposite with no actions should fail")
	}
}

func TestCompositeRelease(t *testing.T) {
	var log []string
	var released int
	c, err := NewComposite(
		&loggedAction{name: "A", log: &log, released: &released},
		&loggedAction{name: "B", log: &log, released: &released},
	)
	if err != nil {
		t.Fatalf("NewComposite: %v", err)
	}
	c.Release()
	if released != 2 {
		t.Errorf("released %d sub-actions, want 2", released)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
