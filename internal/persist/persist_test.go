package persist

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tidwall/sjson"

	"github.com/dshills/nodestorm/internal/editor/action"
	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
	"github.com/dshills/nodestorm/internal/editor/terrain"
	"github.com/dshills/nodestorm/internal/editor/timeline"
)

func testRegistry() *graph.Registry {
	reg := graph.NewRegistry()
	reg.Register(&graph.Archetype{Name: "math.add", SlotCount: 2, BoxCount: 2})
	reg.Register(&graph.Archetype{Name: "values.array", Resizable: true, BoxCount: 1})
	reg.Register(&graph.Archetype{Name: "track.anim"})
	reg.Register(&graph.Archetype{Name: "track.group"})
	return reg
}

func buildDocument(t *testing.T) *graph.Document {
	t.Helper()
	field := terrain.NewField(4)
	doc := graph.NewDocument(testRegistry(), graph.WithTerrain(field))

	a, err := doc.Root().NewNode("a", "math.add")
	if err != nil {
		t.Fatalf("NewNode a: %v", err)
	}
	a.SetValue(0, 1.25)
	a.SetValue(1, -3)
	a.SetColor(0xff0000)

	b, err := doc.Root().NewNode("b", "math.add")
	if err != nil {
		t.Fatalf("NewNode b: %v", err)
	}
	a0, _ := a.Box(0)
	b1, _ := b.Box(1)
	if err := graph.Connect(a0, b1); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	inner, err := doc.Root().NewChild("rig")
	if err != nil {
		t.Fatalf("NewChild: %v", err)
	}
	c, err := inner.NewNode("c", "values.array")
	if err != nil {
		t.Fatalf("NewNode c: %v", err)
	}
	if err := c.WriteValues([]float32{9, 8, 7}, true); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}

	doc.Timeline().SetDuration(12.5)
	grp := timeline.NewTrack("anim", "track.group")
	grp.SetFlags(timeline.FlagGroup)
	if _, err := doc.Timeline().Add(grp); err != nil {
		t.Fatalf("Add group: %v", err)
	}
	tr := timeline.NewTrack("walk", "track.anim")
	tr.SetGroup("anim")
	tr.SetColor(0x00ff00)
	tr.SetPayload([]byte{1, 2, 3})
	if _, err := doc.Timeline().Add(tr); err != nil {
		t.Fatalf("Add track: %v", err)
	}

	patch := bytes.Repeat([]byte{0x5a}, field.PatchLen(terrain.LayerHeight))
	if err := field.SetPatch(terrain.LayerHeight, terrain.PatchCoord{X: 2, Y: -1}, patch); err != nil {
		t.Fatalf("SetPatch: %v", err)
	}
	return doc
}

func TestRoundTrip(t *testing.T) {
	doc := buildDocument(t)
	data, err := Save(doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(data, testRegistry())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Modified() {
		t.Error("freshly loaded document is marked modified")
	}
	if loaded.FormatVersion() != doc.FormatVersion() {
		t.Errorf("format version = %d, want %d", loaded.FormatVersion(), doc.FormatVersion())
	}

	// Node ids survive, so recorded handles stay valid.
	orig, err := doc.Root().NodeByName("a")
	if err != nil {
		t.Fatalf("NodeByName: %v", err)
	}
	got, err := loaded.Root().NodeByID(orig.ID())
	if err != nil {
		t.Fatalf("node %d missing after round-trip: %v", orig.ID(), err)
	}
	if got.Name() != "a" || got.Color() != 0xff0000 {
		t.Errorf("node = %q color %#x, want a/ff0000", got.Name(), got.Color())
	}
	if !snapshot.CaptureValues(got).Equal(snapshot.CaptureValues(orig)) {
		t.Error("node values changed across round-trip")
	}

	// Links restored on both ends.
	a0, _ := got.Box(0)
	if a0.LinkCount() != 1 {
		t.Fatalf("a.box0 has %d links after round-trip, want 1", a0.LinkCount())
	}
	remote := a0.Links()[0]
	if remote.Owner().Name() != "b" || remote.Index() != 1 {
		t.Errorf("link remote = %s box %d, want b box 1", remote.Owner().Name(), remote.Index())
	}

	// Nested context and its node.
	inner := loaded.Root().Child("rig")
	if inner == nil {
		t.Fatal("child context missing after round-trip")
	}
	c, err := inner.NodeByName("c")
	if err != nil {
		t.Fatalf("nested node: %v", err)
	}
	if c.SlotCount() != 3 {
		t.Errorf("nested node slots = %d, want 3", c.SlotCount())
	}

	// Timeline: duration, grouping, payload.
	if got := loaded.Timeline().Duration(); got != 12.5 {
		t.Errorf("duration = %v, want 12.5", got)
	}
	walk, ok := loaded.Timeline().Track("walk")
	if !ok {
		t.Fatal("track missing after round-trip")
	}
	if walk.Group() != "anim" {
		t.Errorf("track group = %q, want anim", walk.Group())
	}
	if !bytes.Equal(walk.Payload(), []byte{1, 2, 3}) {
		t.Errorf("track payload = %v, want [1 2 3]", walk.Payload())
	}

	// Terrain patch content.
	f := loaded.Terrain()
	if f == nil {
		t.Fatal("terrain missing after round-trip")
	}
	buf := make([]byte, f.PatchLen(terrain.LayerHeight))
	if err := f.CopyPatch(terrain.LayerHeight, terrain.PatchCoord{X: 2, Y: -1}, buf); err != nil {
		t.Fatalf("CopyPatch: %v", err)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{0x5a}, len(buf))) {
		t.Error("terrain patch changed across round-trip")
	}
}

// An action recorded before a save must replay against the reloaded
// document, because it addresses entities by stable id and path only.
func TestActionReplaysAfterRoundTrip(t *testing.T) {
	doc := buildDocument(t)
	n, err := doc.Root().NodeByName("a")
	if err != nil {
		t.Fatalf("NodeByName: %v", err)
	}

	before := snapshot.CaptureValues(n)
	n.SetValue(0, 100)
	after := snapshot.CaptureValues(n)
	edit, err := action.NewValueEdit(n, before, after, false)
	if err != nil {
		t.Fatalf("NewValueEdit: %v", err)
	}

	data, err := Save(doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(data, testRegistry())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := edit.Undo(loaded); err != nil {
		t.Fatalf("Undo against reloaded document: %v", err)
	}
	got, err := loaded.Root().NodeByID(n.ID())
	if err != nil {
		t.Fatalf("NodeByID: %v", err)
	}
	if !snapshot.CaptureValues(got).Equal(before) {
		t.Error("replayed undo did not restore the before-state")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load([]byte("not json"), testRegistry()); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("garbage load = %v, want ErrInvalidDocument", err)
	}
	if _, err := Load([]byte(`{"root":{}}`), testRegistry()); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("missing version = %v, want ErrInvalidDocument", err)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	doc := graph.NewDocument(testRegistry())
	data, err := Save(doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	newer, err := bumpVersion(data)
	if err != nil {
		t.Fatalf("bumpVersion: %v", err)
	}
	if _, err := Load(newer, testRegistry()); !errors.Is(err, ErrVersionTooNew) {
		t.Errorf("newer version load = %v, want ErrVersionTooNew", err)
	}
}

func bumpVersion(data []byte) ([]byte, error) {
	return sjson.SetBytes(data, "version", graph.CurrentFormatVersion+1)
}

func TestLoadOlderVersionKeepsVersion(t *testing.T) {
	doc := graph.NewDocument(testRegistry(), graph.WithFormatVersion(2))
	data, err := Save(doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(data, testRegistry())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.FormatVersion() != 2 {
		t.Errorf("format version = %d, want preserved 2", loaded.FormatVersion())
	}
}
