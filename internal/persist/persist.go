// Package persist serializes documents to JSON and back.
//
// Node ids, context paths, and track names survive the round-trip
// unchanged, so history actions recorded against a document stay
// valid against its reloaded copy. Binary blobs (track payloads,
// terrain patches) are base64 strings.
package persist

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/terrain"
	"github.com/dshills/nodestorm/internal/editor/timeline"
)

// Errors returned by document loading.
var (
	// ErrInvalidDocument indicates data that is not a document.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrVersionTooNew indicates a document written by a newer build.
	ErrVersionTooNew = errors.New("document version too new")
)

var persistedLayers = []terrain.LayerTag{
	terrain.LayerHeight,
	terrain.LayerHoles,
	terrain.LayerSplat,
}

// Save serializes the document.
func Save(doc *graph.Document) ([]byte, error) {
	out := []byte(`{}`)
	out, err := sjson.SetBytes(out, "version", doc.FormatVersion())
	if err != nil {
		return nil, err
	}
	if out, err = saveTimeline(out, doc.Timeline()); err != nil {
		return nil, err
	}

	root, err := saveContext(doc.Root())
	if err != nil {
		return nil, err
	}
	if out, err = sjson.SetRawBytes(out, "root", root); err != nil {
		return nil, err
	}

	if f := doc.Terrain(); f != nil {
		if out, err = saveTerrain(out, f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func saveTimeline(out []byte, tl *timeline.Timeline) ([]byte, error) {
	out, err := sjson.SetBytes(out, "timeline.duration", tl.Duration())
	if err != nil {
		return nil, err
	}
	for _, tr := range tl.Tracks() {
		rec := map[string]any{
			"name":      tr.Name(),
			"archetype": tr.Archetype(),
			"color":     tr.Color(),
			"flags":     uint32(tr.Flags()),
			"group":     tr.Group(),
			"order":     tr.Order(),
			"expanded":  tr.Expanded(),
		}
		if len(tr.Payload()) > 0 {
			rec["payload"] = base64.StdEncoding.EncodeToString(tr.Payload())
		}
		if out, err = sjson.SetBytes(out, "timeline.tracks.-1", rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func saveContext(c *graph.Context) ([]byte, error) {
	out := []byte(`{}`)
	out, err := sjson.SetBytes(out, "name", c.Name())
	if err != nil {
		return nil, err
	}

	ids := c.NodeIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		n, err := c.NodeByID(id)
		if err != nil {
			return nil, err
		}
		rec := map[string]any{
			"id":        n.ID(),
			"name":      n.Name(),
			"archetype": n.Archetype().Name,
			"color":     n.Color(),
			"flags":     uint32(n.Flags()),
			"values":    n.CopyValues(),
		}
		if out, err = sjson.SetBytes(out, "nodes.-1", rec); err != nil {
			return nil, err
		}
	}

	// Each symmetric link is written once, from its lower endpoint.
	for _, id := range ids {
		n, err := c.NodeByID(id)
		if err != nil {
			return nil, err
		}
		for _, b := range n.Boxes() {
			for _, remote := range b.Links() {
				if !ownsLink(b, remote) {
					continue
				}
				rec := map[string]any{
					"from_node": b.Owner().ID(),
					"from_box":  b.Index(),
					"to_node":   remote.Owner().ID(),
					"to_box":    remote.Index(),
				}
				if out, err = sjson.SetBytes(out, "links.-1", rec); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, child := range c.Children() {
		sub, err := saveContext(child)
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "children.-1", sub); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func ownsLink(b, remote *graph.Box) bool {
	if b.Owner().ID() != remote.Owner().ID() {
		return b.Owner().ID() < remote.Owner().ID()
	}
	return b.Index() < remote.Index()
}

func saveTerrain(out []byte, f *terrain.Field) ([]byte, error) {
	out, err := sjson.SetBytes(out, "terrain.edge_samples", f.EdgeSamples())
	if err != nil {
		return nil, err
	}
	for _, tag := range persistedLayers {
		buf := make([]byte, f.PatchLen(tag))
		for _, coord := range f.WrittenPatches(tag) {
			if err := f.CopyPatch(tag, coord, buf); err != nil {
				return nil, err
			}
			rec := map[string]any{
				"layer": uint8(tag),
				"x":     coord.X,
				"y":     coord.Y,
				"data":  base64.StdEncoding.EncodeToString(buf),
			}
			if out, err = sjson.SetBytes(out, "terrain.patches.-1", rec); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Load deserializes a document saved by Save. The registry must hold
// every archetype the document references.
func Load(data []byte, reg *graph.Registry, opts ...graph.Option) (*graph.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidDocument)
	}
	root := gjson.ParseBytes(data)

	version := root.Get("version")
	if !version.Exists() || version.Int() <= 0 {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidDocument)
	}
	if version.Int() > graph.CurrentFormatVersion {
		return nil, fmt.Errorf("%w: %d (this build reads up to %d)",
			ErrVersionTooNew, version.Int(), graph.CurrentFormatVersion)
	}
	opts = append(opts, graph.WithFormatVersion(int(version.Int())))

	if t := root.Get("terrain"); t.Exists() {
		edge := int(t.Get("edge_samples").Int())
		if edge < 2 {
			return nil, fmt.Errorf("%w: terrain edge_samples %d", ErrInvalidDocument, edge)
		}
		field := terrain.NewField(edge)
		if err := loadTerrain(field, t); err != nil {
			return nil, err
		}
		opts = append(opts, graph.WithTerrain(field))
	}

	doc := graph.NewDocument(reg, opts...)
	if err := loadTimeline(doc.Timeline(), root.Get("timeline")); err != nil {
		return nil, err
	}
	if err := loadContext(doc.Root(), root.Get("root")); err != nil {
		return nil, err
	}
	doc.ClearModified()
	return doc, nil
}

func loadTimeline(tl *timeline.Timeline, g gjson.Result) error {
	tl.SetDuration(g.Get("duration").Float())

	pending := g.Get("tracks").Array()
	added := make(map[string]bool)

	// Groups must exist before their children attach, so tracks are
	// inserted in dependency order. A cycle or missing group falls
	// through to plain insertion and the orphan downgrade applies.
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, rec := range pending {
			group := rec.Get("group").String()
			if group != "" && !added[group] {
				rest = append(rest, rec)
				continue
			}
			if err := addTrack(tl, rec); err != nil {
				return err
			}
			added[rec.Get("name").String()] = true
			progressed = true
		}
		pending = rest
		if !progressed {
			for _, rec := range pending {
				if err := addTrack(tl, rec); err != nil {
					return err
				}
			}
			break
		}
	}
	return nil
}

func addTrack(tl *timeline.Timeline, rec gjson.Result) error {
	tr := timeline.NewTrack(rec.Get("name").String(), rec.Get("archetype").String())
	tr.SetColor(uint32(rec.Get("color").Uint()))
	tr.SetFlags(timeline.Flags(rec.Get("flags").Uint()))
	tr.SetGroup(rec.Get("group").String())
	tr.SetOrder(int(rec.Get("order").Int()))
	tr.SetExpanded(rec.Get("expanded").Bool())
	if p := rec.Get("payload"); p.Exists() {
		payload, err := base64.StdEncoding.DecodeString(p.String())
		if err != nil {
			return fmt.Errorf("track %q payload: %w", tr.Name(), err)
		}
		tr.SetPayload(payload)
	}
	if _, err := tl.Add(tr); err != nil {
		return err
	}
	return nil
}

func loadContext(c *graph.Context, g gjson.Result) error {
	for _, rec := range g.Get("nodes").Array() {
		n, err := c.RestoreNode(
			uint32(rec.Get("id").Uint()),
			rec.Get("name").String(),
			rec.Get("archetype").String(),
		)
		if err != nil {
			return err
		}
		n.SetColor(uint32(rec.Get("color").Uint()))
		n.SetFlags(graph.Flags(rec.Get("flags").Uint()))

		raw := rec.Get("values").Array()
		vals := make([]float32, len(raw))
		for i, v := range raw {
			vals[i] = float32(v.Float())
		}
		if err := n.WriteValues(vals, true); err != nil {
			return err
		}
	}

	for _, rec := range g.Get("links").Array() {
		from, err := c.ResolveBox(boxHandle(rec, "from_node", "from_box"))
		if err != nil {
			return err
		}
		to, err := c.ResolveBox(boxHandle(rec, "to_node", "to_box"))
		if err != nil {
			return err
		}
		if err := graph.Connect(from, to); err != nil {
			return err
		}
	}

	for _, childRec := range g.Get("children").Array() {
		child, err := c.NewChild(childRec.Get("name").String())
		if err != nil {
			return err
		}
		if err := loadContext(child, childRec); err != nil {
			return err
		}
	}
	return nil
}

func boxHandle(rec gjson.Result, nodeKey, boxKey string) handle.EntityHandle {
	return handle.At(
		uint32(rec.Get(nodeKey).Uint()),
		int32(rec.Get(boxKey).Int()),
	)
}

func loadTerrain(f *terrain.Field, g gjson.Result) error {
	for _, rec := range g.Get("patches").Array() {
		data, err := base64.StdEncoding.DecodeString(rec.Get("data").String())
		if err != nil {
			return fmt.Errorf("terrain patch data: %w", err)
		}
		tag := terrain.LayerTag(rec.Get("layer").Uint())
		coord := terrain.PatchCoord{
			X: int32(rec.Get("x").Int()),
			Y: int32(rec.Get("y").Int()),
		}
		if err := f.SetPatch(tag, coord, data); err != nil {
			return err
		}
	}
	return nil
}
