package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
)

// CaptureTopology snapshots the connection topology of one node: for
// every box, the ordered remote ends as handles. Layout: uint32 box
// count, then per box a uint32 link count followed by (uint32 node
// id, int32 box index) pairs.
func CaptureTopology(n *graph.Node) Snapshot {
	boxes := n.Boxes()
	size := 4
	for _, b := range boxes {
		size += 4 + 8*b.LinkCount()
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(boxes)))
	for _, b := range boxes {
		links := b.LinkHandles()
		out = binary.LittleEndian.AppendUint32(out, uint32(len(links)))
		for _, h := range links {
			out = binary.LittleEndian.AppendUint32(out, h.Container)
			out = binary.LittleEndian.AppendUint32(out, uint32(h.Local))
		}
	}
	return Snapshot{Entity: n.Handle(), Payload: out}
}

// decodeTopology parses a topology payload into per-box handle lists.
func decodeTopology(payload []byte) ([][]handle.EntityHandle, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("topology payload too short: %d bytes", len(payload))
	}
	boxCount := binary.LittleEndian.Uint32(payload)
	off := 4
	boxes := make([][]handle.EntityHandle, boxCount)
	for i := range boxes {
		if len(payload) < off+4 {
			return nil, fmt.Errorf("topology payload truncated at box %d", i)
		}
		linkCount := binary.LittleEndian.Uint32(payload[off:])
		off += 4
		if len(payload) < off+8*int(linkCount) {
			return nil, fmt.Errorf("topology payload truncated in box %d links", i)
		}
		links := make([]handle.EntityHandle, linkCount)
		for j := range links {
			links[j] = handle.EntityHandle{
				Container: binary.LittleEndian.Uint32(payload[off:]),
				Local:     int32(binary.LittleEndian.Uint32(payload[off+4:])),
			}
			off += 8
		}
		boxes[i] = links
	}
	if off != len(payload) {
		return nil, fmt.Errorf("topology payload has %d trailing bytes", len(payload)-off)
	}
	return boxes, nil
}

// RestoreTopology replays a recorded topology onto the live node with
// the given id. It clears every existing link on the node's boxes
// (removing the back-link on the remote end too), then re-adds every
// recorded link on both ends. It returns the handles of every port
// touched from either side, deduplicated, in a deterministic order;
// the caller fires exactly one connections-changed notification per
// returned handle.
func RestoreTopology(ctx *graph.Context, nodeID uint32, payload []byte) ([]handle.EntityHandle, error) {
	n, err := ctx.NodeByID(nodeID)
	if err != nil {
		return nil, err
	}
	recorded, err := decodeTopology(payload)
	if err != nil {
		return nil, err
	}
	if len(recorded) != n.BoxCount() {
		return nil, fmt.Errorf("topology snapshot has %d boxes, node %q has %d", len(recorded), n.Name(), n.BoxCount())
	}

	visited := make(map[handle.EntityHandle]struct{})
	var touched []handle.EntityHandle
	touch := func(h handle.EntityHandle) {
		if _, seen := visited[h]; seen {
			return
		}
		visited[h] = struct{}{}
		touched = append(touched, h)
	}

	// Phase 1: clear. Both the node's own box and every remote end it
	// was linked to are touched.
	for _, b := range n.Boxes() {
		for _, remote := range b.ClearLinks() {
			touch(remote.Handle())
		}
		touch(b.Handle())
	}

	// Phase 2: re-add on both ends. A link whose remote endpoint no
	// longer resolves aborts the replay; links applied so far stay.
	for i, links := range recorded {
		b, err := n.Box(int32(i))
		if err != nil {
			return touched, err
		}
		for _, h := range links {
			remote, err := ctx.ResolveBox(h)
			if err != nil {
				return touched, err
			}
			// Both sides of a same-node link appear in the snapshot;
			// the second occurrence finds the link already made.
			if !b.LinkedTo(remote) {
				if err := graph.Connect(b, remote); err != nil {
					return touched, err
				}
			}
			touch(remote.Handle())
			touch(b.Handle())
		}
	}
	return touched, nil
}
