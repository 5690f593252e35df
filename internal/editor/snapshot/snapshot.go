// Package snapshot serializes a single entity's editable state to and
// from opaque byte payloads.
//
// Payload layouts are entity-kind-specific (value slots, connection
// topology, track header, terrain patch) and deliberately simple:
// little-endian fixed layouts with explicit counts. The undo engine
// never inspects payload semantics. It diffs by byte equality only,
// so the encodings must be deterministic.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
)

// Snapshot is an opaque capture of one entity's state.
type Snapshot struct {
	// Entity addresses the captured entity.
	Entity handle.EntityHandle
	// Payload is the entity-kind-specific serialized state.
	Payload []byte
}

// Equal reports byte equality of payloads. Equal snapshots mean "no
// change" and suppress action creation at capture-block granularity.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Entity == o.Entity && bytes.Equal(s.Payload, o.Payload)
}

// EncodeValues serializes ordered value slots: a uint32 slot count
// followed by little-endian float32s.
func EncodeValues(vals []float32) []byte {
	out := make([]byte, 4+4*len(vals))
	binary.LittleEndian.PutUint32(out, uint32(len(vals)))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4+4*i:], math.Float32bits(v))
	}
	return out
}

// DecodeValues deserializes a values payload.
func DecodeValues(payload []byte) ([]float32, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("values payload too short: %d bytes", len(payload))
	}
	count := binary.LittleEndian.Uint32(payload)
	if len(payload) != 4+4*int(count) {
		return nil, fmt.Errorf("values payload length %d does not match count %d", len(payload), count)
	}
	vals := make([]float32, count)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4+4*i:]))
	}
	return vals, nil
}

// EncodeScalar serializes one scalar property (e.g. timeline
// duration) as an 8-byte little-endian float64 blob.
func EncodeScalar(v float64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, math.Float64bits(v))
	return out
}

// DecodeScalar deserializes a scalar property blob.
func DecodeScalar(payload []byte) (float64, error) {
	if len(payload) != 8 {
		return 0, fmt.Errorf("scalar payload must be 8 bytes, got %d", len(payload))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(payload)), nil
}

// CaptureValues snapshots a node's value slots.
func CaptureValues(n *graph.Node) Snapshot {
	return Snapshot{
		Entity:  n.Handle(),
		Payload: EncodeValues(n.CopyValues()),
	}
}

// RestoreValues writes a values payload back into a live node. When
// resizable is false a slot-count change is a SizeMismatchError.
func RestoreValues(n *graph.Node, payload []byte, resizable bool) error {
	vals, err := DecodeValues(payload)
	if err != nil {
		return err
	}
	return n.WriteValues(vals, resizable)
}
