package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/timeline"
)

// CaptureTrackHeader snapshots a track's header: color, flags, and
// the archetype-specific payload run through the archetype's save
// codec. Layout: uint32 color, uint32 flags, uint32 payload length,
// payload bytes.
func CaptureTrackHeader(tr *timeline.Track, reg *graph.Registry) ([]byte, error) {
	arch, err := reg.Get(tr.Archetype())
	if err != nil {
		return nil, err
	}
	payload, err := arch.Save(tr.Payload())
	if err != nil {
		return nil, fmt.Errorf("saving %q header payload: %w", tr.Name(), err)
	}

	out := make([]byte, 0, 12+len(payload))
	out = binary.LittleEndian.AppendUint32(out, tr.Color())
	out = binary.LittleEndian.AppendUint32(out, uint32(tr.Flags()))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...), nil
}

// DecodedHeader is a parsed track header snapshot.
type DecodedHeader struct {
	Color   uint32
	Flags   timeline.Flags
	Payload []byte
}

// DecodeTrackHeader parses a header snapshot captured at the given
// format version, upgrading the archetype payload if the archetype's
// load codec supports older layouts.
func DecodeTrackHeader(data []byte, version int, arch *graph.Archetype) (DecodedHeader, error) {
	if len(data) < 12 {
		return DecodedHeader{}, fmt.Errorf("track header too short: %d bytes", len(data))
	}
	payloadLen := binary.LittleEndian.Uint32(data[8:])
	if len(data) != int(12+payloadLen) {
		return DecodedHeader{}, fmt.Errorf("track header length %d does not match payload length %d", len(data), payloadLen)
	}
	payload, err := arch.Load(data[12:], version)
	if err != nil {
		return DecodedHeader{}, fmt.Errorf("loading %q payload at version %d: %w", arch.Name, version, err)
	}
	return DecodedHeader{
		Color:   binary.LittleEndian.Uint32(data),
		Flags:   timeline.Flags(binary.LittleEndian.Uint32(data[4:])),
		Payload: payload,
	}, nil
}

// RestoreTrackHeader writes a header snapshot back into a live track.
func RestoreTrackHeader(tr *timeline.Track, data []byte, version int, reg *graph.Registry) error {
	arch, err := reg.Get(tr.Archetype())
	if err != nil {
		return err
	}
	dec, err := DecodeTrackHeader(data, version, arch)
	if err != nil {
		return err
	}
	tr.SetColor(dec.Color)
	tr.SetFlags(dec.Flags)
	tr.SetPayload(dec.Payload)
	return nil
}
