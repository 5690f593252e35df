package snapshot

import "github.com/dshills/nodestorm/internal/editor/terrain"

// CapturePatch copies the patch at coord into dst, a caller-owned
// buffer of exactly Field.PatchLen(tag) bytes. The undo action owns
// dst from this point until disposal; the field keeps its own
// storage.
func CapturePatch(f *terrain.Field, tag terrain.LayerTag, coord terrain.PatchCoord, dst []byte) error {
	return f.CopyPatch(tag, coord, dst)
}

// RestorePatch writes a captured patch buffer back into the field.
// The field copies; the action retains ownership of data.
func RestorePatch(f *terrain.Field, tag terrain.LayerTag, coord terrain.PatchCoord, data []byte) error {
	return f.SetPatch(tag, coord, data)
}
