package modelformat

import (
	"bytes"
	"encoding/binary"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

const (
	tdsMain       = 0x4D4D
	tdsEditor     = 0x3D3D
	tdsObject     = 0x4000
	tdsTriMesh    = 0x4100
	tdsVertexList = 0x4110
	tdsChunkHead  = 6
)

// Decode3DS walks the chunk tree of an Autodesk 3DS file and collects the
// vertex list of every triangle mesh.
func Decode3DS(data []byte) (*scene.Object, error) {
	if len(data) < tdsChunkHead || binary.LittleEndian.Uint16(data) != tdsMain {
		return nil, errors.New("3ds: missing main chunk")
	}
	var meshes [][]cmath.Vec3
	if err := walk3DS(data, &meshes); err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "3ds")
	}
	return newModel(meshes...), nil
}

func walk3DS(data []byte, meshes *[][]cmath.Vec3) error {
	for off := 0; off+tdsChunkHead <= len(data); {
		id := binary.LittleEndian.Uint16(data[off:])
		size := int(binary.LittleEndian.Uint32(data[off+2:]))
		if size < tdsChunkHead || off+size > len(data) {
			return errors.Errorf("3ds: chunk 0x%04x has bad length %d", id, size)
		}
		body := data[off+tdsChunkHead : off+size]

		switch id {
		case tdsMain, tdsEditor, tdsTriMesh:
			if err := walk3DS(body, meshes); err != nil {
				return err
			}
		case tdsObject:
			// object name is a NUL terminated string ahead of the sub chunks
			n := bytes.IndexByte(body, 0)
			if n < 0 {
				return errors.New("3ds: unterminated object name")
			}
			if err := walk3DS(body[n+1:], meshes); err != nil {
				return err
			}
		case tdsVertexList:
			if len(body) < 2 {
				return errors.New("3ds: short vertex list")
			}
			count := int(binary.LittleEndian.Uint16(body))
			if 2+count*12 > len(body) {
				return errors.New("3ds: truncated vertex list")
			}
			positions := make([]cmath.Vec3, 0, count)
			for i := 0; i < count; i++ {
				positions = append(positions, readVec3f32(body[2+i*12:]))
			}
			*meshes = append(*meshes, positions)
		}
		off += size
	}
	return nil
}
