package modelformat

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"regexp"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

var (
	fbxBinaryMagic = []byte("Kaydara FBX Binary  \x00")
	fbxArrayRe     = regexp.MustCompile(`Vertices:\s*\*\d+\s*\{\s*a:\s*([^}]*)\}`)
	fbxLegacyRe    = regexp.MustCompile(`Vertices:\s*([-+0-9.eE,\s]+)`)
)

const fbxHeaderLen = 27

// DecodeFBX reads the Vertices arrays of binary or ASCII FBX files.
func DecodeFBX(data []byte) (*scene.Object, error) {
	var meshes [][]cmath.Vec3
	var err error
	if bytes.HasPrefix(data, fbxBinaryMagic) {
		meshes, err = decodeBinaryFBX(data)
	} else {
		meshes, err = decodeASCIIFBX(data)
	}
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "fbx")
	}
	return newModel(meshes...), nil
}

func decodeASCIIFBX(data []byte) ([][]cmath.Vec3, error) {
	matches := fbxArrayRe.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		matches = fbxLegacyRe.FindAllSubmatch(data, -1)
	}
	var meshes [][]cmath.Vec3
	for _, m := range matches {
		vals, err := parseFloats(string(m[1]))
		if err != nil {
			return nil, errors.WithMessage(err, "fbx")
		}
		if pts := triples(vals); len(pts) > 0 {
			meshes = append(meshes, pts)
		}
	}
	return meshes, nil
}

type fbxReader struct {
	data   []byte
	wide   bool
	meshes [][]cmath.Vec3
}

func decodeBinaryFBX(data []byte) ([][]cmath.Vec3, error) {
	if len(data) < fbxHeaderLen {
		return nil, errors.New("fbx: truncated header")
	}
	version := binary.LittleEndian.Uint32(data[23:])
	r := &fbxReader{data: data, wide: version >= 7500}

	off := fbxHeaderLen
	for {
		next, done, err := r.node(off)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		off = next
	}
	return r.meshes, nil
}

// node parses one node record at off and returns the offset after it. done is
// true for the NULL record that ends a node list.
func (r *fbxReader) node(off int) (int, bool, error) {
	var endOffset, numProps uint64
	var nameLen int
	head := 13
	if r.wide {
		head = 25
	}
	if off+head > len(r.data) {
		// some exporters omit the final NULL record
		return off, true, nil
	}
	if r.wide {
		endOffset = binary.LittleEndian.Uint64(r.data[off:])
		numProps = binary.LittleEndian.Uint64(r.data[off+8:])
		nameLen = int(r.data[off+24])
	} else {
		endOffset = uint64(binary.LittleEndian.Uint32(r.data[off:]))
		numProps = uint64(binary.LittleEndian.Uint32(r.data[off+4:]))
		nameLen = int(r.data[off+12])
	}
	if endOffset == 0 {
		return off + head, true, nil
	}
	if endOffset > uint64(len(r.data)) || off+head+nameLen > len(r.data) {
		return 0, false, errors.New("fbx: node exceeds file")
	}
	name := string(r.data[off+head : off+head+nameLen])

	p := off + head + nameLen
	for i := uint64(0); i < numProps; i++ {
		next, vals, err := r.property(p)
		if err != nil {
			return 0, false, err
		}
		if i == 0 && name == "Vertices" && vals != nil {
			r.meshes = append(r.meshes, triples(vals))
		}
		p = next
	}

	for p < int(endOffset) {
		next, done, err := r.node(p)
		if err != nil {
			return 0, false, err
		}
		if done {
			break
		}
		p = next
	}
	return int(endOffset), false, nil
}

// property skips one property and returns its values if it is a float array.
func (r *fbxReader) property(off int) (int, []float64, error) {
	if off >= len(r.data) {
		return 0, nil, errors.New("fbx: truncated property")
	}
	typ := r.data[off]
	off++
	switch typ {
	case 'C', 'B':
		return off + 1, nil, nil
	case 'Y':
		return off + 2, nil, nil
	case 'I', 'F':
		return off + 4, nil, nil
	case 'D', 'L':
		return off + 8, nil, nil
	case 'S', 'R':
		if off+4 > len(r.data) {
			return 0, nil, errors.New("fbx: truncated string")
		}
		return off + 4 + int(binary.LittleEndian.Uint32(r.data[off:])), nil, nil
	case 'f', 'd', 'l', 'i', 'b':
		return r.array(typ, off)
	}
	return 0, nil, errors.Errorf("fbx: unknown property type %q", typ)
}

func (r *fbxReader) array(typ byte, off int) (int, []float64, error) {
	if off+12 > len(r.data) {
		return 0, nil, errors.New("fbx: truncated array header")
	}
	count := int(binary.LittleEndian.Uint32(r.data[off:]))
	encoding := binary.LittleEndian.Uint32(r.data[off+4:])
	compressed := int(binary.LittleEndian.Uint32(r.data[off+8:]))
	start := off + 12
	if start+compressed > len(r.data) {
		return 0, nil, errors.New("fbx: truncated array")
	}
	next := start + compressed
	if typ != 'd' && typ != 'f' {
		return next, nil, nil
	}

	raw := r.data[start:next]
	if encoding == 1 {
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return 0, nil, errors.WithMessage(err, "fbx: bad compressed array")
		}
		raw, err = io.ReadAll(zr)
		if err != nil {
			return 0, nil, errors.WithMessage(err, "fbx: failed to inflate array")
		}
	}

	size := 8
	if typ == 'f' {
		size = 4
	}
	if len(raw) < count*size {
		return 0, nil, errors.New("fbx: short array payload")
	}
	vals := make([]float64, count)
	for i := range vals {
		if typ == 'd' {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		} else {
			vals[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	}
	return next, vals, nil
}
