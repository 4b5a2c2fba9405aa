package modelformat

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

var plyTypeSizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

type plyProperty struct {
	name   string
	typ    string
	isList bool
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

func (e plyElement) fixedSize() (int, bool) {
	size := 0
	for _, p := range e.props {
		if p.isList {
			return 0, false
		}
		size += plyTypeSizes[p.typ]
	}
	return size, true
}

// DecodePLY reads vertex positions from ASCII and binary polygon files.
func DecodePLY(data []byte) (*scene.Object, error) {
	end := bytes.Index(data, []byte("end_header"))
	if !bytes.HasPrefix(data, []byte("ply")) || end < 0 {
		return nil, errors.New("ply: missing header")
	}
	body := data[end+len("end_header"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}

	format, elements, err := parsePLYHeader(string(data[:end]))
	if err != nil {
		return nil, err
	}

	var positions []cmath.Vec3
	switch format {
	case "ascii":
		positions, err = readPLYASCII(body, elements)
	case "binary_little_endian":
		positions, err = readPLYBinary(body, elements, binary.LittleEndian)
	case "binary_big_endian":
		positions, err = readPLYBinary(body, elements, binary.BigEndian)
	default:
		err = errors.Errorf("ply: unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "ply")
	}
	return newModel(positions), nil
}

func parsePLYHeader(header string) (string, []plyElement, error) {
	var format string
	var elements []plyElement
	for _, line := range strings.Split(header, "\n") {
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "format":
			if len(f) < 2 {
				return "", nil, errors.New("ply: bad format line")
			}
			format = f[1]
		case "element":
			if len(f) < 3 {
				return "", nil, errors.New("ply: bad element line")
			}
			n, err := strconv.Atoi(f[2])
			if err != nil {
				return "", nil, errors.WithMessage(err, "ply: bad element count")
			}
			elements = append(elements, plyElement{name: f[1], count: n})
		case "property":
			if len(elements) == 0 {
				return "", nil, errors.New("ply: property before element")
			}
			el := &elements[len(elements)-1]
			if len(f) >= 5 && f[1] == "list" {
				el.props = append(el.props, plyProperty{name: f[4], typ: f[3], isList: true})
			} else if len(f) >= 3 {
				if _, ok := plyTypeSizes[f[1]]; !ok {
					return "", nil, errors.Errorf("ply: unknown property type %q", f[1])
				}
				el.props = append(el.props, plyProperty{name: f[2], typ: f[1]})
			}
		}
	}
	return format, elements, nil
}

func vertexAxes(e plyElement) ([3]int, error) {
	axes := [3]int{-1, -1, -1}
	for i, p := range e.props {
		switch p.name {
		case "x":
			axes[0] = i
		case "y":
			axes[1] = i
		case "z":
			axes[2] = i
		}
	}
	for _, a := range axes {
		if a < 0 {
			return axes, errors.New("ply: vertex element lacks x, y or z")
		}
	}
	return axes, nil
}

func readPLYASCII(body []byte, elements []plyElement) ([]cmath.Vec3, error) {
	lines := strings.Split(string(body), "\n")
	row := 0
	for _, e := range elements {
		if e.name != "vertex" {
			row += e.count
			continue
		}
		axes, err := vertexAxes(e)
		if err != nil {
			return nil, err
		}
		if row+e.count > len(lines) {
			return nil, errors.New("ply: truncated vertex list")
		}
		positions := make([]cmath.Vec3, 0, e.count)
		for _, line := range lines[row : row+e.count] {
			vals, err := parseFloats(line)
			if err != nil {
				return nil, errors.WithMessage(err, "ply")
			}
			if len(vals) < len(e.props) {
				return nil, errors.New("ply: short vertex row")
			}
			positions = append(positions, cmath.NewVec3(vals[axes[0]], vals[axes[1]], vals[axes[2]]))
		}
		return positions, nil
	}
	return nil, nil
}

func readPLYBinary(body []byte, elements []plyElement, order binary.ByteOrder) ([]cmath.Vec3, error) {
	off := 0
	for _, e := range elements {
		size, fixed := e.fixedSize()
		if e.name != "vertex" {
			if !fixed {
				return nil, errors.Errorf("ply: cannot skip variable sized element %q before vertices", e.name)
			}
			off += size * e.count
			continue
		}
		if !fixed {
			return nil, errors.New("ply: list property in vertex element")
		}
		axes, err := vertexAxes(e)
		if err != nil {
			return nil, err
		}
		if off+size*e.count > len(body) {
			return nil, errors.New("ply: truncated vertex data")
		}

		offsets := make([]int, len(e.props))
		for i, acc := 0, 0; i < len(e.props); i++ {
			offsets[i] = acc
			acc += plyTypeSizes[e.props[i].typ]
		}
		positions := make([]cmath.Vec3, 0, e.count)
		for i := 0; i < e.count; i++ {
			rec := body[off+i*size:]
			var v [3]float64
			for k, a := range axes {
				v[k] = readPLYScalar(rec[offsets[a]:], e.props[a].typ, order)
			}
			positions = append(positions, cmath.NewVec3(v[0], v[1], v[2]))
		}
		return positions, nil
	}
	return nil, nil
}

func readPLYScalar(b []byte, typ string, order binary.ByteOrder) float64 {
	switch typ {
	case "char", "int8":
		return float64(int8(b[0]))
	case "uchar", "uint8":
		return float64(b[0])
	case "short", "int16":
		return float64(int16(order.Uint16(b)))
	case "ushort", "uint16":
		return float64(order.Uint16(b))
	case "int", "int32":
		return float64(int32(order.Uint32(b)))
	case "uint", "uint32":
		return float64(order.Uint32(b))
	case "float", "float32":
		return float64(math.Float32frombits(order.Uint32(b)))
	case "double", "float64":
		return math.Float64frombits(order.Uint64(b))
	}
	return 0
}
