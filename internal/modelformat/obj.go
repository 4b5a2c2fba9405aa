package modelformat

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

// DecodeOBJ reads the geometric vertices of a Wavefront OBJ file. Each "o" or
// "g" statement starts a new mesh.
func DecodeOBJ(data []byte) (*scene.Object, error) {
	var meshes [][]cmath.Vec3
	var current []cmath.Vec3

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "o", "g":
			if len(current) > 0 {
				meshes = append(meshes, current)
				current = nil
			}
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj: line %d: vertex needs three coordinates", line)
			}
			vals, err := parseFloats(strings.Join(fields[1:4], " "))
			if err != nil {
				return nil, errors.WithMessagef(err, "obj: line %d", line)
			}
			current = append(current, cmath.NewVec3(vals[0], vals[1], vals[2]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WithMessage(err, "obj: failed to read")
	}
	if len(current) > 0 {
		meshes = append(meshes, current)
	}
	if len(meshes) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "obj")
	}
	return newModel(meshes...), nil
}
