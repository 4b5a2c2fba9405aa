package modelformat

import (
	"bytes"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/hschendel/stl"
	"github.com/pkg/errors"
)

// DecodeSTL reads binary or ASCII stereolithography files.
func DecodeSTL(data []byte) (*scene.Object, error) {
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithMessage(err, "stl: failed to parse")
	}

	positions := make([]cmath.Vec3, 0, len(solid.Triangles)*3)
	for _, t := range solid.Triangles {
		for _, v := range t.Vertices {
			positions = append(positions, cmath.NewVec3(float64(v[0]), float64(v[1]), float64(v[2])))
		}
	}
	if len(positions) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "stl")
	}
	return newModel(positions), nil
}
