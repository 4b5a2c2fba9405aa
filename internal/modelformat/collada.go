package modelformat

import (
	"encoding/xml"
	"strings"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

type colladaInput struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
}

type colladaSource struct {
	ID         string `xml:"id,attr"`
	FloatArray struct {
		Values string `xml:",chardata"`
	} `xml:"float_array"`
	Accessor struct {
		Stride int `xml:"stride,attr"`
	} `xml:"technique_common>accessor"`
}

type colladaDocument struct {
	UpAxis     string `xml:"asset>up_axis"`
	Geometries []struct {
		Mesh struct {
			Sources  []colladaSource `xml:"source"`
			Vertices struct {
				Inputs []colladaInput `xml:"input"`
			} `xml:"vertices"`
		} `xml:"mesh"`
	} `xml:"library_geometries>geometry"`
}

// DecodeCollada reads the POSITION sources of every geometry in a COLLADA
// document. Z-up documents are converted to Y-up.
func DecodeCollada(data []byte) (*scene.Object, error) {
	var doc colladaDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WithMessage(err, "dae: failed to parse")
	}
	zUp := strings.TrimSpace(doc.UpAxis) == "Z_UP"

	var meshes [][]cmath.Vec3
	for _, g := range doc.Geometries {
		sources := make(map[string]colladaSource, len(g.Mesh.Sources))
		for _, s := range g.Mesh.Sources {
			sources[s.ID] = s
		}
		for _, in := range g.Mesh.Vertices.Inputs {
			if in.Semantic != "POSITION" {
				continue
			}
			src, ok := sources[strings.TrimPrefix(in.Source, "#")]
			if !ok {
				return nil, errors.Errorf("dae: missing source %s", in.Source)
			}
			positions, err := colladaPositions(src, zUp)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, positions)
		}
	}
	if len(meshes) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "dae")
	}
	return newModel(meshes...), nil
}

func colladaPositions(src colladaSource, zUp bool) ([]cmath.Vec3, error) {
	vals, err := parseFloats(src.FloatArray.Values)
	if err != nil {
		return nil, errors.WithMessage(err, "dae")
	}
	stride := src.Accessor.Stride
	if stride == 0 {
		stride = 3
	}
	if stride < 3 {
		return nil, errors.Errorf("dae: position stride %d", stride)
	}

	positions := make([]cmath.Vec3, 0, len(vals)/stride)
	for i := 0; i+2 < len(vals); i += stride {
		p := cmath.NewVec3(vals[i], vals[i+1], vals[i+2])
		if zUp {
			p = cmath.NewVec3(p.X, p.Z, -p.Y)
		}
		positions = append(positions, p)
	}
	return positions, nil
}
