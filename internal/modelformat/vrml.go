package modelformat

import (
	"regexp"
	"strings"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

var (
	vrmlCommentRe = regexp.MustCompile(`#[^\n]*`)
	vrmlPointRe   = regexp.MustCompile(`\bpoint\s*\[([^\]]*)\]`)
)

// DecodeVRML reads the point arrays of Coordinate nodes in a VRML97 world.
func DecodeVRML(data []byte) (*scene.Object, error) {
	text := string(data)
	if !strings.HasPrefix(text, "#VRML") {
		return nil, errors.New("wrl: missing #VRML header")
	}
	text = vrmlCommentRe.ReplaceAllString(text, "")

	var meshes [][]cmath.Vec3
	for _, m := range vrmlPointRe.FindAllStringSubmatch(text, -1) {
		vals, err := parseFloats(m[1])
		if err != nil {
			return nil, errors.WithMessage(err, "wrl")
		}
		if pts := triples(vals); len(pts) > 0 {
			meshes = append(meshes, pts)
		}
	}
	if len(meshes) == 0 {
		return nil, errors.WithMessage(errNoGeometry, "wrl")
	}
	return newModel(meshes...), nil
}
