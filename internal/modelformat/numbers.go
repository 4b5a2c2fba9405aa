package modelformat

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/momentum-xyz/media-placer/internal/cmath"

	"github.com/pkg/errors"
)

var errNoGeometry = errors.New("no vertex data found")

// parseFloats reads numbers separated by whitespace or commas.
func parseFloats(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.WithMessagef(err, "bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// triples groups a flat coordinate list into points, dropping a trailing remainder.
func triples(vals []float64) []cmath.Vec3 {
	out := make([]cmath.Vec3, 0, len(vals)/3)
	for i := 0; i+2 < len(vals); i += 3 {
		out = append(out, cmath.NewVec3(vals[i], vals[i+1], vals[i+2]))
	}
	return out
}

// readVec3f32 reads three little-endian float32 values.
func readVec3f32(b []byte) cmath.Vec3 {
	return cmath.NewVec3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}
