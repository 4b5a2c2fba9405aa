package loader

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/modelformat"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
)

// MaxModelHeight is the tallest a placed model may be.
const MaxModelHeight = 5.0

// FitHeight shrinks obj uniformly so it is at most maxHeight tall and returns
// the applied factor. Objects are never enlarged.
func FitHeight(obj *scene.Object, maxHeight float64) float64 {
	h := scene.BoundingBox(obj).Size().Y
	if h <= maxHeight {
		return 1
	}
	s := maxHeight / h
	obj.SetScale(cmath.NewVec3(s, s, s))
	return s
}

// LoadModel picks a decoder by the URL's extension, decodes the model, caps
// its height and places it.
func (l *Loaders) LoadModel(ctx context.Context, c scene.Container, url string, p placement.Placement) (*scene.Object, error) {
	ext := modelformat.Extension(url)
	dec, ok := l.models.Get(ext)
	if !ok {
		return nil, fail(errors.WithMessagef(ErrUnsupportedFormat, "%q", ext), "Error loading model")
	}

	data, err := l.fetcher.Fetch(ctx, url, assets.Options{})
	if err != nil {
		return nil, fail(err, "Error loading model")
	}
	obj, err := dec.Decode(data)
	if err != nil {
		return nil, fail(err, "Error loading model")
	}

	s := FitHeight(obj, MaxModelHeight)
	place(obj, p)
	c.Add(obj)
	log.Debugf("model %s placed as %s (scale %.4f)", url, obj.UUID(), s)
	return obj, nil
}
