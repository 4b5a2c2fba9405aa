package loader

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadImage shows a still image on a plane sized to its aspect ratio.
func (l *Loaders) LoadImage(ctx context.Context, c scene.Container, url string, p placement.Placement) (*scene.Object, error) {
	data, err := l.fetcher.Fetch(ctx, url, assets.Options{})
	if err != nil {
		return nil, fail(err, "Error loading texture")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fail(err, "Error loading texture")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fail(errors.Errorf("empty %s image", format), "Error loading texture")
	}

	mesh := surface(&scene.ImageTexture{Image: img}, float64(b.Dx())/float64(b.Dy()))
	place(mesh, p)
	c.Add(mesh)
	log.Debugf("image %s placed as %s (%s %dx%d)", url, mesh.UUID(), format, b.Dx(), b.Dy())
	return mesh, nil
}
