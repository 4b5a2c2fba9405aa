package loader

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/media"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"
)

const defaultVideoAspect = 16.0 / 9.0

// VideoAspect falls back to 16 and 9 for whichever dimension is unknown.
func VideoAspect(width, height int) float64 {
	w, h := float64(width), float64(height)
	if w == 0 {
		w = 16
	}
	if h == 0 {
		h = 9
	}
	return w / h
}

// LoadVideo shows a muted looping video. The plane starts at 16:9 and is
// rebuilt at the real aspect ratio once metadata arrives. Blocked autoplay is
// retried on the next click only.
func (l *Loaders) LoadVideo(ctx context.Context, c scene.Container, url string, p placement.Placement) (*scene.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail(err, "Error loading video")
	}

	v := l.media.NewVideo(url, media.ElementOptions{
		CrossOrigin: "anonymous",
		Loop:        true,
		Muted:       true,
		PlaysInline: true,
		Autoplay:    true,
		Preload:     "metadata",
	})
	mesh := surface(&scene.VideoTexture{Source: v, SRGB: true}, defaultVideoAspect)

	v.OnLoadedMetadata(func(width, height int) {
		mesh.SetGeometry(scene.NewPlaneGeometry(2, 2/VideoAspect(width, height)))
		log.Debugf("video %s: metadata %dx%d", mesh.UUID(), width, height)
	})
	v.Load()

	place(mesh, p)
	c.Add(mesh)
	mesh.OnDispose(v.Pause)

	if err := v.Play(); err != nil {
		mesh.OnDispose(media.DeferPlay(l.media.Gestures(), v, media.RetryOnce))
	}
	log.Debugf("video %s placed as %s", url, mesh.UUID())
	return mesh, nil
}
