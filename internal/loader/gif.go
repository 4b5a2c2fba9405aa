package loader

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/gif"
	"sync/atomic"
	"time"

	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"
	"github.com/momentum-xyz/media-placer/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// minFrameWait stands in for the clamping browsers apply to zero-length timers.
const minFrameWait = 4 * time.Millisecond

// Frame is one decoded GIF frame. Patch bounds carry the frame offset.
type Frame struct {
	Patch *image.RGBA
	// Delay is in milliseconds, as encoded (hundredths of a second times ten).
	Delay int
}

func (f Frame) Left() int   { return f.Patch.Rect.Min.X }
func (f Frame) Top() int    { return f.Patch.Rect.Min.Y }
func (f Frame) Width() int  { return f.Patch.Rect.Dx() }
func (f Frame) Height() int { return f.Patch.Rect.Dy() }

// FrameWait is how long a frame stays up. Delays under 10 are assumed to be in
// the wrong unit and scaled by ten.
func FrameWait(delay int) time.Duration {
	if delay < 10 {
		delay *= 10
	}
	return time.Duration(delay) * time.Millisecond
}

// DecodeFrames splits a GIF into RGBA patches.
func DecodeFrames(data []byte) ([]Frame, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to decode gif")
	}
	if len(g.Image) == 0 {
		return nil, errors.New("gif has no frames")
	}

	frames := make([]Frame, len(g.Image))
	for i, src := range g.Image {
		patch := image.NewRGBA(src.Bounds())
		draw.Draw(patch, patch.Rect, src, src.Bounds().Min, draw.Src)
		frames[i] = Frame{Patch: patch, Delay: g.Delay[i] * 10}
	}
	return frames, nil
}

// Animation drives a canvas texture through GIF frames until stopped.
type Animation struct {
	key     uuid.UUID
	timers  *utils.TimerSet[uuid.UUID]
	texture *scene.CanvasTexture
	frames  []Frame
	next    int
	shown   int64
	stopped utils.TAtomBool
}

// Stop cancels the pending frame. It is safe to call more than once.
func (a *Animation) Stop() {
	a.stopped.Set(true)
	a.timers.Stop(a.key)
}

func (a *Animation) Stopped() bool {
	return a.stopped.Get()
}

// Current is the index of the frame on the canvas, -1 before the first render.
func (a *Animation) Current() int {
	return int(atomic.LoadInt64(&a.shown))
}

func (a *Animation) Texture() *scene.CanvasTexture {
	return a.texture
}

func (a *Animation) step(uuid.UUID) error {
	if a.stopped.Get() {
		return nil
	}
	i := a.next
	f := a.frames[i]
	a.texture.PutImage(f.Patch)
	atomic.StoreInt64(&a.shown, int64(i))
	a.next = (i + 1) % len(a.frames)

	wait := FrameWait(f.Delay)
	if wait < minFrameWait {
		wait = minFrameWait
	}
	if !a.stopped.Get() {
		a.timers.Set(a.key, wait, a.step)
	}
	return nil
}

// LoadGIF shows an animated GIF on a plane. The returned animation keeps
// running until Stop is called or the object is removed from its graph.
func (l *Loaders) LoadGIF(ctx context.Context, c scene.Container, url string, p placement.Placement) (*scene.Object, *Animation, error) {
	data, err := l.fetcher.Fetch(ctx, url, assets.Options{NoStore: true})
	if err != nil {
		return nil, nil, fail(err, "Error loading GIF")
	}
	frames, err := DecodeFrames(data)
	if err != nil {
		return nil, nil, fail(err, "Error loading GIF")
	}

	w, h := frames[0].Width(), frames[0].Height()
	if w == 0 || h == 0 {
		return nil, nil, fail(errors.New("first frame is empty"), "Error loading GIF")
	}
	tex := scene.NewCanvasTexture(w, h)
	mesh := surface(tex, float64(w)/float64(h))
	place(mesh, p)
	c.Add(mesh)

	anim := &Animation{
		key:     mesh.UUID(),
		timers:  l.animations,
		texture: tex,
		frames:  frames,
		shown:   -1,
	}
	mesh.OnDispose(anim.Stop)
	_ = anim.step(anim.key)

	log.Debugf("gif %s placed as %s (%d frames)", url, mesh.UUID(), len(frames))
	return mesh, anim, nil
}
