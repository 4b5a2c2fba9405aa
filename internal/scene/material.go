package scene

import (
	"image"
	"image/draw"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
)

type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material is the unlit material media surfaces are drawn with.
type Material struct {
	Map         Texture
	Transparent bool
	Side        Side
}

type Texture interface {
	Bounds() image.Rectangle
}

// ImageTexture wraps a fully decoded still image.
type ImageTexture struct {
	Image image.Image
}

func (t *ImageTexture) Bounds() image.Rectangle {
	return t.Image.Bounds()
}

// CanvasTexture is backed by a mutable RGBA canvas. Every Draw bumps Version,
// which plays the role of a needs-update flag for the renderer.
type CanvasTexture struct {
	mu      deadlock.RWMutex
	canvas  *image.RGBA
	version uint64
}

func NewCanvasTexture(width, height int) *CanvasTexture {
	return &CanvasTexture{canvas: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (t *CanvasTexture) Bounds() image.Rectangle {
	return t.canvas.Bounds()
}

// PutImage replaces the pixels under src's bounds, like putImageData.
func (t *CanvasTexture) PutImage(src image.Image) {
	t.mu.Lock()
	draw.Draw(t.canvas, src.Bounds(), src, src.Bounds().Min, draw.Src)
	t.mu.Unlock()
	atomic.AddUint64(&t.version, 1)
}

func (t *CanvasTexture) Version() uint64 {
	return atomic.LoadUint64(&t.version)
}

// Snapshot copies the current canvas.
func (t *CanvasTexture) Snapshot() *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := image.NewRGBA(t.canvas.Bounds())
	copy(c.Pix, t.canvas.Pix)
	return c
}

// VideoTexture samples frames from a playing media source.
type VideoTexture struct {
	Source MediaSource
	SRGB   bool
}

func (t *VideoTexture) Bounds() image.Rectangle {
	w, h := t.Source.Dimensions()
	return image.Rect(0, 0, w, h)
}

// MediaSource is the part of a media element the scene needs to know about.
type MediaSource interface {
	Src() string
	Dimensions() (width, height int)
}

// AudioEmitter configures a positional audio node.
type AudioEmitter struct {
	RefDistance float64
	Source      MediaSource
}
