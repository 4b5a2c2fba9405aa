package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/eventloop"
	"github.com/momentum-xyz/media-placer/internal/media"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls []string
	opts  []assets.Options
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, opts assets.Options) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.opts = append(f.opts, opts)
	data, ok := f.files[url]
	if !ok {
		return nil, &assets.StatusError{URL: url, StatusCode: 404, StatusText: "Not Found"}
	}
	return data, nil
}

type env struct {
	loop    *eventloop.Loop
	media   *media.Headless
	fetcher *fakeFetcher
	graph   *scene.Graph
	loaders *Loaders
}

func newEnv(t *testing.T, probe media.ProbeFunc) *env {
	loop := eventloop.New()
	go loop.Run(context.Background())
	t.Cleanup(loop.Close)

	h := media.NewHeadless(loop, probe)
	f := &fakeFetcher{files: map[string][]byte{}}
	return &env{
		loop:    loop,
		media:   h,
		fetcher: f,
		graph:   scene.NewGraph(),
		loaders: New(f, h, nil),
	}
}

func (e *env) flush(t *testing.T) {
	done := make(chan struct{})
	require.True(t, e.loop.Post(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event loop stalled")
	}
}

var spot = placement.Placement{
	Position:   cmath.NewVec3(1, 2, -3),
	Quaternion: cmath.QuatFromAxisAngle(cmath.NewVec3(0, 1, 0), 0.5),
}

func pngBytes(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func gifBytes(t *testing.T, delays ...int) []byte {
	pal := color.Palette{color.Transparent, color.White, color.Black}
	g := &gif.GIF{}
	for i, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, 8, 4), pal)
		frame.SetColorIndex(i%8, 0, uint8(1+i%2))
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, d)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func objBytes(height float64) []byte {
	return []byte(fmt.Sprintf("v 0 0 0\nv 1 %g 1\n", height))
}

func TestLoadImage(t *testing.T) {
	e := newEnv(t, nil)
	e.fetcher.files["http://api/l.png"] = pngBytes(t, 400, 200)

	mesh, err := e.loaders.LoadImage(context.Background(), e.graph, "http://api/l.png", spot)
	require.NoError(t, err)

	plane, ok := mesh.Geometry().(*scene.PlaneGeometry)
	require.True(t, ok)
	assert.Equal(t, 2.0, plane.Width)
	assert.Equal(t, 1.0, plane.Height)
	assert.True(t, mesh.Material().Transparent)
	assert.Equal(t, scene.DoubleSide, mesh.Material().Side)
	assert.IsType(t, &scene.ImageTexture{}, mesh.Material().Map)
	assert.Equal(t, spot.Position, mesh.Position())
	assert.Equal(t, spot.Quaternion, mesh.Quaternion())

	got, ok := e.graph.Get(mesh.UUID())
	require.True(t, ok)
	assert.Same(t, mesh, got)
}

func TestLoadImageFailure(t *testing.T) {
	e := newEnv(t, nil)
	e.fetcher.files["http://api/broken.png"] = []byte("not an image")

	_, err := e.loaders.LoadImage(context.Background(), e.graph, "http://api/missing.png", spot)
	var se *assets.StatusError
	assert.True(t, errors.As(err, &se))

	_, err = e.loaders.LoadImage(context.Background(), e.graph, "http://api/broken.png", spot)
	assert.Error(t, err)
	assert.Empty(t, e.graph.Objects())
}

func TestFrameWait(t *testing.T) {
	tests := []struct {
		delay int
		want  time.Duration
	}{
		{delay: 0, want: 0},
		{delay: 5, want: 50 * time.Millisecond},
		{delay: 9, want: 90 * time.Millisecond},
		{delay: 10, want: 10 * time.Millisecond},
		{delay: 100, want: 100 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrameWait(tt.delay), "delay %d", tt.delay)
	}
}

func TestDecodeFrames(t *testing.T) {
	frames, err := DecodeFrames(gifBytes(t, 2, 7))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 20, frames[0].Delay)
	assert.Equal(t, 70, frames[1].Delay)
	assert.Equal(t, 8, frames[0].Width())
	assert.Equal(t, 4, frames[0].Height())
	assert.Equal(t, 0, frames[1].Left())

	_, err = DecodeFrames([]byte("GIF89a"))
	assert.Error(t, err)
}

func TestLoadGIFAnimatesUntilRemoved(t *testing.T) {
	e := newEnv(t, nil)
	e.fetcher.files["http://api/a.gif"] = gifBytes(t, 1, 1, 1)

	mesh, anim, err := e.loaders.LoadGIF(context.Background(), e.graph, "http://api/a.gif", spot)
	require.NoError(t, err)
	assert.Equal(t, assets.Options{NoStore: true}, e.fetcher.opts[0])

	plane := mesh.Geometry().(*scene.PlaneGeometry)
	assert.Equal(t, 1.0, plane.Height)
	assert.Same(t, anim.Texture(), mesh.Material().Map)

	seen := map[int]bool{}
	assert.Eventually(t, func() bool {
		seen[anim.Current()] = true
		return len(seen) == 3 && anim.Texture().Version() > 3
	}, 2*time.Second, time.Millisecond)

	require.True(t, e.graph.Remove(mesh.UUID()))
	assert.True(t, anim.Stopped())

	time.Sleep(50 * time.Millisecond)
	v := anim.Texture().Version()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, v, anim.Texture().Version())
}

func TestLoadGIFFetchError(t *testing.T) {
	e := newEnv(t, nil)
	_, anim, err := e.loaders.LoadGIF(context.Background(), e.graph, "http://api/missing.gif", spot)
	assert.Error(t, err)
	assert.Nil(t, anim)
	assert.Empty(t, e.graph.Objects())
}

func TestVideoAspect(t *testing.T) {
	assert.InDelta(t, 16.0/9.0, VideoAspect(0, 0), 1e-12)
	assert.InDelta(t, 4.0/3.0, VideoAspect(640, 480), 1e-12)
	assert.InDelta(t, 640.0/9.0, VideoAspect(640, 0), 1e-12)
}

func TestLoadVideo(t *testing.T) {
	e := newEnv(t, func(string) (int, int) { return 640, 480 })

	mesh, err := e.loaders.LoadVideo(context.Background(), e.graph, "http://api/v.webm", spot)
	require.NoError(t, err)
	first := mesh.Geometry()
	assert.Equal(t, spot.Position, mesh.Position())

	e.flush(t)
	plane := mesh.Geometry().(*scene.PlaneGeometry)
	assert.InDelta(t, 1.5, plane.Height, 1e-12)
	assert.True(t, first.Disposed())

	tex := mesh.Material().Map.(*scene.VideoTexture)
	assert.True(t, tex.SRGB)
	assert.Equal(t, "http://api/v.webm", tex.Source.Src())
	// muted video is allowed to autoplay, so no click retry was registered
	assert.Equal(t, 0, e.media.Clicks().Listeners())
}

// blockingProvider refuses every play until a click and keeps the audio context running.
type blockingProvider struct {
	*media.Headless
}

func (p blockingProvider) AudioContext() media.AudioContext {
	return runningContext{}
}

func (p blockingProvider) NewVideo(src string, opts media.ElementOptions) media.VideoElement {
	opts.Muted = false
	return p.Headless.NewVideo(src, opts)
}

type runningContext struct{}

func (runningContext) State() media.ContextState { return media.ContextRunning }

func (runningContext) Resume(context.Context) error { return nil }

func TestLoadVideoRetriesOnce(t *testing.T) {
	e := newEnv(t, nil)
	l := New(e.fetcher, blockingProvider{e.media}, nil)

	mesh, err := l.LoadVideo(context.Background(), e.graph, "http://api/v.mp4", spot)
	require.NoError(t, err)
	tex := mesh.Material().Map.(*scene.VideoTexture)
	el := tex.Source.(media.Element)
	assert.False(t, el.Playing())
	assert.Equal(t, 1, e.media.Clicks().Listeners())

	e.media.Clicks().Click()
	e.flush(t)
	assert.True(t, el.Playing())
	assert.Equal(t, 0, e.media.Clicks().Listeners())
}

func TestLoadAudio(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.loaders.LoadAudio(context.Background(), e.graph, "http://api/a.mp3", "soundsystem")
	assert.ErrorIs(t, err, ErrSoundsystemNotFound)

	system := scene.NewGroup()
	system.SetName("soundsystem")
	e.graph.Add(system)

	// a click unlocks both the suspended context and audible playback
	e.media.Clicks().Click()
	speaker, err := e.loaders.LoadAudio(context.Background(), e.graph, "http://api/a.mp3", "soundsystem")
	require.NoError(t, err)
	e.flush(t)

	assert.Same(t, system, speaker.Parent())
	assert.Equal(t, scene.KindPositionalAudio, speaker.Kind())
	assert.Equal(t, 0.5, speaker.Audio().RefDistance)
	el := speaker.Audio().Source.(media.AudioElement)
	assert.True(t, el.Playing())
	assert.True(t, el.Options().Loop)
	assert.Equal(t, media.ContextRunning, e.media.AudioContext().State())
}

func TestLoadAudioBeforeFirstClick(t *testing.T) {
	e := newEnv(t, nil)
	system := scene.NewGroup()
	system.SetName("soundsystem")
	e.graph.Add(system)

	speaker, err := e.loaders.LoadAudio(context.Background(), e.graph, "http://api/a.mp3", "soundsystem")
	require.NoError(t, err)
	e.flush(t)

	el := speaker.Audio().Source.(media.AudioElement)
	assert.False(t, el.Playing())
	assert.Equal(t, media.ContextSuspended, e.media.AudioContext().State())
	assert.Equal(t, 1, e.media.Clicks().Listeners())

	e.media.Clicks().Click()
	e.flush(t)
	assert.Equal(t, media.ContextRunning, e.media.AudioContext().State())
	assert.True(t, el.Playing())
	assert.Equal(t, 0, e.media.Clicks().Listeners())

	e.media.Clicks().Click()
	e.flush(t)
	assert.True(t, el.Playing())
}

func TestLoadAudioRetriesEveryClick(t *testing.T) {
	e := newEnv(t, nil)
	l := New(e.fetcher, blockingProvider{e.media}, nil)
	system := scene.NewGroup()
	system.SetName("soundsystem")
	e.graph.Add(system)

	speaker, err := l.LoadAudio(context.Background(), e.graph, "http://api/a.mp3", "soundsystem")
	require.NoError(t, err)
	e.flush(t)

	el := speaker.Audio().Source.(media.AudioElement)
	assert.False(t, el.Playing())
	assert.Equal(t, 1, e.media.Clicks().Listeners())

	e.media.Clicks().Click()
	e.media.Clicks().Click()
	e.flush(t)
	assert.True(t, el.Playing())
	assert.Equal(t, 1, e.media.Clicks().Listeners())

	require.True(t, e.graph.Remove(system.UUID()))
	assert.Equal(t, 0, e.media.Clicks().Listeners())
	assert.False(t, el.Playing())
}

func TestFitHeight(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		want   float64
	}{
		{name: "tall model shrinks", height: 10, want: 0.5},
		{name: "exactly five stays", height: 5, want: 1},
		{name: "short model is not enlarged", height: 2, want: 1},
		{name: "very tall", height: 125, want: 0.04},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := scene.NewGroup()
			obj.Add(scene.NewMesh(scene.NewMeshGeometry([]cmath.Vec3{{}, {X: 1, Y: tt.height, Z: 1}}), nil))

			got := FitHeight(obj, MaxModelHeight)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.InDelta(t, tt.height*tt.want, scene.BoundingBox(obj).Size().Y, 1e-9)
		})
	}
}

func TestLoadModel(t *testing.T) {
	e := newEnv(t, nil)
	e.fetcher.files["http://api/tower.obj"] = objBytes(20)

	obj, err := e.loaders.LoadModel(context.Background(), e.graph, "http://api/tower.obj", spot)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, obj.Scale().Y, 1e-12)
	assert.Equal(t, spot.Position, obj.Position())

	box := scene.BoundingBox(obj)
	assert.InDelta(t, MaxModelHeight, box.Size().Y, 1e-9)
}

func TestLoadModelUnsupported(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.loaders.LoadModel(context.Background(), e.graph, "http://api/thing.xyz", spot)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, e.graph.Objects())
	assert.Empty(t, e.fetcher.calls)
}
