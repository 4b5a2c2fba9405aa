package actions

import (
	"bytes"
	"context"
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
	"github.com/momentum-xyz/media-placer/internal/loader"
	"github.com/momentum-xyz/media-placer/internal/media"
	"github.com/momentum-xyz/media-placer/internal/objects"
	"github.com/momentum-xyz/media-placer/internal/placement"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://api"

type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ assets.Options) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	data, ok := f.files[url]
	if !ok {
		return nil, &assets.StatusError{URL: url, StatusCode: 404, StatusText: "Not Found"}
	}
	return data, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []objects.Descriptor
	rooms map[string][]objects.Descriptor
	err   error
}

func (s *fakeStore) FetchObjects(_ context.Context, room string) ([]objects.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.rooms[room], nil
}

func (s *fakeStore) SaveObject(_ context.Context, d objects.Descriptor) (*objects.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, d)
	if s.err != nil {
		return nil, s.err
	}
	return &d, nil
}

func (s *fakeStore) Saved() []objects.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]objects.Descriptor(nil), s.saved...)
}

type recorder struct {
	mu        sync.Mutex
	announced []objects.Descriptor
	statuses  []string
}

func (r *recorder) Announce(d objects.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.announced = append(r.announced, d)
	return nil
}

func (r *recorder) Placement(kind, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, kind+":"+status)
}

type env struct {
	fetcher *fakeFetcher
	store   *fakeStore
	graph   *scene.Graph
	camera  *scene.Camera
	rec     *recorder
	actions *Actions
}

func newEnv(t *testing.T) *env {
	loop := eventloop.New()
	go loop.Run(context.Background())
	t.Cleanup(loop.Close)

	e := &env{
		fetcher: &fakeFetcher{files: map[string][]byte{}},
		store:   &fakeStore{rooms: map[string][]objects.Descriptor{}},
		graph:   scene.NewGraph(),
		camera:  scene.NewCamera(),
		rec:     &recorder{},
	}
	e.camera.SetPose(cmath.NewVec3(0, 1.6, 0), cmath.QuatFromAxisAngle(cmath.NewVec3(0, 1, 0), 0.25))

	speakers := scene.NewGroup()
	speakers.SetName("soundsystem")
	e.graph.Add(speakers)

	loaders := loader.New(e.fetcher, media.NewHeadless(loop, nil), nil)
	cfg := Config{BaseURL: base, Room: "lobby", Soundsystem: "soundsystem"}
	e.actions = New(cfg, e.graph, e.camera, loaders, e.store, WithNotifier(e.rec), WithReporter(e.rec))
	t.Cleanup(e.graph.Clear)
	return e
}

func await(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o, ok := <-ch:
		require.True(t, ok)
		_, open := <-ch
		assert.False(t, open, "outcome channel must be closed after one value")
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome")
	}
	return Outcome{}
}

func pngBytes(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	pal := color.Palette{color.Transparent, color.White}
	g := &gif.GIF{}
	for i := 0; i < 2; i++ {
		g.Image = append(g.Image, image.NewPaletted(image.Rect(0, 0, 4, 4), pal))
		g.Delay = append(g.Delay, 5)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func TestSelectGIFSource(t *testing.T) {
	tests := []struct {
		name      string
		filePaths map[string]string
		variant   string
		video     bool
		ok        bool
	}{
		{
			name:      "webm first",
			filePaths: map[string]string{"videoWebm": "/a.webm", "videoMp4": "/a.mp4", "original": "/a.gif"},
			variant:   objects.VariantVideoWebm,
			video:     true,
			ok:        true,
		},
		{
			name:      "mp4 when no webm",
			filePaths: map[string]string{"videoMp4": "/a.mp4", "original": "/a.gif"},
			variant:   objects.VariantVideoMp4,
			video:     true,
			ok:        true,
		},
		{
			name:      "original gif",
			filePaths: map[string]string{"videoWebm": "", "original": "/a.gif"},
			variant:   objects.VariantOriginal,
			ok:        true,
		},
		{
			name:      "nothing",
			filePaths: map[string]string{"small": "/s.gif"},
		},
		{
			name: "nil map",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, ok := SelectGIFSource(tt.filePaths)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.variant, src.Variant)
			assert.Equal(t, tt.video, src.Video())
			if ok {
				assert.Equal(t, tt.filePaths[tt.variant], src.Path)
			}
		})
	}
}

func TestAddImage(t *testing.T) {
	e := newEnv(t)
	e.fetcher.files[base+"/l.png"] = pngBytes(t, 300, 150)
	variants := map[string]string{"original": "/o.png", "small": "/s.png", "medium": "/m.png", "large": "/l.png"}
	want := placement.Compute(e.camera)

	o := await(t, e.actions.AddImage(context.Background(), objects.UploadResult{FilePaths: variants}))
	require.NoError(t, o.Err)
	require.True(t, o.Placed())
	require.True(t, o.Persisted())
	assert.Equal(t, StatusPlaced, o.Status())

	assert.Equal(t, variants, TextureURLs(o.Object))
	size, _ := o.Object.UserData(UserDataCurrentTextureSize)
	assert.Equal(t, "large", size)

	saved := e.store.Saved()
	require.Len(t, saved, 1)
	d := saved[0]
	assert.Equal(t, objects.TypeImage, d.Type)
	assert.Equal(t, "lobby", d.Room)
	assert.Equal(t, o.Object.UUID().String(), d.UUID)
	assert.Equal(t, variants, d.FilePaths)
	require.NotNil(t, d.Position)
	assert.True(t, want.Position.ApproxEqual(*d.Position, 1e-9))
	require.NotNil(t, d.Rotation)
	assert.Equal(t, want.Rotation(), *d.Rotation)

	assert.Equal(t, []objects.Descriptor{d}, e.rec.announced)
	assert.Equal(t, []string{"image:placed"}, e.rec.statuses)
}

func TestAddGIF(t *testing.T) {
	t.Run("video transcode", func(t *testing.T) {
		e := newEnv(t)
		fp := map[string]string{"videoMp4": "/a.mp4", "original": "/a.gif"}

		o := await(t, e.actions.AddGIF(context.Background(), objects.UploadResult{FilePaths: fp}))
		require.NoError(t, o.Err)
		assert.Nil(t, o.Animation)
		tex, ok := o.Object.Material().Map.(*scene.VideoTexture)
		require.True(t, ok)
		assert.Equal(t, base+"/a.mp4", tex.Source.Src())
		assert.Zero(t, e.fetcher.calls)

		require.Len(t, e.store.Saved(), 1)
		assert.Equal(t, objects.TypeGIF, e.store.Saved()[0].Type)
		assert.Equal(t, fp, e.store.Saved()[0].FilePaths)
	})

	t.Run("original gif", func(t *testing.T) {
		e := newEnv(t)
		e.fetcher.files[base+"/a.gif"] = gifBytes(t)

		o := await(t, e.actions.AddGIF(context.Background(), objects.UploadResult{
			FilePaths: map[string]string{"original": "/a.gif"},
		}))
		require.NoError(t, o.Err)
		require.NotNil(t, o.Animation)
		assert.False(t, o.Animation.Stopped())

		require.True(t, e.graph.Remove(o.Object.UUID()))
		assert.True(t, o.Animation.Stopped())
	})

	t.Run("no source", func(t *testing.T) {
		e := newEnv(t)
		o := await(t, e.actions.AddGIF(context.Background(), objects.UploadResult{}))
		assert.True(t, errors.Is(o.Err, ErrMissingSource))
		assert.Empty(t, e.store.Saved())
	})
}

func TestAddAudio(t *testing.T) {
	e := newEnv(t)

	o := await(t, e.actions.AddAudio(context.Background(), objects.UploadResult{FilePath: "/song.mp3"}))
	require.NoError(t, o.Err)
	assert.Equal(t, scene.KindPositionalAudio, o.Object.Kind())
	assert.Equal(t, "soundsystem", o.Object.Parent().Name())

	require.Len(t, e.store.Saved(), 1)
	assert.Equal(t, objects.Descriptor{
		Type:        objects.TypeAudio,
		Room:        "lobby",
		UUID:        o.Object.UUID().String(),
		FilePath:    "/song.mp3",
		Soundsystem: "soundsystem",
	}, e.store.Saved()[0])
}

func TestAddAudioWithoutSoundsystem(t *testing.T) {
	e := newEnv(t)
	e.graph.Clear()

	o := await(t, e.actions.AddAudio(context.Background(), objects.UploadResult{FilePath: "/song.mp3"}))
	assert.True(t, errors.Is(o.Err, loader.ErrSoundsystemNotFound))
	assert.False(t, o.Placed())
	assert.Empty(t, e.store.Saved())
}

func TestAddModel(t *testing.T) {
	e := newEnv(t)
	e.fetcher.files[base+"/tree.obj"] = []byte("v 0 0 0\nv 1 10 1\n")

	o := await(t, e.actions.AddModel(context.Background(), objects.UploadResult{FilePath: "/tree.obj"}, "obj"))
	require.NoError(t, o.Err)
	assert.InDelta(t, 0.5, o.Object.Scale().Y, 1e-9)

	require.Len(t, e.store.Saved(), 1)
	d := e.store.Saved()[0]
	assert.Equal(t, objects.TypeModel, d.Type)
	assert.Equal(t, "/tree.obj", d.FilePath)
	assert.Equal(t, "obj", d.Extension)
	assert.NotNil(t, d.Position)
}

func TestAddModelUnsupported(t *testing.T) {
	e := newEnv(t)
	before := len(e.graph.Objects())

	o := await(t, e.actions.AddModel(context.Background(), objects.UploadResult{FilePath: "/thing.xyz"}, "xyz"))
	assert.True(t, errors.Is(o.Err, loader.ErrUnsupportedFormat))
	assert.Equal(t, StatusLoadFailed, o.Status())
	assert.Nil(t, o.Descriptor)
	assert.Len(t, e.graph.Objects(), before)
	assert.Empty(t, e.store.Saved())
	assert.Zero(t, e.fetcher.calls)
	assert.Equal(t, []string{"model:load_failed"}, e.rec.statuses)
}

func TestSaveFailureKeepsObject(t *testing.T) {
	e := newEnv(t)
	e.fetcher.files[base+"/l.png"] = pngBytes(t, 10, 10)
	e.store.err = &objects.StatusError{Op: "save", StatusCode: 500, StatusText: "Internal Server Error"}

	o := await(t, e.actions.AddImage(context.Background(), objects.UploadResult{
		FilePaths: map[string]string{"large": "/l.png"},
	}))
	var se *objects.StatusError
	require.True(t, errors.As(o.Err, &se))
	assert.Equal(t, StatusSaveFailed, o.Status())
	assert.True(t, o.Placed())
	assert.False(t, o.Persisted())
	require.NotNil(t, o.Descriptor)

	_, ok := e.graph.Get(o.Object.UUID())
	assert.True(t, ok)
	assert.Empty(t, e.rec.announced)
}

func TestRestore(t *testing.T) {
	e := newEnv(t)
	e.fetcher.files[base+"/l.png"] = pngBytes(t, 20, 10)
	e.fetcher.files[base+"/box.obj"] = []byte("v 0 0 0\nv 1 1 1\n")

	pos := cmath.NewVec3(4, 0, -2)
	rot := cmath.Euler{Y: 0.3, Order: cmath.OrderXYZ}
	yxz := cmath.Euler{X: 0.2, Y: 0.4, Order: "YXZ"}
	bad := cmath.Euler{Y: 0.4, Order: "QQQ"}
	e.store.rooms["lobby"] = []objects.Descriptor{
		{Type: objects.TypeImage, Room: "lobby", UUID: "img", Position: &pos, Rotation: &rot, FilePaths: map[string]string{"large": "/l.png"}},
		{Type: objects.TypeModel, Room: "lobby", UUID: "box", FilePath: "/box.obj", Extension: "obj"},
		{Type: "hologram", Room: "lobby", UUID: "odd"},
		{Type: objects.TypeImage, Room: "lobby", UUID: "yxz", Rotation: &yxz, FilePaths: map[string]string{"large": "/l.png"}},
		{Type: objects.TypeImage, Room: "lobby", UUID: "bad", Rotation: &bad, FilePaths: map[string]string{"large": "/l.png"}},
	}

	outcomes, err := e.actions.Restore(context.Background(), "lobby")
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	img := outcomes[0]
	require.NoError(t, img.Err)
	assert.Equal(t, pos, img.Object.Position())
	assert.InDelta(t, 0.3, img.Object.Rotation().Y, 1e-9)
	stored, _ := img.Object.UserData(UserDataStoredUUID)
	assert.Equal(t, "img", stored)
	assert.Equal(t, "/l.png", TextureURLs(img.Object)["large"])

	box := outcomes[1]
	require.NoError(t, box.Err)
	assert.Equal(t, cmath.Vec3{}, box.Object.Position())

	assert.True(t, errors.Is(outcomes[2].Err, ErrUnknownType))
	assert.False(t, outcomes[2].Persisted())

	require.NoError(t, outcomes[3].Err)
	qy := cmath.QuatFromAxisAngle(cmath.NewVec3(0, 1, 0), 0.4)
	qx := cmath.QuatFromAxisAngle(cmath.NewVec3(1, 0, 0), 0.2)
	want := qy.Mul(qx)
	got := outcomes[3].Object.Quaternion()
	assert.InDelta(t, want.X, got.X, 1e-12)
	assert.InDelta(t, want.Y, got.Y, 1e-12)
	assert.InDelta(t, want.W, got.W, 1e-12)

	assert.True(t, errors.Is(outcomes[4].Err, cmath.ErrUnknownOrder))
	assert.False(t, outcomes[4].Placed())

	assert.Empty(t, e.store.Saved())
}

func TestRestoreFetchFailure(t *testing.T) {
	e := newEnv(t)
	e.store.err = errors.New("boom")

	_, err := e.actions.Restore(context.Background(), "lobby")
	assert.Error(t, err)
}
