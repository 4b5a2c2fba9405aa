package modelformat

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/sasha-s/go-deadlock"
)

// Decoder turns a model file into a scene object, usually a group of meshes.
type Decoder interface {
	Decode(data []byte) (*scene.Object, error)
}

type DecoderFunc func(data []byte) (*scene.Object, error)

func (f DecoderFunc) Decode(data []byte) (*scene.Object, error) {
	return f(data)
}

// Registry maps lower-case file extensions to decoders.
type Registry interface {
	Get(ext string) (Decoder, bool)
	Set(ext string, d Decoder)
	Extensions() []string
}

func NewRegistry() Registry {
	return &registry{
		mu:       new(deadlock.RWMutex),
		decoders: make(map[string]Decoder),
	}
}

// Default returns a registry with every built-in format.
func Default() Registry {
	r := NewRegistry()
	r.Set("gltf", DecoderFunc(DecodeGLTF))
	r.Set("glb", DecoderFunc(DecodeGLB))
	r.Set("obj", DecoderFunc(DecodeOBJ))
	r.Set("fbx", DecoderFunc(DecodeFBX))
	r.Set("stl", DecoderFunc(DecodeSTL))
	r.Set("dae", DecoderFunc(DecodeCollada))
	r.Set("3ds", DecoderFunc(Decode3DS))
	r.Set("ply", DecoderFunc(DecodePLY))
	r.Set("wrl", DecoderFunc(DecodeVRML))
	return r
}

type registry struct {
	mu       *deadlock.RWMutex
	decoders map[string]Decoder
}

func (r *registry) Get(ext string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[strings.ToLower(ext)]
	return d, ok
}

func (r *registry) Set(ext string, d Decoder) {
	r.mu.Lock()
	r.decoders[strings.ToLower(ext)] = d
	r.mu.Unlock()
}

func (r *registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extension is the lower-cased suffix after the last dot of the URL path.
func Extension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := path.Ext(p)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func newModel(meshes ...[]cmath.Vec3) *scene.Object {
	group := scene.NewGroup()
	group.SetName("model")
	for _, positions := range meshes {
		group.Add(scene.NewMesh(scene.NewMeshGeometry(positions), nil))
	}
	return group
}
