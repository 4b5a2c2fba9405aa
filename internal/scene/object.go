package scene

import (
	"github.com/momentum-xyz/media-placer/internal/cmath"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

type Kind string

const (
	KindGroup           Kind = "group"
	KindMesh            Kind = "mesh"
	KindPositionalAudio Kind = "positional_audio"
)

// Object is a renderable node of the scene graph.
type Object struct {
	mu *deadlock.RWMutex

	id   uuid.UUID
	kind Kind
	name string

	position   cmath.Vec3
	quaternion cmath.Quat
	scale      cmath.Vec3

	geometry Geometry
	material *Material
	audio    *AudioEmitter

	parent    *Object
	children  []*Object
	userData  map[string]any
	disposers []func()
}

func newObject(kind Kind) *Object {
	return &Object{
		mu:         new(deadlock.RWMutex),
		id:         uuid.New(),
		kind:       kind,
		quaternion: cmath.Identity(),
		scale:      cmath.NewVec3(1, 1, 1),
		userData:   make(map[string]any),
	}
}

func NewGroup() *Object {
	return newObject(KindGroup)
}

func NewMesh(geometry Geometry, material *Material) *Object {
	o := newObject(KindMesh)
	o.geometry = geometry
	o.material = material
	return o
}

// NewPositionalAudio creates a distance-attenuated emitter node.
func NewPositionalAudio(emitter *AudioEmitter) *Object {
	o := newObject(KindPositionalAudio)
	o.audio = emitter
	return o
}

func (o *Object) UUID() uuid.UUID {
	return o.id
}

func (o *Object) Kind() Kind {
	return o.kind
}

func (o *Object) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.name
}

func (o *Object) SetName(name string) {
	o.mu.Lock()
	o.name = name
	o.mu.Unlock()
}

func (o *Object) Position() cmath.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.position
}

func (o *Object) SetPosition(p cmath.Vec3) {
	o.mu.Lock()
	o.position = p
	o.mu.Unlock()
}

func (o *Object) Quaternion() cmath.Quat {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.quaternion
}

func (o *Object) SetQuaternion(q cmath.Quat) {
	o.mu.Lock()
	o.quaternion = q
	o.mu.Unlock()
}

// Rotation is the XYZ Euler view of the orientation.
func (o *Object) Rotation() cmath.Euler {
	return o.Quaternion().Euler()
}

func (o *Object) Scale() cmath.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scale
}

func (o *Object) SetScale(s cmath.Vec3) {
	o.mu.Lock()
	o.scale = s
	o.mu.Unlock()
}

func (o *Object) Geometry() Geometry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.geometry
}

// SetGeometry replaces the geometry, disposing the previous one.
func (o *Object) SetGeometry(g Geometry) {
	o.mu.Lock()
	old := o.geometry
	o.geometry = g
	o.mu.Unlock()

	if old != nil && old != g {
		old.Dispose()
	}
}

func (o *Object) Material() *Material {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.material
}

func (o *Object) Audio() *AudioEmitter {
	return o.audio
}

func (o *Object) Parent() *Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.parent
}

func (o *Object) Children() []*Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]*Object(nil), o.children...)
}

// Add attaches child to o, detaching it from any previous parent.
func (o *Object) Add(child *Object) {
	if child == nil || child == o {
		return
	}
	if prev := child.Parent(); prev != nil {
		prev.remove(child)
	}

	o.mu.Lock()
	o.children = append(o.children, child)
	o.mu.Unlock()

	child.mu.Lock()
	child.parent = o
	child.mu.Unlock()
}

func (o *Object) remove(child *Object) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			child.mu.Lock()
			child.parent = nil
			child.mu.Unlock()
			return true
		}
	}
	return false
}

func (o *Object) UserData(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.userData[key]
	return v, ok
}

func (o *Object) SetUserData(key string, value any) {
	o.mu.Lock()
	o.userData[key] = value
	o.mu.Unlock()
}

// OnDispose registers fn to run when the object is removed from its graph.
func (o *Object) OnDispose(fn func()) {
	o.mu.Lock()
	o.disposers = append(o.disposers, fn)
	o.mu.Unlock()
}

func (o *Object) dispose() {
	o.mu.Lock()
	disposers := o.disposers
	o.disposers = nil
	children := append([]*Object(nil), o.children...)
	geometry := o.geometry
	o.mu.Unlock()

	for _, c := range children {
		c.dispose()
	}
	for _, fn := range disposers {
		fn()
	}
	if geometry != nil {
		geometry.Dispose()
	}
}

// findByName searches o and its descendants depth first.
func (o *Object) findByName(name string) *Object {
	if o.Name() == name {
		return o
	}
	for _, c := range o.Children() {
		if found := c.findByName(name); found != nil {
			return found
		}
	}
	return nil
}

// transformPoint maps a point from o's local space into its parent's space.
func (o *Object) transformPoint(p cmath.Vec3) cmath.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return p.Mul(o.scale).ApplyQuat(o.quaternion).Add(o.position)
}
