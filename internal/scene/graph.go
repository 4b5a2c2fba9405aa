package scene

import (
	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/logger"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

var log = logger.L()

// Container is anything new objects can be inserted into.
type Container interface {
	Add(obj *Object)
	ObjectByName(name string) *Object
}

var (
	_ Container = (*Graph)(nil)
	_ Container = (*Object)(nil)
)

// Graph is the scene root. It indexes every object inserted through it.
type Graph struct {
	mu    *deadlock.RWMutex
	root  *Object
	index map[uuid.UUID]*Object
}

func NewGraph() *Graph {
	root := NewGroup()
	root.SetName("scene")
	return &Graph{
		mu:    new(deadlock.RWMutex),
		root:  root,
		index: make(map[uuid.UUID]*Object),
	}
}

func (g *Graph) Root() *Object {
	return g.root
}

func (g *Graph) Add(obj *Object) {
	if obj == nil {
		return
	}
	g.root.Add(obj)

	g.mu.Lock()
	g.index[obj.UUID()] = obj
	g.mu.Unlock()
	log.Debugf("scene: added %s %s", obj.Kind(), obj.UUID())
}

// ObjectByName returns the first object with the given name, or nil.
func (g *Graph) ObjectByName(name string) *Object {
	return g.root.findByName(name)
}

func (o *Object) ObjectByName(name string) *Object {
	return o.findByName(name)
}

func (g *Graph) Get(id uuid.UUID) (*Object, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	obj, ok := g.index[id]
	return obj, ok
}

// Objects lists the objects inserted directly into the graph.
func (g *Graph) Objects() []*Object {
	return g.root.Children()
}

// Remove detaches obj and runs its dispose hooks. It reports whether obj was found.
func (g *Graph) Remove(id uuid.UUID) bool {
	g.mu.Lock()
	obj, ok := g.index[id]
	delete(g.index, id)
	g.mu.Unlock()
	if !ok {
		return false
	}

	if parent := obj.Parent(); parent != nil {
		parent.remove(obj)
	}
	obj.dispose()
	log.Debugf("scene: removed %s %s", obj.Kind(), id)
	return true
}

// Clear removes every indexed object.
func (g *Graph) Clear() {
	g.mu.RLock()
	ids := make([]uuid.UUID, 0, len(g.index))
	for id := range g.index {
		ids = append(ids, id)
	}
	g.mu.RUnlock()

	for _, id := range ids {
		g.Remove(id)
	}
}

// BoundingBox computes the box of obj and its descendants in obj's parent space.
func BoundingBox(obj *Object) cmath.Box3 {
	box := cmath.EmptyBox()

	if g := obj.Geometry(); g != nil {
		local := g.BoundingBox()
		if !local.IsEmpty() {
			for _, c := range local.Corners() {
				box = box.ExpandByPoint(obj.transformPoint(c))
			}
		}
	}
	for _, child := range obj.Children() {
		cb := BoundingBox(child)
		if cb.IsEmpty() {
			continue
		}
		for _, c := range cb.Corners() {
			box = box.ExpandByPoint(obj.transformPoint(c))
		}
	}
	return box
}
