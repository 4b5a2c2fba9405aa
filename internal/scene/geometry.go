package scene

import (
	"sync/atomic"

	"github.com/momentum-xyz/media-placer/internal/cmath"
)

type Geometry interface {
	BoundingBox() cmath.Box3
	Dispose()
	Disposed() bool
}

type disposable struct {
	disposed int32
}

func (d *disposable) Dispose() {
	atomic.StoreInt32(&d.disposed, 1)
}

func (d *disposable) Disposed() bool {
	return atomic.LoadInt32(&d.disposed) != 0
}

// PlaneGeometry is a flat rectangle in the XY plane centred on the origin.
type PlaneGeometry struct {
	disposable
	Width  float64
	Height float64
}

func NewPlaneGeometry(width, height float64) *PlaneGeometry {
	return &PlaneGeometry{Width: width, Height: height}
}

func (g *PlaneGeometry) BoundingBox() cmath.Box3 {
	hw, hh := g.Width/2, g.Height/2
	return cmath.Box3{
		Min: cmath.NewVec3(-hw, -hh, 0),
		Max: cmath.NewVec3(hw, hh, 0),
	}
}

// MeshGeometry is an indexed-free point soup, enough to derive bounds.
type MeshGeometry struct {
	disposable
	Positions []cmath.Vec3
}

func NewMeshGeometry(positions []cmath.Vec3) *MeshGeometry {
	return &MeshGeometry{Positions: positions}
}

func (g *MeshGeometry) BoundingBox() cmath.Box3 {
	b := cmath.EmptyBox()
	for _, p := range g.Positions {
		b = b.ExpandByPoint(p)
	}
	return b
}
