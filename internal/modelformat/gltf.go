package modelformat

import (
	"bytes"

	"github.com/momentum-xyz/media-placer/internal/cmath"
	"github.com/momentum-xyz/media-placer/internal/scene"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// DecodeGLTF builds the node hierarchy of a glTF 2.0 asset. Mesh extents come
// from the POSITION accessor bounds, which glTF requires writers to set.
func DecodeGLTF(data []byte) (*scene.Object, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, errors.WithMessage(err, "gltf: failed to parse")
	}
	return build(doc)
}

// DecodeGLB accepts only the binary container.
func DecodeGLB(data []byte) (*scene.Object, error) {
	if !bytes.HasPrefix(data, []byte("glTF")) {
		return nil, errors.New("glb: bad magic")
	}
	return DecodeGLTF(data)
}

func build(doc *gltf.Document) (*scene.Object, error) {
	root := scene.NewGroup()
	root.SetName("model")

	roots, ok := rootNodes(doc)
	if !ok {
		// no scene graph, take every mesh as is
		for i := range doc.Meshes {
			addMesh(doc, root, i)
		}
	}
	for _, n := range roots {
		if err := addNode(doc, root, n, 0); err != nil {
			return nil, err
		}
	}

	if scene.BoundingBox(root).IsEmpty() {
		return nil, errors.WithMessage(errNoGeometry, "gltf")
	}
	return root, nil
}

func rootNodes(doc *gltf.Document) ([]int, bool) {
	if len(doc.Scenes) == 0 {
		return nil, false
	}
	idx := 0
	if doc.Scene != nil {
		idx = int(*doc.Scene)
	}
	if idx < 0 || idx >= len(doc.Scenes) {
		return nil, false
	}
	nodes := make([]int, 0, len(doc.Scenes[idx].Nodes))
	for _, n := range doc.Scenes[idx].Nodes {
		nodes = append(nodes, int(n))
	}
	return nodes, true
}

func addNode(doc *gltf.Document, parent *scene.Object, idx, depth int) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return errors.Errorf("gltf: node %d out of range", idx)
	}
	if depth > len(doc.Nodes) {
		return errors.New("gltf: node cycle")
	}
	n := doc.Nodes[idx]

	obj := scene.NewGroup()
	obj.SetName(n.Name)
	var m mgl64.Mat4
	for i, v := range n.Matrix {
		m[i] = float64(v)
	}
	if hasMatrix(m) {
		applyMatrix(obj, m)
	} else {
		t, r, s := n.Translation, n.Rotation, n.Scale
		obj.SetPosition(cmath.NewVec3(float64(t[0]), float64(t[1]), float64(t[2])))
		q := cmath.Quat{X: float64(r[0]), Y: float64(r[1]), Z: float64(r[2]), W: float64(r[3])}
		if q != (cmath.Quat{}) {
			obj.SetQuaternion(q)
		}
		if sc := cmath.NewVec3(float64(s[0]), float64(s[1]), float64(s[2])); sc != (cmath.Vec3{}) {
			obj.SetScale(sc)
		}
	}

	if n.Mesh != nil {
		addMesh(doc, obj, int(*n.Mesh))
	}
	for _, c := range n.Children {
		if err := addNode(doc, obj, int(c), depth+1); err != nil {
			return err
		}
	}
	parent.Add(obj)
	return nil
}

// hasMatrix is false for an absent (zero) or identity node matrix.
func hasMatrix(m mgl64.Mat4) bool {
	return m != (mgl64.Mat4{}) && m != mgl64.Ident4()
}

// applyMatrix decomposes a column-major TRS matrix without shear.
func applyMatrix(obj *scene.Object, m mgl64.Mat4) {
	sx, sy, sz := m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()
	obj.SetPosition(cmath.FromMgl(m.Col(3).Vec3()))
	obj.SetScale(cmath.NewVec3(sx, sy, sz))
	if sx == 0 || sy == 0 || sz == 0 {
		return
	}
	rot := mgl64.Mat4FromCols(m.Col(0).Mul(1/sx), m.Col(1).Mul(1/sy), m.Col(2).Mul(1/sz), mgl64.Vec4{0, 0, 0, 1})
	obj.SetQuaternion(cmath.QuatFromMgl(mgl64.Mat4ToQuat(rot).Normalize()))
}

func addMesh(doc *gltf.Document, parent *scene.Object, idx int) {
	if idx < 0 || idx >= len(doc.Meshes) {
		return
	}
	for _, p := range doc.Meshes[idx].Primitives {
		a, ok := p.Attributes["POSITION"]
		if !ok || int(a) < 0 || int(a) >= len(doc.Accessors) {
			continue
		}
		acc := doc.Accessors[int(a)]
		if len(acc.Min) != 3 || len(acc.Max) != 3 {
			continue
		}
		positions := []cmath.Vec3{
			cmath.NewVec3(float64(acc.Min[0]), float64(acc.Min[1]), float64(acc.Min[2])),
			cmath.NewVec3(float64(acc.Max[0]), float64(acc.Max[1]), float64(acc.Max[2])),
		}
		parent.Add(scene.NewMesh(scene.NewMeshGeometry(positions), nil))
	}
}
