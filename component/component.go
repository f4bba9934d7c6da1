package component

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/mesh"
	"github.com/wippyai/meshcut/triangulate"
)

// Unmapped marks a vertex or face with no counterpart in the input meshes,
// such as an intersection point.
const Unmapped = math.MaxUint32

// Provenance is optional per-element data supplied by the kernel.
type Provenance struct {
	// VertexMap maps each vertex to its input-mesh vertex, or Unmapped.
	VertexMap []uint32
	// FaceMap maps each face to its input-mesh face.
	FaceMap []uint32
	// SeamVertices lists vertices lying on the intersection curve.
	SeamVertices []uint32
}

// IndexArrayMesh is the flattened export form of a component's mesh.
// Every slice is read-only once the component is built.
type IndexArrayMesh struct {
	Vertices           []float64 // xyz per vertex
	FaceIndices        []uint32
	FaceSizes          []uint32
	FaceAdjacency      []uint32
	FaceAdjacencySizes []uint32
	Edges              []uint32 // two vertices per edge
	VertexMap          []uint32
	FaceMap            []uint32
	SeamVertices       []uint32
}

// NumVertices returns the number of vertices.
func (a *IndexArrayMesh) NumVertices() int { return len(a.Vertices) / 3 }

// NumFaces returns the number of faces.
func (a *IndexArrayMesh) NumFaces() int { return len(a.FaceSizes) }

// NumEdges returns the number of edges.
func (a *IndexArrayMesh) NumEdges() int { return len(a.Edges) / 2 }

// Component is one connected piece of a cut result. It is immutable after
// New except for the triangulation, which is computed once on demand.
type Component struct {
	variant Variant
	mesh    *mesh.Mesh
	arrays  IndexArrayMesh

	triMu   sync.Mutex
	triDone bool
	tri     []uint32
}

// New builds a component from its variant and a private copy of m,
// flattening the copy into its export arrays. Later changes to m or to the
// provenance slices do not reach the component.
func New(v Variant, m *mesh.Mesh, prov Provenance) (*Component, error) {
	if v == nil {
		return nil, errors.InvalidArgument(errors.PhaseDispatch, "component variant is nil")
	}
	if m == nil {
		return nil, errors.InvalidArgument(errors.PhaseDispatch, "component mesh is nil")
	}
	nv, nf := m.NumVertices(), m.NumFaces()
	if prov.VertexMap != nil && len(prov.VertexMap) != nv {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidArgument).
			Path("vertex_map").
			Detail("%d entries for %d vertices", len(prov.VertexMap), nv).
			Build()
	}
	if prov.FaceMap != nil && len(prov.FaceMap) != nf {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidArgument).
			Path("face_map").
			Detail("%d entries for %d faces", len(prov.FaceMap), nf).
			Build()
	}
	for i, s := range prov.SeamVertices {
		if int(s) >= nv {
			return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidArgument).
				Path("seam_vertices", fmt.Sprint(i)).
				Value(s).
				Detail("vertex %d out of range", s).
				Build()
		}
	}

	c := &Component{variant: v, mesh: m.Clone()}
	c.flatten()
	c.arrays.VertexMap = slices.Clone(prov.VertexMap)
	c.arrays.FaceMap = slices.Clone(prov.FaceMap)
	c.arrays.SeamVertices = slices.Clone(prov.SeamVertices)
	return c, nil
}

func (c *Component) flatten() {
	m := c.mesh
	a := &c.arrays

	a.Vertices = make([]float64, 0, 3*m.NumVertices())
	for v := 0; v < m.NumVertices(); v++ {
		p := m.Position(v)
		a.Vertices = append(a.Vertices, p.X, p.Y, p.Z)
	}

	a.FaceSizes = make([]uint32, 0, m.NumFaces())
	a.FaceAdjacencySizes = make([]uint32, 0, m.NumFaces())
	var scratch []int
	for f := 0; f < m.NumFaces(); f++ {
		scratch = m.AppendVerticesAroundFace(scratch[:0], f)
		for _, v := range scratch {
			a.FaceIndices = append(a.FaceIndices, uint32(v))
		}
		a.FaceSizes = append(a.FaceSizes, uint32(len(scratch)))

		adj := m.FacesAroundFace(f)
		for _, g := range adj {
			a.FaceAdjacency = append(a.FaceAdjacency, uint32(g))
		}
		a.FaceAdjacencySizes = append(a.FaceAdjacencySizes, uint32(len(adj)))
	}

	a.Edges = make([]uint32, 0, 2*m.NumEdges())
	for e := 0; e < m.NumEdges(); e++ {
		v0, v1 := m.Edge(e)
		a.Edges = append(a.Edges, uint32(v0), uint32(v1))
	}
}

// Variant returns the type-specific data.
func (c *Component) Variant() Variant { return c.variant }

// Type returns the variant tag.
func (c *Component) Type() Type { return c.variant.Type() }

// Mesh returns the half-edge mesh. Callers must not modify it.
func (c *Component) Mesh() *mesh.Mesh { return c.mesh }

// Arrays returns the flattened mesh. Callers must not modify the slices.
func (c *Component) Arrays() *IndexArrayMesh { return &c.arrays }

// Triangulated reports whether the triangulation has been computed.
func (c *Component) Triangulated() bool {
	c.triMu.Lock()
	defer c.triMu.Unlock()
	return c.triDone
}

// Triangulation returns three vertex indices per triangle covering every
// face. The first call computes it with opts and reports faces that could
// not be triangulated to report, which may be nil; later calls return the
// cached buffer without calling report.
func (c *Component) Triangulation(opts triangulate.Options, report func(triangulate.Failure)) ([]uint32, error) {
	c.triMu.Lock()
	defer c.triMu.Unlock()

	if c.triDone {
		return c.tri, nil
	}
	if c.mesh == nil {
		return nil, errors.InvalidArgument(errors.PhaseTriangulate, "component has been released")
	}
	a := &c.arrays
	if a.NumFaces() == 0 {
		return nil, errors.InvalidArgument(errors.PhaseTriangulate, "component has no faces")
	}

	// The exported arrays are the source, so triangle indices always refer
	// to the vertices the vertex channels report.
	res, err := triangulate.Faces(triangulate.Polygons{
		Coords:      a.Vertices,
		FaceIndices: a.FaceIndices,
		FaceSizes:   a.FaceSizes,
	}, a.SeamVertices, opts)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTriangulate, errors.KindInvalidArgument, err, "triangulate component")
	}
	if report != nil {
		for _, f := range res.Failures {
			report(f)
		}
	}
	c.tri = res.Indices
	c.triDone = true
	return c.tri, nil
}

// Drop releases the mesh and every cached buffer.
func (c *Component) Drop() {
	c.triMu.Lock()
	defer c.triMu.Unlock()
	c.mesh = nil
	c.arrays = IndexArrayMesh{}
	c.tri = nil
	c.triDone = false
}

// IdentityMap returns [0, 1, ..., n-1].
func IdentityMap(n int) []uint32 {
	m := make([]uint32, n)
	for i := range m {
		m[i] = uint32(i)
	}
	return m
}
