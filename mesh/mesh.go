package mesh

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrFaceTooSmall     = errors.New("face needs at least 3 vertices")
	ErrVertexOutOfRange = errors.New("vertex index out of range")
	ErrRepeatedVertex   = errors.New("face repeats a vertex")
	ErrNotInsertable    = errors.New("face conflicts with an existing face")
	ErrMalformedArrays  = errors.New("malformed index arrays")
)

// None marks an absent face or halfedge.
const None = -1

// halfedge i and i^1 form one edge.
type halfedge struct {
	from int
	to   int
	face int
	next int
}

// Mesh is an index-based half-edge mesh with faces of arbitrary arity.
// Vertices, edges and faces are numbered densely in insertion order.
type Mesh struct {
	positions []r3.Vec
	halfedges []halfedge
	faces     []int
	directed  map[[2]int]int
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{directed: make(map[[2]int]int)}
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		positions: slices.Clone(m.positions),
		halfedges: slices.Clone(m.halfedges),
		faces:     slices.Clone(m.faces),
		directed:  maps.Clone(m.directed),
	}
	if c.directed == nil {
		c.directed = make(map[[2]int]int)
	}
	return c
}

// Reset removes all vertices, edges and faces, keeping allocated storage.
func (m *Mesh) Reset() {
	m.positions = m.positions[:0]
	m.halfedges = m.halfedges[:0]
	m.faces = m.faces[:0]
	clear(m.directed)
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p r3.Vec) int {
	m.positions = append(m.positions, p)
	return len(m.positions) - 1
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.positions) }

// NumEdges returns the number of undirected edges.
func (m *Mesh) NumEdges() int { return len(m.halfedges) / 2 }

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// Position returns the coordinates of vertex v.
func (m *Mesh) Position(v int) r3.Vec { return m.positions[v] }

// Edge returns the endpoints of edge e.
func (m *Mesh) Edge(e int) (a, b int) {
	h := m.halfedges[2*e]
	return h.from, h.to
}

// HalfedgeFace returns the face on the left of the directed edge from->to,
// or None when the edge is absent or on the boundary.
func (m *Mesh) HalfedgeFace(from, to int) int {
	h, ok := m.directed[[2]int{from, to}]
	if !ok {
		return None
	}
	return m.halfedges[h].face
}

// HasEdge reports whether an edge joins a and b in either direction.
func (m *Mesh) HasEdge(a, b int) bool {
	_, ok := m.directed[[2]int{a, b}]
	return ok
}

func (m *Mesh) checkFace(vertices []int) error {
	if len(vertices) < 3 {
		return ErrFaceTooSmall
	}
	seen := make(map[int]struct{}, len(vertices))
	for _, v := range vertices {
		if v < 0 || v >= len(m.positions) {
			return fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%w: %d", ErrRepeatedVertex, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// IsInsertable reports whether vertices, in order, can be added as a face.
// Every directed edge of the face must be absent or still on the boundary.
func (m *Mesh) IsInsertable(vertices []int) bool {
	if m.checkFace(vertices) != nil {
		return false
	}
	n := len(vertices)
	for i, v := range vertices {
		if m.HalfedgeFace(v, vertices[(i+1)%n]) != None {
			return false
		}
	}
	return true
}

// AddFace adds a face bounded by vertices in order and returns its index.
func (m *Mesh) AddFace(vertices []int) (int, error) {
	if err := m.checkFace(vertices); err != nil {
		return None, err
	}
	if !m.IsInsertable(vertices) {
		return None, ErrNotInsertable
	}

	face := len(m.faces)
	n := len(vertices)
	hs := make([]int, n)
	for i, v := range vertices {
		hs[i] = m.halfedgeFor(v, vertices[(i+1)%n])
	}
	for i, h := range hs {
		m.halfedges[h].face = face
		m.halfedges[h].next = hs[(i+1)%n]
	}
	m.faces = append(m.faces, hs[0])
	return face, nil
}

// halfedgeFor returns the halfedge from->to, creating its edge if needed.
func (m *Mesh) halfedgeFor(from, to int) int {
	if h, ok := m.directed[[2]int{from, to}]; ok {
		return h
	}
	h := len(m.halfedges)
	m.halfedges = append(m.halfedges,
		halfedge{from: from, to: to, face: None, next: None},
		halfedge{from: to, to: from, face: None, next: None},
	)
	m.directed[[2]int{from, to}] = h
	m.directed[[2]int{to, from}] = h + 1
	return h
}

// VerticesAroundFace returns the vertices of face f in winding order.
func (m *Mesh) VerticesAroundFace(f int) []int {
	return m.AppendVerticesAroundFace(nil, f)
}

// AppendVerticesAroundFace appends the vertices of face f to dst.
func (m *Mesh) AppendVerticesAroundFace(dst []int, f int) []int {
	start := m.faces[f]
	h := start
	for {
		dst = append(dst, m.halfedges[h].from)
		h = m.halfedges[h].next
		if h == start {
			return dst
		}
	}
}

// FaceDegree returns the number of vertices of face f.
func (m *Mesh) FaceDegree(f int) int {
	n := 0
	start := m.faces[f]
	for h := start; ; {
		n++
		h = m.halfedges[h].next
		if h == start {
			return n
		}
	}
}

// FacesAroundFace returns the distinct faces sharing an edge with f, in the
// order their shared edges are met walking around f. Boundary edges
// contribute nothing.
func (m *Mesh) FacesAroundFace(f int) []int {
	var out []int
	start := m.faces[f]
	for h := start; ; {
		if g := m.halfedges[h^1].face; g != None && g != f && !contains(out, g) {
			out = append(out, g)
		}
		h = m.halfedges[h].next
		if h == start {
			return out
		}
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// FromIndexArrays builds a mesh from flat xyz coordinates and
// per-face vertex index lists.
func FromIndexArrays(coords []float64, faceIndices, faceSizes []uint32) (*Mesh, error) {
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates is not a multiple of 3", ErrMalformedArrays, len(coords))
	}
	m := New()
	for i := 0; i < len(coords); i += 3 {
		m.AddVertex(r3.Vec{X: coords[i], Y: coords[i+1], Z: coords[i+2]})
	}

	offset := 0
	face := make([]int, 0, 8)
	for fi, size := range faceSizes {
		end := offset + int(size)
		if end > len(faceIndices) {
			return nil, fmt.Errorf("%w: face %d runs past the index array", ErrMalformedArrays, fi)
		}
		face = face[:0]
		for _, v := range faceIndices[offset:end] {
			face = append(face, int(v))
		}
		if _, err := m.AddFace(face); err != nil {
			return nil, fmt.Errorf("face %d: %w", fi, err)
		}
		offset = end
	}
	if offset != len(faceIndices) {
		return nil, fmt.Errorf("%w: %d trailing face indices", ErrMalformedArrays, len(faceIndices)-offset)
	}
	return m, nil
}
