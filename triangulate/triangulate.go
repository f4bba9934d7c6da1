package triangulate

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wippyai/meshcut/cdt"
	"github.com/wippyai/meshcut/debug"
	"github.com/wippyai/meshcut/mesh"
)

var (
	ErrNoFaces           = errors.New("mesh has no faces")
	ErrDegenerateFace    = errors.New("face has no supporting plane")
	ErrEmptyResult       = errors.New("triangulation produced no triangles")
	ErrMalformedPolygons = errors.New("malformed polygon list")
)

// Policy selects which faces go through the constrained triangulator.
type Policy int

const (
	// PolicyAllFaces triangulates every non-triangular face.
	PolicyAllFaces Policy = iota
	// PolicyCutBoundary runs the constrained triangulator only on faces
	// touching a seam vertex and fans the others.
	PolicyCutBoundary
)

func (p Policy) String() string {
	switch p {
	case PolicyAllFaces:
		return "all-faces"
	case PolicyCutBoundary:
		return "cut-boundary"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Engine triangulates a simple polygon given by its projected boundary.
// Implementations return triangles indexing into points and need not be
// safe for concurrent use.
type Engine interface {
	Polygon(points []r2.Vec) ([][3]int, error)
}

// Options configures a triangulation run.
type Options struct {
	// NewEngine creates the per-worker polygon triangulator.
	NewEngine func() Engine

	Policy Policy

	// Workers bounds concurrent face processing. 1 runs on the caller's
	// goroutine, 0 or less uses GOMAXPROCS.
	Workers int
}

// DefaultOptions returns sequential triangulation of all faces with the
// constrained Delaunay engine.
func DefaultOptions() Options {
	return Options{
		NewEngine: func() Engine { return cdt.New() },
		Policy:    PolicyAllFaces,
		Workers:   1,
	}
}

// Failure records a face that contributed no triangles.
type Failure struct {
	Err  error
	Face int
}

// Message returns the diagnostic reported for f.
func (f Failure) Message() debug.Message {
	return debug.Message{
		Source:   debug.SourceKernel,
		Type:     debug.TypeOther,
		Severity: debug.SeverityNotification,
		Text:     fmt.Sprintf("cannot triangulate face %d", f.Face),
	}
}

// Result is the triangulation of a whole mesh.
type Result struct {
	// Indices holds three global vertex indices per triangle, grouped by
	// face in face order.
	Indices []uint32

	// FaceOffsets[f] is the index into Indices where face f starts;
	// the final entry equals len(Indices).
	FaceOffsets []int

	// Failures lists faces that produced no triangles, in face order.
	Failures []Failure
}

// Polygons is a face-vertex polygon list: xyz per vertex, every face's
// vertex indices concatenated in face order, and one size per face.
type Polygons struct {
	Coords      []float64
	FaceIndices []uint32
	FaceSizes   []uint32
}

// FromMesh flattens m into a polygon list.
func FromMesh(m *mesh.Mesh) Polygons {
	var p Polygons
	for v := 0; v < m.NumVertices(); v++ {
		q := m.Position(v)
		p.Coords = append(p.Coords, q.X, q.Y, q.Z)
	}
	var scratch []int
	for f := 0; f < m.NumFaces(); f++ {
		scratch = m.AppendVerticesAroundFace(scratch[:0], f)
		for _, v := range scratch {
			p.FaceIndices = append(p.FaceIndices, uint32(v))
		}
		p.FaceSizes = append(p.FaceSizes, uint32(len(scratch)))
	}
	return p
}

// offsets returns where each face starts in FaceIndices, plus the total.
func (p *Polygons) offsets() ([]int, error) {
	if len(p.Coords)%3 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates", ErrMalformedPolygons, len(p.Coords))
	}
	nv := uint32(len(p.Coords) / 3)
	off := make([]int, 0, len(p.FaceSizes)+1)
	at := 0
	for f, size := range p.FaceSizes {
		off = append(off, at)
		if size < 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrMalformedPolygons, f, size)
		}
		if int(size) > len(p.FaceIndices)-at {
			return nil, fmt.Errorf("%w: face %d overruns the index buffer", ErrMalformedPolygons, f)
		}
		for _, v := range p.FaceIndices[at : at+int(size)] {
			if v >= nv {
				return nil, fmt.Errorf("%w: face %d uses vertex %d of %d", ErrMalformedPolygons, f, v, nv)
			}
		}
		at += int(size)
	}
	if at != len(p.FaceIndices) {
		return nil, fmt.Errorf("%w: %d unused face indices", ErrMalformedPolygons, len(p.FaceIndices)-at)
	}
	return append(off, at), nil
}

func (p *Polygons) position(v int) r3.Vec {
	return r3.Vec{X: p.Coords[3*v], Y: p.Coords[3*v+1], Z: p.Coords[3*v+2]}
}

// Mesh triangulates every face of m. seamVertices feeds PolicyCutBoundary
// and is ignored otherwise.
func Mesh(m *mesh.Mesh, seamVertices []uint32, opts Options) (Result, error) {
	return Faces(FromMesh(m), seamVertices, opts)
}

// Faces triangulates every face of p. Face winding follows the order of
// each face's indices.
func Faces(p Polygons, seamVertices []uint32, opts Options) (Result, error) {
	numFaces := len(p.FaceSizes)
	if numFaces == 0 {
		return Result{}, ErrNoFaces
	}
	offsets, err := p.offsets()
	if err != nil {
		return Result{}, err
	}
	if opts.NewEngine == nil {
		opts.NewEngine = DefaultOptions().NewEngine
	}

	var seam map[int]struct{}
	if opts.Policy == PolicyCutBoundary {
		seam = make(map[int]struct{}, len(seamVertices))
		for _, v := range seamVertices {
			seam[int(v)] = struct{}{}
		}
	}

	perFace := make([][]uint32, numFaces)
	errs := make([]error, numFaces)
	run := func(lo, hi int) {
		w := newWorker(&p, offsets, opts, seam)
		for f := lo; f < hi; f++ {
			perFace[f], errs[f] = w.face(f)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || numFaces == 1 {
		run(0, numFaces)
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		chunk := (numFaces + workers*4 - 1) / (workers * 4)
		for lo := 0; lo < numFaces; lo += chunk {
			hi := min(lo+chunk, numFaces)
			g.Go(func() error {
				run(lo, hi)
				return nil
			})
		}
		// Face errors land in errs; the group itself never fails.
		_ = g.Wait()
	}

	res := Result{FaceOffsets: make([]int, 0, numFaces+1)}
	for f := 0; f < numFaces; f++ {
		res.FaceOffsets = append(res.FaceOffsets, len(res.Indices))
		if errs[f] != nil {
			res.Failures = append(res.Failures, Failure{Face: f, Err: errs[f]})
			Logger().Debug("face not triangulated", zap.Int("face", f), zap.Error(errs[f]))
			continue
		}
		res.Indices = append(res.Indices, perFace[f]...)
	}
	res.FaceOffsets = append(res.FaceOffsets, len(res.Indices))
	return res, nil
}

// worker holds the private scratch state for one goroutine.
type worker struct {
	p       *Polygons
	offsets []int
	engine  Engine
	ref     *mesh.Mesh
	seam    map[int]struct{}
	policy  Policy

	global []int
	local  []int
	pos    []r3.Vec
	proj   []r2.Vec
}

func newWorker(p *Polygons, offsets []int, opts Options, seam map[int]struct{}) *worker {
	return &worker{
		p:       p,
		offsets: offsets,
		engine:  opts.NewEngine(),
		ref:     mesh.New(),
		seam:    seam,
		policy:  opts.Policy,
	}
}

func (w *worker) face(f int) ([]uint32, error) {
	w.global = w.global[:0]
	for _, v := range w.p.FaceIndices[w.offsets[f]:w.offsets[f+1]] {
		w.global = append(w.global, int(v))
	}
	n := len(w.global)
	if n == 3 {
		return []uint32{uint32(w.global[0]), uint32(w.global[1]), uint32(w.global[2])}, nil
	}

	w.pos = w.pos[:0]
	for _, v := range w.global {
		w.pos = append(w.pos, w.p.position(v))
	}
	plane, ok := FitPlane(w.pos)
	if !ok {
		return nil, ErrDegenerateFace
	}
	w.proj = Project(w.proj, w.pos, plane.DominantAxis())

	// A fan keeps the face winding only on strictly convex faces.
	if w.policy == PolicyCutBoundary && !w.touchesSeam() && convex(w.proj) {
		return w.fan(), nil
	}

	w.ref.Reset()
	for _, p := range w.pos {
		w.ref.AddVertex(p)
	}
	w.local = w.local[:0]
	for i := n - 1; i >= 0; i-- {
		w.local = append(w.local, i)
	}
	if _, err := w.ref.AddFace(w.local); err != nil {
		return nil, err
	}

	tris, err := w.engine.Polygon(w.proj)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, ErrEmptyResult
	}

	out := make([]uint32, 0, 3*len(tris))
	for _, tri := range orderByAdjacency(tris, n) {
		w.local = append(w.local[:0], tri[0], tri[1], tri[2])
		if !w.ref.IsInsertable(w.local) {
			w.local[1], w.local[2] = w.local[2], w.local[1]
		}
		if _, err := w.ref.AddFace(w.local); err != nil {
			Logger().Debug("winding reference rejected triangle",
				zap.Int("face", f), zap.Ints("triangle", w.local), zap.Error(err))
		}
		for _, l := range w.local {
			out = append(out, uint32(w.global[l]))
		}
	}
	return out, nil
}

func (w *worker) touchesSeam() bool {
	for _, v := range w.global {
		if _, ok := w.seam[v]; ok {
			return true
		}
	}
	return false
}

// convex reports whether pts is a strictly convex simple polygon: every
// turn has the same sign and the turns add up to one revolution.
func convex(pts []r2.Vec) bool {
	n := len(pts)
	var sign, total float64
	for i := range pts {
		d0 := r2.Sub(pts[(i+1)%n], pts[i])
		d1 := r2.Sub(pts[(i+2)%n], pts[(i+1)%n])
		cross := r2.Cross(d0, d1)
		if cross == 0 {
			return false
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
		total += math.Atan2(cross, r2.Dot(d0, d1))
	}
	return math.Abs(total) < 3*math.Pi
}

func (w *worker) fan() []uint32 {
	out := make([]uint32, 0, 3*(len(w.global)-2))
	for i := 1; i+1 < len(w.global); i++ {
		out = append(out, uint32(w.global[0]), uint32(w.global[i]), uint32(w.global[i+1]))
	}
	return out
}

// orderByAdjacency returns tris ordered so that each triangle shares an
// edge with the polygon boundary or with a triangle before it. A triangle
// whose three edges are all diagonals is only decidable against the
// winding reference once a neighbour has been inserted.
func orderByAdjacency(tris [][3]int, n int) [][3]int {
	owners := make(map[[2]int][]int, 3*len(tris))
	key := func(a, b int) [2]int {
		if a > b {
			a, b = b, a
		}
		return [2]int{a, b}
	}
	onBoundary := func(a, b int) bool {
		return (a+1)%n == b || (b+1)%n == a
	}

	queue := make([]int, 0, len(tris))
	seen := make([]bool, len(tris))
	for i, tri := range tris {
		boundary := false
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			owners[key(a, b)] = append(owners[key(a, b)], i)
			if onBoundary(a, b) {
				boundary = true
			}
		}
		if boundary {
			queue = append(queue, i)
			seen[i] = true
		}
	}

	ordered := make([][3]int, 0, len(tris))
	for head := 0; ; head++ {
		if head == len(queue) {
			// Disconnected remainder: start again from the first unvisited.
			next := -1
			for i := range tris {
				if !seen[i] {
					next = i
					break
				}
			}
			if next < 0 {
				break
			}
			seen[next] = true
			queue = append(queue, next)
		}
		tri := tris[queue[head]]
		ordered = append(ordered, tri)
		for k := 0; k < 3; k++ {
			for _, j := range owners[key(tri[k], tri[(k+1)%3])] {
				if !seen[j] {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	return ordered
}
