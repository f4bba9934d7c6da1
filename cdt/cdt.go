package cdt

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrTooFewVertices   = errors.New("cdt: polygon needs at least 3 vertices")
	ErrDuplicateVertex  = errors.New("cdt: duplicate vertex")
	ErrSelfIntersection = errors.New("cdt: boundary intersects itself")
	ErrDegenerate       = errors.New("cdt: degenerate input")
	ErrNotConverged     = errors.New("cdt: constraint recovery did not converge")
	ErrBadConstraint    = errors.New("cdt: constraint references an unknown vertex")
)

// eps applies to coordinates normalised to the unit box.
const eps = 1e-12

// superVertices are the corners of the enclosing triangle. Input vertex i is
// stored at index i+superVertices.
const superVertices = 3

// Triangulator holds reusable scratch state. It is not safe for concurrent
// use; give each goroutine its own.
type Triangulator struct {
	verts       []r2.Vec
	tris        [][3]int
	alive       []bool
	free        []int
	edges       map[[2]int]int
	constrained map[[2]int]struct{}

	cavity []int
	queue  []int
	inCav  map[int]bool
}

// New returns an empty Triangulator.
func New() *Triangulator {
	return &Triangulator{
		edges:       make(map[[2]int]int),
		constrained: make(map[[2]int]struct{}),
		inCav:       make(map[int]bool),
	}
}

// Polygon triangulates the simple polygon whose boundary visits points in
// order. It returns n-2 triangles, counter-clockwise in the plane, indexing
// into points.
func (t *Triangulator) Polygon(points []r2.Vec) ([][3]int, error) {
	n := len(points)
	if n < 3 {
		return nil, ErrTooFewVertices
	}
	boundary := make([][2]int, n)
	for i := range boundary {
		boundary[i] = [2]int{i, (i + 1) % n}
	}
	tris, err := t.Triangulate(points, boundary)
	if err != nil {
		return nil, err
	}
	if len(tris) != n-2 {
		return nil, fmt.Errorf("%w: %d triangles for %d vertices", ErrDegenerate, len(tris), n)
	}
	return tris, nil
}

// Triangulate computes the constrained Delaunay triangulation of points with
// the given constraint edges, then erases every triangle reachable from the
// outside without crossing a constraint. The result is empty when the
// constraints enclose nothing.
func (t *Triangulator) Triangulate(points []r2.Vec, constraints [][2]int) ([][3]int, error) {
	if len(points) < 3 {
		return nil, ErrTooFewVertices
	}
	if err := t.reset(points); err != nil {
		return nil, err
	}

	for i := range points {
		if err := t.insertVertex(i + superVertices); err != nil {
			return nil, err
		}
	}
	for _, c := range constraints {
		if c[0] < 0 || c[0] >= len(points) || c[1] < 0 || c[1] >= len(points) || c[0] == c[1] {
			return nil, fmt.Errorf("%w: %v", ErrBadConstraint, c)
		}
		if err := t.insertConstraint(c[0]+superVertices, c[1]+superVertices); err != nil {
			return nil, err
		}
	}
	t.legalize()
	return t.eraseOuter()
}

func (t *Triangulator) reset(points []r2.Vec) error {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrDegenerate)
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		return fmt.Errorf("%w: zero extent", ErrDegenerate)
	}

	t.verts = t.verts[:0]
	t.verts = append(t.verts, r2.Vec{X: -10, Y: -10}, r2.Vec{X: 30, Y: -10}, r2.Vec{X: -10, Y: 30})
	for _, p := range points {
		t.verts = append(t.verts, r2.Vec{X: (p.X - minX) / extent, Y: (p.Y - minY) / extent})
	}
	if err := t.checkDuplicates(); err != nil {
		return err
	}

	t.tris = t.tris[:0]
	t.alive = t.alive[:0]
	t.free = t.free[:0]
	clear(t.edges)
	clear(t.constrained)
	t.addTri(0, 1, 2)
	return nil
}

func (t *Triangulator) checkDuplicates() error {
	order := make([]int, 0, len(t.verts)-superVertices)
	for i := superVertices; i < len(t.verts); i++ {
		order = append(order, i)
	}
	slices.SortFunc(order, func(a, b int) int {
		pa, pb := t.verts[a], t.verts[b]
		if pa.X != pb.X {
			if pa.X < pb.X {
				return -1
			}
			return 1
		}
		if pa.Y < pb.Y {
			return -1
		}
		if pa.Y > pb.Y {
			return 1
		}
		return 0
	})
	for i := 1; i < len(order); i++ {
		if t.verts[order[i]] == t.verts[order[i-1]] {
			return fmt.Errorf("%w: %d and %d", ErrDuplicateVertex, order[i-1]-superVertices, order[i]-superVertices)
		}
	}
	return nil
}

func (t *Triangulator) addTri(a, b, c int) int {
	var i int
	if n := len(t.free); n > 0 {
		i = t.free[n-1]
		t.free = t.free[:n-1]
		t.tris[i] = [3]int{a, b, c}
		t.alive[i] = true
	} else {
		i = len(t.tris)
		t.tris = append(t.tris, [3]int{a, b, c})
		t.alive = append(t.alive, true)
	}
	t.edges[[2]int{a, b}] = i
	t.edges[[2]int{b, c}] = i
	t.edges[[2]int{c, a}] = i
	return i
}

func (t *Triangulator) removeTri(i int) {
	tri := t.tris[i]
	for k := 0; k < 3; k++ {
		delete(t.edges, [2]int{tri[k], tri[(k+1)%3]})
	}
	t.alive[i] = false
	t.free = append(t.free, i)
}

// third returns the vertex of triangle i that is neither a nor b.
func (t *Triangulator) third(i, a, b int) int {
	for _, v := range t.tris[i] {
		if v != a && v != b {
			return v
		}
	}
	return -1
}

// neighbour returns the triangle across the directed edge a->b of its owner.
func (t *Triangulator) neighbour(a, b int) (int, bool) {
	i, ok := t.edges[[2]int{b, a}]
	return i, ok
}

func (t *Triangulator) orient(a, b, c int) float64 {
	pa := t.verts[a]
	return r2.Cross(r2.Sub(t.verts[b], pa), r2.Sub(t.verts[c], pa))
}

// incircle is positive when d lies inside the circumcircle of the
// counter-clockwise triangle a, b, c.
func (t *Triangulator) incircle(a, b, c, d int) float64 {
	pd := t.verts[d]
	ad := r2.Sub(t.verts[a], pd)
	bd := r2.Sub(t.verts[b], pd)
	cd := r2.Sub(t.verts[c], pd)
	al := r2.Norm2(ad)
	bl := r2.Norm2(bd)
	cl := r2.Norm2(cd)
	return ad.X*(bd.Y*cl-bl*cd.Y) - ad.Y*(bd.X*cl-bl*cd.X) + al*(bd.X*cd.Y-bd.Y*cd.X)
}

func (t *Triangulator) locate(v int) (int, error) {
	for i, tri := range t.tris {
		if !t.alive[i] {
			continue
		}
		if t.orient(tri[0], tri[1], v) >= -eps &&
			t.orient(tri[1], tri[2], v) >= -eps &&
			t.orient(tri[2], tri[0], v) >= -eps {
			for _, w := range tri {
				if r2.Norm2(r2.Sub(t.verts[w], t.verts[v])) <= eps*eps {
					return -1, fmt.Errorf("%w: %d and %d", ErrDuplicateVertex, w-superVertices, v-superVertices)
				}
			}
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: vertex %d outside the enclosing triangle", ErrDegenerate, v-superVertices)
}

// insertVertex adds v by Bowyer-Watson: the cavity of triangles whose
// circumcircle contains v is replaced by a fan around v.
func (t *Triangulator) insertVertex(v int) error {
	start, err := t.locate(v)
	if err != nil {
		return err
	}

	clear(t.inCav)
	t.cavity = append(t.cavity[:0], start)
	t.queue = append(t.queue[:0], start)
	t.inCav[start] = true
	for len(t.queue) > 0 {
		i := t.queue[0]
		t.queue = t.queue[1:]
		tri := t.tris[i]
		for k := 0; k < 3; k++ {
			j, ok := t.neighbour(tri[k], tri[(k+1)%3])
			if !ok || t.inCav[j] {
				continue
			}
			nt := t.tris[j]
			if t.incircle(nt[0], nt[1], nt[2], v) > eps {
				t.inCav[j] = true
				t.cavity = append(t.cavity, j)
				t.queue = append(t.queue, j)
			}
		}
	}

	var rim [][2]int
	for _, i := range t.cavity {
		tri := t.tris[i]
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if j, ok := t.neighbour(a, b); ok && t.inCav[j] {
				continue
			}
			rim = append(rim, [2]int{a, b})
		}
	}
	for _, i := range t.cavity {
		t.removeTri(i)
	}
	for _, e := range rim {
		t.addTri(e[0], e[1], v)
	}
	return nil
}

func undirected(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (t *Triangulator) isConstrained(a, b int) bool {
	_, ok := t.constrained[undirected(a, b)]
	return ok
}

// crosses reports whether segments ab and cd cross at a single interior point.
func (t *Triangulator) crosses(a, b, c, d int) bool {
	o1 := t.orient(a, b, c)
	o2 := t.orient(a, b, d)
	o3 := t.orient(c, d, a)
	o4 := t.orient(c, d, b)
	return ((o1 > eps && o2 < -eps) || (o1 < -eps && o2 > eps)) &&
		((o3 > eps && o4 < -eps) || (o3 < -eps && o4 > eps))
}

// onSegment reports whether w lies on segment uv strictly between its ends.
func (t *Triangulator) onSegment(u, v, w int) bool {
	d := r2.Sub(t.verts[v], t.verts[u])
	l2 := r2.Norm2(d)
	if math.Abs(t.orient(u, v, w)) > eps*math.Sqrt(l2) {
		return false
	}
	s := r2.Dot(r2.Sub(t.verts[w], t.verts[u]), d)
	return s > eps && s < l2-eps
}

// insertConstraint forces the edge uv into the triangulation by flipping
// the edges that cross it.
func (t *Triangulator) insertConstraint(u, v int) error {
	key := undirected(u, v)
	if _, ok := t.edges[[2]int{u, v}]; ok {
		t.constrained[key] = struct{}{}
		return nil
	}
	if _, ok := t.edges[[2]int{v, u}]; ok {
		t.constrained[key] = struct{}{}
		return nil
	}

	for w := superVertices; w < len(t.verts); w++ {
		if w != u && w != v && t.onSegment(u, v, w) {
			return fmt.Errorf("%w: vertex %d lies on edge %d-%d", ErrSelfIntersection, w-superVertices, u-superVertices, v-superVertices)
		}
	}

	var crossing [][2]int
	for i, tri := range t.tris {
		if !t.alive[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a > b {
				if _, twin := t.edges[[2]int{b, a}]; twin {
					continue
				}
			}
			if a == u || a == v || b == u || b == v || !t.crosses(u, v, a, b) {
				continue
			}
			if t.isConstrained(a, b) {
				return fmt.Errorf("%w: edge %d-%d crosses %d-%d", ErrSelfIntersection,
					u-superVertices, v-superVertices, a-superVertices, b-superVertices)
			}
			crossing = append(crossing, [2]int{a, b})
		}
	}

	limit := 16 * (len(crossing) + 1) * (len(crossing) + 1)
	for iter := 0; len(crossing) > 0; iter++ {
		if iter > limit {
			return fmt.Errorf("%w: edge %d-%d", ErrNotConverged, u-superVertices, v-superVertices)
		}
		e := crossing[0]
		crossing = crossing[1:]
		a, b := e[0], e[1]

		i, ok := t.edges[[2]int{a, b}]
		j, ok2 := t.edges[[2]int{b, a}]
		if !ok || !ok2 {
			return fmt.Errorf("%w: lost edge %d-%d", ErrNotConverged, a-superVertices, b-superVertices)
		}
		p := t.third(i, a, b)
		q := t.third(j, b, a)
		if !t.crosses(a, b, p, q) {
			// Not strictly convex yet; revisit after other flips.
			crossing = append(crossing, e)
			continue
		}
		t.flip(a, b)
		if p != u && p != v && q != u && q != v && t.crosses(u, v, p, q) {
			crossing = append(crossing, [2]int{p, q})
		}
	}

	if _, ok := t.edges[[2]int{u, v}]; !ok {
		if _, ok := t.edges[[2]int{v, u}]; !ok {
			return fmt.Errorf("%w: edge %d-%d missing after recovery", ErrNotConverged, u-superVertices, v-superVertices)
		}
	}
	t.constrained[key] = struct{}{}
	return nil
}

// flip replaces the diagonal ab of the quad formed by its two triangles
// with the other diagonal.
func (t *Triangulator) flip(a, b int) {
	i := t.edges[[2]int{a, b}]
	j := t.edges[[2]int{b, a}]
	p := t.third(i, a, b)
	q := t.third(j, b, a)
	t.removeTri(i)
	t.removeTri(j)
	t.addTri(p, a, q)
	t.addTri(q, b, p)
}

// legalize runs Lawson flips over unconstrained edges until every one is
// locally Delaunay. The pass count is capped; the triangulation stays
// valid if the cap is hit.
func (t *Triangulator) legalize() {
	maxPasses := 4 * len(t.verts)
	for pass := 0; pass < maxPasses; pass++ {
		flipped := false
		for i := 0; i < len(t.tris); i++ {
			if !t.alive[i] {
				continue
			}
			tri := t.tris[i]
			for k := 0; k < 3; k++ {
				a, b, p := tri[k], tri[(k+1)%3], tri[(k+2)%3]
				if t.isConstrained(a, b) {
					continue
				}
				j, ok := t.neighbour(a, b)
				if !ok {
					continue
				}
				q := t.third(j, b, a)
				if t.incircle(a, b, p, q) > eps && t.crosses(a, b, p, q) {
					t.flip(a, b)
					flipped = true
					break
				}
			}
		}
		if !flipped {
			return
		}
	}
}

// eraseOuter floods from every triangle touching the enclosing triangle
// across unconstrained edges and returns what the flood did not reach.
func (t *Triangulator) eraseOuter() ([][3]int, error) {
	outer := make([]bool, len(t.tris))
	t.queue = t.queue[:0]
	for i, tri := range t.tris {
		if t.alive[i] && (tri[0] < superVertices || tri[1] < superVertices || tri[2] < superVertices) {
			outer[i] = true
			t.queue = append(t.queue, i)
		}
	}
	for len(t.queue) > 0 {
		i := t.queue[0]
		t.queue = t.queue[1:]
		tri := t.tris[i]
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if t.isConstrained(a, b) {
				continue
			}
			if j, ok := t.neighbour(a, b); ok && !outer[j] {
				outer[j] = true
				t.queue = append(t.queue, j)
			}
		}
	}

	var out [][3]int
	for i, tri := range t.tris {
		if !t.alive[i] || outer[i] {
			continue
		}
		out = append(out, [3]int{tri[0] - superVertices, tri[1] - superVertices, tri[2] - superVertices})
	}
	return out, nil
}
