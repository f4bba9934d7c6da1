package component

import (
	"sync"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wippyai/meshcut/cdt"
	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/mesh"
	"github.com/wippyai/meshcut/triangulate"
)

func quadMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.FromIndexArrays(
		[]float64{0, 0, 0, 2, 0, 0, 2, 1, 0, 0, 1, 0, 3, 0.5, 0},
		[]uint32{0, 1, 2, 3, 1, 4, 2},
		[]uint32{4, 3},
	)
	if err != nil {
		t.Fatalf("FromIndexArrays failed: %v", err)
	}
	return m
}

type countingEngine struct {
	calls *atomic.Int64
}

func (e countingEngine) Polygon(points []r2.Vec) ([][3]int, error) {
	e.calls.Add(1)
	return cdt.New().Polygon(points)
}

func TestNew_Flatten(t *testing.T) {
	c, err := New(Patch{Location: PatchInside}, quadMesh(t), Provenance{SeamVertices: []uint32{1, 2}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a := c.Arrays()

	if a.NumVertices() != 5 || a.NumFaces() != 2 || a.NumEdges() != 6 {
		t.Fatalf("counts = %d/%d/%d, want 5/2/6", a.NumVertices(), a.NumFaces(), a.NumEdges())
	}
	wantIdx := []uint32{0, 1, 2, 3, 1, 4, 2}
	for i, v := range wantIdx {
		if a.FaceIndices[i] != v {
			t.Fatalf("FaceIndices = %v, want %v", a.FaceIndices, wantIdx)
		}
	}
	if a.FaceSizes[0] != 4 || a.FaceSizes[1] != 3 {
		t.Fatalf("FaceSizes = %v", a.FaceSizes)
	}
	if len(a.FaceAdjacency) != 2 || a.FaceAdjacency[0] != 1 || a.FaceAdjacency[1] != 0 {
		t.Fatalf("FaceAdjacency = %v, want [1 0]", a.FaceAdjacency)
	}
	if a.FaceAdjacencySizes[0] != 1 || a.FaceAdjacencySizes[1] != 1 {
		t.Fatalf("FaceAdjacencySizes = %v", a.FaceAdjacencySizes)
	}
	if a.Vertices[12] != 3 || a.Vertices[13] != 0.5 {
		t.Fatalf("vertex 4 = %v", a.Vertices[12:15])
	}
	if c.Type() != TypePatch {
		t.Fatalf("Type = %v", c.Type())
	}
	if p, ok := c.Variant().(Patch); !ok || p.Location != PatchInside {
		t.Fatalf("Variant = %#v", c.Variant())
	}
}

func TestNew_Validation(t *testing.T) {
	m := quadMesh(t)
	tests := []struct {
		name string
		v    Variant
		m    *mesh.Mesh
		prov Provenance
	}{
		{"nil variant", nil, m, Provenance{}},
		{"nil mesh", Input{}, nil, Provenance{}},
		{"short vertex map", Input{}, m, Provenance{VertexMap: []uint32{0}}},
		{"long face map", Input{}, m, Provenance{FaceMap: []uint32{0, 1, 2}}},
		{"seam vertex range", Seam{}, m, Provenance{SeamVertices: []uint32{9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.v, tt.m, tt.prov); !errors.Is(err, errors.ErrInvalidArgument) {
				t.Fatalf("err = %v, want invalid argument", err)
			}
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	m := quadMesh(t)
	seam := []uint32{1, 2}
	c, err := New(Input{Origin: OriginSrcMesh}, m, Provenance{SeamVertices: seam})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a := m.AddVertex(r3.Vec{X: 5})
	b := m.AddVertex(r3.Vec{X: 6})
	d := m.AddVertex(r3.Vec{X: 5, Y: 1})
	if _, err := m.AddFace([]int{a, b, d}); err != nil {
		t.Fatalf("AddFace failed: %v", err)
	}
	seam[0] = 4

	if c.Mesh() == m {
		t.Fatal("component shares the caller's mesh")
	}
	if c.Mesh().NumFaces() != 2 || c.Arrays().NumVertices() != 5 {
		t.Fatalf("component sees the edit: %d faces, %d vertices", c.Mesh().NumFaces(), c.Arrays().NumVertices())
	}
	if c.Arrays().SeamVertices[0] != 1 {
		t.Fatal("component shares the caller's seam vertices")
	}

	tri, err := c.Triangulation(triangulate.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Triangulation failed: %v", err)
	}
	if len(tri) != 9 {
		t.Fatalf("got %d triangles, want 3", len(tri)/3)
	}
	for _, v := range tri {
		if int(v) >= c.Arrays().NumVertices() {
			t.Fatalf("triangle uses vertex %d of %d", v, c.Arrays().NumVertices())
		}
	}
}

func TestTriangulation_Cached(t *testing.T) {
	var calls atomic.Int64
	opts := triangulate.DefaultOptions()
	opts.NewEngine = func() triangulate.Engine { return countingEngine{&calls} }

	c, err := New(Fragment{Location: FragmentAbove, PatchLocation: PatchOutside, SealType: SealComplete}, quadMesh(t), Provenance{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Triangulated() {
		t.Fatal("triangulation computed before first request")
	}

	first, err := c.Triangulation(opts, nil)
	if err != nil {
		t.Fatalf("Triangulation failed: %v", err)
	}
	if len(first) != 9 {
		t.Fatalf("got %d indices, want 9", len(first))
	}
	second, err := c.Triangulation(opts, nil)
	if err != nil {
		t.Fatalf("second Triangulation failed: %v", err)
	}
	if &first[0] != &second[0] {
		t.Fatal("second call returned a different buffer")
	}
	if calls.Load() != 1 {
		t.Fatalf("engine calls = %d, want 1", calls.Load())
	}
	if !c.Triangulated() {
		t.Fatal("Triangulated should report true")
	}
}

func TestTriangulation_Concurrent(t *testing.T) {
	var calls atomic.Int64
	opts := triangulate.DefaultOptions()
	opts.NewEngine = func() triangulate.Engine { return countingEngine{&calls} }

	c, _ := New(Input{Origin: OriginSrcMesh}, quadMesh(t), Provenance{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Triangulation(opts, nil); err != nil {
				t.Errorf("Triangulation failed: %v", err)
			}
		}()
	}
	wg.Wait()
	if calls.Load() != 1 {
		t.Fatalf("engine calls = %d, want 1", calls.Load())
	}
}

func TestTriangulation_ReportsFailuresOnce(t *testing.T) {
	// A quad whose four corners are collinear, next to a valid triangle.
	m, err := mesh.FromIndexArrays(
		[]float64{0, 0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0, 0, 1, 0},
		[]uint32{0, 1, 2, 3, 1, 0, 4},
		[]uint32{4, 3},
	)
	if err != nil {
		t.Fatalf("FromIndexArrays failed: %v", err)
	}
	c, _ := New(Seam{Origin: OriginCutMesh}, m, Provenance{})

	var reported []int
	report := func(f triangulate.Failure) { reported = append(reported, f.Face) }

	tri, err := c.Triangulation(triangulate.DefaultOptions(), report)
	if err != nil {
		t.Fatalf("Triangulation failed: %v", err)
	}
	if len(tri) != 3 {
		t.Fatalf("got %d indices, want 3", len(tri))
	}
	if len(reported) != 1 || reported[0] != 0 {
		t.Fatalf("reported = %v, want [0]", reported)
	}

	c.Triangulation(triangulate.DefaultOptions(), report)
	if len(reported) != 1 {
		t.Fatalf("cached call reported again: %v", reported)
	}
}

func TestTriangulation_NoFaces(t *testing.T) {
	c, err := New(Input{}, mesh.New(), Provenance{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.Triangulation(triangulate.DefaultOptions(), nil); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	if c.Triangulated() {
		t.Fatal("failed triangulation must not be cached")
	}
}

func TestDrop(t *testing.T) {
	c, _ := New(Input{}, quadMesh(t), Provenance{})
	c.Triangulation(triangulate.DefaultOptions(), nil)
	c.Drop()

	if c.Mesh() != nil || c.Arrays().NumVertices() != 0 || c.Triangulated() {
		t.Fatal("Drop should release mesh and caches")
	}
	if _, err := c.Triangulation(triangulate.DefaultOptions(), nil); err == nil {
		t.Fatal("Triangulation after Drop should fail")
	}
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TypeFragment.String(), "fragment"},
		{TypeInput.String(), "input"},
		{Type(1 << 1).String(), "type(0x2)"},
		{FragmentBelow.String(), "below"},
		{PatchUndefined.String(), "undefined"},
		{SealNone.String(), "none"},
		{OriginCutMesh.String(), "cut-mesh"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestIdentityMap(t *testing.T) {
	m := IdentityMap(4)
	for i, v := range m {
		if v != uint32(i) {
			t.Fatalf("IdentityMap(4) = %v", m)
		}
	}
	if len(IdentityMap(0)) != 0 {
		t.Fatal("IdentityMap(0) should be empty")
	}
}
