package export

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/mesh"
	"github.com/wippyai/meshcut/triangulate"
)

func newComponent(t *testing.T, v component.Variant, prov component.Provenance) *component.Component {
	t.Helper()
	m, err := mesh.FromIndexArrays(
		[]float64{0, 0, 0, 2, 0, 0, 2, 1, 0, 0, 1, 0, 3, 0.5, 0.25},
		[]uint32{0, 1, 2, 3, 1, 4, 2},
		[]uint32{4, 3},
	)
	if err != nil {
		t.Fatalf("FromIndexArrays failed: %v", err)
	}
	c, err := component.New(v, m, prov)
	if err != nil {
		t.Fatalf("component.New failed: %v", err)
	}
	return c
}

func fullProvenance() component.Provenance {
	return component.Provenance{
		VertexMap:    []uint32{0, 1, 2, 3, component.Unmapped},
		FaceMap:      []uint32{7, 8},
		SeamVertices: []uint32{1, 2},
	}
}

func fullEnv() Env {
	return Env{
		Dispatch:      meshcut.DispatchIncludeVertexMap | meshcut.DispatchIncludeFaceMap,
		Triangulation: triangulate.DefaultOptions(),
	}
}

var allVariants = []component.Variant{
	component.Fragment{Location: component.FragmentBelow, PatchLocation: component.PatchInside, SealType: component.SealComplete},
	component.Patch{Location: component.PatchOutside},
	component.Seam{Origin: component.OriginSrcMesh},
	component.Input{Origin: component.OriginCutMesh},
}

func TestSizeCopyAgreement(t *testing.T) {
	for _, v := range allVariants {
		c := newComponent(t, v, fullProvenance())
		for _, ch := range Channels() {
			size, err := Query(c, ch, fullEnv(), 0, nil)
			if err != nil {
				continue // gated for this variant, covered below
			}
			buf := make([]byte, size)
			n, err := Query(c, ch, fullEnv(), size, buf)
			if err != nil {
				t.Fatalf("%v/%v: copy failed: %v", v.Type(), ch, err)
			}
			if n != size {
				t.Fatalf("%v/%v: copied %d bytes, size query said %d", v.Type(), ch, n, size)
			}
		}
	}
}

func TestChannelSizes(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())
	tests := []struct {
		ch   Channel
		want uint64
	}{
		{VertexFloat, 5 * 3 * 4},
		{VertexDouble, 5 * 3 * 8},
		{Face, 7 * 4},
		{FaceSize, 2 * 4},
		{FaceAdjacentFace, 2 * 4},
		{FaceAdjacentFaceSize, 2 * 4},
		{Edge, 6 * 2 * 4},
		{Type, 4},
		{FragmentLocation, 4},
		{PatchLocation, 4},
		{FragmentSealType, 4},
		{SeamVertex, 2 * 4},
		{VertexMap, 5 * 4},
		{FaceMap, 2 * 4},
		{FaceTriangulation, 3 * 3 * 4},
	}
	for _, tt := range tests {
		t.Run(tt.ch.String(), func(t *testing.T) {
			got, err := Query(c, tt.ch, fullEnv(), 0, nil)
			if err != nil {
				t.Fatalf("size query failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBoundsEnforcement(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())
	for _, ch := range []Channel{VertexFloat, VertexDouble, Face, FaceSize, Edge, Type, FaceTriangulation} {
		t.Run(ch.String(), func(t *testing.T) {
			size, _ := Query(c, ch, fullEnv(), 0, nil)
			buf := make([]byte, size+8)

			if _, err := Query(c, ch, fullEnv(), size+1, buf); !errors.Is(err, errors.ErrOutOfBounds) {
				t.Fatalf("size+1: err = %v, want out of bounds", err)
			}
			if _, err := Query(c, ch, fullEnv(), size-1, buf); !errors.Is(err, errors.ErrInvalidArgument) {
				t.Fatalf("size-1: err = %v, want invalid argument", err)
			}
			for i, b := range buf {
				if b != 0 {
					t.Fatalf("rejected request wrote byte %d", i)
				}
			}
		})
	}
}

func TestGroupAlignment(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())

	// One float is a whole element but not a whole vertex.
	buf := make([]byte, 64)
	if _, err := Query(c, VertexFloat, fullEnv(), 4, buf); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("vertex-float 4 bytes: err = %v, want invalid argument", err)
	}
	if _, err := Query(c, Edge, fullEnv(), 4, buf); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("edge 4 bytes: err = %v, want invalid argument", err)
	}
	if _, err := Query(c, FaceTriangulation, fullEnv(), 8, buf); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("triangulation 8 bytes: err = %v, want invalid argument", err)
	}
	if _, err := Query(c, Face, fullEnv(), 4, buf); err != nil {
		t.Fatalf("face 4 bytes: %v", err)
	}
}

func TestShortBuffer(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())
	buf := make([]byte, 4)
	if _, err := Query(c, Face, fullEnv(), 8, buf); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestPartialRead(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())

	buf := make([]byte, 24)
	n, err := Query(c, VertexDouble, fullEnv(), 24, buf)
	if err != nil || n != 24 {
		t.Fatalf("partial read = %d, %v", n, err)
	}
	x := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:]))
	y := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))
	if x != 0 || y != 0 {
		t.Fatalf("first vertex = (%v, %v), want origin", x, y)
	}

	buf = make([]byte, 5*12)
	if _, err := Query(c, VertexFloat, fullEnv(), uint64(len(buf)), buf); err != nil {
		t.Fatalf("float read failed: %v", err)
	}
	z := math.Float32frombits(binary.LittleEndian.Uint32(buf[4*14:]))
	if z != 0.25 {
		t.Fatalf("vertex 4 z = %v, want 0.25", z)
	}
}

func TestEnumValues(t *testing.T) {
	tests := []struct {
		v    component.Variant
		ch   Channel
		want uint32
	}{
		{allVariants[0], Type, 1 << 0},
		{allVariants[0], FragmentLocation, 1 << 1},
		{allVariants[0], PatchLocation, 1 << 0},
		{allVariants[0], FragmentSealType, 1 << 0},
		{allVariants[1], Type, 1 << 2},
		{allVariants[1], PatchLocation, 1 << 1},
		{allVariants[2], Type, 1 << 3},
		{allVariants[2], Origin, 1 << 0},
		{allVariants[3], Type, 1 << 4},
		{allVariants[3], Origin, 1 << 1},
	}
	for _, tt := range tests {
		c := newComponent(t, tt.v, fullProvenance())
		buf := make([]byte, 4)
		if _, err := Query(c, tt.ch, fullEnv(), 4, buf); err != nil {
			t.Fatalf("%v/%v: %v", tt.v.Type(), tt.ch, err)
		}
		if got := binary.LittleEndian.Uint32(buf); got != tt.want {
			t.Errorf("%v/%v = %#x, want %#x", tt.v.Type(), tt.ch, got, tt.want)
		}
	}
}

func TestVariantGating(t *testing.T) {
	allowed := map[Channel][]component.Type{
		FragmentLocation: {component.TypeFragment},
		FragmentSealType: {component.TypeFragment},
		PatchLocation:    {component.TypeFragment, component.TypePatch},
		Origin:           {component.TypeSeam, component.TypeInput},
		SeamVertex:       {component.TypeFragment, component.TypePatch, component.TypeSeam},
	}

	for ch, types := range allowed {
		for _, v := range allVariants {
			want := false
			for _, typ := range types {
				if typ == v.Type() {
					want = true
				}
			}
			c := newComponent(t, v, fullProvenance())
			_, err := Query(c, ch, fullEnv(), 0, nil)
			if want && err != nil {
				t.Errorf("%v on %v: unexpected error %v", ch, v.Type(), err)
			}
			if !want && !errors.Is(err, errors.ErrInvalidArgument) {
				t.Errorf("%v on %v: err = %v, want invalid argument", ch, v.Type(), err)
			}
		}
	}
}

func TestProvenanceGating(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())

	env := fullEnv()
	env.Dispatch = 0
	for _, ch := range []Channel{VertexMap, FaceMap} {
		if _, err := Query(c, ch, env, 0, nil); !errors.Is(err, errors.ErrInvalidArgument) {
			t.Errorf("%v without dispatch flag: err = %v", ch, err)
		}
	}

	bare := newComponent(t, allVariants[0], component.Provenance{})
	if _, err := Query(bare, VertexMap, fullEnv(), 0, nil); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("vertex-map without kernel data: err = %v", err)
	}

	buf := make([]byte, 20)
	if _, err := Query(c, VertexMap, fullEnv(), 20, buf); err != nil {
		t.Fatalf("vertex-map copy failed: %v", err)
	}
	if binary.LittleEndian.Uint32(buf[16:]) != component.Unmapped {
		t.Fatalf("intersection vertex should be unmapped")
	}
}

func TestUnknownChannel(t *testing.T) {
	c := newComponent(t, allVariants[0], fullProvenance())
	for _, ch := range []Channel{0, 1 << 0, 1 << 17, VertexFloat | Face} {
		if _, err := Query(c, ch, fullEnv(), 0, nil); !errors.Is(err, errors.ErrInvalidArgument) {
			t.Errorf("channel %#x: err = %v, want invalid argument", uint32(ch), err)
		}
	}
}

// A single convex quad yields two triangles covering it exactly.
func TestScenario_QuadTriangulation(t *testing.T) {
	m, err := mesh.FromIndexArrays([]float64{0, 0, 0, 3, 0, 0, 3, 2, 0, 0, 2, 0}, []uint32{0, 1, 2, 3}, []uint32{4})
	if err != nil {
		t.Fatalf("FromIndexArrays failed: %v", err)
	}
	c, _ := component.New(component.Input{Origin: component.OriginSrcMesh}, m, component.Provenance{})

	size, err := Query(c, FaceTriangulation, fullEnv(), 0, nil)
	if err != nil {
		t.Fatalf("size query failed: %v", err)
	}
	if size != 24 {
		t.Fatalf("size = %d, want 24", size)
	}

	buf := make([]byte, size)
	if _, err := Query(c, FaceTriangulation, fullEnv(), size, buf); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	idx := make([]uint32, 6)
	seen := map[uint32]bool{}
	for i := range idx {
		idx[i] = binary.LittleEndian.Uint32(buf[4*i:])
		seen[idx[i]] = true
	}
	if len(seen) != 4 {
		t.Fatalf("triangles use vertices %v, want all four", idx)
	}

	var area float64
	for i := 0; i < 6; i += 3 {
		a, b, cc := m.Position(int(idx[i])), m.Position(int(idx[i+1])), m.Position(int(idx[i+2]))
		area += ((b.X-a.X)*(cc.Y-a.Y) - (cc.X-a.X)*(b.Y-a.Y)) / 2
	}
	if area != 6 {
		t.Fatalf("triangle area = %v, want 6", area)
	}

	again := make([]byte, size)
	Query(c, FaceTriangulation, fullEnv(), size, again)
	for i := range buf {
		if buf[i] != again[i] {
			t.Fatal("second query returned different bytes")
		}
	}
}

func TestChannelNames(t *testing.T) {
	if len(Channels()) != 16 {
		t.Fatalf("Channels() has %d entries, want 16", len(Channels()))
	}
	for _, ch := range Channels() {
		parsed, ok := ParseChannel(ch.String())
		if !ok || parsed != ch {
			t.Errorf("ParseChannel(%q) = %v, %v", ch.String(), parsed, ok)
		}
	}
	if _, ok := ParseChannel("bogus"); ok {
		t.Error("ParseChannel should reject unknown names")
	}
	if Channel(1<<20).String() != "channel(0x100000)" {
		t.Errorf("unknown String() = %q", Channel(1<<20).String())
	}
}
