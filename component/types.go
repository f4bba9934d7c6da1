package component

import "fmt"

// Type tags a connected component. Values are bit flags so a query mask can
// select a union of types.
type Type uint32

const (
	TypeFragment Type = 1 << 0
	TypePatch    Type = 1 << 2
	TypeSeam     Type = 1 << 3
	TypeInput    Type = 1 << 4

	TypeAll Type = 0xFFFFFFFF
)

func (t Type) String() string {
	switch t {
	case TypeFragment:
		return "fragment"
	case TypePatch:
		return "patch"
	case TypeSeam:
		return "seam"
	case TypeInput:
		return "input"
	case TypeAll:
		return "all"
	default:
		return fmt.Sprintf("type(%#x)", uint32(t))
	}
}

// FragmentLocation is where a fragment lies relative to the cut surface.
type FragmentLocation uint32

const (
	FragmentAbove     FragmentLocation = 1 << 0
	FragmentBelow     FragmentLocation = 1 << 1
	FragmentUndefined FragmentLocation = 1 << 2
)

func (l FragmentLocation) String() string {
	switch l {
	case FragmentAbove:
		return "above"
	case FragmentBelow:
		return "below"
	case FragmentUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("fragment-location(%#x)", uint32(l))
	}
}

// PatchLocation is where a patch lies relative to the source mesh.
type PatchLocation uint32

const (
	PatchInside    PatchLocation = 1 << 0
	PatchOutside   PatchLocation = 1 << 1
	PatchUndefined PatchLocation = 1 << 2
)

func (l PatchLocation) String() string {
	switch l {
	case PatchInside:
		return "inside"
	case PatchOutside:
		return "outside"
	case PatchUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("patch-location(%#x)", uint32(l))
	}
}

// SealType is how a fragment's cut boundary was capped.
type SealType uint32

const (
	SealComplete SealType = 1 << 0
	SealNone     SealType = 1 << 2
)

func (s SealType) String() string {
	switch s {
	case SealComplete:
		return "complete"
	case SealNone:
		return "none"
	default:
		return fmt.Sprintf("seal(%#x)", uint32(s))
	}
}

// Origin names the input mesh a seam or input component came from.
type Origin uint32

const (
	OriginSrcMesh Origin = 1 << 0
	OriginCutMesh Origin = 1 << 1
)

func (o Origin) String() string {
	switch o {
	case OriginSrcMesh:
		return "src-mesh"
	case OriginCutMesh:
		return "cut-mesh"
	default:
		return fmt.Sprintf("origin(%#x)", uint32(o))
	}
}

// Variant is the type-specific part of a component. It is implemented only
// by Fragment, Patch, Seam and Input.
type Variant interface {
	Type() Type
	sealed()
}

// Fragment is a piece of the source mesh, capped along the cut.
type Fragment struct {
	Location      FragmentLocation
	PatchLocation PatchLocation
	SealType      SealType
}

// Patch is a piece of the cut mesh bounded by the intersection curve.
type Patch struct {
	Location PatchLocation
}

// Seam is the boundary where the two meshes intersect.
type Seam struct {
	Origin Origin
}

// Input is a passthrough copy of one of the input meshes.
type Input struct {
	Origin Origin
}

func (Fragment) Type() Type { return TypeFragment }
func (Patch) Type() Type    { return TypePatch }
func (Seam) Type() Type     { return TypeSeam }
func (Input) Type() Type    { return TypeInput }

func (Fragment) sealed() {}
func (Patch) sealed()    {}
func (Seam) sealed()     {}
func (Input) sealed()    {}
