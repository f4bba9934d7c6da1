package meshcut

// ContextFlags configure a context at creation time.
type ContextFlags uint32

const (
	// FlagDebug enables every debug message category from the start.
	FlagDebug ContextFlags = 1 << 0
	// FlagOutOfOrderExec is accepted for compatibility and currently has no effect.
	FlagOutOfOrderExec ContextFlags = 1 << 1
)

// DispatchFlags describe how a cut was requested. The registry keeps the
// flags of the last dispatch per context; some export channels are only
// valid when the matching flag was set.
type DispatchFlags uint32

const (
	DispatchVertexArrayFloat   DispatchFlags = 1 << 0
	DispatchVertexArrayDouble  DispatchFlags = 1 << 1
	DispatchRequireThroughCuts DispatchFlags = 1 << 2
	DispatchIncludeVertexMap   DispatchFlags = 1 << 3
	DispatchIncludeFaceMap     DispatchFlags = 1 << 4

	DispatchFilterFragmentLocationAbove     DispatchFlags = 1 << 5
	DispatchFilterFragmentLocationBelow     DispatchFlags = 1 << 6
	DispatchFilterFragmentLocationUndefined DispatchFlags = 1 << 7
	DispatchFilterFragmentSealingInside     DispatchFlags = 1 << 8
	DispatchFilterFragmentSealingOutside    DispatchFlags = 1 << 9
	DispatchFilterFragmentSealingNone       DispatchFlags = 1 << 10
	DispatchFilterPatchInside               DispatchFlags = 1 << 11
	DispatchFilterPatchOutside              DispatchFlags = 1 << 12
	DispatchFilterSeamSrcMesh               DispatchFlags = 1 << 13
	DispatchFilterSeamCutMesh               DispatchFlags = 1 << 14

	DispatchEnforceGeneralPosition DispatchFlags = 1 << 15

	DispatchFilterAll = DispatchFilterFragmentLocationAbove |
		DispatchFilterFragmentLocationBelow |
		DispatchFilterFragmentLocationUndefined |
		DispatchFilterFragmentSealingInside |
		DispatchFilterFragmentSealingOutside |
		DispatchFilterFragmentSealingNone |
		DispatchFilterPatchInside |
		DispatchFilterPatchOutside |
		DispatchFilterSeamSrcMesh |
		DispatchFilterSeamCutMesh
)

// Has reports whether all bits of f are set.
func (d DispatchFlags) Has(f DispatchFlags) bool {
	return d&f == f
}

// Memory is a caller-owned destination for exported bytes, such as the
// linear memory of a WebAssembly guest.
type Memory interface {
	Write(offset uint32, data []byte) error
}

// MemorySizer provides the current size of a Memory in bytes.
type MemorySizer interface {
	Size() uint32
}
