// Package meshcut manages the results of a mesh cutting kernel.
//
// A cut of a source mesh by a cutting mesh produces typed connected
// components (fragments, patches, seams and input copies). This library owns
// those components behind opaque handles, exports their data through a
// two-phase size/copy protocol and triangulates non-triangular faces on
// demand while preserving each face's winding order.
//
// # Architecture Overview
//
//	meshcut/          Root package with context/dispatch flags and the Memory sink
//	├── registry/     Contexts, component handles, dispatch and data queries
//	├── component/    Connected component sum type and flattened export cache
//	├── export/       Channel enumeration and the size/copy query protocol
//	├── triangulate/  Plane projection, winding enforcement, per-face worker pool
//	├── cdt/          2D constrained Delaunay triangulation
//	├── mesh/         Index-based half-edge mesh
//	├── kernel/       Interface to the external cutting kernel
//	├── debug/        Debug message categories, filter and sinks
//	├── resource/     Generation-checked handle tables
//	├── guestmem/     wazero linear memory as an export destination
//	├── meshio/       OFF mesh reader and writer
//	└── errors/       Structured error types
//
// # Quick Start
//
//	reg := registry.New(registry.DefaultOptions())
//	h, _ := reg.CreateContext(0)
//	defer reg.ReleaseContext(h)
//
//	if err := reg.Dispatch(ctx, h, meshcut.DispatchFilterAll, src, cut); err != nil {
//	    log.Fatal(err)
//	}
//
//	n, _ := reg.ListComponents(h, component.TypeAll, 0, nil)
//	comps := make([]registry.ComponentHandle, n)
//	reg.ListComponents(h, component.TypeAll, n, comps)
//
//	size, _ := reg.GetData(h, comps[0], export.FaceTriangulation, 0, nil)
//	buf := make([]byte, size)
//	reg.GetData(h, comps[0], export.FaceTriangulation, size, buf)
//
// # Thread Safety
//
// Registry methods are safe for concurrent use; each context serializes
// access to its own component table. Triangulation of one component runs at
// most once even when requested concurrently.
package meshcut
