// Package component models the connected components produced by a cut.
//
// A Component is a closed sum over four variants:
//
//	Fragment  piece of the source mesh (location, patch location, seal type)
//	Patch     piece of the cut mesh (patch location)
//	Seam      intersection boundary (origin)
//	Input     passthrough copy of an input mesh (origin)
//
// Callers switch on the concrete Variant type; no other type can satisfy
// the interface.
//
// Alongside its half-edge mesh every component keeps an IndexArrayMesh, the
// flat arrays that export channels copy from. They are built once in New.
// The triangulation is the exception: it is computed on first request,
// under the component's lock, and reused afterwards. A result with failed
// faces is still cached.
package component
