// Package mesh implements a compact half-edge mesh.
//
// Each undirected edge is stored as two opposite halfedges at indices 2e and
// 2e+1. A halfedge knows the face on its left and the next halfedge around
// that face; halfedges on the boundary have no face. Faces may have any
// number of vertices from three up.
//
// The mesh only grows: vertices and faces are appended, never removed, so
// indices stay stable for the lifetime of a Mesh. Reset empties it for reuse.
package mesh
