// Package triangulate splits the polygonal faces of a mesh into triangles
// that keep each face's winding.
//
// For every face with more than three vertices:
//
//  1. Fit the supporting plane with Newell's method.
//  2. Project onto the two axes other than the normal's dominant one.
//  3. Triangulate the projected polygon with an Engine (the constrained
//     Delaunay triangulator by default).
//  4. Check every triangle against a scratch mesh holding the reversed face.
//     A triangle that cannot be inserted there runs against the face's
//     winding and is flipped.
//  5. Map local corners back to the face's mesh vertex indices.
//
// Triangles pass through untouched. A face that cannot be triangulated is
// recorded as a Failure and contributes nothing; the rest of the mesh is
// still processed.
//
// # Concurrency
//
// Faces are independent. With Options.Workers > 1 they are split into
// chunks run through a bounded errgroup, each chunk with its own Engine and
// scratch mesh. Results are merged in face order, so output does not depend
// on the worker count.
package triangulate
