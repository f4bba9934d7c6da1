// Package export implements the channel enumeration and the two-phase
// query protocol used to copy component data out of the library.
//
// Every export is a pair of calls:
//
//	size, _ := export.Query(c, export.Face, env, 0, nil)   // size query
//	buf := make([]byte, size)
//	n, _ := export.Query(c, export.Face, env, size, buf)    // copy
//
// A copy may ask for less than the full channel as long as the request is a
// whole number of element groups: three coordinates for vertices, three
// indices for triangles, two for edges and one element otherwise. Data is
// little-endian. Requests that exceed the channel fail with an out-of-bounds
// error and misaligned requests with an invalid-argument error, both before
// any byte is written.
//
// Channels tied to a variant (fragment location, seal type, origin and so on)
// reject other component types before any size logic runs.
package export
