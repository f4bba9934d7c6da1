// Package kernel defines the boundary to the mesh intersection kernel.
//
// The kernel itself lives outside this module. The registry hands it the
// source and cut meshes on dispatch and registers whatever components it
// returns. Passthrough is a stand-in that returns the inputs unchanged,
// useful for exercising the export path without a real cutter.
package kernel
