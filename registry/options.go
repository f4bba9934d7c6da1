package registry

import (
	"github.com/wippyai/meshcut/kernel"
	"github.com/wippyai/meshcut/triangulate"
	"go.uber.org/zap"
)

// Options configures a Registry.
type Options struct {
	// Logger receives lifecycle events and every debug message, filtered or
	// not. Nil falls back to the package logger.
	Logger *zap.Logger

	// Kernel produces components on Dispatch. Nil uses kernel.Passthrough.
	Kernel kernel.Kernel

	// Triangulation configures lazily computed face triangulations.
	Triangulation triangulate.Options

	// MaxContexts caps live contexts. Zero means unbounded.
	MaxContexts int

	// MaxComponents caps live components per context. Zero means unbounded.
	MaxComponents int
}

// DefaultOptions returns options for a registry with the passthrough kernel
// and sequential triangulation.
func DefaultOptions() Options {
	return Options{
		Kernel:        kernel.Passthrough{},
		Triangulation: triangulate.DefaultOptions(),
	}
}
