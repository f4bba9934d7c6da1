// Package errors provides structured error types for the meshcut library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending handle, export channel, field path and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseExport, errors.KindInvalidArgument).
//		Handle(uint64(h)).
//		Channel("vertex-float").
//		Detail("buffer holds %d bytes", len(dst)).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseExport, "face", 64, 48)
//	err := errors.InvalidHandle(errors.PhaseContext, "context", h)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match by kind in any phase.
package errors
