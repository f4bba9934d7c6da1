// Package debug holds the diagnostic categories and the per-context filter
// that decides which messages reach a user callback.
//
// Sources, types and severities are bit-flag enumerations so callers can
// pass unions. A Filter stores each category compacted: every flag of an
// enumeration occupies the bit given by its rank within that enumeration,
// whatever its position in the public value.
//
//	var f debug.Filter
//	f.Set(debug.SourceAll, debug.TypeAll, debug.SeverityHigh|debug.SeverityMedium, true)
//	f.Allows(debug.Message{Source: debug.SourceKernel, Type: debug.TypeOther, Severity: debug.SeverityLow}) // false
package debug
