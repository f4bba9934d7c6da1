package debug

import (
	"fmt"
	"math/bits"
	"strings"
)

// Source identifies the subsystem that produced a message.
type Source uint32

const (
	SourceAPI    Source = 1 << 0
	SourceKernel Source = 1 << 1

	SourceAll = SourceAPI | SourceKernel
)

// Type categorizes a message.
type Type uint32

const (
	TypeError              Type = 1 << 0
	TypeDeprecatedBehavior Type = 1 << 1
	TypeUndefinedBehavior  Type = 1 << 2
	TypePortability        Type = 1 << 3
	TypePerformance        Type = 1 << 4
	TypeOther              Type = 1 << 5

	TypeAll = TypeError | TypeDeprecatedBehavior | TypeUndefinedBehavior |
		TypePortability | TypePerformance | TypeOther
)

// Severity ranks a message.
type Severity uint32

const (
	SeverityHigh         Severity = 1 << 0
	SeverityMedium       Severity = 1 << 1
	SeverityLow          Severity = 1 << 2
	SeverityNotification Severity = 1 << 3

	SeverityAll = SeverityHigh | SeverityMedium | SeverityLow | SeverityNotification
)

var sourceNames = map[Source]string{
	SourceAPI:    "api",
	SourceKernel: "kernel",
}

var typeNames = map[Type]string{
	TypeError:              "error",
	TypeDeprecatedBehavior: "deprecated",
	TypeUndefinedBehavior:  "undefined",
	TypePortability:        "portability",
	TypePerformance:        "performance",
	TypeOther:              "other",
}

var severityNames = map[Severity]string{
	SeverityHigh:         "high",
	SeverityMedium:       "medium",
	SeverityLow:          "low",
	SeverityNotification: "notification",
}

func (s Source) String() string   { return flagString(uint32(s), uint32(SourceAll), sourceNames) }
func (t Type) String() string     { return flagString(uint32(t), uint32(TypeAll), typeNames) }
func (s Severity) String() string { return flagString(uint32(s), uint32(SeverityAll), severityNames) }

func flagString[F ~uint32](v, all uint32, names map[F]string) string {
	if v == 0 {
		return "none"
	}
	var parts []string
	for rest := v; rest != 0; rest &= rest - 1 {
		bit := rest & -rest
		if bit&all == 0 {
			parts = append(parts, fmt.Sprintf("%#x", bit))
			continue
		}
		parts = append(parts, names[F(bit)])
	}
	return strings.Join(parts, "|")
}

// Message is a diagnostic delivered to a context's callback.
type Message struct {
	Text     string
	ID       uint32
	Source   Source
	Type     Type
	Severity Severity
}

// Callback receives messages that pass the context's filter.
// userData is the value registered alongside the callback.
type Callback func(msg Message, userData any)

// Filter holds the compacted source, type and severity masks of a context.
// The zero Filter delivers nothing.
type Filter struct {
	source   uint32
	typ      uint32
	severity uint32
}

// AllowAll returns a filter that delivers every message.
func AllowAll() Filter {
	var f Filter
	f.Set(SourceAll, TypeAll, SeverityAll, true)
	return f
}

// Set recomputes all three masks from scratch. A flag is enabled only when
// it is present in the requested mask and enabled is true; every other flag
// of the enumeration is cleared.
func (f *Filter) Set(source Source, typ Type, severity Severity, enabled bool) {
	f.source = compact(uint32(SourceAll), uint32(source), enabled)
	f.typ = compact(uint32(TypeAll), uint32(typ), enabled)
	f.severity = compact(uint32(SeverityAll), uint32(severity), enabled)
}

// Allows reports whether msg passes every mask.
func (f Filter) Allows(msg Message) bool {
	return f.has(f.source, uint32(SourceAll), uint32(msg.Source)) &&
		f.has(f.typ, uint32(TypeAll), uint32(msg.Type)) &&
		f.has(f.severity, uint32(SeverityAll), uint32(msg.Severity))
}

func (f Filter) has(mask, all, flag uint32) bool {
	if flag == 0 || flag&all != flag || bits.OnesCount32(flag) != 1 {
		return false
	}
	return mask&(1<<position(all, flag)) != 0
}

// Masks returns the compacted masks, mainly for inspection.
func (f Filter) Masks() (source, typ, severity uint32) {
	return f.source, f.typ, f.severity
}

// compact maps each flag of the enumeration all that is set in requested to
// its dense rank within all.
func compact(all, requested uint32, enabled bool) uint32 {
	var mask uint32
	for rest := all; rest != 0; rest &= rest - 1 {
		flag := rest & -rest
		if enabled && requested&flag != 0 {
			mask |= 1 << position(all, flag)
		}
	}
	return mask
}

// position returns the 0-based rank of a single-bit flag within all.
func position(all, flag uint32) int {
	below := uint32(1)<<bits.TrailingZeros32(flag) - 1
	return bits.OnesCount32(all & below)
}
