package debug

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCompact_Sparse(t *testing.T) {
	// Flags at bits 0, 4 and 8 land on dense positions 0, 1 and 2.
	const all = 1<<0 | 1<<4 | 1<<8

	tests := []struct {
		name      string
		requested uint32
		enabled   bool
		want      uint32
	}{
		{"all", all, true, 0b111},
		{"first", 1 << 0, true, 0b001},
		{"middle", 1 << 4, true, 0b010},
		{"last", 1 << 8, true, 0b100},
		{"outer", 1<<0 | 1<<8, true, 0b101},
		{"disabled", all, false, 0},
		{"foreign bits ignored", 1<<1 | 1<<4, true, 0b010},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compact(all, tt.requested, tt.enabled); got != tt.want {
				t.Fatalf("compact(%#x) = %#b, want %#b", tt.requested, got, tt.want)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	if p := position(uint32(TypeAll), uint32(TypeOther)); p != 5 {
		t.Fatalf("position(TypeOther) = %d, want 5", p)
	}
	if p := position(uint32(SeverityAll), uint32(SeverityNotification)); p != 3 {
		t.Fatalf("position(SeverityNotification) = %d, want 3", p)
	}
	if p := position(1<<2|1<<9, 1<<9); p != 1 {
		t.Fatalf("position(sparse) = %d, want 1", p)
	}
}

func TestFilter_ZeroDeliversNothing(t *testing.T) {
	var f Filter
	msg := Message{Source: SourceAPI, Type: TypeError, Severity: SeverityHigh}
	if f.Allows(msg) {
		t.Fatal("zero filter should deny every message")
	}
}

func TestFilter_SetRecomputes(t *testing.T) {
	f := AllowAll()
	note := Message{Source: SourceKernel, Type: TypeOther, Severity: SeverityNotification}
	high := Message{Source: SourceKernel, Type: TypeOther, Severity: SeverityHigh}

	if !f.Allows(note) || !f.Allows(high) {
		t.Fatal("AllowAll should deliver every message")
	}

	// Not incremental: enabling only High clears Notification.
	f.Set(SourceAll, TypeAll, SeverityHigh, true)
	if f.Allows(note) {
		t.Fatal("notification should be filtered")
	}
	if !f.Allows(high) {
		t.Fatal("high should pass")
	}

	// enabled=false clears everything regardless of the requested masks.
	f.Set(SourceAll, TypeAll, SeverityAll, false)
	if f.Allows(high) {
		t.Fatal("disabled filter should deny")
	}

	_, _, sev := f.Masks()
	if sev != 0 {
		t.Fatalf("severity mask = %#b, want 0", sev)
	}
}

func TestFilter_Allows(t *testing.T) {
	var f Filter
	f.Set(SourceKernel, TypeOther|TypePerformance, SeverityAll, true)

	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"match", Message{Source: SourceKernel, Type: TypeOther, Severity: SeverityLow}, true},
		{"wrong source", Message{Source: SourceAPI, Type: TypeOther, Severity: SeverityLow}, false},
		{"wrong type", Message{Source: SourceKernel, Type: TypeError, Severity: SeverityLow}, false},
		{"zero severity", Message{Source: SourceKernel, Type: TypeOther}, false},
		{"multi-bit type", Message{Source: SourceKernel, Type: TypeOther | TypePerformance, Severity: SeverityLow}, false},
		{"unknown bit", Message{Source: Source(1 << 7), Type: TypeOther, Severity: SeverityLow}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Allows(tt.msg); got != tt.want {
				t.Fatalf("Allows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlagString(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{SourceAPI.String(), "api"},
		{(SourceAPI | SourceKernel).String(), "api|kernel"},
		{SeverityNotification.String(), "notification"},
		{Type(0).String(), "none"},
		{Type(1 << 9).String(), "0x200"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestZapCallback(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cb := ZapCallback(zap.New(core))

	cb(Message{Text: "cannot triangulate face 2", Source: SourceKernel, Type: TypeOther, Severity: SeverityNotification}, nil)
	cb(Message{Text: "bad handle", Source: SourceAPI, Type: TypeError, Severity: SeverityHigh}, nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("notification level = %v, want debug", entries[0].Level)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("high level = %v, want error", entries[1].Level)
	}
	if entries[0].ContextMap()["severity"] != "notification" {
		t.Errorf("severity field = %v", entries[0].ContextMap()["severity"])
	}
}
