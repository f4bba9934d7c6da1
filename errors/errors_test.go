package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseExport,
				Kind:    KindInvalidArgument,
				Path:    []string{"component", "faces"},
				Handle:  0x100000001,
				Channel: "face",
				Detail:  "buffer too small",
			},
			contains: []string{"[export]", "invalid_argument", "component.faces", "0x100000001", "channel face", "buffer too small"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseContext,
				Kind:  KindInvalidHandle,
			},
			contains: []string{"[context]", "invalid_handle"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseContext,
				Kind:   KindAllocation,
				Detail: "table full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[context]", "allocation", "table full", "caused by", "underlying error"},
		},
		{
			name: "channel only",
			err: &Error{
				Phase:   PhaseExport,
				Kind:    KindOutOfBounds,
				Channel: "edge",
				Detail:  "requested 20 bytes, 16 available",
			},
			contains: []string{"channel edge - requested 20 bytes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseTriangulate,
		Kind:  KindInvalidArgument,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause in chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseExport,
		Kind:  KindOutOfBounds,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseExport, Kind: KindOutOfBounds}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseQuery, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseExport, Kind: KindInvalidArgument}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrOutOfBounds) {
		t.Error("errors.Is should match the kind sentinel")
	}
	if errors.Is(err, ErrInvalidHandle) {
		t.Error("errors.Is should not match another kind sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseExport, KindInvalidArgument).
		Path("component", "vertices").
		Handle(7).
		Channel("vertex-float").
		Value(42).
		Cause(cause).
		Detail("expected %d, got %d", 12, 42).
		Build()

	if err.Phase != PhaseExport {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseExport)
	}
	if err.Kind != KindInvalidArgument {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidArgument)
	}
	if len(err.Path) != 2 || err.Path[0] != "component" || err.Path[1] != "vertices" {
		t.Errorf("Path = %v, want [component vertices]", err.Path)
	}
	if err.Handle != 7 {
		t.Errorf("Handle = %v, want 7", err.Handle)
	}
	if err.Channel != "vertex-float" {
		t.Errorf("Channel = %v, want 'vertex-float'", err.Channel)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected 12, got 42" {
		t.Errorf("Detail = %v, want 'expected 12, got 42'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidHandle", func(t *testing.T) {
		err := InvalidHandle(PhaseContext, "context", 3)
		if err.Kind != KindInvalidHandle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidHandle)
		}
		if err.Handle != 3 {
			t.Errorf("Handle = %v, want 3", err.Handle)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseExport, "face", 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint64(10) {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Misaligned", func(t *testing.T) {
		err := Misaligned(PhaseExport, "vertex-double", 25, 24)
		if err.Kind != KindInvalidArgument {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidArgument)
		}
		if !strings.Contains(err.Detail, "24") {
			t.Errorf("Detail = %v, should contain unit", err.Detail)
		}
	})

	t.Run("VariantMismatch", func(t *testing.T) {
		err := VariantMismatch(PhaseExport, "fragment-location", "patch")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("VariantMismatch should be an invalid argument, got %v", err.Kind)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseContext, "context handle", errors.New("exhausted"))
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Error(), "exhausted") {
			t.Errorf("Error() = %v, should contain cause", err.Error())
		}
	})

	t.Run("InvalidData", func(t *testing.T) {
		err := InvalidData(PhaseLoad, []string{"line 3"}, "bad vertex")
		if err.Kind != KindInvalidData {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
		}
	})
}

func TestIsAs(t *testing.T) {
	inner := OutOfBounds(PhaseExport, "face", 8, 4)
	wrapped := Wrap(PhaseQuery, KindInvalidArgument, inner, "copy failed")

	if !Is(wrapped, ErrOutOfBounds) {
		t.Error("Is should find the kind sentinel through the cause chain")
	}
	if !Is(wrapped, ErrInvalidArgument) {
		t.Error("Is should match the outer kind")
	}

	var target *Error
	if !As(wrapped, &target) || target.Phase != PhaseQuery {
		t.Errorf("As = %v, want the outer error", target)
	}
}
