package export

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/meshcut/errors"
)

// Payload is the backing storage of one channel. Exactly one of U32 and
// F64 is used; F64 values are narrowed to float32 when Float32 is set.
type Payload struct {
	Name  string
	Phase errors.Phase
	U32   []uint32
	F64   []float64

	// Group is the number of elements that must travel together, such as
	// the three coordinates of a vertex. Zero means 1.
	Group int

	Float32 bool
}

// ElemSize returns the encoded size of one element in bytes.
func (p Payload) ElemSize() uint64 {
	if p.F64 != nil && !p.Float32 {
		return 8
	}
	return 4
}

func (p Payload) len() int {
	if p.F64 != nil {
		return len(p.F64)
	}
	return len(p.U32)
}

func (p Payload) phase() errors.Phase {
	if p.Phase == "" {
		return errors.PhaseExport
	}
	return p.Phase
}

// Size returns the total encoded length in bytes.
func (p Payload) Size() uint64 {
	return uint64(p.len()) * p.ElemSize()
}

// Validate checks a copy of requested bytes without touching any buffer.
func (p Payload) Validate(requested uint64) error {
	total := p.Size()
	if requested > total {
		return errors.OutOfBounds(p.phase(), p.Name, requested, total)
	}
	group := p.Group
	if group <= 0 {
		group = 1
	}
	unit := p.ElemSize() * uint64(group)
	if requested%unit != 0 {
		return errors.Misaligned(p.phase(), p.Name, requested, unit)
	}
	return nil
}

// Query runs the two-phase protocol: a nil dst returns the channel size,
// otherwise exactly requested bytes are copied into dst. Nothing is
// written unless the request is valid.
func (p Payload) Query(requested uint64, dst []byte) (uint64, error) {
	if dst == nil {
		return p.Size(), nil
	}
	if err := p.Validate(requested); err != nil {
		return 0, err
	}
	if uint64(len(dst)) < requested {
		return 0, errors.New(p.phase(), errors.KindInvalidArgument).
			Channel(p.Name).
			Value(requested).
			Detail("buffer holds %d bytes, %d requested", len(dst), requested).
			Build()
	}
	p.encode(dst, int(requested/p.ElemSize()))
	return requested, nil
}

// encode writes the first n elements little-endian.
func (p Payload) encode(dst []byte, n int) {
	switch {
	case p.F64 != nil && p.Float32:
		for i, v := range p.F64[:n] {
			binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(float32(v)))
		}
	case p.F64 != nil:
		for i, v := range p.F64[:n] {
			binary.LittleEndian.PutUint64(dst[8*i:], math.Float64bits(v))
		}
	default:
		for i, v := range p.U32[:n] {
			binary.LittleEndian.PutUint32(dst[4*i:], v)
		}
	}
}

// Bytes validates requested and returns the encoded prefix in a new slice.
func (p Payload) Bytes(requested uint64) ([]byte, error) {
	if err := p.Validate(requested); err != nil {
		return nil, err
	}
	buf := make([]byte, requested)
	p.encode(buf, int(requested/p.ElemSize()))
	return buf, nil
}
