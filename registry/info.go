package registry

import (
	"fmt"

	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/export"
)

// Info selects a piece of context state for GetInfo.
type Info uint32

const (
	// InfoContextFlags is the ContextFlags the context was created with.
	InfoContextFlags Info = 1 << 0
	// InfoDispatchFlags is the DispatchFlags of the most recent dispatch.
	InfoDispatchFlags Info = 1 << 1
)

func (i Info) String() string {
	switch i {
	case InfoContextFlags:
		return "context-flags"
	case InfoDispatchFlags:
		return "dispatch-flags"
	default:
		return fmt.Sprintf("info(%#x)", uint32(i))
	}
}

// GetInfo queries context state with the same two-phase protocol as
// GetData: a nil dst returns the size, otherwise requested bytes are copied.
func (r *Registry) GetInfo(h ContextHandle, info Info, requested uint64, dst []byte) (uint64, error) {
	c, err := r.context(errors.PhaseQuery, h)
	if err != nil {
		return 0, err
	}

	var v uint32
	switch info {
	case InfoContextFlags:
		v = uint32(c.flags)
	case InfoDispatchFlags:
		v = uint32(c.dispatchFlags())
	default:
		return 0, r.fail(h, c, errors.New(errors.PhaseQuery, errors.KindInvalidArgument).
			Value(uint32(info)).
			Detail("unknown info parameter %s", info).
			Build())
	}

	p := export.Payload{Name: info.String(), Phase: errors.PhaseQuery, U32: []uint32{v}}
	n, err := p.Query(requested, dst)
	if err != nil {
		return 0, r.fail(h, c, err)
	}
	return n, nil
}
