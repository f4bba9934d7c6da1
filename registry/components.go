package registry

import (
	"context"

	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/export"
	"github.com/wippyai/meshcut/mesh"
	"github.com/wippyai/meshcut/resource"
	"github.com/wippyai/meshcut/triangulate"
	"go.uber.org/zap"
)

// AddComponent registers c under h and returns its handle.
func (r *Registry) AddComponent(h ContextHandle, c *component.Component) (ComponentHandle, error) {
	ctx, err := r.context(errors.PhaseDispatch, h)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, r.fail(h, ctx, errors.InvalidArgument(errors.PhaseDispatch, "nil component"))
	}
	ch, err := ctx.components.Insert(uint32(c.Type()), c)
	if err != nil {
		return 0, r.fail(h, ctx, errors.AllocationFailed(errors.PhaseDispatch, "component", err))
	}
	return ComponentHandle(ch), nil
}

// Dispatch cuts src with cut using the configured kernel and registers the
// resulting components under h. The flags are recorded on the context
// before the kernel runs and gate the provenance channels of the result.
func (r *Registry) Dispatch(ctx context.Context, h ContextHandle, flags meshcut.DispatchFlags, src, cut *mesh.Mesh) error {
	c, err := r.context(errors.PhaseDispatch, h)
	if err != nil {
		return err
	}
	if src == nil || cut == nil {
		return r.fail(h, c, errors.InvalidArgument(errors.PhaseDispatch, "source and cut mesh are required"))
	}

	c.mu.Lock()
	c.dispatch = flags
	c.mu.Unlock()

	comps, err := r.opts.Kernel.Cut(ctx, flags, src, cut)
	if err != nil {
		return r.fail(h, c, errors.Wrap(errors.PhaseDispatch, errors.KindInvalidArgument, err, "kernel failed"))
	}

	for i, comp := range comps {
		if _, err := c.components.Insert(uint32(comp.Type()), comp); err != nil {
			for _, rest := range comps[i:] {
				rest.Drop()
			}
			return r.fail(h, c, errors.AllocationFailed(errors.PhaseDispatch, "component", err))
		}
	}
	r.log.Debug("dispatch complete",
		zap.Uint64("context", uint64(h)),
		zap.Uint32("flags", uint32(flags)),
		zap.Int("components", len(comps)))
	return nil
}

// ListComponents enumerates the components of h whose type intersects mask.
// With a nil out it returns the number of matches. Otherwise it writes up to
// min(capacity, len(out)) matching handles in slot order and returns how
// many it wrote.
func (r *Registry) ListComponents(h ContextHandle, mask component.Type, capacity uint32, out []ComponentHandle) (uint32, error) {
	c, err := r.context(errors.PhaseQuery, h)
	if err != nil {
		return 0, err
	}

	var n uint32
	if out == nil {
		c.components.Each(func(_ resource.Handle, typeID uint32, _ *component.Component) bool {
			if component.Type(typeID)&mask != 0 {
				n++
			}
			return true
		})
		return n, nil
	}

	limit := min(uint64(capacity), uint64(len(out)))
	c.components.Each(func(ch resource.Handle, typeID uint32, _ *component.Component) bool {
		if uint64(n) >= limit {
			return false
		}
		if component.Type(typeID)&mask != 0 {
			out[n] = ComponentHandle(ch)
			n++
		}
		return true
	})
	return n, nil
}

// ReleaseComponents releases the first count entries of handles. A zero
// count with nil handles releases every component of h. The request is
// validated in full before anything is released.
func (r *Registry) ReleaseComponents(h ContextHandle, count uint32, handles []ComponentHandle) error {
	c, err := r.context(errors.PhaseRelease, h)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if count == 0 && handles == nil {
		c.components.Clear()
		c.mu.Unlock()
		return nil
	}

	var bad error
	switch {
	case uint64(count) > uint64(c.components.Len()):
		bad = errors.New(errors.PhaseRelease, errors.KindInvalidArgument).
			Value(count).
			Detail("count %d exceeds %d components", count, c.components.Len()).
			Build()
	case uint64(len(handles)) < uint64(count):
		bad = errors.New(errors.PhaseRelease, errors.KindInvalidArgument).
			Value(count).
			Detail("count %d exceeds %d handles", count, len(handles)).
			Build()
	default:
		seen := make(map[ComponentHandle]struct{}, count)
		for _, ch := range handles[:count] {
			if !c.components.Contains(resource.Handle(ch)) {
				bad = errors.InvalidHandle(errors.PhaseRelease, "component", uint64(ch))
				break
			}
			if _, dup := seen[ch]; dup {
				bad = errors.New(errors.PhaseRelease, errors.KindInvalidArgument).
					Handle(uint64(ch)).
					Detail("component listed twice").
					Build()
				break
			}
			seen[ch] = struct{}{}
		}
	}
	if bad == nil {
		for _, ch := range handles[:count] {
			c.components.Remove(resource.Handle(ch))
		}
	}
	c.mu.Unlock()

	if bad != nil {
		return r.fail(h, c, bad)
	}
	return nil
}

// NumComponents returns the number of live components of h.
func (r *Registry) NumComponents(h ContextHandle) (int, error) {
	c, err := r.context(errors.PhaseQuery, h)
	if err != nil {
		return 0, err
	}
	return c.components.Len(), nil
}

// Component returns the component behind ch.
func (r *Registry) Component(h ContextHandle, ch ComponentHandle) (*component.Component, error) {
	_, comp, err := r.lookup(errors.PhaseQuery, h, ch)
	return comp, err
}

func (r *Registry) lookup(phase errors.Phase, h ContextHandle, ch ComponentHandle) (*Context, *component.Component, error) {
	c, err := r.context(phase, h)
	if err != nil {
		return nil, nil, err
	}
	comp, ok := c.components.Get(resource.Handle(ch))
	if !ok {
		return c, nil, errors.InvalidHandle(phase, "component", uint64(ch))
	}
	return c, comp, nil
}

// GetData runs the two-phase query protocol on one channel of a component.
// A nil dst returns the channel size in bytes; otherwise exactly requested
// bytes are copied to dst and the count is returned.
//
// The first face-triangulation request computes the triangulation and
// reports every face that produced no triangles on the debug channel.
func (r *Registry) GetData(h ContextHandle, ch ComponentHandle, channel export.Channel, requested uint64, dst []byte) (uint64, error) {
	c, comp, err := r.lookup(errors.PhaseExport, h, ch)
	if err != nil {
		if c != nil {
			return 0, r.fail(h, c, err)
		}
		return 0, err
	}
	p, err := r.resolve(h, c, comp, channel)
	if err != nil {
		return 0, err
	}
	n, err := p.Query(requested, dst)
	if err != nil {
		return 0, r.fail(h, c, err)
	}
	return n, nil
}

// GetDataInto copies requested bytes of a channel into mem at offset. It
// follows the same validation as GetData; when mem reports its size the
// destination range is checked before anything is written.
func (r *Registry) GetDataInto(h ContextHandle, ch ComponentHandle, channel export.Channel, requested uint64, mem meshcut.Memory, offset uint32) (uint64, error) {
	c, comp, err := r.lookup(errors.PhaseExport, h, ch)
	if err != nil {
		if c != nil {
			return 0, r.fail(h, c, err)
		}
		return 0, err
	}
	if mem == nil {
		return 0, r.fail(h, c, errors.InvalidArgument(errors.PhaseExport, "nil destination memory"))
	}
	p, err := r.resolve(h, c, comp, channel)
	if err != nil {
		return 0, err
	}
	if err := p.Validate(requested); err != nil {
		return 0, r.fail(h, c, err)
	}
	if s, ok := mem.(meshcut.MemorySizer); ok {
		if end := uint64(offset) + requested; end > uint64(s.Size()) {
			return 0, r.fail(h, c, errors.OutOfBounds(errors.PhaseExport, "destination", end, uint64(s.Size())))
		}
	}
	buf, err := p.Bytes(requested)
	if err != nil {
		return 0, r.fail(h, c, err)
	}
	if err := mem.Write(offset, buf); err != nil {
		kind := errors.KindInvalidArgument
		if errors.Is(err, errors.ErrOutOfBounds) {
			kind = errors.KindOutOfBounds
		}
		return 0, r.fail(h, c, errors.Wrap(errors.PhaseExport, kind, err, "write destination"))
	}
	return requested, nil
}

// resolve maps channel to its payload under the context read lock, so a
// concurrent release cannot tear the component's arrays mid-read.
// Triangulation failures are delivered after the lock is dropped.
func (r *Registry) resolve(h ContextHandle, c *Context, comp *component.Component, channel export.Channel) (export.Payload, error) {
	var failures []triangulate.Failure
	c.mu.RLock()
	env := export.Env{
		Dispatch:      c.dispatch,
		Triangulation: r.opts.Triangulation,
		Report: func(f triangulate.Failure) {
			failures = append(failures, f)
		},
	}
	p, err := export.Resolve(comp, channel, env)
	c.mu.RUnlock()
	for _, f := range failures {
		r.emit(h, c, f.Message())
	}
	if err != nil {
		return export.Payload{}, r.fail(h, c, err)
	}
	return p, nil
}
