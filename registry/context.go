package registry

import (
	"sync"

	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/debug"
	"github.com/wippyai/meshcut/resource"
)

// ContextHandle identifies a context within one Registry.
type ContextHandle resource.Handle

// ComponentHandle identifies a component within one context. Component
// handles are unique across all contexts of a registry, so a handle from
// another context is rejected.
type ComponentHandle resource.Handle

// Context is the per-handle state of a registry context. It owns every
// component registered under it.
type Context struct {
	components *resource.Table[*component.Component]
	callback   debug.Callback
	userData   any
	filter     debug.Filter
	mu         sync.RWMutex
	flags      meshcut.ContextFlags
	dispatch   meshcut.DispatchFlags
}

func newContext(flags meshcut.ContextFlags, maxComponents int, seq *resource.Sequence) *Context {
	c := &Context{
		components: resource.NewTableWithSequence[*component.Component](maxComponents, seq),
		flags:      flags,
	}
	if flags&meshcut.FlagDebug != 0 {
		c.filter = debug.AllowAll()
	}
	return c
}

// Drop releases every component of the context.
func (c *Context) Drop() {
	c.components.Close()
}

// sink returns the delivery target for msg, or nil when the filter rejects
// it or no callback is set.
func (c *Context) sink(msg debug.Message) (debug.Callback, any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.callback == nil || !c.filter.Allows(msg) {
		return nil, nil
	}
	return c.callback, c.userData
}

func (c *Context) dispatchFlags() meshcut.DispatchFlags {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dispatch
}

var _ resource.Dropper = (*Context)(nil)
