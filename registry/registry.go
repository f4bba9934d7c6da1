package registry

import (
	"sync"

	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/debug"
	"github.com/wippyai/meshcut/errors"
	"github.com/wippyai/meshcut/kernel"
	"github.com/wippyai/meshcut/resource"
	"go.uber.org/zap"
)

// Registry owns contexts and the components produced under them.
//
// The context table is created by the first CreateContext and torn down
// when the last context is released. Handles from a torn-down table stay
// invalid in its successor.
type Registry struct {
	contexts *resource.Table[*Context]
	compSeq  *resource.Sequence
	log      *zap.Logger
	opts     Options
	mu       sync.RWMutex
	nextGen  uint32
}

// New creates an empty registry.
func New(opts Options) *Registry {
	if opts.Kernel == nil {
		opts.Kernel = kernel.Passthrough{}
	}
	if opts.Triangulation.NewEngine == nil {
		opts.Triangulation.NewEngine = DefaultOptions().Triangulation.NewEngine
	}
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	return &Registry{
		log:     log,
		opts:    opts,
		compSeq: resource.NewSequence(1),
		nextGen: 1,
	}
}

// CreateContext allocates a context configured by flags.
func (r *Registry) CreateContext(flags meshcut.ContextFlags) (ContextHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.contexts == nil {
		r.contexts = resource.NewTableWithBase[*Context](r.opts.MaxContexts, r.nextGen)
		r.contexts.Subscribe(resource.ObserverFunc(r.onContextEvent))
		r.log.Debug("context table created", zap.Uint32("generation", r.nextGen))
	}

	c := newContext(flags, r.opts.MaxComponents, r.compSeq)
	h, err := r.contexts.Insert(uint32(flags), c)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseContext, "context", err)
	}
	c.components.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		r.onComponentEvent(ContextHandle(h), e)
	}))
	return ContextHandle(h), nil
}

// ReleaseContext releases every component of h and then h itself.
func (r *Registry) ReleaseContext(h ContextHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.contexts == nil {
		return errors.InvalidHandle(errors.PhaseContext, "context", uint64(h))
	}
	if _, ok := r.contexts.Remove(resource.Handle(h)); !ok {
		return errors.InvalidHandle(errors.PhaseContext, "context", uint64(h))
	}

	if r.contexts.Len() == 0 {
		r.nextGen = r.contexts.MaxGeneration() + 1
		r.contexts.Close()
		r.contexts = nil
		r.log.Debug("context table torn down", zap.Uint32("next_generation", r.nextGen))
	}
	return nil
}

// NumContexts returns the number of live contexts.
func (r *Registry) NumContexts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contexts == nil {
		return 0
	}
	return r.contexts.Len()
}

// Close releases every context.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.contexts == nil {
		return nil
	}
	r.nextGen = r.contexts.MaxGeneration() + 1
	err := r.contexts.Close()
	r.contexts = nil
	return err
}

func (r *Registry) context(phase errors.Phase, h ContextHandle) (*Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contexts != nil {
		if c, ok := r.contexts.Get(resource.Handle(h)); ok {
			return c, nil
		}
	}
	return nil, errors.InvalidHandle(phase, "context", uint64(h))
}

// SetDebugCallback installs cb for h. userData is passed back verbatim on
// every delivery. A nil cb disables delivery.
func (r *Registry) SetDebugCallback(h ContextHandle, cb debug.Callback, userData any) error {
	c, err := r.context(errors.PhaseDebug, h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.callback = cb
	c.userData = userData
	c.mu.Unlock()
	return nil
}

// SetDebugFilter replaces the debug filter of h. Every category flag not
// named in the masks is disabled, and all named ones are disabled when
// enabled is false.
func (r *Registry) SetDebugFilter(h ContextHandle, source debug.Source, typ debug.Type, severity debug.Severity, enabled bool) error {
	c, err := r.context(errors.PhaseDebug, h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.filter.Set(source, typ, severity, enabled)
	c.mu.Unlock()
	return nil
}

// emit logs msg and delivers it to the context callback when the filter
// allows it. It must not be called with the context lock held.
func (r *Registry) emit(h ContextHandle, c *Context, msg debug.Message) {
	if ce := r.log.Check(zap.DebugLevel, msg.Text); ce != nil {
		ce.Write(append(debug.Fields(msg), zap.Uint64("context", uint64(h)))...)
	}
	if cb, userData := c.sink(msg); cb != nil {
		cb(msg, userData)
	}
}

// fail reports err on the API debug channel and returns it.
func (r *Registry) fail(h ContextHandle, c *Context, err error) error {
	r.emit(h, c, debug.Message{
		Source:   debug.SourceAPI,
		Type:     debug.TypeError,
		Severity: debug.SeverityHigh,
		Text:     err.Error(),
	})
	return err
}

func (r *Registry) onContextEvent(e resource.Event) {
	r.log.Debug("context "+e.Type.String(),
		zap.Uint64("context", uint64(e.Handle)),
		zap.Uint32("flags", e.TypeID))
}

func (r *Registry) onComponentEvent(h ContextHandle, e resource.Event) {
	r.log.Debug("component "+e.Type.String(),
		zap.Uint64("context", uint64(h)),
		zap.Uint64("component", uint64(e.Handle)),
		zap.Stringer("type", component.Type(e.TypeID)))
}
