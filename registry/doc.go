// Package registry is the service object that owns contexts and the
// connected components produced under them.
//
// # Handles
//
// Contexts and components are addressed by opaque generation-checked
// handles. Releasing an entry bumps its slot generation, so a stale handle
// is rejected with an invalid-handle error instead of reaching whatever
// reused the slot.
//
// # Lifecycle
//
//	reg := registry.New(registry.DefaultOptions())
//	h, _ := reg.CreateContext(meshcut.FlagDebug)
//	defer reg.ReleaseContext(h)
//
//	reg.Dispatch(ctx, h, meshcut.DispatchIncludeVertexMap, src, cut)
//	n, _ := reg.ListComponents(h, component.TypeAll, 0, nil)
//	comps := make([]registry.ComponentHandle, n)
//	reg.ListComponents(h, component.TypeAll, n, comps)
//
// The context table is created lazily and torn down when the last context
// is released, so independent registries can coexist in one process.
//
// # Diagnostics
//
// Each context carries a debug filter and callback. Every message is also
// logged at debug level through the registry's zap logger. API failures are
// reported as high-severity errors from the API source, and faces the
// triangulator could not handle as kernel notifications.
package registry
