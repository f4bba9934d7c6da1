// Package guestmem exposes WebAssembly linear memory as an export
// destination.
//
// A Memory wraps a wazero api.Memory and satisfies meshcut.Memory and
// meshcut.MemorySizer, so registry.GetDataInto can validate the destination
// range against the guest's current size before copying:
//
//	host := guestmem.NewHost(ctx, nil)
//	defer host.Close(ctx)
//	_, mem, _ := host.Instantiate(ctx, "guest", wasm)
//	reg.GetDataInto(h, comp, export.Face, size, mem, ptr)
package guestmem
