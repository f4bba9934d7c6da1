package guestmem

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/errors"
)

// ErrNoMemory is returned for modules that neither define nor export a memory.
var ErrNoMemory = stderrors.New("guestmem: module has no memory")

// Memory adapts a wazero linear memory to meshcut.Memory. It is the
// destination side only; guests read their own memory.
type Memory struct {
	mem api.Memory
}

// New wraps mem.
func New(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// FromModule wraps the memory of an instantiated module.
func FromModule(mod api.Module) (*Memory, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, ErrNoMemory
	}
	return New(mem), nil
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

// Write copies data into guest memory at offset.
func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return m.outOfBounds(offset, uint64(len(data)))
	}
	return nil
}

func (m *Memory) outOfBounds(offset uint32, length uint64) error {
	return errors.OutOfBounds(errors.PhaseExport, "guest memory", uint64(offset)+length, uint64(m.mem.Size()))
}

var (
	_ meshcut.Memory      = (*Memory)(nil)
	_ meshcut.MemorySizer = (*Memory)(nil)
)

// Config holds runtime settings for a Host.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. Zero keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// Host is a wazero runtime for guests that receive exported mesh data.
type Host struct {
	runtime wazero.Runtime
}

// NewHost creates a runtime configured by cfg, which may be nil.
func NewHost(ctx context.Context, cfg *Config) *Host {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Host{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
}

// Instantiate compiles and instantiates wasm under name and returns the
// module with its memory.
func (h *Host) Instantiate(ctx context.Context, name string, wasm []byte) (api.Module, *Memory, error) {
	compiled, err := h.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, nil, fmt.Errorf("compile guest: %w", err)
	}
	mod, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, nil, fmt.Errorf("instantiate guest: %w", err)
	}
	mem, err := FromModule(mod)
	if err != nil {
		mod.Close(ctx)
		return nil, nil, err
	}
	return mod, mem, nil
}

// Close releases the runtime and every module it instantiated.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}
