package resource

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

var (
	ErrClosed    = errors.New("resource backend closed")
	ErrExhausted = errors.New("resource backend exhausted")
)

// maxSlots keeps slot+1 representable in the low half of a Handle.
const maxSlots = math.MaxUint32 - 1

// LocalBackend is an in-memory arena of generation-checked slots.
// Released slots are reused with a bumped generation, so a stale handle
// never resolves to the value that replaced it.
type LocalBackend[T any] struct {
	entries  []entry[T]
	freeList []uint32
	limit    int64
	live     int64
	mu       sync.RWMutex
	seq      *Sequence
	base     uint32
	maxGen   uint32
	closed   bool
}

type entry[T any] struct {
	value  T
	typeID uint32
	gen    uint32
	valid  bool
}

// NewLocalBackend creates a new in-memory backend.
// A positive limit caps the number of live entries.
func NewLocalBackend[T any](limit int) *LocalBackend[T] {
	return NewLocalBackendWithBase[T](limit, 1)
}

// NewLocalBackendWithBase is NewLocalBackend with fresh slots starting at
// generation base instead of 1. Seeding a replacement backend with the
// MaxGeneration of its predecessor keeps the predecessor's handles invalid.
func NewLocalBackendWithBase[T any](limit int, base uint32) *LocalBackend[T] {
	capped := int64(limit)
	if capped <= 0 || capped > maxSlots {
		capped = maxSlots
	}
	if base == 0 {
		base = 1
	}
	return &LocalBackend[T]{
		entries:  make([]entry[T], 0, 16),
		freeList: make([]uint32, 0, 8),
		limit:    capped,
		base:     base,
		maxGen:   base - 1,
	}
}

// NewLocalBackendWithSequence is NewLocalBackend with every generation
// drawn from seq. Backends sharing seq never issue equal handles.
func NewLocalBackendWithSequence[T any](limit int, seq *Sequence) *LocalBackend[T] {
	b := NewLocalBackendWithBase[T](limit, 1)
	b.seq = seq
	return b
}

// Create stores a value and returns a handle.
func (b *LocalBackend[T]) Create(typeID uint32, value T) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	if b.live >= b.limit {
		return 0, ErrExhausted
	}

	n := len(b.freeList)
	if n == 0 && int64(len(b.entries)) >= maxSlots {
		return 0, ErrExhausted
	}

	gen := b.base
	if b.seq != nil {
		var ok bool
		if gen, ok = b.seq.Next(); !ok {
			return 0, ErrExhausted
		}
	}

	if n > 0 {
		slot := b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
		e := &b.entries[slot]
		if b.seq != nil {
			e.gen = gen
		}
		e.value = value
		e.typeID = typeID
		e.valid = true
		b.live++
		b.maxGen = max(b.maxGen, e.gen)
		return makeHandle(slot, e.gen), nil
	}

	slot := uint32(len(b.entries))
	b.entries = append(b.entries, entry[T]{
		value:  value,
		typeID: typeID,
		gen:    gen,
		valid:  true,
	})
	b.live++
	b.maxGen = max(b.maxGen, gen)
	return makeHandle(slot, gen), nil
}

// lookup returns the live entry for handle. Caller holds the lock.
func (b *LocalBackend[T]) lookup(handle Handle) *entry[T] {
	slot, ok := handle.slot()
	if !ok || int(slot) >= len(b.entries) {
		return nil
	}
	e := &b.entries[slot]
	if !e.valid || e.gen != handle.Generation() {
		return nil
	}
	return e
}

// Get retrieves a value by handle.
func (b *LocalBackend[T]) Get(handle Handle) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		var zero T
		return zero, false
	}
	return e.value, true
}

// TypeID returns the type ID for a handle.
func (b *LocalBackend[T]) TypeID(handle Handle) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return 0, false
	}
	return e.typeID, true
}

// Drop removes a resource and returns (value, true) if it was live.
func (b *LocalBackend[T]) Drop(handle Handle) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	e := b.lookup(handle)
	if e == nil {
		return zero, false
	}

	value := e.value
	e.value = zero
	e.valid = false
	b.live--

	// A slot whose generation would wrap is retired instead of reused.
	// Sequenced slots take a fresh generation on reuse.
	if b.seq != nil {
		slot, _ := handle.slot()
		b.freeList = append(b.freeList, slot)
	} else if e.gen < math.MaxUint32 {
		e.gen++
		slot, _ := handle.slot()
		b.freeList = append(b.freeList, slot)
	}

	return value, true
}

// Close releases all resources.
func (b *LocalBackend[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var zero T
	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := any(b.entries[i].value).(Dropper); ok {
				d.Drop()
			}
			b.entries[i].valid = false
			b.entries[i].value = zero
		}
	}

	b.entries = nil
	b.freeList = nil
	b.live = 0
	return nil
}

// MaxGeneration returns the highest generation any handle of b has carried.
// It stays valid after Close.
func (b *LocalBackend[T]) MaxGeneration() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxGen
}

// Len returns the number of active resources.
func (b *LocalBackend[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int(b.live)
}

// Each iterates over all active resources in slot order.
// fn must not call back into the backend.
func (b *LocalBackend[T]) Each(fn func(Handle, uint32, T) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.entries {
		e := &b.entries[i]
		if e.valid {
			if !fn(makeHandle(uint32(i), e.gen), e.typeID, e.value) {
				break
			}
		}
	}
}

// Sequence is a generation counter shared by several backends.
type Sequence struct {
	last atomic.Uint32
}

// NewSequence returns a sequence whose first generation is start.
func NewSequence(start uint32) *Sequence {
	if start == 0 {
		start = 1
	}
	s := &Sequence{}
	s.last.Store(start - 1)
	return s
}

// Next returns the next generation, or false once the sequence is spent.
func (s *Sequence) Next() (uint32, bool) {
	for {
		cur := s.last.Load()
		if cur == math.MaxUint32 {
			return 0, false
		}
		if s.last.CompareAndSwap(cur, cur+1) {
			return cur + 1, true
		}
	}
}

var _ Backend[any] = (*LocalBackend[any])(nil)
