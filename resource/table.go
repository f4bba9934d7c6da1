package resource

import (
	"sync"
)

// Table adds lifecycle observers and Dropper cleanup on top of a LocalBackend.
type Table[T any] struct {
	backend   *LocalBackend[T]
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with an unbounded LocalBackend.
func NewTable[T any]() *Table[T] {
	return NewTableWithLimit[T](0)
}

// NewTableWithLimit creates a table holding at most limit live entries.
func NewTableWithLimit[T any](limit int) *Table[T] {
	return NewTableWithBase[T](limit, 1)
}

// NewTableWithBase creates a table whose first handles carry generation base.
func NewTableWithBase[T any](limit int, base uint32) *Table[T] {
	return &Table[T]{
		backend: NewLocalBackendWithBase[T](limit, base),
	}
}

// NewTableWithSequence creates a table whose generations come from seq.
// Handles are then unique across every table sharing seq.
func NewTableWithSequence[T any](limit int, seq *Sequence) *Table[T] {
	return &Table[T]{
		backend: NewLocalBackendWithSequence[T](limit, seq),
	}
}

// MaxGeneration returns the highest generation issued by the table.
func (t *Table[T]) MaxGeneration() uint32 {
	return t.backend.MaxGeneration()
}

// Insert adds a value and returns its handle.
func (t *Table[T]) Insert(typeID uint32, value T) (Handle, error) {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0, ErrClosed
	}
	t.closeMu.RUnlock()

	handle, err := t.backend.Create(typeID, value)
	if err != nil {
		return 0, err
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(handle Handle) (T, bool) {
	return t.backend.Get(handle)
}

// Contains reports whether handle refers to a live entry.
func (t *Table[T]) Contains(handle Handle) bool {
	_, ok := t.backend.TypeID(handle)
	return ok
}

// TypeID returns the type ID recorded for handle.
func (t *Table[T]) TypeID(handle Handle) (uint32, bool) {
	return t.backend.TypeID(handle)
}

// Remove drops a resource and returns (value, true) if found.
func (t *Table[T]) Remove(handle Handle) (T, bool) {
	typeID, _ := t.backend.TypeID(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return value, false
	}

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of active resources.
func (t *Table[T]) Len() int {
	return t.backend.Len()
}

// Each iterates over all active resources in slot order.
func (t *Table[T]) Each(fn func(Handle, uint32, T) bool) {
	t.backend.Each(fn)
}

// Handles returns the handles of all active resources in slot order.
func (t *Table[T]) Handles() []Handle {
	var handles []Handle
	t.backend.Each(func(h Handle, _ uint32, _ T) bool {
		handles = append(handles, h)
		return true
	})
	return handles
}

// Clear drops all resources.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding lock during Remove
	for _, h := range t.Handles() {
		t.Remove(h)
	}
}

// Close drops all resources and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	t.closeMu.Unlock()

	t.Clear()
	return t.backend.Close()
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
