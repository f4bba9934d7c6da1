// Package resource provides generation-checked handle tables.
//
// Contexts and connected components are never exposed by pointer. Callers
// hold opaque handles that a Table resolves back to values:
//
//	table := resource.NewTable[*Widget]()
//
//	// Insert a value, get a handle
//	h, err := table.Insert(typeID, w)
//
//	// Retrieve value by handle
//	w, ok := table.Get(h)
//
//	// Remove and get value
//	w, ok := table.Remove(h)
//
// # Generations
//
// A handle packs a slot index with the slot's generation. Removing an entry
// bumps the generation before the slot is reused, so a stale handle fails
// lookup instead of aliasing the new occupant:
//
//	h1, _ := table.Insert(0, a)
//	table.Remove(h1)
//	h2, _ := table.Insert(0, b) // same slot, new generation
//	_, ok := table.Get(h1)      // ok == false
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("resource %#x %s", e.Handle, e.Type)
//	}))
//
// # Cleanup
//
// Values implementing Dropper have Drop called when they are removed,
// cleared or when the table is closed.
package resource
