package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned by Create when the store's fixed
	// array is full. This is a hard server limit, not resizable.
	ErrCapacityExceeded = errors.New("component store capacity exceeded")
	// ErrNotFound is returned for absent or stale (already deleted) ids.
	ErrNotFound = errors.New("component not found")
)

// CompID is the stable identity of a component, decoupled from its array
// slot. Slots move under swap-remove; ids never do.
type CompID int32

// NoComp marks an absent component reference on a GameObject.
const NoComp CompID = -1

// Store is a fixed-capacity dense array store for one component kind.
// Create appends into the next free slot; Delete swap-removes the last live
// slot into the hole and fixes that component's id→slot mapping, making
// deletion O(1) without ever invalidating component ids. Pointers returned
// by Create/Get are valid until the next Delete on the same store.
type Store[T any] struct {
	kind   string
	items  []T
	ids    []CompID
	owners []EntityID
	slots  map[CompID]int
	nextID CompID
}

// NewStore creates a store for the given component kind. The capacity is
// fixed for the lifetime of the store.
func NewStore[T any](kind string, capacity int) *Store[T] {
	return &Store[T]{
		kind:   kind,
		items:  make([]T, 0, capacity),
		ids:    make([]CompID, 0, capacity),
		owners: make([]EntityID, 0, capacity),
		slots:  make(map[CompID]int, capacity),
	}
}

// Create allocates the next free slot for a component owned by the given
// entity and returns its id and a pointer to the zeroed value.
func (s *Store[T]) Create(owner EntityID) (CompID, *T, error) {
	if len(s.items) == cap(s.items) {
		return NoComp, nil, fmt.Errorf("%s: %w", s.kind, ErrCapacityExceeded)
	}
	id := s.nextID
	s.nextID++
	slot := len(s.items)

	var zero T
	s.items = append(s.items, zero)
	s.ids = append(s.ids, id)
	s.owners = append(s.owners, owner)
	s.slots[id] = slot
	return id, &s.items[slot], nil
}

// Delete removes a component by id. The component in the last live slot is
// moved into the freed slot and its id→slot mapping updated.
func (s *Store[T]) Delete(id CompID) error {
	slot, ok := s.slots[id]
	if !ok {
		return fmt.Errorf("%s %d: %w", s.kind, id, ErrNotFound)
	}
	last := len(s.items) - 1
	if slot != last {
		s.items[slot] = s.items[last]
		s.ids[slot] = s.ids[last]
		s.owners[slot] = s.owners[last]
		s.slots[s.ids[slot]] = slot
	}
	s.items = s.items[:last]
	s.ids = s.ids[:last]
	s.owners = s.owners[:last]
	delete(s.slots, id)
	return nil
}

// Get resolves a component id to its current value.
func (s *Store[T]) Get(id CompID) (*T, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", s.kind, id, ErrNotFound)
	}
	return &s.items[slot], nil
}

// Owner returns the entity a component belongs to.
func (s *Store[T]) Owner(id CompID) (EntityID, error) {
	slot, ok := s.slots[id]
	if !ok {
		return 0, fmt.Errorf("%s %d: %w", s.kind, id, ErrNotFound)
	}
	return s.owners[slot], nil
}

// Each visits exactly the live components in slot order. The order is not
// meaningful to callers: swap-remove reorders the tail between ticks.
// Mutating the store during iteration is not supported.
func (s *Store[T]) Each(fn func(id CompID, owner EntityID, c *T)) {
	for slot := range s.items {
		fn(s.ids[slot], s.owners[slot], &s.items[slot])
	}
}

// Len returns the number of live components.
func (s *Store[T]) Len() int {
	return len(s.items)
}

// Cap returns the fixed capacity.
func (s *Store[T]) Cap() int {
	return cap(s.items)
}
