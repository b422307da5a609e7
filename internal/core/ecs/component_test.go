package ecs

import (
	"errors"
	"testing"
)

type testComp struct {
	Value int
}

func TestStoreCreateGet(t *testing.T) {
	s := NewStore[testComp]("test", 4)

	owner := NewEntityID(1, 0)
	id, c, err := s.Create(owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c.Value = 42

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != 42 {
		t.Fatalf("Get returned value %d, want 42", got.Value)
	}
	o, err := s.Owner(id)
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if o != owner {
		t.Fatalf("Owner = %d, want %d", o, owner)
	}
}

func TestStoreCapacity(t *testing.T) {
	s := NewStore[testComp]("test", 2)

	for i := 0; i < 2; i++ {
		if _, _, err := s.Create(NewEntityID(uint32(i), 0)); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	_, _, err := s.Create(NewEntityID(9, 0))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Create past capacity = %v, want ErrCapacityExceeded", err)
	}
	if s.Len() != 2 || s.Cap() != 2 {
		t.Fatalf("Len/Cap = %d/%d, want 2/2", s.Len(), s.Cap())
	}
}

func TestStoreSwapRemoveKeepsIDsStable(t *testing.T) {
	s := NewStore[testComp]("test", 4)

	idA, a, _ := s.Create(NewEntityID(1, 0))
	idB, b, _ := s.Create(NewEntityID(2, 0))
	idC, c, _ := s.Create(NewEntityID(3, 0))
	a.Value, b.Value, c.Value = 1, 2, 3

	// Deleting the first slot moves the last component into the hole; ids
	// must keep resolving to their own data.
	if err := s.Delete(idA); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(idA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get deleted id = %v, want ErrNotFound", err)
	}
	gotB, err := s.Get(idB)
	if err != nil || gotB.Value != 2 {
		t.Fatalf("Get idB after swap = %v/%v, want 2", gotB, err)
	}
	gotC, err := s.Get(idC)
	if err != nil || gotC.Value != 3 {
		t.Fatalf("Get idC after swap = %v/%v, want 3", gotC, err)
	}
	owner, err := s.Owner(idC)
	if err != nil || owner != NewEntityID(3, 0) {
		t.Fatalf("Owner idC after swap = %d/%v", owner, err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestStoreDeleteTwice(t *testing.T) {
	s := NewStore[testComp]("test", 2)
	id, _, _ := s.Create(NewEntityID(1, 0))
	if err := s.Delete(id); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := s.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestStoreEachVisitsLiveOnly(t *testing.T) {
	s := NewStore[testComp]("test", 4)
	idA, _, _ := s.Create(NewEntityID(1, 0))
	s.Create(NewEntityID(2, 0))
	s.Create(NewEntityID(3, 0))
	s.Delete(idA)

	seen := map[EntityID]bool{}
	s.Each(func(_ CompID, owner EntityID, _ *testComp) {
		seen[owner] = true
	})
	if len(seen) != 2 {
		t.Fatalf("Each visited %d components, want 2", len(seen))
	}
	if seen[NewEntityID(1, 0)] {
		t.Fatal("Each visited a deleted component")
	}
}
