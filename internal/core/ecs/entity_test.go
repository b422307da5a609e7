package ecs

import "testing"

func TestEntityPoolCreateDestroy(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	b := p.Create()
	if a == b {
		t.Fatalf("distinct creates returned the same id %d", a)
	}
	if !p.Alive(a) || !p.Alive(b) {
		t.Fatal("freshly created ids must be alive")
	}
	if got := p.Live(); got != 2 {
		t.Fatalf("Live() = %d, want 2", got)
	}

	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed id still alive")
	}
	if got := p.Live(); got != 1 {
		t.Fatalf("Live() = %d, want 1", got)
	}
}

func TestEntityPoolGenerationGuardsReuse(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	p.Destroy(a)

	// The index comes back from the free list with a bumped generation.
	c := p.Create()
	if c.Index() != a.Index() {
		t.Fatalf("expected index reuse, got %d want %d", c.Index(), a.Index())
	}
	if c.Generation() == a.Generation() {
		t.Fatal("reused index must carry a new generation")
	}
	if p.Alive(a) {
		t.Fatal("stale id aliases the reused slot")
	}
	if !p.Alive(c) {
		t.Fatal("new id must be alive")
	}
}

func TestEntityPoolDestroyStaleIsNoop(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	p.Destroy(a)
	b := p.Create()

	// Destroying the stale id again must not kill the new occupant.
	p.Destroy(a)
	if !p.Alive(b) {
		t.Fatal("double destroy of a stale id killed the reused slot")
	}
	if got := p.Live(); got != 1 {
		t.Fatalf("Live() = %d, want 1", got)
	}
}

func TestEntityPoolNeverIssuesZeroID(t *testing.T) {
	p := NewEntityPool()

	// EntityID(0) is the no-target sentinel; the very first allocation
	// (index 0) must still produce a distinguishable id.
	id := p.Create()
	if id.IsZero() {
		t.Fatal("first created entity carries the zero id")
	}
	if id.Index() != 0 {
		t.Fatalf("first index = %d, want 0", id.Index())
	}
	if !p.Alive(id) {
		t.Fatal("first created entity not alive")
	}
}

func TestEntityIDPacking(t *testing.T) {
	id := NewEntityID(7, 3)
	if id.Index() != 7 || id.Generation() != 3 {
		t.Fatalf("roundtrip got index=%d gen=%d", id.Index(), id.Generation())
	}
	if id.IsZero() {
		t.Fatal("non-zero id reports zero")
	}
	var zero EntityID
	if !zero.IsZero() {
		t.Fatal("zero id must report zero")
	}
}
