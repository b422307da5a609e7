package world

import (
	"testing"

	"github.com/wrengo/server/internal/geom"
)

func TestGameMapQuantizesToTiles(t *testing.T) {
	m := NewGameMap(10, 10, 30.0)

	m.SetTileOccupied(geom.Vec3{X: 35, Z: 35}, true)

	// Any position inside the same 30-unit tile sees the claim.
	if !m.IsTileOccupied(geom.Vec3{X: 30, Z: 30}) {
		t.Fatal("tile corner not occupied")
	}
	if !m.IsTileOccupied(geom.Vec3{X: 59.9, Z: 59.9}) {
		t.Fatal("far edge of the tile not occupied")
	}
	// The next tile over is untouched.
	if m.IsTileOccupied(geom.Vec3{X: 60, Z: 30}) {
		t.Fatal("neighbor tile occupied")
	}
}

func TestGameMapBounds(t *testing.T) {
	m := NewGameMap(10, 10, 30.0)

	cases := []struct {
		name string
		pos  geom.Vec3
		out  bool
	}{
		{"origin", geom.Vec3{}, false},
		{"last tile", geom.Vec3{X: 299.9, Z: 299.9}, false},
		{"past east edge", geom.Vec3{X: 300, Z: 150}, true},
		{"negative", geom.Vec3{X: -0.1, Z: 150}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.OutOfBounds(tc.pos); got != tc.out {
				t.Fatalf("OutOfBounds(%v) = %v, want %v", tc.pos, got, tc.out)
			}
		})
	}
}

func TestGameMapIgnoresOutOfBoundsMutation(t *testing.T) {
	m := NewGameMap(10, 10, 30.0)
	m.SetTileOccupied(geom.Vec3{X: -30, Z: -30}, true) // must not panic
	if m.IsTileOccupied(geom.Vec3{X: -30, Z: -30}) {
		t.Fatal("out-of-bounds tile reports occupied")
	}
}
