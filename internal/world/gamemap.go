package world

import (
	"math"

	"github.com/wrengo/server/internal/geom"
)

// GameMap is the tile-occupancy index: one boolean per tile over a fixed
// width×height grid. It is the single source of truth for "can an entity
// move here". Callers check bounds and occupancy, then set occupancy, as one
// logical operation per move decision — the simulation is single-threaded,
// so the check-then-set pair cannot be interleaved.
type GameMap struct {
	width    int
	height   int
	tileSize float64
	occupied []bool
}

func NewGameMap(width, height int, tileSize float64) *GameMap {
	return &GameMap{
		width:    width,
		height:   height,
		tileSize: tileSize,
		occupied: make([]bool, width*height),
	}
}

func (m *GameMap) TileSize() float64 { return m.tileSize }

// tileIndex maps a world position to its tile slot. ok is false when the
// position falls outside the grid.
func (m *GameMap) tileIndex(pos geom.Vec3) (int, bool) {
	col := int(math.Floor(pos.X / m.tileSize))
	row := int(math.Floor(pos.Z / m.tileSize))
	if col < 0 || col >= m.width || row < 0 || row >= m.height {
		return 0, false
	}
	return row*m.width + col, true
}

// OutOfBounds reports whether a position falls outside the grid.
func (m *GameMap) OutOfBounds(pos geom.Vec3) bool {
	_, ok := m.tileIndex(pos)
	return !ok
}

// IsTileOccupied reports whether the tile under pos is claimed.
// Out-of-bounds positions report unoccupied; callers consult OutOfBounds
// before committing a move.
func (m *GameMap) IsTileOccupied(pos geom.Vec3) bool {
	idx, ok := m.tileIndex(pos)
	if !ok {
		return false
	}
	return m.occupied[idx]
}

// SetTileOccupied claims or releases the tile under pos. Out-of-bounds
// mutations are rejected.
func (m *GameMap) SetTileOccupied(pos geom.Vec3, occupied bool) {
	idx, ok := m.tileIndex(pos)
	if !ok {
		return
	}
	m.occupied[idx] = occupied
}
