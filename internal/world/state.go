package world

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/core/event"
	"github.com/wrengo/server/internal/geom"
)

// ErrNotFound is returned when a game object id is absent or stale.
var ErrNotFound = errors.New("game object not found")

// Params are the fixed simulation constants. Defaults mirror the original
// client/server pair; player and NPC movement must integrate identically or
// reconciliation drifts.
type Params struct {
	MapWidth  int
	MapHeight int
	TileSize  float64

	MoveSpeed   float64 // world units per second, players and NPCs alike
	WeaponSpeed float64 // seconds between melee swings
	DamageMin   int32
	DamageMax   int32
	WanderOneIn int // 1-in-N chance per tick that an idle NPC wanders

	MaxEntities int // fixed capacity of every component store
}

func DefaultParams() Params {
	return Params{
		MapWidth:    100,
		MapHeight:   100,
		TileSize:    30.0,
		MoveSpeed:   80.0,
		WeaponSpeed: 5.0,
		DamageMin:   1,
		DamageMax:   3,
		WanderOneIn: 100,
		MaxEntities: 1024,
	}
}

// State is the simulation context: the entity table, the four component
// stores, the occupancy grid, the event bus, and the RNG. One goroutine owns
// it — the tick loop — and packet handlers run on that same goroutine, so
// mutation is serialized by construction. No locks.
type State struct {
	Params Params

	Stats       *ecs.Store[component.Stats]
	Inventories *ecs.Store[component.Inventory]
	AIs         *ecs.Store[component.AI]
	Sessions    *ecs.Store[component.PlayerSession]

	Map  *GameMap
	Bus  *event.Bus
	Rand *rand.Rand
	Now  func() time.Time

	pool      *ecs.EntityPool
	objects   map[ecs.EntityID]*GameObject
	byAccount map[int32]ecs.EntityID

	log *zap.Logger
}

func NewState(params Params, rng *rand.Rand, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		Params:      params,
		Stats:       ecs.NewStore[component.Stats]("stats", params.MaxEntities),
		Inventories: ecs.NewStore[component.Inventory]("inventory", params.MaxEntities),
		AIs:         ecs.NewStore[component.AI]("ai", params.MaxEntities),
		Sessions:    ecs.NewStore[component.PlayerSession]("session", params.MaxEntities),
		Map:         NewGameMap(params.MapWidth, params.MapHeight, params.TileSize),
		Bus:         event.NewBus(),
		Rand:        rng,
		Now:         time.Now,
		pool:        ecs.NewEntityPool(),
		objects:     make(map[ecs.EntityID]*GameObject, 256),
		byAccount:   make(map[int32]ecs.EntityID, 64),
		log:         log,
	}
}

// CreateGameObject allocates an entity id and registers the object. It does
// not claim a tile; callers mark occupancy once the object has a real
// position (players get one at EnterWorld, not at login).
func (s *State) CreateGameObject(kind Kind, pos geom.Vec3, staticID int32, isStatic bool) *GameObject {
	obj := &GameObject{
		ID:            s.pool.Create(),
		Kind:          kind,
		LocalPosition: pos,
		IsStatic:      isStatic,
		StaticID:      staticID,
		StatsID:       ecs.NoComp,
		InventoryID:   ecs.NoComp,
		AIID:          ecs.NoComp,
		PlayerID:      ecs.NoComp,
	}
	s.objects[obj.ID] = obj
	return obj
}

// Get resolves a live game object id.
func (s *State) Get(id ecs.EntityID) (*GameObject, error) {
	obj, ok := s.objects[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	return obj, nil
}

// Alive reports whether the id refers to a live object.
func (s *State) Alive(id ecs.EntityID) bool {
	_, ok := s.objects[id]
	return ok
}

// Len returns the number of live game objects.
func (s *State) Len() int {
	return len(s.objects)
}

// Each visits every live game object. Deleting the visited object inside fn
// is allowed; deleting others is not.
func (s *State) Each(fn func(*GameObject)) {
	for _, obj := range s.objects {
		fn(obj)
	}
}

// DeleteGameObject tears an entity down: every referenced component is
// released, the occupied tile is cleared, dangling combat targets pointing
// at the entity are reset in the same synchronous step (AI running later in
// this tick must not observe them), and EntityRemoved is published for the
// client broadcast. Deleting an already-deleted id reports ErrNotFound and
// corrupts nothing.
func (s *State) DeleteGameObject(id ecs.EntityID) error {
	obj, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}

	if obj.StatsID != ecs.NoComp {
		if err := s.Stats.Delete(obj.StatsID); err != nil {
			s.log.Warn("release stats component", zap.Error(err))
		}
	}
	if obj.InventoryID != ecs.NoComp {
		if err := s.Inventories.Delete(obj.InventoryID); err != nil {
			s.log.Warn("release inventory component", zap.Error(err))
		}
	}
	if obj.AIID != ecs.NoComp {
		if err := s.AIs.Delete(obj.AIID); err != nil {
			s.log.Warn("release ai component", zap.Error(err))
		}
	}
	if obj.PlayerID != ecs.NoComp {
		if sess, err := s.Sessions.Get(obj.PlayerID); err == nil {
			delete(s.byAccount, sess.AccountID)
		}
		if err := s.Sessions.Delete(obj.PlayerID); err != nil {
			s.log.Warn("release session component", zap.Error(err))
		}
	}

	// Occupancy lives at the destination while a move is in flight. Objects
	// that never claimed a tile (a session still in the lobby) have nothing
	// to release.
	if obj.Placed {
		if obj.IsMoving {
			s.Map.SetTileOccupied(obj.Destination, false)
		} else {
			s.Map.SetTileOccupied(obj.LocalPosition, false)
		}
	}

	s.AIs.Each(func(_ ecs.CompID, _ ecs.EntityID, ai *component.AI) {
		if ai.TargetID == id {
			ai.TargetID = 0
		}
	})
	s.Sessions.Each(func(_ ecs.CompID, _ ecs.EntityID, sess *component.PlayerSession) {
		if sess.TargetID == id {
			sess.TargetID = 0
			sess.AutoAttackOn = false
		}
	})

	delete(s.objects, id)
	s.pool.Destroy(id)
	event.Emit(s.Bus, event.EntityRemoved{ID: id})
	return nil
}

// Place puts an object on the grid: position set, tile claimed. The one way
// an object starts occupying; DeleteGameObject only releases tiles claimed
// here (or moved onto via TryStartMove).
func (s *State) Place(obj *GameObject, pos geom.Vec3) {
	obj.LocalPosition = pos
	obj.Placed = true
	s.Map.SetTileOccupied(pos, true)
}

// TryStartMove commits a single-tile move decision: the destination must be
// in bounds and unoccupied, and the old tile is released as the new one is
// claimed — one atomic decision, no intermediate state visible within the
// tick.
func (s *State) TryStartMove(obj *GameObject, dir geom.Vec3) bool {
	if dir.IsZero() || obj.IsMoving {
		return false
	}
	dest := obj.LocalPosition.Add(dir.Scale(s.Params.TileSize))
	if s.Map.OutOfBounds(dest) || s.Map.IsTileOccupied(dest) {
		return false
	}
	s.Map.SetTileOccupied(obj.LocalPosition, false)
	s.Map.SetTileOccupied(dest, true)
	obj.MovementVector = dir
	obj.Destination = dest
	obj.IsMoving = true
	return true
}

// RegisterSession indexes a logged-in account's entity for packet dispatch.
func (s *State) RegisterSession(accountID int32, id ecs.EntityID) {
	s.byAccount[accountID] = id
}

// SessionByAccount resolves an account id to its entity and session
// component.
func (s *State) SessionByAccount(accountID int32) (*GameObject, *component.PlayerSession, error) {
	id, ok := s.byAccount[accountID]
	if !ok {
		return nil, nil, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	obj, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.Sessions.Get(obj.PlayerID)
	if err != nil {
		return nil, nil, err
	}
	return obj, sess, nil
}

// StatsOf resolves an object's stats component, if it has one.
func (s *State) StatsOf(obj *GameObject) (*component.Stats, error) {
	if obj.StatsID == ecs.NoComp {
		return nil, fmt.Errorf("entity %d has no stats: %w", obj.ID, ecs.ErrNotFound)
	}
	return s.Stats.Get(obj.StatsID)
}
