package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/core/ecs"
	core "github.com/wrengo/server/internal/core/system"
	"github.com/wrengo/server/internal/world"
)

// PositionSaver persists a character's last position during session
// teardown. Implemented by persist.CharacterRepo.
type PositionSaver interface {
	SavePosition(ctx context.Context, charID int32, x, y, z float64) error
}

// Timeout reaps sessions whose heartbeat has gone silent. Runs after
// movement so the position saved is this tick's final one.
type Timeout struct {
	World   *world.State
	Saver   PositionSaver
	Log     *zap.Logger
	Expiry  time.Duration
	saveCtx time.Duration
}

func NewTimeout(w *world.State, saver PositionSaver, expiry time.Duration, log *zap.Logger) *Timeout {
	return &Timeout{
		World:   w,
		Saver:   saver,
		Log:     log,
		Expiry:  expiry,
		saveCtx: 5 * time.Second,
	}
}

func (s *Timeout) Phase() core.Phase { return core.PhaseTimeout }

func (s *Timeout) Update(_ time.Duration) {
	now := s.World.Now()

	type expired struct {
		id     ecs.EntityID
		charID int32
		pos    [3]float64
	}
	var reap []expired
	s.World.Sessions.Each(func(_ ecs.CompID, owner ecs.EntityID, sess *component.PlayerSession) {
		if now.Sub(sess.LastHeartbeat) <= s.Expiry {
			return
		}
		e := expired{id: owner, charID: sess.CharacterID}
		if obj, err := s.World.Get(owner); err == nil {
			e.pos = [3]float64{obj.LocalPosition.X, obj.LocalPosition.Y, obj.LocalPosition.Z}
		}
		reap = append(reap, e)
	})

	for _, e := range reap {
		if e.charID != 0 && s.Saver != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.saveCtx)
			if err := s.Saver.SavePosition(ctx, e.charID, e.pos[0], e.pos[1], e.pos[2]); err != nil {
				s.Log.Error("save position on timeout",
					zap.Int32("character", e.charID), zap.Error(err))
			}
			cancel()
		}
		if err := s.World.DeleteGameObject(e.id); err != nil {
			s.Log.Warn("timeout teardown", zap.Uint64("entity", uint64(e.id)), zap.Error(err))
			continue
		}
		s.Log.Info("session timed out", zap.Uint64("entity", uint64(e.id)))
	}
}
