package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/config"
	"github.com/wrengo/server/internal/core/ecs"
	coresys "github.com/wrengo/server/internal/core/system"
	"github.com/wrengo/server/internal/data"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/handler"
	"github.com/wrengo/server/internal/logging"
	"github.com/wrengo/server/internal/persist"
	"github.com/wrengo/server/internal/scripting"
	gamesys "github.com/wrengo/server/internal/system"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wrend:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to server config (TOML); built-in defaults when empty")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("WREND_CONFIG")
	}

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Defaults()
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return err
	}

	accounts := persist.NewAccountRepo(db)
	characters := persist.NewCharacterRepo(db)
	abilities, err := characters.ListAllAbilities(ctx)
	if err != nil {
		return fmt.Errorf("load ability table: %w", err)
	}

	seed := cfg.Simulation.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	state := world.NewState(paramsFromConfig(cfg.Simulation), rng, log)
	if err := populateWorld(state, cfg, log); err != nil {
		return err
	}

	scripts, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer scripts.Close()

	conn, err := wire.NewConn(cfg.Network.BindAddress, cfg.Server.ChecksumSecret, cfg.Network.InQueueSize, log)
	if err != nil {
		return err
	}
	defer conn.Close()
	go conn.ReadLoop()

	dispatcher := handler.NewDispatcher(&handler.Deps{
		Accounts:   accounts,
		Characters: characters,
		Send:       conn,
		World:      state,
		Cfg:        cfg,
		Log:        log,
		Scripts:    scripts,
		Abilities:  abilities,
	})

	runner := coresys.NewRunner()
	runner.Register(gamesys.NewNpcAI(state, log))
	runner.Register(gamesys.NewCombat(state, log))
	runner.Register(gamesys.NewMovement(state))
	runner.Register(gamesys.NewTimeout(state, characters, cfg.Simulation.HeartbeatTimeout.Std(), log))
	runner.Register(gamesys.NewBroadcast(state, conn, log))

	log.Info("server up",
		zap.String("name", cfg.Server.Name),
		zap.String("addr", conn.LocalAddr().String()),
		zap.Duration("tick", cfg.Simulation.TickRate.Std()),
		zap.Int64("seed", seed),
	)

	loop(ctx, cfg, state, conn, dispatcher, runner)

	saveAllPositions(state, characters, log)
	log.Info("server down")
	return nil
}

// loop is the simulation heart: one goroutine owning all world state. Elapsed
// time feeds an accumulator and the simulation always steps by the fixed tick
// period, so a stalled host produces extra catch-up steps instead of one huge
// dt. Each step drains a bounded slice of the inbound queue into the handlers
// first, then runs every system in phase order.
func loop(ctx context.Context, cfg *config.Config, state *world.State, conn *wire.Conn, dispatcher *handler.Dispatcher, runner *coresys.Runner) {
	tick := cfg.Simulation.TickRate.Std()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var acc time.Duration
	last := state.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := state.Now()
			acc += now.Sub(last)
			last = now

			for acc >= tick {
				acc -= tick

			drain:
				for i := 0; i < cfg.Network.MaxPacketsPerTick; i++ {
					select {
					case dg := <-conn.Inbound():
						dispatcher.Dispatch(dg)
					default:
						break drain
					}
				}

				runner.Tick(tick)
			}
		}
	}
}

func paramsFromConfig(sim config.SimulationConfig) world.Params {
	return world.Params{
		MapWidth:    sim.MapWidth,
		MapHeight:   sim.MapHeight,
		TileSize:    sim.TileSize,
		MoveSpeed:   sim.MoveSpeed,
		WeaponSpeed: sim.WeaponSpeed,
		DamageMin:   sim.DamageMin,
		DamageMax:   sim.DamageMax,
		WanderOneIn: sim.WanderOneIn,
		MaxEntities: sim.MaxEntities,
	}
}

// populateWorld places the boot-time scenery and NPC spawns. Missing data
// files leave an empty world, which is fine for development.
func populateWorld(state *world.State, cfg *config.Config, log *zap.Logger) error {
	statics, err := data.LoadStaticObjects(cfg.Data.StaticObjects)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.Warn("no static object table", zap.String("path", cfg.Data.StaticObjects))
	}
	for _, entry := range statics {
		pos := geom.Vec3{X: entry.X, Y: entry.Y, Z: entry.Z}
		obj := state.CreateGameObject(world.KindStaticObject, pos, entry.ID, true)
		state.Place(obj, pos)
		log.Debug("placed static object",
			zap.Uint64("entity", uint64(obj.ID)),
			zap.String("name", entry.Name),
		)
	}

	spawns, err := data.LoadNpcSpawns(cfg.Data.NpcSpawns)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.Warn("no npc spawn table", zap.String("path", cfg.Data.NpcSpawns))
	}
	for _, entry := range spawns {
		if err := spawnNpc(state, entry); err != nil {
			return fmt.Errorf("spawn npc %q: %w", entry.Name, err)
		}
	}

	log.Info("world populated",
		zap.Int("statics", len(statics)),
		zap.Int("npcs", len(spawns)),
	)
	return nil
}

func spawnNpc(state *world.State, entry data.NpcSpawnEntry) error {
	pos := geom.Vec3{X: entry.X, Y: entry.Y, Z: entry.Z}
	obj := state.CreateGameObject(world.KindNpc, pos, entry.NpcID, false)

	statsID, stats, err := state.Stats.Create(obj.ID)
	if err != nil {
		return err
	}
	invID, inv, err := state.Inventories.Create(obj.ID)
	if err != nil {
		return err
	}
	aiID, _, err := state.AIs.Create(obj.ID)
	if err != nil {
		return err
	}
	obj.StatsID = statsID
	obj.InventoryID = invID
	obj.AIID = aiID

	*stats = component.Stats{
		Name:         entry.Name,
		Agility:      orDefault(entry.Agility, 10),
		Strength:     orDefault(entry.Strength, 10),
		Wisdom:       orDefault(entry.Wisdom, 10),
		Intelligence: orDefault(entry.Intelligence, 10),
		Charisma:     orDefault(entry.Charisma, 10),
		Luck:         orDefault(entry.Luck, 10),
		Endurance:    orDefault(entry.Endurance, 10),
		Health:       orDefault(entry.Health, 30),
		MaxHealth:    orDefault(entry.Health, 30),
		Mana:         orDefault(entry.Mana, 10),
		MaxMana:      orDefault(entry.Mana, 10),
		Stamina:      orDefault(entry.Stamina, 10),
		MaxStamina:   orDefault(entry.Stamina, 10),
		Alive:        true,
	}
	*inv = component.NewInventory()

	state.Place(obj, pos)
	return nil
}

func orDefault(v, def int32) int32 {
	if v == 0 {
		return def
	}
	return v
}

// saveAllPositions persists every in-world character before shutdown.
func saveAllPositions(state *world.State, characters *persist.CharacterRepo, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state.Sessions.Each(func(_ ecs.CompID, owner ecs.EntityID, sess *component.PlayerSession) {
		if !sess.InWorld() {
			return
		}
		obj, err := state.Get(owner)
		if err != nil {
			return
		}
		pos := obj.LocalPosition
		if err := characters.SavePosition(ctx, sess.CharacterID, pos.X, pos.Y, pos.Z); err != nil {
			log.Error("save position on shutdown",
				zap.Int32("character", sess.CharacterID), zap.Error(err))
		}
	})
}
