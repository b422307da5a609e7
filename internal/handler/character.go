package handler

import (
	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

func handleCreateCharacter(d wire.Datagram, _ *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	name := normalizeCharacterName(d.Args[2])
	if name == "" {
		deps.Send.SendTo(d.Addr, wire.OpCreateCharacterUnsuccessful, serverError)
		return
	}

	ctx, cancel := repoContext()
	defer cancel()

	exists, err := deps.Characters.Exists(ctx, name)
	if err != nil {
		deps.Log.Error("check character", zap.String("character", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpCreateCharacterUnsuccessful, serverError)
		return
	}
	if exists {
		deps.Send.SendTo(d.Addr, wire.OpCreateCharacterUnsuccessful, characterAlreadyExists)
		return
	}
	if err := deps.Characters.Create(ctx, sess.AccountID, name); err != nil {
		deps.Log.Error("create character", zap.String("character", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpCreateCharacterUnsuccessful, serverError)
		return
	}
	deps.Send.SendTo(d.Addr, wire.OpCreateCharacterSuccessful, characterList(deps, sess.AccountID))
	deps.Log.Info("character created",
		zap.Int32("account", sess.AccountID),
		zap.String("character", name),
	)
}

func handleDeleteCharacter(d wire.Datagram, _ *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	name := normalizeCharacterName(d.Args[2])

	ctx, cancel := repoContext()
	defer cancel()

	row, err := deps.Characters.GetByName(ctx, name)
	if err != nil {
		deps.Log.Error("load character", zap.String("character", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, serverError, messageTypeError)
		return
	}
	// Ownership check: deleting someone else's character looks identical to
	// deleting a character that does not exist.
	if row == nil || row.AccountID != sess.AccountID {
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, characterNotFound, messageTypeError)
		return
	}
	if err := deps.Characters.Delete(ctx, name); err != nil {
		deps.Log.Error("delete character", zap.String("character", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, serverError, messageTypeError)
		return
	}
	deps.Send.SendTo(d.Addr, wire.OpDeleteCharacterSuccessful, characterList(deps, sess.AccountID))
	deps.Log.Info("character deleted",
		zap.Int32("account", sess.AccountID),
		zap.String("character", name),
	)
}

// handleEnterWorld binds a character to the session, gives the entity its
// stats and inventory, places it on its saved tile, and replies with the
// full loadout.
func handleEnterWorld(d wire.Datagram, obj *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	if sess.InWorld() {
		deps.Log.Warn("enter world while already in world, ignoring",
			zap.Int32("account", sess.AccountID))
		return
	}
	name := normalizeCharacterName(d.Args[2])

	ctx, cancel := repoContext()
	defer cancel()

	row, err := deps.Characters.GetByName(ctx, name)
	if err != nil {
		deps.Log.Error("load character", zap.String("character", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, serverError, messageTypeError)
		return
	}
	if row == nil || row.AccountID != sess.AccountID {
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, characterNotFound, messageTypeError)
		return
	}

	statsID, stats, err := deps.World.Stats.Create(obj.ID)
	if err != nil {
		deps.Log.Error("create stats component", zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, serverError, messageTypeError)
		return
	}
	invID, inv, err := deps.World.Inventories.Create(obj.ID)
	if err != nil {
		deps.Log.Error("create inventory component", zap.Error(err))
		_ = deps.World.Stats.Delete(statsID)
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, serverError, messageTypeError)
		return
	}
	obj.StatsID = statsID
	obj.InventoryID = invID

	*stats = component.Stats{
		Name:         row.Name,
		Agility:      10,
		Strength:     10,
		Wisdom:       10,
		Intelligence: 10,
		Charisma:     10,
		Luck:         10,
		Endurance:    10,
		Health:       100,
		MaxHealth:    100,
		Mana:         100,
		MaxMana:      100,
		Stamina:      100,
		MaxStamina:   100,
		Alive:        true,
	}
	*inv = component.NewInventory()

	deps.World.Place(obj, geom.Vec3{X: row.PosX, Y: row.PosY, Z: row.PosZ})
	obj.MovementVector = geom.Zero
	obj.IsMoving = false

	sess.CharacterID = row.ID
	sess.CharacterName = row.Name
	sess.ModelID = row.ModelID
	sess.TextureID = row.TextureID
	sess.UpdateCounter = 0

	skills, err := deps.Characters.ListSkills(ctx, row.ID)
	if err != nil {
		deps.Log.Error("list skills", zap.Int32("character", row.ID), zap.Error(err))
	}
	abilities, err := deps.Characters.ListAbilities(ctx, row.ID)
	if err != nil {
		deps.Log.Error("list abilities", zap.Int32("character", row.ID), zap.Error(err))
	}

	deps.Send.SendTo(d.Addr, wire.OpEnterWorldSuccessful,
		intArg(sess.AccountID),
		floatArg(obj.LocalPosition.X),
		floatArg(obj.LocalPosition.Y),
		floatArg(obj.LocalPosition.Z),
		intArg(row.ModelID),
		intArg(row.TextureID),
		skillList(skills),
		abilityList(abilities),
		row.Name,
	)
	deps.Log.Info("character entered world",
		zap.Int32("account", sess.AccountID),
		zap.String("character", row.Name),
		zap.Uint64("entity", uint64(obj.ID)),
	)
}
