package handler

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

// normalizeAccountName canonicalizes an account name at the trust boundary:
// NFKC so visually identical names compare equal, lowercased for
// case-insensitive lookup.
func normalizeAccountName(name string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(name)))
}

// normalizeCharacterName keeps case but still canonicalizes the encoding.
func normalizeCharacterName(name string) string {
	return norm.NFKC.String(strings.TrimSpace(name))
}

// newToken mints the opaque session credential issued at login.
func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

// handleConnect processes a login attempt. On success the account gets a
// Player GameObject (no position yet — that comes with EnterWorld) and a
// PlayerSession carrying a fresh token.
func handleConnect(d wire.Datagram, _ *world.GameObject, _ *component.PlayerSession, deps *Deps) {
	name := normalizeAccountName(d.Args[0])
	password := d.Args[1]

	ctx, cancel := repoContext()
	defer cancel()

	account, err := deps.Accounts.GetByName(ctx, name)
	if err != nil {
		deps.Log.Error("load account", zap.String("account", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpLoginUnsuccessful, incorrectUsername)
		return
	}
	if account == nil {
		deps.Send.SendTo(d.Addr, wire.OpLoginUnsuccessful, incorrectUsername)
		return
	}
	if !deps.Accounts.ValidatePassword(account.PasswordHash, password) {
		deps.Send.SendTo(d.Addr, wire.OpLoginUnsuccessful, incorrectPassword)
		return
	}

	// A reconnect while the old session lingers replaces it. The lingering
	// character's position is persisted first, same as any other teardown.
	if old, oldSess, err := deps.World.SessionByAccount(account.ID); err == nil {
		if oldSess.InWorld() {
			pos := old.LocalPosition
			if err := deps.Characters.SavePosition(ctx, oldSess.CharacterID, pos.X, pos.Y, pos.Z); err != nil {
				deps.Log.Error("save position on session replace",
					zap.Int32("character", oldSess.CharacterID), zap.Error(err))
			}
		}
		deps.Log.Warn("replacing lingering session",
			zap.String("account", name),
			zap.Uint64("entity", uint64(old.ID)),
		)
		_ = deps.World.DeleteGameObject(old.ID)
	}

	obj := deps.World.CreateGameObject(world.KindPlayer, geom.Zero, 0, false)
	pid, sess, err := deps.World.Sessions.Create(obj.ID)
	if err != nil {
		deps.Log.Error("create session", zap.String("account", name), zap.Error(err))
		_ = deps.World.DeleteGameObject(obj.ID)
		deps.Send.SendTo(d.Addr, wire.OpLoginUnsuccessful, serverFull)
		return
	}
	obj.PlayerID = pid
	sess.AccountID = account.ID
	sess.Token = newToken()
	sess.Addr = d.Addr
	sess.LastHeartbeat = deps.World.Now()
	deps.World.RegisterSession(account.ID, obj.ID)

	deps.Send.SendTo(d.Addr, wire.OpLoginSuccessful,
		intArg(account.ID), sess.Token, characterList(deps, account.ID))
	deps.Log.Info("account logged in",
		zap.String("account", name),
		zap.String("from", d.Addr.String()),
	)
}

func handleDisconnect(_ wire.Datagram, obj *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	accountID := sess.AccountID
	if sess.InWorld() {
		ctx, cancel := repoContext()
		defer cancel()
		pos := obj.LocalPosition
		if err := deps.Characters.SavePosition(ctx, sess.CharacterID, pos.X, pos.Y, pos.Z); err != nil {
			deps.Log.Error("save position on disconnect",
				zap.Int32("character", sess.CharacterID), zap.Error(err))
		}
	}
	if err := deps.World.DeleteGameObject(obj.ID); err != nil {
		deps.Log.Warn("disconnect teardown", zap.Int32("account", accountID), zap.Error(err))
		return
	}
	deps.Log.Info("account disconnected", zap.Int32("account", accountID))
}

func handleCreateAccount(d wire.Datagram, _ *world.GameObject, _ *component.PlayerSession, deps *Deps) {
	name := normalizeAccountName(d.Args[0])
	password := d.Args[1]

	ctx, cancel := repoContext()
	defer cancel()

	existing, err := deps.Accounts.GetByName(ctx, name)
	if err != nil {
		deps.Log.Error("check account", zap.String("account", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpCreateAccountUnsuccessful, serverError)
		return
	}
	if existing != nil {
		deps.Send.SendTo(d.Addr, wire.OpCreateAccountUnsuccessful, accountAlreadyExists)
		return
	}
	if _, err := deps.Accounts.Create(ctx, name, password); err != nil {
		deps.Log.Error("create account", zap.String("account", name), zap.Error(err))
		deps.Send.SendTo(d.Addr, wire.OpCreateAccountUnsuccessful, serverError)
		return
	}
	deps.Send.SendTo(d.Addr, wire.OpCreateAccountSuccessful)
	deps.Log.Info("account created", zap.String("account", name))
}
