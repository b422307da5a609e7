package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/persist"
)

const repoTimeout = 5 * time.Second

func repoContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), repoTimeout)
}

// characterList renders the account's character names as the wire sub-list
// ("name;name;"). Repository failures degrade to an empty list.
func characterList(deps *Deps, accountID int32) string {
	ctx, cancel := repoContext()
	defer cancel()
	names, err := deps.Characters.ListNames(ctx, accountID)
	if err != nil {
		deps.Log.Error("list characters", zap.Int32("account", accountID), zap.Error(err))
		return ""
	}
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte(';')
	}
	return sb.String()
}

// skillList renders "skillId%name%value;" entries.
func skillList(skills []persist.SkillRow) string {
	var sb strings.Builder
	for _, s := range skills {
		sb.WriteString(strconv.FormatInt(int64(s.ID), 10))
		sb.WriteByte('%')
		sb.WriteString(s.Name)
		sb.WriteByte('%')
		sb.WriteString(strconv.FormatInt(int64(s.Value), 10))
		sb.WriteByte(';')
	}
	return sb.String()
}

// abilityList renders "abilityId%name%spriteId%toggled%targeted;" entries.
func abilityList(abilities []persist.AbilityRow) string {
	var sb strings.Builder
	for _, a := range abilities {
		sb.WriteString(strconv.FormatInt(int64(a.ID), 10))
		sb.WriteByte('%')
		sb.WriteString(a.Name)
		sb.WriteByte('%')
		sb.WriteString(strconv.FormatInt(int64(a.SpriteID), 10))
		sb.WriteByte('%')
		sb.WriteString(boolArg(a.Toggled))
		sb.WriteByte('%')
		sb.WriteString(boolArg(a.Targeted))
		sb.WriteByte(';')
	}
	return sb.String()
}

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func intArg(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func idArg(id ecs.EntityID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func floatArg(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
