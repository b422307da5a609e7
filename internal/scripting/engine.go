package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for ability effect scripts.
// Single-goroutine access only (the simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in the given
// directory. A missing directory is not an error; the server runs with no
// scripted abilities.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// AbilityContext is the pre-packed caster state handed to the Lua hook.
type AbilityContext struct {
	AbilityName     string
	CasterName      string
	CasterHealth    int32
	CasterMaxHealth int32
	CasterMana      int32
	CasterMaxMana   int32
	HasTarget       bool
	TargetHealth    int32
}

// AbilityResult is returned by the Lua on_activate_ability function.
type AbilityResult struct {
	OK           bool
	Message      string
	HealthDelta  int32 // applied to the caster
	ManaDelta    int32 // applied to the caster
	TargetDamage int32 // applied to the target, if any
}

// ActivateAbility calls the Lua on_activate_ability hook. When the hook is
// absent the ability succeeds with no effect, matching the original's empty
// native branches.
func (e *Engine) ActivateAbility(ctx AbilityContext) AbilityResult {
	fn := e.vm.GetGlobal("on_activate_ability")
	if fn == lua.LNil {
		return AbilityResult{OK: true}
	}

	tbl := e.vm.NewTable()
	tbl.RawSetString("ability", lua.LString(ctx.AbilityName))
	tbl.RawSetString("caster", lua.LString(ctx.CasterName))
	tbl.RawSetString("health", lua.LNumber(ctx.CasterHealth))
	tbl.RawSetString("max_health", lua.LNumber(ctx.CasterMaxHealth))
	tbl.RawSetString("mana", lua.LNumber(ctx.CasterMana))
	tbl.RawSetString("max_mana", lua.LNumber(ctx.CasterMaxMana))
	tbl.RawSetString("has_target", lua.LBool(ctx.HasTarget))
	tbl.RawSetString("target_health", lua.LNumber(ctx.TargetHealth))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, tbl); err != nil {
		e.log.Error("lua on_activate_ability", zap.Error(err))
		return AbilityResult{OK: true}
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	res, ok := ret.(*lua.LTable)
	if !ok {
		return AbilityResult{OK: true}
	}
	out := AbilityResult{OK: true}
	if v, ok := res.RawGetString("ok").(lua.LBool); ok {
		out.OK = bool(v)
	}
	if v, ok := res.RawGetString("message").(lua.LString); ok {
		out.Message = string(v)
	}
	if v, ok := res.RawGetString("health_delta").(lua.LNumber); ok {
		out.HealthDelta = int32(v)
	}
	if v, ok := res.RawGetString("mana_delta").(lua.LNumber); ok {
		out.ManaDelta = int32(v)
	}
	if v, ok := res.RawGetString("target_damage").(lua.LNumber); ok {
		out.TargetDamage = int32(v)
	}
	return out
}
