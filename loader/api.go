package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerBuilders(L)
	registerConditionHelpers(L)
}

// curried returns a global of the form Name "id" { ... }.
func curried(L *lua.LState, add func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.games = append(coll.games, rawEntry{table: tbl, file: coll.file})
		return 0
	}))

	// Actor "id" { name = "...", dialogues = {...}, ... }
	L.SetGlobal("Actor", curried(L, func(id string, tbl *lua.LTable) {
		coll.actors = append(coll.actors, rawEntry{id: id, table: tbl, file: coll.file})
	}))

	// Dialogue "id" { lines = {...}, choices = {...}, next = "..." }
	L.SetGlobal("Dialogue", curried(L, func(id string, tbl *lua.LTable) {
		coll.dialogues = append(coll.dialogues, rawEntry{id: id, table: tbl, file: coll.file})
	}))

	// Expression "id" { actor = "...", sprite = "...", ... }
	L.SetGlobal("Expression", curried(L, func(id string, tbl *lua.LTable) {
		coll.expressions = append(coll.expressions, rawEntry{id: id, table: tbl, file: coll.file})
	}))
}

// textTable accepts either "text" or { "text", key = value, ... } and
// returns a table with text in field "text".
func textTable(L *lua.LState) *lua.LTable {
	switch v := L.Get(1).(type) {
	case lua.LString:
		tbl := L.NewTable()
		tbl.RawSetString("text", v)
		return tbl
	case *lua.LTable:
		if s, ok := v.RawGetInt(1).(lua.LString); ok && getString(v, "text") == "" {
			v.RawSetString("text", s)
		}
		return v
	default:
		L.ArgError(1, "string or table expected")
		return nil
	}
}

func registerBuilders(L *lua.LState) {
	// Line "text" or Line { "text", duration = 2, effects = {...} }
	L.SetGlobal("Line", L.NewFunction(func(L *lua.LState) int {
		L.Push(textTable(L))
		return 1
	}))

	// Choice "text" or Choice { "text", next = "dialogue_id" }
	L.SetGlobal("Choice", L.NewFunction(func(L *lua.LState) int {
		L.Push(textTable(L))
		return 1
	}))

	// Effect { sound = "...", visual = "...", duration = 1, delay = 0.5 }
	L.SetGlobal("Effect", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))

	// Sound("clip", delay) and Visual("payload", duration, delay)
	L.SetGlobal("Sound", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("sound", lua.LString(L.CheckString(1)))
		tbl.RawSetString("delay", L.OptNumber(2, 0))
		L.Push(tbl)
		return 1
	}))
	L.SetGlobal("Visual", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("visual", lua.LString(L.CheckString(1)))
		tbl.RawSetString("duration", L.OptNumber(2, 0))
		tbl.RawSetString("delay", L.OptNumber(3, 0))
		L.Push(tbl)
		return 1
	}))
}

// conditionHelpers maps each Lua helper to the condition type it builds and
// the parameter key of its first argument.
var conditionHelpers = []struct {
	global, kind, key string
	value             lua.LValueType // type of the optional second argument
}{
	{"HasItem", "has_item", "item", lua.LTNil},
	{"FlagSet", "flag_set", "flag", lua.LTNil},
	{"FlagNot", "flag_not", "flag", lua.LTNil},
	{"FlagIs", "flag_is", "flag", lua.LTBool},
	{"CounterGt", "counter_gt", "counter", lua.LTNumber},
	{"CounterLt", "counter_lt", "counter", lua.LTNumber},
}

func registerConditionHelpers(L *lua.LState) {
	for _, h := range conditionHelpers {
		// HasItem("coin"), FlagIs("met", true), CounterGt("visits", 2), ...
		L.SetGlobal(h.global, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(h.kind))
			tbl.RawSetString(h.key, lua.LString(L.CheckString(1)))
			if h.value != lua.LTNil {
				L.CheckTypes(2, h.value)
				tbl.RawSetString("value", L.Get(2))
			}
			L.Push(tbl)
			return 1
		}))
	}

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", L.CheckTable(1))
		L.Push(tbl)
		return 1
	}))
}
