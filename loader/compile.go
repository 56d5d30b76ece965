// Package loader loads authored dialogue content (sandboxed Lua or YAML)
// into an immutable dialogue graph. The Lua VM is discarded after loading.
package loader

import (
	"fmt"
	"sort"
	"time"

	"github.com/nathoo/parley/engine/actor"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/types"
	lua "github.com/yuin/gopher-lua"
)

// rawEntry holds a curried constructor's table before compilation.
type rawEntry struct {
	id    string
	table *lua.LTable
	file  string
}

// builder gathers compiled definitions from every source file and records
// duplicate ids.
type builder struct {
	g      *graph.Graph
	games  []string
	errors []string
}

func newBuilder() *builder {
	return &builder{g: graph.New()}
}

func (b *builder) setGame(gd types.GameDef, file string) {
	b.games = append(b.games, file)
	if len(b.games) > 1 {
		b.errors = append(b.errors, fmt.Sprintf("Game defined more than once (%s)", file))
		return
	}
	b.g.Game = gd
}

func (b *builder) addActor(a *types.ActorDef, file string) {
	if _, ok := b.g.Actors[a.ID]; ok {
		b.errors = append(b.errors, fmt.Sprintf("duplicate actor ID %q (%s)", a.ID, file))
		return
	}
	b.g.Actors[a.ID] = a
}

func (b *builder) addDialogue(d *types.Dialogue, file string) {
	if _, ok := b.g.Dialogues[d.ID]; ok {
		b.errors = append(b.errors, fmt.Sprintf("duplicate dialogue ID %q (%s)", d.ID, file))
		return
	}
	b.g.Dialogues[d.ID] = d
}

func (b *builder) addExpression(e *types.Expression, file string) {
	if _, ok := b.g.Expressions[e.ID]; ok {
		b.errors = append(b.errors, fmt.Sprintf("duplicate expression ID %q (%s)", e.ID, file))
		return
	}
	b.g.Expressions[e.ID] = e
}

// seconds converts authored seconds to a Duration.
func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// arrayValues returns the array part of a table in index order.
func arrayValues(tbl *lua.LTable) []lua.LValue {
	if tbl == nil {
		return nil
	}
	n := tbl.MaxN()
	out := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, tbl.RawGetInt(i))
	}
	return out
}

// stringList returns the string entries of a table's array part.
func stringList(tbl *lua.LTable) []string {
	var out []string
	for _, v := range arrayValues(tbl) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		// Otherwise treat as map.
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into the builder.
func compile(coll *collector, b *builder) {
	for _, raw := range coll.games {
		b.setGame(compileGame(raw.table), raw.file)
	}
	for _, raw := range coll.actors {
		b.addActor(compileActor(raw), raw.file)
	}
	for _, raw := range coll.dialogues {
		b.addDialogue(compileDialogue(raw), raw.file)
	}
	for _, raw := range coll.expressions {
		b.addExpression(compileExpression(raw), raw.file)
	}
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:     getString(tbl, "title"),
		Author:    getString(tbl, "author"),
		Version:   getString(tbl, "version"),
		Intro:     getString(tbl, "intro"),
		PlayerTag: getString(tbl, "player_tag"),
	}
}

func compileActor(raw rawEntry) *types.ActorDef {
	tbl := raw.table
	tag := getString(tbl, "trigger_tag")
	if tag == "" {
		tag = actor.DefaultTriggerTag
	}
	return &types.ActorDef{
		ID:         raw.id,
		TriggerTag: tag,
		UseTrigger: getBool(tbl, "use_trigger", true),
		Profile: types.ActorProfile{
			Name:                  getString(tbl, "name"),
			Description:           getString(tbl, "description"),
			Portrait:              getString(tbl, "portrait"),
			Dialogues:             stringList(getTable(tbl, "dialogues")),
			InteractionConditions: compileConditions(getTable(tbl, "conditions")),
			UseInteractionCache:   getBool(tbl, "use_cache", true),
		},
	}
}

func compileDialogue(raw rawEntry) *types.Dialogue {
	tbl := raw.table
	d := &types.Dialogue{
		ID:         raw.id,
		Next:       getString(tbl, "next"),
		Conditions: compileConditions(getTable(tbl, "conditions")),
	}
	for _, v := range arrayValues(getTable(tbl, "lines")) {
		switch lv := v.(type) {
		case lua.LString:
			d.Lines = append(d.Lines, types.Line{Text: string(lv), DisplayDuration: -1})
		case *lua.LTable:
			d.Lines = append(d.Lines, compileLine(lv))
		}
	}
	for _, v := range arrayValues(getTable(tbl, "choices")) {
		switch cv := v.(type) {
		case lua.LString:
			d.Choices = append(d.Choices, types.Choice{Text: string(cv)})
		case *lua.LTable:
			text := getString(cv, "text")
			if s, ok := cv.RawGetInt(1).(lua.LString); ok && text == "" {
				text = string(s)
			}
			d.Choices = append(d.Choices, types.Choice{Text: text, Next: getString(cv, "next")})
		}
	}
	return d
}

func compileLine(tbl *lua.LTable) types.Line {
	text := getString(tbl, "text")
	if s, ok := tbl.RawGetInt(1).(lua.LString); ok && text == "" {
		text = string(s)
	}
	line := types.Line{
		Text:            text,
		Audio:           getString(tbl, "audio"),
		Expression:      getString(tbl, "expression"),
		DisplayDuration: seconds(getNumber(tbl, "duration", -1)),
	}
	for _, v := range arrayValues(getTable(tbl, "effects")) {
		if et, ok := v.(*lua.LTable); ok {
			line.Effects = append(line.Effects, types.Effect{
				Sound:    getString(et, "sound"),
				Visual:   getString(et, "visual"),
				Duration: seconds(getNumber(et, "duration", 0)),
				Delay:    seconds(getNumber(et, "delay", 0)),
			})
		}
	}
	return line
}

func compileExpression(raw rawEntry) *types.Expression {
	tbl := raw.table
	return &types.Expression{
		ID:                 raw.id,
		ActorID:            getString(tbl, "actor"),
		Sprite:             getString(tbl, "sprite"),
		Animation:          getString(tbl, "animation"),
		Duration:           seconds(getNumber(tbl, "duration", 0)),
		TransitionDuration: seconds(getNumber(tbl, "transition", 0)),
	}
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, v := range arrayValues(tbl) {
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})

	return types.Condition{
		Type:   condType,
		Params: params,
	}
}

// sortedLuaFiles returns .lua files with game.lua first and the rest sorted
// alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
