package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/parley/engine/state"
)

// MetaHelp lists the world meta-commands handled by Meta.
var MetaHelp = []string{
	"  /flag <name> [true|false]  Set a flag (default true)",
	"  /counter <name> [n]        Set a counter, or show it",
	"  /give <item>               Put an item in the world inventory",
	"  /take <item>               Remove an item",
	"  /clear <actor>             Forget an actor's cached conditions",
	"  /state                     Dump flags, counters, items and the session",
}

// Meta handles world meta-commands. It reports false for commands it does
// not know, leaving them to the front end.
func (e *Engine) Meta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}
	args := parts[1:]

	switch parts[0] {
	case "/flag":
		if len(args) == 0 {
			return []string{"Usage: /flag <name> [true|false]"}, true
		}
		value := true
		if len(args) > 1 {
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return []string{fmt.Sprintf("Not a boolean: %s", args[1])}, true
			}
			value = v
		}
		state.SetFlag(e.World, args[0], value)
		return []string{fmt.Sprintf("Flag %s = %v.", args[0], value)}, true

	case "/counter":
		if len(args) == 0 {
			return []string{"Usage: /counter <name> [n]"}, true
		}
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return []string{fmt.Sprintf("Not a number: %s", args[1])}, true
			}
			state.SetCounter(e.World, args[0], n)
		}
		return []string{fmt.Sprintf("Counter %s = %d.", args[0], state.GetCounter(e.World, args[0]))}, true

	case "/give":
		if len(args) == 0 {
			return []string{"Usage: /give <item>"}, true
		}
		state.GiveItem(e.World, args[0])
		return []string{fmt.Sprintf("You now have %s.", args[0])}, true

	case "/take":
		if len(args) == 0 {
			return []string{"Usage: /take <item>"}, true
		}
		if !state.RemoveItem(e.World, args[0]) {
			return []string{fmt.Sprintf("You don't have %s.", args[0])}, true
		}
		return []string{fmt.Sprintf("%s is gone.", args[0])}, true

	case "/clear":
		if len(args) == 0 {
			return []string{"Usage: /clear <actor>"}, true
		}
		a, ok := e.Actors[args[0]]
		if !ok {
			return []string{fmt.Sprintf("No actor %q.", args[0])}, true
		}
		a.ClearConditionCache()
		return []string{fmt.Sprintf("Cleared cached conditions of %s.", a.Name())}, true

	case "/state":
		return e.stateDump(), true
	}
	return nil, false
}

func (e *Engine) stateDump() []string {
	out := []string{fmt.Sprintf("Dialogue: %s", e.Manager.State())}
	if s, ok := e.Manager.Session(); ok {
		out = append(out, fmt.Sprintf("Session: %s actor=%s dialogue=%s line=%d",
			s.ID, s.ActorID, s.Dialogue.ID, s.LineIndex))
	}
	if e.clock != nil {
		out = append(out, fmt.Sprintf("Clock: %s (%d pending)", e.clock.Now(), e.clock.Pending()))
	}
	if len(e.World.Flags) > 0 {
		out = append(out, fmt.Sprintf("Flags: %v", e.World.Flags))
	}
	if len(e.World.Counters) > 0 {
		out = append(out, fmt.Sprintf("Counters: %v", e.World.Counters))
	}
	out = append(out, fmt.Sprintf("Items: %v", e.World.Items))

	ids := make([]string, 0, len(e.Actors))
	for id := range e.Actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := e.Actors[id]
		out = append(out, fmt.Sprintf("Actor %s: ready=%v cached=%d", id, a.IsReady(), a.CachedConditions()))
	}
	return out
}
