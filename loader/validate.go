package loader

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nathoo/parley/engine/conditions"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the built graph for referential integrity. Warnings are
// logged; a *ValidationError is returned when any error was found.
func validate(b *builder, logger *log.Logger) error {
	ve := &ValidationError{}
	ve.Errors = append(ve.Errors, b.errors...)
	check(b.g, ve)

	for _, w := range ve.Warnings {
		logger.Printf("[loader] warning: %s", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// check walks the graph in id order so messages are stable.
func check(g *graph.Graph, ve *ValidationError) {
	if g.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}

	referenced := map[string]bool{}

	for _, id := range sortedKeys(g.Actors) {
		a := g.Actors[id]
		if len(a.Profile.Dialogues) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"actor %q owns no dialogues", id))
		}
		for _, did := range a.Profile.Dialogues {
			referenced[did] = true
			if _, ok := g.Dialogues[did]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"actor %q owns undefined dialogue %q", id, did))
			}
		}
		checkConditions(a.Profile.InteractionConditions, fmt.Sprintf("actor %q", id), ve)
	}

	for _, id := range sortedKeys(g.Dialogues) {
		d := g.Dialogues[id]
		where := fmt.Sprintf("dialogue %q", id)

		if len(d.Lines) == 0 {
			ve.Warnings = append(ve.Warnings, where+" has no lines")
		}
		if d.Next != "" {
			referenced[d.Next] = true
			if _, ok := g.Dialogues[d.Next]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s next points to undefined dialogue %q", where, d.Next))
			}
		}
		for i, c := range d.Choices {
			if c.Next == "" {
				continue
			}
			referenced[c.Next] = true
			if _, ok := g.Dialogues[c.Next]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s choice %d points to undefined dialogue %q", where, i+1, c.Next))
			}
		}
		for i, line := range d.Lines {
			if line.Expression != "" {
				if _, ok := g.Expressions[line.Expression]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"%s line %d uses undefined expression %q", where, i+1, line.Expression))
				}
			}
			for _, eff := range line.Effects {
				if eff.Delay < 0 {
					ve.Warnings = append(ve.Warnings, fmt.Sprintf(
						"%s line %d has a negative effect delay; it will fire immediately", where, i+1))
				}
			}
		}
		checkConditions(d.Conditions, where, ve)
	}

	for _, id := range sortedKeys(g.Expressions) {
		e := g.Expressions[id]
		if e.ActorID == "" {
			continue
		}
		if _, ok := g.Actors[e.ActorID]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"expression %q references undefined actor %q", id, e.ActorID))
		}
	}

	for _, id := range sortedKeys(g.Dialogues) {
		if !referenced[id] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"dialogue %q is unreachable", id))
		}
	}
}

func checkConditions(conds []types.Condition, where string, ve *ValidationError) {
	for _, c := range conds {
		if !conditions.KnownTypes[c.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s uses unknown condition type %q", where, c.Type))
			continue
		}
		if c.Type == "not" {
			if c.Inner == nil {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s has a not condition without an inner condition", where))
				continue
			}
			checkConditions([]types.Condition{*c.Inner}, where, ve)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
