// Package resolve maps actor and dialogue names from parsed intents to ids.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/types"
)

// Result holds the resolved ids for an intent.
type Result struct {
	ActorID    string
	DialogueID string
}

// AmbiguityError indicates multiple actors or dialogues matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Name string
	Kind string // "actor" or "topic"
}

func (e *NotFoundError) Error() string {
	if e.Kind == "topic" {
		return fmt.Sprintf("nobody here talks about %q", e.Name)
	}
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Resolve maps the intent's object to an actor and its target to one of that
// actor's dialogues.
func Resolve(g *graph.Graph, intent types.Intent) (Result, error) {
	var res Result
	var err error

	if intent.Object != "" {
		res.ActorID, err = Actor(g, intent.Object)
		if err != nil {
			return res, err
		}
	}

	if intent.Target != "" && res.ActorID != "" {
		res.DialogueID, err = Dialogue(g, res.ActorID, intent.Target)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// Actor resolves a name to an actor id.
func Actor(g *graph.Graph, name string) (string, error) {
	// 1. Exact id match.
	if _, ok := g.Actors[name]; ok {
		return name, nil
	}

	// 2. Search by profile name and id.
	nameLower := strings.ToLower(name)
	var matches []string
	for id, def := range g.Actors {
		if matchesName(id, def.Profile.Name, nameLower) {
			matches = append(matches, id)
		}
	}
	return pick(name, "actor", matches)
}

// Dialogue resolves a topic name to one of the actor's owned dialogues.
func Dialogue(g *graph.Graph, actorID, name string) (string, error) {
	def, ok := g.Actors[actorID]
	if !ok {
		return "", &NotFoundError{Name: actorID, Kind: "actor"}
	}

	nameLower := strings.ToLower(name)
	var matches []string
	for _, id := range def.Profile.Dialogues {
		if id == name {
			return id, nil
		}
		if matchesName(id, "", nameLower) {
			matches = append(matches, id)
		}
	}
	return pick(name, "topic", matches)
}

func pick(name, kind string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name, Kind: kind}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks a display name and an id against the query
// (case-insensitive). Supports exact match, word-based partial match, and
// underscore normalization of ids.
func matchesName(id, display, nameLower string) bool {
	if display != "" {
		displayLower := strings.ToLower(display)
		if displayLower == nameLower {
			return true
		}
		// e.g. "guard" matches "Old Guard".
		for _, word := range strings.Fields(displayLower) {
			if word == nameLower {
				return true
			}
		}
	}

	idLower := strings.ToLower(id)
	if idLower == nameLower {
		return true
	}
	// "old guard" matches id "old_guard".
	if strings.ReplaceAll(nameLower, " ", "_") == idLower {
		return true
	}
	// "rumours" matches id "ask_rumours".
	for _, part := range strings.Split(idLower, "_") {
		if part == nameLower {
			return true
		}
	}
	return false
}
