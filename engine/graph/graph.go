// Package graph holds the immutable dialogue graph: actors, dialogues and
// expressions keyed by id. Cross references are ids resolved here.
package graph

import "github.com/nathoo/parley/types"

// Graph holds the authored definitions. It is read-only after loading.
type Graph struct {
	Game        types.GameDef
	Actors      map[string]*types.ActorDef
	Dialogues   map[string]*types.Dialogue
	Expressions map[string]*types.Expression
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		Actors:      map[string]*types.ActorDef{},
		Dialogues:   map[string]*types.Dialogue{},
		Expressions: map[string]*types.Expression{},
	}
}

// Actor returns the actor with the given id.
func (g *Graph) Actor(id string) (*types.ActorDef, bool) {
	a, ok := g.Actors[id]
	return a, ok
}

// Dialogue returns the dialogue with the given id. Empty ids never resolve.
func (g *Graph) Dialogue(id string) (*types.Dialogue, bool) {
	if id == "" {
		return nil, false
	}
	d, ok := g.Dialogues[id]
	return d, ok
}

// Expression returns the expression with the given id.
func (g *Graph) Expression(id string) (*types.Expression, bool) {
	if id == "" {
		return nil, false
	}
	e, ok := g.Expressions[id]
	return e, ok
}

// ProfileDialogue finds a dialogue among the ones the actor owns.
func (g *Graph) ProfileDialogue(actorID, dialogueID string) *types.Dialogue {
	a, ok := g.Actors[actorID]
	if !ok {
		return nil
	}
	for _, id := range a.Profile.Dialogues {
		if id == dialogueID {
			d, _ := g.Dialogue(id)
			return d
		}
	}
	return nil
}

// DefaultDialogue returns the actor's first owned dialogue, or nil.
func (g *Graph) DefaultDialogue(actorID string) *types.Dialogue {
	return g.FirstDialogue(actorID)
}

// FirstDialogue returns the actor's first owned dialogue, or nil.
func (g *Graph) FirstDialogue(actorID string) *types.Dialogue {
	a, ok := g.Actors[actorID]
	if !ok || len(a.Profile.Dialogues) == 0 {
		return nil
	}
	d, _ := g.Dialogue(a.Profile.Dialogues[0])
	return d
}

// LastDialogue returns the actor's last owned dialogue, or nil.
func (g *Graph) LastDialogue(actorID string) *types.Dialogue {
	a, ok := g.Actors[actorID]
	if !ok || len(a.Profile.Dialogues) == 0 {
		return nil
	}
	d, _ := g.Dialogue(a.Profile.Dialogues[len(a.Profile.Dialogues)-1])
	return d
}

// NextOwnedDialogue returns the dialogue following dialogueID in the actor's
// owned list. Returns nil if dialogueID is not owned or is the last one.
func (g *Graph) NextOwnedDialogue(actorID, dialogueID string) *types.Dialogue {
	a, ok := g.Actors[actorID]
	if !ok {
		return nil
	}
	for i, id := range a.Profile.Dialogues {
		if id != dialogueID {
			continue
		}
		if i+1 >= len(a.Profile.Dialogues) {
			return nil
		}
		d, _ := g.Dialogue(a.Profile.Dialogues[i+1])
		return d
	}
	return nil
}

// ChoiceTargetID returns the id a choice leads to: the choice's own next
// dialogue, else the containing dialogue's next. Empty means the session ends.
func ChoiceTargetID(d *types.Dialogue, c types.Choice) string {
	if c.Next != "" {
		return c.Next
	}
	return d.Next
}
