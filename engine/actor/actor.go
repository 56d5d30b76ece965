// Package actor is the runtime side of an authored actor: its interaction
// gate, its interaction condition cache and the requests it sends to the
// dialogue manager.
package actor

import (
	"errors"
	"fmt"
	"log"

	"github.com/nathoo/parley/engine/conditions"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/types"
)

// DefaultTriggerTag is the tag used when an actor names none.
const DefaultTriggerTag = "Player"

var (
	ErrNotReady        = errors.New("actor not ready for interaction")
	ErrCannotInteract  = errors.New("actor interaction conditions not met")
	ErrMissingData     = errors.New("dialogue not found")
	ErrConditionsUnmet = errors.New("dialogue start conditions not met")
)

// Starter accepts dialogue start requests. *dialogue.Manager implements it.
type Starter interface {
	RequestStart(actorID string, d *types.Dialogue) error
}

// Options configures an Actor.
type Options struct {
	Graph   *graph.Graph
	World   *types.State
	Starter Starter
	Logger  *log.Logger
}

// Actor gates and issues dialogue start requests for one ActorDef.
type Actor struct {
	def     *types.ActorDef
	graph   *graph.Graph
	world   *types.State
	starter Starter
	logger  *log.Logger

	ready       bool
	triggerTag  string
	useTrigger  bool
	interaction []conditions.Condition
	cache       *conditions.Cache
}

// New creates the runtime actor for def. Readiness starts false when the
// actor waits for a trigger, true otherwise.
func New(def *types.ActorDef, opts Options) *Actor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tag := def.TriggerTag
	if tag == "" {
		tag = DefaultTriggerTag
	}
	a := &Actor{
		def:         def,
		graph:       opts.Graph,
		world:       opts.World,
		starter:     opts.Starter,
		logger:      logger,
		ready:       !def.UseTrigger,
		triggerTag:  tag,
		useTrigger:  def.UseTrigger,
		interaction: conditions.BindAll(def.Profile.InteractionConditions, opts.World),
	}
	if def.Profile.UseInteractionCache {
		a.cache = conditions.NewCache()
	}
	return a
}

// ID returns the actor id.
func (a *Actor) ID() string { return a.def.ID }

// Def returns the authored definition.
func (a *Actor) Def() *types.ActorDef { return a.def }

// Name returns the profile name, or the id when the profile has none.
func (a *Actor) Name() string {
	if a.def.Profile.Name != "" {
		return a.def.Profile.Name
	}
	return a.def.ID
}

// SetReady sets the interaction gate.
func (a *Actor) SetReady(ready bool) { a.ready = ready }

// IsReady reports whether the actor accepts interaction.
func (a *Actor) IsReady() bool { return a.ready }

// TriggerTag returns the tag that toggles readiness.
func (a *Actor) TriggerTag() string { return a.triggerTag }

// SetTriggerTag changes the tag that toggles readiness.
func (a *Actor) SetTriggerTag(tag string) { a.triggerTag = tag }

// UsesTrigger reports whether readiness follows trigger events.
func (a *Actor) UsesTrigger() bool { return a.useTrigger }

// SetUseTrigger turns trigger-driven readiness on or off. It does not change
// the current readiness.
func (a *Actor) SetUseTrigger(use bool) { a.useTrigger = use }

// TriggerEnter opens the gate when tag matches and the actor uses a trigger.
func (a *Actor) TriggerEnter(tag string) {
	if a.useTrigger && tag == a.triggerTag {
		a.ready = true
	}
}

// TriggerExit closes the gate when tag matches and the actor uses a trigger.
func (a *Actor) TriggerExit(tag string) {
	if a.useTrigger && tag == a.triggerTag {
		a.ready = false
	}
}

// CanInteract evaluates the interaction conditions, through the cache when
// the profile enables it.
func (a *Actor) CanInteract() bool {
	return conditions.CanInteract(a.interaction, a.cache)
}

// CachedConditions returns how many interaction conditions are cached.
func (a *Actor) CachedConditions() int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Len()
}

// ClearConditionCache forgets every cached interaction condition.
func (a *Actor) ClearConditionCache() {
	if a.cache != nil {
		a.cache.Clear()
	}
}

// TryStartDialogue asks the starter to play one of the actor's dialogues.
func (a *Actor) TryStartDialogue(dialogueID string) error {
	if err := a.gate(); err != nil {
		return err
	}
	d := a.graph.ProfileDialogue(a.def.ID, dialogueID)
	if d == nil {
		a.logf("ERROR dialogue %q is not owned by this actor", dialogueID)
		return fmt.Errorf("%s: dialogue %q: %w", a.def.ID, dialogueID, ErrMissingData)
	}
	return a.start(d)
}

// PlayDefaultDialogue plays the actor's first owned dialogue and returns it.
func (a *Actor) PlayDefaultDialogue() (*types.Dialogue, error) {
	if err := a.gate(); err != nil {
		return nil, err
	}
	d := a.graph.DefaultDialogue(a.def.ID)
	if d == nil {
		a.logf("ERROR no default dialogue")
		return nil, fmt.Errorf("%s: no default dialogue: %w", a.def.ID, ErrMissingData)
	}
	if err := a.start(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *Actor) gate() error {
	if !a.ready {
		a.logf("DEBUG not ready for interaction")
		return fmt.Errorf("%s: %w", a.def.ID, ErrNotReady)
	}
	if !a.CanInteract() {
		return fmt.Errorf("%s: %w", a.def.ID, ErrCannotInteract)
	}
	return nil
}

func (a *Actor) start(d *types.Dialogue) error {
	if !conditions.CanStart(conditions.BindAll(d.Conditions, a.world)) {
		return fmt.Errorf("%s: dialogue %q: %w", a.def.ID, d.ID, ErrConditionsUnmet)
	}
	return a.starter.RequestStart(a.def.ID, d)
}

func (a *Actor) logf(format string, args ...any) {
	a.logger.Printf("[actor "+a.def.ID+"] "+format, args...)
}
