// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, actors and the dialogue manager into a single turn.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/parley/engine/actor"
	"github.com/nathoo/parley/engine/audio"
	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/events"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/engine/parser"
	"github.com/nathoo/parley/engine/resolve"
	"github.com/nathoo/parley/engine/schedule"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

// DefaultWait is how long a bare "wait" lets the virtual clock run.
const DefaultWait = time.Second

// Options configures an Engine.
type Options struct {
	// Scheduler drives timed lines and effects. Nil uses a virtual clock
	// advanced by "wait".
	Scheduler schedule.Scheduler

	// Audio receives clips when PlayAudioFromManager is set. A nil Audio
	// with PlayAudioFromManager set gets a recorder that prints each clip
	// as a "♪ clip" output line, so text front ends need no channel.
	// dialogue.New still rejects that combination with ErrConfiguration
	// for callers wiring the manager directly.
	Audio                audio.Channel
	PlayAudioFromManager bool

	// PlayerTag is the trigger tag "approach" and "leave" use. Empty uses
	// the game's player tag, then actor.DefaultTriggerTag.
	PlayerTag string

	Logger *log.Logger
}

// Engine holds the dialogue graph, the world blackboard and the runtime
// collaborators.
type Engine struct {
	Graph   *graph.Graph
	World   *types.State
	Bus     *events.Bus
	Manager *dialogue.Manager
	Actors  map[string]*actor.Actor

	clock     *schedule.Manual // nil unless the scheduler is virtual
	playerTag string
	logger    *log.Logger

	expressions map[string]string // actor id → current expression id

	pending []types.Event
	out     []string
}

// New wires an engine around g.
func New(g *graph.Graph, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	e := &Engine{
		Graph:       g,
		World:       state.NewState(),
		Bus:         events.NewBus(),
		Actors:      map[string]*actor.Actor{},
		logger:      logger,
		expressions: map[string]string{},
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = schedule.NewManual()
	}
	if m, ok := sched.(*schedule.Manual); ok {
		e.clock = m
	}

	channel := opts.Audio
	if opts.PlayAudioFromManager && channel == nil {
		channel = &audio.Recorder{OnPlay: func(clip string) {
			e.out = append(e.out, "♪ "+clip)
		}}
	}

	mgr, err := dialogue.New(dialogue.Options{
		Graph:                g,
		Scheduler:            sched,
		Bus:                  e.Bus,
		Audio:                channel,
		PlayAudioFromManager: opts.PlayAudioFromManager,
		Logger:               logger,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.Manager = mgr

	e.playerTag = opts.PlayerTag
	if e.playerTag == "" {
		e.playerTag = g.Game.PlayerTag
	}
	if e.playerTag == "" {
		e.playerTag = actor.DefaultTriggerTag
	}

	for id, def := range g.Actors {
		e.Actors[id] = actor.New(def, actor.Options{
			Graph:   g,
			World:   e.World,
			Starter: mgr,
			Logger:  logger,
		})
	}

	e.Bus.Subscribe(e.onEvent)
	mgr.Enable()
	return e, nil
}

// Virtual reports whether time only moves through Advance.
func (e *Engine) Virtual() bool { return e.clock != nil }

// Clock returns the virtual clock, or nil with a realtime scheduler.
func (e *Engine) Clock() *schedule.Manual { return e.clock }

// PlayerTag returns the tag used for approach and leave.
func (e *Engine) PlayerTag() string { return e.playerTag }

// Expression returns the current expression of an actor.
func (e *Engine) Expression(actorID string) (*types.Expression, bool) {
	return e.Graph.Expression(e.expressions[actorID])
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	intent := parser.Parse(input)

	switch intent.Verb {
	case "":
		if e.Manager.State() == dialogue.PlayingLine {
			e.doContinue()
		} else {
			e.say("What do you want to do?")
		}
	case "look":
		e.doLook(intent)
	case "talk":
		e.doTalk(intent)
	case "continue":
		e.doContinue()
	case "choose":
		e.doChoose(intent.Object)
	case "approach":
		e.doProximity(intent, true)
	case "leave":
		e.doProximity(intent, false)
	case "wait":
		e.doWait(intent.Object)
	case "end":
		if err := e.Manager.End(); err != nil {
			e.say("Nobody is talking to you.")
		}
	case "help":
		e.say(CommandHelp...)
	default:
		e.say("I don't understand that.")
	}

	return e.Drain()
}

// Advance runs the virtual clock for d and returns what happened.
func (e *Engine) Advance(d time.Duration) types.Result {
	if e.clock != nil {
		e.clock.Advance(d)
	}
	return e.Drain()
}

// Run executes a callback delivered by a realtime scheduler on the caller's
// goroutine and returns what happened.
func (e *Engine) Run(task func()) types.Result {
	task()
	return e.Drain()
}

// Drain returns the events and output collected since the last call.
func (e *Engine) Drain() types.Result {
	r := types.Result{Events: e.pending, Output: e.out}
	e.pending = nil
	e.out = nil
	return r
}

// CommandHelp lists the game commands.
var CommandHelp = []string{
	"  look (l)                     See who is around",
	"  look <actor>                 Describe someone",
	"  approach <actor>             Step close to someone",
	"  leave <actor>                Step away from someone",
	"  talk to <actor>              Start their default conversation",
	"  talk to <actor> about <x>    Start a specific conversation",
	"  continue (c, or Enter)       Next line",
	"  choose <n> (or just <n>)     Pick an option",
	"  wait [seconds] (z)           Let time pass",
	"  end (bye)                    Walk out of the conversation",
}

func (e *Engine) say(lines ...string) {
	e.out = append(e.out, lines...)
}

func (e *Engine) actorName(id string) string {
	if a, ok := e.Actors[id]; ok {
		return a.Name()
	}
	return id
}

func (e *Engine) resolveActor(name string) (*actor.Actor, bool) {
	id, err := resolve.Actor(e.Graph, name)
	if err != nil {
		e.say(err.Error())
		return nil, false
	}
	return e.Actors[id], true
}

func (e *Engine) doLook(intent types.Intent) {
	if intent.Object != "" {
		a, ok := e.resolveActor(intent.Object)
		if !ok {
			return
		}
		p := a.Def().Profile
		if p.Description != "" {
			e.say(p.Description)
		} else {
			e.say(fmt.Sprintf("You see nothing special about %s.", a.Name()))
		}
		if ex, ok := e.Expression(a.ID()); ok {
			e.say(fmt.Sprintf("%s looks %s.", a.Name(), expressionLabel(ex)))
		}
		return
	}

	ids := make([]string, 0, len(e.Actors))
	for id := range e.Actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		e.say("Nobody is here.")
		return
	}
	var names []string
	for _, id := range ids {
		a := e.Actors[id]
		name := a.Name()
		if a.UsesTrigger() && a.IsReady() {
			name += " (nearby)"
		}
		names = append(names, name)
	}
	e.say("You see: " + strings.Join(names, ", ") + ".")
	if d := e.Manager.CurrentDialogue(); d != nil {
		e.say(fmt.Sprintf("You are talking with %s.", e.actorName(e.Manager.CurrentActor())))
	}
}

func (e *Engine) doTalk(intent types.Intent) {
	if intent.Object == "" {
		e.say("Talk to whom?")
		return
	}
	a, ok := e.resolveActor(intent.Object)
	if !ok {
		return
	}

	var err error
	if intent.Target != "" {
		id, rerr := resolve.Dialogue(e.Graph, a.ID(), intent.Target)
		if rerr != nil {
			e.say(fmt.Sprintf("%s has nothing to say about that.", a.Name()))
			return
		}
		err = a.TryStartDialogue(id)
	} else {
		_, err = a.PlayDefaultDialogue()
	}
	if err != nil {
		e.say(e.talkRefusal(a, err))
	}
}

func (e *Engine) talkRefusal(a *actor.Actor, err error) string {
	switch {
	case errors.Is(err, actor.ErrNotReady):
		return fmt.Sprintf("%s is too far away. Try: approach %s", a.Name(), a.ID())
	case errors.Is(err, actor.ErrCannotInteract):
		return fmt.Sprintf("%s ignores you.", a.Name())
	case errors.Is(err, actor.ErrConditionsUnmet):
		return fmt.Sprintf("%s won't talk about that yet.", a.Name())
	case errors.Is(err, actor.ErrMissingData), errors.Is(err, dialogue.ErrMissingData):
		return fmt.Sprintf("%s has nothing to say.", a.Name())
	case errors.Is(err, dialogue.ErrInvalidTransition):
		return "You are already in a conversation."
	default:
		return err.Error()
	}
}

func (e *Engine) doContinue() {
	if err := e.Manager.Continue(); err != nil {
		if e.Manager.State() == dialogue.AwaitingChoice {
			e.say(fmt.Sprintf("Choose an option (1-%d).", len(e.Manager.Choices())))
			return
		}
		e.say("Nobody is talking to you.")
	}
}

func (e *Engine) doChoose(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		e.say("Choose which option? (a number)")
		return
	}
	if err := e.Manager.SelectChoice(n - 1); err != nil {
		if errors.Is(err, dialogue.ErrMissingData) {
			e.say(fmt.Sprintf("Choose a number between 1 and %d.", len(e.Manager.Choices())))
			return
		}
		e.say("There is nothing to choose.")
	}
}

func (e *Engine) doProximity(intent types.Intent, enter bool) {
	if intent.Object == "" {
		e.say("Who?")
		return
	}
	a, ok := e.resolveActor(intent.Object)
	if !ok {
		return
	}
	if enter {
		a.TriggerEnter(e.playerTag)
		e.say(fmt.Sprintf("You approach %s.", a.Name()))
		return
	}
	a.TriggerExit(e.playerTag)
	e.say(fmt.Sprintf("You step away from %s.", a.Name()))
}

func (e *Engine) doWait(arg string) {
	d := DefaultWait
	if arg != "" {
		secs, err := strconv.ParseFloat(arg, 64)
		if err != nil || secs < 0 {
			e.say("Wait how long? (seconds)")
			return
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if e.clock == nil {
		e.say("Time passes.")
		return
	}
	before := len(e.out)
	e.clock.Advance(d)
	if len(e.out) == before {
		e.say("Time passes.")
	}
}
