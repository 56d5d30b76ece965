package actor

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/nathoo/parley/engine/dialogue"
	"github.com/nathoo/parley/engine/events"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/engine/schedule"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

var quiet = log.New(io.Discard, "", 0)

// recordingStarter remembers start requests.
type recordingStarter struct {
	started []string
	err     error
}

func (r *recordingStarter) RequestStart(actorID string, d *types.Dialogue) error {
	if r.err != nil {
		return r.err
	}
	r.started = append(r.started, actorID+":"+d.ID)
	return nil
}

func testGraph() *graph.Graph {
	g := graph.New()
	g.Actors["guard"] = &types.ActorDef{
		ID: "guard",
		Profile: types.ActorProfile{
			Name:      "Old Guard",
			Dialogues: []string{"greet", "secret"},
		},
	}
	g.Actors["mute"] = &types.ActorDef{ID: "mute"}
	g.Dialogues["greet"] = &types.Dialogue{ID: "greet", Lines: []types.Line{{Text: "Halt.", DisplayDuration: -1}}}
	g.Dialogues["secret"] = &types.Dialogue{
		ID:         "secret",
		Lines:      []types.Line{{Text: "Psst.", DisplayDuration: -1}},
		Conditions: []types.Condition{{Type: "flag_set", Params: map[string]any{"flag": "trusted"}}},
	}
	g.Dialogues["orphan"] = &types.Dialogue{ID: "orphan", Lines: []types.Line{{Text: "?"}}}
	return g
}

func newActor(g *graph.Graph, id string, world *types.State, s Starter) *Actor {
	return New(g.Actors[id], Options{Graph: g, World: world, Starter: s, Logger: quiet})
}

func TestNew_Defaults(t *testing.T) {
	g := testGraph()
	a := newActor(g, "guard", state.NewState(), &recordingStarter{})
	if !a.IsReady() {
		t.Error("actor without trigger should start ready")
	}
	if a.TriggerTag() != DefaultTriggerTag {
		t.Errorf("trigger tag = %q, want %q", a.TriggerTag(), DefaultTriggerTag)
	}
	if a.Name() != "Old Guard" || newActor(g, "mute", nil, nil).Name() != "mute" {
		t.Error("Name should prefer the profile name and fall back to the id")
	}
}

func TestTriggerGate(t *testing.T) {
	g := testGraph()
	g.Actors["guard"].UseTrigger = true
	g.Actors["guard"].TriggerTag = "Hero"
	a := newActor(g, "guard", state.NewState(), &recordingStarter{})

	steps := []struct {
		enter bool
		tag   string
		want  bool
	}{
		{true, "Dog", false},
		{true, "Hero", true},
		{false, "Dog", true},
		{false, "Hero", false},
	}
	if a.IsReady() {
		t.Fatal("trigger actor should start not ready")
	}
	for i, s := range steps {
		if s.enter {
			a.TriggerEnter(s.tag)
		} else {
			a.TriggerExit(s.tag)
		}
		if a.IsReady() != s.want {
			t.Errorf("step %d: ready = %v, want %v", i, a.IsReady(), s.want)
		}
	}

	a.SetUseTrigger(false)
	a.TriggerEnter("Hero")
	if a.IsReady() {
		t.Error("trigger events must be ignored when the trigger is off")
	}
	a.SetTriggerTag("Dog")
	a.SetUseTrigger(true)
	a.TriggerEnter("Dog")
	if !a.IsReady() {
		t.Error("new trigger tag should open the gate")
	}
}

func TestTryStartDialogue(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		ready   bool
		trusted bool
		wantErr error
	}{
		{"starts", "greet", true, false, nil},
		{"not ready", "greet", false, false, ErrNotReady},
		{"not owned", "orphan", true, false, ErrMissingData},
		{"unknown", "nope", true, false, ErrMissingData},
		{"start conditions unmet", "secret", true, false, ErrConditionsUnmet},
		{"start conditions met", "secret", true, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGraph()
			world := state.NewState()
			state.SetFlag(world, "trusted", tt.trusted)
			st := &recordingStarter{}
			a := newActor(g, "guard", world, st)
			a.SetReady(tt.ready)

			err := a.TryStartDialogue(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (len(st.started) != 1 || st.started[0] != "guard:"+tt.id) {
				t.Errorf("started = %v", st.started)
			}
			if tt.wantErr != nil && len(st.started) != 0 {
				t.Errorf("rejected start reached the starter: %v", st.started)
			}
		})
	}
}

func TestTryStartDialogue_InteractionConditions(t *testing.T) {
	g := testGraph()
	g.Actors["guard"].Profile.InteractionConditions = []types.Condition{
		{Type: "has_item", Params: map[string]any{"item": "pass"}},
	}
	world := state.NewState()
	st := &recordingStarter{}
	a := newActor(g, "guard", world, st)

	if err := a.TryStartDialogue("greet"); !errors.Is(err, ErrCannotInteract) {
		t.Fatalf("expected ErrCannotInteract, got %v", err)
	}
	state.GiveItem(world, "pass")
	if err := a.TryStartDialogue("greet"); err != nil {
		t.Fatalf("expected start, got %v", err)
	}
}

func TestInteractionCache_Sticky(t *testing.T) {
	g := testGraph()
	g.Actors["guard"].Profile.UseInteractionCache = true
	g.Actors["guard"].Profile.InteractionConditions = []types.Condition{
		{Type: "has_item", Params: map[string]any{"item": "pass"}},
	}
	world := state.NewState()
	a := newActor(g, "guard", world, &recordingStarter{})

	state.GiveItem(world, "pass")
	if !a.CanInteract() || a.CachedConditions() != 1 {
		t.Fatalf("expected cached success, cached=%d", a.CachedConditions())
	}
	state.RemoveItem(world, "pass")
	if !a.CanInteract() {
		t.Error("cached condition must stay satisfied")
	}
	a.ClearConditionCache()
	if a.CanInteract() {
		t.Error("after clearing, the condition is evaluated again")
	}
}

func TestInteractionCache_Disabled(t *testing.T) {
	g := testGraph()
	g.Actors["guard"].Profile.InteractionConditions = []types.Condition{
		{Type: "has_item", Params: map[string]any{"item": "pass"}},
	}
	world := state.NewState()
	a := newActor(g, "guard", world, &recordingStarter{})

	state.GiveItem(world, "pass")
	a.CanInteract()
	state.RemoveItem(world, "pass")
	if a.CanInteract() || a.CachedConditions() != 0 {
		t.Error("without caching every call re-evaluates")
	}
	a.ClearConditionCache()
}

func TestPlayDefaultDialogue(t *testing.T) {
	g := testGraph()
	st := &recordingStarter{}
	d, err := newActor(g, "guard", state.NewState(), st).PlayDefaultDialogue()
	if err != nil || d.ID != "greet" {
		t.Fatalf("PlayDefaultDialogue = %v, %v", d, err)
	}

	if _, err := newActor(g, "mute", state.NewState(), st).PlayDefaultDialogue(); !errors.Is(err, ErrMissingData) {
		t.Errorf("actor without dialogues: got %v", err)
	}

	st.err = dialogue.ErrInvalidTransition
	if _, err := newActor(g, "guard", state.NewState(), st).PlayDefaultDialogue(); !errors.Is(err, dialogue.ErrInvalidTransition) {
		t.Errorf("starter error should propagate, got %v", err)
	}
}

func TestTriggerScenario_WithManager(t *testing.T) {
	g := testGraph()
	g.Actors["guard"].UseTrigger = true
	bus := events.NewBus()
	var starts int
	bus.Subscribe(func(types.Event) { starts++ }, types.EventDialogueStart)
	m, err := dialogue.New(dialogue.Options{Graph: g, Scheduler: schedule.NewManual(), Bus: bus, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	a := newActor(g, "guard", state.NewState(), m)

	if err := a.TryStartDialogue("greet"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before trigger, got %v", err)
	}
	if starts != 0 || m.IsActive() {
		t.Fatal("no dialogue_start may be emitted before the trigger")
	}

	a.TriggerEnter("Player")
	if err := a.TryStartDialogue("greet"); err != nil {
		t.Fatalf("TryStartDialogue after trigger: %v", err)
	}
	if starts != 1 || m.CurrentActor() != "guard" {
		t.Errorf("starts = %d, actor = %q", starts, m.CurrentActor())
	}

	if err := a.TryStartDialogue("greet"); !errors.Is(err, dialogue.ErrInvalidTransition) {
		t.Errorf("second start while active: got %v", err)
	}
}
