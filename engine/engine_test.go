package engine

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/nathoo/parley/engine/audio"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/types"
)

// testGraph builds a small scene: a guard behind a trigger with a branching
// greeting, and a smith who only talks to customers with a coin.
func testGraph() *graph.Graph {
	g := graph.New()
	g.Game = types.GameDef{Title: "Test", PlayerTag: "Player"}
	g.Actors["guard"] = &types.ActorDef{
		ID:         "guard",
		TriggerTag: "Player",
		UseTrigger: true,
		Profile: types.ActorProfile{
			Name:        "Old Guard",
			Description: "A grizzled guard.",
			Dialogues:   []string{"guard_greet", "guard_secret"},
		},
	}
	g.Actors["smith"] = &types.ActorDef{
		ID: "smith",
		Profile: types.ActorProfile{
			Name:      "Hilda",
			Dialogues: []string{"smith_greet"},
			InteractionConditions: []types.Condition{
				{Type: "has_item", Params: map[string]any{"item": "coin"}},
			},
		},
	}
	g.Dialogues["guard_greet"] = &types.Dialogue{
		ID: "guard_greet",
		Lines: []types.Line{
			{Text: "Halt.", Expression: "guard_stern", DisplayDuration: -1},
			{
				Text:            "State your business.",
				DisplayDuration: 2 * time.Second,
				Effects: []types.Effect{
					{Sound: "clank", Delay: 500 * time.Millisecond},
					{Visual: "dust", Duration: time.Second, Delay: time.Second},
				},
			},
		},
		Choices: []types.Choice{
			{Text: "Just passing", Next: "guard_bye"},
			{Text: "Tell me a secret", Next: "guard_secret"},
		},
	}
	g.Dialogues["guard_secret"] = &types.Dialogue{
		ID:         "guard_secret",
		Lines:      []types.Line{{Text: "The gate is weak.", DisplayDuration: -1}},
		Conditions: []types.Condition{{Type: "flag_set", Params: map[string]any{"flag": "trusted"}}},
	}
	g.Dialogues["guard_bye"] = &types.Dialogue{
		ID:    "guard_bye",
		Lines: []types.Line{{Text: "Move along.", DisplayDuration: -1}},
	}
	g.Dialogues["smith_greet"] = &types.Dialogue{
		ID:    "smith_greet",
		Lines: []types.Line{{Text: "Need a blade?", Audio: "hilda_vo", DisplayDuration: -1}},
	}
	g.Expressions["guard_stern"] = &types.Expression{ID: "guard_stern", ActorID: "guard", Animation: "stern"}
	return g
}

func newTestEngine(t *testing.T, fromManager bool) *Engine {
	t.Helper()
	e, err := New(testGraph(), Options{
		PlayAudioFromManager: fromManager,
		Logger:               log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Drain()
	return e
}

func outputContains(r types.Result, substr string) bool {
	for _, line := range r.Output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func hasEvent(r types.Result, et types.EventType) bool {
	for _, ev := range r.Events {
		if ev.Type == et {
			return true
		}
	}
	return false
}

func TestNew_ManagerReady(t *testing.T) {
	e, err := New(testGraph(), Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := e.Drain()
	if len(r.Events) != 1 || r.Events[0].Type != types.EventManagerReady {
		t.Errorf("events = %+v, want manager_ready", r.Events)
	}
	if !e.Virtual() || e.Clock() == nil {
		t.Error("default scheduler should be the virtual clock")
	}
	if e.PlayerTag() != "Player" {
		t.Errorf("player tag = %q", e.PlayerTag())
	}
}

func TestTalk_RequiresApproach(t *testing.T) {
	e := newTestEngine(t, false)

	r := e.Step("talk to guard")
	if !outputContains(r, "too far away") {
		t.Errorf("expected refusal, got %v", r.Output)
	}
	if hasEvent(r, types.EventDialogueStart) {
		t.Fatal("dialogue started before the trigger")
	}

	r = e.Step("approach guard")
	if !outputContains(r, "You approach Old Guard.") {
		t.Errorf("got %v", r.Output)
	}

	r = e.Step("talk to the guard")
	if !hasEvent(r, types.EventDialogueStart) {
		t.Fatalf("expected dialogue_start, got %v", r.Output)
	}
	want := []string{"(Old Guard looks stern)", `Old Guard: "Halt."`}
	if strings.Join(r.Output, "|") != strings.Join(want, "|") {
		t.Errorf("output = %q, want %q", r.Output, want)
	}
	if ex, ok := e.Expression("guard"); !ok || ex.ID != "guard_stern" {
		t.Errorf("expression = %v", ex)
	}

	e.Step("leave guard")
	if e.Actors["guard"].IsReady() {
		t.Error("leave should close the gate")
	}
}

func TestFullConversation(t *testing.T) {
	e := newTestEngine(t, false)
	e.Step("approach guard")
	e.Step("talk to guard")

	r := e.Step("c")
	if !outputContains(r, `Old Guard: "State your business."`) || !hasEvent(r, types.EventDialogueProgress) {
		t.Fatalf("got %v", r.Output)
	}

	r = e.Step("wait 0.5")
	if !outputContains(r, "♪ clank") {
		t.Errorf("expected sound at 0.5s, got %v", r.Output)
	}
	r = e.Step("wait 0.5")
	if !outputContains(r, "* dust * (1s)") {
		t.Errorf("expected visual at 1s, got %v", r.Output)
	}
	r = e.Step("wait 1")
	if !hasEvent(r, types.EventChoiceSelectionReady) {
		t.Fatalf("expected auto-advance to choices at 2s, got %v", r.Output)
	}
	if !outputContains(r, "  1. Just passing") || !outputContains(r, "  2. Tell me a secret") {
		t.Errorf("choices not listed: %v", r.Output)
	}

	r = e.Step("2")
	if !outputContains(r, "> Tell me a secret") || !outputContains(r, `Old Guard: "The gate is weak."`) {
		t.Errorf("got %v", r.Output)
	}

	r = e.Step("c")
	if !hasEvent(r, types.EventDialogueEnd) || !outputContains(r, "(Old Guard ends the conversation.)") {
		t.Errorf("got %v", r.Output)
	}
	if e.Manager.IsActive() {
		t.Error("session should be over")
	}
}

func TestTalkAbout_StartConditions(t *testing.T) {
	e := newTestEngine(t, false)
	e.Step("approach guard")

	r := e.Step("talk to guard about secret")
	if !outputContains(r, "won't talk about that yet") {
		t.Fatalf("got %v", r.Output)
	}

	if _, ok := e.Meta("/flag trusted"); !ok {
		t.Fatal("/flag should be handled")
	}
	r = e.Step("talk to guard about secret")
	if !outputContains(r, `Old Guard: "The gate is weak."`) {
		t.Errorf("got %v", r.Output)
	}

	r = e.Step("talk to guard about weather")
	if !outputContains(r, "You are already in a conversation.") && !outputContains(r, "nothing to say about that") {
		t.Errorf("got %v", r.Output)
	}
}

func TestInteractionConditions(t *testing.T) {
	e := newTestEngine(t, false)

	r := e.Step("talk to hilda")
	if !outputContains(r, "Hilda ignores you.") {
		t.Fatalf("got %v", r.Output)
	}

	e.Meta("/give coin")
	r = e.Step("talk to hilda")
	want := []string{`Hilda: "Need a blade?"`, "♪ hilda_vo"}
	if strings.Join(r.Output, "|") != strings.Join(want, "|") {
		t.Errorf("output = %q, want %q", r.Output, want)
	}
	if !hasEvent(r, types.EventAudioClipPlayed) {
		t.Error("delegated audio should publish audio_clip_played")
	}
}

func TestPlayAudioFromManager(t *testing.T) {
	e := newTestEngine(t, true)
	e.Meta("/give coin")

	r := e.Step("talk to hilda")
	if !outputContains(r, "♪ hilda_vo") {
		t.Errorf("owned channel should print the clip, got %v", r.Output)
	}
	if hasEvent(r, types.EventAudioClipPlayed) {
		t.Error("owned playback must not publish audio_clip_played")
	}
}

func TestPlayAudioFromManager_SuppliedChannel(t *testing.T) {
	rec := &audio.Recorder{}
	e, err := New(testGraph(), Options{
		Audio:                rec,
		PlayAudioFromManager: true,
		Logger:               log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Drain()
	e.Meta("/give coin")

	r := e.Step("talk to hilda")
	if outputContains(r, "♪ hilda_vo") {
		t.Errorf("a supplied channel replaces the printing default, got %v", r.Output)
	}
	if len(rec.Played) != 1 || rec.Played[0] != "hilda_vo" {
		t.Errorf("played = %v, want [hilda_vo]", rec.Played)
	}
}

func TestConversationErrors(t *testing.T) {
	e := newTestEngine(t, false)

	if r := e.Step("c"); !outputContains(r, "Nobody is talking to you.") {
		t.Errorf("continue while idle: %v", r.Output)
	}
	if r := e.Step("choose 1"); !outputContains(r, "There is nothing to choose.") {
		t.Errorf("choose while idle: %v", r.Output)
	}
	if r := e.Step(""); !outputContains(r, "What do you want to do?") {
		t.Errorf("empty while idle: %v", r.Output)
	}

	e.Step("approach guard")
	e.Step("talk to guard")
	if r := e.Step(""); !outputContains(r, "State your business.") {
		t.Errorf("enter should continue, got %v", r.Output)
	}
	e.Step("wait 2")

	if r := e.Step("c"); !outputContains(r, "Choose an option (1-2).") {
		t.Errorf("continue while choosing: %v", r.Output)
	}
	if r := e.Step("choose 5"); !outputContains(r, "Choose a number between 1 and 2.") {
		t.Errorf("out of range: %v", r.Output)
	}
	if r := e.Step("choose x"); !outputContains(r, "Choose which option?") {
		t.Errorf("not a number: %v", r.Output)
	}
	if r := e.Step("talk to guard"); !outputContains(r, "already in a conversation") {
		t.Errorf("second talk: %v", r.Output)
	}
	if r := e.Step("bye"); !hasEvent(r, types.EventDialogueEnd) {
		t.Errorf("end: %v", r.Output)
	}
	if r := e.Step("end"); !outputContains(r, "Nobody is talking to you.") {
		t.Errorf("second end: %v", r.Output)
	}
	if r := e.Step("dance"); !outputContains(r, "I don't understand that.") {
		t.Errorf("unknown verb: %v", r.Output)
	}
}

func TestLook(t *testing.T) {
	e := newTestEngine(t, false)

	if r := e.Step("look"); !outputContains(r, "You see: Old Guard, Hilda.") {
		t.Errorf("got %v", r.Output)
	}
	e.Step("approach guard")
	if r := e.Step("l"); !outputContains(r, "Old Guard (nearby)") {
		t.Errorf("got %v", r.Output)
	}
	if r := e.Step("look guard"); !outputContains(r, "A grizzled guard.") {
		t.Errorf("got %v", r.Output)
	}
	if r := e.Step("look dragon"); !outputContains(r, `you don't see "dragon" here`) {
		t.Errorf("got %v", r.Output)
	}
}

func TestWait(t *testing.T) {
	e := newTestEngine(t, false)

	if r := e.Step("wait"); !outputContains(r, "Time passes.") {
		t.Errorf("got %v", r.Output)
	}
	if e.Clock().Now() != DefaultWait {
		t.Errorf("clock = %v, want %v", e.Clock().Now(), DefaultWait)
	}
	if r := e.Step("wait soon"); !outputContains(r, "Wait how long?") {
		t.Errorf("got %v", r.Output)
	}
}

func TestRun(t *testing.T) {
	e := newTestEngine(t, false)
	e.Step("approach guard")
	e.Step("talk to guard")

	r := e.Run(func() { e.Manager.Continue() })
	if !hasEvent(r, types.EventDialogueProgress) {
		t.Errorf("Run should return what the task produced, got %v", r.Events)
	}
}

func TestMeta(t *testing.T) {
	e := newTestEngine(t, false)

	tests := []struct {
		input string
		want  string
	}{
		{"/counter gold 5", "Counter gold = 5."},
		{"/counter gold", "Counter gold = 5."},
		{"/counter gold many", "Not a number: many"},
		{"/flag brave maybe", "Not a boolean: maybe"},
		{"/flag brave false", "Flag brave = false."},
		{"/give coin", "You now have coin."},
		{"/take coin", "coin is gone."},
		{"/take coin", "You don't have coin."},
		{"/clear nobody", `No actor "nobody".`},
		{"/clear smith", "Cleared cached conditions of Hilda."},
		{"/state", "Dialogue: idle"},
	}
	for _, tt := range tests {
		lines, ok := e.Meta(tt.input)
		if !ok {
			t.Errorf("%s: not handled", tt.input)
			continue
		}
		if !strings.Contains(strings.Join(lines, "\n"), tt.want) {
			t.Errorf("%s: got %q, want %q", tt.input, lines, tt.want)
		}
	}

	if _, ok := e.Meta("/quit"); ok {
		t.Error("/quit belongs to the front end")
	}
}
