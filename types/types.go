// Package types defines the shared data structures for the Parley engine.
// It holds plain data only: no logic and no methods.
package types

import "time"

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Condition is a predicate gating actor interaction or dialogue start.
type Condition struct {
	Type   string         // "has_item", "flag_set", "flag_not", "flag_is", etc.
	Params map[string]any // condition-specific parameters
	Inner  *Condition     // for "not": the negated inner condition
}

// Effect is a timed audio/visual cue attached to a line.
type Effect struct {
	Sound    string        // optional clip id
	Visual   string        // optional visual payload id
	Duration time.Duration // advisory, consumed by the renderer; negative = until continue
	Delay    time.Duration // relative to line display start, clamped to >= 0
}

// Line is one displayable beat of dialogue.
type Line struct {
	Text            string
	Audio           string // optional clip id
	Expression      string // optional expression id; empty keeps the previous one
	Effects         []Effect
	DisplayDuration time.Duration // negative = wait for continue
}

// Choice is a player-selectable branch from the end of a dialogue.
type Choice struct {
	Text string
	Next string // optional dialogue id; empty falls back to the dialogue's Next
}

// Dialogue is an ordered sequence of lines plus optional choices/next link.
type Dialogue struct {
	ID         string
	Lines      []Line
	Choices    []Choice
	Next       string // optional dialogue id, ignored when Choices is non-empty
	Conditions []Condition
}

// Expression is an actor pose shown while a line is displayed.
type Expression struct {
	ID                 string
	ActorID            string
	Sprite             string
	Animation          string
	Duration           time.Duration
	TransitionDuration time.Duration
}

// ActorProfile is the authored data of an actor.
type ActorProfile struct {
	Name                  string
	Description           string
	Portrait              string
	Dialogues             []string // owned dialogue ids, in order
	InteractionConditions []Condition
	UseInteractionCache   bool
}

// ActorDef is an actor placed in the scene.
type ActorDef struct {
	ID         string
	TriggerTag string // tag of the object whose trigger enter/exit toggles readiness
	UseTrigger bool   // readiness starts false and follows the trigger
	Profile    ActorProfile
}

// GameDef holds story metadata.
type GameDef struct {
	Title     string
	Author    string
	Version   string
	Intro     string
	PlayerTag string
}

// State is the world blackboard read by authored conditions.
type State struct {
	Flags    map[string]bool
	Counters map[string]int
	Items    []string
}

// EventType identifies an engine lifecycle event.
type EventType string

const (
	EventDialogueStart          EventType = "dialogue_start"
	EventDialogueProgress       EventType = "dialogue_progress"
	EventDialogueEnd            EventType = "dialogue_end"
	EventChoiceSelectionReady   EventType = "choice_selection_ready"
	EventChoiceSelected         EventType = "choice_selected"
	EventAudioClipPlayed        EventType = "audio_clip_played"
	EventLineSoundEffectPlayed  EventType = "line_sound_effect_played"
	EventLineVisualEffectPlayed EventType = "line_visual_effect_played"
	EventManagerReady           EventType = "manager_ready"
)

// Event is emitted by the dialogue manager. Only the fields meaningful for
// the event type are set.
type Event struct {
	Type      EventType
	SessionID string
	ActorID   string
	Dialogue  *Dialogue
	Line      *Line
	LineIndex int
	Choice    int       // choice_selected: index of the picked choice
	Next      *Dialogue // choice_selected: the choice's own next dialogue, nil if it has none
	Clip      string
	Visual    string
	Duration  time.Duration
}

// Result is the output of a single engine step.
type Result struct {
	Events []Event
	Output []string
}
