// Package dialogue implements the playback state machine: one active session
// at a time, played line by line, ending in choices, a chained dialogue or
// the end of the session.
package dialogue

import (
	"errors"
	"fmt"
	"log"

	"github.com/oklog/ulid/v2"

	"github.com/nathoo/parley/engine/audio"
	"github.com/nathoo/parley/engine/effects"
	"github.com/nathoo/parley/engine/events"
	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/engine/schedule"
	"github.com/nathoo/parley/types"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current state. Nothing changes.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrMissingData is returned when a referenced dialogue or choice does
	// not exist or a dialogue has no lines.
	ErrMissingData = errors.New("missing dialogue data")

	// ErrConfiguration is returned by New when a required collaborator is
	// absent.
	ErrConfiguration = errors.New("dialogue manager misconfigured")
)

// State is the playback state of the manager.
type State int

const (
	Idle State = iota
	PlayingLine
	AwaitingChoice
	Ending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayingLine:
		return "playing"
	case AwaitingChoice:
		return "awaiting_choice"
	case Ending:
		return "ending"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is the runtime record of the playing dialogue.
type Session struct {
	ID        string
	ActorID   string
	Dialogue  *types.Dialogue
	LineIndex int
}

// Line returns the line the session is on, or nil past the last line.
func (s Session) Line() *types.Line {
	if s.Dialogue == nil || s.LineIndex < 0 || s.LineIndex >= len(s.Dialogue.Lines) {
		return nil
	}
	return &s.Dialogue.Lines[s.LineIndex]
}

// Options configures a Manager.
type Options struct {
	Graph     *graph.Graph
	Scheduler schedule.Scheduler
	Bus       *events.Bus // nil creates a private bus
	Audio     audio.Channel

	// PlayAudioFromManager plays clips on Audio. When false, clips are
	// published as events for an external backend.
	PlayAudioFromManager bool

	Logger *log.Logger // nil uses log.Default()
}

// Manager owns the single active dialogue session. It is not safe for
// concurrent use: every method and every scheduled callback must run on the
// same control thread.
type Manager struct {
	graph  *graph.Graph
	sched  schedule.Scheduler
	bus    *events.Bus
	player *effects.Player
	logger *log.Logger

	state   State
	session *Session
	timers  *schedule.Group
	advance schedule.Handle
}

// New validates opts and creates an idle manager.
func New(opts Options) (*Manager, error) {
	if opts.Graph == nil {
		return nil, fmt.Errorf("no dialogue graph: %w", ErrConfiguration)
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("no scheduler: %w", ErrConfiguration)
	}
	if opts.PlayAudioFromManager && opts.Audio == nil {
		return nil, fmt.Errorf("audio played from manager but no audio channel: %w", ErrConfiguration)
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		graph:  opts.Graph,
		sched:  opts.Scheduler,
		bus:    bus,
		player: effects.NewPlayer(bus, opts.Audio, opts.PlayAudioFromManager),
		logger: logger,
	}, nil
}

// Bus returns the bus the manager publishes on.
func (m *Manager) Bus() *events.Bus { return m.bus }

// Enable announces that the manager is ready to accept sessions.
func (m *Manager) Enable() {
	m.bus.Publish(types.Event{Type: types.EventManagerReady})
}

// State returns the current playback state.
func (m *Manager) State() State { return m.state }

// IsActive reports whether a session is bound.
func (m *Manager) IsActive() bool { return m.session != nil }

// Session returns a copy of the active session.
func (m *Manager) Session() (Session, bool) {
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// CurrentActor returns the actor id of the active session, or "".
func (m *Manager) CurrentActor() string {
	if m.session == nil {
		return ""
	}
	return m.session.ActorID
}

// CurrentDialogue returns the playing dialogue, or nil.
func (m *Manager) CurrentDialogue() *types.Dialogue {
	if m.session == nil {
		return nil
	}
	return m.session.Dialogue
}

// Choices returns the choices on offer. It is nil unless AwaitingChoice.
func (m *Manager) Choices() []types.Choice {
	if m.state != AwaitingChoice {
		return nil
	}
	return m.session.Dialogue.Choices
}

// RequestStart begins a session for actorID at line 0 of d. A request while
// a session is active is rejected, not queued.
func (m *Manager) RequestStart(actorID string, d *types.Dialogue) error {
	if m.state != Idle {
		m.logger.Printf("[dialogue] WARN start of %q for %q rejected: session %s is %s",
			dialogueID(d), actorID, m.session.ID, m.state)
		return fmt.Errorf("start %q: %w", dialogueID(d), ErrInvalidTransition)
	}
	if d == nil {
		m.logger.Printf("[dialogue] ERROR start for %q: no dialogue", actorID)
		return fmt.Errorf("start for %q: no dialogue: %w", actorID, ErrMissingData)
	}
	if len(d.Lines) == 0 {
		m.logger.Printf("[dialogue] ERROR start of %q: dialogue has no lines", d.ID)
		return fmt.Errorf("start %q: no lines: %w", d.ID, ErrMissingData)
	}
	m.begin(actorID, d)
	return nil
}

// Continue moves to the next line, or past the last line to the choices,
// the next dialogue or the end of the session.
func (m *Manager) Continue() error {
	switch m.state {
	case PlayingLine:
	case AwaitingChoice:
		m.logger.Printf("[dialogue] WARN continue rejected: %q is waiting for a choice", m.session.Dialogue.ID)
		return fmt.Errorf("continue: choice required: %w", ErrInvalidTransition)
	default:
		m.logger.Printf("[dialogue] WARN continue rejected: %s", m.state)
		return fmt.Errorf("continue while %s: %w", m.state, ErrInvalidTransition)
	}

	m.cancelAdvance()
	s := m.session
	d := s.Dialogue
	s.LineIndex++

	switch {
	case s.LineIndex < len(d.Lines):
		idx := s.LineIndex
		m.bus.Publish(types.Event{
			Type:      types.EventDialogueProgress,
			SessionID: s.ID,
			ActorID:   s.ActorID,
			Dialogue:  d,
			Line:      &d.Lines[s.LineIndex],
			LineIndex: idx,
		})
		m.playLineIfCurrent(s, idx)
	case len(d.Choices) > 0:
		m.state = AwaitingChoice
		m.bus.Publish(types.Event{
			Type:      types.EventChoiceSelectionReady,
			SessionID: s.ID,
			ActorID:   s.ActorID,
			Dialogue:  d,
		})
	case d.Next != "":
		m.chain(d.Next)
	default:
		m.end()
	}
	return nil
}

// SelectChoice picks the choice at index while AwaitingChoice.
func (m *Manager) SelectChoice(index int) error {
	if m.state != AwaitingChoice {
		m.logger.Printf("[dialogue] WARN choice %d rejected: %s", index, m.state)
		return fmt.Errorf("select choice while %s: %w", m.state, ErrInvalidTransition)
	}
	s := m.session
	d := s.Dialogue
	if index < 0 || index >= len(d.Choices) {
		m.logger.Printf("[dialogue] ERROR choice %d out of range for %q (%d choices)", index, d.ID, len(d.Choices))
		return fmt.Errorf("choice %d of %q: %w", index, d.ID, ErrMissingData)
	}

	c := d.Choices[index]
	target := graph.ChoiceTargetID(d, c)
	var next *types.Dialogue
	if c.Next != "" {
		next, _ = m.graph.Dialogue(c.Next)
	}
	m.bus.Publish(types.Event{
		Type:      types.EventChoiceSelected,
		SessionID: s.ID,
		ActorID:   s.ActorID,
		Dialogue:  d,
		Choice:    index,
		Next:      next,
	})
	if m.session != s {
		return nil
	}

	if target == "" {
		m.end()
		return nil
	}
	m.chain(target)
	return nil
}

// End tears the active session down.
func (m *Manager) End() error {
	if m.state == Idle || m.state == Ending {
		m.logger.Printf("[dialogue] WARN end rejected: %s", m.state)
		return fmt.Errorf("end while %s: %w", m.state, ErrInvalidTransition)
	}
	m.end()
	return nil
}

func (m *Manager) begin(actorID string, d *types.Dialogue) {
	s := &Session{ID: ulid.Make().String(), ActorID: actorID, Dialogue: d}
	m.session = s
	m.timers = schedule.NewGroup(m.sched)
	m.state = PlayingLine

	m.bus.Publish(types.Event{
		Type:      types.EventDialogueStart,
		SessionID: s.ID,
		ActorID:   actorID,
		Dialogue:  d,
		Line:      &d.Lines[0],
	})
	m.playLineIfCurrent(s, 0)
}

// playLineIfCurrent plays line idx of s unless a handler of the event just
// published moved the manager elsewhere. A line skipped that way never plays
// its audio or effects.
func (m *Manager) playLineIfCurrent(s *Session, idx int) {
	if m.session != s || s.LineIndex != idx || m.state != PlayingLine {
		return
	}
	m.playLine()
}

// chain supersedes the session with a new one on dialogue id for the same
// actor. A dangling id or an empty dialogue ends the session instead.
func (m *Manager) chain(id string) {
	s := m.session
	next, ok := m.graph.Dialogue(id)
	if !ok || len(next.Lines) == 0 {
		m.logger.Printf("[dialogue] ERROR next dialogue %q of %q is missing or has no lines", id, s.Dialogue.ID)
		m.end()
		return
	}
	m.cancelAdvance()
	m.timers.CancelAll()
	m.begin(s.ActorID, next)
}

func (m *Manager) end() {
	s := m.session
	m.state = Ending
	m.bus.Publish(types.Event{
		Type:      types.EventDialogueEnd,
		SessionID: s.ID,
		ActorID:   s.ActorID,
		Dialogue:  s.Dialogue,
	})
	m.cancelAdvance()
	if m.timers != nil {
		m.timers.CancelAll()
	}
	m.session = nil
	m.timers = nil
	m.state = Idle
}

// playLine runs the side effects of the session's current line: its audio,
// its effects and, for a non-negative display duration, the auto-advance.
func (m *Manager) playLine() {
	s := m.session
	line := &s.Dialogue.Lines[s.LineIndex]
	ctx := effects.LineContext{
		SessionID: s.ID,
		ActorID:   s.ActorID,
		Dialogue:  s.Dialogue,
		LineIndex: s.LineIndex,
		Live:      m.liveFunc(s.ID),
	}

	m.player.PlayLineAudio(line.Audio, ctx)
	for _, eff := range line.Effects {
		m.player.Schedule(m.timers, eff, ctx)
	}

	if line.DisplayDuration < 0 {
		return
	}
	idx := s.LineIndex
	m.advance = m.timers.AfterFunc(line.DisplayDuration, func() {
		if m.session == nil || m.session.ID != s.ID || m.session.LineIndex != idx {
			return
		}
		m.advance = nil
		if err := m.Continue(); err != nil {
			m.logger.Printf("[dialogue] WARN auto-advance of %q: %v", s.Dialogue.ID, err)
		}
	})
}

func (m *Manager) cancelAdvance() {
	if m.advance != nil {
		m.advance.Cancel()
		m.advance = nil
	}
}

func (m *Manager) liveFunc(id string) func() bool {
	return func() bool { return m.session != nil && m.session.ID == id }
}

func dialogueID(d *types.Dialogue) string {
	if d == nil {
		return ""
	}
	return d.ID
}
