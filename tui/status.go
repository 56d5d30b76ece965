package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/parley/engine/dialogue"
)

// statusLeft describes the conversation: who is talking and where in the
// dialogue the player is.
func (m Model) statusLeft() string {
	title := m.engine.Graph.Game.Title
	s, ok := m.engine.Manager.Session()
	if !ok {
		return fmt.Sprintf(" %s", title)
	}
	who := s.ActorID
	if a, ok := m.engine.Actors[s.ActorID]; ok {
		who = a.Name()
	}
	switch m.engine.Manager.State() {
	case dialogue.AwaitingChoice:
		return fmt.Sprintf(" %s | %s | choose 1-%d", title, who, len(s.Dialogue.Choices))
	default:
		return fmt.Sprintf(" %s | %s | line %d/%d", title, who, s.LineIndex+1, len(s.Dialogue.Lines))
	}
}

// statusRight shows the manager state and, on a virtual clock, its time.
func (m Model) statusRight() string {
	st := m.engine.Manager.State().String()
	if clock := m.engine.Clock(); clock != nil {
		return fmt.Sprintf("%s | t=%s ", st, clock.Now().Truncate(100*time.Millisecond))
	}
	return st + " "
}

// renderStatusBar produces a full-width inverted status line.
func (m Model) renderStatusBar() string {
	left := m.statusLeft()
	right := m.statusRight()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := styleStatusBar.Render(left+strings.Repeat(" ", gap)) + styleStatusState.Render(right)
	return styleStatusBar.Width(m.width).Render(bar)
}
