package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusState = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(lipgloss.Color("228"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	styleSpeaker = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	styleCue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Italic(true)

	styleStage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")).
			Italic(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindYouSee
	kindDialogue
	kindChoice
	kindCue
	kindStage
	kindSystem
	kindError
	kindTrace
)

// errorPrefixes start the engine's refusal messages, lower-cased.
var errorPrefixes = []string{
	"you don't see",
	"nobody here",
	"i don't understand",
	"choose a number",
	"there is nothing to choose",
	"nobody is talking",
	"you are already in a conversation",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "♪ "), strings.HasPrefix(line, "* "):
		return kindCue
	case strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")"):
		return kindStage
	case isChoiceLine(line):
		return kindChoice
	case speakerSplit(line) > 0:
		return kindDialogue
	}
	lower := strings.ToLower(line)
	for _, p := range errorPrefixes {
		if strings.HasPrefix(lower, p) {
			return kindError
		}
	}
	return kindNarration
}

// isChoiceLine matches "  3. text".
func isChoiceLine(line string) bool {
	rest := strings.TrimPrefix(line, "  ")
	if len(rest) == len(line) {
		return false
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(rest[i:], ". ")
}

// speakerSplit returns the index of `: "` in `Name: "text"`, or -1.
func speakerSplit(line string) int {
	if !strings.HasSuffix(line, `"`) {
		return -1
	}
	return strings.Index(line, `: "`)
}

// styledYouSee renders "You see: a, b." with the names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleNarration.Render(line)
	}
	return styleNarration.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledDialogue renders the speaker name apart from the quoted line.
func styledDialogue(line string) string {
	i := speakerSplit(line)
	if i <= 0 {
		return styleDialogue.Render(line)
	}
	return styleSpeaker.Render(line[:i+1]) + styleDialogue.Render(line[i+1:])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
