// Package tui provides a Bubble Tea terminal UI for the Parley dialogue
// engine.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/parley/cli"
	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Options configures how time reaches the engine.
type Options struct {
	// Tick advances a virtual clock by this much on every frame. Zero
	// leaves the clock to "wait".
	Tick time.Duration

	// Tasks delivers callbacks from a realtime scheduler.
	Tasks <-chan func()

	Trace bool
}

// Model is the Bubble Tea model for the Parley TUI.
type Model struct {
	engine *engine.Engine
	opts   Options

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro and timers)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// tickMsg advances the virtual clock.
type tickMsg time.Time

// taskMsg carries a realtime callback to run on the Update goroutine.
type taskMsg struct{ fn func() }

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		engine:  eng,
		opts:    opts,
		input:   ti,
		history: NewHistory(100),
		trace:   opts.Trace,
	}
	return m.appendOutput(gameOutputMsg{lines: m.introLines()})
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, opts Options) error {
	m := New(eng, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the cursor blink and the clock source. The engine is only
// touched from Update.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.engine.Virtual() && m.opts.Tick > 0 {
		cmds = append(cmds, m.tick())
	}
	if m.opts.Tasks != nil {
		cmds = append(cmds, m.listen())
	}
	return tea.Batch(cmds...)
}

// introLines renders the title, the intro text and the first look.
func (m Model) introLines() []string {
	game := m.engine.Graph.Game
	header := game.Title
	if game.Version != "" {
		header += " v" + game.Version
	}
	if game.Author != "" {
		header += " by " + game.Author
	}
	lines := []string{header, ""}

	if game.Intro != "" {
		lines = append(lines, game.Intro, "")
	}

	m.engine.Drain()
	result := m.engine.Step("look")
	return append(lines, result.Output...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// listen waits for the next realtime callback.
func (m Model) listen() tea.Cmd {
	tasks := m.opts.Tasks
	return func() tea.Msg {
		fn, ok := <-tasks
		if !ok {
			return nil
		}
		return taskMsg{fn: fn}
	}
}

// Update handles messages (key presses, window resize, timers, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case tickMsg:
		m = m.appendTimed(m.engine.Advance(m.opts.Tick))
		return m, m.tick()

	case taskMsg:
		m = m.appendTimed(m.engine.Run(msg.fn))
		return m, m.listen()

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line. An empty line continues
// the conversation.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if input != "" {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	result := m.engine.Step(input)
	m = m.appendOutput(gameOutputMsg{input: input, lines: m.withTrace(result)})
	return m, nil
}

// appendTimed adds output produced by timers. Quiet frames add nothing.
func (m Model) appendTimed(result types.Result) Model {
	lines := m.withTrace(result)
	if len(lines) == 0 {
		return m
	}
	return m.appendOutput(gameOutputMsg{lines: lines})
}

func (m Model) withTrace(result types.Result) []string {
	output := result.Output
	if m.trace {
		for _, ev := range result.Events {
			output = append(output, "[trace] "+cli.TraceLine(ev))
		}
	}
	return output
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindDialogue:
		return styledDialogue(line)
	case kindChoice:
		return styleChoice.Render(line)
	case kindCue:
		return styleCue.Render(line)
	case kindStage:
		return styleStage.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Widths are counted in runes.
func wordWrap(text string, width int) string {
	if width <= 0 || len([]rune(text)) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for i, word := range strings.Fields(text) {
		wLen := len([]rune(word))

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	}

	if out, ok := m.engine.Meta(input); ok {
		return out, false
	}
	return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
}

func (m *Model) cmdHelp() []string {
	help := []string{
		"System:",
		"  /quit                      Exit",
		"  /help                      Show this help",
		"  /trace                     Toggle event trace output",
	}
	help = append(help, engine.MetaHelp...)
	help = append(help, "", "Commands:")
	help = append(help, engine.CommandHelp...)
	help = append(help,
		"  again (g)                    Repeat your last command",
		"",
		"Enter on an empty line continues. PgUp/PgDn scroll, Up/Down recall commands.",
	)
	return help
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
