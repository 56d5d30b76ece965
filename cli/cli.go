// Package cli provides line-based terminal I/O, trace output and meta-command
// dispatch for the Parley dialogue engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	// Tasks delivers callbacks from a realtime scheduler. Nil when the
	// engine runs on a virtual clock.
	Tasks <-chan func()

	lastCmd string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run shows the intro and the cast, then loops: prompt → input → dispatch →
// output. Scheduled lines and effects are printed as they fire.
func (c *CLI) Run() {
	game := c.Engine.Graph.Game
	if game.Intro != "" {
		c.printLine(game.Intro)
		c.printLine("")
	}
	c.printResult(c.Engine.Drain())
	c.printResult(c.Engine.Step("look"))

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	c.print("> ")
	for {
		select {
		case task, ok := <-c.Tasks:
			if !ok {
				c.Tasks = nil
				continue
			}
			r := c.Engine.Run(task)
			if len(r.Output) > 0 || (c.Trace && len(r.Events) > 0) {
				c.printLine("")
				c.printResult(r)
				c.print("> ")
			}

		case raw, ok := <-lines:
			if !ok {
				return
			}
			if c.handleInput(raw) {
				return
			}
			c.print("> ")
		}
	}
}

// handleInput processes one input line. Returns true if the session should
// exit.
func (c *CLI) handleInput(raw string) bool {
	input := strings.TrimSpace(raw)
	// Skip comment lines (for script files).
	if strings.HasPrefix(input, "#") {
		return false
	}
	if c.EchoInput {
		c.printLine(input)
	}

	// Meta-commands start with '/'.
	if strings.HasPrefix(input, "/") {
		return c.handleMeta(input)
	}

	// "again" / "g" repeats the last command.
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if c.lastCmd == "" {
			c.printLine("Nothing to repeat.")
			return false
		}
		input = c.lastCmd
	} else if input != "" {
		c.lastCmd = input
	}

	c.printResult(c.Engine.Step(input))
	return false
}

// handleMeta dispatches meta-commands. Returns true if the session should
// exit.
func (c *CLI) handleMeta(input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		out, ok := c.Engine.Meta(input)
		if !ok {
			c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
			break
		}
		for _, line := range out {
			c.printSystem(line)
		}
	}
	return false
}

func (c *CLI) cmdHelp() {
	c.printLine("System:")
	c.printLine("  /quit                      Exit")
	c.printLine("  /help                      Show this help")
	c.printLine("  /trace                     Toggle event trace output")
	for _, line := range engine.MetaHelp {
		c.printLine(line)
	}
	c.printLine("")
	c.printLine("Commands:")
	for _, line := range engine.CommandHelp {
		c.printLine(line)
	}
	c.printLine("  again (g)                    Repeat your last command")
}

func (c *CLI) printTrace(result types.Result) {
	for _, ev := range result.Events {
		c.printSystem("[trace] " + TraceLine(ev))
	}
}

// TraceLine renders an event as a single debug line.
func TraceLine(ev types.Event) string {
	var b strings.Builder
	b.WriteString(string(ev.Type))
	if ev.ActorID != "" {
		fmt.Fprintf(&b, " actor=%s", ev.ActorID)
	}
	if ev.Dialogue != nil {
		fmt.Fprintf(&b, " dialogue=%s", ev.Dialogue.ID)
	}
	switch ev.Type {
	case types.EventDialogueProgress:
		fmt.Fprintf(&b, " index=%d", ev.LineIndex)
	case types.EventChoiceSelected:
		fmt.Fprintf(&b, " choice=%d", ev.Choice)
	}
	if ev.Next != nil {
		fmt.Fprintf(&b, " next=%s", ev.Next.ID)
	}
	if ev.Clip != "" {
		fmt.Fprintf(&b, " clip=%s", ev.Clip)
	}
	if ev.Visual != "" {
		fmt.Fprintf(&b, " visual=%s duration=%s", ev.Visual, ev.Duration)
	}
	return b.String()
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
	if c.Trace {
		c.printTrace(result)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
