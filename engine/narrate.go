package engine

import (
	"fmt"
	"time"

	"github.com/nathoo/parley/types"
)

// onEvent records every bus event and narrates the ones a player sees.
func (e *Engine) onEvent(ev types.Event) {
	e.pending = append(e.pending, ev)

	switch ev.Type {
	case types.EventDialogueStart, types.EventDialogueProgress:
		if ev.Line != nil {
			e.narrateLine(ev.ActorID, ev.Line)
		}

	case types.EventChoiceSelectionReady:
		for i, c := range ev.Dialogue.Choices {
			e.say(fmt.Sprintf("  %d. %s", i+1, c.Text))
		}

	case types.EventChoiceSelected:
		if ev.Choice >= 0 && ev.Choice < len(ev.Dialogue.Choices) {
			e.say("> " + ev.Dialogue.Choices[ev.Choice].Text)
		}

	case types.EventDialogueEnd:
		e.say(fmt.Sprintf("(%s ends the conversation.)", e.actorName(ev.ActorID)))

	case types.EventAudioClipPlayed, types.EventLineSoundEffectPlayed:
		e.say("♪ " + ev.Clip)

	case types.EventLineVisualEffectPlayed:
		e.say(fmt.Sprintf("* %s *%s", ev.Visual, durationSuffix(ev.Duration)))
	}
}

func (e *Engine) narrateLine(actorID string, line *types.Line) {
	if line.Expression != "" && line.Expression != e.expressions[actorID] {
		e.expressions[actorID] = line.Expression
		if ex, ok := e.Graph.Expression(line.Expression); ok {
			e.say(fmt.Sprintf("(%s looks %s)", e.actorName(actorID), expressionLabel(ex)))
		}
	}
	e.say(fmt.Sprintf("%s: %q", e.actorName(actorID), line.Text))
}

// expressionLabel names an expression by its animation, sprite or id.
func expressionLabel(ex *types.Expression) string {
	switch {
	case ex.Animation != "":
		return ex.Animation
	case ex.Sprite != "":
		return ex.Sprite
	}
	return ex.ID
}

func durationSuffix(d time.Duration) string {
	if d < 0 {
		return " (until you continue)"
	}
	if d == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", d)
}
