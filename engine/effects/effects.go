// Package effects plays the timed audio/visual cues attached to dialogue
// lines. Each effect is delayed from the line's display start independently
// of line advance.
package effects

import (
	"time"

	"github.com/nathoo/parley/engine/audio"
	"github.com/nathoo/parley/engine/events"
	"github.com/nathoo/parley/engine/schedule"
	"github.com/nathoo/parley/types"
)

// LineContext identifies the line an effect belongs to.
type LineContext struct {
	SessionID string
	ActorID   string
	Dialogue  *types.Dialogue
	LineIndex int

	// Live reports whether the session is still current. A deferred effect
	// whose session is gone is dropped. Nil means always live.
	Live func() bool
}

func (c LineContext) live() bool {
	return c.Live == nil || c.Live()
}

// Player routes clips to the owned channel, or delegates them as events.
type Player struct {
	bus      *events.Bus
	channel  audio.Channel
	internal bool
}

// NewPlayer creates a player. When internal is true every clip is played on
// channel; otherwise clips are published on bus for an external backend.
func NewPlayer(bus *events.Bus, channel audio.Channel, internal bool) *Player {
	return &Player{bus: bus, channel: channel, internal: internal}
}

// PlaysInternally reports whether clips go to the owned channel.
func (p *Player) PlaysInternally() bool { return p.internal }

// PlayLineAudio plays a line's voice clip. Empty clips are ignored.
func (p *Player) PlayLineAudio(clip string, ctx LineContext) {
	p.play(clip, types.EventAudioClipPlayed, ctx)
}

// Schedule plays eff after its delay (clamped to zero) and returns the
// handle. The handle is tracked by g so the session can cancel it.
func (p *Player) Schedule(g *schedule.Group, eff types.Effect, ctx LineContext) schedule.Handle {
	return g.AfterFunc(ClampDelay(eff.Delay), func() {
		if !ctx.live() {
			return
		}
		p.Fire(eff, ctx)
	})
}

// Fire plays eff immediately: its sound, then its visual payload.
func (p *Player) Fire(eff types.Effect, ctx LineContext) {
	p.play(eff.Sound, types.EventLineSoundEffectPlayed, ctx)

	if eff.Visual != "" {
		p.bus.Publish(types.Event{
			Type:      types.EventLineVisualEffectPlayed,
			SessionID: ctx.SessionID,
			ActorID:   ctx.ActorID,
			Dialogue:  ctx.Dialogue,
			LineIndex: ctx.LineIndex,
			Visual:    eff.Visual,
			Duration:  eff.Duration,
		})
	}
}

func (p *Player) play(clip string, delegated types.EventType, ctx LineContext) {
	if clip == "" {
		return
	}
	if p.internal {
		p.channel.PlayOneShot(clip)
		return
	}
	p.bus.Publish(types.Event{
		Type:      delegated,
		SessionID: ctx.SessionID,
		ActorID:   ctx.ActorID,
		Dialogue:  ctx.Dialogue,
		LineIndex: ctx.LineIndex,
		Clip:      clip,
	})
}

// ClampDelay returns d, or zero when d is negative.
func ClampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
