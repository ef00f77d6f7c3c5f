package music

import (
	"fmt"

	"github.com/mednis/medsbot/internal/core"
)

func (c *MusicCommand) stop(ctx *core.SlashInteractionContext) error {
	if _, ok, err := c.inVoice(ctx); !ok {
		return err
	}
	player := c.Voice.Player(ctx.Event.GuildID)
	player.Disconnect()
	return core.Respond(ctx.Session, ctx.Event, "⏹️ Stopped and cleared the queue.")
}

func (c *MusicCommand) pause(ctx *core.SlashInteractionContext, paused bool) error {
	if _, ok, err := c.inVoice(ctx); !ok {
		return err
	}
	player := c.Voice.Player(ctx.Event.GuildID)
	if player.Current() == nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "🎵 Nothing is playing.")
	}
	if player.Paused() == paused {
		return core.RespondEphemeral(ctx.Session, ctx.Event, pauseText(paused, false))
	}
	player.SetPaused(paused)
	return core.Respond(ctx.Session, ctx.Event, pauseText(paused, true))
}

func pauseText(paused, changed bool) string {
	switch {
	case paused && changed:
		return "⏸️ Paused."
	case paused:
		return "🎵 Already paused."
	case changed:
		return "▶️ Resumed."
	default:
		return "🎵 Not paused."
	}
}

func (c *MusicCommand) volume(ctx *core.SlashInteractionContext, v int) error {
	player := c.Voice.Player(ctx.Event.GuildID)
	if err := player.SetVolume(v); err != nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "🎵 "+err.Error())
	}
	return core.Respond(ctx.Session, ctx.Event, fmt.Sprintf("🔊 Music volume set to `%d%%`.", v))
}
