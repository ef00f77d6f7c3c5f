package music

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/voice"
)

const maxQueueLines = 15

func (c *MusicCommand) skip(ctx *core.SlashInteractionContext) error {
	if _, ok, err := c.inVoice(ctx); !ok {
		return err
	}
	player := c.Voice.Player(ctx.Event.GuildID)
	if cur := player.Current(); cur != nil && cur.Speech {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "🎵 A TTS message is playing, use `/skip_tts` to skip it.")
	}
	err := player.Skip()
	if errors.Is(err, voice.ErrNoTrackPlaying) {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "🎵 Nothing is playing.")
	}
	if err != nil {
		return err
	}
	return core.Respond(ctx.Session, ctx.Event, "⏭️ Skipped.")
}

func (c *MusicCommand) queue(ctx *core.SlashInteractionContext) error {
	player := c.Voice.Player(ctx.Event.GuildID)
	return core.RespondEmbed(ctx.Session, ctx.Event, musicEmbed("🎵 Queue", queueText(player.Current(), player.Queue())))
}

// queueText lists the current and upcoming music. Speech clips are only
// counted.
func queueText(current *voice.Track, queue []*voice.Track) string {
	var b strings.Builder
	if current != nil && !current.Speech {
		fmt.Fprintf(&b, "**Now playing:** %s\n\n", trackLine(current))
	}
	speech, shown, hidden := 0, 0, 0
	for _, t := range queue {
		switch {
		case t.Speech:
			speech++
		case shown < maxQueueLines:
			shown++
			fmt.Fprintf(&b, "%d. %s\n", shown, trackLine(t))
		default:
			hidden++
		}
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "...and %d more\n", hidden)
	}
	if speech > 0 {
		fmt.Fprintf(&b, "_%d TTS message(s) waiting_\n", speech)
	}
	if b.Len() == 0 {
		return "🎵 No tracks in queue."
	}
	return strings.TrimSuffix(b.String(), "\n")
}
