package music

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/mednis/medsbot/internal/core"
)

const loadTimeout = 30 * time.Second

func (c *MusicCommand) play(ctx *core.SlashInteractionContext, url string) error {
	session, event := ctx.Session, ctx.Event
	vs, ok, err := c.inVoice(ctx)
	if !ok {
		return err
	}
	if err := core.DeferResponse(session, event, false); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	player := c.Voice.Player(event.GuildID)
	if err := player.Connect(loadCtx, vs.ChannelID); err != nil {
		log.Error("Failed to join voice", "guild", event.GuildID, "channel", vs.ChannelID, "err", err)
		return core.EditResponse(session, event, "🎵 Error: I couldn't join your voice channel.")
	}
	track, err := player.Load(loadCtx, url)
	if err != nil {
		log.Warn("Failed to load track", "url", url, "err", err)
		return core.EditResponse(session, event, fmt.Sprintf("🎵 Error: failed to load `%s`.", url))
	}

	idle := player.Current() == nil
	player.Append(track)
	if err := player.Play(context.Background()); err != nil {
		return err
	}
	if idle {
		return core.EditResponseEmbed(session, event, musicEmbed("▶️ Now Playing", "🎶 "+trackLine(track)))
	}
	return core.EditResponseEmbed(session, event, musicEmbed("➕ Track Added",
		fmt.Sprintf("🎶 %s\n%s in the queue", trackLine(track), humanize.Ordinal(len(player.Queue())))))
}
