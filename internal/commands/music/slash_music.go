// Package music exposes /music, the general queue that shares each
// guild's voice player with the speech relay.
package music

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/voice"
)

const group = "music"

type MusicCommand struct {
	Voice core.BotVoice
}

func Register(bv core.BotVoice, executed metrics.Observer) {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&MusicCommand{Voice: bv},
			core.WithGroupAccessCheck(),
			core.WithGuildOnly(),
			core.WithAccessControl(),
			core.WithBotPermissionCheck(),
			core.WithCommandLogger(executed),
		),
	)
}

func (c *MusicCommand) Name() string        { return "music" }
func (c *MusicCommand) Description() string { return "Play music in your voice channel" }
func (c *MusicCommand) Aliases() []string   { return []string{} }
func (c *MusicCommand) Group() string       { return group }
func (c *MusicCommand) Category() string    { return config.CategoryMusic }
func (c *MusicCommand) RequireAdmin() bool  { return false }
func (c *MusicCommand) RequireDev() bool    { return false }

func (c *MusicCommand) BotPermissions() []int64 {
	return []int64{discordgo.PermissionVoiceConnect, discordgo.PermissionVoiceSpeak}
}

func (c *MusicCommand) SlashDefinition() *discordgo.ApplicationCommand {
	sub := func(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: desc,
			Options:     opts,
		}
	}
	minVolume := 0.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			sub("play", "Play a track or add it to the queue", &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "Link to a YouTube video or an audio file",
				Required:    true,
			}),
			sub("skip", "Skip to the next track"),
			sub("stop", "Clear the queue and leave the voice channel"),
			sub("pause", "Pause playback"),
			sub("resume", "Resume playback"),
			sub("queue", "Show the queue"),
			sub("volume", "Set the music volume", &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "volume",
				Description: "Percent",
				Required:    true,
				MinValue:    &minVolume,
				MaxValue:    voice.MaxVolume,
			}),
		},
	}
}

func (c *MusicCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	path, opts := core.Subcommand(context.Event.ApplicationCommandData().Options)
	switch path {
	case "play":
		return c.play(context, opts.String("url"))
	case "skip":
		return c.skip(context)
	case "queue":
		return c.queue(context)
	case "stop":
		return c.stop(context)
	case "pause", "resume":
		return c.pause(context, path == "pause")
	case "volume":
		return c.volume(context, int(opts.Int("volume", 100)))
	}
	return nil
}

// inVoice replies and returns false when the caller is not in a voice
// channel.
func (c *MusicCommand) inVoice(ctx *core.SlashInteractionContext) (*core.VoiceState, bool, error) {
	user := core.InteractionUser(ctx.Event)
	vs, err := c.Voice.FindUserVoiceState(ctx.Event.GuildID, user.ID)
	if err != nil {
		return nil, false, core.RespondEphemeral(ctx.Session, ctx.Event, "🎵 You must be in a voice channel to use this command.")
	}
	return vs, true, nil
}

func trackLine(t *voice.Track) string {
	title := t.Title
	if title == "" {
		title = t.URI
	}
	if strings.HasPrefix(t.URI, "http") {
		title = fmt.Sprintf("[%s](%s)", title, t.URI)
	}
	return fmt.Sprintf("%s `%s`", title, trackLength(t.Duration))
}

func trackLength(d time.Duration) string {
	if d <= 0 {
		return "live"
	}
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func musicEmbed(title, desc string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: desc, Color: core.EmbedColor}
}
