package tts

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

const maxVolume = 150

type VolumeCommand struct{}

func (c *VolumeCommand) Name() string        { return "tts_volume" }
func (c *VolumeCommand) Description() string { return "Set the TTS volume." }
func (c *VolumeCommand) Aliases() []string   { return []string{} }
func (c *VolumeCommand) Group() string       { return group }
func (c *VolumeCommand) Category() string    { return config.CategoryVoice }
func (c *VolumeCommand) RequireAdmin() bool  { return true }
func (c *VolumeCommand) RequireDev() bool    { return false }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			intOption("volume", "Percent", 0, maxVolume),
		},
	}
}

func (c *VolumeCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event
	opts := core.OptionMap(event.ApplicationCommandData().Options)
	volume := clampVolume(opts.Int("volume", 100))

	err := context.Storage.UpdateTTS(event.GuildID, func(s *storage.TTSGuildSettings) error {
		s.Volume = volume
		return nil
	})
	if err != nil {
		return err
	}
	return core.Respond(session, event, fmt.Sprintf("Set global TTS volume to `%d%%`!", volume))
}

func clampVolume(v int64) int {
	return int(min(max(v, 0), maxVolume))
}
