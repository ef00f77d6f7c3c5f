package tts

import (
	"errors"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	engine "github.com/mednis/medsbot/internal/tts"
)

type SkipCommand struct {
	Engine *engine.Engine
	Voice  core.BotVoice
}

func (c *SkipCommand) Name() string        { return "skip_tts" }
func (c *SkipCommand) Description() string { return "Skip the current TTS message." }
func (c *SkipCommand) Aliases() []string   { return []string{} }
func (c *SkipCommand) Group() string       { return group }
func (c *SkipCommand) Category() string    { return config.CategoryVoice }
func (c *SkipCommand) RequireAdmin() bool  { return false }
func (c *SkipCommand) RequireDev() bool    { return false }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event
	user := core.InteractionUser(event)

	allowed, err := mayControl(context, c.Voice, user.ID)
	if err != nil || !allowed {
		return err
	}

	err = c.Engine.SkipSpeech(event.GuildID)
	if errors.Is(err, engine.ErrNoSpeechPlaying) {
		return core.RespondEphemeral(session, event, err.Error())
	}
	if err != nil {
		return err
	}
	return core.Respond(session, event, "Skipped TTS message!")
}

// mayControl reports whether the user is in voice and not blacklisted,
// replying with the reason when they are not.
func mayControl(ctx *core.SlashInteractionContext, bv core.BotVoice, userID string) (bool, error) {
	if _, err := bv.FindUserVoiceState(ctx.Event.GuildID, userID); err != nil {
		return false, core.RespondEphemeral(ctx.Session, ctx.Event, "You must be in a voice channel to use TTS. ❌")
	}
	settings, err := ctx.Storage.TTSSettings(ctx.Event.GuildID)
	if err != nil {
		return false, err
	}
	if slices.Contains(settings.BlacklistedUsers, userID) {
		return false, core.RespondEphemeral(ctx.Session, ctx.Event, "You are blacklisted from TTS. ❌")
	}
	return true, nil
}
