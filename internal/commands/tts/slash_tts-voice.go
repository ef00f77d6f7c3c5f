package tts

import (
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

const (
	voiceDisable = "disable"
	voiceExtra   = "Extra"
	// Discord caps autocomplete results at 25.
	maxChoices = 25
)

const readOutSuffix = "\nAny messages you type in the voice channel text channels or no-mic will be read out. ✅"

type VoiceCommand struct {
	Voice core.BotVoice
}

func (c *VoiceCommand) Name() string        { return "tts_voice" }
func (c *VoiceCommand) Description() string { return "Enable TTS for the current user." }
func (c *VoiceCommand) Aliases() []string   { return []string{} }
func (c *VoiceCommand) Group() string       { return group }
func (c *VoiceCommand) Category() string    { return config.CategoryVoice }
func (c *VoiceCommand) RequireAdmin() bool  { return false }
func (c *VoiceCommand) RequireDev() bool    { return false }

func (c *VoiceCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "voice",
				Description:  "The TTS voice you wish to use.",
				Required:     true,
				Autocomplete: true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "extra",
				Description:  "Extra voices not available in the regular list.",
				Autocomplete: true,
			},
		},
	}
}

// voiceChoice is the outcome of validating the voice options.
type voiceChoice struct {
	voice   string
	disable bool
	problem string
}

// chooseVoice validates the picked options against the voice lists.
func chooseVoice(global storage.TTSGlobalSettings, voice, extra string) voiceChoice {
	known := func(list []config.Voice, v string) bool {
		return slices.ContainsFunc(list, func(o config.Voice) bool { return o.Value == v })
	}
	if voice != voiceDisable && voice != voiceExtra && !known(global.RegularVoices, voice) {
		return voiceChoice{problem: "Invalid voice selected. ❌"}
	}
	if extra != "" && !known(global.ExtraVoices, extra) {
		return voiceChoice{problem: "Invalid extra voice selected. ❌"}
	}
	switch voice {
	case voiceDisable:
		return voiceChoice{disable: true}
	case voiceExtra:
		if extra == "" {
			return voiceChoice{problem: "You must select a voice to use TTS. ❌"}
		}
		return voiceChoice{voice: extra}
	}
	return voiceChoice{voice: voice}
}

// voiceReply applies choice to a user whose TTS is currently enabled or not
// and returns the new state with the confirmation.
func voiceReply(enabled bool, choice voiceChoice) (bool, string) {
	switch {
	case choice.disable && !enabled:
		return false, "TTS Was already disabled for you! ❌"
	case choice.disable:
		return false, "Disabled TTS! ❌"
	case !enabled:
		return true, "You have enabled TTS and sound like `" + choice.voice + "`. " + readOutSuffix
	}
	return true, "You have changed your TTS voice to `" + choice.voice + "`. " + readOutSuffix
}

func (c *VoiceCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	user := core.InteractionUser(event)

	settings, err := st.TTSSettings(event.GuildID)
	if err != nil {
		return err
	}
	if slices.Contains(settings.BlacklistedUsers, user.ID) {
		return core.RespondEphemeral(session, event, "You are blacklisted from TTS. ❌")
	}
	if _, err := c.Voice.FindUserVoiceState(event.GuildID, user.ID); err != nil {
		return core.RespondEphemeral(session, event, "You must be in a voice channel to use TTS. ❌")
	}

	global, err := st.TTSGlobal()
	if err != nil {
		return err
	}
	opts := core.OptionMap(event.ApplicationCommandData().Options)
	choice := chooseVoice(global, opts.String("voice"), opts.String("extra"))
	if choice.problem != "" {
		return core.RespondEphemeral(session, event, choice.problem)
	}

	rec, err := st.User(user.ID)
	if err != nil {
		return err
	}
	enabled, reply := voiceReply(rec.TTSEnabled, choice)
	err = st.UpdateUser(user.ID, func(u *storage.UserRecord) error {
		u.TTSEnabled = enabled
		if !choice.disable {
			u.Voice = choice.voice
		}
		return nil
	})
	if err != nil {
		return err
	}
	return core.RespondEphemeral(session, event, reply)
}

func (c *VoiceCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	global, err := ctx.Storage.TTSGlobal()
	if err != nil {
		return err
	}
	opts := core.OptionMap(ctx.Event.ApplicationCommandData().Options)
	focused, ok := opts.Focused()
	if !ok {
		return nil
	}
	list := global.RegularVoices
	if focused.Name == "extra" {
		list = global.ExtraVoices
	}
	return core.RespondChoices(ctx.Session, ctx.Event, voiceChoices(list, focused.StringValue()))
}

func voiceChoices(list []config.Voice, current string) []*discordgo.ApplicationCommandOptionChoice {
	current = strings.ToLower(current)
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, v := range list {
		if !strings.Contains(strings.ToLower(v.Name), current) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v.Name, Value: v.Value})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
