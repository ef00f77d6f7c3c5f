package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	embed "github.com/Clinet/discordgo-embed"
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
	engine "github.com/mednis/medsbot/internal/tts"
)

type SettingsCommand struct {
	HTTP *http.Client
}

func (c *SettingsCommand) Name() string        { return "tts_settings" }
func (c *SettingsCommand) Description() string { return "TTS Settings" }
func (c *SettingsCommand) Aliases() []string   { return []string{} }
func (c *SettingsCommand) Group() string       { return group }
func (c *SettingsCommand) Category() string    { return config.CategoryVoice }
func (c *SettingsCommand) RequireAdmin() bool  { return true }
func (c *SettingsCommand) RequireDev() bool    { return false }

func intOption(name, desc string, min, max float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: desc,
		Required:    true,
		MinValue:    &min,
		MaxValue:    max,
	}
}

func stringOption(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    true,
	}
}

func subcommand(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: desc,
		Options:     opts,
	}
}

func (c *SettingsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("set_voice", "Set the TTS voice for a user.",
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member", Required: true,
				},
				stringOption("voice", "Voice name"),
			),
			subcommand("max_message_length", "The maximum length of a TTS message.",
				intOption("length", "Characters", 1, 2000)),
			subcommand("repeated_word_percentage", "The percentage of repeated words in a message for it to be filtered.",
				intOption("percentage", "Percent", 0, 100)),
			subcommand("max_word_length", "The maximum length of a word for it to be filtered.",
				intOption("length", "Characters", 1, 200)),
			subcommand("say_name", "Whether to say the name of the user who sent the message.",
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionBoolean, Name: "say_name", Description: "Say the name", Required: true,
				},
			),
			subcommand("add_word", "Add a word substitution",
				stringOption("source", "Word to replace"), stringOption("substitution", "Replacement")),
			subcommand("remove_word", "Remove a word substitution", stringOption("source", "Word")),
			subcommand("add_name", "Add a name substitution",
				stringOption("source", "Name to replace"), stringOption("substitution", "Replacement")),
			subcommand("remove_name", "Remove a name substitution", stringOption("source", "Name")),
			subcommand("show", "Show current settings."),
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "global",
				Description: "Bot-wide speech settings",
				Options: []*discordgo.ApplicationCommandOption{
					subcommand("export", "Download the current global settings."),
					subcommand("import", "Upload edited global settings.",
						&discordgo.ApplicationCommandOption{
							Type:        discordgo.ApplicationCommandOptionAttachment,
							Name:        "file",
							Description: "tts_settings.json",
							Required:    true,
						},
					),
				},
			},
		},
	}
}

func (c *SettingsCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	guildID := event.GuildID

	sub, opts := core.Subcommand(event.ApplicationCommandData().Options)
	switch sub {
	case "show":
		settings, err := st.TTSSettings(guildID)
		if err != nil {
			return err
		}
		return core.RespondComplex(session, event, &discordgo.InteractionResponseData{
			Embeds:          []*discordgo.MessageEmbed{showEmbed(settings)},
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})

	case "set_voice":
		userID, voice := opts.ID("user"), opts.String("voice")
		if err := st.SetVoice(userID, voice); err != nil {
			return err
		}
		return core.RespondComplex(session, event, &discordgo.InteractionResponseData{
			Content:         fmt.Sprintf("Set TTS voice for <@%s> to `%s`.", userID, voice),
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})

	case "global export", "global import":
		user := core.InteractionUser(event)
		if user == nil || !core.IsDeveloper(user.ID) {
			return core.RespondEphemeral(session, event, "You are not authorized to use this command.")
		}
		if sub == "global export" {
			return c.export(session, event, st)
		}
		return c.importSettings(session, event, st, opts)
	}

	var reply string
	err := st.UpdateTTS(guildID, func(s *storage.TTSGuildSettings) error {
		var err error
		reply, err = applySetting(sub, opts, s)
		return err
	})
	if err != nil {
		return err
	}
	return quiet(session, event, reply)
}

// applySetting changes one guild setting and returns the confirmation.
func applySetting(sub string, opts core.Options, s *storage.TTSGuildSettings) (string, error) {
	switch sub {
	case "max_message_length":
		s.MaxMessageLength = int(opts.Int("length", int64(s.MaxMessageLength)))
		return fmt.Sprintf("Set the maximum message length to %d characters.", s.MaxMessageLength), nil
	case "repeated_word_percentage":
		s.RepeatedWordPercentage = int(opts.Int("percentage", int64(s.RepeatedWordPercentage)))
		return fmt.Sprintf("Set the repeated word percentage to %d%%.", s.RepeatedWordPercentage), nil
	case "max_word_length":
		s.MaxWordLength = int(opts.Int("length", int64(s.MaxWordLength)))
		return fmt.Sprintf("Set the maximum word length to %d characters.", s.MaxWordLength), nil
	case "say_name":
		s.SayName = opts.Bool("say_name", s.SayName)
		return fmt.Sprintf("Set say name to %t.", s.SayName), nil
	case "add_word":
		return addSubstitution(s.WordReplacements, "word", opts.String("source"), opts.String("substitution")), nil
	case "remove_word":
		return removeSubstitution(s.WordReplacements, "word", opts.String("source")), nil
	case "add_name":
		return addSubstitution(s.NameReplacements, "name", opts.String("source"), opts.String("substitution")), nil
	case "remove_name":
		return removeSubstitution(s.NameReplacements, "name", opts.String("source")), nil
	}
	return "", fmt.Errorf("unknown tts_settings subcommand %q", sub)
}

func addSubstitution(table map[string]string, kind, source, substitution string) string {
	if _, ok := table[source]; ok {
		return fmt.Sprintf("Substitution already exists for %s `%s`", kind, source)
	}
	table[source] = substitution
	return fmt.Sprintf("Added %s substitution `%s`:`%s`.", kind, source, substitution)
}

func removeSubstitution(table map[string]string, kind, source string) string {
	if _, ok := table[source]; !ok {
		return fmt.Sprintf("`%s` does not have a %s substitution!", source, kind)
	}
	delete(table, source)
	return fmt.Sprintf("Removed %s substitution for `%s`", kind, source)
}

func (c *SettingsCommand) export(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage) error {
	global, err := st.TTSGlobal()
	if err != nil {
		return err
	}
	return core.RespondFile(s, i,
		"Here's the current global settings.\n"+
			"Edit this file then run `/tts_settings global import` with the file attached.\n"+
			"You can use `{voice}` and `{text}` as placeholders in the URL's!\n",
		"tts_settings.json", engine.GlobalSettingsJSON(global), true)
}

func (c *SettingsCommand) importSettings(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage, opts core.Options) error {
	att := core.Attachment(i, opts, "file")
	if att == nil || !strings.Contains(att.ContentType, "application/json") {
		return core.RespondEphemeral(s, i, "Invalid file format. Please upload a JSON file.")
	}
	if err := core.DeferResponse(s, i, true); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	data, err := core.FetchAttachment(ctx, c.HTTP, att)
	if err != nil {
		return core.EditResponse(s, i, fmt.Sprintf("An error occurred: %v", err))
	}

	global, err := engine.ParseGlobalSettings(data)
	var settingsErr *engine.SettingsError
	if errors.As(err, &settingsErr) {
		return core.EditResponse(s, i, settingsErr.Msg)
	}
	if err != nil {
		return err
	}
	if err := st.UpdateGlobal(func(g *storage.GlobalRecord) error {
		g.TTS = global
		return nil
	}); err != nil {
		return err
	}
	return core.EditResponse(s, i, "Settings file uploaded and saved!")
}

func showEmbed(s storage.TTSGuildSettings) *discordgo.MessageEmbed {
	general := fmt.Sprintf(
		"Say Sender Name Before Message: `%t`\n"+
			"Maximum Message Length: `%d` characters\n"+
			"Maximum Word Length: `%d` characters\n"+
			"Maximum Repeated Words: `%d%%`\n"+
			"Global TTS Volume: `%d%%`\n",
		s.SayName, s.MaxMessageLength, s.MaxWordLength, s.RepeatedWordPercentage, s.Volume)

	e := embed.NewEmbed().
		SetTitle("Current TTS Settings").
		SetColor(core.EmbedColor).
		AddField("General Settings", general).
		AddField("Whitelisted Channels", mentions(s.WhitelistedChannels, "<#%s>")).
		AddField("Blacklisted Users", mentions(s.BlacklistedUsers, "<@%s>")).
		AddField("Name Replacements", replacementList(s.NameReplacements)).
		AddField("Word Replacements", replacementList(s.WordReplacements))
	e.Fields[1].Inline = true
	e.Fields[2].Inline = true
	return e.MessageEmbed
}

func mentions(ids []string, format string) string {
	if len(ids) == 0 {
		return "`None`"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf(format, id)
	}
	return strings.Join(parts, ", ")
}

func replacementList(table map[string]string) string {
	if len(table) == 0 {
		return "`None`"
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "- `%s`: `%s`\n", k, table[k])
	}
	return sb.String()
}
