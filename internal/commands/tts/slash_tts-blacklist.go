package tts

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

type BlacklistCommand struct{}

func (c *BlacklistCommand) Name() string        { return "tts_blacklist" }
func (c *BlacklistCommand) Description() string { return "Manage users who may not use TTS" }
func (c *BlacklistCommand) Aliases() []string   { return []string{} }
func (c *BlacklistCommand) Group() string       { return group }
func (c *BlacklistCommand) Category() string    { return config.CategoryVoice }
func (c *BlacklistCommand) RequireAdmin() bool  { return true }
func (c *BlacklistCommand) RequireDev() bool    { return false }

func (c *BlacklistCommand) SlashDefinition() *discordgo.ApplicationCommand {
	user := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "Member",
		Required:    true,
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add", "Add user to TTS blacklist", user),
			subcommand("remove", "Remove user from TTS blacklist", user),
			subcommand("list", "List blacklisted users"),
		},
	}
}

func (c *BlacklistCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage

	sub, opts := core.Subcommand(event.ApplicationCommandData().Options)
	switch sub {
	case "add", "remove":
		reply, err := toggleBlacklist(st, event.GuildID, opts.ID("user"), sub == "add")
		if err != nil {
			return err
		}
		return quiet(session, event, reply)
	case "list":
		settings, err := st.TTSSettings(event.GuildID)
		if err != nil {
			return err
		}
		return quiet(session, event, blacklistText(settings.BlacklistedUsers))
	}
	return nil
}

func toggleBlacklist(st *storage.Storage, guildID, userID string, add bool) (string, error) {
	mention := "<@" + userID + ">"
	if add {
		added, err := st.BlacklistTTSUser(guildID, userID)
		if err != nil {
			return "", err
		}
		if !added {
			return mention + " is already blacklisted!", nil
		}
		return fmt.Sprintf("Added user %s to blacklist!", mention), nil
	}
	removed, err := st.UnblacklistTTSUser(guildID, userID)
	if err != nil {
		return "", err
	}
	if !removed {
		return mention + " is not in the blacklist!", nil
	}
	return fmt.Sprintf("Removed %s from blacklist!", mention), nil
}

func blacklistText(ids []string) string {
	var sb strings.Builder
	sb.WriteString("## TTS Blacklisted users:\n")
	if len(ids) == 0 {
		sb.WriteString(" `None`")
		return sb.String()
	}
	for _, id := range ids {
		fmt.Fprintf(&sb, "- <@%s>\n", id)
	}
	return sb.String()
}

// BlacklistMenuCommand is the user context menu variant of tts_blacklist.
type BlacklistMenuCommand struct {
	Add bool
}

func (c *BlacklistMenuCommand) Name() string {
	if c.Add {
		return "TTS Blacklist Add"
	}
	return "TTS Blacklist Remove"
}

func (c *BlacklistMenuCommand) Description() string { return "" }
func (c *BlacklistMenuCommand) Aliases() []string   { return []string{} }
func (c *BlacklistMenuCommand) Group() string       { return group }
func (c *BlacklistMenuCommand) Category() string    { return config.CategoryVoice }
func (c *BlacklistMenuCommand) RequireAdmin() bool  { return true }
func (c *BlacklistMenuCommand) RequireDev() bool    { return false }

func (c *BlacklistMenuCommand) ContextDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name: c.Name(),
		Type: discordgo.UserApplicationCommand,
	}
}

func (c *BlacklistMenuCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.UserApplicationCommandContext)
	if !ok || context.Target == nil {
		return nil
	}
	reply, err := toggleBlacklist(context.Storage, context.Event.GuildID, context.Target.ID, c.Add)
	if err != nil {
		return err
	}
	return core.RespondComplex(context.Session, context.Event, &discordgo.InteractionResponseData{
		Content:         reply,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}
