package reactionroles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	rr "github.com/mednis/medsbot/internal/reactionroles"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/pkg/snowflake"
)

type EmbedCommand struct {
	HTTP *http.Client
}

func (c *EmbedCommand) Name() string        { return "embed" }
func (c *EmbedCommand) Description() string { return "Embed and Reaction role management" }
func (c *EmbedCommand) Aliases() []string   { return []string{} }
func (c *EmbedCommand) Group() string       { return group }
func (c *EmbedCommand) Category() string    { return config.CategoryRoles }
func (c *EmbedCommand) RequireAdmin() bool  { return true }
func (c *EmbedCommand) RequireDev() bool    { return false }

func (c *EmbedCommand) BotPermissions() []int64 {
	return []int64{discordgo.PermissionSendMessages, discordgo.PermissionEmbedLinks}
}

func nameOption(autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "name",
		Description:  "Embed name",
		Required:     true,
		Autocomplete: autocomplete,
	}
}

func configOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        "config",
		Description: "Embed configuration (.json)",
	}
}

func (c *EmbedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	sub := func(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: desc,
			Options:     opts,
		}
	}
	emoji := &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "emoji",
		Description:  "Emoji",
		Required:     true,
		Autocomplete: true,
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			sub("create", "Create a new embed", nameOption(false), configOption(),
				&discordgo.ApplicationCommandOption{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel to post the embed in",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}),
			sub("edit", "Edit an existing embed", nameOption(true), configOption()),
			sub("remove", "Remove a existing embed", nameOption(true),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "delete_messages",
					Description: "Also delete the posted message",
				}),
			sub("add_reaction", "Add a reaction role to an existing embed", nameOption(true),
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Emoji", Required: true,
				},
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to grant", Required: true,
				},
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionBoolean, Name: "unique", Description: "Members may hold only one role of this embed",
				}),
			sub("remove_reaction", "Remove a reaction role from an existing embed", nameOption(true), emoji),
			sub("reaction_list", "List reaction roles", nameOption(true)),
		},
	}
}

func (c *EmbedCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	configs, err := ctx.Storage.EmbedConfigs(ctx.Event.GuildID)
	if err != nil {
		return err
	}
	_, opts := core.Subcommand(ctx.Event.ApplicationCommandData().Options)
	focused, ok := opts.Focused()
	if !ok {
		return nil
	}
	var choices []*discordgo.ApplicationCommandOptionChoice
	if focused.Name == "emoji" {
		choices = emojiChoices(configs, opts.String("name"), focused.StringValue())
	} else {
		choices = nameChoices(configs, focused.StringValue())
	}
	return core.RespondChoices(ctx.Session, ctx.Event, choices)
}

func nameChoices(configs []rr.EmbedConfig, current string) []*discordgo.ApplicationCommandOptionChoice {
	out := []*discordgo.ApplicationCommandOptionChoice{}
	for _, cfg := range configs {
		if strings.Contains(cfg.Name, current) && len(out) < 25 {
			out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: cfg.Name, Value: cfg.Name})
		}
	}
	return out
}

func emojiChoices(configs []rr.EmbedConfig, name, current string) []*discordgo.ApplicationCommandOptionChoice {
	idx := rr.Find(configs, name)
	if idx < 0 {
		return []*discordgo.ApplicationCommandOptionChoice{{Name: "No Embed", Value: "None"}}
	}
	if len(configs[idx].ReactionRoles) == 0 {
		return []*discordgo.ApplicationCommandOptionChoice{{Name: "No Reaction Roles", Value: "None"}}
	}
	var seen []string
	out := []*discordgo.ApplicationCommandOptionChoice{}
	for _, r := range configs[idx].ReactionRoles {
		if slices.Contains(seen, r.Emoji) || !strings.Contains(r.Emoji, current) {
			continue
		}
		seen = append(seen, r.Emoji)
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: r.Emoji, Value: r.Emoji})
	}
	return out
}

func missing(name string) string {
	return fmt.Sprintf("Embed `%s` does not exist.\nYou should create it using `/embed create %s`", name, name)
}

func configJSON(cfg rr.EmbedConfig) []byte {
	b, _ := json.MarshalIndent(cfg, "", "    ")
	return b
}

func (c *EmbedCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, i, st := sctx.Session, sctx.Event, sctx.Storage
	sub, opts := core.Subcommand(i.ApplicationCommandData().Options)
	name := opts.String("name")

	configs, err := st.EmbedConfigs(i.GuildID)
	if err != nil {
		return err
	}
	idx := rr.Find(configs, name)

	switch sub {
	case "create":
		if idx >= 0 {
			return core.Respond(s, i, fmt.Sprintf("Embed `%s` already exists."+
				"\nYou should modify it or remove it using `/embed edit %s` or `/embed remove %s`", name, name, name))
		}
		return c.create(s, i, st, opts, name)
	}

	if idx < 0 {
		return core.Respond(s, i, missing(name))
	}
	cfg := configs[idx]

	switch sub {
	case "edit":
		return c.edit(s, i, st, opts, cfg)
	case "remove":
		if opts.Bool("delete_messages", false) && !cfg.Message.IsZero() {
			if err := s.ChannelMessageDelete(cfg.Channel.String(), cfg.Message.String()); err != nil {
				return core.Respond(s, i, fmt.Sprintf("Error removing embed: `%v`", err))
			}
		}
		if err := saveConfigs(st, i.GuildID, func(list *[]rr.EmbedConfig) {
			if j := rr.Find(*list, name); j >= 0 {
				*list = slices.Delete(*list, j, j+1)
			}
		}); err != nil {
			return err
		}
		return core.Respond(s, i, fmt.Sprintf("Embed `%s` has been removed", name))
	case "add_reaction":
		return c.addReaction(s, i, st, opts, cfg)
	case "remove_reaction":
		emoji := rr.NormalizeEmoji(opts.String("emoji"))
		if len(cfg.ReactionRoles) == 0 {
			return core.Respond(s, i, fmt.Sprintf("Embed `%s` does not have any reaction roles", name))
		}
		if !cfg.RemoveEmoji(emoji) {
			return core.Respond(s, i, fmt.Sprintf("Reaction role for `%s` does not exist.", emoji))
		}
		_ = s.MessageReactionsRemoveEmoji(cfg.Channel.String(), cfg.Message.String(), rr.APIName(emoji))
		if err := replaceConfig(st, i.GuildID, cfg); err != nil {
			return err
		}
		return core.Respond(s, i, fmt.Sprintf("Reaction role removed for `%s`", emoji))
	case "reaction_list":
		return core.RespondComplex(s, i, &discordgo.InteractionResponseData{
			Content:         reactionList(cfg),
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})
	}
	return nil
}

func reactionList(cfg rr.EmbedConfig) string {
	if len(cfg.ReactionRoles) == 0 {
		return fmt.Sprintf("Embed `%s` does not have any reaction roles.", cfg.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reaction roles for `%s`:", cfg.Name)
	for _, r := range cfg.ReactionRoles {
		fmt.Fprintf(&sb, "\n- %s - <@&%s>", r.Emoji, r.Role)
		if r.Unique {
			sb.WriteString(" _(Unique)_")
		}
	}
	return sb.String()
}

func saveConfigs(st *storage.Storage, guildID string, fn func(*[]rr.EmbedConfig)) error {
	return st.UpdateEmbedConfigs(guildID, func(list *[]rr.EmbedConfig) error {
		fn(list)
		return nil
	})
}

// replaceConfig stores cfg over the embed with the same name.
func replaceConfig(st *storage.Storage, guildID string, cfg rr.EmbedConfig) error {
	return st.UpdateEmbedConfigs(guildID, func(list *[]rr.EmbedConfig) error {
		idx := rr.Find(*list, cfg.Name)
		if idx < 0 {
			return rr.ErrEmbedNotFound
		}
		(*list)[idx] = cfg
		return nil
	})
}

// upload reads and validates the config attachment. A non-empty message
// is the reason it was rejected.
func (c *EmbedCommand) upload(i *discordgo.InteractionCreate, opts core.Options) (rr.EmbedConfig, string, bool) {
	att := core.Attachment(i, opts, "config")
	if att == nil {
		return rr.EmbedConfig{}, "", false
	}
	if !strings.Contains(att.ContentType, "application/json") {
		return rr.EmbedConfig{}, "Invalid attachment type", true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data, err := core.FetchAttachment(ctx, c.HTTP, att)
	if err != nil {
		return rr.EmbedConfig{}, fmt.Sprintf("Error loading config: `%v`", err), true
	}
	cfg, err := rr.ParseConfig(data)
	if err != nil {
		return rr.EmbedConfig{}, fmt.Sprintf("Error loading config: `%v`", err), true
	}
	return cfg, "", true
}

func (c *EmbedCommand) create(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage, opts core.Options, name string) error {
	channelID := opts.ID("channel")

	if core.Attachment(i, opts, "config") == nil {
		cfg := rr.DefaultConfig(name)
		if channelID != "" {
			msg, err := s.ChannelMessageSendEmbed(channelID, rr.BuildEmbed(cfg))
			if err != nil {
				return core.Respond(s, i, fmt.Sprintf("Error posting embed: `%v`", err))
			}
			cfg.Channel, cfg.Message = snowflake.ID(channelID), snowflake.ID(msg.ID)
		}
		if err := saveConfigs(st, i.GuildID, func(list *[]rr.EmbedConfig) { *list = append(*list, cfg) }); err != nil {
			return err
		}
		return core.RespondFile(s, i,
			"Embed created, but there is no config provided. "+
				fmt.Sprintf("\nDownload and edit this config file, then upload it via `/embed edit %s`", name),
			"embed_"+name+".json", configJSON(cfg), true)
	}

	if err := core.DeferResponse(s, i, false); err != nil {
		return err
	}
	cfg, problem, _ := c.upload(i, opts)
	if problem != "" {
		return core.EditResponse(s, i, problem)
	}
	cfg.Name = name
	if channelID != "" {
		cfg.Channel = snowflake.ID(channelID)
	}
	if _, err := s.State.Channel(cfg.Channel.String()); err != nil {
		return core.EditResponse(s, i, "Invalid channel")
	}
	msg, err := s.ChannelMessageSendEmbed(cfg.Channel.String(), rr.BuildEmbed(cfg))
	if err != nil {
		return core.EditResponse(s, i, fmt.Sprintf("Error posting embed: `%v`", err))
	}
	cfg.Message = snowflake.ID(msg.ID)
	if err := saveConfigs(st, i.GuildID, func(list *[]rr.EmbedConfig) { *list = append(*list, cfg) }); err != nil {
		return err
	}
	return core.EditResponse(s, i, fmt.Sprintf("Embed `%s` has been created", name))
}

func (c *EmbedCommand) edit(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage, opts core.Options, old rr.EmbedConfig) error {
	if core.Attachment(i, opts, "config") == nil {
		return core.RespondFile(s, i,
			fmt.Sprintf("Download and edit this config file, then upload it via `/embed edit %s`", old.Name),
			"embed_"+old.Name+".json", configJSON(old), true)
	}
	if err := core.DeferResponse(s, i, false); err != nil {
		return err
	}
	cfg, problem, _ := c.upload(i, opts)
	if problem != "" {
		return core.EditResponse(s, i, problem)
	}
	cfg.Name, cfg.Channel, cfg.Message = old.Name, old.Channel, old.Message

	if !cfg.Message.IsZero() {
		if _, err := s.ChannelMessageEditEmbed(cfg.Channel.String(), cfg.Message.String(), rr.BuildEmbed(cfg)); err != nil {
			return core.EditResponse(s, i, fmt.Sprintf("Error updating embed: `%v`", err))
		}
	}
	if err := replaceConfig(st, i.GuildID, cfg); err != nil {
		return err
	}
	return core.EditResponse(s, i, fmt.Sprintf("Embed `%s` has been updated", cfg.Name))
}

func (c *EmbedCommand) addReaction(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage, opts core.Options, cfg rr.EmbedConfig) error {
	emoji := rr.NormalizeEmoji(opts.String("emoji"))
	roleID := opts.ID("role")

	if len(cfg.RolesForEmoji(emoji)) > 0 {
		return core.Respond(s, i, fmt.Sprintf("Reaction role for `%s` already exists. "+
			"Remove it with `/embed remove_reaction %s %s`", emoji, cfg.Name, emoji))
	}
	if problem := c.roleProblem(s, i, roleID); problem != "" {
		return core.RespondComplex(s, i, &discordgo.InteractionResponseData{
			Content:         problem,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})
	}

	err := s.MessageReactionAdd(cfg.Channel.String(), cfg.Message.String(), rr.APIName(emoji))
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil && rest.Message.Code == discordgo.ErrCodeUnknownEmoji {
		return core.Respond(s, i, fmt.Sprintf("Invalid emoji `%s` - I can only add Emoji from this server.", emoji))
	}
	if err != nil {
		return core.Respond(s, i, fmt.Sprintf("Error adding reaction: `%v`", err))
	}

	cfg.ReactionRoles = append(cfg.ReactionRoles, rr.ReactionRole{
		Emoji:  emoji,
		Role:   snowflake.ID(roleID),
		Unique: opts.Bool("unique", false),
	})
	if err := replaceConfig(st, i.GuildID, cfg); err != nil {
		return err
	}
	return core.RespondComplex(s, i, &discordgo.InteractionResponseData{
		Content:         fmt.Sprintf("Reaction role added for `%s` to <@&%s>", emoji, roleID),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}

// roleProblem checks that both the invoker and the bot may hand out roleID.
func (c *EmbedCommand) roleProblem(s *discordgo.Session, i *discordgo.InteractionCreate, roleID string) string {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageRoles == 0 {
		return "You do not have permission to manage roles"
	}
	if i.AppPermissions&discordgo.PermissionManageRoles == 0 {
		return "I do not have permission to manage roles"
	}
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		return ""
	}
	rolePos := rolePosition(guild.Roles, roleID)
	if bot, err := s.State.Member(i.GuildID, s.State.User.ID); err == nil {
		if top, topID := topRole(guild.Roles, bot.Roles); rolePos >= top {
			return fmt.Sprintf("Role <@&%s> is higher than the bot's top role <@&%s>", roleID, topID)
		}
	}
	if top, topID := topRole(guild.Roles, i.Member.Roles); rolePos >= top && guild.OwnerID != i.Member.User.ID {
		return fmt.Sprintf("Role <@&%s> is higher than your top role <@&%s>", roleID, topID)
	}
	return ""
}

func rolePosition(roles []*discordgo.Role, id string) int {
	for _, r := range roles {
		if r.ID == id {
			return r.Position
		}
	}
	return 0
}

// topRole returns the highest position among held and that role's ID.
// Everyone holds @everyone at position 0.
func topRole(roles []*discordgo.Role, held []string) (int, string) {
	pos, id := 0, ""
	for _, r := range roles {
		for _, h := range held {
			if r.ID == h && (id == "" || r.Position > pos) {
				pos, id = r.Position, r.ID
			}
		}
	}
	return pos, id
}
