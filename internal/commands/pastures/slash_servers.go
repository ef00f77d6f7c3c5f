package pastures

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/pastures"
	"github.com/mednis/medsbot/internal/reactionroles"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/pkg/snowflake"
)

type ServersCommand struct {
	Bridge *Bridge
}

func (c *ServersCommand) Name() string        { return "servers" }
func (c *ServersCommand) Description() string { return "Server management commands" }
func (c *ServersCommand) Aliases() []string   { return []string{} }
func (c *ServersCommand) Group() string       { return group }
func (c *ServersCommand) Category() string    { return config.CategoryMinecraft }
func (c *ServersCommand) RequireAdmin() bool  { return true }
func (c *ServersCommand) RequireDev() bool    { return false }

func (c *ServersCommand) BotPermissions() []int64 {
	return []int64{discordgo.PermissionSendMessages, discordgo.PermissionEmbedLinks}
}

func str(name, desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    required,
	}
}

func configOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        "config",
		Description: "Server configuration (.json)",
	}
}

func sub(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: desc,
		Options:     opts,
	}
}

func (c *ServersCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			sub("add", "Add a server to the bot!",
				str("server", "Server name", true), str("ip", "RCON address host:port", true),
				str("key", "RCON password", true), configOption()),
			sub("list", "List all servers added to the bot!"),
			sub("edit", "Edit a saved servers configuration!",
				serverOption(true), str("ip", "RCON address host:port", false),
				str("key", "RCON password", false), configOption()),
			sub("show", "Show a servers configuration!", serverOption(false)),
			sub("set_emote", "Set the emote for one-click whitelisting!",
				serverOption(true), str("emote", "Emoji", true)),
			sub("remove", "Remove a server from the bot!", serverOption(true)),
			sub("status_channel", "Post the live status message of a server",
				serverOption(true),
				&discordgo.ApplicationCommandOption{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel for the status message",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}),
			sub("status_clear", "Remove the live status message of a server", serverOption(true)),
			sub("roles", "Set the moderation and whitelisted roles",
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionRole, Name: "moderation_role",
					Description: "Role allowed to manage whitelists", Required: true,
				},
				&discordgo.ApplicationCommandOption{
					Type: discordgo.ApplicationCommandOptionRole, Name: "whitelisted_role",
					Description: "Role granted by one-click whitelisting",
				}),
			sub("log_channel", "Set the channel whitelist actions are logged to",
				&discordgo.ApplicationCommandOption{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Logging channel",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}),
		},
	}
}

func (c *ServersCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	return autocompleteServers(ctx)
}

func (c *ServersCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, i, st := context.Session, context.Event, context.Storage
	name, opts := core.Subcommand(i.ApplicationCommandData().Options)
	server := opts.String("server")

	switch name {
	case "add", "edit":
		var cfg *pastures.ServerConfig
		if att := core.Attachment(i, opts, "config"); att != nil {
			parsed, msg := c.readConfig(att)
			if msg != "" {
				return core.Respond(s, i, msg)
			}
			cfg = &parsed
		}
		var reply string
		err := st.UpdatePastures(i.GuildID, func(p *pastures.Settings) error {
			if name == "add" {
				reply = addServer(p, server, opts.String("ip"), opts.String("key"), cfg)
			} else {
				reply = editServer(p, server, opts.String("ip"), opts.String("key"), cfg)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return core.Respond(s, i, reply)

	case "list":
		settings, err := st.Pastures(i.GuildID)
		if err != nil {
			return err
		}
		return core.Respond(s, i, serverList(settings))

	case "show":
		return c.show(s, i, st, server)

	case "set_emote":
		emote := reactionroles.NormalizeEmoji(opts.String("emote"))
		if !looksLikeEmoji(emote) {
			return core.Respond(s, i, "Invalid emote!")
		}
		found, err := updateServer(st, i.GuildID, server, func(srv *pastures.Server) {
			srv.Config.OneClickEmoji = emote
		})
		if err != nil || !found {
			return notFound(s, i, server, err)
		}
		return core.Respond(s, i, fmt.Sprintf("Emote for %s set to %s", server, emote))

	case "remove":
		removed := false
		err := st.UpdatePastures(i.GuildID, func(p *pastures.Settings) error {
			_, removed = p.Servers[server]
			delete(p.Servers, server)
			return nil
		})
		if err != nil || !removed {
			return notFound(s, i, server, err)
		}
		return core.Respond(s, i, "Server removed!")

	case "status_channel":
		return c.postStatus(s, i, st, server, opts.ID("channel"))

	case "status_clear":
		var old pastures.EmbedSettings
		found, err := updateServer(st, i.GuildID, server, func(srv *pastures.Server) {
			old = srv.Config.Embed
			srv.Config.ClearIDs()
		})
		if err != nil || !found {
			return notFound(s, i, server, err)
		}
		if !old.MessageID.IsZero() {
			_ = s.ChannelMessageDelete(old.ChannelID.String(), old.MessageID.String())
		}
		return core.Respond(s, i, fmt.Sprintf("Status message of `%s` cleared!", server))

	case "roles":
		mod, wl := opts.ID("moderation_role"), opts.ID("whitelisted_role")
		err := st.UpdatePastures(i.GuildID, func(p *pastures.Settings) error {
			p.ModerationRole = snowflake.ID(mod)
			if wl != "" {
				p.WhitelistedRole = snowflake.ID(wl)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return core.RespondComplex(s, i, &discordgo.InteractionResponseData{
			Content:         fmt.Sprintf("Moderation role set to <@&%s>.", mod),
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})

	case "log_channel":
		ch := opts.ID("channel")
		err := st.UpdatePastures(i.GuildID, func(p *pastures.Settings) error {
			p.LoggingChannel = snowflake.ID(ch)
			return nil
		})
		if err != nil {
			return err
		}
		return core.Respond(s, i, fmt.Sprintf("Whitelist actions will be logged to <#%s>.", ch))
	}
	return nil
}

func notFound(s *discordgo.Session, i *discordgo.InteractionCreate, server string, err error) error {
	if err != nil {
		return err
	}
	return core.Respond(s, i, fmt.Sprintf("Server `%s` not found!", server))
}

// readConfig downloads and validates an uploaded server config. A non-empty
// message is the reason it was rejected.
func (c *ServersCommand) readConfig(att *discordgo.MessageAttachment) (pastures.ServerConfig, string) {
	if !strings.Contains(att.ContentType, "application/json") {
		return pastures.ServerConfig{}, "The attached file is not a `.json` file!"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data, err := core.FetchAttachment(ctx, c.Bridge.HTTP, att)
	if err != nil {
		return pastures.ServerConfig{}, fmt.Sprintf("Error downloading config file: %v", err)
	}
	cfg, err := pastures.ParseServerConfig(data)
	if err != nil {
		return pastures.ServerConfig{}, fmt.Sprintf("Error parsing config file: %v", err)
	}
	return cfg, ""
}

func addServer(p *pastures.Settings, name, address, password string, cfg *pastures.ServerConfig) string {
	if p.Servers == nil {
		p.Servers = map[string]pastures.Server{}
	}
	if _, ok := p.Servers[name]; ok {
		return fmt.Sprintf("Server %s already exists!", name)
	}
	srv := pastures.Server{Address: address, Password: password, Config: pastures.DefaultServerConfig()}
	if cfg != nil {
		srv.Config = *cfg
		srv.Config.ClearIDs()
	}
	p.Servers[name] = srv
	return fmt.Sprintf("Server %s added!", name)
}

func editServer(p *pastures.Settings, name, address, password string, cfg *pastures.ServerConfig) string {
	srv, ok := p.Servers[name]
	if !ok {
		return fmt.Sprintf("Server `%s` not found!", name)
	}
	if address != "" {
		srv.Address = address
	}
	if password != "" {
		srv.Password = password
	}
	if cfg != nil {
		// The posted status message stays bound to the server.
		embed := srv.Config.Embed
		srv.Config = *cfg
		srv.Config.Embed.ChannelID, srv.Config.Embed.MessageID = embed.ChannelID, embed.MessageID
	}
	p.Servers[name] = srv
	return "Server edited!"
}

func serverList(p pastures.Settings) string {
	names := p.ServerNames()
	if len(names) == 0 {
		return "No servers added!"
	}
	var sb strings.Builder
	sb.WriteString("## Servers: \n")
	for _, n := range names {
		fmt.Fprintf(&sb, "`%s` - `%s` \n", n, p.Servers[n].Address)
	}
	return sb.String()
}

// updateServer edits one server in place and reports whether it exists.
func updateServer(st *storage.Storage, guildID, name string, fn func(*pastures.Server)) (bool, error) {
	found := false
	err := st.UpdatePastures(guildID, func(p *pastures.Settings) error {
		srv, ok := p.Servers[name]
		if !ok {
			return nil
		}
		found = true
		fn(&srv)
		p.Servers[name] = srv
		return nil
	})
	return found, err
}

// looksLikeEmoji accepts custom emoji and short strings of non-ASCII runes.
func looksLikeEmoji(s string) bool {
	if strings.HasPrefix(s, "<") {
		return reactionroles.APIName(s) != s
	}
	if s == "" || len([]rune(s)) > 8 {
		return false
	}
	for _, r := range s {
		if r < 0x80 {
			return false
		}
	}
	return true
}

func (c *ServersCommand) show(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage, server string) error {
	if server == "" {
		return core.RespondFile(s, i,
			"This is the default server configuration!\nEdit this file and re-upload it to add a new server!",
			"server_default.json", pastures.DefaultServerConfig().JSON(), false)
	}
	settings, err := st.Pastures(i.GuildID)
	if err != nil {
		return err
	}
	srv, ok := settings.Servers[server]
	if !ok {
		return notFound(s, i, server, nil)
	}
	return core.RespondFile(s, i,
		fmt.Sprintf("Server configuration for `%s` attached!\n**Edit this file and re-upload it to edit the server!**", server),
		pastures.ConfigFileName(server), srv.Config.JSON(), true)
}

func (c *ServersCommand) postStatus(s *discordgo.Session, i *discordgo.InteractionCreate, st *storage.Storage, server, channelID string) error {
	settings, err := st.Pastures(i.GuildID)
	if err != nil {
		return err
	}
	srv, ok := settings.Servers[server]
	if !ok {
		return notFound(s, i, server, nil)
	}

	msg, err := s.ChannelMessageSendEmbed(channelID, pastures.PlaceholderEmbed(settings, srv))
	if err != nil {
		return core.RespondEmbedEphemeral(s, i, pastures.ErrorEmbed("Status message", err))
	}
	if srv.Config.OneClickWhitelist {
		if err := s.MessageReactionAdd(channelID, msg.ID, reactionroles.APIName(srv.Config.OneClickEmoji)); err != nil {
			return core.RespondEmbedEphemeral(s, i, pastures.ErrorEmbed("One-click reaction", err))
		}
	}
	if _, err := updateServer(st, i.GuildID, server, func(srv *pastures.Server) {
		srv.Config.Embed.ChannelID = snowflake.ID(channelID)
		srv.Config.Embed.MessageID = snowflake.ID(msg.ID)
	}); err != nil {
		return err
	}
	return core.RespondEphemeral(s, i, fmt.Sprintf("Status message for `%s` posted in <#%s>!", server, channelID))
}
