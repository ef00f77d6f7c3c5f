// Package pastures exposes the Minecraft server bridge: server management,
// whitelist moderation, the live status embed and one-click whitelisting.
package pastures

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/minecraft"
	"github.com/mednis/medsbot/internal/pastures"
	"github.com/mednis/medsbot/internal/storage"
)

const (
	group       = "pastures"
	rconTimeout = 10 * time.Second
)

// Dialer opens an executor for one server.
type Dialer func(address, password string) minecraft.Executor

type Deps struct {
	Mojang        *minecraft.MojangClient
	Status        *minecraft.StatusClient
	HTTP          *http.Client
	RCONLatency   metrics.Observer
	StatusUpdates metrics.Observer
	Executed      metrics.Observer
}

// Bridge holds what every pastures command needs to reach a server.
type Bridge struct {
	Dial    Dialer
	Mojang  *minecraft.MojangClient
	Status  *minecraft.StatusClient
	HTTP    *http.Client
	Updates metrics.Observer
}

func NewBridge(d Deps) *Bridge {
	return &Bridge{
		Dial: func(address, password string) minecraft.Executor {
			c := minecraft.NewRCONClient(address, password)
			c.Latency = d.RCONLatency
			return c
		},
		Mojang:  d.Mojang,
		Status:  d.Status,
		HTTP:    d.HTTP,
		Updates: d.StatusUpdates,
	}
}

// Register adds the pastures commands and returns the bridge the status
// job runs on.
func Register(d Deps) *Bridge {
	b := NewBridge(d)
	register := func(cmd core.Command) {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithGroupAccessCheck(),
				core.WithGuildOnly(),
				core.WithAccessControl(),
				core.WithBotPermissionCheck(),
				core.WithCommandLogger(d.Executed),
			),
		)
	}
	register(&ServersCommand{Bridge: b})
	register(&ServerPingCommand{Bridge: b})
	register(&PlayersCommand{Bridge: b})
	register(&WhitelistCommand{Bridge: b})
	register(&OneClickListener{Bridge: b})
	return b
}

// server looks up a configured server and builds its executor.
func (b *Bridge) server(st *storage.Storage, guildID, name string) (pastures.Settings, pastures.Server, minecraft.Executor, error) {
	settings, err := st.Pastures(guildID)
	if err != nil {
		return settings, pastures.Server{}, nil, err
	}
	srv, ok := settings.Servers[name]
	if !ok {
		return settings, srv, nil, fmt.Errorf("Server `%s` not found!", name)
	}
	return settings, srv, b.Dial(srv.Address, srv.Password), nil
}

func rconContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rconTimeout)
}

func serverOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "server",
		Description:  "Server name",
		Required:     required,
		Autocomplete: true,
	}
}

// serverChoices completes server names containing current.
func serverChoices(settings pastures.Settings, current string) []*discordgo.ApplicationCommandOptionChoice {
	current = strings.ToLower(current)
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, name := range settings.ServerNames() {
		if strings.Contains(strings.ToLower(name), current) && len(choices) < 25 {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
		}
	}
	return choices
}

func autocompleteServers(ctx *core.AutocompleteContext) error {
	settings, err := ctx.Storage.Pastures(ctx.Event.GuildID)
	if err != nil {
		return err
	}
	_, opts := core.Subcommand(ctx.Event.ApplicationCommandData().Options)
	current := ""
	if f, ok := opts.Focused(); ok {
		current = f.StringValue()
	}
	return core.RespondChoices(ctx.Session, ctx.Event, serverChoices(settings, current))
}

// isModerator reports whether member holds the guild's moderation role.
// Administrators always pass.
func isModerator(member *discordgo.Member, settings pastures.Settings) bool {
	if core.IsAdministrator(member) {
		return true
	}
	if member == nil || settings.ModerationRole.IsZero() {
		return false
	}
	return slices.Contains(member.Roles, settings.ModerationRole.String())
}

// logAction echoes a moderation action to the guild's logging channel.
func logAction(s *discordgo.Session, settings pastures.Settings, e *discordgo.MessageEmbed) {
	if settings.LoggingChannel.IsZero() || s == nil {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(settings.LoggingChannel.String(), e); err != nil {
		log.Warn("Failed to log pastures action", "channel", settings.LoggingChannel, "err", err)
	}
}
