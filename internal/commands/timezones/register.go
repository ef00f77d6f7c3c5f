// Package timezones exposes /timezone, /time, /tz-setup, the "Show Time"
// menu and the persistent time board.
package timezones

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/timezones"
	"github.com/mednis/medsbot/pkg/retrylimit"
)

const (
	group = "timezones"

	lookupTimeout = 10 * time.Second
	// Time embeds posted in channels are removed after this long.
	embedLifetime = time.Minute
	// BoardInterval is how often the persistent boards are redrawn.
	BoardInterval = 5 * time.Minute
	boardCooldown = 5 * time.Second
)

// Register adds the timezone commands and returns the board the refresh
// job redraws.
func Register(geo *timezones.GeoNamesClient, executed metrics.Observer) *Board {
	board := &Board{GeoNames: geo, Cooldown: retrylimit.NewCooldown(boardCooldown)}
	for _, cmd := range []core.Command{
		&TimezoneCommand{GeoNames: geo},
		&TimeCommand{GeoNames: geo},
		&ShowTimeMenu{},
		&SetupCommand{},
		board,
	} {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithGroupAccessCheck(),
				core.WithGuildOnly(),
				core.WithAccessControl(),
				core.WithBotPermissionCheck(),
				core.WithCommandLogger(executed),
			),
		)
	}
	return board
}

func lookupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), lookupTimeout)
}

// deleteLater removes an interaction's response once embedLifetime passes.
func deleteLater(s *discordgo.Session, i *discordgo.InteractionCreate) {
	time.AfterFunc(embedLifetime, func() {
		_ = s.InteractionResponseDelete(i.Interaction)
	})
}

func quiet(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return core.RespondComplex(s, i, data)
}

func userOption(name, desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: desc,
		Required:    required,
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
