package core

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
)

type PingCommand struct {
	// Started is when the bot came up.
	Started time.Time
}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Aliases() []string   { return []string{} }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return config.CategoryMaintenance }
func (c *PingCommand) RequireAdmin() bool  { return false }
func (c *PingCommand) RequireDev() bool    { return false }
func (c *PingCommand) BotPermissions() []int64 {
	return []int64{
		discordgo.PermissionSendMessages,
	}
}

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session, event := context.Session, context.Event
	latency := session.HeartbeatLatency().Milliseconds()

	desc := fmt.Sprintf("Latency: %dms", latency)
	if !c.Started.IsZero() {
		desc += fmt.Sprintf("\nUp since %s", humanize.Time(c.Started))
	}
	return core.RespondEmbedEphemeral(session, event, &discordgo.MessageEmbed{
		Title:       "Pong!",
		Description: desc,
		Color:       core.EmbedColor,
	})
}
