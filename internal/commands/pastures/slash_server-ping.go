package pastures

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/minecraft"
	"github.com/mednis/medsbot/internal/pastures"
)

type ServerPingCommand struct {
	Bridge *Bridge
}

func (c *ServerPingCommand) Name() string { return "server_ping" }
func (c *ServerPingCommand) Description() string {
	return "Ping the server and check for command execution times!"
}
func (c *ServerPingCommand) Aliases() []string  { return []string{} }
func (c *ServerPingCommand) Group() string      { return group }
func (c *ServerPingCommand) Category() string   { return config.CategoryMinecraft }
func (c *ServerPingCommand) RequireAdmin() bool { return false }
func (c *ServerPingCommand) RequireDev() bool   { return false }

func (c *ServerPingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options:     []*discordgo.ApplicationCommandOption{serverOption(true)},
	}
}

func (c *ServerPingCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	return autocompleteServers(ctx)
}

func (c *ServerPingCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, i := context.Session, context.Event
	opts := core.OptionMap(i.ApplicationCommandData().Options)

	_, srv, ex, err := c.Bridge.server(context.Storage, i.GuildID, opts.String("server"))
	if err != nil {
		return core.RespondEmbed(s, i, pastures.ErrorEmbed("Ping", err))
	}
	if err := core.DeferResponse(s, i, false); err != nil {
		return err
	}
	rctx, cancel := rconContext()
	defer cancel()
	data, took, err := minecraft.Ping(rctx, ex)
	return core.EditResponseEmbed(s, i, pastures.PingEmbed(srv.Address, data, took, err))
}
