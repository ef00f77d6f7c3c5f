package pastures

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/pastures"
)

type PlayersCommand struct {
	Bridge *Bridge
}

func (c *PlayersCommand) Name() string        { return "players" }
func (c *PlayersCommand) Description() string { return "Show a list of the currently online players" }
func (c *PlayersCommand) Aliases() []string   { return []string{} }
func (c *PlayersCommand) Group() string       { return group }
func (c *PlayersCommand) Category() string    { return config.CategoryMinecraft }
func (c *PlayersCommand) RequireAdmin() bool  { return false }
func (c *PlayersCommand) RequireDev() bool    { return false }

func (c *PlayersCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options:     []*discordgo.ApplicationCommandOption{serverOption(true)},
	}
}

func (c *PlayersCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	return autocompleteServers(ctx)
}

func (c *PlayersCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, i := context.Session, context.Event
	opts := core.OptionMap(i.ApplicationCommandData().Options)

	settings, srv, _, err := c.Bridge.server(context.Storage, i.GuildID, opts.String("server"))
	if err != nil {
		return core.RespondEmbed(s, i, pastures.ErrorEmbed("Players", err))
	}
	if err := core.DeferResponse(s, i, false); err != nil {
		return err
	}
	rctx, cancel := rconContext()
	defer cancel()
	e, err := c.Bridge.statusEmbed(rctx, settings, srv, pastures.StaticNote)
	if err != nil {
		return core.EditResponseEmbed(s, i, pastures.ErrorEmbed("Players", err))
	}
	return core.EditResponseEmbed(s, i, e)
}
