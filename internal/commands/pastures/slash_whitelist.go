package pastures

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/minecraft"
	"github.com/mednis/medsbot/internal/pastures"
)

type WhitelistCommand struct {
	Bridge *Bridge
}

func (c *WhitelistCommand) Name() string { return "whitelist" }
func (c *WhitelistCommand) Description() string {
	return "Add or remove players from the server whitelists"
}
func (c *WhitelistCommand) Aliases() []string  { return []string{} }
func (c *WhitelistCommand) Group() string      { return group }
func (c *WhitelistCommand) Category() string   { return config.CategoryMinecraft }
func (c *WhitelistCommand) RequireAdmin() bool { return false }
func (c *WhitelistCommand) RequireDev() bool   { return false }

func (c *WhitelistCommand) SlashDefinition() *discordgo.ApplicationCommand {
	player := str("player", "Minecraft username", true)
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			sub("add", "Add a player to the whitelist", serverOption(true), player),
			sub("remove", "Remove a player from the whitelist", serverOption(true), player),
			sub("list", "List the current whitelist", serverOption(true)),
		},
	}
}

func (c *WhitelistCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	return autocompleteServers(ctx)
}

func (c *WhitelistCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, i := sctx.Session, sctx.Event
	name, opts := core.Subcommand(i.ApplicationCommandData().Options)

	settings, _, ex, err := c.Bridge.server(sctx.Storage, i.GuildID, opts.String("server"))
	if err != nil {
		return core.RespondEmbedEphemeral(s, i, pastures.ErrorEmbed("Whitelist", err))
	}
	if !isModerator(i.Member, settings) {
		return core.RespondEphemeral(s, i, "You need the moderation role to manage the whitelist.")
	}
	if err := core.DeferResponse(s, i, false); err != nil {
		return err
	}

	rctx, cancel := rconContext()
	defer cancel()
	e := c.run(rctx, name, ex, opts.String("player"), settings.EmbedColour)
	if name != "list" {
		logAction(s, settings, e)
	}
	return core.EditResponseEmbed(s, i, e)
}

func (c *WhitelistCommand) run(ctx context.Context, name string, ex minecraft.Executor, player string, colour int) *discordgo.MessageEmbed {
	switch name {
	case "add":
		canonical, err := minecraft.WhitelistAdd(ctx, ex, c.Bridge.Mojang, player)
		if err != nil {
			return pastures.ErrorEmbed("Whitelist Error", err)
		}
		return pastures.WhitelistAddedEmbed(canonical)
	case "remove":
		canonical, err := minecraft.WhitelistRemove(ctx, ex, c.Bridge.Mojang, player)
		if err != nil {
			return pastures.ErrorEmbed("Whitelist Error", err)
		}
		return pastures.WhitelistRemovedEmbed(canonical)
	}
	names, err := minecraft.Whitelist(ctx, ex)
	if err != nil {
		return pastures.ErrorEmbed("Whitelist Error", err)
	}
	return pastures.WhitelistEmbed(names, colour)
}
