package timezones

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

type SetupCommand struct{}

func (c *SetupCommand) Name() string        { return "tz-setup" }
func (c *SetupCommand) Description() string { return "Setup the timezone cog" }
func (c *SetupCommand) Aliases() []string   { return []string{} }
func (c *SetupCommand) Group() string       { return group }
func (c *SetupCommand) Category() string    { return config.CategorySettings }
func (c *SetupCommand) RequireAdmin() bool  { return true }
func (c *SetupCommand) RequireDev() bool    { return false }

func (c *SetupCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("channel", "Set the channel for persistent time messages", &discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Text channel",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}),
			subcommand("apikey", "Set the API key for geonames", stringOption("apikey", "GeoNames username")),
		},
	}
}

func (c *SetupCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event
	path, opts := core.Subcommand(event.ApplicationCommandData().Options)

	switch path {
	case "channel":
		channelID := opts.ID("channel")
		err := context.Storage.UpdateTimezones(event.GuildID, func(t *storage.TimezoneSettings) error {
			if t.PersistentChannel != channelID {
				t.PersistentMessage = ""
			}
			t.PersistentChannel = channelID
			return nil
		})
		if err != nil {
			return err
		}
		return core.Respond(session, event, fmt.Sprintf("Persistent channel set to <#%s>!", channelID))

	case "apikey":
		key := opts.String("apikey")
		err := context.Storage.UpdateTimezones(event.GuildID, func(t *storage.TimezoneSettings) error {
			t.GeoNamesAPIKey = key
			return nil
		})
		if err != nil {
			return err
		}
		return core.RespondEphemeral(session, event, "API key set!")
	}
	return nil
}
