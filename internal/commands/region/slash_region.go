package region

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/region"
	"github.com/mednis/medsbot/pkg/retrylimit"
)

const editTimeout = 15 * time.Second

type RegionCommand struct {
	Names    map[string]string
	Cooldown *retrylimit.Cooldown
}

func (c *RegionCommand) Name() string        { return "region" }
func (c *RegionCommand) Description() string { return "Change the region of this voice channel." }
func (c *RegionCommand) Aliases() []string   { return []string{} }
func (c *RegionCommand) Group() string       { return group }
func (c *RegionCommand) Category() string    { return config.CategoryVoice }
func (c *RegionCommand) RequireAdmin() bool  { return false }
func (c *RegionCommand) RequireDev() bool    { return false }

func (c *RegionCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Set or show the region of the voice channel this is used in",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "region",
						Description:  "Region, leave empty to show the current one",
						Autocomplete: true,
					},
				},
			},
		},
	}
}

func (c *RegionCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	regions, err := ctx.Storage.Regions()
	if err != nil {
		return err
	}
	_, opts := core.Subcommand(ctx.Event.ApplicationCommandData().Options)
	current := ""
	if f, ok := opts.Focused(); ok {
		current = f.StringValue()
	}
	return core.RespondChoices(ctx.Session, ctx.Event, regionChoices(regions, current))
}

// regionChoices offers "automatic" ahead of the known regions.
func regionChoices(regions map[string]string, current string) []*discordgo.ApplicationCommandOptionChoice {
	choices := region.Autocomplete(regions, current)
	if strings.HasPrefix(region.Automatic, strings.ToLower(current)) {
		choices = append([]*discordgo.ApplicationCommandOptionChoice{{Name: "Automatic", Value: region.Automatic}}, choices...)
		choices = choices[:min(len(choices), 25)]
	}
	return choices
}

func (c *RegionCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event
	user := core.InteractionUser(event)

	if ok, wait := c.Cooldown.Allow(user.ID); !ok {
		return core.RespondEphemeral(session, event, cooldownText(wait))
	}

	_, opts := core.Subcommand(event.ApplicationCommandData().Options)
	editor := region.SessionEditor{Session: session}
	changer := &region.Changer{Storage: context.Storage, Editor: editor, Names: c.Names}

	req, err := buildRequest(session, editor, event.GuildID, event.ChannelID, opts.String("region"))
	if err != nil {
		return err
	}
	reqCtx, cancel := timeout()
	defer cancel()
	reply, err := changer.Change(reqCtx, req)
	if err != nil {
		return err
	}
	if reply.Ephemeral {
		return core.RespondEphemeral(session, event, reply.Text)
	}
	return core.Respond(session, event, reply.Text)
}

// buildRequest describes a region change on channelID. The current region
// is only fetched for voice channels.
func buildRequest(s *discordgo.Session, editor region.SessionEditor, guildID, channelID, wanted string) (region.Request, error) {
	req := region.Request{GuildID: guildID, ChannelID: channelID, Region: wanted}
	ch, err := channel(s, channelID)
	if err != nil {
		return req, err
	}
	req.Voice = isVoice(ch)
	if !req.Voice {
		return req, nil
	}
	reqCtx, cancel := timeout()
	defer cancel()
	req.CurrentRegion, err = editor.CurrentRegion(reqCtx, channelID)
	return req, err
}

func channel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return s.Channel(channelID)
}

func isVoice(ch *discordgo.Channel) bool {
	return ch != nil && (ch.Type == discordgo.ChannelTypeGuildVoice || ch.Type == discordgo.ChannelTypeGuildStageVoice)
}

func cooldownText(wait time.Duration) string {
	return fmt.Sprintf("You are on cooldown, try again in %.1fs.", wait.Seconds())
}

func timeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), editTimeout)
}
