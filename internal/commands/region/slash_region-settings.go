package region

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/region"
	"github.com/mednis/medsbot/internal/storage"
)

type SettingsCommand struct {
	Names map[string]string
}

func (c *SettingsCommand) Name() string        { return "region_settings" }
func (c *SettingsCommand) Description() string { return "Configure the region changer." }
func (c *SettingsCommand) Aliases() []string   { return []string{} }
func (c *SettingsCommand) Group() string       { return group }
func (c *SettingsCommand) Category() string    { return config.CategorySettings }
func (c *SettingsCommand) RequireAdmin() bool  { return true }
func (c *SettingsCommand) RequireDev() bool    { return false }

func (c *SettingsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	voiceChannel := func() []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Voice channel",
			Required:     true,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice},
		}}
	}
	sub := func(name, desc string, opts []*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: desc,
			Options:     opts,
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			sub("enable", "Enable the region changer", nil),
			sub("add_channel", "Add a channel to the whitelist", voiceChannel()),
			sub("remove_channel", "Remove a channel from the whitelist", voiceChannel()),
			sub("clean", "Remove non-existent channels from the whitelist", nil),
			sub("refresh", "Refresh the list of available regions", nil),
		},
	}
}

func (c *SettingsCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	path, opts := core.Subcommand(event.ApplicationCommandData().Options)
	guildID := event.GuildID

	switch path {
	case "enable":
		var enabled bool
		err := st.UpdateRegion(guildID, func(r *storage.RegionSettings) error {
			r.Enabled = !r.Enabled
			enabled = r.Enabled
			return nil
		})
		if err != nil {
			return err
		}
		if enabled {
			return core.Respond(session, event, "Region changer enabled")
		}
		return core.Respond(session, event, "Region changer disabled")

	case "add_channel", "remove_channel":
		channelID := opts.ID("channel")
		add := path == "add_channel"
		var changed bool
		err := st.UpdateRegion(guildID, func(r *storage.RegionSettings) error {
			changed = setWhitelisted(&r.ChannelWhitelist, channelID, add)
			return nil
		})
		if err != nil {
			return err
		}
		return core.Respond(session, event, whitelistReply(channelID, add, changed))

	case "clean":
		removed, err := region.Clean(st, guildID, func(id string) bool { return channelExists(session, id) })
		if err != nil {
			return err
		}
		log.Info("Cleaned region whitelist", "guild", guildID, "removed", removed)
		refreshed, err := c.refresh(context)
		if err != nil {
			return err
		}
		return core.Respond(session, event, fmt.Sprintf("Cleaned the channel whitelist. \nRemoved %d channels \n%s", removed, refreshed))

	case "refresh":
		refreshed, err := c.refresh(context)
		if err != nil {
			return err
		}
		return core.RespondEphemeral(session, event, refreshed)
	}
	return nil
}

// refresh asks Discord for the region list through the channel the
// command was used in.
func (c *SettingsCommand) refresh(ctx *core.SlashInteractionContext) (string, error) {
	ch, err := channel(ctx.Session, ctx.Event.ChannelID)
	if err != nil {
		return "", err
	}
	changer := &region.Changer{Storage: ctx.Storage, Editor: region.SessionEditor{Session: ctx.Session}, Names: c.Names}
	reqCtx, cancel := timeout()
	defer cancel()
	return changer.Refresh(reqCtx, ctx.Event.GuildID, ctx.Event.ChannelID, isVoice(ch))
}

// setWhitelisted adds or removes id and reports whether the list changed.
func setWhitelisted(list *[]string, id string, add bool) bool {
	idx := slices.Index(*list, id)
	switch {
	case add && idx < 0:
		*list = append(*list, id)
		return true
	case !add && idx >= 0:
		*list = slices.Delete(*list, idx, idx+1)
		return true
	}
	return false
}

func whitelistReply(channelID string, add, changed bool) string {
	mention := "<#" + channelID + ">"
	switch {
	case add && changed:
		return fmt.Sprintf("Channel %s added to the whitelist", mention)
	case add:
		return fmt.Sprintf("Channel %s is already on the whitelist", mention)
	case changed:
		return fmt.Sprintf("Channel %s removed from the whitelist", mention)
	default:
		return fmt.Sprintf("Channel %s is not on the whitelist", mention)
	}
}

// channelExists is false only when Discord reports the channel unknown.
func channelExists(s *discordgo.Session, channelID string) bool {
	if _, err := s.State.Channel(channelID); err == nil {
		return true
	}
	_, err := s.Channel(channelID)
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return false
		}
		if rest.Message != nil && rest.Message.Code == discordgo.ErrCodeUnknownChannel {
			return false
		}
	}
	return true
}
