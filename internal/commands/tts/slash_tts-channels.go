package tts

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
)

type ChannelsCommand struct{}

func (c *ChannelsCommand) Name() string        { return "tts_channels" }
func (c *ChannelsCommand) Description() string { return "Channels whose messages are read out" }
func (c *ChannelsCommand) Aliases() []string   { return []string{} }
func (c *ChannelsCommand) Group() string       { return group }
func (c *ChannelsCommand) Category() string    { return config.CategoryVoice }
func (c *ChannelsCommand) RequireAdmin() bool  { return true }
func (c *ChannelsCommand) RequireDev() bool    { return false }

func channelOption(kind discordgo.ChannelType) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  "Channel",
		Required:     true,
		ChannelTypes: []discordgo.ChannelType{kind},
	}
}

func (c *ChannelsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	text, vc := discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildVoice
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add_text", "Add whitelisted channel for TTS text", channelOption(text)),
			subcommand("remove_text", "Remove whitelisted channel for TTS text", channelOption(text)),
			subcommand("add_vc", "Add whitelisted voice channel for TTS text", channelOption(vc)),
			subcommand("remove_vc", "Remove whitelisted voice channel for TTS text", channelOption(vc)),
			subcommand("list", "List whitelisted channels"),
		},
	}
}

func (c *ChannelsCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	guildID := event.GuildID

	sub, opts := core.Subcommand(event.ApplicationCommandData().Options)
	channelID := opts.ID("channel")
	mention := "<#" + channelID + ">"

	switch sub {
	case "add_text", "add_vc":
		added, err := st.AddTTSChannel(guildID, channelID)
		if err != nil {
			return err
		}
		if !added {
			return core.RespondEphemeral(session, event, mention+" is already whitelisted!")
		}
		return core.Respond(session, event, fmt.Sprintf("Added channel %s to TTS whitelist!", mention))
	case "remove_text", "remove_vc":
		removed, err := st.RemoveTTSChannel(guildID, channelID)
		if err != nil {
			return err
		}
		if !removed {
			return core.RespondEphemeral(session, event, mention+" is not whitelisted!")
		}
		return core.Respond(session, event, fmt.Sprintf("Removed channel %s from TTS whitelist!", mention))
	case "list":
		settings, err := st.TTSSettings(guildID)
		if err != nil {
			return err
		}
		return core.Respond(session, event, channelList(settings.WhitelistedChannels))
	}
	return nil
}

func channelList(ids []string) string {
	var sb strings.Builder
	sb.WriteString("Whitelisted TTS Channels: ")
	for _, id := range ids {
		sb.WriteString("\n<#" + id + ">")
	}
	return sb.String()
}
