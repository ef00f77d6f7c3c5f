package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
)

type CommandsToggleCommand struct{}

func (c *CommandsToggleCommand) Name() string        { return "cmd-toggle" }
func (c *CommandsToggleCommand) Description() string { return "Enable or disable a group of commands" }
func (c *CommandsToggleCommand) Aliases() []string   { return []string{} }
func (c *CommandsToggleCommand) Group() string       { return "core" }
func (c *CommandsToggleCommand) Category() string    { return config.CategorySettings }
func (c *CommandsToggleCommand) RequireAdmin() bool  { return true }
func (c *CommandsToggleCommand) RequireDev() bool    { return false }

func (c *CommandsToggleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	var groupChoices []*discordgo.ApplicationCommandOptionChoice
	for _, g := range core.Groups() {
		if g == "core" {
			continue
		}
		groupChoices = append(groupChoices, &discordgo.ApplicationCommandOptionChoice{Name: g, Value: g})
	}

	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "group",
				Description: "Choose command group to toggle",
				Required:    true,
				Choices:     groupChoices,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "state",
				Description: "Enable or disable",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Enable", Value: "enable"},
					{Name: "Disable", Value: "disable"},
				},
			},
		},
	}
}

func (c *CommandsToggleCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, storage := context.Session, context.Event, context.Storage
	guildID := event.GuildID

	opts := core.OptionMap(event.ApplicationCommandData().Options)
	group, state := opts.String("group"), opts.String("state")

	if group == "core" && state == "disable" {
		return core.RespondEmbedEphemeral(session, event, &discordgo.MessageEmbed{
			Description: "You can't disable the `core` group.",
		})
	}

	var err error
	if state == "disable" {
		err = storage.DisableGroup(guildID, group)
	} else {
		err = storage.EnableGroup(guildID, group)
	}
	if err != nil {
		return fmt.Errorf("toggle group %s: %w", group, err)
	}

	core.PublishSystemEvent(core.SystemEvent{
		Type:    core.SystemEventRefreshCommands,
		GuildID: guildID,
		Target:  "group:" + group,
	})

	disabled, err := storage.GetDisabledGroups(guildID)
	if err != nil {
		return err
	}
	footer := "No groups are disabled."
	if len(disabled) > 0 {
		footer = "Disabled: " + strings.Join(disabled, ", ")
	}
	return core.RespondEmbedEphemeral(session, event, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Command group `%s` %sd.", group, state),
		Color:       core.EmbedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	})
}
