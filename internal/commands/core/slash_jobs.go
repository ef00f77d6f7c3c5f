package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/pkg/jobmgr"
)

type JobsCommand struct {
	Jobs *jobmgr.Manager
}

func (c *JobsCommand) Name() string        { return "jobs" }
func (c *JobsCommand) Description() string { return "List or stop background jobs" }
func (c *JobsCommand) Aliases() []string   { return []string{} }
func (c *JobsCommand) Group() string       { return "core" }
func (c *JobsCommand) Category() string    { return config.CategoryMaintenance }
func (c *JobsCommand) RequireAdmin() bool  { return false }
func (c *JobsCommand) RequireDev() bool    { return true }

func (c *JobsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Show running jobs",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "Stop a job by name",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "name",
						Description:  "Job name",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
		},
	}
}

func (c *JobsCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event

	sub, opts := core.Subcommand(event.ApplicationCommandData().Options)
	switch sub {
	case "stop":
		name := opts.String("name")
		if err := c.Jobs.Stop(name); err != nil {
			return core.RespondEphemeral(session, event, err.Error())
		}
		return core.RespondEphemeral(session, event, fmt.Sprintf("Stopped `%s`.", name))
	default:
		return core.RespondEmbedEphemeral(session, event, &discordgo.MessageEmbed{
			Title:       "Background jobs",
			Description: jobTable(c.Jobs),
			Color:       core.EmbedColor,
		})
	}
}

func (c *JobsCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	_, opts := core.Subcommand(ctx.Event.ApplicationCommandData().Options)
	focused, _ := opts.Focused()
	prefix := ""
	if focused != nil {
		prefix, _ = focused.Value.(string)
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, name := range c.Jobs.List() {
		if strings.HasPrefix(name, prefix) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
		}
	}
	return core.RespondChoices(ctx.Session, ctx.Event, choices)
}

func jobTable(m *jobmgr.Manager) string {
	names := m.List()
	if len(names) == 0 {
		return m.Status()
	}
	var sb strings.Builder
	for _, name := range names {
		up, _ := m.Uptime(name)
		fmt.Fprintf(&sb, "`%s` started %s\n", name, humanize.Time(time.Now().Add(-up)))
	}
	return sb.String()
}
