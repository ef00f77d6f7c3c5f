package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Aliases() []string   { return []string{} }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return config.CategoryInfo }
func (c *HelpCommand) RequireAdmin() bool  { return false }
func (c *HelpCommand) RequireDev() bool    { return false }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "view_as",
				Description: "View commands as categories, groups, or a flat list",
				Required:    false,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Categories", Value: "category"},
					{Name: "Groups", Value: "group"},
					{Name: "Flat list", Value: "flat"},
				},
			},
		},
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event

	visible := visibleCommands(core.AllCommands(), event.Member)

	var output string
	switch core.OptionMap(event.ApplicationCommandData().Options).String("view_as") {
	case "group":
		output = helpByGroup(visible)
	case "flat":
		output = helpFlat(visible)
	default:
		output = helpByCategory(visible)
	}

	return core.RespondEmbedEphemeral(session, event, &discordgo.MessageEmbed{
		Title:       "Medsbot Help",
		Description: output,
		Color:       core.EmbedColor,
	})
}

// visibleCommands hides admin and developer commands from members who
// cannot run them.
func visibleCommands(all []core.Command, member *discordgo.Member) []core.Command {
	var out []core.Command
	for _, cmd := range all {
		if _, ok := core.Base(cmd).(core.SlashProvider); !ok {
			continue
		}
		if cmd.RequireAdmin() && !core.IsAdministrator(member) {
			continue
		}
		if cmd.RequireDev() && (member == nil || member.User == nil || !core.IsDeveloper(member.User.ID)) {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func writeCommands(sb *strings.Builder, cmds []core.Command) {
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name() < cmds[j].Name()
	})
	for _, cmd := range cmds {
		fmt.Fprintf(sb, "`/%s` - %s\n", cmd.Name(), cmd.Description())
	}
}

func helpByCategory(cmds []core.Command) string {
	byCategory := make(map[string][]core.Command)
	var categories []string
	for _, cmd := range cmds {
		cat := cmd.Category()
		if _, ok := byCategory[cat]; !ok {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], cmd)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		wi, wj := config.CategoryWeights[categories[i]], config.CategoryWeights[categories[j]]
		if wi != wj {
			return wi < wj
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	for _, cat := range categories {
		fmt.Fprintf(&sb, "**%s**\n", cat)
		writeCommands(&sb, byCategory[cat])
		sb.WriteString("\n")
	}
	return sb.String()
}

func helpByGroup(cmds []core.Command) string {
	byGroup := make(map[string][]core.Command)
	for _, cmd := range cmds {
		byGroup[cmd.Group()] = append(byGroup[cmd.Group()], cmd)
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var sb strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&sb, "**%s**\n", g)
		writeCommands(&sb, byGroup[g])
		sb.WriteString("\n")
	}
	return sb.String()
}

func helpFlat(cmds []core.Command) string {
	var sb strings.Builder
	writeCommands(&sb, cmds)
	return sb.String()
}
