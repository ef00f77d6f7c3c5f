package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 2

type LogCommand struct{}

func (c *LogCommand) Name() string        { return "cmd-log" }
func (c *LogCommand) Description() string { return "Review recently used commands" }
func (c *LogCommand) Aliases() []string   { return []string{} }
func (c *LogCommand) Group() string       { return "core" }
func (c *LogCommand) Category() string    { return config.CategorySettings }
func (c *LogCommand) RequireAdmin() bool  { return true }
func (c *LogCommand) RequireDev() bool    { return false }

func (c *LogCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LogCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage

	records, err := st.GetCommandsHistory(event.GuildID)
	if err != nil {
		return fmt.Errorf("fetch command logs: %w", err)
	}
	if len(records) == 0 {
		return core.RespondEmbedEphemeral(session, event, &discordgo.MessageEmbed{
			Description: "No command logs found.",
		})
	}

	msg := codeLeftBlockWrapper + "\n" + historyTable(records) + codeRightBlockWrapper
	return core.RespondEphemeral(session, event, msg)
}

// historyTable lists records newest first, stopping before the message
// would exceed Discord's limit.
func historyTable(records []storage.CommandHistoryRecord) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%-19s\t%-15s\t%-12s\t%s\n", "# Datetime", "# Username", "# Channel", "# Command")

	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		cmd := "/" + r.Command
		if r.Param != "" {
			cmd += " " + r.Param
		}
		line := fmt.Sprintf(
			"%-19s\t%-15s\t#%-12s\t%s\n",
			r.Datetime.Format("2006-01-02 15:04:05"),
			r.Username,
			r.ChannelName,
			cmd,
		)
		if builder.Len()+len(line) > maxContentLength {
			break
		}
		builder.WriteString(line)
	}
	return builder.String()
}
