package core

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/storage"
)

// WithCommandLogger records application command invocations in the
// guild's command history and counts them in executed.
func WithCommandLogger(executed metrics.Observer) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := Dispatch(cmd, ctx)

				var i *discordgo.InteractionCreate
				switch v := ctx.(type) {
				case *SlashInteractionContext:
					i = v.Event
				case *MessageApplicationCommandContext:
					i = v.Event
				case *UserApplicationCommandContext:
					i = v.Event
				default:
					return err
				}

				if executed != nil {
					executed.Observe(1, cmd.Name())
				}
				st := contextStorage(ctx)
				if i.GuildID == "" || st == nil {
					return err
				}
				if e := LogCommand(session(ctx), st, i, cmd.Name()); e != nil {
					log.Warn("Failed to log command", "cmd", cmd.Name(), "guild", i.GuildID, "err", e)
				}
				return err
			},
		}
	}
}

// LogCommand appends an invocation to the guild's command history,
// resolving channel and guild names from the state cache.
func LogCommand(s *discordgo.Session, st *storage.Storage, i *discordgo.InteractionCreate, name string) error {
	rec := storage.CommandHistoryRecord{
		ChannelID: i.ChannelID,
		Command:   name,
		Param:     commandParams(i),
		Datetime:  time.Now(),
	}
	if u := InteractionUser(i); u != nil {
		rec.UserID, rec.Username = u.ID, u.Username
	}
	if s != nil && s.State != nil {
		if ch, err := s.State.Channel(i.ChannelID); err == nil {
			rec.ChannelName = ch.Name
		}
		if g, err := s.State.Guild(i.GuildID); err == nil {
			rec.GuildName = g.Name
		}
	}
	return st.AppendCommandToHistory(i.GuildID, rec)
}

// commandParams flattens the subcommand path of a slash command.
func commandParams(i *discordgo.InteractionCreate) string {
	if i.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	path, _ := Subcommand(i.ApplicationCommandData().Options)
	return path
}
