package core

import (
	"github.com/charmbracelet/log"
)

// WithGroupAccessCheck drops invocations of commands whose group is
// disabled in the guild.
func WithGroupAccessCheck() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				st := contextStorage(ctx)
				gid := guildID(ctx)
				if cmd.Group() == "" || st == nil || gid == "" {
					return Dispatch(cmd, ctx)
				}
				disabled, err := st.IsGroupDisabled(gid, cmd.Group())
				if err != nil {
					log.Warn("group check failed", "guild", gid, "cmd", cmd.Name(), "err", err)
					return Dispatch(cmd, ctx)
				}
				if disabled {
					deny(ctx, "This command is disabled on this server.\nUse `/cmd-toggle` to enable it again.")
					return nil
				}
				return Dispatch(cmd, ctx)
			},
		}
	}
}
