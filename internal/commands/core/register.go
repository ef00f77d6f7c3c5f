// Package core holds the bot's own maintenance commands.
package core

import (
	"time"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/pkg/jobmgr"
)

// Register adds /ping, /help, /jobs, /cmd-toggle and /cmd-log.
func Register(executed metrics.Observer, jobs *jobmgr.Manager, started time.Time) {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PingCommand{Started: started},
			core.WithBotPermissionCheck(),
			core.WithCommandLogger(executed),
		),
	)
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&HelpCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(executed),
		),
	)
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&JobsCommand{Jobs: jobs},
			core.WithAccessControl(),
			core.WithCommandLogger(executed),
		),
	)
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&CommandsToggleCommand{},
			core.WithGuildOnly(),
			core.WithAccessControl(),
			core.WithCommandLogger(executed),
		),
	)
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&LogCommand{},
			core.WithGuildOnly(),
			core.WithAccessControl(),
			core.WithCommandLogger(executed),
		),
	)
}
