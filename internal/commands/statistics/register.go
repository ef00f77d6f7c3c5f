// Package statistics exposes the developer-only /statistics command and
// feeds chat messages into the statistics exporter.
package statistics

import (
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/statistics"
)

const group = "statistics"

func Register(gatherer *statistics.Gatherer, executed metrics.Observer) {
	for _, cmd := range []core.Command{
		&StatisticsCommand{Exporter: gatherer.Exporter},
		&MessageStatsListener{Gatherer: gatherer},
	} {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithGroupAccessCheck(),
				core.WithGuildOnly(),
				core.WithAccessControl(),
				core.WithBotPermissionCheck(),
				core.WithCommandLogger(executed),
			),
		)
	}
}
