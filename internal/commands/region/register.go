// Package region exposes /region and /region_settings.
package region

import (
	"time"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/pkg/retrylimit"
)

const (
	group = "region"
	// cooldown is how often one member may use /region set.
	cooldown = 10 * time.Second
)

// Register adds the region commands. names maps region IDs to the display
// names used when Discord reports a new region list.
func Register(names map[string]string, executed metrics.Observer) {
	for _, cmd := range []core.Command{
		&RegionCommand{Names: names, Cooldown: retrylimit.NewCooldown(cooldown)},
		&SettingsCommand{Names: names},
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
