// Package reactionroles exposes /embed, which manages posted embeds and the
// roles members get by reacting to them.
package reactionroles

import (
	"net/http"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
)

const group = "reactionroles"

func Register(client *http.Client, executed metrics.Observer) {
	for _, cmd := range []core.Command{&EmbedCommand{HTTP: client}, &RoleReactionListener{}} {
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
