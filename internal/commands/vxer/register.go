// Package vxer exposes /vxer and hooks the link rewriter into messages and
// reactions.
package vxer

import (
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/vxer"
)

const group = "vxer"

func Register(svc *vxer.Service, executed metrics.Observer) {
	for _, cmd := range []core.Command{&VxerCommand{}, &LinkListener{Service: svc}} {
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
