package statistics

import (
	"context"
	"time"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/statistics"
)

const writeTimeout = 5 * time.Second

// MessageStatsListener records the length and attachment count of every
// guild message while message statistics are on.
type MessageStatsListener struct {
	Gatherer *statistics.Gatherer
}

func (l *MessageStatsListener) Name() string          { return "message_stats" }
func (l *MessageStatsListener) Description() string   { return "Records message statistics" }
func (l *MessageStatsListener) Aliases() []string     { return []string{} }
func (l *MessageStatsListener) Group() string         { return group }
func (l *MessageStatsListener) Category() string      { return config.CategoryMaintenance }
func (l *MessageStatsListener) RequireAdmin() bool    { return false }
func (l *MessageStatsListener) RequireDev() bool      { return false }
func (l *MessageStatsListener) Run(interface{}) error { return nil }

func (l *MessageStatsListener) Message(ctx *core.MessageContext) error {
	wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return l.Gatherer.RecordMessage(wctx, ctx.Event.Message)
}
