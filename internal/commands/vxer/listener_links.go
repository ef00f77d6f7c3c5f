package vxer

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/vxer"
)

// LinkListener offers rewritten links for TikTok and Twitter posts.
type LinkListener struct {
	Service *vxer.Service
}

func (l *LinkListener) Name() string          { return "vxer_links" }
func (l *LinkListener) Description() string   { return "Offers embeddable social links" }
func (l *LinkListener) Aliases() []string     { return []string{} }
func (l *LinkListener) Group() string         { return group }
func (l *LinkListener) Category() string      { return config.CategoryLinks }
func (l *LinkListener) RequireAdmin() bool    { return false }
func (l *LinkListener) RequireDev() bool      { return false }
func (l *LinkListener) Run(interface{}) error { return nil }

func (l *LinkListener) Message(ctx *core.MessageContext) error {
	return l.Service.HandleMessage(ctx.Session, ctx.Event.Message)
}

func (l *LinkListener) Reaction(ctx *core.MessageReactionContext) error {
	if !ctx.Added {
		return nil
	}
	s := ctx.Session
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	return l.Service.HandleReaction(s, ctx.Event, botID, reactorIsBot(s, ctx.Member, ctx.Event))
}

func reactorIsBot(s *discordgo.Session, member *discordgo.Member, r *discordgo.MessageReaction) bool {
	if member != nil && member.User != nil {
		return member.User.Bot
	}
	if s != nil && s.State != nil {
		if m, err := s.State.Member(r.GuildID, r.UserID); err == nil && m.User != nil {
			return m.User.Bot
		}
	}
	return false
}
