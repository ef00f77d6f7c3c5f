package pastures

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/pastures"
	"github.com/mednis/medsbot/internal/reactionroles"
)

// OneClickListener grants the whitelisted role to members reacting to a
// status message with its server's emoji.
type OneClickListener struct {
	Bridge *Bridge
}

func (l *OneClickListener) Name() string          { return "pastures_one_click" }
func (l *OneClickListener) Description() string   { return "One-click whitelisting" }
func (l *OneClickListener) Aliases() []string     { return []string{} }
func (l *OneClickListener) Group() string         { return group }
func (l *OneClickListener) Category() string      { return config.CategoryMinecraft }
func (l *OneClickListener) RequireAdmin() bool    { return false }
func (l *OneClickListener) RequireDev() bool      { return false }
func (l *OneClickListener) Run(interface{}) error { return nil }

func (l *OneClickListener) Reaction(ctx *core.MessageReactionContext) error {
	if !ctx.Added || ctx.Member == nil || ctx.Member.User == nil || ctx.Member.User.Bot {
		return nil
	}
	r := ctx.Event
	settings, err := ctx.Storage.Pastures(r.GuildID)
	if err != nil {
		return err
	}
	name, srv, ok := settings.FindByStatusMessage(r.MessageID)
	if !ok || !oneClickMatches(settings, srv, reactionroles.EmojiKey(r.Emoji.ID, r.Emoji.Name, r.Emoji.Animated)) {
		return nil
	}

	role := settings.WhitelistedRole.String()
	if err := ctx.Session.GuildMemberRoleAdd(r.GuildID, r.UserID, role); err != nil {
		return fmt.Errorf("grant whitelisted role: %w", err)
	}
	log.Info("One-click whitelisted", "guild", r.GuildID, "server", name, "user", r.UserID)

	e := pastures.WhitelistAddedEmbed(ctx.Member.User.Username)
	e.Description += fmt.Sprintf("\n<@%s> reacted on the `%s` status message and got <@&%s>.", r.UserID, name, role)
	logAction(ctx.Session, settings, e)
	return nil
}

func oneClickMatches(settings pastures.Settings, srv pastures.Server, emoji string) bool {
	return srv.Config.OneClickWhitelist &&
		!settings.WhitelistedRole.IsZero() &&
		reactionroles.NormalizeEmoji(srv.Config.OneClickEmoji) == emoji
}
