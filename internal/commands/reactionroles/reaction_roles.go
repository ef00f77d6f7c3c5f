package reactionroles

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	rr "github.com/mednis/medsbot/internal/reactionroles"
)

// RoleReactionListener grants and revokes roles as members react to a
// managed embed.
type RoleReactionListener struct{}

func (l *RoleReactionListener) Name() string          { return "reaction_roles" }
func (l *RoleReactionListener) Description() string   { return "Grants roles for reactions" }
func (l *RoleReactionListener) Aliases() []string     { return []string{} }
func (l *RoleReactionListener) Group() string         { return group }
func (l *RoleReactionListener) Category() string      { return config.CategoryRoles }
func (l *RoleReactionListener) RequireAdmin() bool    { return false }
func (l *RoleReactionListener) RequireDev() bool      { return false }
func (l *RoleReactionListener) Run(interface{}) error { return nil }

// roleSession is the part of the session reaction handling calls.
type roleSession interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
}

func (l *RoleReactionListener) Reaction(ctx *core.MessageReactionContext) error {
	configs, err := ctx.Storage.EmbedConfigs(ctx.Event.GuildID)
	if err != nil {
		return err
	}
	return applyReaction(ctx.Session, configs, ctx.Event, ctx.Added)
}

func applyReaction(s roleSession, configs []rr.EmbedConfig, r *discordgo.MessageReaction, added bool) error {
	cfg := rr.FindByMessage(configs, r.MessageID)
	if cfg == nil {
		return nil
	}
	emoji := rr.EmojiKey(r.Emoji.ID, r.Emoji.Name, r.Emoji.Animated)
	reason := discordgo.WithAuditLogReason(fmt.Sprintf("Reaction Role in embed %s", cfg.Name))

	for _, role := range cfg.RolesForEmoji(emoji) {
		if !added {
			if err := s.GuildMemberRoleRemove(r.GuildID, r.UserID, role.Role.String(), reason); err != nil {
				return fmt.Errorf("revoke role %s: %w", role.Role, err)
			}
			continue
		}
		if role.Unique {
			for _, other := range cfg.OtherEmojis(emoji) {
				if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, rr.APIName(other), r.UserID); err != nil {
					log.Warn("Failed to remove reaction", "message", r.MessageID, "emoji", other, "err", err)
				}
			}
		}
		if err := s.GuildMemberRoleAdd(r.GuildID, r.UserID, role.Role.String(), reason); err != nil {
			return fmt.Errorf("grant role %s: %w", role.Role, err)
		}
	}
	return nil
}
