package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionAdministrator:      "Administrator",
	discordgo.PermissionManageChannels:     "Manage Channels",
	discordgo.PermissionManageGuild:        "Manage Server",
	discordgo.PermissionManageRoles:        "Manage Roles",
	discordgo.PermissionManageMessages:     "Manage Messages",
	discordgo.PermissionAddReactions:       "Add Reactions",
	discordgo.PermissionViewChannel:        "View Channel",
	discordgo.PermissionSendMessages:       "Send Messages",
	discordgo.PermissionEmbedLinks:         "Embed Links",
	discordgo.PermissionAttachFiles:        "Attach Files",
	discordgo.PermissionReadMessageHistory: "Read Message History",
	discordgo.PermissionUseExternalEmojis:  "Use External Emojis",
	discordgo.PermissionVoiceConnect:       "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:         "Speak",
	discordgo.PermissionVoiceMoveMembers:   "Move Members",
}

// MissingPermissions names every permission in required that have lacks.
// Administrator implies everything.
func MissingPermissions(have int64, required ...int64) []string {
	if have&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	var missing []string
	for _, p := range required {
		if have&p != 0 {
			continue
		}
		name := PermissionNames[p]
		if name == "" {
			name = fmt.Sprintf("0x%x", p)
		}
		missing = append(missing, name)
	}
	return missing
}

// WithBotPermissionCheck refuses interactions when the bot lacks a
// permission listed by the command's BotPermissions in the channel.
func WithBotPermissionCheck() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				bp, ok := Base(cmd).(BotPermissionProvider)
				i := interaction(ctx)
				if !ok || i == nil || i.GuildID == "" {
					return Dispatch(cmd, ctx)
				}
				if _, auto := ctx.(*AutocompleteContext); auto {
					return Dispatch(cmd, ctx)
				}
				if missing := MissingPermissions(i.AppPermissions, bp.BotPermissions()...); len(missing) > 0 {
					deny(ctx, fmt.Sprintf(
						"I need the following permissions in this channel to run this command:\n`%s`",
						strings.Join(missing, "`, `"),
					))
					return nil
				}
				return Dispatch(cmd, ctx)
			},
		}
	}
}
