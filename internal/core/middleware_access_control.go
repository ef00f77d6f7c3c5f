package core

import (
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

var developerID atomic.Value

// SetDeveloperID sets the bot owner allowed to run developer commands.
func SetDeveloperID(id string) { developerID.Store(id) }

func IsDeveloper(userID string) bool {
	id, _ := developerID.Load().(string)
	return id != "" && userID == id
}

// IsAdministrator reports whether the invoking member has the
// Administrator permission, or is the developer.
func IsAdministrator(member *discordgo.Member) bool {
	if member == nil || member.User == nil {
		return false
	}
	if IsDeveloper(member.User.ID) {
		return true
	}
	return member.Permissions&discordgo.PermissionAdministrator != 0
}

// WithAccessControl enforces RequireAdmin and RequireDev on interactions.
// Gateway events pass through untouched.
func WithAccessControl() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				i := interaction(ctx)
				if i == nil {
					return Dispatch(cmd, ctx)
				}
				if _, ok := ctx.(*AutocompleteContext); ok {
					return Dispatch(cmd, ctx)
				}

				user := InteractionUser(i)
				if cmd.RequireDev() && (user == nil || !IsDeveloper(user.ID)) {
					deny(ctx, "This command is only available to the bot owner.")
					return nil
				}
				if cmd.RequireAdmin() {
					if i.GuildID == "" || i.Member == nil {
						deny(ctx, "Cannot determine your admin status in this context.")
						return nil
					}
					if !IsAdministrator(i.Member) {
						deny(ctx, "You must be an admin to use this command.")
						return nil
					}
				}
				return Dispatch(cmd, ctx)
			},
		}
	}
}
