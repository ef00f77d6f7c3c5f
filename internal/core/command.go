// Package core is the command framework shared by every cog: the Command
// interface, the contexts handed to handlers, middleware and reply helpers.
package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	RequireAdmin() bool
	RequireDev() bool
	Run(ctx interface{}) error
}

// Providers - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

type ContextMenuProvider interface {
	ContextDefinition() *discordgo.ApplicationCommand
}

// BotPermissionProvider lists permissions the bot needs in the channel.
type BotPermissionProvider interface {
	BotPermissions() []int64
}

// Hooks beyond Run. Component and modal custom IDs start with the
// command name followed by ':'.
type ComponentInteractionHandler interface {
	Component(*ComponentInteractionContext) error
}

type ModalHandler interface {
	Modal(*ModalContext) error
}

type AutocompleteHandler interface {
	Autocomplete(*AutocompleteContext) error
}

// MessageHandler sees every guild message.
type MessageHandler interface {
	Message(*MessageContext) error
}

// ReactionHandler sees reactions being added and removed.
type ReactionHandler interface {
	Reaction(*MessageReactionContext) error
}

// Contexts - what runtime hands you when executing a command
// Slash command
type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type ModalContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type AutocompleteContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// Context menu over a message
type MessageApplicationCommandContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Target  *discordgo.Message
}

// Context menu over a user
type UserApplicationCommandContext struct {
	Session      *discordgo.Session
	Event        *discordgo.InteractionCreate
	Storage      *storage.Storage
	Target       *discordgo.User
	TargetMember *discordgo.Member
}

// Message
type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Storage *storage.Storage
}

// Reaction added to or removed from a message. Member is only set for
// additions.
type MessageReactionContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageReaction
	Member  *discordgo.Member
	Added   bool
	Storage *storage.Storage
}

// interaction returns the interaction behind ctx, nil for gateway events.
func interaction(ctx interface{}) *discordgo.InteractionCreate {
	switch v := ctx.(type) {
	case *SlashInteractionContext:
		return v.Event
	case *ComponentInteractionContext:
		return v.Event
	case *ModalContext:
		return v.Event
	case *AutocompleteContext:
		return v.Event
	case *MessageApplicationCommandContext:
		return v.Event
	case *UserApplicationCommandContext:
		return v.Event
	}
	return nil
}

func session(ctx interface{}) *discordgo.Session {
	switch v := ctx.(type) {
	case *SlashInteractionContext:
		return v.Session
	case *ComponentInteractionContext:
		return v.Session
	case *ModalContext:
		return v.Session
	case *AutocompleteContext:
		return v.Session
	case *MessageApplicationCommandContext:
		return v.Session
	case *UserApplicationCommandContext:
		return v.Session
	case *MessageContext:
		return v.Session
	case *MessageReactionContext:
		return v.Session
	}
	return nil
}

func contextStorage(ctx interface{}) *storage.Storage {
	switch v := ctx.(type) {
	case *SlashInteractionContext:
		return v.Storage
	case *ComponentInteractionContext:
		return v.Storage
	case *ModalContext:
		return v.Storage
	case *AutocompleteContext:
		return v.Storage
	case *MessageApplicationCommandContext:
		return v.Storage
	case *UserApplicationCommandContext:
		return v.Storage
	case *MessageContext:
		return v.Storage
	case *MessageReactionContext:
		return v.Storage
	}
	return nil
}

func guildID(ctx interface{}) string {
	if i := interaction(ctx); i != nil {
		return i.GuildID
	}
	switch v := ctx.(type) {
	case *MessageContext:
		return v.Event.GuildID
	case *MessageReactionContext:
		return v.Event.GuildID
	}
	return ""
}

// InteractionUser is the user behind an interaction, in guilds or DMs.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
