package core

import (
	"github.com/bwmarrin/discordgo"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error { return w.wrap(ctx) }

func (w *wrappedCommand) Component(ctx *ComponentInteractionContext) error { return w.wrap(ctx) }

func (w *wrappedCommand) Modal(ctx *ModalContext) error { return w.wrap(ctx) }

func (w *wrappedCommand) Autocomplete(ctx *AutocompleteContext) error { return w.wrap(ctx) }

func (w *wrappedCommand) Message(ctx *MessageContext) error { return w.wrap(ctx) }

func (w *wrappedCommand) Reaction(ctx *MessageReactionContext) error { return w.wrap(ctx) }

func (w *wrappedCommand) Unwrap() Command { return w.Command }

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func (w *wrappedCommand) ContextDefinition() *discordgo.ApplicationCommand {
	if cp, ok := w.Command.(ContextMenuProvider); ok {
		return cp.ContextDefinition()
	}
	return nil
}

// Base strips every middleware layer, so callers can check which hooks
// the command really implements.
func Base(cmd Command) Command {
	for {
		w, ok := cmd.(interface{ Unwrap() Command })
		if !ok {
			return cmd
		}
		cmd = w.Unwrap()
	}
}

// Dispatch hands ctx to the hook of cmd matching its type.
func Dispatch(cmd Command, ctx interface{}) error {
	switch v := ctx.(type) {
	case *ComponentInteractionContext:
		if h, ok := cmd.(ComponentInteractionHandler); ok {
			return h.Component(v)
		}
	case *ModalContext:
		if h, ok := cmd.(ModalHandler); ok {
			return h.Modal(v)
		}
	case *AutocompleteContext:
		if h, ok := cmd.(AutocompleteHandler); ok {
			return h.Autocomplete(v)
		}
	case *MessageContext:
		if h, ok := cmd.(MessageHandler); ok {
			return h.Message(v)
		}
	case *MessageReactionContext:
		if h, ok := cmd.(ReactionHandler); ok {
			return h.Reaction(v)
		}
	default:
		return cmd.Run(ctx)
	}
	return nil
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// deny tells the invoker why nothing happened. Gateway events and
// autocomplete requests get no reply.
func deny(ctx interface{}, msg string) {
	if _, ok := ctx.(*AutocompleteContext); ok {
		return
	}
	if i := interaction(ctx); i != nil {
		_ = RespondEphemeral(session(ctx), i, msg)
	}
}

func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if guildID(ctx) == "" {
					deny(ctx, "This command can only be used in a server.")
					return nil
				}
				return Dispatch(cmd, ctx)
			},
		}
	}
}
