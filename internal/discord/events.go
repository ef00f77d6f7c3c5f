package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/core"
)

const genericError = "Something went wrong while running this command."

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info("discord bot is running", "user", r.User.Username, "guilds", len(r.Guilds))
}

// onGuildCreate fires for every guild on connect and when the bot joins a
// new one.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.isGuildBlacklisted(g.ID) {
		log.Info("leaving blacklisted guild", "guild", g.ID, "name", g.Name)
		if err := s.GuildLeave(g.ID); err != nil {
			log.Error("failed to leave guild", "guild", g.ID, "err", err)
		}
		return
	}
	if !b.cfg.InitSlashCommands {
		log.Debug("registering slash commands skipped", "guild", g.ID)
		return
	}
	if err := b.registerCommands(context.Background(), g.ID); err != nil {
		log.Error("failed to register commands", "guild", g.ID, "err", err)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	for _, cmd := range core.AllCommands() {
		if _, ok := core.Base(cmd).(core.MessageHandler); !ok {
			continue
		}
		ctx := &core.MessageContext{Session: s, Event: m, Storage: b.storage}
		b.dispatch(cmd, ctx)
	}
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.dispatchReaction(s, r.MessageReaction, r.Member, true)
}

func (b *Bot) onMessageReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.dispatchReaction(s, r.MessageReaction, nil, false)
}

// dispatchReaction hands reactions to every ReactionHandler. The bot's own
// reactions never reach them.
func (b *Bot) dispatchReaction(s *discordgo.Session, r *discordgo.MessageReaction, member *discordgo.Member, added bool) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}
	for _, cmd := range core.AllCommands() {
		if _, ok := core.Base(cmd).(core.ReactionHandler); !ok {
			continue
		}
		ctx := &core.MessageReactionContext{
			Session: s,
			Event:   r,
			Member:  member,
			Added:   added,
			Storage: b.storage,
		}
		b.dispatch(cmd, ctx)
	}
}

// onInteractionCreate is called when an interaction is created
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		cmd, ok := core.GetCommand(data.Name)
		if !ok {
			log.Warn("unknown command", "cmd", data.Name)
			return
		}
		b.dispatch(cmd, applicationCommandContext(s, i, b))

	case discordgo.InteractionApplicationCommandAutocomplete:
		data := i.ApplicationCommandData()
		if cmd, ok := core.GetCommand(data.Name); ok {
			b.dispatch(cmd, &core.AutocompleteContext{Session: s, Event: i, Storage: b.storage})
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		cmd, ok := commandForCustomID(customID)
		if !ok {
			log.Warn("no command for component", "custom_id", customID)
			return
		}
		b.dispatch(cmd, &core.ComponentInteractionContext{Session: s, Event: i, Storage: b.storage})

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		cmd, ok := commandForCustomID(customID)
		if !ok {
			log.Warn("no command for modal", "custom_id", customID)
			return
		}
		b.dispatch(cmd, &core.ModalContext{Session: s, Event: i, Storage: b.storage})

	default:
		log.Debug("unknown interaction type", "type", i.Type)
	}
}

func applicationCommandContext(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) interface{} {
	data := i.ApplicationCommandData()
	switch data.CommandType {
	case discordgo.MessageApplicationCommand:
		ctx := &core.MessageApplicationCommandContext{Session: s, Event: i, Storage: b.storage}
		if data.Resolved != nil {
			ctx.Target = data.Resolved.Messages[data.TargetID]
		}
		return ctx
	case discordgo.UserApplicationCommand:
		ctx := &core.UserApplicationCommandContext{Session: s, Event: i, Storage: b.storage}
		if data.Resolved != nil {
			ctx.Target = data.Resolved.Users[data.TargetID]
			if m := data.Resolved.Members[data.TargetID]; m != nil {
				m.User = ctx.Target
				m.GuildID = i.GuildID
				ctx.TargetMember = m
			}
		}
		return ctx
	}
	return &core.SlashInteractionContext{Session: s, Event: i, Storage: b.storage}
}

// commandForCustomID finds the command owning a component or modal: custom
// IDs start with the command name and a colon.
func commandForCustomID(customID string) (core.Command, bool) {
	name, _, _ := strings.Cut(customID, ":")
	return core.GetCommand(name)
}

// dispatch runs one handler. Errors and panics are logged; interactions
// also get a generic ephemeral reply.
func (b *Bot) dispatch(cmd core.Command, ctx interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("command panicked", "cmd", cmd.Name(), "panic", r)
			b.replyError(ctx)
		}
	}()
	if err := core.Dispatch(cmd, ctx); err != nil {
		log.Error("error running command", "cmd", cmd.Name(), "err", err)
		b.replyError(ctx)
	}
}

func (b *Bot) replyError(ctx interface{}) {
	var (
		s *discordgo.Session
		i *discordgo.InteractionCreate
	)
	switch v := ctx.(type) {
	case *core.SlashInteractionContext:
		s, i = v.Session, v.Event
	case *core.MessageApplicationCommandContext:
		s, i = v.Session, v.Event
	case *core.UserApplicationCommandContext:
		s, i = v.Session, v.Event
	case *core.ComponentInteractionContext:
		s, i = v.Session, v.Event
	case *core.ModalContext:
		s, i = v.Session, v.Event
	default:
		return
	}
	embed := &discordgo.MessageEmbed{Description: genericError, Color: 0xe74c3c}
	if core.RespondEmbedEphemeral(s, i, embed) != nil {
		// Already acknowledged, e.g. deferred.
		_ = core.FollowupEphemeral(s, i, genericError)
	}
}
