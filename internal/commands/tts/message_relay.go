package tts

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	engine "github.com/mednis/medsbot/internal/tts"
)

const (
	relayTimeout   = 30 * time.Second
	leftVoiceDelay = 10 * time.Second
)

// RelayListener reads whitelisted chat messages out loud.
type RelayListener struct {
	Engine *engine.Engine
	Voice  core.BotVoice
}

func (l *RelayListener) Name() string        { return "tts_relay" }
func (l *RelayListener) Description() string { return "Reads chat messages out loud" }
func (l *RelayListener) Aliases() []string   { return []string{} }
func (l *RelayListener) Group() string       { return group }
func (l *RelayListener) Category() string    { return config.CategoryVoice }
func (l *RelayListener) RequireAdmin() bool  { return false }
func (l *RelayListener) RequireDev() bool    { return false }
func (l *RelayListener) Run(interface{}) error {
	return nil
}

func (l *RelayListener) Message(ctx *core.MessageContext) error {
	m := ctx.Event.Message
	if m.Author == nil || m.GuildID == "" {
		return nil
	}
	msg := engine.Message{
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		AuthorID:       m.Author.ID,
		AuthorName:     displayName(m.Member, m.Author),
		Bot:            m.Author.Bot,
		Content:        m.Content,
		ResolveMention: mentionResolver(ctx.Session, m),
	}
	if vs, err := l.Voice.FindUserVoiceState(m.GuildID, m.Author.ID); err == nil {
		msg.VoiceChannelID = vs.ChannelID
	}

	rctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()
	err := l.Engine.Relay(rctx, msg)
	if errors.Is(err, engine.ErrLeftVoice) {
		replyThenDelete(ctx.Session, m, err.Error(), leftVoiceDelay)
		return nil
	}
	return err
}

func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// mentionResolver names users mentioned in m, preferring their nickname in
// the guild.
func mentionResolver(s *discordgo.Session, m *discordgo.Message) func(string) (string, bool) {
	return func(id string) (string, bool) {
		if s != nil && s.State != nil {
			if member, err := s.State.Member(m.GuildID, id); err == nil && member.User != nil {
				return displayName(member, member.User), true
			}
		}
		for _, u := range m.Mentions {
			if u.ID == id {
				return displayName(nil, u), true
			}
		}
		return "", false
	}
}

func replyThenDelete(s *discordgo.Session, m *discordgo.Message, content string, after time.Duration) {
	reply, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		log.Warn("Failed to reply", "channel", m.ChannelID, "err", err)
		return
	}
	time.AfterFunc(after, func() {
		if err := s.ChannelMessageDelete(reply.ChannelID, reply.ID); err != nil {
			log.Debug("Failed to delete reply", "channel", reply.ChannelID, "err", err)
		}
	})
}
