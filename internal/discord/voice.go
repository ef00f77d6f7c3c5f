package discord

import (
	"fmt"

	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/tts"
	"github.com/mednis/medsbot/internal/voice"
)

var _ core.BotVoice = (*Bot)(nil)

// Player returns the guild's shared player, creating it on first use.
func (b *Bot) Player(guildID string) *voice.Player {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.players[guildID]; ok {
		return p
	}
	p := voice.NewPlayer(guildID, b.source, &voice.DiscordConnector{Session: b.dg})
	b.players[guildID] = p
	return p
}

// SpeechPlayers hands the TTS engine the same players music uses.
func (b *Bot) SpeechPlayers() tts.PlayerSource {
	return func(guildID string) tts.GuildPlayer { return b.Player(guildID) }
}

// FindUserVoiceState finds the voice state of a user
func (b *Bot) FindUserVoiceState(guildID, userID string) (*core.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return &core.VoiceState{
				ChannelID: vs.ChannelID,
				UserID:    vs.UserID,
			}, nil
		}
	}
	return nil, core.ErrNotInVoice
}

func (b *Bot) closePlayers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, p := range b.players {
		p.Close()
		delete(b.players, id)
	}
}
