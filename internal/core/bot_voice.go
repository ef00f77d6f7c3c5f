package core

import (
	"errors"

	"github.com/mednis/medsbot/internal/voice"
)

var ErrNotInVoice = errors.New("user not in any voice channel")

// BotVoice is what the runtime offers commands that play audio.
type BotVoice interface {
	Player(guildID string) *voice.Player
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
}

type VoiceState struct {
	ChannelID string
	UserID    string
}
