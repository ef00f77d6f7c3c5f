package storage

import (
	"slices"

	"github.com/mednis/medsbot/internal/config"
)

type TTSGuildSettings struct {
	SayName                bool              `json:"say_name"`
	BlacklistedUsers       []string          `json:"blacklisted_users"`
	WhitelistedChannels    []string          `json:"whitelisted_channels"`
	MaxMessageLength       int               `json:"max_message_length"`
	MaxWordLength          int               `json:"max_word_length"`
	RepeatedWordPercentage int               `json:"repeated_word_percentage"`
	Volume                 int               `json:"tts_volume"`
	NameReplacements       map[string]string `json:"name_replacements"`
	WordReplacements       map[string]string `json:"word_replacements"`
}

// TTSGlobalSettings is the bot-wide speech backend setup, exported and
// imported as JSON by the owner.
type TTSGlobalSettings struct {
	RegularVoices []config.Voice    `json:"regular_voices"`
	ExtraVoices   []config.Voice    `json:"extra_voices"`
	Statistics    bool              `json:"statistics"`
	LocalAPI      bool              `json:"local_api"`
	LocalVoices   map[string]string `json:"local_voices"`
	LocalAPIURL   string            `json:"local_api_url"`
	PublicAPIURL  string            `json:"public_api_url"`
}

func defaultTTSGuild() TTSGuildSettings {
	return TTSGuildSettings{
		BlacklistedUsers:       []string{},
		WhitelistedChannels:    []string{},
		MaxMessageLength:       400,
		MaxWordLength:          15,
		RepeatedWordPercentage: 80,
		Volume:                 100,
		NameReplacements:       map[string]string{},
		WordReplacements:       map[string]string{},
	}
}

func defaultTTSGlobal(c config.Catalog) TTSGlobalSettings {
	return TTSGlobalSettings{
		RegularVoices: slices.Clone(c.TTS.RegularVoices),
		ExtraVoices:   slices.Clone(c.TTS.ExtraVoices),
		LocalVoices:   map[string]string{},
		LocalAPIURL:   c.TTS.LocalAPIURL,
		PublicAPIURL:  c.TTS.PublicAPIURL,
	}
}

func (s *Storage) TTSSettings(guildID string) (TTSGuildSettings, error) {
	rec, err := s.Guild(guildID)
	return rec.TTS, err
}

func (s *Storage) UpdateTTS(guildID string, fn func(*TTSGuildSettings) error) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error { return fn(&r.TTS) })
}

// BlacklistTTSUser reports false when the user was already blacklisted.
func (s *Storage) BlacklistTTSUser(guildID, userID string) (bool, error) {
	var added bool
	err := s.UpdateTTS(guildID, func(t *TTSGuildSettings) error {
		t.BlacklistedUsers, added = addUnique(t.BlacklistedUsers, userID)
		return nil
	})
	return added, err
}

// UnblacklistTTSUser reports false when the user was not blacklisted.
func (s *Storage) UnblacklistTTSUser(guildID, userID string) (bool, error) {
	var removed bool
	err := s.UpdateTTS(guildID, func(t *TTSGuildSettings) error {
		t.BlacklistedUsers, removed = removeValue(t.BlacklistedUsers, userID)
		return nil
	})
	return removed, err
}

func (s *Storage) AddTTSChannel(guildID, channelID string) (bool, error) {
	var added bool
	err := s.UpdateTTS(guildID, func(t *TTSGuildSettings) error {
		t.WhitelistedChannels, added = addUnique(t.WhitelistedChannels, channelID)
		return nil
	})
	return added, err
}

func (s *Storage) RemoveTTSChannel(guildID, channelID string) (bool, error) {
	var removed bool
	err := s.UpdateTTS(guildID, func(t *TTSGuildSettings) error {
		t.WhitelistedChannels, removed = removeValue(t.WhitelistedChannels, channelID)
		return nil
	})
	return removed, err
}

func (s *Storage) SetTTSEnabled(userID string, enabled bool) error {
	return s.UpdateUser(userID, func(u *UserRecord) error {
		u.TTSEnabled = enabled
		return nil
	})
}

func (s *Storage) SetVoice(userID, voice string) error {
	return s.UpdateUser(userID, func(u *UserRecord) error {
		u.Voice = voice
		return nil
	})
}

func (s *Storage) TTSGlobal() (TTSGlobalSettings, error) {
	rec, err := s.Global()
	return rec.TTS, err
}
