package storage

import (
	"github.com/mednis/medsbot/internal/pastures"
	"github.com/mednis/medsbot/internal/reactionroles"
)

func (s *Storage) Pastures(guildID string) (pastures.Settings, error) {
	rec, err := s.Guild(guildID)
	return rec.Pastures, err
}

func (s *Storage) UpdatePastures(guildID string, fn func(*pastures.Settings) error) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error { return fn(&r.Pastures) })
}

func (s *Storage) EmbedConfigs(guildID string) ([]reactionroles.EmbedConfig, error) {
	rec, err := s.Guild(guildID)
	return rec.ReactionRoles, err
}

func (s *Storage) UpdateEmbedConfigs(guildID string, fn func(*[]reactionroles.EmbedConfig) error) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error { return fn(&r.ReactionRoles) })
}
