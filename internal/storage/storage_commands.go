package storage

import "slices"

func (s *Storage) DisableGroup(guildID, group string) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error {
		r.CommandsDisabled, _ = addUnique(r.CommandsDisabled, group)
		return nil
	})
}

func (s *Storage) EnableGroup(guildID, group string) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error {
		r.CommandsDisabled, _ = removeValue(r.CommandsDisabled, group)
		return nil
	})
}

func (s *Storage) IsGroupDisabled(guildID, group string) (bool, error) {
	rec, err := s.Guild(guildID)
	if err != nil {
		return false, err
	}
	return slices.Contains(rec.CommandsDisabled, group), nil
}

func (s *Storage) GetDisabledGroups(guildID string) ([]string, error) {
	rec, err := s.Guild(guildID)
	if err != nil {
		return nil, err
	}
	return rec.CommandsDisabled, nil
}

// AppendCommandToHistory records a command run, keeping the newest entries.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error {
		r.CommandsHistory = append(r.CommandsHistory, command)
		return nil
	})
}

func (s *Storage) GetCommandsHistory(guildID string) ([]CommandHistoryRecord, error) {
	rec, err := s.Guild(guildID)
	if err != nil {
		return nil, err
	}
	return rec.CommandsHistory, nil
}
