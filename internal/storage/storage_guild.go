package storage

type RegionSettings struct {
	Enabled          bool     `json:"enabled"`
	ChannelWhitelist []string `json:"channel_whitelist"`
}

type TimezoneSettings struct {
	PersistentChannel string   `json:"persistent_channel"`
	PersistentMessage string   `json:"persistent_message"`
	GeoNamesAPIKey    string   `json:"geonames_apikey"`
	BoardUsers        []string `json:"board_users"`
}

type VxerSettings struct {
	TikTok             bool   `json:"tiktok"`
	Twitter            bool   `json:"twitter"`
	TikTokReplacement  string `json:"tiktok_replacement"`
	TwitterReplacement string `json:"twitter_replacement"`
}

type StatisticsSettings struct {
	Address         string `json:"address"`
	Bucket          string `json:"bucket"`
	Token           string `json:"token"`
	Org             string `json:"org"`
	LogVCStats      bool   `json:"log_vc_stats"`
	LogMessageStats bool   `json:"log_message_stats"`
	LogBotStats     bool   `json:"log_bot_stats"`
	LoggingLevel    string `json:"logging_level"`
}

// Configured reports whether a database has been set up.
func (s StatisticsSettings) Configured() bool {
	return s.Address != "" && s.Bucket != "" && s.Token != "" && s.Org != ""
}

func defaultVxer() VxerSettings {
	return VxerSettings{
		TikTokReplacement:  "vxtiktok.com",
		TwitterReplacement: "vxtwitter.com",
	}
}

func (s *Storage) UpdateRegion(guildID string, fn func(*RegionSettings) error) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error { return fn(&r.Region) })
}

// Regions returns the known voice regions, id to display name.
func (s *Storage) Regions() (map[string]string, error) {
	rec, err := s.Global()
	return rec.Regions, err
}

func (s *Storage) SetRegions(regions map[string]string) error {
	return s.UpdateGlobal(func(g *GlobalRecord) error {
		g.Regions = regions
		return nil
	})
}

func (s *Storage) UpdateTimezones(guildID string, fn func(*TimezoneSettings) error) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error { return fn(&r.Timezones) })
}

func (s *Storage) SetUserTimezone(userID, tz string) error {
	return s.UpdateUser(userID, func(u *UserRecord) error {
		u.Timezone = tz
		return nil
	})
}

// ToggleBoardUser adds or removes userID from the guild's time board and
// reports whether the user is now on it.
func (s *Storage) ToggleBoardUser(guildID, userID string) (bool, error) {
	var on bool
	err := s.UpdateTimezones(guildID, func(t *TimezoneSettings) error {
		var removed bool
		if t.BoardUsers, removed = removeValue(t.BoardUsers, userID); !removed {
			t.BoardUsers = append(t.BoardUsers, userID)
			on = true
		}
		return nil
	})
	return on, err
}

func (s *Storage) UpdateVxer(guildID string, fn func(*VxerSettings) error) error {
	return s.UpdateGuild(guildID, func(r *GuildRecord) error { return fn(&r.Vxer) })
}

func (s *Storage) Statistics() (StatisticsSettings, error) {
	rec, err := s.Global()
	return rec.Statistics, err
}

func (s *Storage) UpdateStatistics(fn func(*StatisticsSettings) error) error {
	return s.UpdateGlobal(func(g *GlobalRecord) error { return fn(&g.Statistics) })
}
