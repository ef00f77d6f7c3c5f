package storage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/pastures"
	"github.com/mednis/medsbot/internal/reactionroles"
)

const commandHistoryLimit int = 20

const (
	guildPrefix = "guild:"
	userPrefix  = "user:"
	globalKey   = "global"
)

var ErrNotFound = errors.New("not found")

// Storage keeps typed guild, user and global records in a datastore.
// Every mutation goes through one of the update helpers so concurrent
// handlers never lose each other's writes.
type Storage struct {
	ds      *datastore.DataStore
	catalog config.Catalog
	mu      sync.Mutex
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

type GuildRecord struct {
	CommandsDisabled []string                    `json:"cmd_disabled"`
	CommandsHistory  []CommandHistoryRecord      `json:"cmd_history"`
	TTS              TTSGuildSettings            `json:"tts"`
	Pastures         pastures.Settings           `json:"pastures"`
	ReactionRoles    []reactionroles.EmbedConfig `json:"reaction_roles"`
	Region           RegionSettings              `json:"region"`
	Timezones        TimezoneSettings            `json:"timezones"`
	Vxer             VxerSettings                `json:"vxer"`
}

type UserRecord struct {
	TTSEnabled bool   `json:"tts_enabled"`
	Voice      string `json:"voice"`
	Timezone   string `json:"timezone"`
}

type GlobalRecord struct {
	TTS        TTSGlobalSettings  `json:"tts"`
	Regions    map[string]string  `json:"regions"`
	Statistics StatisticsSettings `json:"statistics"`
}

func New(ds *datastore.DataStore, catalog config.Catalog) *Storage {
	return &Storage{ds: ds, catalog: catalog}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func guildKey(id string) string { return guildPrefix + id }
func userKey(id string) string  { return userPrefix + id }

func (s *Storage) defaultGuild() GuildRecord {
	p := s.catalog.Pastures
	return GuildRecord{
		CommandsDisabled: []string{},
		CommandsHistory:  []CommandHistoryRecord{},
		TTS:              defaultTTSGuild(),
		Pastures:         pastures.DefaultSettings(p.EmbedTitle, p.EmbedImage, p.EmbedColour, p.EmbedStrings),
		ReactionRoles:    []reactionroles.EmbedConfig{},
		Region:           RegionSettings{ChannelWhitelist: []string{}},
		Timezones:        TimezoneSettings{BoardUsers: []string{}},
		Vxer:             defaultVxer(),
	}
}

func (s *Storage) defaultUser() UserRecord {
	return UserRecord{Voice: s.DefaultVoice()}
}

func (s *Storage) defaultGlobal() GlobalRecord {
	return GlobalRecord{
		TTS:        defaultTTSGlobal(s.catalog),
		Statistics: StatisticsSettings{LoggingLevel: "info"},
	}
}

// loadGlobal fills Regions after decoding: a stored list replaces the
// catalog one instead of being merged into it.
func (s *Storage) loadGlobal() (GlobalRecord, error) {
	rec, _, err := load(s, globalKey, s.defaultGlobal())
	if err != nil {
		return rec, err
	}
	if rec.Regions == nil {
		rec.Regions = make(map[string]string, len(s.catalog.Regions))
		for k, v := range s.catalog.Regions {
			rec.Regions[k] = v
		}
	}
	return rec, nil
}

// DefaultVoice is the voice users fall back to when their own fails.
func (s *Storage) DefaultVoice() string {
	if s.catalog.TTS.DefaultVoice == "" {
		return "Brian"
	}
	return s.catalog.TTS.DefaultVoice
}

// load decodes key over def, so keys missing from older documents keep
// their defaults. The caller must hold s.mu.
func load[T any](s *Storage, key string, def T) (T, bool, error) {
	rec := def
	ok, err := s.ds.Get(key, &rec)
	if err != nil {
		return def, ok, fmt.Errorf("load %s: %w", key, err)
	}
	return rec, ok, nil
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (GuildRecord, error) {
	rec, ok, err := load(s, guildKey(guildID), s.defaultGuild())
	if err != nil {
		return rec, err
	}
	if !ok {
		if err := s.ds.Put(guildKey(guildID), rec); err != nil {
			return rec, err
		}
	}
	rec.normalize()
	return rec, nil
}

func (r *GuildRecord) normalize() {
	if r.Pastures.Servers == nil {
		r.Pastures.Servers = map[string]pastures.Server{}
	}
	if r.TTS.NameReplacements == nil {
		r.TTS.NameReplacements = map[string]string{}
	}
	if r.TTS.WordReplacements == nil {
		r.TTS.WordReplacements = map[string]string{}
	}
	if len(r.CommandsHistory) > commandHistoryLimit {
		r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-commandHistoryLimit:]
	}
}

// Guild returns a copy of the guild's record.
func (s *Storage) Guild(guildID string) (GuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateGuildRecord(guildID)
}

// UpdateGuild applies fn to the guild's record and stores the result. The
// record is left untouched when fn returns an error.
func (s *Storage) UpdateGuild(guildID string, fn func(*GuildRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}
	rec.normalize()
	return s.ds.Put(guildKey(guildID), rec)
}

func (s *Storage) User(userID string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, _, err := load(s, userKey(userID), s.defaultUser())
	return rec, err
}

func (s *Storage) UpdateUser(userID string, fn func(*UserRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, _, err := load(s, userKey(userID), s.defaultUser())
	if err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}
	return s.ds.Put(userKey(userID), rec)
}

func (s *Storage) Global() (GlobalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadGlobal()
}

func (s *Storage) UpdateGlobal(fn func(*GlobalRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadGlobal()
	if err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}
	return s.ds.Put(globalKey, rec)
}

// GuildIDs lists every guild with a stored record.
func (s *Storage) GuildIDs() []string {
	keys := s.ds.Keys(guildPrefix)
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = strings.TrimPrefix(k, guildPrefix)
	}
	return ids
}

// DeleteUserData removes everything stored about userID: the user record
// and the user's entries in guild lists.
func (s *Storage) DeleteUserData(userID string) error {
	for _, guildID := range s.GuildIDs() {
		err := s.UpdateGuild(guildID, func(r *GuildRecord) error {
			r.TTS.BlacklistedUsers = slices.DeleteFunc(r.TTS.BlacklistedUsers, func(id string) bool { return id == userID })
			r.Timezones.BoardUsers = slices.DeleteFunc(r.Timezones.BoardUsers, func(id string) bool { return id == userID })
			r.CommandsHistory = slices.DeleteFunc(r.CommandsHistory, func(h CommandHistoryRecord) bool { return h.UserID == userID })
			return nil
		})
		if err != nil {
			return fmt.Errorf("scrub guild %s: %w", guildID, err)
		}
	}

	s.mu.Lock()
	s.ds.Delete(userKey(userID))
	s.mu.Unlock()
	return nil
}

func addUnique(list []string, v string) ([]string, bool) {
	if slices.Contains(list, v) {
		return list, false
	}
	return append(list, v), true
}

func removeValue(list []string, v string) ([]string, bool) {
	i := slices.Index(list, v)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}
