// Package tts reads chat messages out loud in the author's voice channel.
// Speech shares each guild's voice player with music; the Arbiter decides
// where a clip goes in the queue and restores interrupted music afterwards.
package tts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/internal/voice"
)

var ErrLeftVoice = errors.New("You have left a voice channel, TTS has been disabled for you.")

// GuildPlayer is a Player that reports its events.
type GuildPlayer interface {
	Player
	Subscribe(fn func(voice.Event)) func()
}

// PlayerSource returns the shared player of a guild, creating it if needed.
type PlayerSource func(guildID string) GuildPlayer

// Message is a chat message considered for speech.
type Message struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	// AuthorName is the nickname, or the display name without one.
	AuthorName string
	Bot        bool
	Content    string
	// VoiceChannelID is the author's voice channel, empty when not in one.
	VoiceChannelID string
	ResolveMention func(userID string) (string, bool)
}

type Engine struct {
	storage *storage.Storage
	fetcher *Fetcher
	players PlayerSource
	spoken  metrics.Observer
	jokes   []string

	mu       sync.Mutex
	arbiters map[string]*Arbiter
	unsub    []func()
}

func NewEngine(st *storage.Storage, fetcher *Fetcher, players PlayerSource, spoken metrics.Observer, jokes []string) *Engine {
	return &Engine{
		storage:  st,
		fetcher:  fetcher,
		players:  players,
		spoken:   spoken,
		jokes:    jokes,
		arbiters: make(map[string]*Arbiter),
	}
}

// Arbiter returns the guild's arbiter, subscribing it to the guild's
// player on first use.
func (e *Engine) Arbiter(guildID string) *Arbiter {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.arbiters[guildID]; ok {
		return a
	}
	p := e.players(guildID)
	a := NewArbiter(p)
	e.unsub = append(e.unsub, p.Subscribe(a.HandleEvent))
	e.arbiters[guildID] = a
	return a
}

// Close detaches every arbiter from its player.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, fn := range e.unsub {
		fn()
	}
	e.unsub = nil
	clear(e.arbiters)
}

func (e *Engine) filterOptions(s storage.TTSGuildSettings, resolve func(string) (string, bool)) FilterOptions {
	opts := DefaultFilterOptions()
	opts.MaxLength = s.MaxMessageLength
	opts.MaxWordLength = s.MaxWordLength
	opts.RepeatedWordPercentage = s.RepeatedWordPercentage
	opts.WordReplacements = s.WordReplacements
	opts.NameReplacements = s.NameReplacements
	opts.ResolveMention = resolve
	opts.Jokes = e.jokes
	return opts
}

// Relay speaks msg if the guild and the author allow it. It returns
// ErrLeftVoice after turning TTS off for an author who is no longer in a
// voice channel; the caller tells them.
func (e *Engine) Relay(ctx context.Context, msg Message) error {
	if msg.GuildID == "" || msg.Bot {
		return nil
	}
	settings, err := e.storage.TTSSettings(msg.GuildID)
	if err != nil {
		return err
	}
	if !slices.Contains(settings.WhitelistedChannels, msg.ChannelID) ||
		slices.Contains(settings.BlacklistedUsers, msg.AuthorID) {
		return nil
	}
	user, err := e.storage.User(msg.AuthorID)
	if err != nil {
		return err
	}
	if !user.TTSEnabled {
		return nil
	}
	if msg.VoiceChannelID == "" {
		if err := e.storage.SetTTSEnabled(msg.AuthorID, false); err != nil {
			return err
		}
		return ErrLeftVoice
	}

	text := Filter(msg.Content, e.filterOptions(settings, msg.ResolveMention))
	if text == "" {
		return nil
	}
	if settings.SayName {
		text = replaceName(msg.AuthorName, settings.NameReplacements) + " says " + text
	}

	path, voiceName, err := e.fetch(ctx, msg.AuthorID, user.Voice, text)
	if err != nil {
		return err
	}

	req := SpeechRequest{
		Text:      text,
		Voice:     voiceName,
		ChannelID: msg.VoiceChannelID,
		Volume:    settings.Volume,
	}
	if err := e.Arbiter(msg.GuildID).Speak(ctx, req, path); err != nil {
		return fmt.Errorf("play speech: %w", err)
	}
	if e.spoken != nil {
		e.spoken.Observe(1)
	}
	log.Debug("speech relayed", "guild", msg.GuildID, "user", msg.AuthorID, "voice", voiceName)
	return nil
}

// fetch synthesizes text. When the user's voice fails it is reset to the
// default voice and the request is tried once more.
func (e *Engine) fetch(ctx context.Context, userID, voiceName, text string) (string, string, error) {
	global, err := e.storage.TTSGlobal()
	if err != nil {
		return "", "", err
	}
	path, err := e.fetcher.Fetch(ctx, global, voiceName, text)
	if err == nil {
		return path, voiceName, nil
	}
	if !errors.Is(err, ErrFetch) {
		return "", "", err
	}

	fallback := e.storage.DefaultVoice()
	log.Warn("speech fetch failed, falling back to default voice",
		"user", userID, "voice", voiceName, "fallback", fallback, "err", err)
	if err := e.storage.SetVoice(userID, fallback); err != nil {
		return "", "", err
	}
	path, err = e.fetcher.Fetch(ctx, global, fallback, text)
	if err != nil {
		return "", "", err
	}
	return path, fallback, nil
}

// SkipSpeech ends the speech clip playing in guildID.
func (e *Engine) SkipSpeech(guildID string) error {
	return e.Arbiter(guildID).SkipSpeech()
}
