// Package discord runs the gateway session: it routes events to the
// command registry, keeps guild commands in sync and owns the per-guild
// voice players.
package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/internal/voice"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsMessageContent

// Bot is a Discord bot
type Bot struct {
	dg      *discordgo.Session
	storage *storage.Storage
	cfg     *config.Config
	started time.Time

	// registration paces command creation across guilds
	registration *rate.Limiter

	mu      sync.Mutex
	players map[string]*voice.Player
	source  voice.Source
}

// New creates the session and wires the event handlers. Nothing connects
// until Run.
func New(cfg *config.Config, st *storage.Storage) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents

	b := &Bot{
		dg:           dg,
		storage:      st,
		cfg:          cfg,
		started:      time.Now(),
		registration: rate.NewLimiter(rate.Every(time.Second/40), 1),
		players:      make(map[string]*voice.Player),
		source:       voice.NewFFmpegSource(),
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageReactionAdd)
	dg.AddHandler(b.onMessageReactionRemove)
	dg.AddHandler(b.onInteractionCreate)
	return b, nil
}

func (b *Bot) Session() *discordgo.Session { return b.dg }

func (b *Bot) Uptime() time.Duration { return time.Since(b.started) }

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	go b.handleSystemEvents(ctx)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	b.closePlayers()
	return b.dg.Close()
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}

// appID is the bot's own user ID, which is also its application ID.
func (b *Bot) appID() (string, error) {
	if b.dg.State != nil && b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("fetch self: %w", err)
	}
	return u.ID, nil
}
