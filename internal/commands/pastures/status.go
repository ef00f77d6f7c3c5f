package pastures

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/minecraft"
	"github.com/mednis/medsbot/internal/pastures"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/pkg/util"
)

// StatusInterval is how often the status embeds are refreshed.
const StatusInterval = time.Minute

const statusWorkers = 4

// statusEmbed asks the server who is online and renders the status embed.
func (b *Bridge) statusEmbed(ctx context.Context, settings pastures.Settings, srv pastures.Server, note string) (*discordgo.MessageEmbed, error) {
	online, err := minecraft.ListOnline(ctx, b.Dial(srv.Address, srv.Password))
	if err != nil {
		return nil, err
	}
	view := pastures.StatusView{
		Online: online,
		Word:   pick(pastures.Words(settings, srv)),
		Note:   note,
	}
	if srv.Config.Embed.RequestStatus && b.Status != nil {
		address := srv.Config.Embed.PublicIP
		if address == "" {
			address = srv.Address
		}
		if st, err := b.Status.Lookup(ctx, address); err == nil {
			view.Status = &st
		} else {
			log.Debug("Status lookup failed", "address", address, "err", err)
		}
	}
	return pastures.StatusEmbed(settings, srv, view), nil
}

func pick(words []string) string {
	return words[rand.IntN(len(words))]
}

type statusTarget struct {
	guildID string
	name    string
}

// UpdateStatuses refreshes every posted status message. A message that no
// longer exists has its IDs cleared.
func (b *Bridge) UpdateStatuses(ctx context.Context, s *discordgo.Session, st *storage.Storage) error {
	var targets []statusTarget
	for _, guildID := range st.GuildIDs() {
		settings, err := st.Pastures(guildID)
		if err != nil {
			return err
		}
		for name, srv := range settings.Servers {
			if !srv.Config.Embed.MessageID.IsZero() {
				targets = append(targets, statusTarget{guildID, name})
			}
		}
	}

	util.Each(ctx, targets, statusWorkers, func(ctx context.Context, t statusTarget) error {
		return b.updateStatus(ctx, s, st, t)
	}, func(t statusTarget, err error) {
		log.Warn("Failed to update status message", "guild", t.guildID, "server", t.name, "err", err)
	})
	return nil
}

func (b *Bridge) updateStatus(ctx context.Context, s *discordgo.Session, st *storage.Storage, t statusTarget) error {
	settings, err := st.Pastures(t.guildID)
	if err != nil {
		return err
	}
	srv, ok := settings.Servers[t.name]
	if !ok || srv.Config.Embed.MessageID.IsZero() {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, rconTimeout)
	defer cancel()
	e, err := b.statusEmbed(rctx, settings, srv, pastures.UpdatingNote)
	if err != nil {
		b.count("unreachable")
		e = pastures.ErrorEmbed(settings.EmbedTitle, err)
	}

	channelID, messageID := srv.Config.Embed.ChannelID.String(), srv.Config.Embed.MessageID.String()
	_, err = s.ChannelMessageEditEmbed(channelID, messageID, e)
	if isGone(err) {
		log.Warn("Status message or channel was deleted, clearing stored IDs", "guild", t.guildID, "server", t.name)
		b.count("gone")
		_, err = updateServer(st, t.guildID, t.name, func(srv *pastures.Server) { srv.Config.ClearIDs() })
		return err
	}
	if err != nil {
		b.count("failed")
		return err
	}
	b.count("ok")
	return nil
}

func (b *Bridge) count(outcome string) {
	if b.Updates != nil {
		b.Updates.Observe(1, outcome)
	}
}

// isGone reports whether err says the message or its channel is gone.
func isGone(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Message == nil {
		return false
	}
	switch rest.Message.Code {
	case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
		return true
	}
	return false
}
