package timezones

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/internal/timezones"
	"github.com/mednis/medsbot/pkg/retrylimit"
	"github.com/mednis/medsbot/pkg/util"
)

const (
	boardName      = "tz_board"
	boardClockID   = boardName + ":12"
	boardToggleID  = boardName + ":toggle"
	boardModalID   = boardName + ":city"
	boardCityInput = "city"
	boardWorkers   = 4
)

// Board keeps the persistent server time message of every guild that
// set a channel, and answers its buttons.
type Board struct {
	GeoNames *timezones.GeoNamesClient
	Cooldown *retrylimit.Cooldown
}

func (b *Board) Name() string          { return boardName }
func (b *Board) Description() string   { return "Server time board" }
func (b *Board) Aliases() []string     { return []string{} }
func (b *Board) Group() string         { return group }
func (b *Board) Category() string      { return config.CategoryTime }
func (b *Board) RequireAdmin() bool    { return false }
func (b *Board) RequireDev() bool      { return false }
func (b *Board) Run(interface{}) error { return nil }

func boardComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: timezones.ButtonLabel(false), Style: discordgo.SecondaryButton, CustomID: boardClockID},
			discordgo.Button{Label: "Add/Remove your timezone", Style: discordgo.PrimaryButton, CustomID: boardToggleID},
		}},
	}
}

func (b *Board) Component(ctx *core.ComponentInteractionContext) error {
	session, event, st := ctx.Session, ctx.Event, ctx.Storage
	user := core.InteractionUser(event)

	switch event.MessageComponentData().CustomID {
	case boardClockID:
		if ok, wait := b.Cooldown.Allow(user.ID); !ok {
			return core.RespondEphemeral(session, event, fmt.Sprintf("Slow down! Try again in %.0fs.", wait.Seconds()+0.5))
		}
		entries, err := timezones.BoardEntries(st, event.GuildID)
		if err != nil {
			return err
		}
		now := time.Now()
		return core.RespondEmbedEphemeral(session, event, timezones.BoardEmbed(timezones.GroupBoard(entries, now), true, now))

	case boardToggleID:
		reply, needsCity, err := toggleBoardUser(st, event.GuildID, user.ID)
		if err != nil {
			return err
		}
		if needsCity {
			return core.RespondModal(session, event, boardModalID, "Add your timezone", "A city or place near you", boardCityInput)
		}
		if err := core.RespondEphemeral(session, event, reply); err != nil {
			return err
		}
		b.redraw(session, st, event.GuildID)
	}
	return nil
}

func (b *Board) Modal(ctx *core.ModalContext) error {
	session, event, st := ctx.Session, ctx.Event, ctx.Storage
	data := event.ModalSubmitData()
	if data.CustomID != boardModalID {
		return nil
	}
	user := core.InteractionUser(event)
	city := core.ModalValue(data, boardCityInput)

	rec, err := st.Guild(event.GuildID)
	if err != nil {
		return err
	}
	lookupCtx, cancel := lookupContext()
	defer cancel()
	tz, place, err := b.GeoNames.Lookup(lookupCtx, rec.Timezones.GeoNamesAPIKey, city)
	if err != nil {
		log.Debug("Board city lookup failed", "city", city, "err", err)
		return core.RespondEphemeral(session, event,
			fmt.Sprintf("Could not find a timezone for `%s`. Make sure you entered a valid city name.", city))
	}
	if err := st.SetUserTimezone(user.ID, tz); err != nil {
		return err
	}
	if err := addBoardUser(st, event.GuildID, user.ID); err != nil {
		return err
	}
	reply := fmt.Sprintf("Timezone set to `%s` (%s)! You have been added to the timezone board.", tz, place)
	if err := core.RespondEphemeral(session, event, reply); err != nil {
		return err
	}
	b.redraw(session, st, event.GuildID)
	return nil
}

// toggleBoardUser removes a listed user from the board or adds one that
// has a timezone. needsCity is true when the user has to pick a timezone
// first.
func toggleBoardUser(st *storage.Storage, guildID, userID string) (reply string, needsCity bool, err error) {
	rec, err := st.Guild(guildID)
	if err != nil {
		return "", false, err
	}
	if slices.Contains(rec.Timezones.BoardUsers, userID) {
		err := st.UpdateTimezones(guildID, func(t *storage.TimezoneSettings) error {
			t.BoardUsers = slices.DeleteFunc(t.BoardUsers, func(id string) bool { return id == userID })
			return nil
		})
		return "You have been removed from the timezone board.", false, err
	}
	loc, err := userLocation(st, userID)
	if err != nil {
		return "", false, err
	}
	if loc == nil {
		return "", true, nil
	}
	if err := addBoardUser(st, guildID, userID); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("You have been added to the timezone board with `%s`.", loc), false, nil
}

func addBoardUser(st *storage.Storage, guildID, userID string) error {
	return st.UpdateTimezones(guildID, func(t *storage.TimezoneSettings) error {
		if !slices.Contains(t.BoardUsers, userID) {
			t.BoardUsers = append(t.BoardUsers, userID)
		}
		return nil
	})
}

func (b *Board) redraw(s *discordgo.Session, st *storage.Storage, guildID string) {
	ctx, cancel := lookupContext()
	defer cancel()
	if err := b.Draw(ctx, s, st, guildID); err != nil {
		log.Warn("Failed to redraw time board", "guild", guildID, "err", err)
	}
}

// Refresh redraws every guild's board.
func (b *Board) Refresh(ctx context.Context, s *discordgo.Session, st *storage.Storage) error {
	util.Each(ctx, st.GuildIDs(), boardWorkers, func(ctx context.Context, guildID string) error {
		return b.Draw(ctx, s, st, guildID)
	}, func(guildID string, err error) {
		log.Warn("Failed to refresh time board", "guild", guildID, "err", err)
	})
	return nil
}

// Draw edits the guild's board message, posting a new one when there is
// none or the old one was deleted.
func (b *Board) Draw(ctx context.Context, s *discordgo.Session, st *storage.Storage, guildID string) error {
	rec, err := st.Guild(guildID)
	if err != nil {
		return err
	}
	settings := rec.Timezones
	if settings.PersistentChannel == "" {
		return nil
	}
	entries, err := timezones.BoardEntries(st, guildID)
	if err != nil {
		return err
	}
	now := time.Now()
	embeds := []*discordgo.MessageEmbed{timezones.BoardEmbed(timezones.GroupBoard(entries, now), false, now)}
	components := boardComponents()

	if settings.PersistentMessage != "" {
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         settings.PersistentMessage,
			Channel:    settings.PersistentChannel,
			Embeds:     &embeds,
			Components: &components,
		}, discordgo.WithContext(ctx))
		if err == nil || !isUnknownMessage(err) {
			return err
		}
		log.Info("Time board message is gone, posting a new one", "guild", guildID)
	}

	msg, err := s.ChannelMessageSendComplex(settings.PersistentChannel, &discordgo.MessageSend{
		Embeds:     embeds,
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	return st.UpdateTimezones(guildID, func(t *storage.TimezoneSettings) error {
		t.PersistentMessage = msg.ID
		return nil
	})
}

func isUnknownMessage(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Message != nil && rest.Message.Code == discordgo.ErrCodeUnknownMessage
}
