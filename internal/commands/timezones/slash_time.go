package timezones

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/timezones"
)

const noTimezone = "This user has not set a timezone."

type TimeCommand struct {
	GeoNames *timezones.GeoNamesClient
}

func (c *TimeCommand) Name() string { return "time" }
func (c *TimeCommand) Description() string {
	return "View the current time for a user or in a timezone"
}
func (c *TimeCommand) Aliases() []string  { return []string{} }
func (c *TimeCommand) Group() string      { return group }
func (c *TimeCommand) Category() string   { return config.CategoryTime }
func (c *TimeCommand) RequireAdmin() bool { return false }
func (c *TimeCommand) RequireDev() bool   { return false }

func (c *TimeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("for", "View the current time for a user",
				userOption("person", "Person for whom you want to see the current time.", true)),
			subcommand("in", "View the current time in a timezone",
				stringOption("timezone-or-city", "City or IANA timezone name in which you want to see the time.")),
			subcommand("here", "Show the current time in your timezone"),
		},
	}
}

func (c *TimeCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	path, opts := core.Subcommand(event.ApplicationCommandData().Options)
	now := time.Now()

	switch path {
	case "for", "here":
		userID := core.InteractionUser(event).ID
		if path == "for" {
			userID = opts.ID("person")
		}
		loc, err := userLocation(st, userID)
		if err != nil {
			return err
		}
		if loc == nil {
			if path == "here" {
				return core.RespondEphemeral(session, event,
					"You have not set a timezone. Use `/timezone set` city or iana to set your timezone.")
			}
			return core.RespondEphemeral(session, event, noTimezone)
		}
		return c.show(session, event, clockView{UserID: userID}, loc, now)

	case "in":
		query := opts.String("timezone-or-city")
		if loc, err := timezones.LoadLocation(query); err == nil {
			return c.show(session, event, clockView{Zone: loc.String()}, loc, now)
		}
		rec, err := st.Guild(event.GuildID)
		if err != nil {
			return err
		}
		lookupCtx, cancel := lookupContext()
		defer cancel()
		tz, place, err := c.GeoNames.Lookup(lookupCtx, rec.Timezones.GeoNamesAPIKey, query)
		var loc *time.Location
		if err == nil {
			loc, err = timezones.LoadLocation(tz)
		}
		if err != nil {
			return core.RespondEphemeral(session, event, fmt.Sprintf(
				"Could not find a timezone for `%s`. Make sure you entered a valid timezone or city name.", query))
		}
		return c.show(session, event, clockView{Zone: tz, Place: place}, loc, now)
	}
	return nil
}

func (c *TimeCommand) show(s *discordgo.Session, i *discordgo.InteractionCreate, v clockView, loc *time.Location, now time.Time) error {
	if err := core.RespondComplex(s, i, v.response(loc, now)); err != nil {
		return err
	}
	deleteLater(s, i)
	return nil
}

// Component redraws a time embed in the other clock format.
func (c *TimeCommand) Component(ctx *core.ComponentInteractionContext) error {
	v, ok := parseToggleID(ctx.Event.MessageComponentData().CustomID)
	if !ok {
		return nil
	}
	var (
		loc *time.Location
		err error
	)
	if v.UserID != "" {
		loc, err = userLocation(ctx.Storage, v.UserID)
		if err == nil && loc == nil {
			return core.RespondEphemeral(ctx.Session, ctx.Event, noTimezone)
		}
	} else {
		loc, err = timezones.LoadLocation(v.Zone)
	}
	if err != nil {
		return err
	}
	return core.UpdateMessage(ctx.Session, ctx.Event, v.response(loc, time.Now()))
}

// ShowTimeMenu is the "Show Time" user context menu.
type ShowTimeMenu struct{}

func (c *ShowTimeMenu) Name() string        { return "Show Time" }
func (c *ShowTimeMenu) Description() string { return "" }
func (c *ShowTimeMenu) Aliases() []string   { return []string{} }
func (c *ShowTimeMenu) Group() string       { return group }
func (c *ShowTimeMenu) Category() string    { return config.CategoryTime }
func (c *ShowTimeMenu) RequireAdmin() bool  { return false }
func (c *ShowTimeMenu) RequireDev() bool    { return false }

func (c *ShowTimeMenu) ContextDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name: c.Name(),
		Type: discordgo.UserApplicationCommand,
	}
}

func (c *ShowTimeMenu) Run(ctx interface{}) error {
	context, ok := ctx.(*core.UserApplicationCommandContext)
	if !ok || context.Target == nil {
		return nil
	}
	session, event := context.Session, context.Event
	loc, err := userLocation(context.Storage, context.Target.ID)
	if err != nil {
		return err
	}
	if loc == nil {
		return core.RespondEphemeral(session, event, noTimezone)
	}
	data := clockView{UserID: context.Target.ID}.response(loc, time.Now())
	data.Flags = discordgo.MessageFlagsEphemeral
	if err := core.RespondComplex(session, event, data); err != nil {
		return err
	}
	deleteLater(session, event)
	return nil
}
