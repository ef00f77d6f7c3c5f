package timezones

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/internal/timezones"
)

const ianaHelp = "https://en.wikipedia.org/wiki/List_of_tz_database_time_zones"

type TimezoneCommand struct {
	GeoNames *timezones.GeoNamesClient
}

func (c *TimezoneCommand) Name() string { return "timezone" }
func (c *TimezoneCommand) Description() string {
	return "View other people's timezones and set your own"
}
func (c *TimezoneCommand) Aliases() []string  { return []string{} }
func (c *TimezoneCommand) Group() string      { return group }
func (c *TimezoneCommand) Category() string   { return config.CategoryTime }
func (c *TimezoneCommand) RequireAdmin() bool { return false }
func (c *TimezoneCommand) RequireDev() bool   { return false }

func (c *TimezoneCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("view", "View a user's timezone", userOption("user", "Member", true)),
			subcommand("difference", "View the time difference between you and someone else",
				userOption("person", "Person to compare your timezone with.", true),
				userOption("second_person", "Other person to compare the first persons timezone with.", false),
			),
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "set",
				Description: "Set your timezone",
				Options: []*discordgo.ApplicationCommandOption{
					subcommand("city", "Set your timezone by entering a nearby city name", stringOption("city", "City name")),
					subcommand("iana", "Set your timezone by entering an IANA timezone name",
						stringOption("iana_name", "The timezone you want to set. Has to be a valid IANA timezone name. (Region/City, etc)")),
					subcommand("remove", "Remove your timezone and hide it from others"),
				},
			},
		},
	}
}

func (c *TimezoneCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	path, opts := core.Subcommand(event.ApplicationCommandData().Options)
	caller := core.InteractionUser(event)

	switch path {
	case "view":
		userID := opts.ID("user")
		user, err := st.User(userID)
		if err != nil {
			return err
		}
		return quiet(session, event, viewText(userID, user.Timezone), false)

	case "difference":
		first, second := caller.ID, opts.ID("person")
		if opts.Has("second_person") {
			first, second = opts.ID("person"), opts.ID("second_person")
		}
		text, err := differenceText(st, first, second, time.Now())
		if err != nil {
			return err
		}
		return quiet(session, event, text, false)

	case "set city":
		city := opts.String("city")
		rec, err := st.Guild(event.GuildID)
		if err != nil {
			return err
		}
		lookupCtx, cancel := lookupContext()
		defer cancel()
		tz, _, err := c.GeoNames.Lookup(lookupCtx, rec.Timezones.GeoNamesAPIKey, city)
		if err != nil {
			return core.RespondEphemeral(session, event,
				fmt.Sprintf("Could not find a timezone for `%s`. Make sure you entered a valid city name.", city))
		}
		if err := st.SetUserTimezone(caller.ID, tz); err != nil {
			return err
		}
		return core.RespondEphemeral(session, event, fmt.Sprintf("Timezone set to `%s`!", tz))

	case "set iana":
		name := opts.String("iana_name")
		if _, err := timezones.LoadLocation(name); err != nil {
			return core.RespondEphemeral(session, event, fmt.Sprintf("Could not find timezone `%s`, make sure it is a valid "+
				"IANA timezone name. You can see a list of IANA timezone names [here](%s).", name, ianaHelp))
		}
		if err := st.SetUserTimezone(caller.ID, name); err != nil {
			return err
		}
		return core.RespondEphemeral(session, event, fmt.Sprintf("Timezone set to `%s`!", name))

	case "set remove":
		if err := st.SetUserTimezone(caller.ID, ""); err != nil {
			return err
		}
		return core.RespondEphemeral(session, event,
			"Previous timezone removed! (You will be removed from the timezone board the next time it refreshes!)")
	}
	return nil
}

func viewText(userID, tz string) string {
	if tz == "" {
		return fmt.Sprintf("<@%s> has not set a timezone.", userID)
	}
	return fmt.Sprintf("<@%s>'s timezone is %s", userID, tz)
}

// differenceText describes first's clock relative to second's.
func differenceText(st *storage.Storage, first, second string, now time.Time) (string, error) {
	a, err := userLocation(st, first)
	if err != nil {
		return "", err
	}
	b, err := userLocation(st, second)
	if err != nil {
		return "", err
	}
	if a == nil || b == nil {
		return "Both users have to set their timezones to use this command.", nil
	}
	return fmt.Sprintf("<@%s> %s <@%s>", first, timezones.Difference(a, b, now), second), nil
}

// userLocation is nil when the user has no valid timezone.
func userLocation(st *storage.Storage, userID string) (*time.Location, error) {
	user, err := st.User(userID)
	if err != nil {
		return nil, err
	}
	loc, err := timezones.LoadLocation(user.Timezone)
	if err != nil {
		return nil, nil
	}
	return loc, nil
}
