package timezones

import (
	"fmt"
	"slices"
	"strings"
	"time"

	embed "github.com/Clinet/discordgo-embed"
	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/storage"
)

const (
	Version    = "1.0.0"
	FooterText = "Medsbot Timezones v" + Version

	boardNote = "\n_To add your timezone, press the `Add/Remove` button and enter a nearby city or location." +
		"\n\nWe use GeoNames for location lookup, this information only gets used to figure out your " +
		"timezone and does not get stored. \nYou can show or hide your timezone from this list at any time._"
)

// BoardEntry is one member shown on the time board.
type BoardEntry struct {
	UserID   string
	Location *time.Location
}

// BoardGroup is the members sharing one wall-clock time.
type BoardGroup struct {
	Time    time.Time
	UserIDs []string
}

// BoardEntries loads the board members of a guild. Members without a
// valid timezone are dropped from the board.
func BoardEntries(st *storage.Storage, guildID string) ([]BoardEntry, error) {
	rec, err := st.Guild(guildID)
	if err != nil {
		return nil, err
	}
	var (
		entries []BoardEntry
		dropped []string
	)
	for _, id := range rec.Timezones.BoardUsers {
		user, err := st.User(id)
		if err != nil {
			return nil, err
		}
		loc, err := LoadLocation(user.Timezone)
		if err != nil {
			dropped = append(dropped, id)
			continue
		}
		entries = append(entries, BoardEntry{UserID: id, Location: loc})
	}
	if len(dropped) > 0 {
		err := st.UpdateTimezones(guildID, func(t *storage.TimezoneSettings) error {
			t.BoardUsers = slices.DeleteFunc(t.BoardUsers, func(id string) bool {
				return slices.Contains(dropped, id)
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// GroupBoard groups entries by offset at instant now, earliest offset first.
func GroupBoard(entries []BoardEntry, now time.Time) []BoardGroup {
	byOffset := map[int]*BoardGroup{}
	var offsets []int
	for _, e := range entries {
		t := now.In(e.Location)
		_, off := t.Zone()
		g, ok := byOffset[off]
		if !ok {
			g = &BoardGroup{Time: t}
			byOffset[off] = g
			offsets = append(offsets, off)
		}
		g.UserIDs = append(g.UserIDs, e.UserID)
	}
	slices.Sort(offsets)
	groups := make([]BoardGroup, 0, len(offsets))
	for _, off := range offsets {
		groups = append(groups, *byOffset[off])
	}
	return groups
}

func newEmbed(title, description string, colour int) *embed.Embed {
	return embed.NewEmbed().
		SetTitle(title).
		SetDescription(description).
		SetColor(colour).
		SetFooter(FooterText)
}

// BoardEmbed renders the persistent server time board.
func BoardEmbed(groups []BoardGroup, twelveHour bool, now time.Time) *discordgo.MessageEmbed {
	var b strings.Builder
	b.WriteString("These are the current times for the users in this server:\n")
	previousDay := ""
	for _, g := range groups {
		day := g.Time.Format("Monday")
		if day != previousDay {
			fmt.Fprintf(&b, "### %s **%s**%s\n", Emoji(g.Time.Hour()), day, g.Time.Format(", 02 January"))
			previousDay = day
		}
		mentions := make([]string, len(g.UserIDs))
		for i, id := range g.UserIDs {
			mentions[i] = "<@" + id + ">"
		}
		fmt.Fprintf(&b, "### %s `(UTC%s)`\n> %s\n", Clock(g.Time, twelveHour), UTCOffset(g.Time), strings.Join(mentions, ", "))
	}
	b.WriteString(boardNote)
	return newEmbed("🕒 Server Times", b.String(), Color(now.Hour())).MessageEmbed
}

// TimeEmbed shows the time in a timezone, optionally naming the place it
// was looked up from.
func TimeEmbed(loc *time.Location, place string, now time.Time, twelveHour bool) *discordgo.MessageEmbed {
	t := now.In(loc)
	var desc string
	if place == "" {
		desc = fmt.Sprintf("The current time in `%s %s` is:\n# %s\n", loc, UTCLabel(t), DayClock(t, twelveHour))
	} else {
		desc = fmt.Sprintf("In **%s** \n`%s %s`\nThe current time is:\n# %s\n", place, loc, UTCLabel(t), DayClock(t, twelveHour))
	}
	return newEmbed(Greeting(t.Hour()), desc, Color(t.Hour())).MessageEmbed
}

// PersonEmbed shows a member's local time.
func PersonEmbed(userID string, loc *time.Location, now time.Time, twelveHour bool) *discordgo.MessageEmbed {
	t := now.In(loc)
	desc := fmt.Sprintf("The current time for <@%s> `%s` is:\n# %s\n", userID, UTCLabel(t), DayClock(t, twelveHour))
	return newEmbed(Greeting(t.Hour()), desc, Color(t.Hour())).MessageEmbed
}
