package timezones

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/timezones"
)

const maxCustomID = 100

// clockView is what a time embed shows. It round-trips through the
// custom ID of the embed's 12/24 hour button.
type clockView struct {
	TwelveHour bool
	// UserID is set when the embed shows a member's time.
	UserID string
	Zone   string
	Place  string
}

// toggleID encodes v with the clock mode flipped, which is what pressing
// the button shows next.
func toggleID(v clockView) string {
	mode := "12"
	if v.TwelveHour {
		mode = "24"
	}
	id := "time:" + mode + ":"
	if v.UserID != "" {
		id += "p:" + v.UserID
	} else {
		id += "z:" + v.Zone + ":" + v.Place
	}
	if len(id) > maxCustomID {
		id = id[:maxCustomID]
	}
	return id
}

func parseToggleID(id string) (clockView, bool) {
	parts := strings.SplitN(id, ":", 5)
	if len(parts) < 4 || parts[0] != "time" {
		return clockView{}, false
	}
	v := clockView{TwelveHour: timezones.ParseClockMode(parts[1])}
	switch parts[2] {
	case "p":
		v.UserID = parts[3]
	case "z":
		v.Zone = parts[3]
		if len(parts) == 5 {
			v.Place = parts[4]
		}
	default:
		return clockView{}, false
	}
	return v, true
}

func (v clockView) embed(loc *time.Location, now time.Time) *discordgo.MessageEmbed {
	if v.UserID != "" {
		return timezones.PersonEmbed(v.UserID, loc, now, v.TwelveHour)
	}
	return timezones.TimeEmbed(loc, v.Place, now, v.TwelveHour)
}

// response renders v with its toggle button.
func (v clockView) response(loc *time.Location, now time.Time) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{v.embed(loc, now)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    timezones.ButtonLabel(v.TwelveHour),
					Style:    discordgo.SecondaryButton,
					CustomID: toggleID(v),
				},
			}},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}
