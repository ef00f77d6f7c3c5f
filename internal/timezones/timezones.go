// Package timezones stores members' timezones and renders local times,
// differences and the server time board.
package timezones

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownTimezone = errors.New("unknown IANA timezone")

// LoadLocation accepts only real IANA names. "Local" and the empty
// string, which time.LoadLocation allows, are rejected.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	return loc, nil
}

// UTCOffset formats t's offset as "+hh:mm".
func UTCOffset(t time.Time) string {
	_, secs := t.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d", sign, secs/3600, secs%3600/60)
}

// DSTMarker is shown next to offsets during daylight saving time.
func DSTMarker(t time.Time) string {
	if t.IsDST() {
		return " 🔂"
	}
	return ""
}

// UTCLabel renders "(UTC+01:00 🔂)".
func UTCLabel(t time.Time) string {
	return "(UTC" + UTCOffset(t) + DSTMarker(t) + ")"
}

// Difference describes how far subject's wall clock is from other's at
// instant now, e.g. "is `5:30` ahead of".
func Difference(subject, other *time.Location, now time.Time) string {
	_, a := now.In(subject).Zone()
	_, b := now.In(other).Zone()
	d := a - b
	abs := d
	if abs < 0 {
		abs = -abs
	}
	hm := fmt.Sprintf("`%d:%02d`", abs/3600, abs%3600/60)
	switch {
	case d < 0:
		return "is " + hm + " behind"
	case d > 0:
		return "is " + hm + " ahead of"
	}
	return "is the same time as"
}

func Greeting(hour int) string {
	return Emoji(hour) + "  " + greetingWords(hour)
}

func greetingWords(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good morning!"
	case hour >= 12 && hour < 18:
		return "Good afternoon!"
	case hour >= 18 && hour < 22:
		return "Good evening!"
	}
	return "Good night!"
}

func Emoji(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "🌇"
	case hour >= 12 && hour < 18:
		return "☀️"
	case hour >= 18 && hour < 22:
		return "🌆"
	}
	return "🌛"
}

// Color picks an embed colour for the hour of day.
func Color(hour int) int {
	switch {
	case hour >= 5 && hour < 8:
		return 0x8D5273
	case hour >= 8 && hour < 12:
		return 0xC3727C
	case hour >= 12 && hour < 18:
		return 0xE8817F
	case hour >= 18 && hour < 24:
		return 0x5A336E
	}
	return 0x311F62
}

// Clock formats the time of day in 24 or 12 hour form.
func Clock(t time.Time, twelveHour bool) string {
	if twelveHour {
		return t.Format("03:04 PM")
	}
	return t.Format("15:04")
}

// DayClock is Clock prefixed with the weekday, "Monday - 15:04".
func DayClock(t time.Time, twelveHour bool) string {
	return t.Format("Monday") + " - " + Clock(t, twelveHour)
}

// ButtonLabel names the format the toggle button switches to.
func ButtonLabel(twelveHour bool) string {
	if twelveHour {
		return "24 Hour"
	}
	return "12 Hour"
}

// ParseClockMode reads the mode encoded in a toggle button's custom ID.
func ParseClockMode(s string) bool {
	return strings.EqualFold(s, "12")
}
