package timezones

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
)

func newStorage(t *testing.T) *storage.Storage {
	t.Helper()
	ds, err := datastore.Open(datastore.DefaultConfig(filepath.Join(t.TempDir(), "store.json")))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(ds, config.Defaults())
	t.Cleanup(func() { st.Close() })
	return st
}

func TestToggleID(t *testing.T) {
	cases := []struct {
		name   string
		view   clockView
		wantID string
		// the view the button leads to
		wantNext clockView
	}{
		{
			name:     "person in 24 hour",
			view:     clockView{UserID: "42"},
			wantID:   "time:12:p:42",
			wantNext: clockView{TwelveHour: true, UserID: "42"},
		},
		{
			name:     "zone in 12 hour",
			view:     clockView{TwelveHour: true, Zone: "Europe/Riga"},
			wantID:   "time:24:z:Europe/Riga:",
			wantNext: clockView{Zone: "Europe/Riga"},
		},
		{
			name:     "place with a colon",
			view:     clockView{Zone: "Asia/Tokyo", Place: "Tokyo: Japan"},
			wantID:   "time:12:z:Asia/Tokyo:Tokyo: Japan",
			wantNext: clockView{TwelveHour: true, Zone: "Asia/Tokyo", Place: "Tokyo: Japan"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := toggleID(tc.view)
			if id != tc.wantID {
				t.Errorf("toggleID = %q, want %q", id, tc.wantID)
			}
			next, ok := parseToggleID(id)
			if !ok {
				t.Fatal("parseToggleID rejected its own id")
			}
			if diff := cmp.Diff(tc.wantNext, next); diff != "" {
				t.Errorf("next view (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseToggleIDRejects(t *testing.T) {
	for _, id := range []string{"tz_board:12", "time:12", "time:12:x:1"} {
		if _, ok := parseToggleID(id); ok {
			t.Errorf("parseToggleID(%q) accepted", id)
		}
	}
}

func TestToggleIDLength(t *testing.T) {
	v := clockView{Zone: "America/Argentina/Buenos_Aires", Place: strings.Repeat("x", 200)}
	if got := len(toggleID(v)); got > maxCustomID {
		t.Errorf("custom id length = %d", got)
	}
}

func TestClockViewResponse(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Riga")
	if err != nil {
		t.Fatal(err)
	}
	data := clockView{UserID: "42"}.response(loc, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	if len(data.Embeds) != 1 || !strings.Contains(data.Embeds[0].Description, "<@42>") {
		t.Fatalf("embeds = %+v", data.Embeds)
	}
	button := data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	if button.Label != "12 Hour" || button.CustomID != "time:12:p:42" {
		t.Errorf("button = %+v", button)
	}
}

func TestViewText(t *testing.T) {
	if got := viewText("1", ""); got != "<@1> has not set a timezone." {
		t.Errorf("unset = %q", got)
	}
	if got := viewText("1", "Europe/Riga"); got != "<@1>'s timezone is Europe/Riga" {
		t.Errorf("set = %q", got)
	}
}

func TestDifferenceText(t *testing.T) {
	st := newStorage(t)
	for id, tz := range map[string]string{"in": "Asia/Kolkata", "uk": "Europe/London"} {
		if err := st.SetUserTimezone(id, tz); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		first, second, want string
	}{
		{"in", "uk", "<@in> is `5:30` ahead of <@uk>"},
		{"uk", "in", "<@uk> is `5:30` behind <@in>"},
		{"uk", "nobody", "Both users have to set their timezones to use this command."},
	}
	for _, tc := range cases {
		got, err := differenceText(st, tc.first, tc.second, now)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("differenceText(%s, %s) = %q, want %q", tc.first, tc.second, got, tc.want)
		}
	}
}

func TestToggleBoardUser(t *testing.T) {
	st := newStorage(t)
	if err := st.SetUserTimezone("u", "Europe/Riga"); err != nil {
		t.Fatal(err)
	}

	_, needsCity, err := toggleBoardUser(st, "g", "stranger")
	if err != nil || !needsCity {
		t.Fatalf("user without timezone: needsCity=%v err=%v", needsCity, err)
	}

	reply, needsCity, err := toggleBoardUser(st, "g", "u")
	if err != nil || needsCity || !strings.Contains(reply, "added") {
		t.Fatalf("add: %q %v %v", reply, needsCity, err)
	}
	rec, _ := st.Guild("g")
	if diff := cmp.Diff([]string{"u"}, rec.Timezones.BoardUsers); diff != "" {
		t.Errorf("board users (-want +got):\n%s", diff)
	}

	reply, _, err = toggleBoardUser(st, "g", "u")
	if err != nil || !strings.Contains(reply, "removed") {
		t.Fatalf("remove: %q %v", reply, err)
	}
	rec, _ = st.Guild("g")
	if len(rec.Timezones.BoardUsers) != 0 {
		t.Errorf("board users = %v", rec.Timezones.BoardUsers)
	}
}
