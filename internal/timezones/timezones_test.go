package timezones

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadLocation(name)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestLoadLocation(t *testing.T) {
	for _, name := range []string{"", "Local", "Mars/Olympus"} {
		if _, err := LoadLocation(name); !errors.Is(err, ErrUnknownTimezone) {
			t.Errorf("LoadLocation(%q) = %v, want ErrUnknownTimezone", name, err)
		}
	}
	if _, err := LoadLocation("Europe/Riga"); err != nil {
		t.Errorf("LoadLocation(Europe/Riga): %v", err)
	}
}

func TestOffsets(t *testing.T) {
	summer := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	winter := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		zone string
		at   time.Time
		want string
	}{
		{"Europe/Riga", summer, "(UTC+03:00 🔂)"},
		{"Europe/Riga", winter, "(UTC+02:00)"},
		{"Asia/Kolkata", winter, "(UTC+05:30)"},
		{"America/St_Johns", winter, "(UTC-03:30)"},
		{"UTC", summer, "(UTC+00:00)"},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			if got := UTCLabel(tt.at.In(mustLoad(t, tt.zone))); got != tt.want {
				t.Errorf("UTCLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDifference(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	kolkata, london := mustLoad(t, "Asia/Kolkata"), mustLoad(t, "Europe/London")

	if got := Difference(kolkata, london, now); got != "is `5:30` ahead of" {
		t.Errorf("Kolkata vs London = %q", got)
	}
	if got := Difference(london, kolkata, now); got != "is `5:30` behind" {
		t.Errorf("London vs Kolkata = %q", got)
	}
	if got := Difference(london, mustLoad(t, "UTC"), now); got != "is the same time as" {
		t.Errorf("London vs UTC in winter = %q", got)
	}
}

func TestHourHelpers(t *testing.T) {
	tests := []struct {
		hour     int
		greeting string
		color    int
	}{
		{6, "🌇  Good morning!", 0x8D5273},
		{9, "🌇  Good morning!", 0xC3727C},
		{13, "☀️  Good afternoon!", 0xE8817F},
		{19, "🌆  Good evening!", 0x5A336E},
		{23, "🌛  Good night!", 0x5A336E},
		{2, "🌛  Good night!", 0x311F62},
	}
	for _, tt := range tests {
		if g := Greeting(tt.hour); g != tt.greeting {
			t.Errorf("Greeting(%d) = %q", tt.hour, g)
		}
		if c := Color(tt.hour); c != tt.color {
			t.Errorf("Color(%d) = %#x", tt.hour, c)
		}
	}
}

func TestClock(t *testing.T) {
	ts := time.Date(2024, 1, 1, 15, 4, 0, 0, time.UTC)
	if got := DayClock(ts, false); got != "Monday - 15:04" {
		t.Errorf("24h = %q", got)
	}
	if got := DayClock(ts, true); got != "Monday - 03:04 PM" {
		t.Errorf("12h = %q", got)
	}
}

func TestGroupBoard(t *testing.T) {
	now := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)
	entries := []BoardEntry{
		{"1", mustLoad(t, "Asia/Tokyo")},
		{"2", mustLoad(t, "Europe/London")},
		{"3", mustLoad(t, "Asia/Tokyo")},
		{"4", mustLoad(t, "America/New_York")},
	}
	groups := GroupBoard(entries, now)

	var got [][]string
	for _, g := range groups {
		got = append(got, g.UserIDs)
	}
	want := [][]string{{"4"}, {"2"}, {"1", "3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}

	board := BoardEmbed(groups, false, now).Description
	for _, part := range []string{
		"**Monday**, 01 January", "### 17:30 `(UTC-05:00)`", "**Tuesday**, 02 January", "> <@1>, <@3>",
	} {
		if !strings.Contains(board, part) {
			t.Errorf("board missing %q:\n%s", part, board)
		}
	}
}

func TestBoardEntriesDropsUsersWithoutTimezone(t *testing.T) {
	ds, err := datastore.Open(datastore.DefaultConfig(filepath.Join(t.TempDir(), "store.json")))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(ds, config.Defaults())
	defer st.Close()

	if err := st.SetUserTimezone("1", "Europe/Riga"); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"1", "2"} {
		if _, err := st.ToggleBoardUser("g", id); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := BoardEntries(st, "g")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].UserID != "1" {
		t.Errorf("entries = %+v", entries)
	}
	rec, _ := st.Guild("g")
	if diff := cmp.Diff([]string{"1"}, rec.Timezones.BoardUsers); diff != "" {
		t.Errorf("board users (-want +got):\n%s", diff)
	}
}

func TestGeoNamesLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("username") != "key" {
			w.Write([]byte(`{"status": {"message": "user does not exist.", "value": 10}}`))
			return
		}
		switch r.URL.Path {
		case "/searchJSON":
			if q.Get("q") == "Nowhere" {
				w.Write([]byte(`{"totalResultsCount": 0, "geonames": []}`))
				return
			}
			w.Write([]byte(`{"geonames": [{"name": "Riga", "countryName": "Latvia", "lat": "56.946", "lng": "24.105"}]}`))
		case "/timezoneJSON":
			if q.Get("lat") != "56.946" || q.Get("lng") != "24.105" {
				t.Errorf("timezone lookup at %s,%s", q.Get("lat"), q.Get("lng"))
			}
			w.Write([]byte(`{"timezoneId": "Europe/Riga"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := &GeoNamesClient{BaseURL: srv.URL, HTTP: srv.Client()}
	tz, label, err := c.Lookup(context.Background(), "key", "riga")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tz != "Europe/Riga" || label != "Riga, Latvia" {
		t.Errorf("Lookup = %q, %q", tz, label)
	}

	for _, tt := range []struct{ key, place string }{{"", "riga"}, {"bad", "riga"}, {"key", "Nowhere"}, {"key", " "}} {
		if _, _, err := c.Lookup(context.Background(), tt.key, tt.place); !errors.Is(err, ErrLookup) {
			t.Errorf("Lookup(%q, %q) = %v, want ErrLookup", tt.key, tt.place, err)
		}
	}
}
