package statistics

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/storage"
)

func TestToggle(t *testing.T) {
	var s storage.StatisticsSettings
	for _, kind := range []string{"vc", "messages", "bot", "vc"} {
		if err := toggle(&s, kind); err != nil {
			t.Fatal(err)
		}
	}
	want := storage.StatisticsSettings{LogMessageStats: true, LogBotStats: true}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings (-want +got):\n%s", diff)
	}
	if err := toggle(&s, "disk"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestLoggingText(t *testing.T) {
	got := loggingText(storage.StatisticsSettings{LogVCStats: true})
	want := "Statistics logging set to: \nVC Statistics: true, Message Statistics: false, Bot Statistics: false"
	if got != want {
		t.Errorf("loggingText = %q", got)
	}
}

func TestMaskToken(t *testing.T) {
	cases := map[string]string{
		"":             "`None`",
		"abc":          "`****`",
		"secret-token": "`secr****`",
	}
	for in, want := range cases {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShowEmbed(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := storage.StatisticsSettings{Address: "http://influx:8086", Bucket: "bot", Org: "home", Token: "secret-token", LogBotStats: true}

	e := showEmbed(cfg, true, now.Add(-3*time.Minute), now)
	values := map[string]string{}
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}
	if !strings.Contains(values["Connection"], "Connected\nLast write: 3 minutes ago") {
		t.Errorf("connection = %q", values["Connection"])
	}
	if strings.Contains(values["Token"], "secret-token") {
		t.Errorf("token leaked: %q", values["Token"])
	}
	if values["Logging"] != "VC: Off\nMessages: Off\nBot: On" {
		t.Errorf("logging = %q", values["Logging"])
	}

	e = showEmbed(storage.StatisticsSettings{}, false, time.Time{}, now)
	if !strings.Contains(e.Fields[2].Value, "Not connected\nLast write: Never") {
		t.Errorf("connection = %q", e.Fields[2].Value)
	}
}
