package pastures

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/minecraft"
)

func TestParseServerConfigDefaults(t *testing.T) {
	cfg, err := ParseServerConfig([]byte(`{"one_click_whitelist": true, "embed": {"channel_id": 1090234710123456789}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.OneClickWhitelist || cfg.OneClickEmoji != "👍" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Embed.ChannelID != "1090234710123456789" {
		t.Errorf("channel id = %q", cfg.Embed.ChannelID)
	}
	if cfg.Embed.Color != 0x00FF00 {
		t.Errorf("color = %#x, want default", cfg.Embed.Color)
	}
}

func TestParseServerConfigRejects(t *testing.T) {
	for _, in := range []string{`{`, `{"nope": 1}`, `{"embed": {"color": -1}}`} {
		if _, err := ParseServerConfig([]byte(in)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", in, err)
		}
	}
}

func TestServerConfigRoundTrip(t *testing.T) {
	want := DefaultServerConfig()
	want.Embed.MessageID = "42"
	got, err := ParseServerConfig(want.JSON())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	got.ClearIDs()
	if !got.Embed.MessageID.IsZero() {
		t.Error("ClearIDs kept message id")
	}
}

func TestExpandDescription(t *testing.T) {
	v := StatusView{
		Online: minecraft.Online{Count: minecraft.PlayerCount{Current: "3", Max: "20"}},
		Word:   "vibing",
	}
	got := ExpandDescription("$pcur/$pmax $messages $motd $version", v)
	if got != "3/20 vibing N/A N/A" {
		t.Errorf("got %q", got)
	}
	v.Status = &minecraft.Status{MOTD: "hi", Version: "1.21"}
	if got := ExpandDescription("$motd $version", v); got != "hi 1.21" {
		t.Errorf("got %q", got)
	}
}

func TestStatusEmbed(t *testing.T) {
	s := DefaultSettings("Greener Pastures Server Status", Logo, SuccessColour, []string{"online"})
	srv := Server{Address: "mc:25575", Config: DefaultServerConfig()}
	e := StatusEmbed(s, srv, StatusView{
		Online: minecraft.Online{Count: minecraft.PlayerCount{Current: "2", Max: "20"}, Players: []string{"alex", "steve"}},
		Word:   "online",
		Note:   UpdatingNote,
	})
	if e.Description != "2/20 People online!" {
		t.Errorf("description = %q", e.Description)
	}
	if e.Title != "Greener Pastures Server Status" || e.Color != SuccessColour {
		t.Errorf("title/colour = %q %#x", e.Title, e.Color)
	}
	if len(e.Fields) != 1 || !strings.Contains(e.Fields[0].Value, "`steve`") || !strings.HasSuffix(e.Fields[0].Value, UpdatingNote) {
		t.Errorf("fields = %+v", e.Fields)
	}
}

func TestErrorEmbedSplitsDetails(t *testing.T) {
	e := ErrorEmbed("", errors.New("Connection refused\nIs the server up?"))
	if e.Title != "General Error" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Description != ":red_circle:  **Connection refused** \n\nIs the server up?" {
		t.Errorf("description = %q", e.Description)
	}
	if e.Color != ErrorColour {
		t.Errorf("colour = %#x", e.Color)
	}
}

func TestFindByStatusMessage(t *testing.T) {
	s := DefaultSettings("", "", 0, nil)
	cfg := DefaultServerConfig()
	cfg.Embed.MessageID = "99"
	s.Servers["survival"] = Server{Config: cfg}
	s.Servers["creative"] = Server{Config: DefaultServerConfig()}

	name, _, ok := s.FindByStatusMessage("99")
	if !ok || name != "survival" {
		t.Errorf("got %q %v", name, ok)
	}
	if diff := cmp.Diff([]string{"creative", "survival"}, s.ServerNames()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}
