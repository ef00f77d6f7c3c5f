package pastures

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/minecraft"
	"github.com/mednis/medsbot/internal/pastures"
)

type fakeExecutor map[string]string

func (f fakeExecutor) Execute(_ context.Context, cmd string) (string, error) {
	out, ok := f[cmd]
	if !ok {
		return "", minecraft.ErrUnreachable
	}
	return out, nil
}

func fakeBridge(ex fakeExecutor) *Bridge {
	return &Bridge{Dial: func(string, string) minecraft.Executor { return ex }}
}

func TestAddAndEditServer(t *testing.T) {
	p := pastures.Settings{}

	if got := addServer(&p, "survival", "mc:25575", "pw", nil); got != "Server survival added!" {
		t.Errorf("add = %q", got)
	}
	if got := addServer(&p, "survival", "x", "y", nil); got != "Server survival already exists!" {
		t.Errorf("duplicate add = %q", got)
	}

	p.Servers["survival"] = func() pastures.Server {
		srv := p.Servers["survival"]
		srv.Config.Embed.ChannelID, srv.Config.Embed.MessageID = "1", "2"
		return srv
	}()
	cfg := pastures.DefaultServerConfig()
	cfg.OneClickWhitelist = true
	if got := editServer(&p, "survival", "", "newpw", &cfg); got != "Server edited!" {
		t.Errorf("edit = %q", got)
	}
	srv := p.Servers["survival"]
	if srv.Address != "mc:25575" || srv.Password != "newpw" || !srv.Config.OneClickWhitelist {
		t.Errorf("server = %+v", srv)
	}
	if srv.Config.Embed.MessageID != "2" {
		t.Errorf("edit dropped the status message id: %+v", srv.Config.Embed)
	}
	if got := editServer(&p, "creative", "", "", nil); got != "Server `creative` not found!" {
		t.Errorf("edit missing = %q", got)
	}
}

func TestServerList(t *testing.T) {
	if got := serverList(pastures.Settings{}); got != "No servers added!" {
		t.Errorf("empty = %q", got)
	}
	p := pastures.Settings{Servers: map[string]pastures.Server{
		"b": {Address: "b:1"},
		"a": {Address: "a:1"},
	}}
	want := "## Servers: \n`a` - `a:1` \n`b` - `b:1` \n"
	if diff := cmp.Diff(want, serverList(p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestServerChoices(t *testing.T) {
	p := pastures.Settings{Servers: map[string]pastures.Server{"Survival": {}, "Creative": {}, "SkyBlock": {}}}
	var got []string
	for _, c := range serverChoices(p, "s") {
		got = append(got, c.Name)
	}
	if diff := cmp.Diff([]string{"SkyBlock", "Survival"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLooksLikeEmoji(t *testing.T) {
	cases := map[string]bool{
		"👍":                true,
		"<:pepe:1234567>":   true,
		"<a:dance:7654321>": true,
		"thumbsup":          false,
		"":                  false,
		"<:broken>":         false,
	}
	for in, want := range cases {
		if got := looksLikeEmoji(in); got != want {
			t.Errorf("looksLikeEmoji(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsModerator(t *testing.T) {
	settings := pastures.Settings{ModerationRole: "77"}
	cases := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{"nil member", nil, false},
		{"without role", &discordgo.Member{User: &discordgo.User{ID: "1"}, Roles: []string{"5"}}, false},
		{"with role", &discordgo.Member{User: &discordgo.User{ID: "1"}, Roles: []string{"77"}}, true},
		{"administrator", &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: discordgo.PermissionAdministrator}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isModerator(tc.member, settings); got != tc.want {
				t.Errorf("isModerator = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOneClickMatches(t *testing.T) {
	srv := pastures.Server{Config: pastures.DefaultServerConfig()}
	srv.Config.OneClickWhitelist = true
	settings := pastures.Settings{WhitelistedRole: "9"}

	if !oneClickMatches(settings, srv, "👍") {
		t.Error("default emoji should match")
	}
	if oneClickMatches(settings, srv, "👎") {
		t.Error("other emoji should not match")
	}
	if oneClickMatches(pastures.Settings{}, srv, "👍") {
		t.Error("no whitelisted role configured should not match")
	}
	srv.Config.OneClickWhitelist = false
	if oneClickMatches(settings, srv, "👍") {
		t.Error("disabled one-click should not match")
	}
}

func TestIsGone(t *testing.T) {
	gone := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage}}
	other := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions}}
	if !isGone(gone) {
		t.Error("unknown message should count as gone")
	}
	if isGone(other) || isGone(errors.New("boom")) || isGone(nil) {
		t.Error("unrelated errors should not count as gone")
	}
}

func TestStatusEmbed(t *testing.T) {
	b := fakeBridge(fakeExecutor{"list": "There are 2 of a max of 20 players online: Alex, Steve"})
	settings := pastures.DefaultSettings("Status", "", 0x7BC950, []string{"vibing"})
	srv := pastures.Server{Address: "mc:25575", Config: pastures.DefaultServerConfig()}

	e, err := b.statusEmbed(context.Background(), settings, srv, pastures.UpdatingNote)
	if err != nil {
		t.Fatal(err)
	}
	if e.Description != "2/20 People vibing!" {
		t.Errorf("description = %q", e.Description)
	}
	last := e.Fields[len(e.Fields)-1]
	if !strings.Contains(last.Value, "`Alex`") || !strings.Contains(last.Value, pastures.UpdatingNote) {
		t.Errorf("players field = %q", last.Value)
	}

	if _, err := fakeBridge(fakeExecutor{}).statusEmbed(context.Background(), settings, srv, ""); !errors.Is(err, minecraft.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestWhitelistRun(t *testing.T) {
	mojang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","name":"Alex"}`))
	}))
	defer mojang.Close()

	ex := fakeExecutor{
		"whitelist add Alex":    "Player Alex is already whitelisted",
		"whitelist remove Alex": "Removed Alex from the whitelist",
		"whitelist list":        "There are 1 whitelisted player(s): Alex",
	}
	c := &WhitelistCommand{Bridge: &Bridge{Mojang: &minecraft.MojangClient{BaseURL: mojang.URL + "/", HTTP: mojang.Client()}}}

	cases := []struct {
		name  string
		title string
		desc  string
	}{
		{"add", "Whitelist Error", "already whitelisted"},
		{"remove", "Player removed from whitelist!", "`Alex`"},
		{"list", "Whitelist", "1 player(s) whitelisted!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := c.run(context.Background(), tc.name, ex, "alex", pastures.SuccessColour)
			if e.Title != tc.title || !strings.Contains(e.Description, tc.desc) {
				t.Errorf("embed = %q / %q", e.Title, e.Description)
			}
		})
	}
}
