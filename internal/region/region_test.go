package region

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
)

const regionErrorBody = `{"message": "Invalid Form Body\nIn rtc_region: Value must be one of ('brazil', 'hongkong', 'newplace').", "code": 50035}`

type fakeEditor struct {
	calls []string
	err   error
}

func (f *fakeEditor) SetRegion(_ context.Context, channelID string, region *string) error {
	r := "<nil>"
	if region != nil {
		r = *region
	}
	f.calls = append(f.calls, channelID+"="+r)
	return f.err
}

func restError(status int, body string) error {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: status},
		ResponseBody: []byte(body),
	}
}

func TestParseRegionError(t *testing.T) {
	got, ok := ParseRegionError(regionErrorBody)
	if !ok {
		t.Fatal("no regions parsed")
	}
	if diff := cmp.Diff([]string{"brazil", "hongkong", "newplace"}, got); diff != "" {
		t.Errorf("regions (-want +got):\n%s", diff)
	}
	if _, ok := ParseRegionError(`{"message": "Missing Permissions"}`); ok {
		t.Error("parsed regions from an unrelated error")
	}
}

func TestChoices(t *testing.T) {
	got := Choices([]string{"brazil", "newplace"}, map[string]string{"brazil": "Brazil"})
	want := map[string]string{"brazil": "Brazil", "newplace": "newplace"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("choices (-want +got):\n%s", diff)
	}
}

func newChanger(t *testing.T, enabled bool) (*Changer, *fakeEditor) {
	t.Helper()
	ds, err := datastore.Open(datastore.DefaultConfig(filepath.Join(t.TempDir(), "store.json")))
	if err != nil {
		t.Fatal(err)
	}
	catalog := config.Defaults()
	st := storage.New(ds, catalog)
	t.Cleanup(func() { st.Close() })
	err = st.UpdateRegion("g", func(r *storage.RegionSettings) error {
		r.Enabled = enabled
		r.ChannelWhitelist = []string{"vc"}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	ed := &fakeEditor{}
	return &Changer{Storage: st, Editor: ed, Names: catalog.Regions}, ed
}

func TestChange(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		req       Request
		editErr   error
		wantText  string
		wantCalls []string
	}{
		{
			name:     "not a voice channel",
			enabled:  true,
			req:      Request{GuildID: "g", ChannelID: "vc", Region: "brazil"},
			wantText: "This command can only be used in a voice channel",
		},
		{
			name:     "disabled",
			req:      Request{GuildID: "g", ChannelID: "vc", Voice: true, Region: "brazil"},
			wantText: "Region changer is not enabled",
		},
		{
			name:     "not whitelisted",
			enabled:  true,
			req:      Request{GuildID: "g", ChannelID: "other", Voice: true, Region: "brazil"},
			wantText: "This channel is not whitelisted",
		},
		{
			name:     "show current",
			enabled:  true,
			req:      Request{GuildID: "g", ChannelID: "vc", Voice: true},
			wantText: "The current region for <#vc> is `automatic`",
		},
		{
			name:     "unknown region",
			enabled:  true,
			req:      Request{GuildID: "g", ChannelID: "vc", Voice: true, Region: "mars"},
			wantText: "Invalid region `mars`",
		},
		{
			name:     "same region",
			enabled:  true,
			req:      Request{GuildID: "g", ChannelID: "vc", Voice: true, CurrentRegion: "japan", Region: "japan"},
			wantText: "The region is already set to `japan`",
		},
		{
			name:      "changed",
			enabled:   true,
			req:       Request{GuildID: "g", ChannelID: "vc", Voice: true, CurrentRegion: "japan", Region: "brazil"},
			wantText:  "Region of <#vc> changed from `japan` to `brazil`",
			wantCalls: []string{"vc=brazil"},
		},
		{
			name:      "back to automatic",
			enabled:   true,
			req:       Request{GuildID: "g", ChannelID: "vc", Voice: true, CurrentRegion: "japan", Region: Automatic},
			wantText:  "changed from `japan` to `automatic`",
			wantCalls: []string{"vc=<nil>"},
		},
		{
			name:      "forbidden",
			enabled:   true,
			req:       Request{GuildID: "g", ChannelID: "vc", Voice: true, Region: "brazil"},
			editErr:   restError(http.StatusForbidden, `{"message": "Missing Permissions"}`),
			wantText:  "I don't have permission",
			wantCalls: []string{"vc=brazil"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ed := newChanger(t, tt.enabled)
			ed.err = tt.editErr
			reply, err := c.Change(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Change: %v", err)
			}
			if !strings.Contains(reply.Text, tt.wantText) {
				t.Errorf("reply = %q, want it to contain %q", reply.Text, tt.wantText)
			}
			if diff := cmp.Diff(tt.wantCalls, ed.calls); diff != "" {
				t.Errorf("API calls (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChangeRefreshesListOnBadRequest(t *testing.T) {
	c, ed := newChanger(t, true)
	ed.err = restError(http.StatusBadRequest, regionErrorBody)

	reply, err := c.Change(context.Background(), Request{GuildID: "g", ChannelID: "vc", Voice: true, Region: "brazil"})
	if err != nil {
		t.Fatal(err)
	}
	if !reply.Ephemeral || !strings.Contains(reply.Text, "Failed to change the region") {
		t.Errorf("reply = %+v", reply)
	}
	regions, err := c.Storage.Regions()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"brazil": "Brazil", "hongkong": "Hong Kong", "newplace": "newplace"}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Errorf("stored regions (-want +got):\n%s", diff)
	}
}

func TestChangeUnexpectedError(t *testing.T) {
	c, ed := newChanger(t, true)
	ed.err = errors.New("network down")
	if _, err := c.Change(context.Background(), Request{GuildID: "g", ChannelID: "vc", Voice: true, Region: "brazil"}); err == nil {
		t.Error("Change swallowed an unexpected error")
	}
}

func TestRefresh(t *testing.T) {
	c, ed := newChanger(t, true)
	ed.err = restError(http.StatusBadRequest, regionErrorBody)

	msg, err := c.Refresh(context.Background(), "g", "vc", true)
	if err != nil || msg != "Region list updated." {
		t.Fatalf("Refresh = %q, %v", msg, err)
	}
	if diff := cmp.Diff([]string{"vc=aaaa"}, ed.calls); diff != "" {
		t.Errorf("API calls (-want +got):\n%s", diff)
	}

	msg, _ = c.Refresh(context.Background(), "g", "text", false)
	if !strings.Contains(msg, "Did not perform region refresh") {
		t.Errorf("Refresh outside voice = %q", msg)
	}
}

func TestCleanAndAutocomplete(t *testing.T) {
	c, _ := newChanger(t, true)
	err := c.Storage.UpdateRegion("g", func(r *storage.RegionSettings) error {
		r.ChannelWhitelist = []string{"a", "gone", "b"}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	removed, err := Clean(c.Storage, "g", func(id string) bool { return id != "gone" })
	if err != nil || removed != 1 {
		t.Fatalf("Clean = %d, %v", removed, err)
	}

	choices := Autocomplete(map[string]string{"us-east": "US East", "us-west": "US West", "japan": "Japan"}, "US")
	var got []string
	for _, c := range choices {
		got = append(got, c.Name)
	}
	if diff := cmp.Diff([]string{"US East", "US West"}, got); diff != "" {
		t.Errorf("autocomplete (-want +got):\n%s", diff)
	}
}
