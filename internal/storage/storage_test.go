package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	ds, err := datastore.Open(datastore.DefaultConfig(filepath.Join(t.TempDir(), "store.json")))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return New(ds, config.Defaults())
}

func TestGuildDefaults(t *testing.T) {
	s := newTestStorage(t)
	rec, err := s.Guild("1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TTS.MaxMessageLength != 400 || rec.TTS.MaxWordLength != 15 ||
		rec.TTS.RepeatedWordPercentage != 80 || rec.TTS.Volume != 100 {
		t.Errorf("tts defaults = %+v", rec.TTS)
	}
	if rec.Pastures.EmbedTitle != "Greener Pastures Server Status" || rec.Pastures.EmbedColour != 0x7BC950 {
		t.Errorf("pastures defaults = %+v", rec.Pastures)
	}
	if rec.Vxer.TikTokReplacement != "vxtiktok.com" || rec.Vxer.TwitterReplacement != "vxtwitter.com" {
		t.Errorf("vxer defaults = %+v", rec.Vxer)
	}
	if diff := cmp.Diff([]string{"1"}, s.GuildIDs()); diff != "" {
		t.Errorf("guild ids (-want +got):\n%s", diff)
	}
}

func TestMissingKeysKeepDefaults(t *testing.T) {
	s := newTestStorage(t)
	if err := s.ds.Put(guildKey("7"), map[string]any{"tts": map[string]any{"say_name": true}}); err != nil {
		t.Fatal(err)
	}
	rec, err := s.Guild("7")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.TTS.SayName || rec.TTS.MaxWordLength != 15 {
		t.Errorf("tts = %+v", rec.TTS)
	}
}

func TestUpdateGuildErrorDiscardsChanges(t *testing.T) {
	s := newTestStorage(t)
	boom := errors.New("boom")
	err := s.UpdateGuild("1", func(r *GuildRecord) error {
		r.TTS.SayName = true
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	rec, _ := s.Guild("1")
	if rec.TTS.SayName {
		t.Error("change persisted despite error")
	}
}

func TestCommandHistoryLimit(t *testing.T) {
	s := newTestStorage(t)
	for i := 0; i < commandHistoryLimit+5; i++ {
		if err := s.AppendCommandToHistory("1", CommandHistoryRecord{Command: "ping"}); err != nil {
			t.Fatal(err)
		}
	}
	h, err := s.GetCommandsHistory("1")
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != commandHistoryLimit {
		t.Errorf("history len = %d, want %d", len(h), commandHistoryLimit)
	}
}

func TestGroupToggle(t *testing.T) {
	s := newTestStorage(t)
	_ = s.DisableGroup("1", "tts")
	_ = s.DisableGroup("1", "tts")
	if got, _ := s.GetDisabledGroups("1"); len(got) != 1 {
		t.Errorf("disabled = %v", got)
	}
	_ = s.EnableGroup("1", "tts")
	if off, _ := s.IsGroupDisabled("1", "tts"); off {
		t.Error("group still disabled")
	}
}

func TestBlacklist(t *testing.T) {
	s := newTestStorage(t)
	if added, _ := s.BlacklistTTSUser("1", "42"); !added {
		t.Error("first add should report true")
	}
	if added, _ := s.BlacklistTTSUser("1", "42"); added {
		t.Error("second add should report false")
	}
	if removed, _ := s.UnblacklistTTSUser("1", "42"); !removed {
		t.Error("remove should report true")
	}
	if removed, _ := s.UnblacklistTTSUser("1", "42"); removed {
		t.Error("second remove should report false")
	}
}

func TestDeleteUserData(t *testing.T) {
	s := newTestStorage(t)
	_, _ = s.BlacklistTTSUser("1", "42")
	_, _ = s.ToggleBoardUser("1", "42")
	_, _ = s.ToggleBoardUser("1", "43")
	_ = s.SetUserTimezone("42", "Europe/Riga")

	if err := s.DeleteUserData("42"); err != nil {
		t.Fatal(err)
	}
	rec, _ := s.Guild("1")
	if len(rec.TTS.BlacklistedUsers) != 0 {
		t.Errorf("blacklist = %v", rec.TTS.BlacklistedUsers)
	}
	if diff := cmp.Diff([]string{"43"}, rec.Timezones.BoardUsers); diff != "" {
		t.Errorf("board (-want +got):\n%s", diff)
	}
	u, _ := s.User("42")
	if u.Timezone != "" || u.Voice != "Brian" {
		t.Errorf("user = %+v, want defaults", u)
	}
}

func TestRegionsReplaceCatalog(t *testing.T) {
	s := newTestStorage(t)
	regions, _ := s.Regions()
	if regions["rotterdam"] != "Rotterdam" {
		t.Fatalf("catalog regions missing: %v", regions)
	}
	if err := s.SetRegions(map[string]string{"brazil": "Brazil"}); err != nil {
		t.Fatal(err)
	}
	regions, _ = s.Regions()
	if diff := cmp.Diff(map[string]string{"brazil": "Brazil"}, regions); diff != "" {
		t.Errorf("regions (-want +got):\n%s", diff)
	}
}

func TestTTSGlobalDefaults(t *testing.T) {
	s := newTestStorage(t)
	g, err := s.TTSGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if len(g.RegularVoices) == 0 || g.RegularVoices[0].Value != "Brian" {
		t.Errorf("regular voices = %v", g.RegularVoices)
	}
	if g.LocalAPI || g.PublicAPIURL == "" {
		t.Errorf("global = %+v", g)
	}
}
