package config

import (
	"testing"
	"time"
)

func TestDefaultsCatalog(t *testing.T) {
	c := Defaults()
	if c.TTS.DefaultVoice != "Brian" {
		t.Errorf("default voice = %q, want Brian", c.TTS.DefaultVoice)
	}
	if len(c.TTS.ExtraVoices) != 12 {
		t.Errorf("extra voices = %d, want 12", len(c.TTS.ExtraVoices))
	}
	if got := c.Regions["south-korea"]; got != "South Korea" {
		t.Errorf("region south-korea = %q", got)
	}
	if c.Pastures.EmbedColour != 0x7BC950 {
		t.Errorf("embed colour = %#x", c.Pastures.EmbedColour)
	}
}

func TestParseCatalogError(t *testing.T) {
	if _, err := ParseCatalog("[tts\n"); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_BLACKLIST", "1,2")
	t.Setenv("HTTP_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DiscordToken != "token" {
		t.Errorf("token = %q", cfg.DiscordToken)
	}
	if len(cfg.DiscordGuildBlacklist) != 2 {
		t.Errorf("blacklist = %v", cfg.DiscordGuildBlacklist)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.HTTPTimeout)
	}
	if cfg.StoragePath != "data/datastore.json" || !cfg.InitSlashCommands {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without DISCORD_TOKEN")
	}
}
