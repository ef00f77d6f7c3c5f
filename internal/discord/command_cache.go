package discord

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// commandCache remembers, per guild, the hash of every command last sent
// to Discord.
type commandCache struct {
	dir string
}

func (c commandCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

func (c commandCache) load(guildID string) map[string]string {
	hashes := make(map[string]string)
	data, err := os.ReadFile(c.path(guildID))
	if err != nil {
		return hashes
	}
	if err := json.Unmarshal(data, &hashes); err != nil {
		log.Warn("command cache unreadable, re-registering", "guild", guildID, "err", err)
		return make(map[string]string)
	}
	return hashes
}

func (c commandCache) save(guildID string, hashes map[string]string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(guildID), data, 0o644)
}
