package config

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var catalogTOML string

// Voice is one autocomplete choice: Name is shown, Value is sent to the
// speech API.
type Voice struct {
	Name  string `toml:"name" json:"name"`
	Value string `toml:"value" json:"value"`
}

type Catalog struct {
	TTS struct {
		DefaultVoice  string   `toml:"default_voice"`
		PublicAPIURL  string   `toml:"public_api_url"`
		LocalAPIURL   string   `toml:"local_api_url"`
		RegularVoices []Voice  `toml:"regular_voices"`
		ExtraVoices   []Voice  `toml:"extra_voices"`
		Jokes         []string `toml:"jokes"`
	} `toml:"tts"`
	Regions  map[string]string `toml:"regions"`
	Pastures struct {
		EmbedTitle   string   `toml:"embed_title"`
		EmbedColour  int      `toml:"embed_colour"`
		EmbedImage   string   `toml:"embed_image"`
		EmbedStrings []string `toml:"embed_strings"`
	} `toml:"pastures"`
}

var (
	catalogOnce sync.Once
	catalog     Catalog
)

// ParseCatalog decodes a catalog document.
func ParseCatalog(doc string) (Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(doc, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return c, nil
}

// Defaults returns the embedded catalog. It panics if the embedded document
// is malformed, which the package tests guard against.
func Defaults() Catalog {
	catalogOnce.Do(func() {
		c, err := ParseCatalog(catalogTOML)
		if err != nil {
			panic(err)
		}
		catalog = c
	})
	return catalog
}
