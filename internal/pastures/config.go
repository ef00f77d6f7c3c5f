// Package pastures holds the per-guild Minecraft server settings and renders
// the whitelist and status embeds.
package pastures

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mednis/medsbot/pkg/snowflake"
)

var (
	ErrInvalidConfig  = errors.New("Invalid JSON for ServerConfig.")
	ErrServerNotFound = errors.New("server not found")
	ErrServerExists   = errors.New("server already exists")
)

const (
	Logo          = "https://file.mednis.network/static_assets/main-logo-mini.png"
	FooterText    = "GP Logger 1.3.4"
	SuccessColour = 0x7BC950
	ErrorColour   = 0xe74c3c
)

type EmbedSettings struct {
	ChannelID     snowflake.ID `json:"channel_id"`
	MessageID     snowflake.ID `json:"message_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Image         string       `json:"image"`
	Messages      []string     `json:"messages"`
	ShowIP        bool         `json:"show_ip"`
	RequestStatus bool         `json:"request_status"`
	PublicIP      string       `json:"public_ip"`
	Color         int          `json:"color"`
}

// ServerConfig is the per-server document users download and upload.
type ServerConfig struct {
	OneClickWhitelist bool          `json:"one_click_whitelist"`
	OneClickEmoji     string        `json:"one_click_emoji"`
	Embed             EmbedSettings `json:"embed"`
	Whitelisted       []string      `json:"whitelisted"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		OneClickEmoji: "👍",
		Embed: EmbedSettings{
			Title: "Example Server Title",
			Description: "**Example Server Description**\nPlayers:`$pcur/$pmax` \nRandom message:`$messages` \n" +
				"**Server lookup live info** *(if enabled)*:\nServer MOTD:`$motd`\nServer Version:`$version`",
			Image:    Logo,
			Messages: []string{},
			Color:    0x00FF00,
		},
		Whitelisted: []string{},
	}
}

// ParseServerConfig decodes an uploaded config over the defaults. Unknown
// keys are rejected.
func ParseServerConfig(data []byte) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("%w %v", ErrInvalidConfig, err)
	}
	if cfg.OneClickEmoji == "" {
		cfg.OneClickEmoji = "👍"
	}
	if cfg.Embed.Color < 0 || cfg.Embed.Color > 0xFFFFFF {
		return ServerConfig{}, fmt.Errorf("%w color out of range", ErrInvalidConfig)
	}
	if cfg.Embed.Messages == nil {
		cfg.Embed.Messages = []string{}
	}
	if cfg.Whitelisted == nil {
		cfg.Whitelisted = []string{}
	}
	return cfg, nil
}

// JSON renders cfg the way it is handed back to users.
func (c ServerConfig) JSON() []byte {
	b, _ := json.MarshalIndent(c, "", "    ")
	return b
}

// ClearIDs forgets the posted status message.
func (c *ServerConfig) ClearIDs() {
	c.Embed.ChannelID = ""
	c.Embed.MessageID = ""
}

type Server struct {
	Address  string       `json:"ip"`
	Password string       `json:"key"`
	Config   ServerConfig `json:"config"`
}

// Settings is the guild-wide pastures configuration.
type Settings struct {
	Servers         map[string]Server `json:"servers"`
	ModerationRole  snowflake.ID      `json:"moderation_role"`
	WhitelistedRole snowflake.ID      `json:"whitelisted_role"`
	LoggingChannel  snowflake.ID      `json:"logging_channel"`
	EmbedColour     int               `json:"embed_colour"`
	EmbedImage      string            `json:"embed_image"`
	EmbedTitle      string            `json:"embed_title"`
	EmbedStrings    []string          `json:"embed_strings"`
}

// DefaultSettings is seeded with the catalog's status strings.
func DefaultSettings(title, image string, colour int, strs []string) Settings {
	return Settings{
		Servers:      map[string]Server{},
		EmbedColour:  colour,
		EmbedImage:   image,
		EmbedTitle:   title,
		EmbedStrings: append([]string(nil), strs...),
	}
}

// ServerNames returns the configured server names, sorted.
func (s Settings) ServerNames() []string {
	names := make([]string, 0, len(s.Servers))
	for n := range s.Servers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FindByStatusMessage returns the server whose status embed is messageID.
func (s Settings) FindByStatusMessage(messageID string) (string, Server, bool) {
	for name, srv := range s.Servers {
		if !srv.Config.Embed.MessageID.IsZero() && srv.Config.Embed.MessageID.String() == messageID {
			return name, srv, true
		}
	}
	return "", Server{}, false
}

// ConfigFileName is the attachment name used by /servers show.
func ConfigFileName(server string) string {
	return strings.ReplaceAll(strings.ToLower(server), " ", "_") + "_config.json"
}
