// Package reactionroles parses user-supplied embed configurations and maps
// message reactions to roles.
package reactionroles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mednis/medsbot/pkg/snowflake"
)

// ConfigError is a validation failure in an uploaded embed configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

var (
	ErrInvalidJSON   = errors.New("Invalid JSON")
	ErrEmbedNotFound = errors.New("embed not found")
)

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type ReactionRole struct {
	Emoji  string       `json:"emoji"`
	Role   snowflake.ID `json:"role"`
	Unique bool         `json:"unique"`
}

// EmbedConfig is one managed embed. The JSON layout is the one users download
// and upload through /embed.
type EmbedConfig struct {
	Name    string       `json:"name"`
	Channel snowflake.ID `json:"channel"`
	Message snowflake.ID `json:"message"`

	TitleText string `json:"title_text,omitempty"`
	TitleURL  string `json:"title_url,omitempty"`

	AuthorName string `json:"author_name,omitempty"`
	AuthorURL  string `json:"author_url,omitempty"`
	AuthorIcon string `json:"author_icon,omitempty"`

	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Image       string `json:"image,omitempty"`

	Color string `json:"color"`

	Fields []Field `json:"fields,omitempty"`

	FooterIcon string `json:"footer_icon,omitempty"`
	FooterText string `json:"footer_text,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`

	ReactionRoles []ReactionRole `json:"reaction_roles"`
}

// DefaultConfig is the template handed out by /embed create without a file.
func DefaultConfig(name string) EmbedConfig {
	return EmbedConfig{
		Name:        name,
		TitleText:   "Example Embed",
		AuthorName:  "Example Author",
		Description: "Example Description",
		Thumbnail:   "https://placedog.net/250/250/?id=17",
		Image:       "https://placedog.net/500/500/?id=19",
		Color:       "#00FF00",
		Fields: []Field{
			{Name: "Example Field", Value: "This is a value for a field"},
		},
		FooterIcon:    "https://placedog.net/500/500/?id=19",
		FooterText:    "This is footer text",
		Timestamp:     "2025-01-01T00:00:00",
		ReactionRoles: []ReactionRole{},
	}
}

// ParseConfig validates an uploaded configuration and decodes it.
func ParseConfig(data []byte) (EmbedConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return EmbedConfig{}, ErrInvalidJSON
	}
	if err := validate(raw); err != nil {
		return EmbedConfig{}, err
	}

	var cfg EmbedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return EmbedConfig{}, &ConfigError{Msg: err.Error()}
	}
	if cfg.ReactionRoles == nil {
		cfg.ReactionRoles = []ReactionRole{}
	}
	return cfg, nil
}

func validate(raw map[string]any) error {
	if err := checkKeys(raw, "name", "channel", "message", "color"); err != nil {
		return err
	}

	if _, ok := raw["name"].(string); !ok {
		return &ConfigError{Msg: "`name` must be a string"}
	}
	if !isInteger(raw["channel"]) {
		return &ConfigError{Msg: "'channel' must be an integer"}
	}
	if !isInteger(raw["message"]) {
		return &ConfigError{Msg: "'message' must be an integer"}
	}
	color, ok := raw["color"].(string)
	if !ok || !strings.HasPrefix(color, "#") {
		return &ConfigError{Msg: "'color' must be a hex color string"}
	}
	if _, err := ParseColor(color); err != nil {
		return &ConfigError{Msg: "'color' must be a hex color string"}
	}

	if v, ok := raw["timestamp"]; ok {
		ts, ok := v.(string)
		if !ok {
			return &ConfigError{Msg: "'timestamp' must be a string"}
		}
		if _, err := ParseTimestamp(ts); err != nil {
			return &ConfigError{Msg: "'timestamp' must be a valid ISO 8601 string"}
		}
	}

	if v, ok := raw["fields"]; ok {
		fields, ok := v.([]any)
		if !ok {
			return &ConfigError{Msg: "'fields' must be a list of dictionaries"}
		}
		for _, f := range fields {
			field, ok := f.(map[string]any)
			if !ok {
				return &ConfigError{Msg: "'fields' must be a list of dictionaries"}
			}
			if err := checkKeys(field, "name", "value", "inline"); err != nil {
				return &ConfigError{Msg: fmt.Sprintf("'fields' section error: %v", err)}
			}
			if _, ok := field["inline"].(bool); !ok {
				return &ConfigError{Msg: fmt.Sprintf("'inline' for field '%v' must be a boolean", field["name"])}
			}
		}
	}

	if v, ok := raw["reaction_roles"]; ok {
		roles, ok := v.([]any)
		if !ok {
			return &ConfigError{Msg: "`reaction_roles` must be a list"}
		}
		for _, r := range roles {
			role, ok := r.(map[string]any)
			if !ok {
				return &ConfigError{Msg: "`reaction_roles` must be a list"}
			}
			if err := checkKeys(role, "emoji", "role", "unique"); err != nil {
				return &ConfigError{Msg: fmt.Sprintf("`reaction_roles` > `%v` error: %v", role, err)}
			}
			if !isInteger(role["role"]) {
				return &ConfigError{Msg: fmt.Sprintf("`reaction_roles` > `%v` role must be an integer", role)}
			}
			if _, ok := role["unique"].(bool); !ok {
				return &ConfigError{Msg: fmt.Sprintf("`reaction_roles` > `%v` unique must be a boolean", role)}
			}
		}
	}

	return nil
}

func checkKeys(m map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return &ConfigError{Msg: "Missing key: " + k}
		}
	}
	return nil
}

func isInteger(v any) bool {
	n, ok := v.(json.Number)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(n.String(), 10, 64)
	if err == nil {
		return true
	}
	_, err = strconv.ParseUint(n.String(), 10, 64)
	return err == nil
}

// ParseColor converts "#rrggbb" (or "rrggbb") to an integer colour.
func ParseColor(s string) (int, error) {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the ISO 8601 forms people actually write.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Find returns the index of the embed named name, or -1.
func Find(configs []EmbedConfig, name string) int {
	for i, c := range configs {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FindByMessage returns the embed posted as messageID, or nil.
func FindByMessage(configs []EmbedConfig, messageID string) *EmbedConfig {
	for i := range configs {
		if configs[i].Message.String() == messageID {
			return &configs[i]
		}
	}
	return nil
}

// RolesForEmoji returns the reaction roles bound to emoji.
func (c *EmbedConfig) RolesForEmoji(emoji string) []ReactionRole {
	var out []ReactionRole
	for _, r := range c.ReactionRoles {
		if r.Emoji == emoji {
			out = append(out, r)
		}
	}
	return out
}

// OtherEmojis lists the configured emojis other than emoji, each once. A
// unique reaction role clears these reactions from the member.
func (c *EmbedConfig) OtherEmojis(emoji string) []string {
	var out []string
	for _, r := range c.ReactionRoles {
		if r.Emoji != emoji && !slices.Contains(out, r.Emoji) {
			out = append(out, r.Emoji)
		}
	}
	return out
}

// RemoveEmoji drops every reaction role bound to emoji and reports whether any was removed.
func (c *EmbedConfig) RemoveEmoji(emoji string) bool {
	kept := c.ReactionRoles[:0]
	removed := false
	for _, r := range c.ReactionRoles {
		if r.Emoji == emoji {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	c.ReactionRoles = kept
	return removed
}

var customEmoji = regexp.MustCompile(`^<(a?):([A-Za-z0-9_~]+):(\d+)>$`)

// NormalizeEmoji renders an emoji the way reaction events are keyed:
// "<:name:id>" / "<a:name:id>" for custom emoji, the character itself otherwise.
func NormalizeEmoji(s string) string {
	s = strings.TrimSpace(s)
	if m := customEmoji.FindStringSubmatch(s); m != nil {
		return "<" + m[1] + ":" + m[2] + ":" + m[3] + ">"
	}
	return s
}

// EmojiKey builds the normalized key for an emoji from a reaction event.
func EmojiKey(id, name string, animated bool) string {
	if id == "" {
		return name
	}
	prefix := ""
	if animated {
		prefix = "a"
	}
	return "<" + prefix + ":" + name + ":" + id + ">"
}

// APIName converts a normalized emoji to the form the reactions endpoint wants.
func APIName(emoji string) string {
	if m := customEmoji.FindStringSubmatch(emoji); m != nil {
		return m[2] + ":" + m[3]
	}
	return emoji
}
