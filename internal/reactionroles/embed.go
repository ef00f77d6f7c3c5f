package reactionroles

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// BuildEmbed renders cfg. Values were validated by ParseConfig, so parse
// failures here fall back to leaving the field unset.
func BuildEmbed(cfg EmbedConfig) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       cfg.TitleText,
		URL:         cfg.TitleURL,
		Description: cfg.Description,
	}

	if color, err := ParseColor(cfg.Color); err == nil {
		e.Color = color
	}

	if cfg.AuthorName != "" || cfg.AuthorIcon != "" {
		e.Author = &discordgo.MessageEmbedAuthor{
			Name:    cfg.AuthorName,
			URL:     cfg.AuthorURL,
			IconURL: cfg.AuthorIcon,
		}
	}
	if cfg.Thumbnail != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: cfg.Thumbnail}
	}
	if cfg.Image != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: cfg.Image}
	}
	if cfg.Timestamp != "" {
		if ts, err := ParseTimestamp(cfg.Timestamp); err == nil {
			e.Timestamp = ts.Format(time.RFC3339)
		}
	}
	if cfg.FooterText != "" || cfg.FooterIcon != "" {
		e.Footer = &discordgo.MessageEmbedFooter{
			Text:    cfg.FooterText,
			IconURL: cfg.FooterIcon,
		}
	}
	for _, f := range cfg.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return e
}
