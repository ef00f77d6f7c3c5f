package vxer

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/storage"
)

type VxerCommand struct{}

func (c *VxerCommand) Name() string        { return "vxer" }
func (c *VxerCommand) Description() string { return "Setup VxEr settings" }
func (c *VxerCommand) Aliases() []string   { return []string{} }
func (c *VxerCommand) Group() string       { return group }
func (c *VxerCommand) Category() string    { return config.CategoryLinks }
func (c *VxerCommand) RequireAdmin() bool  { return true }
func (c *VxerCommand) RequireDev() bool    { return false }

func (c *VxerCommand) SlashDefinition() *discordgo.ApplicationCommand {
	site := func(name, label string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: fmt.Sprintf("Enable or disable %s link conversion", label),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enable",
					Description: fmt.Sprintf("Enable or disable %s link conversion", label),
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "replacement",
					Description: fmt.Sprintf("The replacement for the %s link", label),
				},
			},
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options:     []*discordgo.ApplicationCommandOption{site("tiktok", "TikTok"), site("twitter", "Twitter")},
	}
}

func (c *VxerCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := context.Session, context.Event
	path, opts := core.Subcommand(event.ApplicationCommandData().Options)

	var reply string
	err := context.Storage.UpdateVxer(event.GuildID, func(v *storage.VxerSettings) error {
		var err error
		reply, err = configure(v, path, opts.Bool("enable", false), opts.String("replacement"))
		return err
	})
	if err != nil {
		return err
	}
	return core.Respond(session, event, reply)
}

// configure switches one site and, when given, its replacement host.
func configure(v *storage.VxerSettings, site string, enable bool, replacement string) (string, error) {
	var (
		label   string
		enabled *bool
		host    *string
	)
	switch site {
	case "tiktok":
		label, enabled, host = "TikTok", &v.TikTok, &v.TikTokReplacement
	case "twitter":
		label, enabled, host = "Twitter", &v.Twitter, &v.TwitterReplacement
	default:
		return "", fmt.Errorf("unknown vxer site %q", site)
	}
	*enabled = enable
	if replacement != "" {
		*host = replacement
	}
	state := "disabled"
	if enable {
		state = "enabled"
	}
	return fmt.Sprintf("%s link conversion `%s` with replacement `%s`", label, state, *host), nil
}
