package statistics

import (
	"context"
	"fmt"
	"time"

	embed "github.com/Clinet/discordgo-embed"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/statistics"
	"github.com/mednis/medsbot/internal/storage"
)

const connectTimeout = 15 * time.Second

type StatisticsCommand struct {
	Exporter *statistics.Exporter
}

func (c *StatisticsCommand) Name() string        { return "statistics" }
func (c *StatisticsCommand) Description() string { return "Configure the statistics database." }
func (c *StatisticsCommand) Aliases() []string   { return []string{} }
func (c *StatisticsCommand) Group() string       { return group }
func (c *StatisticsCommand) Category() string    { return config.CategoryMaintenance }
func (c *StatisticsCommand) RequireAdmin() bool  { return false }
func (c *StatisticsCommand) RequireDev() bool    { return true }

func (c *StatisticsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	str := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: desc,
			Required:    true,
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set_db",
				Description: "Set the InfluxDB credentials",
				Options: []*discordgo.ApplicationCommandOption{
					str("address", "The address of the database"),
					str("bucket", "The bucket to store the data in"),
					str("token", "The key for the database"),
					str("org", "The InfluxDB organization"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "toggle",
				Description: "Turn a kind of statistics on or off",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Statistics to toggle",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Voice channels", Value: "vc"},
						{Name: "Messages", Value: "messages"},
						{Name: "Bot", Value: "bot"},
					},
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Show the statistics configuration",
			},
		},
	}
}

func (c *StatisticsCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event, st := context.Session, context.Event, context.Storage
	path, opts := core.Subcommand(event.ApplicationCommandData().Options)

	switch path {
	case "set_db":
		var cfg storage.StatisticsSettings
		err := st.UpdateStatistics(func(s *storage.StatisticsSettings) error {
			s.Address = opts.String("address")
			s.Bucket = opts.String("bucket")
			s.Token = opts.String("token")
			s.Org = opts.String("org")
			cfg = *s
			return nil
		})
		if err != nil {
			return err
		}
		if err := core.DeferResponse(session, event, true); err != nil {
			return err
		}
		return core.EditResponse(session, event, c.connect(cfg))

	case "toggle":
		var cfg storage.StatisticsSettings
		err := st.UpdateStatistics(func(s *storage.StatisticsSettings) error {
			if err := toggle(s, opts.String("kind")); err != nil {
				return err
			}
			cfg = *s
			return nil
		})
		if err != nil {
			return err
		}
		return core.RespondEphemeral(session, event, loggingText(cfg))

	case "show":
		cfg, err := st.Statistics()
		if err != nil {
			return err
		}
		return core.RespondEmbedEphemeral(session, event, showEmbed(cfg, c.Exporter.Enabled(), c.Exporter.LastWrite(), time.Now()))
	}
	return nil
}

func (c *StatisticsCommand) connect(cfg storage.StatisticsSettings) string {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Exporter.Connect(ctx, cfg); err != nil {
		return fmt.Sprintf("Statistics database credentials set. Failed to connect to the database: %v", err)
	}
	return "Statistics database credentials set. Connection successful. :D"
}

func toggle(s *storage.StatisticsSettings, kind string) error {
	switch kind {
	case "vc":
		s.LogVCStats = !s.LogVCStats
	case "messages":
		s.LogMessageStats = !s.LogMessageStats
	case "bot":
		s.LogBotStats = !s.LogBotStats
	default:
		return fmt.Errorf("unknown statistics kind %q", kind)
	}
	return nil
}

func loggingText(s storage.StatisticsSettings) string {
	return fmt.Sprintf("Statistics logging set to: \nVC Statistics: %t, Message Statistics: %t, Bot Statistics: %t",
		s.LogVCStats, s.LogMessageStats, s.LogBotStats)
}

// maskToken keeps the first four characters of a secret.
func maskToken(token string) string {
	if token == "" {
		return "`None`"
	}
	if len(token) <= 4 {
		return "`****`"
	}
	return "`" + token[:4] + "****`"
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

func showEmbed(cfg storage.StatisticsSettings, connected bool, lastWrite, now time.Time) *discordgo.MessageEmbed {
	status := "Not connected"
	if connected {
		status = "Connected"
	}
	written := "Never"
	if !lastWrite.IsZero() {
		written = humanize.RelTime(lastWrite, now, "ago", "from now")
	}
	address := cfg.Address
	if address == "" {
		address = "None"
	}
	return embed.NewEmbed().
		SetTitle("Statistics").
		SetColor(core.EmbedColor).
		AddField("Database", fmt.Sprintf("`%s`\nBucket: `%s`\nOrg: `%s`", address, cfg.Bucket, cfg.Org)).
		AddField("Token", maskToken(cfg.Token)).
		AddField("Connection", status+"\nLast write: "+written).
		AddField("Logging", fmt.Sprintf("VC: %s\nMessages: %s\nBot: %s",
			onOff(cfg.LogVCStats), onOff(cfg.LogMessageStats), onOff(cfg.LogBotStats))).
		MessageEmbed
}
