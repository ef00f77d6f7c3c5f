package statistics

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mednis/medsbot/internal/storage"
)

// GatherInterval is how often the gather job runs.
const GatherInterval = 30 * time.Second

type Member struct {
	ID   string
	Name string
}

type VoiceChannel struct {
	GuildID     string
	ChannelID   string
	ChannelName string
	Members     []Member
}

// Snapshot is what the bot knows about itself at one moment.
type Snapshot struct {
	BotID         string
	Latency       time.Duration
	Guilds        int
	Users         int
	Uptime        time.Duration
	VoiceChannels []VoiceChannel
}

// SnapshotFromState reads the session state cache.
func SnapshotFromState(state *discordgo.State, latency, uptime time.Duration) Snapshot {
	state.RLock()
	defer state.RUnlock()

	snap := Snapshot{Latency: latency, Uptime: uptime, Guilds: len(state.Guilds)}
	if state.User != nil {
		snap.BotID = state.User.ID
	}
	for _, g := range state.Guilds {
		snap.Users += g.MemberCount
		byChannel := map[string]*VoiceChannel{}
		for _, vs := range g.VoiceStates {
			if vs.ChannelID == "" {
				continue
			}
			vc, ok := byChannel[vs.ChannelID]
			if !ok {
				vc = &VoiceChannel{GuildID: g.ID, ChannelID: vs.ChannelID}
				for _, c := range g.Channels {
					if c.ID == vs.ChannelID {
						vc.ChannelName = c.Name
					}
				}
				byChannel[vs.ChannelID] = vc
			}
			vc.Members = append(vc.Members, Member{ID: vs.UserID, Name: memberName(g, vs)})
		}
		ids := make([]string, 0, len(byChannel))
		for id := range byChannel {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			snap.VoiceChannels = append(snap.VoiceChannels, *byChannel[id])
		}
	}
	return snap
}

func memberName(g *discordgo.Guild, vs *discordgo.VoiceState) string {
	if vs.Member != nil && vs.Member.User != nil {
		return vs.Member.User.Username
	}
	for _, m := range g.Members {
		if m.User != nil && m.User.ID == vs.UserID {
			return m.User.Username
		}
	}
	return vs.UserID
}

func BotPoint(s Snapshot, now time.Time) *write.Point {
	return influxdb2.NewPoint("bot_stats",
		map[string]string{"bot_id": s.BotID},
		map[string]any{
			"latency":     s.Latency.Seconds(),
			"guild_count": s.Guilds,
			"user_count":  s.Users,
			"uptime":      s.Uptime.Seconds(),
		}, now)
}

func VoiceChannelPoint(vc VoiceChannel, now time.Time) *write.Point {
	ids := make([]string, len(vc.Members))
	names := make([]string, len(vc.Members))
	for i, m := range vc.Members {
		ids[i], names[i] = m.ID, m.Name
	}
	return influxdb2.NewPoint("voice_channel_stats",
		map[string]string{
			"guild_id":     vc.GuildID,
			"channel_id":   vc.ChannelID,
			"channel_name": vc.ChannelName,
		},
		map[string]any{
			"member_count": len(vc.Members),
			"member_ids":   strings.Join(ids, ","),
			"member_names": strings.Join(names, ","),
		}, now)
}

func MessagePoint(guildID, channelID string, length, attachments int, now time.Time) *write.Point {
	return influxdb2.NewPoint("message_stats",
		map[string]string{"guild_id": guildID, "channel_id": channelID},
		map[string]any{"length": length, "attachments": attachments},
		now)
}

// Gatherer periodically writes bot and voice channel statistics.
type Gatherer struct {
	Storage  *storage.Storage
	Exporter *Exporter
	Snapshot func() Snapshot
}

// Gather writes one round of points according to the global toggles.
func (g *Gatherer) Gather(ctx context.Context) error {
	if !g.Exporter.Enabled() {
		return nil
	}
	cfg, err := g.Storage.Statistics()
	if err != nil {
		return err
	}
	if !cfg.LogBotStats && !cfg.LogVCStats {
		return nil
	}
	snap := g.Snapshot()
	now := g.Exporter.now()

	var points []*write.Point
	if cfg.LogBotStats {
		points = append(points, BotPoint(snap, now))
	}
	if cfg.LogVCStats {
		for _, vc := range snap.VoiceChannels {
			if len(vc.Members) > 0 {
				points = append(points, VoiceChannelPoint(vc, now))
			}
		}
	}
	return g.Exporter.Write(ctx, points...)
}

// RecordMessage writes message_stats for m when message logging is on.
func (g *Gatherer) RecordMessage(ctx context.Context, m *discordgo.Message) error {
	if m.GuildID == "" || !g.Exporter.Enabled() {
		return nil
	}
	cfg, err := g.Storage.Statistics()
	if err != nil || !cfg.LogMessageStats {
		return err
	}
	p := MessagePoint(m.GuildID, m.ChannelID, len([]rune(m.Content)), len(m.Attachments), g.Exporter.now())
	return g.Exporter.Write(ctx, p)
}
