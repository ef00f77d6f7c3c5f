package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mednis/medsbot/datastore"
	corecmds "github.com/mednis/medsbot/internal/commands/core"
	musiccmds "github.com/mednis/medsbot/internal/commands/music"
	pasturescmds "github.com/mednis/medsbot/internal/commands/pastures"
	rrcmds "github.com/mednis/medsbot/internal/commands/reactionroles"
	regioncmds "github.com/mednis/medsbot/internal/commands/region"
	statscmds "github.com/mednis/medsbot/internal/commands/statistics"
	tzcmds "github.com/mednis/medsbot/internal/commands/timezones"
	ttscmds "github.com/mednis/medsbot/internal/commands/tts"
	vxercmds "github.com/mednis/medsbot/internal/commands/vxer"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/core"
	"github.com/mednis/medsbot/internal/discord"
	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/minecraft"
	"github.com/mednis/medsbot/internal/statistics"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/internal/timezones"
	"github.com/mednis/medsbot/internal/tts"
	"github.com/mednis/medsbot/internal/vxer"
	"github.com/mednis/medsbot/pkg/jobmgr"
	"github.com/mednis/medsbot/pkg/retrylimit"
)

const (
	vxerCleanupInterval = time.Minute
	startupConnect      = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal("medsbot exited", "err", err)
	}
	log.Info("medsbot exited cleanly")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetupLogging(cfg)
	core.SetDeveloperID(cfg.DeveloperID)
	log.Info("Starting medsbot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := datastore.Open(datastore.DefaultConfig(cfg.StoragePath))
	if err != nil {
		return err
	}
	catalog := config.Defaults()
	st := storage.New(ds, catalog)
	defer st.Close()

	vxStore, err := vxer.OpenStore(cfg.VxerDBPath)
	if err != nil {
		return err
	}
	defer vxStore.Close()

	if err := tts.PurgeDir(cfg.AudioDir); err != nil {
		log.Warn("Couldn't clear the audio directory", "dir", cfg.AudioDir, "err", err)
	}

	m := metrics.New()
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	exporter := &statistics.Exporter{}
	defer exporter.Close()
	if stats, err := st.Statistics(); err == nil && stats.Configured() {
		connectCtx, cancel := context.WithTimeout(ctx, startupConnect)
		if err := exporter.Connect(connectCtx, stats); err != nil {
			log.Warn("Statistics database unavailable", "err", err)
		}
		cancel()
	}

	bot, err := discord.New(cfg, st)
	if err != nil {
		return err
	}
	session := bot.Session()

	fetcher := &tts.Fetcher{
		Dir:     cfg.AudioDir,
		HTTP:    httpClient,
		Limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		Stats:   exporter,
		Latency: m.TTSFetchLatency,
	}
	engine := tts.NewEngine(st, fetcher, bot.SpeechPlayers(), m.SpokenCount, catalog.TTS.Jokes)
	defer engine.Close()

	jobs := jobmgr.NewManager(func(msg string) { log.Debug("job", "status", msg) })
	executed := m.CommandCount

	corecmds.Register(executed, jobs, time.Now())
	ttscmds.Register(ttscmds.Deps{Engine: engine, Voice: bot, HTTP: httpClient, Executed: executed})
	bridge := pasturescmds.Register(pasturescmds.Deps{
		Mojang: &minecraft.MojangClient{
			HTTP:    httpClient,
			Limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
		},
		Status:        &minecraft.StatusClient{HTTP: httpClient},
		HTTP:          httpClient,
		RCONLatency:   m.RCONLatency,
		StatusUpdates: m.StatusUpdates,
		Executed:      executed,
	})
	rrcmds.Register(httpClient, executed)
	regioncmds.Register(catalog.Regions, executed)
	board := tzcmds.Register(&timezones.GeoNamesClient{BaseURL: timezones.DefaultGeoNamesURL, HTTP: httpClient}, executed)
	gatherer := &statistics.Gatherer{
		Storage:  st,
		Exporter: exporter,
		Snapshot: func() statistics.Snapshot {
			return statistics.SnapshotFromState(session.State, session.HeartbeatLatency(), bot.Uptime())
		},
	}
	statscmds.Register(gatherer, executed)
	vx := &vxer.Service{Storage: st, Store: vxStore, Rewrites: m.VxerRewrites}
	vxercmds.Register(vx, executed)
	musiccmds.Register(bot, executed)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return metrics.Serve(gctx, cfg.MetricsAddr, m.Collectors()...) })
	}

	background := map[string]struct {
		interval time.Duration
		fn       func(context.Context) error
	}{
		"pastures-status": {pasturescmds.StatusInterval, func(ctx context.Context) error {
			return bridge.UpdateStatuses(ctx, session, st)
		}},
		"vxer-cleanup": {vxerCleanupInterval, func(context.Context) error {
			return vx.Cleanup(session)
		}},
		"statistics-gather": {statistics.GatherInterval, gatherer.Gather},
		"timezone-board": {tzcmds.BoardInterval, func(ctx context.Context) error {
			return board.Refresh(ctx, session, st)
		}},
	}
	for name, job := range background {
		if err := jobs.Every(gctx, name, job.interval, whenReady(session, job.fn)); err != nil {
			return err
		}
	}
	if err := jobs.Start(gctx, "datastore-autosave", ds.Run); err != nil {
		return err
	}

	err = g.Wait()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	jobs.StopAll(shutdown)
	return err
}

// whenReady skips runs until the gateway has identified.
func whenReady(s *discordgo.Session, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if s.State == nil || s.State.User == nil {
			return nil
		}
		return fn(ctx)
	}
}
