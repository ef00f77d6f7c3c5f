// Package voice plays queued audio into a guild's voice channel. One Player
// exists per guild and is shared by music commands and the speech relay.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/pkg/retrylimit"
)

var (
	ErrNotConnected     = errors.New("not connected to a voice channel")
	ErrNoTrackPlaying   = errors.New("no track is currently playing")
	ErrInvalidVolume    = errors.New("volume must be between 0 and 150")
	errStuck            = errors.New("no audio received")
	defaultStuckTimeout = 10 * time.Second
)

const (
	MaxVolume = 150

	reasonSeek EndReason = "seek"
)

// Player is a per-guild audio queue. Events are delivered to subscribers
// in order from a single goroutine.
type Player struct {
	mu        sync.Mutex
	guildID   string
	source    Source
	connector Connector
	sink      Sink

	queue    []*Track
	current  *Track
	volume   int
	paused   bool
	unpaused chan struct{}

	offset       time.Duration
	frames       int64
	seekTo       *time.Duration
	action       EndReason
	cancelStream context.CancelFunc
	running      bool

	StuckTimeout time.Duration

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	evMu     sync.Mutex
	pending  []Event
	evSignal chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func NewPlayer(guildID string, source Source, connector Connector) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	unpaused := make(chan struct{})
	close(unpaused)

	p := &Player{
		guildID:      guildID,
		source:       source,
		connector:    connector,
		volume:       100,
		unpaused:     unpaused,
		StuckTimeout: defaultStuckTimeout,
		subs:         make(map[int]func(Event)),
		evSignal:     make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
	}
	go p.dispatch()
	return p
}

func (p *Player) GuildID() string { return p.guildID }

// Subscribe registers fn for every future event and returns a function that
// removes it.
func (p *Player) Subscribe(fn func(Event)) func() {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.subsMu.Lock()
		delete(p.subs, id)
		p.subsMu.Unlock()
	}
}

// Load resolves uri into a new track without queueing it.
func (p *Player) Load(ctx context.Context, uri string) (*Track, error) {
	t, err := p.source.Resolve(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", uri, err)
	}
	return t, nil
}

// Connect joins channelID, moving the player if it is elsewhere. A failed
// join is retried once.
func (p *Player) Connect(ctx context.Context, channelID string) error {
	p.mu.Lock()
	if p.sink != nil && p.sink.ChannelID() == channelID {
		p.mu.Unlock()
		return nil
	}
	old := p.sink
	p.sink = nil
	p.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	var sink Sink
	err := retrylimit.Retry(ctx, 2, func() error {
		var err error
		sink, err = p.connector.Join(ctx, p.guildID, channelID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
	log.Info("joined voice channel", "guild", p.guildID, "channel", channelID)
	return nil
}

// reconnect rejoins the current channel after the voice link dropped.
func (p *Player) reconnect(ctx context.Context) error {
	p.mu.Lock()
	sink := p.sink
	p.sink = nil
	p.mu.Unlock()
	if sink == nil {
		return ErrNotConnected
	}
	channelID := sink.ChannelID()
	_ = sink.Close()

	log.Warn("voice link lost, reconnecting", "guild", p.guildID, "channel", channelID)
	return p.Connect(ctx, channelID)
}

func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink != nil
}

func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink == nil {
		return ""
	}
	return p.sink.ChannelID()
}

// Disconnect stops playback and leaves the voice channel.
func (p *Player) Disconnect() {
	p.Stop()
	p.mu.Lock()
	sink := p.sink
	p.sink = nil
	p.mu.Unlock()
	if sink != nil {
		if err := sink.Close(); err != nil {
			log.Warn("voice disconnect failed", "guild", p.guildID, "err", err)
		}
	}
}

// Close releases the player. It must not be used afterwards.
func (p *Player) Close() {
	p.Disconnect()
	p.cancel()
}

func (p *Player) Current() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Position is the elapsed time within the current track.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset + time.Duration(p.frames)*20*time.Millisecond
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Queue returns a copy of the upcoming tracks.
func (p *Player) Queue() []*Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.queue)
}

func (p *Player) Append(t *Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, t)
}

// Insert puts t at index i of the queue, clamped to the queue bounds.
func (p *Player) Insert(i int, t *Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i = max(0, min(i, len(p.queue)))
	p.queue = slices.Insert(p.queue, i, t)
}

// Remove drops the queued track with the given ID.
func (p *Player) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := slices.IndexFunc(p.queue, func(t *Track) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	p.queue = slices.Delete(p.queue, i, i+1)
	return true
}

// Play starts working through the queue if the player is idle.
func (p *Player) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || len(p.queue) == 0 {
		return nil
	}
	if p.sink == nil {
		return ErrNotConnected
	}
	p.running = true
	go p.run(p.ctx)
	return nil
}

// Skip ends the current track; the next queued one starts.
func (p *Player) Skip() error {
	return p.interrupt(ReasonSkipped)
}

// Stop clears the queue and ends the current track.
func (p *Player) Stop() {
	p.mu.Lock()
	p.queue = nil
	p.mu.Unlock()
	_ = p.interrupt(ReasonStopped)
}

func (p *Player) interrupt(reason EndReason) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNoTrackPlaying
	}
	p.action = reason
	if p.cancelStream != nil {
		p.cancelStream()
	}
	return nil
}

func (p *Player) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case paused && !p.paused:
		p.paused = true
		p.unpaused = make(chan struct{})
	case !paused && p.paused:
		p.paused = false
		close(p.unpaused)
	}
}

// Seek restarts the current track at d.
func (p *Player) Seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNoTrackPlaying
	}
	if d < 0 {
		d = 0
	}
	p.seekTo = &d
	if p.action == "" && p.cancelStream != nil {
		p.action = reasonSeek
		p.cancelStream()
	}
	return nil
}

func (p *Player) SetVolume(v int) error {
	if v < 0 || v > MaxVolume {
		return ErrInvalidVolume
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	return nil
}

func (p *Player) run(ctx context.Context) {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 || ctx.Err() != nil {
			p.running = false
			p.current = nil
			p.emitLocked(Event{Type: QueueEnd})
			p.mu.Unlock()
			return
		}
		t := p.queue[0]
		p.queue = p.queue[1:]
		p.current = t
		p.offset, p.frames = 0, 0
		p.action = ""
		p.emitLocked(Event{Type: TrackStart, Track: t})
		p.mu.Unlock()

		log.Debug("track started", "guild", p.guildID, "track", t.Title)
		reason, err := p.playTrack(ctx, t)

		p.mu.Lock()
		switch {
		case reason == ReasonStuck:
			p.emitLocked(Event{Type: TrackStuck, Track: t})
		case err != nil:
			log.Warn("track failed", "guild", p.guildID, "track", t.Title, "err", err)
			p.emitLocked(Event{Type: TrackException, Track: t, Err: err})
		}
		p.emitLocked(Event{Type: TrackEnd, Track: t, Reason: reason})
		p.current = nil
		p.seekTo = nil
		p.mu.Unlock()
	}
}

func (p *Player) playTrack(ctx context.Context, t *Track) (EndReason, error) {
	for {
		p.mu.Lock()
		if p.action == ReasonSkipped || p.action == ReasonStopped {
			reason := p.action
			p.mu.Unlock()
			return reason, nil
		}
		var offset time.Duration
		if p.seekTo != nil {
			offset = *p.seekTo
			p.seekTo = nil
		}
		p.offset, p.frames = offset, 0
		p.action = ""
		sctx, cancel := context.WithCancel(ctx)
		p.cancelStream = cancel
		p.mu.Unlock()

		err := p.stream(sctx, t, offset)
		cancel()

		p.mu.Lock()
		p.cancelStream = nil
		action := p.action
		p.mu.Unlock()

		switch {
		case action == reasonSeek:
			continue
		case action != "":
			return action, nil
		case ctx.Err() != nil:
			return ReasonStopped, nil
		case errors.Is(err, errStuck):
			return ReasonStuck, nil
		case err != nil:
			return ReasonLoadFailed, err
		}
		return ReasonFinished, nil
	}
}

func (p *Player) stream(ctx context.Context, t *Track, offset time.Duration) error {
	r, err := p.source.Open(ctx, t, offset)
	if err != nil {
		return err
	}
	defer r.Close()

	frames := make(chan []int16)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, frameSize*channels*2)
		for {
			frame := make([]int16, frameSize*channels)
			if err := readFrame(r, buf, frame); err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	stuck := time.NewTimer(p.StuckTimeout)
	defer stuck.Stop()
	reconnected := false

	for {
		p.mu.Lock()
		unpaused := p.unpaused
		p.mu.Unlock()
		select {
		case <-unpaused:
		case <-ctx.Done():
			return ctx.Err()
		}
		stuck.Reset(p.StuckTimeout)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		case <-stuck.C:
			return errStuck
		case frame := <-frames:
			p.mu.Lock()
			sink, volume := p.sink, p.volume
			p.mu.Unlock()
			applyVolume(frame, volume)

			err := ErrNotConnected
			if sink != nil {
				err = sink.Send(ctx, frame)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if reconnected {
					return err
				}
				reconnected = true
				if rerr := p.reconnect(ctx); rerr != nil {
					return rerr
				}
				continue
			}

			p.mu.Lock()
			p.frames++
			p.mu.Unlock()
		}
	}
}

// emitLocked queues an event for delivery. The caller holds p.mu, which
// keeps events in the order the state changed.
func (p *Player) emitLocked(e Event) {
	e.At = time.Now()
	p.evMu.Lock()
	p.pending = append(p.pending, e)
	p.evMu.Unlock()
	select {
	case p.evSignal <- struct{}{}:
	default:
	}
}

func (p *Player) dispatch() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.evSignal:
		}

		p.evMu.Lock()
		events := p.pending
		p.pending = nil
		p.evMu.Unlock()

		for _, e := range events {
			p.subsMu.Lock()
			subs := make([]func(Event), 0, len(p.subs))
			for _, fn := range p.subs {
				subs = append(subs, fn)
			}
			p.subsMu.Unlock()

			for _, fn := range subs {
				fn(e)
			}
		}
	}
}
