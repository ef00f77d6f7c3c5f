package tts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/voice"
)

var ErrNoSpeechPlaying = errors.New("No TTS message is playing currently!")

// Player is the part of the shared voice player the arbiter drives.
type Player interface {
	Load(ctx context.Context, uri string) (*voice.Track, error)
	Connect(ctx context.Context, channelID string) error
	Connected() bool
	Current() *voice.Track
	Position() time.Duration
	Paused() bool
	Volume() int
	Queue() []*voice.Track
	Append(t *voice.Track)
	Insert(i int, t *voice.Track)
	Remove(id string) bool
	Play(ctx context.Context) error
	Skip() error
	SetPaused(paused bool)
	Seek(d time.Duration) error
	SetVolume(v int) error
}

type StateKind int

const (
	// Idle: nothing is playing.
	Idle StateKind = iota
	// MusicPlaying: a regular track is playing and nothing is saved.
	MusicPlaying
	// SpeechActive: speech is playing on top of an empty or music queue.
	SpeechActive
	// Preempting: speech is playing and interrupted music waits to resume.
	Preempting
)

func (k StateKind) String() string {
	return [...]string{"idle", "music", "speech", "preempting"}[k]
}

// SavedPlayback is the music interrupted by speech.
type SavedPlayback struct {
	Track    *voice.Track
	Position time.Duration
	Paused   bool
	Volume   int
}

// State is the arbiter's view of the player. Saved is set only when Kind
// is Preempting.
type State struct {
	Kind  StateKind
	Saved *SavedPlayback
}

// SpeechRequest is one message to be spoken.
type SpeechRequest struct {
	Text      string
	Voice     string
	ChannelID string
	Volume    int
}

type speechEntry struct {
	path   string
	volume int
}

// Arbiter interleaves speech with whatever else the guild's player is
// doing. All methods are safe for concurrent use.
type Arbiter struct {
	mu     sync.Mutex
	player Player
	speech map[string]speechEntry
	saved  *SavedPlayback

	// musicVolume is the volume in effect before speech took over.
	musicVolume *int
}

func NewArbiter(p Player) *Arbiter {
	return &Arbiter{player: p, speech: make(map[string]speechEntry)}
}

// State derives the current state from the player and the speech set.
func (a *Arbiter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *Arbiter) stateLocked() State {
	cur := a.player.Current()
	if cur == nil {
		// Between two tracks the queue head decides.
		q := a.player.Queue()
		switch {
		case len(q) == 0:
			return State{Kind: Idle}
		case a.saved != nil:
			saved := *a.saved
			return State{Kind: Preempting, Saved: &saved}
		case a.isSpeech(q[0]):
			return State{Kind: SpeechActive}
		}
		return State{Kind: Idle}
	}
	switch {
	case a.isSpeech(cur) && a.saved != nil:
		saved := *a.saved
		return State{Kind: Preempting, Saved: &saved}
	case a.isSpeech(cur):
		return State{Kind: SpeechActive}
	}
	return State{Kind: MusicPlaying}
}

// SpeechIDs lists the tracks currently known to be speech.
func (a *Arbiter) SpeechIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.speech))
	for id := range a.speech {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// leadingSpeech counts the speech tracks waiting at the head of the queue.
// New speech goes right after them so messages keep their arrival order.
func (a *Arbiter) leadingSpeech() int {
	n := 0
	for _, t := range a.player.Queue() {
		if !a.isSpeech(t) {
			break
		}
		n++
	}
	return n
}

func (a *Arbiter) isSpeech(t *voice.Track) bool {
	if t == nil {
		return false
	}
	_, ok := a.speech[t.ID]
	return ok
}

// Speak queues the audio file at path. The arbiter owns the file from now
// on and deletes it once the track is done.
func (a *Arbiter) Speak(ctx context.Context, req SpeechRequest, path string) error {
	if !a.player.Connected() {
		if err := a.player.Connect(ctx, req.ChannelID); err != nil {
			deleteAudio(path)
			return err
		}
	}

	track, err := a.player.Load(ctx, path)
	if err != nil {
		deleteAudio(path)
		return err
	}
	track.Speech = true
	track.Title = req.Text

	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.stateLocked()
	entry := speechEntry{path: path, volume: req.Volume}

	switch state.Kind {
	case Idle:
		a.player.Insert(a.leadingSpeech(), track)
		a.speech[track.ID] = entry
		if err := a.player.Play(ctx); err != nil {
			a.player.Remove(track.ID)
			delete(a.speech, track.ID)
			deleteAudio(path)
			return fmt.Errorf("start speech: %w", err)
		}

	case SpeechActive, Preempting:
		a.player.Insert(a.leadingSpeech(), track)
		a.speech[track.ID] = entry
		if err := a.player.Play(ctx); err != nil {
			log.Warn("could not resume playback", "err", err)
		}

	case MusicPlaying:
		cur := a.player.Current()
		a.saved = &SavedPlayback{
			Track:    cur,
			Position: a.player.Position(),
			Paused:   a.player.Paused(),
			Volume:   a.player.Volume(),
		}
		a.speech[track.ID] = entry
		a.player.Insert(0, track)
		a.player.Insert(1, cur)
		if err := a.player.Skip(); err != nil {
			log.Warn("could not preempt music", "err", err)
		}
		// A paused player would hold the speech forever. The restore
		// pauses again from saved.Paused.
		a.player.SetPaused(false)
	}
	log.Debug("speech queued", "state", state.Kind, "track", track.ID)
	return nil
}

// SkipSpeech ends the speech track that is playing.
func (a *Arbiter) SkipSpeech() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur := a.player.Current()
	if !a.isSpeech(cur) {
		return ErrNoSpeechPlaying
	}
	if err := a.player.Skip(); err != nil {
		return err
	}
	a.dropLocked(cur.ID)
	return nil
}

// HandleEvent keeps the speech set and saved playback in step with the
// player. It is registered with voice.Player.Subscribe.
func (a *Arbiter) HandleEvent(e voice.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch e.Type {
	case voice.TrackEnd:
		if e.Track != nil {
			a.dropLocked(e.Track.ID)
		}

	case voice.TrackStart:
		a.onTrackStart(e.Track)

	case voice.QueueEnd:
		a.onQueueEnd()

	case voice.TrackStuck, voice.TrackException:
		if e.Track == nil || !a.isSpeech(e.Track) {
			return
		}
		a.player.Remove(e.Track.ID)
		a.dropLocked(e.Track.ID)
	}
}

func (a *Arbiter) onTrackStart(t *voice.Track) {
	if t == nil {
		return
	}

	if entry, ok := a.speech[t.ID]; ok {
		if a.musicVolume == nil && a.saved == nil {
			v := a.player.Volume()
			a.musicVolume = &v
		}
		if err := a.player.SetVolume(entry.volume); err != nil {
			log.Warn("could not set speech volume", "volume", entry.volume, "err", err)
		}
		if a.player.Paused() {
			a.player.SetPaused(false)
		}
		return
	}

	if a.saved != nil && a.saved.Track.ID == t.ID {
		saved := a.saved
		a.player.SetPaused(true)
		if err := a.player.Seek(saved.Position); err != nil {
			log.Warn("could not restore position", "err", err)
		}
		_ = a.player.SetVolume(saved.Volume)
		if !saved.Paused {
			a.player.SetPaused(false)
		}
		a.saved = nil
		a.musicVolume = nil
		return
	}

	if a.musicVolume != nil {
		_ = a.player.SetVolume(*a.musicVolume)
		a.musicVolume = nil
	}
}

// onQueueEnd forgets speech the player no longer references. The saved
// playback is dropped as its track can no longer start.
func (a *Arbiter) onQueueEnd() {
	live := map[string]bool{}
	if cur := a.player.Current(); cur != nil {
		live[cur.ID] = true
	}
	for _, t := range a.player.Queue() {
		live[t.ID] = true
	}
	for id := range a.speech {
		if !live[id] {
			a.dropLocked(id)
		}
	}
	if a.saved != nil && !live[a.saved.Track.ID] {
		a.saved = nil
	}
	if a.musicVolume != nil && len(live) == 0 {
		_ = a.player.SetVolume(*a.musicVolume)
		a.musicVolume = nil
	}
}

// dropLocked removes id from the speech set and deletes its file. Files are
// deleted at most once because only set members are deleted.
func (a *Arbiter) dropLocked(id string) {
	entry, ok := a.speech[id]
	if !ok {
		return
	}
	delete(a.speech, id)
	deleteAudio(entry.path)
}
