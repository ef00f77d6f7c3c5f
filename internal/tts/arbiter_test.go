package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/voice"
)

// fakePlayer records queue operations. It never emits events on its own;
// tests drive playback with advance so the arbiter sees events in the
// order the real player would deliver them.
type fakePlayer struct {
	connected  bool
	connectErr error
	loadErr    error
	loads      int

	current  *voice.Track
	queue    []*voice.Track
	position time.Duration
	paused   bool
	volume   int
	skipped  int
	calls    []string
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{connected: true, volume: 100}
}

func (f *fakePlayer) Load(_ context.Context, uri string) (*voice.Track, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	f.loads++
	return &voice.Track{ID: fmt.Sprintf("speech-%d", f.loads), URI: uri}, nil
}

func (f *fakePlayer) Connect(context.Context, string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakePlayer) Connected() bool { return f.connected }
func (f *fakePlayer) Current() *voice.Track { return f.current }
func (f *fakePlayer) Position() time.Duration { return f.position }
func (f *fakePlayer) Paused() bool { return f.paused }
func (f *fakePlayer) Volume() int { return f.volume }
func (f *fakePlayer) Queue() []*voice.Track { return slices.Clone(f.queue) }
func (f *fakePlayer) Append(t *voice.Track) { f.queue = append(f.queue, t) }
func (f *fakePlayer) Play(context.Context) error { return nil }

func (f *fakePlayer) Insert(i int, t *voice.Track) {
	i = max(0, min(i, len(f.queue)))
	f.queue = slices.Insert(f.queue, i, t)
}

func (f *fakePlayer) Remove(id string) bool {
	i := slices.IndexFunc(f.queue, func(t *voice.Track) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	f.queue = slices.Delete(f.queue, i, i+1)
	return true
}

func (f *fakePlayer) Skip() error {
	if f.current == nil {
		return voice.ErrNoTrackPlaying
	}
	f.skipped++
	return nil
}

func (f *fakePlayer) SetPaused(p bool) {
	f.paused = p
	if p {
		f.calls = append(f.calls, "pause")
	} else {
		f.calls = append(f.calls, "resume")
	}
}

func (f *fakePlayer) Seek(d time.Duration) error {
	f.position = d
	f.calls = append(f.calls, "seek "+d.String())
	return nil
}

func (f *fakePlayer) SetVolume(v int) error {
	f.volume = v
	f.calls = append(f.calls, fmt.Sprintf("volume %d", v))
	return nil
}

// advance ends the current track and starts the next one.
func (f *fakePlayer) advance(a *Arbiter) {
	if f.current != nil {
		a.HandleEvent(voice.Event{Type: voice.TrackEnd, Track: f.current})
	}
	if len(f.queue) == 0 {
		f.current = nil
		a.HandleEvent(voice.Event{Type: voice.QueueEnd})
		return
	}
	f.current, f.queue = f.queue[0], f.queue[1:]
	f.position = 0
	a.HandleEvent(voice.Event{Type: voice.TrackStart, Track: f.current})
}

func (f *fakePlayer) queueIDs() []string {
	ids := []string{}
	for _, t := range f.queue {
		ids = append(ids, t.ID)
	}
	return ids
}

// countRemovals swaps the file remover for one that counts calls per path.
func countRemovals(t *testing.T) map[string]int {
	t.Helper()
	counts := map[string]int{}
	orig := removeFile
	removeFile = func(path string) error {
		counts[path]++
		return orig(path)
	}
	t.Cleanup(func() { removeFile = orig })
	return counts
}

func speechFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkSpeechLive(t *testing.T, a *Arbiter, f *fakePlayer) {
	t.Helper()
	live := map[string]bool{}
	if f.current != nil {
		live[f.current.ID] = true
	}
	for _, tr := range f.queue {
		live[tr.ID] = true
	}
	for _, id := range a.SpeechIDs() {
		if !live[id] {
			t.Errorf("speech %s is neither playing nor queued", id)
		}
	}
}

func TestSpeechPreemptsAndRestoresMusic(t *testing.T) {
	removed := countRemovals(t)
	f := newFakePlayer()
	song := &voice.Track{ID: "song", Title: "Song"}
	f.current, f.position, f.volume = song, 30*time.Second, 80
	a := NewArbiter(f)

	path := speechFile(t, "hello")
	if err := a.Speak(context.Background(), SpeechRequest{Text: "hello", Volume: 100}, path); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if diff := cmp.Diff([]string{"speech-1", "song"}, f.queueIDs()); diff != "" {
		t.Errorf("queue after preemption (-want +got):\n%s", diff)
	}
	if f.skipped != 1 {
		t.Errorf("music skipped %d times, want 1", f.skipped)
	}

	f.advance(a)
	st := a.State()
	if st.Kind != Preempting || st.Saved == nil {
		t.Fatalf("state while speaking = %v, want preempting with saved playback", st.Kind)
	}
	if diff := cmp.Diff(SavedPlayback{Track: song, Position: 30 * time.Second, Volume: 80}, *st.Saved); diff != "" {
		t.Errorf("saved playback (-want +got):\n%s", diff)
	}
	if f.volume != 100 {
		t.Errorf("speech volume = %d, want 100", f.volume)
	}

	f.calls = nil
	f.advance(a)
	if f.current != song {
		t.Fatalf("current = %v, want the interrupted song", f.current)
	}
	want := []string{"pause", "seek 30s", "volume 80", "resume"}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("restore sequence (-want +got):\n%s", diff)
	}
	if f.position != 30*time.Second || f.volume != 80 || f.paused {
		t.Errorf("restored position=%v volume=%d paused=%v", f.position, f.volume, f.paused)
	}
	if st := a.State(); st.Kind != MusicPlaying || st.Saved != nil {
		t.Errorf("state after restore = %v saved=%v", st.Kind, st.Saved)
	}
	if removed[path] != 1 {
		t.Errorf("speech file removed %d times, want 1", removed[path])
	}
}

func TestPausedMusicStaysPaused(t *testing.T) {
	f := newFakePlayer()
	song := &voice.Track{ID: "song"}
	f.current, f.position, f.paused = song, 5*time.Second, true
	a := NewArbiter(f)

	if err := a.Speak(context.Background(), SpeechRequest{Volume: 60}, speechFile(t, "a")); err != nil {
		t.Fatal(err)
	}
	if f.paused {
		t.Error("player still paused while speech is queued")
	}
	f.advance(a)
	f.calls = nil
	f.advance(a)

	if diff := cmp.Diff([]string{"pause", "seek 5s", "volume 100"}, f.calls); diff != "" {
		t.Errorf("restore sequence (-want +got):\n%s", diff)
	}
	if !f.paused {
		t.Error("music was unpaused")
	}
}

func TestSpeechQueuesInArrivalOrder(t *testing.T) {
	f := newFakePlayer()
	f.queue = []*voice.Track{{ID: "song"}}
	a := NewArbiter(f)
	ctx := context.Background()

	// Between tracks with music waiting, speech goes first.
	if err := a.Speak(ctx, SpeechRequest{Volume: 100}, speechFile(t, "1")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"speech-1", "song"}, f.queueIDs()); diff != "" {
		t.Fatalf("queue (-want +got):\n%s", diff)
	}

	f.advance(a)
	if a.State().Kind != SpeechActive {
		t.Fatalf("state = %v, want speech", a.State().Kind)
	}
	for _, name := range []string{"2", "3"} {
		if err := a.Speak(ctx, SpeechRequest{Volume: 100}, speechFile(t, name)); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"speech-2", "speech-3", "song"}, f.queueIDs()); diff != "" {
		t.Errorf("queue (-want +got):\n%s", diff)
	}
	if f.skipped != 0 {
		t.Errorf("speech interrupted speech %d times", f.skipped)
	}
	checkSpeechLive(t, a, f)
}

func TestSpeechVolumeRestoredForNextMusic(t *testing.T) {
	f := newFakePlayer()
	f.volume = 40
	f.queue = []*voice.Track{{ID: "song"}}
	a := NewArbiter(f)

	if err := a.Speak(context.Background(), SpeechRequest{Volume: 120}, speechFile(t, "x")); err != nil {
		t.Fatal(err)
	}
	f.advance(a)
	if f.volume != 120 {
		t.Errorf("speech volume = %d, want 120", f.volume)
	}
	f.advance(a)
	if f.volume != 40 {
		t.Errorf("music volume = %d, want 40", f.volume)
	}
}

func TestSkipSpeech(t *testing.T) {
	removed := countRemovals(t)
	f := newFakePlayer()
	a := NewArbiter(f)

	if err := a.SkipSpeech(); !errors.Is(err, ErrNoSpeechPlaying) {
		t.Errorf("SkipSpeech while idle = %v", err)
	}
	f.current = &voice.Track{ID: "song"}
	if err := a.SkipSpeech(); !errors.Is(err, ErrNoSpeechPlaying) {
		t.Errorf("SkipSpeech over music = %v", err)
	}
	f.current = nil

	path := speechFile(t, "skip")
	if err := a.Speak(context.Background(), SpeechRequest{Volume: 100}, path); err != nil {
		t.Fatal(err)
	}
	f.advance(a)
	if err := a.SkipSpeech(); err != nil {
		t.Fatalf("SkipSpeech: %v", err)
	}
	if len(a.SpeechIDs()) != 0 {
		t.Errorf("speech set = %v after skip", a.SpeechIDs())
	}
	f.advance(a)
	if removed[path] != 1 {
		t.Errorf("file removed %d times, want 1", removed[path])
	}
}

func TestStuckAndException(t *testing.T) {
	removed := countRemovals(t)
	f := newFakePlayer()
	a := NewArbiter(f)
	ctx := context.Background()

	// No track at all is a no-op.
	a.HandleEvent(voice.Event{Type: voice.TrackStuck})
	a.HandleEvent(voice.Event{Type: voice.TrackException})

	first, second := speechFile(t, "first"), speechFile(t, "second")
	if err := a.Speak(ctx, SpeechRequest{Volume: 100}, first); err != nil {
		t.Fatal(err)
	}
	f.advance(a)
	if err := a.Speak(ctx, SpeechRequest{Volume: 100}, second); err != nil {
		t.Fatal(err)
	}

	queued := f.queue[0]
	a.HandleEvent(voice.Event{Type: voice.TrackException, Track: queued})
	if len(f.queue) != 0 {
		t.Errorf("failed speech still queued: %v", f.queueIDs())
	}
	a.HandleEvent(voice.Event{Type: voice.TrackStuck, Track: f.current})
	if len(a.SpeechIDs()) != 0 {
		t.Errorf("speech set = %v", a.SpeechIDs())
	}

	// The player still reports the end of the stuck track.
	f.advance(a)
	for _, p := range []string{first, second} {
		if removed[p] != 1 {
			t.Errorf("%s removed %d times, want 1", filepath.Base(p), removed[p])
		}
	}

	music := &voice.Track{ID: "song"}
	f.current = music
	a.HandleEvent(voice.Event{Type: voice.TrackStuck, Track: music})
	if f.current != music {
		t.Error("music track was touched by stuck handling")
	}
}

func TestQueueEndForgetsSpeech(t *testing.T) {
	removed := countRemovals(t)
	f := newFakePlayer()
	f.current = &voice.Track{ID: "song"}
	a := NewArbiter(f)

	path := speechFile(t, "q")
	if err := a.Speak(context.Background(), SpeechRequest{Volume: 100}, path); err != nil {
		t.Fatal(err)
	}
	// Stop cleared the queue behind the arbiter's back.
	f.queue, f.current = nil, nil
	a.HandleEvent(voice.Event{Type: voice.QueueEnd})

	if st := a.State(); st.Kind != Idle || st.Saved != nil {
		t.Errorf("state = %v saved=%v, want idle", st.Kind, st.Saved)
	}
	if len(a.SpeechIDs()) != 0 {
		t.Errorf("speech set = %v", a.SpeechIDs())
	}
	if removed[path] != 1 {
		t.Errorf("file removed %d times, want 1", removed[path])
	}
}

func TestSpeakFailuresDeleteFile(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakePlayer)
	}{
		{"connect", func(f *fakePlayer) {
			f.connected = false
			f.connectErr = voice.ErrNotConnected
		}},
		{"load", func(f *fakePlayer) { f.loadErr = errors.New("bad file") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakePlayer()
			tt.setup(f)
			a := NewArbiter(f)
			path := speechFile(t, tt.name)
			if err := a.Speak(context.Background(), SpeechRequest{}, path); err == nil {
				t.Fatal("Speak succeeded")
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("speech file left on disk: %v", err)
			}
			if len(a.SpeechIDs()) != 0 {
				t.Errorf("speech set = %v", a.SpeechIDs())
			}
		})
	}
}

func TestSpeechSetAlwaysLive(t *testing.T) {
	f := newFakePlayer()
	f.current = &voice.Track{ID: "song"}
	f.queue = []*voice.Track{{ID: "next"}}
	a := NewArbiter(f)
	ctx := context.Background()

	steps := []func(){
		func() { _ = a.Speak(ctx, SpeechRequest{Volume: 100}, speechFile(t, "a")) },
		func() { f.advance(a) },
		func() { _ = a.Speak(ctx, SpeechRequest{Volume: 100}, speechFile(t, "b")) },
		func() { _ = a.SkipSpeech() },
		func() { f.advance(a) },
		func() { _ = a.Speak(ctx, SpeechRequest{Volume: 100}, speechFile(t, "c")) },
		func() { f.advance(a) },
		func() { f.advance(a) },
		func() { f.advance(a) },
		func() { f.advance(a) },
		func() { f.advance(a) },
	}
	for i, step := range steps {
		step()
		checkSpeechLive(t, a, f)
		if st := a.State(); st.Kind == Preempting && st.Saved == nil {
			t.Errorf("step %d: preempting without saved playback", i)
		}
	}
	if f.current != nil || len(a.SpeechIDs()) != 0 {
		t.Errorf("not drained: current=%v speech=%v", f.current, a.SpeechIDs())
	}
}
