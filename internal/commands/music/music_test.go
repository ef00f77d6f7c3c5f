package music

import (
	"testing"
	"time"

	"github.com/mednis/medsbot/internal/voice"
)

func TestTrackLength(t *testing.T) {
	cases := map[time.Duration]string{
		0:                               "live",
		65 * time.Second:                "1:05",
		time.Hour + 2*time.Minute + 3e9: "1:02:03",
	}
	for d, want := range cases {
		if got := trackLength(d); got != want {
			t.Errorf("trackLength(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestTrackLine(t *testing.T) {
	tr := &voice.Track{URI: "https://youtu.be/x", Title: "Song", Duration: 90 * time.Second}
	if got := trackLine(tr); got != "[Song](https://youtu.be/x) `1:30`" {
		t.Errorf("trackLine = %q", got)
	}
	if got := trackLine(&voice.Track{URI: "/tmp/a.ogg"}); got != "/tmp/a.ogg `live`" {
		t.Errorf("trackLine = %q", got)
	}
}

func TestQueueText(t *testing.T) {
	cur := &voice.Track{URI: "a", Title: "A", Duration: time.Minute}
	queue := []*voice.Track{
		{URI: "tts", Speech: true},
		{URI: "b", Title: "B", Duration: time.Minute},
	}
	want := "**Now playing:** A `1:00`\n\n1. B `1:00`\n_1 TTS message(s) waiting_"
	if got := queueText(cur, queue); got != want {
		t.Errorf("queueText =\n%q\nwant\n%q", got, want)
	}
	if got := queueText(nil, nil); got != "🎵 No tracks in queue." {
		t.Errorf("empty = %q", got)
	}
	if got := queueText(&voice.Track{Speech: true}, nil); got != "🎵 No tracks in queue." {
		t.Errorf("speech only = %q", got)
	}
}

func TestPauseText(t *testing.T) {
	if pauseText(true, true) != "⏸️ Paused." || pauseText(false, true) != "▶️ Resumed." {
		t.Error("changed texts")
	}
	if pauseText(true, false) != "🎵 Already paused." || pauseText(false, false) != "🎵 Not paused." {
		t.Error("unchanged texts")
	}
}
