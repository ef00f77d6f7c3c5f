package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mednis/medsbot/internal/metrics"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/pkg/retrylimit"
)

var ErrFetch = errors.New("speech synthesis failed")

// FetchError describes a synthesis request that did not return audio.
type FetchError struct {
	Status      int
	ContentType string
	Err         error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis failed: %v", e.Err)
	}
	return fmt.Sprintf("speech synthesis failed: status %d, content type %q", e.Status, e.ContentType)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// EventSink receives statistics events such as tts_backend.
type EventSink interface {
	Event(ctx context.Context, measurement string, tags map[string]string, fields map[string]any)
}

// Fetcher downloads synthesized speech into Dir.
type Fetcher struct {
	Dir     string
	HTTP    *http.Client
	Limiter *retrylimit.AdaptiveLimiter
	Stats   EventSink
	Latency metrics.Observer
}

type backend struct {
	name         string
	url          string
	contentTypes []string
	ext          string
}

// backendFor picks the local server when it is enabled and knows the
// voice, translating the voice name through the local voice map.
func backendFor(s storage.TTSGlobalSettings, voice string) (backend, string) {
	if s.LocalAPI {
		if local, ok := s.LocalVoices[strings.ToLower(voice)]; ok {
			return backend{
				name:         "local",
				url:          s.LocalAPIURL,
				contentTypes: []string{"audio/wav", "audio/x-wav", "audio/wave"},
				ext:          ".wav",
			}, local
		}
	}
	return backend{
		name:         "public",
		url:          s.PublicAPIURL,
		contentTypes: []string{"audio/mp3", "audio/mpeg"},
		ext:          ".mp3",
	}, voice
}

func expandURL(tmpl, voice, text string) string {
	return strings.NewReplacer(
		"{voice}", url.QueryEscape(voice),
		"{text}", url.QueryEscape(text),
	).Replace(tmpl)
}

// Fetch synthesizes text with voice and returns the path of the audio file.
// The caller owns the file.
func (f *Fetcher) Fetch(ctx context.Context, settings storage.TTSGlobalSettings, voice, text string) (string, error) {
	be, voice := backendFor(settings, voice)
	if be.url == "" {
		return "", &FetchError{Err: fmt.Errorf("no %s speech endpoint configured", be.name)}
	}
	if err := f.Limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, expandURL(be.url, voice, text), nil)
	if err != nil {
		return "", &FetchError{Err: err}
	}

	start := time.Now()
	resp, err := f.client().Do(req)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	defer resp.Body.Close()
	f.Limiter.Observe(resp.StatusCode)

	f.emit(ctx, settings, voice, text, be.name, resp.StatusCode)

	ct := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ct)
	if resp.StatusCode != http.StatusOK || !slices.Contains(be.contentTypes, mediaType) {
		log.Error("speech API returned no audio", "backend", be.name, "status", resp.StatusCode, "content_type", ct)
		return "", &FetchError{Status: resp.StatusCode, ContentType: ct}
	}

	path := filepath.Join(f.Dir, uuid.NewString()+be.ext)
	if err := writeFile(path, resp.Body); err != nil {
		return "", &FetchError{Status: resp.StatusCode, ContentType: ct, Err: err}
	}
	if f.Latency != nil {
		f.Latency.Observe(time.Since(start).Seconds(), be.name)
	}
	return path, nil
}

func (f *Fetcher) emit(ctx context.Context, s storage.TTSGlobalSettings, voice, text, server string, code int) {
	if f.Stats == nil || !s.Statistics {
		return
	}
	f.Stats.Event(ctx, "tts_backend", map[string]string{}, map[string]any{
		"voice":   voice,
		"length":  len(text),
		"message": text,
		"server":  server,
		"code":    code,
	})
}

func (f *Fetcher) client() *http.Client {
	if f.HTTP != nil {
		return f.HTTP
	}
	return http.DefaultClient
}

func writeFile(path string, r io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// PurgeDir creates dir and removes audio left over from a previous run.
func PurgeDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".mp3" && ext != ".wav") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			log.Warn("could not remove stale audio", "file", e.Name(), "err", err)
		}
	}
	return nil
}

var removeFile = os.Remove

// deleteAudio removes a speech file. A file that is already gone is not an
// error.
func deleteAudio(path string) {
	if path == "" {
		return
	}
	if err := removeFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("could not delete speech file", "file", path, "err", err)
	}
}
