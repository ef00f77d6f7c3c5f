package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	youtube "github.com/kkdai/youtube/v2"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// Source turns a URI into a track and opens its audio as 48 kHz stereo
// s16le PCM.
type Source interface {
	Resolve(ctx context.Context, uri string) (*Track, error)
	Open(ctx context.Context, t *Track, offset time.Duration) (io.ReadCloser, error)
}

// FFmpegSource decodes everything through ffmpeg. YouTube links are first
// turned into a direct stream URL with kkdai/youtube.
type FFmpegSource struct {
	FFmpegPath string
	YouTube    *youtube.Client
}

func NewFFmpegSource() *FFmpegSource {
	return &FFmpegSource{FFmpegPath: "ffmpeg", YouTube: &youtube.Client{}}
}

func (s *FFmpegSource) Resolve(ctx context.Context, uri string) (*Track, error) {
	t := &Track{ID: uuid.NewString(), URI: uri, Title: filepath.Base(uri)}
	if !isYouTubeVideoURL(uri) {
		return t, nil
	}

	id, err := extractYouTubeID(uri)
	if err != nil {
		return nil, err
	}
	video, err := s.YouTube.GetVideoContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("youtube lookup: %w", err)
	}
	t.Title = video.Title
	t.Duration = video.Duration
	return t, nil
}

func (s *FFmpegSource) Open(ctx context.Context, t *Track, offset time.Duration) (io.ReadCloser, error) {
	link := t.URI
	if isYouTubeVideoURL(link) {
		var err error
		if link, err = s.youtubeStreamURL(ctx, link); err != nil {
			return nil, err
		}
	}
	return s.ffmpeg(ctx, link, offset)
}

func (s *FFmpegSource) youtubeStreamURL(ctx context.Context, uri string) (string, error) {
	id, err := extractYouTubeID(uri)
	if err != nil {
		return "", err
	}
	video, err := s.YouTube.GetVideoContext(ctx, id)
	if err != nil {
		return "", fmt.Errorf("youtube client error: %w", err)
	}
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", errors.New("no audio formats found for video")
	}
	link, err := s.YouTube.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("get stream URL error: %w", err)
	}
	return link, nil
}

func (s *FFmpegSource) ffmpeg(ctx context.Context, input string, offset time.Duration) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.FFmpegPath, ffmpegArgs(input, offset)...)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}
	return &processReader{ReadCloser: reader, cmd: cmd}, nil
}

func ffmpegArgs(input string, offset time.Duration) []string {
	args := []string{"-ss", fmt.Sprintf("%.3f", offset.Seconds())}
	if isURL(input) {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", input,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

type processReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *processReader) Close() error {
	_ = p.ReadCloser.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if err := p.cmd.Wait(); err != nil {
		log.Debug("ffmpeg exited", "err", err)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYouTubeVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com/watch?v=") ||
		strings.Contains(s, "music.youtube.com/watch?v=") ||
		strings.Contains(s, "youtu.be/")
}

func extractYouTubeID(url string) (string, error) {
	switch {
	case strings.Contains(url, "youtu.be/"):
		parts := strings.Split(url, "youtu.be/")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "?")[0], nil

	case strings.Contains(url, "youtube.com/watch?v="):
		parts := strings.Split(url, "v=")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "&")[0], nil

	default:
		return "", errors.New("unsupported URL format")
	}
}
