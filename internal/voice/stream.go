package voice

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// Sink receives 20 ms stereo PCM frames for one voice channel.
type Sink interface {
	ChannelID() string
	Send(ctx context.Context, pcm []int16) error
	Close() error
}

// Connector joins voice channels.
type Connector interface {
	Join(ctx context.Context, guildID, channelID string) (Sink, error)
}

// DiscordConnector joins through the gateway and encodes frames to Opus.
type DiscordConnector struct {
	Session *discordgo.Session
}

func (c *DiscordConnector) Join(ctx context.Context, guildID, channelID string) (Sink, error) {
	vc, err := c.Session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		_ = vc.Disconnect()
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return &discordSink{vc: vc, encoder: encoder}, nil
}

type discordSink struct {
	vc      *discordgo.VoiceConnection
	encoder *gopus.Encoder
}

func (s *discordSink) ChannelID() string { return s.vc.ChannelID }

func (s *discordSink) Send(ctx context.Context, pcm []int16) error {
	if !s.vc.Ready {
		return ErrNotConnected
	}
	opus, err := s.encoder.Encode(pcm, frameSize, frameSize*channels*2)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	select {
	case s.vc.OpusSend <- opus:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *discordSink) Close() error {
	return s.vc.Disconnect()
}

// readFrame reads one 20 ms frame of little-endian PCM into out.
func readFrame(r io.Reader, buf []byte, out []int16) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return nil
}

// applyVolume scales samples by volume percent, clipping at the int16 range.
func applyVolume(frame []int16, volume int) {
	if volume == 100 {
		return
	}
	for i, s := range frame {
		v := int32(s) * int32(volume) / 100
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		frame[i] = int16(v)
	}
}
