package core

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// maxAttachmentSize bounds uploaded config files.
const maxAttachmentSize = 1 << 20

// Attachment resolves an attachment option of a slash command.
func Attachment(i *discordgo.InteractionCreate, opts Options, name string) *discordgo.MessageAttachment {
	id := opts.ID(name)
	data := i.ApplicationCommandData()
	if id == "" || data.Resolved == nil {
		return nil
	}
	return data.Resolved.Attachments[id]
}

// FetchAttachment downloads an uploaded file.
func FetchAttachment(ctx context.Context, client *http.Client, att *discordgo.MessageAttachment) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", att.Filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", att.Filename, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize))
}
