// Package region lets members change the RTC region of whitelisted voice
// channels without the Manage Channels permission.
package region

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/internal/storage"
)

var ErrUnknownRegion = errors.New("unknown region")

const (
	// Automatic clears the channel's region override.
	Automatic = "automatic"

	regionErrorMarker = "In rtc_region: Value must be one of ("
	// refreshProbe is never a valid region, so editing a channel to it
	// makes Discord answer with the current list.
	refreshProbe = "aaaa"
)

// ParseRegionError extracts the allowed regions from the body of a 400
// response to a channel edit. ok is false when the body has no list.
func ParseRegionError(body string) (regions []string, ok bool) {
	_, rest, found := strings.Cut(body, regionErrorMarker)
	if !found {
		return nil, false
	}
	cleaner := strings.NewReplacer("'", "", "(", "", ")", "", ".", "", `"`, "")
	for part := range strings.SplitSeq(rest, ",") {
		// The list ends at the closing parenthesis.
		last := strings.Contains(part, ")")
		if last {
			part, _, _ = strings.Cut(part, ")")
		}
		part = strings.TrimSpace(cleaner.Replace(part))
		if part != "" {
			regions = append(regions, part)
		}
		if last {
			break
		}
	}
	return regions, len(regions) > 0
}

// Choices maps region IDs to display names, keeping unknown IDs as is.
func Choices(ids []string, names map[string]string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out[id] = name
		} else {
			out[id] = id
		}
	}
	return out
}

// Lookup returns the display name of the region id.
func Lookup(regions map[string]string, id string) (string, error) {
	if id == Automatic {
		return "Automatic", nil
	}
	if name, ok := regions[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, id)
}

// ChannelEditor changes a channel's region. A nil region means automatic.
type ChannelEditor interface {
	SetRegion(ctx context.Context, channelID string, region *string) error
}

// SessionEditor edits channels through the Discord REST API. discordgo's
// channel types do not carry rtc_region, so the field is sent and read
// with raw requests.
type SessionEditor struct {
	Session *discordgo.Session
}

func (e SessionEditor) SetRegion(ctx context.Context, channelID string, region *string) error {
	endpoint := discordgo.EndpointChannel(channelID)
	body := map[string]any{"rtc_region": region}
	_, err := e.Session.RequestWithBucketID(http.MethodPatch, endpoint, body, endpoint, discordgo.WithContext(ctx))
	return err
}

// CurrentRegion returns the channel's region, empty when automatic.
func (e SessionEditor) CurrentRegion(ctx context.Context, channelID string) (string, error) {
	endpoint := discordgo.EndpointChannel(channelID)
	body, err := e.Session.RequestWithBucketID(http.MethodGet, endpoint, nil, endpoint, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	var ch struct {
		RTCRegion *string `json:"rtc_region"`
	}
	if err := json.Unmarshal(body, &ch); err != nil {
		return "", err
	}
	if ch.RTCRegion == nil {
		return "", nil
	}
	return *ch.RTCRegion, nil
}

// Request describes one /region invocation.
type Request struct {
	GuildID   string
	ChannelID string
	// Voice is false when the command was not used in a voice channel.
	Voice         bool
	CurrentRegion string
	Region        string
}

// Reply is what the command answers with.
type Reply struct {
	Text      string
	Ephemeral bool
}

type Changer struct {
	Storage *storage.Storage
	Editor  ChannelEditor
	// Names are the display names of known region IDs.
	Names map[string]string
}

func mention(channelID string) string { return "<#" + channelID + ">" }

// Change applies req. Checks that fail are reported in the reply, not as
// errors.
func (c *Changer) Change(ctx context.Context, req Request) (Reply, error) {
	if !req.Voice {
		return Reply{"This command can only be used in a voice channel", true}, nil
	}
	rec, err := c.Storage.Guild(req.GuildID)
	if err != nil {
		return Reply{}, err
	}
	if !rec.Region.Enabled {
		return Reply{"Region changer is not enabled", true}, nil
	}
	if !slices.Contains(rec.Region.ChannelWhitelist, req.ChannelID) {
		return Reply{"This channel is not whitelisted", true}, nil
	}

	current := req.CurrentRegion
	if current == "" {
		current = Automatic
	}
	if req.Region == "" {
		return Reply{fmt.Sprintf("The current region for %s is `%s`", mention(req.ChannelID), current), true}, nil
	}

	regions, err := c.Storage.Regions()
	if err != nil {
		return Reply{}, err
	}
	if _, err := Lookup(regions, req.Region); err != nil {
		if len(regions) == 0 {
			c.refresh(ctx, req.ChannelID)
			regions, _ = c.Storage.Regions()
		}
		return Reply{fmt.Sprintf("Invalid region `%s`. \nAvailable regions: `%s`", req.Region, strings.Join(SortedIDs(regions), ", ")), true}, nil
	}

	if req.Region == current {
		return Reply{fmt.Sprintf("The region is already set to `%s`", req.Region), true}, nil
	}

	var target *string
	if req.Region != Automatic {
		target = &req.Region
	}
	err = c.Editor.SetRegion(ctx, req.ChannelID, target)
	switch status := restStatus(err); {
	case err == nil:
	case status == http.StatusForbidden:
		return Reply{"I don't have permission to change the region of this channel", false}, nil
	case status == http.StatusBadRequest:
		c.updateFromError(err)
		return Reply{"**Failed to change the region.** \n" +
			"This may be temporary or the list of available regions has changed on discord's side.", true}, nil
	default:
		return Reply{}, fmt.Errorf("change region of %s: %w", req.ChannelID, err)
	}

	log.Info("voice region changed", "guild", req.GuildID, "channel", req.ChannelID, "from", current, "to", req.Region)
	return Reply{Text: fmt.Sprintf("Region of %s changed from `%s` to `%s`", mention(req.ChannelID), current, req.Region)}, nil
}

// Refresh asks Discord for the current region list by requesting an
// invalid region on channelID.
func (c *Changer) Refresh(ctx context.Context, guildID, channelID string, voice bool) (string, error) {
	rec, err := c.Storage.Guild(guildID)
	if err != nil {
		return "", err
	}
	if !voice || !slices.Contains(rec.Region.ChannelWhitelist, channelID) {
		return "The channel you are in has is not on the whitelist/a voice channel. Did not perform region refresh.", nil
	}
	return c.refresh(ctx, channelID), nil
}

func (c *Changer) refresh(ctx context.Context, channelID string) string {
	probe := refreshProbe
	err := c.Editor.SetRegion(ctx, channelID, &probe)
	switch restStatus(err) {
	case http.StatusForbidden:
		return "I don't have permission to change the region of this channel."
	case http.StatusBadRequest:
		c.updateFromError(err)
		return "Region list updated."
	}
	if err != nil {
		log.Warn("region refresh failed", "channel", channelID, "err", err)
	}
	return "Region refresh failed, somehow the API did not return a 400 error."
}

func (c *Changer) updateFromError(err error) {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return
	}
	ids, ok := ParseRegionError(string(rest.ResponseBody))
	if !ok {
		return
	}
	if err := c.Storage.SetRegions(Choices(ids, c.Names)); err != nil {
		log.Error("could not store region list", "err", err)
		return
	}
	log.Info("updated region list", "regions", ids)
}

func restStatus(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

// SortedIDs lists region IDs alphabetically.
func SortedIDs(regions map[string]string) []string {
	ids := make([]string, 0, len(regions))
	for id := range regions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Autocomplete filters regions whose ID contains current, case-insensitively.
func Autocomplete(regions map[string]string, current string) []*discordgo.ApplicationCommandOptionChoice {
	current = strings.ToLower(current)
	var out []*discordgo.ApplicationCommandOptionChoice
	for _, id := range SortedIDs(regions) {
		if strings.Contains(strings.ToLower(id), current) {
			out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: regions[id], Value: id})
		}
	}
	if len(out) > 25 {
		out = out[:25]
	}
	return out
}

// Clean drops whitelisted channels for which exists returns false and
// reports how many were removed.
func Clean(st *storage.Storage, guildID string, exists func(channelID string) bool) (int, error) {
	removed := 0
	err := st.UpdateRegion(guildID, func(r *storage.RegionSettings) error {
		kept := r.ChannelWhitelist[:0]
		for _, id := range r.ChannelWhitelist {
			if exists(id) {
				kept = append(kept, id)
			}
		}
		removed = len(r.ChannelWhitelist) - len(kept)
		r.ChannelWhitelist = kept
		return nil
	})
	return removed, err
}
