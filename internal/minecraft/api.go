package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mednis/medsbot/pkg/retrylimit"
)

const (
	DefaultMojangURL = "https://api.mojang.com/users/profiles/minecraft/"
	DefaultStatusURL = "https://api.mcsrvstat.us/3/"
)

// MojangClient resolves player names against the Mojang profile API.
type MojangClient struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *retrylimit.AdaptiveLimiter
}

// CanonicalName lower-cases name, looks it up and returns the name with
// the casing Mojang has on record.
func (c *MojangClient) CanonicalName(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", &PlayerError{Err: ErrUnknownPlayer, Username: name}
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return "", err
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultMojangURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+url.PathEscape(name), nil)
	if err != nil {
		return "", err
	}
	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return "", fmt.Errorf("mojang lookup: %w", err)
	}
	defer resp.Body.Close()
	c.Limiter.Observe(resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return "", &PlayerError{Err: ErrUnknownPlayer, Username: name}
	default:
		return "", fmt.Errorf("mojang lookup: status %d", resp.StatusCode)
	}

	var profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("mojang lookup: %w", err)
	}
	if profile.Name == "" {
		return "", &PlayerError{Err: ErrUnknownPlayer, Username: name}
	}
	return profile.Name, nil
}

// Status is the public view of a server as seen by mcsrvstat.us.
type Status struct {
	Online  bool
	MOTD    string
	Version string
}

type StatusClient struct {
	BaseURL string
	HTTP    *http.Client
}

func (c *StatusClient) Lookup(ctx context.Context, address string) (Status, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultStatusURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+url.PathEscape(address), nil)
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("User-Agent", "medsbot")
	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("status lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("status lookup: status %d", resp.StatusCode)
	}

	var body struct {
		Online bool `json:"online"`
		MOTD   struct {
			Clean []string `json:"clean"`
		} `json:"motd"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Status{}, fmt.Errorf("status lookup: %w", err)
	}
	return Status{
		Online:  body.Online,
		MOTD:    strings.TrimSpace(strings.Join(body.MOTD.Clean, "\n")),
		Version: body.Version,
	}, nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
