package timezones

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mednis/medsbot/pkg/retrylimit"
)

var ErrLookup = errors.New("timezone lookup failed")

const DefaultGeoNamesURL = "http://api.geonames.org"

// GeoNamesClient resolves place names to IANA timezones.
type GeoNamesClient struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *retrylimit.AdaptiveLimiter
}

type geoStatus struct {
	Message string `json:"message"`
	Value   int    `json:"value"`
}

type searchResponse struct {
	Status   *geoStatus `json:"status"`
	GeoNames []struct {
		Name        string `json:"name"`
		CountryName string `json:"countryName"`
		Lat         string `json:"lat"`
		Lng         string `json:"lng"`
	} `json:"geonames"`
}

type timezoneResponse struct {
	Status     *geoStatus `json:"status"`
	TimezoneID string     `json:"timezoneId"`
}

// Lookup finds the timezone of the best match for place. It returns the
// IANA name and a "Name, Country" label.
func (c *GeoNamesClient) Lookup(ctx context.Context, apiKey, place string) (tz, label string, err error) {
	if apiKey == "" {
		return "", "", fmt.Errorf("%w: no GeoNames API key set", ErrLookup)
	}
	place = strings.TrimSpace(place)
	if place == "" {
		return "", "", fmt.Errorf("%w: empty location", ErrLookup)
	}

	var search searchResponse
	err = c.get(ctx, "searchJSON", url.Values{
		"q":        {place},
		"maxRows":  {"1"},
		"username": {apiKey},
	}, &search)
	if err != nil {
		return "", "", err
	}
	if search.Status != nil {
		return "", "", fmt.Errorf("%w: %s", ErrLookup, search.Status.Message)
	}
	if len(search.GeoNames) == 0 {
		return "", "", fmt.Errorf("%w: no location found for %q", ErrLookup, place)
	}
	hit := search.GeoNames[0]

	var zone timezoneResponse
	err = c.get(ctx, "timezoneJSON", url.Values{
		"lat":      {hit.Lat},
		"lng":      {hit.Lng},
		"username": {apiKey},
	}, &zone)
	if err != nil {
		return "", "", err
	}
	if zone.Status != nil {
		return "", "", fmt.Errorf("%w: %s", ErrLookup, zone.Status.Message)
	}
	if zone.TimezoneID == "" {
		return "", "", fmt.Errorf("%w: no timezone at %s,%s", ErrLookup, hit.Lat, hit.Lng)
	}

	label = hit.Name
	if hit.CountryName != "" {
		label += ", " + hit.CountryName
	}
	return zone.TimezoneID, label, nil
}

func (c *GeoNamesClient) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultGeoNamesURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Error("GeoNames request failed", "endpoint", endpoint, "err", err)
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()
	c.Limiter.Observe(resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GeoNames returned %s", ErrLookup, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	return nil
}
