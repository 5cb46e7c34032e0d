package geo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/agrofount/backoffice/pkg/config"
	"github.com/agrofount/backoffice/pkg/httpclient"
)

// ErrSuperseded is returned when a newer lookup was issued before this
// one resolved; the stale result must not be applied.
var ErrSuperseded = errors.New("geocode lookup superseded")

// Location is the resolved place for a coordinate pair
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Address string `json:"address"`
}

// Geocoder resolves coordinates against the configured provider.
// Overlapping lookups are sequenced so only the most recent one lands.
type Geocoder struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	seq     httpclient.Sequencer
}

// New creates a geocoder from provider configuration
func New(cfg *config.GeocoderConfig) *Geocoder {
	return &Geocoder{
		client: httpclient.New(
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithRetries(2, 300*time.Millisecond),
		),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// provider response shape
type geocodeResponse struct {
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	Status string `json:"status"`
}

// Reverse resolves a coordinate pair to city/state/country. A lookup that
// was superseded by a newer call returns ErrSuperseded instead of a stale
// location.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (*Location, error) {
	if g.apiKey == "" {
		return nil, errors.New("geocoder API key not configured")
	}

	seq := g.seq.Next()

	endpoint := fmt.Sprintf("%s?latlng=%s&key=%s",
		g.baseURL,
		url.QueryEscape(fmt.Sprintf("%f,%f", lat, lng)),
		url.QueryEscape(g.apiKey),
	)

	var resp geocodeResponse
	if err := g.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	if !g.seq.Latest(seq) {
		return nil, ErrSuperseded
	}

	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, fmt.Errorf("geocode failed with status %q", resp.Status)
	}

	loc := &Location{Address: resp.Results[0].FormattedAddress}
	for _, component := range resp.Results[0].AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "locality":
				loc.City = component.LongName
			case "administrative_area_level_1":
				loc.State = component.LongName
			case "country":
				loc.Country = component.LongName
			}
		}
	}
	return loc, nil
}
