// Package backend talks to the two upstream services: the risk service
// (scores, advisories, hotspots, prices, facilities) and the agent service
// (vehicle tracks). Response shapes are decoded tolerantly: both
// {"items": [...]} envelopes and bare arrays are accepted, and a malformed
// body yields an empty snapshot rather than an error so one bad field never
// blanks a whole dataset.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"georisk/internal/domain"
)

// Client is a thin JSON client for one upstream base URL.
type Client struct {
	base string
	http *http.Client
	log  *slog.Logger
}

// New builds a client for the given base URL.
func New(base string, log *slog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

// EventsURL returns the push-invalidation channel URL for the given path.
func (c *Client) EventsURL(path string) string {
	return c.base + path
}

// get issues one GET and returns the raw body. Non-2xx statuses are errors.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req)
}

// post issues one JSON POST and returns the raw body.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	return body, nil
}

// decodeList accepts {"items": [...]} or a bare array. Anything else decodes
// to an empty slice.
func decodeList[T any](body []byte) []T {
	var envelope struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Items != nil {
		return envelope.Items
	}
	var bare []T
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare
	}
	return nil
}

// RiskPoints fetches the current risk score snapshot.
func (c *Client) RiskPoints(ctx context.Context) ([]domain.RiskPoint, error) {
	body, err := c.get(ctx, "/api/risk")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.RiskPoint](body), nil
}

// TravelAdvisories fetches advisory levels for all covered countries.
func (c *Client) TravelAdvisories(ctx context.Context) ([]domain.Advisory, error) {
	body, err := c.get(ctx, "/api/travel_advisories")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Advisory](body), nil
}

// Hotspots fetches clustered event locations. The upstream relays the GDELT
// geo API, so a GeoJSON feature collection is accepted alongside the plain
// list shape.
func (c *Client) Hotspots(ctx context.Context) ([]domain.Hotspot, error) {
	body, err := c.get(ctx, "/api/hotspots")
	if err != nil {
		return nil, err
	}
	if items := decodeList[domain.Hotspot](body); items != nil {
		return items, nil
	}
	return decodeHotspotFeatures(body), nil
}

func decodeHotspotFeatures(body []byte) []domain.Hotspot {
	var fc struct {
		Features []struct {
			Properties struct {
				Name  string `json:"name"`
				Count int    `json:"count"`
			} `json:"properties"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil
	}
	items := make([]domain.Hotspot, 0, len(fc.Features))
	for _, f := range fc.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		items = append(items, domain.Hotspot{
			Name:         f.Properties.Name,
			Longitude:    f.Geometry.Coordinates[0],
			Latitude:     f.Geometry.Coordinates[1],
			MentionCount: f.Properties.Count,
		})
	}
	return items
}

// Prices fetches the market side-panel snapshot.
func (c *Client) Prices(ctx context.Context) (domain.PriceBoard, error) {
	body, err := c.get(ctx, "/api/price")
	if err != nil {
		return domain.PriceBoard{}, err
	}
	var raw struct {
		Metals struct {
			Gold   *float64 `json:"gold"`
			Silver *float64 `json:"silver"`
			Unit   string   `json:"unit"`
		} `json:"metals"`
		Currencies struct {
			Rates map[string]float64 `json:"rates"`
		} `json:"currencies"`
		RetrievedAt string `json:"retrieved_at"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PriceBoard{}, nil
	}
	return domain.PriceBoard{
		Gold:        raw.Metals.Gold,
		Silver:      raw.Metals.Silver,
		Unit:        raw.Metals.Unit,
		Rates:       raw.Currencies.Rates,
		RetrievedAt: raw.RetrievedAt,
	}, nil
}

// Facilities fetches static markers for the given region codes.
func (c *Client) Facilities(ctx context.Context, codes []string) ([]domain.Facility, error) {
	body, err := c.post(ctx, "/api/facilities", map[string]any{"codes": codes})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Facility](body), nil
}

// Tracks fetches the current vehicle track snapshot.
func (c *Client) Tracks(ctx context.Context) ([]domain.Track, error) {
	body, err := c.get(ctx, "/api/tracks")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Track](body), nil
}
