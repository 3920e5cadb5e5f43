package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
)

// DefaultBaseURL is the public NWS API root.
const DefaultBaseURL = "https://api.weather.gov"

// Observation is a single station reading.
type Observation struct {
	Station    string
	At         time.Time
	Print      model.Temperature  // Instantaneous temperature
	SixHourMax *model.Temperature // METAR 1-group max, when reported
}

// sixHourMaxGroup matches the METAR remarks 6-hour maximum temperature
// group: "1" prefix, sign digit (0 = positive, 1 = negative), three digits
// of tenths °C. Example: "10244" = +24.4°C.
var sixHourMaxGroup = regexp.MustCompile(`(?:^| )1([01])(\d{3})(?: |$)`)

// NWSClient fetches station observations and tracks the running daily
// maximum temperature.
type NWSClient struct {
	baseURL    string
	station    string
	loc        *time.Location
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	day     string            // Local calendar day the running max belongs to
	max     model.Temperature // Running daily max
	haveMax bool
	latest  Observation
	haveObs bool
}

// NWSOption configures an NWSClient.
type NWSOption func(*NWSClient)

// WithBaseURL overrides the API root (tests).
func WithBaseURL(url string) NWSOption {
	return func(c *NWSClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) NWSOption {
	return func(c *NWSClient) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) NWSOption {
	return func(c *NWSClient) {
		c.logger = logger
	}
}

// NewNWSClient creates a client for one station (e.g. "KNYC"). loc is the
// station's local timezone, which defines the trading day boundary.
func NewNWSClient(station string, loc *time.Location, opts ...NWSOption) *NWSClient {
	c := &NWSClient{
		baseURL: DefaultBaseURL,
		station: station,
		loc:     loc,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// observationsResponse mirrors the station observations feed.
type observationsResponse struct {
	Features []struct {
		Properties struct {
			Timestamp   string `json:"timestamp"`
			RawMessage  string `json:"rawMessage"`
			Temperature struct {
				Value *float64 `json:"value"` // °C
			} `json:"temperature"`
		} `json:"properties"`
	} `json:"features"`
}

// Refresh fetches recent observations and folds them into the running daily
// max. Readings from previous local days reset the max.
func (c *NWSClient) Refresh(ctx context.Context) ([]Observation, error) {
	url := fmt.Sprintf("%s/stations/%s/observations?limit=12", c.baseURL, c.station)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch observations: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("nws status %d for %s", resp.StatusCode, c.station)
	}

	var parsed observationsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}

	// Feed is newest-first; fold oldest-first so "latest" lands last.
	obs := make([]Observation, 0, len(parsed.Features))
	for i := len(parsed.Features) - 1; i >= 0; i-- {
		p := parsed.Features[i].Properties
		if p.Temperature.Value == nil {
			continue
		}
		at, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			c.logger.Warn("skipping observation with bad timestamp",
				"station", c.station,
				"timestamp", p.Timestamp,
			)
			continue
		}

		o := Observation{
			Station: c.station,
			At:      at,
			Print:   model.Temperature(*p.Temperature.Value),
		}
		if max, ok := parseSixHourMax(p.RawMessage); ok {
			o.SixHourMax = &max
		}
		obs = append(obs, o)
		c.fold(o)
	}

	return obs, nil
}

// fold merges one observation into the running state.
func (c *NWSClient) fold(o Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	day := o.At.In(c.loc).Format("2006-01-02")
	if day != c.day {
		c.day = day
		c.haveMax = false
	}

	candidates := []model.Temperature{o.Print}
	if o.SixHourMax != nil {
		candidates = append(candidates, *o.SixHourMax)
	}
	for _, t := range candidates {
		if !c.haveMax || t.Fahrenheit() > c.max.Fahrenheit() {
			c.max = t
			c.haveMax = true
		}
	}

	if !c.haveObs || o.At.After(c.latest.At) {
		c.latest = o
		c.haveObs = true
	}
}

// ReferenceValue returns the running daily maximum, refreshing when no
// reading for now's local day is held yet.
func (c *NWSClient) ReferenceValue(ctx context.Context, now time.Time) (model.Temperature, error) {
	day := now.In(c.loc).Format("2006-01-02")

	c.mu.Lock()
	haveToday := c.haveMax && c.day == day
	max := c.max
	c.mu.Unlock()

	if haveToday {
		return max, nil
	}

	if _, err := c.Refresh(ctx); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveMax || c.day != day {
		return 0, fmt.Errorf("no observation for %s on %s", c.station, day)
	}
	return c.max, nil
}

// Instantaneous returns the most recent print.
func (c *NWSClient) Instantaneous(ctx context.Context, now time.Time) (model.Temperature, error) {
	c.mu.Lock()
	haveObs := c.haveObs
	latest := c.latest
	c.mu.Unlock()

	// A print older than the refresh cadence is stale; re-fetch.
	if haveObs && now.Sub(latest.At) < time.Hour {
		return latest.Print, nil
	}

	if _, err := c.Refresh(ctx); err != nil {
		if haveObs {
			return latest.Print, nil
		}
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveObs {
		return 0, fmt.Errorf("no observations for %s", c.station)
	}
	return c.latest.Print, nil
}

// parseSixHourMax extracts the 6-hour maximum temperature group from METAR
// remarks. Returns false when the group is absent.
func parseSixHourMax(raw string) (model.Temperature, bool) {
	m := sixHourMaxGroup.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	tenths, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	value := float64(tenths) / 10
	if m[1] == "1" {
		value = -value
	}
	if math.Abs(value) > 60 {
		// Physically implausible; treat as a garbled remark.
		return 0, false
	}
	return model.Temperature(value), true
}
