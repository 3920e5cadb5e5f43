package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL             = "https://api.elections.kalshi.com"
	DefaultWSURL               = "wss://api.elections.kalshi.com"
	DefaultAPITimeout          = 30 * time.Second
	DefaultMaxRetries          = 3
	DefaultTimezone            = "America/New_York"
	DefaultWeatherBaseURL      = "https://api.weather.gov"
	DefaultWeatherStation      = "KNYC"
	DefaultDBPort              = 5432
	DefaultDBSSLMode           = "prefer"
	DefaultMaxConns            = 5
	DefaultMinConns            = 1
	DefaultBookDepth           = 10
	DefaultSnapshotConcurrency = 4
	DefaultBatchSize           = 500
	DefaultFlushInterval       = 1 * time.Second
	DefaultBufferSize          = 5000
	DefaultReconnectBaseDelay  = 1 * time.Second
	DefaultReconnectMaxDelay   = 60 * time.Second
	DefaultPingInterval        = 15 * time.Second
	DefaultReadTimeout         = 30 * time.Second
	DefaultRiskRefresh         = 60 * time.Second
	DefaultTickInterval        = 1 * time.Minute
)

// DefaultWeatherMarks are the minutes past the hour NWS publishes KNYC
// observations; the 51-minute METAR lands shortly before :55.
var DefaultWeatherMarks = []int{5, 25, 55}

// DefaultSnapshotMarks spread book snapshots away from the observation polls.
var DefaultSnapshotMarks = []int{0, 15, 30, 45}

func (c *TraderConfig) applyDefaults() {
	if c.Instance.Timezone == "" {
		c.Instance.Timezone = DefaultTimezone
	}

	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Weather defaults
	if c.Weather.Station == "" {
		c.Weather.Station = DefaultWeatherStation
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = DefaultWeatherBaseURL
	}
	if len(c.Weather.MinuteMarks) == 0 {
		c.Weather.MinuteMarks = append([]int(nil), DefaultWeatherMarks...)
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Recorder defaults
	if len(c.Recorder.SnapshotMinuteMarks) == 0 {
		c.Recorder.SnapshotMinuteMarks = append([]int(nil), DefaultSnapshotMarks...)
	}
	if c.Recorder.BookDepth == 0 {
		c.Recorder.BookDepth = DefaultBookDepth
	}
	if c.Recorder.Concurrency == 0 {
		c.Recorder.Concurrency = DefaultSnapshotConcurrency
	}
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultBufferSize
	}

	// Stream defaults
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.ReadTimeout == 0 {
		c.Stream.ReadTimeout = DefaultReadTimeout
	}

	// Risk defaults
	if c.Risk.RefreshInterval == 0 {
		c.Risk.RefreshInterval = DefaultRiskRefresh
	}

	// Strategy defaults
	for i := range c.Strategies {
		if c.Strategies[i].TickInterval == 0 {
			c.Strategies[i].TickInterval = DefaultTickInterval
		}
	}
}
