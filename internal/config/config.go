package config

import (
	"fmt"
	"time"

	"github.com/rickgao/kalshi-trader/internal/tick"
)

// TraderConfig is the root configuration for a trader instance.
type TraderConfig struct {
	Instance   InstanceConfig   `yaml:"instance"`
	API        APIConfig        `yaml:"api"`
	Weather    WeatherConfig    `yaml:"weather"`
	Database   DatabaseConfig   `yaml:"database"`
	Recorder   RecorderConfig   `yaml:"recorder"`
	Stream     StreamConfig     `yaml:"stream"`
	Risk       RiskConfig       `yaml:"risk"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Strategies []StrategyConfig `yaml:"strategies"`
}

// InstanceConfig identifies this trader.
type InstanceConfig struct {
	ID       string `yaml:"id"`
	Timezone string `yaml:"timezone"` // Venue settlement timezone
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL        string        `yaml:"rest_url"` // Host root, no path prefix
	WSURL          string        `yaml:"ws_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID (for KALSHI-ACCESS-KEY header)
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// WeatherConfig holds the NWS observation source settings.
type WeatherConfig struct {
	Station     string `yaml:"station"` // e.g. "KNYC"
	BaseURL     string `yaml:"base_url"`
	MinuteMarks []int  `yaml:"minute_marks"` // Minutes past the hour to poll on
}

// DatabaseConfig holds the recording database connection. The trading loop
// never depends on it; recording is optional.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RecorderConfig holds batch writer and snapshot settings.
type RecorderConfig struct {
	SnapshotMinuteMarks []int         `yaml:"snapshot_minute_marks"`
	BookDepth           int           `yaml:"book_depth"`
	Concurrency         int           `yaml:"concurrency"`
	BatchSize           int           `yaml:"batch_size"`
	FlushInterval       time.Duration `yaml:"flush_interval"`
	BufferSize          int           `yaml:"buffer_size"`
}

// StreamConfig holds WebSocket ticker stream settings.
type StreamConfig struct {
	Enabled            bool          `yaml:"enabled"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
}

// RiskConfig holds account snapshot settings.
type RiskConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// ExecutionConfig gates live order submission.
type ExecutionConfig struct {
	TradingEnabled bool `yaml:"trading_enabled"`
}

// StrategyConfig is one strategy entry. Type strings map onto a closed set;
// unrecognized types run inert.
type StrategyConfig struct {
	Name                 string        `yaml:"name"`
	Type                 string        `yaml:"type"`
	Enabled              bool          `yaml:"enabled"`
	TickInterval         time.Duration `yaml:"tick_interval"`
	BaseTicker           string        `yaml:"base_ticker"`
	MaxNotionalCents     int64         `yaml:"max_notional_cents"`
	UncertaintyCents     int           `yaml:"uncertainty_cents"`
	PeakUncertaintyCents int           `yaml:"peak_uncertainty_cents"`
	VaRBudgetCents       int64         `yaml:"var_budget_cents"`
	WindowStart          string        `yaml:"window_start"` // "HH:MM", empty = no window
	WindowEnd            string        `yaml:"window_end"`
}

// Window parses the strategy's daily trading window. Returns nil when no
// window is configured.
func (s StrategyConfig) Window() (*tick.Window, error) {
	if s.WindowStart == "" && s.WindowEnd == "" {
		return nil, nil
	}
	if s.WindowStart == "" || s.WindowEnd == "" {
		return nil, fmt.Errorf("strategy %s: window_start and window_end must both be set", s.Name)
	}

	start, err := parseTimeOfDay(s.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: window_start: %w", s.Name, err)
	}
	end, err := parseTimeOfDay(s.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: window_end: %w", s.Name, err)
	}
	return &tick.Window{Start: start, End: end}, nil
}

func parseTimeOfDay(s string) (tick.TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return tick.TimeOfDay{}, fmt.Errorf("want HH:MM, got %q", s)
	}
	return tick.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}
