package recorder

import (
	"time"
)

// Config contains configuration for batch writers.
type Config struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// BufferSize is the capacity of each writer's input buffer. Rows
	// arriving into a full buffer are dropped and counted.
	BufferSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		FlushInterval: time.Second,
		BufferSize:    5000,
	}
}

// observationRow is a row for the observations table.
type observationRow struct {
	ObservedAt  int64 // Microseconds
	Station     string
	PrintC      float64
	SixHourMaxC *float64
}

// snapshotRow is a row for the orderbook_snapshots table.
type snapshotRow struct {
	SnapshotTs int64
	Ticker     string
	Yes        []byte // JSONB: [{price: int, size: int}, ...]
	No         []byte // JSONB
}

// tickerRow is a row for the tickers table.
type tickerRow struct {
	ExchangeTs   int64
	Ticker       string
	YesBid       int // Cents
	YesAsk       int
	LastPrice    int
	Volume       int64
	OpenInterest int64
}

// Metrics holds counters for a writer.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Drops     int64
	Errors    int64
	Flushes   int64
}
