package weather

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-trader/internal/tick"
)

// ObservationSink receives fetched observations for persistence.
type ObservationSink interface {
	RecordObservation(Observation)
}

// ObservationSinkFunc is a function adapter for ObservationSink.
type ObservationSinkFunc func(Observation)

func (f ObservationSinkFunc) RecordObservation(o Observation) {
	f(o)
}

// Collector fetches observations on fixed minute marks and hands them to a
// sink. NWS stations publish just before :51 past the hour with occasional
// specials, so the collector aligns to wall-clock marks rather than a fixed
// interval.
type Collector struct {
	client *NWSClient
	ticks  *tick.Manager
	marks  []int
	sink   ObservationSink
	logger *slog.Logger
}

// DefaultMinuteMarks spread fetches across the hour around the typical
// publication time.
var DefaultMinuteMarks = []int{5, 25, 55}

// NewCollector creates a collector. sink may be nil when persistence is
// disabled; the client's running max still updates on every fetch.
func NewCollector(client *NWSClient, marks []int, sink ObservationSink, logger *slog.Logger) (*Collector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(marks) == 0 {
		marks = DefaultMinuteMarks
	}

	ticks, err := tick.New(time.Minute,
		tick.WithLocation(client.loc),
		tick.WithName("weather-collector"),
		tick.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	// Validate the marks up front rather than on the first tick.
	if err := ticks.AlignToMinuteMarks(time.Now(), marks); err != nil {
		return nil, err
	}

	return &Collector{
		client: client,
		ticks:  ticks,
		marks:  marks,
		sink:   sink,
		logger: logger,
	}, nil
}

// OnTick fetches observations when a minute mark has been reached. Fetch
// failures are logged and retried at the next mark.
func (c *Collector) OnTick(ctx context.Context, now time.Time) {
	if !c.ticks.Ready(now) {
		return
	}
	if err := c.ticks.AlignToMinuteMarks(now, c.marks); err != nil {
		c.logger.Error("realign collector ticks", "error", err)
	}

	obs, err := c.client.Refresh(ctx)
	if err != nil {
		c.logger.Warn("observation fetch failed",
			"station", c.client.station,
			"error", err,
		)
		return
	}

	if c.sink != nil {
		for _, o := range obs {
			c.sink.RecordObservation(o)
		}
	}

	c.logger.Debug("observations collected",
		"station", c.client.station,
		"count", len(obs),
	)
}
