package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/weather"
)

// Recorder owns one batch writer per persisted data type.
type Recorder struct {
	observations *batcher[observationRow]
	snapshots    *batcher[snapshotRow]
	tickers      *batcher[tickerRow]
}

// New creates a recorder writing through the given pool.
func New(cfg Config, db *pgxpool.Pool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		observations: newBatcher("observations", cfg, db, queueObservation, logger),
		snapshots:    newBatcher("snapshots", cfg, db, queueSnapshot, logger),
		tickers:      newBatcher("tickers", cfg, db, queueTicker, logger),
	}
}

// Start begins all writers.
func (r *Recorder) Start(ctx context.Context) {
	r.observations.start(ctx)
	r.snapshots.start(ctx)
	r.tickers.start(ctx)
}

// Stop drains and flushes all writers.
func (r *Recorder) Stop(ctx context.Context) {
	r.observations.stop(ctx)
	r.snapshots.stop(ctx)
	r.tickers.stop(ctx)
}

// RecordObservation implements weather.ObservationSink.
func (r *Recorder) RecordObservation(o weather.Observation) {
	row := observationRow{
		ObservedAt: o.At.UnixMicro(),
		Station:    o.Station,
		PrintC:     o.Print.Celsius(),
	}
	if o.SixHourMax != nil {
		c := o.SixHourMax.Celsius()
		row.SixHourMaxC = &c
	}
	r.observations.submit(row)
}

// RecordSnapshot persists one order book snapshot.
func (r *Recorder) RecordSnapshot(at time.Time, book model.OrderBook) {
	r.snapshots.submit(snapshotRow{
		SnapshotTs: at.UnixMicro(),
		Ticker:     book.Ticker,
		Yes:        marshalLevels(book.Yes),
		No:         marshalLevels(book.No),
	})
}

// RecordTicker persists one top-of-book print from the stream.
func (r *Recorder) RecordTicker(p model.TickerPrint) {
	r.tickers.submit(tickerRow{
		ExchangeTs:   p.At.UnixMicro(),
		Ticker:       p.Ticker,
		YesBid:       p.YesBid,
		YesAsk:       p.YesAsk,
		LastPrice:    p.LastPrice,
		Volume:       p.Volume,
		OpenInterest: p.OpenInterest,
	})
}

// Stats returns per-writer metrics keyed by writer name.
func (r *Recorder) Stats() map[string]Metrics {
	return map[string]Metrics{
		"observations": r.observations.stats(),
		"snapshots":    r.snapshots.stats(),
		"tickers":      r.tickers.stats(),
	}
}

func queueObservation(batch *pgx.Batch, r observationRow) {
	batch.Queue(`
		INSERT INTO observations (observed_at, station, print_c, six_hour_max_c)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (station, observed_at) DO NOTHING
	`, r.ObservedAt, r.Station, r.PrintC, r.SixHourMaxC)
}

func queueSnapshot(batch *pgx.Batch, r snapshotRow) {
	batch.Queue(`
		INSERT INTO orderbook_snapshots (snapshot_ts, ticker, yes, no)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker, snapshot_ts) DO NOTHING
	`, r.SnapshotTs, r.Ticker, r.Yes, r.No)
}

func queueTicker(batch *pgx.Batch, r tickerRow) {
	batch.Queue(`
		INSERT INTO tickers (exchange_ts, ticker, yes_bid, yes_ask, last_price, volume, open_interest)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, exchange_ts) DO NOTHING
	`, r.ExchangeTs, r.Ticker, r.YesBid, r.YesAsk, r.LastPrice, r.Volume, r.OpenInterest)
}

type levelJSON struct {
	Price int `json:"price"`
	Size  int `json:"size"`
}

func marshalLevels(levels []model.PriceLevel) []byte {
	out := make([]levelJSON, len(levels))
	for i, l := range levels {
		out[i] = levelJSON{Price: l.PriceCents, Size: l.Size}
	}
	data, err := json.Marshal(out)
	if err != nil {
		// Levels are plain ints; marshal cannot fail.
		return []byte("[]")
	}
	return data
}
