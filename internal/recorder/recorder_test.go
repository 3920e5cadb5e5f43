package recorder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/weather"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var nyc = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

func TestMarshalLevels(t *testing.T) {
	got := string(marshalLevels([]model.PriceLevel{
		{PriceCents: 30, Size: 100},
		{PriceCents: 31, Size: 5},
	}))
	want := `[{"price":30,"size":100},{"price":31,"size":5}]`
	if got != want {
		t.Errorf("marshalLevels = %s, want %s", got, want)
	}

	if got := string(marshalLevels(nil)); got != "[]" {
		t.Errorf("marshalLevels(nil) = %s, want []", got)
	}
}

func TestBatcherSubmitDropsWhenFull(t *testing.T) {
	cfg := Config{BatchSize: 10, FlushInterval: time.Second, BufferSize: 2}
	b := newBatcher[tickerRow]("test", cfg, nil, queueTicker, discard)

	for i := 0; i < 5; i++ {
		b.submit(tickerRow{Ticker: "T"})
	}

	if got := b.stats().Drops; got != 3 {
		t.Errorf("drops = %d, want 3", got)
	}
	if got := len(b.input); got != 2 {
		t.Errorf("buffered = %d, want 2", got)
	}
}

func TestRecordObservationTransform(t *testing.T) {
	r := New(Config{BatchSize: 10, FlushInterval: time.Second, BufferSize: 10}, nil, discard)

	max := model.TempFromFahrenheit(77)
	at := time.Date(2025, 8, 30, 14, 51, 0, 0, time.UTC)
	r.RecordObservation(weather.Observation{
		Station:    "KNYC",
		At:         at,
		Print:      model.TempFromFahrenheit(75.2),
		SixHourMax: &max,
	})

	row := <-r.observations.input
	if row.Station != "KNYC" || row.ObservedAt != at.UnixMicro() {
		t.Errorf("row = %+v, want station KNYC at %d", row, at.UnixMicro())
	}
	if row.SixHourMaxC == nil || *row.SixHourMaxC != max.Celsius() {
		t.Errorf("SixHourMaxC = %v, want %v", row.SixHourMaxC, max.Celsius())
	}
}

type fakeMarkets struct {
	markets []model.TempMarket
	err     error
}

func (f *fakeMarkets) ActiveMarkets(ctx context.Context, base string, date time.Time) ([]model.TempMarket, error) {
	return f.markets, f.err
}

type fakeBooks struct {
	mu      sync.Mutex
	fetched []string
	err     map[string]error
}

func (f *fakeBooks) OrderBook(ctx context.Context, ticker string) (model.OrderBook, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, ticker)
	f.mu.Unlock()
	if err := f.err[ticker]; err != nil {
		return model.OrderBook{}, err
	}
	return model.OrderBook{Ticker: ticker}, nil
}

type fakeSink struct {
	mu    sync.Mutex
	books []model.OrderBook
}

func (f *fakeSink) RecordSnapshot(at time.Time, book model.OrderBook) {
	f.mu.Lock()
	f.books = append(f.books, book)
	f.mu.Unlock()
}

func TestCollectorSnapshotsAllMarkets(t *testing.T) {
	markets := &fakeMarkets{markets: []model.TempMarket{
		{Ticker: "A"}, {Ticker: "B"}, {Ticker: "C"},
	}}
	books := &fakeBooks{err: map[string]error{"B": errors.New("boom")}}
	sink := &fakeSink{}

	c, err := NewCollector(CollectorConfig{
		BaseTicker:  "KXHIGHNY",
		MinuteMarks: []int{0, 30},
		Concurrency: 2,
	}, markets, books, sink, nyc, discard)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	// Well past any aligned mark, on a mark minute.
	now := time.Date(2030, 1, 2, 13, 30, 0, 0, nyc)
	c.OnTick(context.Background(), now)

	if len(books.fetched) != 3 {
		t.Errorf("fetched %d books, want 3", len(books.fetched))
	}
	if len(sink.books) != 2 {
		t.Errorf("recorded %d snapshots, want 2 (one fetch fails)", len(sink.books))
	}

	// The same minute must not snapshot twice.
	c.OnTick(context.Background(), now.Add(10*time.Second))
	if len(books.fetched) != 3 {
		t.Errorf("re-tick within minute fetched again: %v", books.fetched)
	}
}

func TestNewCollectorRejectsBadMarks(t *testing.T) {
	if _, err := NewCollector(CollectorConfig{MinuteMarks: []int{61}}, &fakeMarkets{}, &fakeBooks{}, &fakeSink{}, nyc, discard); err == nil {
		t.Error("expected error for out-of-range mark")
	}
	if _, err := NewCollector(CollectorConfig{}, &fakeMarkets{}, &fakeBooks{}, &fakeSink{}, nyc, discard); err == nil {
		t.Error("expected error for empty marks")
	}
}
