package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// batcher accumulates rows of one type and flushes them to the database as
// pgx batches. Inserts use ON CONFLICT DO NOTHING; replays after a
// reconnect land as conflicts, not duplicates.
type batcher[T any] struct {
	name   string
	cfg    Config
	queue  func(*pgx.Batch, T)
	db     *pgxpool.Pool
	logger *slog.Logger

	input chan T

	batch       []T
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics Metrics
}

func newBatcher[T any](name string, cfg Config, db *pgxpool.Pool, queue func(*pgx.Batch, T), logger *slog.Logger) *batcher[T] {
	return &batcher[T]{
		name:   name,
		cfg:    cfg,
		queue:  queue,
		db:     db,
		logger: logger,
		input:  make(chan T, cfg.BufferSize),
		batch:  make([]T, 0, cfg.BatchSize),
	}
}

// start begins consuming rows and writing to the database.
func (b *batcher[T]) start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.flushTicker = time.NewTicker(b.cfg.FlushInterval)

	b.wg.Add(1)
	go b.consumeLoop()

	b.wg.Add(1)
	go b.flushLoop()

	b.logger.Info("writer started",
		"writer", b.name,
		"batch_size", b.cfg.BatchSize,
		"flush_interval", b.cfg.FlushInterval,
	)
}

// stop drains the goroutines and flushes whatever is left.
func (b *batcher[T]) stop(ctx context.Context) {
	if b.cancel != nil {
		b.cancel()
	}
	if b.flushTicker != nil {
		b.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("writer stopped", "writer", b.name)
	case <-ctx.Done():
		b.logger.Warn("writer stop timed out", "writer", b.name)
	}

	b.flush()
}

// submit hands a row to the writer without blocking. Full buffer drops the
// row; recording must never stall the caller.
func (b *batcher[T]) submit(row T) {
	select {
	case b.input <- row:
	default:
		b.batchMu.Lock()
		b.metrics.Drops++
		drops := b.metrics.Drops
		b.batchMu.Unlock()
		if drops%1000 == 1 {
			b.logger.Warn("writer buffer full, dropping rows", "writer", b.name, "drops", drops)
		}
	}
}

// stats returns current metrics.
func (b *batcher[T]) stats() Metrics {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return b.metrics
}

func (b *batcher[T]) consumeLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case row := <-b.input:
			b.batchMu.Lock()
			b.batch = append(b.batch, row)
			shouldFlush := len(b.batch) >= b.cfg.BatchSize
			b.batchMu.Unlock()

			if shouldFlush {
				b.flush()
			}
		}
	}
}

func (b *batcher[T]) flushLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-b.flushTicker.C:
			b.flush()
		}
	}
}

// flush writes the current batch to the database.
func (b *batcher[T]) flush() {
	b.batchMu.Lock()
	if len(b.batch) == 0 {
		b.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := b.batch
	b.batch = make([]T, 0, b.cfg.BatchSize)
	b.batchMu.Unlock()

	start := time.Now()

	conflicts, err := b.batchInsert(batch)
	if err != nil {
		b.logger.Error("batch insert failed", "writer", b.name, "error", err, "count", len(batch))
		b.batchMu.Lock()
		b.metrics.Errors++
		b.batchMu.Unlock()
		return
	}

	b.batchMu.Lock()
	b.metrics.Inserts += int64(len(batch) - conflicts)
	b.metrics.Conflicts += int64(conflicts)
	b.metrics.Flushes++
	b.batchMu.Unlock()

	b.logger.Debug("flushed rows",
		"writer", b.name,
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

func (b *batcher[T]) batchInsert(rows []T) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		b.queue(batch, r)
	}

	results := b.db.SendBatch(b.ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
