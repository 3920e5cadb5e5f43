// Package recorder persists market and weather data for later analysis.
//
// Writers:
//   - Weather observation writer (observations table)
//   - Orderbook snapshot writer (orderbook_snapshots table)
//   - Ticker print writer (tickers table)
//
// All writers batch inserts and use append-only semantics (never update,
// only insert). Recording failures never stall the trading loop: rows are
// dropped when the buffer is full.
package recorder
