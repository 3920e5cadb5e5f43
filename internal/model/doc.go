// Package model defines shared domain types for the trading agent.
//
// Conventions:
//   - Money: Cents (int64 hundredths of a dollar), never floats
//   - Contract prices: integer cents in [1, 99]
//   - Temperatures: Celsius internally, Fahrenheit at the venue boundary
//   - IDs: string for tickers, uuid.UUID for venue order IDs
package model
