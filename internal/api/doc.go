// Package api provides the signed Kalshi trade API client.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// All requests are signed with RSA-PSS (see internal/auth). Idempotent GETs
// retry with exponential backoff; order submission never retries.
package api
