package stream

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Command is a WebSocket command to send to the server.
type Command struct {
	ID     int64           `json:"id"`
	Cmd    string          `json:"cmd"`
	Params SubscribeParams `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

// DataMessage is a data message from the server.
type DataMessage struct {
	Type string          `json:"type"` // "ticker", "subscribed", "error"
	SID  int64           `json:"sid"`
	Msg  json.RawMessage `json:"msg"`
}

// TickerMsg is the message content for a ticker data message.
type TickerMsg struct {
	MarketTicker string `json:"market_ticker"`
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	Price        int    `json:"price"`
	Volume       int64  `json:"volume"`
	OpenInterest int64  `json:"open_interest"`
	Ts           int64  `json:"ts"` // Unix seconds
}

// ErrorMsg is the message content for an "error" response.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Config configures the ticker stream.
type Config struct {
	URL                string        // Host root, e.g. wss://api.elections.kalshi.com
	ReconnectBaseDelay time.Duration // Base wait time for reconnection
	ReconnectMaxDelay  time.Duration // Max wait time for reconnection
	PingInterval       time.Duration // Keepalive ping cadence
	ReadTimeout        time.Duration // Max time without traffic before reconnecting
	BufferSize         int           // Decoded print channel buffer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectBaseDelay: time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		PingInterval:       15 * time.Second,
		ReadTimeout:        30 * time.Second,
		BufferSize:         10000,
	}
}
