package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/kalshi-trader/internal/auth"
	"github.com/rickgao/kalshi-trader/internal/model"
)

// TickerSink receives decoded top-of-book prints.
type TickerSink interface {
	RecordTicker(model.TickerPrint)
}

// TickerStream holds one signed WebSocket connection subscribed to the
// ticker channel for a fixed market set. It reconnects with exponential
// backoff and resubscribes after every reconnect.
type TickerStream struct {
	cfg    Config
	creds  *auth.Credentials
	sink   TickerSink
	logger *slog.Logger

	tickers []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	closed    bool

	nextCmdID atomic.Int64
}

// New creates a ticker stream for the given markets.
func New(cfg Config, creds *auth.Credentials, tickers []string, sink TickerSink, logger *slog.Logger) *TickerStream {
	if logger == nil {
		logger = slog.Default()
	}
	return &TickerStream{
		cfg:     cfg,
		creds:   creds,
		sink:    sink,
		tickers: tickers,
		logger:  logger,
	}
}

// Start begins the connect-consume-reconnect loop.
func (s *TickerStream) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAlreadyClosed
	}
	s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("ticker stream started", "markets", len(s.tickers))
	return nil
}

// Stop closes the connection and waits for goroutines.
func (s *TickerStream) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("ticker stream stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsConnected returns the current connection state.
func (s *TickerStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// run reconnects until the stream is stopped. Backoff doubles per failed
// session and resets after a session that held for a minute.
func (s *TickerStream) run() {
	defer s.wg.Done()

	delay := s.cfg.ReconnectBaseDelay

	for {
		if s.ctx.Err() != nil {
			return
		}

		sessionStart := time.Now()
		if err := s.session(); err != nil && s.ctx.Err() == nil {
			s.logger.Warn("ticker stream session ended", "error", err)
		}
		if s.ctx.Err() != nil {
			return
		}

		if time.Since(sessionStart) > time.Minute {
			delay = s.cfg.ReconnectBaseDelay
		}

		s.logger.Info("reconnecting ticker stream", "delay", delay)
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > s.cfg.ReconnectMaxDelay {
			delay = s.cfg.ReconnectMaxDelay
		}
	}
}

// session dials, subscribes, and consumes until the connection fails.
func (s *TickerStream) session() error {
	conn, err := s.dial()
	if err != nil {
		return err
	}
	defer func() {
		s.mu.Lock()
		s.connected = false
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	if err := s.subscribe(conn); err != nil {
		return err
	}

	pingDone := make(chan struct{})
	defer close(pingDone)
	go s.keepalive(conn, pingDone)

	return s.consume(conn)
}

// dial opens the signed WebSocket connection.
func (s *TickerStream) dial() (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if s.creds != nil {
		signed, err := s.creds.SignWebSocket()
		if err != nil {
			return nil, err
		}
		for k, v := range signed {
			header.Set(k, v)
		}
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	dialCtx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
	defer cancel()

	conn, _, err := dialer.DialContext(dialCtx, s.cfg.URL+auth.WebSocketPath, header)
	if err != nil {
		return nil, err
	}

	// Any control traffic counts as liveness.
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	s.logger.Debug("websocket connected", "url", s.cfg.URL)
	return conn, nil
}

// subscribe sends the ticker channel subscription for all markets.
func (s *TickerStream) subscribe(conn *websocket.Conn) error {
	cmd := Command{
		ID:  s.nextCmdID.Add(1),
		Cmd: "subscribe",
		Params: SubscribeParams{
			Channels:      []string{"ticker"},
			MarketTickers: s.tickers,
		},
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// consume reads data messages and feeds decoded prints to the sink.
func (s *TickerStream) consume(conn *websocket.Conn) error {
	for {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()
		if err != nil {
			return err
		}

		var msg DataMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("undecodable stream message", "error", err)
			continue
		}

		switch msg.Type {
		case "ticker":
			s.handleTicker(msg.Msg, receivedAt)
		case "subscribed":
			s.logger.Info("ticker subscription confirmed", "sid", msg.SID)
		case "error":
			var em ErrorMsg
			if err := json.Unmarshal(msg.Msg, &em); err == nil {
				s.logger.Error("stream error message", "code", em.Code, "message", em.Message)
			}
		}
	}
}

func (s *TickerStream) handleTicker(raw json.RawMessage, receivedAt time.Time) {
	var tm TickerMsg
	if err := json.Unmarshal(raw, &tm); err != nil {
		s.logger.Warn("undecodable ticker message", "error", err)
		return
	}

	at := receivedAt
	if tm.Ts > 0 {
		at = time.Unix(tm.Ts, 0)
	}

	if s.sink != nil {
		s.sink.RecordTicker(model.TickerPrint{
			Ticker:       tm.MarketTicker,
			YesBid:       tm.YesBid,
			YesAsk:       tm.YesAsk,
			LastPrice:    tm.Price,
			Volume:       tm.Volume,
			OpenInterest: tm.OpenInterest,
			At:           at,
		})
	}
}

// keepalive pings until the session ends.
func (s *TickerStream) keepalive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}
