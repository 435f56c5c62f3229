package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// QuoteSink receives quotes pushed from a live stream
type QuoteSink interface {
	UpdateQuote(quote *Quote)
}

// streamMessage is the wire format of a pushed quote update
type streamMessage struct {
	Symbol        string  `json:"id"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
	DayVolume     float64 `json:"dayVolume"`
	Time          int64   `json:"time"`
}

// QuoteStream maintains a websocket subscription for live quote updates and
// feeds them into a QuoteSink, keeping the quote cache warm between polls.
// The stream is optional; scans work identically without it.
type QuoteStream struct {
	url    string
	sink   QuoteSink
	logger zerolog.Logger

	mu      sync.Mutex
	symbols map[string]bool
	conn    *websocket.Conn
	running bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewQuoteStream creates a stream targeting the given websocket URL
func NewQuoteStream(url string, sink QuoteSink, logger zerolog.Logger) *QuoteStream {
	return &QuoteStream{
		url:     url,
		sink:    sink,
		logger:  logger.With().Str("component", "QuoteStream").Logger(),
		symbols: make(map[string]bool),
	}
}

// Subscribe adds symbols to the live subscription set. Takes effect on the
// current connection if one is up, otherwise at the next (re)connect.
func (s *QuoteStream) Subscribe(symbols ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if !s.symbols[symbol] {
			s.symbols[symbol] = true
			added = append(added, symbol)
		}
	}
	if s.conn != nil && len(added) > 0 {
		s.sendSubscribe(s.conn, added)
	}
}

// Start launches the connect/read loop. Safe to call once.
func (s *QuoteStream) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop closes the connection and waits for the loop to exit
func (s *QuoteStream) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *QuoteStream) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stream connection failed, retrying in 5s")
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		s.mu.Lock()
		s.conn = conn
		subscribed := make([]string, 0, len(s.symbols))
		for symbol := range s.symbols {
			subscribed = append(subscribed, symbol)
		}
		s.mu.Unlock()

		if len(subscribed) > 0 {
			s.sendSubscribe(conn, subscribed)
		}
		s.logger.Info().Int("symbols", len(subscribed)).Msg("quote stream connected")

		s.readLoop(conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Msg("quote stream disconnected, reconnecting in 3s")
		select {
		case <-time.After(3 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

func (s *QuoteStream) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Symbol == "" {
			continue
		}

		s.sink.UpdateQuote(&Quote{
			Symbol:        msg.Symbol,
			Last:          msg.Price,
			ChangePercent: msg.ChangePercent,
			Volume:        msg.DayVolume,
			Source:        "stream",
			UpdatedAt:     time.Unix(0, msg.Time*int64(time.Millisecond)).UTC(),
		})
	}
}

func (s *QuoteStream) sendSubscribe(conn *websocket.Conn, symbols []string) {
	payload := map[string][]string{"subscribe": symbols}
	if err := conn.WriteJSON(payload); err != nil {
		s.logger.Warn().Err(err).Msg("subscribe message failed")
	}
}
