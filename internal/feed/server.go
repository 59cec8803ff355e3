package feed

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vantage/internal/domain"
)

const subscriberBuffer = 64

// TradeEvent is the JSON shape pushed to websocket subscribers.
type TradeEvent struct {
	Symbol    string `json:"symbol"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
	MakerID   int64  `json:"makerId"`
	TakerID   int64  `json:"takerId"`
	TakerSide string `json:"takerSide"`
}

// Server upgrades /ws/trades connections and streams every trade
// broadcast to it. It never touches a book directly — OrderBook trade
// callbacks feed it via Publish.
type Server struct {
	hub      *Hub[TradeEvent]
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewServer builds a feed server backed by its own hub.
func NewServer(logger zerolog.Logger) *Server {
	return &Server{
		hub:      NewHub[TradeEvent](),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:   logger,
	}
}

// Publish broadcasts a trade on symbol to every connected subscriber.
func (s *Server) Publish(symbol string, t domain.Trade) {
	s.hub.Broadcast(TradeEvent{
		Symbol:    symbol,
		Price:     int64(t.Price),
		Qty:       int64(t.Qty),
		MakerID:   int64(t.MakerID),
		TakerID:   int64(t.TakerID),
		TakerSide: t.TakerSide.String(),
	})
}

// Handler returns the /ws/trades HTTP handler.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleTradeStream)
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(subscriberBuffer)
	defer s.hub.Unsubscribe(sub)

	for event := range sub.ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Debug().Err(err).Msg("trade stream write failed, dropping subscriber")
			return
		}
	}
}
