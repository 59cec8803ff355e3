// Package handler turns a parsed wire.Request into a dispatcher/book
// operation and serializes the result back to JSON. It is the only place
// that catches panics from deeper layers and renders them as 500s — Go's
// reading of the spec's "any exception ... caught and reported as a 500".
package handler

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vantage/internal/book"
	"vantage/internal/dispatcher"
	"vantage/internal/domain"
	"vantage/internal/instrument"
	"vantage/internal/metrics"
	"vantage/internal/wire"
)

const defaultDepthLevels = 5

// Handler owns the dependencies a request needs to be served: the
// instrument registry (for symbol lookups), the book dispatcher, and an
// optional metrics sink.
type Handler struct {
	Registry   *instrument.Registry
	Dispatcher *dispatcher.Dispatcher
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Response is the outcome of Serve: a status code and a JSON body, framed
// by the caller with wire.WriteResponse.
type Response struct {
	Status int
	Body   []byte
}

// Serve routes req and returns the response to write back. It never
// panics out to the caller — a panic from deeper layers is recovered and
// turned into a 500, matching the spec's "transient internal error"
// taxonomy.
func (h *Handler) Serve(req *wire.Request) (resp Response) {
	traceID := uuid.New().String()
	log := h.Logger.With().Str("trace_id", traceID).Str("method", req.Method).Str("path", req.Path).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered panic while handling request")
			resp = jsonResponse(500, errorBody("internal error"))
		}
	}()

	switch {
	case req.Method == "POST" && req.Path == "/orders":
		resp = h.handleAddOrder(req.Body, log)
	case req.Method == "DELETE" && req.Path == "/orders":
		resp = h.handleCancelOrder(req.Body, log)
	case req.Method == "GET" && req.Path == "/depth":
		resp = h.handleDepth(req, log)
	case req.Method == "GET" && req.Path == "/trades":
		resp = jsonResponse(200, mustMarshal(tradesResponse{Trades: []tradeDTO{}}))
	case req.Method == "GET" && req.Path == "/status":
		resp = jsonResponse(200, mustMarshal(statusResponse{Status: "ok", Orders: h.Dispatcher.TotalOrders()}))
	default:
		resp = jsonResponse(404, errorBody("Not Found"))
	}

	log.Info().Int("status", resp.Status).Msg("request handled")
	return resp
}

// --- POST /orders --------------------------------------------------------

type tradeDTO struct {
	Price   int64 `json:"price"`
	Qty     int64 `json:"qty"`
	MakerID int64 `json:"makerId"`
	TakerID int64 `json:"takerId"`
}

type addOrderResponse struct {
	Status string     `json:"status"`
	Trades []tradeDTO `json:"trades"`
}

func (h *Handler) handleAddOrder(body []byte, log zerolog.Logger) Response {
	symbol := wire.GetString(body, "symbol")
	if _, err := h.Registry.Find(symbol); err != nil {
		return jsonResponse(400, errorBody("Unknown symbol"))
	}

	side := domain.Buy
	if wire.GetInt(body, "side") == -1 {
		side = domain.Sell
	}

	orderType := domain.Market
	if wire.GetInt(body, "type") == 1 {
		orderType = domain.Limit
	}

	id := domain.OrderID(wire.GetInt(body, "id"))
	price := domain.Price(wire.GetInt(body, "price"))
	qty := domain.Quantity(wire.GetInt(body, "qty"))

	b, err := h.Dispatcher.Book(symbol)
	if err != nil {
		return jsonResponse(400, errorBody("Unknown symbol"))
	}

	order := domain.NewOrder(id, symbol, side, orderType, price, qty, 0)
	trades := b.AddOrder(order)
	if h.Metrics != nil {
		h.Metrics.ObserveOrder(symbol, side)
		h.Metrics.ObserveTrades(symbol, len(trades))
		h.Metrics.SetBookDepth(symbol, "bid", b.BidLevelCount())
		h.Metrics.SetBookDepth(symbol, "ask", b.AskLevelCount())
	}

	dtos := make([]tradeDTO, len(trades))
	for i, t := range trades {
		dtos[i] = tradeDTO{
			Price:   int64(t.Price),
			Qty:     int64(t.Qty),
			MakerID: int64(t.MakerID),
			TakerID: int64(t.TakerID),
		}
	}

	log.Debug().Str("symbol", symbol).Int("trades", len(trades)).Msg("order accepted")
	return jsonResponse(200, mustMarshal(addOrderResponse{Status: "accepted", Trades: dtos}))
}

// --- DELETE /orders -------------------------------------------------------

func (h *Handler) handleCancelOrder(body []byte, log zerolog.Logger) Response {
	id := domain.OrderID(wire.GetInt(body, "id"))
	if !h.Dispatcher.CancelAnywhere(id) {
		return jsonResponse(404, errorBody("Order not found"))
	}
	log.Debug().Int64("id", int64(id)).Msg("order cancelled")
	return jsonResponse(200, mustMarshal(statusOnlyResponse{Status: "cancelled"}))
}

// --- GET /depth ------------------------------------------------------------

type depthLevelDTO struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
	Count int   `json:"count"`
}

type depthResponse struct {
	Bids []depthLevelDTO `json:"bids"`
	Asks []depthLevelDTO `json:"asks"`
}

func (h *Handler) handleDepth(req *wire.Request, log zerolog.Logger) Response {
	symbol := req.QueryParam("symbol")
	b, err := h.Dispatcher.Book(symbol)
	if err != nil {
		return jsonResponse(400, errorBody("Unknown symbol"))
	}

	levels := defaultDepthLevels
	if raw := req.QueryParam("levels"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			levels = n
		}
	}

	log.Debug().Str("symbol", symbol).Int("levels", levels).Msg("depth query")
	return jsonResponse(200, mustMarshal(depthResponse{
		Bids: toDepthDTOs(b.BidDepth(levels)),
		Asks: toDepthDTOs(b.AskDepth(levels)),
	}))
}

func toDepthDTOs(levels []book.DepthLevel) []depthLevelDTO {
	out := make([]depthLevelDTO, len(levels))
	for i, l := range levels {
		out[i] = depthLevelDTO{Price: int64(l.Price), Qty: int64(l.Qty), Count: l.OrderCount}
	}
	return out
}

// --- shared response shapes -------------------------------------------------

type statusResponse struct {
	Status string `json:"status"`
	Orders int    `json:"orders"`
}

type statusOnlyResponse struct {
	Status string `json:"status"`
}

type tradesResponse struct {
	Trades []tradeDTO `json:"trades"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) []byte {
	return mustMarshal(errorResponse{Error: msg})
}

func jsonResponse(status int, body []byte) Response {
	return Response{Status: status, Body: body}
}

// mustMarshal is safe here: every type passed to it is a plain DTO with no
// cyclic references or unsupported field types, so json.Marshal can only
// fail on a programming error.
func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
