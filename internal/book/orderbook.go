package book

import (
	"errors"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"vantage/internal/domain"
)

// ErrOrderNotFound is the only signaled error the core surfaces — from
// FindOrder on an id that isn't resting anywhere in the book.
var ErrOrderNotFound = errors.New("order not found")

// TradeCallback is the optional per-trade sink. It is invoked synchronously
// inside AddOrder, once per trade in generation order, before AddOrder
// returns. It must never re-enter the book that invoked it.
type TradeCallback func(domain.Trade)

// DepthLevel is one aggregated row of a depth query.
type DepthLevel struct {
	Price      domain.Price
	Qty        domain.Quantity
	OrderCount int
}

type indexEntry struct {
	side  domain.Side
	price domain.Price
}

type ladder = btree.BTreeG[*PriceLevel]

// OrderBook is the two-sided price ladder plus order index for a single
// instrument. It is single-writer: callers serialize access (a mutex here
// is enough at this scale — see spec §5).
type OrderBook struct {
	mu sync.Mutex

	symbol string
	bids   *ladder // sorted descending (best bid first)
	asks   *ladder // sorted ascending (best ask first)
	index  map[domain.OrderID]indexEntry

	tradeCallback TradeCallback
	now           func() domain.Timestamp
}

// New creates an empty order book for symbol.
func New(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price > b.price // descending: highest bid first
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price < b.price // ascending: lowest ask first
	})
	return &OrderBook{
		symbol: symbol,
		bids:   bids,
		asks:   asks,
		index:  make(map[domain.OrderID]indexEntry),
		now:    monotonicNow,
	}
}

func monotonicNow() domain.Timestamp {
	return domain.Timestamp(time.Now().UnixNano())
}

// SetTradeCallback installs the optional trade sink.
func (b *OrderBook) SetTradeCallback(cb TradeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradeCallback = cb
}

// Symbol returns the instrument this book serves.
func (b *OrderBook) Symbol() string { return b.symbol }

// OrderCount is the number of resting orders across both sides.
func (b *OrderBook) OrderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.index)
}

// AddOrder matches order against resting liquidity and, for a limit order
// with quantity left over, rests the remainder. It always succeeds — there
// is no rejection path in the core.
func (b *OrderBook) AddOrder(order domain.Order) []domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var trades []domain.Trade

	if b.canMatch(order) {
		trades = b.match(&order, now)
	}

	if order.Type == domain.Limit && order.Remaining > 0 {
		b.insert(order)
	}
	// Market remainders are silently dropped — they never rest.

	return trades
}

// canMatch reports whether order can immediately cross the opposite side.
func (b *OrderBook) canMatch(order domain.Order) bool {
	if order.Type == domain.Market {
		if order.Side == domain.Buy {
			return b.asks.Len() > 0
		}
		return b.bids.Len() > 0
	}

	if order.Side == domain.Buy {
		best, ok := b.asks.Min()
		return ok && order.Price >= best.price
	}
	best, ok := b.bids.Min()
	return ok && order.Price <= best.price
}

// crosses reports whether order's price crosses the given resting level
// price for a limit order; Market orders always cross.
func crosses(order *domain.Order, levelPrice domain.Price) bool {
	if order.Type == domain.Market {
		return true
	}
	if order.Side == domain.Buy {
		return order.Price >= levelPrice
	}
	return order.Price <= levelPrice
}

func (b *OrderBook) match(order *domain.Order, now domain.Timestamp) []domain.Trade {
	var opposite *ladder
	if order.Side == domain.Buy {
		opposite = b.asks
	} else {
		opposite = b.bids
	}

	var trades []domain.Trade
	for order.Remaining > 0 {
		level, ok := opposite.Min()
		if !ok {
			break
		}
		if !crosses(order, level.price) {
			break
		}

		levelTrades := level.Match(order, now)
		trades = append(trades, levelTrades...)

		for _, t := range levelTrades {
			if b.tradeCallback != nil {
				b.tradeCallback(t)
			}
			if _, stillResting := level.nodes[t.MakerID]; !stillResting {
				delete(b.index, t.MakerID)
			}
		}

		if level.Empty() {
			opposite.Delete(level)
		}
	}

	return trades
}

// insert rests order in the book, replacing any existing resting order
// with the same id (id reuse is treated as replace, not error).
func (b *OrderBook) insert(order domain.Order) {
	if _, exists := b.index[order.ID]; exists {
		b.cancel(order.ID)
	}

	var levels *ladder
	if order.Side == domain.Buy {
		levels = b.bids
	} else {
		levels = b.asks
	}

	level, ok := levels.Get(&PriceLevel{price: order.Price})
	if !ok {
		level = NewPriceLevel(order.Price)
		levels.Set(level)
	}

	o := order
	level.AddOrder(&o)
	b.index[order.ID] = indexEntry{side: order.Side, price: order.Price}
}

// CancelOrder removes a resting order by id. Returns false if id is not
// resting anywhere in the book. Idempotent: a second call for the same id
// returns false.
func (b *OrderBook) CancelOrder(id domain.OrderID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel(id)
}

func (b *OrderBook) cancel(id domain.OrderID) bool {
	entry, ok := b.index[id]
	if !ok {
		return false
	}

	levels := b.asks
	if entry.side == domain.Buy {
		levels = b.bids
	}

	level, ok := levels.Get(&PriceLevel{price: entry.price})
	if !ok {
		delete(b.index, id)
		return false
	}

	level.RemoveOrder(id)
	if level.Empty() {
		levels.Delete(level)
	}
	delete(b.index, id)
	return true
}

// ModifyOrder applies a strict quantity reduction to a resting order.
// Rejects (returns false) if id is absent or newQty >= current remaining —
// there are no upward modifies and no time-priority preservation games.
// newQty == 0 is equivalent to cancel.
func (b *OrderBook) ModifyOrder(id domain.OrderID, newQty domain.Quantity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.index[id]
	if !ok {
		return false
	}

	levels := b.asks
	if entry.side == domain.Buy {
		levels = b.bids
	}
	level, ok := levels.Get(&PriceLevel{price: entry.price})
	if !ok {
		return false
	}

	elem, ok := level.nodes[id]
	if !ok {
		return false
	}
	current := elem.Value.(*domain.Order)
	if newQty >= current.Remaining {
		return false
	}

	reduceBy := current.Remaining - newQty
	level.ReduceOrder(id, reduceBy)

	if _, stillResting := level.nodes[id]; !stillResting {
		delete(b.index, id)
	}
	if level.Empty() {
		levels.Delete(level)
	}
	return true
}

// FindOrder returns a read-only view of a resting order, or ErrOrderNotFound.
func (b *OrderBook) FindOrder(id domain.OrderID) (domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.index[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}

	levels := b.asks
	if entry.side == domain.Buy {
		levels = b.bids
	}
	level, ok := levels.Get(&PriceLevel{price: entry.price})
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	elem, ok := level.nodes[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return *elem.Value.(*domain.Order), nil
}

// BestBid returns the highest resting bid price, if any.
func (b *OrderBook) BestBid() (domain.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	level, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *OrderBook) BestAsk() (domain.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	level, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// Spread returns bestAsk-bestBid, if both sides have resting liquidity.
func (b *OrderBook) Spread() (domain.Price, bool) {
	b.mu.Lock()
	bid, bidOK := b.bids.Min()
	ask, askOK := b.asks.Min()
	b.mu.Unlock()
	if !bidOK || !askOK {
		return 0, false
	}
	return ask.price - bid.price, true
}

// BidDepth returns up to n top bid levels, best first (descending price).
func (b *OrderBook) BidDepth(n int) []DepthLevel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return depth(b.bids, n)
}

// AskDepth returns up to n top ask levels, best first (ascending price).
func (b *OrderBook) AskDepth(n int) []DepthLevel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return depth(b.asks, n)
}

// BidLevelCount is the number of distinct resting bid price levels.
func (b *OrderBook) BidLevelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bids.Len()
}

// AskLevelCount is the number of distinct resting ask price levels.
func (b *OrderBook) AskLevelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.asks.Len()
}

func depth(levels *ladder, n int) []DepthLevel {
	if n <= 0 {
		return nil
	}
	out := make([]DepthLevel, 0, n)
	levels.Scan(func(level *PriceLevel) bool {
		out = append(out, DepthLevel{
			Price:      level.price,
			Qty:        level.totalQty,
			OrderCount: level.OrderCount(),
		})
		return len(out) < n
	})
	return out
}
