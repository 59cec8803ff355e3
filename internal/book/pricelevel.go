// Package book implements the per-instrument order book: the FIFO price
// level, the two-sided price ladder, and the order index that backs O(1)
// cancel/modify.
package book

import (
	"container/list"

	"vantage/internal/domain"
)

// PriceLevel is the FIFO queue of resting orders at a single price on one
// side of one book. totalQty is always kept equal to the sum of remaining
// quantity across its orders; order of elements is arrival order (time
// priority). A level with no orders must not be referenced by the parent
// ladder — OrderBook is responsible for dropping it.
//
// orders is a container/list, not a slice: matching and cancellation both
// need O(1) pop-front and O(1) erase given a direct node handle, without
// invalidating the identity of surviving neighbors — exactly what the spec
// calls for from a "doubly-linked node sequence". nodes indexes order id to
// its list.Element so RemoveOrder/ReduceOrder don't need a scan.
type PriceLevel struct {
	price    domain.Price
	totalQty domain.Quantity
	orders   *list.List
	nodes    map[domain.OrderID]*list.Element
}

// NewPriceLevel creates an empty level at price.
func NewPriceLevel(price domain.Price) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: list.New(),
		nodes:  make(map[domain.OrderID]*list.Element),
	}
}

func (l *PriceLevel) Price() domain.Price       { return l.price }
func (l *PriceLevel) TotalQty() domain.Quantity { return l.totalQty }
func (l *PriceLevel) OrderCount() int           { return l.orders.Len() }
func (l *PriceLevel) Empty() bool               { return l.orders.Len() == 0 }

// Orders returns the resting orders in FIFO (arrival) order. Callers must
// not mutate the returned orders directly.
func (l *PriceLevel) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, l.orders.Len())
	for e := l.orders.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*domain.Order))
	}
	return out
}

// AddOrder appends o to the tail of the queue. Precondition: o.Remaining > 0.
func (l *PriceLevel) AddOrder(o *domain.Order) {
	elem := l.orders.PushBack(o)
	l.nodes[o.ID] = elem
	l.totalQty += o.Remaining
}

// RemoveOrder erases id from the level if present, returning whether it was
// found.
func (l *PriceLevel) RemoveOrder(id domain.OrderID) bool {
	elem, ok := l.nodes[id]
	if !ok {
		return false
	}
	order := elem.Value.(*domain.Order)
	l.totalQty -= order.Remaining
	l.orders.Remove(elem)
	delete(l.nodes, id)
	return true
}

// ReduceOrder reduces id's remaining quantity by reduceBy. If reduceBy
// would consume the order entirely, it behaves like RemoveOrder. Returns
// whether id was found.
func (l *PriceLevel) ReduceOrder(id domain.OrderID, reduceBy domain.Quantity) bool {
	elem, ok := l.nodes[id]
	if !ok {
		return false
	}
	order := elem.Value.(*domain.Order)
	if reduceBy >= order.Remaining {
		return l.RemoveOrder(id)
	}
	order.Remaining -= reduceBy
	l.totalQty -= reduceBy
	return true
}

// Match fills aggressor against the head of the FIFO queue, front to back,
// until either the aggressor is filled or the level is drained. It is the
// caller's responsibility to drop the level from the parent ladder once
// Empty() reports true.
func (l *PriceLevel) Match(aggressor *domain.Order, execTime domain.Timestamp) []domain.Trade {
	var trades []domain.Trade

	for aggressor.Remaining > 0 {
		front := l.orders.Front()
		if front == nil {
			break
		}
		head := front.Value.(*domain.Order)

		fill := aggressor.Remaining
		if head.Remaining < fill {
			fill = head.Remaining
		}

		trades = append(trades, domain.Trade{
			TakerID:   aggressor.ID,
			MakerID:   head.ID,
			TakerSide: aggressor.Side,
			Price:     l.price,
			Qty:       fill,
			Timestamp: execTime,
		})

		aggressor.Remaining -= fill
		head.Remaining -= fill
		l.totalQty -= fill

		if head.Remaining == 0 {
			l.orders.Remove(front)
			delete(l.nodes, head.ID)
		}
	}

	return trades
}
