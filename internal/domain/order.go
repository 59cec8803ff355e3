package domain

// Order is a single buy or sell instruction. Invariants: 0 <= Remaining <=
// OriginalQty; Remaining == 0 iff the order is fully filled; a resting
// order always has Remaining > 0; a Market order never rests.
type Order struct {
	ID          OrderID
	Symbol      string
	Side        Side
	Type        OrderType
	Price       Price // ignored for Market orders
	OriginalQty Quantity
	Remaining   Quantity
	Timestamp   Timestamp
}

// NewOrder builds an order with Remaining initialized from qty, as the
// contract requires on acceptance.
func NewOrder(id OrderID, symbol string, side Side, typ OrderType, price Price, qty Quantity, ts Timestamp) Order {
	return Order{
		ID:          id,
		Symbol:      symbol,
		Side:        side,
		Type:        typ,
		Price:       price,
		OriginalQty: qty,
		Remaining:   qty,
		Timestamp:   ts,
	}
}

// Filled reports whether the order has no remaining quantity.
func (o Order) Filled() bool {
	return o.Remaining == 0
}
