// Package dispatcher owns one order book per instrument and routes
// symbol-qualified requests to it. It performs no cross-book logic: an
// order for one symbol can never interact with another symbol's book.
package dispatcher

import (
	"errors"

	"vantage/internal/book"
	"vantage/internal/domain"
)

// ErrUnknownSymbol is returned by Book when a symbol has no book because
// the instrument registry never registered it. A cancel probe that finds no
// match reports false from CancelAnywhere instead.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Registry is the subset of InstrumentRegistry the dispatcher needs at
// construction time: the set of symbols to build books for.
type Registry interface {
	Symbols() []string
}

// Dispatcher owns one *book.OrderBook per registered instrument symbol.
type Dispatcher struct {
	books map[string]*book.OrderBook
	// order lets callers iterate books in a stable sequence (construction
	// order), which keeps cancel-by-id-alone probing and /status
	// aggregation deterministic.
	order []string
}

// New builds one book per symbol the registry reports.
func New(reg Registry) *Dispatcher {
	d := &Dispatcher{books: make(map[string]*book.OrderBook)}
	for _, symbol := range reg.Symbols() {
		d.books[symbol] = book.New(symbol)
		d.order = append(d.order, symbol)
	}
	return d
}

// Book returns the order book for symbol, or ErrUnknownSymbol.
func (d *Dispatcher) Book(symbol string) (*book.OrderBook, error) {
	b, ok := d.books[symbol]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	return b, nil
}

// CancelAnywhere probes every book in construction order for id, cancelling
// the first match. It is the fallback for a cancel request that didn't
// supply a symbol. With a small instrument count this linear probe is
// fine; at higher cardinality a process-wide id->symbol map would be
// needed instead (see SPEC_FULL.md's Open Question notes).
func (d *Dispatcher) CancelAnywhere(id domain.OrderID) bool {
	for _, symbol := range d.order {
		if d.books[symbol].CancelOrder(id) {
			return true
		}
	}
	return false
}

// TotalOrders sums resting order counts across every book, for /status.
func (d *Dispatcher) TotalOrders() int {
	total := 0
	for _, symbol := range d.order {
		total += d.books[symbol].OrderCount()
	}
	return total
}

// Symbols returns the instrument symbols this dispatcher owns books for, in
// construction order.
func (d *Dispatcher) Symbols() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
