// Package instrument is the external collaborator the core order book
// depends on: a read-only symbol -> metadata lookup, populated once at
// startup from a JSON config file. The core never mutates it and only
// assumes the contract in registry.go.
package instrument

import "vantage/internal/domain"

// Instrument is the static metadata the core does not currently validate
// against (tick/lot enforcement is deferred — see SPEC_FULL.md) but which
// must remain stable for the process lifetime.
type Instrument struct {
	Symbol      string
	Description string
	TickSize    domain.Price
	LotSize     domain.Quantity
	PriceScale  int64
}
