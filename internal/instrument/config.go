package instrument

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"vantage/internal/domain"
)

// rawInstrument mirrors the on-disk shape exactly. Numeric fields decode as
// json.Number rather than float64 so tick_size/lot_size/price_scale can be
// scaled with exact decimal arithmetic instead of round-tripping through a
// float — this is the fix for the tick-size scaling quirk documented in
// SPEC_FULL.md.
type rawInstrument struct {
	Symbol      string      `json:"symbol"`
	Description string      `json:"description"`
	TickSize    json.Number `json:"tick_size"`
	LotSize     json.Number `json:"lot_size"`
	PriceScale  json.Number `json:"price_scale"`
}

// Load reads the instrument config file (a JSON array of flat objects) and
// builds a Registry. Called once at startup; a parse failure is a fatal
// startup error (exit code 1 — see cmd/server).
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instrument config: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []rawInstrument
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing instrument config: %w", err)
	}

	reg := &Registry{bysymbol: make(map[string]Instrument, len(raw))}
	for _, r := range raw {
		inst, err := scale(r)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: %w", r.Symbol, err)
		}
		reg.bysymbol[inst.Symbol] = inst
		reg.symbols = append(reg.symbols, inst.Symbol)
	}
	return reg, nil
}

func scale(r rawInstrument) (Instrument, error) {
	priceScale, err := r.PriceScale.Int64()
	if err != nil {
		return Instrument{}, fmt.Errorf("price_scale: %w", err)
	}

	tickSize, err := scaledPrice(r.TickSize, priceScale)
	if err != nil {
		return Instrument{}, fmt.Errorf("tick_size: %w", err)
	}
	lotSize, err := scaledQuantity(r.LotSize)
	if err != nil {
		return Instrument{}, fmt.Errorf("lot_size: %w", err)
	}

	return Instrument{
		Symbol:      r.Symbol,
		Description: r.Description,
		TickSize:    tickSize,
		LotSize:     lotSize,
		PriceScale:  priceScale,
	}, nil
}

// scaledPrice is the "getFixedPoint" equivalent from SPEC_FULL.md: the only
// correct way to read a scaled decimal value, using exact decimal
// arithmetic rather than a float64 multiply.
func scaledPrice(n json.Number, multiplier int64) (domain.Price, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, err
	}
	return domain.Price(d.Mul(decimal.NewFromInt(multiplier)).IntPart()), nil
}

func scaledQuantity(n json.Number) (domain.Quantity, error) {
	if n == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, err
	}
	return domain.Quantity(d.IntPart()), nil
}
