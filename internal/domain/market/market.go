package market

import (
	"time"
)

// Fuel is the trade symbol of ship fuel
const Fuel = "FUEL"

// Market represents an immutable snapshot of market data at a specific waypoint and time.
// Trade goods (with prices) are only reported while one of our ships is present;
// imports, exports and exchange are always listed.
type Market struct {
	waypointSymbol string
	imports        []string
	exports        []string
	exchange       []string
	tradeGoods     []TradeGood
	lastUpdated    time.Time
}

// NewMarket creates a new Market with validation
func NewMarket(waypointSymbol string, imports, exports, exchange []string, tradeGoods []TradeGood, lastUpdated time.Time) (*Market, error) {
	if waypointSymbol == "" {
		return nil, ErrInvalidWaypointSymbol
	}

	goodsCopy := make([]TradeGood, len(tradeGoods))
	copy(goodsCopy, tradeGoods)

	return &Market{
		waypointSymbol: waypointSymbol,
		imports:        append([]string(nil), imports...),
		exports:        append([]string(nil), exports...),
		exchange:       append([]string(nil), exchange...),
		tradeGoods:     goodsCopy,
		lastUpdated:    lastUpdated,
	}, nil
}

func (m *Market) WaypointSymbol() string {
	return m.waypointSymbol
}

func (m *Market) TradeGoods() []TradeGood {
	goodsCopy := make([]TradeGood, len(m.tradeGoods))
	copy(goodsCopy, m.tradeGoods)
	return goodsCopy
}

func (m *Market) LastUpdated() time.Time {
	return m.lastUpdated
}

// FindGood searches for a specific trade good by symbol
func (m *Market) FindGood(symbol string) *TradeGood {
	for i := range m.tradeGoods {
		if m.tradeGoods[i].Symbol() == symbol {
			good := m.tradeGoods[i]
			return &good
		}
	}
	return nil
}

// Lists reports whether the market deals in the good at all
func (m *Market) Lists(symbol string) bool {
	if m.FindGood(symbol) != nil {
		return true
	}
	for _, list := range [][]string{m.imports, m.exports, m.exchange} {
		for _, s := range list {
			if s == symbol {
				return true
			}
		}
	}
	return false
}

// SellsFuel reports whether a ship docked here can refuel
func (m *Market) SellsFuel() bool {
	return m.Lists(Fuel)
}

// GetTransactionLimit returns the trade volume limit for a good.
// Returns 0 if good not found (signals caller to use single transaction fallback).
func (m *Market) GetTransactionLimit(symbol string) int {
	good := m.FindGood(symbol)
	if good == nil {
		return 0
	}
	return good.TradeVolume()
}
