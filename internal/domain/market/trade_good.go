package market

import "fmt"

// TradeGood represents a single commodity listed at a market (immutable value object).
// Prices follow the market's perspective:
// - PurchasePrice: what the market PAYS when buying from ships
// - SellPrice: what the market CHARGES when selling to ships
type TradeGood struct {
	symbol        string
	supply        string
	purchasePrice int
	sellPrice     int
	tradeVolume   int
}

var validSupplyValues = map[string]bool{
	"":         true,
	"SCARCE":   true,
	"LIMITED":  true,
	"MODERATE": true,
	"HIGH":     true,
	"ABUNDANT": true,
}

// NewTradeGood creates a new TradeGood with validation
func NewTradeGood(symbol, supply string, purchasePrice, sellPrice, tradeVolume int) (*TradeGood, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol cannot be empty", ErrInvalidTradeGood)
	}
	if purchasePrice < 0 || sellPrice < 0 {
		return nil, fmt.Errorf("%w: prices must be non-negative", ErrInvalidTradeGood)
	}
	if tradeVolume < 0 {
		return nil, fmt.Errorf("%w: trade volume must be non-negative", ErrInvalidTradeGood)
	}
	if !validSupplyValues[supply] {
		return nil, fmt.Errorf("%w: invalid supply value %s", ErrInvalidTradeGood, supply)
	}

	return &TradeGood{
		symbol:        symbol,
		supply:        supply,
		purchasePrice: purchasePrice,
		sellPrice:     sellPrice,
		tradeVolume:   tradeVolume,
	}, nil
}

func (t TradeGood) Symbol() string {
	return t.symbol
}

func (t TradeGood) Supply() string {
	return t.supply
}

func (t TradeGood) PurchasePrice() int {
	return t.purchasePrice
}

func (t TradeGood) SellPrice() int {
	return t.sellPrice
}

func (t TradeGood) TradeVolume() int {
	return t.tradeVolume
}
