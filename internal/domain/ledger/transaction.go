package ledger

import (
	"fmt"
	"time"
)

// Transaction is an ephemeral financial record returned by a market or contract call.
// It is never persisted; sessions only keep the running totals.
type Transaction struct {
	WaypointSymbol string
	ShipSymbol     string
	TradeSymbol    string
	Type           TransactionType
	Units          int
	PricePerUnit   int
	TotalPrice     int
	Timestamp      time.Time
}

// Validate checks the invariants of a transaction
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}
	if t.TotalPrice < 0 {
		return fmt.Errorf("transaction total cannot be negative: %d", t.TotalPrice)
	}
	if t.Units < 0 {
		return fmt.Errorf("transaction units cannot be negative: %d", t.Units)
	}
	return nil
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s x%d @%d = %d (%s)", t.Type, t.TradeSymbol, t.Units, t.PricePerUnit, t.TotalPrice, t.ShipSymbol)
}
