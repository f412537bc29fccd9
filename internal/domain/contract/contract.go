package contract

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyAccepted  = errors.New("contract already accepted")
	ErrAlreadyFulfilled = errors.New("contract already fulfilled")
	ErrNotAccepted      = errors.New("contract not accepted")
	ErrNoDeliveries     = errors.New("contract has no delivery terms")
)

type Payment struct {
	OnAccepted  int
	OnFulfilled int
}

type Delivery struct {
	TradeSymbol       string
	DestinationSymbol string
	UnitsRequired     int
	UnitsFulfilled    int
}

// Remaining returns the units still to deliver (never negative)
func (d Delivery) Remaining() int {
	if d.UnitsFulfilled >= d.UnitsRequired {
		return 0
	}
	return d.UnitsRequired - d.UnitsFulfilled
}

type Terms struct {
	Payment    Payment
	Deliveries []Delivery
	Deadline   time.Time
}

// Contract is the agent's view of a faction contract.
// accepted and fulfilled mirror the server and only change through the API.
type Contract struct {
	contractID    string
	factionSymbol string
	contractType  string
	terms         Terms
	accepted      bool
	fulfilled     bool
}

// NewContract builds a contract snapshot
func NewContract(contractID, factionSymbol, contractType string, terms Terms, accepted, fulfilled bool) (*Contract, error) {
	if contractID == "" {
		return nil, fmt.Errorf("contract ID cannot be empty")
	}
	if len(terms.Deliveries) == 0 {
		return nil, ErrNoDeliveries
	}

	return &Contract{
		contractID:    contractID,
		factionSymbol: factionSymbol,
		contractType:  contractType,
		terms:         terms,
		accepted:      accepted,
		fulfilled:     fulfilled,
	}, nil
}

func (c *Contract) ContractID() string    { return c.contractID }
func (c *Contract) FactionSymbol() string { return c.factionSymbol }
func (c *Contract) Type() string          { return c.contractType }
func (c *Contract) Terms() Terms          { return c.terms }
func (c *Contract) Accepted() bool        { return c.accepted }
func (c *Contract) Fulfilled() bool       { return c.fulfilled }

// PrimaryDelivery is the first delivery term, the one automation works on
func (c *Contract) PrimaryDelivery() Delivery {
	return c.terms.Deliveries[0]
}

// CheckAcceptable returns an error when accepting would be rejected by the server
func (c *Contract) CheckAcceptable() error {
	if c.fulfilled {
		return ErrAlreadyFulfilled
	}
	if c.accepted {
		return ErrAlreadyAccepted
	}
	return nil
}

// DeliveryComplete reports the primary delivery goal being met
func (c *Contract) DeliveryComplete() bool {
	return c.PrimaryDelivery().Remaining() == 0
}

// CanFulfill checks if all deliveries are complete
func (c *Contract) CanFulfill() bool {
	if !c.accepted || c.fulfilled {
		return false
	}
	for _, delivery := range c.terms.Deliveries {
		if delivery.Remaining() > 0 {
			return false
		}
	}
	return true
}

// FindDelivery returns the delivery term for a trade good
func (c *Contract) FindDelivery(tradeSymbol string) (Delivery, bool) {
	for _, delivery := range c.terms.Deliveries {
		if delivery.TradeSymbol == tradeSymbol {
			return delivery, true
		}
	}
	return Delivery{}, false
}

// IsExpired checks if contract is past deadline
func (c *Contract) IsExpired(now time.Time) bool {
	if c.terms.Deadline.IsZero() {
		return false
	}
	return now.After(c.terms.Deadline)
}

func (c *Contract) String() string {
	d := c.PrimaryDelivery()
	return fmt.Sprintf("Contract(%s %s %d/%d to %s)", c.contractID, d.TradeSymbol, d.UnitsFulfilled, d.UnitsRequired, d.DestinationSymbol)
}
