package shared

import (
	"fmt"
	"sort"
)

// CargoItem is one inventory entry of a ship's hold
type CargoItem struct {
	Symbol string
	Name   string
	Units  int
}

// Cargo represents ship cargo manifest with detailed inventory
type Cargo struct {
	Capacity  int
	Units     int
	Inventory []*CargoItem
}

// NewCargo creates a new cargo manifest with validation
func NewCargo(capacity, units int, inventory []*CargoItem) (*Cargo, error) {
	if units < 0 {
		return nil, fmt.Errorf("cargo units cannot be negative")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("cargo capacity cannot be negative")
	}
	if units > capacity {
		return nil, fmt.Errorf("cargo units %d exceed capacity %d", units, capacity)
	}

	inventorySum := 0
	for _, item := range inventory {
		if item.Units < 0 {
			return nil, fmt.Errorf("cargo item %s has negative units", item.Symbol)
		}
		inventorySum += item.Units
	}
	if inventorySum != units {
		return nil, fmt.Errorf("inventory sum %d != total units %d", inventorySum, units)
	}

	return &Cargo{
		Capacity:  capacity,
		Units:     units,
		Inventory: inventory,
	}, nil
}

// EmptyCargo returns an empty hold of the given capacity
func EmptyCargo(capacity int) *Cargo {
	return &Cargo{Capacity: capacity}
}

// HasItem checks if cargo contains at least minUnits of specific item
func (c *Cargo) HasItem(symbol string, minUnits int) bool {
	return c.GetItemUnits(symbol) >= minUnits
}

// GetItemUnits sums units of a trade good across inventory entries (0 if not present)
func (c *Cargo) GetItemUnits(symbol string) int {
	total := 0
	for _, item := range c.Inventory {
		if item.Symbol == symbol {
			total += item.Units
		}
	}
	return total
}

// Holdings aggregates inventory by good symbol
func (c *Cargo) Holdings() map[string]int {
	holdings := make(map[string]int, len(c.Inventory))
	for _, item := range c.Inventory {
		if item.Units > 0 {
			holdings[item.Symbol] += item.Units
		}
	}
	return holdings
}

// Goods returns the distinct held good symbols in a stable order
func (c *Cargo) Goods() []string {
	holdings := c.Holdings()
	goods := make([]string, 0, len(holdings))
	for symbol := range holdings {
		goods = append(goods, symbol)
	}
	sort.Strings(goods)
	return goods
}

// AvailableCapacity calculates available cargo space
func (c *Cargo) AvailableCapacity() int {
	return c.Capacity - c.Units
}

func (c *Cargo) IsEmpty() bool {
	return c.Units == 0
}

func (c *Cargo) IsFull() bool {
	return c.Units >= c.Capacity
}

func (c *Cargo) String() string {
	return fmt.Sprintf("Cargo(%d/%d)", c.Units, c.Capacity)
}
