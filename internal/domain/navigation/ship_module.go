package navigation

import (
	"fmt"
	"strings"
)

const jumpDrivePrefix = "MODULE_JUMP_DRIVE"

// ShipModule is one installed module. Routines only branch on jump drives;
// the rest is carried for display.
type ShipModule struct {
	symbol    string
	capacity  int
	jumpRange int
}

func NewShipModule(symbol string, capacity, jumpRange int) *ShipModule {
	return &ShipModule{symbol: symbol, capacity: capacity, jumpRange: jumpRange}
}

func (m *ShipModule) Symbol() string { return m.symbol }

func (m *ShipModule) Capacity() int { return m.capacity }

// JumpRange is zero for anything but drives
func (m *ShipModule) JumpRange() int { return m.jumpRange }

func (m *ShipModule) IsJumpDrive() bool {
	return strings.HasPrefix(m.symbol, jumpDrivePrefix)
}

func (m *ShipModule) String() string {
	if m.IsJumpDrive() {
		return fmt.Sprintf("%s(range=%d)", m.symbol, m.jumpRange)
	}
	return m.symbol
}
