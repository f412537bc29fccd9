package mining

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// Extraction is the ephemeral result of one extract call
type Extraction struct {
	ShipSymbol string
	Good       string
	Units      int
	Cooldown   time.Duration
	Cargo      *shared.Cargo
}

// YieldReport sums extracted units per good over a mining session
type YieldReport struct {
	yields      map[string]int
	extractions int
}

func NewYieldReport() *YieldReport {
	return &YieldReport{yields: make(map[string]int)}
}

// Add accumulates one extraction
func (r *YieldReport) Add(good string, units int) {
	r.yields[good] += units
	r.extractions++
}

// Units returns the total yielded for one good
func (r *YieldReport) Units(good string) int {
	return r.yields[good]
}

// Total returns the units yielded across all goods
func (r *YieldReport) Total() int {
	total := 0
	for _, units := range r.yields {
		total += units
	}
	return total
}

// Extractions is the number of successful extract calls
func (r *YieldReport) Extractions() int {
	return r.extractions
}

// Yields returns a copy of good -> units
func (r *YieldReport) Yields() map[string]int {
	out := make(map[string]int, len(r.yields))
	for good, units := range r.yields {
		out[good] = units
	}
	return out
}

func (r *YieldReport) String() string {
	goods := make([]string, 0, len(r.yields))
	for good := range r.yields {
		goods = append(goods, good)
	}
	sort.Strings(goods)

	parts := make([]string, 0, len(goods))
	for _, good := range goods {
		parts = append(parts, fmt.Sprintf("%s=%d", good, r.yields[good]))
	}
	return fmt.Sprintf("YieldReport(%s)", strings.Join(parts, ", "))
}
