package helpers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/market"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	domainPorts "github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// Game error codes the fake raises besides the ones the domain names
const (
	codeNotFound           = 404
	codeShipNotInOrbit     = 4236
	codeShipNotDocked      = 4244
	codeCargoFull          = 4228
	codeInsufficientCargo  = 4219
	codeTradeLimitExceeded = 4604
	codeDeliveryInvalid    = 4509
	codeContractIncomplete = 4505
)

// FakeShipSpec describes a ship to seed into the fake
type FakeShipSpec struct {
	Symbol        string
	Role          string
	Frame         string
	Waypoint      string
	Status        navigation.NavStatus
	CargoCapacity int
	Cargo         map[string]int
	Fuel          int
	FuelCapacity  int
	JumpDrive     bool
}

// FakeMarketGood is one trade good listed by a fake market
type FakeMarketGood struct {
	Symbol        string
	SellPrice     int
	PurchasePrice int
	TradeVolume   int
}

type fakeShip struct {
	spec          FakeShipSpec
	system        string
	waypoint      string
	status        navigation.NavStatus
	flightMode    shared.FlightMode
	arrival       time.Time
	inventory     map[string]int
	fuel          int
	cooldownUntil time.Time
}

type fakeSurvey struct {
	survey *mining.Survey
	uses   int
}

type fakeContract struct {
	id        string
	faction   string
	terms     contract.Terms
	accepted  bool
	fulfilled bool
}

// FakeGameServer is an in-memory ports.APIClient.
//
// Time comes from a MockClock: ships in transit arrive once the clock passes
// their arrival, extraction and survey cooldowns expire the same way. Every
// call is recorded by method name so tests can count them.
type FakeGameServer struct {
	mu sync.Mutex

	clock *shared.MockClock

	agentSymbol string
	credits     int

	ships     map[string]*fakeShip
	waypoints map[string]*shared.Waypoint
	markets   map[string]map[string]FakeMarketGood
	yields    map[string][]string
	yieldIdx  map[string]int
	surveys   map[string]*fakeSurvey
	contracts map[string]*fakeContract
	gates     map[string][]string

	// Tunables
	TravelTime      time.Duration
	FuelPerTrip     int
	YieldUnits      int
	ExtractCooldown time.Duration
	SurveyCooldown  time.Duration
	JumpCooldown    time.Duration
	SurveyTTL       time.Duration
	SurveyUses      int
	SurveysPerCall  int
	FuelPrice       int

	calls    []string
	failures map[string][]error
}

// NewFakeGameServer creates an empty universe at the clock's current time
func NewFakeGameServer(clock *shared.MockClock) *FakeGameServer {
	return &FakeGameServer{
		clock:           clock,
		agentSymbol:     "TEST-AGENT",
		credits:         100000,
		ships:           make(map[string]*fakeShip),
		waypoints:       make(map[string]*shared.Waypoint),
		markets:         make(map[string]map[string]FakeMarketGood),
		yields:          make(map[string][]string),
		yieldIdx:        make(map[string]int),
		surveys:         make(map[string]*fakeSurvey),
		contracts:       make(map[string]*fakeContract),
		gates:           make(map[string][]string),
		TravelTime:      30 * time.Second,
		FuelPerTrip:     10,
		YieldUnits:      5,
		ExtractCooldown: 70 * time.Second,
		SurveyCooldown:  60 * time.Second,
		JumpCooldown:    60 * time.Second,
		SurveyTTL:       time.Hour,
		SurveyUses:      3,
		SurveysPerCall:  2,
		FuelPrice:       2,
		failures:        make(map[string][]error),
	}
}

// Clock returns the fake's clock
func (f *FakeGameServer) Clock() *shared.MockClock {
	return f.clock
}

// AddWaypoint registers a waypoint with optional traits
func (f *FakeGameServer) AddWaypoint(symbol, waypointType string, x, y int, traits ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wp, _ := shared.NewWaypoint(symbol, waypointType, x, y)
	wp.Traits = traits
	f.waypoints[symbol] = wp
}

// AddMarket lists goods at a waypoint, which gains the MARKETPLACE trait
func (f *FakeGameServer) AddMarket(waypoint string, goods ...FakeMarketGood) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing := make(map[string]FakeMarketGood, len(goods))
	for _, g := range goods {
		listing[g.Symbol] = g
	}
	f.markets[waypoint] = listing
	if wp, ok := f.waypoints[waypoint]; ok && !wp.HasMarketplace() {
		wp.Traits = append(wp.Traits, shared.TraitMarketplace)
	}
}

// SetYields sets the goods extracted at a waypoint, handed out in rotation
func (f *FakeGameServer) SetYields(waypoint string, goods ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.yields[waypoint] = goods
}

// AddJumpGate connects a gate waypoint to the given gate waypoints
func (f *FakeGameServer) AddJumpGate(gate string, connections ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[gate] = connections
}

// AddShip seeds a ship. Zero status means IN_ORBIT.
func (f *FakeGameServer) AddShip(spec FakeShipSpec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if spec.Status == "" {
		spec.Status = navigation.NavStatusInOrbit
	}
	if spec.Role == "" {
		spec.Role = "EXCAVATOR"
	}
	if spec.Frame == "" {
		spec.Frame = "FRAME_MINER"
	}
	inventory := make(map[string]int, len(spec.Cargo))
	for good, units := range spec.Cargo {
		inventory[good] = units
	}
	f.ships[spec.Symbol] = &fakeShip{
		spec:       spec,
		system:     shared.ExtractSystemSymbol(spec.Waypoint),
		waypoint:   spec.Waypoint,
		status:     spec.Status,
		flightMode: shared.FlightModeCruise,
		inventory:  inventory,
		fuel:       spec.Fuel,
	}
}

// AddContract seeds a single-delivery contract
func (f *FakeGameServer) AddContract(id, good, destination string, required, fulfilled int, accepted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contracts[id] = &fakeContract{
		id:      id,
		faction: "COSMIC",
		terms: contract.Terms{
			Payment:    contract.Payment{OnAccepted: 1000, OnFulfilled: 10000},
			Deliveries: []contract.Delivery{{TradeSymbol: good, DestinationSymbol: destination, UnitsRequired: required, UnitsFulfilled: fulfilled}},
			Deadline:   f.clock.Now().Add(7 * 24 * time.Hour),
		},
		accepted: accepted,
	}
}

// AddSurvey stores a survey the fake will honour on extraction
func (f *FakeGameServer) AddSurvey(survey *mining.Survey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.surveys[survey.Signature()] = &fakeSurvey{survey: survey, uses: f.SurveyUses}
}

// SetCooldown puts a ship on cooldown for d from now
func (f *FakeGameServer) SetCooldown(shipSymbol string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.ships[shipSymbol]; ok {
		s.cooldownUntil = f.clock.Now().Add(d)
	}
}

// FailNext queues err as the result of the next call to method
func (f *FakeGameServer) FailNext(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], err)
}

// Calls counts recorded calls to method
func (f *FakeGameServer) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// CallLog returns every recorded method name in call order
func (f *FakeGameServer) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// ResetCalls clears the call log
func (f *FakeGameServer) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Credits returns the agent's balance
func (f *FakeGameServer) Credits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credits
}

// ShipCargo returns the held units per good without recording a call
func (f *FakeGameServer) ShipCargo(shipSymbol string) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	if s, ok := f.ships[shipSymbol]; ok {
		for g, u := range s.inventory {
			out[g] = u
		}
	}
	return out
}

// ShipLocation returns the ship's waypoint and status without recording a call
func (f *FakeGameServer) ShipLocation(shipSymbol string) (string, navigation.NavStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.ships[shipSymbol]
	if !ok {
		return "", ""
	}
	f.settle(s)
	return s.waypoint, s.status
}

// ContractProgress returns the fulfilled units of the contract's first delivery
func (f *FakeGameServer) ContractProgress(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.contracts[id]; ok {
		return c.terms.Deliveries[0].UnitsFulfilled
	}
	return 0
}

// begin records the call and pops an injected failure. Callers hold f.mu.
func (f *FakeGameServer) begin(ctx context.Context, method string) error {
	f.calls = append(f.calls, method)
	if err := ctx.Err(); err != nil {
		return err
	}
	if queue := f.failures[method]; len(queue) > 0 {
		f.failures[method] = queue[1:]
		return queue[0]
	}
	return nil
}

func gameError(status, code int, message string, data map[string]interface{}) *shared.APIError {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &shared.APIError{StatusCode: status, Code: code, Message: message, Data: data}
}

// settle lands a ship whose arrival time has passed
func (f *FakeGameServer) settle(s *fakeShip) {
	if s.status == navigation.NavStatusInTransit && !f.clock.Now().Before(s.arrival) {
		s.status = navigation.NavStatusInOrbit
	}
}

func (f *FakeGameServer) ship(symbol string) (*fakeShip, error) {
	s, ok := f.ships[symbol]
	if !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("ship %s not found", symbol), nil)
	}
	f.settle(s)
	return s, nil
}

func (f *FakeGameServer) unitsHeld(s *fakeShip) int {
	total := 0
	for _, u := range s.inventory {
		total += u
	}
	return total
}

func (f *FakeGameServer) navOf(s *fakeShip) *navigation.Nav {
	nav, _ := navigation.NewNav(s.system, s.waypoint, s.status, s.flightMode)
	if s.status == navigation.NavStatusInTransit {
		nav.Destination = s.waypoint
		nav.Arrival = shared.ArrivalAt(s.arrival)
	}
	return nav
}

func (f *FakeGameServer) cargoOf(s *fakeShip) *shared.Cargo {
	goods := make([]string, 0, len(s.inventory))
	for g, u := range s.inventory {
		if u > 0 {
			goods = append(goods, g)
		}
	}
	sort.Strings(goods)
	items := make([]*shared.CargoItem, 0, len(goods))
	for _, g := range goods {
		items = append(items, &shared.CargoItem{Symbol: g, Name: g, Units: s.inventory[g]})
	}
	cargo, _ := shared.NewCargo(s.spec.CargoCapacity, f.unitsHeld(s), items)
	return cargo
}

func (f *FakeGameServer) fuelOf(s *fakeShip) *shared.Fuel {
	fuel, _ := shared.NewFuel(s.fuel, s.spec.FuelCapacity)
	return fuel
}

func (f *FakeGameServer) shipOf(s *fakeShip) *navigation.Ship {
	var modules []*navigation.ShipModule
	if s.spec.JumpDrive {
		modules = append(modules, navigation.NewShipModule("MODULE_JUMP_DRIVE_I", 0, 500))
	}
	ship, _ := navigation.NewShip(s.spec.Symbol, s.spec.Role, s.spec.Frame, f.navOf(s), f.cargoOf(s), f.fuelOf(s), modules, nil)
	return ship
}

func (f *FakeGameServer) cooldownError(s *fakeShip) error {
	remaining := s.cooldownUntil.Sub(f.clock.Now())
	if remaining <= 0 {
		return nil
	}
	return gameError(409, shared.ErrorCodeCooldown, "ship action is still on cooldown", map[string]interface{}{
		"cooldown": map[string]interface{}{
			"shipSymbol":       s.spec.Symbol,
			"remainingSeconds": remaining.Seconds(),
		},
	})
}

func (f *FakeGameServer) transitError(s *fakeShip) error {
	if s.status != navigation.NavStatusInTransit {
		return nil
	}
	return gameError(400, shared.ErrorCodeShipInTransit, "ship is currently in transit", map[string]interface{}{
		"secondsToArrival": s.arrival.Sub(f.clock.Now()).Seconds(),
	})
}

// Ship operations

func (f *FakeGameServer) GetShip(ctx context.Context, symbol string) (*navigation.Ship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetShip"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	return f.shipOf(s), nil
}

func (f *FakeGameServer) ListShips(ctx context.Context) ([]*navigation.Ship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "ListShips"); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(f.ships))
	for symbol := range f.ships {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	ships := make([]*navigation.Ship, 0, len(symbols))
	for _, symbol := range symbols {
		s := f.ships[symbol]
		f.settle(s)
		ships = append(ships, f.shipOf(s))
	}
	return ships, nil
}

func (f *FakeGameServer) GetShipNav(ctx context.Context, symbol string) (*navigation.Nav, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetShipNav"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	return f.navOf(s), nil
}

func (f *FakeGameServer) GetShipCargo(ctx context.Context, symbol string) (*shared.Cargo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetShipCargo"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	return f.cargoOf(s), nil
}

func (f *FakeGameServer) OrbitShip(ctx context.Context, symbol string) (*navigation.Nav, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "OrbitShip"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	s.status = navigation.NavStatusInOrbit
	return f.navOf(s), nil
}

func (f *FakeGameServer) DockShip(ctx context.Context, symbol string) (*navigation.Nav, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "DockShip"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	s.status = navigation.NavStatusDocked
	return f.navOf(s), nil
}

func (f *FakeGameServer) NavigateShip(ctx context.Context, symbol, destination string) (*domainPorts.NavigateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "NavigateShip"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	if s.waypoint == destination {
		return nil, gameError(400, shared.ErrorCodeNavigateSameWaypoint, "ship is already at the destination", nil)
	}
	if s.status == navigation.NavStatusDocked {
		return nil, gameError(400, codeShipNotInOrbit, "ship must be in orbit to navigate", nil)
	}
	if _, ok := f.waypoints[destination]; !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("waypoint %s not found", destination), nil)
	}

	s.waypoint = destination
	s.status = navigation.NavStatusInTransit
	s.arrival = f.clock.Now().Add(f.TravelTime)
	if s.spec.FuelCapacity > 0 {
		s.fuel -= f.FuelPerTrip
		if s.fuel < 0 {
			s.fuel = 0
		}
	}
	return &domainPorts.NavigateResult{Nav: f.navOf(s), Fuel: f.fuelOf(s)}, nil
}

func (f *FakeGameServer) SetFlightMode(ctx context.Context, symbol string, mode shared.FlightMode) (*navigation.Nav, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "SetFlightMode"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	s.flightMode = mode
	return f.navOf(s), nil
}

func (f *FakeGameServer) RefuelShip(ctx context.Context, symbol string) (*domainPorts.RefuelResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "RefuelShip"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if s.status != navigation.NavStatusDocked {
		return nil, gameError(400, codeShipNotDocked, "ship must be docked to refuel", nil)
	}
	if _, ok := f.markets[s.waypoint]["FUEL"]; !ok {
		return nil, gameError(400, shared.ErrorCodeMarketTradeNotSold, "market does not sell fuel", nil)
	}

	units := s.spec.FuelCapacity - s.fuel
	s.fuel = s.spec.FuelCapacity
	total := units * f.FuelPrice
	f.credits -= total

	return &domainPorts.RefuelResult{
		Fuel: f.fuelOf(s),
		Transaction: ledger.Transaction{
			WaypointSymbol: s.waypoint,
			ShipSymbol:     s.spec.Symbol,
			TradeSymbol:    "FUEL",
			Type:           ledger.TransactionTypeRefuel,
			Units:          units,
			PricePerUnit:   f.FuelPrice,
			TotalPrice:     total,
			Timestamp:      f.clock.Now(),
		},
		Credits: f.credits,
	}, nil
}

func (f *FakeGameServer) JumpShip(ctx context.Context, symbol, waypointSymbol string) (*domainPorts.JumpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "JumpShip"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	if err := f.cooldownError(s); err != nil {
		return nil, err
	}
	if !s.spec.JumpDrive {
		return nil, gameError(400, 4254, "ship has no jump drive", nil)
	}
	connected := false
	for _, conn := range f.gates[s.waypoint] {
		if conn == waypointSymbol {
			connected = true
		}
	}
	if !connected {
		return nil, gameError(400, 4255, fmt.Sprintf("%s is not connected to %s", waypointSymbol, s.waypoint), nil)
	}

	s.waypoint = waypointSymbol
	s.system = shared.ExtractSystemSymbol(waypointSymbol)
	s.status = navigation.NavStatusInOrbit
	s.cooldownUntil = f.clock.Now().Add(f.JumpCooldown)
	return &domainPorts.JumpResult{Nav: f.navOf(s), Cooldown: f.JumpCooldown}, nil
}

// Resource operations

func (f *FakeGameServer) ExtractResources(ctx context.Context, symbol string, survey *mining.Survey) (*mining.Extraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "ExtractResources"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	if s.status != navigation.NavStatusInOrbit {
		return nil, gameError(400, codeShipNotInOrbit, "ship must be in orbit to extract", nil)
	}
	if err := f.cooldownError(s); err != nil {
		return nil, err
	}
	free := s.spec.CargoCapacity - f.unitsHeld(s)
	if free <= 0 {
		return nil, gameError(400, codeCargoFull, "cargo is full", nil)
	}

	var pool []string
	if survey != nil {
		stored, ok := f.surveys[survey.Signature()]
		switch {
		case !ok || stored.uses <= 0:
			return nil, gameError(409, shared.ErrorCodeSurveyExhausted, "survey has been exhausted", map[string]interface{}{"signature": survey.Signature()})
		case stored.survey.IsExpired(f.clock.Now()):
			return nil, gameError(400, shared.ErrorCodeSurveyExpired, "survey has expired", map[string]interface{}{"signature": survey.Signature()})
		}
		stored.uses--
		pool = stored.survey.Deposits()
	} else {
		pool = f.yields[s.waypoint]
	}
	if len(pool) == 0 {
		return nil, gameError(400, 4205, fmt.Sprintf("nothing to extract at %s", s.waypoint), nil)
	}

	good := pool[f.yieldIdx[s.waypoint]%len(pool)]
	f.yieldIdx[s.waypoint]++
	units := f.YieldUnits
	if units > free {
		units = free
	}
	s.inventory[good] += units
	s.cooldownUntil = f.clock.Now().Add(f.ExtractCooldown)

	return &mining.Extraction{
		ShipSymbol: s.spec.Symbol,
		Good:       good,
		Units:      units,
		Cooldown:   f.ExtractCooldown,
		Cargo:      f.cargoOf(s),
	}, nil
}

func (f *FakeGameServer) CreateSurvey(ctx context.Context, symbol string) (*domainPorts.SurveyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "CreateSurvey"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	if s.status != navigation.NavStatusInOrbit {
		return nil, gameError(400, codeShipNotInOrbit, "ship must be in orbit to survey", nil)
	}
	if err := f.cooldownError(s); err != nil {
		return nil, err
	}

	deposits := f.yields[s.waypoint]
	if len(deposits) == 0 {
		deposits = []string{"ICE_WATER"}
	}
	surveys := make([]*mining.Survey, 0, f.SurveysPerCall)
	for i := 0; i < f.SurveysPerCall; i++ {
		signature := fmt.Sprintf("%s-%d", s.waypoint, len(f.surveys)+1)
		survey, err := mining.NewSurvey(signature, s.waypoint, deposits, f.clock.Now().Add(f.SurveyTTL), mining.SurveySizeModerate)
		if err != nil {
			return nil, err
		}
		f.surveys[signature] = &fakeSurvey{survey: survey, uses: f.SurveyUses}
		surveys = append(surveys, survey)
	}
	s.cooldownUntil = f.clock.Now().Add(f.SurveyCooldown)
	return &domainPorts.SurveyResult{Surveys: surveys, Cooldown: f.SurveyCooldown}, nil
}

func (f *FakeGameServer) SellCargo(ctx context.Context, symbol, tradeSymbol string, units int) (*domainPorts.SellResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "SellCargo"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if s.status != navigation.NavStatusDocked {
		return nil, gameError(400, codeShipNotDocked, "ship must be docked to sell", nil)
	}
	good, ok := f.markets[s.waypoint][tradeSymbol]
	if !ok {
		return nil, gameError(400, shared.ErrorCodeMarketTradeNotSold, fmt.Sprintf("market at %s does not trade %s", s.waypoint, tradeSymbol), nil)
	}
	if good.TradeVolume > 0 && units > good.TradeVolume {
		return nil, gameError(400, codeTradeLimitExceeded, "trade volume exceeded", map[string]interface{}{"tradeVolume": good.TradeVolume})
	}
	if s.inventory[tradeSymbol] < units {
		return nil, gameError(400, codeInsufficientCargo, "not enough cargo", nil)
	}

	s.inventory[tradeSymbol] -= units
	if s.inventory[tradeSymbol] == 0 {
		delete(s.inventory, tradeSymbol)
	}
	total := units * good.SellPrice
	f.credits += total

	return &domainPorts.SellResult{
		Cargo: f.cargoOf(s),
		Transaction: ledger.Transaction{
			WaypointSymbol: s.waypoint,
			ShipSymbol:     s.spec.Symbol,
			TradeSymbol:    tradeSymbol,
			Type:           ledger.TransactionTypeSellCargo,
			Units:          units,
			PricePerUnit:   good.SellPrice,
			TotalPrice:     total,
			Timestamp:      f.clock.Now(),
		},
		Credits: f.credits,
	}, nil
}

func (f *FakeGameServer) CreateChart(ctx context.Context, symbol string) (*domainPorts.ChartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "CreateChart"); err != nil {
		return nil, err
	}
	s, err := f.ship(symbol)
	if err != nil {
		return nil, err
	}
	if err := f.transitError(s); err != nil {
		return nil, err
	}
	wp, ok := f.waypoints[s.waypoint]
	if !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("waypoint %s not found", s.waypoint), nil)
	}
	if wp.IsCharted() {
		return nil, gameError(400, shared.ErrorCodeWaypointCharted, "waypoint already charted", map[string]interface{}{"waypointSymbol": wp.Symbol})
	}

	wp.ChartedBy = f.agentSymbol
	copied := *wp
	return &domainPorts.ChartResult{
		Chart:    &system.Chart{WaypointSymbol: wp.Symbol, SubmittedBy: f.agentSymbol, SubmittedOn: f.clock.Now()},
		Waypoint: &copied,
	}, nil
}

// Contract operations

func (f *FakeGameServer) contractOf(c *fakeContract) *contract.Contract {
	terms := c.terms
	terms.Deliveries = append([]contract.Delivery(nil), c.terms.Deliveries...)
	out, _ := contract.NewContract(c.id, c.faction, "PROCUREMENT", terms, c.accepted, c.fulfilled)
	return out
}

func (f *FakeGameServer) contract(id string) (*fakeContract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("contract %s not found", id), nil)
	}
	return c, nil
}

func (f *FakeGameServer) GetContract(ctx context.Context, contractID string) (*contract.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetContract"); err != nil {
		return nil, err
	}
	c, err := f.contract(contractID)
	if err != nil {
		return nil, err
	}
	return f.contractOf(c), nil
}

func (f *FakeGameServer) ListContracts(ctx context.Context) ([]*contract.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "ListContracts"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(f.contracts))
	for id := range f.contracts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*contract.Contract, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.contractOf(f.contracts[id]))
	}
	return out, nil
}

func (f *FakeGameServer) AcceptContract(ctx context.Context, contractID string) (*contract.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "AcceptContract"); err != nil {
		return nil, err
	}
	c, err := f.contract(contractID)
	if err != nil {
		return nil, err
	}
	if c.accepted {
		return nil, gameError(400, shared.ErrorCodeContractAccepted, "contract has already been accepted", nil)
	}
	c.accepted = true
	f.credits += c.terms.Payment.OnAccepted
	return f.contractOf(c), nil
}

func (f *FakeGameServer) DeliverContract(ctx context.Context, contractID, shipSymbol, tradeSymbol string, units int) (*domainPorts.DeliverResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "DeliverContract"); err != nil {
		return nil, err
	}
	c, err := f.contract(contractID)
	if err != nil {
		return nil, err
	}
	s, err := f.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if !c.accepted {
		return nil, gameError(400, codeDeliveryInvalid, "contract not accepted", nil)
	}
	if s.status != navigation.NavStatusDocked {
		return nil, gameError(400, codeShipNotDocked, "ship must be docked to deliver", nil)
	}

	for i := range c.terms.Deliveries {
		d := &c.terms.Deliveries[i]
		if d.TradeSymbol != tradeSymbol {
			continue
		}
		switch {
		case d.DestinationSymbol != s.waypoint:
			return nil, gameError(400, codeDeliveryInvalid, fmt.Sprintf("deliveries go to %s", d.DestinationSymbol), nil)
		case units > d.Remaining():
			return nil, gameError(400, codeDeliveryInvalid, "delivery exceeds the remaining requirement", nil)
		case s.inventory[tradeSymbol] < units:
			return nil, gameError(400, codeInsufficientCargo, "not enough cargo", nil)
		}
		d.UnitsFulfilled += units
		s.inventory[tradeSymbol] -= units
		if s.inventory[tradeSymbol] == 0 {
			delete(s.inventory, tradeSymbol)
		}
		return &domainPorts.DeliverResult{Contract: f.contractOf(c), Cargo: f.cargoOf(s)}, nil
	}
	return nil, gameError(400, codeDeliveryInvalid, fmt.Sprintf("contract does not require %s", tradeSymbol), nil)
}

func (f *FakeGameServer) FulfillContract(ctx context.Context, contractID string) (*contract.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "FulfillContract"); err != nil {
		return nil, err
	}
	c, err := f.contract(contractID)
	if err != nil {
		return nil, err
	}
	if c.fulfilled {
		return nil, gameError(400, shared.ErrorCodeContractFulfilled, "contract already fulfilled", nil)
	}
	for _, d := range c.terms.Deliveries {
		if d.Remaining() > 0 {
			return nil, gameError(400, codeContractIncomplete, "contract deliveries are not complete", nil)
		}
	}
	c.fulfilled = true
	f.credits += c.terms.Payment.OnFulfilled
	return f.contractOf(c), nil
}

// Location queries

func (f *FakeGameServer) GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*market.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetMarket"); err != nil {
		return nil, err
	}
	listing, ok := f.markets[waypointSymbol]
	if !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("no market at %s", waypointSymbol), nil)
	}
	symbols := make([]string, 0, len(listing))
	for symbol := range listing {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	goods := make([]market.TradeGood, 0, len(symbols))
	for _, symbol := range symbols {
		g := listing[symbol]
		tg, err := market.NewTradeGood(g.Symbol, "MODERATE", g.PurchasePrice, g.SellPrice, g.TradeVolume)
		if err != nil {
			return nil, err
		}
		goods = append(goods, *tg)
	}
	return market.NewMarket(waypointSymbol, symbols, nil, nil, goods, f.clock.Now())
}

func (f *FakeGameServer) GetWaypoint(ctx context.Context, systemSymbol, waypointSymbol string) (*shared.Waypoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetWaypoint"); err != nil {
		return nil, err
	}
	wp, ok := f.waypoints[waypointSymbol]
	if !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("waypoint %s not found", waypointSymbol), nil)
	}
	copied := *wp
	return &copied, nil
}

func (f *FakeGameServer) GetSystem(ctx context.Context, systemSymbol string) (*system.System, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetSystem"); err != nil {
		return nil, err
	}
	var waypoints []*shared.Waypoint
	for _, wp := range f.waypoints {
		if wp.SystemSymbol == systemSymbol {
			copied := *wp
			waypoints = append(waypoints, &copied)
		}
	}
	if len(waypoints) == 0 {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("system %s not found", systemSymbol), nil)
	}
	sort.Slice(waypoints, func(i, j int) bool { return waypoints[i].Symbol < waypoints[j].Symbol })
	sector := systemSymbol
	if i := strings.IndexByte(systemSymbol, '-'); i > 0 {
		sector = systemSymbol[:i]
	}
	return system.NewSystem(systemSymbol, sector, "RED_STAR", 0, 0, waypoints)
}

func (f *FakeGameServer) GetJumpGate(ctx context.Context, systemSymbol, waypointSymbol string) (*system.JumpGate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetJumpGate"); err != nil {
		return nil, err
	}
	connections, ok := f.gates[waypointSymbol]
	if !ok {
		return nil, gameError(404, codeNotFound, fmt.Sprintf("no jump gate at %s", waypointSymbol), nil)
	}
	return &system.JumpGate{Symbol: waypointSymbol, Connections: append([]string(nil), connections...)}, nil
}

func (f *FakeGameServer) GetAgent(ctx context.Context) (*domainPorts.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "GetAgent"); err != nil {
		return nil, err
	}
	return &domainPorts.Agent{
		Symbol:          f.agentSymbol,
		Headquarters:    "X1-TEST-A1",
		Credits:         f.credits,
		StartingFaction: "COSMIC",
		ShipCount:       len(f.ships),
	}, nil
}

var _ domainPorts.APIClient = (*FakeGameServer)(nil)
