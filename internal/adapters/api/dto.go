package api

import (
	"fmt"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/market"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// Wire formats of the SpaceTraders v2 API. Each type converts itself into the
// matching domain object so the client methods stay short.

type symbolDTO struct {
	Symbol string `json:"symbol"`
}

func symbolsOf(items []symbolDTO) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Symbol)
	}
	return out
}

type navDTO struct {
	SystemSymbol   string `json:"systemSymbol"`
	WaypointSymbol string `json:"waypointSymbol"`
	Status         string `json:"status"`
	FlightMode     string `json:"flightMode"`
	Route          *struct {
		Destination symbolDTO `json:"destination"`
		Arrival     string    `json:"arrival"`
	} `json:"route,omitempty"`
}

func (d navDTO) toDomain() (*navigation.Nav, error) {
	nav, err := navigation.NewNav(d.SystemSymbol, d.WaypointSymbol, navigation.NavStatus(d.Status), shared.FlightMode(d.FlightMode))
	if err != nil {
		return nil, fmt.Errorf("invalid nav: %w", err)
	}
	if d.Route != nil {
		nav.Destination = d.Route.Destination.Symbol
		if d.Route.Arrival != "" {
			arrival, err := shared.NewArrivalTime(d.Route.Arrival)
			if err != nil {
				return nil, err
			}
			nav.Arrival = arrival
		}
	}
	return nav, nil
}

type cargoDTO struct {
	Capacity  int `json:"capacity"`
	Units     int `json:"units"`
	Inventory []struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Units  int    `json:"units"`
	} `json:"inventory"`
}

func (d cargoDTO) toDomain() (*shared.Cargo, error) {
	items := make([]*shared.CargoItem, 0, len(d.Inventory))
	for _, item := range d.Inventory {
		items = append(items, &shared.CargoItem{Symbol: item.Symbol, Name: item.Name, Units: item.Units})
	}
	return shared.NewCargo(d.Capacity, d.Units, items)
}

type fuelDTO struct {
	Current  int `json:"current"`
	Capacity int `json:"capacity"`
}

func (d fuelDTO) toDomain() (*shared.Fuel, error) {
	return shared.NewFuel(d.Current, d.Capacity)
}

type cooldownDTO struct {
	RemainingSeconds float64 `json:"remainingSeconds"`
}

func (d cooldownDTO) duration() time.Duration {
	return time.Duration(d.RemainingSeconds * float64(time.Second))
}

type shipDTO struct {
	Symbol       string `json:"symbol"`
	Registration struct {
		Role string `json:"role"`
	} `json:"registration"`
	Nav     navDTO    `json:"nav"`
	Frame   symbolDTO `json:"frame"`
	Modules []struct {
		Symbol   string `json:"symbol"`
		Capacity int    `json:"capacity"`
		Range    int    `json:"range"`
	} `json:"modules"`
	Mounts []symbolDTO `json:"mounts"`
	Cargo  cargoDTO    `json:"cargo"`
	Fuel   fuelDTO     `json:"fuel"`
}

func (d shipDTO) toDomain() (*navigation.Ship, error) {
	nav, err := d.Nav.toDomain()
	if err != nil {
		return nil, err
	}
	cargo, err := d.Cargo.toDomain()
	if err != nil {
		return nil, err
	}
	fuel, err := d.Fuel.toDomain()
	if err != nil {
		return nil, err
	}

	modules := make([]*navigation.ShipModule, 0, len(d.Modules))
	for _, m := range d.Modules {
		modules = append(modules, navigation.NewShipModule(m.Symbol, m.Capacity, m.Range))
	}

	return navigation.NewShip(d.Symbol, d.Registration.Role, d.Frame.Symbol, nav, cargo, fuel, modules, symbolsOf(d.Mounts))
}

type transactionDTO struct {
	WaypointSymbol string    `json:"waypointSymbol"`
	ShipSymbol     string    `json:"shipSymbol"`
	TradeSymbol    string    `json:"tradeSymbol"`
	Type           string    `json:"type"`
	Units          int       `json:"units"`
	PricePerUnit   int       `json:"pricePerUnit"`
	TotalPrice     int       `json:"totalPrice"`
	Timestamp      time.Time `json:"timestamp"`
}

func (d transactionDTO) toDomain(kind ledger.TransactionType) ledger.Transaction {
	return ledger.Transaction{
		WaypointSymbol: d.WaypointSymbol,
		ShipSymbol:     d.ShipSymbol,
		TradeSymbol:    d.TradeSymbol,
		Type:           kind,
		Units:          d.Units,
		PricePerUnit:   d.PricePerUnit,
		TotalPrice:     d.TotalPrice,
		Timestamp:      d.Timestamp,
	}
}

type agentDTO struct {
	Symbol          string `json:"symbol"`
	Headquarters    string `json:"headquarters"`
	Credits         int    `json:"credits"`
	StartingFaction string `json:"startingFaction"`
	ShipCount       int    `json:"shipCount"`
}

type surveyDTO struct {
	Signature  string      `json:"signature"`
	Symbol     string      `json:"symbol"`
	Deposits   []symbolDTO `json:"deposits"`
	Expiration time.Time   `json:"expiration"`
	Size       string      `json:"size"`
}

func (d surveyDTO) toDomain() (*mining.Survey, error) {
	return mining.NewSurvey(d.Signature, d.Symbol, symbolsOf(d.Deposits), d.Expiration, mining.SurveySize(d.Size))
}

func surveyToDTO(s *mining.Survey) surveyDTO {
	deposits := make([]symbolDTO, 0, len(s.Deposits()))
	for _, d := range s.Deposits() {
		deposits = append(deposits, symbolDTO{Symbol: d})
	}
	return surveyDTO{
		Signature:  s.Signature(),
		Symbol:     s.WaypointSymbol(),
		Deposits:   deposits,
		Expiration: s.Expiration(),
		Size:       string(s.Size()),
	}
}

type contractDTO struct {
	ID            string `json:"id"`
	FactionSymbol string `json:"factionSymbol"`
	Type          string `json:"type"`
	Terms         struct {
		Deadline time.Time `json:"deadline"`
		Payment  struct {
			OnAccepted  int `json:"onAccepted"`
			OnFulfilled int `json:"onFulfilled"`
		} `json:"payment"`
		Deliver []struct {
			TradeSymbol       string `json:"tradeSymbol"`
			DestinationSymbol string `json:"destinationSymbol"`
			UnitsRequired     int    `json:"unitsRequired"`
			UnitsFulfilled    int    `json:"unitsFulfilled"`
		} `json:"deliver"`
	} `json:"terms"`
	Accepted  bool `json:"accepted"`
	Fulfilled bool `json:"fulfilled"`
}

func (d contractDTO) toDomain() (*contract.Contract, error) {
	deliveries := make([]contract.Delivery, 0, len(d.Terms.Deliver))
	for _, del := range d.Terms.Deliver {
		deliveries = append(deliveries, contract.Delivery{
			TradeSymbol:       del.TradeSymbol,
			DestinationSymbol: del.DestinationSymbol,
			UnitsRequired:     del.UnitsRequired,
			UnitsFulfilled:    del.UnitsFulfilled,
		})
	}

	terms := contract.Terms{
		Payment: contract.Payment{
			OnAccepted:  d.Terms.Payment.OnAccepted,
			OnFulfilled: d.Terms.Payment.OnFulfilled,
		},
		Deliveries: deliveries,
		Deadline:   d.Terms.Deadline,
	}
	return contract.NewContract(d.ID, d.FactionSymbol, d.Type, terms, d.Accepted, d.Fulfilled)
}

type marketDTO struct {
	Symbol     string      `json:"symbol"`
	Imports    []symbolDTO `json:"imports"`
	Exports    []symbolDTO `json:"exports"`
	Exchange   []symbolDTO `json:"exchange"`
	TradeGoods []struct {
		Symbol        string `json:"symbol"`
		TradeVolume   int    `json:"tradeVolume"`
		Supply        string `json:"supply"`
		PurchasePrice int    `json:"purchasePrice"`
		SellPrice     int    `json:"sellPrice"`
	} `json:"tradeGoods"`
}

func (d marketDTO) toDomain(now time.Time) (*market.Market, error) {
	goods := make([]market.TradeGood, 0, len(d.TradeGoods))
	for _, g := range d.TradeGoods {
		good, err := market.NewTradeGood(g.Symbol, g.Supply, g.PurchasePrice, g.SellPrice, g.TradeVolume)
		if err != nil {
			return nil, err
		}
		goods = append(goods, *good)
	}
	return market.NewMarket(d.Symbol, symbolsOf(d.Imports), symbolsOf(d.Exports), symbolsOf(d.Exchange), goods, now)
}

type waypointDTO struct {
	Symbol       string      `json:"symbol"`
	Type         string      `json:"type"`
	SystemSymbol string      `json:"systemSymbol"`
	X            int         `json:"x"`
	Y            int         `json:"y"`
	Orbitals     []symbolDTO `json:"orbitals"`
	Traits       []symbolDTO `json:"traits"`
	Faction      *symbolDTO  `json:"faction,omitempty"`
	Chart        *struct {
		SubmittedBy string `json:"submittedBy"`
	} `json:"chart,omitempty"`
}

func (d waypointDTO) toDomain() (*shared.Waypoint, error) {
	wp, err := shared.NewWaypoint(d.Symbol, d.Type, d.X, d.Y)
	if err != nil {
		return nil, err
	}
	if d.SystemSymbol != "" {
		wp.SystemSymbol = d.SystemSymbol
	}
	wp.Orbitals = symbolsOf(d.Orbitals)
	wp.Traits = symbolsOf(d.Traits)
	if d.Faction != nil {
		wp.Faction = d.Faction.Symbol
	}
	if d.Chart != nil {
		wp.ChartedBy = d.Chart.SubmittedBy
	}
	return wp, nil
}

type systemDTO struct {
	Symbol       string        `json:"symbol"`
	SectorSymbol string        `json:"sectorSymbol"`
	Type         string        `json:"type"`
	X            int           `json:"x"`
	Y            int           `json:"y"`
	Waypoints    []waypointDTO `json:"waypoints"`
	Factions     []symbolDTO   `json:"factions"`
}

func (d systemDTO) toDomain() (*system.System, error) {
	waypoints := make([]*shared.Waypoint, 0, len(d.Waypoints))
	for _, w := range d.Waypoints {
		if w.SystemSymbol == "" {
			w.SystemSymbol = d.Symbol
		}
		wp, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, wp)
	}

	sys, err := system.NewSystem(d.Symbol, d.SectorSymbol, d.Type, d.X, d.Y, waypoints)
	if err != nil {
		return nil, err
	}
	sys.Factions = symbolsOf(d.Factions)
	return sys, nil
}

type chartDTO struct {
	WaypointSymbol string    `json:"waypointSymbol"`
	SubmittedBy    string    `json:"submittedBy"`
	SubmittedOn    time.Time `json:"submittedOn"`
}

// errorEnvelope is the {"error": {...}} body of a failed call
type errorEnvelope struct {
	Error struct {
		Message string                 `json:"message"`
		Code    int                    `json:"code"`
		Data    map[string]interface{} `json:"data"`
	} `json:"error"`
}

// metaDTO is the pagination block of list endpoints
type metaDTO struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
