package mining

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
)

// MineCommand mines at the ship's current waypoint until the hold is full
type MineCommand struct {
	ShipSymbol string
	Options    MineOptions
}

type MineResponse struct {
	Ship  *navigation.Ship
	Yield *domainMining.YieldReport
}

type MineHandler struct {
	client ports.APIClient
	miner  *Miner
}

func NewMineHandler(client ports.APIClient, miner *Miner) *MineHandler {
	return &MineHandler{client: client, miner: miner}
}

func (h *MineHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MineCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	s, err := h.client.GetShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", cmd.ShipSymbol, err)
	}
	if s.IsInTransit() {
		return nil, fmt.Errorf("ship %s is in transit to %s", s.ShipSymbol(), s.CurrentLocation())
	}

	s, yield, err := h.miner.MineUntilFull(ctx, s, s.CurrentLocation(), cmd.Options)
	if err != nil {
		return nil, err
	}
	return &MineResponse{Ship: s, Yield: yield}, nil
}

// MiningCycleCommand runs one mine-travel-sell cycle
type MiningCycleCommand struct {
	ShipSymbol string
	Options    CycleOptions
}

type MiningCycleResponse struct {
	Ship   *navigation.Ship
	Report *CycleReport
}

type MiningCycleHandler struct {
	client ports.APIClient
	loop   *MiningLoop
}

func NewMiningCycleHandler(client ports.APIClient, loop *MiningLoop) *MiningCycleHandler {
	return &MiningCycleHandler{client: client, loop: loop}
}

func (h *MiningCycleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MiningCycleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	s, err := h.client.GetShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", cmd.ShipSymbol, err)
	}

	s, report, err := h.loop.RunCycle(ctx, s, cmd.Options)
	if err != nil {
		return nil, err
	}
	return &MiningCycleResponse{Ship: s, Report: report}, nil
}

// SurveyLoopCommand surveys a waypoint until cancelled or Rounds is reached
type SurveyLoopCommand struct {
	ShipSymbol  string
	Destination string
	Options     SurveyOptions
}

type SurveyLoopHandler struct {
	client   ports.APIClient
	surveyor *Surveyor
}

func NewSurveyLoopHandler(client ports.APIClient, surveyor *Surveyor) *SurveyLoopHandler {
	return &SurveyLoopHandler{client: client, surveyor: surveyor}
}

func (h *SurveyLoopHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SurveyLoopCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	s, err := h.client.GetShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", cmd.ShipSymbol, err)
	}
	return nil, h.surveyor.SurveyLoop(ctx, s, cmd.Destination, cmd.Options)
}

// PruneSurveysCommand deletes a waypoint's expired surveys
type PruneSurveysCommand struct {
	WaypointSymbol string
}

type PruneSurveysResponse struct {
	Deleted int
}

type PruneSurveysHandler struct {
	surveyor *Surveyor
}

func NewPruneSurveysHandler(surveyor *Surveyor) *PruneSurveysHandler {
	return &PruneSurveysHandler{surveyor: surveyor}
}

func (h *PruneSurveysHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PruneSurveysCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	deleted, err := h.surveyor.Prune(ctx, cmd.WaypointSymbol)
	if err != nil {
		return nil, err
	}
	return &PruneSurveysResponse{Deleted: deleted}, nil
}

// MarketSellCommand takes a ship to a market and sells everything not excluded
type MarketSellCommand struct {
	ShipSymbol string
	Market     string
	Exclude    []string
}

type MarketSellHandler struct {
	client     ports.APIClient
	marketSell *MarketSell
}

func NewMarketSellHandler(client ports.APIClient, marketSell *MarketSell) *MarketSellHandler {
	return &MarketSellHandler{client: client, marketSell: marketSell}
}

func (h *MarketSellHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MarketSellCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	s, err := h.client.GetShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", cmd.ShipSymbol, err)
	}

	s, report, err := h.marketSell.Run(ctx, s, cmd.Market, cmd.Exclude)
	if err != nil {
		return nil, err
	}
	return &ship.SellCargoResponse{Ship: s, Report: report}, nil
}

// Services groups the mining routines the handlers delegate to
type Services struct {
	Miner      *Miner
	Surveyor   *Surveyor
	Loop       *MiningLoop
	MarketSell *MarketSell
}

// RegisterHandlers wires the mining commands into the mediator
func RegisterHandlers(m common.Mediator, client ports.APIClient, svc Services) error {
	if err := common.RegisterHandler[*MineCommand](m, NewMineHandler(client, svc.Miner)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*MiningCycleCommand](m, NewMiningCycleHandler(client, svc.Loop)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*SurveyLoopCommand](m, NewSurveyLoopHandler(client, svc.Surveyor)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*PruneSurveysCommand](m, NewPruneSurveysHandler(svc.Surveyor)); err != nil {
		return err
	}
	return common.RegisterHandler[*MarketSellCommand](m, NewMarketSellHandler(client, svc.MarketSell))
}
