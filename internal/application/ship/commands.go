package ship

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
)

// NavigateShipCommand moves a ship to a waypoint of its current system
type NavigateShipCommand struct {
	ShipSymbol  string
	Destination string
	Options     NavigateOptions
}

// NavigateShipResponse carries the ship as it was left at the destination
type NavigateShipResponse struct {
	Ship *navigation.Ship
}

type NavigateShipHandler struct {
	client    ports.APIClient
	navigator *Navigator
}

func NewNavigateShipHandler(client ports.APIClient, navigator *Navigator) *NavigateShipHandler {
	return &NavigateShipHandler{client: client, navigator: navigator}
}

func (h *NavigateShipHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*NavigateShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.client.GetShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", cmd.ShipSymbol, err)
	}

	ship, err = h.navigator.Navigate(ctx, ship, cmd.Destination, cmd.Options)
	if err != nil {
		return nil, err
	}
	return &NavigateShipResponse{Ship: ship}, nil
}

// SellCargoCommand sells a ship's hold where it stands
type SellCargoCommand struct {
	ShipSymbol string
	Exclude    []string
}

type SellCargoResponse struct {
	Ship   *navigation.Ship
	Report *ProceedsReport
}

type SellCargoHandler struct {
	client ports.APIClient
	seller *CargoSeller
}

func NewSellCargoHandler(client ports.APIClient, seller *CargoSeller) *SellCargoHandler {
	return &SellCargoHandler{client: client, seller: seller}
}

func (h *SellCargoHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SellCargoCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.client.GetShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", cmd.ShipSymbol, err)
	}

	ship, report, err := h.seller.SellCargo(ctx, ship, cmd.Exclude)
	if err != nil {
		return nil, err
	}
	return &SellCargoResponse{Ship: ship, Report: report}, nil
}

// RegisterHandlers wires the ship commands into the mediator
func RegisterHandlers(m common.Mediator, client ports.APIClient, navigator *Navigator, seller *CargoSeller) error {
	if err := common.RegisterHandler[*NavigateShipCommand](m, NewNavigateShipHandler(client, navigator)); err != nil {
		return err
	}
	return common.RegisterHandler[*SellCargoCommand](m, NewSellCargoHandler(client, seller))
}
