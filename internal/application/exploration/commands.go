package exploration

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
)

// RunExplorationCommand performs one exploration step for a ship
type RunExplorationCommand struct {
	ShipSymbol string
}

type RunExplorationHandler struct {
	explorer *Explorer
}

func NewRunExplorationHandler(explorer *Explorer) *RunExplorationHandler {
	return &RunExplorationHandler{explorer: explorer}
}

func (h *RunExplorationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunExplorationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return nil, h.explorer.RunExploration(ctx, cmd.ShipSymbol)
}

// ReleaseClaimCommand resets a stuck INCOMPLETE claim
type ReleaseClaimCommand struct {
	SystemSymbol string
}

type ReleaseClaimHandler struct {
	explorer *Explorer
}

func NewReleaseClaimHandler(explorer *Explorer) *ReleaseClaimHandler {
	return &ReleaseClaimHandler{explorer: explorer}
}

func (h *ReleaseClaimHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReleaseClaimCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return nil, h.explorer.ReleaseClaim(ctx, cmd.SystemSymbol)
}

// MappingStatusQuery reads the mapping progress of a system
type MappingStatusQuery struct {
	SystemSymbol string
}

type MappingStatusHandler struct {
	explorer *Explorer
}

func NewMappingStatusHandler(explorer *Explorer) *MappingStatusHandler {
	return &MappingStatusHandler{explorer: explorer}
}

func (h *MappingStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*MappingStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.explorer.Status(ctx, query.SystemSymbol)
}

// RegisterHandlers wires the exploration commands into the mediator
func RegisterHandlers(m common.Mediator, explorer *Explorer) error {
	if err := common.RegisterHandler[*RunExplorationCommand](m, NewRunExplorationHandler(explorer)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*ReleaseClaimCommand](m, NewReleaseClaimHandler(explorer)); err != nil {
		return err
	}
	return common.RegisterHandler[*MappingStatusQuery](m, NewMappingStatusHandler(explorer))
}
