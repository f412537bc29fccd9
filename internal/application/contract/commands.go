package contract

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	domainContract "github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
)

// RunContractCommand performs one iteration of the contract loop
type RunContractCommand struct {
	ShipSymbol        string
	ContractID        string
	MiningDestination string

	// SellMarket overrides the workflow's surplus market for this iteration
	SellMarket string
}

type RunContractResponse struct {
	DeliveryComplete bool
}

type RunContractHandler struct {
	workflow *Workflow
}

func NewRunContractHandler(workflow *Workflow) *RunContractHandler {
	return &RunContractHandler{workflow: workflow}
}

func (h *RunContractHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunContractCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	done, err := h.workflow.SellingAt(cmd.SellMarket).RunContract(ctx, cmd.ShipSymbol, cmd.ContractID, cmd.MiningDestination)
	if err != nil {
		return nil, err
	}
	return &RunContractResponse{DeliveryComplete: done}, nil
}

// FulfillContractCommand closes a contract whose deliveries are complete
type FulfillContractCommand struct {
	ContractID string
}

type FulfillContractResponse struct {
	Contract *domainContract.Contract
}

type FulfillContractHandler struct {
	workflow *Workflow
}

func NewFulfillContractHandler(workflow *Workflow) *FulfillContractHandler {
	return &FulfillContractHandler{workflow: workflow}
}

func (h *FulfillContractHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*FulfillContractCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	c, err := h.workflow.Fulfill(ctx, cmd.ContractID)
	if err != nil {
		return nil, err
	}
	return &FulfillContractResponse{Contract: c}, nil
}

// RegisterHandlers wires the contract commands into the mediator
func RegisterHandlers(m common.Mediator, workflow *Workflow) error {
	if err := common.RegisterHandler[*RunContractCommand](m, NewRunContractHandler(workflow)); err != nil {
		return err
	}
	return common.RegisterHandler[*FulfillContractCommand](m, NewFulfillContractHandler(workflow))
}
