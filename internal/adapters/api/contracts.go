package api

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
)

func (c *SpaceTradersClient) GetContract(ctx context.Context, contractID string) (*contract.Contract, error) {
	var resp envelope[contractDTO]
	if err := c.get(ctx, fmt.Sprintf("/my/contracts/%s", contractID), &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

// ListContracts pages through every contract offered to the agent
func (c *SpaceTradersClient) ListContracts(ctx context.Context) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	for page := 1; ; page++ {
		var resp envelope[[]contractDTO]
		if err := c.get(ctx, fmt.Sprintf("/my/contracts?page=%d&limit=%d", page, pageLimit), &resp); err != nil {
			return nil, err
		}
		for _, dto := range resp.Data {
			ct, err := dto.toDomain()
			if err != nil {
				return nil, err
			}
			contracts = append(contracts, ct)
		}
		if lastPage(resp.Meta, len(resp.Data)) {
			return contracts, nil
		}
	}
}

// AcceptContract accepts a contract. It is not idempotent: a second call fails with code 4501.
func (c *SpaceTradersClient) AcceptContract(ctx context.Context, contractID string) (*contract.Contract, error) {
	var resp envelope[struct {
		Contract contractDTO `json:"contract"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/contracts/%s/accept", contractID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Contract.toDomain()
}

// DeliverContract hands over cargo towards a delivery term
func (c *SpaceTradersClient) DeliverContract(ctx context.Context, contractID, shipSymbol, tradeSymbol string, units int) (*ports.DeliverResult, error) {
	body := map[string]interface{}{
		"shipSymbol":  shipSymbol,
		"tradeSymbol": tradeSymbol,
		"units":       units,
	}

	var resp envelope[struct {
		Contract contractDTO `json:"contract"`
		Cargo    cargoDTO    `json:"cargo"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/contracts/%s/deliver", contractID), body, &resp); err != nil {
		return nil, err
	}

	ct, err := resp.Data.Contract.toDomain()
	if err != nil {
		return nil, err
	}
	cargo, err := resp.Data.Cargo.toDomain()
	if err != nil {
		return nil, err
	}
	return &ports.DeliverResult{Contract: ct, Cargo: cargo}, nil
}

// FulfillContract claims the reward once all deliveries are complete
func (c *SpaceTradersClient) FulfillContract(ctx context.Context, contractID string) (*contract.Contract, error) {
	var resp envelope[struct {
		Contract contractDTO `json:"contract"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/contracts/%s/fulfill", contractID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Contract.toDomain()
}
