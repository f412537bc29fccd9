package player

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	domainPorts "github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
)

// GetAgentQuery represents a query for the agent's account and fleet
type GetAgentQuery struct {
	// IncludeShips also lists the fleet
	IncludeShips bool
}

// GetAgentResponse represents the result of getting the agent
type GetAgentResponse struct {
	Agent *domainPorts.Agent
	Ships []*navigation.Ship
}

// GetAgentHandler handles the GetAgent query
type GetAgentHandler struct {
	apiClient domainPorts.APIClient
}

// NewGetAgentHandler creates a new GetAgentHandler
func NewGetAgentHandler(apiClient domainPorts.APIClient) *GetAgentHandler {
	return &GetAgentHandler{
		apiClient: apiClient,
	}
}

// Handle executes the GetAgent query
func (h *GetAgentHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetAgentQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetAgentQuery")
	}

	agent, err := h.apiClient.GetAgent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}

	response := &GetAgentResponse{Agent: agent}
	if query.IncludeShips {
		ships, err := h.apiClient.ListShips(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list ships: %w", err)
		}
		response.Ships = ships
	}
	return response, nil
}
