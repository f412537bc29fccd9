package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
)

// GetProfitLossQuery represents a query for the profit & loss of the running session
type GetProfitLossQuery struct{}

// GetProfitLossResponse represents the profit & loss statement result
type GetProfitLossResponse struct {
	SessionID        string
	TotalRevenue     int
	TotalExpenses    int
	NetProfit        int
	RevenueBreakdown map[string]int // category -> amount
	ExpenseBreakdown map[string]int // category -> amount
}

// GetProfitLossHandler handles the GetProfitLoss query
type GetProfitLossHandler struct {
	session *ledger.Session
}

// NewGetProfitLossHandler creates a new GetProfitLossHandler
func NewGetProfitLossHandler(session *ledger.Session) *GetProfitLossHandler {
	return &GetProfitLossHandler{
		session: session,
	}
}

// Handle executes the GetProfitLoss query
func (h *GetProfitLossHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetProfitLossQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetProfitLossQuery")
	}

	response := &GetProfitLossResponse{
		SessionID:        h.session.ID(),
		RevenueBreakdown: make(map[string]int),
		ExpenseBreakdown: make(map[string]int),
	}

	for txType, amount := range h.session.Breakdown() {
		category := txType.String()
		if txType.IsIncome() {
			response.RevenueBreakdown[category] += amount
			response.TotalRevenue += amount
		} else {
			response.ExpenseBreakdown[category] += amount
			response.TotalExpenses += amount
		}
	}
	response.NetProfit = response.TotalRevenue - response.TotalExpenses

	return response, nil
}
