package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/ledger/queries"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
)

func TestGetProfitLoss_SplitsRevenueAndExpenses(t *testing.T) {
	// Arrange
	session := ledger.NewSession()
	require.NoError(t, session.Record(ledger.Transaction{Type: ledger.TransactionTypeSellCargo, TotalPrice: 400}))
	require.NoError(t, session.Record(ledger.Transaction{Type: ledger.TransactionTypeSellCargo, TotalPrice: 100}))
	require.NoError(t, session.Record(ledger.Transaction{Type: ledger.TransactionTypeContractAccepted, TotalPrice: 1000}))
	require.NoError(t, session.Record(ledger.Transaction{Type: ledger.TransactionTypeRefuel, TotalPrice: 120}))
	handler := queries.NewGetProfitLossHandler(session)

	// Act
	resp, err := handler.Handle(context.Background(), &queries.GetProfitLossQuery{})

	// Assert
	require.NoError(t, err)
	pl := resp.(*queries.GetProfitLossResponse)
	assert.Equal(t, 1500, pl.TotalRevenue)
	assert.Equal(t, 120, pl.TotalExpenses)
	assert.Equal(t, 1380, pl.NetProfit)
	assert.Equal(t, 500, pl.RevenueBreakdown["SELL_CARGO"])
	assert.Equal(t, 120, pl.ExpenseBreakdown["REFUEL"])
	assert.Equal(t, session.ID(), pl.SessionID)
}

func TestGetProfitLoss_RejectsOtherRequests(t *testing.T) {
	handler := queries.NewGetProfitLossHandler(ledger.NewSession())

	_, err := handler.Handle(context.Background(), struct{}{})

	assert.Error(t, err)
}
