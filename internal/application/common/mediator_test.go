package common_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
)

type pingQuery struct{ Ship string }

type pingHandler struct{}

func (pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	return "pong " + request.(*pingQuery).Ship, nil
}

func TestMediator_SendRunsMiddlewaresInRegistrationOrder(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	var trace []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		m.Use(func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			trace = append(trace, name)
			return next(ctx, request)
		})
	}

	// Act
	response, err := m.Send(context.Background(), &pingQuery{Ship: "MINER-1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong MINER-1", response)
	assert.Equal(t, []string{"outer", "inner"}, trace)
}

func TestMediator_RejectsDuplicateAndUnknownRequests(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	_, err := m.Send(context.Background(), &struct{ Unknown bool }{})
	assert.Error(t, err)
}

func TestLoggerFromContext_DiscardsWithoutLogger(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())

	assert.NotPanics(t, func() { logger.Log("INFO", "nobody listens", nil) })
}
