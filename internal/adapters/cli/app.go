package cli

import (
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/api"
	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/adapters/persistence"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/logging"
	"github.com/andrescamacho/spacetraders-automation/internal/application/setup"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/database"
)

// app is everything a command needs, wired from the loaded configuration
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	clock    shared.Clock
	logger   *logging.ShipLogger
	mediator common.Mediator
	registry *setup.HandlerRegistry

	// metricsEnabled is true once the registry and collectors are live
	metricsEnabled bool

	logCloser io.Closer
}

// newApp connects the database, builds the API client stack and registers
// every handler. Callers must Close the app.
func newApp(cfg *config.Config) (*app, error) {
	if err := config.RequireToken(cfg); err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &app{
		cfg:       cfg,
		db:        db,
		clock:     shared.NewRealClock(),
		logger:    logger,
		mediator:  common.NewMediator(),
		logCloser: logCloser,
	}

	if cfg.Metrics.Enabled {
		if err := a.initMetrics(); err != nil {
			a.Close()
			return nil, err
		}
	}

	client, err := a.apiClient()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.registry = setup.NewHandlerRegistry(
		client,
		a.clock,
		ledger.NewSession(),
		persistence.NewGormSurveyRepository(db),
		persistence.NewGormMappingRepository(db, a.clock),
		persistence.NewGormChartRepository(db),
		setup.Options{
			ContractThreshold: cfg.Automation.ContractThreshold,
			ContractMarket:    cfg.Automation.ContractMarket,
			JumpToUnmapped:    cfg.Exploration.JumpToUnmapped,
		},
	)
	if err := a.registry.RegisterAll(a.mediator); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return a, nil
}

// apiClient builds the rate-limited client, wrapped in the response cache
// unless caching is disabled
func (a *app) apiClient() (ports.APIClient, error) {
	client := api.NewSpaceTradersClient(api.OptionsFromConfig(a.cfg.API), a.clock)
	if a.cfg.API.Cache.Disabled {
		return client, nil
	}

	cache, err := api.NewResponseCache(a.cfg.API.Cache.Size, a.cfg.API.Cache.TTL, a.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return api.NewCachingClient(client, cache), nil
}

func (a *app) initMetrics() error {
	metrics.InitRegistry()

	apiCollector := metrics.NewAPIMetricsCollector()
	if err := apiCollector.Register(); err != nil {
		return fmt.Errorf("failed to register API metrics: %w", err)
	}
	metrics.SetGlobalAPICollector(apiCollector)

	automationCollector := metrics.NewAutomationMetricsCollector()
	if err := automationCollector.Register(); err != nil {
		return fmt.Errorf("failed to register automation metrics: %w", err)
	}
	metrics.SetGlobalAutomationCollector(automationCollector)

	requestCollector := metrics.NewRequestMetricsCollector()
	if err := requestCollector.Register(); err != nil {
		return fmt.Errorf("failed to register request metrics: %w", err)
	}
	a.mediator.Use(metrics.RequestMetricsMiddleware(requestCollector))

	a.metricsEnabled = true
	return nil
}

// Close releases the database and the log file
func (a *app) Close() {
	if a.db != nil {
		_ = database.Close(a.db)
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}
