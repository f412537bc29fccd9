package setup

import (
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/application/exploration"
	ledgerQueries "github.com/andrescamacho/spacetraders-automation/internal/application/ledger/queries"
	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/application/player"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	domainPorts "github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// Options carries the routine settings that come from configuration
type Options struct {
	ContractThreshold float64
	ContractMarket    string
	JumpToUnmapped    bool
}

// HandlerRegistry holds all application dependencies for handler creation.
// Services are built once so every handler shares the same session ledger.
type HandlerRegistry struct {
	apiClient domainPorts.APIClient
	clock     shared.Clock
	session   *ledger.Session

	Navigator  *ship.Navigator
	Seller     *ship.CargoSeller
	Jumper     *ship.Jumper
	Miner      *mining.Miner
	Surveyor   *mining.Surveyor
	MiningLoop *mining.MiningLoop
	MarketSell *mining.MarketSell
	Workflow   *contract.Workflow
	Explorer   *exploration.Explorer
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	apiClient domainPorts.APIClient,
	clock shared.Clock,
	session *ledger.Session,
	surveys domainMining.SurveyRepository,
	mapping system.MappingRepository,
	charts system.ChartRepository,
	opts Options,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if session == nil {
		session = ledger.NewSession()
	}

	navigator := ship.NewNavigator(apiClient, clock, session)
	seller := ship.NewCargoSeller(apiClient, session)
	jumper := ship.NewJumper(apiClient, clock, navigator)
	miner := mining.NewMiner(apiClient, clock, surveys)

	return &HandlerRegistry{
		apiClient:  apiClient,
		clock:      clock,
		session:    session,
		Navigator:  navigator,
		Seller:     seller,
		Jumper:     jumper,
		Miner:      miner,
		Surveyor:   mining.NewSurveyor(apiClient, clock, navigator, surveys),
		MiningLoop: mining.NewMiningLoop(navigator, miner, seller, session),
		MarketSell: mining.NewMarketSell(navigator, seller),
		Workflow: contract.NewWorkflow(apiClient, navigator, miner, seller, session, contract.WorkflowOptions{
			Threshold:  opts.ContractThreshold,
			SellMarket: opts.ContractMarket,
		}),
		Explorer: exploration.NewExplorer(apiClient, navigator, jumper, mapping, charts, exploration.ExplorerOptions{
			JumpToUnmapped: opts.JumpToUnmapped,
		}),
	}
}

// Session returns the ledger shared by every routine
func (r *HandlerRegistry) Session() *ledger.Session {
	return r.session
}

// RegisterAll registers every command and query handler with the mediator
//
// This method registers:
//   - ship: NavigateShipCommand, SellCargoCommand
//   - mining: MineCommand, MiningCycleCommand, SurveyLoopCommand, PruneSurveysCommand, MarketSellCommand
//   - contract: RunContractCommand, FulfillContractCommand
//   - exploration: RunExplorationCommand, ReleaseClaimCommand, MappingStatusQuery
//   - GetAgentQuery and GetProfitLossQuery
func (r *HandlerRegistry) RegisterAll(m common.Mediator) error {
	if err := ship.RegisterHandlers(m, r.apiClient, r.Navigator, r.Seller); err != nil {
		return err
	}

	if err := mining.RegisterHandlers(m, r.apiClient, mining.Services{
		Miner:      r.Miner,
		Surveyor:   r.Surveyor,
		Loop:       r.MiningLoop,
		MarketSell: r.MarketSell,
	}); err != nil {
		return err
	}

	if err := contract.RegisterHandlers(m, r.Workflow); err != nil {
		return err
	}

	if err := exploration.RegisterHandlers(m, r.Explorer); err != nil {
		return err
	}

	if err := common.RegisterHandler[*player.GetAgentQuery](m, player.NewGetAgentHandler(r.apiClient)); err != nil {
		return err
	}

	return common.RegisterHandler[*ledgerQueries.GetProfitLossQuery](m, ledgerQueries.NewGetProfitLossHandler(r.session))
}
