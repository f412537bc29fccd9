package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacetraders-automation/test/bdd/steps"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application", "features/adapters"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Domain scenarios
	steps.InitializeContractScenario(sc)
	steps.InitializeLoopScenario(sc)

	// Application scenarios share one fake universe per scenario
	steps.InitializeUniverseScenario(sc)

	// Adapter scenarios
	steps.InitializeResponseCacheScenario(sc)
}
