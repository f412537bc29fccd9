package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
)

type contractContext struct {
	contractID string
	delivery   contract.Delivery
	accepted   bool
	contract   *contract.Contract
	err        error
}

func (cc *contractContext) reset() {
	cc.contractID = ""
	cc.delivery = contract.Delivery{}
	cc.accepted = false
	cc.contract = nil
	cc.err = nil
}

// rebuild refreshes the snapshot from the current delivery progress
func (cc *contractContext) rebuild() error {
	terms := contract.Terms{
		Payment:    contract.Payment{OnAccepted: 1000, OnFulfilled: 5000},
		Deliveries: []contract.Delivery{cc.delivery},
	}
	c, err := contract.NewContract(cc.contractID, "COSMIC", "PROCUREMENT", terms, cc.accepted, false)
	if err != nil {
		return err
	}
	cc.contract = c
	return nil
}

func (cc *contractContext) aContractToDeliver(state, id string, units int, good, destination string) error {
	cc.contractID = id
	cc.accepted = state == "accepted"
	cc.delivery = contract.Delivery{TradeSymbol: good, DestinationSymbol: destination, UnitsRequired: units}
	return cc.rebuild()
}

func (cc *contractContext) unitsHaveBeenDelivered(units int) error {
	cc.delivery.UnitsFulfilled += units
	return cc.rebuild()
}

func (cc *contractContext) iCreateAContractWithoutDeliveries(id string) error {
	cc.contract, cc.err = contract.NewContract(id, "COSMIC", "PROCUREMENT", contract.Terms{}, false, false)
	return nil
}

func (cc *contractContext) theContractShouldHaveUnitsRemaining(expected int) error {
	if got := cc.contract.PrimaryDelivery().Remaining(); got != expected {
		return fmt.Errorf("expected %d units remaining, got %d", expected, got)
	}
	return nil
}

func (cc *contractContext) theDeliveryGoalShouldBeMet() error {
	if !cc.contract.DeliveryComplete() {
		return fmt.Errorf("expected delivery goal to be met: %s", cc.contract)
	}
	return nil
}

func (cc *contractContext) theContractShouldBeFulfillable() error {
	if !cc.contract.CanFulfill() {
		return fmt.Errorf("expected %s to be fulfillable", cc.contract)
	}
	return nil
}

func (cc *contractContext) theContractShouldNotBeFulfillable() error {
	if cc.contract.CanFulfill() {
		return fmt.Errorf("expected %s not to be fulfillable", cc.contract)
	}
	return nil
}

func (cc *contractContext) acceptingShouldBeAllowed() error {
	if err := cc.contract.CheckAcceptable(); err != nil {
		return fmt.Errorf("expected accept to be allowed, got %v", err)
	}
	return nil
}

func (cc *contractContext) acceptingShouldFailWith(expected string) error {
	err := cc.contract.CheckAcceptable()
	if err == nil {
		return fmt.Errorf("expected accept to fail with %q", expected)
	}
	if err.Error() != expected {
		return fmt.Errorf("expected error %q, got %q", expected, err.Error())
	}
	return nil
}

func (cc *contractContext) contractCreationShouldFailWith(expected string) error {
	if cc.err == nil {
		return fmt.Errorf("expected creation to fail with %q", expected)
	}
	if cc.err.Error() != expected {
		return fmt.Errorf("expected error %q, got %q", expected, cc.err.Error())
	}
	return nil
}

// InitializeContractScenario registers contract domain steps
func InitializeContractScenario(sc *godog.ScenarioContext) {
	cc := &contractContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	sc.Step(`^an? (accepted|unaccepted) contract "([^"]*)" to deliver (\d+) "([^"]*)" to "([^"]*)"$`, cc.aContractToDeliver)
	sc.Step(`^(\d+) units have been delivered$`, cc.unitsHaveBeenDelivered)
	sc.Step(`^I create a contract "([^"]*)" without deliveries$`, cc.iCreateAContractWithoutDeliveries)

	sc.Step(`^the contract should have (\d+) units remaining$`, cc.theContractShouldHaveUnitsRemaining)
	sc.Step(`^the delivery goal should be met$`, cc.theDeliveryGoalShouldBeMet)
	sc.Step(`^the contract should be fulfillable$`, cc.theContractShouldBeFulfillable)
	sc.Step(`^the contract should not be fulfillable$`, cc.theContractShouldNotBeFulfillable)
	sc.Step(`^accepting the contract should be allowed$`, cc.acceptingShouldBeAllowed)
	sc.Step(`^accepting the contract should fail with "([^"]*)"$`, cc.acceptingShouldFailWith)
	sc.Step(`^contract creation should fail with "([^"]*)"$`, cc.contractCreationShouldFailWith)
}
