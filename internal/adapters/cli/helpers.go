package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
)

// commandContext is cancelled on SIGINT or SIGTERM and carries the app logger,
// bound to shipSymbol when one is given
func commandContext(a *app, shipSymbol string) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := a.logger
	if shipSymbol != "" {
		logger = logger.ForShip(shipSymbol)
	}
	return common.WithLogger(ctx, logger), stop
}

// withApp builds the app for one command invocation and closes it afterwards
func withApp(fn func(a *app) error) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s flag is required", name)
	}
	return nil
}

// splitSymbols accepts comma separated symbols and drops blanks
func splitSymbols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(strings.ToUpper(s)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func printProceeds(report *ship.ProceedsReport) {
	if report == nil || len(report.UnitsSold) == 0 {
		fmt.Println("  Sold:             nothing")
		return
	}
	goods := make([]string, 0, len(report.UnitsSold))
	for good := range report.UnitsSold {
		goods = append(goods, good)
	}
	sort.Strings(goods)
	for _, good := range goods {
		fmt.Printf("  Sold:             %d x %s\n", report.UnitsSold[good], good)
	}
	fmt.Printf("  Income:           %d credits\n", report.Income())
	for _, f := range report.Failures {
		fmt.Printf("  Unsold:           %d x %s (%v)\n", f.Units, f.Good, f.Err)
	}
}

func printMap(label string, values map[string]int) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-18s%-24s%d\n", label, k, values[k])
	}
}
