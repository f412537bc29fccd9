package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	appAutomation "github.com/andrescamacho/spacetraders-automation/internal/application/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	ledgerQueries "github.com/andrescamacho/spacetraders-automation/internal/application/ledger/queries"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var assigns []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run automation loops for a set of ships until interrupted",
		Long: `Run automation loops for a set of ships until interrupted.

Each ship runs its job in its own loop. A failing ship pauses and retries
without affecting the others. Ships come from repeated --assign flags or, when
none is given, from automation.ships in the config file.

Assignment format:
  SHIP:JOB[,site=WAYPOINT][,market=WAYPOINT][,exclude=GOOD+GOOD][,contract=ID]

Jobs: mining, contract, survey, explore, sell

Examples:
  spacetraders run --assign AGENT-1:mining,site=X1-GZ7-B1,market=X1-GZ7-A1
  spacetraders run --assign AGENT-1:contract,site=X1-GZ7-B1,contract=clx0abc \
                   --assign SURVEYOR-1:survey,site=X1-GZ7-B1 \
                   --assign SCOUT-1:explore`,
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := resolveAssignments(assigns, cfg.Automation.Ships)
			if err != nil {
				return err
			}

			pf := pidfile.New(cfg.Automation.PIDFile)
			if err := pf.Acquire(); err != nil {
				return err
			}
			defer pf.Release()

			return withApp(func(a *app) error {
				return runAutomation(a, assignments)
			})
		},
	}

	cmd.Flags().StringArrayVar(&assigns, "assign", nil, "Ship assignment SHIP:JOB[,key=value...] (repeatable)")

	return cmd
}

func runAutomation(a *app, assignments []automation.Assignment) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, a.logger)

	driver := appAutomation.NewDriver(a.mediator, a.clock, a.logger, appAutomation.SettingsFromConfig(a.cfg.Automation))

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	if a.metricsEnabled {
		server, err := metrics.NewServer(a.cfg.Metrics.Address(), a.cfg.Metrics.Path)
		if err != nil {
			return err
		}
		a.logger.Log("INFO", "Metrics server listening", map[string]interface{}{
			"address": a.cfg.Metrics.Address() + a.cfg.Metrics.Path,
		})
		g.Go(func() error {
			return server.Run(runCtx)
		})
	}

	var loops []automation.Loop
	g.Go(func() error {
		// the metrics server stops with the loops
		defer cancelRun()
		var err error
		loops, err = driver.Run(runCtx, assignments)
		return err
	})

	err := g.Wait()
	printLoops(loops)
	if reportErr := printProfitLoss(a); reportErr != nil && err == nil {
		err = reportErr
	}
	return err
}

func printLoops(loops []automation.Loop) {
	if len(loops) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Ship loops")
	for _, l := range loops {
		line := fmt.Sprintf("  %-16s %-9s %-10s iterations=%d failures=%d runtime=%s",
			l.ShipSymbol(), l.Job(), l.Status(), l.Iterations(), l.TotalFailures(), l.Runtime().Truncate(time.Second))
		if l.LastError() != nil && l.Status() == automation.LoopStatusFailed {
			line += fmt.Sprintf(" last_error=%q", l.LastError().Error())
		}
		fmt.Println(line)
	}
}

func printProfitLoss(a *app) error {
	resp, err := a.mediator.Send(context.Background(), &ledgerQueries.GetProfitLossQuery{})
	if err != nil {
		return fmt.Errorf("failed to compute profit and loss: %w", err)
	}
	pl := resp.(*ledgerQueries.GetProfitLossResponse)

	fmt.Println()
	fmt.Printf("Session %s\n", pl.SessionID)
	fmt.Printf("  Revenue:          %d\n", pl.TotalRevenue)
	printMap("", pl.RevenueBreakdown)
	fmt.Printf("  Expenses:         %d\n", pl.TotalExpenses)
	printMap("", pl.ExpenseBreakdown)
	fmt.Printf("  Net profit:       %d\n", pl.NetProfit)
	return nil
}

// resolveAssignments prefers --assign flags over the config file list
func resolveAssignments(flags []string, configured []config.ShipAssignmentConfig) ([]automation.Assignment, error) {
	var assignments []automation.Assignment

	if len(flags) > 0 {
		for _, value := range flags {
			a, err := parseAssignment(value)
			if err != nil {
				return nil, err
			}
			assignments = append(assignments, a)
		}
	} else {
		for _, c := range configured {
			job, err := automation.ParseJob(c.Job)
			if err != nil {
				return nil, err
			}
			assignments = append(assignments, automation.Assignment{
				ShipSymbol: strings.ToUpper(c.Symbol),
				Job:        job,
				MiningSite: strings.ToUpper(c.MiningSite),
				Market:     strings.ToUpper(c.Market),
				Exclude:    splitSymbols(c.Exclude),
				ContractID: c.ContractID,
			})
		}
	}

	if len(assignments) == 0 {
		return nil, fmt.Errorf("no ships to run: use --assign or set automation.ships")
	}
	for _, a := range assignments {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("assignment for %s: %w", a.ShipSymbol, err)
		}
	}
	return assignments, nil
}

// parseAssignment reads SHIP:JOB[,key=value...]
func parseAssignment(value string) (automation.Assignment, error) {
	head, rest, _ := strings.Cut(strings.TrimSpace(value), ",")
	shipSymbol, jobName, ok := strings.Cut(head, ":")
	if !ok || strings.TrimSpace(shipSymbol) == "" {
		return automation.Assignment{}, fmt.Errorf("invalid assignment %q: expected SHIP:JOB", value)
	}

	job, err := automation.ParseJob(jobName)
	if err != nil {
		return automation.Assignment{}, fmt.Errorf("invalid assignment %q: %w", value, err)
	}

	a := automation.Assignment{
		ShipSymbol: strings.ToUpper(strings.TrimSpace(shipSymbol)),
		Job:        job,
	}
	if rest == "" {
		return a, nil
	}

	for _, pair := range strings.Split(rest, ",") {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return automation.Assignment{}, fmt.Errorf("invalid assignment %q: %q is not key=value", value, pair)
		}
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "site":
			a.MiningSite = strings.ToUpper(val)
		case "market":
			a.Market = strings.ToUpper(val)
		case "exclude":
			a.Exclude = splitSymbols(strings.Split(val, "+"))
		case "contract":
			a.ContractID = val
		default:
			return automation.Assignment{}, fmt.Errorf("invalid assignment %q: unknown key %q", value, key)
		}
	}
	return a, nil
}
