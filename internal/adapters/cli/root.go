package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// cfg is loaded once per invocation in PersistentPreRunE
	cfg *config.Config
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spacetraders",
		Short: "SpaceTraders automation - mine, trade, fulfil contracts and chart systems",
		Long: `SpaceTraders automation drives your fleet directly against the SpaceTraders API.

The agent token is read from ST_API_TOKEN (or SPACETRADERS_TOKEN), a .env file
or the api.token key of config.yaml.

Examples:
  spacetraders agent
  spacetraders navigate --ship AGENT-1 --destination X1-GZ7-B1
  spacetraders mine --ship AGENT-1 --site X1-GZ7-B1 --market X1-GZ7-A1
  spacetraders contract run --ship AGENT-1 --contract clx0 --site X1-GZ7-B1
  spacetraders explore run --ship SCOUT-1
  spacetraders run --assign AGENT-1:mining,site=X1-GZ7-B1 --assign SCOUT-1:explore`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if verbose {
				loaded.Logging.Level = "debug"
			}
			cfg = loaded
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs, ~/.spacetraders)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewAgentCommand())
	rootCmd.AddCommand(NewNavigateCommand())
	rootCmd.AddCommand(NewMineCommand())
	rootCmd.AddCommand(NewSellCommand())
	rootCmd.AddCommand(NewSurveyCommand())
	rootCmd.AddCommand(NewContractCommand())
	rootCmd.AddCommand(NewExploreCommand())
	rootCmd.AddCommand(NewRunCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
