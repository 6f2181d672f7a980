// Package cli implements the wikibot command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikibot/internal/app"
	"github.com/custodia-labs/wikibot/internal/config"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/core/ports/driving"
	"github.com/custodia-labs/wikibot/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	configPath  string
	verboseMode bool
)

// Services used by the commands. Populated by initApp; tests inject
// mocks directly.
var (
	ingestor  driving.Ingestor
	answerer  driving.Answerer
	searcher  driving.Searcher
	messenger driven.Messenger
	runStore  driven.RunStore

	appConfig   *config.Config
	appInstance *app.App
)

var rootCmd = &cobra.Command{
	Use:   "wikibot",
	Short: "Confluence wiki Q&A bot",
	Long: `wikibot ingests Confluence wiki pages into a vector index and
answers questions about them in Slack, on the command line, or over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseMode)
		return initApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.wikibot/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "enable verbose logging")
}

// initApp loads config and builds the application. Tests replace it.
var initApp = func() error {
	if appInstance != nil {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		return err
	}

	appConfig = cfg
	appInstance = a
	runStore = a.RunStore
	messenger = a.Messenger
	if a.Ingestor != nil {
		ingestor = a.Ingestor
	}
	if a.Answerer != nil {
		answerer = a.Answerer
		searcher = a.Answerer
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	defer func() {
		if appInstance != nil {
			appInstance.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
