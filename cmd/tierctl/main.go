// Command tierctl records agent contributions and reports the
// infrastructure tiers they earn.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	configPath  string
	dbPath      string
	catalogPath string
	redisURL    string
	verbose     bool
	jsonOutput  bool

	level  zap.AtomicLevel
	logger *zap.Logger
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "tierctl",
		Short: "Contribution-based infrastructure tiers",
		Long: `tierctl records contributions from agents, evaluates the access tier their
accumulated counters earn, and renders the provisioning directive for that tier.

Configuration is read from --config, TIERFORGE_CONFIG, or a config.yaml /
config.json next to the executable or in the working directory. Every key can
be overridden with a TIERFORGE_<KEY> environment variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			opts.level = config.Level
			if opts.verbose {
				opts.level.SetLevel(zapcore.DebugLevel)
			}
			var err error
			opts.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML or JSON config file")
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides db_path)")
	pf.StringVar(&opts.catalogPath, "catalog", "", "tier catalog YAML (overrides catalog_path)")
	pf.StringVar(&opts.redisURL, "redis", "", "Redis URL for transition events (overrides redis_url)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newRegisterCmd(opts),
		newRecordCmd(opts),
		newRecheckCmd(opts),
		newPlanCmd(opts),
		newLeaderboardCmd(opts),
		newCatalogCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := &rootOptions{level: zap.NewAtomicLevel()}
	if err := newRootCmd(opts).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		stop()
		os.Exit(1)
	}
}
