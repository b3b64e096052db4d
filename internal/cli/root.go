// Package cli provides the command-line interface for pagestore.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sushant-115/pagestore/core/database"
	"github.com/sushant-115/pagestore/internal/config"
	"github.com/sushant-115/pagestore/pkg/logger"
	"github.com/sushant-115/pagestore/pkg/telemetry"
)

// Version information (set at build time).
var Version = "0.1.0"

// session is what PersistentPreRunE builds for a command that needs the store.
type session struct {
	cfgFile  string
	cfg      *config.Config
	log      *zap.Logger
	db       *database.Database
	shutdown telemetry.ShutdownFunc
}

// needsStore reports whether cmd operates on a database.
func needsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete", "version", "init":
		return false
	}
	return true
}

func (s *session) open(cmd *cobra.Command) error {
	cfg, err := config.Load(s.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	s.cfg = cfg

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	s.log = log

	tel, shutdown, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		return err
	}
	s.shutdown = shutdown

	db, err := database.Open(database.Options{
		Dir:       cfg.DataDir,
		Name:      cfg.Database,
		Logger:    log,
		Telemetry: tel,
	})
	if err != nil {
		return fmt.Errorf("failed to open database %q: %w", cfg.Database, err)
	}
	s.db = db
	return nil
}

func (s *session) close(ctx context.Context) error {
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.shutdown != nil {
		if err := s.shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.log != nil {
		_ = s.log.Sync()
	}
	return firstErr
}

func (s *session) runner(cmd *cobra.Command) *runner {
	return &runner{db: s.db, out: cmd.OutOrStdout(), format: s.cfg.Output}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "pagestore",
		Short: "pagestore - a paged, file-backed record store",
		Long: `pagestore keeps fixed-shape records of user-defined types in plain text
files: one catalog file listing the types and one data file per type, each
line of which is a page of up to 20 records.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsStore(cmd) {
				return nil
			}
			return s.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return s.close(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.cfgFile, "config", "", "config file (default: ./pagestore.yaml)")
	flags.String("data-dir", "", "Directory holding the catalog and data files")
	flags.String("database", "", "Database name (selects <name>.catalog.txt)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (console|json)")
	flags.String("log-file", "", "Log destination (stderr|stdout|<path>)")
	flags.Bool("telemetry", false, "Enable metrics and tracing")
	flags.Int("metrics-port", 0, "Port for the Prometheus /metrics endpoint")
	flags.StringP("output", "o", "", "Output format (table|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	for _, c := range commandTable {
		rootCmd.AddCommand(newStoreCommand(s, c))
	}
	rootCmd.AddCommand(newShellCommand(s))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
