package main

import (
	"fmt"
	"os"

	"github.com/eduflow/eduflow-server/internal/config"
	"github.com/eduflow/eduflow-server/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command needs once configuration has been loaded.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	var logLevel string

	// setup loads configuration and builds the logger; commands call it from RunE so nothing
	// is opened for --help or version.
	setup := func() (*env, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logger, err := logging.New(cfg.Log.Level, cfg.Server.Environment)
		if err != nil {
			return nil, fmt.Errorf("building logger: %w", err)
		}
		return &env{cfg: cfg, logger: logger}, nil
	}

	serveCmd := newServeCmd(setup)

	root := &cobra.Command{
		Use:          "eduflow",
		Short:        "EduFlow admin backend",
		Long:         `EduFlow serves tenant-administrator sign-in, the tenant dashboard and the developer portal.`,
		SilenceUsage: true,
		// serve is the default command.
		RunE: serveCmd.RunE,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("eduflow %s (%s)\n", version, commit)
			},
		},
		serveCmd,
		newMigrateCmd(setup),
		newSeedDeveloperCmd(setup),
		newDeactivateDeveloperCmd(setup),
	)
	return root
}

// run wraps a command body with setup and flushes the logger afterwards.
func run(setup func() (*env, error), body func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()

		if err := body(cmd, args, e); err != nil {
			e.logger.Error("Command failed", zap.String("command", cmd.Name()), zap.Error(err))
			return err
		}
		return nil
	}
}
