package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/madkins23/go-circulation/circulation"
	"github.com/madkins23/go-circulation/config"
	"github.com/madkins23/go-circulation/smoke"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// newRootCommand returns the command that runs the smoke script.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circulation",
		Short: "Load newspaper circulation data into Mongo and exercise it",
		Long: `Load the bundled newspaper circulation dataset into Mongo,
check every repository operation, print the Pulitzer finalist averages
and drop the database again.

Settings are read from CIRCULATION_* environment variables or a .env file:
  CIRCULATION_URI              (default mongodb://localhost:27017)
  CIRCULATION_DATABASE         (default circulation)
  CIRCULATION_COLLECTION       (default newspapers)
  CIRCULATION_LOG_LEVEL        (default info)
  CIRCULATION_CONNECT_TIMEOUT  (default 10s)
  CIRCULATION_REQUEST_TIMEOUT  (default none)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(cmd.Context())
		},
	}

	cmd.AddCommand(newPingCommand())

	return cmd
}

// runSmoke reports failures through the log only, the process exits normally either way.
func runSmoke(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	dataset, err := circulation.Dataset()
	if err != nil {
		return err
	}

	repo := circulation.NewRepository(cfg.Repository(componentLogger(logger, "mdb")))
	report, err := smoke.NewRunner(repo, logger).Run(ctxOrBackground(ctx), dataset)
	if err == nil {
		logger.Info().Int("loaded", report.Loaded).Msg("Smoke run complete")
	}

	return nil
}

func componentLogger(logger zerolog.Logger, component string) *zerolog.Logger {
	l := logger.With().Str("component", component).Logger()
	return &l
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
