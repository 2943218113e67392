package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/madkins23/go-circulation/config"
	"github.com/madkins23/go-circulation/mdb"
)

// newPingCommand returns the command that checks the Mongo connection.
func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "ping",
		Short:         "Connect to the configured Mongo database and disconnect again",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.Logger()

			ctx := ctxOrBackground(cmd.Context())
			access, err := mdb.Connect(ctx, cfg.Database, cfg.Access(componentLogger(logger, "mdb")))
			if err != nil {
				return fmt.Errorf("unable to connect to %s: %w", cfg.Database, err)
			} else if err := access.Disconnect(ctx); err != nil {
				return fmt.Errorf("unable to disconnect from %s: %w", cfg.Database, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s at %s\n", cfg.Database, cfg.URI)
			return nil
		},
	}
}
