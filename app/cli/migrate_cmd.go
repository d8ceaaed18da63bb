package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/yoockh/wacrm/config"
)

func newMigrateCmd() *cobra.Command {
	var withMongo bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres tables (and Mongo indexes with --mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}

			start := time.Now()
			if err := config.Migrate(e.db); err != nil {
				return err
			}

			mongoDone := false
			if withMongo {
				if err := config.InitMongo(e.cfg.Mongo); err != nil {
					return err
				}
				defer func() { _ = config.MongoClient.Disconnect(cmd.Context()) }()
				if err := config.EnsureMongoIndexes(e.cfg.Mongo); err != nil {
					return err
				}
				mongoDone = true
			}

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"command":     "migrate",
				"duration_ms": time.Since(start).Milliseconds(),
				"postgres":    true,
				"mongo":       mongoDone,
			})
		},
	}

	cmd.Flags().BoolVar(&withMongo, "mongo", false, "Also create the reply_traces indexes")
	return cmd
}
