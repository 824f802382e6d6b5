package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/recipebox/internal/dbinit"
)

func dbinitCmd() *cobra.Command {
	var (
		uri     string
		name    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dbinit",
		Args:  noArgs,
		Short: "Provision the recipe platform database",
		Long: `Create the recipes and users collections with their validators,
then their indexes. Running it again updates the validators.

Examples:
  recipebox dbinit
  recipebox dbinit --uri=mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if uri != "" {
				cfg.Database.URI = uri
			}
			if name != "" {
				cfg.Database.Name = name
			}
			logger := newLogger(os.Stderr, cfg.Log)

			ctx := cmd.Context()
			client, err := dbinit.Connect(ctx, cfg.Database.URI, timeout)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			logger.Info("provisioning database", "database", cfg.Database.Name)
			target := dbinit.NewMongoTarget(client.Database(cfg.Database.Name))
			return dbinit.Apply(ctx, target, dbinit.Schema(), logger)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "MongoDB connection URI (default from config)")
	cmd.Flags().StringVar(&name, "db", "", "Database name (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Connection timeout")

	return cmd
}
