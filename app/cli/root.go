package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yoockh/wacrm/config"
	"github.com/yoockh/wacrm/internal/logger"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wacrm",
		Short:         "Operator tools for the WhatsApp CRM backend",
		SilenceUsage: true,
	}
	cmd.AddCommand(newMigrateCmd(), newCredentialCmd(), newPreferencesCmd())
	return cmd
}

type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *logrus.Logger
}

func connect() (*env, error) {
	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.InitPostgres(cfg.Postgres); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: config.PostgresDB, log: logger.New(cfg.LogLevel)}, nil
}
