package cli

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/log"
	"github.com/sitecraft/templet/internal/store/postgres"
	"github.com/spf13/cobra"
)

func cmdMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run storage migration",
		Example: heredoc.Doc(`
			$ templet migrate
		`),
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"group:core": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil && cfg == nil {
				return err
			}
			return runMigrations(*cfg)
		},
	}
}

func runMigrations(cfg Config) error {
	fmt.Println("Preparing migration...")

	logger := initLogger(cfg.LogLevel)
	logger.Info("templet is migrating", "version", Version)

	logger.Info("Migrating Postgres...")
	if err := migratePostgres(logger, cfg); err != nil {
		return err
	}
	logger.Info("Migration Postgres done.")
	return nil
}

func migratePostgres(logger log.Logger, cfg Config) error {
	logger.Info("Initiating Postgres client...")

	pgClient, err := postgres.NewClient(cfg.DB)
	if err != nil {
		logger.Error("failed to prepare migration", "error", err)
		return err
	}
	defer pgClient.Close()

	if _, err := pgClient.Migrate(cfg.DB); err != nil {
		return fmt.Errorf("problem with migration %w", err)
	}
	return nil
}

func initLogger(logLevel string) *log.Logrus {
	logger := log.NewLogrus(
		log.LogrusWithLevel(logLevel),
		log.LogrusWithWriter(os.Stdout),
	)
	return logger
}
