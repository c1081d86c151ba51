package postgres_test

import (
	"testing"

	"github.com/goto/salt/log"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/sitecraft/templet/internal/store/postgres"
	"github.com/sitecraft/templet/internal/testutils"
)

const defaultGetMaxSize = 7

func newTestClient(t *testing.T, logger log.Logger) (*postgres.Client, error) {
	t.Helper()

	port, err := testutils.RunTestPG(t, logger)
	if err != nil {
		return nil, err
	}

	cfg := postgres.Config{
		Host:     testutils.PGHost,
		Port:     port,
		Name:     testutils.PGName,
		User:     testutils.PGUsername,
		Password: testutils.PGPassword,
	}

	pgClient, err := postgres.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err := testutils.RunMigrationsWithClient(t, pgClient, cfg); err != nil {
		return nil, err
	}

	t.Cleanup(func() {
		if err := pgClient.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return pgClient, nil
}
