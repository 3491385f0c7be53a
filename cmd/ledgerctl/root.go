package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"shipledger/backend/internal/config"
	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/service"
	"shipledger/backend/internal/store"
	pgstore "shipledger/backend/internal/store/postgres"
)

var version = "0.1.0"

// opener connects to the ledger store. The returned func releases it.
type opener func(ctx context.Context, cfg config.Config) (store.Repository, func() error, error)

func openPostgres(ctx context.Context, cfg config.Config) (store.Repository, func() error, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}
	pg, err := pgstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

type cli struct {
	cfg  config.Config
	open opener
}

func newRootCmd(cfg config.Config, open opener) *cobra.Command {
	c := &cli{cfg: cfg, open: open}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Maintenance commands for the shipping ledger",
		Long: `ledgerctl runs maintenance tasks against the ledger database.

Required environment variables:
  DATABASE_URL - Postgres connection string`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		c.migrateCmd(),
		c.recomputeDebtsCmd(),
		c.settingsCmd(),
		c.treasuryCmd(),
	)
	return root
}

// withService opens the store, runs fn with a service bound to an operator
// actor, and closes the store afterwards.
func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	repo, closeFn, err := c.open(ctx, c.cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	svc := service.New(repo, nil, nil)
	ctx = service.WithActor(ctx, domain.Actor{Username: "ledgerctl", Role: "admin"})
	return fn(ctx, svc)
}
