package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/logger"
	"shipledger/backend/internal/service"
	pgstore "shipledger/backend/internal/store/postgres"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL environment variable is required")
			}
			pg, err := pgstore.New(cmd.Context(), c.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := pgstore.RunMigrations(pg.DB()); err != nil {
				return err
			}
			logger.WithComponent("ledgerctl").Info().Msg("migrations applied")
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func (c *cli) recomputeDebtsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-debts [customer-id...]",
		Short: "Rebuild customer debt from remaining order amounts",
		Example: `  # Every customer
  ledgerctl recompute-debts

  # Selected customers
  ledgerctl recompute-debts cus-1 cus-2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					count, err := svc.RecomputeAllDebts(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "recomputed %d customers\n", count)
					return nil
				}
				for _, id := range args {
					customer, err := svc.RecomputeCustomerDebt(ctx, id)
					if err != nil {
						return fmt.Errorf("recompute %s: %w", id, err)
					}
					fmt.Fprintf(out, "%s\t%s\n", customer.ID, customer.Debt.StringFixed(2))
				}
				return nil
			})
		},
	}
}

func (c *cli) settingsCmd() *cobra.Command {
	settings := &cobra.Command{
		Use:   "settings",
		Short: "Show or change pricing settings",
	}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current pricing settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				current, err := svc.GetSettings(ctx)
				if err != nil {
					return err
				}
				printSettings(cmd, current)
				return nil
			})
		},
	})

	set := &cobra.Command{
		Use:   "set",
		Short: "Update pricing settings",
		Example: `  ledgerctl settings set --exchange-rate 7.25
  ledgerctl settings set --shipping-cost 4.5 --shipping-price 6`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := settingsRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				updated, err := svc.UpdateSettings(ctx, req)
				if err != nil {
					return err
				}
				printSettings(cmd, updated)
				return nil
			})
		},
	}
	set.Flags().String("exchange-rate", "", "LYD per USD")
	set.Flags().String("shipping-cost", "", "Company shipping cost per kilo in USD")
	set.Flags().String("shipping-price", "", "Customer shipping price per kilo in USD")
	settings.AddCommand(set)

	return settings
}

func settingsRequestFromFlags(cmd *cobra.Command) (domain.SettingsUpdateRequest, error) {
	var req domain.SettingsUpdateRequest
	for flag, dest := range map[string]**decimal.Decimal{
		"exchange-rate":  &req.ExchangeRate,
		"shipping-cost":  &req.ShippingCostUSD,
		"shipping-price": &req.ShippingPriceUSD,
	} {
		raw, _ := cmd.Flags().GetString(flag)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return req, fmt.Errorf("invalid --%s: %w", flag, err)
		}
		*dest = &value
	}
	if req.ExchangeRate == nil && req.ShippingCostUSD == nil && req.ShippingPriceUSD == nil {
		return req, errors.New("at least one of --exchange-rate, --shipping-cost or --shipping-price is required")
	}
	return req, nil
}

func printSettings(cmd *cobra.Command, s domain.Settings) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "exchange_rate\t%s\n", s.ExchangeRate.String())
	fmt.Fprintf(w, "shipping_cost_usd\t%s\n", s.ShippingCostUSD.String())
	fmt.Fprintf(w, "shipping_price_usd\t%s\n", s.ShippingPriceUSD.String())
	w.Flush()
}

func (c *cli) treasuryCmd() *cobra.Command {
	treasury := &cobra.Command{
		Use:   "treasury",
		Short: "Inspect treasury cards",
	}

	treasury.AddCommand(&cobra.Command{
		Use:   "balances",
		Short: "Print every treasury card balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				cards, err := svc.ListTreasuryCards(ctx)
				if err != nil {
					return err
				}
				slices.SortFunc(cards, func(a, b domain.TreasuryCard) int {
					return strings.Compare(a.ID, b.ID)
				})
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTYPE\tCURRENCY\tBALANCE")
				for _, card := range cards {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", card.ID, card.Type, card.Currency, card.Balance.StringFixed(2))
				}
				return w.Flush()
			})
		},
	})

	treasury.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Compare card balances with their movement history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				report, err := svc.VerifyTreasury(ctx)
				if err != nil {
					return err
				}
				drifted := 0
				for _, d := range report {
					if d.Drift.IsZero() {
						continue
					}
					drifted++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tbalance=%s\tledger=%s\tdrift=%s\n", d.CardID, d.Balance.StringFixed(2), d.LedgerSum.StringFixed(2), d.Drift.StringFixed(2))
				}
				if drifted == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "treasury consistent")
					return nil
				}
				return fmt.Errorf("%d treasury cards drifted", drifted)
			})
		},
	})

	return treasury
}
