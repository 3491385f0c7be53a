package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

func openTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	databaseURL := os.Getenv("SHIPLEDGER_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set SHIPLEDGER_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := RunMigrations(s.DB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return s, ctx
}

func TestOrderRoundTripAndRollback(t *testing.T) {
	s, ctx := openTestStore(t)

	stamp := time.Now().UnixNano()
	customerID := fmt.Sprintf("cus-it-%d", stamp)
	orderID := fmt.Sprintf("ord-it-%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM transactions WHERE customer_id = $1`, customerID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM orders WHERE user_id = $1`, customerID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	})

	err := s.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.CreateCustomer(ctx, domain.Customer{ID: customerID, Username: fmt.Sprintf("it-%d", stamp), Name: "Integration"}); err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.InsertOrder(ctx, domain.Order{
			ID:              orderID,
			InvoiceNumber:   fmt.Sprintf("it-%d-001", stamp),
			SequenceNumber:  1,
			UserID:          customerID,
			OperationDate:   now,
			Status:          domain.StatusPending,
			SellingPriceLYD: decimal.NewFromInt(100),
			RemainingAmount: decimal.NewFromInt(100),
			ExchangeRate:    decimal.NewFromInt(5),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	rollback := errors.New("rollback")
	err = s.InTx(ctx, func(tx store.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		order.RemainingAmount = decimal.Zero
		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	err = s.InTx(ctx, func(tx store.Tx) error {
		latest, err := tx.LatestOrderForCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if !latest.RemainingAmount.Equal(decimal.NewFromInt(100)) {
			return fmt.Errorf("expected remaining 100 after rollback, got %s", latest.RemainingAmount)
		}
		if latest.RepresentativeID != "" || latest.DeliveryDate != nil {
			return fmt.Errorf("expected empty nullable columns, got %q %v", latest.RepresentativeID, latest.DeliveryDate)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify order: %v", err)
	}
}

func TestConcurrentTreasuryUpdatesConflict(t *testing.T) {
	s, ctx := openTestStore(t)

	var cardID string
	var before decimal.Decimal
	if err := s.InTx(ctx, func(tx store.Tx) error {
		card, err := tx.GetTreasuryCardByType(ctx, domain.TreasuryCashLibyan)
		if err != nil {
			return err
		}
		cardID = card.ID
		before = card.Balance
		return nil
	}); err != nil {
		t.Fatalf("load seeded treasury card: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `UPDATE treasury_cards SET balance = $2 WHERE id = $1`, cardID, before)
	})

	const workers = 4
	var wg sync.WaitGroup
	committed := make(chan struct{}, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for attempt := 0; attempt < 20; attempt++ {
				err := s.InTx(ctx, func(tx store.Tx) error {
					card, err := tx.GetTreasuryCard(ctx, cardID)
					if err != nil {
						return err
					}
					return tx.SetTreasuryBalance(ctx, cardID, card.Balance.Add(decimal.NewFromInt(1)))
				})
				if err == nil {
					committed <- struct{}{}
					return
				}
				if !errors.Is(err, store.ErrConflict) {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(committed)

	count := 0
	for range committed {
		count++
	}

	var after decimal.Decimal
	if err := s.db.QueryRowContext(ctx, `SELECT balance FROM treasury_cards WHERE id = $1`, cardID).Scan(&after); err != nil {
		t.Fatalf("query balance: %v", err)
	}
	if !after.Sub(before).Equal(decimal.NewFromInt(int64(count))) {
		t.Fatalf("expected balance to grow by %d, got %s -> %s", count, before, after)
	}
}

func TestSettingsUpsertAndCardUsageReversal(t *testing.T) {
	s, ctx := openTestStore(t)

	stamp := time.Now().UnixNano()
	code := fmt.Sprintf("IT-%d", stamp)
	orderID := fmt.Sprintf("ord-it-%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE code = $1`, code)
	})

	err := s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.SaveSettings(ctx, domain.DefaultSettings()); err != nil {
			return err
		}
		settings, err := tx.GetSettings(ctx)
		if err != nil {
			return err
		}
		if !settings.ExchangeRate.Equal(domain.DefaultExchangeRate) {
			return fmt.Errorf("expected default rate, got %s", settings.ExchangeRate)
		}

		card, err := tx.CreateCreditCard(ctx, domain.CreditCard{
			Code:         code,
			Value:        decimal.NewFromInt(30),
			Currency:     domain.CurrencyUSD,
			Status:       domain.CreditAvailable,
			PurchaseDate: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if err := tx.InsertCardUsage(ctx, domain.CardUsage{ID: fmt.Sprintf("usage-it-%d", stamp), CardID: card.ID, OrderID: orderID, Amount: decimal.NewFromInt(30), UsedAt: time.Now().UTC()}); err != nil {
			return err
		}
		reversed, err := tx.ReverseCardUsagesForOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if len(reversed) != 1 || !reversed[0].Reversed {
			return fmt.Errorf("expected one reversed usage, got %+v", reversed)
		}
		loaded, err := tx.GetCreditCard(ctx, card.ID)
		if err != nil {
			return err
		}
		if !loaded.RemainingValue().Equal(decimal.NewFromInt(30)) {
			return fmt.Errorf("expected full value after reversal, got %s", loaded.RemainingValue())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("settings and card usage: %v", err)
	}
}
