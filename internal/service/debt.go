package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

// ComputeDebt sums the remaining amount of userID's active orders and of the
// draft orders assigned to them that were never converted. It never looks at
// the debt currently stored on the customer.
func ComputeDebt(orders []domain.Order, temps []domain.TempOrder, userID string) (decimal.Decimal, int) {
	debt := decimal.Zero
	count := 0
	for _, order := range orders {
		if order.UserID != userID || !order.Status.IsActive() {
			continue
		}
		debt = debt.Add(order.RemainingAmount)
		count++
	}
	for _, temp := range temps {
		if temp.AssignedUserID != userID || temp.ParentInvoiceID != "" || temp.Status == domain.StatusCancelled {
			continue
		}
		debt = debt.Add(temp.RemainingAmount)
	}
	return debt, count
}

func (s *Service) recomputeDebt(ctx context.Context, tx store.Tx, userID string) error {
	if userID == "" || strings.HasPrefix(userID, domain.TempCustomerPrefix) {
		return nil
	}

	orders, err := tx.ListOrders(ctx, domain.OrderFilter{UserID: userID})
	if err != nil {
		return err
	}
	temps, err := tx.ListTempOrders(ctx, domain.TempOrderFilter{AssignedUserID: userID, UnconvertedOnly: true})
	if err != nil {
		return err
	}

	debt, count := ComputeDebt(orders, temps, userID)
	if err := tx.UpdateCustomerStats(ctx, userID, debt, count); err != nil {
		return err
	}
	s.metrics.DebtRecomputed()
	return nil
}

func (s *Service) RecomputeCustomerDebt(ctx context.Context, userID string) (domain.Customer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Customer{}, store.ErrInvalidTransaction
	}

	var customer domain.Customer
	err := s.run(ctx, "recompute_debt", func(tx store.Tx) error {
		if _, err := tx.GetCustomer(ctx, userID); err != nil {
			return err
		}
		if err := s.recomputeDebt(ctx, tx, userID); err != nil {
			return err
		}
		updated, err := tx.GetCustomer(ctx, userID)
		if err != nil {
			return err
		}
		customer = *updated
		return nil
	})
	return customer, err
}

// RecomputeAllDebts rebuilds the cached debt of every customer and returns how
// many were processed.
func (s *Service) RecomputeAllDebts(ctx context.Context) (int, error) {
	processed := 0
	err := s.run(ctx, "recompute_all_debts", func(tx store.Tx) error {
		processed = 0
		customers, err := tx.ListCustomers(ctx)
		if err != nil {
			return err
		}
		for _, customer := range customers {
			if err := s.recomputeDebt(ctx, tx, customer.ID); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	return processed, err
}
