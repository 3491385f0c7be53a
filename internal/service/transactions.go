package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// remainingEffect is the signed change a transaction makes to its order's
// remaining amount.
func remainingEffect(kind domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if kind == domain.TransactionPayment {
		return amount.Neg()
	}
	return amount
}

func validTransactionType(kind domain.TransactionType) bool {
	switch kind {
	case domain.TransactionOrder, domain.TransactionPayment, domain.TransactionDebt:
		return true
	default:
		return false
	}
}

func (s *Service) adjustOrderRemaining(ctx context.Context, tx store.Tx, orderID string, effect decimal.Decimal) error {
	order, err := tx.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	order.RemainingAmount = domain.ClampZero(order.RemainingAmount.Add(effect))
	order.UpdatedAt = s.now()
	return tx.UpdateOrder(ctx, *order)
}

// applyTransaction is the single path that moves an order's remaining amount
// for a new ledger entry.
func (s *Service) applyTransaction(ctx context.Context, tx store.Tx, txn domain.Transaction) error {
	if txn.OrderID != "" {
		if err := s.adjustOrderRemaining(ctx, tx, txn.OrderID, remainingEffect(txn.Type, txn.Amount)); err != nil {
			return err
		}
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return err
	}
	return s.recomputeDebt(ctx, tx, txn.CustomerID)
}

func (s *Service) ApplyTransaction(ctx context.Context, req domain.TransactionCreateRequest) (domain.Transaction, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if !validTransactionType(req.Type) || req.Amount.IsZero() {
		return domain.Transaction{}, store.ErrInvalidTransaction
	}
	if req.Type == domain.TransactionPayment && !req.Amount.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("%w: payment amount must be positive", store.ErrInvalidTransaction)
	}
	if req.OrderID == "" && req.CustomerID == "" {
		return domain.Transaction{}, fmt.Errorf("%w: order or customer required", store.ErrInvalidTransaction)
	}

	var created domain.Transaction
	err := s.run(ctx, "apply_transaction", func(tx store.Tx) error {
		txn := domain.Transaction{
			ID:           xid.New("txn"),
			OrderID:      req.OrderID,
			CustomerID:   req.CustomerID,
			CustomerName: req.CustomerName,
			Type:         req.Type,
			Status:       "completed",
			Amount:       req.Amount,
			Date:         s.now(),
			Description:  strings.TrimSpace(req.Description),
		}
		if req.Date != nil {
			txn.Date = req.Date.UTC()
		}

		if txn.OrderID != "" {
			order, err := tx.GetOrder(ctx, txn.OrderID)
			if err != nil {
				return err
			}
			if txn.CustomerID == "" {
				txn.CustomerID = order.UserID
			}
			if txn.CustomerName == "" {
				txn.CustomerName = order.CustomerName
			}
		} else if !strings.HasPrefix(txn.CustomerID, domain.TempCustomerPrefix) {
			if _, err := tx.GetCustomer(ctx, txn.CustomerID); err != nil {
				return err
			}
		}

		if err := s.applyTransaction(ctx, tx, txn); err != nil {
			return err
		}
		created = txn
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logAudit(ctx, "transaction_apply", "transaction", created.ID, fmt.Sprintf("type=%s,amount=%s,order=%s", created.Type, created.Amount, created.OrderID))
	return created, nil
}

// AmendTransaction changes the amount of an existing entry and moves the
// order by the difference only.
func (s *Service) AmendTransaction(ctx context.Context, id string, req domain.TransactionAmendRequest) (domain.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" || req.Amount.IsZero() {
		return domain.Transaction{}, store.ErrInvalidTransaction
	}

	var amended domain.Transaction
	err := s.run(ctx, "amend_transaction", func(tx store.Tx) error {
		txn, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if txn.Type == domain.TransactionPayment && !req.Amount.IsPositive() {
			return fmt.Errorf("%w: payment amount must be positive", store.ErrInvalidTransaction)
		}

		delta := req.Amount.Sub(txn.Amount)
		if txn.OrderID != "" && !delta.IsZero() {
			if err := ignoreNotFound(s.adjustOrderRemaining(ctx, tx, txn.OrderID, remainingEffect(txn.Type, delta))); err != nil {
				return err
			}
		}

		txn.Amount = req.Amount
		if req.Description != nil {
			txn.Description = strings.TrimSpace(*req.Description)
		}
		if err := tx.UpdateTransaction(ctx, *txn); err != nil {
			return err
		}
		amended = *txn
		return s.recomputeDebt(ctx, tx, txn.CustomerID)
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logAudit(ctx, "transaction_amend", "transaction", amended.ID, fmt.Sprintf("amount=%s", amended.Amount))
	return amended, nil
}

// RemoveTransaction deletes an entry and undoes its effect on the order.
func (s *Service) RemoveTransaction(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	var removed domain.Transaction
	err := s.run(ctx, "remove_transaction", func(tx store.Tx) error {
		txn, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if txn.OrderID != "" {
			if err := ignoreNotFound(s.adjustOrderRemaining(ctx, tx, txn.OrderID, remainingEffect(txn.Type, txn.Amount).Neg())); err != nil {
				return err
			}
		}
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		removed = *txn
		return s.recomputeDebt(ctx, tx, txn.CustomerID)
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, "transaction_remove", "transaction", removed.ID, fmt.Sprintf("type=%s,amount=%s", removed.Type, removed.Amount))
	return nil
}

func (s *Service) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if filter.Limit < 1 || filter.Limit > 1000 {
		filter.Limit = 200
	}

	var result []domain.Transaction
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		result, err = tx.ListTransactions(ctx, filter)
		return err
	})
	return result, err
}
