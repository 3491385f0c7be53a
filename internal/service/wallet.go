package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// walletTreasuryCard maps a wallet deposit method onto the LYD treasury card
// that receives the cash.
func walletTreasuryCard(method string) (domain.TreasuryCardType, bool) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "cash":
		return domain.TreasuryCashLibyan, true
	case "bank":
		return domain.TreasuryBank, true
	default:
		return "", false
	}
}

func (s *Service) AddWalletTransaction(ctx context.Context, req domain.WalletTransactionRequest) (domain.WalletTransaction, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || !req.Amount.IsPositive() {
		return domain.WalletTransaction{}, fmt.Errorf("%w: user and a positive amount are required", store.ErrInvalidTransaction)
	}
	if req.Type != domain.MovementDeposit && req.Type != domain.MovementWithdrawal {
		return domain.WalletTransaction{}, fmt.Errorf("%w: unknown movement type", store.ErrInvalidTransaction)
	}

	entry := domain.WalletTransaction{
		ID:            xid.New("wtx"),
		UserID:        req.UserID,
		Amount:        req.Amount,
		Type:          req.Type,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Description:   strings.TrimSpace(req.Description),
		ManagerID:     managerID(ctx, req.ManagerID),
		CreatedAt:     s.now(),
	}

	err := s.run(ctx, "wallet_transaction", func(tx store.Tx) error {
		customer, err := tx.GetCustomer(ctx, req.UserID)
		if err != nil {
			return err
		}

		balance := customer.WalletBalance
		if entry.Type == domain.MovementDeposit {
			balance = balance.Add(entry.Amount)
		} else {
			balance = balance.Sub(entry.Amount)
			if balance.IsNegative() {
				return ErrInsufficientFunds
			}
		}

		if err := tx.InsertWalletTransaction(ctx, entry); err != nil {
			return err
		}
		if err := tx.SetCustomerWalletBalance(ctx, customer.ID, balance); err != nil {
			return err
		}

		if entry.Type != domain.MovementDeposit {
			return nil
		}
		cardType, ok := walletTreasuryCard(entry.PaymentMethod)
		if !ok {
			return nil
		}
		card, err := tx.GetTreasuryCardByType(ctx, cardType)
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Str("customer_id", customer.ID).Str("method", entry.PaymentMethod).Msg("no treasury card for wallet deposit")
			return nil
		}
		if err != nil {
			return err
		}
		_, err = s.recordTreasury(ctx, tx, card, domain.TreasuryTransactionRequest{
			Amount:      entry.Amount,
			Type:        domain.MovementDeposit,
			Description: fmt.Sprintf("Wallet deposit for %s", customer.Username),
		}, false)
		return err
	})
	if err != nil {
		return domain.WalletTransaction{}, err
	}

	s.logAudit(ctx, "wallet_"+string(entry.Type), "customer", entry.UserID, fmt.Sprintf("amount=%s,method=%s", entry.Amount, entry.PaymentMethod))
	return entry, nil
}

func (s *Service) ListWalletTransactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, store.ErrInvalidTransaction
	}

	var entries []domain.WalletTransaction
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetCustomer(ctx, userID); err != nil {
			return err
		}
		var err error
		entries, err = tx.ListWalletTransactions(ctx, userID)
		return err
	})
	return entries, err
}
