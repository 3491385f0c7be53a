package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// Distribute deposits a down payment into the treasury card for method.
// cash_dollar converts at the current rate in pc. A false result with a nil
// error is a business refusal that was already logged.
func (s *Service) Distribute(ctx context.Context, tx store.Tx, pc domain.PricingContext, orderID string, invoiceNumber string, method domain.PaymentMethod, amountLYD decimal.Decimal) (bool, error) {
	if !amountLYD.IsPositive() {
		return true, nil
	}
	return s.moveTreasury(ctx, tx, treasuryMove{
		orderID:     orderID,
		method:      method,
		amountLYD:   amountLYD,
		rate:        pc.GetExchangeRate(),
		direction:   domain.MovementDeposit,
		description: fmt.Sprintf("Down payment for order %s", invoiceNumber),
	})
}

// Reverse withdraws what Distribute deposited. cash_dollar converts at the
// order's snapshot rate; the current rate is only a fallback for orders that
// never stored one.
func (s *Service) Reverse(ctx context.Context, tx store.Tx, pc domain.PricingContext, orderID string, invoiceNumber string, method domain.PaymentMethod, amountLYD decimal.Decimal, snapshotRate decimal.Decimal) (bool, error) {
	if !amountLYD.IsPositive() {
		return true, nil
	}

	rate := snapshotRate
	if method == domain.PaymentCashDollar && !rate.IsPositive() {
		s.log.Warn().
			Str("order_id", orderID).
			Str("method", string(method)).
			Str("current_rate", pc.GetExchangeRate().String()).
			Msg("order has no exchange rate snapshot, reversing at current rate")
		rate = pc.GetExchangeRate()
	}

	return s.moveTreasury(ctx, tx, treasuryMove{
		orderID:     orderID,
		method:      method,
		amountLYD:   amountLYD,
		rate:        rate,
		direction:   domain.MovementWithdrawal,
		description: fmt.Sprintf("Reversal of down payment for order %s", invoiceNumber),
	})
}

type treasuryMove struct {
	orderID     string
	method      domain.PaymentMethod
	amountLYD   decimal.Decimal
	rate        decimal.Decimal
	direction   domain.MovementType
	description string
}

func (s *Service) moveTreasury(ctx context.Context, tx store.Tx, move treasuryMove) (bool, error) {
	cardType, ok := domain.TreasuryCardTypeFor(move.method)
	if !ok {
		s.log.Warn().Str("order_id", move.orderID).Str("method", string(move.method)).Msg("treasury refused: unknown payment method")
		s.metrics.TreasuryRefused("unknown_method")
		return false, nil
	}

	amount := move.amountLYD
	if cardType == domain.TreasuryCashDollar {
		if !domain.UsableRate(move.rate) {
			s.log.Warn().
				Str("order_id", move.orderID).
				Str("method", string(move.method)).
				Str("rate", move.rate.String()).
				Msg("treasury refused: exchange rate must be greater than 1")
			s.metrics.TreasuryRefused("invalid_rate")
			return false, nil
		}
		amount = domain.Round2(move.amountLYD.Div(move.rate))
	}

	card, err := tx.GetTreasuryCardByType(ctx, cardType)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn().Str("order_id", move.orderID).Str("card_type", string(cardType)).Msg("treasury refused: no card for payment channel")
		s.metrics.TreasuryRefused("missing_card")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := s.recordTreasury(ctx, tx, card, domain.TreasuryTransactionRequest{
		Amount:      amount,
		Type:        move.direction,
		Description: move.description,
		OrderID:     move.orderID,
	}, true); err != nil {
		return false, err
	}
	return true, nil
}

// recordTreasury changes the card balance and logs the movement together.
func (s *Service) recordTreasury(ctx context.Context, tx store.Tx, card *domain.TreasuryCard, req domain.TreasuryTransactionRequest, allowOverdraw bool) (domain.TreasuryTransaction, error) {
	if !req.Amount.IsPositive() {
		return domain.TreasuryTransaction{}, fmt.Errorf("%w: amount must be positive", store.ErrInvalidTransaction)
	}

	balance := card.Balance
	switch req.Type {
	case domain.MovementDeposit:
		balance = balance.Add(req.Amount)
	case domain.MovementWithdrawal:
		balance = balance.Sub(req.Amount)
		if balance.IsNegative() && !allowOverdraw {
			return domain.TreasuryTransaction{}, ErrInsufficientFunds
		}
	default:
		return domain.TreasuryTransaction{}, fmt.Errorf("%w: unknown movement type", store.ErrInvalidTransaction)
	}

	entry := domain.TreasuryTransaction{
		ID:          xid.New("ttx"),
		CardID:      card.ID,
		Amount:      req.Amount,
		Type:        req.Type,
		Kind:        req.Kind,
		Description: strings.TrimSpace(req.Description),
		OrderID:     req.OrderID,
		CreatedAt:   s.now(),
	}
	if err := tx.SetTreasuryBalance(ctx, card.ID, balance); err != nil {
		return domain.TreasuryTransaction{}, err
	}
	if err := tx.InsertTreasuryTransaction(ctx, entry); err != nil {
		return domain.TreasuryTransaction{}, err
	}
	card.Balance = balance

	s.metrics.TreasuryMovement(string(card.Type), string(req.Type))
	return entry, nil
}

// RecordTreasuryTransaction is the manual deposit and withdrawal entry point.
// Manual withdrawals may not take a card below zero.
func (s *Service) RecordTreasuryTransaction(ctx context.Context, cardID string, req domain.TreasuryTransactionRequest) (domain.TreasuryTransaction, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return domain.TreasuryTransaction{}, store.ErrInvalidTransaction
	}

	req.Kind = ""

	var entry domain.TreasuryTransaction
	err := s.run(ctx, "record_treasury_transaction", func(tx store.Tx) error {
		card, err := tx.GetTreasuryCard(ctx, cardID)
		if err != nil {
			return err
		}
		entry, err = s.recordTreasury(ctx, tx, card, req, false)
		return err
	})
	if err != nil {
		return domain.TreasuryTransaction{}, err
	}

	s.logAudit(ctx, "treasury_"+string(entry.Type), "treasury_card", cardID, fmt.Sprintf("amount=%s", entry.Amount))
	return entry, nil
}

func (s *Service) CreateTreasuryCard(ctx context.Context, req domain.TreasuryCardCreateRequest) (domain.TreasuryCard, error) {
	req.Name = strings.TrimSpace(req.Name)
	currency := domain.CurrencyLYD
	switch req.Type {
	case domain.TreasuryCashLibyan, domain.TreasuryBank:
	case domain.TreasuryCashDollar:
		currency = domain.CurrencyUSD
	default:
		return domain.TreasuryCard{}, fmt.Errorf("%w: unknown card type", store.ErrInvalidTransaction)
	}
	if req.Name == "" {
		return domain.TreasuryCard{}, store.ErrInvalidTransaction
	}

	var created domain.TreasuryCard
	err := s.run(ctx, "create_treasury_card", func(tx store.Tx) error {
		if _, err := tx.GetTreasuryCardByType(ctx, req.Type); err == nil {
			return fmt.Errorf("%w: a %s card already exists", store.ErrInvalidTransaction, req.Type)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		card, err := tx.CreateTreasuryCard(ctx, domain.TreasuryCard{
			ID:        xid.New("treasury"),
			Name:      req.Name,
			Type:      req.Type,
			Currency:  currency,
			Balance:   decimal.Zero,
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		created = *card
		return nil
	})
	if err != nil {
		return domain.TreasuryCard{}, err
	}

	s.logAudit(ctx, "treasury_card_create", "treasury_card", created.ID, string(created.Type))
	return created, nil
}

func (s *Service) ListTreasuryCards(ctx context.Context) ([]domain.TreasuryCard, error) {
	var cards []domain.TreasuryCard
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		cards, err = tx.ListTreasuryCards(ctx)
		return err
	})
	return cards, err
}

func (s *Service) ListTreasuryTransactions(ctx context.Context, cardID string, limit int) ([]domain.TreasuryTransaction, error) {
	if limit < 1 || limit > 1000 {
		limit = 200
	}

	var entries []domain.TreasuryTransaction
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		if cardID != "" {
			if _, err := tx.GetTreasuryCard(ctx, cardID); err != nil {
				return err
			}
		}
		var err error
		entries, err = tx.ListTreasuryTransactions(ctx, cardID, limit)
		return err
	})
	return entries, err
}

// VerifyTreasury compares every card balance with the signed sum of its
// logged movements.
func (s *Service) VerifyTreasury(ctx context.Context) ([]domain.TreasuryDrift, error) {
	var report []domain.TreasuryDrift
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		cards, err := tx.ListTreasuryCards(ctx)
		if err != nil {
			return err
		}
		report = make([]domain.TreasuryDrift, 0, len(cards))
		for _, card := range cards {
			entries, err := tx.ListTreasuryTransactions(ctx, card.ID, 0)
			if err != nil {
				return err
			}
			sum := decimal.Zero
			for _, entry := range entries {
				if entry.Type == domain.MovementWithdrawal {
					sum = sum.Sub(entry.Amount)
				} else {
					sum = sum.Add(entry.Amount)
				}
			}
			drift := card.Balance.Sub(sum)
			if !drift.IsZero() {
				s.log.Warn().Str("card_id", card.ID).Str("drift", drift.String()).Msg("treasury balance drifted from its log")
			}
			report = append(report, domain.TreasuryDrift{
				CardID:    card.ID,
				Balance:   card.Balance,
				LedgerSum: sum,
				Drift:     drift,
			})
		}
		return nil
	})
	return report, err
}
