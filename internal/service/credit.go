package service

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// FindBestAllocation covers target from the available cards, largest
// remaining value first. The result only depends on the cards passed in.
func FindBestAllocation(cards []domain.CreditCard, target decimal.Decimal) domain.CardAllocation {
	allocation := domain.CardAllocation{
		Items:     []domain.CardAllocationItem{},
		Covered:   decimal.Zero,
		Remaining: domain.ClampZero(target),
	}
	if !target.IsPositive() {
		return allocation
	}

	type candidate struct {
		card      domain.CreditCard
		remaining decimal.Decimal
	}
	candidates := make([]candidate, 0, len(cards))
	for _, card := range cards {
		if card.DeriveStatus() != domain.CreditAvailable {
			continue
		}
		candidates = append(candidates, candidate{card: card, remaining: card.RemainingValue()})
	}
	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := b.remaining.Cmp(a.remaining); c != 0 {
			return c
		}
		return cmp.Compare(a.card.ID, b.card.ID)
	})

	need := target
	for _, c := range candidates {
		if need.LessThan(domain.Epsilon) {
			break
		}
		take := decimal.Min(c.remaining, need)
		allocation.Items = append(allocation.Items, domain.CardAllocationItem{
			CardID: c.card.ID,
			Code:   c.card.Code,
			Amount: take,
		})
		allocation.Covered = allocation.Covered.Add(take)
		need = need.Sub(take)
	}
	allocation.Remaining = domain.ClampZero(target.Sub(allocation.Covered))
	return allocation
}

func (s *Service) FindBestCardsForAmount(ctx context.Context, req domain.AllocationRequest) (domain.CardAllocation, error) {
	if !req.Amount.IsPositive() {
		return domain.CardAllocation{}, fmt.Errorf("%w: amount must be positive", store.ErrInvalidTransaction)
	}

	var cards []domain.CreditCard
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		cards, err = tx.ListCreditCards(ctx, domain.CreditAvailable)
		return err
	})
	if err != nil {
		return domain.CardAllocation{}, err
	}
	return FindBestAllocation(cards, req.Amount), nil
}

// ConsumeCards records one usage per allocation item against orderID.
func (s *Service) ConsumeCards(ctx context.Context, req domain.ConsumeCardsRequest) ([]domain.CreditCard, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	if req.OrderID == "" || len(req.Items) == 0 {
		return nil, store.ErrInvalidTransaction
	}

	var touched []domain.CreditCard
	err := s.run(ctx, "consume_cards", func(tx store.Tx) error {
		var err error
		touched, err = s.consumeCards(ctx, tx, req.OrderID, req.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "credit_consume", "order", req.OrderID, fmt.Sprintf("cards=%d", len(touched)))
	return touched, nil
}

func (s *Service) consumeCards(ctx context.Context, tx store.Tx, orderID string, items []domain.CardAllocationItem) ([]domain.CreditCard, error) {
	touched := make([]domain.CreditCard, 0, len(items))
	for _, item := range items {
		if !item.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: allocation amount must be positive", store.ErrInvalidTransaction)
		}
		card, err := tx.GetCreditCard(ctx, item.CardID)
		if err != nil {
			return nil, err
		}
		if card.DeriveStatus() != domain.CreditAvailable {
			s.log.Warn().Str("card_id", card.ID).Str("order_id", orderID).Msg("skipping store credit card that is no longer available")
			continue
		}

		usage, err := s.useCard(ctx, tx, card, orderID, decimal.Min(item.Amount, card.RemainingValue()))
		if err != nil {
			return nil, err
		}
		if usage.Amount.IsPositive() {
			touched = append(touched, *card)
		}
	}
	return touched, nil
}

// useCard appends a usage record and refreshes the card status. card is
// updated in place.
func (s *Service) useCard(ctx context.Context, tx store.Tx, card *domain.CreditCard, orderID string, amount decimal.Decimal) (domain.CardUsage, error) {
	usage := domain.CardUsage{
		ID:      xid.New("usage"),
		CardID:  card.ID,
		OrderID: orderID,
		Amount:  amount,
		UsedAt:  s.now(),
	}
	if !amount.IsPositive() {
		return usage, nil
	}
	if err := tx.InsertCardUsage(ctx, usage); err != nil {
		return domain.CardUsage{}, err
	}
	card.Usages = append(card.Usages, usage)
	if status := card.DeriveStatus(); status != card.Status {
		if err := tx.SetCreditCardStatus(ctx, card.ID, status); err != nil {
			return domain.CardUsage{}, err
		}
		card.Status = status
	}
	return usage, nil
}

// ProcessCostDeduction pays an order's USD purchase cost, from the selected
// card first and from the cash_dollar treasury card for the rest.
func (s *Service) ProcessCostDeduction(ctx context.Context, req domain.CostDeductionRequest) (domain.CostDeductionResult, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.CardID = strings.TrimSpace(req.CardID)
	if req.OrderID == "" || !req.TotalCost.IsPositive() {
		return domain.CostDeductionResult{}, store.ErrInvalidTransaction
	}
	if req.InvoiceNumber == "" {
		req.InvoiceNumber = req.OrderID
	}

	result := domain.CostDeductionResult{CardID: req.CardID, FromCard: decimal.Zero, FromTreasury: decimal.Zero}
	err := s.run(ctx, "process_cost_deduction", func(tx store.Tx) error {
		result.FromCard = decimal.Zero
		result.FromTreasury = decimal.Zero

		rest := req.TotalCost
		if req.CardID != "" {
			card, err := tx.GetCreditCard(ctx, req.CardID)
			if err != nil {
				return err
			}
			if card.DeriveStatus() == domain.CreditAvailable {
				usage, err := s.useCard(ctx, tx, card, req.OrderID, decimal.Min(card.RemainingValue(), req.TotalCost))
				if err != nil {
					return err
				}
				result.FromCard = usage.Amount
				rest = rest.Sub(usage.Amount)
			} else {
				s.log.Warn().Str("card_id", card.ID).Str("order_id", req.OrderID).Msg("selected store credit card is not available, charging treasury")
			}
		}

		rest = domain.Round2(rest)
		if !rest.IsPositive() {
			return nil
		}
		cashCard, err := tx.GetTreasuryCardByType(ctx, domain.TreasuryCashDollar)
		if err != nil {
			return err
		}
		if _, err := s.recordTreasury(ctx, tx, cashCard, domain.TreasuryTransactionRequest{
			Amount:      rest,
			Type:        domain.MovementWithdrawal,
			Description: fmt.Sprintf("Purchase cost for order %s", req.InvoiceNumber),
			OrderID:     req.OrderID,
			Kind:        domain.EntryPurchaseCost,
		}, true); err != nil {
			return err
		}
		result.FromTreasury = rest
		return nil
	})
	if err != nil {
		return domain.CostDeductionResult{}, err
	}

	s.logAudit(ctx, "cost_deduction", "order", req.OrderID, fmt.Sprintf("card=%s,from_card=%s,from_treasury=%s", req.CardID, result.FromCard, result.FromTreasury))
	return result, nil
}

// ReverseCreditUsage marks every live usage for orderID as reversed and
// returns the total value given back to the cards.
func (s *Service) ReverseCreditUsage(ctx context.Context, orderID string) (decimal.Decimal, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return decimal.Zero, store.ErrInvalidTransaction
	}

	restored := decimal.Zero
	err := s.run(ctx, "reverse_credit_usage", func(tx store.Tx) error {
		var err error
		restored, err = s.reverseCreditUsage(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logAudit(ctx, "credit_reverse", "order", orderID, fmt.Sprintf("restored=%s", restored))
	return restored, nil
}

func (s *Service) reverseCreditUsage(ctx context.Context, tx store.Tx, orderID string) (decimal.Decimal, error) {
	reversed, err := tx.ReverseCardUsagesForOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	restored := decimal.Zero
	cardIDs := make([]string, 0, len(reversed))
	for _, usage := range reversed {
		restored = restored.Add(usage.Amount)
		if !slices.Contains(cardIDs, usage.CardID) {
			cardIDs = append(cardIDs, usage.CardID)
		}
	}
	for _, cardID := range cardIDs {
		card, err := tx.GetCreditCard(ctx, cardID)
		if err != nil {
			return decimal.Zero, err
		}
		if status := card.DeriveStatus(); status != card.Status {
			if err := tx.SetCreditCardStatus(ctx, card.ID, status); err != nil {
				return decimal.Zero, err
			}
		}
	}

	if restored.IsPositive() {
		s.log.Warn().
			Str("order_id", orderID).
			Str("restored", restored.String()).
			Int("cards", len(cardIDs)).
			Msg("store credit consumed for order was restored")
	}
	return restored, nil
}

// refundPurchaseCost deposits back whatever cash_dollar still carries as
// purchase cost for orderID, net of earlier refunds.
func (s *Service) refundPurchaseCost(ctx context.Context, tx store.Tx, orderID string, invoiceNumber string) (decimal.Decimal, error) {
	entries, err := tx.ListTreasuryTransactionsForOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	owed := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		switch entry.Kind {
		case domain.EntryPurchaseCost:
			owed[entry.CardID] = owed[entry.CardID].Add(entry.Amount)
		case domain.EntryPurchaseCostRefund:
			owed[entry.CardID] = owed[entry.CardID].Sub(entry.Amount)
		}
	}

	refunded := decimal.Zero
	for _, cardID := range slices.Sorted(maps.Keys(owed)) {
		amount := domain.Round2(owed[cardID])
		if !amount.IsPositive() {
			continue
		}
		card, err := tx.GetTreasuryCard(ctx, cardID)
		if err != nil {
			return decimal.Zero, err
		}
		if _, err := s.recordTreasury(ctx, tx, card, domain.TreasuryTransactionRequest{
			Amount:      amount,
			Type:        domain.MovementDeposit,
			Description: fmt.Sprintf("Refund of purchase cost for order %s", invoiceNumber),
			OrderID:     orderID,
			Kind:        domain.EntryPurchaseCostRefund,
		}, true); err != nil {
			return decimal.Zero, err
		}
		refunded = refunded.Add(amount)
	}
	return refunded, nil
}

func (s *Service) CreateCreditCard(ctx context.Context, req domain.CreditCardCreateRequest) (domain.CreditCard, error) {
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || !req.Value.IsPositive() {
		return domain.CreditCard{}, store.ErrInvalidTransaction
	}
	if req.Currency == "" {
		req.Currency = domain.CurrencyUSD
	}
	if req.Currency != domain.CurrencyUSD && req.Currency != domain.CurrencyLYD {
		return domain.CreditCard{}, fmt.Errorf("%w: unknown currency %q", store.ErrInvalidTransaction, req.Currency)
	}

	card := domain.CreditCard{
		ID:           xid.New("card"),
		Code:         req.Code,
		Value:        req.Value,
		Currency:     req.Currency,
		Status:       domain.CreditAvailable,
		PurchaseDate: s.now(),
		ExpiryDate:   req.ExpiryDate,
		Notes:        strings.TrimSpace(req.Notes),
		Usages:       []domain.CardUsage{},
	}
	if req.PurchaseDate != nil {
		card.PurchaseDate = req.PurchaseDate.UTC()
	}

	var created domain.CreditCard
	err := s.run(ctx, "create_credit_card", func(tx store.Tx) error {
		saved, err := tx.CreateCreditCard(ctx, card)
		if err != nil {
			return err
		}
		created = *saved
		return nil
	})
	if err != nil {
		return domain.CreditCard{}, err
	}

	s.logAudit(ctx, "credit_card_create", "credit_card", created.ID, fmt.Sprintf("code=%s,value=%s", created.Code, created.Value))
	return created, nil
}

func (s *Service) ListCreditCards(ctx context.Context, status domain.CreditCardStatus) ([]domain.CreditCard, error) {
	switch status {
	case "", domain.CreditAvailable, domain.CreditUsed, domain.CreditExpired:
	default:
		return nil, store.ErrInvalidTransaction
	}

	var cards []domain.CreditCard
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		cards, err = tx.ListCreditCards(ctx, status)
		return err
	})
	return cards, err
}

func (s *Service) DeleteCreditCard(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	err := s.run(ctx, "delete_credit_card", func(tx store.Tx) error {
		return tx.DeleteCreditCard(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, "credit_card_delete", "credit_card", id, "")
	return nil
}
