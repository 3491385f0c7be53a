package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

// ResetFinancialReports wipes the money logs, zeroes every treasury card and
// recomputes customer debt from the orders that remain.
func (s *Service) ResetFinancialReports(ctx context.Context, req domain.ResetRequest) (domain.ResetResponse, error) {
	if !req.Confirm {
		return domain.ResetResponse{}, ErrConfirmationRequired
	}

	var resp domain.ResetResponse
	err := s.run(ctx, "reset_financial_reports", func(tx store.Tx) error {
		resp = domain.ResetResponse{}
		var err error
		if resp.TransactionsRemoved, err = tx.DeleteAllTransactions(ctx); err != nil {
			return err
		}
		if resp.TreasuryTransactionsRemoved, err = tx.DeleteAllTreasuryTransactions(ctx); err != nil {
			return err
		}
		if resp.WalletTransactionsRemoved, err = tx.DeleteAllWalletTransactions(ctx); err != nil {
			return err
		}
		if resp.ExpensesRemoved, err = tx.DeleteAllExpenses(ctx); err != nil {
			return err
		}

		cards, err := tx.ListTreasuryCards(ctx)
		if err != nil {
			return err
		}
		for _, card := range cards {
			if err := tx.SetTreasuryBalance(ctx, card.ID, decimal.Zero); err != nil {
				return err
			}
		}

		customers, err := tx.ListCustomers(ctx)
		if err != nil {
			return err
		}
		for _, customer := range customers {
			if err := tx.SetCustomerWalletBalance(ctx, customer.ID, decimal.Zero); err != nil {
				return err
			}
			if err := s.recomputeDebt(ctx, tx, customer.ID); err != nil {
				return err
			}
			resp.CustomersRecomputed++
		}
		return nil
	})
	if err != nil {
		return domain.ResetResponse{}, err
	}

	s.log.Warn().
		Int("transactions", resp.TransactionsRemoved).
		Int("treasury_transactions", resp.TreasuryTransactionsRemoved).
		Int("wallet_transactions", resp.WalletTransactionsRemoved).
		Int("expenses", resp.ExpensesRemoved).
		Msg("financial reports reset")
	s.logAudit(ctx, "financial_reset", "report", "all", fmt.Sprintf("transactions=%d,treasury=%d", resp.TransactionsRemoved, resp.TreasuryTransactionsRemoved))
	return resp, nil
}

func (s *Service) FinancialSummary(ctx context.Context) (domain.FinancialSummary, error) {
	summary := domain.FinancialSummary{
		TreasuryBalances: map[domain.TreasuryCardType]decimal.Decimal{},
		OutstandingDebt:  decimal.Zero,
		WalletBalances:   decimal.Zero,
		TotalExpenses:    decimal.Zero,
		CreditorDebt:     decimal.Zero,
		PendingDeposits:  decimal.Zero,
	}

	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		cards, err := tx.ListTreasuryCards(ctx)
		if err != nil {
			return err
		}
		for _, card := range cards {
			summary.TreasuryBalances[card.Type] = summary.TreasuryBalances[card.Type].Add(card.Balance)
		}

		customers, err := tx.ListCustomers(ctx)
		if err != nil {
			return err
		}
		summary.Customers = len(customers)
		for _, customer := range customers {
			summary.OutstandingDebt = summary.OutstandingDebt.Add(customer.Debt)
			summary.WalletBalances = summary.WalletBalances.Add(customer.WalletBalance)
			summary.ActiveOrders += customer.OrderCount
		}

		expenses, err := tx.ListExpenses(ctx)
		if err != nil {
			return err
		}
		for _, expense := range expenses {
			summary.TotalExpenses = summary.TotalExpenses.Add(expense.Amount)
		}

		creditors, err := tx.ListCreditors(ctx)
		if err != nil {
			return err
		}
		for _, creditor := range creditors {
			summary.CreditorDebt = summary.CreditorDebt.Add(creditor.TotalDebt)
		}

		pending, err := tx.ListDeposits(ctx, domain.DepositFilter{Status: domain.DepositPending})
		if err != nil {
			return err
		}
		for _, deposit := range pending {
			summary.PendingDeposits = summary.PendingDeposits.Add(deposit.Amount)
		}
		return nil
	})
	return summary, err
}
