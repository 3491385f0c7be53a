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

// ComputeCreditorDebt sums the signed external debt entries of creditorID.
// Like ComputeDebt it never reads the cached total.
func ComputeCreditorDebt(debts []domain.ExternalDebt, creditorID string) decimal.Decimal {
	total := decimal.Zero
	for _, debt := range debts {
		if debt.CreditorID != creditorID {
			continue
		}
		total = total.Add(debt.Amount)
	}
	return domain.Round2(total)
}

func (s *Service) recomputeCreditorDebt(ctx context.Context, tx store.Tx, creditorID string) error {
	debts, err := tx.ListExternalDebts(ctx, creditorID)
	if err != nil {
		return err
	}
	return tx.SetCreditorDebt(ctx, creditorID, ComputeCreditorDebt(debts, creditorID))
}

func validateExternalDebt(amount decimal.Decimal, status domain.ExternalDebtStatus) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: amount must not be zero", store.ErrInvalidTransaction)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown debt status %q", store.ErrInvalidTransaction, status)
	}
	if status == domain.ExternalDebtPayment && amount.IsPositive() {
		return fmt.Errorf("%w: payments are recorded as negative amounts", store.ErrInvalidTransaction)
	}
	return nil
}

// AddCreditor creates the creditor and, for a non-zero opening balance, its
// first pending debt entry.
func (s *Service) AddCreditor(ctx context.Context, req domain.CreditorCreateRequest) (domain.Creditor, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Creditor{}, fmt.Errorf("%w: name required", store.ErrInvalidTransaction)
	}
	req.Type = domain.CreditorType(defaultString(string(req.Type), string(domain.CreditorCompany)))
	if req.Type != domain.CreditorCompany && req.Type != domain.CreditorPerson {
		return domain.Creditor{}, fmt.Errorf("%w: unknown creditor type %q", store.ErrInvalidTransaction, req.Type)
	}
	req.Currency = domain.Currency(defaultString(string(req.Currency), string(domain.CurrencyLYD)))
	if req.Currency != domain.CurrencyLYD && req.Currency != domain.CurrencyUSD {
		return domain.Creditor{}, fmt.Errorf("%w: unknown currency %q", store.ErrInvalidTransaction, req.Currency)
	}

	var created domain.Creditor
	err := s.run(ctx, "add_creditor", func(tx store.Tx) error {
		saved, err := tx.CreateCreditor(ctx, domain.Creditor{
			ID:          xid.New("creditor"),
			Name:        req.Name,
			Type:        req.Type,
			Currency:    req.Currency,
			TotalDebt:   decimal.Zero,
			ContactInfo: strings.TrimSpace(req.ContactInfo),
			CreatedAt:   s.now(),
		})
		if err != nil {
			return err
		}

		if !req.OpeningBalance.IsZero() {
			if err := tx.InsertExternalDebt(ctx, domain.ExternalDebt{
				ID:           xid.New("xdebt"),
				CreditorID:   saved.ID,
				CreditorName: saved.Name,
				Amount:       req.OpeningBalance,
				Date:         s.now(),
				Status:       domain.ExternalDebtPending,
				Notes:        "Opening balance",
			}); err != nil {
				return err
			}
		}
		if err := s.recomputeCreditorDebt(ctx, tx, saved.ID); err != nil {
			return err
		}

		fresh, err := tx.GetCreditor(ctx, saved.ID)
		if err != nil {
			return err
		}
		created = *fresh
		return nil
	})
	if err != nil {
		return domain.Creditor{}, err
	}

	s.logAudit(ctx, "creditor_create", "creditor", created.ID, fmt.Sprintf("name=%s,opening=%s", created.Name, req.OpeningBalance))
	return created, nil
}

func (s *Service) GetCreditor(ctx context.Context, id string) (domain.Creditor, error) {
	var creditor domain.Creditor
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		found, err := tx.GetCreditor(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		creditor = *found
		return nil
	})
	return creditor, err
}

func (s *Service) ListCreditors(ctx context.Context) ([]domain.Creditor, error) {
	var creditors []domain.Creditor
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		creditors, err = tx.ListCreditors(ctx)
		return err
	})
	return creditors, err
}

// UpdateCreditor changes the descriptive fields. TotalDebt only moves through
// the debt entries.
func (s *Service) UpdateCreditor(ctx context.Context, id string, req domain.CreditorUpdateRequest) (domain.Creditor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Creditor{}, store.ErrInvalidTransaction
	}

	var updated domain.Creditor
	err := s.run(ctx, "update_creditor", func(tx store.Tx) error {
		creditor, err := tx.GetCreditor(ctx, id)
		if err != nil {
			return err
		}
		setString(&creditor.Name, req.Name)
		setString(&creditor.ContactInfo, req.ContactInfo)
		if req.Type != nil {
			creditor.Type = *req.Type
		}
		if req.Currency != nil {
			creditor.Currency = *req.Currency
		}
		if creditor.Name == "" ||
			(creditor.Type != domain.CreditorCompany && creditor.Type != domain.CreditorPerson) ||
			(creditor.Currency != domain.CurrencyLYD && creditor.Currency != domain.CurrencyUSD) {
			return store.ErrInvalidTransaction
		}
		if err := tx.UpdateCreditor(ctx, *creditor); err != nil {
			return err
		}
		updated = *creditor
		return nil
	})
	if err != nil {
		return domain.Creditor{}, err
	}

	s.logAudit(ctx, "creditor_update", "creditor", id, updated.Name)
	return updated, nil
}

// DeleteCreditor removes the creditor together with its debt entries.
func (s *Service) DeleteCreditor(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	if err := s.run(ctx, "delete_creditor", func(tx store.Tx) error {
		return tx.DeleteCreditor(ctx, id)
	}); err != nil {
		return err
	}

	s.logAudit(ctx, "creditor_delete", "creditor", id, "")
	return nil
}

func (s *Service) AddExternalDebt(ctx context.Context, req domain.ExternalDebtCreateRequest) (domain.ExternalDebt, error) {
	req.CreditorID = strings.TrimSpace(req.CreditorID)
	if req.Status == "" {
		req.Status = domain.ExternalDebtPending
	}
	if req.CreditorID == "" {
		return domain.ExternalDebt{}, fmt.Errorf("%w: creditor required", store.ErrInvalidTransaction)
	}
	if err := validateExternalDebt(req.Amount, req.Status); err != nil {
		return domain.ExternalDebt{}, err
	}

	debt := domain.ExternalDebt{
		ID:         xid.New("xdebt"),
		CreditorID: req.CreditorID,
		Amount:     req.Amount,
		Date:       s.now(),
		Status:     req.Status,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if req.Date != nil {
		debt.Date = req.Date.UTC()
	}

	err := s.run(ctx, "add_external_debt", func(tx store.Tx) error {
		creditor, err := tx.GetCreditor(ctx, debt.CreditorID)
		if err != nil {
			return err
		}
		debt.CreditorName = creditor.Name
		if err := tx.InsertExternalDebt(ctx, debt); err != nil {
			return err
		}
		return s.recomputeCreditorDebt(ctx, tx, debt.CreditorID)
	})
	if err != nil {
		return domain.ExternalDebt{}, err
	}

	s.logAudit(ctx, "external_debt_create", "creditor", debt.CreditorID, fmt.Sprintf("amount=%s,status=%s", debt.Amount, debt.Status))
	return debt, nil
}

func (s *Service) UpdateExternalDebt(ctx context.Context, id string, req domain.ExternalDebtUpdateRequest) (domain.ExternalDebt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ExternalDebt{}, store.ErrInvalidTransaction
	}

	var updated domain.ExternalDebt
	err := s.run(ctx, "update_external_debt", func(tx store.Tx) error {
		debt, err := tx.GetExternalDebt(ctx, id)
		if err != nil {
			return err
		}
		if req.Amount != nil {
			debt.Amount = *req.Amount
		}
		if req.Status != nil {
			debt.Status = *req.Status
		}
		if req.Date != nil {
			debt.Date = req.Date.UTC()
		}
		setString(&debt.Notes, req.Notes)
		if err := validateExternalDebt(debt.Amount, debt.Status); err != nil {
			return err
		}
		if err := tx.UpdateExternalDebt(ctx, *debt); err != nil {
			return err
		}
		updated = *debt
		return s.recomputeCreditorDebt(ctx, tx, debt.CreditorID)
	})
	if err != nil {
		return domain.ExternalDebt{}, err
	}

	s.logAudit(ctx, "external_debt_update", "creditor", updated.CreditorID, fmt.Sprintf("debt=%s,amount=%s", id, updated.Amount))
	return updated, nil
}

func (s *Service) DeleteExternalDebt(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	var creditorID string
	err := s.run(ctx, "delete_external_debt", func(tx store.Tx) error {
		debt, err := tx.GetExternalDebt(ctx, id)
		if err != nil {
			return err
		}
		creditorID = debt.CreditorID
		if err := tx.DeleteExternalDebt(ctx, id); err != nil {
			return err
		}
		return s.recomputeCreditorDebt(ctx, tx, creditorID)
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, "external_debt_delete", "creditor", creditorID, "debt="+id)
	return nil
}

// ListExternalDebts returns the entries of one creditor, or of every
// creditor when creditorID is empty.
func (s *Service) ListExternalDebts(ctx context.Context, creditorID string) ([]domain.ExternalDebt, error) {
	creditorID = strings.TrimSpace(creditorID)

	var debts []domain.ExternalDebt
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		if creditorID != "" {
			if _, err := tx.GetCreditor(ctx, creditorID); err != nil {
				return err
			}
		}
		var err error
		debts, err = tx.ListExternalDebts(ctx, creditorID)
		return err
	})
	return debts, err
}

// RecomputeCreditorDebt rebuilds the cached total from the debt entries.
func (s *Service) RecomputeCreditorDebt(ctx context.Context, id string) (domain.Creditor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Creditor{}, store.ErrInvalidTransaction
	}

	var creditor domain.Creditor
	err := s.run(ctx, "recompute_creditor_debt", func(tx store.Tx) error {
		if _, err := tx.GetCreditor(ctx, id); err != nil {
			return err
		}
		if err := s.recomputeCreditorDebt(ctx, tx, id); err != nil {
			return err
		}
		fresh, err := tx.GetCreditor(ctx, id)
		if err != nil {
			return err
		}
		creditor = *fresh
		return nil
	})
	return creditor, err
}
