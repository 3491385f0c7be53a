package service

import (
	"context"
	"fmt"
	"strings"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// AddDeposit records cash handed over by a customer. Deposits taken at the
// office are collected on the spot; deposits taken by a representative stay
// pending until they bring the cash in.
func (s *Service) AddDeposit(ctx context.Context, req domain.DepositCreateRequest) (domain.Deposit, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.RepresentativeID = strings.TrimSpace(req.RepresentativeID)
	if req.CustomerName == "" || !req.Amount.IsPositive() {
		return domain.Deposit{}, fmt.Errorf("%w: customer name and a positive amount are required", store.ErrInvalidTransaction)
	}
	if req.CollectedBy == "" {
		req.CollectedBy = domain.CollectedByAdmin
		if req.RepresentativeID != "" {
			req.CollectedBy = domain.CollectedByRepresentative
		}
	}
	switch req.CollectedBy {
	case domain.CollectedByAdmin:
	case domain.CollectedByRepresentative:
		if req.RepresentativeID == "" {
			return domain.Deposit{}, fmt.Errorf("%w: representative required", store.ErrInvalidTransaction)
		}
	default:
		return domain.Deposit{}, fmt.Errorf("%w: unknown collector %q", store.ErrInvalidTransaction, req.CollectedBy)
	}

	now := s.now()
	deposit := domain.Deposit{
		ID:               xid.New("dep"),
		CustomerName:     req.CustomerName,
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		Amount:           req.Amount,
		Date:             now,
		Description:      strings.TrimSpace(req.Description),
		Status:           domain.DepositPending,
		RepresentativeID: req.RepresentativeID,
		CollectedBy:      req.CollectedBy,
	}
	if req.Date != nil {
		deposit.Date = req.Date.UTC()
	}
	if deposit.CollectedBy == domain.CollectedByAdmin {
		deposit.Status = domain.DepositCollected
		deposit.CollectedDate = &now
	}

	err := s.run(ctx, "add_deposit", func(tx store.Tx) error {
		if deposit.RepresentativeID != "" {
			rep, err := tx.GetRepresentative(ctx, deposit.RepresentativeID)
			if err != nil {
				return err
			}
			deposit.RepresentativeName = rep.Name
		}

		existing, err := tx.ListDeposits(ctx, domain.DepositFilter{})
		if err != nil {
			return err
		}
		deposit.ReceiptNumber = nextReceiptNumber(existing, now.UnixMilli())
		return tx.InsertDeposit(ctx, deposit)
	})
	if err != nil {
		return domain.Deposit{}, err
	}

	s.logAudit(ctx, "deposit_create", "deposit", deposit.ID, fmt.Sprintf("receipt=%s,amount=%s,status=%s", deposit.ReceiptNumber, deposit.Amount, deposit.Status))
	return deposit, nil
}

// nextReceiptNumber derives DEP-nnnnnn from the last six digits of the
// clock and steps past numbers already taken.
func nextReceiptNumber(existing []domain.Deposit, millis int64) string {
	taken := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		taken[d.ReceiptNumber] = struct{}{}
	}
	seq := millis % 1_000_000
	for {
		candidate := fmt.Sprintf("DEP-%06d", seq)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		seq = (seq + 1) % 1_000_000
	}
}

func (s *Service) GetDeposit(ctx context.Context, id string) (domain.Deposit, error) {
	var deposit domain.Deposit
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		found, err := tx.GetDeposit(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		deposit = *found
		return nil
	})
	return deposit, err
}

func (s *Service) ListDeposits(ctx context.Context, filter domain.DepositFilter) ([]domain.Deposit, error) {
	filter.RepresentativeID = strings.TrimSpace(filter.RepresentativeID)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, store.ErrInvalidTransaction
	}

	var deposits []domain.Deposit
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		deposits, err = tx.ListDeposits(ctx, filter)
		return err
	})
	return deposits, err
}

// UpdateDepositStatus moves a deposit between pending, collected and
// cancelled. Only a collected deposit carries a collection date.
func (s *Service) UpdateDepositStatus(ctx context.Context, id string, status domain.DepositStatus) (domain.Deposit, error) {
	id = strings.TrimSpace(id)
	if id == "" || !status.Valid() {
		return domain.Deposit{}, store.ErrInvalidTransaction
	}

	var updated domain.Deposit
	err := s.run(ctx, "update_deposit_status", func(tx store.Tx) error {
		deposit, err := tx.GetDeposit(ctx, id)
		if err != nil {
			return err
		}
		deposit.Status = status
		deposit.CollectedDate = nil
		if status == domain.DepositCollected {
			at := s.now()
			deposit.CollectedDate = &at
		}
		if err := tx.UpdateDeposit(ctx, *deposit); err != nil {
			return err
		}
		updated = *deposit
		return nil
	})
	if err != nil {
		return domain.Deposit{}, err
	}

	s.logAudit(ctx, "deposit_status", "deposit", id, string(status))
	return updated, nil
}

func (s *Service) DeleteDeposit(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	if err := s.run(ctx, "delete_deposit", func(tx store.Tx) error {
		return tx.DeleteDeposit(ctx, id)
	}); err != nil {
		return err
	}

	s.logAudit(ctx, "deposit_delete", "deposit", id, "")
	return nil
}
