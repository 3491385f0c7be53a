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

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Name = strings.TrimSpace(req.Name)
	if req.Username == "" || strings.ContainsAny(req.Username, " \t") {
		return domain.Customer{}, fmt.Errorf("%w: username required", store.ErrInvalidTransaction)
	}
	if req.Name == "" {
		req.Name = req.Username
	}

	var created domain.Customer
	err := s.run(ctx, "create_customer", func(tx store.Tx) error {
		saved, err := tx.CreateCustomer(ctx, domain.Customer{
			ID:            xid.New("cus"),
			Username:      req.Username,
			Name:          req.Name,
			Phone:         strings.TrimSpace(req.Phone),
			Address:       strings.TrimSpace(req.Address),
			Debt:          decimal.Zero,
			WalletBalance: decimal.Zero,
			CreatedAt:     s.now(),
		})
		if err != nil {
			return err
		}
		created = *saved
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, "customer_create", "customer", created.ID, created.Username)
	return created, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	var customer domain.Customer
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		found, err := tx.GetCustomer(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		customer = *found
		return nil
	})
	return customer, err
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		customers, err = tx.ListCustomers(ctx)
		return err
	})
	return customers, err
}

func (s *Service) CreateRepresentative(ctx context.Context, req domain.RepresentativeCreateRequest) (domain.Representative, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Representative{}, store.ErrInvalidTransaction
	}

	var created domain.Representative
	err := s.run(ctx, "create_representative", func(tx store.Tx) error {
		saved, err := tx.CreateRepresentative(ctx, domain.Representative{
			ID:        xid.New("rep"),
			Name:      req.Name,
			Phone:     strings.TrimSpace(req.Phone),
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		created = *saved
		return nil
	})
	if err != nil {
		return domain.Representative{}, err
	}

	s.logAudit(ctx, "representative_create", "representative", created.ID, created.Name)
	return created, nil
}

func (s *Service) ListRepresentatives(ctx context.Context) ([]domain.Representative, error) {
	var reps []domain.Representative
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		reps, err = tx.ListRepresentatives(ctx)
		return err
	})
	return reps, err
}

func (s *Service) AddExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" || !req.Amount.IsPositive() {
		return domain.Expense{}, fmt.Errorf("%w: description and a positive amount are required", store.ErrInvalidTransaction)
	}

	expense := domain.Expense{
		ID:          xid.New("exp"),
		Description: req.Description,
		Amount:      req.Amount,
		Date:        s.now(),
		ManagerID:   managerID(ctx, ""),
	}
	if req.Date != nil {
		expense.Date = req.Date.UTC()
	}

	err := s.run(ctx, "add_expense", func(tx store.Tx) error {
		return tx.InsertExpense(ctx, expense)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_create", "expense", expense.ID, fmt.Sprintf("amount=%s", expense.Amount))
	return expense, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		expenses, err = tx.ListExpenses(ctx)
		return err
	})
	return expenses, err
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	if err := s.run(ctx, "delete_expense", func(tx store.Tx) error {
		return tx.DeleteExpense(ctx, id)
	}); err != nil {
		return err
	}

	s.logAudit(ctx, "expense_delete", "expense", id, "")
	return nil
}
