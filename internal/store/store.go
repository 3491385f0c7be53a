package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrConflict           = errors.New("concurrent update conflict")
)

// Repository runs every ledger operation as one unit. A non-nil error from fn
// discards all writes made through tx.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

// Tx exposes the row operations available inside a Repository transaction.
// Get methods lock the returned row until the transaction ends.
type Tx interface {
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	UpdateCustomerStats(ctx context.Context, id string, debt decimal.Decimal, orderCount int) error
	SetCustomerOrderCounter(ctx context.Context, id string, counter int) error
	SetCustomerWalletBalance(ctx context.Context, id string, balance decimal.Decimal) error

	CreateRepresentative(ctx context.Context, rep domain.Representative) (*domain.Representative, error)
	GetRepresentative(ctx context.Context, id string) (*domain.Representative, error)
	ListRepresentatives(ctx context.Context) ([]domain.Representative, error)
	AdjustRepresentativeOrders(ctx context.Context, id string, delta int) error

	InsertOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order) error
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	LatestOrderForCustomer(ctx context.Context, userID string) (*domain.Order, error)

	InsertTransaction(ctx context.Context, txn domain.Transaction) error
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	DeleteTransactionsByOrder(ctx context.Context, orderID string) (int, error)
	DeleteAllTransactions(ctx context.Context) (int, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)

	InsertTempOrder(ctx context.Context, temp domain.TempOrder) error
	GetTempOrder(ctx context.Context, id string) (*domain.TempOrder, error)
	UpdateTempOrder(ctx context.Context, temp domain.TempOrder) error
	DeleteTempOrder(ctx context.Context, id string) error
	ListTempOrders(ctx context.Context, filter domain.TempOrderFilter) ([]domain.TempOrder, error)

	CreateTreasuryCard(ctx context.Context, card domain.TreasuryCard) (*domain.TreasuryCard, error)
	GetTreasuryCard(ctx context.Context, id string) (*domain.TreasuryCard, error)
	GetTreasuryCardByType(ctx context.Context, cardType domain.TreasuryCardType) (*domain.TreasuryCard, error)
	ListTreasuryCards(ctx context.Context) ([]domain.TreasuryCard, error)
	SetTreasuryBalance(ctx context.Context, id string, balance decimal.Decimal) error
	InsertTreasuryTransaction(ctx context.Context, entry domain.TreasuryTransaction) error
	ListTreasuryTransactions(ctx context.Context, cardID string, limit int) ([]domain.TreasuryTransaction, error)
	ListTreasuryTransactionsForOrder(ctx context.Context, orderID string) ([]domain.TreasuryTransaction, error)
	DeleteAllTreasuryTransactions(ctx context.Context) (int, error)

	CreateCreditCard(ctx context.Context, card domain.CreditCard) (*domain.CreditCard, error)
	GetCreditCard(ctx context.Context, id string) (*domain.CreditCard, error)
	ListCreditCards(ctx context.Context, status domain.CreditCardStatus) ([]domain.CreditCard, error)
	DeleteCreditCard(ctx context.Context, id string) error
	SetCreditCardStatus(ctx context.Context, id string, status domain.CreditCardStatus) error
	InsertCardUsage(ctx context.Context, usage domain.CardUsage) error
	ReverseCardUsagesForOrder(ctx context.Context, orderID string) ([]domain.CardUsage, error)

	InsertWalletTransaction(ctx context.Context, entry domain.WalletTransaction) error
	ListWalletTransactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error)
	DeleteAllWalletTransactions(ctx context.Context) (int, error)

	InsertExpense(ctx context.Context, expense domain.Expense) error
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	DeleteAllExpenses(ctx context.Context) (int, error)

	InsertDeposit(ctx context.Context, deposit domain.Deposit) error
	GetDeposit(ctx context.Context, id string) (*domain.Deposit, error)
	UpdateDeposit(ctx context.Context, deposit domain.Deposit) error
	DeleteDeposit(ctx context.Context, id string) error
	ListDeposits(ctx context.Context, filter domain.DepositFilter) ([]domain.Deposit, error)

	CreateCreditor(ctx context.Context, creditor domain.Creditor) (*domain.Creditor, error)
	GetCreditor(ctx context.Context, id string) (*domain.Creditor, error)
	ListCreditors(ctx context.Context) ([]domain.Creditor, error)
	UpdateCreditor(ctx context.Context, creditor domain.Creditor) error
	SetCreditorDebt(ctx context.Context, id string, total decimal.Decimal) error
	// DeleteCreditor also removes the creditor's external debt entries.
	DeleteCreditor(ctx context.Context, id string) error

	InsertExternalDebt(ctx context.Context, debt domain.ExternalDebt) error
	GetExternalDebt(ctx context.Context, id string) (*domain.ExternalDebt, error)
	UpdateExternalDebt(ctx context.Context, debt domain.ExternalDebt) error
	DeleteExternalDebt(ctx context.Context, id string) error
	ListExternalDebts(ctx context.Context, creditorID string) ([]domain.ExternalDebt, error)

	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}
