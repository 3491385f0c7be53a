package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

type memTx struct {
	d *state
}

func (t *memTx) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Username = strings.ToLower(strings.TrimSpace(customer.Username))
	if customer.Username == "" {
		return nil, store.ErrInvalidTransaction
	}
	for _, existing := range t.d.customers {
		if existing.Username == customer.Username {
			return nil, store.ErrInvalidTransaction
		}
	}
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	t.d.customers[customer.ID] = customer
	return &customer, nil
}

func (t *memTx) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	customer, ok := t.d.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &customer, nil
}

func (t *memTx) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	result := make([]domain.Customer, 0, len(t.d.customers))
	for _, customer := range t.d.customers {
		result = append(result, customer)
	}
	slices.SortFunc(result, func(a, b domain.Customer) int {
		return cmp.Compare(a.Username, b.Username)
	})
	return result, nil
}

func (t *memTx) UpdateCustomerStats(_ context.Context, id string, debt decimal.Decimal, orderCount int) error {
	customer, ok := t.d.customers[id]
	if !ok {
		return store.ErrNotFound
	}
	customer.Debt = debt
	customer.OrderCount = orderCount
	t.d.customers[id] = customer
	return nil
}

func (t *memTx) SetCustomerOrderCounter(_ context.Context, id string, counter int) error {
	customer, ok := t.d.customers[id]
	if !ok {
		return store.ErrNotFound
	}
	customer.OrderCounter = counter
	t.d.customers[id] = customer
	return nil
}

func (t *memTx) SetCustomerWalletBalance(_ context.Context, id string, balance decimal.Decimal) error {
	customer, ok := t.d.customers[id]
	if !ok {
		return store.ErrNotFound
	}
	customer.WalletBalance = balance
	t.d.customers[id] = customer
	return nil
}

func (t *memTx) CreateRepresentative(_ context.Context, rep domain.Representative) (*domain.Representative, error) {
	if strings.TrimSpace(rep.Name) == "" {
		return nil, store.ErrInvalidTransaction
	}
	if rep.ID == "" {
		rep.ID = xid.New("rep")
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	t.d.representatives[rep.ID] = rep
	return &rep, nil
}

func (t *memTx) GetRepresentative(_ context.Context, id string) (*domain.Representative, error) {
	rep, ok := t.d.representatives[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rep, nil
}

func (t *memTx) ListRepresentatives(_ context.Context) ([]domain.Representative, error) {
	result := make([]domain.Representative, 0, len(t.d.representatives))
	for _, rep := range t.d.representatives {
		result = append(result, rep)
	}
	slices.SortFunc(result, func(a, b domain.Representative) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (t *memTx) AdjustRepresentativeOrders(_ context.Context, id string, delta int) error {
	rep, ok := t.d.representatives[id]
	if !ok {
		return store.ErrNotFound
	}
	rep.AssignedOrders = max(0, rep.AssignedOrders+delta)
	t.d.representatives[id] = rep
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, order domain.Order) error {
	if order.ID == "" || order.UserID == "" {
		return store.ErrInvalidTransaction
	}
	if _, exists := t.d.orders[order.ID]; exists {
		return store.ErrInvalidTransaction
	}
	for _, existing := range t.d.orders {
		if existing.InvoiceNumber == order.InvoiceNumber {
			return store.ErrInvalidTransaction
		}
	}
	t.d.orders[order.ID] = cloneOrder(order)
	return nil
}

func (t *memTx) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	order, ok := t.d.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

func (t *memTx) UpdateOrder(_ context.Context, order domain.Order) error {
	if _, ok := t.d.orders[order.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.orders[order.ID] = cloneOrder(order)
	return nil
}

func (t *memTx) DeleteOrder(_ context.Context, id string) error {
	if _, ok := t.d.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.orders, id)
	return nil
}

func (t *memTx) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	result := make([]domain.Order, 0, 32)
	for _, order := range t.d.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.RepresentativeID != "" && order.RepresentativeID != filter.RepresentativeID {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	slices.SortFunc(result, compareOrdersNewestFirst)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (t *memTx) LatestOrderForCustomer(ctx context.Context, userID string) (*domain.Order, error) {
	orders, err := t.ListOrders(ctx, domain.OrderFilter{UserID: userID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, store.ErrNotFound
	}
	return &orders[0], nil
}

func (t *memTx) InsertTransaction(_ context.Context, txn domain.Transaction) error {
	if txn.ID == "" {
		return store.ErrInvalidTransaction
	}
	if _, exists := t.d.transactions[txn.ID]; exists {
		return store.ErrInvalidTransaction
	}
	t.d.transactions[txn.ID] = txn
	return nil
}

func (t *memTx) GetTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	txn, ok := t.d.transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &txn, nil
}

func (t *memTx) UpdateTransaction(_ context.Context, txn domain.Transaction) error {
	if _, ok := t.d.transactions[txn.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.transactions[txn.ID] = txn
	return nil
}

func (t *memTx) DeleteTransaction(_ context.Context, id string) error {
	if _, ok := t.d.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.transactions, id)
	return nil
}

func (t *memTx) DeleteTransactionsByOrder(_ context.Context, orderID string) (int, error) {
	removed := 0
	for id, txn := range t.d.transactions {
		if txn.OrderID == orderID {
			delete(t.d.transactions, id)
			removed++
		}
	}
	return removed, nil
}

func (t *memTx) DeleteAllTransactions(_ context.Context) (int, error) {
	removed := len(t.d.transactions)
	t.d.transactions = make(map[string]domain.Transaction)
	return removed, nil
}

func (t *memTx) ListTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	result := make([]domain.Transaction, 0, 32)
	for _, txn := range t.d.transactions {
		if filter.CustomerID != "" && txn.CustomerID != filter.CustomerID {
			continue
		}
		if filter.OrderID != "" && txn.OrderID != filter.OrderID {
			continue
		}
		result = append(result, txn)
	}
	slices.SortFunc(result, func(a, b domain.Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (t *memTx) InsertTempOrder(_ context.Context, temp domain.TempOrder) error {
	if temp.ID == "" {
		return store.ErrInvalidTransaction
	}
	if _, exists := t.d.tempOrders[temp.ID]; exists {
		return store.ErrInvalidTransaction
	}
	t.d.tempOrders[temp.ID] = cloneTempOrder(temp)
	return nil
}

func (t *memTx) GetTempOrder(_ context.Context, id string) (*domain.TempOrder, error) {
	temp, ok := t.d.tempOrders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneTempOrder(temp)
	return &out, nil
}

func (t *memTx) UpdateTempOrder(_ context.Context, temp domain.TempOrder) error {
	if _, ok := t.d.tempOrders[temp.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.tempOrders[temp.ID] = cloneTempOrder(temp)
	return nil
}

func (t *memTx) DeleteTempOrder(_ context.Context, id string) error {
	if _, ok := t.d.tempOrders[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.tempOrders, id)
	return nil
}

func (t *memTx) ListTempOrders(_ context.Context, filter domain.TempOrderFilter) ([]domain.TempOrder, error) {
	result := make([]domain.TempOrder, 0, len(t.d.tempOrders))
	for _, temp := range t.d.tempOrders {
		if filter.AssignedUserID != "" && temp.AssignedUserID != filter.AssignedUserID {
			continue
		}
		if filter.UnconvertedOnly && temp.ParentInvoiceID != "" {
			continue
		}
		result = append(result, cloneTempOrder(temp))
	}
	slices.SortFunc(result, func(a, b domain.TempOrder) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) CreateTreasuryCard(_ context.Context, card domain.TreasuryCard) (*domain.TreasuryCard, error) {
	if card.ID == "" {
		card.ID = xid.New("treasury")
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}
	t.d.treasuryCards[card.ID] = card
	return &card, nil
}

func (t *memTx) GetTreasuryCard(_ context.Context, id string) (*domain.TreasuryCard, error) {
	card, ok := t.d.treasuryCards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &card, nil
}

func (t *memTx) GetTreasuryCardByType(ctx context.Context, cardType domain.TreasuryCardType) (*domain.TreasuryCard, error) {
	cards, err := t.ListTreasuryCards(ctx)
	if err != nil {
		return nil, err
	}
	for _, card := range cards {
		if card.Type == cardType {
			return &card, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) ListTreasuryCards(_ context.Context) ([]domain.TreasuryCard, error) {
	result := make([]domain.TreasuryCard, 0, len(t.d.treasuryCards))
	for _, card := range t.d.treasuryCards {
		result = append(result, card)
	}
	slices.SortFunc(result, func(a, b domain.TreasuryCard) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) SetTreasuryBalance(_ context.Context, id string, balance decimal.Decimal) error {
	card, ok := t.d.treasuryCards[id]
	if !ok {
		return store.ErrNotFound
	}
	card.Balance = balance
	t.d.treasuryCards[id] = card
	return nil
}

func (t *memTx) InsertTreasuryTransaction(_ context.Context, entry domain.TreasuryTransaction) error {
	if _, ok := t.d.treasuryCards[entry.CardID]; !ok {
		return store.ErrNotFound
	}
	t.d.treasuryTxs = append(t.d.treasuryTxs, entry)
	return nil
}

func (t *memTx) ListTreasuryTransactions(_ context.Context, cardID string, limit int) ([]domain.TreasuryTransaction, error) {
	result := make([]domain.TreasuryTransaction, 0, 32)
	for i := len(t.d.treasuryTxs) - 1; i >= 0; i-- {
		entry := t.d.treasuryTxs[i]
		if cardID != "" && entry.CardID != cardID {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (t *memTx) ListTreasuryTransactionsForOrder(_ context.Context, orderID string) ([]domain.TreasuryTransaction, error) {
	result := make([]domain.TreasuryTransaction, 0, 4)
	for _, entry := range t.d.treasuryTxs {
		if orderID != "" && entry.OrderID == orderID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (t *memTx) DeleteAllTreasuryTransactions(_ context.Context) (int, error) {
	removed := len(t.d.treasuryTxs)
	t.d.treasuryTxs = make([]domain.TreasuryTransaction, 0, 64)
	return removed, nil
}

func (t *memTx) CreateCreditCard(_ context.Context, card domain.CreditCard) (*domain.CreditCard, error) {
	card.Code = strings.TrimSpace(card.Code)
	if card.Code == "" {
		return nil, store.ErrInvalidTransaction
	}
	for _, existing := range t.d.creditCards {
		if existing.Code == card.Code {
			return nil, store.ErrInvalidTransaction
		}
	}
	if card.ID == "" {
		card.ID = xid.New("card")
	}
	t.d.creditCards[card.ID] = cloneCreditCard(card)
	out := cloneCreditCard(card)
	return &out, nil
}

func (t *memTx) GetCreditCard(_ context.Context, id string) (*domain.CreditCard, error) {
	card, ok := t.d.creditCards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneCreditCard(card)
	return &out, nil
}

func (t *memTx) ListCreditCards(_ context.Context, status domain.CreditCardStatus) ([]domain.CreditCard, error) {
	result := make([]domain.CreditCard, 0, len(t.d.creditCards))
	for _, card := range t.d.creditCards {
		if status != "" && card.Status != status {
			continue
		}
		result = append(result, cloneCreditCard(card))
	}
	slices.SortFunc(result, func(a, b domain.CreditCard) int {
		if c := a.PurchaseDate.Compare(b.PurchaseDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) DeleteCreditCard(_ context.Context, id string) error {
	if _, ok := t.d.creditCards[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.creditCards, id)
	return nil
}

func (t *memTx) SetCreditCardStatus(_ context.Context, id string, status domain.CreditCardStatus) error {
	card, ok := t.d.creditCards[id]
	if !ok {
		return store.ErrNotFound
	}
	card.Status = status
	t.d.creditCards[id] = card
	return nil
}

func (t *memTx) InsertCardUsage(_ context.Context, usage domain.CardUsage) error {
	card, ok := t.d.creditCards[usage.CardID]
	if !ok {
		return store.ErrNotFound
	}
	card.Usages = append(slices.Clone(card.Usages), usage)
	t.d.creditCards[usage.CardID] = card
	return nil
}

func (t *memTx) ReverseCardUsagesForOrder(_ context.Context, orderID string) ([]domain.CardUsage, error) {
	reversed := make([]domain.CardUsage, 0, 4)
	for id, card := range t.d.creditCards {
		changed := false
		usages := slices.Clone(card.Usages)
		for i := range usages {
			if usages[i].OrderID != orderID || usages[i].Reversed {
				continue
			}
			usages[i].Reversed = true
			reversed = append(reversed, usages[i])
			changed = true
		}
		if changed {
			card.Usages = usages
			t.d.creditCards[id] = card
		}
	}
	slices.SortFunc(reversed, func(a, b domain.CardUsage) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return reversed, nil
}

func (t *memTx) InsertWalletTransaction(_ context.Context, entry domain.WalletTransaction) error {
	if _, ok := t.d.customers[entry.UserID]; !ok {
		return store.ErrNotFound
	}
	t.d.walletTxs = append(t.d.walletTxs, entry)
	return nil
}

func (t *memTx) ListWalletTransactions(_ context.Context, userID string) ([]domain.WalletTransaction, error) {
	result := make([]domain.WalletTransaction, 0, 16)
	for i := len(t.d.walletTxs) - 1; i >= 0; i-- {
		entry := t.d.walletTxs[i]
		if userID != "" && entry.UserID != userID {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (t *memTx) DeleteAllWalletTransactions(_ context.Context) (int, error) {
	removed := len(t.d.walletTxs)
	t.d.walletTxs = make([]domain.WalletTransaction, 0, 32)
	return removed, nil
}

func (t *memTx) InsertExpense(_ context.Context, expense domain.Expense) error {
	if expense.ID == "" {
		return store.ErrInvalidTransaction
	}
	t.d.expenses[expense.ID] = expense
	return nil
}

func (t *memTx) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	result := make([]domain.Expense, 0, len(t.d.expenses))
	for _, expense := range t.d.expenses {
		result = append(result, expense)
	}
	slices.SortFunc(result, func(a, b domain.Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) DeleteExpense(_ context.Context, id string) error {
	if _, ok := t.d.expenses[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.expenses, id)
	return nil
}

func (t *memTx) DeleteAllExpenses(_ context.Context) (int, error) {
	removed := len(t.d.expenses)
	t.d.expenses = make(map[string]domain.Expense)
	return removed, nil
}

func (t *memTx) InsertDeposit(_ context.Context, deposit domain.Deposit) error {
	if deposit.ID == "" {
		return store.ErrInvalidTransaction
	}
	for _, existing := range t.d.deposits {
		if existing.ReceiptNumber == deposit.ReceiptNumber {
			return store.ErrInvalidTransaction
		}
	}
	t.d.deposits[deposit.ID] = cloneDeposit(deposit)
	return nil
}

func (t *memTx) GetDeposit(_ context.Context, id string) (*domain.Deposit, error) {
	deposit, ok := t.d.deposits[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	deposit = cloneDeposit(deposit)
	return &deposit, nil
}

func (t *memTx) UpdateDeposit(_ context.Context, deposit domain.Deposit) error {
	if _, ok := t.d.deposits[deposit.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.deposits[deposit.ID] = cloneDeposit(deposit)
	return nil
}

func (t *memTx) DeleteDeposit(_ context.Context, id string) error {
	if _, ok := t.d.deposits[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.deposits, id)
	return nil
}

func (t *memTx) ListDeposits(_ context.Context, filter domain.DepositFilter) ([]domain.Deposit, error) {
	result := make([]domain.Deposit, 0, len(t.d.deposits))
	for _, deposit := range t.d.deposits {
		if filter.RepresentativeID != "" && deposit.RepresentativeID != filter.RepresentativeID {
			continue
		}
		if filter.Status != "" && deposit.Status != filter.Status {
			continue
		}
		result = append(result, cloneDeposit(deposit))
	}
	slices.SortFunc(result, func(a, b domain.Deposit) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) CreateCreditor(_ context.Context, creditor domain.Creditor) (*domain.Creditor, error) {
	creditor.Name = strings.TrimSpace(creditor.Name)
	if creditor.Name == "" {
		return nil, store.ErrInvalidTransaction
	}
	if creditor.ID == "" {
		creditor.ID = xid.New("creditor")
	}
	if creditor.CreatedAt.IsZero() {
		creditor.CreatedAt = time.Now().UTC()
	}
	t.d.creditors[creditor.ID] = creditor
	return &creditor, nil
}

func (t *memTx) GetCreditor(_ context.Context, id string) (*domain.Creditor, error) {
	creditor, ok := t.d.creditors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &creditor, nil
}

func (t *memTx) ListCreditors(_ context.Context) ([]domain.Creditor, error) {
	result := make([]domain.Creditor, 0, len(t.d.creditors))
	for _, creditor := range t.d.creditors {
		result = append(result, creditor)
	}
	slices.SortFunc(result, func(a, b domain.Creditor) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) UpdateCreditor(_ context.Context, creditor domain.Creditor) error {
	existing, ok := t.d.creditors[creditor.ID]
	if !ok {
		return store.ErrNotFound
	}
	creditor.TotalDebt = existing.TotalDebt
	t.d.creditors[creditor.ID] = creditor
	return nil
}

func (t *memTx) SetCreditorDebt(_ context.Context, id string, total decimal.Decimal) error {
	creditor, ok := t.d.creditors[id]
	if !ok {
		return store.ErrNotFound
	}
	creditor.TotalDebt = total
	t.d.creditors[id] = creditor
	return nil
}

func (t *memTx) DeleteCreditor(_ context.Context, id string) error {
	if _, ok := t.d.creditors[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.creditors, id)
	for debtID, debt := range t.d.externalDebts {
		if debt.CreditorID == id {
			delete(t.d.externalDebts, debtID)
		}
	}
	return nil
}

func (t *memTx) InsertExternalDebt(_ context.Context, debt domain.ExternalDebt) error {
	if debt.ID == "" {
		return store.ErrInvalidTransaction
	}
	if _, ok := t.d.creditors[debt.CreditorID]; !ok {
		return store.ErrNotFound
	}
	t.d.externalDebts[debt.ID] = debt
	return nil
}

func (t *memTx) GetExternalDebt(_ context.Context, id string) (*domain.ExternalDebt, error) {
	debt, ok := t.d.externalDebts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &debt, nil
}

func (t *memTx) UpdateExternalDebt(_ context.Context, debt domain.ExternalDebt) error {
	if _, ok := t.d.externalDebts[debt.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.externalDebts[debt.ID] = debt
	return nil
}

func (t *memTx) DeleteExternalDebt(_ context.Context, id string) error {
	if _, ok := t.d.externalDebts[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.externalDebts, id)
	return nil
}

func (t *memTx) ListExternalDebts(_ context.Context, creditorID string) ([]domain.ExternalDebt, error) {
	result := make([]domain.ExternalDebt, 0, 16)
	for _, debt := range t.d.externalDebts {
		if creditorID != "" && debt.CreditorID != creditorID {
			continue
		}
		result = append(result, debt)
	}
	slices.SortFunc(result, func(a, b domain.ExternalDebt) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (t *memTx) GetSettings(_ context.Context) (*domain.Settings, error) {
	if t.d.settings == nil {
		return nil, store.ErrNotFound
	}
	settings := *t.d.settings
	return &settings, nil
}

func (t *memTx) SaveSettings(_ context.Context, settings domain.Settings) error {
	t.d.settings = &settings
	return nil
}

func compareOrdersNewestFirst(a, b domain.Order) int {
	if c := b.OperationDate.Compare(a.OperationDate); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.SequenceNumber, a.SequenceNumber)
}
