package postgres

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// pgTx implements store.Tx on one serializable transaction. Single-row
// reads take FOR UPDATE so a read-modify-write stays race free.
type pgTx struct {
	tx *sql.Tx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

const customerColumns = `id, username, name, phone, address, debt, order_count, order_counter, wallet_balance, created_at`

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Username, &c.Name, &c.Phone, &c.Address, &c.Debt, &c.OrderCount, &c.OrderCounter, &c.WalletBalance, &c.CreatedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, err
}

func (t *pgTx) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Username = strings.ToLower(strings.TrimSpace(customer.Username))
	if customer.Username == "" {
		return nil, store.ErrInvalidTransaction
	}
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO customers (id, username, name, phone, address, debt, order_count, order_counter, wallet_balance, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, customer.ID, customer.Username, customer.Name, customer.Phone, customer.Address, customer.Debt, customer.OrderCount, customer.OrderCounter, customer.WalletBalance, customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidTransaction
		}
		return nil, err
	}
	return &customer, nil
}

func (t *pgTx) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := scanCustomer(t.tx.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

func (t *pgTx) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (t *pgTx) UpdateCustomerStats(ctx context.Context, id string, debt decimal.Decimal, orderCount int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE customers SET debt = $2, order_count = $3 WHERE id = $1`, id, debt, orderCount)
	return requireAffected(res, err)
}

func (t *pgTx) SetCustomerOrderCounter(ctx context.Context, id string, counter int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE customers SET order_counter = $2 WHERE id = $1`, id, counter)
	return requireAffected(res, err)
}

func (t *pgTx) SetCustomerWalletBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE customers SET wallet_balance = $2 WHERE id = $1`, id, balance)
	return requireAffected(res, err)
}

const representativeColumns = `id, name, phone, assigned_orders, created_at`

func scanRepresentative(row rowScanner) (domain.Representative, error) {
	var rep domain.Representative
	err := row.Scan(&rep.ID, &rep.Name, &rep.Phone, &rep.AssignedOrders, &rep.CreatedAt)
	rep.CreatedAt = rep.CreatedAt.UTC()
	return rep, err
}

func (t *pgTx) CreateRepresentative(ctx context.Context, rep domain.Representative) (*domain.Representative, error) {
	if strings.TrimSpace(rep.Name) == "" {
		return nil, store.ErrInvalidTransaction
	}
	if rep.ID == "" {
		rep.ID = xid.New("rep")
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO representatives (id, name, phone, assigned_orders, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, rep.ID, rep.Name, rep.Phone, rep.AssignedOrders, rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (t *pgTx) GetRepresentative(ctx context.Context, id string) (*domain.Representative, error) {
	rep, err := scanRepresentative(t.tx.QueryRowContext(ctx, `SELECT `+representativeColumns+` FROM representatives WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &rep, nil
}

func (t *pgTx) ListRepresentatives(ctx context.Context) ([]domain.Representative, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+representativeColumns+` FROM representatives ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reps := make([]domain.Representative, 0, 16)
	for rows.Next() {
		rep, err := scanRepresentative(rows)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, rows.Err()
}

func (t *pgTx) AdjustRepresentativeOrders(ctx context.Context, id string, delta int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE representatives
		SET assigned_orders = GREATEST(assigned_orders + $2, 0)
		WHERE id = $1
	`, id, delta)
	return requireAffected(res, err)
}

const orderColumns = `id, invoice_number, sequence_number, tracking_id, user_id, customer_name, customer_phone,
	customer_address, operation_date, delivery_date, status, selling_price_lyd, remaining_amount,
	down_payment_lyd, purchase_price_usd, exchange_rate, payment_method, collected_amount, weight_kg,
	company_price_per_kilo_usd, customer_price_per_kilo, customer_price_per_kilo_currency,
	company_weight_cost_usd, customer_weight_cost, customer_weight_cost_usd, representative_id,
	representative_name, manager_id, item_description, product_links, store, created_at, updated_at`

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o              domain.Order
		deliveryDate   sql.NullTime
		representative sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.InvoiceNumber, &o.SequenceNumber, &o.TrackingID, &o.UserID, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerAddress, &o.OperationDate, &deliveryDate, &o.Status, &o.SellingPriceLYD, &o.RemainingAmount,
		&o.DownPaymentLYD, &o.PurchasePriceUSD, &o.ExchangeRate, &o.PaymentMethod, &o.CollectedAmount, &o.WeightKG,
		&o.CompanyPricePerKiloUSD, &o.CustomerPricePerKilo, &o.CustomerPricePerKiloCurrency,
		&o.CompanyWeightCostUSD, &o.CustomerWeightCost, &o.CustomerWeightCostUSD, &representative,
		&o.RepresentativeName, &o.ManagerID, &o.ItemDescription, &o.ProductLinks, &o.Store, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.DeliveryDate = timePtr(deliveryDate)
	o.RepresentativeID = representative.String
	o.OperationDate = o.OperationDate.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o domain.Order) error {
	if o.ID == "" || o.UserID == "" {
		return store.ErrInvalidTransaction
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33)
	`,
		o.ID, o.InvoiceNumber, o.SequenceNumber, o.TrackingID, o.UserID, o.CustomerName, o.CustomerPhone,
		o.CustomerAddress, o.OperationDate, nullTime(o.DeliveryDate), o.Status, o.SellingPriceLYD, o.RemainingAmount,
		o.DownPaymentLYD, o.PurchasePriceUSD, o.ExchangeRate, o.PaymentMethod, o.CollectedAmount, o.WeightKG,
		o.CompanyPricePerKiloUSD, o.CustomerPricePerKilo, o.CustomerPricePerKiloCurrency,
		o.CompanyWeightCostUSD, o.CustomerWeightCost, o.CustomerWeightCostUSD, nullIfEmpty(o.RepresentativeID),
		o.RepresentativeName, o.ManagerID, o.ItemDescription, o.ProductLinks, o.Store, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidTransaction
		}
		return err
	}
	return nil
}

func (t *pgTx) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(t.tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (t *pgTx) UpdateOrder(ctx context.Context, o domain.Order) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET
			tracking_id = $2, user_id = $3, customer_name = $4, customer_phone = $5, customer_address = $6,
			operation_date = $7, delivery_date = $8, status = $9, selling_price_lyd = $10, remaining_amount = $11,
			down_payment_lyd = $12, purchase_price_usd = $13, exchange_rate = $14, payment_method = $15,
			collected_amount = $16, weight_kg = $17, company_price_per_kilo_usd = $18, customer_price_per_kilo = $19,
			customer_price_per_kilo_currency = $20, company_weight_cost_usd = $21, customer_weight_cost = $22,
			customer_weight_cost_usd = $23, representative_id = $24, representative_name = $25, manager_id = $26,
			item_description = $27, product_links = $28, store = $29, updated_at = $30
		WHERE id = $1
	`,
		o.ID, o.TrackingID, o.UserID, o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		o.OperationDate, nullTime(o.DeliveryDate), o.Status, o.SellingPriceLYD, o.RemainingAmount,
		o.DownPaymentLYD, o.PurchasePriceUSD, o.ExchangeRate, o.PaymentMethod,
		o.CollectedAmount, o.WeightKG, o.CompanyPricePerKiloUSD, o.CustomerPricePerKilo,
		o.CustomerPricePerKiloCurrency, o.CompanyWeightCostUSD, o.CustomerWeightCost,
		o.CustomerWeightCostUSD, nullIfEmpty(o.RepresentativeID), o.RepresentativeName, o.ManagerID,
		o.ItemDescription, o.ProductLinks, o.Store, o.UpdatedAt,
	)
	return requireAffected(res, err)
}

func (t *pgTx) DeleteOrder(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RepresentativeID != "" {
		args = append(args, filter.RepresentativeID)
		where = append(where, fmt.Sprintf("representative_id = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY operation_date DESC, created_at DESC, sequence_number DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (t *pgTx) LatestOrderForCustomer(ctx context.Context, userID string) (*domain.Order, error) {
	order, err := scanOrder(t.tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY operation_date DESC, created_at DESC, sequence_number DESC
		LIMIT 1
		FOR UPDATE
	`, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

const transactionColumns = `id, order_id, customer_id, customer_name, type, status, amount, date, description`

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(&txn.ID, &txn.OrderID, &txn.CustomerID, &txn.CustomerName, &txn.Type, &txn.Status, &txn.Amount, &txn.Date, &txn.Description)
	txn.Date = txn.Date.UTC()
	return txn, err
}

func (t *pgTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	if txn.ID == "" {
		return store.ErrInvalidTransaction
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, txn.ID, txn.OrderID, txn.CustomerID, txn.CustomerName, txn.Type, txn.Status, txn.Amount, txn.Date, txn.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidTransaction
		}
		return err
	}
	return nil
}

func (t *pgTx) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := scanTransaction(t.tx.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &txn, nil
}

func (t *pgTx) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE transactions
		SET order_id = $2, customer_id = $3, customer_name = $4, type = $5, status = $6, amount = $7, date = $8, description = $9
		WHERE id = $1
	`, txn.ID, txn.OrderID, txn.CustomerID, txn.CustomerName, txn.Type, txn.Status, txn.Amount, txn.Date, txn.Description)
	return requireAffected(res, err)
}

func (t *pgTx) DeleteTransaction(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) DeleteTransactionsByOrder(ctx context.Context, orderID string) (int, error) {
	return t.deleteCount(ctx, `DELETE FROM transactions WHERE order_id = $1`, orderID)
}

func (t *pgTx) DeleteAllTransactions(ctx context.Context) (int, error) {
	return t.deleteCount(ctx, `DELETE FROM transactions`)
}

func (t *pgTx) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		where = append(where, fmt.Sprintf("order_id = $%d", len(args)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, 32)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

const tempOrderColumns = `id, invoice_name, total_amount, remaining_amount, status, sub_orders, assigned_user_id, assigned_user_name, parent_invoice_id, created_at`

func scanTempOrder(row rowScanner) (domain.TempOrder, error) {
	var (
		temp      domain.TempOrder
		subOrders []byte
	)
	if err := row.Scan(&temp.ID, &temp.InvoiceName, &temp.TotalAmount, &temp.RemainingAmount, &temp.Status, &subOrders, &temp.AssignedUserID, &temp.AssignedUserName, &temp.ParentInvoiceID, &temp.CreatedAt); err != nil {
		return domain.TempOrder{}, err
	}
	if err := json.Unmarshal(subOrders, &temp.SubOrders); err != nil {
		return domain.TempOrder{}, fmt.Errorf("decode sub orders for %s: %w", temp.ID, err)
	}
	if temp.SubOrders == nil {
		temp.SubOrders = []domain.SubOrder{}
	}
	temp.CreatedAt = temp.CreatedAt.UTC()
	return temp, nil
}

func encodeSubOrders(subOrders []domain.SubOrder) (string, error) {
	if subOrders == nil {
		subOrders = []domain.SubOrder{}
	}
	raw, err := json.Marshal(subOrders)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *pgTx) InsertTempOrder(ctx context.Context, temp domain.TempOrder) error {
	if temp.ID == "" {
		return store.ErrInvalidTransaction
	}
	subOrders, err := encodeSubOrders(temp.SubOrders)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO temp_orders (`+tempOrderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8,$9,$10)
	`, temp.ID, temp.InvoiceName, temp.TotalAmount, temp.RemainingAmount, temp.Status, subOrders, temp.AssignedUserID, temp.AssignedUserName, temp.ParentInvoiceID, temp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidTransaction
		}
		return err
	}
	return nil
}

func (t *pgTx) GetTempOrder(ctx context.Context, id string) (*domain.TempOrder, error) {
	temp, err := scanTempOrder(t.tx.QueryRowContext(ctx, `SELECT `+tempOrderColumns+` FROM temp_orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &temp, nil
}

func (t *pgTx) UpdateTempOrder(ctx context.Context, temp domain.TempOrder) error {
	subOrders, err := encodeSubOrders(temp.SubOrders)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE temp_orders
		SET invoice_name = $2, total_amount = $3, remaining_amount = $4, status = $5, sub_orders = $6::jsonb,
			assigned_user_id = $7, assigned_user_name = $8, parent_invoice_id = $9
		WHERE id = $1
	`, temp.ID, temp.InvoiceName, temp.TotalAmount, temp.RemainingAmount, temp.Status, subOrders, temp.AssignedUserID, temp.AssignedUserName, temp.ParentInvoiceID)
	return requireAffected(res, err)
}

func (t *pgTx) DeleteTempOrder(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM temp_orders WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) ListTempOrders(ctx context.Context, filter domain.TempOrderFilter) ([]domain.TempOrder, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 1)
	if filter.AssignedUserID != "" {
		args = append(args, filter.AssignedUserID)
		where = append(where, fmt.Sprintf("assigned_user_id = $%d", len(args)))
	}
	if filter.UnconvertedOnly {
		where = append(where, "parent_invoice_id = ''")
	}

	query := `SELECT ` + tempOrderColumns + ` FROM temp_orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	temps := make([]domain.TempOrder, 0, 16)
	for rows.Next() {
		temp, err := scanTempOrder(rows)
		if err != nil {
			return nil, err
		}
		temps = append(temps, temp)
	}
	return temps, rows.Err()
}

const treasuryCardColumns = `id, name, type, currency, balance, created_at`

func scanTreasuryCard(row rowScanner) (domain.TreasuryCard, error) {
	var card domain.TreasuryCard
	err := row.Scan(&card.ID, &card.Name, &card.Type, &card.Currency, &card.Balance, &card.CreatedAt)
	card.CreatedAt = card.CreatedAt.UTC()
	return card, err
}

func (t *pgTx) CreateTreasuryCard(ctx context.Context, card domain.TreasuryCard) (*domain.TreasuryCard, error) {
	if card.ID == "" {
		card.ID = xid.New("treasury")
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO treasury_cards (`+treasuryCardColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, card.ID, card.Name, card.Type, card.Currency, card.Balance, card.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidTransaction
		}
		return nil, err
	}
	return &card, nil
}

func (t *pgTx) GetTreasuryCard(ctx context.Context, id string) (*domain.TreasuryCard, error) {
	card, err := scanTreasuryCard(t.tx.QueryRowContext(ctx, `SELECT `+treasuryCardColumns+` FROM treasury_cards WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &card, nil
}

func (t *pgTx) GetTreasuryCardByType(ctx context.Context, cardType domain.TreasuryCardType) (*domain.TreasuryCard, error) {
	card, err := scanTreasuryCard(t.tx.QueryRowContext(ctx, `
		SELECT `+treasuryCardColumns+`
		FROM treasury_cards
		WHERE type = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE
	`, cardType))
	if err != nil {
		return nil, notFound(err)
	}
	return &card, nil
}

func (t *pgTx) ListTreasuryCards(ctx context.Context) ([]domain.TreasuryCard, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+treasuryCardColumns+` FROM treasury_cards ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]domain.TreasuryCard, 0, 4)
	for rows.Next() {
		card, err := scanTreasuryCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (t *pgTx) SetTreasuryBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE treasury_cards SET balance = $2 WHERE id = $1`, id, balance)
	return requireAffected(res, err)
}

func (t *pgTx) InsertTreasuryTransaction(ctx context.Context, entry domain.TreasuryTransaction) error {
	if entry.ID == "" {
		entry.ID = xid.New("ttx")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO treasury_transactions (id, card_id, amount, type, kind, description, order_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.CardID, entry.Amount, entry.Type, entry.Kind, entry.Description, entry.OrderID, entry.CreatedAt)
	if err != nil {
		return mapTxError(err)
	}
	return nil
}

const treasuryTransactionColumns = `id, card_id, amount, type, kind, description, order_id, created_at`

func scanTreasuryTransactions(rows *sql.Rows) ([]domain.TreasuryTransaction, error) {
	defer rows.Close()

	entries := make([]domain.TreasuryTransaction, 0, 32)
	for rows.Next() {
		var entry domain.TreasuryTransaction
		if err := rows.Scan(&entry.ID, &entry.CardID, &entry.Amount, &entry.Type, &entry.Kind, &entry.Description, &entry.OrderID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (t *pgTx) ListTreasuryTransactions(ctx context.Context, cardID string, limit int) ([]domain.TreasuryTransaction, error) {
	args := make([]any, 0, 2)
	query := `SELECT ` + treasuryTransactionColumns + ` FROM treasury_transactions`
	if cardID != "" {
		args = append(args, cardID)
		query += ` WHERE card_id = $1`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTreasuryTransactions(rows)
}

func (t *pgTx) ListTreasuryTransactionsForOrder(ctx context.Context, orderID string) ([]domain.TreasuryTransaction, error) {
	if orderID == "" {
		return []domain.TreasuryTransaction{}, nil
	}
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+treasuryTransactionColumns+`
		FROM treasury_transactions
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	return scanTreasuryTransactions(rows)
}

func (t *pgTx) DeleteAllTreasuryTransactions(ctx context.Context) (int, error) {
	return t.deleteCount(ctx, `DELETE FROM treasury_transactions`)
}

const creditCardColumns = `id, code, value, currency, status, purchase_date, expiry_date, notes`

func scanCreditCard(row rowScanner) (domain.CreditCard, error) {
	var (
		card   domain.CreditCard
		expiry sql.NullTime
	)
	if err := row.Scan(&card.ID, &card.Code, &card.Value, &card.Currency, &card.Status, &card.PurchaseDate, &expiry, &card.Notes); err != nil {
		return domain.CreditCard{}, err
	}
	card.PurchaseDate = card.PurchaseDate.UTC()
	card.ExpiryDate = timePtr(expiry)
	card.Usages = []domain.CardUsage{}
	return card, nil
}

func (t *pgTx) CreateCreditCard(ctx context.Context, card domain.CreditCard) (*domain.CreditCard, error) {
	card.Code = strings.TrimSpace(card.Code)
	if card.Code == "" {
		return nil, store.ErrInvalidTransaction
	}
	if card.ID == "" {
		card.ID = xid.New("card")
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO credit_cards (`+creditCardColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, card.ID, card.Code, card.Value, card.Currency, card.Status, card.PurchaseDate, nullTime(card.ExpiryDate), card.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidTransaction
		}
		return nil, err
	}
	for _, usage := range card.Usages {
		if err := t.InsertCardUsage(ctx, usage); err != nil {
			return nil, err
		}
	}
	if card.Usages == nil {
		card.Usages = []domain.CardUsage{}
	}
	return &card, nil
}

func (t *pgTx) GetCreditCard(ctx context.Context, id string) (*domain.CreditCard, error) {
	card, err := scanCreditCard(t.tx.QueryRowContext(ctx, `SELECT `+creditCardColumns+` FROM credit_cards WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	usages, err := t.cardUsages(ctx, []string{card.ID})
	if err != nil {
		return nil, err
	}
	card.Usages = append(card.Usages, usages[card.ID]...)
	return &card, nil
}

func (t *pgTx) ListCreditCards(ctx context.Context, status domain.CreditCardStatus) ([]domain.CreditCard, error) {
	query := `SELECT ` + creditCardColumns + ` FROM credit_cards`
	args := make([]any, 0, 1)
	if status != "" {
		args = append(args, status)
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY purchase_date ASC, id ASC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	cards := make([]domain.CreditCard, 0, 16)
	for rows.Next() {
		card, err := scanCreditCard(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(cards) == 0 {
		return cards, nil
	}
	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	usages, err := t.cardUsages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].Usages = append(cards[i].Usages, usages[cards[i].ID]...)
	}
	return cards, nil
}

func (t *pgTx) cardUsages(ctx context.Context, cardIDs []string) (map[string][]domain.CardUsage, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, card_id, order_id, amount, used_at, reversed
		FROM card_usages
		WHERE card_id = ANY($1)
		ORDER BY used_at ASC, id ASC
	`, cardIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCard := make(map[string][]domain.CardUsage, len(cardIDs))
	for rows.Next() {
		usage, err := scanCardUsage(rows)
		if err != nil {
			return nil, err
		}
		byCard[usage.CardID] = append(byCard[usage.CardID], usage)
	}
	return byCard, rows.Err()
}

func scanCardUsage(row rowScanner) (domain.CardUsage, error) {
	var usage domain.CardUsage
	err := row.Scan(&usage.ID, &usage.CardID, &usage.OrderID, &usage.Amount, &usage.UsedAt, &usage.Reversed)
	usage.UsedAt = usage.UsedAt.UTC()
	return usage, err
}

func (t *pgTx) DeleteCreditCard(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) SetCreditCardStatus(ctx context.Context, id string, status domain.CreditCardStatus) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE credit_cards SET status = $2 WHERE id = $1`, id, status)
	return requireAffected(res, err)
}

func (t *pgTx) InsertCardUsage(ctx context.Context, usage domain.CardUsage) error {
	if usage.ID == "" {
		usage.ID = xid.New("usage")
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO card_usages (id, card_id, order_id, amount, used_at, reversed)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, usage.ID, usage.CardID, usage.OrderID, usage.Amount, usage.UsedAt, usage.Reversed)
	if err != nil {
		return mapTxError(err)
	}
	return nil
}

func (t *pgTx) ReverseCardUsagesForOrder(ctx context.Context, orderID string) ([]domain.CardUsage, error) {
	rows, err := t.tx.QueryContext(ctx, `
		UPDATE card_usages
		SET reversed = true
		WHERE order_id = $1 AND reversed = false
		RETURNING id, card_id, order_id, amount, used_at, reversed
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reversed := make([]domain.CardUsage, 0, 4)
	for rows.Next() {
		usage, err := scanCardUsage(rows)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(reversed, func(a, b domain.CardUsage) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return reversed, nil
}

func (t *pgTx) InsertWalletTransaction(ctx context.Context, entry domain.WalletTransaction) error {
	if entry.ID == "" || entry.UserID == "" {
		return store.ErrInvalidTransaction
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, amount, type, payment_method, description, manager_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.UserID, entry.Amount, entry.Type, entry.PaymentMethod, entry.Description, entry.ManagerID, entry.CreatedAt)
	if err != nil {
		return mapTxError(err)
	}
	return nil
}

func (t *pgTx) ListWalletTransactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	query := `SELECT id, user_id, amount, type, payment_method, description, manager_id, created_at FROM wallet_transactions`
	args := make([]any, 0, 1)
	if userID != "" {
		args = append(args, userID)
		query += ` WHERE user_id = $1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.WalletTransaction, 0, 16)
	for rows.Next() {
		var entry domain.WalletTransaction
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Type, &entry.PaymentMethod, &entry.Description, &entry.ManagerID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (t *pgTx) DeleteAllWalletTransactions(ctx context.Context) (int, error) {
	return t.deleteCount(ctx, `DELETE FROM wallet_transactions`)
}

func (t *pgTx) InsertExpense(ctx context.Context, expense domain.Expense) error {
	if expense.ID == "" {
		return store.ErrInvalidTransaction
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount, date, manager_id)
		VALUES ($1,$2,$3,$4,$5)
	`, expense.ID, expense.Description, expense.Amount, expense.Date, expense.ManagerID)
	return err
}

func (t *pgTx) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, description, amount, date, manager_id
		FROM expenses
		ORDER BY date DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 32)
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(&expense.ID, &expense.Description, &expense.Amount, &expense.Date, &expense.ManagerID); err != nil {
			return nil, err
		}
		expense.Date = expense.Date.UTC()
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func (t *pgTx) DeleteExpense(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) DeleteAllExpenses(ctx context.Context) (int, error) {
	return t.deleteCount(ctx, `DELETE FROM expenses`)
}

const depositColumns = `id, receipt_number, customer_name, customer_phone, amount, date, description, status,
	representative_id, representative_name, collected_by, collected_date`

func scanDeposit(row rowScanner) (domain.Deposit, error) {
	var (
		d              domain.Deposit
		representative sql.NullString
		collected      sql.NullTime
	)
	err := row.Scan(&d.ID, &d.ReceiptNumber, &d.CustomerName, &d.CustomerPhone, &d.Amount, &d.Date, &d.Description,
		&d.Status, &representative, &d.RepresentativeName, &d.CollectedBy, &collected)
	d.Date = d.Date.UTC()
	d.RepresentativeID = representative.String
	d.CollectedDate = timePtr(collected)
	return d, err
}

func (t *pgTx) InsertDeposit(ctx context.Context, d domain.Deposit) error {
	if d.ID == "" {
		return store.ErrInvalidTransaction
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO deposits (`+depositColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, d.ID, d.ReceiptNumber, d.CustomerName, d.CustomerPhone, d.Amount, d.Date, d.Description, d.Status,
		nullIfEmpty(d.RepresentativeID), d.RepresentativeName, d.CollectedBy, nullTime(d.CollectedDate))
	if err != nil {
		return mapTxError(err)
	}
	return nil
}

func (t *pgTx) GetDeposit(ctx context.Context, id string) (*domain.Deposit, error) {
	deposit, err := scanDeposit(t.tx.QueryRowContext(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &deposit, nil
}

func (t *pgTx) UpdateDeposit(ctx context.Context, d domain.Deposit) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE deposits
		SET customer_name = $2, customer_phone = $3, amount = $4, date = $5, description = $6, status = $7,
			representative_id = $8, representative_name = $9, collected_by = $10, collected_date = $11
		WHERE id = $1
	`, d.ID, d.CustomerName, d.CustomerPhone, d.Amount, d.Date, d.Description, d.Status,
		nullIfEmpty(d.RepresentativeID), d.RepresentativeName, d.CollectedBy, nullTime(d.CollectedDate))
	return requireAffected(res, mapTxError(err))
}

func (t *pgTx) DeleteDeposit(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM deposits WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) ListDeposits(ctx context.Context, filter domain.DepositFilter) ([]domain.Deposit, error) {
	args := make([]any, 0, 2)
	where := make([]string, 0, 2)
	if filter.RepresentativeID != "" {
		args = append(args, filter.RepresentativeID)
		where = append(where, fmt.Sprintf("representative_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + depositColumns + ` FROM deposits`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, id ASC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deposits := make([]domain.Deposit, 0, 16)
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, deposit)
	}
	return deposits, rows.Err()
}

const creditorColumns = `id, name, type, currency, total_debt, contact_info, created_at`

func scanCreditor(row rowScanner) (domain.Creditor, error) {
	var c domain.Creditor
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Currency, &c.TotalDebt, &c.ContactInfo, &c.CreatedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, err
}

func (t *pgTx) CreateCreditor(ctx context.Context, creditor domain.Creditor) (*domain.Creditor, error) {
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

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO creditors (`+creditorColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, creditor.ID, creditor.Name, creditor.Type, creditor.Currency, creditor.TotalDebt, creditor.ContactInfo, creditor.CreatedAt)
	if err != nil {
		return nil, mapTxError(err)
	}
	return &creditor, nil
}

func (t *pgTx) GetCreditor(ctx context.Context, id string) (*domain.Creditor, error) {
	creditor, err := scanCreditor(t.tx.QueryRowContext(ctx, `SELECT `+creditorColumns+` FROM creditors WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &creditor, nil
}

func (t *pgTx) ListCreditors(ctx context.Context) ([]domain.Creditor, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+creditorColumns+` FROM creditors ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creditors := make([]domain.Creditor, 0, 16)
	for rows.Next() {
		creditor, err := scanCreditor(rows)
		if err != nil {
			return nil, err
		}
		creditors = append(creditors, creditor)
	}
	return creditors, rows.Err()
}

func (t *pgTx) UpdateCreditor(ctx context.Context, c domain.Creditor) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE creditors SET name = $2, type = $3, currency = $4, contact_info = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Type, c.Currency, c.ContactInfo)
	return requireAffected(res, err)
}

func (t *pgTx) SetCreditorDebt(ctx context.Context, id string, total decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE creditors SET total_debt = $2 WHERE id = $1`, id, total)
	return requireAffected(res, err)
}

func (t *pgTx) DeleteCreditor(ctx context.Context, id string) error {
	// external_debts rows go with the creditor through ON DELETE CASCADE.
	res, err := t.tx.ExecContext(ctx, `DELETE FROM creditors WHERE id = $1`, id)
	return requireAffected(res, err)
}

const externalDebtColumns = `id, creditor_id, creditor_name, amount, date, status, notes`

func scanExternalDebt(row rowScanner) (domain.ExternalDebt, error) {
	var d domain.ExternalDebt
	err := row.Scan(&d.ID, &d.CreditorID, &d.CreditorName, &d.Amount, &d.Date, &d.Status, &d.Notes)
	d.Date = d.Date.UTC()
	return d, err
}

func (t *pgTx) InsertExternalDebt(ctx context.Context, d domain.ExternalDebt) error {
	if d.ID == "" {
		return store.ErrInvalidTransaction
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO external_debts (`+externalDebtColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, d.ID, d.CreditorID, d.CreditorName, d.Amount, d.Date, d.Status, d.Notes)
	if err != nil {
		return mapTxError(err)
	}
	return nil
}

func (t *pgTx) GetExternalDebt(ctx context.Context, id string) (*domain.ExternalDebt, error) {
	debt, err := scanExternalDebt(t.tx.QueryRowContext(ctx, `SELECT `+externalDebtColumns+` FROM external_debts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &debt, nil
}

func (t *pgTx) UpdateExternalDebt(ctx context.Context, d domain.ExternalDebt) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE external_debts SET amount = $2, date = $3, status = $4, notes = $5
		WHERE id = $1
	`, d.ID, d.Amount, d.Date, d.Status, d.Notes)
	return requireAffected(res, mapTxError(err))
}

func (t *pgTx) DeleteExternalDebt(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM external_debts WHERE id = $1`, id)
	return requireAffected(res, err)
}

func (t *pgTx) ListExternalDebts(ctx context.Context, creditorID string) ([]domain.ExternalDebt, error) {
	args := make([]any, 0, 1)
	query := `SELECT ` + externalDebtColumns + ` FROM external_debts`
	if creditorID != "" {
		args = append(args, creditorID)
		query += ` WHERE creditor_id = $1`
	}
	query += ` ORDER BY date DESC, id ASC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debts := make([]domain.ExternalDebt, 0, 16)
	for rows.Next() {
		debt, err := scanExternalDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}
	return debts, rows.Err()
}

func (t *pgTx) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	err := t.tx.QueryRowContext(ctx, `
		SELECT exchange_rate, shipping_cost_usd, shipping_price_usd, updated_at
		FROM settings
		WHERE id = 1
	`).Scan(&settings.ExchangeRate, &settings.ShippingCostUSD, &settings.ShippingPriceUSD, &settings.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	settings.UpdatedAt = settings.UpdatedAt.UTC()
	return &settings, nil
}

func (t *pgTx) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO settings (id, exchange_rate, shipping_cost_usd, shipping_price_usd, updated_at)
		VALUES (1,$1,$2,$3,$4)
		ON CONFLICT (id)
		DO UPDATE SET exchange_rate = EXCLUDED.exchange_rate,
			shipping_cost_usd = EXCLUDED.shipping_cost_usd,
			shipping_price_usd = EXCLUDED.shipping_price_usd,
			updated_at = EXCLUDED.updated_at
	`, settings.ExchangeRate, settings.ShippingCostUSD, settings.ShippingPriceUSD, settings.UpdatedAt)
	return err
}

func (t *pgTx) deleteCount(ctx context.Context, query string, args ...any) (int, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
