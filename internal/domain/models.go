package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserAccount struct {
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusProcessed       OrderStatus = "processed"
	StatusReady           OrderStatus = "ready"
	StatusShipped         OrderStatus = "shipped"
	StatusArrivedMisrata  OrderStatus = "arrived_misrata"
	StatusArrivedDubai    OrderStatus = "arrived_dubai"
	StatusArrivedBenghazi OrderStatus = "arrived_benghazi"
	StatusArrivedTobruk   OrderStatus = "arrived_tobruk"
	StatusOutForDelivery  OrderStatus = "out_for_delivery"
	StatusDelivered       OrderStatus = "delivered"
	StatusPaid            OrderStatus = "paid"
	StatusCancelled       OrderStatus = "cancelled"
	StatusReturned        OrderStatus = "returned"
)

// ActiveOrderStatuses are the statuses whose remaining amount counts toward
// customer debt.
var ActiveOrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessed,
	StatusReady,
	StatusShipped,
	StatusArrivedMisrata,
	StatusArrivedDubai,
	StatusArrivedBenghazi,
	StatusArrivedTobruk,
	StatusOutForDelivery,
	StatusDelivered,
	StatusPaid,
}

func (s OrderStatus) IsActive() bool {
	for _, active := range ActiveOrderStatuses {
		if s == active {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	return s.IsActive() || s == StatusCancelled || s == StatusReturned
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCard       PaymentMethod = "card"
	PaymentCashDollar PaymentMethod = "cash_dollar"
)

type Currency string

const (
	CurrencyLYD Currency = "LYD"
	CurrencyUSD Currency = "USD"
)

type Order struct {
	ID                           string          `json:"id"`
	InvoiceNumber                string          `json:"invoice_number"`
	SequenceNumber               int             `json:"sequence_number"`
	TrackingID                   string          `json:"tracking_id"`
	UserID                       string          `json:"user_id"`
	CustomerName                 string          `json:"customer_name"`
	CustomerPhone                string          `json:"customer_phone"`
	CustomerAddress              string          `json:"customer_address"`
	OperationDate                time.Time       `json:"operation_date"`
	DeliveryDate                 *time.Time      `json:"delivery_date,omitempty"`
	Status                       OrderStatus     `json:"status"`
	SellingPriceLYD              decimal.Decimal `json:"selling_price_lyd"`
	RemainingAmount              decimal.Decimal `json:"remaining_amount"`
	DownPaymentLYD               decimal.Decimal `json:"down_payment_lyd"`
	PurchasePriceUSD             decimal.Decimal `json:"purchase_price_usd"`
	ExchangeRate                 decimal.Decimal `json:"exchange_rate"`
	PaymentMethod                PaymentMethod   `json:"payment_method,omitempty"`
	CollectedAmount              decimal.Decimal `json:"collected_amount"`
	WeightKG                     decimal.Decimal `json:"weight_kg"`
	CompanyPricePerKiloUSD       decimal.Decimal `json:"company_price_per_kilo_usd"`
	CustomerPricePerKilo         decimal.Decimal `json:"customer_price_per_kilo"`
	CustomerPricePerKiloCurrency Currency        `json:"customer_price_per_kilo_currency"`
	CompanyWeightCostUSD         decimal.Decimal `json:"company_weight_cost_usd"`
	CustomerWeightCost           decimal.Decimal `json:"customer_weight_cost"`
	CustomerWeightCostUSD        decimal.Decimal `json:"customer_weight_cost_usd"`
	RepresentativeID             string          `json:"representative_id,omitempty"`
	RepresentativeName           string          `json:"representative_name,omitempty"`
	ManagerID                    string          `json:"manager_id,omitempty"`
	ItemDescription              string          `json:"item_description"`
	ProductLinks                 string          `json:"product_links"`
	Store                        string          `json:"store"`
	CreatedAt                    time.Time       `json:"created_at"`
	UpdatedAt                    time.Time       `json:"updated_at"`
}

type OrderCreateRequest struct {
	UserID           string          `json:"user_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	CustomerAddress  string          `json:"customer_address"`
	OperationDate    *time.Time      `json:"operation_date,omitempty"`
	Status           OrderStatus     `json:"status"`
	SellingPriceLYD  decimal.Decimal `json:"selling_price_lyd"`
	DownPaymentLYD   decimal.Decimal `json:"down_payment_lyd"`
	PurchasePriceUSD decimal.Decimal `json:"purchase_price_usd"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	TrackingID       string          `json:"tracking_id"`
	ItemDescription  string          `json:"item_description"`
	ProductLinks     string          `json:"product_links"`
	Store            string          `json:"store"`
	ManagerID        string          `json:"manager_id"`
}

type OrderCreateResponse struct {
	Order               Order        `json:"order"`
	DownPayment         *Transaction `json:"down_payment,omitempty"`
	TreasuryDistributed bool         `json:"treasury_distributed"`
}

type OrderUpdateRequest struct {
	CustomerName     *string          `json:"customer_name,omitempty"`
	CustomerPhone    *string          `json:"customer_phone,omitempty"`
	CustomerAddress  *string          `json:"customer_address,omitempty"`
	TrackingID       *string          `json:"tracking_id,omitempty"`
	ItemDescription  *string          `json:"item_description,omitempty"`
	ProductLinks     *string          `json:"product_links,omitempty"`
	Store            *string          `json:"store,omitempty"`
	Status           *OrderStatus     `json:"status,omitempty"`
	UserID           *string          `json:"user_id,omitempty"`
	SellingPriceLYD  *decimal.Decimal `json:"selling_price_lyd,omitempty"`
	PurchasePriceUSD *decimal.Decimal `json:"purchase_price_usd,omitempty"`
}

type OrderFilter struct {
	UserID           string
	Status           OrderStatus
	RepresentativeID string
	Limit            int
}

type WeightAmendRequest struct {
	WeightKG               decimal.Decimal `json:"weight_kg"`
	CompanyPricePerKiloUSD decimal.Decimal `json:"company_price_per_kilo_usd"`
	CustomerPricePerKilo   decimal.Decimal `json:"customer_price_per_kilo"`
	CustomerPriceCurrency  Currency        `json:"customer_price_currency"`
}

type ShippingCostRequest struct {
	CostUSD decimal.Decimal `json:"cost_usd"`
}

type CollectPaymentRequest struct {
	CollectedAmount decimal.Decimal `json:"collected_amount"`
}

type AssignRepresentativeRequest struct {
	OrderIDs         []string `json:"order_ids"`
	RepresentativeID string   `json:"representative_id"`
}

type BulkOrdersRequest struct {
	OrderIDs []string    `json:"order_ids"`
	Status   OrderStatus `json:"status,omitempty"`
}

type OrderDeleteResponse struct {
	OrderID          string          `json:"order_id"`
	TreasuryReversed bool            `json:"treasury_reversed"`
	CreditRestored   decimal.Decimal `json:"credit_restored"`
	CostRefunded     decimal.Decimal `json:"cost_refunded"`
	TransactionsGone int             `json:"transactions_removed"`
}

type BulkOrdersResponse struct {
	OrderIDs []string `json:"order_ids"`
}

type TransactionType string

const (
	TransactionOrder   TransactionType = "order"
	TransactionPayment TransactionType = "payment"
	TransactionDebt    TransactionType = "debt"
)

// TempCustomerPrefix marks transactions logged against unassigned draft
// sub-orders. They never trigger a debt recompute.
const TempCustomerPrefix = "TEMP-"

type Transaction struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id,omitempty"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Type         TransactionType `json:"type"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
}

type TransactionCreateRequest struct {
	OrderID      string          `json:"order_id"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         *time.Time      `json:"date,omitempty"`
}

type TransactionAmendRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

type TransactionFilter struct {
	CustomerID string
	OrderID    string
	Limit      int
}

type Customer struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Debt          decimal.Decimal `json:"debt"`
	OrderCount    int             `json:"order_count"`
	OrderCounter  int             `json:"order_counter"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CustomerCreateRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type Representative struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	AssignedOrders int       `json:"assigned_orders"`
	CreatedAt      time.Time `json:"created_at"`
}

type RepresentativeCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type TreasuryCardType string

const (
	TreasuryCashLibyan TreasuryCardType = "cash_libyan"
	TreasuryBank       TreasuryCardType = "bank"
	TreasuryCashDollar TreasuryCardType = "cash_dollar"
)

type TreasuryCard struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Type      TreasuryCardType `json:"type"`
	Currency  Currency         `json:"currency"`
	Balance   decimal.Decimal  `json:"balance"`
	CreatedAt time.Time        `json:"created_at"`
}

type TreasuryCardCreateRequest struct {
	Name string           `json:"name"`
	Type TreasuryCardType `json:"type"`
}

type MovementType string

const (
	MovementDeposit    MovementType = "deposit"
	MovementWithdrawal MovementType = "withdrawal"
)

// TreasuryEntryKind tags movements that a later operation has to find again.
// Manual and down payment movements leave it empty.
type TreasuryEntryKind string

const (
	EntryPurchaseCost       TreasuryEntryKind = "purchase_cost"
	EntryPurchaseCostRefund TreasuryEntryKind = "purchase_cost_refund"
)

type TreasuryTransaction struct {
	ID          string            `json:"id"`
	CardID      string            `json:"card_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        MovementType      `json:"type"`
	Kind        TreasuryEntryKind `json:"kind,omitempty"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type TreasuryTransactionRequest struct {
	Amount      decimal.Decimal   `json:"amount"`
	Type        MovementType      `json:"type"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Kind        TreasuryEntryKind `json:"-"`
}

type TreasuryDrift struct {
	CardID    string          `json:"card_id"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	Drift     decimal.Decimal `json:"drift"`
}

type CreditCardStatus string

const (
	CreditAvailable CreditCardStatus = "available"
	CreditUsed      CreditCardStatus = "used"
	CreditExpired   CreditCardStatus = "expired"
)

type CardUsage struct {
	ID       string          `json:"id"`
	CardID   string          `json:"card_id"`
	OrderID  string          `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	UsedAt   time.Time       `json:"used_at"`
	Reversed bool            `json:"reversed"`
}

type CreditCard struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Value        decimal.Decimal  `json:"value"`
	Currency     Currency         `json:"currency"`
	Status       CreditCardStatus `json:"status"`
	PurchaseDate time.Time        `json:"purchase_date"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	Notes        string           `json:"notes"`
	Usages       []CardUsage      `json:"usages"`
}

type CreditCardCreateRequest struct {
	Code         string          `json:"code"`
	Value        decimal.Decimal `json:"value"`
	Currency     Currency        `json:"currency"`
	PurchaseDate *time.Time      `json:"purchase_date,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	Notes        string          `json:"notes"`
}

type CardAllocationItem struct {
	CardID string          `json:"card_id"`
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

type CardAllocation struct {
	Items     []CardAllocationItem `json:"items"`
	Covered   decimal.Decimal      `json:"covered"`
	Remaining decimal.Decimal      `json:"remaining"`
}

type AllocationRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ConsumeCardsRequest struct {
	OrderID string               `json:"order_id"`
	Items   []CardAllocationItem `json:"items"`
}

type CostDeductionRequest struct {
	OrderID       string          `json:"order_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	CardID        string          `json:"card_id,omitempty"`
}

type CostDeductionResult struct {
	CardID       string          `json:"card_id,omitempty"`
	FromCard     decimal.Decimal `json:"from_card"`
	FromTreasury decimal.Decimal `json:"from_treasury"`
}

type WalletTransaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          MovementType    `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
	ManagerID     string          `json:"manager_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

type WalletTransactionRequest struct {
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          MovementType    `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
	ManagerID     string          `json:"manager_id"`
}

type SubOrder struct {
	SubOrderID      string          `json:"sub_order_id"`
	TrackingID      string          `json:"tracking_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	SellingPriceLYD decimal.Decimal `json:"selling_price_lyd"`
	DownPaymentLYD  decimal.Decimal `json:"down_payment_lyd"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	ProductLinks    string          `json:"product_links"`
	ItemDescription string          `json:"item_description"`
	ShipmentStatus  OrderStatus     `json:"shipment_status"`
}

type TempOrder struct {
	ID               string          `json:"id"`
	InvoiceName      string          `json:"invoice_name"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Status           OrderStatus     `json:"status"`
	SubOrders        []SubOrder      `json:"sub_orders"`
	AssignedUserID   string          `json:"assigned_user_id,omitempty"`
	AssignedUserName string          `json:"assigned_user_name,omitempty"`
	ParentInvoiceID  string          `json:"parent_invoice_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type TempOrderCreateRequest struct {
	InvoiceName      string          `json:"invoice_name"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Status           OrderStatus     `json:"status"`
	SubOrders        []SubOrder      `json:"sub_orders"`
	AssignedUserID   string          `json:"assigned_user_id"`
	AssignedUserName string          `json:"assigned_user_name"`
}

type TempOrderUpdateRequest struct {
	InvoiceName      *string      `json:"invoice_name,omitempty"`
	Status           *OrderStatus `json:"status,omitempty"`
	AssignedUserID   *string      `json:"assigned_user_id,omitempty"`
	AssignedUserName *string      `json:"assigned_user_name,omitempty"`
}

type TempOrderFilter struct {
	AssignedUserID  string
	UnconvertedOnly bool
}

type TempOrderPaymentRequest struct {
	SubOrderID string          `json:"sub_order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
}

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	ManagerID   string          `json:"manager_id"`
}

type ExpenseCreateRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date,omitempty"`
}

type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositCollected DepositStatus = "collected"
	DepositCancelled DepositStatus = "cancelled"
)

func (s DepositStatus) Valid() bool {
	switch s {
	case DepositPending, DepositCollected, DepositCancelled:
		return true
	}
	return false
}

type DepositCollector string

const (
	CollectedByAdmin          DepositCollector = "admin"
	CollectedByRepresentative DepositCollector = "representative"
)

// Deposit is cash a customer hands over outside an order, either at the
// office or through a representative who later brings it in.
type Deposit struct {
	ID                 string           `json:"id"`
	ReceiptNumber      string           `json:"receipt_number"`
	CustomerName       string           `json:"customer_name"`
	CustomerPhone      string           `json:"customer_phone"`
	Amount             decimal.Decimal  `json:"amount"`
	Date               time.Time        `json:"date"`
	Description        string           `json:"description"`
	Status             DepositStatus    `json:"status"`
	RepresentativeID   string           `json:"representative_id,omitempty"`
	RepresentativeName string           `json:"representative_name,omitempty"`
	CollectedBy        DepositCollector `json:"collected_by"`
	CollectedDate      *time.Time       `json:"collected_date,omitempty"`
}

type DepositCreateRequest struct {
	CustomerName     string           `json:"customer_name"`
	CustomerPhone    string           `json:"customer_phone"`
	Amount           decimal.Decimal  `json:"amount"`
	Date             *time.Time       `json:"date,omitempty"`
	Description      string           `json:"description"`
	RepresentativeID string           `json:"representative_id"`
	CollectedBy      DepositCollector `json:"collected_by"`
}

type DepositStatusRequest struct {
	Status DepositStatus `json:"status"`
}

type DepositFilter struct {
	RepresentativeID string
	Status           DepositStatus
}

type CreditorType string

const (
	CreditorCompany CreditorType = "company"
	CreditorPerson  CreditorType = "person"
)

// Creditor is someone the business owes money to. TotalDebt is a cache of
// the sum of the creditor's external debt entries.
type Creditor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        CreditorType    `json:"type"`
	Currency    Currency        `json:"currency"`
	TotalDebt   decimal.Decimal `json:"total_debt"`
	ContactInfo string          `json:"contact_info,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreditorCreateRequest struct {
	Name           string          `json:"name"`
	Type           CreditorType    `json:"type"`
	Currency       Currency        `json:"currency"`
	ContactInfo    string          `json:"contact_info"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

type CreditorUpdateRequest struct {
	Name        *string       `json:"name,omitempty"`
	Type        *CreditorType `json:"type,omitempty"`
	Currency    *Currency     `json:"currency,omitempty"`
	ContactInfo *string       `json:"contact_info,omitempty"`
}

type ExternalDebtStatus string

const (
	ExternalDebtPending ExternalDebtStatus = "pending"
	ExternalDebtPaid    ExternalDebtStatus = "paid"
	ExternalDebtPayment ExternalDebtStatus = "payment"
)

func (s ExternalDebtStatus) Valid() bool {
	switch s {
	case ExternalDebtPending, ExternalDebtPaid, ExternalDebtPayment:
		return true
	}
	return false
}

// ExternalDebt is one signed entry on a creditor's account. Payments are
// recorded as negative amounts.
type ExternalDebt struct {
	ID           string             `json:"id"`
	CreditorID   string             `json:"creditor_id"`
	CreditorName string             `json:"creditor_name"`
	Amount       decimal.Decimal    `json:"amount"`
	Date         time.Time          `json:"date"`
	Status       ExternalDebtStatus `json:"status"`
	Notes        string             `json:"notes"`
}

type ExternalDebtCreateRequest struct {
	CreditorID string             `json:"creditor_id"`
	Amount     decimal.Decimal    `json:"amount"`
	Date       *time.Time         `json:"date,omitempty"`
	Status     ExternalDebtStatus `json:"status"`
	Notes      string             `json:"notes"`
}

type ExternalDebtUpdateRequest struct {
	Amount *decimal.Decimal    `json:"amount,omitempty"`
	Date   *time.Time          `json:"date,omitempty"`
	Status *ExternalDebtStatus `json:"status,omitempty"`
	Notes  *string             `json:"notes,omitempty"`
}

type Settings struct {
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	ShippingCostUSD  decimal.Decimal `json:"shipping_cost_usd"`
	ShippingPriceUSD decimal.Decimal `json:"shipping_price_usd"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type SettingsUpdateRequest struct {
	ExchangeRate     *decimal.Decimal `json:"exchange_rate,omitempty"`
	ShippingCostUSD  *decimal.Decimal `json:"shipping_cost_usd,omitempty"`
	ShippingPriceUSD *decimal.Decimal `json:"shipping_price_usd,omitempty"`
}

type FinancialSummary struct {
	TreasuryBalances map[TreasuryCardType]decimal.Decimal `json:"treasury_balances"`
	OutstandingDebt  decimal.Decimal                      `json:"outstanding_debt"`
	WalletBalances   decimal.Decimal                      `json:"wallet_balances"`
	TotalExpenses    decimal.Decimal                      `json:"total_expenses"`
	CreditorDebt     decimal.Decimal                      `json:"creditor_debt"`
	PendingDeposits  decimal.Decimal                      `json:"pending_deposits"`
	Customers        int                                  `json:"customers"`
	ActiveOrders     int                                  `json:"active_orders"`
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

type ResetResponse struct {
	TransactionsRemoved         int `json:"transactions_removed"`
	TreasuryTransactionsRemoved int `json:"treasury_transactions_removed"`
	WalletTransactionsRemoved   int `json:"wallet_transactions_removed"`
	ExpensesRemoved             int `json:"expenses_removed"`
	CustomersRecomputed         int `json:"customers_recomputed"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}
