package memory

import (
	"cmp"
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/logger"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// Store keeps all ledger state in process. InTx works on a private copy of
// the state and swaps it in only when fn succeeds, so a failed operation
// leaves nothing behind.
type Store struct {
	mu              sync.RWMutex
	data            *state
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
	log             zerolog.Logger
}

type state struct {
	customers       map[string]domain.Customer
	representatives map[string]domain.Representative
	orders          map[string]domain.Order
	transactions    map[string]domain.Transaction
	tempOrders      map[string]domain.TempOrder
	treasuryCards   map[string]domain.TreasuryCard
	treasuryTxs     []domain.TreasuryTransaction
	creditCards     map[string]domain.CreditCard
	walletTxs       []domain.WalletTransaction
	expenses        map[string]domain.Expense
	deposits        map[string]domain.Deposit
	creditors       map[string]domain.Creditor
	externalDebts   map[string]domain.ExternalDebt
	settings        *domain.Settings
}

func newState() *state {
	return &state{
		customers:       make(map[string]domain.Customer),
		representatives: make(map[string]domain.Representative),
		orders:          make(map[string]domain.Order),
		transactions:    make(map[string]domain.Transaction),
		tempOrders:      make(map[string]domain.TempOrder),
		treasuryCards:   make(map[string]domain.TreasuryCard),
		treasuryTxs:     make([]domain.TreasuryTransaction, 0, 64),
		creditCards:     make(map[string]domain.CreditCard),
		walletTxs:       make([]domain.WalletTransaction, 0, 32),
		expenses:        make(map[string]domain.Expense),
		deposits:        make(map[string]domain.Deposit),
		creditors:       make(map[string]domain.Creditor),
		externalDebts:   make(map[string]domain.ExternalDebt),
	}
}

func (s *state) clone() *state {
	out := &state{
		customers:       make(map[string]domain.Customer, len(s.customers)),
		representatives: make(map[string]domain.Representative, len(s.representatives)),
		orders:          make(map[string]domain.Order, len(s.orders)),
		transactions:    make(map[string]domain.Transaction, len(s.transactions)),
		tempOrders:      make(map[string]domain.TempOrder, len(s.tempOrders)),
		treasuryCards:   make(map[string]domain.TreasuryCard, len(s.treasuryCards)),
		treasuryTxs:     slices.Clone(s.treasuryTxs),
		creditCards:     make(map[string]domain.CreditCard, len(s.creditCards)),
		walletTxs:       slices.Clone(s.walletTxs),
		expenses:        make(map[string]domain.Expense, len(s.expenses)),
		deposits:        make(map[string]domain.Deposit, len(s.deposits)),
		creditors:       make(map[string]domain.Creditor, len(s.creditors)),
		externalDebts:   make(map[string]domain.ExternalDebt, len(s.externalDebts)),
	}
	for id, v := range s.customers {
		out.customers[id] = v
	}
	for id, v := range s.representatives {
		out.representatives[id] = v
	}
	for id, v := range s.orders {
		out.orders[id] = cloneOrder(v)
	}
	for id, v := range s.transactions {
		out.transactions[id] = v
	}
	for id, v := range s.tempOrders {
		out.tempOrders[id] = cloneTempOrder(v)
	}
	for id, v := range s.treasuryCards {
		out.treasuryCards[id] = v
	}
	for id, v := range s.creditCards {
		out.creditCards[id] = cloneCreditCard(v)
	}
	for id, v := range s.expenses {
		out.expenses[id] = v
	}
	for id, v := range s.deposits {
		out.deposits[id] = cloneDeposit(v)
	}
	for id, v := range s.creditors {
		out.creditors[id] = v
	}
	for id, v := range s.externalDebts {
		out.externalDebts[id] = v
	}
	if s.settings != nil {
		settings := *s.settings
		out.settings = &settings
	}
	return out
}

// seedUsers builds the staff accounts for dev/demo mode. Passwords come from
// SEED_ADMIN_PASSWORD and SEED_MANAGER_PASSWORD with dev fallbacks.
func seedUsers(log zerolog.Logger) map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	managerPwd := envOr("SEED_MANAGER_PASSWORD", "manager123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_MANAGER_PASSWORD") == "" {
		log.Warn().Msg("using default dev credentials; set SEED_ADMIN_PASSWORD and SEED_MANAGER_PASSWORD to override")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"manager", managerPwd, "manager"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("failed to hash seed password")
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store with staff accounts and one treasury card per
// payment channel.
func NewSeeded() *Store {
	log := logger.WithComponent("store.memory")
	data := newState()

	now := time.Now().UTC()
	for _, card := range []domain.TreasuryCard{
		{ID: "treasury-cash-libyan", Name: "Cash (LYD)", Type: domain.TreasuryCashLibyan, Currency: domain.CurrencyLYD},
		{ID: "treasury-bank", Name: "Bank", Type: domain.TreasuryBank, Currency: domain.CurrencyLYD},
		{ID: "treasury-cash-dollar", Name: "Cash (USD)", Type: domain.TreasuryCashDollar, Currency: domain.CurrencyUSD},
	} {
		card.Balance = decimal.Zero
		card.CreatedAt = now
		data.treasuryCards[card.ID] = card
	}

	return &Store{
		data:            data,
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(log),
		log:             log,
	}
}

func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(&memTx{d: working}); err != nil {
		return err
	}
	s.data = working
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.AuditLog, 0, min(limit, len(s.auditLogs)))
	for i := len(s.auditLogs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.auditLogs[i])
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || user.Password == "" {
		return store.ErrInvalidTransaction
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidTransaction
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		result = append(result, user)
	}
	slices.SortFunc(result, func(a, b domain.UserAccount) int {
		return cmp.Compare(a.Username, b.Username)
	})
	return result, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cloneOrder(src domain.Order) domain.Order {
	out := src
	if src.DeliveryDate != nil {
		at := *src.DeliveryDate
		out.DeliveryDate = &at
	}
	return out
}

func cloneTempOrder(src domain.TempOrder) domain.TempOrder {
	out := src
	out.SubOrders = slices.Clone(src.SubOrders)
	return out
}

func cloneCreditCard(src domain.CreditCard) domain.CreditCard {
	out := src
	out.Usages = slices.Clone(src.Usages)
	if src.ExpiryDate != nil {
		at := *src.ExpiryDate
		out.ExpiryDate = &at
	}
	return out
}

func cloneDeposit(src domain.Deposit) domain.Deposit {
	out := src
	if src.CollectedDate != nil {
		at := *src.CollectedDate
		out.CollectedDate = &at
	}
	return out
}
