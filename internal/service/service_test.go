package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/pricing"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	repo := memory.NewSeeded()
	svc := New(repo, pricing.NewProvider(repo, nil, 0), nil)
	ctx := WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
	return svc, ctx
}

func pricingAt(rate string) domain.PricingContext {
	return domain.PricingContext{
		ExchangeRate:            decimal.RequireFromString(rate),
		ShippingCostPerKiloUSD:  domain.DefaultShippingCostUSD,
		ShippingPricePerKiloUSD: domain.DefaultShippingPriceUSD,
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got, msgAndArgs)
}

func createCustomer(t *testing.T, svc *Service, ctx context.Context, username string) domain.Customer {
	t.Helper()
	customer, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{Username: username, Name: "Customer " + username})
	require.NoError(t, err)
	return customer
}

func treasuryBalance(t *testing.T, svc *Service, ctx context.Context, cardType domain.TreasuryCardType) decimal.Decimal {
	t.Helper()
	cards, err := svc.ListTreasuryCards(ctx)
	require.NoError(t, err)
	for _, card := range cards {
		if card.Type == cardType {
			return card.Balance
		}
	}
	t.Fatalf("no treasury card of type %s", cardType)
	return decimal.Zero
}

func customerDebt(t *testing.T, svc *Service, ctx context.Context, id string) decimal.Decimal {
	t.Helper()
	customer, err := svc.GetCustomer(ctx, id)
	require.NoError(t, err)
	return customer.Debt
}

func TestOrderLifecycleScenario(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "a1")

	debtBefore := customerDebt(t, svc, ctx, customer.ID)
	cashBefore := treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan)

	created, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: dec("100"),
		DownPaymentLYD:  dec("20"),
		PaymentMethod:   domain.PaymentCash,
	})
	require.NoError(t, err)
	assert.True(t, created.TreasuryDistributed)
	require.NotNil(t, created.DownPayment)
	requireAmount(t, "80", created.Order.RemainingAmount)
	requireAmount(t, "20", treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan).Sub(cashBefore))
	requireAmount(t, "80", customerDebt(t, svc, ctx, customer.ID).Sub(debtBefore))

	amended, err := svc.AmendOrderWeight(ctx, pc, created.Order.ID, domain.WeightAmendRequest{
		WeightKG:               dec("6"),
		CompanyPricePerKiloUSD: dec("1.5"),
		CustomerPricePerKilo:   dec("10"),
		CustomerPriceCurrency:  domain.CurrencyLYD,
	})
	require.NoError(t, err)
	requireAmount(t, "140", amended.RemainingAmount)
	requireAmount(t, "160", amended.SellingPriceLYD)
	requireAmount(t, "9", amended.CompanyWeightCostUSD)
	requireAmount(t, "140", customerDebt(t, svc, ctx, customer.ID))

	deleted, err := svc.DeleteOrder(ctx, pc, created.Order.ID)
	require.NoError(t, err)
	assert.True(t, deleted.TreasuryReversed)
	assert.Equal(t, 2, deleted.TransactionsGone)
	requireAmount(t, debtBefore.String(), customerDebt(t, svc, ctx, customer.ID))
	requireAmount(t, cashBefore.String(), treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan))

	_, err = svc.GetOrder(ctx, created.Order.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDebtCountsOnlyActiveOrders(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "mixed")

	ids := make([]string, 0, 4)
	for _, price := range []string{"100", "50", "30", "20"} {
		resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec(price)})
		require.NoError(t, err)
		ids = append(ids, resp.Order.ID)
	}

	_, err := svc.BulkUpdateOrdersStatus(ctx, domain.BulkOrdersRequest{OrderIDs: []string{ids[1]}, Status: domain.StatusCancelled})
	require.NoError(t, err)
	_, err = svc.BulkUpdateOrdersStatus(ctx, domain.BulkOrdersRequest{OrderIDs: []string{ids[2]}, Status: domain.StatusDelivered})
	require.NoError(t, err)
	_, err = svc.BulkUpdateOrdersStatus(ctx, domain.BulkOrdersRequest{OrderIDs: []string{ids[3]}, Status: domain.StatusReturned})
	require.NoError(t, err)

	recomputed, err := svc.RecomputeCustomerDebt(ctx, customer.ID)
	require.NoError(t, err)
	requireAmount(t, "130", recomputed.Debt)
	assert.Equal(t, 2, recomputed.OrderCount)
}

func TestComputeDebtIncludesUnconvertedDrafts(t *testing.T) {
	orders := []domain.Order{
		{UserID: "u1", Status: domain.StatusPending, RemainingAmount: dec("40")},
		{UserID: "u1", Status: domain.StatusCancelled, RemainingAmount: dec("999")},
		{UserID: "u2", Status: domain.StatusPending, RemainingAmount: dec("5")},
	}
	temps := []domain.TempOrder{
		{AssignedUserID: "u1", Status: domain.StatusPending, RemainingAmount: dec("15")},
		{AssignedUserID: "u1", Status: domain.StatusPending, RemainingAmount: dec("70"), ParentInvoiceID: "ord-1"},
		{AssignedUserID: "u1", Status: domain.StatusCancelled, RemainingAmount: dec("25")},
	}

	debt, count := ComputeDebt(orders, temps, "u1")
	requireAmount(t, "55", debt)
	assert.Equal(t, 1, count)
}

func TestAmendPaymentAppliesDeltaOnly(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "amend")

	resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("100")})
	require.NoError(t, err)

	payment, err := svc.ApplyTransaction(ctx, domain.TransactionCreateRequest{
		OrderID: resp.Order.ID,
		Type:    domain.TransactionPayment,
		Amount:  dec("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, payment.CustomerID)

	order, err := svc.GetOrder(ctx, resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "70", order.RemainingAmount)

	_, err = svc.AmendTransaction(ctx, payment.ID, domain.TransactionAmendRequest{Amount: dec("45")})
	require.NoError(t, err)
	order, err = svc.GetOrder(ctx, resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "55", order.RemainingAmount)
	requireAmount(t, "55", customerDebt(t, svc, ctx, customer.ID))

	require.NoError(t, svc.RemoveTransaction(ctx, payment.ID))
	order, err = svc.GetOrder(ctx, resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "100", order.RemainingAmount)
}

func TestAmendWeightTwiceWritesOneEntry(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "weight")

	resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("100")})
	require.NoError(t, err)

	req := domain.WeightAmendRequest{
		WeightKG:               dec("2"),
		CompanyPricePerKiloUSD: dec("4.5"),
		CustomerPricePerKilo:   dec("5"),
		CustomerPriceCurrency:  domain.CurrencyUSD,
	}
	first, err := svc.AmendOrderWeight(ctx, pc, resp.Order.ID, req)
	require.NoError(t, err)
	requireAmount(t, "150", first.SellingPriceLYD)
	requireAmount(t, "150", first.RemainingAmount)
	requireAmount(t, "50", first.CustomerWeightCost)
	requireAmount(t, "10", first.CustomerWeightCostUSD)

	second, err := svc.AmendOrderWeight(ctx, pc, resp.Order.ID, req)
	require.NoError(t, err)
	requireAmount(t, "150", second.SellingPriceLYD)
	requireAmount(t, "150", second.RemainingAmount)

	entries, err := svc.ListTransactions(ctx, domain.TransactionFilter{OrderID: resp.Order.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	requireAmount(t, "50", entries[0].Amount)
	assert.Equal(t, domain.TransactionOrder, entries[0].Type)

	lighter, err := svc.AmendOrderWeight(ctx, pc, resp.Order.ID, domain.WeightAmendRequest{
		WeightKG:              dec("1"),
		CustomerPricePerKilo:  dec("5"),
		CustomerPriceCurrency: domain.CurrencyUSD,
	})
	require.NoError(t, err)
	requireAmount(t, "125", lighter.SellingPriceLYD)
	requireAmount(t, "125", lighter.RemainingAmount)
}

func TestAmendWeightRejectsNegativeWeight(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.AmendOrderWeight(ctx, pricingAt("5"), "ord-x", domain.WeightAmendRequest{WeightKG: dec("-1")})
	require.ErrorIs(t, err, store.ErrInvalidTransaction)
}

func TestAmendWeightInUSDNeedsUsableRate(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "norate")

	resp, err := svc.CreateOrder(ctx, pricingAt("0"), domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("10")})
	require.NoError(t, err)
	requireAmount(t, "1", resp.Order.ExchangeRate)

	_, err = svc.AmendOrderWeight(ctx, pricingAt("1"), resp.Order.ID, domain.WeightAmendRequest{
		WeightKG:              dec("1"),
		CustomerPricePerKilo:  dec("5"),
		CustomerPriceCurrency: domain.CurrencyUSD,
	})
	require.ErrorIs(t, err, ErrInvalidExchangeRate)
	require.ErrorIs(t, err, store.ErrInvalidTransaction)

	order, err := svc.GetOrder(ctx, resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "10", order.SellingPriceLYD)
}

func TestShippingCostConvertsAtOrderRate(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "ship")

	resp, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("100")})
	require.NoError(t, err)

	order, err := svc.AddCustomerShippingCost(ctx, pricingAt("8"), resp.Order.ID, domain.ShippingCostRequest{CostUSD: dec("12")})
	require.NoError(t, err)
	requireAmount(t, "160", order.SellingPriceLYD)
	requireAmount(t, "12", order.CustomerWeightCostUSD)

	order, err = svc.AddCustomerShippingCost(ctx, pricingAt("8"), resp.Order.ID, domain.ShippingCostRequest{CostUSD: dec("10")})
	require.NoError(t, err)
	requireAmount(t, "150", order.SellingPriceLYD)
	requireAmount(t, "150", order.RemainingAmount)
}

func TestInvoiceNumbersAreSequentialUnderConcurrency(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "seq")

	const workers = 8
	var wg sync.WaitGroup
	invoices := make(chan string, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("10")})
			if err != nil {
				t.Errorf("create order: %v", err)
				return
			}
			invoices <- resp.Order.InvoiceNumber
		}()
	}
	wg.Wait()
	close(invoices)

	seen := map[string]bool{}
	for invoice := range invoices {
		require.False(t, seen[invoice], "duplicate invoice %s", invoice)
		seen[invoice] = true
	}
	require.Len(t, seen, workers)
	for i := 1; i <= workers; i++ {
		assert.True(t, seen[formatInvoiceNumber("seq", i)], "missing sequence %d", i)
	}

	stored, err := svc.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.OrderCounter)
}

func TestNextInvoiceSequencePrefersHigherCounter(t *testing.T) {
	latest := &domain.Order{InvoiceNumber: "ali-004"}
	assert.Equal(t, 5, nextInvoiceSequence(latest, 2))
	assert.Equal(t, 10, nextInvoiceSequence(latest, 9))
	assert.Equal(t, 1, nextInvoiceSequence(nil, 0))
	assert.Equal(t, 4, nextInvoiceSequence(&domain.Order{InvoiceNumber: "broken", SequenceNumber: 3}, 0))
}

func TestPaymentLargerThanRemainingClampsToZero(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "clamp")

	resp, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("40")})
	require.NoError(t, err)

	_, err = svc.ApplyTransaction(ctx, domain.TransactionCreateRequest{
		OrderID: resp.Order.ID,
		Type:    domain.TransactionPayment,
		Amount:  dec("65"),
	})
	require.NoError(t, err)

	order, err := svc.GetOrder(ctx, resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "0", order.RemainingAmount)
	requireAmount(t, "0", customerDebt(t, svc, ctx, customer.ID))
}

func TestCreateOrderForUnknownCustomerWritesNothing(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{
		UserID:          "cus-missing",
		SellingPriceLYD: dec("10"),
		DownPaymentLYD:  dec("5"),
		PaymentMethod:   domain.PaymentCash,
	})
	require.ErrorIs(t, err, store.ErrNotFound)
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan))

	entries, err := svc.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateOrderRequiresUser(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{SellingPriceLYD: dec("10")})
	require.ErrorIs(t, err, store.ErrInvalidTransaction)
}

func TestCashDollarReversalUsesOrderSnapshotRate(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "usd")

	resp, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: dec("200"),
		DownPaymentLYD:  dec("50"),
		PaymentMethod:   domain.PaymentCashDollar,
	})
	require.NoError(t, err)
	require.True(t, resp.TreasuryDistributed)
	requireAmount(t, "10", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	_, err = svc.DeleteOrder(ctx, pricingAt("10"), resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))
}

func TestCashDollarDistributeAndReverseRatesMayDiffer(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "dual")

	resp, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: dec("200"),
		DownPaymentLYD:  dec("50"),
		ExchangeRate:    dec("4"),
		PaymentMethod:   domain.PaymentCashDollar,
	})
	require.NoError(t, err)
	requireAmount(t, "10", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	_, err = svc.DeleteOrder(ctx, pricingAt("5"), resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "-2.5", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	report, err := svc.VerifyTreasury(ctx)
	require.NoError(t, err)
	for _, row := range report {
		requireAmount(t, "0", row.Drift, row.CardID)
	}
}

func TestCashDollarDistributionRefusedWithoutRate(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "badrate")

	resp, err := svc.CreateOrder(ctx, pricingAt("1"), domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: dec("100"),
		DownPaymentLYD:  dec("25"),
		PaymentMethod:   domain.PaymentCashDollar,
	})
	require.NoError(t, err)
	assert.False(t, resp.TreasuryDistributed)
	requireAmount(t, "75", resp.Order.RemainingAmount)
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))
}

func TestDistributeRoutesByPaymentMethod(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")

	err := svc.repo.InTx(ctx, func(tx store.Tx) error {
		ok, err := svc.Distribute(ctx, tx, pc, "ord-1", "x-001", domain.PaymentCard, dec("30"))
		require.True(t, ok)
		if err != nil {
			return err
		}
		ok, err = svc.Distribute(ctx, tx, pc, "ord-1", "x-001", domain.PaymentMethod("crypto"), dec("30"))
		require.False(t, ok)
		if err != nil {
			return err
		}
		ok, err = svc.Distribute(ctx, tx, pc, "ord-1", "x-001", domain.PaymentCash, decimal.Zero)
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)
	requireAmount(t, "30", treasuryBalance(t, svc, ctx, domain.TreasuryBank))
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan))
}

func TestManualTreasuryWithdrawalCannotOverdraw(t *testing.T) {
	svc, ctx := newTestService(t)
	cards, err := svc.ListTreasuryCards(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cards)
	cardID := cards[0].ID

	_, err = svc.RecordTreasuryTransaction(ctx, cardID, domain.TreasuryTransactionRequest{Amount: dec("40"), Type: domain.MovementDeposit})
	require.NoError(t, err)
	_, err = svc.RecordTreasuryTransaction(ctx, cardID, domain.TreasuryTransactionRequest{Amount: dec("41"), Type: domain.MovementWithdrawal})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	entries, err := svc.ListTreasuryTransactions(ctx, cardID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSettingsDefaultsAndPartialUpdate(t *testing.T) {
	svc, ctx := newTestService(t)

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	requireAmount(t, "5", settings.ExchangeRate)
	requireAmount(t, "4.5", settings.ShippingCostUSD)
	requireAmount(t, "5", settings.ShippingPriceUSD)

	rate := dec("6.25")
	updated, err := svc.UpdateSettings(ctx, domain.SettingsUpdateRequest{ExchangeRate: &rate})
	require.NoError(t, err)
	requireAmount(t, "6.25", updated.ExchangeRate)
	requireAmount(t, "4.5", updated.ShippingCostUSD)

	pc, err := svc.Pricing(ctx)
	require.NoError(t, err)
	requireAmount(t, "6.25", pc.GetExchangeRate())
	requireAmount(t, "5", pc.GetShippingPricePerUnit())

	zero := decimal.Zero
	_, err = svc.UpdateSettings(ctx, domain.SettingsUpdateRequest{ExchangeRate: &zero})
	require.ErrorIs(t, err, store.ErrInvalidTransaction)
}

func TestResetFinancialReportsRequiresConfirm(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "reset")

	_, err := svc.CreateOrder(ctx, pricingAt("5"), domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: dec("100"),
		DownPaymentLYD:  dec("10"),
		PaymentMethod:   domain.PaymentCash,
	})
	require.NoError(t, err)

	_, err = svc.ResetFinancialReports(ctx, domain.ResetRequest{})
	require.True(t, errors.Is(err, ErrConfirmationRequired))

	resp, err := svc.ResetFinancialReports(ctx, domain.ResetRequest{Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TransactionsRemoved)
	assert.Equal(t, 1, resp.TreasuryTransactionsRemoved)
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan))
	requireAmount(t, "90", customerDebt(t, svc, ctx, customer.ID))

	summary, err := svc.FinancialSummary(ctx)
	require.NoError(t, err)
	requireAmount(t, "90", summary.OutstandingDebt)
	assert.Equal(t, 1, summary.ActiveOrders)
}
