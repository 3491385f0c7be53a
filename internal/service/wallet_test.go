package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

func TestWalletDepositMirrorsIntoTreasury(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "wallet")

	entry, err := svc.AddWalletTransaction(ctx, domain.WalletTransactionRequest{
		UserID:        customer.ID,
		Amount:        dec("75"),
		Type:          domain.MovementDeposit,
		PaymentMethod: "bank",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", entry.ManagerID)
	requireAmount(t, "75", treasuryBalance(t, svc, ctx, domain.TreasuryBank))

	_, err = svc.AddWalletTransaction(ctx, domain.WalletTransactionRequest{
		UserID: customer.ID,
		Amount: dec("25"),
		Type:   domain.MovementWithdrawal,
	})
	require.NoError(t, err)

	stored, err := svc.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	requireAmount(t, "50", stored.WalletBalance)
	requireAmount(t, "0", stored.Debt)
	requireAmount(t, "75", treasuryBalance(t, svc, ctx, domain.TreasuryBank))

	entries, err := svc.ListWalletTransactions(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.MovementWithdrawal, entries[0].Type)
}

func TestWalletWithdrawalCannotOverdraw(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "overdraw")

	_, err := svc.AddWalletTransaction(ctx, domain.WalletTransactionRequest{
		UserID: customer.ID,
		Amount: dec("1"),
		Type:   domain.MovementWithdrawal,
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	entries, err := svc.ListWalletTransactions(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWalletManagerDefaultsToSystem(t *testing.T) {
	svc, ctx := newTestService(t)
	customer := createCustomer(t, svc, ctx, "system")

	entry, err := svc.AddWalletTransaction(context.Background(), domain.WalletTransactionRequest{
		UserID:        customer.ID,
		Amount:        dec("5"),
		Type:          domain.MovementDeposit,
		PaymentMethod: "voucher",
	})
	require.NoError(t, err)
	assert.Equal(t, "system", entry.ManagerID)
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashLibyan))
}

func TestWalletRejectsNonPositiveAmount(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.AddWalletTransaction(ctx, domain.WalletTransactionRequest{UserID: "cus-1", Amount: dec("0"), Type: domain.MovementDeposit})
	require.ErrorIs(t, err, store.ErrInvalidTransaction)
}

func TestRepresentativeAssignmentCounts(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "rep")

	first, err := svc.CreateRepresentative(ctx, domain.RepresentativeCreateRequest{Name: "Omar"})
	require.NoError(t, err)
	second, err := svc.CreateRepresentative(ctx, domain.RepresentativeCreateRequest{Name: "Sara"})
	require.NoError(t, err)

	ids := make([]string, 0, 2)
	for range 2 {
		resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("10")})
		require.NoError(t, err)
		ids = append(ids, resp.Order.ID)
	}

	assigned, err := svc.AssignRepresentative(ctx, domain.AssignRepresentativeRequest{OrderIDs: ids, RepresentativeID: first.ID})
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.Equal(t, domain.StatusOutForDelivery, assigned[0].Status)

	_, err = svc.AssignRepresentative(ctx, domain.AssignRepresentativeRequest{OrderIDs: ids[:1], RepresentativeID: second.ID})
	require.NoError(t, err)

	reps, err := svc.ListRepresentatives(ctx)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, rep := range reps {
		counts[rep.ID] = rep.AssignedOrders
	}
	assert.Equal(t, 1, counts[first.ID])
	assert.Equal(t, 1, counts[second.ID])

	unassigned, err := svc.UnassignRepresentative(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, unassigned.Status)

	_, err = svc.DeleteOrder(ctx, pc, ids[0])
	require.NoError(t, err)

	reps, err = svc.ListRepresentatives(ctx)
	require.NoError(t, err)
	for _, rep := range reps {
		assert.Equal(t, 0, rep.AssignedOrders, rep.Name)
	}

	collected, err := svc.RecordRepresentativePayment(ctx, ids[1], domain.CollectPaymentRequest{CollectedAmount: dec("8")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, collected.Status)
	require.NotNil(t, collected.DeliveryDate)
	requireAmount(t, "10", collected.RemainingAmount)
}
