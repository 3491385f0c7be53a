package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipledger/backend/internal/config"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/store/memory"
)

func runCLI(t *testing.T, repo store.Repository, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context, config.Config) (store.Repository, func() error, error) {
		return repo, nil, nil
	}
	root := newRootCmd(config.Config{}, open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSettingsSetThenShow(t *testing.T) {
	repo := memory.NewSeeded()

	_, err := runCLI(t, repo, "settings", "set", "--exchange-rate", "7.25")
	require.NoError(t, err)

	out, err := runCLI(t, repo, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "exchange_rate")
	assert.Contains(t, out, "7.25")
}

func TestSettingsSetRequiresAFlag(t *testing.T) {
	_, err := runCLI(t, memory.NewSeeded(), "settings", "set")
	require.Error(t, err)
}

func TestSettingsSetRejectsBadNumber(t *testing.T) {
	_, err := runCLI(t, memory.NewSeeded(), "settings", "set", "--shipping-cost", "abc")
	require.ErrorContains(t, err, "--shipping-cost")
}

func TestTreasuryBalancesListsSeededCards(t *testing.T) {
	out, err := runCLI(t, memory.NewSeeded(), "treasury", "balances")
	require.NoError(t, err)
	for _, id := range []string{"treasury-bank", "treasury-cash-dollar", "treasury-cash-libyan"} {
		assert.Contains(t, out, id)
	}
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestTreasuryVerifyOnFreshStore(t *testing.T) {
	out, err := runCLI(t, memory.NewSeeded(), "treasury", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "treasury consistent")
}

func TestRecomputeDebtsAllAndUnknownCustomer(t *testing.T) {
	repo := memory.NewSeeded()

	out, err := runCLI(t, repo, "recompute-debts")
	require.NoError(t, err)
	assert.Contains(t, out, "recomputed 0 customers")

	_, err = runCLI(t, repo, "recompute-debts", "cus-missing")
	require.ErrorContains(t, err, "cus-missing")
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	_, err := runCLI(t, memory.NewSeeded(), "migrate")
	require.ErrorContains(t, err, "DATABASE_URL")
}
