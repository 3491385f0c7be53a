package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"shipledger/backend/internal/store"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ResultOK},
		{name: "invalid", err: fmt.Errorf("%w: negative weight", store.ErrInvalidTransaction), want: ResultInvalid},
		{name: "not_found", err: store.ErrNotFound, want: ResultNotFound},
		{name: "conflict", err: store.ErrConflict, want: ResultConflict},
		{name: "unknown", err: errors.New("boom"), want: ResultError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestObserveCountsByResult(t *testing.T) {
	l := New(prometheus.NewRegistry())

	l.Observe("create_order", time.Now(), nil)
	l.Observe("create_order", time.Now(), nil)
	l.Observe("create_order", time.Now(), store.ErrNotFound)

	if got := testutil.ToFloat64(l.operations.WithLabelValues("create_order", ResultOK)); got != 2 {
		t.Fatalf("expected 2 ok operations, got %v", got)
	}
	if got := testutil.ToFloat64(l.operations.WithLabelValues("create_order", ResultNotFound)); got != 1 {
		t.Fatalf("expected 1 not_found operation, got %v", got)
	}
}

func TestNilLedgerIsSafe(t *testing.T) {
	var l *Ledger
	l.Observe("noop", time.Now(), nil)
	l.TreasuryMovement("bank", "deposit")
	l.TreasuryRefused("invalid_rate")
	l.DebtRecomputed()
}

func TestDefaultRegistersOnce(t *testing.T) {
	ResetDefaultForTest()
	t.Cleanup(ResetDefaultForTest)

	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	t.Cleanup(func() { prometheus.DefaultRegisterer = prev })

	first := Default()
	second := Default()
	if first != second {
		t.Fatalf("expected Default to return the same instance")
	}
	first.DebtRecomputed()
	if got := testutil.ToFloat64(first.debtRecomputes); got != 1 {
		t.Fatalf("expected 1 recompute, got %v", got)
	}
}
