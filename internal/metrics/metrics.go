package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"shipledger/backend/internal/store"
)

const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultNotFound = "not_found"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// Ledger holds the counters for ledger operations. A nil *Ledger is valid and
// records nothing.
type Ledger struct {
	operations        *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	treasuryMovements *prometheus.CounterVec
	treasuryRefusals  *prometheus.CounterVec
	debtRecomputes    prometheus.Counter
}

var (
	defaultOnce   sync.Once
	defaultLedger *Ledger
)

// Default returns the ledger metrics registered on the default registerer.
func Default() *Ledger {
	defaultOnce.Do(func() {
		defaultLedger = New(prometheus.DefaultRegisterer)
	})
	return defaultLedger
}

// ResetDefaultForTest drops the singleton so tests can register again.
func ResetDefaultForTest() {
	defaultOnce = sync.Once{}
	defaultLedger = nil
}

func New(registerer prometheus.Registerer) *Ledger {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	l := &Ledger{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipledger_ledger_operations_total",
			Help: "Ledger operations by name and outcome.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shipledger_ledger_operation_duration_seconds",
			Help:    "Ledger operation latency including the store transaction.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		treasuryMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipledger_treasury_movements_total",
			Help: "Treasury card balance movements by card type and direction.",
		}, []string{"card_type", "direction"}),
		treasuryRefusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipledger_treasury_refusals_total",
			Help: "Treasury distributions or reversals refused by a business rule.",
		}, []string{"reason"}),
		debtRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipledger_debt_recomputations_total",
			Help: "Customer debt recomputations.",
		}),
	}

	registerer.MustRegister(l.operations, l.duration, l.treasuryMovements, l.treasuryRefusals, l.debtRecomputes)
	return l
}

func (l *Ledger) Observe(operation string, startedAt time.Time, err error) {
	if l == nil {
		return
	}
	l.operations.WithLabelValues(operation, Classify(err)).Inc()
	l.duration.WithLabelValues(operation).Observe(time.Since(startedAt).Seconds())
}

func (l *Ledger) TreasuryMovement(cardType string, direction string) {
	if l == nil {
		return
	}
	l.treasuryMovements.WithLabelValues(cardType, direction).Inc()
}

func (l *Ledger) TreasuryRefused(reason string) {
	if l == nil {
		return
	}
	l.treasuryRefusals.WithLabelValues(reason).Inc()
}

func (l *Ledger) DebtRecomputed() {
	if l == nil {
		return
	}
	l.debtRecomputes.Inc()
}

// Classify maps an operation error onto a low-cardinality result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, store.ErrInvalidTransaction):
		return ResultInvalid
	case errors.Is(err, store.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, store.ErrConflict):
		return ResultConflict
	default:
		return ResultError
	}
}
