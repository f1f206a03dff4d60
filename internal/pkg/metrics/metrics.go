// Package metrics holds the Prometheus collectors shared by the ledger, cache
// and workflow packages. Collectors register on the default registry and are
// served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerTransactions counts committed ledger transactions by kind
	// (chore_reward, allowance, request, manual).
	LedgerTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "famfin",
		Subsystem: "ledger",
		Name:      "transactions_total",
		Help:      "Committed ledger transactions by kind.",
	}, []string{"kind"})

	// LedgerRejected counts posting sets rejected before touching the store.
	LedgerRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "famfin",
		Subsystem: "ledger",
		Name:      "rejected_total",
		Help:      "Posting sets rejected by validation.",
	}, []string{"reason"})

	// CacheRequests counts cache lookups by result (hit, miss, error, bypass).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "famfin",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by result.",
	}, []string{"result"})

	// CacheInvalidations counts deleted keys.
	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "famfin",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Cache keys invalidated after mutations.",
	})

	// WorkflowTransitions counts state-machine transitions by workflow and target state.
	WorkflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "famfin",
		Subsystem: "workflow",
		Name:      "transitions_total",
		Help:      "State transitions by workflow and target state.",
	}, []string{"workflow", "state"})

	// CreditOperations counts card purchases/payments by outcome.
	CreditOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "famfin",
		Subsystem: "credit",
		Name:      "operations_total",
		Help:      "Credit card operations by type and outcome.",
	}, []string{"operation", "outcome"})

	// CreditScore observes computed total scores.
	CreditScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "famfin",
		Subsystem: "credit",
		Name:      "score",
		Help:      "Distribution of computed credit scores.",
		Buckets:   []float64{300, 450, 580, 670, 740, 800, 850},
	})
)
