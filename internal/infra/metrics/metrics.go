// Package metrics provides Prometheus metrics for the Diabetree engine:
// counters and gauges for evaluations, transitions, the coin ledger, and
// the reading log.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Evaluations ────────────────────────────────────────────────────────────

// Evaluations tracks completed engine evaluations.
var Evaluations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "evaluations_total",
	Help:      "Total completed progression evaluations.",
})

// EvaluationErrors tracks evaluations that failed before commit.
var EvaluationErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "evaluation_errors_total",
	Help:      "Total evaluations aborted by a data access error.",
})

// Transitions tracks state transitions by type (level_up, level_down,
// achievement_unlocked, daily_mission_completed, insufficient_funds).
var Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "transitions_total",
	Help:      "Total state transitions emitted.",
}, []string{"type"})

// ─── Coin Ledger ────────────────────────────────────────────────────────────

// CoinsCredited tracks total coins granted by rewards.
var CoinsCredited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "coins_credited_total",
	Help:      "Total coins credited to the balance.",
})

// CoinsDebited tracks total coins spent on purchases.
var CoinsDebited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "coins_debited_total",
	Help:      "Total coins debited from the balance.",
})

// CoinBalance tracks the last committed coin balance.
var CoinBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "diabetree",
	Name:      "coin_balance_current",
	Help:      "Current coin balance.",
})

// ─── Readings ───────────────────────────────────────────────────────────────

// ReadingsRecorded tracks readings appended to the store.
var ReadingsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "readings_recorded_total",
	Help:      "Total glucose readings recorded.",
})

// MalformedReadings tracks readings excluded from evaluation.
var MalformedReadings = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "diabetree",
	Name:      "malformed_readings_total",
	Help:      "Total readings excluded as malformed.",
})
