// Package metrics holds the prometheus collectors for the loyalty engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics bundles the engine's prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	PointsEarned         prometheus.Counter
	RedemptionsCommitted prometheus.Counter
	RedemptionsAborted   *prometheus.CounterVec
	VouchersApplied      prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		PointsEarned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "points_earned_total",
			Help:      "Total points credited through earning hooks.",
		}),
		RedemptionsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "redemptions_committed_total",
			Help:      "Redemptions that committed and issued a voucher.",
		}),
		RedemptionsAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "redemptions_aborted_total",
			Help:      "Redemptions that aborted, by reason.",
		}, []string{"reason"}),
		VouchersApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "vouchers_applied_total",
			Help:      "Vouchers successfully applied to orders.",
		}),
	}

	registry.MustRegister(
		m.PointsEarned,
		m.RedemptionsCommitted,
		m.RedemptionsAborted,
		m.VouchersApplied,
	)

	return m
}

// Module provides the metrics FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
