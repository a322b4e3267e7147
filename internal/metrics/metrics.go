// Package metrics exposes Prometheus counters for the grove backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TreesPlanted counts successful planting registrations.
	TreesPlanted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grove_trees_planted_total",
		Help: "Number of trees registered through the API.",
	})

	// TreesAdopted counts adoption receipts issued.
	TreesAdopted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grove_trees_adopted_total",
		Help: "Number of adoption receipts issued.",
	})

	// CO2Recomputations counts completed recompute passes, both the admin
	// backfill and the per-species pass after a density edit.
	CO2Recomputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grove_co2_recomputations_total",
		Help: "Number of completed CO2 recompute passes.",
	})

	// CO2EstimatedKg mirrors the store-wide sum of estimated sequestration.
	// Refreshed after every write that can change a co2_kg value.
	CO2EstimatedKg = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grove_co2_estimated_kg_total",
		Help: "Sum of estimated CO2 in kilograms across all registered trees.",
	})
)
