package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetd",
			Subsystem: "manager",
			Name:      "fetches_total",
			Help:      "Total remote fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	installsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assetd",
			Subsystem: "manager",
			Name:      "installs_total",
			Help:      "Total successful asset installs",
		},
	)

	handleSwapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assetd",
			Subsystem: "manager",
			Name:      "handle_swaps_total",
			Help:      "Total handle replacements",
		},
	)

	corruptPurgesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assetd",
			Subsystem: "manager",
			Name:      "corrupt_purges_total",
			Help:      "Total cache purges caused by assets the engine rejected",
		},
	)
)

func init() {
	prometheus.MustRegister(fetchesTotal, installsTotal, handleSwapsTotal, corruptPurgesTotal)
}
