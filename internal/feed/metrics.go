package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	changesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_changes_total",
			Help: "Store change notifications dispatched by the hub",
		},
		[]string{"kind"},
	)

	liveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_live_subscriptions",
			Help: "Snapshot subscriptions currently registered",
		},
	)

	snapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_snapshots_total",
			Help: "Snapshots loaded for subscribers",
		},
		[]string{"result"},
	)
)
