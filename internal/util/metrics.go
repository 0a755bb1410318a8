package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChangesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "changes_published_total",
		Help: "Total number of change envelopes published to the hub",
	}, []string{"resource_type", "op"})

	ChangesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "changes_dropped_total",
		Help: "Total number of envelopes dropped for slow subscribers",
	})

	SubscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_subscribers",
		Help: "Number of active hub subscriptions",
	})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of orders completed",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	TransitionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "status_transitions_rejected_total",
		Help: "Total number of rejected order status transitions",
	}, []string{"from", "to"})

	StationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_actions_total",
		Help: "Total number of station actions on order lines",
	}, []string{"station"})

	ChangesArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "changes_archived_total",
		Help: "Total number of change envelopes archived to the change log",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
