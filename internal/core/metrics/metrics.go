package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the application collectors.
type Registry struct {
	reg *prometheus.Registry

	OrdersCreated    prometheus.Counter
	StatusUpdates    *prometheus.CounterVec
	RejectedUpdates  *prometheus.CounterVec
	PersistFailures  prometheus.Counter
	OrdersInStore    prometheus.Gauge
	PersistLatency   prometheus.Histogram
	CartCheckouts    prometheus.Counter
	SimulatorAdvance prometheus.Counter
}

// NewRegistry creates a Registry with every collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "afterlife_orders_created_total",
		Help: "Orders placed through the order store.",
	})
	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "afterlife_status_updates_total",
		Help: "Delivery status updates applied, by new status.",
	}, []string{"status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "afterlife_status_updates_rejected_total",
		Help: "Delivery status updates refused, by reason.",
	}, []string{"reason"})
	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "afterlife_persist_failures_total",
		Help: "Failed writes of the order list.",
	})
	inStore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "afterlife_orders_in_store",
		Help: "Orders currently held by the order store.",
	})
	persistLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "afterlife_persist_seconds",
		Help:    "Time spent writing the full order list.",
		Buckets: prometheus.DefBuckets,
	})
	checkouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "afterlife_cart_checkouts_total",
		Help: "Carts converted into orders.",
	})
	advance := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "afterlife_simulator_advances_total",
		Help: "Orders moved one stage by the journey simulator.",
	})

	r.MustRegister(
		collectors.NewGoCollector(),
		ordersCreated, statusUpdates, rejected, persistFailures, inStore, persistLatency, checkouts, advance,
	)

	return &Registry{
		reg:              r,
		OrdersCreated:    ordersCreated,
		StatusUpdates:    statusUpdates,
		RejectedUpdates:  rejected,
		PersistFailures:  persistFailures,
		OrdersInStore:    inStore,
		PersistLatency:   persistLatency,
		CartCheckouts:    checkouts,
		SimulatorAdvance: advance,
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
