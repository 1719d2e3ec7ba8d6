package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels operations that succeeded.
const OutcomeOK = "ok"

// Marketplace records operation outcomes and mailbox traffic.
type Marketplace struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	drained       prometheus.Counter
	catalogItems  prometheus.Gauge
	sellers       prometheus.Gauge
}

// NewMarketplace registers the marketplace metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewMarketplace(reg prometheus.Registerer) *Marketplace {
	if reg == nil {
		return &Marketplace{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_operations_total",
		Help: "Marketplace operations by name and outcome code.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_operation_duration_seconds",
		Help:    "Duration of marketplace operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_notifications_enqueued_total",
		Help: "Notifications enqueued into mailboxes by kind.",
	}, []string{"kind"})
	drained := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_notifications_drained_total",
		Help: "Notifications handed out by mailbox fetches.",
	})
	catalogItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketplace_catalog_items",
		Help: "Items currently listed in the catalog.",
	})
	sellers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketplace_registered_sellers",
		Help: "Seller identities registered since startup.",
	})
	reg.MustRegister(operations, duration, notifications, drained, catalogItems, sellers)
	return &Marketplace{
		operations:    operations,
		duration:      duration,
		notifications: notifications,
		drained:       drained,
		catalogItems:  catalogItems,
		sellers:       sellers,
	}
}

// ObserveOperation counts one call of operation with the given outcome and records its duration.
func (m *Marketplace) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.operations.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddNotifications counts n enqueued notifications of the given kind.
func (m *Marketplace) AddNotifications(kind string, n int) {
	if m == nil || m.notifications == nil || n <= 0 {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

// AddDrained counts n notifications returned to pollers.
func (m *Marketplace) AddDrained(n int) {
	if m == nil || m.drained == nil || n <= 0 {
		return
	}
	m.drained.Add(float64(n))
}

// SetCatalogItems publishes the live catalog size.
func (m *Marketplace) SetCatalogItems(n int) {
	if m == nil || m.catalogItems == nil {
		return
	}
	m.catalogItems.Set(float64(n))
}

// SetRegisteredSellers publishes the number of registered sellers.
func (m *Marketplace) SetRegisteredSellers(n int) {
	if m == nil || m.sellers == nil {
		return
	}
	m.sellers.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
