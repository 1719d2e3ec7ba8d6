package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMarketplaceMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMarketplace(reg)

	m.ObserveOperation("buy_item", OutcomeOK, 250*time.Millisecond)
	m.ObserveOperation("buy_item", "INSUFFICIENT_STOCK", time.Millisecond)
	m.AddNotifications("watcher", 3)
	m.AddNotifications("seller", 1)
	m.AddDrained(2)
	m.SetCatalogItems(5)
	m.SetRegisteredSellers(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "marketplace_operations_total", map[string]string{"operation": "buy_item", "outcome": OutcomeOK}); err != nil {
		t.Fatalf("fetch ok outcome: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ok=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "marketplace_operations_total", map[string]string{"operation": "buy_item", "outcome": "INSUFFICIENT_STOCK"}); err != nil {
		t.Fatalf("fetch failure outcome: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "marketplace_notifications_enqueued_total", map[string]string{"kind": "watcher"}); err != nil {
		t.Fatalf("fetch notifications: %v", err)
	} else if got != 3 {
		t.Fatalf("expected watcher notifications=3, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "marketplace_notifications_drained_total", nil); err != nil {
		t.Fatalf("fetch drained: %v", err)
	} else if got != 2 {
		t.Fatalf("expected drained=2, got %f", got)
	}

	mf := findMetricFamily(mfs, "marketplace_catalog_items")
	if mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 5 {
		t.Fatalf("expected catalog gauge=5")
	}

	mf = findMetricFamily(mfs, "marketplace_registered_sellers")
	if mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 2 {
		t.Fatalf("expected sellers gauge=2")
	}

	hist := findMetricFamily(mfs, "marketplace_operation_duration_seconds")
	if hist == nil || hist.GetMetric()[0].GetHistogram().GetSampleSum() <= 0 {
		t.Fatalf("expected duration sum > 0")
	}
}

func TestMarketplaceMetricsNilSafe(t *testing.T) {
	var nilRecorder *Marketplace
	nilRecorder.ObserveOperation("op", OutcomeOK, time.Second)
	nilRecorder.AddNotifications("watcher", 1)
	nilRecorder.AddDrained(1)
	nilRecorder.SetCatalogItems(1)
	nilRecorder.SetRegisteredSellers(1)

	unregistered := NewMarketplace(nil)
	unregistered.ObserveOperation("op", OutcomeOK, time.Second)
	unregistered.SetCatalogItems(1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == name && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
