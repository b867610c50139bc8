package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	// Verify all metrics are initialized
	if m.TradesTotal == nil {
		t.Error("TradesTotal is nil")
	}
	if m.TradesRejected == nil {
		t.Error("TradesRejected is nil")
	}
	if m.OrdersTriggered == nil {
		t.Error("OrdersTriggered is nil")
	}
	if m.SyncTotal == nil {
		t.Error("SyncTotal is nil")
	}
	if m.PriceTicksTotal == nil {
		t.Error("PriceTicksTotal is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.CircuitBreakerState == nil {
		t.Error("CircuitBreakerState is nil")
	}
}

func TestRecordTrade(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordTrade("buy", "bitcoin")
	m.RecordTrade("buy", "bitcoin")
	m.RecordTrade("sell", "ethereum")

	if got := testutil.ToFloat64(m.TradesTotal.WithLabelValues("buy", "bitcoin")); got != 2 {
		t.Errorf("TradesTotal{buy,bitcoin} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TradesTotal.WithLabelValues("sell", "ethereum")); got != 1 {
		t.Errorf("TradesTotal{sell,ethereum} = %v, want 1", got)
	}
}

func TestRecordOrderTriggered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordOrderTriggered("stop_loss", "bitcoin")

	if got := testutil.ToFloat64(m.OrdersTriggered.WithLabelValues("stop_loss", "bitcoin")); got != 1 {
		t.Errorf("OrdersTriggered{stop_loss,bitcoin} = %v, want 1", got)
	}
}

func TestRecordSync(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordSync("ok", 50*time.Millisecond)
	m.RecordSync("error", 10*time.Millisecond)
	m.RecordSyncDropped()

	if got := testutil.ToFloat64(m.SyncTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("SyncTotal{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SyncTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("SyncTotal{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SyncDropped); got != 1 {
		t.Errorf("SyncDropped = %v, want 1", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("POST", "/api/trade/buy", "200", 25*time.Millisecond, 128)

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/trade/buy", "200")); got != 1 {
		t.Errorf("HTTPRequestsTotal = %v, want 1", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetCircuitBreakerState("marketdata", 2)
	m.RecordCircuitBreakerTrip("marketdata")

	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("marketdata")); got != 2 {
		t.Errorf("CircuitBreakerState{marketdata} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("marketdata")); got != 1 {
		t.Errorf("CircuitBreakerTrips{marketdata} = %v, want 1", got)
	}
}

func TestTimer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	timer := m.NewTimer()
	time.Sleep(time.Millisecond)
	if timer.Duration() <= 0 {
		t.Error("Timer.Duration() should be positive")
	}

	timer.ObserveDB("select", "game_states")
	if got := testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "game_states")); got != 1 {
		t.Errorf("DBQueryTotal = %v, want 1", got)
	}
}
