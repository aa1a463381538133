package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				return h.GetSampleCount()
			}
		}
	}
	t.Fatalf("histogram %s not found", name)
	return 0
}

func TestSimCollectorRecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	collector.PairComputations.Add(12)
	collector.CacheHits.Add(4)
	collector.SignalsPerceived.Add(3)
	collector.JammerActivations.Inc()
	collector.RejectedCommands.Inc()
	collector.JammedReceivers.Set(2)
	collector.TickDuration.Observe(0.002)
	collector.TickDuration.Observe(0.004)

	if got := testutil.ToFloat64(collector.PairComputations); got != 12 {
		t.Errorf("sim_pair_computations_total = %v, want 12", got)
	}
	if got := testutil.ToFloat64(collector.CacheHits); got != 4 {
		t.Errorf("sim_pair_cache_hits_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(collector.JammerActivations); got != 1 {
		t.Errorf("sim_jammer_activations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.JammedReceivers); got != 2 {
		t.Errorf("sim_jammed_receivers = %v, want 2", got)
	}
	if got := histogramSampleCount(t, reg, "sim_tick_duration_seconds"); got != 2 {
		t.Errorf("tick duration sample count = %v, want 2", got)
	}
}

func TestSimCollectorDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("first NewSimCollector: %v", err)
	}
	second, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("second NewSimCollector: %v", err)
	}

	// Both handles must resolve to the same registered collectors.
	first.PairComputations.Inc()
	second.PairComputations.Inc()
	if got := testutil.ToFloat64(first.PairComputations); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func TestSimCollectorHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	collector.SignalsPerceived.Add(7)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := new(strings.Builder)
	if _, err := io.Copy(body, resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(body.String(), "sim_signals_perceived_total 7") {
		t.Fatalf("metrics output missing counter:\n%s", body.String())
	}
}

func TestGatherExposesAllFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewSimCollector(reg); err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}
	for _, name := range []string{
		"sim_tick_duration_seconds",
		"sim_pair_computations_total",
		"sim_pair_cache_hits_total",
		"sim_signals_perceived_total",
		"sim_jammer_activations_total",
		"sim_jammer_deactivations_total",
		"sim_commands_rejected_total",
		"sim_active_transmitters",
		"sim_jammed_receivers",
		"sim_confused_entities",
		"sim_disabled_entities",
	} {
		if _, ok := byName[name]; !ok {
			t.Errorf("metric family %s not registered", name)
		}
	}
}
