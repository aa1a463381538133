package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation engine and
// provides the /metrics handler.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TickDuration prometheus.Histogram

	PairComputations prometheus.Counter
	CacheHits        prometheus.Counter
	SignalsPerceived prometheus.Counter

	JammerActivations   prometheus.Counter
	JammerDeactivations prometheus.Counter
	RejectedCommands    prometheus.Counter

	ActiveTransmitters prometheus.Gauge
	JammedReceivers    prometheus.Gauge
	ConfusedEntities   prometheus.Gauge
	DisabledEntities   prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tickDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall time spent executing one simulation tick.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}), "sim_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	pairs, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_pair_computations_total",
		Help: "Total transmitter/receiver strength computations performed.",
	}), "sim_pair_computations_total")
	if err != nil {
		return nil, err
	}
	cacheHits, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_pair_cache_hits_total",
		Help: "Strength queries answered by the intra-tick memo cache.",
	}), "sim_pair_cache_hits_total")
	if err != nil {
		return nil, err
	}
	signals, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_signals_perceived_total",
		Help: "Signals that cleared a receiver's sensitivity floor.",
	}), "sim_signals_perceived_total")
	if err != nil {
		return nil, err
	}

	activations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_jammer_activations_total",
		Help: "Successful jammer activation commands.",
	}), "sim_jammer_activations_total")
	if err != nil {
		return nil, err
	}
	deactivations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_jammer_deactivations_total",
		Help: "Jammer deactivation commands.",
	}), "sim_jammer_deactivations_total")
	if err != nil {
		return nil, err
	}
	rejected, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_commands_rejected_total",
		Help: "Jammer commands rejected by validation, cooldown, or depletion.",
	}), "sim_commands_rejected_total")
	if err != nil {
		return nil, err
	}

	activeTx, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_active_transmitters",
		Help: "Transmitters currently active.",
	}), "sim_active_transmitters")
	if err != nil {
		return nil, err
	}
	jammed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_jammed_receivers",
		Help: "Receivers reporting a jammed state this tick.",
	}), "sim_jammed_receivers")
	if err != nil {
		return nil, err
	}
	confused, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_confused_entities",
		Help: "AI entities currently in the confused state.",
	}), "sim_confused_entities")
	if err != nil {
		return nil, err
	}
	disabled, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_disabled_entities",
		Help: "AI entities currently disabled.",
	}), "sim_disabled_entities")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:            gatherer,
		TickDuration:        tickDuration,
		PairComputations:    pairs,
		CacheHits:           cacheHits,
		SignalsPerceived:    signals,
		JammerActivations:   activations,
		JammerDeactivations: deactivations,
		RejectedCommands:    rejected,
		ActiveTransmitters:  activeTx,
		JammedReceivers:     jammed,
		ConfusedEntities:    confused,
		DisabledEntities:    disabled,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
