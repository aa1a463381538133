package core

import (
	"math"

	"github.com/signalsfoundry/spectrum-sim/model"
)

// Undetectable is the strength reported for pairs that cannot perceive each
// other at all (inactive transmitter, mismatched frequency, mid-pulse-off).
var Undetectable = math.Inf(-1)

// pairKey identifies an unordered transmitter/receiver pair for the
// intra-tick memo cache.
type pairKey struct {
	a, b model.EntityID
}

func newPairKey(x, y model.EntityID) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// PropagationStats counts work done during the most recent tick.
type PropagationStats struct {
	PairComputations int
	CacheHits        int
	SignalsPerceived int
	JammedReceivers  int
}

// Propagator computes per-pair signal strength and aggregates, per tick,
// every signal a receiver perceives. It is a leaf component: it reads
// component data and the radio configuration, nothing else.
type Propagator struct {
	cfg   *model.RadioConfig
	world *World

	// cache suppresses duplicate per-pair queries within a single tick.
	// It is cleared at the start of every tick and never reused across
	// ticks: transmitter state (including pulse phase, which derives from
	// the clock) may change between ticks without component edits.
	cache map[pairKey]float64
	stats PropagationStats
}

// NewPropagator creates a propagation engine bound to a world and config.
func NewPropagator(world *World, cfg *model.RadioConfig) *Propagator {
	return &Propagator{
		cfg:   cfg,
		world: world,
		cache: make(map[pairKey]float64),
	}
}

// BeginTick invalidates the memo cache and resets per-tick counters.
func (p *Propagator) BeginTick() {
	p.cache = make(map[pairKey]float64)
	p.stats = PropagationStats{}
}

// Stats returns counters for the most recent tick.
func (p *Propagator) Stats() PropagationStats {
	return p.stats
}

// Strength returns the signal strength in dBm perceived by rx from tx, or
// Undetectable. Results are memoized for the duration of the current tick.
func (p *Propagator) Strength(tx, rx model.EntityID) float64 {
	key := newPairKey(tx, rx)
	if s, ok := p.cache[key]; ok {
		p.stats.CacheHits++
		return s
	}
	s := p.computeStrength(tx, rx)
	p.cache[key] = s
	p.stats.PairComputations++
	return s
}

func (p *Propagator) computeStrength(txID, rxID model.EntityID) float64 {
	tx := p.world.Transmitter(txID)
	rx := p.world.Receiver(rxID)
	if tx == nil || rx == nil {
		return Undetectable
	}
	if !tx.Active {
		return Undetectable
	}
	if tx.Frequency != rx.Frequency {
		return Undetectable
	}
	if tx.Pulse.Pulsing && !tx.Pulse.Transmitting {
		return Undetectable
	}

	freqMHz, ok := p.cfg.FrequencyMHz(tx.Frequency)
	if !ok {
		return Undetectable
	}

	txPos := p.world.Position(txID)
	rxPos := p.world.Position(rxID)

	dist := txPos.DistanceTo(rxPos)
	if dist == 0 {
		// Degenerate co-located case: no path loss applied.
		return tx.PowerDBm
	}

	strength := tx.PowerDBm - p.pathLossDB(dist, freqMHz, txPos, rxPos)

	ant := p.cfg.Antenna(tx.Antenna)
	if ant.Directional && ant.BeamWidthDeg > 0 {
		strength += ant.GainDBi * directionalGainFactor(
			BearingDegrees(txPos, rxPos), tx.AntennaHeading, ant.BeamWidthDeg)
	}
	return strength
}

// pathLossDB applies the configured path-loss model. Distance is in world
// units (metres); the formulas work in kilometres and MHz.
func (p *Propagator) pathLossDB(dist, freqMHz float64, txPos, rxPos Vec3) float64 {
	dKm := dist / 1000.0
	switch p.cfg.Model {
	case ModelFreeSpace:
		return freeSpaceLossDB(dKm, freqMHz)
	case ModelTwoRayGround:
		// The two-ray approximation is unstable below ~1000 units; fall
		// back to free space there so the switchover is continuous.
		if dist < 1000 {
			return freeSpaceLossDB(dKm, freqMHz)
		}
		hTx := math.Max(1, txPos.Z)
		hRx := math.Max(1, rxPos.Z)
		return 40*math.Log10(dKm) - 20*math.Log10(hTx) - 20*math.Log10(hRx)
	case ModelLogDistance:
		// Reference distance 1 km, path-loss exponent 2.8 (urban).
		pl0 := 20*math.Log10(1) + 20*math.Log10(freqMHz) + 32.45
		return pl0 + 10*2.8*math.Log10(dKm/1)
	default:
		return freeSpaceLossDB(dKm, freqMHz)
	}
}

// Propagation model aliases re-exported for call sites inside core.
const (
	ModelFreeSpace    = model.ModelFreeSpace
	ModelTwoRayGround = model.ModelTwoRayGround
	ModelLogDistance  = model.ModelLogDistance
)

func freeSpaceLossDB(dKm, freqMHz float64) float64 {
	return 20*math.Log10(dKm) + 20*math.Log10(freqMHz) + 32.45
}

// directionalGainFactor models a raised-cosine main lobe. Within half the
// beam width of boresight the factor follows cos²(πΔ/width), peaking at 1 on
// boresight; outside it a side-lobe floor of max(0.01, 0.2·cos²) applies.
func directionalGainFactor(bearing, heading, beamWidthDeg float64) float64 {
	delta := AngularSeparation(bearing, heading)
	lobe := math.Cos(math.Pi * delta / beamWidthDeg)
	lobe *= lobe
	if delta <= beamWidthDeg/2 {
		return lobe
	}
	return math.Max(0.01, 0.2*lobe)
}

// UpdateReceivers rebuilds every receiver's perception for the current tick:
// received-signal list, strongest signal, and jammed flag. Iteration over
// transmitters and receivers follows entity creation order so the resulting
// ReceivedSignals ordering is deterministic.
func (p *Propagator) UpdateReceivers() {
	receivers := p.world.EntitiesWith(model.KindReceiver, model.KindTransform)
	transmitters := p.world.EntitiesWith(model.KindTransmitter, model.KindTransform)

	for _, rxID := range receivers {
		rx := p.world.Receiver(rxID)
		rx.ReceivedSignals = rx.ReceivedSignals[:0]
		rx.CurrentSignal = 0
		rx.HasSignal = false
		rx.Jammed = false

		for _, txID := range transmitters {
			if txID == rxID {
				// An entity never perceives its own emissions.
				continue
			}
			tx := p.world.Transmitter(txID)
			if !tx.Active {
				continue
			}

			s := p.Strength(txID, rxID)
			if math.IsInf(s, -1) || s <= rx.SensitivityDBm {
				continue
			}

			rx.ReceivedSignals = append(rx.ReceivedSignals, model.ReceivedSignal{
				Transmitter: txID,
				Frequency:   tx.Frequency,
				StrengthDBm: s,
			})
			if !rx.HasSignal || s > rx.CurrentSignal {
				rx.CurrentSignal = s
				rx.HasSignal = true
			}
			p.stats.SignalsPerceived++

			// A jammer does not have to be the strongest signal: any
			// active jammer on the receiver's frequency that clears the
			// sensitivity floor jams it.
			if jam := p.world.Jammer(txID); jam != nil && jam.Active &&
				jam.TargetFrequency == rx.Frequency {
				rx.Jammed = true
			}
		}
		if rx.Jammed {
			p.stats.JammedReceivers++
		}
	}
}
