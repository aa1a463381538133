package core

import (
	"sync"

	"github.com/signalsfoundry/spectrum-sim/model"
	"github.com/signalsfoundry/spectrum-sim/timectrl"
)

// SimulationEngine composes the per-tick pass in its fixed order: jammer
// controller, propagation (cache clear, pairwise compute, receiver
// aggregation, coverage sync), AI state machine, bounds enforcer. A tick is
// single-threaded; the engine mutex also serializes command-surface calls
// against ticks so no component state mutates mid-pass.
type SimulationEngine struct {
	mu sync.Mutex

	World      *World
	Propagator *Propagator
	Jammers    *JammerController
	AI         *AISystem
	Bounds     *BoundsEnforcer
	Coverage   *CoverageTracker

	tick          int
	tickListeners []func(int)
}

// NewSimulationEngine wires the component passes around a shared world. sink
// may be nil when no renderer is attached.
func NewSimulationEngine(world *World, cfg *model.RadioConfig, clock timectrl.SimClock, seed int64, sink CoverageSink) *SimulationEngine {
	se := &SimulationEngine{
		World:      world,
		Propagator: NewPropagator(world, cfg),
		Jammers:    NewJammerController(world, cfg, clock),
		AI:         NewAISystem(world, cfg, seed),
		Bounds:     NewBoundsEnforcer(world, cfg.World),
		Coverage:   NewCoverageTracker(world, cfg, sink),
	}
	world.Subscribe(se.Coverage)
	return se
}

// RegisterTickListener adds a callback invoked after every completed tick
// with the tick number.
func (se *SimulationEngine) RegisterTickListener(fn func(int)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// Tick runs one full simulation update. dt is the simulated elapsed time in
// seconds.
func (se *SimulationEngine) Tick(dt float64) {
	se.mu.Lock()

	se.Jammers.Tick(dt)

	se.Propagator.BeginTick()
	se.Propagator.UpdateReceivers()
	se.Coverage.Sync()

	se.AI.Tick(dt)
	se.Bounds.Tick()

	se.tick++
	tick := se.tick
	se.mu.Unlock()

	for _, fn := range se.tickListeners {
		fn(tick)
	}
}

// TickCount returns the number of completed ticks.
func (se *SimulationEngine) TickCount() int {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.tick
}

// TickCountLocked returns the tick count without locking; the caller must
// already hold the engine lock via WithLock.
func (se *SimulationEngine) TickCountLocked() int {
	return se.tick
}

// Command executes fn while holding the engine lock, serializing external
// jammer commands against the tick pass.
func (se *SimulationEngine) Command(fn func(*JammerController) bool) bool {
	se.mu.Lock()
	defer se.mu.Unlock()
	return fn(se.Jammers)
}

// WithLock runs fn under the engine lock so external readers never observe a
// tick mid-pass.
func (se *SimulationEngine) WithLock(fn func()) {
	se.mu.Lock()
	defer se.mu.Unlock()
	fn()
}
