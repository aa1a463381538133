package main

import (
	"testing"
	"time"

	"github.com/signalsfoundry/spectrum-sim/core"
	"github.com/signalsfoundry/spectrum-sim/model"
	"github.com/signalsfoundry/spectrum-sim/timectrl"
)

func TestBuildDemoScenario(t *testing.T) {
	world := core.NewWorld()
	buildDemoScenario(world)

	for _, id := range []model.EntityID{"ground-tx", "drone-1", "drone-2", "jammer-1"} {
		if !world.HasEntity(id) {
			t.Fatalf("demo scenario missing entity %s", id)
		}
	}
	if !world.Transmitter("ground-tx").Active {
		t.Errorf("ground transmitter should start active")
	}
	if world.Jammer("jammer-1").Active {
		t.Errorf("jammer should await an explicit activation")
	}
	if st := world.AI("drone-1").State; st != model.StatePatrol {
		t.Errorf("drone-1 state = %s, want patrol", st)
	}
}

// TestIntegrationJamDisruptsPatrol runs the demo scenario end to end: once
// the jammer lights up, both patrol drones on its frequency go confused.
func TestIntegrationJamDisruptsPatrol(t *testing.T) {
	world := core.NewWorld()
	buildDemoScenario(world)

	cfg := model.DefaultRadioConfig()
	cfg.JammedDurationSec = 5
	clock := timectrl.NewManualClock(time.Unix(0, 0))
	engine := core.NewSimulationEngine(world, cfg, clock, 1, nil)

	for i := 0; i < 5; i++ {
		engine.Tick(0.1)
	}
	activeTx, confused, disabled := countStates(engine)
	if activeTx != 1 {
		t.Fatalf("active transmitters before jamming = %d, want 1", activeTx)
	}
	if confused != 0 || disabled != 0 {
		t.Fatalf("unexpected AI states before jamming: confused=%d disabled=%d", confused, disabled)
	}

	ok := engine.Command(func(jc *core.JammerController) bool {
		return jc.Activate("jammer-1")
	})
	if !ok {
		t.Fatalf("jammer activation failed")
	}

	for i := 0; i < 5; i++ {
		engine.Tick(0.1)
	}
	activeTx, confused, _ = countStates(engine)
	if activeTx != 2 {
		t.Fatalf("active transmitters while jamming = %d, want 2", activeTx)
	}
	if confused != 2 {
		t.Fatalf("confused drones = %d, want 2", confused)
	}
}
