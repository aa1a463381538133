package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/spectrum-sim/model"
	"github.com/signalsfoundry/spectrum-sim/timectrl"
)

// buildJamScenario stands up one SPOT jammer 100 units from one drone
// receiver on ISM 2400.
func buildJamScenario(t *testing.T, cfg *model.RadioConfig) (*World, *SimulationEngine) {
	t.Helper()
	world := NewWorld()

	if err := world.CreateEntity("jammer"); err != nil {
		t.Fatalf("CreateEntity(jammer): %v", err)
	}
	world.SetTransform("jammer", &model.Transform{Scale: 1})
	world.SetTransmitter("jammer", &model.Transmitter{Antenna: model.AntennaOmni})
	world.SetJammer("jammer", &model.Jammer{
		Type:            model.JammerSpot,
		TargetFrequency: model.FreqISM2400,
		PowerLevelDBm:   35,
	})

	if err := world.CreateEntity("drone"); err != nil {
		t.Fatalf("CreateEntity(drone): %v", err)
	}
	world.SetTransform("drone", &model.Transform{X: 100, Scale: 1})
	world.SetReceiver("drone", &model.Receiver{Frequency: model.FreqISM2400, SensitivityDBm: -90})
	world.SetAI("drone", &model.AI{Behavior: model.BehaviorPatrol, State: model.StateIdle})
	world.SetDrone("drone", &model.Drone{Speed: 10, RemainingTimeSec: 600})

	clock := timectrl.NewManualClock(time.Unix(0, 0))
	return world, NewSimulationEngine(world, cfg, clock, 1, nil)
}

func TestEngineJamToConfusionWithinOneTick(t *testing.T) {
	cfg := model.DefaultRadioConfig()
	cfg.JammedDurationSec = 8
	world, engine := buildJamScenario(t, cfg)

	ok := engine.Command(func(jc *JammerController) bool {
		return jc.Activate("jammer")
	})
	if !ok {
		t.Fatalf("jammer activation failed")
	}

	// One tick: the controller syncs the transmitter, propagation marks
	// the receiver jammed, and the AI pass reacts in the same pass.
	engine.Tick(0.1)

	if !world.Receiver("drone").Jammed {
		t.Fatalf("receiver not jammed after tick")
	}
	ai := world.AI("drone")
	if ai.State != model.StateConfused {
		t.Fatalf("AI state = %s, want confused", ai.State)
	}
	if ai.ConfusionTimerSec != 8 {
		t.Fatalf("confusion timer = %v, want 8", ai.ConfusionTimerSec)
	}
}

func TestEngineRecoveryAfterJammerDeactivation(t *testing.T) {
	cfg := model.DefaultRadioConfig()
	cfg.JammedDurationSec = 0.5
	cfg.Confusion = model.ConfusionHover
	world, engine := buildJamScenario(t, cfg)

	engine.Command(func(jc *JammerController) bool { return jc.Activate("jammer") })
	engine.Tick(0.1)

	engine.Command(func(jc *JammerController) bool { return jc.Deactivate("jammer") })
	for i := 0; i < 10; i++ {
		engine.Tick(0.1)
	}

	if world.Receiver("drone").Jammed {
		t.Fatalf("receiver still jammed after jammer deactivation")
	}
	if st := world.AI("drone").State; st != model.StateIdle {
		t.Fatalf("AI state = %s, want idle after confusion expiry", st)
	}
}

func TestEngineCoverageTracksJammerLifecycle(t *testing.T) {
	cfg := model.DefaultRadioConfig()
	world, engine := buildJamScenario(t, cfg)

	engine.Tick(0.1)
	if engine.Coverage.Has("jammer") {
		t.Fatalf("coverage present for inactive jammer")
	}

	engine.Command(func(jc *JammerController) bool { return jc.Activate("jammer") })
	engine.Tick(0.1)
	if !engine.Coverage.Has("jammer") {
		t.Fatalf("coverage missing for active jammer")
	}
	desc := engine.Coverage.Descriptors()["jammer"]
	if desc.Shape != ShapeSphere || desc.Color != ColorStrong {
		t.Fatalf("descriptor = %+v", desc)
	}

	if err := world.DestroyEntity("jammer"); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}
	if engine.Coverage.Has("jammer") {
		t.Fatalf("coverage survived entity destruction")
	}
}

func TestEngineTickListenersAndCount(t *testing.T) {
	cfg := model.DefaultRadioConfig()
	_, engine := buildJamScenario(t, cfg)

	var seen []int
	engine.RegisterTickListener(func(n int) { seen = append(seen, n) })

	engine.Tick(0.1)
	engine.Tick(0.1)

	if engine.TickCount() != 2 {
		t.Fatalf("TickCount = %d, want 2", engine.TickCount())
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("listener ticks = %v, want [1 2]", seen)
	}
}

func TestEngineBoundsAppliedAfterMovement(t *testing.T) {
	cfg := model.DefaultRadioConfig()
	cfg.World = model.WorldExtents{Width: 100, Height: 100}
	world, engine := buildJamScenario(t, cfg)

	// Drive the drone straight at the east wall.
	world.Transform("drone").X = 49
	world.Drone("drone").Speed = 1000
	world.Drone("drone").Target = &model.Waypoint{X: 500, Y: 0}

	for i := 0; i < 20; i++ {
		engine.Tick(0.1)
	}
	if x := world.Transform("drone").X; x != 50 {
		t.Fatalf("drone x = %v, want clamped at 50", x)
	}
}
