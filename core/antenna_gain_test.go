package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/spectrum-sim/model"
)

func TestDirectionalGainBoresight(t *testing.T) {
	if g := directionalGainFactor(90, 90, 45); math.Abs(g-1) > 1e-12 {
		t.Fatalf("boresight gain factor = %v, want 1", g)
	}
}

func TestDirectionalGainFallsOffBoresight(t *testing.T) {
	prev := directionalGainFactor(0, 0, 45)
	for _, delta := range []float64{5, 10, 15, 20} {
		g := directionalGainFactor(delta, 0, 45)
		if g >= prev {
			t.Fatalf("gain factor at Δ=%v is %v, want < %v", delta, g, prev)
		}
		prev = g
	}
}

func TestDirectionalGainSideLobeFloor(t *testing.T) {
	// Far outside the main lobe the factor never drops below 0.01.
	for _, delta := range []float64{90, 135, 180} {
		if g := directionalGainFactor(delta, 0, 45); g < 0.01 {
			t.Fatalf("side-lobe factor at Δ=%v is %v, want ≥ 0.01", delta, g)
		}
	}
}

func TestDirectionalGainWrapsAroundNorth(t *testing.T) {
	// 350° heading to a target bearing 10° is a 20° separation, not 340°.
	a := directionalGainFactor(10, 350, 90)
	b := directionalGainFactor(20, 0, 90)
	if math.Abs(a-b) > 1e-12 {
		t.Fatalf("wrapped separation gain = %v, want %v", a, b)
	}
}

func TestDirectionalAntennaAppliesGain(t *testing.T) {
	world := NewWorld()
	buildPair(t, world, Vec3{}, Vec3{X: 1000}, 0, -200)

	cfg := model.DefaultRadioConfig()
	p := NewPropagator(world, cfg)
	omni := p.Strength("tx", "rx")

	// Point a YAGI straight at the receiver: full 12 dBi on boresight.
	tx := world.Transmitter("tx")
	tx.Antenna = model.AntennaYagi
	tx.AntennaHeading = BearingDegrees(Vec3{}, Vec3{X: 1000})
	p.BeginTick()
	aimed := p.Strength("tx", "rx")
	if math.Abs(aimed-(omni+12)) > 1e-9 {
		t.Fatalf("boresight YAGI strength = %v, want %v", aimed, omni+12)
	}

	// Turned away, only the side-lobe fraction of the gain remains.
	tx.AntennaHeading = NormalizeDegrees(tx.AntennaHeading + 180)
	p.BeginTick()
	away := p.Strength("tx", "rx")
	if away >= aimed {
		t.Fatalf("back-lobe strength %v not below boresight %v", away, aimed)
	}
	if away < omni {
		t.Fatalf("back-lobe strength %v dropped below omni %v, floor not applied", away, omni)
	}
}
