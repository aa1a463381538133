package core

import (
	"testing"

	"github.com/signalsfoundry/spectrum-sim/model"
)

// recordingSink captures descriptor lifecycle events in arrival order.
type recordingSink struct {
	upserts []CoverageDescriptor
	removes []model.EntityID
}

func (r *recordingSink) UpsertCoverage(desc CoverageDescriptor) {
	r.upserts = append(r.upserts, desc)
}

func (r *recordingSink) RemoveCoverage(id model.EntityID) {
	r.removes = append(r.removes, id)
}

func TestClassifyPower(t *testing.T) {
	cases := []struct {
		dbm  float64
		want ColorClass
	}{
		{-40, ColorStrong},
		{-50, ColorStrong},
		{-50.1, ColorMedium},
		{-70, ColorMedium},
		{-71, ColorWeak},
		{-85, ColorWeak},
		{-85.1, ColorTrace},
		{-120, ColorTrace},
	}
	for _, c := range cases {
		if got := ClassifyPower(c.dbm); got != c.want {
			t.Errorf("ClassifyPower(%v) = %s, want %s", c.dbm, got, c.want)
		}
	}
}

func TestCoverageOmniSphere(t *testing.T) {
	world := NewWorld()
	addTransmitter(t, world, "tx", Vec3{}, -40, model.FreqUHF)

	sink := &recordingSink{}
	tracker := NewCoverageTracker(world, model.DefaultRadioConfig(), sink)
	tracker.Sync()

	if len(sink.upserts) != 1 {
		t.Fatalf("got %d upserts, want 1", len(sink.upserts))
	}
	desc := sink.upserts[0]
	if desc.Shape != ShapeSphere {
		t.Fatalf("shape = %s, want sphere", desc.Shape)
	}
	// radius = 5 + (power + 100) * 0.5
	if desc.Radius != 35 {
		t.Fatalf("radius = %v, want 35", desc.Radius)
	}
	if desc.Color != ColorStrong {
		t.Fatalf("color = %s, want strong", desc.Color)
	}
}

func TestCoverageDirectionalCone(t *testing.T) {
	world := NewWorld()
	addTransmitter(t, world, "tx", Vec3{}, -60, model.FreqUHF)
	tx := world.Transmitter("tx")
	tx.Antenna = model.AntennaSector
	tx.AntennaHeading = 135

	sink := &recordingSink{}
	tracker := NewCoverageTracker(world, model.DefaultRadioConfig(), sink)
	tracker.Sync()

	if len(sink.upserts) != 1 {
		t.Fatalf("got %d upserts, want 1", len(sink.upserts))
	}
	desc := sink.upserts[0]
	if desc.Shape != ShapeCone {
		t.Fatalf("shape = %s, want cone", desc.Shape)
	}
	// height = 10 + (power + 100) * 1.0; SECTOR beam width 90 → half angle 45.
	if desc.Height != 50 || desc.HalfAngleDeg != 45 {
		t.Fatalf("cone = height %v half-angle %v, want 50 / 45", desc.Height, desc.HalfAngleDeg)
	}
	if desc.HeadingDeg != 135 {
		t.Fatalf("heading = %v, want 135", desc.HeadingDeg)
	}
	if desc.Color != ColorMedium {
		t.Fatalf("color = %s, want medium", desc.Color)
	}
}

func TestCoverageFollowsActivation(t *testing.T) {
	world := NewWorld()
	addTransmitter(t, world, "tx", Vec3{}, 0, model.FreqUHF)

	sink := &recordingSink{}
	tracker := NewCoverageTracker(world, model.DefaultRadioConfig(), sink)

	tracker.Sync()
	if !tracker.Has("tx") {
		t.Fatalf("no descriptor for active transmitter")
	}

	// Unchanged state must not re-emit.
	tracker.Sync()
	if len(sink.upserts) != 1 {
		t.Fatalf("unchanged sync re-emitted: %d upserts", len(sink.upserts))
	}

	// A power change re-emits an updated descriptor.
	world.Transmitter("tx").PowerDBm = -80
	tracker.Sync()
	if len(sink.upserts) != 2 {
		t.Fatalf("power change did not re-emit: %d upserts", len(sink.upserts))
	}
	if sink.upserts[1].Color != ColorWeak {
		t.Fatalf("updated color = %s, want weak", sink.upserts[1].Color)
	}

	world.Transmitter("tx").Active = false
	tracker.Sync()
	if tracker.Has("tx") {
		t.Fatalf("descriptor survived deactivation")
	}
	if len(sink.removes) != 1 || sink.removes[0] != "tx" {
		t.Fatalf("removes = %v, want [tx]", sink.removes)
	}
}

func TestCoverageReleasedOnEntityDestroy(t *testing.T) {
	world := NewWorld()
	addTransmitter(t, world, "tx", Vec3{}, 0, model.FreqUHF)

	sink := &recordingSink{}
	tracker := NewCoverageTracker(world, model.DefaultRadioConfig(), sink)
	world.Subscribe(tracker)
	tracker.Sync()

	if err := world.DestroyEntity("tx"); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}
	if tracker.Has("tx") {
		t.Fatalf("descriptor survived entity destruction")
	}
	if len(sink.removes) != 1 {
		t.Fatalf("removes = %v, want one entry", sink.removes)
	}
}
