package core

import (
	"github.com/signalsfoundry/spectrum-sim/model"
)

// CoverageShape selects the coverage-volume geometry handed to the renderer.
type CoverageShape string

const (
	ShapeSphere CoverageShape = "sphere"
	ShapeCone   CoverageShape = "cone"
)

// ColorClass is the discrete power classification of a coverage volume.
type ColorClass string

const (
	ColorStrong ColorClass = "strong"
	ColorMedium ColorClass = "medium"
	ColorWeak   ColorClass = "weak"
	ColorTrace  ColorClass = "trace"
)

// ClassifyPower buckets a dBm level into a color class.
func ClassifyPower(dbm float64) ColorClass {
	switch {
	case dbm >= -50:
		return ColorStrong
	case dbm >= -70:
		return ColorMedium
	case dbm >= -85:
		return ColorWeak
	default:
		return ColorTrace
	}
}

// CoverageDescriptor describes one transmitter's coverage volume. The
// rendering collaborator owns all drawing resources; the engine only keeps
// book of which entity currently has a live descriptor.
type CoverageDescriptor struct {
	Entity       model.EntityID `json:"entity"`
	Shape        CoverageShape  `json:"shape"`
	Radius       float64        `json:"radius,omitempty"`
	Height       float64        `json:"height,omitempty"`
	HalfAngleDeg float64        `json:"half_angle_deg,omitempty"`
	HeadingDeg   float64        `json:"heading_deg"`
	Color        ColorClass     `json:"color"`
}

// CoverageSink receives descriptor lifecycle events. Implementations must
// not mutate engine component state.
type CoverageSink interface {
	UpsertCoverage(desc CoverageDescriptor)
	RemoveCoverage(id model.EntityID)
}

// CoverageTracker keeps descriptors in lockstep with transmitter activation
// state: created lazily on activation, torn down on deactivation or entity
// destruction.
type CoverageTracker struct {
	cfg   *model.RadioConfig
	world *World
	sink  CoverageSink
	live  map[model.EntityID]CoverageDescriptor
}

// NewCoverageTracker creates a tracker. sink may be nil when no renderer is
// attached; book-keeping still happens so a late subscriber sees consistent
// state.
func NewCoverageTracker(world *World, cfg *model.RadioConfig, sink CoverageSink) *CoverageTracker {
	return &CoverageTracker{
		cfg:   cfg,
		world: world,
		sink:  sink,
		live:  make(map[model.EntityID]CoverageDescriptor),
	}
}

// Has reports whether the entity currently has a live descriptor.
func (t *CoverageTracker) Has(id model.EntityID) bool {
	_, ok := t.live[id]
	return ok
}

// Descriptors returns the live descriptors, keyed by entity.
func (t *CoverageTracker) Descriptors() map[model.EntityID]CoverageDescriptor {
	out := make(map[model.EntityID]CoverageDescriptor, len(t.live))
	for id, d := range t.live {
		out[id] = d
	}
	return out
}

// Sync reconciles descriptors with current transmitter state. Runs once per
// tick after receiver aggregation.
func (t *CoverageTracker) Sync() {
	for _, id := range t.world.EntitiesWith(model.KindTransmitter) {
		tx := t.world.Transmitter(id)
		if tx.Active {
			desc := t.describe(id, tx)
			prev, ok := t.live[id]
			if !ok || prev != desc {
				t.live[id] = desc
				if t.sink != nil {
					t.sink.UpsertCoverage(desc)
				}
			}
			continue
		}
		t.release(id)
	}
}

// EntityDestroyed releases the descriptor for a destroyed entity. Satisfies
// the store's Observer interface together with ComponentAdded.
func (t *CoverageTracker) EntityDestroyed(id model.EntityID) {
	t.release(id)
}

// ComponentAdded is part of the Observer interface; coverage state is built
// lazily during Sync, so additions need no immediate action.
func (t *CoverageTracker) ComponentAdded(model.EntityID, model.ComponentKind) {}

func (t *CoverageTracker) release(id model.EntityID) {
	if _, ok := t.live[id]; !ok {
		return
	}
	delete(t.live, id)
	if t.sink != nil {
		t.sink.RemoveCoverage(id)
	}
}

func (t *CoverageTracker) describe(id model.EntityID, tx *model.Transmitter) CoverageDescriptor {
	ant := t.cfg.Antenna(tx.Antenna)
	desc := CoverageDescriptor{
		Entity:     id,
		HeadingDeg: tx.AntennaHeading,
		Color:      ClassifyPower(tx.PowerDBm),
	}
	if ant.Directional {
		desc.Shape = ShapeCone
		desc.Height = 10 + (tx.PowerDBm+100)*1.0
		desc.HalfAngleDeg = ant.BeamWidthDeg / 2
	} else {
		desc.Shape = ShapeSphere
		desc.Radius = 5 + (tx.PowerDBm+100)*0.5
	}
	return desc
}
