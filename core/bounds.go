package core

import "github.com/signalsfoundry/spectrum-sim/model"

// BoundsEnforcer clamps entity positions into the world extents after all
// movement for the tick. Only x and y are clamped.
type BoundsEnforcer struct {
	world   *World
	extents model.WorldExtents
}

// NewBoundsEnforcer creates an enforcer for the configured terrain extents.
func NewBoundsEnforcer(world *World, extents model.WorldExtents) *BoundsEnforcer {
	return &BoundsEnforcer{world: world, extents: extents}
}

// Tick clamps every transform-bearing entity.
func (b *BoundsEnforcer) Tick() {
	halfW := b.extents.Width / 2
	halfH := b.extents.Height / 2
	for _, id := range b.world.EntitiesWith(model.KindTransform) {
		tr := b.world.Transform(id)
		tr.X = clamp(tr.X, -halfW, halfW)
		tr.Y = clamp(tr.Y, -halfH, halfH)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
