package core

import (
	"math"

	"github.com/signalsfoundry/spectrum-sim/model"
	"github.com/signalsfoundry/spectrum-sim/timectrl"
)

// Pulsed jammers key a fixed duty cycle onto their transmitter.
const (
	pulseOnMs  = 200.0
	pulseOffMs = 800.0
)

// JammerStats counts command activity for metrics.
type JammerStats struct {
	Activations      int
	Deactivations    int
	RejectedCommands int
}

// JammerController owns jammer lifecycle: activate, deactivate, cooldown and
// pulsing. Every tick it forces each jammer's linked transmitter to mirror
// the jammer's state; the transmitter has no independent authority while
// owned by a jammer.
type JammerController struct {
	cfg   *model.RadioConfig
	world *World
	clock timectrl.SimClock
	stats JammerStats
}

// NewJammerController creates a controller. The clock supplies the wall time
// that pulse phase derives from; tests inject a manual clock to pin phase.
func NewJammerController(world *World, cfg *model.RadioConfig, clock timectrl.SimClock) *JammerController {
	return &JammerController{cfg: cfg, world: world, clock: clock}
}

// Stats returns cumulative command counters.
func (jc *JammerController) Stats() JammerStats {
	return jc.stats
}

// Activate turns a jammer on. It fails, mutating nothing, while the jammer
// is cooling down or depleted. Activating an already-active jammer is a
// no-op returning true.
func (jc *JammerController) Activate(id model.EntityID) bool {
	jam := jc.world.Jammer(id)
	if jam == nil {
		jc.stats.RejectedCommands++
		return false
	}
	if jam.Active {
		return true
	}
	if jam.CooldownSec > 0 || jam.Depleted {
		jc.stats.RejectedCommands++
		return false
	}
	jam.Active = true
	jc.stats.Activations++
	return true
}

// Deactivate turns a jammer off. It always succeeds: the linked transmitter
// is forced inactive immediately and the type-specific cooldown starts.
func (jc *JammerController) Deactivate(id model.EntityID) bool {
	jam := jc.world.Jammer(id)
	if jam == nil {
		jc.stats.RejectedCommands++
		return false
	}
	jam.Active = false
	if tx := jc.world.Transmitter(id); tx != nil {
		tx.Active = false
	}
	if spec, ok := jc.cfg.JammerSpec(jam.Type); ok {
		jam.CooldownSec = spec.CooldownSec
	}
	jc.stats.Deactivations++
	return true
}

// SetFrequency retargets a jammer. Unknown frequencies are rejected with no
// mutation.
func (jc *JammerController) SetFrequency(id model.EntityID, freq model.FrequencyKey) bool {
	jam := jc.world.Jammer(id)
	if jam == nil {
		jc.stats.RejectedCommands++
		return false
	}
	if _, ok := jc.cfg.FrequencyMHz(freq); !ok {
		jc.stats.RejectedCommands++
		return false
	}
	jam.TargetFrequency = freq
	return true
}

// SetPower adjusts a jammer's power level, validated against the declared
// bounds of its type. Out-of-range values are rejected with no mutation.
func (jc *JammerController) SetPower(id model.EntityID, powerDBm float64) bool {
	jam := jc.world.Jammer(id)
	if jam == nil {
		jc.stats.RejectedCommands++
		return false
	}
	spec, ok := jc.cfg.JammerSpec(jam.Type)
	if !ok || powerDBm < spec.MinPowerDBm || powerDBm > spec.MaxPowerDBm {
		jc.stats.RejectedCommands++
		return false
	}
	jam.PowerLevelDBm = powerDBm
	return true
}

// Tick decays cooldowns and synchronizes every jammer's linked transmitter,
// regardless of command activity. dt is in seconds.
func (jc *JammerController) Tick(dt float64) {
	for _, id := range jc.world.EntitiesWith(model.KindJammer, model.KindTransmitter) {
		jam := jc.world.Jammer(id)
		tx := jc.world.Transmitter(id)

		jam.CooldownSec = math.Max(0, jam.CooldownSec-dt)

		tx.Active = jam.Active && jam.CooldownSec == 0
		tx.Frequency = jam.TargetFrequency
		tx.PowerDBm = jam.PowerLevelDBm

		spec, ok := jc.cfg.JammerSpec(jam.Type)
		if ok && spec.Pulsed && tx.Active {
			tx.Pulse.Pulsing = true
			tx.Pulse.OnTimeMs = pulseOnMs
			tx.Pulse.OffTimeMs = pulseOffMs
			// Phase derives from clock time modulo the cycle length, so
			// it is independent of tick rate but tracks the clock the
			// controller was built with.
			cycleMs := int64(pulseOnMs + pulseOffMs)
			phase := jc.clock.Now().UnixMilli() % cycleMs
			if phase < 0 {
				phase += cycleMs
			}
			tx.Pulse.Transmitting = float64(phase) < pulseOnMs
		} else {
			tx.Pulse.Pulsing = false
			tx.Pulse.Transmitting = false
		}
	}
}
