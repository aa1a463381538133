package core

import (
	"math"
	"math/rand"

	"github.com/signalsfoundry/spectrum-sim/model"
)

const (
	// arrivalRadius is the distance at which a movement target counts as
	// reached.
	arrivalRadius = 5.0
	// moveScale converts speed units to per-tick displacement.
	moveScale = 0.01

	confusedHeadingChance = 0.05
	confusedCircleRadius  = 25.0
)

// AISystem advances the behavioral state machine for every AI-bearing
// entity. It consumes the receiver-side outcome of the propagation engine
// (the jammed flag) and entity transforms; it never touches transmitters.
type AISystem struct {
	cfg   *model.RadioConfig
	world *World
	rng   *rand.Rand

	elapsed float64
}

// NewAISystem creates an AI system. The seed fixes the random stream used by
// the confused-movement pattern so runs are reproducible.
func NewAISystem(world *World, cfg *model.RadioConfig, seed int64) *AISystem {
	return &AISystem{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Tick advances every AI entity by dt seconds.
func (s *AISystem) Tick(dt float64) {
	s.elapsed += dt

	for _, id := range s.world.EntitiesWith(model.KindAI, model.KindTransform) {
		ai := s.world.AI(id)
		if ai.State == model.StateDisabled {
			// Terminal barring an external reset; jam checks are skipped.
			continue
		}
		tr := s.world.Transform(id)
		drone := s.world.Drone(id)

		// Power exhaustion overrides everything else this tick.
		if drone != nil {
			drone.RemainingTimeSec -= dt
			if drone.RemainingTimeSec <= 0 {
				s.setState(ai, model.StateDisabled)
				continue
			}
		}

		// A jammed receiver forces confusion from any non-disabled,
		// non-confused state, ahead of behavior-driven transitions. The
		// timer starts counting on the following tick.
		if ai.State != model.StateConfused {
			if rx := s.world.Receiver(id); rx != nil && rx.Jammed {
				s.setState(ai, model.StateConfused)
				ai.ConfusionLevel = 100
				ai.ConfusionTimerSec = s.cfg.JammedDurationSec
				ai.ConfusionOriginX = tr.X
				ai.ConfusionOriginY = tr.Y
				ai.ConfusionElapsed = 0
				continue
			}
		}

		switch ai.State {
		case model.StateConfused:
			s.tickConfused(ai, tr, drone, dt)
		case model.StatePatrol:
			s.tickPatrol(ai, tr, drone)
		case model.StateReturning:
			s.tickReturning(ai, tr, drone)
		case model.StateIdle:
			s.tickIdle(tr, drone)
		case model.StateDisabled:
			// handled above
		}
	}
}

func (s *AISystem) setState(ai *model.AI, state model.AIState) {
	ai.State = state
	ai.LastStateChange = s.elapsed
}

func (s *AISystem) tickConfused(ai *model.AI, tr *model.Transform, drone *model.Drone, dt float64) {
	ai.ConfusionTimerSec -= dt
	if ai.ConfusionTimerSec <= 0 {
		ai.ConfusionTimerSec = 0
		ai.ConfusionLevel = 0
		s.setState(ai, model.StateIdle)
		return
	}
	ai.ConfusionElapsed += dt

	speed := 0.0
	if drone != nil {
		speed = drone.Speed
	}

	switch s.cfg.Confusion {
	case model.ConfusionRandom:
		if s.rng.Float64() < confusedHeadingChance {
			tr.Rotation = s.rng.Float64() * 360
		}
		stepForward(tr, speed/2*moveScale)
	case model.ConfusionCircle:
		tr.X = ai.ConfusionOriginX + confusedCircleRadius*math.Cos(ai.ConfusionElapsed)
		tr.Y = ai.ConfusionOriginY + confusedCircleRadius*math.Sin(ai.ConfusionElapsed)
		tr.Rotation = NormalizeDegrees(ai.ConfusionElapsed*180/math.Pi + 90)
	case model.ConfusionHover:
		// no movement
	}
}

func (s *AISystem) tickPatrol(ai *model.AI, tr *model.Transform, drone *model.Drone) {
	if drone == nil || len(drone.Waypoints) == 0 {
		if drone != nil && drone.Base != nil && drone.ReturnToBaseWhenComplete {
			s.setState(ai, model.StateReturning)
		} else {
			s.setState(ai, model.StateIdle)
		}
		return
	}
	wp := drone.Waypoints[0]
	if moveToward(tr, drone.Speed, wp.X, wp.Y) {
		drone.Waypoints = drone.Waypoints[1:]
	}
}

func (s *AISystem) tickReturning(ai *model.AI, tr *model.Transform, drone *model.Drone) {
	if drone == nil || drone.Base == nil {
		s.setState(ai, model.StateIdle)
		return
	}
	if moveToward(tr, drone.Speed, drone.Base.X, drone.Base.Y) {
		s.setState(ai, model.StateIdle)
	}
}

func (s *AISystem) tickIdle(tr *model.Transform, drone *model.Drone) {
	if drone == nil || drone.Target == nil {
		return
	}
	if moveToward(tr, drone.Speed, drone.Target.X, drone.Target.Y) {
		drone.Target = nil
	}
}

// moveToward sets the entity's heading toward (x,y) and advances it one tick
// of displacement. It reports arrival within arrivalRadius without moving.
func moveToward(tr *model.Transform, speed, x, y float64) bool {
	pos := Vec3{X: tr.X, Y: tr.Y}
	target := Vec3{X: x, Y: y}
	if pos.DistanceTo(target) < arrivalRadius {
		return true
	}
	tr.Rotation = BearingDegrees(pos, target)
	stepForward(tr, speed*moveScale)
	return false
}

// stepForward advances the transform along its current heading.
func stepForward(tr *model.Transform, step float64) {
	rad := tr.Rotation * math.Pi / 180
	tr.X += math.Cos(rad) * step
	tr.Y += math.Sin(rad) * step
}
