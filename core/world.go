package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/spectrum-sim/model"
)

var (
	ErrEntityExists   = errors.New("entity already exists")
	ErrEntityNotFound = errors.New("entity not found")
	ErrEntityBadInput = errors.New("invalid entity")
)

// Observer receives synchronous component lifecycle notifications. Callbacks
// are invoked after the store mutation completes and before the next tick's
// processing begins.
type Observer interface {
	ComponentAdded(id model.EntityID, kind model.ComponentKind)
	EntityDestroyed(id model.EntityID)
}

// World is the shared entity/component store. Components are owned by their
// entity and live exactly as long as it does. Entity iteration order is
// creation order, which keeps per-tick receiver aggregation deterministic.
//
// The store is concurrency-safe via an internal RWMutex so the command
// surface can be served from other goroutines, as long as all access goes
// through these methods. Within a tick the engine assumes exclusive access.
type World struct {
	mu sync.RWMutex

	order []model.EntityID
	alive map[model.EntityID]bool

	transforms   map[model.EntityID]*model.Transform
	transmitters map[model.EntityID]*model.Transmitter
	receivers    map[model.EntityID]*model.Receiver
	jammers      map[model.EntityID]*model.Jammer
	ais          map[model.EntityID]*model.AI
	drones       map[model.EntityID]*model.Drone

	observers []Observer
}

// NewWorld creates an empty component store.
func NewWorld() *World {
	return &World{
		alive:        make(map[model.EntityID]bool),
		transforms:   make(map[model.EntityID]*model.Transform),
		transmitters: make(map[model.EntityID]*model.Transmitter),
		receivers:    make(map[model.EntityID]*model.Receiver),
		jammers:      make(map[model.EntityID]*model.Jammer),
		ais:          make(map[model.EntityID]*model.AI),
		drones:       make(map[model.EntityID]*model.Drone),
	}
}

// Subscribe registers an observer for component lifecycle events.
func (w *World) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	w.mu.Lock()
	w.observers = append(w.observers, obs)
	w.mu.Unlock()
}

// CreateEntity registers a new entity ID with no components.
func (w *World) CreateEntity(id model.EntityID) error {
	if id == "" {
		return fmt.Errorf("%w: empty ID", ErrEntityBadInput)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.alive[id] {
		return fmt.Errorf("%w: %q", ErrEntityExists, id)
	}
	w.alive[id] = true
	w.order = append(w.order, id)
	return nil
}

// DestroyEntity removes an entity and all of its components, then notifies
// observers so engine-side transient state (cached coverage descriptors) can
// be released synchronously.
func (w *World) DestroyEntity(id model.EntityID) error {
	w.mu.Lock()
	if !w.alive[id] {
		w.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrEntityNotFound, id)
	}
	delete(w.alive, id)
	delete(w.transforms, id)
	delete(w.transmitters, id)
	delete(w.receivers, id)
	delete(w.jammers, id)
	delete(w.ais, id)
	delete(w.drones, id)
	for i, eid := range w.order {
		if eid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	observers := append([]Observer(nil), w.observers...)
	w.mu.Unlock()

	// Notify outside the lock so observers may query the store.
	for _, obs := range observers {
		obs.EntityDestroyed(id)
	}
	return nil
}

// HasEntity reports whether the entity exists.
func (w *World) HasEntity(id model.EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.alive[id]
}

func (w *World) notifyAdded(id model.EntityID, kind model.ComponentKind) {
	w.mu.RLock()
	observers := append([]Observer(nil), w.observers...)
	w.mu.RUnlock()
	for _, obs := range observers {
		obs.ComponentAdded(id, kind)
	}
}

func (w *World) attach(id model.EntityID, kind model.ComponentKind, set func()) error {
	w.mu.Lock()
	if !w.alive[id] {
		w.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrEntityNotFound, id)
	}
	set()
	w.mu.Unlock()

	w.notifyAdded(id, kind)
	return nil
}

// SetTransform attaches or replaces the entity's transform.
func (w *World) SetTransform(id model.EntityID, c *model.Transform) error {
	if c == nil {
		return fmt.Errorf("%w: nil transform", ErrEntityBadInput)
	}
	return w.attach(id, model.KindTransform, func() { w.transforms[id] = c })
}

// SetTransmitter attaches or replaces the entity's transmitter.
func (w *World) SetTransmitter(id model.EntityID, c *model.Transmitter) error {
	if c == nil {
		return fmt.Errorf("%w: nil transmitter", ErrEntityBadInput)
	}
	return w.attach(id, model.KindTransmitter, func() { w.transmitters[id] = c })
}

// SetReceiver attaches or replaces the entity's receiver.
func (w *World) SetReceiver(id model.EntityID, c *model.Receiver) error {
	if c == nil {
		return fmt.Errorf("%w: nil receiver", ErrEntityBadInput)
	}
	return w.attach(id, model.KindReceiver, func() { w.receivers[id] = c })
}

// SetJammer attaches or replaces the entity's jammer.
func (w *World) SetJammer(id model.EntityID, c *model.Jammer) error {
	if c == nil {
		return fmt.Errorf("%w: nil jammer", ErrEntityBadInput)
	}
	return w.attach(id, model.KindJammer, func() { w.jammers[id] = c })
}

// SetAI attaches or replaces the entity's AI state.
func (w *World) SetAI(id model.EntityID, c *model.AI) error {
	if c == nil {
		return fmt.Errorf("%w: nil ai", ErrEntityBadInput)
	}
	return w.attach(id, model.KindAI, func() { w.ais[id] = c })
}

// SetDrone attaches or replaces the entity's drone spec.
func (w *World) SetDrone(id model.EntityID, c *model.Drone) error {
	if c == nil {
		return fmt.Errorf("%w: nil drone", ErrEntityBadInput)
	}
	return w.attach(id, model.KindDrone, func() { w.drones[id] = c })
}

// Transform returns the entity's transform, or nil.
func (w *World) Transform(id model.EntityID) *model.Transform {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.transforms[id]
}

// Transmitter returns the entity's transmitter, or nil.
func (w *World) Transmitter(id model.EntityID) *model.Transmitter {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.transmitters[id]
}

// Receiver returns the entity's receiver, or nil.
func (w *World) Receiver(id model.EntityID) *model.Receiver {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.receivers[id]
}

// Jammer returns the entity's jammer, or nil.
func (w *World) Jammer(id model.EntityID) *model.Jammer {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.jammers[id]
}

// AI returns the entity's AI state, or nil.
func (w *World) AI(id model.EntityID) *model.AI {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ais[id]
}

// Drone returns the entity's drone spec, or nil.
func (w *World) Drone(id model.EntityID) *model.Drone {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.drones[id]
}

// HasComponent reports whether the entity carries a component of the given
// kind.
func (w *World) HasComponent(id model.EntityID, kind model.ComponentKind) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasLocked(id, kind)
}

func (w *World) hasLocked(id model.EntityID, kind model.ComponentKind) bool {
	switch kind {
	case model.KindTransform:
		return w.transforms[id] != nil
	case model.KindTransmitter:
		return w.transmitters[id] != nil
	case model.KindReceiver:
		return w.receivers[id] != nil
	case model.KindJammer:
		return w.jammers[id] != nil
	case model.KindAI:
		return w.ais[id] != nil
	case model.KindDrone:
		return w.drones[id] != nil
	default:
		return false
	}
}

// EntitiesWith returns, in creation order, every live entity carrying all of
// the listed component kinds.
func (w *World) EntitiesWith(kinds ...model.ComponentKind) []model.EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]model.EntityID, 0, len(w.order))
	for _, id := range w.order {
		match := true
		for _, kind := range kinds {
			if !w.hasLocked(id, kind) {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	return out
}

// Position returns the entity's transform position as a Vec3. The zero
// vector is returned for entities without a transform; callers matched by an
// EntitiesWith query that includes KindTransform never hit that case.
func (w *World) Position(id model.EntityID) Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tr := w.transforms[id]
	if tr == nil {
		return Vec3{}
	}
	return Vec3{X: tr.X, Y: tr.Y, Z: tr.Z}
}

// Clear removes all entities and components without notifying observers.
// Used when loading a fresh scenario.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.order = nil
	w.alive = make(map[model.EntityID]bool)
	w.transforms = make(map[model.EntityID]*model.Transform)
	w.transmitters = make(map[model.EntityID]*model.Transmitter)
	w.receivers = make(map[model.EntityID]*model.Receiver)
	w.jammers = make(map[model.EntityID]*model.Jammer)
	w.ais = make(map[model.EntityID]*model.AI)
	w.drones = make(map[model.EntityID]*model.Drone)
}
