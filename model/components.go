package model

// EntityID uniquely identifies a simulated entity. IDs are opaque to the
// engine; scenarios pick human-readable names ("drone-1", "jammer-north").
type EntityID string

// ComponentKind names a component type for store queries and observer
// notifications.
type ComponentKind string

const (
	KindTransform   ComponentKind = "transform"
	KindTransmitter ComponentKind = "transmitter"
	KindReceiver    ComponentKind = "receiver"
	KindJammer      ComponentKind = "jammer"
	KindAI          ComponentKind = "ai"
	KindDrone       ComponentKind = "drone"
)

// Transform is an entity's pose in world units. Rotation is a heading in
// degrees, wrapped to [0,360).
type Transform struct {
	X, Y, Z  float64
	Rotation float64
	Scale    float64
}

// PulseParameters describes on/off keying for a pulsed transmitter.
// Transmitting is meaningful only while Pulsing is true; a non-pulsing
// transmitter is always eligible to transmit while active.
type PulseParameters struct {
	Pulsing      bool
	OnTimeMs     float64
	OffTimeMs    float64
	Transmitting bool
}

// Transmitter is an RF emitter. Power is in dBm. Frequency keys into the
// configured frequency-band table; Antenna keys into the antenna-type table.
type Transmitter struct {
	Active         bool
	PowerDBm       float64
	Frequency      FrequencyKey
	Antenna        AntennaKey
	AntennaHeading float64
	Pulse          PulseParameters
}

// ReceivedSignal is one perceived transmission, recorded during receiver
// aggregation. Order within Receiver.ReceivedSignals follows transmitter
// creation order.
type ReceivedSignal struct {
	Transmitter EntityID
	Frequency   FrequencyKey
	StrengthDBm float64
}

// Receiver perceives transmissions on a single frequency. SensitivityDBm is
// the floor below which signals are discarded. ReceivedSignals,
// CurrentSignal and Jammed are rebuilt from scratch every tick.
type Receiver struct {
	Frequency      FrequencyKey
	SensitivityDBm float64

	ReceivedSignals []ReceivedSignal
	// CurrentSignal holds the strongest perceived signal for the tick;
	// HasSignal distinguishes "no signal" from a legitimate 0 dBm reading.
	CurrentSignal float64
	HasSignal     bool
	Jammed        bool
}

// Jammer drives a co-located Transmitter to deny reception on a target
// frequency. While a Jammer owns a transmitter the transmitter has no
// independent authority: its active flag, frequency and power mirror the
// jammer's every tick.
type Jammer struct {
	Active          bool
	Type            JammerKey
	TargetFrequency FrequencyKey
	PowerLevelDBm   float64
	CooldownSec     float64
	Depleted        bool
}

// AIBehavior selects the high-level mission profile. Only patrol has
// dedicated behavior today; defend and attack are extension points.
type AIBehavior int

const (
	BehaviorPatrol AIBehavior = iota
	BehaviorDefend
	BehaviorAttack
)

// AIState is the authoritative behavioral state machine.
type AIState int

const (
	StateIdle AIState = iota
	StatePatrol
	StateReturning
	StateDisabled
	StateConfused
)

func (s AIState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateReturning:
		return "returning"
	case StateDisabled:
		return "disabled"
	case StateConfused:
		return "confused"
	default:
		return "unknown"
	}
}

// AI holds the behavioral state machine for an entity. ConfusionLevel is
// 0–100; ConfusionTimerSec counts down the remaining confused time.
// LastStateChange is diagnostic only and never read by the engine.
type AI struct {
	Behavior          AIBehavior
	State             AIState
	ConfusionLevel    float64
	ConfusionTimerSec float64
	LastStateChange   float64

	// ConfusionOriginX/Y capture the position at confusion onset so the
	// circling pattern can orbit it.
	ConfusionOriginX float64
	ConfusionOriginY float64
	ConfusionElapsed float64
}

// Waypoint is a 2-D patrol target.
type Waypoint struct {
	X, Y float64
}

// Drone specializes an AI-bearing entity with movement parameters and a
// power budget. RemainingTimeSec reaching zero disables the entity
// regardless of any other state.
type Drone struct {
	Speed     float64
	Waypoints []Waypoint

	Target                   *Waypoint
	Base                     *Waypoint
	ReturnToBaseWhenComplete bool

	RemainingTimeSec float64
}
