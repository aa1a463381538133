// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/spectrum-sim/model"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging or debugging from main().
type Scenario struct {
	EntityIDs    []model.EntityID
	Transmitters int
	Receivers    int
	Jammers      int
	Drones       int
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type scenarioJSON struct {
	Entities []entityJSON `json:"entities"`
}

type entityJSON struct {
	ID          string           `json:"id"`
	Transform   *transformJSON   `json:"transform"`
	Transmitter *transmitterJSON `json:"transmitter"`
	Receiver    *receiverJSON    `json:"receiver"`
	Jammer      *jammerJSON      `json:"jammer"`
	AI          *aiJSON          `json:"ai"`
	Drone       *droneJSON       `json:"drone"`
}

type transformJSON struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
	Rotation float64  `json:"rotation"`
	Scale    *float64 `json:"scale"` // optional; defaults to 1
}

type transmitterJSON struct {
	Active         bool    `json:"active"`
	PowerDBm       float64 `json:"power_dbm"`
	Frequency      string  `json:"frequency"`
	Antenna        string  `json:"antenna"`
	AntennaHeading float64 `json:"antenna_heading"`
}

type receiverJSON struct {
	Frequency      string  `json:"frequency"`
	SensitivityDBm float64 `json:"sensitivity_dbm"`
}

type jammerJSON struct {
	Type            string  `json:"type"`
	TargetFrequency string  `json:"target_frequency"`
	PowerDBm        float64 `json:"power_dbm"`
	Depleted        bool    `json:"depleted"`
}

type aiJSON struct {
	Behavior string `json:"behavior"`
	State    string `json:"state"`
}

type waypointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type droneJSON struct {
	Speed            float64        `json:"speed"`
	Waypoints        []waypointJSON `json:"waypoints"`
	Target           *waypointJSON  `json:"target"`
	Base             *waypointJSON  `json:"base"`
	ReturnToBase     bool           `json:"return_to_base"`
	RemainingTimeSec float64        `json:"remaining_time_sec"`
}

// LoadScenario reads a JSON scenario from r, populates the world with
// entities and their components, and returns a summary of what was loaded.
//
// It fails only on JSON / structural errors; component-value validation is
// left to the engine, which treats bad values the same way direct component
// edits would.
func LoadScenario(world *World, r io.Reader) (*Scenario, error) {
	if world == nil {
		return nil, fmt.Errorf("LoadScenario: world is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	result := &Scenario{
		EntityIDs: make([]model.EntityID, 0, len(payload.Entities)),
	}

	for _, je := range payload.Entities {
		if je.ID == "" {
			return nil, fmt.Errorf("LoadScenario: entity with empty id")
		}
		id := model.EntityID(je.ID)
		if err := world.CreateEntity(id); err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}
		result.EntityIDs = append(result.EntityIDs, id)

		if jt := je.Transform; jt != nil {
			scale := 1.0
			if jt.Scale != nil {
				scale = *jt.Scale
			}
			world.SetTransform(id, &model.Transform{
				X: jt.X, Y: jt.Y, Z: jt.Z,
				Rotation: NormalizeDegrees(jt.Rotation),
				Scale:    scale,
			})
		}

		if jx := je.Transmitter; jx != nil {
			world.SetTransmitter(id, &model.Transmitter{
				Active:         jx.Active,
				PowerDBm:       jx.PowerDBm,
				Frequency:      model.FrequencyKey(jx.Frequency),
				Antenna:        antennaFromString(jx.Antenna),
				AntennaHeading: NormalizeDegrees(jx.AntennaHeading),
			})
			result.Transmitters++
		}

		if jr := je.Receiver; jr != nil {
			world.SetReceiver(id, &model.Receiver{
				Frequency:      model.FrequencyKey(jr.Frequency),
				SensitivityDBm: jr.SensitivityDBm,
			})
			result.Receivers++
		}

		if jj := je.Jammer; jj != nil {
			world.SetJammer(id, &model.Jammer{
				Type:            model.JammerKey(strings.ToUpper(jj.Type)),
				TargetFrequency: model.FrequencyKey(jj.TargetFrequency),
				PowerLevelDBm:   jj.PowerDBm,
				Depleted:        jj.Depleted,
			})
			result.Jammers++
		}

		if ja := je.AI; ja != nil {
			world.SetAI(id, &model.AI{
				Behavior: behaviorFromString(ja.Behavior),
				State:    stateFromString(ja.State),
			})
		}

		if jd := je.Drone; jd != nil {
			drone := &model.Drone{
				Speed:                    jd.Speed,
				ReturnToBaseWhenComplete: jd.ReturnToBase,
				RemainingTimeSec:         jd.RemainingTimeSec,
			}
			for _, wp := range jd.Waypoints {
				drone.Waypoints = append(drone.Waypoints, model.Waypoint{X: wp.X, Y: wp.Y})
			}
			if jd.Target != nil {
				drone.Target = &model.Waypoint{X: jd.Target.X, Y: jd.Target.Y}
			}
			if jd.Base != nil {
				drone.Base = &model.Waypoint{X: jd.Base.X, Y: jd.Base.Y}
			}
			world.SetDrone(id, drone)
			result.Drones++
		}
	}

	return result, nil
}

// behaviorFromString maps the JSON "behavior" string to our Behavior*
// constants. Unknown / empty values default to patrol.
func behaviorFromString(s string) model.AIBehavior {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "defend":
		return model.BehaviorDefend
	case "attack":
		return model.BehaviorAttack
	default:
		return model.BehaviorPatrol
	}
}

// stateFromString maps the JSON "state" string to an initial AI state.
// Unknown / empty values default to idle, the state machine's initial state.
func stateFromString(s string) model.AIState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patrol":
		return model.StatePatrol
	case "returning":
		return model.StateReturning
	case "disabled":
		return model.StateDisabled
	case "confused":
		return model.StateConfused
	default:
		return model.StateIdle
	}
}

// antennaFromString normalizes the JSON antenna key. Empty defaults to OMNI.
func antennaFromString(s string) model.AntennaKey {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return model.AntennaOmni
	}
	return model.AntennaKey(v)
}
