package command

import (
	"github.com/signalsfoundry/spectrum-sim/core"
	"github.com/signalsfoundry/spectrum-sim/model"
)

// commandResponse is the JSON body returned by all jammer command endpoints.
type commandResponse struct {
	OK bool `json:"ok"`
}

type frequencyRequest struct {
	Frequency string `json:"frequency"`
}

type powerRequest struct {
	PowerDBm float64 `json:"power_dbm"`
}

// EntityState is the per-entity slice of a state snapshot.
type EntityState struct {
	ID       model.EntityID `json:"id"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Z        float64        `json:"z"`
	Rotation float64        `json:"rotation"`

	State          string   `json:"state,omitempty"`
	ConfusionLevel float64  `json:"confusion_level,omitempty"`
	Jammed         bool     `json:"jammed,omitempty"`
	SignalDBm      *float64 `json:"signal_dbm,omitempty"`

	TransmitterActive *bool    `json:"transmitter_active,omitempty"`
	JammerActive      *bool    `json:"jammer_active,omitempty"`
	CooldownSec       *float64 `json:"cooldown_sec,omitempty"`
}

// stateMessage is the full snapshot broadcast after every tick and served by
// GET /api/state.
type stateMessage struct {
	Type     string                    `json:"type"`
	Tick     int                       `json:"tick"`
	Entities []EntityState             `json:"entities"`
	Coverage []core.CoverageDescriptor `json:"coverage,omitempty"`
}

// coverageMessage carries an incremental coverage descriptor event.
type coverageMessage struct {
	Type       string                   `json:"type"`
	Entity     model.EntityID           `json:"entity,omitempty"`
	Descriptor *core.CoverageDescriptor `json:"descriptor,omitempty"`
}
