package model

import "fmt"

// FrequencyKey names an entry in the frequency-band table.
type FrequencyKey string

// AntennaKey names an entry in the antenna-type table.
type AntennaKey string

// JammerKey names an entry in the jammer-type table.
type JammerKey string

// Well-known defaults. Scenarios may configure additional bands.
const (
	FreqVHF     FrequencyKey = "VHF"
	FreqUHF     FrequencyKey = "UHF"
	FreqGPSL1   FrequencyKey = "GPS_L1"
	FreqISM2400 FrequencyKey = "ISM_2400"
	FreqISM5800 FrequencyKey = "ISM_5800"

	AntennaOmni   AntennaKey = "OMNI"
	AntennaYagi   AntennaKey = "YAGI"
	AntennaSector AntennaKey = "SECTOR"
	AntennaDish   AntennaKey = "DISH"

	JammerSpot    JammerKey = "SPOT"
	JammerBarrage JammerKey = "BARRAGE"
	JammerPulse   JammerKey = "PULSE"
)

// PropagationModel selects the path-loss formula applied to every
// transmitter/receiver pair.
type PropagationModel int

const (
	ModelFreeSpace PropagationModel = iota
	ModelTwoRayGround
	ModelLogDistance
)

// ParsePropagationModel maps a config string onto a PropagationModel.
func ParsePropagationModel(s string) (PropagationModel, error) {
	switch s {
	case "FSPL", "free_space", "":
		return ModelFreeSpace, nil
	case "TWO_RAY", "two_ray":
		return ModelTwoRayGround, nil
	case "LOG_DISTANCE", "log_distance":
		return ModelLogDistance, nil
	default:
		return ModelFreeSpace, fmt.Errorf("unknown propagation model %q", s)
	}
}

// ConfusionPattern selects how a confused entity moves.
type ConfusionPattern int

const (
	ConfusionRandom ConfusionPattern = iota
	ConfusionCircle
	ConfusionHover
)

// ParseConfusionPattern maps a config string onto a ConfusionPattern.
func ParseConfusionPattern(s string) (ConfusionPattern, error) {
	switch s {
	case "random", "":
		return ConfusionRandom, nil
	case "circle":
		return ConfusionCircle, nil
	case "hover":
		return ConfusionHover, nil
	default:
		return ConfusionRandom, fmt.Errorf("unknown confusion pattern %q", s)
	}
}

// AntennaType describes one antenna family. Omni antennas carry no beam
// parameters; directional ones define a main-lobe width and peak gain.
type AntennaType struct {
	Directional  bool    `json:"directional"`
	BeamWidthDeg float64 `json:"beam_width_deg"`
	GainDBi      float64 `json:"gain_dbi"`
}

// JammerType declares per-type cooldown, power bounds and pulsing behavior.
type JammerType struct {
	CooldownSec float64 `json:"cooldown_sec"`
	MinPowerDBm float64 `json:"min_power_dbm"`
	MaxPowerDBm float64 `json:"max_power_dbm"`
	Pulsed      bool    `json:"pulsed"`
}

// WorldExtents are the simulated terrain bounds. Positions are clamped to
// x ∈ [-Width/2, Width/2] and y ∈ [-Height/2, Height/2].
type WorldExtents struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RadioConfig is the full read-only configuration surface consumed by the
// engine. It is passed explicitly into every component constructor; there is
// no process-wide ambient config.
type RadioConfig struct {
	FrequencyBandsMHz map[FrequencyKey]float64   `json:"frequency_bands_mhz"`
	AntennaTypes      map[AntennaKey]AntennaType `json:"antenna_types"`
	JammerTypes       map[JammerKey]JammerType   `json:"jammer_types"`

	Model             PropagationModel `json:"-"`
	World             WorldExtents     `json:"world"`
	JammedDurationSec float64          `json:"jammed_duration_sec"`
	Confusion         ConfusionPattern `json:"-"`
}

// DefaultRadioConfig returns the built-in tables used when no config file
// overrides them.
func DefaultRadioConfig() *RadioConfig {
	return &RadioConfig{
		FrequencyBandsMHz: map[FrequencyKey]float64{
			FreqVHF:     150,
			FreqUHF:     450,
			FreqGPSL1:   1575.42,
			FreqISM2400: 2400,
			FreqISM5800: 5800,
		},
		AntennaTypes: map[AntennaKey]AntennaType{
			AntennaOmni:   {},
			AntennaYagi:   {Directional: true, BeamWidthDeg: 45, GainDBi: 12},
			AntennaSector: {Directional: true, BeamWidthDeg: 90, GainDBi: 9},
			AntennaDish:   {Directional: true, BeamWidthDeg: 15, GainDBi: 24},
		},
		JammerTypes: map[JammerKey]JammerType{
			JammerSpot:    {CooldownSec: 5, MinPowerDBm: -10, MaxPowerDBm: 40},
			JammerBarrage: {CooldownSec: 12, MinPowerDBm: 0, MaxPowerDBm: 50},
			JammerPulse:   {CooldownSec: 8, MinPowerDBm: -10, MaxPowerDBm: 45, Pulsed: true},
		},
		Model:             ModelFreeSpace,
		World:             WorldExtents{Width: 10000, Height: 10000},
		JammedDurationSec: 10,
		Confusion:         ConfusionRandom,
	}
}

// FrequencyMHz resolves a frequency key, reporting whether it is known.
func (c *RadioConfig) FrequencyMHz(key FrequencyKey) (float64, bool) {
	mhz, ok := c.FrequencyBandsMHz[key]
	return mhz, ok
}

// Antenna resolves an antenna key, falling back to omni for unknown keys so
// a bad scenario value degrades rather than faults.
func (c *RadioConfig) Antenna(key AntennaKey) AntennaType {
	if at, ok := c.AntennaTypes[key]; ok {
		return at
	}
	return AntennaType{}
}

// JammerSpec resolves a jammer type key.
func (c *RadioConfig) JammerSpec(key JammerKey) (JammerType, bool) {
	jt, ok := c.JammerTypes[key]
	return jt, ok
}
