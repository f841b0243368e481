package core

import (
	"fmt"
	"math"
)

// Default tuning values
const (
	DefaultEnabled                = true
	DefaultPerPointSeconds        = 30.0
	DefaultMaxDelaySeconds        = 180.0
	DefaultReferenceSpeedModifier = 1
	DefaultBoostModifierEnabled   = true
)

// Settings are the tuning knobs of the retreat feature. They are read once
// when an engagement starts.
type Settings struct {
	// Enabled is the feature toggle. When false nothing is ever withheld.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// PerPointSeconds is the delay per burn level of speed difference
	PerPointSeconds float64 `yaml:"delay_per_burn" mapstructure:"delay_per_burn"`

	// MaxDelaySeconds caps any single unit's delay
	MaxDelaySeconds float64 `yaml:"max_delay" mapstructure:"max_delay"`

	// ReferenceSpeedModifier is added to the reference burn when the fleeing
	// side was boosting, and subtracted when the pursuers were.
	ReferenceSpeedModifier int `yaml:"boost_modifier" mapstructure:"boost_modifier"`

	BoostModifierEnabled bool `yaml:"boost_modifier_enabled" mapstructure:"boost_modifier_enabled"`

	WaveToleranceSeconds float64 `yaml:"wave_tolerance" mapstructure:"wave_tolerance"`
}

// DefaultSettings returns the documented defaults
func DefaultSettings() Settings {
	return Settings{
		Enabled:                DefaultEnabled,
		PerPointSeconds:        DefaultPerPointSeconds,
		MaxDelaySeconds:        DefaultMaxDelaySeconds,
		ReferenceSpeedModifier: DefaultReferenceSpeedModifier,
		BoostModifierEnabled:   DefaultBoostModifierEnabled,
		WaveToleranceSeconds:   DefaultWaveTolerance,
	}
}

// Sanitize replaces out of range values with their defaults and describes
// each replacement.
func (s Settings) Sanitize() (Settings, []string) {
	var fixes []string

	if !(s.PerPointSeconds > 0) || math.IsInf(s.PerPointSeconds, 0) {
		fixes = append(fixes, fmt.Sprintf("delay_per_burn %v must be > 0, using %v", s.PerPointSeconds, DefaultPerPointSeconds))
		s.PerPointSeconds = DefaultPerPointSeconds
	}
	if !(s.MaxDelaySeconds >= 0) || math.IsInf(s.MaxDelaySeconds, 0) {
		fixes = append(fixes, fmt.Sprintf("max_delay %v must be >= 0, using %v", s.MaxDelaySeconds, DefaultMaxDelaySeconds))
		s.MaxDelaySeconds = DefaultMaxDelaySeconds
	}
	if !(s.WaveToleranceSeconds >= 0) || math.IsInf(s.WaveToleranceSeconds, 0) {
		fixes = append(fixes, fmt.Sprintf("wave_tolerance %v must be >= 0, using %v", s.WaveToleranceSeconds, DefaultWaveTolerance))
		s.WaveToleranceSeconds = DefaultWaveTolerance
	}

	return s, fixes
}

// SettingsSource provides current settings. An error means the source is
// unavailable and defaults apply.
type SettingsSource interface {
	Settings() (Settings, error)
}

// StaticSettings is a SettingsSource that always returns itself
type StaticSettings Settings

// Settings implements SettingsSource
func (s StaticSettings) Settings() (Settings, error) {
	return Settings(s), nil
}
