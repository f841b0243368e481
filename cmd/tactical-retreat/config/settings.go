package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
)

// Viper keys of the retreat settings
const (
	KeyEnabled              = "retreat.enabled"
	KeyDelayPerBurn         = "retreat.delay_per_burn"
	KeyMaxDelay             = "retreat.max_delay"
	KeyBoostModifierEnabled = "retreat.boost_modifier_enabled"
	KeyBoostModifier        = "retreat.boost_modifier"
	KeyWaveTolerance        = "retreat.wave_tolerance"
)

// settingsEnv maps each key to its environment variable
var settingsEnv = map[string]string{
	KeyEnabled:              EnvPrefix + "ENABLED",
	KeyDelayPerBurn:         EnvPrefix + "DELAY_PER_BURN",
	KeyMaxDelay:             EnvPrefix + "MAX_DELAY",
	KeyBoostModifierEnabled: EnvPrefix + "BOOST_MODIFIER_ENABLED",
	KeyBoostModifier:        EnvPrefix + "BOOST_MODIFIER",
	KeyWaveTolerance:        EnvPrefix + "WAVE_TOLERANCE",
}

// BindSettingsEnv binds the retreat keys to their RETREAT_ variables
func BindSettingsEnv(v *viper.Viper) error {
	for key, env := range settingsEnv {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// ViperSettings reads retreat settings from a viper instance. Keys viper
// does not know keep the values of Base.
type ViperSettings struct {
	v    *viper.Viper
	Base core.Settings
}

// NewViperSettings creates a settings source on top of base
func NewViperSettings(v *viper.Viper, base core.Settings) *ViperSettings {
	return &ViperSettings{v: v, Base: base}
}

// Settings implements core.SettingsSource
func (s *ViperSettings) Settings() (core.Settings, error) {
	if s == nil || s.v == nil {
		return core.Settings{}, fmt.Errorf("no viper instance: %w", core.ErrConfigurationUnavailable)
	}

	out := s.Base
	var errs *multierror.Error

	readBool := func(key string, dst *bool) {
		if !s.v.IsSet(key) {
			return
		}
		value, err := cast.ToBoolE(s.v.Get(key))
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = value
	}
	readFloat := func(key string, dst *float64) {
		if !s.v.IsSet(key) {
			return
		}
		value, err := cast.ToFloat64E(s.v.Get(key))
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = value
	}
	readInt := func(key string, dst *int) {
		if !s.v.IsSet(key) {
			return
		}
		value, err := cast.ToIntE(s.v.Get(key))
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = value
	}

	readBool(KeyEnabled, &out.Enabled)
	readFloat(KeyDelayPerBurn, &out.PerPointSeconds)
	readFloat(KeyMaxDelay, &out.MaxDelaySeconds)
	readBool(KeyBoostModifierEnabled, &out.BoostModifierEnabled)
	readInt(KeyBoostModifier, &out.ReferenceSpeedModifier)
	readFloat(KeyWaveTolerance, &out.WaveToleranceSeconds)

	if err := errs.ErrorOrNil(); err != nil {
		return core.Settings{}, fmt.Errorf("failed to read retreat settings: %w", err)
	}
	return out, nil
}

// SettingsFile is the layout of the retreat block in the CLI config file
type SettingsFile struct {
	Retreat core.Settings `yaml:"retreat"`
}

// SettingsKeys returns the viper keys of the retreat settings in display order
func SettingsKeys() []string {
	return []string{
		KeyEnabled,
		KeyDelayPerBurn,
		KeyMaxDelay,
		KeyBoostModifierEnabled,
		KeyBoostModifier,
		KeyWaveTolerance,
	}
}

// SettingsEnvVar returns the environment variable bound to key
func SettingsEnvVar(key string) string {
	return settingsEnv[key]
}
