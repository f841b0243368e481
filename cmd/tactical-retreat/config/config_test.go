package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
)

func TestLoadConfig(t *testing.T) {
	// Test loading the example config.yaml file
	config, err := LoadConfig("../config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Simulation.Name != "tactical-retreat" {
		t.Errorf("Expected simulation name 'tactical-retreat', got '%s'", config.Simulation.Name)
	}

	if config.Simulation.StepSeconds != 10 {
		t.Errorf("Expected step seconds 10, got %v", config.Simulation.StepSeconds)
	}

	if config.Simulation.TickInterval != 250*time.Millisecond {
		t.Errorf("Expected tick interval 250ms, got %v", config.Simulation.TickInterval)
	}

	if config.Simulation.MaxDuration != 5*time.Minute {
		t.Errorf("Expected max duration 5m, got %v", config.Simulation.MaxDuration)
	}

	if !config.Engagement.FleeingBoost || config.Engagement.PursuingBoost {
		t.Errorf("Expected only the fleeing side boosting, got %+v", config.Engagement)
	}

	if config.Engagement.PauseAt != 60 || config.Engagement.PauseFor != 3 {
		t.Errorf("Expected pause at 60s for 3 ticks, got %v/%d", config.Engagement.PauseAt, config.Engagement.PauseFor)
	}

	if config.Retreat != core.DefaultSettings() {
		t.Errorf("Expected default retreat settings, got %+v", config.Retreat)
	}

	if config.Fleets.Seed != 1337 {
		t.Errorf("Expected seed 1337, got %d", config.Fleets.Seed)
	}

	ships := config.Fleets.Fleeing.Ships
	if len(ships) != 4 {
		t.Fatalf("Expected 4 fleeing ships, got %d", len(ships))
	}
	if ships[0].ID != "hms-resolve" || ships[0].Hull != core.HullCruiser || ships[0].MaxBurn != 9 {
		t.Errorf("Unexpected first ship %+v", ships[0])
	}
	if ships[2].MaxBurn != 0 || ships[2].Hull != core.HullDestroyer {
		t.Errorf("Expected Ardent to have unknown burn, got %+v", ships[2])
	}
	if !ships[3].Mothballed {
		t.Errorf("Expected Bastion to be mothballed")
	}

	if config.Fleets.Pursuing.Size() != 10 {
		t.Errorf("Expected 10 pursuing ships, got %d", config.Fleets.Pursuing.Size())
	}
}

func TestLoadConfigKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "simulation:\n  name: partial\nretreat:\n  max_delay: 60\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Simulation.Name != "partial" {
		t.Errorf("Expected name 'partial', got '%s'", config.Simulation.Name)
	}
	if config.Retreat.MaxDelaySeconds != 60 {
		t.Errorf("Expected max delay 60, got %v", config.Retreat.MaxDelaySeconds)
	}
	if config.Retreat.PerPointSeconds != core.DefaultPerPointSeconds {
		t.Errorf("Expected default delay per burn, got %v", config.Retreat.PerPointSeconds)
	}
	if config.Simulation.StepSeconds != GetDefaultConfig().Simulation.StepSeconds {
		t.Errorf("Expected default step seconds, got %v", config.Simulation.StepSeconds)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default config validation failed: %v", err)
	}

	if config.Simulation.Name != "tactical-retreat" {
		t.Errorf("Expected default simulation name 'tactical-retreat', got '%s'", config.Simulation.Name)
	}

	if config.Fleets.Fleeing.Size() <= 0 {
		t.Errorf("Default config must have a fleeing fleet")
	}

	if !strings.Contains(config.String(), "Max Delay: 180s") {
		t.Errorf("Expected max delay in summary, got:\n%s", config.String())
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ScenarioConfig)
		hasErr bool
	}{
		{
			name:   "empty name",
			mutate: func(c *ScenarioConfig) { c.Simulation.Name = "" },
			hasErr: true,
		},
		{
			name:   "zero step",
			mutate: func(c *ScenarioConfig) { c.Simulation.StepSeconds = 0 },
			hasErr: true,
		},
		{
			name:   "negative tick interval",
			mutate: func(c *ScenarioConfig) { c.Simulation.TickInterval = -1 * time.Second },
			hasErr: true,
		},
		{
			name:   "bad activity rule",
			mutate: func(c *ScenarioConfig) { c.Engagement.ActivityRule = "MaxBurn +" },
			hasErr: true,
		},
		{
			name: "no fleeing ships",
			mutate: func(c *ScenarioConfig) {
				c.Fleets.Fleeing.Ships = nil
				c.Fleets.Fleeing.Generate.Count = 0
			},
			hasErr: true,
		},
		{
			name:   "burn out of range",
			mutate: func(c *ScenarioConfig) { c.Fleets.Pursuing.Generate.MaxBurn = 25 },
			hasErr: true,
		},
		{
			name: "inverted burn range",
			mutate: func(c *ScenarioConfig) {
				c.Fleets.Pursuing.Generate.MinBurn = 9
				c.Fleets.Pursuing.Generate.MaxBurn = 5
			},
			hasErr: true,
		},
		{
			name:   "invalid mothballed rate",
			mutate: func(c *ScenarioConfig) { c.Fleets.Fleeing.Generate.MothballedRate = 1.5 },
			hasErr: true,
		},
		{
			name: "duplicate ship ids",
			mutate: func(c *ScenarioConfig) {
				c.Fleets.Fleeing.Ships = []core.Unit{{ID: "a"}, {ID: "a"}}
			},
			hasErr: true,
		},
		{
			name:   "invalid log level",
			mutate: func(c *ScenarioConfig) { c.Logging.ConsoleLevel = "loud" },
			hasErr: true,
		},
		{
			name:   "empty pursuing fleet",
			mutate: func(c *ScenarioConfig) { c.Fleets.Pursuing.Generate.Count = 0 },
			hasErr: false,
		},
		{
			name:   "valid config",
			mutate: func(c *ScenarioConfig) {},
			hasErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.hasErr && err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
			if !tt.hasErr && err != nil {
				t.Errorf("Unexpected validation error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	config := GetDefaultConfig()

	t.Setenv("RETREAT_STEP_SECONDS", "2.5")
	t.Setenv("RETREAT_TICK_INTERVAL", "1s")
	t.Setenv("RETREAT_FLEEING_SHIPS", "3")
	t.Setenv("RETREAT_PURSUING_SHIPS", "not-a-number")
	t.Setenv("RETREAT_SEED", "42")
	t.Setenv("RETREAT_LOG_LEVEL", "DEBUG")

	MergeWithEnvironment(config)

	if config.Simulation.StepSeconds != 2.5 {
		t.Errorf("Expected step seconds 2.5, got %v", config.Simulation.StepSeconds)
	}
	if config.Simulation.TickInterval != time.Second {
		t.Errorf("Expected tick interval 1s, got %v", config.Simulation.TickInterval)
	}
	if config.Fleets.Fleeing.Generate.Count != 3 {
		t.Errorf("Expected 3 fleeing ships, got %d", config.Fleets.Fleeing.Generate.Count)
	}
	if config.Fleets.Pursuing.Generate.Count != GetDefaultConfig().Fleets.Pursuing.Generate.Count {
		t.Errorf("Invalid env value must be ignored, got %d", config.Fleets.Pursuing.Generate.Count)
	}
	if config.Fleets.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", config.Fleets.Seed)
	}
	if config.Logging.ConsoleLevel != "debug" {
		t.Errorf("Expected console level 'debug', got '%s'", config.Logging.ConsoleLevel)
	}
}

func TestCLIOverrides(t *testing.T) {
	config := GetDefaultConfig()
	config.Fleets.Fleeing.Ships = []core.Unit{{ID: "a", MaxBurn: 9}}

	MergeWithCLIOverrides(config, map[string]interface{}{
		"step_seconds":   3, // int from a params file
		"max_duration":   "2m",
		"fleeing_ships":  4,
		"fleeing_boost":  true,
		"pause_at":       30.0,
		"pause_for":      2.0,
		"log_level":      "shout",
		"pursuing_ships": -1,
		"unknown_key":    "ignored",
	})

	if config.Simulation.StepSeconds != 3 {
		t.Errorf("Expected step seconds 3, got %v", config.Simulation.StepSeconds)
	}
	if config.Simulation.MaxDuration != 2*time.Minute {
		t.Errorf("Expected max duration 2m, got %v", config.Simulation.MaxDuration)
	}
	if config.Fleets.Fleeing.Ships != nil || config.Fleets.Fleeing.Generate.Count != 4 {
		t.Errorf("Expected generated fleeing fleet of 4, got %+v", config.Fleets.Fleeing)
	}
	if !config.Engagement.FleeingBoost {
		t.Errorf("Expected fleeing boost")
	}
	if config.Engagement.PauseAt != 30 || config.Engagement.PauseFor != 2 {
		t.Errorf("Expected pause window 30s/2, got %v/%d", config.Engagement.PauseAt, config.Engagement.PauseFor)
	}
	if config.Logging.ConsoleLevel != "info" {
		t.Errorf("Invalid log level must be ignored, got %s", config.Logging.ConsoleLevel)
	}
	if config.Fleets.Pursuing.Generate.Count != 12 {
		t.Errorf("Negative ship count must be ignored, got %d", config.Fleets.Pursuing.Generate.Count)
	}
}

func TestLoadConfigWithOverrides(t *testing.T) {
	t.Setenv("RETREAT_DEPLOY_PER_TICK", "5")

	config, err := LoadConfigWithOverrides("../config.yaml", map[string]interface{}{
		"deploy_per_tick": 0,
	})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// CLI beats env beats file
	if config.Engagement.DeployPerTick != 0 {
		t.Errorf("Expected deploy per tick 0, got %d", config.Engagement.DeployPerTick)
	}

	_, err = LoadConfigWithOverrides("../config.yaml", map[string]interface{}{
		"activity_rule": "Hull +",
	})
	if err == nil {
		t.Errorf("Expected validation error after overrides")
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scenario.yaml")
	config := GetDefaultConfig()
	config.Fleets.Fleeing.Ships = []core.Unit{{ID: "a", Name: "Alpha", Hull: core.HullFrigate, MaxBurn: 10}}
	config.Simulation.TickInterval = 750 * time.Millisecond

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Simulation.TickInterval != 750*time.Millisecond {
		t.Errorf("Expected tick interval 750ms, got %v", loaded.Simulation.TickInterval)
	}
	if len(loaded.Fleets.Fleeing.Ships) != 1 || loaded.Fleets.Fleeing.Ships[0].Hull != core.HullFrigate {
		t.Errorf("Unexpected fleeing ships %+v", loaded.Fleets.Fleeing.Ships)
	}

	config.Simulation.Name = ""
	if err := SaveConfig(config, path); err == nil {
		t.Errorf("Expected invalid config to be rejected")
	}
}

func TestViperSettings(t *testing.T) {
	v := viper.New()
	v.Set(KeyMaxDelay, 60)
	v.Set(KeyEnabled, "false")

	settings, err := NewViperSettings(v, core.DefaultSettings()).Settings()
	if err != nil {
		t.Fatalf("Failed to read settings: %v", err)
	}

	if settings.MaxDelaySeconds != 60 {
		t.Errorf("Expected max delay 60, got %v", settings.MaxDelaySeconds)
	}
	if settings.Enabled {
		t.Errorf("Expected feature disabled")
	}
	if settings.PerPointSeconds != core.DefaultPerPointSeconds {
		t.Errorf("Unset keys must keep the base value, got %v", settings.PerPointSeconds)
	}
}

func TestViperSettingsFromFileAndEnv(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader("retreat:\n  delay_per_burn: 15\n  boost_modifier: 2\n")); err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	t.Setenv("RETREAT_BOOST_MODIFIER", "3")
	if err := BindSettingsEnv(v); err != nil {
		t.Fatalf("Failed to bind env: %v", err)
	}

	settings, err := NewViperSettings(v, core.DefaultSettings()).Settings()
	if err != nil {
		t.Fatalf("Failed to read settings: %v", err)
	}

	if settings.PerPointSeconds != 15 {
		t.Errorf("Expected delay per burn 15, got %v", settings.PerPointSeconds)
	}
	if settings.ReferenceSpeedModifier != 3 {
		t.Errorf("Expected env to win with modifier 3, got %d", settings.ReferenceSpeedModifier)
	}
}

func TestViperSettingsUnavailable(t *testing.T) {
	_, err := NewViperSettings(nil, core.DefaultSettings()).Settings()
	if !errors.Is(err, core.ErrConfigurationUnavailable) {
		t.Errorf("Expected ErrConfigurationUnavailable, got %v", err)
	}

	var missing *ViperSettings
	if _, err := missing.Settings(); !errors.Is(err, core.ErrConfigurationUnavailable) {
		t.Errorf("Expected ErrConfigurationUnavailable for nil source, got %v", err)
	}
}

func TestViperSettingsInvalidValue(t *testing.T) {
	v := viper.New()
	v.Set(KeyDelayPerBurn, "soon")

	if _, err := NewViperSettings(v, core.DefaultSettings()).Settings(); err == nil {
		t.Errorf("Expected error for invalid value")
	}
}
