package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
)

var validLevels = []string{"debug", "info", "warn", "error"}

func isValidLevel(level string) bool {
	for _, valid := range validLevels {
		if strings.ToLower(level) == valid {
			return true
		}
	}
	return false
}

// ScenarioConfig holds the complete scenario configuration
type ScenarioConfig struct {
	// Basic simulation settings
	Simulation SimulationSettings `yaml:"simulation"`

	// How the engagement starts and unfolds
	Engagement EngagementConfig `yaml:"engagement"`

	// Retreat tuning. Values from the CLI config file or RETREAT_ env vars
	// take precedence over these.
	Retreat core.Settings `yaml:"retreat"`

	Fleets FleetsConfig `yaml:"fleets"`

	Logging LoggingConfig `yaml:"logging"`
}

// SimulationSettings holds basic simulation settings
type SimulationSettings struct {
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	StepSeconds  float64       `yaml:"step_seconds"`  // simulated seconds per tick
	TickInterval time.Duration `yaml:"tick_interval"` // wall clock time per tick
	MaxDuration  time.Duration `yaml:"max_duration"`  // simulated time limit
	LingerTicks  int           `yaml:"linger_ticks"`  // ticks to keep running once drained
}

// EngagementConfig describes the engagement being simulated
type EngagementConfig struct {
	Pursuit       bool    `yaml:"pursuit"`
	Simulated     bool    `yaml:"simulated"`
	FleeingBoost  bool    `yaml:"fleeing_boost"`
	PursuingBoost bool    `yaml:"pursuing_boost"`
	PauseAt       float64 `yaml:"pause_at"`  // simulated seconds, 0 disables
	PauseFor      int     `yaml:"pause_for"` // ticks
	DeployPerTick int     `yaml:"deploy_per_tick"`
	ActivityRule  string  `yaml:"activity_rule"`
}

// FleetsConfig defines both sides of the engagement
type FleetsConfig struct {
	Seed     int64       `yaml:"seed"` // 0 picks a time based seed
	Fleeing  FleetConfig `yaml:"fleeing"`
	Pursuing FleetConfig `yaml:"pursuing"`
}

// FleetConfig lists ships explicitly or describes how to generate them.
// Explicit ships win when both are given.
type FleetConfig struct {
	Ships    []core.Unit    `yaml:"ships,omitempty"`
	Generate GenerateConfig `yaml:"generate"`
}

// GenerateConfig describes a randomly generated fleet
type GenerateConfig struct {
	Count           int     `yaml:"count"`
	MinBurn         int     `yaml:"min_burn"`
	MaxBurn         int     `yaml:"max_burn"`
	UnknownBurnRate float64 `yaml:"unknown_burn_rate"` // 0.0 to 1.0
	MothballedRate  float64 `yaml:"mothballed_rate"`   // 0.0 to 1.0
}

// LoggingConfig defines logging and reporting settings
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"` // "debug", "info", "warn", "error"
	ShowTime     bool   `yaml:"show_time"`
	StatusBoard  bool   `yaml:"status_board"`
	MetricsPath  string `yaml:"metrics_path"` // Prometheus text dump, empty disables
}

// Size returns the number of ships the fleet will have
func (f FleetConfig) Size() int {
	if len(f.Ships) > 0 {
		return len(f.Ships)
	}
	return f.Generate.Count
}

// Validate checks if the configuration is valid
func (c *ScenarioConfig) Validate() error {
	if c.Simulation.Name == "" {
		return fmt.Errorf("simulation name is required")
	}

	if c.Simulation.StepSeconds <= 0 {
		return fmt.Errorf("step seconds must be positive")
	}

	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}

	if c.Simulation.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive")
	}

	if c.Simulation.LingerTicks < 0 {
		return fmt.Errorf("linger ticks must not be negative")
	}

	if c.Engagement.PauseAt < 0 || c.Engagement.PauseFor < 0 {
		return fmt.Errorf("pause window must not be negative")
	}

	if c.Engagement.DeployPerTick < 0 {
		return fmt.Errorf("deploy per tick must not be negative")
	}

	if _, err := core.CompileActivityRule(c.Engagement.ActivityRule); err != nil {
		return err
	}

	if err := c.Fleets.Fleeing.validate("fleeing"); err != nil {
		return err
	}
	if c.Fleets.Fleeing.Size() == 0 {
		return fmt.Errorf("fleeing fleet must have at least one ship")
	}

	if err := c.Fleets.Pursuing.validate("pursuing"); err != nil {
		return err
	}

	if !isValidLevel(c.Logging.ConsoleLevel) {
		return fmt.Errorf("console level must be one of: %s", strings.Join(validLevels, ", "))
	}

	return nil
}

func (f FleetConfig) validate(side string) error {
	if len(f.Ships) > 0 {
		seen := make(map[string]bool, len(f.Ships))
		for i, ship := range f.Ships {
			if ship.ID == "" {
				return fmt.Errorf("%s ship %d has no id", side, i)
			}
			if seen[ship.ID] {
				return fmt.Errorf("%s ship id %s is not unique", side, ship.ID)
			}
			seen[ship.ID] = true
		}
		return nil
	}

	g := f.Generate
	if g.Count < 0 {
		return fmt.Errorf("%s ship count must not be negative", side)
	}
	if g.Count == 0 {
		return nil
	}

	if g.MinBurn < core.MinValidBurn || g.MaxBurn > core.MaxValidBurn {
		return fmt.Errorf("%s burn range must be within %d-%d", side, core.MinValidBurn, core.MaxValidBurn)
	}
	if g.MinBurn > g.MaxBurn {
		return fmt.Errorf("%s min burn must not exceed max burn", side)
	}

	if g.UnknownBurnRate < 0 || g.UnknownBurnRate > 1 {
		return fmt.Errorf("%s unknown burn rate must be between 0.0 and 1.0", side)
	}
	if g.MothballedRate < 0 || g.MothballedRate > 1 {
		return fmt.Errorf("%s mothballed rate must be between 0.0 and 1.0", side)
	}

	return nil
}

// String returns a human-readable representation of the configuration
func (c *ScenarioConfig) String() string {
	rule := strings.TrimSpace(c.Engagement.ActivityRule)
	if rule == "" {
		rule = core.DefaultActivityRule
	}

	return fmt.Sprintf(`Scenario Configuration:
  Name: %s
  Step: %.1fs every %v
  Max Duration: %v

Engagement:
  Pursuit: %t
  Simulated: %t
  Boost (fleeing/pursuing): %t/%t
  Deploy Per Tick: %d
  Activity Rule: %s

Fleets:
  Fleeing Ships: %d
  Pursuing Ships: %d
  Seed: %d

Retreat:
  Enabled: %t
  Delay Per Burn: %.0fs
  Max Delay: %.0fs
  Boost Modifier: %d (enabled: %t)`,
		c.Simulation.Name,
		c.Simulation.StepSeconds,
		c.Simulation.TickInterval,
		c.Simulation.MaxDuration,
		c.Engagement.Pursuit,
		c.Engagement.Simulated,
		c.Engagement.FleeingBoost,
		c.Engagement.PursuingBoost,
		c.Engagement.DeployPerTick,
		rule,
		c.Fleets.Fleeing.Size(),
		c.Fleets.Pursuing.Size(),
		c.Fleets.Seed,
		c.Retreat.Enabled,
		c.Retreat.PerPointSeconds,
		c.Retreat.MaxDelaySeconds,
		c.Retreat.ReferenceSpeedModifier,
		c.Retreat.BoostModifierEnabled,
	)
}

// GetDefaultConfig returns the default pursuit scenario
func GetDefaultConfig() *ScenarioConfig {
	return &ScenarioConfig{
		Simulation: SimulationSettings{
			Name:         "tactical-retreat",
			Description:  "Delayed enemy reinforcements while the friendly fleet retreats",
			StepSeconds:  5,
			TickInterval: 500 * time.Millisecond,
			MaxDuration:  10 * time.Minute,
			LingerTicks:  3,
		},

		Engagement: EngagementConfig{
			Pursuit:       true,
			Simulated:     false,
			FleeingBoost:  false,
			PursuingBoost: false,
			PauseAt:       0,
			PauseFor:      0,
			DeployPerTick: 2,
			ActivityRule:  core.DefaultActivityRule,
		},

		Retreat: core.DefaultSettings(),

		Fleets: FleetsConfig{
			Seed: 0,
			Fleeing: FleetConfig{
				Generate: GenerateConfig{
					Count:           6,
					MinBurn:         7,
					MaxBurn:         10,
					UnknownBurnRate: 0.1,
					MothballedRate:  0.1,
				},
			},
			Pursuing: FleetConfig{
				Generate: GenerateConfig{
					Count:           12,
					MinBurn:         4,
					MaxBurn:         11,
					UnknownBurnRate: 0.15,
					MothballedRate:  0,
				},
			},
		},

		Logging: LoggingConfig{
			ConsoleLevel: "info",
			ShowTime:     false,
			StatusBoard:  true,
			MetricsPath:  "",
		},
	}
}
