package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/tactical-retreat/pkg/logger"
)

// EnvPrefix prefixes every environment variable read by this package
const EnvPrefix = "RETREAT_"

// LoadConfig loads configuration from a YAML file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*ScenarioConfig, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or returns default, with environment overrides
func LoadConfigOrDefault(path string) (*ScenarioConfig, error) {
	var config *ScenarioConfig
	var err error

	log := logger.WithPrefix("config")

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			log.Warnf("Could not load config from %s: %v", path, err)
			config = nil
		}
	}

	// Try default locations if no config loaded yet
	if config == nil {
		defaultPaths := []string{
			"tactical-retreat.yaml",
			filepath.Join("cmd", "tactical-retreat", "config.yaml"),
			filepath.Join(".", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				config, err = LoadConfig(p)
				if err == nil {
					log.Infof("Loaded config from: %s", p)
					break
				}
				log.Debugf("Skipping %s: %v", p, err)
			}
		}
	}

	if config == nil {
		log.Info("Using default configuration")
		config = GetDefaultConfig()
	}

	// Always apply environment variable overrides
	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *ScenarioConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies simulation parameters to the configuration.
// Values of the wrong type or out of range are ignored.
func MergeWithCLIOverrides(config *ScenarioConfig, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "step_seconds":
			if step, ok := asFloat(value); ok && step > 0 {
				config.Simulation.StepSeconds = step
			}
		case "tick_interval":
			if interval, ok := asDuration(value); ok && interval > 0 {
				config.Simulation.TickInterval = interval
			}
		case "max_duration":
			if duration, ok := asDuration(value); ok && duration > 0 {
				config.Simulation.MaxDuration = duration
			}
		case "linger_ticks":
			if ticks, ok := asInt(value); ok && ticks >= 0 {
				config.Simulation.LingerTicks = ticks
			}
		case "pursuit":
			if pursuit, ok := value.(bool); ok {
				config.Engagement.Pursuit = pursuit
			}
		case "simulated":
			if simulated, ok := value.(bool); ok {
				config.Engagement.Simulated = simulated
			}
		case "fleeing_boost":
			if boost, ok := value.(bool); ok {
				config.Engagement.FleeingBoost = boost
			}
		case "pursuing_boost":
			if boost, ok := value.(bool); ok {
				config.Engagement.PursuingBoost = boost
			}
		case "pause_at":
			if at, ok := asFloat(value); ok && at >= 0 {
				config.Engagement.PauseAt = at
			}
		case "pause_for":
			if ticks, ok := asInt(value); ok && ticks >= 0 {
				config.Engagement.PauseFor = ticks
			}
		case "deploy_per_tick":
			if count, ok := asInt(value); ok && count >= 0 {
				config.Engagement.DeployPerTick = count
			}
		case "activity_rule":
			if rule, ok := value.(string); ok {
				config.Engagement.ActivityRule = rule
			}
		case "fleeing_ships":
			if count, ok := asInt(value); ok && count > 0 {
				config.Fleets.Fleeing.Ships = nil
				config.Fleets.Fleeing.Generate.Count = count
			}
		case "pursuing_ships":
			if count, ok := asInt(value); ok && count >= 0 {
				config.Fleets.Pursuing.Ships = nil
				config.Fleets.Pursuing.Generate.Count = count
			}
		case "seed":
			if seed, ok := asInt(value); ok {
				config.Fleets.Seed = int64(seed)
			}
		case "log_level":
			if level, ok := value.(string); ok && isValidLevel(level) {
				config.Logging.ConsoleLevel = strings.ToLower(level)
			}
		case "status_board":
			if show, ok := value.(bool); ok {
				config.Logging.StatusBoard = show
			}
		case "metrics_path":
			if path, ok := value.(string); ok {
				config.Logging.MetricsPath = path
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*ScenarioConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	// Apply CLI overrides after environment variables
	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with RETREAT_ environment variables
func MergeWithEnvironment(config *ScenarioConfig) {
	if step := os.Getenv(EnvPrefix + "STEP_SECONDS"); step != "" {
		if seconds, err := strconv.ParseFloat(step, 64); err == nil && seconds > 0 {
			config.Simulation.StepSeconds = seconds
		}
	}

	if interval := os.Getenv(EnvPrefix + "TICK_INTERVAL"); interval != "" {
		if duration, err := time.ParseDuration(interval); err == nil && duration > 0 {
			config.Simulation.TickInterval = duration
		}
	}

	if maxDuration := os.Getenv(EnvPrefix + "MAX_DURATION"); maxDuration != "" {
		if duration, err := time.ParseDuration(maxDuration); err == nil && duration > 0 {
			config.Simulation.MaxDuration = duration
		}
	}

	// Fleet sizes
	if fleeing := os.Getenv(EnvPrefix + "FLEEING_SHIPS"); fleeing != "" {
		if count, err := strconv.Atoi(fleeing); err == nil && count > 0 {
			config.Fleets.Fleeing.Ships = nil
			config.Fleets.Fleeing.Generate.Count = count
		}
	}

	if pursuing := os.Getenv(EnvPrefix + "PURSUING_SHIPS"); pursuing != "" {
		if count, err := strconv.Atoi(pursuing); err == nil && count >= 0 {
			config.Fleets.Pursuing.Ships = nil
			config.Fleets.Pursuing.Generate.Count = count
		}
	}

	if seed := os.Getenv(EnvPrefix + "SEED"); seed != "" {
		if value, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.Fleets.Seed = value
		}
	}

	if deploy := os.Getenv(EnvPrefix + "DEPLOY_PER_TICK"); deploy != "" {
		if count, err := strconv.Atoi(deploy); err == nil && count >= 0 {
			config.Engagement.DeployPerTick = count
		}
	}

	if rule := os.Getenv(EnvPrefix + "ACTIVITY_RULE"); rule != "" {
		config.Engagement.ActivityRule = rule
	}

	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		if isValidLevel(logLevel) {
			config.Logging.ConsoleLevel = strings.ToLower(logLevel)
		}
	}

	if metricsPath := os.Getenv(EnvPrefix + "METRICS_PATH"); metricsPath != "" {
		config.Logging.MetricsPath = metricsPath
	}
}

// Parameter values come from prompts (typed), env vars (typed by the
// prompt layer) or YAML params files (ints where floats are meant).

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func asDuration(value interface{}) (time.Duration, bool) {
	switch v := value.(type) {
	case time.Duration:
		return v, true
	case string:
		d, err := time.ParseDuration(v)
		return d, err == nil
	default:
		return 0, false
	}
}
