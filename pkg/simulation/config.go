package simulation

import (
	"fmt"
	"time"
)

// SimulationConfig is a simulation manifest loaded from simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Scenario    string      `yaml:"scenario,omitempty"` // default scenario file, relative to the manifest
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// Parameter returns the parameter called name
func (c *SimulationConfig) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Normalize converts value to the parameter's type and checks its range.
// YAML and JSON decoders produce ints for whole floats and strings for
// durations, both are accepted.
func (p Parameter) Normalize(value interface{}) (interface{}, error) {
	switch p.Type {
	case "integer":
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("%s must be a whole number, got %v", p.Name, v)
			}
			n = int(v)
		default:
			return nil, fmt.Errorf("%s must be an integer, got %T", p.Name, value)
		}
		if p.Min != nil && n < toInt(p.Min) {
			return nil, fmt.Errorf("%s must be at least %d", p.Name, toInt(p.Min))
		}
		if p.Max != nil && n > toInt(p.Max) {
			return nil, fmt.Errorf("%s must be at most %d", p.Name, toInt(p.Max))
		}
		return n, nil

	case "float":
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		default:
			return nil, fmt.Errorf("%s must be a number, got %T", p.Name, value)
		}
		if p.Min != nil && f < toFloat64(p.Min) {
			return nil, fmt.Errorf("%s must be at least %g", p.Name, toFloat64(p.Min))
		}
		if p.Max != nil && f > toFloat64(p.Max) {
			return nil, fmt.Errorf("%s must be at most %g", p.Name, toFloat64(p.Max))
		}
		return f, nil

	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string, got %T", p.Name, value)
		}
		if len(p.Options) > 0 {
			for _, option := range p.Options {
				if s == option {
					return s, nil
				}
			}
			return nil, fmt.Errorf("%s must be one of %v", p.Name, p.Options)
		}
		return s, nil

	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s must be a boolean, got %T", p.Name, value)
		}
		return b, nil

	case "duration":
		switch v := value.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid duration: %w", p.Name, err)
			}
			return d, nil
		default:
			return nil, fmt.Errorf("%s must be a duration, got %T", p.Name, value)
		}

	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", p.Type)
	}
}

// Defaults returns the default value of every parameter that has one
func (c *SimulationConfig) Defaults() (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, p := range c.Parameters {
		if p.Default == nil {
			continue
		}
		value, err := p.Normalize(p.Default)
		if err != nil {
			return nil, fmt.Errorf("bad default: %w", err)
		}
		out[p.Name] = value
	}
	return out, nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
