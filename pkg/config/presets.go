package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory holding CLI state
const DirName = ".retreat-sim"

// Preset is a named set of simulation parameters
type Preset struct {
	Name        string                 `yaml:"name"`
	Simulation  string                 `yaml:"simulation"`
	Description string                 `yaml:"description,omitempty"`
	Params      map[string]interface{} `yaml:"params,omitempty"`
}

// Presets holds the saved presets
type Presets struct {
	Presets []Preset `yaml:"presets"`
}

// Find returns the preset called name
func (p *Presets) Find(name string) (*Preset, bool) {
	for i := range p.Presets {
		if p.Presets[i].Name == name {
			return &p.Presets[i], true
		}
	}
	return nil, false
}

// Add appends preset, rejecting duplicate names
func (p *Presets) Add(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if _, exists := p.Find(preset.Name); exists {
		return fmt.Errorf("preset %s already exists", preset.Name)
	}
	p.Presets = append(p.Presets, preset)
	return nil
}

// Remove deletes the preset called name and reports whether it existed
func (p *Presets) Remove(name string) bool {
	kept := make([]Preset, 0, len(p.Presets))
	for _, preset := range p.Presets {
		if preset.Name != name {
			kept = append(kept, preset)
		}
	}
	removed := len(kept) != len(p.Presets)
	p.Presets = kept
	return removed
}

// PresetsPath returns the default presets file location
func PresetsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName, "presets.yaml"), nil
}

// LoadPresets loads presets from the default location
func LoadPresets() (*Presets, error) {
	path, err := PresetsPath()
	if err != nil {
		return nil, err
	}
	return LoadPresetsFromFile(path)
}

// LoadPresetsFromFile loads presets from a specific file. A missing file
// yields the built-in presets.
func LoadPresetsFromFile(path string) (*Presets, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultPresets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var presets Presets
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets file: %w", err)
	}

	return &presets, nil
}

// SavePresets saves presets to the default location
func SavePresets(presets *Presets) error {
	path, err := PresetsPath()
	if err != nil {
		return err
	}
	return SavePresetsToFile(presets, path)
}

// SavePresetsToFile saves presets to path, creating its directory
func SavePresetsToFile(presets *Presets, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(presets)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}

	return nil
}

func defaultPresets() *Presets {
	return &Presets{
		Presets: []Preset{
			{
				Name:        "rearguard",
				Simulation:  "tactical-retreat",
				Description: "Fleeing fleet burning away from a large pursuit",
				Params: map[string]interface{}{
					"fleeing_boost":  true,
					"pursuing_ships": 30,
				},
			},
			{
				Name:        "run-down",
				Simulation:  "tactical-retreat",
				Description: "Pursuers were burning when the engagement started",
				Params: map[string]interface{}{
					"pursuing_boost": true,
					"pursuing_ships": 20,
				},
			},
		},
	}
}
