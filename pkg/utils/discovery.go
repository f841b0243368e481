package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/tactical-retreat/pkg/logger"
	"github.com/picogrid/tactical-retreat/pkg/simulation"
)

// SimulationInfo contains information about a discovered simulation
type SimulationInfo struct {
	Path   string
	Config simulation.SimulationConfig
}

// ScenarioPath returns the manifest's default scenario file, or "" when it
// names none.
func (i SimulationInfo) ScenarioPath() string {
	if i.Config.Scenario == "" {
		return ""
	}
	if filepath.IsAbs(i.Config.Scenario) {
		return i.Config.Scenario
	}
	return filepath.Join(i.Path, i.Config.Scenario)
}

// DiscoverSimulations finds all simulations in the project's cmd directory
func DiscoverSimulations() ([]SimulationInfo, error) {
	rootDir, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	return DiscoverSimulationsIn(filepath.Join(rootDir, "cmd"))
}

// DiscoverSimulationsIn finds every simulation.yaml below dir
func DiscoverSimulationsIn(dir string) ([]SimulationInfo, error) {
	var simulations []SimulationInfo

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Name() == "simulation.yaml" {
			simInfo, err := loadSimulationConfig(path)
			if err != nil {
				// Log error but continue scanning
				logger.Warnf("Failed to load %s: %v", path, err)
				return nil
			}
			simulations = append(simulations, *simInfo)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan for simulations: %w", err)
	}

	return simulations, nil
}

// FindSimulation returns the discovered simulation called name
func FindSimulation(simulations []SimulationInfo, name string) (SimulationInfo, bool) {
	for _, sim := range simulations {
		if sim.Config.Name == name {
			return sim, true
		}
	}
	return SimulationInfo{}, false
}

// loadSimulationConfig loads a simulation manifest from a file
func loadSimulationConfig(path string) (*SimulationInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	var config simulation.SimulationConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("simulation config %s has no name", path)
	}
	if _, err := config.Defaults(); err != nil {
		return nil, fmt.Errorf("simulation config %s: %w", path, err)
	}

	return &SimulationInfo{
		Path:   filepath.Dir(path),
		Config: config,
	}, nil
}

// findProjectRoot finds the project root by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up until we find go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
