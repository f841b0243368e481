package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/tactical-retreat/pkg/config"
	"github.com/picogrid/tactical-retreat/pkg/logger"
	"github.com/picogrid/tactical-retreat/pkg/simulation"
	"github.com/picogrid/tactical-retreat/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/tactical-retreat/cmd/tactical-retreat/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long:  `Run a simulation interactively or with specified parameters`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().String("preset", "", "saved preset to start from")
	runCmd.Flags().String("scenario", "", "scenario file (default is the simulation's own)")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	presetName, _ := cmd.Flags().GetString("preset")
	preset, err := loadPreset(presetName)
	if err != nil {
		return err
	}

	simName, err := selectSimulation(cmd, simInfos, preset)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	info, ok := utils.FindSimulation(simInfos, simName)
	if !ok {
		return fmt.Errorf("simulation configuration not found for %s", simName)
	}

	given := make(map[string]interface{})
	if preset != nil {
		values, err := utils.NormalizeParams(preset.Params, info.Config.Parameters)
		if err != nil {
			return fmt.Errorf("invalid preset %s: %w", preset.Name, err)
		}
		for k, v := range values {
			given[k] = v
		}
	}
	if paramsFile, _ := cmd.Flags().GetString("params"); paramsFile != "" {
		values, err := utils.LoadParamsFile(paramsFile, info.Config.Parameters)
		if err != nil {
			return err
		}
		for k, v := range values {
			given[k] = v
		}
	}

	params, err := utils.PromptForParameters(info.Config.Parameters, given)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	scenario, _ := cmd.Flags().GetString("scenario")
	if scenario == "" {
		scenario = info.ScenarioPath()
	}
	params["config_path"] = scenario

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("Received interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
			cancel()
		}
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

func loadPreset(name string) (*config.Preset, error) {
	if name == "" {
		return nil, nil
	}

	presets, err := config.LoadPresets()
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	preset, ok := presets.Find(name)
	if !ok {
		return nil, fmt.Errorf("preset %s not found", name)
	}
	return preset, nil
}

func selectSimulation(cmd *cobra.Command, simInfos []utils.SimulationInfo, preset *config.Preset) (string, error) {
	simName, _ := cmd.Flags().GetString("simulation")
	if preset != nil {
		if simName != "" && simName != preset.Simulation {
			return "", fmt.Errorf("preset %s is for %s, not %s", preset.Name, preset.Simulation, simName)
		}
		return preset.Simulation, nil
	}
	if simName != "" {
		return simName, nil
	}

	if len(simInfos) == 0 {
		return "", fmt.Errorf("no simulations found")
	}
	if len(simInfos) == 1 || utils.SkipPrompts() {
		return simInfos[0].Config.Name, nil
	}

	options := make([]string, len(simInfos))
	descriptions := make(map[string]string)

	for i, info := range simInfos {
		options[i] = info.Config.Name
		descriptions[info.Config.Name] = info.Config.Description
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
