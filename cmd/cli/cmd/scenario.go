package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	retreatconfig "github.com/picogrid/tactical-retreat/cmd/tactical-retreat/config"
	"github.com/picogrid/tactical-retreat/pkg/logger"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Work with scenario files",
}

var scenarioExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the effective scenario, with RETREAT_ overrides applied, to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		force, _ := cmd.Flags().GetBool("force")
		return exportScenario(from, args[0], force)
	},
}

func init() {
	scenarioExportCmd.Flags().String("from", "", "scenario file to start from (default search path otherwise)")
	scenarioExportCmd.Flags().Bool("force", false, "overwrite an existing file")

	scenarioCmd.AddCommand(scenarioExportCmd)
}

func exportScenario(from, to string, force bool) error {
	if _, err := os.Stat(to); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", to)
	}

	cfg, err := retreatconfig.LoadConfigOrDefault(from)
	if err != nil {
		return err
	}

	logger.Progressf("Exporting scenario %s to %s", cfg.Simulation.Name, to)
	if err := retreatconfig.SaveConfig(cfg, to); err != nil {
		return fmt.Errorf("failed to export scenario: %w", err)
	}

	logger.LogSubSection(cfg.Simulation.Name)
	logger.LogList("Fleets", []string{
		fmt.Sprintf("fleeing: %d ships", cfg.Fleets.Fleeing.Size()),
		fmt.Sprintf("pursuing: %d ships", cfg.Fleets.Pursuing.Size()),
	})
	logger.Successf("Scenario written to %s", to)
	return nil
}
