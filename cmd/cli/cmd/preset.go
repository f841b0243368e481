package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/picogrid/tactical-retreat/pkg/config"
	"github.com/picogrid/tactical-retreat/pkg/utils"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage parameter presets",
	Long:  `Manage named parameter sets for use with 'run --preset'`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE:  listPresets,
}

var presetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new preset",
	RunE:  addPreset,
}

var presetRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a preset",
	RunE:  removePreset,
}

func init() {
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetAddCmd)
	presetCmd.AddCommand(presetRemoveCmd)
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	if len(presets.Presets) == 0 {
		fmt.Println("No presets configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSIMULATION\tPARAMS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t----------\t------\t-----------")

	for _, preset := range presets.Presets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", preset.Name, preset.Simulation, formatParams(preset.Params), preset.Description)
	}

	return w.Flush()
}

func formatParams(params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + cast.ToString(params[name])
	}
	return strings.Join(parts, " ")
}

func addPreset(cmd *cobra.Command, args []string) error {
	presets, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	var preset config.Preset

	namePrompt := &survey.Input{
		Message: "Preset name:",
	}
	if err := survey.AskOne(namePrompt, &preset.Name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if _, exists := presets.Find(preset.Name); exists {
		return fmt.Errorf("preset %s already exists", preset.Name)
	}

	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}
	if len(simInfos) == 0 {
		return fmt.Errorf("no simulations found")
	}

	names := make([]string, len(simInfos))
	for i, info := range simInfos {
		names[i] = info.Config.Name
	}
	simPrompt := &survey.Select{
		Message: "Simulation:",
		Options: names,
	}
	if err := survey.AskOne(simPrompt, &preset.Simulation); err != nil {
		return err
	}

	descPrompt := &survey.Input{
		Message: "Description (optional):",
	}
	if err := survey.AskOne(descPrompt, &preset.Description); err != nil {
		return err
	}

	info, _ := utils.FindSimulation(simInfos, preset.Simulation)
	params, err := utils.PromptForParameters(info.Config.Parameters, nil)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	// Durations are stored as text so the file stays readable
	preset.Params = make(map[string]interface{}, len(params))
	for name, value := range params {
		if s, ok := value.(fmt.Stringer); ok {
			value = s.String()
		}
		preset.Params[name] = value
	}

	if err := presets.Add(preset); err != nil {
		return err
	}
	if err := config.SavePresets(presets); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}

	fmt.Printf("Preset %s added successfully\n", preset.Name)
	return nil
}

func removePreset(cmd *cobra.Command, args []string) error {
	presets, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	if len(presets.Presets) == 0 {
		fmt.Println("No presets to remove")
		return nil
	}

	names := make([]string, len(presets.Presets))
	for i, preset := range presets.Presets {
		names[i] = preset.Name
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select preset to remove:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return err
	}

	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("Removal cancelled")
		return nil
	}

	presets.Remove(selected)
	if err := config.SavePresets(presets); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}

	fmt.Printf("Preset %s removed successfully\n", selected)
	return nil
}
