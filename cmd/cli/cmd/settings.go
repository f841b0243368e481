package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	retreatconfig "github.com/picogrid/tactical-retreat/cmd/tactical-retreat/config"
	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
	"github.com/picogrid/tactical-retreat/pkg/config"
	"github.com/picogrid/tactical-retreat/pkg/logger"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect retreat settings",
	Long: `Inspect the retreat settings read when an engagement starts. Values come
from the config file and RETREAT_ environment variables; anything unset keeps
its default.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE:  showSettings,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings to the config file",
	RunE:  initSettings,
}

func init() {
	settingsInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
}

func showSettings(cmd *cobra.Command, args []string) error {
	src := retreatconfig.NewViperSettings(viper.GetViper(), core.DefaultSettings())
	settings := core.LoadSettings(src, logger.Default())

	values := map[string]interface{}{
		retreatconfig.KeyEnabled:              settings.Enabled,
		retreatconfig.KeyDelayPerBurn:         settings.PerPointSeconds,
		retreatconfig.KeyMaxDelay:             settings.MaxDelaySeconds,
		retreatconfig.KeyBoostModifierEnabled: settings.BoostModifierEnabled,
		retreatconfig.KeyBoostModifier:        settings.ReferenceSpeedModifier,
		retreatconfig.KeyWaveTolerance:        settings.WaveToleranceSeconds,
	}

	table := logger.NewTable("KEY", "VALUE", "SOURCE")
	for _, key := range retreatconfig.SettingsKeys() {
		table.AddRow(key, cast.ToString(values[key]), settingSource(key))
	}

	if file := viper.ConfigFileUsed(); file != "" {
		logger.LogKeyValue("Config file", file)
	}
	table.Print()
	return nil
}

func settingSource(key string) string {
	if env := retreatconfig.SettingsEnvVar(key); env != "" {
		if _, ok := os.LookupEnv(env); ok {
			return env
		}
	}
	if viper.InConfig(key) {
		return "config file"
	}
	return "default"
}

func initSettings(cmd *cobra.Command, args []string) error {
	path := viper.ConfigFileUsed()
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, config.DirName, "config.yaml")
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	data, err := yaml.Marshal(retreatconfig.SettingsFile{Retreat: core.DefaultSettings()})
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logger.Successf("Default settings written to %s", path)
	return nil
}
