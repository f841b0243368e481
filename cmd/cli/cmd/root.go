package cmd

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	retreatconfig "github.com/picogrid/tactical-retreat/cmd/tactical-retreat/config"
	"github.com/picogrid/tactical-retreat/pkg/config"
	"github.com/picogrid/tactical-retreat/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "retreat-sim",
	Short: "Tactical retreat simulation CLI",
	Long: `Retreat Sim runs pursuit engagements in which the enemy's slow
reinforcements are held back by a delay schedule and join the battle
in waves, so a fleeing fleet can outrun them.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+config.DirName+"/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(scenarioCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	logger.SetLevel(logger.ParseLevel(logLevel))
	if noColor {
		color.NoColor = true
	}
	logger.SetNoColor(color.NoColor)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(filepath.Join("$HOME", config.DirName))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RETREAT")
	viper.AutomaticEnv()
	if err := retreatconfig.BindSettingsEnv(viper.GetViper()); err != nil {
		logger.Warnf("Failed to bind settings environment: %v", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		logger.Debugf("Using config file %s", viper.ConfigFileUsed())
	}
}
