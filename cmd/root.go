package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mark0fPride/app-cnn/cmd/classify"
	"github.com/Mark0fPride/app-cnn/cmd/correct"
	"github.com/Mark0fPride/app-cnn/cmd/history"
	"github.com/Mark0fPride/app-cnn/cmd/settings"
	"github.com/Mark0fPride/app-cnn/cmd/taxonomy"
	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(appSettings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mushroom-cnn",
		Short: "Mushroom-CNN CLI",
		Long:  "Classify mushroom photos with an on-device model and manage past identifications.",
	}

	setupFlags(rootCmd, appSettings)

	subcommands := []*cobra.Command{
		classify.Command(appSettings),
		history.Command(appSettings),
		correct.Command(appSettings),
		settings.Command(appSettings),
		taxonomy.Command(appSettings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if appSettings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		return conf.ValidateSettings(appSettings)
	}

	return rootCmd
}

// setupFlags configures the global flags for the root command and binds
// them to viper keys so the config file and flags share one source.
func setupFlags(rootCmd *cobra.Command, appSettings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&appSettings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&appSettings.Model.Path, "model", viper.GetString("model.path"), "Path to the TensorFlow Lite model file")
	rootCmd.PersistentFlags().StringVar(&appSettings.Classifier.Locale, "locale", viper.GetString("classifier.locale"), "Locale for common names and edibility display")
	rootCmd.PersistentFlags().Float64Var(&appSettings.Classifier.MinConfidence, "min-confidence", viper.GetFloat64("classifier.minconfidence"), "Confidence gate in percent, results below this are not recognized")
	rootCmd.PersistentFlags().StringVar(&appSettings.Output.SQLite.Path, "database", viper.GetString("output.sqlite.path"), "Path to the SQLite database file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		logging.Error("failed to bind flags", "error", err)
	}
}
