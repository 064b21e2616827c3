// config.go: settings struct and functions to load and save the
// application configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Mark0fPride/app-cnn/internal/errors"
)

// Log rotation types for file loggers.
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// LogConfig contains settings for a rotated log file.
type LogConfig struct {
	Enabled  bool   // true to enable file logging
	Path     string // path to log file
	Rotation string // rotation type: daily, weekly or size
	MaxSize  int64  // max log file size in bytes for size rotation
}

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of this node, used in logs
	Log  LogConfig // log file settings
}

// ModelSettings contains settings for the classification model.
type ModelSettings struct {
	Path       string // path to the TensorFlow Lite model file
	InputSize  int    // square input resolution expected by the model
	Threads    int    // number of CPU threads for inference, 0 for automatic
	UseXNNPACK bool   // true to use XNNPACK delegate for inference
}

// ClassifierSettings contains settings for classification behavior.
type ClassifierSettings struct {
	Locale        string  // locale code for common names and edibility display
	MinConfidence float64 // confidence gate in percent, top-1 below this is not recognized
	TaxonomyPath  string  // path to a custom taxonomy table, empty for embedded
}

// SQLiteSettings contains settings for the SQLite record store.
type SQLiteSettings struct {
	Enabled bool   // true to use SQLite
	Path    string // path to the database file
}

// MySQLSettings contains settings for the MySQL record store.
type MySQLSettings struct {
	Enabled  bool   // true to use MySQL
	Username string // MySQL username
	Password string // MySQL password
	Host     string // MySQL host
	Port     string // MySQL port
	Database string // MySQL database name
}

// OutputSettings groups the record store backends.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// TelemetrySettings contains settings for the metrics endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to enable Prometheus compatible telemetry endpoint
	Listen  string // IP address and port to listen on
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug bool // true to enable debug logging

	Main       MainSettings
	Model      ModelSettings
	Classifier ClassifierSettings
	Output     OutputSettings
	Telemetry  TelemetrySettings

	// Path to the user display preferences file
	UserSettingsPath string
}

// Load reads the configuration file and returns the populated settings.
// Missing file is not an error, defaults apply.
func Load() (*Settings, error) {
	setDefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range configPaths() {
		viper.AddConfigPath(path)
	}
	viper.SetEnvPrefix("MUSHROOM_CNN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(fmt.Errorf("reading config file: %w", err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("unmarshaling config: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// configPaths returns the directories searched for the config file, in order.
func configPaths() []string {
	paths := []string{"."}
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "mushroom-cnn"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mushroom-cnn"))
	}
	return paths
}

// DataDir returns the directory used for databases and user settings,
// creating it if needed.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	dir := filepath.Join(configDir, "mushroom-cnn")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New(fmt.Errorf("creating data directory %s: %w", dir, err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Build()
	}
	return dir, nil
}
