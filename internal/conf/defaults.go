// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Mushroom-CNN")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "mushroom-cnn.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("model.path", "model/mushroom_classifier.tflite")
	viper.SetDefault("model.inputsize", 224)
	viper.SetDefault("model.threads", 0)
	viper.SetDefault("model.usexnnpack", true)

	viper.SetDefault("classifier.locale", "en")
	// Confidence gate in percent. A top-1 probability at or above this
	// is accepted, anything below is reported as not recognized.
	viper.SetDefault("classifier.minconfidence", 10.0)
	viper.SetDefault("classifier.taxonomypath", "")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "mushrooms.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "mushroom")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "mushrooms")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "localhost:8090")

	viper.SetDefault("usersettingspath", "user_settings.yaml")
}
