package conf

import (
	"fmt"

	"github.com/Mark0fPride/app-cnn/internal/errors"
)

// ValidateSettings checks the loaded settings for values the pipeline
// cannot work with. It returns the first problem found.
func ValidateSettings(settings *Settings) error {
	if settings.Model.InputSize <= 0 {
		return validationError("model.inputsize must be positive, got %d", settings.Model.InputSize)
	}
	if settings.Model.Threads < 0 {
		return validationError("model.threads must not be negative, got %d", settings.Model.Threads)
	}
	if settings.Classifier.MinConfidence < 0 || settings.Classifier.MinConfidence > 100 {
		return validationError("classifier.minconfidence must be within 0-100, got %g", settings.Classifier.MinConfidence)
	}
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return validationError("no record store enabled, enable output.sqlite or output.mysql")
	}
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return validationError("only one record store may be enabled at a time")
	}
	return nil
}

func validationError(format string, args ...any) error {
	return errors.New(fmt.Errorf(format, args...)).
		Component("conf").
		Category(errors.CategoryValidation).
		Build()
}
