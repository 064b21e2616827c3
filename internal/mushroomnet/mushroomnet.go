// mushroomnet.go mushroom classifier model specific code
package mushroomnet

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/errors"
	"github.com/Mark0fPride/app-cnn/internal/logging"
)

// Sentinel errors for the two non-retryable failure modes of the adapter.
var (
	ErrModelLoad   = errors.NewStd("model asset cannot be loaded")
	ErrImageDecode = errors.NewStd("image cannot be decoded")
)

// Model wraps the TensorFlow Lite interpreter for the mushroom classifier.
type Model struct {
	interpreter *tflite.Interpreter
	model       *tflite.Model
	Settings    *conf.Settings
	inputSize   int
	numClasses  int
	mu          sync.Mutex
}

// New loads the classifier model from the configured path and prepares an
// interpreter for inference.
func New(settings *conf.Settings) (*Model, error) {
	m := &Model{
		Settings:  settings,
		inputSize: settings.Model.InputSize,
	}
	if err := m.initializeModel(); err != nil {
		return nil, errors.New(fmt.Errorf("mushroomnet: failed to initialize model: %w", err)).
			Component("mushroomnet").
			Category(errors.CategoryModelInit).
			ModelContext(settings.Model.Path).
			Build()
	}
	return m, nil
}

// initializeModel loads and initializes the TensorFlow Lite model.
func (m *Model) initializeModel() error {
	start := time.Now()

	modelData, err := os.ReadFile(m.Settings.Model.Path)
	if err != nil {
		return errors.New(fmt.Errorf("%w: reading %s: %w", ErrModelLoad, m.Settings.Model.Path, err)).
			Category(errors.CategoryModelLoad).
			ModelContext(m.Settings.Model.Path).
			Timing("model-load", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return errors.New(fmt.Errorf("%w: cannot parse TensorFlow Lite model", ErrModelLoad)).
			Category(errors.CategoryModelLoad).
			ModelContext(m.Settings.Model.Path).
			Context("model_size_mb", len(modelData)/1024/1024).
			Build()
	}
	m.model = model

	threads := m.determineThreadCount(m.Settings.Model.Threads)

	options := tflite.NewInterpreterOptions()
	log := logging.ForService("mushroomnet")
	if m.Settings.Model.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))}) //nolint:gosec // G115: thread count bounded by CPU count, safe conversion
		if delegate == nil {
			log.Warn("Failed to create XNNPACK delegate, falling back to default CPU")
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	options.SetErrorReporter(func(msg string, userData any) {
		logging.ForService("mushroomnet").Error("TFLite error", "message", msg)
	}, nil)

	m.interpreter = tflite.NewInterpreter(model, options)
	if m.interpreter == nil {
		return fmt.Errorf("cannot create interpreter")
	}
	if status := m.interpreter.AllocateTensors(); status != tflite.OK {
		return fmt.Errorf("tensor allocation failed")
	}

	// Read the class count from the output tensor so a mismatched taxonomy
	// can be rejected before the first classification.
	outputTensor := m.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return fmt.Errorf("cannot get output tensor")
	}
	m.numClasses = outputTensor.Dim(outputTensor.NumDims() - 1)

	// The model data is no longer needed as TFLite has created its own
	// internal copy.
	runtime.GC()

	log.Info("classifier model initialized",
		"model", m.Settings.Model.Path,
		"input_size", m.inputSize,
		"classes", m.numClasses,
		"threads", threads,
		"elapsed", time.Since(start))
	return nil
}

// determineThreadCount returns the thread count to use for inference.
func (m *Model) determineThreadCount(configured int) int {
	if configured > 0 && configured <= runtime.NumCPU() {
		return configured
	}
	return runtime.NumCPU()
}

// NumClasses returns the size of the model's output score vector.
func (m *Model) NumClasses() int {
	return m.numClasses
}

// InputSize returns the square input resolution the model expects.
func (m *Model) InputSize() int {
	return m.inputSize
}

// Close deletes the interpreter and model, releasing native resources.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.interpreter != nil {
		m.interpreter.Delete()
		m.interpreter = nil
	}
	if m.model != nil {
		m.model.Delete()
		m.model = nil
	}
}
