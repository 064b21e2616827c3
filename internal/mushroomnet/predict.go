package mushroomnet

import (
	"context"
	"fmt"

	tflite "github.com/tphakala/go-tflite"

	"github.com/Mark0fPride/app-cnn/internal/errors"
)

// RawScores decodes and preprocesses the image at imagePath, runs a forward
// pass and returns the raw (unnormalized) class scores in model output
// order. It is blocking and CPU-bound, callers keep it off the interactive
// path. A started inference runs to completion, ctx is only checked before
// the forward pass.
func (m *Model) RawScores(ctx context.Context, imagePath string) ([]float32, error) {
	tensor, err := loadImageTensor(imagePath, m.inputSize)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Lock to prevent concurrent access to the interpreter.
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interpreter == nil {
		return nil, errors.New(fmt.Errorf("%w: interpreter is closed", ErrModelLoad)).
			Component("mushroomnet").
			Category(errors.CategoryInference).
			Build()
	}

	inputTensor := m.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, errors.Newf("cannot get input tensor").
			Component("mushroomnet").
			Category(errors.CategoryInference).
			Build()
	}
	copy(inputTensor.Float32s(), tensor)

	if status := m.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.Newf("tensor invoke failed: %v", status).
			Component("mushroomnet").
			Category(errors.CategoryInference).
			FileContext(imagePath).
			Build()
	}

	outputTensor := m.interpreter.GetOutputTensor(0)
	return extractScores(outputTensor), nil
}

// extractScores copies the raw score vector out of a TensorFlow Lite tensor.
func extractScores(tensor *tflite.Tensor) []float32 {
	scoreSize := tensor.Dim(tensor.NumDims() - 1)
	scores := make([]float32, scoreSize)
	copy(scores, tensor.Float32s())
	return scores
}
