package mushroomnet

import (
	"fmt"
	"image"
	_ "image/gif"  // registered decoder
	_ "image/jpeg" // registered decoder
	_ "image/png"  // registered decoder
	"os"

	"golang.org/x/image/draw"

	"github.com/Mark0fPride/app-cnn/internal/errors"
)

// Per-channel normalization constants the model was trained with
// (torchvision defaults). Changing these silently degrades accuracy
// without raising an error.
var (
	normMean = [3]float32{0.485, 0.456, 0.406}
	normStd  = [3]float32{0.229, 0.224, 0.225}
)

// loadImageTensor decodes the image at path, resizes it to a size×size
// square and returns a normalized float32 slice in NHWC order with shape
// (1, size, size, 3).
func loadImageTensor(path string, size int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("%w: opening %s: %w", ErrImageDecode, path, err)).
			Component("mushroomnet").
			Category(errors.CategoryImageDecode).
			FileContext(path).
			Build()
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.New(fmt.Errorf("%w: decoding %s: %w", ErrImageDecode, path, err)).
			Component("mushroomnet").
			Category(errors.CategoryImageDecode).
			FileContext(path).
			Build()
	}

	return imageToTensor(img, size), nil
}

// imageToTensor resizes img to size×size and converts it to a normalized
// NHWC float32 tensor.
func imageToTensor(img image.Image, size int) []float32 {
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	// NHWC with batch=1: length = 1 * size * size * 3
	out := make([]float32, 1*size*size*3)

	// iterate rows (y) then columns (x) so memory layout matches NHWC
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r32, g32, b32, _ := scaled.At(x, y).RGBA()
			// Convert 16-bit color to 0-1 range, then normalize.
			r := float32(r32>>8) / 255.0
			g := float32(g32>>8) / 255.0
			b := float32(b32>>8) / 255.0

			base := ((y * size) + x) * 3
			out[base+0] = (r - normMean[0]) / normStd[0]
			out[base+1] = (g - normMean[1]) / normStd[1]
			out[base+2] = (b - normMean[2]) / normStd[2]
		}
	}

	return out
}
