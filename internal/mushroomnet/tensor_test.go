package mushroomnet

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mark0fPride/app-cnn/internal/errors"
)

func solidImage(c color.Color, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageToTensorShape(t *testing.T) {
	t.Parallel()

	tensor := imageToTensor(solidImage(color.White, 640, 480), 224)
	assert.Len(t, tensor, 1*224*224*3)
}

func TestImageToTensorNormalization(t *testing.T) {
	t.Parallel()

	// A solid white image maps every channel to (1.0 - mean) / std.
	tensor := imageToTensor(solidImage(color.White, 32, 32), 8)
	for i := 0; i < len(tensor); i += 3 {
		assert.InDelta(t, (1.0-normMean[0])/normStd[0], tensor[i+0], 1e-4)
		assert.InDelta(t, (1.0-normMean[1])/normStd[1], tensor[i+1], 1e-4)
		assert.InDelta(t, (1.0-normMean[2])/normStd[2], tensor[i+2], 1e-4)
	}

	// A solid black image maps every channel to (0.0 - mean) / std.
	tensor = imageToTensor(solidImage(color.Black, 32, 32), 8)
	assert.InDelta(t, -normMean[0]/normStd[0], tensor[0], 1e-4)
	assert.InDelta(t, -normMean[1]/normStd[1], tensor[1], 1e-4)
	assert.InDelta(t, -normMean[2]/normStd[2], tensor[2], 1e-4)
}

func TestImageToTensorLayoutIsRowMajor(t *testing.T) {
	t.Parallel()

	// Top half red, bottom half blue, no resize distortion at same size.
	const size = 8
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if y < size/2 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}

	tensor := imageToTensor(img, size)

	firstRow := tensor[0:3]                        // pixel (0,0), red
	lastRow := tensor[(size*(size-1))*3 : (size*(size-1))*3+3] // pixel (0,size-1), blue
	assert.Greater(t, firstRow[0], firstRow[2], "top rows should be red-dominant")
	assert.Greater(t, lastRow[2], lastRow[0], "bottom rows should be blue-dominant")
}

func TestLoadImageTensorFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidImage(color.White, 64, 64)))
	require.NoError(t, f.Close())

	tensor, err := loadImageTensor(path, 224)
	require.NoError(t, err)
	assert.Len(t, tensor, 1*224*224*3)
}

func TestLoadImageTensorRejectsNonImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no image data"), 0o644))

	_, err := loadImageTensor(path, 224)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImageDecode))
}

func TestLoadImageTensorMissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadImageTensor(filepath.Join(t.TempDir(), "missing.png"), 224)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImageDecode))
}
