package mediaservice

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestProcessImage(t *testing.T) {
	testCases := []struct {
		name           string
		width, height  int
		expectedWidth  int
		expectedHeight int
	}{
		{
			name:           "small image kept as-is",
			width:          640,
			height:         480,
			expectedWidth:  640,
			expectedHeight: 480,
		},
		{
			name:           "wide image downscaled",
			width:          3200,
			height:         1200,
			expectedWidth:  1600,
			expectedHeight: 600,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, w, h, err := processImage(bytes.NewReader(encodePNG(t, tc.width, tc.height)))
			require.NoError(t, err)
			assert.Equal(t, tc.expectedWidth, w)
			assert.Equal(t, tc.expectedHeight, h)

			decoded, err := jpeg.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tc.expectedWidth, decoded.Bounds().Dx())
		})
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, _, _, err := processImage(strings.NewReader("not an image at all"))
	assert.Error(t, err)
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewDiskStore(filepath.Join(dir, "uploads"), "https://cdn.example.com/uploads")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "abc.jpg", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/abc.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestObjectNameUnique(t *testing.T) {
	a := objectName()
	b := objectName()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".jpg"))
}
