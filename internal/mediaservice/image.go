package mediaservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 80
	maxUploadSize = 5 << 20 // 5MB, matching the editing surface's limit
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// processImage decodes an image, downscales it to maxImageWidth when
// wider, and re-encodes it as JPEG. Returns the encoded bytes and the
// final dimensions.
func processImage(src io.Reader) ([]byte, int, int, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), w, h, nil
}

// objectName returns a collision-free stored filename for an upload.
func objectName() string {
	return uuid.New().String() + ".jpg"
}

// DiskStore is a BlobStore backed by the local filesystem, serving files
// under a public base URL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

func (s *DiskStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
