package sdapi

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/webp"
)

// saveWebP converts provider PNG bytes to a high-quality WebP and
// writes it to path, returning the encoded bytes.
func saveWebP(data []byte, path string) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		// Fallback: try generic decode if not PNG
		var err2 error
		img, _, err2 = image.Decode(bytes.NewReader(data))
		if err2 != nil {
			return nil, fmt.Errorf("failed to decode image (png: %v, generic: %v)", err, err2)
		}
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: 95}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// loadWebP reads a previously stored render from disk.
func loadWebP(path string) ([]byte, error) {
	return os.ReadFile(path)
}
