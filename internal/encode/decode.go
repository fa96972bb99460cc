// Package encode handles the cmd/rasterize preview path: decoding an
// optional basemap image to composite the rasterized output over, and
// writing the composited preview back out as PNG or JPEG.
package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
)

// DecodeBasemap sniffs format from path's extension and decodes data
// accordingly. Supported: png, jpeg/jpg, webp.
func DecodeBasemap(path string, data []byte) (image.Image, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return png.Decode(bytes.NewReader(data))
	case "jpeg", "jpg":
		return jpeg.Decode(bytes.NewReader(data))
	case "webp":
		return decodeWebP(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("encode: unsupported basemap format %q", filepath.Ext(path))
	}
}

// decodeWebP decodes a WebP image via the pure-Go decoder so the preview
// path never requires CGo or a system libwebp install.
func decodeWebP(r io.Reader) (image.Image, error) {
	return webp.Decode(r)
}
