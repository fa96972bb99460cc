package encode

import (
	"fmt"
	"image"
)

// Encoder writes a preview image to bytes in its own format.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	Format() string
	FileExtension() string
}

// NewEncoder returns the encoder for the named preview format.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case "png":
		return &PNGEncoder{}, nil
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: 90}, nil
	default:
		return nil, fmt.Errorf("encode: unsupported preview format %q (supported: png, jpeg)", format)
	}
}
