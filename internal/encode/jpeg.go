package encode

import (
	"bytes"
	"image"
	"image/jpeg"
)

// JPEGEncoder encodes a preview image as JPEG.
type JPEGEncoder struct {
	Quality int // 1-100, default 90
}

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *JPEGEncoder) Format() string        { return "jpeg" }
func (e *JPEGEncoder) FileExtension() string { return ".jpg" }
