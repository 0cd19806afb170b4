package photocache

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Source photos arrive from phone cameras and galleries in any of
	// these formats.
	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
)

const (
	maxImageDimension = 800
	jpegQuality       = 80
)

// shrinkToJPEG decodes the image, scales it down so neither dimension
// exceeds maxImageDimension (never scaling up, aspect ratio preserved), and
// re-encodes it as JPEG.
func shrinkToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("while decoding image: %w", err)
	}

	img = resize.Thumbnail(maxImageDimension, maxImageDimension, img, resize.Lanczos3)

	out := &bytes.Buffer{}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("while encoding JPEG: %w", err)
	}

	return out.Bytes(), nil
}
