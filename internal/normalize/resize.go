package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 85
)

// ResizeOptions bounds the subject photo before it becomes a reference.
type ResizeOptions struct {
	MaxDimension int
	Quality      int
}

func (o ResizeOptions) withDefaults() ResizeOptions {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Resize decodes data, scales it down so neither side exceeds MaxDimension
// while preserving aspect ratio, and re-encodes it as JPEG. Images already in
// bounds are re-encoded at their original size.
func Resize(data []byte, opts ResizeOptions) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("normalize: empty image")
	}
	opts = opts.withDefaults()
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("normalize: decode image: %w", err)
	}
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), opts.MaxDimension)

	var out image.Image = src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("normalize: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// FitWithin returns dimensions that fit inside a max×max box, keeping the
// aspect ratio. Dimensions already inside the box are returned unchanged.
func FitWithin(width, height, limit int) (int, int) {
	if width <= 0 || height <= 0 || limit <= 0 {
		return width, height
	}
	if width <= limit && height <= limit {
		return width, height
	}
	if width >= height {
		h := int(float64(height) * float64(limit) / float64(width))
		if h < 1 {
			h = 1
		}
		return limit, h
	}
	w := int(float64(width) * float64(limit) / float64(height))
	if w < 1 {
		w = 1
	}
	return w, limit
}
