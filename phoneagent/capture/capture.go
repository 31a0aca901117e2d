// Package capture turns raw device screenshots into compact palette PNGs.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
)

// Encoding parameters used for every screen capture.
const (
	PaletteSize = 16
	Dither      = true
)

// Options controls one re-encode.
type Options struct {
	// Colors is the maximum palette size, 2..256.
	Colors int
	// Dither enables Floyd-Steinberg error diffusion at full strength.
	Dither bool
}

// DefaultOptions are the fixed screen-capture settings.
func DefaultOptions() Options {
	return Options{Colors: PaletteSize, Dither: Dither}
}

// Screenshotter is the part of a device session the pipeline needs.
type Screenshotter interface {
	GetScreenshot(ctx context.Context) ([]byte, error)
}

// Result describes one re-encode.
type Result struct {
	Data         []byte
	Width        int
	Height       int
	Colors       int
	OriginalSize int
}

// CaptureScreen grabs the current screen and re-encodes it with the fixed
// screen-capture settings. Errors from either step are returned as-is, without retry.
func CaptureScreen(ctx context.Context, s Screenshotter) (*Result, error) {
	raw, err := s.GetScreenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get screenshot: %w", err)
	}

	result, err := Compress(raw, DefaultOptions())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("raw_bytes", result.OriginalSize).
		Int("compressed_bytes", len(result.Data)).
		Int("colors", result.Colors).
		Msg("screen captured")

	return result, nil
}

// CaptureCompressedScreen is CaptureScreen encoded as base64 for transport.
func CaptureCompressedScreen(ctx context.Context, s Screenshotter) (string, error) {
	result, err := CaptureScreen(ctx, s)
	if err != nil {
		return "", err
	}
	return result.Base64(), nil
}

// Base64 returns the re-encoded image as standard base64.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Data)
}

// Compress re-encodes image bytes as a palette PNG with at most opts.Colors
// colours and maximum zlib effort. The stdlib encoder writes no ancillary
// metadata chunks.
func Compress(raw []byte, opts Options) (*Result, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty image data")
	}
	if opts.Colors < 2 || opts.Colors > 256 {
		return nil, fmt.Errorf("invalid palette size %d", opts.Colors)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, errors.New("image has no pixels")
	}

	paletted := quantizeImage(src, opts)

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, paletted); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	data := buf.Bytes()
	// An input that already meets the palette limit is kept when re-encoding
	// would only grow it.
	if len(data) > len(raw) && isPaletteWithin(src, opts.Colors) {
		data = raw
	}

	return &Result{
		Data:         data,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Colors:       len(paletted.Palette),
		OriginalSize: len(raw),
	}, nil
}

func quantizeImage(src image.Image, opts Options) *image.Paletted {
	bounds := src.Bounds()

	q := quantize.MedianCutQuantizer{}
	palette := q.Quantize(make(color.Palette, 0, opts.Colors), src)
	if len(palette) == 0 {
		palette = color.Palette{color.Black}
	}

	dst := image.NewPaletted(bounds, palette)
	if opts.Dither {
		draw.FloydSteinberg.Draw(dst, bounds, src, bounds.Min)
	} else {
		draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	}
	return dst
}

func isPaletteWithin(img image.Image, colors int) bool {
	p, ok := img.(*image.Paletted)
	return ok && len(p.Palette) <= colors
}
