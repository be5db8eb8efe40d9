// Package preprocess produces OCR-friendly variants of a photographed
// document image. Each strategy applies one pixel transform to the same
// downscaled image; the orchestrator walks the strategies in order until a
// backend returns usable text.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Strategy selects one preprocessing transform.
type Strategy string

const (
	// StrategyEnhance applies a contrast/brightness boost tuned for printed
	// document text. Tried first because it helps the most common case of a
	// slightly washed-out phone photo.
	StrategyEnhance Strategy = "enhance"

	// StrategyGrayscale collapses channels to luminance.
	StrategyGrayscale Strategy = "grayscale"

	// StrategyThreshold binarizes to pure black/white, removing the
	// background texture of laminated document pages.
	StrategyThreshold Strategy = "threshold"

	// StrategyNormalize stretches the luminance histogram to the full range.
	StrategyNormalize Strategy = "normalize"
)

// Strategies is the fixed order the orchestrator tries the variants in.
var Strategies = []Strategy{StrategyEnhance, StrategyGrayscale, StrategyThreshold, StrategyNormalize}

const (
	// MaxEdgePixels bounds the longer edge of the working image. Backends
	// reject or slow down on full-resolution camera output.
	MaxEdgePixels = 1920

	// thresholdCutoff is the fixed luminance cutoff for StrategyThreshold.
	thresholdCutoff = 150

	// enhanceContrast and enhanceBrightness are the fixed adjustment values
	// for StrategyEnhance, in the -100..100 range imaging uses.
	enhanceContrast   = 25
	enhanceBrightness = 10
)

// ErrUnsupportedImage is returned when the input bytes cannot be decoded as
// an image.
var ErrUnsupportedImage = errors.New("input cannot be decoded as an image")

// Apply decodes the source image, bounds it to MaxEdgePixels and applies the
// given strategy, returning the result encoded as PNG. The source bytes are
// never modified.
func Apply(src []byte, strategy Strategy) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = bound(img)

	switch strategy {
	case StrategyEnhance:
		img = imaging.AdjustBrightness(imaging.AdjustContrast(img, enhanceContrast), enhanceBrightness)
	case StrategyGrayscale:
		img = imaging.Grayscale(img)
	case StrategyThreshold:
		img = threshold(imaging.Grayscale(img))
	case StrategyNormalize:
		img = normalize(imaging.Grayscale(img))
	default:
		return nil, fmt.Errorf("unknown preprocessing strategy %q", strategy)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode %s variant: %w", strategy, err)
	}
	return buf.Bytes(), nil
}

// bound downscales the image so its longer edge is at most MaxEdgePixels,
// preserving aspect ratio. Smaller images pass through unchanged.
func bound(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxEdgePixels && b.Dy() <= MaxEdgePixels {
		return img
	}
	return imaging.Fit(img, MaxEdgePixels, MaxEdgePixels, imaging.Lanczos)
}

// threshold maps every pixel to pure black or white around the fixed cutoff.
// The image is already grayscale, so the red channel is the luminance.
func threshold(img *image.NRGBA) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R > thresholdCutoff {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}

// normalize linearly stretches the observed luminance range to 0..255.
func normalize(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := img.NRGBAAt(x, y).R
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi <= lo {
		// Flat image, nothing to stretch.
		return img
	}
	scale := 255.0 / float64(hi-lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := uint8(clamp(float64(c.R-lo)*scale, 0, 255))
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
