// Package render synthesises gradient avatar images.
//
// Drawing happens on a canvas ScaleFactor times larger than the requested
// edge and is downsampled at the end, so curves and glyph edges stay smooth
// at small output sizes.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/louisbranch/nois/internal/services/avatars/palette"
)

const (
	// ScaleFactor is the oversampling applied before the final downsample.
	ScaleFactor = 4
	// ShadowPadding is added to the render edge to make room for the shadow.
	ShadowPadding = 80

	gradientMaxSteps = 200

	shadowRingSpan  = 50
	shadowRingStep  = 5
	shadowMinAlpha  = 5
	shadowBlurSigma = 25.0
	// shadowDownscale is the resolution divisor the shadow is blurred at. The
	// sigma is divided by the same factor, so the upscaled softness matches a
	// full-resolution blur of shadowBlurSigma.
	shadowDownscale = 4

	glyphSizeRatio   = 0.6
	glyphShadowRatio = 0.02
)

var (
	glyphColor       = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	glyphShadowColor = color.NRGBA{A: 120}
)

// ErrInvalidSize reports a non-positive edge size.
var ErrInvalidSize = errors.New("avatar edge size must be positive")

// Renderer draws avatars. It is safe for concurrent use.
type Renderer struct {
	fonts  *FontChain
	logger *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFonts replaces the default font chain.
func WithFonts(chain *FontChain) Option {
	return func(r *Renderer) {
		if chain != nil {
			r.fonts = chain
		}
	}
}

// WithLogger sets the logger used for font fallback diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a Renderer that uses the embedded bold face unless configured
// otherwise.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		fonts:  DefaultFontChain(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the avatar of identity at size×size using pair as gradient
// endpoints.
func (r *Renderer) Render(identity string, size int, pair palette.Pair) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	renderSize := size * ScaleFactor
	canvasSize := renderSize + ShadowPadding

	dc := gg.NewContext(canvasSize, canvasSize)
	dc.DrawImage(shadow(canvasSize), 0, 0)
	offset := (canvasSize - renderSize) / 2
	dc.DrawImage(gradient(renderSize, pair), offset, offset)

	fontSize := math.Floor(float64(renderSize) * glyphSizeRatio)
	face, failures := r.fonts.Resolve(fontSize)
	for _, err := range failures {
		r.logger.Debug("font provider unavailable", zap.Error(err))
	}
	if face.Bitmap {
		r.logger.Info("rendering glyph with bitmap fallback font", zap.Int("size", size))
	} else {
		defer face.Close()
	}

	text := Glyph(identity)
	center := float64(canvasSize / 2)
	shadowOffset := math.Floor(float64(renderSize) * glyphShadowRatio)
	drawGlyph(dc, face, text, center+shadowOffset, center+shadowOffset, fontSize, glyphShadowColor)
	drawGlyph(dc, face, text, center, center, fontSize, glyphColor)

	return imaging.Resize(dc.Image(), size, size, imaging.Lanczos), nil
}

// gradient approximates a radial gradient with concentric filled circles
// painted from the outermost inwards.
func gradient(size int, pair palette.Pair) image.Image {
	dc := gg.NewContext(size, size)
	center := float64(size / 2)
	maxRadius := math.Floor(math.Hypot(center, center))
	steps := min(gradientMaxSteps, int(maxRadius))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		ratio := float64(i) / float64(steps)
		dc.SetColor(pair.Primary.Lerp(pair.Secondary, ratio).NRGBA())
		dc.DrawCircle(center, center, maxRadius*(1-ratio))
		dc.Fill()
	}
	return dc.Image()
}

// shadow draws low-alpha rings close to the canvas edge and blurs them into
// a soft silhouette. Blurring runs at reduced resolution.
func shadow(size int) image.Image {
	small := (size + shadowDownscale - 1) / shadowDownscale
	dc := gg.NewContext(small, small)
	half := float64(small) / 2
	for step := shadowRingSpan; step > 0; step -= shadowRingStep {
		radius := half - float64(step)/shadowDownscale
		if radius <= 0 {
			continue
		}
		alpha := max(shadowMinAlpha, shadowRingSpan-step)
		dc.SetColor(color.NRGBA{A: uint8(alpha)})
		dc.DrawCircle(half, half, radius)
		dc.Fill()
	}
	blurred := imaging.Blur(dc.Image(), shadowBlurSigma/shadowDownscale)
	return imaging.Resize(blurred, size, size, imaging.Linear)
}

// Encode writes img as a best-compression PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
