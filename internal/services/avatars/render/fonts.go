package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Provider resolves a scalable font face at a pixel size.
type Provider interface {
	Name() string
	Face(sizePx float64) (font.Face, error)
}

// Face is a resolved glyph face. Bitmap faces have a fixed size and must be
// scaled by the caller.
type Face struct {
	font.Face
	Provider string
	Bitmap   bool
}

const bitmapProviderName = "basicfont"

// FontChain tries providers in order and ends in a bitmap face that always
// resolves.
type FontChain struct {
	providers []Provider
}

// NewFontChain builds a chain from providers, tried first to last.
func NewFontChain(providers ...Provider) *FontChain {
	filtered := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			filtered = append(filtered, p)
		}
	}
	return &FontChain{providers: filtered}
}

// DefaultFontChain prefers font files at paths, then the embedded Go Bold face.
func DefaultFontChain(paths ...string) *FontChain {
	providers := make([]Provider, 0, len(paths)+1)
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		providers = append(providers, FileProvider(path))
	}
	providers = append(providers, GoBoldProvider())
	return NewFontChain(providers...)
}

// Resolve returns the first face a provider can build. Provider failures are
// returned alongside the face; they are never fatal.
func (c *FontChain) Resolve(sizePx float64) (Face, []error) {
	var failures []error
	if c != nil {
		for _, p := range c.providers {
			face, err := p.Face(sizePx)
			if err == nil {
				return Face{Face: face, Provider: p.Name()}, failures
			}
			failures = append(failures, fmt.Errorf("font provider %s: %w", p.Name(), err))
		}
	}
	return Face{Face: basicfont.Face7x13, Provider: bitmapProviderName, Bitmap: true}, failures
}

type opentypeProvider struct {
	name string
	load func() ([]byte, error)

	once   sync.Once
	parsed *opentype.Font
	err    error
}

// FileProvider loads a TrueType or OpenType font file on first use.
func FileProvider(path string) Provider {
	return &opentypeProvider{
		name: "file:" + path,
		load: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// GoBoldProvider serves the Go Bold face compiled into the binary.
func GoBoldProvider() Provider {
	return &opentypeProvider{
		name: "gobold",
		load: func() ([]byte, error) { return gobold.TTF, nil },
	}
}

func (p *opentypeProvider) Name() string {
	return p.name
}

func (p *opentypeProvider) Face(sizePx float64) (font.Face, error) {
	p.once.Do(func() {
		data, err := p.load()
		if err != nil {
			p.err = fmt.Errorf("load font: %w", err)
			return
		}
		p.parsed, p.err = opentype.Parse(data)
		if p.err != nil {
			p.err = fmt.Errorf("parse font: %w", p.err)
		}
	})
	if p.err != nil {
		return nil, p.err
	}
	if sizePx <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", sizePx)
	}
	// DPI 72 makes points equal pixels.
	return opentype.NewFace(p.parsed, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
