// Package palette maps identities to curated gradient color pairs.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// hashDomain separates palette hashing from any other identity digest.
const hashDomain = "avatar-palette-v1"

var (
	// ErrEmptyPalette reports a palette definition without pairs.
	ErrEmptyPalette = errors.New("palette must contain at least one pair")
	// ErrInvalidHex reports a color that is not a #rgb or #rrggbb triple.
	ErrInvalidHex = errors.New("color must be a #rgb or #rrggbb hex triple")
)

// Color is an opaque sRGB color.
type Color struct {
	R, G, B uint8
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// NRGBA converts the color to an opaque image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Lerp interpolates between c and to; t is clamped to [0,1] and channels truncate.
func (c Color) Lerp(to Color, t float64) Color {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-t) + float64(b)*t)
	}
	return Color{R: mix(c.R, to.R), G: mix(c.G, to.G), B: mix(c.B, to.B)}
}

// ParseHex parses #rgb or #rrggbb (the leading # is optional).
func ParseHex(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, value)
	}
	parsed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, value)
	}
	return Color{R: uint8(parsed >> 16), G: uint8(parsed >> 8), B: uint8(parsed)}, nil
}

// MustParseHex is ParseHex for compile-time constants.
func MustParseHex(value string) Color {
	c, err := ParseHex(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Pair holds the two gradient endpoints of an avatar background.
type Pair struct {
	Primary   Color
	Secondary Color
}

// Palette is an immutable list of color pairs.
type Palette struct {
	pairs []Pair
	intn  func(int) int
}

// New builds a palette from pairs.
func New(pairs []Pair) (*Palette, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyPalette
	}
	return &Palette{
		pairs: append([]Pair(nil), pairs...),
		intn:  rand.IntN,
	}, nil
}

var defaultPairs = []Pair{
	{MustParseHex("#667eea"), MustParseHex("#764ba2")},
	{MustParseHex("#f093fb"), MustParseHex("#f5576c")},
	{MustParseHex("#4facfe"), MustParseHex("#00f2fe")},
	{MustParseHex("#43e97b"), MustParseHex("#38f9d7")},
	{MustParseHex("#fa709a"), MustParseHex("#fee140")},
	{MustParseHex("#a8edea"), MustParseHex("#fed6e3")},
	{MustParseHex("#d299c2"), MustParseHex("#fef9d7")},
	{MustParseHex("#89f7fe"), MustParseHex("#66a6ff")},
	{MustParseHex("#ff9a9e"), MustParseHex("#fecfef")},
	{MustParseHex("#a1c4fd"), MustParseHex("#c2e9fb")},
	{MustParseHex("#ffecd2"), MustParseHex("#fcb69f")},
	{MustParseHex("#84fab0"), MustParseHex("#8fd3f4")},
}

// Default returns the built-in curated palette.
func Default() *Palette {
	p, _ := New(defaultPairs)
	return p
}

// Len returns the number of pairs.
func (p *Palette) Len() int {
	return len(p.pairs)
}

// Pairs returns a copy of the palette entries in order.
func (p *Palette) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// Index returns the palette slot an identity resolves to.
func (p *Palette) Index(identity string) int {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(hashDomain)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(identity)
	return int(hasher.Sum64() % uint64(len(p.pairs)))
}

// Deterministic returns the pair assigned to identity. Any string, including
// the empty one, resolves to a pair.
func (p *Palette) Deterministic(identity string) Pair {
	return p.pairs[p.Index(identity)]
}

// Random returns a uniformly chosen pair.
func (p *Palette) Random() Pair {
	return p.pairs[p.intn(len(p.pairs))]
}

type fileFormat struct {
	Pairs []struct {
		Primary   string `yaml:"primary"`
		Secondary string `yaml:"secondary"`
	} `yaml:"pairs"`
}

// Load reads a YAML palette:
//
//	pairs:
//	  - primary: "#667eea"
//	    secondary: "#764ba2"
func Load(r io.Reader) (*Palette, error) {
	var doc fileFormat
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPalette
		}
		return nil, fmt.Errorf("decode palette: %w", err)
	}
	pairs := make([]Pair, 0, len(doc.Pairs))
	for i, entry := range doc.Pairs {
		primary, err := ParseHex(entry.Primary)
		if err != nil {
			return nil, fmt.Errorf("pair %d primary: %w", i, err)
		}
		secondary, err := ParseHex(entry.Secondary)
		if err != nil {
			return nil, fmt.Errorf("pair %d secondary: %w", i, err)
		}
		pairs = append(pairs, Pair{Primary: primary, Secondary: secondary})
	}
	return New(pairs)
}

// LoadFile reads a YAML palette from path.
func LoadFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open palette: %w", err)
	}
	defer f.Close()
	return Load(f)
}
