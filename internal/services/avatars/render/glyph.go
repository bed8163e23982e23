package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PlaceholderGlyph is drawn for identities without a printable first character.
const PlaceholderGlyph = "?"

// Glyph returns the upper-cased first character of identity.
func Glyph(identity string) string {
	first, size := utf8.DecodeRuneInString(identity)
	if size == 0 || first == utf8.RuneError || !unicode.IsGraphic(first) || unicode.IsSpace(first) {
		return PlaceholderGlyph
	}
	return cases.Upper(language.Und).String(string(first))
}

// drawGlyph paints text centred on (cx, cy) by its ink bounds.
func drawGlyph(dc *gg.Context, face Face, text string, cx, cy, sizePx float64, c color.Color) {
	if face.Bitmap {
		drawBitmapGlyph(dc, face, text, cx, cy, sizePx, c)
		return
	}
	bounds, _ := font.BoundString(face, text)
	midX := float64(bounds.Min.X+bounds.Max.X) / 2 / 64
	midY := float64(bounds.Min.Y+bounds.Max.Y) / 2 / 64
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(text, cx-midX, cy-midY)
}

// drawBitmapGlyph rasterises text with a fixed-size face and scales the mask
// up so its cell height matches sizePx.
func drawBitmapGlyph(dc *gg.Context, face Face, text string, cx, cy, sizePx float64, c color.Color) {
	metrics := face.Metrics()
	cellHeight := metrics.Height.Ceil()
	drawer := &font.Drawer{Face: face}
	cellWidth := drawer.MeasureString(text).Ceil()
	if cellWidth <= 0 || cellHeight <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, cellWidth, cellHeight))
	drawer.Dst = mask
	drawer.Src = image.Opaque
	drawer.Dot = fixed.P(0, metrics.Ascent.Ceil())
	drawer.DrawString(text)

	scale := sizePx / float64(cellHeight)
	width := int(math.Max(1, math.Round(float64(cellWidth)*scale)))
	height := int(math.Max(1, math.Round(sizePx)))
	scaled := imaging.Resize(mask, width, height, imaging.NearestNeighbor)

	dst, ok := dc.Image().(draw.Image)
	if !ok {
		return
	}
	origin := image.Pt(int(math.Round(cx))-width/2, int(math.Round(cy))-height/2)
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(width, height))}
	draw.DrawMask(dst, rect, image.NewUniform(c), image.Point{}, scaled, image.Point{}, draw.Over)
}
