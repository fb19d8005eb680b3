// Package render draws a wireframe of a snapshot: one outlined box per node,
// green when sufficiently shown and red when clipped.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/mj1618/uisync/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelMode controls what text is drawn on each box.
type LabelMode int

const (
	// LabelNone draws boxes only.
	LabelNone LabelMode = iota
	// LabelIDs draws "[id]" node identities.
	LabelIDs
	// LabelText draws the node's display text.
	LabelText
)

// ParseLabelMode converts a flag value to a LabelMode.
func ParseLabelMode(s string) (LabelMode, error) {
	switch s {
	case "", "none":
		return LabelNone, nil
	case "ids":
		return LabelIDs, nil
	case "text":
		return LabelText, nil
	default:
		return LabelNone, fmt.Errorf("unknown label mode: %q (expected none, ids or text)", s)
	}
}

// maxLabel is the longest label drawn, in characters.
const maxLabel = 24

var (
	background   = color.RGBA{R: 24, G: 24, B: 24, A: 255}
	shownColor   = color.RGBA{R: 0, G: 200, B: 80, A: 255}
	clippedColor = color.RGBA{R: 230, G: 40, B: 40, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Wireframe draws the snapshot's nodes on a width x height canvas scaled by
// scale. shown reports, by node identity, which nodes are sufficiently shown.
func Wireframe(s model.Snapshot, shown map[string]bool, width, height int, scale float64, mode LabelMode) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, n := range s.Nodes {
		drawNode(img, n, shown[n.ID], scale, mode)
	}
	return img
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	return nil
}

func drawNode(img *image.RGBA, n *model.Node, shown bool, scale float64, mode LabelMode) {
	x := int(float64(n.Bounds[0]) * scale)
	y := int(float64(n.Bounds[1]) * scale)
	w := int(float64(n.Bounds[2]) * scale)
	h := int(float64(n.Bounds[3]) * scale)

	c := clippedColor
	if shown {
		c = shownColor
	}
	drawRectangle(img, x, y, x+w, y+h, c)

	var label string
	switch mode {
	case LabelIDs:
		label = fmt.Sprintf("[%s]", n.ID)
	case LabelText:
		label = n.Text
		if label == "" {
			label = n.Hint
		}
	}
	if label == "" {
		return
	}
	if r := []rune(label); len(r) > maxLabel {
		label = string(r[:maxLabel-1]) + "~"
	}
	drawTextWithOutline(img, label, x+w/2, y+h/2)
}

func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle outlines [x1,x2) x [y1,y2), clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		if isWithinBounds(bounds, x, y1) {
			img.Set(x, y1, c)
		}
		if isWithinBounds(bounds, x, y2-1) {
			img.Set(x, y2-1, c)
		}
	}
	for y := y1; y < y2; y++ {
		if isWithinBounds(bounds, x1, y) {
			img.Set(x1, y, c)
		}
		if isWithinBounds(bounds, x2-1, y) {
			img.Set(x2-1, y, c)
		}
	}
}

// drawTextWithOutline centres text on (x, y) in basicfont.Face7x13.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	const charWidth, lineHeight = 7, 13
	offsetX := x - len([]rune(text))*charWidth/2
	offsetY := y + lineHeight/2

	drawer := func(c color.Color, dx, dy int) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, offsetY+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				drawer(outlineColor, dx, dy)
			}
		}
	}
	drawer(textColor, 0, 0)
}
