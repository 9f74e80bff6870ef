package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/meur/tierzen/internal/board"
	"github.com/meur/tierzen/internal/models"
)

// Layout of the rendered image, in pixels
const (
	imageWidth  = 960
	titleHeight = 40
	labelWidth  = 120
	tileWidth   = 104
	tileHeight  = 40
	gap         = 6
)

var (
	background = color.RGBA{0x1f, 0x1f, 0x23, 0xff}
	rowFill    = color.RGBA{0x2a, 0x2a, 0x30, 0xff}
	tileFill   = color.RGBA{0x45, 0x45, 0x4d, 0xff}
	errorFill  = color.RGBA{0x7a, 0x2e, 0x2e, 0xff}
	unranked   = color.RGBA{0x55, 0x55, 0x5f, 0xff}
	textLight  = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
)

var face = basicfont.Face7x13

type band struct {
	label     string
	fill      color.Color
	textColor color.Color
	items     []models.Item
}

// WritePNG rasterizes the board: a title, one band per tier with the tier
// color behind its label, and the unranked pool at the bottom.
func WritePNG(w io.Writer, name string, st board.State) error {
	bands := make([]band, 0, len(st.Tiers)+1)
	for _, t := range st.Tiers {
		bands = append(bands, band{
			label:     t.Name,
			fill:      parseColor(t.Color, rowFill),
			textColor: parseColor(t.TextColor, color.Black),
			items:     t.Items,
		})
	}
	bands = append(bands, band{label: "Unranked", fill: unranked, textColor: textLight, items: st.Unranked})

	perRow := (imageWidth - labelWidth - gap) / (tileWidth + gap)
	height := titleHeight
	for _, b := range bands {
		height += bandHeight(len(b.items), perRow) + gap
	}

	img := image.NewRGBA(image.Rect(0, 0, imageWidth, height))
	fill(img, img.Bounds(), background)
	drawText(img, name, gap*2, titleHeight/2+5, textLight, imageWidth-gap*4)

	y := titleHeight
	for _, b := range bands {
		h := bandHeight(len(b.items), perRow)
		fill(img, image.Rect(0, y, labelWidth, y+h), b.fill)
		fill(img, image.Rect(labelWidth, y, imageWidth, y+h), rowFill)
		drawText(img, b.label, gap, y+h/2+5, b.textColor, labelWidth-gap*2)

		for i, it := range b.items {
			col, row := i%perRow, i/perRow
			x0 := labelWidth + gap + col*(tileWidth+gap)
			y0 := y + gap + row*(tileHeight+gap)
			tile := tileFill
			if it.HasError {
				tile = errorFill
			}
			fill(img, image.Rect(x0, y0, x0+tileWidth, y0+tileHeight), tile)
			drawText(img, it.Name, x0+4, y0+tileHeight/2+5, textLight, tileWidth-8)
		}
		y += h + gap
	}

	return png.Encode(w, img)
}

func bandHeight(items, perRow int) int {
	rows := (items + perRow - 1) / perRow
	if rows < 1 {
		rows = 1
	}
	return rows*(tileHeight+gap) + gap
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// drawText draws s with its baseline at y, cut to fit maxWidth
func drawText(img draw.Image, s string, x, y int, c color.Color, maxWidth int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	runes := []rune(s)
	for len(runes) > 0 && d.MeasureString(string(runes)).Ceil() > maxWidth {
		runes = runes[:len(runes)-1]
	}
	d.DrawString(string(runes))
}

func parseColor(hex string, fallback color.Color) color.Color {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	return c
}
