package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/five82/pagedeck/internal/render"
)

// halfBlock paints the top pixel as foreground and the bottom one as background.
const halfBlock = "▀"

// thumbArt renders a thumbnail as cols×rows cells of half blocks, centred and
// padded with bg. The art keeps the page's aspect ratio.
func thumbArt(img *image.RGBA, cols, rows int, bg string) string {
	b := img.Bounds()
	w, h := render.FitWithin(b.Dx(), b.Dy(), cols, rows*2)
	if b.Dx() < cols && b.Dy() < rows*2 {
		// FitWithin never enlarges; grow small thumbnails to fill the box.
		w, h = growWithin(b.Dx(), b.Dy(), cols, rows*2)
	}
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	offX := (cols - w) / 2
	offY := (rows*2 - h) / 2
	at := func(x, y int) (color.RGBA, bool) {
		x, y = x-offX, y-offY
		if x < 0 || y < 0 || x >= w || y >= h {
			return color.RGBA{}, false
		}
		return small.RGBAAt(x, y), true
	}

	pad := lipgloss.NewStyle().Background(lipgloss.Color(bg))
	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top, okTop := at(col, row*2)
			bottom, okBottom := at(col, row*2+1)
			switch {
			case !okTop && !okBottom:
				sb.WriteString(pad.Render(" "))
			default:
				st := lipgloss.NewStyle()
				if okTop {
					st = st.Foreground(hex(top))
				} else {
					st = st.Foreground(lipgloss.Color(bg))
				}
				if okBottom {
					st = st.Background(hex(bottom))
				} else {
					st = st.Background(lipgloss.Color(bg))
				}
				sb.WriteString(st.Render(halfBlock))
			}
		}
	}
	return sb.String()
}

// placeholderArt fills the box for a page without a preview.
func placeholderArt(cols, rows int, style lipgloss.Style) string {
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = strings.Repeat(" ", cols)
	}
	if rows > 0 {
		label := "no preview"
		if len(label) > cols {
			label = label[:cols]
		}
		left := (cols - len(label)) / 2
		lines[rows/2] = strings.Repeat(" ", left) + label + strings.Repeat(" ", cols-left-len(label))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func growWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w*maxH > h*maxW {
		return maxW, max(h*maxW/w, 1)
	}
	return max(w*maxH/h, 1), maxH
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// artCache keeps the rendered art per thumbnail. Entries for released
// thumbnails are dropped by prune.
type artCache struct {
	theme string
	art   map[*render.Thumbnail]string
}

func newArtCache() *artCache {
	return &artCache{art: map[*render.Thumbnail]string{}}
}

func (c *artCache) get(t *render.Thumbnail, theme Theme) string {
	if c.theme != theme.Name {
		c.art = map[*render.Thumbnail]string{}
		c.theme = theme.Name
	}
	if s, ok := c.art[t]; ok {
		return s
	}
	img := t.Image()
	if img == nil {
		return ""
	}
	s := thumbArt(img, ThumbCols, ThumbRows, theme.Surface)
	c.art[t] = s
	return s
}

func (c *artCache) prune() {
	for t := range c.art {
		if t.Released() {
			delete(c.art, t)
		}
	}
}
