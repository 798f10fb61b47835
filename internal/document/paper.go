package document

import (
	"sort"
	"strings"
)

// Paper is a fixed page size in points (1" = 72pt).
type Paper struct {
	Name   string
	Width  float64
	Height float64
}

// OriginalSize names the choice that sizes image pages to the image itself.
const OriginalSize = "Original"

var (
	A4     = Paper{Name: "A4", Width: 595, Height: 842}
	Letter = Paper{Name: "Letter", Width: 612, Height: 792}
	Legal  = Paper{Name: "Legal", Width: 612, Height: 1008}
	A3     = Paper{Name: "A3", Width: 842, Height: 1191}
)

// PaperSet is a lookup of named paper sizes.
type PaperSet map[string]Paper

// DefaultPapers returns the built-in sizes.
func DefaultPapers() PaperSet {
	return PaperSet{
		A4.Name:     A4,
		Letter.Name: Letter,
		Legal.Name:  Legal,
		A3.Name:     A3,
	}
}

// Lookup resolves a name case-insensitively. OriginalSize and the empty
// string resolve to nil with ok set.
func (s PaperSet) Lookup(name string) (*Paper, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, OriginalSize) {
		return nil, true
	}
	for key, p := range s {
		if strings.EqualFold(key, name) {
			paper := p
			return &paper, true
		}
	}
	return nil, false
}

// Names lists the sizes in a stable order with OriginalSize last.
func (s PaperSet) Names() []string {
	names := make([]string, 0, len(s)+1)
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, OriginalSize)
}

// Fit returns the rectangle (x, y, w, h) an image of iw×ih occupies on the
// paper: centred, aspect preserved, at most 95% of each page dimension.
func (p Paper) Fit(iw, ih float64) (x, y, w, h float64) {
	const margin = 0.95
	if iw <= 0 || ih <= 0 {
		return 0, 0, 0, 0
	}
	imgRatio, pageRatio := iw/ih, p.Width/p.Height
	if imgRatio > pageRatio {
		w = p.Width * margin
		h = w / imgRatio
	} else {
		h = p.Height * margin
		w = h * imgRatio
	}
	return (p.Width - w) / 2, (p.Height - h) / 2, w, h
}
