package editor

import (
	"sort"
	"strconv"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/render"
)

// Label is the display label for the page at position index.
func Label(index int) string {
	return "Page " + strconv.Itoa(index+1)
}

// Entry is one preview panel. Thumb is nil for a page whose render was
// skipped (cancelled or failed load).
type Entry struct {
	Label    string
	Thumb    *render.Thumbnail
	Selected bool

	// page index the entry was rendered for during a load; only meaningful
	// while that load is running.
	loadedAs int
}

// PreviewIndex mirrors the page order with one Entry per page.
type PreviewIndex struct {
	entries  []*Entry
	selected int
}

func NewPreviewIndex() *PreviewIndex {
	return &PreviewIndex{selected: -1}
}

func (p *PreviewIndex) Len() int {
	return len(p.entries)
}

// Entry returns a copy of the entry at index.
func (p *PreviewIndex) Entry(index int) (Entry, bool) {
	if index < 0 || index >= len(p.entries) {
		return Entry{}, false
	}
	return *p.entries[index], true
}

// Entries returns copies of all entries in order.
func (p *PreviewIndex) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = *e
	}
	return out
}

// Labels returns every entry label in order.
func (p *PreviewIndex) Labels() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Label
	}
	return out
}

// Insert places one new entry per thumbnail at positions at, at+1, ... and
// renumbers everything from at onwards. A selection at or after at moves with
// its page.
func (p *PreviewIndex) Insert(at int, thumbs ...*render.Thumbnail) {
	if at < 0 {
		at = 0
	}
	if at > len(p.entries) {
		at = len(p.entries)
	}
	added := make([]*Entry, len(thumbs))
	for i, t := range thumbs {
		added[i] = &Entry{Thumb: t}
	}
	p.entries = append(p.entries[:at], append(added, p.entries[at:]...)...)
	if p.selected >= at {
		p.selected += len(thumbs)
	}
	p.renumber(at)
}

// Remove drops entries start..end inclusive, releases their thumbnails,
// renumbers from start and clears the selection.
func (p *PreviewIndex) Remove(start, end int) {
	if start < 0 || end >= len(p.entries) || start > end {
		return
	}
	p.ClearSelection()
	for _, e := range p.entries[start : end+1] {
		e.Thumb.Release()
	}
	p.entries = append(p.entries[:start], p.entries[end+1:]...)
	p.renumber(start)
}

// Replace swaps the thumbnail at index, releasing the old one.
func (p *PreviewIndex) Replace(index int, thumb *render.Thumbnail) {
	if index < 0 || index >= len(p.entries) {
		thumb.Release()
		return
	}
	e := p.entries[index]
	if e.Thumb != thumb {
		e.Thumb.Release()
	}
	e.Thumb = thumb
}

// Clear releases every thumbnail and drops all entries and the selection.
func (p *PreviewIndex) Clear() {
	for _, e := range p.entries {
		e.Thumb.Release()
	}
	p.entries = nil
	p.selected = -1
}

// Select marks index as the single selected entry.
func (p *PreviewIndex) Select(index int) error {
	if err := document.CheckIndex("select page", index, len(p.entries)); err != nil {
		return err
	}
	if p.selected == index {
		return nil
	}
	p.ClearSelection()
	p.selected = index
	p.entries[index].Selected = true
	return nil
}

// Selected returns the selected index, if any.
func (p *PreviewIndex) Selected() (int, bool) {
	return p.selected, p.selected >= 0
}

func (p *PreviewIndex) ClearSelection() {
	if p.selected >= 0 && p.selected < len(p.entries) {
		p.entries[p.selected].Selected = false
	}
	p.selected = -1
}

// place inserts the load result for page among the entries of the running
// load, keeping them ordered by page even if results arrive out of order.
func (p *PreviewIndex) place(page int, thumb *render.Thumbnail) {
	pos := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].loadedAs > page
	})
	p.entries = append(p.entries, nil)
	copy(p.entries[pos+1:], p.entries[pos:])
	p.entries[pos] = &Entry{Thumb: thumb, loadedAs: page}
	if p.selected >= pos {
		p.selected++
	}
	p.renumber(pos)
}

// fill adds placeholder entries for every page of a total-page load that
// produced no result, so the index matches the document again.
func (p *PreviewIndex) fill(total int) {
	present := make(map[int]bool, len(p.entries))
	for _, e := range p.entries {
		present[e.loadedAs] = true
	}
	for page := 0; page < total; page++ {
		if !present[page] {
			p.place(page, nil)
		}
	}
}

func (p *PreviewIndex) renumber(from int) {
	for i := from; i < len(p.entries); i++ {
		p.entries[i].Label = Label(i)
		if p.entries[i].Selected && i != p.selected {
			p.entries[i].Selected = false
		}
	}
	if p.selected >= 0 && p.selected < len(p.entries) {
		p.entries[p.selected].Selected = true
	}
}
