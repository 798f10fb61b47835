package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pagedeck/internal/editor"
)

// renderMain renders header, page grid, optional activity pane and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	body := m.renderGrid()
	if m.modal != nil {
		body = lipgloss.Place(m.width, m.gridHeight(), lipgloss.Center, lipgloss.Center,
			m.modal.View(m.theme, m.width))
	}
	b.WriteString(lipgloss.NewStyle().Height(m.gridHeight()).MaxHeight(m.gridHeight()).Render(body))
	b.WriteString("\n")

	if m.showActivity {
		b.WriteString(m.renderActivity())
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader draws the info line and the status line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render("pagedeck")}
	if m.session.Document() == nil {
		parts = append(parts, styles.MutedText.Render("no document"))
	} else {
		parts = append(parts, styles.Text.Bold(true).Render(m.session.Name()))
		parts = append(parts, styles.MutedText.Render(pluralPages(m.session.PageCount())))
		if sel, ok := m.session.Selected(); ok {
			parts = append(parts, styles.MutedText.Render(fmt.Sprintf("page %d selected", sel+1)))
		}
	}
	parts = append(parts, styles.FaintText.Render("paper "+m.paperName))
	info := styles.Header.Width(m.width).Render(strings.Join(parts, styles.FaintText.Render(" · ")))

	return info + "\n" + styles.Header.Width(m.width).Render(m.statusLine(styles))
}

func (m Model) statusLine(styles Styles) string {
	switch {
	case m.session.SaveActive():
		s := m.session.SaveSession()
		return m.spinner.View() + " " + styles.StateStyle("running").Render("saving") + " " +
			styles.Text.Render(fmt.Sprintf("%s (pages %s)", truncatePath(s.Path, m.width/2), s.Range))

	case m.session.LoadActive():
		load := m.session.Load()
		if load == nil || !load.Running() {
			return styles.WarningText.Render("Preparing previews...")
		}
		if load.Cancelled() {
			return styles.WarningText.Render("Stopping preview loading...")
		}
		done, total := load.Progress()
		frac := 0.0
		if total > 0 {
			frac = float64(done) / float64(total)
		}
		return styles.StateStyle("running").Render("loading") + " " +
			m.progress.ViewAs(frac) + " " +
			styles.Text.Render(fmt.Sprintf("Loading page %d of %d", done, total)) + " " +
			styles.FaintText.Render("c to stop")
	}

	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return styles.DangerText.Render(m.notice)
	}
	return styles.SuccessText.UnsetBold().Render(m.notice)
}

// renderGrid lays out one card per preview entry, scrolled to the cursor row.
func (m Model) renderGrid() string {
	styles := m.theme.Styles()
	if m.session.Document() == nil {
		return styles.MutedText.Padding(1, 2).Render("No document. Press o to open a PDF or n to start a new one.")
	}
	entries := m.session.Previews().Entries()
	if len(entries) == 0 {
		if m.session.LoadActive() {
			return ""
		}
		return styles.MutedText.Padding(1, 2).Render("Empty document. Press i to insert a PDF or I to add images.")
	}

	cols := m.columns()
	rows := m.visibleRows()
	var lines []string
	for r := m.top; r < m.top+rows; r++ {
		start := r * cols
		if start >= len(entries) {
			break
		}
		end := min(start+cols, len(entries))
		cards := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			if i > start {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, m.renderCard(i, entries[i], styles))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCard(index int, e editor.Entry, styles Styles) string {
	art := ""
	if e.Thumb != nil {
		art = m.art.get(e.Thumb, m.theme)
	}
	if art == "" {
		art = placeholderArt(ThumbCols, ThumbRows, styles.Placeholder)
	}

	label := e.Label
	if rot, err := m.session.Rotation(index); err == nil && rot != 0 {
		label = fmt.Sprintf("%s ↻%d", label, rot)
	}
	labelStyle := styles.Label
	if e.Selected {
		labelStyle = styles.SelectedLabel
	}
	body := art + "\n" + labelStyle.Width(ThumbCols).Render(truncate(label, ThumbCols))

	card := styles.Card
	if index == m.cursor {
		card = styles.CursorCard
	}
	return card.Render(body)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// columns is how many cards fit side by side.
func (m Model) columns() int {
	return max(1, (m.width+cardGap)/(cardWidth+cardGap))
}

func (m Model) gridHeight() int {
	h := m.height - headerHeight - footerHeight
	if m.showActivity {
		h -= activityHeight
	}
	return max(h, cardHeight)
}

func (m Model) visibleRows() int {
	return max(1, m.gridHeight()/cardHeight)
}

// scrollToCursor keeps the cursor's row on screen.
func (m *Model) scrollToCursor() {
	row := m.cursor / m.columns()
	rows := m.visibleRows()
	if row < m.top {
		m.top = row
	}
	if row >= m.top+rows {
		m.top = row - rows + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

func pluralPages(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

// truncatePath keeps the end of a path, which holds the file name.
func truncatePath(path string, limit int) string {
	r := []rune(path)
	if limit <= 1 || len(r) <= limit {
		return path
	}
	return "…" + string(r[len(r)-limit+1:])
}
