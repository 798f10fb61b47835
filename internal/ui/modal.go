package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width int) string
}

// promptKind says what a submitted prompt value is for.
type promptKind int

const (
	promptOpen promptKind = iota
	promptInsertPDF
	promptInsertImages
	promptDeleteRange
	promptSaveRange
	promptSavePath
	promptPaper
)

// submitMsg carries the value of a closed dialog back to the model.
type submitMsg struct {
	kind  promptKind
	value string
	// pages is the range chosen in an earlier step, for promptSavePath.
	pages [2]int
}

// promptModal asks for one line of text.
type promptModal struct {
	kind  promptKind
	title string
	hint  string
	input textinput.Model
	pages [2]int
	err   string
	// validate may reject the value and keep the dialog open.
	validate func(string) error
}

func newPrompt(kind promptKind, title, hint, value string) *promptModal {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 4096
	in.Width = 60
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return &promptModal{kind: kind, title: title, hint: hint, input: in}
}

func (p *promptModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape):
			return p, nil, true
		case key.Matches(km, keys.Confirm):
			value := strings.TrimSpace(p.input.Value())
			if p.validate != nil {
				if err := p.validate(value); err != nil {
					p.err = err.Error()
					return p, nil, false
				}
			}
			out := submitMsg{kind: p.kind, value: value, pages: p.pages}
			return p, func() tea.Msg { return out }, true
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.err = ""
	return p, cmd, false
}

func (p *promptModal) View(theme Theme, width int) string {
	styles := theme.Styles()
	p.input.Width = max(20, min(width-12, 80))

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(p.title))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(p.err))
	}
	if p.hint != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(p.hint))
	}
	return styles.Dialog.Render(b.String())
}

// choiceModal picks one of a fixed list.
type choiceModal struct {
	kind    promptKind
	title   string
	options []string
	cursor  int
}

func newChoice(kind promptKind, title string, options []string, current string) *choiceModal {
	c := &choiceModal{kind: kind, title: title, options: options}
	for i, o := range options {
		if strings.EqualFold(o, current) {
			c.cursor = i
		}
	}
	return c
}

func (c *choiceModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape):
		return c, nil, true
	case key.Matches(km, keys.Up), key.Matches(km, keys.Left):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(km, keys.Down), key.Matches(km, keys.Right):
		if c.cursor < len(c.options)-1 {
			c.cursor++
		}
	case key.Matches(km, keys.Confirm):
		out := submitMsg{kind: c.kind, value: c.options[c.cursor]}
		return c, func() tea.Msg { return out }, true
	}
	return c, nil, false
}

func (c *choiceModal) View(theme Theme, _ int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(c.title))
	b.WriteString("\n\n")
	row := lipgloss.NewStyle().Width(20)
	for i, o := range c.options {
		if i == c.cursor {
			b.WriteString(row.Inherit(styles.SelectedLabel).Align(lipgloss.Left).Render("› " + o))
		} else {
			b.WriteString(row.Inherit(styles.Text).Render("  " + o))
		}
		b.WriteString("\n")
	}
	return styles.Dialog.Render(strings.TrimRight(b.String(), "\n"))
}

// parseRange reads "from-to" or a single page number, 1-based.
func parseRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("enter a page range such as 2-5")
	}
	fromStr, toStr, found := strings.Cut(s, "-")
	from, err := strconv.Atoi(strings.TrimSpace(fromStr))
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a page number", strings.TrimSpace(fromStr))
	}
	to := from
	if found {
		to, err = strconv.Atoi(strings.TrimSpace(toStr))
		if err != nil {
			return 0, 0, fmt.Errorf("%q is not a page number", strings.TrimSpace(toStr))
		}
	}
	return from, to, nil
}

// rangeValidator checks a range prompt against the current page count.
func rangeValidator(count int) func(string) error {
	return func(s string) error {
		from, to, err := parseRange(s)
		if err != nil {
			return err
		}
		if from < 1 || from > to || to > count {
			return fmt.Errorf("pages must satisfy 1 <= from <= to <= %d", count)
		}
		return nil
	}
}

// splitPaths splits a list of paths separated by commas or newlines.
func splitPaths(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
