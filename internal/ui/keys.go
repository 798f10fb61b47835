package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Activity   key.Binding
	Escape     key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Document
	New       key.Binding
	Open      key.Binding
	Save      key.Binding
	SaveRange key.Binding
	Cancel    key.Binding

	// Pages
	InsertPDF   key.Binding
	InsertImage key.Binding
	Paper       key.Binding
	Delete      key.Binding
	DeleteRange key.Binding
	RotateRight key.Binding
	RotateLeft  key.Binding

	// Dialogs
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Activity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activity log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close dialog"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Page above"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Page below"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous page"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next page"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First page"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last page"),
		),

		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New document"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open PDF"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save as"),
		),
		SaveRange: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Save page range"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Stop loading previews"),
		),

		InsertPDF: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Insert PDF after selection"),
		),
		InsertImage: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "Insert images after selection"),
		),
		Paper: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Paper size for images"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete page"),
		),
		DeleteRange: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete page range"),
		),
		RotateRight: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rotate clockwise"),
		),
		RotateLeft: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Rotate counter-clockwise"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.InsertPDF, k.InsertImage, k.Delete, k.RotateRight, k.Save, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.Top, k.Bottom},
		{k.New, k.Open, k.Save, k.SaveRange, k.Cancel},
		{k.InsertPDF, k.InsertImage, k.Paper, k.Delete, k.DeleteRange, k.RotateRight, k.RotateLeft},
		{k.Activity, k.CycleTheme, k.Help, k.Quit},
	}
}
