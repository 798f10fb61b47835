// Package ui provides the terminal interface for pagedeck.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model (Model) that drives an editor.Session.
// The session owns the document, the page store and the preview index; the
// model only tracks presentation state such as the cursor, the scroll offset,
// the open dialog and the status notice.
//
// # Package Structure
//
//   - app.go: Model, key and dialog handling, poll ticks, and Run
//   - view.go: header, page grid, cards and footer
//   - thumbart.go: thumbnail to half-block art conversion and its cache
//   - modal.go: text prompt and choice dialogs, range parsing
//   - activity.go: the log tail pane
//   - help.go: the keyboard shortcut overlay
//   - keys.go: key bindings
//   - theme.go: colour themes and derived lipgloss styles
//   - layout.go: card geometry and tick intervals
//
// # Background Work
//
// Page previews and saves run on worker goroutines inside the editor package.
// The model never blocks on them. Two tea.Tick chains poll the session:
//
//   - load tick: applies at most one rendered page per tick, so the grid fills
//     in progressively while the keyboard stays responsive
//   - save tick: checks for the export result
//
// A chain stops when its work is done and ensureTicks restarts it after any
// action that begins new work.
//
// # Key Bindings
//
// Navigation moves the cursor and selects the page under it. Edits act on the
// selected page or insert after it. Press ? for the full list.
//
// # Themes
//
// Themes are cycled with T. The choice, the image paper size and the last used
// directory persist through the prefs package.
package ui
