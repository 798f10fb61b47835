// Package app is the composition root for pagedeck.
//
// # Overview
//
// Run wires configuration, logging, the editor session and the UI together
// and blocks until the TUI exits. Export and Thumbs are the headless entry
// points used by the CLI subcommands; they share the editor's background
// sessions with the TUI but poll them through Drive instead of tea.Tick.
//
// # Components
//
//   - app.go: Run and the renderer built from config
//   - poller.go: Drive, the headless poll loop
//   - export.go: one SaveSession over an opened file, no previews
//   - thumbs.go: one LoadSession writing each preview as a PNG
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config.toml
//	       ├─────> logging.New()        JSON log file, run id
//	       ├─────> editor.NewSession()  Document, pages, previews
//	       ├─────> session.Open()       Optional file from the command line
//	       └─────> ui.Run()             Start TUI (blocks)
//
//	Headless:
//	┌─────────────────────────────────────────┐
//	│ Drive() on the caller's goroutine       │
//	│  ├─> session.PollLoad()  (until empty)  │
//	│  ├─> session.PollSave()                 │
//	│  └─> wait one interval or ctx.Done      │
//	└─────────────────────────────────────────┘
//
// # Cancellation
//
// An interrupt cancels a running load cooperatively: Drive keeps polling
// until the worker reports the cancelled state, so no goroutine is left
// behind. Saves always run to completion.
package app
