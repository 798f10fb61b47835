// Package editor holds the page-editing engine: the page order, the preview
// index that mirrors it, and the background load and save sessions.
//
// # Overview
//
// A Session owns one open document. Every edit goes through its PageStore
// first and is mirrored into the PreviewIndex only after the document
// accepted it, so after each completed operation the two agree on page count
// and each preview entry is labelled with its position ("Page 1", "Page 2", ...).
//
// # Background Work
//
// Rendering all previews of a freshly opened document and exporting to disk
// run on their own goroutines:
//
//	┌───────────────┐  Queue[loadItem]   ┌─────────────────────┐
//	│ LoadSession   │ ─────────────────> │ Session.PollLoad()  │
//	│ worker        │  PageRendered...   │ (interactive tick)  │
//	└───────────────┘  LoadComplete      └─────────────────────┘
//
//	┌───────────────┐  Queue[SaveResult] ┌─────────────────────┐
//	│ SaveSession   │ ─────────────────> │ Session.PollSave()  │
//	│ worker        │  one result        │                     │
//	└───────────────┘                    └─────────────────────┘
//
// Workers never touch the preview index. The interactive goroutine drains
// at most one item per poll, so rendering stays responsive.
//
// # Cancellation
//
// LoadSession.Cancel sets a flag the worker checks before each page and again
// before publishing a result. A render already in flight finishes but its
// thumbnail is dropped, and the worker ends with a cancelled LoadComplete.
// Pages that never rendered get placeholder entries so the index still
// matches the document.
//
// Opening another document while a load runs cancels it and marks it stale.
// Stale results are discarded, and the next load starts once the stale
// LoadComplete has been drained. The document the stale worker is reading is
// closed at that point.
//
// Saves cannot be cancelled. Edits are refused with ErrBusy while either kind
// of session is running.
//
// # Errors
//
// Validation failures are *document.Error values of kind range or capacity
// and leave the document unchanged. A failed image in a batch insert stops
// the batch with a *BatchError; earlier images stay inserted.
package editor
