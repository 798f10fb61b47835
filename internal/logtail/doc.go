// Package logtail reads the tail of pagedeck's log file for the activity pane.
//
// # Reading Log Files
//
// Read uses a ring buffer to extract the last maxLines from a file in one
// pass with O(maxLines) memory, returning lines in chronological order.
// A missing file is not an error; the TUI simply shows no activity yet.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//	entries := logtail.ParseLines(lines)
//
// # Decoding
//
// The TUI logs zerolog JSON lines. Parse extracts time, level, component,
// message and error, and keeps the remaining fields as sorted key=value
// pairs. Session ids are dropped from the display. Styling is left to the
// ui package.
package logtail
