// Package config loads pagedeck's TOML settings file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided (--config), use it
//  2. Otherwise, use ~/.config/pagedeck/config.toml
//  3. If the file doesn't exist, use Default()
//  4. If the file exists but a field is missing, zero or blank, its default stays
//
// # Default Values
//
//   - thumb_width, thumb_height: 280 x 380 preview box
//   - render_dpi: 96
//   - poll_ms: 50 (preview load tick), save_poll_ms: 100
//   - default_paper: "A4"
//   - theme: "Nightfox"
//   - log_file: ~/.local/state/pagedeck/pagedeck.log
//   - log_level: "info"
//
// # TOML Format
//
//	thumb_width = 280
//	default_paper = "Tabloid"
//	log_level = "debug"
//
//	[paper.Tabloid]
//	width = 792
//	height = 1224
//
// Paper tables add to the built-in sizes (A4, Letter, Legal, A3). Sizes are
// in points. "Original" is reserved and means native image size.
//
// # Error Handling
//
// Missing config files are NOT an error. Load fails on unreadable files,
// invalid TOML, bad paper tables and an unknown default_paper.
//
// The package is read-only: pagedeck never writes the file back and keeps
// no other persisted state.
package config
