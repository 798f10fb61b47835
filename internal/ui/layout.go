package ui

import "time"

// Page grid geometry, in terminal cells.
const (
	// ThumbCols and ThumbRows size the half-block thumbnail art. Each row
	// shows two pixel rows.
	ThumbCols = 16
	ThumbRows = 10

	// cardWidth and cardHeight include the border and the label line.
	cardWidth  = ThumbCols + 2
	cardHeight = ThumbRows + 3

	// cardGap separates cards horizontally.
	cardGap = 1
)

// Chrome heights.
const (
	headerHeight   = 2
	footerHeight   = 1
	activityHeight = 8
)

// Timing constants.
const (
	// DefaultLoadTick drains the preview queue while a load runs.
	DefaultLoadTick = 50 * time.Millisecond

	// DefaultSaveTick checks for a finished export.
	DefaultSaveTick = 100 * time.Millisecond

	// ActivityRefresh re-reads the log file while the activity pane is open.
	ActivityRefresh = time.Second

	// ActivityLines is how much of the log file the pane keeps.
	ActivityLines = 200
)
