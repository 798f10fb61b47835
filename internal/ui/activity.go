package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pagedeck/internal/logtail"
)

type activityTickMsg time.Time

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

func activityTickCmd() tea.Cmd {
	return tea.Tick(ActivityRefresh, func(t time.Time) tea.Msg {
		return activityTickMsg(t)
	})
}

// readActivityCmd tails the log file off the UI goroutine.
func readActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, ActivityLines)
		if err != nil {
			return activityMsg{err: err}
		}
		return activityMsg{entries: logtail.ParseLines(lines)}
	}
}

func (m *Model) setActivity(msg activityMsg) {
	styles := m.theme.Styles()
	if msg.err != nil {
		m.activity.SetContent(styles.DangerText.Render(msg.err.Error()))
		return
	}
	follow := m.activity.AtBottom() || m.activity.TotalLineCount() == 0

	var b strings.Builder
	for i, e := range msg.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		line := truncate(e.String(), m.width)
		switch strings.ToLower(e.Level) {
		case "error", "fatal", "panic":
			b.WriteString(styles.DangerText.Render(line))
		case "warn":
			b.WriteString(styles.WarningText.Render(line))
		case "debug", "trace":
			b.WriteString(styles.FaintText.Render(line))
		default:
			b.WriteString(styles.Text.Render(line))
		}
	}
	m.activity.SetContent(b.String())
	if follow {
		m.activity.GotoBottom()
	}
}

func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Activity") + " " + styles.FaintText.Render(m.cfg.LogFile)
	return title + "\n" + m.activity.View()
}
