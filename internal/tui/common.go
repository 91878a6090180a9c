package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDial viewState = iota
	viewReview
)

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatMS(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	mins := ms / 60000
	h := mins / 60
	m := mins % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func formatMSPrecise(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatClock(ms int64) string {
	return time.UnixMilli(ms).Local().Format("15:04")
}

func formatHoursMS(ms int64) string {
	return fmt.Sprintf("%.1fh", float64(ms)/3600000)
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}
