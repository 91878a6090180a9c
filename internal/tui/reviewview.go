package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jakobkreft/CakeTimer/internal/review"
	"github.com/jakobkreft/CakeTimer/internal/tracker"
)

type reviewModel struct {
	trk    *tracker.Tracker
	width  int
	height int

	data    *review.Data
	weekIdx int // index into data.Weeks, 0 = current
	chart   barchart.Model
}

func newReviewModel(trk *tracker.Tracker) reviewModel {
	return reviewModel{
		trk:   trk,
		chart: barchart.New(60, 10),
	}
}

func (r *reviewModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reviewDataMsg struct {
	data *review.Data
}

func (r reviewModel) refresh() tea.Cmd {
	trk := r.trk
	return func() tea.Msg {
		return reviewDataMsg{data: review.Build(trk.State(), time.Now())}
	}
}

func (r reviewModel) update(msg tea.Msg) (reviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewDataMsg:
		r.data = msg.data
		if r.weekIdx >= len(r.data.Weeks) {
			r.weekIdx = 0
		}
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if r.data != nil && r.weekIdx < len(r.data.Weeks)-1 {
				r.weekIdx++
				r.buildChart()
			}
			return r, nil
		case key.Matches(msg, keys.Right):
			if r.weekIdx > 0 {
				r.weekIdx--
				r.buildChart()
			}
			return r, nil
		}
	}
	return r, nil
}

func (r *reviewModel) buildChart() {
	chartWidth := r.width - 10
	if chartWidth < 24 {
		chartWidth = 24
	}
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	if r.data == nil || r.weekIdx >= len(r.data.Weeks) {
		return
	}
	week := r.data.Weeks[r.weekIdx]
	byDay := map[int64]*review.Day{}
	for _, d := range week.Days {
		byDay[d.DayStart] = d
	}

	var bars []barchart.BarData
	day := time.UnixMilli(week.StartMS)
	for i := 0; i < 7; i++ {
		label := day.Format("Mon")
		var values []barchart.BarValue
		if d, ok := byDay[day.UnixMilli()]; ok {
			values = append(values, barchart.BarValue{
				Name:  "work",
				Value: float64(d.WorkMS) / 3600000,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			})
			if d.TaggedBreakMS > 0 {
				values = append(values, barchart.BarValue{
					Name:  "break",
					Value: float64(d.TaggedBreakMS) / 3600000,
					Style: lipgloss.NewStyle().Foreground(colorSubtle),
				})
			}
		} else {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
		day = day.AddDate(0, 0, 1)
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reviewModel) view() string {
	w := r.width - 4
	if r.data == nil || len(r.data.Days) == 0 {
		return panelStyle.Width(w).Render(
			titleStyle.Render("Review") + "\n" + mutedStyle.Render("No history yet. Track something first."),
		)
	}

	header := r.renderHeader()
	chartView := r.chart.View()
	totals := r.renderTotals()
	tags := r.renderTagTotals(w)
	days := r.renderDays(w)
	nav := mutedStyle.Render("  ←/→: week  esc: back")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", totals, "", tags, "", days, "", nav,
		),
	)
}

func (r reviewModel) renderHeader() string {
	label := ""
	if r.weekIdx < len(r.data.Weeks) {
		week := r.data.Weeks[r.weekIdx]
		from := time.UnixMilli(week.StartMS)
		to := time.UnixMilli(week.EndMS)
		label = mutedStyle.Render(fmt.Sprintf("W%02d  %s — %s  %s worked",
			week.ISOWeek, from.Format("Jan 02"), to.Format("Jan 02, 2006"), formatMS(week.WorkMS)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Review"), "  ", label)
}

func (r reviewModel) renderTotals() string {
	t := r.data.Totals
	parts := []string{
		fmt.Sprintf("total %s", highlightStyle.Render(formatMS(t.WorkMS))),
		fmt.Sprintf("days %d", t.ActiveDays),
		fmt.Sprintf("sessions %d", t.Sessions),
	}
	if t.GoalMS > 0 {
		parts = append(parts, fmt.Sprintf("goal hit %d×", t.GoalHits))
	}
	if t.LongestSessionMS > 0 {
		parts = append(parts, fmt.Sprintf("longest %s (%s)", formatMS(t.LongestSessionMS), displayTag(t.LongestSessionTag)))
	}
	if t.TodosCompleted > 0 {
		parts = append(parts, fmt.Sprintf("todos %d", t.TodosCompleted))
	}
	return "  " + strings.Join(parts, "   ")
}

func (r reviewModel) renderTagTotals(w int) string {
	if len(r.data.TagTotals) == 0 {
		return ""
	}
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %10s %7s", "Tag", "Duration", "Share")))
	limit := 6
	for i, tt := range r.data.TagTotals {
		if i >= limit {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(r.data.TagTotals)-limit)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %-20s %10s %6.0f%%",
			truncate(displayTag(tt.Tag), 20), formatMS(tt.MS), tt.Share*100))
	}
	return strings.Join(rows, "\n")
}

func (r reviewModel) renderDays(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %8s %5s %5s", "Date", "Work", "Break", "Sess", "Goal")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	limit := 8
	for i, d := range r.data.Days {
		if i >= limit {
			break
		}
		goal := " "
		if d.GoalMet {
			goal = successStyle.Render("✓")
		}
		rows = append(rows, fmt.Sprintf("  %-12s %8s %8s %5d %5s",
			d.Date.Format("Jan 02 Mon"), formatMS(d.WorkMS), formatMS(d.BreakMS), d.SessionCount, goal))
	}
	return strings.Join(rows, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
