package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/jakobkreft/CakeTimer/internal/dial"
	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/tagcolor"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
	"github.com/jakobkreft/CakeTimer/internal/tracker"
)

// unitsPerCell converts the editor's pixel-based thresholds to cell space.
// One terminal column counts as four "pixels" worth of precision.
const unitsPerCell = 0.25

type formKind int

const (
	formNone formKind = iota
	formTagSession
	formTagGap
	formRenameWork
	formRenameBreak
	formAddTodo
)

// dialGeom is the rendered dial's placement, kept for mouse mapping. The x
// axis is in columns; the y axis is doubled so the dial is round on screen.
type dialGeom struct {
	top, left int
	w, h      int
	cx, cy    float64 // center in unit space
	r         float64
}

type dialModel struct {
	trk    *tracker.Tracker
	accent tagcolor.Accent
	editor *dial.Editor

	width  int
	height int
	geom   dialGeom

	hover     dial.Hover
	hoverGap  *timeline.Gap
	pointerIn bool

	formActive bool
	form       *huh.Form
	formKind   formKind
	formValue  *string
	formTarget int   // session index for session forms
	formGap    timeline.Gap
	formAnchor int64
	formOld    string // old tag for rename forms

	confirmClear bool
	todoCursor   int
}

func newDialModel(trk *tracker.Tracker, accent tagcolor.Accent) dialModel {
	v := ""
	return dialModel{
		trk:       trk,
		accent:    accent,
		editor:    dial.NewEditor(),
		formValue: &v,
		hover:     dial.Hover{SegIndex: -1},
	}
}

func (d *dialModel) setSize(w, h, top, left int) {
	d.width = w
	d.height = h

	// Reserve a hover line under the dial and give the tag panels the rest.
	rows := h - 2
	if rows < 9 {
		rows = 9
	}
	cols := rows * 2
	maxCols := w * 55 / 100
	if cols > maxCols {
		cols = maxCols
	}
	if cols < 19 {
		cols = 19
	}
	rows = cols / 2
	d.geom = dialGeom{
		top:  top,
		left: left,
		w:    cols,
		h:    rows,
		cx:   float64(cols) / 2,
		cy:   float64(rows), // rows * 2 / 2
		r:    math.Min(float64(cols)/2, float64(rows)) - 1.5,
	}
}

// --- update ---

func (d dialModel) update(msg tea.Msg) (dialModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return d.updateMouse(msg)

	case tea.KeyMsg:
		if d.confirmClear {
			if msg.String() == "y" {
				d.trk.ClearToday()
				d.trk.RefreshStreak()
				d.trk.SyncTodayBadges()
				d.confirmClear = false
				return d, statusCmd("Cleared today")
			}
			d.confirmClear = false
			return d, statusCmd("Clear cancelled")
		}

		switch {
		case key.Matches(msg, keys.Toggle):
			return d.toggle()

		case key.Matches(msg, keys.GoalUp):
			d.trk.AdjustGoal(30)
			d.trk.SyncTodayBadges()
			return d, statusCmd(fmt.Sprintf("Goal: %s", formatMS(int64(d.trk.State().GoalMinutes)*60000)))

		case key.Matches(msg, keys.GoalDown):
			d.trk.AdjustGoal(-30)
			d.trk.SyncTodayBadges()
			return d, statusCmd(fmt.Sprintf("Goal: %s", formatMS(int64(d.trk.State().GoalMinutes)*60000)))

		case key.Matches(msg, keys.Tag):
			return d.showTagForm()

		case key.Matches(msg, keys.Todo):
			return d.showForm(formAddTodo, "New todo", "")

		case key.Matches(msg, keys.SortWork):
			d.trk.CycleSortWork()
			return d, statusCmd("Tag sort: " + string(d.trk.State().TagSortWork))

		case key.Matches(msg, keys.SortBreak):
			d.trk.CycleSortBreak()
			return d, statusCmd("Break sort: " + string(d.trk.State().TagSortBreak))

		case key.Matches(msg, keys.Theme):
			d.trk.ToggleTheme()
			return d, statusCmd("Theme: " + d.trk.State().Theme)

		case key.Matches(msg, keys.Clear):
			d.confirmClear = true
			return d, statusCmd("Clear today's sessions? press y to confirm")

		case key.Matches(msg, keys.Enter):
			return d.toggleTodo()

		case key.Matches(msg, keys.Up):
			if d.todoCursor > 0 {
				d.todoCursor--
			}
			return d, nil

		case key.Matches(msg, keys.Down):
			if d.todoCursor < len(d.trk.State().Todos)-1 {
				d.todoCursor++
			}
			return d, nil
		}

		switch msg.String() {
		case "x":
			return d.deleteTodo()
		case "p":
			return d.randomizeHoverColor()
		case "T":
			return d.showRenameForm()
		case "i":
			d.trk.ToggleIgnoredDay(d.trk.TodayKey())
			d.trk.RefreshStreak()
			if d.trk.State().IgnoresDay(d.trk.TodayKey()) {
				return d, statusCmd("Today no longer counts toward the streak")
			}
			return d, statusCmd("Today counts toward the streak again")
		}
	}
	return d, nil
}

func (d dialModel) toggle() (dialModel, tea.Cmd) {
	wasRunning := d.trk.Running()
	before := len(d.trk.State().Sessions)
	d.trk.Toggle()
	d.trk.RefreshStreak()
	d.trk.SyncTodayBadges()
	if wasRunning {
		if len(d.trk.State().Sessions) < before {
			return d, statusCmd("Session too short, discarded")
		}
		return d, statusCmd("Stopped")
	}
	return d, statusCmd("Started")
}

// --- mouse ---

func (d dialModel) updateMouse(msg tea.MouseMsg) (dialModel, tea.Cmd) {
	st := d.trk.State()
	win := d.trk.Window()
	g := d.geom

	ux := float64(msg.X-g.left) + 0.5
	uy := (float64(msg.Y-g.top) + 0.5) * 2
	dist := math.Hypot(ux-g.cx, uy-g.cy)
	inDial := msg.X >= g.left && msg.X < g.left+g.w &&
		msg.Y >= g.top && msg.Y < g.top+g.h && dist <= g.r+1

	if !inDial && !d.editor.Dragging() {
		if d.pointerIn {
			d.editor.Cancel()
		}
		d.pointerIn = false
		d.hover = dial.Hover{SegIndex: -1}
		d.hoverGap = nil
		return d, nil
	}
	d.pointerIn = inDial

	preview := d.editor.PreviewSessions(st.Sessions)
	segs := timeline.SegmentsForDay(preview, win.Start, win.End, win.Now)

	switch msg.Action {
	case tea.MouseActionMotion:
		d.editor.PointerMove(ux, uy, dial.AngleFromPoint(ux, uy, g.cx, g.cy), st.Sessions, win)
		d.refreshHover(ux, uy, segs, win)
		return d, nil

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return d, nil
		}
		d.refreshHover(ux, uy, segs, win)
		d.editor.PointerDown(ux, uy, d.hover)
		return d, nil

	case tea.MouseActionRelease:
		res := d.editor.PointerUp(inDial, st.Sessions)
		switch res.Action {
		case dial.ActionToggle:
			return d.toggle()
		case dial.ActionCommit, dial.ActionDelete:
			d.trk.ApplyEdit(res)
			d.trk.RefreshStreak()
			d.trk.SyncTodayBadges()
			if res.Action == dial.ActionDelete {
				return d, statusCmd("Removed session slice")
			}
			return d, statusCmd("Session adjusted")
		}
		return d, nil
	}
	return d, nil
}

func (d *dialModel) refreshHover(ux, uy float64, segs []timeline.Segment, win timeline.DayWindow) {
	st := d.trk.State()
	d.hover = dial.FindHover(ux, uy, d.geom.cx, d.geom.cy, d.geom.r, unitsPerCell, st.Sessions, segs, win)
	d.hoverGap = nil
	if d.hover.SegIndex < 0 {
		t := dial.TimeFromAngle(d.hover.Theta, win.Start)
		gaps := timeline.GapsForDay(win.Start, win.End, win.Now, segs)
		if g, ok := timeline.FindGap(gaps, t); ok {
			d.hoverGap = &g
		}
	}
}

// --- forms ---

func (d dialModel) showTagForm() (dialModel, tea.Cmd) {
	st := d.trk.State()
	win := d.trk.Window()
	segs := timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)

	if d.hover.SegIndex >= 0 && d.hover.SegIndex < len(segs) {
		seg := segs[d.hover.SegIndex]
		d.formTarget = seg.SessionIndex
		return d.showForm(formTagSession, "Tag session", seg.Tag)
	}
	if d.hoverGap != nil {
		d.formGap = *d.hoverGap
		d.formAnchor = dial.TimeFromAngle(d.hover.Theta, win.Start)
		tag := ""
		if idx := timeline.FindBreakLog(st.BreakLogs, d.formGap.StartMS, d.formGap.EndMS, d.formAnchor); idx >= 0 {
			tag = st.BreakLogs[idx].Tag
		}
		return d.showForm(formTagGap, "Tag break", tag)
	}
	if idx := lastTodaySessionIndex(st.Sessions, win); idx >= 0 {
		d.formTarget = idx
		return d.showForm(formTagSession, "Tag session", st.Sessions[idx].Tag)
	}
	return d, statusCmd("Nothing to tag yet")
}

// showRenameForm renames the hovered tag across today: every session slice
// (or break log) carrying it follows to the new name.
func (d dialModel) showRenameForm() (dialModel, tea.Cmd) {
	st := d.trk.State()
	win := d.trk.Window()
	segs := timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)

	if d.hover.SegIndex >= 0 && d.hover.SegIndex < len(segs) {
		d.formOld = strings.TrimSpace(segs[d.hover.SegIndex].Tag)
		return d.showForm(formRenameWork, "Rename tag everywhere today", d.formOld)
	}
	if d.hoverGap != nil {
		anchor := (d.hoverGap.StartMS + d.hoverGap.EndMS) / 2
		if idx := timeline.FindBreakLog(st.BreakLogs, d.hoverGap.StartMS, d.hoverGap.EndMS, anchor); idx >= 0 {
			d.formOld = strings.TrimSpace(st.BreakLogs[idx].Tag)
			return d.showForm(formRenameBreak, "Rename break tag today", d.formOld)
		}
	}
	return d, statusCmd("Hover a tagged slice to rename it")
}

func (d dialModel) showForm(kind formKind, title, initial string) (dialModel, tea.Cmd) {
	*d.formValue = initial
	d.formKind = kind
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(d.formValue),
		),
	).WithShowHelp(false).WithShowErrors(false)
	d.formActive = true
	return d, d.form.Init()
}

func (d dialModel) updateForm(msg tea.Msg) (dialModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.applyForm(strings.TrimSpace(*d.formValue))
		d.form = nil
		return d, nil
	}
	return d, cmd
}

func (d *dialModel) applyForm(value string) {
	switch d.formKind {
	case formTagSession:
		d.trk.TagSession(d.formTarget, value)
	case formTagGap:
		d.trk.TagGap(d.formGap, d.formAnchor, value)
	case formRenameWork:
		d.trk.RenameWorkTag(d.formOld, value)
	case formRenameBreak:
		d.trk.RenameBreakTag(d.formOld, value)
	case formAddTodo:
		d.trk.AddTodo(value)
	}
	d.formKind = formNone
}

// --- todos ---

func (d dialModel) toggleTodo() (dialModel, tea.Cmd) {
	todos := d.trk.State().Todos
	if d.todoCursor < 0 || d.todoCursor >= len(todos) {
		return d, nil
	}
	td := todos[d.todoCursor]
	d.trk.ToggleTodo(td.ID, !td.Done)
	return d, nil
}

func (d dialModel) deleteTodo() (dialModel, tea.Cmd) {
	todos := d.trk.State().Todos
	if d.todoCursor < 0 || d.todoCursor >= len(todos) {
		return d, nil
	}
	d.trk.DeleteTodo(todos[d.todoCursor].ID)
	if d.todoCursor >= len(d.trk.State().Todos) && d.todoCursor > 0 {
		d.todoCursor--
	}
	return d, statusCmd("Todo removed")
}

func (d dialModel) randomizeHoverColor() (dialModel, tea.Cmd) {
	st := d.trk.State()
	win := d.trk.Window()
	segs := timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)
	if d.hover.SegIndex < 0 || d.hover.SegIndex >= len(segs) {
		return d, nil
	}
	seg := segs[d.hover.SegIndex]
	key := tagcolor.NormalizeKey(seg.Tag)
	if key == "" {
		key = tagcolor.SessionFallbackKey(sessionStart(st.Sessions, seg.SessionIndex))
	}
	d.trk.RandomizeTagColor(key, d.accent)
	return d, statusCmd("Recolored " + displayTag(seg.Tag))
}

// --- view ---

func (d dialModel) view() string {
	if d.width < 40 {
		return "Terminal too small"
	}

	if d.formActive && d.form != nil {
		return panelStyle.Width(d.width - 4).Render(d.form.View())
	}

	dialStr := d.renderDial()
	hoverLine := d.renderHoverLine()
	left := lipgloss.JoinVertical(lipgloss.Left, dialStr, hoverLine)

	panelW := d.width - d.geom.w - 3
	if panelW < 24 {
		panelW = 24
	}
	right := lipgloss.JoinVertical(lipgloss.Left,
		d.renderTagPanel(panelW),
		d.renderBreakPanel(panelW),
		d.renderBadges(panelW),
		d.renderTodos(panelW),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

type cell struct {
	s string
}

func (d dialModel) renderDial() string {
	st := d.trk.State()
	win := d.trk.Window()
	g := d.geom
	pal := paletteFor(st.Theme)

	preview := d.editor.PreviewSessions(st.Sessions)
	segs := timeline.SegmentsForDay(preview, win.Start, win.End, win.Now)

	colors := make([]lipgloss.Color, len(segs))
	for i, seg := range segs {
		fallback := tagcolor.SessionFallbackKey(sessionStart(preview, seg.SessionIndex))
		c := d.trk.Colors().ColorForTag(seg.Tag, fallback, d.accent, st.TagColors)
		colors[i] = lipgloss.Color(tagcolor.Hex(c))
	}

	rInner := g.r * 0.62
	clampEnd := win.End
	if win.Now < clampEnd {
		clampEnd = win.Now
	}
	nowTheta := dial.AngleFromTime(win.Now, win.Start)
	markerAng := 1.4 / g.r

	grid := make([][]cell, g.h)
	for row := 0; row < g.h; row++ {
		grid[row] = make([]cell, g.w)
		for col := 0; col < g.w; col++ {
			ux := float64(col) + 0.5
			uy := (float64(row) + 0.5) * 2
			dist := math.Hypot(ux-g.cx, uy-g.cy)
			if dist > g.r || dist < rInner {
				grid[row][col] = cell{s: " "}
				continue
			}
			theta := dial.AngleFromPoint(ux, uy, g.cx, g.cy)
			if win.Now < win.End && angDiff(theta, nowTheta) < markerAng {
				grid[row][col] = cell{s: lipgloss.NewStyle().Foreground(pal.marker).Render("█")}
				continue
			}
			t := dial.TimeFromAngle(theta, win.Start)
			if si := segmentAt(segs, t); si >= 0 {
				grid[row][col] = cell{s: lipgloss.NewStyle().Foreground(colors[si]).Render("█")}
			} else if t <= clampEnd {
				grid[row][col] = cell{s: lipgloss.NewStyle().Foreground(pal.gap).Render("▒")}
			} else {
				grid[row][col] = cell{s: lipgloss.NewStyle().Foreground(pal.future).Render("░")}
			}
		}
	}

	d.overlayHourMarks(grid)
	d.overlayCenter(grid, rInner)

	rows := make([]string, g.h)
	for row := 0; row < g.h; row++ {
		var b strings.Builder
		for col := 0; col < g.w; col++ {
			b.WriteString(grid[row][col].s)
		}
		rows[row] = b.String()
	}
	return strings.Join(rows, "\n")
}

// overlayHourMarks labels midnight, 06, 12 and 18 just inside the ring.
func (d dialModel) overlayHourMarks(grid [][]cell) {
	g := d.geom
	marks := []struct {
		theta float64
		label string
	}{
		{0, "0"},
		{math.Pi / 2, "6"},
		{math.Pi, "12"},
		{3 * math.Pi / 2, "18"},
	}
	for _, m := range marks {
		rad := g.r + 0.8
		ux := g.cx + math.Sin(m.theta)*rad
		uy := g.cy - math.Cos(m.theta)*rad
		col := int(ux)
		row := int(uy / 2)
		for i, ch := range m.label {
			c := col + i
			if row >= 0 && row < g.h && c >= 0 && c < g.w {
				grid[row][c] = cell{s: mutedStyle.Render(string(ch))}
			}
		}
	}
}

// overlayCenter writes the live totals into the dial's hole.
func (d dialModel) overlayCenter(grid [][]cell, rInner float64) {
	st := d.trk.State()
	win := d.trk.Window()
	worked := timeline.WorkedMS(st.Sessions, win.Start, win.End, win.Now)

	var lines []struct {
		text  string
		style lipgloss.Style
	}
	if w := welcomeText(st, win); w != "" {
		lines = append(lines, struct {
			text  string
			style lipgloss.Style
		}{w, titleStyle})
	} else if st.Running() {
		last := st.LastSession()
		lines = append(lines, struct {
			text  string
			style lipgloss.Style
		}{formatMSPrecise(win.Now - last.Start), successStyle.Bold(true)})
	} else {
		lines = append(lines, struct {
			text  string
			style lipgloss.Style
		}{formatMS(worked), titleStyle})
	}

	goalMS := int64(st.GoalMinutes) * 60000
	if goalMS > 0 {
		pct := int(float64(worked) / float64(goalMS) * 100)
		goalStyle := mutedStyle
		if worked >= goalMS {
			goalStyle = successStyle
		}
		lines = append(lines, struct {
			text  string
			style lipgloss.Style
		}{fmt.Sprintf("goal %s %d%%", formatMS(goalMS), pct), goalStyle})
	}
	if st.Streak.Current > 0 {
		lines = append(lines, struct {
			text  string
			style lipgloss.Style
		}{fmt.Sprintf("streak %d", st.Streak.Current), warningStyle})
	}

	g := d.geom
	startRow := g.h/2 - len(lines)/2
	maxLen := int(rInner*2) - 2
	for i, ln := range lines {
		text := ln.text
		if len(text) > maxLen && maxLen > 0 {
			text = text[:maxLen]
		}
		row := startRow + i
		col := g.w/2 - len(text)/2
		if row < 0 || row >= g.h {
			continue
		}
		for j, ch := range text {
			c := col + j
			if c >= 0 && c < g.w {
				grid[row][c] = cell{s: ln.style.Render(string(ch))}
			}
		}
	}
}

func (d dialModel) renderHoverLine() string {
	if d.confirmClear {
		return errorStyle.Render(" Clear today's sessions? press y to confirm")
	}
	st := d.trk.State()
	win := d.trk.Window()
	if d.editor.Dragging() {
		return warningStyle.Render(" Adjusting session, release to apply")
	}
	if d.hover.SegIndex >= 0 {
		segs := timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)
		if d.hover.SegIndex < len(segs) {
			seg := segs[d.hover.SegIndex]
			edge := ""
			switch d.hover.NearEdge {
			case dial.EdgeStart:
				edge = " (drag start)"
			case dial.EdgeEnd:
				edge = " (drag end)"
			}
			return mutedStyle.Render(fmt.Sprintf(" %s  %s–%s  %s%s",
				displayTag(seg.Tag), formatClock(seg.StartMS), formatClock(seg.EndMS), formatMS(seg.Duration()), edge))
		}
	}
	if d.hoverGap != nil {
		g := *d.hoverGap
		tag := "untagged break"
		anchor := (g.StartMS + g.EndMS) / 2
		if idx := timeline.FindBreakLog(st.BreakLogs, g.StartMS, g.EndMS, anchor); idx >= 0 && st.BreakLogs[idx].Tag != "" {
			tag = st.BreakLogs[idx].Tag
		}
		return mutedStyle.Render(fmt.Sprintf(" %s  %s–%s  %s",
			tag, formatClock(g.StartMS), formatClock(g.EndMS), formatMS(g.EndMS-g.StartMS)))
	}
	return mutedStyle.Render(" click dial to start/stop, drag edges to adjust")
}

// tagStat folds one tag's slices for the sort modes.
type tagStat struct {
	tag     string
	totalMS int64
	lastEnd int64
}

func (d dialModel) renderTagPanel(w int) string {
	st := d.trk.State()
	win := d.trk.Window()
	segs := timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)

	stats := map[string]*tagStat{}
	for _, seg := range segs {
		key := displayTag(seg.Tag)
		s := stats[key]
		if s == nil {
			s = &tagStat{tag: seg.Tag}
			stats[key] = s
		}
		s.totalMS += seg.Duration()
		if seg.EndMS > s.lastEnd {
			s.lastEnd = seg.EndMS
		}
	}
	list := sortStats(stats, st.TagSortWork)

	title := titleStyle.Render("Today") + "  " + highlightStyle.Render(formatMS(timeline.WorkedMS(st.Sessions, win.Start, win.End, win.Now)))
	rows := []string{title}
	if len(list) == 0 {
		rows = append(rows, mutedStyle.Render("No sessions yet"))
	}
	for _, s := range list {
		fallback := ""
		c := d.trk.Colors().ColorForTag(s.tag, fallback, d.accent, st.TagColors)
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(tagcolor.Hex(c))).Render("●")
		rows = append(rows, fmt.Sprintf("%s %-18s %s", dot, truncate(displayTag(s.tag), 18), formatMS(s.totalMS)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dialModel) renderBreakPanel(w int) string {
	st := d.trk.State()
	win := d.trk.Window()

	stats := map[string]*tagStat{}
	for _, b := range st.BreakLogs {
		anchor := b.TagTs
		if anchor == 0 {
			anchor = b.Start
		}
		if anchor < win.Start || anchor >= win.End || b.Tag == "" {
			continue
		}
		s := stats[b.Tag]
		if s == nil {
			s = &tagStat{tag: b.Tag}
			stats[b.Tag] = s
		}
		s.totalMS += b.End - b.Start
		if b.End > s.lastEnd {
			s.lastEnd = b.End
		}
	}
	list := sortStats(stats, st.TagSortBreak)
	if len(list) == 0 {
		return ""
	}

	rows := []string{titleStyle.Render("Breaks")}
	for _, s := range list {
		c := d.trk.Colors().ColorForTag(s.tag, "", d.accent, st.TagColors)
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(tagcolor.Hex(c))).Render("○")
		rows = append(rows, fmt.Sprintf("%s %-18s %s", dot, truncate(s.tag, 18), formatMS(s.totalMS)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

var badgeLabels = map[state.BadgeID]string{
	state.BadgeEarlyBird:    "early bird",
	state.BadgeSolidHour:    "solid hour",
	state.BadgeDeepWork:     "deep work",
	state.BadgeGoalComplete: "goal",
}

func (d dialModel) renderBadges(w int) string {
	st := d.trk.State()
	today := d.trk.TodayKey()
	var items []string
	for _, b := range st.Badges {
		if b.Date != today {
			continue
		}
		if label, ok := badgeLabels[b.ID]; ok {
			items = append(items, successStyle.Render("★ "+label))
		}
	}
	if len(items) == 0 {
		return ""
	}
	return panelStyle.Width(w).Render(strings.Join(items, "  "))
}

func (d dialModel) renderTodos(w int) string {
	st := d.trk.State()
	rows := []string{titleStyle.Render("Todos")}
	if len(st.Todos) == 0 {
		rows = append(rows, mutedStyle.Render("n: add a todo"))
	}
	for i, td := range st.Todos {
		mark := "☐"
		style := normalItemStyle
		if td.Done {
			mark = "☑"
			style = mutedStyle
		}
		cursor := "  "
		if i == d.todoCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, mark, truncate(td.Text, w-8))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// --- small helpers ---

func sortStats(stats map[string]*tagStat, mode state.SortMode) []*tagStat {
	list := make([]*tagStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch mode {
		case state.SortTimeAsc:
			if a.totalMS != b.totalMS {
				return a.totalMS < b.totalMS
			}
		case state.SortRecentDesc:
			if a.lastEnd != b.lastEnd {
				return a.lastEnd > b.lastEnd
			}
		case state.SortRecentAsc:
			if a.lastEnd != b.lastEnd {
				return a.lastEnd < b.lastEnd
			}
		default: // time-desc
			if a.totalMS != b.totalMS {
				return a.totalMS > b.totalMS
			}
		}
		return a.tag < b.tag
	})
	return list
}

func segmentAt(segs []timeline.Segment, t int64) int {
	for i, seg := range segs {
		if t >= seg.StartMS && t < seg.EndMS {
			return i
		}
	}
	return -1
}

func sessionStart(sessions []state.Session, idx int) int64 {
	if idx < 0 || idx >= len(sessions) {
		return 0
	}
	return sessions[idx].Start
}

func lastTodaySessionIndex(sessions []state.Session, win timeline.DayWindow) int {
	best := -1
	for i, s := range sessions {
		if s.EffectiveEnd(win.Now) > win.Start && s.Start < win.End {
			best = i
		}
	}
	return best
}

// welcomeText greets until the day's first work appears; returning someone
// with history gets a different greeting than a brand-new document.
func welcomeText(st *state.State, win timeline.DayWindow) string {
	if len(timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)) > 0 {
		return ""
	}
	for _, s := range st.Sessions {
		if s.EffectiveEnd(win.Now) < win.Start {
			return "WELCOME BACK!"
		}
	}
	return "WELCOME!"
}

func displayTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "untagged"
	}
	return tag
}

func truncate(s string, n int) string {
	if n <= 1 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func angDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
