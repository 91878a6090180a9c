package tui

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/tagcolor"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
	"github.com/jakobkreft/CakeTimer/internal/tracker"
)

func TestFormatMS(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0m"},
		{-5000, "0m"},
		{59 * 60000, "59m"},
		{60 * 60000, "1h 00m"},
		{(2*60 + 5) * 60000, "2h 05m"},
	}
	for _, tt := range tests {
		if got := formatMS(tt.ms); got != tt.want {
			t.Errorf("formatMS(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatMSPrecise(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00"},
		{61500, "00:01:01"},
		{3661000, "01:01:01"},
		{-1, "00:00:00"},
	}
	for _, tt := range tests {
		if got := formatMSPrecise(tt.ms); got != tt.want {
			t.Errorf("formatMSPrecise(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatHoursMS(t *testing.T) {
	if got := formatHoursMS(5400000); got != "1.5h" {
		t.Fatalf("formatHoursMS = %q", got)
	}
}

func TestSortStats(t *testing.T) {
	stats := map[string]*tagStat{
		"a": {tag: "a", totalMS: 100, lastEnd: 30},
		"b": {tag: "b", totalMS: 300, lastEnd: 10},
		"c": {tag: "c", totalMS: 200, lastEnd: 20},
	}

	order := func(list []*tagStat) string {
		out := ""
		for _, s := range list {
			out += s.tag
		}
		return out
	}

	if got := order(sortStats(stats, state.SortTimeDesc)); got != "bca" {
		t.Errorf("time-desc = %q", got)
	}
	if got := order(sortStats(stats, state.SortTimeAsc)); got != "acb" {
		t.Errorf("time-asc = %q", got)
	}
	if got := order(sortStats(stats, state.SortRecentDesc)); got != "acb" {
		t.Errorf("recent-desc = %q", got)
	}
	if got := order(sortStats(stats, state.SortRecentAsc)); got != "bca" {
		t.Errorf("recent-asc = %q", got)
	}
}

func TestSortStatsTieBreaksByName(t *testing.T) {
	stats := map[string]*tagStat{
		"b": {tag: "b", totalMS: 100},
		"a": {tag: "a", totalMS: 100},
	}
	list := sortStats(stats, state.SortTimeDesc)
	if list[0].tag != "a" || list[1].tag != "b" {
		t.Fatalf("tie order = %q, %q", list[0].tag, list[1].tag)
	}
}

func TestSegmentAt(t *testing.T) {
	segs := []timeline.Segment{
		{StartMS: 100, EndMS: 200},
		{StartMS: 300, EndMS: 400},
	}
	if got := segmentAt(segs, 150); got != 0 {
		t.Fatalf("segmentAt(150) = %d", got)
	}
	if got := segmentAt(segs, 200); got != -1 {
		t.Fatalf("segmentAt at exclusive end = %d", got)
	}
	if got := segmentAt(segs, 350); got != 1 {
		t.Fatalf("segmentAt(350) = %d", got)
	}
	if got := segmentAt(segs, 250); got != -1 {
		t.Fatalf("segmentAt in gap = %d", got)
	}
}

func TestLastTodaySessionIndex(t *testing.T) {
	win := timeline.DayWindow{Start: 1000, End: 100000, Now: 50000}
	end1, end2 := int64(900), int64(5000)
	sessions := []state.Session{
		{Start: 500, End: &end1},  // yesterday
		{Start: 2000, End: &end2}, // today
		{Start: 200000},           // tomorrow-ish, outside window
	}
	if got := lastTodaySessionIndex(sessions, win); got != 1 {
		t.Fatalf("index = %d", got)
	}
	if got := lastTodaySessionIndex(nil, win); got != -1 {
		t.Fatalf("empty index = %d", got)
	}
}

func TestDisplayTag(t *testing.T) {
	if got := displayTag("  "); got != "untagged" {
		t.Fatalf("blank = %q", got)
	}
	if got := displayTag(" writing "); got != "writing" {
		t.Fatalf("trimmed = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("no-op = %q", got)
	}
	if got := truncate("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("truncated = %q", got)
	}
	if got := truncate("abcdefgh", 1); got != "abcdefgh" {
		t.Fatalf("tiny width = %q", got)
	}
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDial() (dialModel, *testClock) {
	c := &testClock{t: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)}
	trk := tracker.New(state.Default(), c.now, nil)
	d := newDialModel(trk, tagcolor.ResolveAccent(tagcolor.DefaultAccent))
	d.setSize(120, 40, 2, 0)
	return d, c
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestArrowKeysAdjustGoal(t *testing.T) {
	d, _ := newTestDial()

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyUp})
	if got := d.trk.State().GoalMinutes; got != 270 {
		t.Fatalf("goal after up = %d, want 270", got)
	}
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	if got := d.trk.State().GoalMinutes; got != 210 {
		t.Fatalf("goal after two downs = %d, want 210", got)
	}

	// +/- keep working as aliases.
	d, _ = d.update(keyPress('+'))
	if got := d.trk.State().GoalMinutes; got != 240 {
		t.Fatalf("goal after + = %d, want 240", got)
	}
	d, _ = d.update(keyPress('-'))
	if got := d.trk.State().GoalMinutes; got != 210 {
		t.Fatalf("goal after - = %d, want 210", got)
	}
}

func TestSpaceTogglesSession(t *testing.T) {
	d, c := newTestDial()

	d, _ = d.update(keyPress(' '))
	if !d.trk.Running() {
		t.Fatal("space did not start a session")
	}

	c.advance(30 * time.Minute)
	d, _ = d.update(keyPress(' '))
	if d.trk.Running() {
		t.Fatal("space did not stop the session")
	}
	if len(d.trk.State().Sessions) != 1 {
		t.Fatalf("sessions = %+v", d.trk.State().Sessions)
	}
}

func TestThemeKeyToggles(t *testing.T) {
	d, _ := newTestDial()
	d, _ = d.update(keyPress('d'))
	if got := d.trk.State().Theme; got != "dark" {
		t.Fatalf("theme = %q", got)
	}
	d, _ = d.update(keyPress('d'))
	if got := d.trk.State().Theme; got != "light" {
		t.Fatalf("theme = %q", got)
	}
}

func TestSortKeysCycle(t *testing.T) {
	d, _ := newTestDial()
	d, _ = d.update(keyPress('w'))
	if got := d.trk.State().TagSortWork; got != state.SortTimeAsc {
		t.Fatalf("work sort = %q", got)
	}
	d, _ = d.update(keyPress('b'))
	if got := d.trk.State().TagSortBreak; got != state.SortTimeAsc {
		t.Fatalf("break sort = %q", got)
	}
}

func TestTodoCursorKeys(t *testing.T) {
	d, _ := newTestDial()
	d.trk.AddTodo("one")
	d.trk.AddTodo("two")

	d, _ = d.update(keyPress('j'))
	if d.todoCursor != 1 {
		t.Fatalf("cursor after j = %d", d.todoCursor)
	}
	d, _ = d.update(keyPress('k'))
	if d.todoCursor != 0 {
		t.Fatalf("cursor after k = %d", d.todoCursor)
	}

	d, _ = d.update(keyPress('x'))
	if len(d.trk.State().Todos) != 1 || d.trk.State().Todos[0].Text != "two" {
		t.Fatalf("todos after x = %+v", d.trk.State().Todos)
	}
}

func TestTagKeyOpensForm(t *testing.T) {
	d, c := newTestDial()
	d, _ = d.update(keyPress(' '))
	c.advance(30 * time.Minute)
	d, _ = d.update(keyPress(' '))

	d, _ = d.update(keyPress('t'))
	if !d.formActive || d.formKind != formTagSession {
		t.Fatalf("formActive=%v formKind=%v", d.formActive, d.formKind)
	}
}

func TestIgnoreKeyTogglesStreakDay(t *testing.T) {
	d, _ := newTestDial()
	d, _ = d.update(keyPress('i'))
	if !d.trk.State().IgnoresDay(d.trk.TodayKey()) {
		t.Fatal("i did not ignore today")
	}
	d, _ = d.update(keyPress('i'))
	if d.trk.State().IgnoresDay(d.trk.TodayKey()) {
		t.Fatal("second i did not unignore today")
	}
}

func TestMouseClickTogglesSession(t *testing.T) {
	d, c := newTestDial()
	g := d.geom
	x := g.left + int(g.cx)
	y := g.top + int(g.cy/2)

	d, _ = d.update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	d, _ = d.update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if !d.trk.Running() {
		t.Fatal("click inside the dial did not start a session")
	}

	c.advance(30 * time.Minute)
	d, _ = d.update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	d, _ = d.update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if d.trk.Running() {
		t.Fatal("second click did not stop the session")
	}
}

func TestWelcomeText(t *testing.T) {
	d, c := newTestDial()
	st := d.trk.State()
	win := d.trk.Window()

	if got := welcomeText(st, win); got != "WELCOME!" {
		t.Fatalf("fresh document = %q", got)
	}

	yesterdayEnd := win.Start - 3600000
	st.Sessions = []state.Session{{Start: yesterdayEnd - 3600000, End: &yesterdayEnd}}
	if got := welcomeText(st, win); got != "WELCOME BACK!" {
		t.Fatalf("with history = %q", got)
	}

	d, _ = d.update(keyPress(' '))
	c.advance(time.Minute)
	if got := welcomeText(st, d.trk.Window()); got != "" {
		t.Fatalf("with work today = %q", got)
	}
}

func TestAngDiffWraps(t *testing.T) {
	// 23:50 and 00:10 are twenty minutes apart around the top of the dial.
	a := 2 * math.Pi * 1430 / 1440
	b := 2 * math.Pi * 10 / 1440
	want := 2 * math.Pi * 20 / 1440
	if got := angDiff(a, b); math.Abs(got-want) > 1e-9 {
		t.Fatalf("angDiff = %f, want %f", got, want)
	}
}
