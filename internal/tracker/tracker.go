// Package tracker is the owned state container for the app. All mutation of
// the document goes through named commands so the UI stays a thin shell and
// the behavior is testable without a terminal. Commands mark the container
// dirty; persisting is the caller's concern.
package tracker

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jakobkreft/CakeTimer/internal/dial"
	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/streak"
	"github.com/jakobkreft/CakeTimer/internal/tagcolor"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
	"github.com/jakobkreft/CakeTimer/internal/timeutil"
)

// Tracker wraps the document with its command set.
type Tracker struct {
	st     *state.State
	now    func() time.Time
	colors *tagcolor.Engine
	dirty  bool
	closed bool
}

func New(st *state.State, now func() time.Time, colors *tagcolor.Engine) *Tracker {
	if now == nil {
		now = time.Now
	}
	if colors == nil {
		colors = tagcolor.NewEngine()
	}
	return &Tracker{st: st, now: now, colors: colors}
}

func (t *Tracker) State() *state.State     { return t.st }
func (t *Tracker) Colors() *tagcolor.Engine { return t.colors }

// Dirty reports whether a command mutated the document since the last
// ClearDirty.
func (t *Tracker) Dirty() bool  { return t.dirty }
func (t *Tracker) ClearDirty()  { t.dirty = false }
func (t *Tracker) markDirty()   { t.dirty = true }

// Window returns today's day window at the tracker's clock.
func (t *Tracker) Window() timeline.DayWindow {
	return timeline.Window(t.now())
}

// TodayKey returns today's "YYYY-MM-DD" key.
func (t *Tracker) TodayKey() string {
	return timeutil.DayKey(t.now())
}

func (t *Tracker) Running() bool { return t.st.Running() }

// Start opens a new session. No-op while one is already running.
func (t *Tracker) Start() bool {
	if t.st.Running() {
		return false
	}
	t.st.Sessions = append(t.st.Sessions, state.Session{Start: t.now().UnixMilli()})
	t.AssignDefaultNames()
	t.RealignBreaks()
	t.markDirty()
	return true
}

// Stop closes the running session, discarding it entirely when it is
// shorter than the minimum session duration.
func (t *Tracker) Stop() bool {
	if !t.st.Running() {
		return false
	}
	last := t.st.LastSession()
	now := t.now().UnixMilli()
	if now-last.Start < state.MinSessionMS {
		t.st.Sessions = t.st.Sessions[:len(t.st.Sessions)-1]
	} else {
		end := now
		last.End = &end
	}
	t.RealignBreaks()
	t.markDirty()
	return true
}

// Toggle starts or stops depending on the current state.
func (t *Tracker) Toggle() {
	if t.st.Running() {
		t.Stop()
	} else {
		t.Start()
	}
}

// StopIfClosing closes out the running session on shutdown. Guarded so the
// pile of unload-style triggers only acts once per lifecycle.
func (t *Tracker) StopIfClosing() {
	if t.closed {
		return
	}
	t.closed = true
	if t.st.Running() {
		last := t.st.LastSession()
		now := t.now().UnixMilli()
		if now-last.Start < state.MinSessionMS {
			t.st.Sessions = t.st.Sessions[:len(t.st.Sessions)-1]
		} else {
			end := now
			last.End = &end
		}
	}
	t.markDirty()
}

// SetGoal sets the daily goal, clamped to [0, 24h].
func (t *Tracker) SetGoal(mins int) {
	if mins < 0 {
		mins = 0
	}
	if mins > 24*60 {
		mins = 24 * 60
	}
	if t.st.GoalMinutes != mins {
		t.st.GoalMinutes = mins
		t.markDirty()
	}
}

// AdjustGoal nudges the goal by delta minutes.
func (t *Tracker) AdjustGoal(delta int) {
	t.SetGoal(t.st.GoalMinutes + delta)
}

// ToggleTheme flips light/dark and invalidates derived tag colors, since
// the accent they jitter around is theme dependent.
func (t *Tracker) ToggleTheme() {
	if t.st.Theme == "dark" {
		t.st.Theme = "light"
	} else {
		t.st.Theme = "dark"
	}
	t.colors.ClearCache()
	t.markDirty()
}

// TagSession renames one session. A blank tag clears it and re-applies the
// default "Session N" naming for today.
func (t *Tracker) TagSession(sessionIndex int, tag string) {
	if sessionIndex < 0 || sessionIndex >= len(t.st.Sessions) {
		return
	}
	t.st.Sessions[sessionIndex].Tag = strings.TrimSpace(tag)
	if t.st.Sessions[sessionIndex].Tag == "" {
		t.AssignDefaultNames()
	}
	t.markDirty()
}

// TagGap tags the gap containing anchor t, creating, updating or (for a
// blank tag) deleting the break log.
func (t *Tracker) TagGap(gap timeline.Gap, anchor int64, tag string) {
	tag = strings.TrimSpace(tag)
	idx := timeline.FindBreakLog(t.st.BreakLogs, gap.StartMS, gap.EndMS, anchor)
	switch {
	case idx >= 0 && tag == "":
		t.st.BreakLogs = append(t.st.BreakLogs[:idx], t.st.BreakLogs[idx+1:]...)
	case idx >= 0:
		b := &t.st.BreakLogs[idx]
		b.Tag = tag
		if b.TagTs == 0 {
			b.TagTs = anchor
		}
		b.Start, b.End = gap.StartMS, gap.EndMS
	case tag != "":
		t.st.BreakLogs = append(t.st.BreakLogs, state.BreakLog{
			Start: gap.StartMS, End: gap.EndMS, Tag: tag, TagTs: anchor,
		})
	default:
		return
	}
	t.RealignBreaks()
	t.markDirty()
}

// RenameWorkTag renames every matching session in today's window, moving
// any color override to the new key. A blank new tag clears and re-defaults.
func (t *Tracker) RenameWorkTag(oldTag, newTag string) {
	win := t.Window()
	newTag = strings.TrimSpace(newTag)
	changed := false
	for i := range t.st.Sessions {
		sess := &t.st.Sessions[i]
		if sess.EffectiveEnd(win.Now) <= win.Start || sess.Start >= win.End {
			continue
		}
		if strings.TrimSpace(sess.Tag) == oldTag {
			sess.Tag = newTag
			changed = true
		}
	}
	if !changed {
		return
	}
	oldKey := tagcolor.NormalizeKey(oldTag)
	newKey := tagcolor.NormalizeKey(newTag)
	if oldKey != "" {
		if c, ok := t.st.TagColors[oldKey]; ok {
			delete(t.st.TagColors, oldKey)
			if newKey != "" {
				t.st.TagColors[newKey] = c
			}
		}
	}
	if newTag == "" {
		t.AssignDefaultNames()
	}
	t.colors.ClearCache()
	t.markDirty()
}

// RenameBreakTag renames today's matching break logs; a blank new tag
// removes them.
func (t *Tracker) RenameBreakTag(oldTag, newTag string) {
	win := t.Window()
	newTag = strings.TrimSpace(newTag)
	changed := false
	keep := t.st.BreakLogs[:0:0]
	for _, b := range t.st.BreakLogs {
		anchor := b.TagTs
		if anchor == 0 {
			anchor = b.Start
		}
		inToday := anchor >= win.Start && anchor < win.End
		if inToday && strings.TrimSpace(b.Tag) == oldTag {
			changed = true
			if newTag == "" {
				continue
			}
			b.Tag = newTag
		}
		keep = append(keep, b)
	}
	if changed {
		t.st.BreakLogs = keep
		t.markDirty()
	}
}

// ClearToday removes today's session slices, break logs and badges.
func (t *Tracker) ClearToday() {
	if t.st.Running() {
		t.Stop()
	}
	win := t.Window()
	t.st.Sessions = timeline.ClearDay(t.st.Sessions, win.Start, win.End, win.Now)
	keep := t.st.BreakLogs[:0:0]
	for _, b := range t.st.BreakLogs {
		if b.End <= win.Start || b.Start >= win.End {
			keep = append(keep, b)
		}
	}
	t.st.BreakLogs = keep
	streak.RemoveDayBadges(t.st, t.TodayKey())
	t.markDirty()
}

// CycleSortWork advances the work-tag panel sort mode.
func (t *Tracker) CycleSortWork() {
	t.st.TagSortWork = t.st.TagSortWork.Next()
	t.markDirty()
}

// CycleSortBreak advances the break-tag panel sort mode.
func (t *Tracker) CycleSortBreak() {
	t.st.TagSortBreak = t.st.TagSortBreak.Next()
	t.markDirty()
}

// SetTagColor records a color override; an empty color removes it.
func (t *Tracker) SetTagColor(tagKey, color string) {
	key := tagcolor.NormalizeKey(tagKey)
	if key == "" {
		return
	}
	if color == "" {
		delete(t.st.TagColors, key)
	} else {
		t.st.TagColors[key] = color
	}
	t.colors.ClearCache()
	t.markDirty()
}

// RandomizeTagColor gives the tag a fresh accent-adjacent color, avoiding
// its current one on a bounded number of retries.
func (t *Tracker) RandomizeTagColor(tagKey string, accent tagcolor.Accent) {
	key := tagcolor.NormalizeKey(tagKey)
	if key == "" {
		return
	}
	current := t.colors.ColorForTag(key, key, accent, t.st.TagColors)
	t.SetTagColor(key, t.colors.RandomDistinct(accent, current))
}

// ToggleIgnoredDay adds or removes a day from the streak-ignored set.
func (t *Tracker) ToggleIgnoredDay(dayKey string) {
	for i, d := range t.st.IgnoredDays {
		if d == dayKey {
			t.st.IgnoredDays = append(t.st.IgnoredDays[:i], t.st.IgnoredDays[i+1:]...)
			t.markDirty()
			return
		}
	}
	t.st.IgnoredDays = append(t.st.IgnoredDays, dayKey)
	t.markDirty()
}

// AssignDefaultNames applies "Session N" naming to today's untagged
// sessions.
func (t *Tracker) AssignDefaultNames() {
	win := t.Window()
	if timeline.AssignDefaultNames(t.st.Sessions, win.Start, win.End, win.Now) {
		t.markDirty()
	}
}

// RealignBreaks re-anchors today's break logs to the current gap layout.
func (t *Tracker) RealignBreaks() {
	win := t.Window()
	segs := timeline.SegmentsForDay(t.st.Sessions, win.Start, win.End, win.Now)
	gaps := timeline.GapsForDay(win.Start, win.End, win.Now, segs)
	logs, changed := timeline.RealignBreakLogs(t.st.BreakLogs, gaps, win.Start, win.End, win.Now)
	if changed {
		t.st.BreakLogs = logs
		t.markDirty()
	}
}

// ApplyEdit commits a drag-editor result.
func (t *Tracker) ApplyEdit(res dial.Result) {
	win := t.Window()
	switch res.Action {
	case dial.ActionDelete:
		t.st.Sessions = timeline.DeleteDaySlice(t.st.Sessions, res.SessionIndex, win.Start, win.End, win.Now)
	case dial.ActionCommit:
		if res.SessionIndex < 0 || res.SessionIndex >= len(t.st.Sessions) {
			return
		}
		t.st.Sessions[res.SessionIndex].Start = res.Start
		t.st.Sessions[res.SessionIndex].End = res.End
	default:
		return
	}
	t.AssignDefaultNames()
	t.RealignBreaks()
	t.markDirty()
}

// RefreshStreak recomputes the streak cache from the full history.
func (t *Tracker) RefreshStreak() {
	next := streak.Compute(t.st, t.now(), state.MinSessionMS)
	if next != t.st.Streak {
		t.st.Streak = next
		t.markDirty()
	}
}

// SyncTodayBadges recomputes today's badge set and reconciles the records.
func (t *Tracker) SyncTodayBadges() {
	win := t.Window()
	worked := timeline.WorkedMS(t.st.Sessions, win.Start, win.End, win.Now)
	eligible := streak.EligibleBadges(t.st, win, worked)
	if streak.SyncDayBadges(t.st, t.TodayKey(), eligible) {
		t.markDirty()
	}
}

// Adopt replaces the document wholesale with a newer remote copy. The color
// cache is cleared since overrides may have changed.
func (t *Tracker) Adopt(incoming *state.State) {
	*t.st = *incoming
	t.colors.ClearCache()
}

// AddTodo appends a task to the companion list.
func (t *Tracker) AddTodo(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t.st.Todos = append(t.st.Todos, state.Todo{
		ID:      uuid.NewString(),
		Text:    text,
		Created: t.now().UnixMilli(),
	})
	t.markDirty()
}

// ToggleTodo marks a task done or not done.
func (t *Tracker) ToggleTodo(id string, done bool) {
	for i := range t.st.Todos {
		if t.st.Todos[i].ID != id {
			continue
		}
		t.st.Todos[i].Done = done
		if done {
			ts := t.now().UnixMilli()
			t.st.Todos[i].CompletedAt = &ts
		} else {
			t.st.Todos[i].CompletedAt = nil
		}
		t.markDirty()
		return
	}
}

// RenameTodo updates a task's text; blank text deletes the task.
func (t *Tracker) RenameTodo(id, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		t.DeleteTodo(id)
		return
	}
	for i := range t.st.Todos {
		if t.st.Todos[i].ID == id {
			t.st.Todos[i].Text = text
			t.markDirty()
			return
		}
	}
}

// DeleteTodo removes a task.
func (t *Tracker) DeleteTodo(id string) {
	for i := range t.st.Todos {
		if t.st.Todos[i].ID == id {
			t.st.Todos = append(t.st.Todos[:i], t.st.Todos[i+1:]...)
			t.markDirty()
			return
		}
	}
}

// PruneTodos drops completed tasks from previous days. Incomplete tasks are
// always kept.
func (t *Tracker) PruneTodos() {
	win := t.Window()
	keep := t.st.Todos[:0:0]
	for _, td := range t.st.Todos {
		if !td.Done || (td.CompletedAt != nil && *td.CompletedAt >= win.Start && *td.CompletedAt < win.End) {
			keep = append(keep, td)
		}
	}
	if len(keep) != len(t.st.Todos) {
		t.st.Todos = keep
		t.markDirty()
	}
}
