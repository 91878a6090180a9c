// Package timeline turns the sparse session list into a gapless per-day
// picture of work and break. Segments are sessions clipped to one calendar
// day; gaps are their complement up to min(now, day end). Segments and gaps
// always partition the elapsed part of the day exactly, with no overlap and
// no double counting, and the rest of the app relies on that partition for
// tag totals, streak qualification and coloring.
package timeline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jakobkreft/CakeTimer/internal/state"
)

// breakMatchSlopMS is the tolerance for matching a stored break log to a
// recomputed gap when the tag anchor itself falls outside every gap.
// Heuristic, not load bearing.
const breakMatchSlopMS = int64(1000)

// Segment is one session's portion of a single day.
type Segment struct {
	StartMS      int64
	EndMS        int64
	SessionIndex int
	Tag          string
}

// Duration returns the segment length in milliseconds.
func (s Segment) Duration() int64 { return s.EndMS - s.StartMS }

// Gap is an untracked interval between segments.
type Gap struct {
	StartMS int64
	EndMS   int64
}

// Contains reports whether t falls inside the gap, boundaries included.
func (g Gap) Contains(t int64) bool { return t >= g.StartMS && t <= g.EndMS }

// SegmentsForDay clips every session to the [dayStart, dayEnd) window and
// returns the non-empty slices ordered by start time. An open session's end
// is treated as now. Overlapping sessions stay overlapping; segmentation
// clips, it never merges across sessions.
func SegmentsForDay(sessions []state.Session, dayStart, dayEnd, now int64) []Segment {
	var segs []Segment
	for i, sess := range sessions {
		s, e := sess.Start, sess.EffectiveEnd(now)
		if e <= dayStart || s >= dayEnd {
			continue
		}
		a, b := max64(s, dayStart), min64(e, dayEnd)
		if b > a {
			segs = append(segs, Segment{StartMS: a, EndMS: b, SessionIndex: i, Tag: sess.Tag})
		}
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].StartMS < segs[j].StartMS })
	return segs
}

// GapsForDay walks the ordered segments left to right from dayStart and
// emits the complement up to min(now, dayEnd).
func GapsForDay(dayStart, dayEnd, now int64, segs []Segment) []Gap {
	clampEnd := min64(now, dayEnd)
	var gaps []Gap
	cursor := dayStart
	for _, seg := range segs {
		if seg.StartMS > cursor {
			gaps = append(gaps, Gap{StartMS: cursor, EndMS: min64(seg.StartMS, clampEnd)})
		}
		cursor = max64(cursor, seg.EndMS)
		if cursor >= clampEnd {
			break
		}
	}
	if cursor < clampEnd {
		gaps = append(gaps, Gap{StartMS: cursor, EndMS: clampEnd})
	}
	return gaps
}

// FindGap returns the gap containing t, if any.
func FindGap(gaps []Gap, t int64) (Gap, bool) {
	for _, g := range gaps {
		if g.Contains(t) {
			return g, true
		}
	}
	return Gap{}, false
}

// WorkedMS sums each session's overlap with the day window. Unlike summing
// segments this counts overlapping sessions twice, matching the worked-time
// readout the dial shows.
func WorkedMS(sessions []state.Session, dayStart, dayEnd, now int64) int64 {
	var total int64
	for _, sess := range sessions {
		a := max64(sess.Start, dayStart)
		b := min64(sess.EffectiveEnd(now), dayEnd)
		if b > a {
			total += b - a
		}
	}
	return total
}

// DeleteDaySlice removes only the given day's slice of a session, splitting
// the session when it extends past either day boundary. Slices entirely
// inside the day delete the whole session.
func DeleteDaySlice(sessions []state.Session, idx int, dayStart, dayEnd, now int64) []state.Session {
	if idx < 0 || idx >= len(sessions) {
		return sessions
	}
	sess := sessions[idx]
	s, e := sess.Start, sess.EffectiveEnd(now)
	switch {
	case e <= dayStart || s >= dayEnd:
		return sessions
	case s >= dayStart && e <= dayEnd:
		return append(sessions[:idx:idx], sessions[idx+1:]...)
	case s < dayStart && e <= dayEnd:
		end := dayStart
		sessions[idx].End = &end
		return sessions
	case s >= dayStart:
		sessions[idx].Start = dayEnd
		return sessions
	default:
		// Spans the whole day: truncate the left part and append the right.
		left := dayStart
		sessions[idx].End = &left
		right := e
		return append(sessions, state.Session{Start: dayEnd, End: &right, Tag: sess.Tag})
	}
}

// ClearDay removes every session slice inside the day window, keeping the
// parts that spill into neighboring days, and drops the day's break logs.
func ClearDay(sessions []state.Session, dayStart, dayEnd, now int64) []state.Session {
	var next []state.Session
	for _, sess := range sessions {
		s, e := sess.Start, sess.EffectiveEnd(now)
		if e <= dayStart || s >= dayEnd {
			next = append(next, sess)
			continue
		}
		if s < dayStart {
			end := dayStart
			next = append(next, state.Session{Start: s, End: &end, Tag: sess.Tag})
		}
		if e > dayEnd {
			end := e
			next = append(next, state.Session{Start: dayEnd, End: &end, Tag: sess.Tag})
		}
	}
	return next
}

// FindBreakLog locates the break log covering a gap: first by tag-anchor
// membership in the gap, then by a near-match of the stored bounds around t.
func FindBreakLog(logs []state.BreakLog, gapStart, gapEnd, t int64) int {
	for i, b := range logs {
		if b.TagTs >= gapStart && b.TagTs <= gapEnd {
			return i
		}
	}
	for i, b := range logs {
		if b.Start <= t && b.End >= t &&
			b.Start >= gapStart-breakMatchSlopMS && b.End <= gapEnd+breakMatchSlopMS {
			return i
		}
	}
	return -1
}

// RealignBreakLogs re-anchors today's tagged breaks to the current gap
// layout. A log whose anchor still falls inside a gap is stretched to that
// gap's bounds; a log whose gap disappeared is dropped. Logs outside the day
// window are left alone. Returns the updated list and whether it changed.
func RealignBreakLogs(logs []state.BreakLog, gaps []Gap, dayStart, dayEnd, now int64) ([]state.BreakLog, bool) {
	clampEnd := min64(now, dayEnd)
	changed := false
	out := logs[:0:0]
	for _, b := range logs {
		if b.TagTs == 0 {
			b.TagTs = (b.Start + b.End + 1) / 2
			changed = true
		}
		if b.TagTs < dayStart || b.TagTs > clampEnd {
			out = append(out, b)
			continue
		}
		if g, ok := FindGap(gaps, b.TagTs); ok {
			if b.Start != g.StartMS || b.End != g.EndMS {
				b.Start, b.End = g.StartMS, g.EndMS
				changed = true
			}
			out = append(out, b)
		} else {
			changed = true
		}
	}
	return out, changed
}

var sessionNameRe = regexp.MustCompile(`(?i)^Session\s+(\d+)\b`)

// AssignDefaultNames gives today's untagged sessions a "Session N" name,
// continuing past the highest number already in use. Returns whether any
// session changed.
func AssignDefaultNames(sessions []state.Session, dayStart, dayEnd, now int64) bool {
	type ref struct {
		idx     int
		clipped int64
	}
	var today []ref
	for i, sess := range sessions {
		if sess.EffectiveEnd(now) > dayStart && sess.Start < dayEnd {
			today = append(today, ref{idx: i, clipped: max64(sess.Start, dayStart)})
		}
	}
	sort.SliceStable(today, func(i, j int) bool { return today[i].clipped < today[j].clipped })

	used := map[int]bool{}
	maxUsed := 0
	for _, r := range today {
		if m := sessionNameRe.FindStringSubmatch(sessions[r.idx].Tag); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				used[n] = true
				if n > maxUsed {
					maxUsed = n
				}
			}
		}
	}

	changed := false
	next := maxUsed
	for _, r := range today {
		if strings.TrimSpace(sessions[r.idx].Tag) != "" {
			continue
		}
		candidate := next + 1
		for used[candidate] {
			candidate++
		}
		next = candidate
		used[candidate] = true
		sessions[r.idx].Tag = fmt.Sprintf("Session %d", candidate)
		changed = true
	}
	return changed
}

// LastStopMS returns the latest session end inside the day window, or
// dayStart when no session has ended today. Drives the break timer readout.
func LastStopMS(sessions []state.Session, dayStart, dayEnd, now int64) int64 {
	last := dayStart
	for _, s := range sessions {
		if s.End == nil {
			continue
		}
		e := *s.End
		if e <= now && e >= dayStart && e <= dayEnd && e > last {
			last = e
		}
	}
	return last
}

// DayWindow bundles a day's bounds with the query time, since nearly every
// timeline call wants the triple together.
type DayWindow struct {
	Start int64
	End   int64
	Now   int64
}

// Window builds the DayWindow for the calendar day containing now.
func Window(now time.Time) DayWindow {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DayWindow{
		Start: start.UnixMilli(),
		End:   start.AddDate(0, 0, 1).UnixMilli(),
		Now:   now.UnixMilli(),
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
