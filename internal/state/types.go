// Package state defines the persisted document model: sessions, tagged
// breaks, streak cache, badges, tag colors, todos and sync metadata. The
// whole document is a single JSON blob; Hydrate restores it tolerantly so a
// malformed or partial blob degrades to typed defaults instead of failing.
package state

import "time"

// Version is the current document schema version. Hydrate always stamps it.
const Version = 4

const (
	// MinSessionMS is the minimum duration a session must reach on stop;
	// anything shorter is discarded rather than persisted.
	MinSessionMS = int64(15000)

	// DeleteThreshMS is the segment duration at or below which a drag edit
	// deletes the day's slice of the session instead of committing.
	DeleteThreshMS = int64(5000)

	// DefaultGoalMinutes is the daily goal for a fresh document.
	DefaultGoalMinutes = 240

	// BadgeCap is the maximum number of badge records kept across all days.
	BadgeCap = 60
)

// Session is one contiguous interval of tracked work. A nil End means the
// session is currently running; at most one session may be open and it must
// be the chronologically last one.
type Session struct {
	Start int64  `json:"start"`
	End   *int64 `json:"end"`
	Tag   string `json:"tag,omitempty"`
}

// Running reports whether the session is still open.
func (s Session) Running() bool { return s.End == nil }

// EffectiveEnd returns the session end, or now for a running session.
func (s Session) EffectiveEnd(now int64) int64 {
	if s.End == nil {
		return now
	}
	return *s.End
}

// BreakLog is a user-tagged gap between two sessions. TagTs anchors the tag
// to a moment inside the gap so realignment can re-locate it after the
// neighboring sessions shift.
type BreakLog struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Tag   string `json:"tag"`
	TagTs int64  `json:"tagTs"`
}

// Streak is a display cache; it is always re-derivable from the session
// history plus the ignored-day set.
type Streak struct {
	Current int    `json:"current"`
	Best    int    `json:"best"`
	LastDay string `json:"lastDay,omitempty"`
}

// BadgeID enumerates the per-day achievements.
type BadgeID string

const (
	BadgeSolidHour    BadgeID = "solid-hour"
	BadgeEarlyBird    BadgeID = "early-bird"
	BadgeDeepWork     BadgeID = "deep-work"
	BadgeGoalComplete BadgeID = "goal-complete"
)

// Badge records one achievement earned on one day.
type Badge struct {
	ID   BadgeID `json:"id"`
	Date string  `json:"date"`
}

// Todo belongs to the companion task list.
type Todo struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Done        bool   `json:"done"`
	Created     int64  `json:"created"`
	CompletedAt *int64 `json:"completedAt,omitempty"`
}

// Meta carries the last-writer-wins merge metadata.
type Meta struct {
	UpdatedAt int64  `json:"updatedAt"`
	ClientID  string `json:"clientId"`
}

// SortMode orders the tag panels.
type SortMode string

const (
	SortTimeDesc   SortMode = "time-desc"
	SortTimeAsc    SortMode = "time-asc"
	SortRecentDesc SortMode = "recent-desc"
	SortRecentAsc  SortMode = "recent-asc"
)

// SortModes lists the cycle order used by the panel toggles.
var SortModes = []SortMode{SortTimeDesc, SortTimeAsc, SortRecentDesc, SortRecentAsc}

func (m SortMode) Valid() bool {
	switch m {
	case SortTimeDesc, SortTimeAsc, SortRecentDesc, SortRecentAsc:
		return true
	}
	return false
}

// Next returns the following sort mode in the cycle.
func (m SortMode) Next() SortMode {
	for i, s := range SortModes {
		if s == m {
			return SortModes[(i+1)%len(SortModes)]
		}
	}
	return SortTimeDesc
}

// State is the whole persisted document.
type State struct {
	Version      int               `json:"version"`
	Sessions     []Session         `json:"sessions"`
	BreakLogs    []BreakLog        `json:"breakLogs"`
	GoalMinutes  int               `json:"goalMinutes"`
	Theme        string            `json:"theme"`
	Streak       Streak            `json:"streak"`
	Badges       []Badge           `json:"badges"`
	TagColors    map[string]string `json:"tagColors"`
	Todos        []Todo            `json:"todos"`
	IgnoredDays  []string          `json:"ignoredDays"`
	Meta         Meta              `json:"meta"`
	TagSortWork  SortMode          `json:"tagSortWork"`
	TagSortBreak SortMode          `json:"tagSortBreak"`
}

// Default returns a fresh document with typed defaults.
func Default() *State {
	return &State{
		Version:      Version,
		Sessions:     []Session{},
		BreakLogs:    []BreakLog{},
		GoalMinutes:  DefaultGoalMinutes,
		Theme:        "light",
		Badges:       []Badge{},
		TagColors:    map[string]string{},
		Todos:        []Todo{},
		IgnoredDays:  []string{},
		TagSortWork:  SortTimeDesc,
		TagSortBreak: SortTimeDesc,
	}
}

// Running reports whether a session is currently open. The invariant that an
// open session is last in the list is maintained by the tracker commands.
func (s *State) Running() bool {
	n := len(s.Sessions)
	return n > 0 && s.Sessions[n-1].End == nil
}

// LastSession returns a pointer to the chronologically last session, or nil.
func (s *State) LastSession() *Session {
	if len(s.Sessions) == 0 {
		return nil
	}
	return &s.Sessions[len(s.Sessions)-1]
}

// IgnoresDay reports whether the given day key is in the ignored set.
func (s *State) IgnoresDay(key string) bool {
	for _, d := range s.IgnoredDays {
		if d == key {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, used by the drag editor for previews.
func (s *State) Clone() *State {
	out := *s
	out.Sessions = append([]Session(nil), s.Sessions...)
	for i, sess := range out.Sessions {
		if sess.End != nil {
			e := *sess.End
			out.Sessions[i].End = &e
		}
	}
	out.BreakLogs = append([]BreakLog(nil), s.BreakLogs...)
	out.Badges = append([]Badge(nil), s.Badges...)
	out.Todos = append([]Todo(nil), s.Todos...)
	for i, td := range out.Todos {
		if td.CompletedAt != nil {
			c := *td.CompletedAt
			out.Todos[i].CompletedAt = &c
		}
	}
	out.IgnoredDays = append([]string(nil), s.IgnoredDays...)
	out.TagColors = make(map[string]string, len(s.TagColors))
	for k, v := range s.TagColors {
		out.TagColors[k] = v
	}
	return &out
}

// NowMS is the document's native clock unit.
func NowMS() int64 { return time.Now().UnixMilli() }
