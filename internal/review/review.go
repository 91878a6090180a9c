// Package review aggregates the full session history into daily, weekly and
// monthly rollups plus tag statistics for the review screen. It is a pure
// derivation over the document; nothing here mutates state.
package review

import (
	"sort"
	"time"

	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/timeutil"
)

// ClippedSession is a session restricted to one day window.
type ClippedSession struct {
	Start int64
	End   int64
	Tag   string
}

// TodoDone is a task completed on a given day.
type TodoDone struct {
	Text      string
	Timestamp int64
}

// Day is one calendar day's aggregate. Days with no work are skipped.
type Day struct {
	DayStart          int64
	Date              time.Time
	WorkMS            int64
	BreakMS           int64
	TaggedBreakMS     int64
	SessionCount      int
	LongestSessionMS  int64
	LongestSessionTag string
	FirstStart        int64
	LastEnd           int64
	Sessions          []ClippedSession
	TagDurations      map[string]int64
	BreakTagDurations map[string]int64
	TodosCompleted    []TodoDone
	GoalMet           bool
}

// Week is a Monday-anchored weekly rollup.
type Week struct {
	StartMS           int64
	EndMS             int64
	ISOWeek           int
	ISOYear           int
	WorkMS            int64
	BreakMS           int64
	SessionCount      int
	ActiveDays        int
	GoalHits          int
	TagDurations      map[string]int64
	BreakTagDurations map[string]int64
	Days              []*Day
}

// Month is a calendar-month rollup.
type Month struct {
	Key               string
	Label             string
	StartMS           int64
	WorkMS            int64
	BreakMS           int64
	SessionCount      int
	ActiveDays        int
	TagDurations      map[string]int64
	BreakTagDurations map[string]int64
}

// TagTotal is one tag's share of the overall total.
type TagTotal struct {
	Tag   string
	MS    int64
	Share float64
}

// Totals are the overall headline numbers.
type Totals struct {
	WorkMS            int64
	BreakMS           int64
	TaggedBreakMS     int64
	TodosCompleted    int
	Sessions          int
	ActiveDays        int
	GoalHits          int
	GoalMS            int64
	LongestDayMS      int64
	LongestDayDate    time.Time
	LongestSessionMS  int64
	LongestSessionTag string
}

// Data is the complete review dataset, most recent first.
type Data struct {
	Days            []*Day
	Weeks           []*Week
	Months          []*Month
	TagTotals       []TagTotal
	BreakTagTotals  []TagTotal
	Totals          Totals
	FirstActiveDate time.Time
	LastActiveDate  time.Time
}

// Build walks every day from the earliest recorded activity to today and
// folds the per-day aggregates into weekly and monthly rollups.
func Build(st *state.State, now time.Time) *Data {
	loc := now.Location()
	nowMS := now.UnixMilli()

	sessions := state.NormalizeSessions(st.Sessions)
	breakLogs := state.NormalizeBreakLogs(st.BreakLogs)

	earliest := nowMS
	for _, s := range sessions {
		if s.Start < earliest {
			earliest = s.Start
		}
	}
	for _, b := range breakLogs {
		if b.Start < earliest {
			earliest = b.Start
		}
		if b.TagTs != 0 && b.TagTs < earliest {
			earliest = b.TagTs
		}
	}
	for _, td := range st.Todos {
		if td.Done && td.CompletedAt != nil && *td.CompletedAt < earliest {
			earliest = *td.CompletedAt
		}
	}

	goalMS := int64(0)
	if st.GoalMinutes > 0 {
		goalMS = int64(st.GoalMinutes) * timeutil.MSPerMinute
	}

	data := &Data{}
	weeklyMap := map[int64]*Week{}
	monthlyMap := map[string]*Month{}
	tagTotals := map[string]int64{}
	breakTagTotals := map[string]int64{}

	firstDay := timeutil.StartOfDay(time.UnixMilli(earliest).In(loc))
	lastDay := timeutil.StartOfDay(now)
	for day := firstDay; !day.After(lastDay); day = timeutil.AddDays(day, 1) {
		d := buildDay(st, sessions, breakLogs, day, nowMS, goalMS)
		if d == nil {
			continue
		}
		data.Days = append(data.Days, d)

		t := &data.Totals
		t.WorkMS += d.WorkMS
		t.BreakMS += d.BreakMS
		t.TaggedBreakMS += d.TaggedBreakMS
		t.Sessions += d.SessionCount
		t.TodosCompleted += len(d.TodosCompleted)
		t.ActiveDays++
		if d.GoalMet {
			t.GoalHits++
		}
		if data.FirstActiveDate.IsZero() {
			data.FirstActiveDate = d.Date
		}
		data.LastActiveDate = d.Date
		if d.WorkMS > t.LongestDayMS {
			t.LongestDayMS = d.WorkMS
			t.LongestDayDate = d.Date
		}
		if d.LongestSessionMS > t.LongestSessionMS {
			t.LongestSessionMS = d.LongestSessionMS
			t.LongestSessionTag = d.LongestSessionTag
		}
		mergeDurations(tagTotals, d.TagDurations)
		mergeDurations(breakTagTotals, d.BreakTagDurations)

		weekStart := timeutil.StartOfWeek(day)
		weekKey := weekStart.UnixMilli()
		week := weeklyMap[weekKey]
		if week == nil {
			isoYear, isoWeek := weekStart.ISOWeek()
			week = &Week{
				StartMS:           weekKey,
				EndMS:             timeutil.AddDays(weekStart, 6).UnixMilli(),
				ISOWeek:           isoWeek,
				ISOYear:           isoYear,
				TagDurations:      map[string]int64{},
				BreakTagDurations: map[string]int64{},
			}
			weeklyMap[weekKey] = week
		}
		week.WorkMS += d.WorkMS
		week.BreakMS += d.BreakMS
		week.SessionCount += d.SessionCount
		week.ActiveDays++
		if d.GoalMet {
			week.GoalHits++
		}
		mergeDurations(week.TagDurations, d.TagDurations)
		mergeDurations(week.BreakTagDurations, d.BreakTagDurations)
		week.Days = append(week.Days, d)

		monthKey := day.Format("2006-01")
		month := monthlyMap[monthKey]
		if month == nil {
			monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
			month = &Month{
				Key:               monthKey,
				Label:             monthStart.Format("January 2006"),
				StartMS:           monthStart.UnixMilli(),
				TagDurations:      map[string]int64{},
				BreakTagDurations: map[string]int64{},
			}
			monthlyMap[monthKey] = month
		}
		month.WorkMS += d.WorkMS
		month.BreakMS += d.BreakMS
		month.SessionCount += d.SessionCount
		month.ActiveDays++
		mergeDurations(month.TagDurations, d.TagDurations)
		mergeDurations(month.BreakTagDurations, d.BreakTagDurations)
	}

	sort.Slice(data.Days, func(i, j int) bool { return data.Days[i].DayStart > data.Days[j].DayStart })
	for _, w := range weeklyMap {
		sort.Slice(w.Days, func(i, j int) bool { return w.Days[i].DayStart > w.Days[j].DayStart })
		data.Weeks = append(data.Weeks, w)
	}
	sort.Slice(data.Weeks, func(i, j int) bool { return data.Weeks[i].StartMS > data.Weeks[j].StartMS })
	for _, m := range monthlyMap {
		data.Months = append(data.Months, m)
	}
	sort.Slice(data.Months, func(i, j int) bool { return data.Months[i].StartMS > data.Months[j].StartMS })

	data.Totals.GoalMS = goalMS
	data.TagTotals = shareList(tagTotals, data.Totals.WorkMS)
	data.BreakTagTotals = shareList(breakTagTotals, data.Totals.TaggedBreakMS)
	return data
}

func buildDay(st *state.State, sessions []state.Session, breakLogs []state.BreakLog, day time.Time, nowMS, goalMS int64) *Day {
	dayStart := day.UnixMilli()
	dayEnd := timeutil.AddDays(day, 1).UnixMilli()

	clipped := clipSessions(sessions, dayStart, dayEnd, nowMS)
	if len(clipped) == 0 {
		return nil
	}
	var workMS int64
	for _, c := range clipped {
		workMS += c.End - c.Start
	}
	if workMS <= 0 {
		return nil
	}

	d := &Day{
		DayStart:          dayStart,
		Date:              day,
		WorkMS:            workMS,
		SessionCount:      len(clipped),
		FirstStart:        clipped[0].Start,
		LastEnd:           clipped[len(clipped)-1].End,
		Sessions:          clipped,
		TagDurations:      map[string]int64{},
		BreakTagDurations: map[string]int64{},
		GoalMet:           goalMS > 0 && workMS >= goalMS,
	}
	for _, c := range clipped {
		dur := c.End - c.Start
		d.TagDurations[c.Tag] += dur
		if dur > d.LongestSessionMS {
			d.LongestSessionMS = dur
			d.LongestSessionTag = c.Tag
		}
	}
	for i := 1; i < len(clipped); i++ {
		if clipped[i].Start > clipped[i-1].End {
			d.BreakMS += clipped[i].Start - clipped[i-1].End
		}
	}

	for _, b := range breakLogs {
		if b.End <= dayStart || b.Start >= dayEnd {
			continue
		}
		if b.TagTs != 0 && (b.TagTs < dayStart || b.TagTs >= dayEnd) {
			continue
		}
		start, end := b.Start, b.End
		if start < dayStart {
			start = dayStart
		}
		if end > dayEnd {
			end = dayEnd
		}
		if end > nowMS {
			end = nowMS
		}
		if end <= start || b.Tag == "" {
			continue
		}
		d.BreakTagDurations[b.Tag] += end - start
		d.TaggedBreakMS += end - start
	}

	for _, td := range st.Todos {
		if !td.Done || td.CompletedAt == nil {
			continue
		}
		ts := *td.CompletedAt
		if ts < dayStart || ts >= dayEnd {
			continue
		}
		text := td.Text
		if text == "" {
			text = "Todo"
		}
		d.TodosCompleted = append(d.TodosCompleted, TodoDone{Text: text, Timestamp: ts})
	}
	sort.Slice(d.TodosCompleted, func(i, j int) bool {
		return d.TodosCompleted[i].Timestamp < d.TodosCompleted[j].Timestamp
	})
	return d
}

func clipSessions(sessions []state.Session, dayStart, dayEnd, nowMS int64) []ClippedSession {
	var out []ClippedSession
	for _, sess := range sessions {
		end := sess.EffectiveEnd(nowMS)
		if end <= dayStart || sess.Start >= dayEnd {
			continue
		}
		start := sess.Start
		if start < dayStart {
			start = dayStart
		}
		if end > dayEnd {
			end = dayEnd
		}
		if end > nowMS {
			end = nowMS
		}
		if end <= start {
			continue
		}
		out = append(out, ClippedSession{Start: start, End: end, Tag: sess.Tag})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func mergeDurations(target, source map[string]int64) {
	for k, v := range source {
		target[k] += v
	}
}

func shareList(totals map[string]int64, denom int64) []TagTotal {
	out := make([]TagTotal, 0, len(totals))
	for tag, ms := range totals {
		share := 0.0
		if denom > 0 {
			share = float64(ms) / float64(denom)
		}
		out = append(out, TagTotal{Tag: tag, MS: ms, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MS != out[j].MS {
			return out[i].MS > out[j].MS
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
