// Package streak derives consecutive-day streaks and per-day achievement
// badges from the full session history. Both are pure recomputations over
// source data: the persisted streak and badge records are caches for
// display, never trusted as incremental counters.
package streak

import (
	"sort"
	"time"

	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/timeutil"
)

// Compute walks every session, distributes its duration across the calendar
// days it touches, merges each day's sub-intervals and qualifies the day
// when the merged total reaches minMS and the day is not ignored.
// Current counts back from today, or from yesterday as a grace day when
// today has no qualifying work yet.
func Compute(st *state.State, now time.Time, minMS int64) state.Streak {
	loc := now.Location()
	nowMS := now.UnixMilli()

	ignored := map[int]bool{}
	for _, key := range st.IgnoredDays {
		if d, ok := timeutil.ParseDayKey(key, loc); ok {
			ignored[timeutil.DayNumber(d)] = true
		}
	}

	intervalsByDay := map[int64][][2]int64{}
	for _, sess := range st.Sessions {
		start := sess.Start
		end := sess.EffectiveEnd(nowMS)
		if start == 0 || end <= start {
			continue
		}
		day := timeutil.StartOfDay(time.UnixMilli(start).In(loc))
		endDay := timeutil.StartOfDay(time.UnixMilli(end).In(loc))
		for !day.After(endDay) {
			dayStart := day.UnixMilli()
			next := timeutil.AddDays(day, 1)
			dayEnd := next.UnixMilli()
			a, b := start, end
			if dayStart > a {
				a = dayStart
			}
			if dayEnd < b {
				b = dayEnd
			}
			if b > a {
				intervalsByDay[dayStart] = append(intervalsByDay[dayStart], [2]int64{a, b})
			}
			day = next
		}
	}

	type qual struct {
		dayNum   int
		dayStart int64
	}
	var qualifying []qual
	for dayStart, intervals := range intervalsByDay {
		if mergedTotal(intervals) < minMS {
			continue
		}
		dayNum := timeutil.DayNumberMS(dayStart, loc)
		if ignored[dayNum] {
			continue
		}
		qualifying = append(qualifying, qual{dayNum: dayNum, dayStart: dayStart})
	}
	if len(qualifying) == 0 {
		return state.Streak{}
	}
	sort.Slice(qualifying, func(i, j int) bool { return qualifying[i].dayNum < qualifying[j].dayNum })

	daySet := map[int]bool{}
	best, run, prev := 0, 0, -1
	for _, q := range qualifying {
		daySet[q.dayNum] = true
		if prev >= 0 && q.dayNum-prev == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = q.dayNum
	}

	todayNum := timeutil.DayNumber(now)
	current := 0
	if !ignored[todayNum] {
		if daySet[todayNum] {
			current = countBackwards(daySet, todayNum)
		} else if daySet[todayNum-1] {
			current = countBackwards(daySet, todayNum-1)
		}
	}

	last := qualifying[len(qualifying)-1]
	return state.Streak{
		Current: current,
		Best:    best,
		LastDay: timeutil.DayKeyMS(last.dayStart, loc),
	}
}

// mergedTotal sums intervals after coalescing overlapping or touching ones,
// so overlapping sessions never double-count toward qualification.
func mergedTotal(intervals [][2]int64) int64 {
	if len(intervals) == 0 {
		return 0
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i][0] < intervals[j][0] })
	var total int64
	curStart, curEnd := intervals[0][0], intervals[0][1]
	for _, iv := range intervals[1:] {
		if iv[0] <= curEnd {
			if iv[1] > curEnd {
				curEnd = iv[1]
			}
		} else {
			total += curEnd - curStart
			curStart, curEnd = iv[0], iv[1]
		}
	}
	total += curEnd - curStart
	return total
}

func countBackwards(daySet map[int]bool, start int) int {
	count := 0
	for d := start; daySet[d]; d-- {
		count++
	}
	return count
}
