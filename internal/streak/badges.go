package streak

import (
	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
	"github.com/jakobkreft/CakeTimer/internal/timeutil"
)

const (
	// EarlyBirdMS: first session of the day must start before 07:30 local.
	EarlyBirdMS = 7*timeutil.MSPerHour + 30*timeutil.MSPerMinute
	// SolidHourMS: any single segment of at least one hour.
	SolidHourMS = 60 * timeutil.MSPerMinute
	// DeepWorkMS: any single segment of at least three hours.
	DeepWorkMS = 180 * timeutil.MSPerMinute
)

// EligibleBadges evaluates the day's badge conditions from scratch.
func EligibleBadges(st *state.State, win timeline.DayWindow, workedMS int64) map[state.BadgeID]bool {
	eligible := map[state.BadgeID]bool{}

	segs := timeline.SegmentsForDay(st.Sessions, win.Start, win.End, win.Now)
	for _, seg := range segs {
		d := seg.Duration()
		if d >= SolidHourMS {
			eligible[state.BadgeSolidHour] = true
		}
		if d >= DeepWorkMS {
			eligible[state.BadgeDeepWork] = true
		}
		if eligible[state.BadgeSolidHour] && eligible[state.BadgeDeepWork] {
			break
		}
	}

	var firstStart int64 = -1
	for _, sess := range st.Sessions {
		if sess.Start >= win.Start && sess.Start < win.End {
			if firstStart < 0 || sess.Start < firstStart {
				firstStart = sess.Start
			}
		}
	}
	if firstStart >= 0 && firstStart-win.Start < EarlyBirdMS {
		eligible[state.BadgeEarlyBird] = true
	}

	goalMS := int64(st.GoalMinutes) * timeutil.MSPerMinute
	if goalMS > 0 && workedMS >= goalMS {
		eligible[state.BadgeGoalComplete] = true
	}
	return eligible
}

// SyncDayBadges reconciles the stored badge records for one day against the
// freshly computed eligible set: stale records are revoked, newly eligible
// ids appended, and the global record cap enforced. Returns whether the
// badge list changed.
func SyncDayBadges(st *state.State, dayKey string, eligible map[state.BadgeID]bool) bool {
	changed := false

	current := map[state.BadgeID]bool{}
	for _, b := range st.Badges {
		if b.Date == dayKey {
			current[b.ID] = true
		}
	}

	if len(current) > 0 {
		keep := st.Badges[:0:0]
		for _, b := range st.Badges {
			if b.Date != dayKey || eligible[b.ID] {
				keep = append(keep, b)
			} else {
				changed = true
			}
		}
		if changed {
			st.Badges = keep
		}
	}

	for _, id := range []state.BadgeID{state.BadgeEarlyBird, state.BadgeSolidHour, state.BadgeDeepWork, state.BadgeGoalComplete} {
		if eligible[id] && !current[id] {
			st.Badges = append(st.Badges, state.Badge{ID: id, Date: dayKey})
			changed = true
		}
	}

	if len(st.Badges) > state.BadgeCap {
		st.Badges = append(st.Badges[:0:0], st.Badges[len(st.Badges)-state.BadgeCap:]...)
		changed = true
	}
	return changed
}

// RemoveDayBadges drops every badge record for the given day.
func RemoveDayBadges(st *state.State, dayKey string) bool {
	keep := st.Badges[:0:0]
	for _, b := range st.Badges {
		if b.Date != dayKey {
			keep = append(keep, b)
		}
	}
	if len(keep) != len(st.Badges) {
		st.Badges = keep
		return true
	}
	return false
}
