package streak

import (
	"fmt"
	"testing"
	"time"

	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
	"github.com/jakobkreft/CakeTimer/internal/timeutil"
)

var testNow = time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)

const qualMS = 10 * timeutil.MSPerMinute

func addSession(st *state.State, day time.Time, startMin, durMin int) {
	start := day.UnixMilli() + int64(startMin)*timeutil.MSPerMinute
	end := start + int64(durMin)*timeutil.MSPerMinute
	st.Sessions = append(st.Sessions, state.Session{Start: start, End: &end})
}

func dayAgo(n int) time.Time {
	return timeutil.AddDays(timeutil.StartOfDay(testNow), -n)
}

func TestComputeConsecutiveDays(t *testing.T) {
	st := state.Default()
	for n := 0; n < 3; n++ {
		addSession(st, dayAgo(n), 9*60, 30)
	}
	got := Compute(st, testNow, qualMS)
	if got.Current != 3 || got.Best != 3 {
		t.Fatalf("streak = %+v", got)
	}
	if got.LastDay != timeutil.DayKey(dayAgo(0)) {
		t.Fatalf("lastDay = %q", got.LastDay)
	}
}

func TestComputeGraceDay(t *testing.T) {
	// Work yesterday and the day before, nothing yet today: the streak
	// counts from yesterday instead of resetting.
	st := state.Default()
	addSession(st, dayAgo(1), 9*60, 30)
	addSession(st, dayAgo(2), 9*60, 30)
	got := Compute(st, testNow, qualMS)
	if got.Current != 2 {
		t.Fatalf("current = %d, want grace-day 2", got.Current)
	}
}

func TestComputeBrokenChain(t *testing.T) {
	st := state.Default()
	// Old 3-day run, then a gap, then today only.
	for n := 4; n <= 6; n++ {
		addSession(st, dayAgo(n), 9*60, 30)
	}
	addSession(st, dayAgo(0), 9*60, 30)
	got := Compute(st, testNow, qualMS)
	if got.Current != 1 {
		t.Fatalf("current = %d", got.Current)
	}
	if got.Best != 3 {
		t.Fatalf("best = %d", got.Best)
	}
}

func TestComputeMinimumIsMergedNotSummed(t *testing.T) {
	st := state.Default()
	// Two 30-minute sessions overlapping by 15: merged coverage is 45
	// minutes even though the naive sum is 60.
	addSession(st, dayAgo(0), 9*60, 30)
	addSession(st, dayAgo(0), 9*60+15, 30)

	if got := Compute(st, testNow, 50*timeutil.MSPerMinute); got.Current != 0 {
		t.Fatalf("50min threshold: current = %d, want 0", got.Current)
	}
	if got := Compute(st, testNow, 40*timeutil.MSPerMinute); got.Current != 1 {
		t.Fatalf("40min threshold: current = %d, want 1", got.Current)
	}
}

func TestComputeOvernightSessionQualifiesBothDays(t *testing.T) {
	st := state.Default()
	// 23:40 yesterday to 00:20 today: twenty minutes on each side.
	start := dayAgo(1).UnixMilli() + 23*timeutil.MSPerHour + 40*timeutil.MSPerMinute
	end := dayAgo(0).UnixMilli() + 20*timeutil.MSPerMinute
	st.Sessions = []state.Session{{Start: start, End: &end}}

	got := Compute(st, testNow, 15*timeutil.MSPerMinute)
	if got.Current != 2 {
		t.Fatalf("current = %d, want 2", got.Current)
	}
}

func TestComputeRunningSessionCounts(t *testing.T) {
	st := state.Default()
	start := testNow.UnixMilli() - 30*timeutil.MSPerMinute
	st.Sessions = []state.Session{{Start: start}}
	got := Compute(st, testNow, qualMS)
	if got.Current != 1 {
		t.Fatalf("current = %d", got.Current)
	}
}

func TestComputeIgnoredToday(t *testing.T) {
	st := state.Default()
	addSession(st, dayAgo(0), 9*60, 30)
	addSession(st, dayAgo(1), 9*60, 30)
	st.IgnoredDays = []string{timeutil.DayKey(dayAgo(0))}

	got := Compute(st, testNow, qualMS)
	if got.Current != 0 {
		t.Fatalf("ignored today: current = %d, want 0", got.Current)
	}
}

func TestComputeEmpty(t *testing.T) {
	got := Compute(state.Default(), testNow, qualMS)
	if got != (state.Streak{}) {
		t.Fatalf("empty streak = %+v", got)
	}
}

func dayWinFor(day time.Time) timeline.DayWindow {
	return timeline.DayWindow{
		Start: day.UnixMilli(),
		End:   timeutil.AddDays(day, 1).UnixMilli(),
		Now:   testNow.UnixMilli(),
	}
}

func TestEligibleBadges(t *testing.T) {
	st := state.Default()
	st.GoalMinutes = 240
	day := dayAgo(0)
	addSession(st, day, 7*60, 75)      // starts 07:00, 75 min: early bird + solid hour
	addSession(st, day, 10*60, 3*60+30) // 3.5h: deep work

	worked := int64(75+210) * timeutil.MSPerMinute
	eligible := EligibleBadges(st, dayWinFor(day), worked)

	for _, id := range []state.BadgeID{state.BadgeEarlyBird, state.BadgeSolidHour, state.BadgeDeepWork, state.BadgeGoalComplete} {
		if !eligible[id] {
			t.Errorf("badge %q not eligible", id)
		}
	}
}

func TestEligibleBadgesNegativeCases(t *testing.T) {
	st := state.Default()
	st.GoalMinutes = 240
	day := dayAgo(0)
	addSession(st, day, 8*60, 45) // 08:00 start, 45 min

	eligible := EligibleBadges(st, dayWinFor(day), 45*timeutil.MSPerMinute)
	if len(eligible) != 0 {
		t.Fatalf("eligible = %v", eligible)
	}
}

func TestEligibleBadgesEarlyBirdBoundary(t *testing.T) {
	st := state.Default()
	day := dayAgo(0)
	addSession(st, day, 7*60+30, 20) // exactly 07:30 is too late

	eligible := EligibleBadges(st, dayWinFor(day), 20*timeutil.MSPerMinute)
	if eligible[state.BadgeEarlyBird] {
		t.Fatal("07:30 start should not be early bird")
	}
}

func TestSyncDayBadges(t *testing.T) {
	st := state.Default()
	key := timeutil.DayKey(dayAgo(0))

	changed := SyncDayBadges(st, key, map[state.BadgeID]bool{state.BadgeSolidHour: true})
	if !changed || len(st.Badges) != 1 {
		t.Fatalf("after grant: changed=%v badges=%+v", changed, st.Badges)
	}

	// Same eligibility again: no change.
	if SyncDayBadges(st, key, map[state.BadgeID]bool{state.BadgeSolidHour: true}) {
		t.Fatal("idempotent sync reported a change")
	}

	// Eligibility lost (e.g. the segment was dragged shorter): revoked.
	changed = SyncDayBadges(st, key, nil)
	if !changed || len(st.Badges) != 0 {
		t.Fatalf("after revoke: changed=%v badges=%+v", changed, st.Badges)
	}
}

func TestSyncDayBadgesLeavesOtherDaysAlone(t *testing.T) {
	st := state.Default()
	other := timeutil.DayKey(dayAgo(3))
	st.Badges = []state.Badge{{ID: state.BadgeDeepWork, Date: other}}

	SyncDayBadges(st, timeutil.DayKey(dayAgo(0)), map[state.BadgeID]bool{state.BadgeEarlyBird: true})
	if len(st.Badges) != 2 || st.Badges[0].Date != other {
		t.Fatalf("badges = %+v", st.Badges)
	}
}

func TestSyncDayBadgesCap(t *testing.T) {
	st := state.Default()
	for i := 0; i < state.BadgeCap; i++ {
		st.Badges = append(st.Badges, state.Badge{
			ID:   state.BadgeSolidHour,
			Date: fmt.Sprintf("2024-01-%02d", i%28+1),
		})
	}
	SyncDayBadges(st, timeutil.DayKey(dayAgo(0)), map[state.BadgeID]bool{state.BadgeGoalComplete: true})
	if len(st.Badges) != state.BadgeCap {
		t.Fatalf("cap not enforced: %d badges", len(st.Badges))
	}
	last := st.Badges[len(st.Badges)-1]
	if last.ID != state.BadgeGoalComplete {
		t.Fatalf("newest badge evicted: %+v", last)
	}
}

func TestRemoveDayBadges(t *testing.T) {
	st := state.Default()
	key := timeutil.DayKey(dayAgo(0))
	st.Badges = []state.Badge{
		{ID: state.BadgeSolidHour, Date: key},
		{ID: state.BadgeDeepWork, Date: timeutil.DayKey(dayAgo(1))},
	}
	if !RemoveDayBadges(st, key) {
		t.Fatal("expected removal")
	}
	if len(st.Badges) != 1 || st.Badges[0].Date == key {
		t.Fatalf("badges = %+v", st.Badges)
	}
	if RemoveDayBadges(st, key) {
		t.Fatal("second removal should be a no-op")
	}
}
