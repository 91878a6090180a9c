package state

import (
	"testing"
)

func int64p(v int64) *int64 { return &v }

func TestDefault(t *testing.T) {
	st := Default()
	if st.Version != Version {
		t.Fatalf("version = %d", st.Version)
	}
	if st.GoalMinutes != DefaultGoalMinutes {
		t.Fatalf("goal = %d", st.GoalMinutes)
	}
	if st.Theme != "light" {
		t.Fatalf("theme = %q", st.Theme)
	}
	if st.Running() {
		t.Fatal("fresh document should not be running")
	}
}

func TestHydrateEmptyAndGarbage(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, []byte("not json"), []byte(`[1,2,3]`)} {
		st := Hydrate(raw)
		if st == nil {
			t.Fatal("Hydrate returned nil")
		}
		if st.GoalMinutes != DefaultGoalMinutes {
			t.Fatalf("raw %q: goal = %d", raw, st.GoalMinutes)
		}
	}
}

func TestHydrateRoundTrip(t *testing.T) {
	st := Default()
	st.Sessions = []Session{
		{Start: 1000, End: int64p(61000), Tag: "writing"},
		{Start: 70000, End: nil},
	}
	st.BreakLogs = []BreakLog{{Start: 61000, End: 70000, Tag: "coffee", TagTs: 65000}}
	st.GoalMinutes = 300
	st.Theme = "dark"
	st.TagColors = map[string]string{"writing": "#ff0000"}
	st.IgnoredDays = []string{"2024-03-01"}
	st.TagSortWork = SortRecentDesc
	st.Meta = Meta{UpdatedAt: 123, ClientID: "abc"}

	raw, err := st.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got := Hydrate(raw)

	if len(got.Sessions) != 2 || got.Sessions[0].Tag != "writing" {
		t.Fatalf("sessions = %+v", got.Sessions)
	}
	if !got.Sessions[1].Running() {
		t.Fatal("open session lost")
	}
	if len(got.BreakLogs) != 1 || got.BreakLogs[0].TagTs != 65000 {
		t.Fatalf("breakLogs = %+v", got.BreakLogs)
	}
	if got.GoalMinutes != 300 || got.Theme != "dark" {
		t.Fatalf("goal/theme = %d/%q", got.GoalMinutes, got.Theme)
	}
	if got.TagColors["writing"] != "#ff0000" {
		t.Fatalf("tagColors = %v", got.TagColors)
	}
	if got.TagSortWork != SortRecentDesc {
		t.Fatalf("sort = %q", got.TagSortWork)
	}
	if got.Meta.UpdatedAt != 123 || got.Meta.ClientID != "abc" {
		t.Fatalf("meta = %+v", got.Meta)
	}
}

func TestHydratePartialDocument(t *testing.T) {
	raw := []byte(`{"sessions":[{"start":1000,"end":2000}],"theme":"purple","goalMinutes":90}`)
	st := Hydrate(raw)
	if len(st.Sessions) != 1 {
		t.Fatalf("sessions = %+v", st.Sessions)
	}
	// Unknown theme falls back to light.
	if st.Theme != "light" {
		t.Fatalf("theme = %q", st.Theme)
	}
	if st.GoalMinutes != 90 {
		t.Fatalf("goal = %d", st.GoalMinutes)
	}
	if st.Version != Version {
		t.Fatalf("version = %d", st.Version)
	}
}

func TestHydrateSkipsBadListEntries(t *testing.T) {
	raw := []byte(`{"sessions":[{"start":1000,"end":2000},"bogus",{"start":3000}]}`)
	st := Hydrate(raw)
	if len(st.Sessions) != 2 {
		t.Fatalf("want 2 sessions, got %+v", st.Sessions)
	}
}

func TestHydrateBackfillsTagTs(t *testing.T) {
	raw := []byte(`{"breakLogs":[{"start":1000,"end":2000,"tag":"tea"}]}`)
	st := Hydrate(raw)
	if len(st.BreakLogs) != 1 {
		t.Fatalf("breakLogs = %+v", st.BreakLogs)
	}
	b := st.BreakLogs[0]
	if b.TagTs < b.Start || b.TagTs > b.End {
		t.Fatalf("backfilled tagTs %d outside [%d, %d]", b.TagTs, b.Start, b.End)
	}
}

func TestHydrateNormalizesTagColorKeys(t *testing.T) {
	raw := []byte(`{"tagColors":{"  Writing ":"#ff0000","":"#00ff00","x":""}}`)
	st := Hydrate(raw)
	if st.TagColors["writing"] != "#ff0000" {
		t.Fatalf("tagColors = %v", st.TagColors)
	}
	if len(st.TagColors) != 1 {
		t.Fatalf("blank keys/values kept: %v", st.TagColors)
	}
}

func TestSortModeCycle(t *testing.T) {
	m := SortTimeDesc
	seen := map[SortMode]bool{}
	for i := 0; i < len(SortModes); i++ {
		seen[m] = true
		m = m.Next()
	}
	if m != SortTimeDesc {
		t.Fatalf("cycle did not wrap, ended at %q", m)
	}
	if len(seen) != len(SortModes) {
		t.Fatalf("cycle visited %d modes", len(seen))
	}
	if SortMode("bogus").Next() != SortTimeDesc {
		t.Fatal("unknown mode should reset to time-desc")
	}
}

func TestCloneIsDeep(t *testing.T) {
	st := Default()
	st.Sessions = []Session{{Start: 1000, End: int64p(2000), Tag: "a"}}
	st.TagColors["a"] = "#111111"

	cp := st.Clone()
	*cp.Sessions[0].End = 9999
	cp.TagColors["a"] = "#222222"
	cp.Sessions[0].Tag = "b"

	if *st.Sessions[0].End != 2000 {
		t.Fatal("End pointer shared with clone")
	}
	if st.TagColors["a"] != "#111111" {
		t.Fatal("TagColors map shared with clone")
	}
	if st.Sessions[0].Tag != "a" {
		t.Fatal("Sessions slice shared with clone")
	}
}

func TestNormalizeSessions(t *testing.T) {
	list := []Session{
		{Start: 5000, End: int64p(6000)},
		{Start: 0, End: int64p(1000)},    // zero start dropped
		{Start: 3000, End: int64p(3000)}, // non-positive duration dropped
		{Start: 1000, End: nil},          // running kept
	}
	out := NormalizeSessions(list)
	if len(out) != 2 {
		t.Fatalf("got %d sessions", len(out))
	}
	if out[0].Start != 1000 || out[1].Start != 5000 {
		t.Fatalf("not sorted: %+v", out)
	}
}

func TestRunningAndLastSession(t *testing.T) {
	st := Default()
	if st.LastSession() != nil {
		t.Fatal("empty document has no last session")
	}
	st.Sessions = []Session{{Start: 1000, End: int64p(2000)}, {Start: 3000}}
	if !st.Running() {
		t.Fatal("open last session should report running")
	}
	if st.LastSession().Start != 3000 {
		t.Fatalf("last = %+v", st.LastSession())
	}
}
