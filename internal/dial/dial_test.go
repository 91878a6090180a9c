package dial

import (
	"math"
	"testing"

	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
)

const hour = int64(3600000)

func sess(start, end int64, tag string) state.Session {
	s := state.Session{Start: start, Tag: tag}
	if end != 0 {
		s.End = &end
	}
	return s
}

// pt places the pointer on a circle of radius r around (cx, cy) at the given
// dial angle (zero at 12 o'clock, clockwise).
func pt(theta, cx, cy, r float64) (float64, float64) {
	return cx + r*math.Sin(theta), cy - r*math.Cos(theta)
}

func TestAngleTimeRoundTrip(t *testing.T) {
	dayStart := int64(0)
	for _, ms := range []int64{0, hour, 6 * hour, 12 * hour, 23*hour + 30*60000} {
		theta := AngleFromTime(dayStart+ms, dayStart)
		back := TimeFromAngle(theta, dayStart)
		if back != dayStart+ms {
			t.Errorf("round trip %d -> %f -> %d", ms, theta, back)
		}
	}
}

func TestAngleFromPointCardinals(t *testing.T) {
	cx, cy := 50.0, 50.0
	cases := []struct {
		x, y float64
		want float64
	}{
		{50, 40, 0},            // straight up = midnight
		{60, 50, math.Pi / 2},  // right = 06:00
		{50, 60, math.Pi},      // down = 12:00
		{40, 50, 3 * math.Pi / 2}, // left = 18:00
	}
	for _, tc := range cases {
		got := AngleFromPoint(tc.x, tc.y, cx, cy)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("AngleFromPoint(%v,%v) = %f, want %f", tc.x, tc.y, got, tc.want)
		}
	}
}

func dayWin() timeline.DayWindow {
	start := int64(1000) * 86400000
	return timeline.DayWindow{Start: start, End: start + 24*hour, Now: start + 18*hour}
}

func TestFindHover(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+6*hour, win.Start+12*hour, "a")}
	segs := timeline.SegmentsForDay(sessions, win.Start, win.End, win.Now)
	cx, cy, r := 0.0, 0.0, 100.0

	// Middle of the segment: hit, no edge.
	x, y := pt(AngleFromTime(win.Start+9*hour, win.Start), cx, cy, r)
	h := FindHover(x, y, cx, cy, r, 1, sessions, segs, win)
	if h.SegIndex != 0 || h.NearEdge != EdgeNone {
		t.Fatalf("mid hover = %+v", h)
	}

	// Just inside the start edge: within the 8px tolerance at r=100.
	x, y = pt(AngleFromTime(win.Start+6*hour+4*60000, win.Start), cx, cy, r)
	h = FindHover(x, y, cx, cy, r, 1, sessions, segs, win)
	if h.SegIndex != 0 || h.NearEdge != EdgeStart {
		t.Fatalf("start-edge hover = %+v", h)
	}

	// Outside any segment.
	x, y = pt(AngleFromTime(win.Start+2*hour, win.Start), cx, cy, r)
	h = FindHover(x, y, cx, cy, r, 1, sessions, segs, win)
	if h.SegIndex != -1 {
		t.Fatalf("empty hover = %+v", h)
	}
}

func TestFindHoverRunningEndNotGrabbable(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+6*hour, 0, "live")}
	segs := timeline.SegmentsForDay(sessions, win.Start, win.End, win.Now)
	cx, cy, r := 0.0, 0.0, 100.0

	// Right at the live end (which is "now").
	x, y := pt(AngleFromTime(win.Now-60000, win.Start), cx, cy, r)
	h := FindHover(x, y, cx, cy, r, 1, sessions, segs, win)
	if h.SegIndex != 0 {
		t.Fatalf("hover = %+v", h)
	}
	if h.NearEdge != EdgeNone {
		t.Fatalf("running end reported grabbable: %+v", h)
	}
}

func TestClickTogglesWithoutDrag(t *testing.T) {
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: -1})
	res := e.PointerUp(true, nil)
	if res.Action != ActionToggle {
		t.Fatalf("plain click = %+v", res)
	}

	// A press on an edge that never travels far enough is still a click.
	e.PointerDown(0, 0, Hover{SegIndex: 0, NearEdge: EdgeStart})
	win := dayWin()
	sessions := []state.Session{sess(win.Start+6*hour, win.Start+12*hour, "a")}
	if e.PointerMove(2, 0, 0, sessions, win) {
		t.Fatal("sub-threshold move must not start a drag")
	}
	res = e.PointerUp(true, sessions)
	if res.Action != ActionToggle {
		t.Fatalf("short press = %+v", res)
	}
}

func TestClickOutsideDialDoesNothing(t *testing.T) {
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: -1})
	if res := e.PointerUp(false, nil); res.Action != ActionNone {
		t.Fatalf("outside click = %+v", res)
	}
}

func TestDragEndCommits(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+6*hour, win.Start+12*hour, "a")}
	e := NewEditor()

	e.PointerDown(0, 0, Hover{SegIndex: 0, NearEdge: EdgeEnd})
	theta := AngleFromTime(win.Start+13*hour, win.Start)
	if !e.PointerMove(10, 0, theta, sessions, win) {
		t.Fatal("move past threshold should start the drag")
	}
	if !e.Dragging() {
		t.Fatal("editor not dragging")
	}

	preview := e.PreviewSessions(sessions)
	if *preview[0].End != win.Start+13*hour {
		t.Fatalf("preview end = %d", *preview[0].End)
	}
	// Originals untouched until commit.
	if *sessions[0].End != win.Start+12*hour {
		t.Fatal("drag mutated the source sessions")
	}

	res := e.PointerUp(true, sessions)
	if res.Action != ActionCommit || res.SessionIndex != 0 {
		t.Fatalf("result = %+v", res)
	}
	if res.Start != win.Start+6*hour || res.End == nil || *res.End != win.Start+13*hour {
		t.Fatalf("committed bounds = %d..%v", res.Start, res.End)
	}
	if e.Dragging() {
		t.Fatal("editor should reset after pointer-up")
	}
}

func TestDragStartClampedToPreviousSegment(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{
		sess(win.Start+6*hour, win.Start+8*hour, "a"),
		sess(win.Start+9*hour, win.Start+12*hour, "b"),
	}
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: 1, NearEdge: EdgeStart})
	// Try to pull the start back across the first session.
	theta := AngleFromTime(win.Start+7*hour, win.Start)
	e.PointerMove(10, 0, theta, sessions, win)

	res := e.PointerUp(true, sessions)
	if res.Action != ActionCommit || res.SessionIndex != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Start != win.Start+8*hour {
		t.Fatalf("start = %d, want clamp at previous end %d", res.Start, win.Start+8*hour)
	}
}

func TestDragEndClampedToNow(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+16*hour, win.Start+17*hour, "a")}
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: 0, NearEdge: EdgeEnd})
	// Into the future.
	theta := AngleFromTime(win.Start+22*hour, win.Start)
	e.PointerMove(10, 0, theta, sessions, win)

	res := e.PointerUp(true, sessions)
	if res.End == nil || *res.End != win.Now {
		t.Fatalf("end = %v, want now %d", res.End, win.Now)
	}
}

func TestDragShrinkDeletes(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+6*hour, win.Start+12*hour, "a")}
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: 0, NearEdge: EdgeEnd})
	// Drag the end all the way back onto the start; the floor leaves a
	// sliver below the delete threshold.
	theta := AngleFromTime(win.Start+6*hour, win.Start)
	e.PointerMove(10, 0, theta, sessions, win)

	res := e.PointerUp(true, sessions)
	if res.Action != ActionDelete || res.SessionIndex != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestDragRunningStartKeepsRunning(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+16*hour, 0, "live")}
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: 0, NearEdge: EdgeStart})
	theta := AngleFromTime(win.Start+15*hour, win.Start)
	e.PointerMove(10, 0, theta, sessions, win)

	res := e.PointerUp(true, sessions)
	if res.Action != ActionCommit {
		t.Fatalf("result = %+v", res)
	}
	if res.Start != win.Start+15*hour || res.End != nil {
		t.Fatalf("running edit = %d..%v", res.Start, res.End)
	}
}

func TestCancelAbandonsDrag(t *testing.T) {
	win := dayWin()
	sessions := []state.Session{sess(win.Start+6*hour, win.Start+12*hour, "a")}
	e := NewEditor()
	e.PointerDown(0, 0, Hover{SegIndex: 0, NearEdge: EdgeEnd})
	theta := AngleFromTime(win.Start+13*hour, win.Start)
	e.PointerMove(10, 0, theta, sessions, win)
	if !e.Dragging() {
		t.Fatal("drag not live")
	}

	e.Cancel()
	if e.Dragging() {
		t.Fatal("Cancel left the drag live")
	}
	if res := e.PointerUp(true, sessions); res.Action != ActionNone {
		t.Fatalf("post-cancel pointer-up = %+v", res)
	}
}
