package dial

import (
	"math"

	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
)

const (
	// dragThresholdPX is the pointer travel needed before a pressed edge
	// candidate becomes a live drag; shorter presses are clicks.
	dragThresholdPX = 6.0

	// edgeHoverPX is the pixel tolerance for grabbing a segment edge,
	// converted to an angular threshold at the dial radius.
	edgeHoverPX = 8.0

	// DragMinMS is the minimum session duration a drag preview may produce.
	DragMinMS = int64(1000)
)

// Edge identifies which boundary of a segment the pointer is near.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeStart
	EdgeEnd
)

// Hover describes what is under the pointer.
type Hover struct {
	SegIndex int // index into the day's segment list, -1 for none
	Theta    float64
	NearEdge Edge
}

// FindHover locates the segment (and, within tolerance, the edge) under the
// pointer. A running session's end edge is never reported as grabbable.
func FindHover(x, y, cx, cy, r, unitsPerPixel float64, sessions []state.Session, segs []timeline.Segment, win timeline.DayWindow) Hover {
	theta := AngleFromPoint(x, y, cx, cy)
	threshold := edgeHoverPX * unitsPerPixel / r
	h := Hover{SegIndex: -1, Theta: theta}
	for i, seg := range segs {
		a0 := AngleFromTime(seg.StartMS, win.Start)
		a1 := AngleFromTime(seg.EndMS, win.Start)
		if theta < a0 || theta > a1 {
			continue
		}
		h.SegIndex = i
		ds, de := math.Abs(theta-a0), math.Abs(theta-a1)
		if math.Min(ds, de) < threshold {
			if ds < de {
				h.NearEdge = EdgeStart
			} else {
				h.NearEdge = EdgeEnd
			}
		}
		break
	}
	if h.SegIndex >= 0 && h.NearEdge == EdgeEnd {
		idx := segs[h.SegIndex].SessionIndex
		if idx >= 0 && idx < len(sessions) && sessions[idx].Running() {
			h.NearEdge = EdgeNone
		}
	}
	return h
}

// Action is the outcome of a pointer-up.
type Action int

const (
	ActionNone Action = iota
	// ActionToggle: plain click inside the dial, start/stop the timer.
	ActionToggle
	// ActionCommit: apply the dragged start/end to the session.
	ActionCommit
	// ActionDelete: the edit shrank the segment below the delete
	// threshold, remove the day's slice of the session.
	ActionDelete
)

// Result carries the committed edit out of the state machine.
type Result struct {
	Action       Action
	SessionIndex int
	Start        int64
	End          *int64 // nil keeps the session running
}

type phase int

const (
	phaseIdle phase = iota
	phaseCandidate
	phaseDragging
)

// drag captures the live edit.
type drag struct {
	segIndex     int
	edge         Edge
	win          timeline.DayWindow
	sessionIndex int
	running      bool
	curStart     int64
	curEnd       int64 // meaningful only when !running
}

// Editor is the pointer-driven edit state machine:
// idle -> candidate -> dragging -> idle. No edit is visible outside the
// preview until pointer-up commits it.
type Editor struct {
	phase        phase
	candSeg      int
	candEdge     Edge
	downX, downY float64
	clickPending bool
	d            drag
}

func NewEditor() *Editor {
	return &Editor{candSeg: -1}
}

// Dragging reports whether an edit preview is live.
func (e *Editor) Dragging() bool { return e.phase == phaseDragging }

// PreviewSessions returns the session list with the live drag applied, or
// the input unchanged when no drag is active. Segmentation during a drag
// must run over this preview.
func (e *Editor) PreviewSessions(sessions []state.Session) []state.Session {
	if e.phase != phaseDragging {
		return sessions
	}
	out := append([]state.Session(nil), sessions...)
	if e.d.sessionIndex < len(out) {
		s := state.Session{Start: e.d.curStart, Tag: out[e.d.sessionIndex].Tag}
		if !e.d.running {
			end := e.d.curEnd
			s.End = &end
		}
		out[e.d.sessionIndex] = s
	}
	return out
}

// PointerDown records a press. A press near a segment edge arms an edit
// candidate; any press arms a pending click.
func (e *Editor) PointerDown(x, y float64, h Hover) {
	e.downX, e.downY = x, y
	e.clickPending = true
	if h.SegIndex >= 0 && h.NearEdge != EdgeNone {
		e.phase = phaseCandidate
		e.candSeg = h.SegIndex
		e.candEdge = h.NearEdge
	} else {
		e.phase = phaseIdle
		e.candSeg = -1
	}
}

// PointerMove advances the machine. Movement past the drag threshold
// promotes an armed candidate to a live drag; while dragging, the pointer
// angle becomes the desired edge time, capped against neighbors and the day
// window. Returns true when the preview changed.
func (e *Editor) PointerMove(x, y, theta float64, sessions []state.Session, win timeline.DayWindow) bool {
	if e.phase == phaseCandidate {
		if math.Hypot(x-e.downX, y-e.downY) < dragThresholdPX {
			return false
		}
		segs := timeline.SegmentsForDay(sessions, win.Start, win.End, win.Now)
		if e.candSeg >= len(segs) {
			e.reset()
			return false
		}
		seg := segs[e.candSeg]
		if seg.SessionIndex >= len(sessions) {
			e.reset()
			return false
		}
		sess := sessions[seg.SessionIndex]
		if sess.Running() && e.candEdge == EdgeEnd {
			e.reset()
			return false
		}
		e.d = drag{
			segIndex:     e.candSeg,
			edge:         e.candEdge,
			win:          win,
			sessionIndex: seg.SessionIndex,
			running:      sess.Running(),
			curStart:     sess.Start,
		}
		if !sess.Running() {
			e.d.curEnd = *sess.End
		}
		e.phase = phaseDragging
		e.clickPending = false
	}
	if e.phase != phaseDragging {
		return false
	}
	e.updatePreview(theta, sessions)
	return true
}

func (e *Editor) updatePreview(theta float64, sessions []state.Session) {
	win := e.d.win
	desired := TimeFromAngle(theta, win.Start)
	capped := e.cappedEdgeTime(desired, sessions)
	if e.d.edge == EdgeStart {
		maxStart := win.Now - DragMinMS
		if !e.d.running {
			maxStart = e.d.curEnd - DragMinMS
		}
		e.d.curStart = clamp64(capped, win.Start, maxStart)
	} else {
		minEnd := e.d.curStart + DragMinMS
		e.d.curEnd = clamp64(capped, minEnd, min64(win.End, win.Now))
	}
}

// cappedEdgeTime clamps the desired edge time so a start edge cannot cross
// the previous segment's end (or day start) nor its own end, and an end edge
// cannot cross its own start nor the next segment's start (or now/day end).
// Clamping, never rejection, is the response to an out-of-range drag.
func (e *Editor) cappedEdgeTime(desired int64, sessions []state.Session) int64 {
	win := e.d.win
	segs := timeline.SegmentsForDay(e.PreviewSessions(sessions), win.Start, win.End, win.Now)
	if e.d.segIndex >= len(segs) {
		return desired
	}
	seg := segs[e.d.segIndex]
	if e.d.edge == EdgeStart {
		minT := win.Start
		if e.d.segIndex > 0 {
			minT = max64(minT, segs[e.d.segIndex-1].EndMS)
		}
		maxT := min64(seg.EndMS, win.Now)
		return clamp64(desired, minT, maxT)
	}
	minT := seg.StartMS
	maxT := min64(win.End, win.Now)
	if e.d.segIndex < len(segs)-1 {
		maxT = min64(maxT, segs[e.d.segIndex+1].StartMS)
	}
	return clamp64(desired, minT, maxT)
}

// PointerUp finishes the gesture. A live drag commits or, when the edited
// segment ended up at or below the delete threshold, deletes the day's
// slice. A plain click inside the dial becomes a start/stop toggle.
func (e *Editor) PointerUp(inDial bool, sessions []state.Session) Result {
	defer e.reset()
	if e.phase == phaseDragging {
		win := e.d.win
		preview := e.PreviewSessions(sessions)
		segs := timeline.SegmentsForDay(preview, win.Start, win.End, win.Now)
		var final *timeline.Segment
		for i := range segs {
			if segs[i].SessionIndex == e.d.sessionIndex {
				final = &segs[i]
				break
			}
		}
		if final == nil || final.Duration() <= state.DeleteThreshMS {
			return Result{Action: ActionDelete, SessionIndex: e.d.sessionIndex}
		}
		res := Result{Action: ActionCommit, SessionIndex: e.d.sessionIndex, Start: e.d.curStart}
		if !e.d.running {
			end := e.d.curEnd
			res.End = &end
		}
		return res
	}
	if e.clickPending && inDial {
		return Result{Action: ActionToggle}
	}
	return Result{Action: ActionNone}
}

// Cancel abandons any gesture without committing, e.g. when the pointer
// leaves the dial surface.
func (e *Editor) Cancel() { e.reset() }

func (e *Editor) reset() {
	e.phase = phaseIdle
	e.candSeg = -1
	e.candEdge = EdgeNone
	e.clickPending = false
	e.d = drag{}
}

func clamp64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
