package state

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/jakobkreft/CakeTimer/internal/tagcolor"
)

// Hydrate restores a document from its raw JSON form. It never fails: any
// missing or malformed field falls back to its typed default, unknown fields
// are dropped, and the version is stamped to the current schema.
func Hydrate(raw []byte) *State {
	base := Default()
	if len(raw) == 0 {
		return base
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return base
	}

	base.Sessions = decodeList[Session](fields["sessions"])
	base.BreakLogs = decodeList[BreakLog](fields["breakLogs"])
	for i := range base.BreakLogs {
		b := &base.BreakLogs[i]
		if b.TagTs == 0 {
			b.TagTs = (b.Start + b.End + 1) / 2
		}
	}

	var goal int
	if tryDecode(fields["goalMinutes"], &goal) {
		base.GoalMinutes = goal
	}
	var theme string
	if tryDecode(fields["theme"], &theme) && theme == "dark" {
		base.Theme = "dark"
	}
	var streak Streak
	if tryDecode(fields["streak"], &streak) {
		base.Streak = streak
	}
	base.Badges = decodeList[Badge](fields["badges"])

	var colors map[string]string
	if tryDecode(fields["tagColors"], &colors) {
		base.TagColors = map[string]string{}
		for k, v := range colors {
			nk := tagcolor.NormalizeKey(k)
			if nk != "" && v != "" {
				base.TagColors[nk] = v
			}
		}
	}

	base.Todos = decodeList[Todo](fields["todos"])

	var ignored []string
	if tryDecode(fields["ignoredDays"], &ignored) {
		base.IgnoredDays = base.IgnoredDays[:0]
		for _, day := range ignored {
			if strings.TrimSpace(day) != "" {
				base.IgnoredDays = append(base.IgnoredDays, day)
			}
		}
	}

	var mode SortMode
	if tryDecode(fields["tagSortWork"], &mode) && mode.Valid() {
		base.TagSortWork = mode
	}
	mode = ""
	if tryDecode(fields["tagSortBreak"], &mode) && mode.Valid() {
		base.TagSortBreak = mode
	}

	var meta Meta
	if tryDecode(fields["meta"], &meta) {
		base.Meta = meta
	}
	base.Version = Version
	return base
}

// Marshal serializes the document in its canonical JSON form.
func (s *State) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

func tryDecode(raw json.RawMessage, dst any) bool {
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// decodeList decodes a JSON array element by element, skipping entries that
// fail to decode so one bad record does not discard the rest.
func decodeList[T any](raw json.RawMessage) []T {
	out := []T{}
	if raw == nil {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeSessions drops invalid sessions (zero start, non-positive
// duration) and returns the rest sorted by start time. Used by the review
// aggregation, which must tolerate whatever the editor produced.
func NormalizeSessions(list []Session) []Session {
	out := make([]Session, 0, len(list))
	for _, s := range list {
		if s.Start == 0 {
			continue
		}
		if s.End != nil && *s.End <= s.Start {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// NormalizeBreakLogs drops invalid break logs and sorts by start time.
func NormalizeBreakLogs(list []BreakLog) []BreakLog {
	out := make([]BreakLog, 0, len(list))
	for _, b := range list {
		if b.Start == 0 || b.End <= b.Start {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
