package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/jakobkreft/CakeTimer/internal/state"
)

func ToCSV(sessions []state.Session, nowMS int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Tag", "Start", "End", "Duration (s)", "Duration", "Running"}); err != nil {
		return err
	}

	for _, s := range sessions {
		tag := s.Tag
		if tag == "" {
			tag = "Untagged"
		}
		endStr := ""
		if s.End != nil {
			endStr = time.UnixMilli(*s.End).Local().Format(time.RFC3339)
		}
		secs := (s.EffectiveEnd(nowMS) - s.Start) / 1000
		if secs < 0 {
			secs = 0
		}
		running := ""
		if s.Running() {
			running = "yes"
		}

		row := []string{
			tag,
			time.UnixMilli(s.Start).Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", secs),
			formatDuration(secs),
			running,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
