package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jakobkreft/CakeTimer/internal/state"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	Tag         string `json:"tag"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Running     bool   `json:"running,omitempty"`
}

func ToJSON(sessions []state.Session, nowMS int64, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
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

		export.Sessions = append(export.Sessions, jsonSession{
			Tag:         tag,
			StartTime:   time.UnixMilli(s.Start).Local().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: secs,
			Duration:    formatDuration(secs),
			Running:     s.Running(),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// ToBackup writes the full document verbatim, for restore on another machine.
func ToBackup(st *state.State, path string) error {
	data, err := st.Marshal()
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	return nil
}
