package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakobkreft/CakeTimer/internal/config"
	"github.com/jakobkreft/CakeTimer/internal/export"
	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/storage"
	"github.com/jakobkreft/CakeTimer/internal/timeline"
	"github.com/jakobkreft/CakeTimer/internal/tracker"
	"github.com/jakobkreft/CakeTimer/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "caketimer",
		Short:         "Personal daily time tracker with a 24-hour dial",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/caketimer/config.yaml)")

	root.AddCommand(newStartCmd(&configPath))
	root.AddCommand(newStopCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	return root
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), fmt.Errorf("resolve config path: %w", err)
		}
	}
	return config.Load(path)
}

func openStore(cfg config.Config) (*storage.Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = storage.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return storage.New(dbPath)
}

// loadTracker opens the store and wraps the current document.
func loadTracker(configPath string) (*tracker.Tracker, *storage.Store, config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, cfg, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, cfg, err
	}
	st := store.Load(cfg.Slot)
	return tracker.New(st, nil, nil), store, cfg, nil
}

func newStartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a focus session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trk, store, cfg, err := loadTracker(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if !trk.Start() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "a session is already running")
				return nil
			}
			trk.RefreshStreak()
			trk.SyncTodayBadges()
			if err := store.Save(cfg.Slot, trk.State()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session started")
			return nil
		},
	}
}

func newStopCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trk, store, cfg, err := loadTracker(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()
			wasRunning := trk.Running()
			before := len(trk.State().Sessions)
			if !trk.Stop() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no session is running")
				return nil
			}
			trk.RefreshStreak()
			trk.SyncTodayBadges()
			if err := store.Save(cfg.Slot, trk.State()); err != nil {
				return err
			}
			if wasRunning && len(trk.State().Sessions) < before {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session was too short and was discarded")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session stopped")
			}
			return nil
		},
	}
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's totals and the streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trk, store, _, err := loadTracker(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			st := trk.State()
			win := trk.Window()
			worked := timeline.WorkedMS(st.Sessions, win.Start, win.End, win.Now)

			if st.Running() {
				last := st.LastSession()
				tag := last.Tag
				if tag == "" {
					tag = "untagged"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "running: %s (%s)\n", tag, formatMS(win.Now-last.Start))
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "idle")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "today: %s", formatMS(worked))
			if st.GoalMinutes > 0 {
				goalMS := int64(st.GoalMinutes) * 60 * 1000
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " / %s goal", formatMS(goalMS))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "streak: %d day(s), best %d\n", st.Streak.Current, st.Streak.Best)
			return nil
		},
	}
}

func newExportCmd(configPath *string) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the session history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			trk, store, _, err := loadTracker(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions := state.NormalizeSessions(trk.State().Sessions)
			nowMS := time.Now().UnixMilli()
			if out == "" {
				out = "caketimer-export." + format
			}
			switch format {
			case "csv":
				err = export.ToCSV(sessions, nowMS, out)
			case "json":
				err = export.ToJSON(sessions, nowMS, out)
			case "backup":
				err = export.ToBackup(trk.State(), out)
			default:
				return fmt.Errorf("unknown format %q (csv, json or backup)", format)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d session(s) to %s\n", len(sessions), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv|json|backup")
	cmd.Flags().StringVar(&out, "out", "", "output file path")
	return cmd
}

func formatMS(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	mins := ms / 60000
	h := mins / 60
	m := mins % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
