package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jakobkreft/CakeTimer/internal/config"
	"github.com/jakobkreft/CakeTimer/internal/export"
	"github.com/jakobkreft/CakeTimer/internal/state"
	"github.com/jakobkreft/CakeTimer/internal/storage"
	"github.com/jakobkreft/CakeTimer/internal/tagcolor"
	"github.com/jakobkreft/CakeTimer/internal/tracker"
)

// headerHeight is fixed so mouse coordinates can be mapped to the dial
// without re-measuring the layout on every event.
const headerHeight = 2

// App is the root Bubble Tea model.
type App struct {
	cfg   config.Config
	store *storage.Store
	trk   *tracker.Tracker

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dial   dialModel
	review reviewModel

	help   help.Model
	status string
}

func NewApp(cfg config.Config, store *storage.Store) App {
	st := store.Load(cfg.Slot)
	if st.Meta.UpdatedAt == 0 && len(st.Sessions) == 0 {
		// Fresh document: seed presentation defaults from the config file.
		st.Theme = cfg.Theme
		st.GoalMinutes = cfg.GoalMinutes
	}

	trk := tracker.New(st, nil, tagcolor.NewEngine())
	trk.PruneTodos()
	trk.RefreshStreak()
	trk.SyncTodayBadges()

	h := help.New()
	h.ShowAll = false

	accent := tagcolor.ResolveAccent(cfg.Accent)
	return App{
		cfg:        cfg,
		store:      store,
		trk:        trk,
		activeView: viewDial,
		dial:       newDialModel(trk, accent),
		review:     newReviewModel(trk),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

// The half-second tick drives the clock, the dirty-save loop and the
// cross-instance sync check.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - headerHeight - 2
		a.dial.setSize(a.width, contentHeight, headerHeight, 0)
		a.review.setSize(a.width, contentHeight)
		return a, nil

	case tea.MouseMsg:
		if a.activeView == viewDial && !a.dial.formActive && !a.exportPicking {
			var cmd tea.Cmd
			a.dial, cmd = a.dial.update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.activeView == viewDial && a.dial.formActive {
			var cmd tea.Cmd
			a.dial, cmd = a.dial.update(msg)
			return a, cmd
		}

		switch {
		case key.Matches(msg, keys.Quit):
			a.trk.StopIfClosing()
			a.persist()
			return a, tea.Quit

		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil

		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil

		case key.Matches(msg, keys.Review):
			if a.activeView == viewReview {
				a.activeView = viewDial
				return a, nil
			}
			a.activeView = viewReview
			return a, a.review.refresh()

		case key.Matches(msg, keys.Back):
			if a.activeView == viewReview {
				a.activeView = viewDial
				return a, nil
			}
		}
		return a.updateActiveView(msg)

	case tickMsg:
		a.onTick()
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// onTick refreshes derived data, adopts newer remote writes and flushes
// dirty state. Sync is skipped mid-drag so a concurrent writer cannot yank
// the session being edited.
func (a *App) onTick() {
	a.trk.RefreshStreak()
	a.trk.SyncTodayBadges()
	a.trk.PruneTodos()

	if !a.dial.editor.Dragging() {
		if incoming, ok := a.store.Peek(a.cfg.Slot); ok && storage.Newer(a.trk.State(), incoming) {
			a.trk.Adopt(incoming)
			a.status = "Synced changes from another instance"
		}
	}
	a.persist()
}

func (a *App) persist() {
	if !a.trk.Dirty() {
		return
	}
	if err := a.store.Save(a.cfg.Slot, a.trk.State()); err != nil {
		a.status = "Save failed: " + err.Error()
		return
	}
	a.trk.ClearDirty()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDial:
		a.dial, cmd = a.dial.update(msg)
	case viewReview:
		a.review, cmd = a.review.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDial:
		content = a.dial.view()
	case viewReview:
		content = a.review.view()
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}
	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	names := []string{"Dial", "Review"}
	var tabs []string
	for i, name := range names {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("caketimer")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	timerInfo := ""
	if a.trk.Running() {
		last := a.trk.State().LastSession()
		elapsed := a.trk.Window().Now - last.Start
		timerInfo = successStyle.Render(" ● " + formatMSPrecise(elapsed))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON", "Backup"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up) || msg.String() == "up":
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down) || msg.String() == "down":
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	st := a.trk.State()
	return func() tea.Msg {
		sessions := state.NormalizeSessions(st.Sessions)
		nowMS := time.Now().UnixMilli()

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		var err error
		switch format {
		case 0:
			path = filepath.Join(home, fmt.Sprintf("caketimer-export-%s.csv", dateStr))
			err = export.ToCSV(sessions, nowMS, path)
		case 1:
			path = filepath.Join(home, fmt.Sprintf("caketimer-export-%s.json", dateStr))
			err = export.ToJSON(sessions, nowMS, path)
		default:
			path = filepath.Join(home, fmt.Sprintf("caketimer-backup-%s.json", dateStr))
			err = export.ToBackup(st, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

// Run opens the store and drives the program until exit. The running
// session, if any, is closed out and persisted on the way down.
func Run(cfg config.Config) error {
	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = storage.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}
	store, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	app := NewApp(cfg, store)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())

	final, err := p.Run()
	if err != nil {
		return err
	}
	if a, ok := final.(App); ok {
		a.trk.StopIfClosing()
		a.persist()
	}
	return nil
}
