package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"procman/internal/alert"
	"procman/internal/app"
	"procman/internal/history"
	"procman/internal/proc"
	"procman/internal/query"
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Local() bool
	Status() (app.DaemonStatus, error)
	StartDaemon() (*app.DaemonHandle, error)
	List(context.Context, app.ListParams) ([]proc.Record, error)
	Kill(context.Context, app.ActionParams) (app.ActionResult, error)
	Nice(context.Context, app.ActionParams) (app.ActionResult, error)
	Alerts(context.Context, app.AlertParams) ([]alert.Alert, error)
	History(context.Context, time.Duration) ([]history.Entry, bool, error)
	Stats(context.Context, bool, time.Duration) (app.Stats, error)
}

type view int

const (
	viewProcesses view = iota
	viewAlerts
	viewHistory
	viewStats
	viewCount
)

func (v view) String() string {
	switch v {
	case viewAlerts:
		return "Alerts"
	case viewHistory:
		return "History"
	case viewStats:
		return "Performance"
	default:
		return "Processes"
	}
}

var sortCycle = []query.SortKey{query.SortCPU, query.SortMemory, query.SortPID, query.SortName}

const (
	requestTimeout  = 4 * time.Second
	refreshInterval = 2 * time.Second
)

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller
	daemon     *app.DaemonHandle

	list      list.Model
	processes []proc.Record
	selected  map[int]bool

	view    view
	sortIdx int

	alerts  []alert.Alert
	history []history.Entry
	stats   app.Stats

	daemonStatus app.DaemonStatus
	statusMsg    string

	err     error
	loading bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Processes"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(true)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		list:       lst,
		statusMsg:  "Checking daemon status…",
		loading:    true,
		selected:   make(map[int]bool),
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller) error {
	m := New(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	if m.daemon != nil {
		_ = m.daemon.Close()
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(checkDaemonStatusCmd(m.controller), m.reloadCmd(), tickCmd())
}

func (m *Model) sortKey() query.SortKey { return sortCycle[m.sortIdx] }

func (m *Model) reloadCmd() tea.Cmd {
	switch m.view {
	case viewAlerts:
		return loadAlertsCmd(m.controller)
	case viewHistory:
		return loadHistoryCmd(m.controller)
	case viewStats:
		return loadStatsCmd(m.controller)
	default:
		return loadProcessesCmd(m.controller, m.sortKey())
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 6 {
			m.list.SetSize(msg.Width, msg.Height-6)
		}

	case tickMsg:
		if m.daemonStatus.Running && m.list.FilterState() != list.Filtering {
			return m, tea.Batch(m.reloadCmd(), tickCmd())
		}
		return m, tickCmd()

	case daemonStatusMsg:
		m.daemonStatus = msg.status
		switch {
		case m.controller.Local():
			m.statusMsg = "Local engine. Press tab to switch views, q to quit."
		case msg.status.Running && msg.status.PID > 0:
			m.statusMsg = fmt.Sprintf("Daemon running (pid %d). Press tab to switch views, q to quit.", msg.status.PID)
		case msg.status.Running:
			m.statusMsg = "Daemon running. Press tab to switch views, q to quit."
		default:
			m.statusMsg = "Daemon is not running. Press s to start it."
			m.processes = nil
			m.list.SetItems(nil)
		}

	case processesLoadedMsg:
		m.loading = false
		m.err = nil
		m.setProcesses(msg.processes)
		m.lastUpdated = time.Now()

	case alertsLoadedMsg:
		m.loading = false
		m.err = nil
		m.alerts = msg.alerts
		m.lastUpdated = time.Now()

	case historyLoadedMsg:
		m.loading = false
		m.err = nil
		m.history = msg.entries
		m.lastUpdated = time.Now()

	case statsLoadedMsg:
		m.loading = false
		m.err = nil
		m.stats = msg.stats
		m.lastUpdated = time.Now()

	case actionsDoneMsg:
		m.statusMsg = summarize(msg.results)
		m.clearSelection()
		return m, m.reloadCmd()

	case daemonStartedMsg:
		m.daemon = msg.handle
		m.statusMsg = "Daemon started."
		return m, tea.Batch(checkDaemonStatusCmd(m.controller), m.reloadCmd())

	case errMsg:
		m.loading = false
		m.err = msg.err

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % viewCount
			m.loading = true
			return m, m.reloadCmd()
		case "r":
			m.loading = true
			return m, m.reloadCmd()
		case "s":
			if !m.daemonStatus.Running && !m.controller.Local() {
				m.statusMsg = "Starting daemon…"
				return m, startDaemonCmd(m.controller)
			}
		}
		if m.view == viewProcesses {
			if cmd, handled := m.handleProcessKey(msg.String()); handled {
				return m, cmd
			}
		}
	}

	if m.view != viewProcesses {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleProcessKey(key string) (tea.Cmd, bool) {
	switch key {
	case "o":
		m.sortIdx = (m.sortIdx + 1) % len(sortCycle)
		m.statusMsg = fmt.Sprintf("Sorting by %s.", m.sortKey())
		return loadProcessesCmd(m.controller, m.sortKey()), true
	case " ":
		m.toggleCurrentSelection()
		return nil, true
	case "c":
		m.clearSelection()
		return nil, true
	case "k":
		targets := m.targets()
		if len(targets) == 0 {
			return nil, true
		}
		m.statusMsg = fmt.Sprintf("Killing %d process(es)…", len(targets))
		return killCmd(m.controller, targets), true
	case "+", "-":
		current := m.currentProcess()
		if current == nil {
			return nil, true
		}
		nice := current.Nice + 1
		if key == "-" {
			nice = current.Nice - 1
		}
		return niceCmd(m.controller, current.PID, nice), true
	}
	return nil, false
}

// targets returns the selected pids, or the highlighted one when nothing is
// selected.
func (m *Model) targets() []int {
	if len(m.selected) > 0 {
		pids := make([]int, 0, len(m.selected))
		for pid := range m.selected {
			pids = append(pids, pid)
		}
		sort.Ints(pids)
		return pids
	}
	if current := m.currentProcess(); current != nil {
		return []int{current.PID}
	}
	return nil
}

func (m *Model) setProcesses(records []proc.Record) {
	m.processes = records
	newSelected := make(map[int]bool)
	items := make([]list.Item, 0, len(records))
	for _, rec := range records {
		selected := m.selected[rec.PID]
		if selected {
			newSelected[rec.PID] = true
		}
		items = append(items, processItem{Record: rec, Selected: selected})
	}
	m.selected = newSelected
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Processes (%d, by %s)", len(records), m.sortKey())
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true)
	if !m.daemonStatus.Running {
		statusStyle = statusStyle.Foreground(lipgloss.Color("203"))
	} else {
		statusStyle = statusStyle.Foreground(lipgloss.Color("42"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')
	b.WriteString(renderTabs(m.view))
	b.WriteByte('\n')

	if m.loading {
		b.WriteString("Loading…\n")
	} else if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	switch m.view {
	case viewAlerts:
		b.WriteString(renderAlerts(m.alerts))
	case viewHistory:
		b.WriteString(renderHistory(m.history))
	case viewStats:
		b.WriteString(renderStats(m.stats))
	default:
		b.WriteString(m.processesView())
	}

	help := "tab switch view • r reload • q quit"
	if m.view == viewProcesses {
		help = "tab switch view • o sort • / filter • space select • c clear • k kill • +/- nice • r reload • q quit"
		if count := len(m.selected); count > 0 {
			help += fmt.Sprintf(" • selected=%d", count)
		}
	}
	if !m.daemonStatus.Running && !m.controller.Local() {
		help += " • s start daemon"
	}
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) processesView() string {
	var b strings.Builder
	if len(m.list.Items()) == 0 && !m.loading && m.err == nil && m.daemonStatus.Running {
		b.WriteString("No processes found.\n")
		return b.String()
	}
	b.WriteString(m.list.View())
	b.WriteByte('\n')

	if current := m.currentProcess(); current != nil {
		detail := fmt.Sprintf(
			"pid=%d ppid=%s owner=%s nice=%d\nname=%s\ncmd=%s",
			current.PID,
			parentOrDash(*current),
			valueOrDash(current.Owner),
			current.Nice,
			current.Name,
			valueOrDash(current.Command),
		)
		detailStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
		b.WriteString(detailStyle.Render(detail))
		b.WriteByte('\n')
	}
	return b.String()
}

// processItem adapts proc.Record to the bubbles list item interface.
type processItem struct {
	Record   proc.Record
	Selected bool
}

func (p processItem) Title() string {
	mark := " "
	if p.Selected {
		mark = "✓"
	}
	return fmt.Sprintf("[%s] pid=%d %s", mark, p.Record.PID, p.Record.Name)
}

func (p processItem) Description() string {
	return fmt.Sprintf("cpu=%.1f%% mem=%d KB owner=%s nice=%d",
		p.Record.CPUPercent, p.Record.MemoryKB, valueOrDash(p.Record.Owner), p.Record.Nice)
}

func (p processItem) FilterValue() string {
	return fmt.Sprintf("%d %s %s", p.Record.PID, p.Record.Name, p.Record.Owner)
}

func (m *Model) toggleCurrentSelection() {
	idx := m.list.Index()
	items := m.list.Items()
	if idx < 0 || idx >= len(items) {
		return
	}
	item, ok := items[idx].(processItem)
	if !ok {
		return
	}
	if item.Selected {
		delete(m.selected, item.Record.PID)
	} else {
		m.selected[item.Record.PID] = true
	}
	item.Selected = !item.Selected
	m.list.SetItem(idx, item)
}

func (m *Model) clearSelection() {
	m.selected = make(map[int]bool)
	items := m.list.Items()
	for i, it := range items {
		if pi, ok := it.(processItem); ok && pi.Selected {
			pi.Selected = false
			m.list.SetItem(i, pi)
		}
	}
}

func (m *Model) currentProcess() *proc.Record {
	item, ok := m.list.SelectedItem().(processItem)
	if !ok {
		return nil
	}
	rec := item.Record
	return &rec
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func parentOrDash(r proc.Record) string {
	if !r.HasParent {
		return "-"
	}
	return fmt.Sprint(r.ParentPID)
}

func summarize(results []actionResult) string {
	ok := 0
	var failures []string
	for _, r := range results {
		switch {
		case r.err != nil:
			failures = append(failures, fmt.Sprintf("pid %d: %v", r.res.PID, r.err))
		case r.res.Outcome.OK():
			ok++
		default:
			failures = append(failures, fmt.Sprintf("pid %d: %s", r.res.PID, r.res.Outcome.Reason))
		}
	}
	msg := fmt.Sprintf("%d/%d succeeded", ok, len(results))
	if len(failures) > 0 {
		msg += " (" + strings.Join(failures, "; ") + ")"
	}
	return msg
}

type tickMsg time.Time

type daemonStatusMsg struct {
	status app.DaemonStatus
}

type processesLoadedMsg struct {
	processes []proc.Record
}

type alertsLoadedMsg struct {
	alerts []alert.Alert
}

type historyLoadedMsg struct {
	entries []history.Entry
}

type statsLoadedMsg struct {
	stats app.Stats
}

type actionResult struct {
	res app.ActionResult
	err error
}

type actionsDoneMsg struct {
	results []actionResult
}

type daemonStartedMsg struct {
	handle *app.DaemonHandle
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func checkDaemonStatusCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if ctrl.Local() {
			return daemonStatusMsg{status: app.DaemonStatus{Running: true}}
		}
		status, err := ctrl.Status()
		if err != nil {
			return errMsg{err}
		}
		return daemonStatusMsg{status: status}
	}
}

func loadProcessesCmd(ctrl Controller, key query.SortKey) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		procs, err := ctrl.List(ctx, app.ListParams{
			Sort:    string(key),
			Refresh: ctrl.Local(),
			Timeout: requestTimeout,
		})
		if err != nil {
			return errMsg{err}
		}
		return processesLoadedMsg{processes: procs}
	}
}

func loadAlertsCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		alerts, err := ctrl.Alerts(ctx, app.AlertParams{Refresh: ctrl.Local(), Timeout: requestTimeout})
		if err != nil {
			return errMsg{err}
		}
		return alertsLoadedMsg{alerts: alerts}
	}
}

func loadHistoryCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		entries, _, err := ctrl.History(context.Background(), requestTimeout)
		if err != nil {
			return errMsg{err}
		}
		return historyLoadedMsg{entries: entries}
	}
}

func loadStatsCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		stats, err := ctrl.Stats(context.Background(), ctrl.Local(), requestTimeout)
		if err != nil {
			return errMsg{err}
		}
		return statsLoadedMsg{stats: stats}
	}
}

func killCmd(ctrl Controller, pids []int) tea.Cmd {
	return func() tea.Msg {
		results := make([]actionResult, 0, len(pids))
		for _, pid := range pids {
			res, err := ctrl.Kill(context.Background(), app.ActionParams{PID: pid, Timeout: requestTimeout})
			results = append(results, actionResult{res: res, err: err})
		}
		return actionsDoneMsg{results: results}
	}
}

func niceCmd(ctrl Controller, pid, nice int) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Nice(context.Background(), app.ActionParams{PID: pid, Value: nice, Timeout: requestTimeout})
		return actionsDoneMsg{results: []actionResult{{res: res, err: err}}}
	}
}

func startDaemonCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		handle, err := ctrl.StartDaemon()
		if err != nil {
			return errMsg{err}
		}
		// Give the daemon a moment to bind the socket.
		time.Sleep(300 * time.Millisecond)
		return daemonStartedMsg{handle: handle}
	}
}
