package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/virtua/internal/config"
	"github.com/charmbracelet/virtua/internal/tui/components/logo"
	"github.com/charmbracelet/virtua/internal/tui/exp/grid"
	"github.com/charmbracelet/virtua/internal/tui/exp/list"
	"github.com/charmbracelet/x/ansi"
)

// ConfigReloadedMsg is sent when the config file changed on disk. A valid
// config replaces the running session.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// component is what the list and grid views have in common.
type component interface {
	tea.Model
	tea.ViewModel
	SetSize(width, height int) tea.Cmd
	Focus() tea.Cmd
	Remeasure() tea.Cmd
}

var (
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

type appModel struct {
	cfg           *config.Config
	width, height int

	list list.List
	grid *grid.Model

	logo   *logo.Logo
	help   help.Model
	keyMap KeyMap
	status string
}

// New creates the application model for cfg.
func New(cfg *config.Config) (tea.Model, error) {
	m := &appModel{
		logo:   logo.Standard(),
		help:   help.New(),
		keyMap: DefaultKeyMap(),
	}
	if err := m.startSession(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// startSession replaces the list or grid with a fresh one built from cfg.
func (m *appModel) startSession(cfg *config.Config) error {
	if cfg.IsGrid() {
		g, err := grid.New(gridItems(cfg.Count),
			grid.WithColumns(cfg.Columns),
			grid.WithColumnWidth(int(cfg.ColumnWidth)),
			grid.WithGap(int(cfg.Gap)),
			grid.WithRowHeight(cfg.EstimateSize),
			grid.WithOverscan(cfg.Overscan),
			grid.WithFocus(true),
		)
		if err != nil {
			return fmt.Errorf("failed to create grid: %w", err)
		}
		m.grid, m.list = g, nil
	} else {
		l, err := list.New(listItems(cfg.Count),
			list.WithGap(int(cfg.Gap)),
			list.WithEstimatedHeight(cfg.EstimateSize),
			list.WithOverscan(cfg.Overscan),
			list.WithFocus(true),
		)
		if err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		m.list, m.grid = l, nil
	}
	m.cfg = cfg
	slog.Info("Session started", "mode", string(cfg.Mode), "count", cfg.Count)
	return nil
}

func (m *appModel) active() component {
	if m.grid != nil {
		return m.grid
	}
	return m.list
}

func (m *appModel) helpKeyMap() help.KeyMap {
	if m.grid != nil {
		return helpKeys{app: m.keyMap, component: m.grid.KeyMap()}
	}
	return helpKeys{app: m.keyMap, component: m.list.KeyMap()}
}

func (m *appModel) showLogo() bool {
	return m.height >= 4*logo.Height
}

func (m *appModel) contentHeight() int {
	h := m.height - lipgloss.Height(m.helpView()) - 1
	if m.showLogo() {
		h -= logo.Height
	}
	return max(0, h)
}

func (m *appModel) resize() tea.Cmd {
	return m.active().SetSize(m.width, m.contentHeight())
}

// Init implements tea.Model.
func (m *appModel) Init() tea.Cmd {
	return m.active().Init()
}

// Update implements tea.Model.
func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.resize()
	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("config not reloaded: %v", msg.Err)
			return m, nil
		}
		if err := m.startSession(msg.Config); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = "config reloaded"
		return m, tea.Batch(m.active().Init(), m.resize())
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, m.resize()
		case key.Matches(msg, m.keyMap.Remeasure):
			m.status = "measurements discarded"
			return m, m.active().Remeasure()
		}
	}

	_, cmd := m.active().Update(msg)
	return m, cmd
}

func (m *appModel) statusLine() string {
	var s string
	if m.grid != nil {
		x, y := m.grid.ScrollOffset()
		s = fmt.Sprintf("grid · %d items · %d cells visible · scroll %d,%d", m.cfg.Count, len(m.grid.VisibleCells()), x, y)
	} else {
		rng := m.list.VisibleRange()
		if rng.Empty() {
			s = fmt.Sprintf("list · %d items", m.cfg.Count)
		} else {
			s = fmt.Sprintf("list · %d items · showing %d-%d · scroll %d", m.cfg.Count, rng.StartIndex, rng.EndIndex, m.list.ScrollOffset())
		}
	}
	if m.status != "" {
		s += " · " + m.status
	}
	return ansi.Truncate(s, max(0, m.width), "…")
}

func (m *appModel) helpView() string {
	return m.help.View(m.helpKeyMap())
}

// View implements tea.Model.
func (m *appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	parts := make([]string, 0, 4)
	if m.showLogo() {
		parts = append(parts, strings.TrimRight(m.logo.Render(m.width, "virtualized list and grid"), "\n"))
	}
	status := statusStyle.Render(m.statusLine())
	if strings.HasPrefix(m.status, "config not reloaded") {
		status = errorStyle.Render(m.statusLine())
	}
	parts = append(parts, status, m.active().View(), m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
