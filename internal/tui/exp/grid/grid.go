package grid

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/virtua/internal/virtual"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
)

// Item is a cell of the grid. Render receives the column width; lines past
// it are truncated.
type Item interface {
	ID() string
	Render(width int) string
}

const frameInterval = time.Second / 60

// frameMsg flushes the coalesced row measurements of the grid with the
// given id.
type frameMsg struct {
	id string
}

var selectedStyle = lipgloss.NewStyle().Reverse(true)

type confOptions struct {
	width, height int
	columns       int
	// zero divides the width evenly between the columns
	columnWidth int
	gap         int
	rowHeight   float64
	overscan    int
	focused     bool
	keyMap      KeyMap
}

type Option func(*confOptions)

// WithSize sets the size of the grid.
func WithSize(width, height int) Option {
	return func(o *confOptions) {
		o.width = width
		o.height = height
	}
}

// WithColumns sets the number of columns.
func WithColumns(columns int) Option {
	return func(o *confOptions) {
		o.columns = columns
	}
}

// WithColumnWidth fixes the width of every column.
func WithColumnWidth(width int) Option {
	return func(o *confOptions) {
		o.columnWidth = width
	}
}

// WithGap sets the spacing between rows and columns.
func WithGap(gap int) Option {
	return func(o *confOptions) {
		o.gap = gap
	}
}

// WithRowHeight sets the line count assumed for rows not yet rendered.
func WithRowHeight(lines float64) Option {
	return func(o *confOptions) {
		o.rowHeight = lines
	}
}

func WithOverscan(overscan int) Option {
	return func(o *confOptions) {
		o.overscan = overscan
	}
}

func WithFocus(focus bool) Option {
	return func(o *confOptions) {
		o.focused = focus
	}
}

func WithKeyMap(keyMap KeyMap) Option {
	return func(o *confOptions) {
		o.keyMap = keyMap
	}
}

// Model renders a two-dimensional virtualized grid of items.
type Model struct {
	*confOptions

	id    string
	items []Item
	grid  *virtual.Grid
	// scheduler coalesces row heights observed while rendering.
	scheduler *virtual.Scheduler
	// rowHeights holds the tallest cell seen per row, -1 when unknown.
	rowHeights     []int
	frameScheduled bool
	selected       int

	rendered string
}

// New creates a grid over items.
func New(items []Item, opts ...Option) (*Model, error) {
	o := &confOptions{
		columns:   4,
		rowHeight: 1,
		overscan:  virtual.DefaultGridOverscan,
		keyMap:    DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Model{
		confOptions: o,
		id:          uuid.NewString(),
		items:       slices.Clone(items),
	}
	g, err := virtual.NewGrid(len(m.items), o.columns,
		virtual.WithRowHeight(o.rowHeight),
		virtual.WithColumnWidth(float64(m.cellWidth())),
		virtual.WithGridGap(float64(o.gap)),
		virtual.WithGridOverscan(o.overscan),
	)
	if err != nil {
		return nil, err
	}
	m.grid = g
	m.scheduler = virtual.NewScheduler(g.Rows())
	m.resetRows()
	if err := g.SetViewport(float64(max(0, o.width)), float64(max(0, o.height))); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) cellWidth() int {
	if m.columnWidth > 0 {
		return m.columnWidth
	}
	if m.width <= 0 || m.columns < 1 {
		return 1
	}
	return max(1, (m.width-m.gap*(m.columns-1))/m.columns)
}

func (m *Model) resetRows() {
	m.rowHeights = make([]int, m.grid.RowCount())
	for i := range m.rowHeights {
		m.rowHeights[i] = -1
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.render()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.frameScheduled = false
		return m, m.flush()
	case tea.KeyPressMsg:
		if !m.focused {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keyMap.Down):
			return m, m.MoveSelection(1, 0)
		case key.Matches(msg, m.keyMap.Up):
			return m, m.MoveSelection(-1, 0)
		case key.Matches(msg, m.keyMap.Right):
			return m, m.MoveSelection(0, 1)
		case key.Matches(msg, m.keyMap.Left):
			return m, m.MoveSelection(0, -1)
		case key.Matches(msg, m.keyMap.PageDown):
			return m, m.MoveSelection(m.pageRows(), 0)
		case key.Matches(msg, m.keyMap.PageUp):
			return m, m.MoveSelection(-m.pageRows(), 0)
		case key.Matches(msg, m.keyMap.Home):
			return m, m.Select(0)
		case key.Matches(msg, m.keyMap.End):
			return m, m.Select(len(m.items) - 1)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.rendered
}

func (m *Model) pageRows() int {
	return max(1, m.grid.Rows().Range().EndIndex-m.grid.Rows().Range().StartIndex)
}

func (m *Model) render() tea.Cmd {
	if m.width <= 0 || m.height <= 0 {
		m.rendered = ""
		return nil
	}

	lines := make([]string, m.height)
	scrollX := int(m.grid.Columns().ScrollOffset())
	scrollY := int(m.grid.Rows().ScrollOffset())
	cells := m.grid.VisibleCells()
	for start := 0; start < len(cells); {
		end := start
		for end < len(cells) && cells[end].Row == cells[start].Row {
			end++
		}
		m.renderRow(lines, cells[start:end], scrollX, scrollY)
		start = end
	}
	m.rendered = strings.Join(lines, "\n")
	return m.scheduleFrame()
}

// renderRow draws the cells of one row into lines, clipped to the viewport.
func (m *Model) renderRow(lines []string, row []virtual.Cell, scrollX, scrollY int) {
	first := row[0]
	height := int(first.Height)
	blocks := make([][]string, len(row))
	tallest := 0
	for i, cell := range row {
		content := m.items[cell.Index].Render(int(cell.Width))
		tallest = max(tallest, lipgloss.Height(content))
		blocks[i] = strings.Split(content, "\n")
	}
	if tallest > m.rowHeights[first.Row] {
		m.rowHeights[first.Row] = tallest
		m.scheduler.Report(first.Row, float64(tallest))
	}

	sep := strings.Repeat(" ", m.gap)
	left := scrollX - int(first.X)
	top := int(first.Y) - scrollY
	for k := range height {
		y := top + k
		if y < 0 {
			continue
		}
		if y >= m.height {
			break
		}
		parts := make([]string, len(row))
		for i, cell := range row {
			var text string
			if k < len(blocks[i]) {
				text = blocks[i][k]
			}
			parts[i] = m.pad(text, int(cell.Width), cell.Index)
		}
		lines[y] = ansi.Cut(strings.Join(parts, sep), left, left+m.width)
	}
}

func (m *Model) pad(text string, width, index int) string {
	text = ansi.Truncate(text, width, "…")
	text += strings.Repeat(" ", max(0, width-ansi.StringWidth(text)))
	if m.focused && index == m.selected {
		return selectedStyle.Render(text)
	}
	return text
}

func (m *Model) scheduleFrame() tea.Cmd {
	if !m.scheduler.Dirty() || m.frameScheduled {
		return nil
	}
	m.frameScheduled = true
	id := m.id
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

func (m *Model) flush() tea.Cmd {
	flushed, err := m.scheduler.Flush()
	if err != nil {
		slog.Warn("Some row measurements were dropped", "grid", m.id, "error", err)
	}
	if !flushed {
		return nil
	}
	return m.render()
}

func (m *Model) setScroll(x, y float64) {
	if err := m.grid.SetScroll(x, y); err != nil {
		slog.Error("Failed to apply grid scroll", "x", x, "y", y, "error", err)
	}
}

// Select makes the item at index the selection and scrolls it into view.
func (m *Model) Select(index int) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	m.selected = max(0, min(index, len(m.items)-1))
	m.setScroll(m.grid.ScrollToCell(m.selected, virtual.AlignAuto))
	return m.render()
}

// MoveSelection moves the selection by rows and columns. Moves past the
// edges stop at the first or last cell.
func (m *Model) MoveSelection(rows, cols int) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	row, col := m.grid.CellAt(m.selected)
	col = max(0, min(col+cols, m.grid.ColumnCount()-1))
	row = max(0, min(row+rows, m.grid.RowCount()-1))
	index, ok := m.grid.IndexAt(row, col)
	if !ok {
		index = len(m.items) - 1
	}
	return m.Select(index)
}

// Selected returns the selected item.
func (m *Model) Selected() (Item, bool) {
	if len(m.items) == 0 {
		return nil, false
	}
	return m.items[m.selected], true
}

// SetItems replaces the items and starts a new session at the origin.
func (m *Model) SetItems(items []Item) tea.Cmd {
	m.items = slices.Clone(items)
	if _, err := m.scheduler.Flush(); err != nil {
		slog.Warn("Some row measurements were dropped", "grid", m.id, "error", err)
	}
	if err := m.grid.SetCount(len(m.items)); err != nil {
		slog.Error("Failed to resize grid", "count", len(m.items), "error", err)
	}
	m.resetRows()
	m.selected = 0
	m.setScroll(0, 0)
	return m.render()
}

// SetSize resizes the grid. Without a fixed column width the
// columns are resized to fill the new width and every row is remeasured.
func (m *Model) SetSize(width, height int) tea.Cmd {
	widthChanged := width != m.width
	m.width, m.height = width, height
	if widthChanged && m.columnWidth == 0 {
		if err := m.grid.Columns().SetEstimate(virtual.FixedSize(float64(m.cellWidth()))); err != nil {
			slog.Error("Failed to resize columns", "width", m.cellWidth(), "error", err)
		}
		m.discardMeasurements()
	}
	if err := m.grid.SetViewport(float64(max(0, width)), float64(max(0, height))); err != nil {
		slog.Error("Failed to apply grid viewport", "width", width, "height", height, "error", err)
	}
	m.setScroll(m.grid.ScrollToCell(m.selected, virtual.AlignAuto))
	return m.render()
}

// Remeasure discards every row height and measures the visible rows again.
func (m *Model) Remeasure() tea.Cmd {
	m.discardMeasurements()
	return m.render()
}

func (m *Model) discardMeasurements() {
	if _, err := m.scheduler.Flush(); err != nil {
		slog.Warn("Some row measurements were dropped", "grid", m.id, "error", err)
	}
	m.grid.Rows().Measure()
	m.resetRows()
}

func (m *Model) GetSize() (int, int) {
	return m.width, m.height
}

func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.render()
}

func (m *Model) Blur() tea.Cmd {
	m.focused = false
	return m.render()
}

func (m *Model) IsFocused() bool {
	return m.focused
}

// ScrollOffset returns the horizontal and vertical scroll offsets.
func (m *Model) ScrollOffset() (x, y int) {
	return int(m.grid.Columns().ScrollOffset()), int(m.grid.Rows().ScrollOffset())
}

// VisibleCells returns the cells currently rendered.
func (m *Model) VisibleCells() []virtual.Cell {
	return m.grid.VisibleCells()
}

func (m *Model) KeyMap() KeyMap {
	return m.keyMap
}
