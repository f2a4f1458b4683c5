package list

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
	"github.com/zeebo/xxh3"
)

// Item is a row of the list. Render may return several lines; the list
// measures the result and never renders items outside the viewport.
type Item interface {
	ID() string
	Render(width int) string
}

type List interface {
	tea.Model
	tea.ViewModel

	SetSize(width, height int) tea.Cmd
	GetSize() (int, int)
	Focus() tea.Cmd
	Blur() tea.Cmd
	IsFocused() bool

	MoveUp(int) tea.Cmd
	MoveDown(int) tea.Cmd
	GoToTop() tea.Cmd
	GoToBottom() tea.Cmd
	SelectItemAbove() tea.Cmd
	SelectItemBelow() tea.Cmd
	ScrollToItem(id string, align virtual.Align) tea.Cmd
	SetItems([]Item) tea.Cmd
	SetSelected(string) tea.Cmd
	SelectedItem() (Item, bool)
	Items() []Item
	UpdateItem(string, Item) tea.Cmd
	DeleteItem(string) tea.Cmd
	PrependItem(Item) tea.Cmd
	AppendItem(Item) tea.Cmd
	Remeasure() tea.Cmd

	VisibleRange() virtual.Range
	ScrollOffset() int
	KeyMap() KeyMap
}

const (
	ItemNotFound              = -1
	ViewportDefaultScrollSize = 2

	// frameInterval is how long measurements are coalesced before the
	// layout is recomputed.
	frameInterval = time.Second / 60
)

const (
	selectedPrefix   = "▌ "
	unselectedPrefix = "  "
	prefixWidth      = 2
)

// frameMsg flushes the coalesced measurements of the list with the given id.
type frameMsg struct {
	id string
}

type confOptions struct {
	width, height int
	gap           int
	estimate      float64
	overscan      int
	// if you are at the last item and go down it will wrap to the top
	wrap          bool
	keyMap        KeyMap
	selectedIndex int
	focused       bool
}

type list struct {
	*confOptions

	id       string
	items    []Item
	indexMap map[string]int
	// heights holds the last reported line count of every item, -1 when the
	// item was never rendered at the current width.
	heights   []int
	viewCache map[string]string
	hashes    map[string]uint64

	v              *virtual.Virtualizer
	scheduler      *virtual.Scheduler
	frameScheduled bool
	// anchored keeps the selection in view when measurements move it.
	anchored bool

	rendered string
}

type ListOption func(*confOptions)

// WithSize sets the size of the list.
func WithSize(width, height int) ListOption {
	return func(l *confOptions) {
		l.width = width
		l.height = height
	}
}

// WithGap sets the number of blank lines between items.
func WithGap(gap int) ListOption {
	return func(l *confOptions) {
		l.gap = gap
	}
}

// WithEstimatedHeight sets the line count assumed for items not yet rendered.
func WithEstimatedHeight(lines float64) ListOption {
	return func(l *confOptions) {
		l.estimate = lines
	}
}

// WithOverscan sets how many items are rendered beyond each edge.
func WithOverscan(overscan int) ListOption {
	return func(l *confOptions) {
		l.overscan = overscan
	}
}

// WithSelectedIndex sets the initially selected item in the list by index.
func WithSelectedIndex(index int) ListOption {
	return func(l *confOptions) {
		l.selectedIndex = index
	}
}

func WithKeyMap(keyMap KeyMap) ListOption {
	return func(l *confOptions) {
		l.keyMap = keyMap
	}
}

func WithWrapNavigation() ListOption {
	return func(l *confOptions) {
		l.wrap = true
	}
}

func WithFocus(focus bool) ListOption {
	return func(l *confOptions) {
		l.focused = focus
	}
}

// New creates a list over items. It fails when the options do not make a
// valid layout.
func New(items []Item, opts ...ListOption) (List, error) {
	o := &confOptions{
		estimate: 1,
		overscan: virtual.DefaultOverscan,
		keyMap:   DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(o)
	}

	v, err := virtual.New(
		virtual.WithEstimateSize(o.estimate),
		virtual.WithOverscan(o.overscan),
		virtual.WithGap(float64(o.gap)),
		virtual.WithViewport(float64(max(0, o.height))),
		virtual.WithRetainMeasurements(),
	)
	if err != nil {
		return nil, err
	}
	l := &list{
		confOptions: o,
		id:          uuid.NewString(),
		v:           v,
		scheduler:   virtual.NewScheduler(v),
	}
	selected := o.selectedIndex
	l.setItems(items)
	l.selectedIndex = l.clampIndex(selected)
	return l, nil
}

// Init implements tea.Model.
func (l *list) Init() tea.Cmd {
	return l.render()
}

// Update implements tea.Model.
func (l *list) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.id != l.id {
			return l, nil
		}
		l.frameScheduled = false
		return l, l.flush()
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelDown:
			return l, l.MoveDown(ViewportDefaultScrollSize)
		case tea.MouseWheelUp:
			return l, l.MoveUp(ViewportDefaultScrollSize)
		}
	case tea.KeyPressMsg:
		if !l.focused {
			return l, nil
		}
		switch {
		case key.Matches(msg, l.keyMap.SelectNext):
			return l, l.SelectItemBelow()
		case key.Matches(msg, l.keyMap.SelectPrev):
			return l, l.SelectItemAbove()
		case key.Matches(msg, l.keyMap.ScrollDown):
			return l, l.MoveDown(1)
		case key.Matches(msg, l.keyMap.ScrollUp):
			return l, l.MoveUp(1)
		case key.Matches(msg, l.keyMap.HalfPageDown):
			return l, l.MoveDown(l.height / 2)
		case key.Matches(msg, l.keyMap.HalfPageUp):
			return l, l.MoveUp(l.height / 2)
		case key.Matches(msg, l.keyMap.PageDown):
			return l, l.MoveDown(l.height)
		case key.Matches(msg, l.keyMap.PageUp):
			return l, l.MoveUp(l.height)
		case key.Matches(msg, l.keyMap.Last):
			return l, l.GoToBottom()
		case key.Matches(msg, l.keyMap.First):
			return l, l.GoToTop()
		}
	}
	return l, nil
}

// View implements tea.Model.
func (l *list) View() string {
	return l.rendered
}

func (l *list) contentWidth() int {
	return max(1, l.width-prefixWidth)
}

// render lays out the visible items and queues the heights it observed.
// A frame is scheduled when any height differs from the known one.
func (l *list) render() tea.Cmd {
	if l.width <= 0 || l.height <= 0 {
		l.rendered = ""
		return nil
	}

	lines := make([]string, l.height)
	scroll := int(l.v.ScrollOffset())
	for _, vi := range l.v.VirtualItems() {
		content := l.renderItem(vi.Index)
		if h := lipgloss.Height(content); l.heights[vi.Index] != h {
			l.heights[vi.Index] = h
			l.scheduler.Report(vi.Index, float64(h))
		}

		top := int(vi.Start) - scroll
		for k, line := range strings.Split(content, "\n") {
			y := top + k
			if y < 0 {
				continue
			}
			if y >= l.height {
				break
			}
			lines[y] = l.decorate(vi.Index, line)
		}
	}
	l.rendered = strings.Join(lines, "\n")
	return l.scheduleFrame()
}

func (l *list) renderItem(index int) string {
	item := l.items[index]
	if content, ok := l.viewCache[item.ID()]; ok {
		return content
	}
	content := item.Render(l.contentWidth())
	l.viewCache[item.ID()] = content
	l.hashes[item.ID()] = xxh3.HashString(content)
	return content
}

func (l *list) decorate(index int, line string) string {
	prefix := unselectedPrefix
	if l.focused && index == l.selectedIndex {
		prefix = selectedPrefix
	}
	return ansi.Truncate(prefix+line, l.width, "…")
}

func (l *list) scheduleFrame() tea.Cmd {
	if !l.scheduler.Dirty() || l.frameScheduled {
		return nil
	}
	l.frameScheduled = true
	id := l.id
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

// flush applies the coalesced measurements and renders again.
func (l *list) flush() tea.Cmd {
	flushed, err := l.scheduler.Flush()
	if err != nil {
		slog.Warn("Some item measurements were dropped", "list", l.id, "error", err)
	}
	if !flushed {
		return nil
	}
	if l.anchored {
		l.scrollToSelection()
	} else {
		l.setOffset(l.v.ScrollOffset())
	}
	return l.render()
}

func (l *list) setOffset(offset float64) {
	offset = l.v.ScrollToOffset(offset, virtual.AlignStart)
	if err := l.v.SetScrollOffset(offset); err != nil {
		slog.Error("Failed to apply scroll offset", "offset", offset, "error", err)
	}
}

func (l *list) scrollToSelection() {
	if len(l.items) == 0 {
		return
	}
	l.setOffset(l.v.ScrollToIndex(l.selectedIndex, virtual.AlignAuto))
}

// changeSelectionWhenScrolling moves the selection to the nearest visible
// item once it scrolled out of view.
func (l *list) changeSelectionWhenScrolling() {
	rng := l.v.Range()
	if rng.Empty() || rng.Visible(l.selectedIndex) {
		return
	}
	if l.selectedIndex < rng.StartIndex {
		l.selectedIndex = rng.StartIndex
	} else {
		l.selectedIndex = rng.EndIndex
	}
}

func (l *list) clampIndex(index int) int {
	if len(l.items) == 0 {
		return 0
	}
	return max(0, min(index, len(l.items)-1))
}

func (l *list) setItems(items []Item) {
	l.items = slices.Clone(items)
	l.reindex()
	l.heights = make([]int, len(l.items))
	for i := range l.heights {
		l.heights[i] = -1
	}
	l.viewCache = make(map[string]string, len(l.items))
	l.hashes = make(map[string]uint64, len(l.items))
	l.resync()
}

func (l *list) reindex() {
	l.indexMap = make(map[string]int, len(l.items))
	for i, item := range l.items {
		l.indexMap[item.ID()] = i
	}
}

// resync rebuilds the size store from the known heights after items moved
// to other indices.
func (l *list) resync() {
	// Pending reports refer to the old indices.
	if _, err := l.scheduler.Flush(); err != nil {
		slog.Warn("Some item measurements were dropped", "list", l.id, "error", err)
	}
	if err := l.v.SetCount(len(l.items)); err != nil {
		slog.Error("Failed to resize list", "count", len(l.items), "error", err)
		return
	}
	l.v.Measure()
	for i, h := range l.heights {
		if h >= 0 {
			l.scheduler.Report(i, float64(h))
		}
	}
	if _, err := l.scheduler.Flush(); err != nil {
		slog.Warn("Some item measurements were dropped", "list", l.id, "error", err)
	}
}

// AppendItem implements List.
func (l *list) AppendItem(item Item) tea.Cmd {
	l.items = append(l.items, item)
	l.indexMap[item.ID()] = len(l.items) - 1
	l.heights = append(l.heights, -1)
	if err := l.v.SetCount(len(l.items)); err != nil {
		slog.Error("Failed to resize list", "count", len(l.items), "error", err)
	}
	return l.render()
}

// PrependItem implements List.
func (l *list) PrependItem(item Item) tea.Cmd {
	l.items = slices.Insert(l.items, 0, item)
	l.heights = slices.Insert(l.heights, 0, -1)
	l.reindex()
	if len(l.items) > 1 {
		l.selectedIndex++
	}
	l.resync()
	if l.anchored {
		l.scrollToSelection()
	}
	return l.render()
}

// DeleteItem implements List.
func (l *list) DeleteItem(id string) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	l.items = slices.Delete(l.items, inx, inx+1)
	l.heights = slices.Delete(l.heights, inx, inx+1)
	delete(l.viewCache, id)
	delete(l.hashes, id)
	l.reindex()
	if inx < l.selectedIndex {
		l.selectedIndex--
	}
	l.selectedIndex = l.clampIndex(l.selectedIndex)
	l.resync()
	l.setOffset(l.v.ScrollOffset())
	return l.render()
}

// UpdateItem implements List. The item keeps its measurement when the
// rendered content did not change.
func (l *list) UpdateItem(id string, item Item) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	content := item.Render(l.contentWidth())
	hash := xxh3.HashString(content)
	prev, rendered := l.hashes[id]

	if item.ID() != id {
		delete(l.indexMap, id)
		delete(l.viewCache, id)
		delete(l.hashes, id)
		l.indexMap[item.ID()] = inx
	}
	l.items[inx] = item
	l.viewCache[item.ID()] = content
	l.hashes[item.ID()] = hash
	if rendered && prev == hash {
		return nil
	}

	if h := lipgloss.Height(content); h != l.heights[inx] {
		l.heights[inx] = h
		l.v.Invalidate(inx)
		l.scheduler.Report(inx, float64(h))
	}
	return l.render()
}

// MoveDown implements List.
func (l *list) MoveDown(n int) tea.Cmd {
	l.anchored = false
	l.setOffset(l.v.ScrollOffset() + float64(n))
	l.changeSelectionWhenScrolling()
	return l.render()
}

// MoveUp implements List.
func (l *list) MoveUp(n int) tea.Cmd {
	l.anchored = false
	l.setOffset(l.v.ScrollOffset() - float64(n))
	l.changeSelectionWhenScrolling()
	return l.render()
}

// GoToTop implements List.
func (l *list) GoToTop() tea.Cmd {
	l.selectedIndex = 0
	l.anchored = true
	l.setOffset(0)
	return l.render()
}

// GoToBottom implements List.
func (l *list) GoToBottom() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	l.selectedIndex = len(l.items) - 1
	l.anchored = true
	l.setOffset(l.v.ScrollToIndex(l.selectedIndex, virtual.AlignEnd))
	return l.render()
}

// SelectItemAbove implements List.
func (l *list) SelectItemAbove() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	switch {
	case l.selectedIndex > 0:
		l.selectedIndex--
	case l.wrap:
		l.selectedIndex = len(l.items) - 1
	default:
		return nil
	}
	l.anchored = true
	l.scrollToSelection()
	return l.render()
}

// SelectItemBelow implements List.
func (l *list) SelectItemBelow() tea.Cmd {
	if len(l.items) == 0 {
		return nil
	}
	switch {
	case l.selectedIndex < len(l.items)-1:
		l.selectedIndex++
	case l.wrap:
		l.selectedIndex = 0
	default:
		return nil
	}
	l.anchored = true
	l.scrollToSelection()
	return l.render()
}

// ScrollToItem implements List. The selection does not change.
func (l *list) ScrollToItem(id string, align virtual.Align) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	l.anchored = false
	l.setOffset(l.v.ScrollToIndex(inx, align))
	return l.render()
}

// SelectedItem implements List.
func (l *list) SelectedItem() (Item, bool) {
	if len(l.items) == 0 {
		return nil, false
	}
	return l.items[l.selectedIndex], true
}

// SetItems implements List. Measurements are discarded and the list
// scrolls back to the top.
func (l *list) SetItems(items []Item) tea.Cmd {
	l.setItems(items)
	l.selectedIndex = 0
	l.anchored = false
	l.setOffset(0)
	return l.render()
}

// SetSelected implements List.
func (l *list) SetSelected(id string) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	l.selectedIndex = inx
	l.anchored = true
	l.scrollToSelection()
	return l.render()
}

// SetSize implements List. A new width rewraps every item, so all
// measurements are discarded.
func (l *list) SetSize(width, height int) tea.Cmd {
	if width != l.width {
		l.width = width
		l.discardMeasurements()
	}
	l.height = height
	if err := l.v.SetViewport(float64(max(0, height))); err != nil {
		slog.Error("Failed to apply viewport", "height", height, "error", err)
	}
	if l.anchored {
		l.scrollToSelection()
	} else {
		l.setOffset(l.v.ScrollOffset())
	}
	return l.render()
}

// Remeasure implements List. Every visible item is rendered and measured
// again; the others fall back to the estimate.
func (l *list) Remeasure() tea.Cmd {
	l.discardMeasurements()
	if l.anchored {
		l.scrollToSelection()
	}
	return l.render()
}

func (l *list) discardMeasurements() {
	// Queued heights belong to the old rendering.
	if _, err := l.scheduler.Flush(); err != nil {
		slog.Warn("Some item measurements were dropped", "list", l.id, "error", err)
	}
	clear(l.viewCache)
	clear(l.hashes)
	for i := range l.heights {
		l.heights[i] = -1
	}
	l.v.Measure()
}

// GetSize implements List.
func (l *list) GetSize() (int, int) {
	return l.width, l.height
}

// Focus implements List.
func (l *list) Focus() tea.Cmd {
	l.focused = true
	return l.render()
}

// Blur implements List.
func (l *list) Blur() tea.Cmd {
	l.focused = false
	return l.render()
}

// IsFocused implements List.
func (l *list) IsFocused() bool {
	return l.focused
}

// Items implements List.
func (l *list) Items() []Item {
	return slices.Clone(l.items)
}

// VisibleRange implements List.
func (l *list) VisibleRange() virtual.Range {
	return l.v.Range()
}

// ScrollOffset implements List.
func (l *list) ScrollOffset() int {
	return int(l.v.ScrollOffset())
}

// KeyMap implements List.
func (l *list) KeyMap() KeyMap {
	return l.keyMap
}
