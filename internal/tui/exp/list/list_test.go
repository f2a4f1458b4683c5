package list

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/virtua/internal/virtual"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	id      string
	lines   []string
	renders *int
}

func (t testItem) ID() string {
	return t.id
}

func (t testItem) Render(int) string {
	if t.renders != nil {
		*t.renders++
	}
	return strings.Join(t.lines, "\n")
}

func createItem(text string, extraLines int) testItem {
	lines := []string{text}
	for i := range extraLines {
		lines = append(lines, fmt.Sprintf("line %d", i+1))
	}
	return testItem{id: uuid.NewString(), lines: lines}
}

func createItems(n, extraLines int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = createItem(fmt.Sprintf("item %d", i), extraLines)
	}
	return items
}

func newTestList(t *testing.T, items []Item, opts ...ListOption) *list {
	t.Helper()
	l, err := New(items, opts...)
	require.NoError(t, err)
	return l.(*list)
}

// settle delivers frames until no measurement is pending.
func settle(l *list) {
	for range 10 {
		if !l.scheduler.Dirty() {
			return
		}
		l.Update(frameMsg{id: l.id})
	}
}

func viewLines(l *list) []string {
	return strings.Split(l.View(), "\n")
}

func TestListRendering(t *testing.T) {
	t.Parallel()

	t.Run("renders only the visible window", func(t *testing.T) {
		t.Parallel()
		var renders int
		items := make([]Item, 1000)
		for i := range items {
			items[i] = testItem{id: uuid.NewString(), lines: []string{fmt.Sprintf("item %d", i), "body"}, renders: &renders}
		}
		l := newTestList(t, items, WithSize(20, 10), WithOverscan(0))

		cmd := l.Init()
		assert.NotNil(t, cmd)
		assert.Equal(t, 10, renders)
		assert.True(t, l.scheduler.Dirty())

		settle(l)
		assert.Equal(t, 10, renders)
		assert.False(t, l.scheduler.Dirty())

		expected := []string{
			"  item 0", "  body",
			"  item 1", "  body",
			"  item 2", "  body",
			"  item 3", "  body",
			"  item 4", "  body",
		}
		assert.Equal(t, strings.Join(expected, "\n"), l.View())

		rng := l.VisibleRange()
		assert.Equal(t, 0, rng.StartIndex)
		assert.Equal(t, 4, rng.EndIndex)
		assert.Equal(t, 1010.0, l.v.TotalSize())
	})

	t.Run("gap between items", func(t *testing.T) {
		t.Parallel()
		items := []Item{createItem("a", 0), createItem("b", 0), createItem("c", 0), createItem("d", 0)}
		l := newTestList(t, items, WithSize(20, 5), WithGap(1), WithOverscan(0))
		l.Init()
		settle(l)

		assert.Equal(t, []string{"  a", "", "  b", "", "  c"}, viewLines(l))
	})

	t.Run("focused selection is marked", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(3, 0), WithSize(20, 3), WithFocus(true), WithSelectedIndex(1))
		l.Init()
		settle(l)

		assert.Equal(t, []string{"  item 0", "▌ item 1", "  item 2"}, viewLines(l))
		l.Blur()
		assert.Equal(t, []string{"  item 0", "  item 1", "  item 2"}, viewLines(l))
	})

	t.Run("long lines are truncated", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, []Item{createItem("abcdefghijklmnop", 0)}, WithSize(10, 1))
		l.Init()

		assert.Equal(t, "  abcdefg…", l.View())
	})

	t.Run("unsized list renders nothing", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(10, 0))

		assert.Nil(t, l.Init())
		assert.Empty(t, l.View())
		assert.True(t, l.VisibleRange().Empty())
	})

	t.Run("frames of other lists are ignored", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(10, 1), WithSize(20, 5))
		l.Init()

		_, cmd := l.Update(frameMsg{id: uuid.NewString()})
		assert.Nil(t, cmd)
		assert.True(t, l.scheduler.Dirty())
	})

	t.Run("invalid layout", func(t *testing.T) {
		t.Parallel()
		_, err := New(createItems(3, 0), WithGap(-1))
		assert.ErrorIs(t, err, virtual.ErrConfiguration)

		_, err = New(createItems(3, 0), WithEstimatedHeight(0))
		assert.ErrorIs(t, err, virtual.ErrConfiguration)
	})
}

func TestListNavigation(t *testing.T) {
	t.Parallel()

	t.Run("selection scrolls into view", func(t *testing.T) {
		t.Parallel()
		items := createItems(100, 0)
		l := newTestList(t, items, WithSize(20, 5), WithFocus(true), WithOverscan(0))
		l.Init()
		settle(l)

		for range 6 {
			l.SelectItemBelow()
		}
		selected, ok := l.SelectedItem()
		require.True(t, ok)
		assert.Equal(t, items[6].ID(), selected.ID())
		assert.Equal(t, 2, l.ScrollOffset())

		lines := viewLines(l)
		assert.Equal(t, "  item 2", lines[0])
		assert.Equal(t, "▌ item 6", lines[4])
	})

	t.Run("top and bottom", func(t *testing.T) {
		t.Parallel()
		items := createItems(100, 0)
		l := newTestList(t, items, WithSize(20, 5), WithFocus(true), WithOverscan(0))
		l.Init()
		settle(l)

		l.GoToBottom()
		selected, _ := l.SelectedItem()
		assert.Equal(t, items[99].ID(), selected.ID())
		assert.Equal(t, 95, l.ScrollOffset())
		settle(l)
		assert.Equal(t, "▌ item 99", viewLines(l)[4])

		l.GoToTop()
		selected, _ = l.SelectedItem()
		assert.Equal(t, items[0].ID(), selected.ID())
		assert.Equal(t, 0, l.ScrollOffset())

		assert.Nil(t, l.SelectItemAbove())
		assert.Equal(t, 0, l.selectedIndex)
	})

	t.Run("wrap navigation", func(t *testing.T) {
		t.Parallel()
		items := createItems(100, 0)
		l := newTestList(t, items, WithSize(20, 5), WithFocus(true), WithWrapNavigation(), WithOverscan(0))
		l.Init()
		settle(l)

		l.SelectItemAbove()
		assert.Equal(t, 99, l.selectedIndex)
		assert.Equal(t, 95, l.ScrollOffset())

		l.SelectItemBelow()
		assert.Equal(t, 0, l.selectedIndex)
		assert.Equal(t, 0, l.ScrollOffset())
	})

	t.Run("scrolling drags the selection along", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(100, 0), WithSize(20, 5), WithFocus(true), WithOverscan(0))
		l.Init()
		settle(l)

		l.MoveDown(10)
		assert.Equal(t, 10, l.ScrollOffset())
		assert.Equal(t, 10, l.selectedIndex)

		l.MoveUp(100)
		assert.Equal(t, 0, l.ScrollOffset())
		assert.Equal(t, 4, l.selectedIndex)

		l.MoveDown(1000)
		assert.Equal(t, 95, l.ScrollOffset())
	})

	t.Run("scroll to item keeps the selection", func(t *testing.T) {
		t.Parallel()
		items := createItems(100, 0)
		l := newTestList(t, items, WithSize(20, 5), WithOverscan(0))
		l.Init()
		settle(l)

		l.ScrollToItem(items[50].ID(), virtual.AlignCenter)
		assert.Equal(t, 48, l.ScrollOffset())
		assert.Equal(t, 0, l.selectedIndex)
		assert.Nil(t, l.ScrollToItem("missing", virtual.AlignStart))

		l.SetSelected(items[20].ID())
		assert.Equal(t, 20, l.selectedIndex)
		assert.Equal(t, 20, l.ScrollOffset())
	})

	t.Run("keys", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(100, 0), WithSize(20, 5), WithOverscan(0))
		l.Init()
		settle(l)

		l.Update(tea.KeyPressMsg{Code: 'j', Text: "j"})
		assert.Equal(t, 0, l.selectedIndex, "blurred list ignores keys")

		l.Focus()
		l.Update(tea.KeyPressMsg{Code: 'j', Text: "j"})
		l.Update(tea.KeyPressMsg{Code: tea.KeyDown})
		assert.Equal(t, 2, l.selectedIndex)

		l.Update(tea.KeyPressMsg{Code: 'G', Text: "G"})
		assert.Equal(t, 99, l.selectedIndex)

		l.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
		assert.Equal(t, 0, l.selectedIndex)

		l.Update(tea.KeyPressMsg{Code: 'f', Text: "f"})
		assert.Equal(t, 5, l.ScrollOffset())
	})
}

func TestListKeyMap(t *testing.T) {
	t.Parallel()

	t.Run("scroll keys move the viewport only", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(100, 0), WithSize(20, 5), WithFocus(true), WithOverscan(0))
		l.Init()
		settle(l)

		l.Update(tea.KeyPressMsg{Code: 'J', Text: "J"})
		l.Update(tea.KeyPressMsg{Code: 'J', Text: "J"})
		assert.Equal(t, 2, l.ScrollOffset())
		assert.Equal(t, 2, l.selectedIndex)

		l.Update(tea.KeyPressMsg{Code: 'K', Text: "K"})
		assert.Equal(t, 1, l.ScrollOffset())
		assert.Equal(t, 2, l.selectedIndex)

		l.Update(tea.KeyPressMsg{Code: 'd', Text: "d"})
		assert.Equal(t, 3, l.ScrollOffset())
	})

	t.Run("help groups selection and scrolling", func(t *testing.T) {
		t.Parallel()
		km := DefaultKeyMap()

		full := km.FullHelp()
		require.Len(t, full, 3)
		assert.Equal(t, []string{"↑/k", "↓/j", "g", "G"}, helpKeys(full[0]))
		assert.Equal(t, []string{"K", "J"}, helpKeys(full[1]))
		assert.Equal(t, "next item", km.ShortHelp()[0].Help().Desc)
	})
}

func helpKeys(bindings []key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Help().Key)
	}
	return out
}

func TestListMutations(t *testing.T) {
	t.Parallel()

	t.Run("append delete prepend", func(t *testing.T) {
		t.Parallel()
		a, b, c := createItem("a", 0), createItem("b", 0), createItem("c", 0)
		l := newTestList(t, []Item{a, b, c}, WithSize(20, 10))
		l.Init()
		settle(l)

		d := createItem("d", 0)
		l.AppendItem(d)
		settle(l)
		assert.Len(t, l.Items(), 4)
		assert.Equal(t, "  d", viewLines(l)[3])

		l.DeleteItem(b.ID())
		settle(l)
		assert.Equal(t, []string{"  a", "  c", "  d"}, viewLines(l)[:3])
		assert.Equal(t, "", viewLines(l)[3])
		for i := range 3 {
			assert.True(t, l.v.Store().Measured(i))
		}

		z := createItem("z", 0)
		l.PrependItem(z)
		assert.False(t, l.v.Store().Measured(0))
		assert.True(t, l.v.Store().Measured(1))
		assert.Equal(t, "  z", viewLines(l)[0])
		selected, _ := l.SelectedItem()
		assert.Equal(t, a.ID(), selected.ID())

		assert.Nil(t, l.DeleteItem("missing"))
	})

	t.Run("update keeps unchanged measurements", func(t *testing.T) {
		t.Parallel()
		items := createItems(10, 0)
		l := newTestList(t, items, WithSize(20, 10))
		l.Init()
		settle(l)

		same := items[2].(testItem)
		assert.Nil(t, l.UpdateItem(same.ID(), same))
		assert.True(t, l.v.Store().Measured(2))

		taller := testItem{id: same.id, lines: []string{"item 2", "more", "and more"}}
		l.UpdateItem(taller.ID(), taller)
		assert.False(t, l.v.Store().Measured(2))

		settle(l)
		assert.Equal(t, 3.0, l.v.Size(2))
		lines := viewLines(l)
		assert.Equal(t, "  and more", lines[4])
		assert.Equal(t, "  item 3", lines[5])
	})

	t.Run("set items resets the session", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(100, 1), WithSize(20, 6))
		l.Init()
		settle(l)
		l.MoveDown(20)
		settle(l)

		l.SetItems(createItems(5, 0))
		assert.Equal(t, 0, l.ScrollOffset())
		assert.Equal(t, 5, l.v.Count())
		assert.Equal(t, "  item 0", viewLines(l)[0])
	})

	t.Run("width change remeasures", func(t *testing.T) {
		t.Parallel()
		l := newTestList(t, createItems(10, 0), WithSize(20, 10))
		l.Init()
		settle(l)
		require.True(t, l.v.Store().Measured(0))

		l.SetSize(30, 10)
		assert.False(t, l.v.Store().Measured(0))
		settle(l)
		assert.True(t, l.v.Store().Measured(0))

		l.SetSize(30, 4)
		w, h := l.GetSize()
		assert.Equal(t, 30, w)
		assert.Equal(t, 4, h)
		assert.Len(t, viewLines(l), 4)
	})
}
