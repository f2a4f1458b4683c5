package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/virtua/internal/tui/exp/grid"
	"github.com/charmbracelet/virtua/internal/tui/exp/list"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	bodyStyle  = lipgloss.NewStyle().Faint(true)
)

var bodyLines = []string{
	"Only the items inside the viewport are rendered.",
	"Heights are estimated until an item is drawn once.",
	"Measurements are applied together on the next frame.",
	"Items below a measured one shift without a full relayout.",
	"Scrolling to an item works before it was ever measured.",
}

// sampleItem is a generated entry whose height varies with its index.
type sampleItem struct {
	index int
}

func (s sampleItem) ID() string {
	return fmt.Sprintf("item-%d", s.index)
}

// Lines returns the number of lines the item renders to.
func (s sampleItem) Lines() int {
	return 1 + (s.index*7)%4
}

func (s sampleItem) Render(int) string {
	lines := make([]string, 0, s.Lines())
	lines = append(lines, titleStyle.Render(fmt.Sprintf("Item %d", s.index)))
	for i := 1; i < s.Lines(); i++ {
		lines = append(lines, bodyStyle.Render(bodyLines[(s.index+i)%len(bodyLines)]))
	}
	return strings.Join(lines, "\n")
}

// sampleCell is a generated grid cell.
type sampleCell struct {
	index int
}

func (s sampleCell) ID() string {
	return fmt.Sprintf("cell-%d", s.index)
}

func (s sampleCell) Render(int) string {
	label := titleStyle.Render(fmt.Sprintf("#%d", s.index))
	if s.index%3 == 0 {
		return label + "\n" + bodyStyle.Render("tall")
	}
	return label
}

func listItems(n int) []list.Item {
	items := make([]list.Item, n)
	for i := range items {
		items[i] = sampleItem{index: i}
	}
	return items
}

func gridItems(n int) []grid.Item {
	items := make([]grid.Item, n)
	for i := range items {
		items[i] = sampleCell{index: i}
	}
	return items
}
