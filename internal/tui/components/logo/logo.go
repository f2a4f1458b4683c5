package logo

import (
	"strings"
	"unicode"

	"github.com/MakeNowJust/heredoc"
	uv "github.com/charmbracelet/ultraviolet"
)

var Primary = heredoc.Doc(`
	█ █ █ █▀▄ ▀█▀ █ █ ▄▀▄
	▀▄▀ █ █▀▄  █  █ █ █▀█
	 ▀  ▀ ▀ ▀  ▀  ▀▀▀ ▀ ▀
`)

// Height is the number of lines the logo occupies.
var Height = strings.Count(Primary, "\n")

type Logo struct {
	face string
}

func Standard() *Logo {
	return &Logo{
		face: Primary,
	}
}

// Width returns the width of the widest line of the logo.
func (l *Logo) Width() int {
	w := 0
	for _, line := range strings.Split(l.face, "\n") {
		w = max(w, len([]rune(line)))
	}
	return w
}

// Draw paints the logo into area, leaving blank cells untouched.
func (l *Logo) Draw(scr uv.Screen, area uv.Rectangle) {
	for y, line := range strings.Split(l.face, "\n") {
		if area.Min.Y+y >= area.Max.Y {
			return
		}
		for x, r := range []rune(line) {
			if area.Min.X+x >= area.Max.X {
				break
			}
			if unicode.IsSpace(r) {
				continue
			}
			cell := uv.Cell{
				Content: string(r),
				Width:   1,
			}
			scr.SetCell(area.Min.X+x, area.Min.Y+y, &cell)
		}
	}
}

// Render draws the logo with the text to its right into a width wide block.
func (l *Logo) Render(width int, text string) string {
	if width <= 0 {
		return ""
	}
	area := uv.Rect(0, 0, width, Height)
	scr := uv.NewScreenBuffer(area.Dx(), area.Dy())
	l.Draw(scr, area)
	if offset := l.Width() + 2; width > offset {
		uv.NewStyledString(text).Draw(scr, uv.Rect(offset, 0, width-offset, Height))
	}
	return scr.Render()
}
