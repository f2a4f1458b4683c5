package virtual

// Axis selects the dimension a virtualizer measures along.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Extent picks the main-axis component of a width/height pair.
func (a Axis) Extent(width, height float64) float64 {
	if a == AxisHorizontal {
		return width
	}
	return height
}

// Point maps a main-axis and cross-axis position to x, y.
func (a Axis) Point(main, cross float64) (x, y float64) {
	if a == AxisHorizontal {
		return main, cross
	}
	return cross, main
}

// Align positions an item inside the viewport when scrolling to it.
type Align int

const (
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

func (a Align) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "auto"
	}
}

// ParseAlign parses the name of an alignment.
func ParseAlign(s string) (Align, error) {
	switch s {
	case "auto", "":
		return AlignAuto, nil
	case "start":
		return AlignStart, nil
	case "center":
		return AlignCenter, nil
	case "end":
		return AlignEnd, nil
	}
	return AlignAuto, configError("align", s, "must be one of auto, start, center, end")
}
