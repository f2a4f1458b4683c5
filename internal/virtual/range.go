package virtual

// Range is the set of items to materialize. Indices are inclusive and
// OverscanStartIndex <= StartIndex <= EndIndex <= OverscanEndIndex holds for
// every non-empty range.
type Range struct {
	StartIndex         int
	EndIndex           int
	OverscanStartIndex int
	OverscanEndIndex   int
}

var emptyRange = Range{StartIndex: 0, EndIndex: -1, OverscanStartIndex: 0, OverscanEndIndex: -1}

// Empty reports whether the range holds no items.
func (r Range) Empty() bool {
	return r.OverscanEndIndex < r.OverscanStartIndex
}

// Len returns the number of items to materialize, overscan included.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.OverscanEndIndex - r.OverscanStartIndex + 1
}

// Contains reports whether index falls in the overscanned range.
func (r Range) Contains(index int) bool {
	return index >= r.OverscanStartIndex && index <= r.OverscanEndIndex
}

// Visible reports whether index falls in the strictly visible range.
func (r Range) Visible(index int) bool {
	return index >= r.StartIndex && index <= r.EndIndex
}

// Resolve computes the range of items covering the viewport of the given
// extent at scrollOffset, widened by overscan items on both sides.
//
// The start comes from a lookup in the offset index; the end is found by a
// forward scan, which only touches the handful of items on screen. A scroll
// offset past the end of the content, which happens for a moment when the
// item count shrinks, is clamped to the last full viewport.
func Resolve(store *SizeStore, scrollOffset, viewport float64, overscan int) Range {
	n := store.Count()
	if n == 0 {
		return emptyRange
	}
	scrollOffset = max(0, scrollOffset)
	viewport = max(0, viewport)
	overscan = max(0, overscan)

	start := store.IndexAt(scrollOffset)
	if start == n-1 {
		if total := store.Offset(n); scrollOffset >= total {
			scrollOffset = max(0, total-viewport)
			start = store.IndexAt(scrollOffset)
		}
	}

	end := start
	limit := scrollOffset + viewport
	for end < n-1 && store.Offset(end+1) < limit {
		end++
	}

	return Range{
		StartIndex:         start,
		EndIndex:           end,
		OverscanStartIndex: max(0, start-overscan),
		OverscanEndIndex:   min(n-1, end+overscan),
	}
}
