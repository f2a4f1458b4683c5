package virtual

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVirtualizer(t *testing.T, opts ...Option) *Virtualizer {
	t.Helper()
	base := []Option{
		WithCount(1000),
		WithEstimateSize(50),
		WithOverscan(2),
		WithViewport(500),
	}
	v, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return v
}

func indices(items []VirtualItem) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.Index)
	}
	return out
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  []Option
		field string
	}{
		{name: "negative count", opts: []Option{WithCount(-1), WithEstimateSize(10)}, field: "count"},
		{name: "missing estimate", opts: []Option{WithCount(1)}, field: "estimateSize"},
		{name: "zero estimate", opts: []Option{WithCount(1), WithEstimateSize(0)}, field: "estimateSize"},
		{name: "negative estimate", opts: []Option{WithCount(1), WithEstimateSize(-4)}, field: "estimateSize"},
		{name: "invalid estimate func", opts: []Option{WithCount(3), WithEstimateFunc(func(i int) float64 { return float64(i) })}, field: "estimateSize"},
		{name: "negative overscan", opts: []Option{WithEstimateSize(10), WithOverscan(-1)}, field: "overscan"},
		{name: "nan gap", opts: []Option{WithEstimateSize(10), WithGap(math.NaN())}, field: "gap"},
		{name: "negative viewport", opts: []Option{WithEstimateSize(10), WithViewport(-1)}, field: "viewport"},
		{name: "infinite offset", opts: []Option{WithEstimateSize(10), WithInitialOffset(math.Inf(1))}, field: "scrollOffset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := New(tt.opts...)
			require.Error(t, err)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, ErrConfiguration)

			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestVirtualItems(t *testing.T) {
	t.Parallel()

	t.Run("initial window", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)

		items := v.VirtualItems()
		require.Len(t, items, 12)
		for i, item := range items {
			assert.Equal(t, i, item.Index)
			assert.Equal(t, float64(i*50), item.Start)
			assert.Equal(t, 50.0, item.Size)
		}
		assert.Equal(t, Range{StartIndex: 0, EndIndex: 9, OverscanStartIndex: 0, OverscanEndIndex: 11}, v.Range())
		assert.Equal(t, 50000.0, v.TotalSize())
	})

	t.Run("scrolled", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		require.NoError(t, v.SetScrollOffset(505))

		assert.Equal(t, 10, v.Range().StartIndex)
		items := v.VirtualItems()
		assert.Equal(t, 8, items[0].Index)
		assert.Equal(t, 400.0, items[0].Start)
	})

	t.Run("idempotent without state changes", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t, WithInitialOffset(1234))

		first := append([]VirtualItem(nil), v.VirtualItems()...)
		assert.Equal(t, first, v.VirtualItems())
	})

	t.Run("ascending without duplicates", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		for i := range 20 {
			require.NoError(t, v.MeasureElement(i*3, float64(10+i*7)))
		}

		for _, offset := range []float64{0, 37, 480, 999, 2000} {
			require.NoError(t, v.SetScrollOffset(offset))
			items := v.VirtualItems()
			for i := 1; i < len(items); i++ {
				assert.Greater(t, items[i].Index, items[i-1].Index)
			}
			for _, item := range items {
				assert.Equal(t, v.Offset(item.Index), item.Start)
			}
		}
	})

	t.Run("unsized viewport yields nothing", func(t *testing.T) {
		t.Parallel()
		v, err := New(WithCount(10), WithEstimateSize(5))
		require.NoError(t, err)

		assert.Empty(t, v.VirtualItems())
		assert.True(t, v.Range().Empty())

		require.NoError(t, v.SetRect(100, 20))
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, indices(v.VirtualItems()))
	})

	t.Run("negative scroll offset clamps to zero", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)

		require.NoError(t, v.SetScrollOffset(-40))
		assert.Equal(t, 0.0, v.ScrollOffset())
	})

	t.Run("non finite scroll offset is rejected", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t, WithInitialOffset(100))

		assert.ErrorIs(t, v.SetScrollOffset(math.NaN()), ErrConfiguration)
		assert.Equal(t, 100.0, v.ScrollOffset())
	})

	t.Run("horizontal axis takes the width", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t, WithHorizontal())

		require.NoError(t, v.SetRect(200, 900))
		assert.Equal(t, AxisHorizontal, v.Axis())
		assert.Equal(t, 200.0, v.Viewport())
		assert.Equal(t, 3, v.Range().EndIndex)
	})
}

func TestMeasureElement(t *testing.T) {
	t.Parallel()

	t.Run("measurement shifts following items", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		before := v.VirtualItems()
		assert.Equal(t, 200.0, before[4].Start)

		require.NoError(t, v.MeasureElement(3, 120))

		items := v.VirtualItems()
		assert.Equal(t, 120.0, items[3].Size)
		assert.Equal(t, 150.0, items[3].Start)
		assert.Equal(t, 270.0, items[4].Start)
		assert.Equal(t, 100.0, items[2].Start)
		assert.Equal(t, 50070.0, v.TotalSize())
	})

	t.Run("invalid measurement is reported and dropped", func(t *testing.T) {
		t.Parallel()
		var reported []error
		v := newTestVirtualizer(t, WithMeasurementErrorHandler(func(err error) {
			reported = append(reported, err)
		}))
		require.NoError(t, v.MeasureElement(2, 80))
		before := append([]VirtualItem(nil), v.VirtualItems()...)

		err := v.MeasureElement(2, math.NaN())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMeasurement)
		require.Len(t, reported, 1)
		assert.Equal(t, err, reported[0])

		assert.Equal(t, before, v.VirtualItems())
		assert.Equal(t, 80.0, v.Size(2))
	})

	t.Run("invalidate restores the estimate", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		require.NoError(t, v.MeasureElement(0, 10))
		assert.Equal(t, 10.0, v.VirtualItems()[1].Start)

		v.Invalidate(0)
		assert.Equal(t, 50.0, v.VirtualItems()[1].Start)
	})

	t.Run("measure drops everything", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		require.NoError(t, v.MeasureElement(0, 10))
		require.NoError(t, v.MeasureElement(5, 10))

		v.Measure()
		assert.Equal(t, 50000.0, v.TotalSize())
		assert.False(t, v.Store().Measured(5))
	})
}

func TestSetCount(t *testing.T) {
	t.Parallel()

	t.Run("shrinking while scrolled clamps the range", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		require.NoError(t, v.SetScrollOffset(v.ScrollToIndex(900, AlignStart)))
		assert.Equal(t, 900, v.Range().StartIndex)

		require.NoError(t, v.SetCount(5))
		items := v.VirtualItems()
		assert.Equal(t, []int{0, 1, 2, 3, 4}, indices(items))
	})

	t.Run("never returns an index past the count", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t, WithInitialOffset(30000))
		for _, n := range []int{700, 601, 12, 1, 0, 40} {
			require.NoError(t, v.SetCount(n))
			for _, item := range v.VirtualItems() {
				assert.Less(t, item.Index, n)
			}
		}
	})

	t.Run("new session drops measurements", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		require.NoError(t, v.MeasureElement(1, 10))

		require.NoError(t, v.SetCount(20))
		assert.False(t, v.Store().Measured(1))
		assert.Equal(t, 1000.0, v.TotalSize())
	})

	t.Run("retained measurements survive", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t, WithRetainMeasurements())
		require.NoError(t, v.MeasureElement(1, 10))

		require.NoError(t, v.SetCount(20))
		assert.True(t, v.Store().Measured(1))
		assert.Equal(t, 960.0, v.TotalSize())
	})

	t.Run("negative count is rejected", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)

		assert.ErrorIs(t, v.SetCount(-2), ErrConfiguration)
		assert.Equal(t, 1000, v.Count())
	})

	t.Run("new estimate starts a new session", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t)
		require.NoError(t, v.MeasureElement(1, 10))

		require.NoError(t, v.SetEstimate(FixedSize(20)))
		assert.False(t, v.Store().Measured(1))
		assert.Equal(t, 20000.0, v.TotalSize())
		assert.ErrorIs(t, v.SetEstimate(nil), ErrConfiguration)
	})

	t.Run("estimate is checked at measured indices", func(t *testing.T) {
		t.Parallel()
		badAtFive := func(i int) float64 {
			if i == 5 {
				return -1000
			}
			return 50
		}
		for _, retain := range []bool{false, true} {
			var opts []Option
			if retain {
				opts = append(opts, WithRetainMeasurements())
			}
			v := newTestVirtualizer(t, opts...)
			require.NoError(t, v.MeasureElement(5, 70))

			err := v.SetEstimate(badAtFive)
			assert.ErrorIs(t, err, ErrConfiguration, "retain=%v", retain)
			assert.Equal(t, 70.0, v.Size(5))
			assert.True(t, v.Store().Measured(5))
			assert.NotPanics(t, func() { v.VirtualItems() })
			assert.Equal(t, 320.0, v.Offset(6))

			v.Invalidate(5)
			assert.Equal(t, 50.0, v.Size(5))
		}
	})
}

func TestScrollToIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scroll float64
		index  int
		align  Align
		want   float64
	}{
		{name: "start", index: 50, align: AlignStart, want: 2500},
		{name: "center", index: 50, align: AlignCenter, want: 2275},
		{name: "end", index: 50, align: AlignEnd, want: 2050},
		{name: "auto already visible", scroll: 0, index: 3, align: AlignAuto, want: 0},
		{name: "auto below", scroll: 0, index: 50, align: AlignAuto, want: 2050},
		{name: "auto above", scroll: 5000, index: 50, align: AlignAuto, want: 2500},
		{name: "auto partially visible", scroll: 525, index: 10, align: AlignAuto, want: 500},
		{name: "clamped at the end", index: 999, align: AlignStart, want: 49500},
		{name: "clamped at the start", index: 0, align: AlignEnd, want: 0},
		{name: "index below range", index: -5, align: AlignStart, want: 0},
		{name: "index above range", index: 5000, align: AlignEnd, want: 49500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := newTestVirtualizer(t, WithInitialOffset(tt.scroll))

			assert.Equal(t, tt.want, v.ScrollToIndex(tt.index, tt.align))
			assert.Equal(t, tt.scroll, v.ScrollOffset())
		})
	}

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()
		v := newTestVirtualizer(t, WithCount(0))

		assert.Equal(t, 0.0, v.ScrollToIndex(3, AlignCenter))
	})
}

func TestScrollToOffset(t *testing.T) {
	t.Parallel()
	v := newTestVirtualizer(t)

	assert.Equal(t, 1000.0, v.ScrollToOffset(1000, AlignStart))
	assert.Equal(t, 750.0, v.ScrollToOffset(1000, AlignCenter))
	assert.Equal(t, 500.0, v.ScrollToOffset(1000, AlignEnd))
	assert.Equal(t, 0.0, v.ScrollToOffset(-10, AlignStart))
	assert.Equal(t, 49500.0, v.ScrollToOffset(1e9, AlignStart))
}

func TestItemAt(t *testing.T) {
	t.Parallel()
	v := newTestVirtualizer(t)

	item, ok := v.ItemAt(505)
	require.True(t, ok)
	assert.Equal(t, VirtualItem{Index: 10, Start: 500, Size: 50}, item)
	assert.Equal(t, 550.0, item.End())

	_, ok = v.ItemAt(-1)
	assert.False(t, ok)
	_, ok = v.ItemAt(50000)
	assert.False(t, ok)
}

func TestParseAlign(t *testing.T) {
	t.Parallel()

	for _, a := range []Align{AlignAuto, AlignStart, AlignCenter, AlignEnd} {
		got, err := ParseAlign(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAlign("middle")
	assert.ErrorIs(t, err, ErrConfiguration)
}
