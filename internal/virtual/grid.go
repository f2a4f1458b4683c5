package virtual

import "fmt"

const (
	DefaultGridGap      = 8
	DefaultGridOverscan = 2
)

// Cell is a materialized grid cell. X and Y include the gap terms of the
// columns and rows before it; Width and Height do not.
type Cell struct {
	Index  int
	Row    int
	Column int
	X, Y   float64
	Width  float64
	Height float64
}

type gridOptions struct {
	rowHeight       float64
	rowHeightFunc   EstimateFunc
	columnWidth     float64
	columnWidthFunc EstimateFunc
	gap             float64
	overscan        int

	onMeasurementError func(error)
}

type GridOption func(*gridOptions)

// WithRowHeight estimates every row with the same height.
func WithRowHeight(height float64) GridOption {
	return func(o *gridOptions) {
		o.rowHeight = height
		o.rowHeightFunc = nil
	}
}

// WithRowHeightFunc estimates every row on its own.
func WithRowHeightFunc(fn EstimateFunc) GridOption {
	return func(o *gridOptions) {
		o.rowHeightFunc = fn
	}
}

// WithColumnWidth estimates every column with the same width.
func WithColumnWidth(width float64) GridOption {
	return func(o *gridOptions) {
		o.columnWidth = width
		o.columnWidthFunc = nil
	}
}

// WithColumnWidthFunc estimates every column on its own.
func WithColumnWidthFunc(fn EstimateFunc) GridOption {
	return func(o *gridOptions) {
		o.columnWidthFunc = fn
	}
}

// WithGridGap sets the space between cells along both axes.
func WithGridGap(gap float64) GridOption {
	return func(o *gridOptions) {
		o.gap = gap
	}
}

// WithGridOverscan sets the overscan, in rows and columns.
func WithGridOverscan(overscan int) GridOption {
	return func(o *gridOptions) {
		o.overscan = overscan
	}
}

// WithGridMeasurementErrorHandler receives rejected row and column
// measurements.
func WithGridMeasurementErrorHandler(fn func(error)) GridOption {
	return func(o *gridOptions) {
		o.onMeasurementError = fn
	}
}

// Grid lays a flat collection out in rows of a fixed number of columns and
// virtualizes both axes independently.
type Grid struct {
	count   int
	columns int
	rows    *Virtualizer
	cols    *Virtualizer
}

// NewGrid creates a grid of count items in columns columns.
func NewGrid(count, columns int, opts ...GridOption) (*Grid, error) {
	o := &gridOptions{
		rowHeight:   1,
		columnWidth: 1,
		gap:         DefaultGridGap,
		overscan:    DefaultGridOverscan,
	}
	for _, opt := range opts {
		opt(o)
	}
	if count < 0 {
		return nil, configError("count", count, "must not be negative")
	}
	if columns < 1 {
		return nil, configError("columns", columns, "must be at least 1")
	}

	common := []Option{
		WithGap(o.gap),
		WithOverscan(o.overscan),
		WithMeasurementErrorHandler(o.onMeasurementError),
	}
	rowOpts := append([]Option{WithCount(rowCount(count, columns)), estimateOption(o.rowHeight, o.rowHeightFunc)}, common...)
	rows, err := New(rowOpts...)
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	colOpts := append([]Option{WithCount(columns), estimateOption(o.columnWidth, o.columnWidthFunc), WithHorizontal()}, common...)
	cols, err := New(colOpts...)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	return &Grid{
		count:   count,
		columns: columns,
		rows:    rows,
		cols:    cols,
	}, nil
}

func estimateOption(size float64, fn EstimateFunc) Option {
	if fn != nil {
		return WithEstimateFunc(fn)
	}
	return WithEstimateSize(size)
}

func rowCount(count, columns int) int {
	return (count + columns - 1) / columns
}

// Count returns the number of items.
func (g *Grid) Count() int {
	return g.count
}

// ColumnCount returns the number of columns.
func (g *Grid) ColumnCount() int {
	return g.columns
}

// RowCount returns the number of rows, the last one possibly partial.
func (g *Grid) RowCount() int {
	return g.rows.Count()
}

// Rows returns the row virtualizer.
func (g *Grid) Rows() *Virtualizer {
	return g.rows
}

// Columns returns the column virtualizer.
func (g *Grid) Columns() *Virtualizer {
	return g.cols
}

// CellAt maps a flat index to its row and column.
func (g *Grid) CellAt(index int) (row, col int) {
	return index / g.columns, index % g.columns
}

// IndexAt maps a row and column to a flat index. It reports false for
// positions outside the grid, including the empty tail of the last row.
func (g *Grid) IndexAt(row, col int) (int, bool) {
	if row < 0 || col < 0 || col >= g.columns {
		return 0, false
	}
	index := row*g.columns + col
	if index >= g.count {
		return 0, false
	}
	return index, true
}

// SetScroll applies the horizontal and vertical scroll offsets.
func (g *Grid) SetScroll(x, y float64) error {
	if err := g.cols.SetScrollOffset(x); err != nil {
		return err
	}
	return g.rows.SetScrollOffset(y)
}

// SetViewport applies the container size.
func (g *Grid) SetViewport(width, height float64) error {
	if err := g.cols.SetRect(width, height); err != nil {
		return err
	}
	return g.rows.SetRect(width, height)
}

// VisibleCells returns the cross product of the visible rows and columns,
// row by row, leaving out positions past the last item.
func (g *Grid) VisibleCells() []Cell {
	rows := g.rows.VirtualItems()
	cols := g.cols.VirtualItems()
	cells := make([]Cell, 0, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			index, ok := g.IndexAt(r.Index, c.Index)
			if !ok {
				break
			}
			cells = append(cells, Cell{
				Index:  index,
				Row:    r.Index,
				Column: c.Index,
				X:      c.Start,
				Y:      r.Start,
				Width:  c.Size,
				Height: r.Size,
			})
		}
	}
	return cells
}

// MeasureRow records the observed height of a row.
func (g *Grid) MeasureRow(row int, height float64) error {
	return g.rows.MeasureElement(row, height)
}

// MeasureColumn records the observed width of a column.
func (g *Grid) MeasureColumn(col int, width float64) error {
	return g.cols.MeasureElement(col, width)
}

// ScrollToCell returns the scroll offsets placing the item at index
// according to align on both axes.
func (g *Grid) ScrollToCell(index int, align Align) (x, y float64) {
	if g.count == 0 {
		return 0, 0
	}
	row, col := g.CellAt(max(0, min(index, g.count-1)))
	return g.cols.ScrollToIndex(col, align), g.rows.ScrollToIndex(row, align)
}

// TotalSize returns the extent of the whole grid.
func (g *Grid) TotalSize() (width, height float64) {
	return g.cols.TotalSize(), g.rows.TotalSize()
}

// SetCount starts a new session for count items.
func (g *Grid) SetCount(count int) error {
	if count < 0 {
		return configError("count", count, "must not be negative")
	}
	if err := g.rows.SetCount(rowCount(count, g.columns)); err != nil {
		return err
	}
	g.count = count
	return nil
}

// SetColumns changes the number of columns, which reflows every row.
func (g *Grid) SetColumns(columns int) error {
	if columns < 1 {
		return configError("columns", columns, "must be at least 1")
	}
	if err := g.rows.SetCount(rowCount(g.count, columns)); err != nil {
		return err
	}
	if err := g.cols.SetCount(columns); err != nil {
		// Both row counts were accepted before, so this cannot fail.
		_ = g.rows.SetCount(rowCount(g.count, g.columns))
		return err
	}
	g.columns = columns
	return nil
}
