package virtual

import (
	"log/slog"
)

const (
	DefaultOverscan = 3
)

// VirtualItem describes where an item sits. It is recomputed on every resolve
// and never kept.
type VirtualItem struct {
	Index int
	Start float64
	Size  float64
}

// End returns the offset right after the item, gap excluded.
func (i VirtualItem) End() float64 {
	return i.Start + i.Size
}

type confOptions struct {
	count        int
	estimate     EstimateFunc
	estimateSize float64
	overscan     int
	gap          float64
	axis         Axis
	epsilon      float64
	initViewport float64
	initOffset   float64
	retain       bool

	onMeasurementError func(error)
}

type Option func(*confOptions)

// WithCount sets the number of items.
func WithCount(count int) Option {
	return func(o *confOptions) {
		o.count = count
	}
}

// WithEstimateSize uses the same provisional size for every item.
func WithEstimateSize(size float64) Option {
	return func(o *confOptions) {
		o.estimate = nil
		o.estimateSize = size
	}
}

// WithEstimateFunc estimates every item on its own.
func WithEstimateFunc(fn EstimateFunc) Option {
	return func(o *confOptions) {
		o.estimate = fn
		o.estimateSize = 0
	}
}

// WithOverscan sets how many items are materialized beyond each edge of
// the viewport.
func WithOverscan(overscan int) Option {
	return func(o *confOptions) {
		o.overscan = overscan
	}
}

// WithGap sets the space added after every item.
func WithGap(gap float64) Option {
	return func(o *confOptions) {
		o.gap = gap
	}
}

// WithHorizontal lays items out along the x axis.
func WithHorizontal() Option {
	return func(o *confOptions) {
		o.axis = AxisHorizontal
	}
}

// WithEpsilon ignores measurements closer than epsilon to the known size.
func WithEpsilon(epsilon float64) Option {
	return func(o *confOptions) {
		o.epsilon = epsilon
	}
}

// WithViewport sets the initial viewport extent.
func WithViewport(extent float64) Option {
	return func(o *confOptions) {
		o.initViewport = extent
	}
}

// WithInitialOffset sets the initial scroll offset.
func WithInitialOffset(offset float64) Option {
	return func(o *confOptions) {
		o.initOffset = offset
	}
}

// WithRetainMeasurements keeps measurements of surviving items when the
// count or the estimate changes, instead of starting a fresh session.
func WithRetainMeasurements() Option {
	return func(o *confOptions) {
		o.retain = true
	}
}

// WithMeasurementErrorHandler receives every rejected measurement. Without
// one, rejected measurements are logged.
func WithMeasurementErrorHandler(fn func(error)) Option {
	return func(o *confOptions) {
		o.onMeasurementError = fn
	}
}

// Virtualizer answers which items of a collection are visible at a scroll
// offset and where they sit. It owns its SizeStore and is not safe for
// concurrent use.
type Virtualizer struct {
	*confOptions

	store        *SizeStore
	scrollOffset float64
	viewport     float64

	rng   Range
	items []VirtualItem
	dirty bool
}

// New creates a Virtualizer. Invalid options fail with a *ConfigurationError.
func New(opts ...Option) (*Virtualizer, error) {
	o := &confOptions{
		overscan: DefaultOverscan,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.count < 0 {
		return nil, configError("count", o.count, "must not be negative")
	}
	if o.overscan < 0 {
		return nil, configError("overscan", o.overscan, "must not be negative")
	}
	if o.estimate == nil {
		if !isFinite(o.estimateSize) || o.estimateSize <= 0 {
			return nil, configError("estimateSize", o.estimateSize, "must be a positive, finite number")
		}
		o.estimate = FixedSize(o.estimateSize)
	}

	store, err := NewSizeStore(o.count, o.estimate, o.gap, o.epsilon)
	if err != nil {
		return nil, err
	}
	v := &Virtualizer{
		confOptions: o,
		store:       store,
		rng:         emptyRange,
		dirty:       true,
	}
	if err := v.SetViewport(o.initViewport); err != nil {
		return nil, err
	}
	if err := v.SetScrollOffset(o.initOffset); err != nil {
		return nil, err
	}
	return v, nil
}

// Axis returns the axis items are laid out along.
func (v *Virtualizer) Axis() Axis {
	return v.axis
}

// Overscan returns the number of items materialized beyond each edge.
func (v *Virtualizer) Overscan() int {
	return v.overscan
}

// Count returns the number of items.
func (v *Virtualizer) Count() int {
	return v.store.Count()
}

// Store exposes the size store for inspection.
func (v *Virtualizer) Store() *SizeStore {
	return v.store
}

// ScrollOffset returns the last applied scroll offset.
func (v *Virtualizer) ScrollOffset() float64 {
	return v.scrollOffset
}

// Viewport returns the viewport extent along the axis.
func (v *Virtualizer) Viewport() float64 {
	return v.viewport
}

// SetScrollOffset applies a scroll position. Negative offsets clamp to 0.
func (v *Virtualizer) SetScrollOffset(offset float64) error {
	if !isFinite(offset) {
		return configError("scrollOffset", offset, "must be finite")
	}
	offset = max(0, offset)
	if offset != v.scrollOffset {
		v.scrollOffset = offset
		v.dirty = true
	}
	return nil
}

// SetViewport applies the viewport extent along the axis. A zero extent
// means the container has not been sized yet and resolves to no items.
func (v *Virtualizer) SetViewport(extent float64) error {
	if !isFinite(extent) || extent < 0 {
		return configError("viewport", extent, "must be a finite, non-negative number")
	}
	if extent != v.viewport {
		v.viewport = extent
		v.dirty = true
	}
	return nil
}

// SetRect applies a container size, taking the extent along the axis.
func (v *Virtualizer) SetRect(width, height float64) error {
	return v.SetViewport(v.axis.Extent(width, height))
}

// VirtualItems returns the items to materialize in ascending index order.
// The result is cached until the state changes and must not be modified.
func (v *Virtualizer) VirtualItems() []VirtualItem {
	if v.dirty {
		v.recompute()
	}
	return v.items
}

// Range returns the range VirtualItems covers.
func (v *Virtualizer) Range() Range {
	if v.dirty {
		v.recompute()
	}
	return v.rng
}

func (v *Virtualizer) recompute() {
	rng := emptyRange
	if v.viewport > 0 {
		rng = Resolve(v.store, v.scrollOffset, v.viewport, v.overscan)
	}
	items := make([]VirtualItem, 0, rng.Len())
	for i := rng.OverscanStartIndex; i <= rng.OverscanEndIndex; i++ {
		items = append(items, VirtualItem{
			Index: i,
			Start: v.store.Offset(i),
			Size:  v.store.Size(i),
		})
	}
	if rng != v.rng {
		slog.Debug("Virtual range changed",
			"axis", v.axis.String(),
			"start", rng.StartIndex,
			"end", rng.EndIndex,
			"overscan_start", rng.OverscanStartIndex,
			"overscan_end", rng.OverscanEndIndex,
		)
	}
	v.rng = rng
	v.items = items
	v.dirty = false
}

// MeasureElement records the observed size of the item at index. The
// visible items are recomputed lazily on the next VirtualItems call. An
// invalid size is dropped, reported to the error handler and returned.
func (v *Virtualizer) MeasureElement(index int, size float64) error {
	if err := v.store.ReportMeasured(index, size); err != nil {
		v.measurementFailed(err)
		return err
	}
	v.dirty = true
	return nil
}

func (v *Virtualizer) measurementFailed(err error) {
	if v.onMeasurementError != nil {
		v.onMeasurementError(err)
		return
	}
	slog.Warn("Dropped invalid measurement", "error", err)
}

// Invalidate forgets the measurement of one item, typically because its
// content changed.
func (v *Virtualizer) Invalidate(index int) {
	v.store.Invalidate(index)
	v.dirty = true
}

// Measure forgets every measurement.
func (v *Virtualizer) Measure() {
	v.store.InvalidateAll()
	v.dirty = true
}

// Size returns the known size of the item at index.
func (v *Virtualizer) Size(index int) float64 {
	return v.store.Size(index)
}

// Offset returns the start offset of the item at index.
func (v *Virtualizer) Offset(index int) float64 {
	return v.store.Offset(index)
}

// TotalSize returns the extent of the whole collection.
func (v *Virtualizer) TotalSize() float64 {
	return v.store.TotalExtent()
}

// ItemAt returns the item under offset.
func (v *Virtualizer) ItemAt(offset float64) (VirtualItem, bool) {
	if v.store.Count() == 0 || offset < 0 || offset >= v.store.TotalExtent() {
		return VirtualItem{}, false
	}
	i := v.store.IndexAt(offset)
	return VirtualItem{Index: i, Start: v.store.Offset(i), Size: v.store.Size(i)}, true
}

// SetCount starts a new session for count items. The scroll offset is kept;
// a range past the new end is clamped when resolved.
func (v *Virtualizer) SetCount(count int) error {
	var err error
	if v.retain {
		err = v.store.Resize(count)
	} else {
		err = v.store.Reset(count)
	}
	if err != nil {
		return err
	}
	v.count = count
	v.dirty = true
	return nil
}

// SetEstimate installs a new estimate rule and starts a new session.
func (v *Virtualizer) SetEstimate(estimate EstimateFunc) error {
	if err := v.store.SetEstimate(estimate); err != nil {
		return err
	}
	if !v.retain {
		v.store.InvalidateAll()
	}
	v.estimate = estimate
	v.dirty = true
	return nil
}

// ScrollToIndex returns the scroll offset placing the item at index
// according to align. AlignAuto keeps the current offset when the item is
// fully visible and otherwise aligns the nearer edge. The offset is not
// applied.
func (v *Virtualizer) ScrollToIndex(index int, align Align) float64 {
	n := v.store.Count()
	if n == 0 {
		return 0
	}
	index = max(0, min(index, n-1))
	start := v.store.Offset(index)
	size := v.store.Size(index)

	var target float64
	switch align {
	case AlignStart:
		target = start
	case AlignCenter:
		target = start + size/2 - v.viewport/2
	case AlignEnd:
		target = start + size - v.viewport
	default:
		if start >= v.scrollOffset && start+size <= v.scrollOffset+v.viewport {
			return v.scrollOffset
		}
		if start < v.scrollOffset {
			target = start
		} else {
			target = start + size - v.viewport
		}
	}
	return v.clampOffset(target)
}

// ScrollToOffset returns the scroll offset placing offset at the start,
// center or end of the viewport. AlignAuto behaves like AlignStart.
func (v *Virtualizer) ScrollToOffset(offset float64, align Align) float64 {
	switch align {
	case AlignCenter:
		offset -= v.viewport / 2
	case AlignEnd:
		offset -= v.viewport
	}
	return v.clampOffset(offset)
}

func (v *Virtualizer) clampOffset(offset float64) float64 {
	maxOffset := max(0, v.store.TotalExtent()-v.viewport)
	return max(0, min(offset, maxOffset))
}
