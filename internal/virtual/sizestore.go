package virtual

import (
	"fmt"
	"math"
	"sort"
)

// EstimateFunc returns the provisional size of the item at index, used until
// the item has been measured.
type EstimateFunc func(index int) float64

// FixedSize returns an EstimateFunc reporting size for every index.
func FixedSize(size float64) EstimateFunc {
	return func(int) float64 { return size }
}

// SizeStore keeps the size of every item, estimated or measured, and a lazily
// built cumulative offset index over them.
//
// Offsets are only ever rebuilt from the first stale index onward, and only
// as far as a query needs them. A measurement therefore costs O(1) when it is
// reported and the suffix is rebuilt at most once before the next full query.
type SizeStore struct {
	count    int
	estimate EstimateFunc
	gap      float64
	epsilon  float64

	sizes    []float64 // raw size per item, the estimate until measured
	measured []bool

	// offsets has count+1 entries. offsets[0..clean] are valid, everything
	// after clean is stale.
	offsets []float64
	clean   int
}

// NewSizeStore creates a store for count items. gap is added after every
// item and counts as part of its effective size. Measurements that differ
// from the known size by no more than epsilon are ignored.
func NewSizeStore(count int, estimate EstimateFunc, gap, epsilon float64) (*SizeStore, error) {
	if estimate == nil {
		return nil, configError("estimateSize", nil, "an estimate is required")
	}
	if !isFinite(gap) || gap < 0 {
		return nil, configError("gap", gap, "must be a finite, non-negative number")
	}
	if !isFinite(epsilon) || epsilon < 0 {
		return nil, configError("epsilon", epsilon, "must be a finite, non-negative number")
	}
	s := &SizeStore{
		estimate: estimate,
		gap:      gap,
		epsilon:  epsilon,
	}
	if err := s.Reset(count); err != nil {
		return nil, err
	}
	return s, nil
}

// Count returns the number of items.
func (s *SizeStore) Count() int {
	return s.count
}

// Gap returns the space added after every item.
func (s *SizeStore) Gap() float64 {
	return s.gap
}

// Size returns the raw size of the item at index, without the gap.
func (s *SizeStore) Size(index int) float64 {
	return s.sizes[index]
}

// Measured reports whether the size at index comes from a measurement.
func (s *SizeStore) Measured(index int) bool {
	return s.measured[index]
}

// DirtyFrom returns the first item whose end offset is stale. It equals
// Count() when the whole index is built.
func (s *SizeStore) DirtyFrom() int {
	return s.clean
}

// Reset drops every measurement and re-estimates count items. The store is
// left untouched when an estimate is invalid.
func (s *SizeStore) Reset(count int) error {
	if count < 0 {
		return configError("count", count, "must not be negative")
	}
	sizes := make([]float64, count)
	if err := estimateSizes(s.estimate, sizes, 0, nil); err != nil {
		return err
	}
	s.count = count
	s.sizes = sizes
	s.measured = make([]bool, count)
	s.offsets = make([]float64, count+1)
	s.clean = 0
	return nil
}

// Resize changes the item count while keeping the measurements of the items
// that survive. Trailing entries are dropped when shrinking; new items get
// estimates when growing.
func (s *SizeStore) Resize(count int) error {
	if count < 0 {
		return configError("count", count, "must not be negative")
	}
	if count <= s.count {
		s.sizes = s.sizes[:count]
		s.measured = s.measured[:count]
		s.offsets = s.offsets[:count+1]
		s.clean = min(s.clean, count)
		s.count = count
		return nil
	}

	sizes := make([]float64, count)
	copy(sizes, s.sizes)
	if err := estimateSizes(s.estimate, sizes, s.count, nil); err != nil {
		return err
	}
	measured := make([]bool, count)
	copy(measured, s.measured)
	offsets := make([]float64, count+1)
	copy(offsets, s.offsets[:s.clean+1])

	s.count = count
	s.sizes = sizes
	s.measured = measured
	s.offsets = offsets
	return nil
}

// SetEstimate installs a new estimate rule. Measured sizes are kept, every
// other size is re-estimated and all offsets become stale.
func (s *SizeStore) SetEstimate(estimate EstimateFunc) error {
	if estimate == nil {
		return configError("estimateSize", nil, "an estimate is required")
	}
	sizes := make([]float64, s.count)
	copy(sizes, s.sizes)
	if err := estimateSizes(estimate, sizes, 0, s.measured); err != nil {
		return err
	}
	s.estimate = estimate
	s.sizes = sizes
	s.clean = 0
	return nil
}

// ReportMeasured records an observed size for index. Invalid sizes are
// rejected with a *MeasurementError and the prior size is kept.
func (s *SizeStore) ReportMeasured(index int, size float64) error {
	if index < 0 || index >= s.count {
		return &MeasurementError{Index: index, Size: size, Reason: fmt.Sprintf("index out of range [0,%d)", s.count)}
	}
	if err := checkMeasurement(index, size); err != nil {
		return err
	}
	s.measured[index] = true
	if math.Abs(size-s.sizes[index]) <= s.epsilon {
		return nil
	}
	s.sizes[index] = size
	s.markStale(index)
	return nil
}

// Invalidate forgets the measurement of index, falling back to its estimate.
func (s *SizeStore) Invalidate(index int) {
	if index < 0 || index >= s.count || !s.measured[index] {
		return
	}
	s.measured[index] = false
	s.sizes[index] = s.estimate(index)
	s.markStale(index)
}

// InvalidateAll forgets every measurement.
func (s *SizeStore) InvalidateAll() {
	for i, ok := range s.measured {
		if ok {
			s.measured[i] = false
			s.sizes[i] = s.estimate(i)
		}
	}
	s.clean = 0
}

// Offset returns the cumulative effective size of the items before index.
// index is clamped to [0, Count()].
func (s *SizeStore) Offset(index int) float64 {
	index = max(0, min(index, s.count))
	s.extend(index)
	return s.offsets[index]
}

// TotalExtent returns Offset(Count()).
func (s *SizeStore) TotalExtent() float64 {
	return s.Offset(s.count)
}

// IndexAt returns the item whose [offset, offset+size+gap) interval contains
// target. Targets before the start map to 0 and targets past the end map to
// the last item. It returns -1 for an empty store.
func (s *SizeStore) IndexAt(target float64) int {
	if s.count == 0 {
		return -1
	}
	if !(target > 0) {
		return 0
	}
	// Binary search covers the built prefix; past it, extend linearly until
	// the target is enclosed.
	for s.clean < s.count && s.offsets[s.clean] <= target {
		s.extendOne()
	}
	k := sort.Search(s.clean+1, func(k int) bool {
		return s.offsets[k] > target
	})
	return max(0, min(k-1, s.count-1))
}

func (s *SizeStore) markStale(index int) {
	if index < s.clean {
		s.clean = index
	}
}

func (s *SizeStore) extend(index int) {
	for s.clean < index {
		s.extendOne()
	}
}

func (s *SizeStore) extendOne() {
	i := s.clean
	prev := s.offsets[i]
	next := prev + s.sizes[i] + s.gap
	if next < prev {
		panic(&RangeInconsistency{Index: i + 1, Offset: next, Prev: prev})
	}
	s.offsets[i+1] = next
	s.clean++
}

// estimateSizes fills dst[from:] with estimates, leaving measured entries in
// place. The estimate is checked at every index, measured ones included,
// since Invalidate falls back to it later without checking again.
func estimateSizes(estimate EstimateFunc, dst []float64, from int, measured []bool) error {
	for i := from; i < len(dst); i++ {
		size := estimate(i)
		if !isFinite(size) || size <= 0 {
			return configError("estimateSize", size, fmt.Sprintf("item %d: must be a positive, finite number", i))
		}
		if measured != nil && measured[i] {
			continue
		}
		dst[i] = size
	}
	return nil
}

// checkMeasurement rejects sizes no item can have, whatever the count.
func checkMeasurement(index int, size float64) error {
	if !isFinite(size) || size < 0 {
		return &MeasurementError{Index: index, Size: size, Reason: "size must be a finite, non-negative number"}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
