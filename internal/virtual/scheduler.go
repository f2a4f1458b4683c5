package virtual

import (
	"errors"

	"github.com/google/btree"
)

// Measurer receives measurements. *Virtualizer implements it.
type Measurer interface {
	MeasureElement(index int, size float64) error
}

type report struct {
	index int
	size  float64
}

// Scheduler coalesces bursts of measurements and scroll events into a single
// recomputation. Reports are queued until Flush, which the host calls once
// per frame. It is not safe for concurrent use.
type Scheduler struct {
	target  Measurer
	pending *btree.BTreeG[report]
	// rejected holds reports with impossible sizes. They never replace a
	// pending report and are only passed on so the target can report them.
	rejected []report
	dirty    bool
}

// NewScheduler creates a scheduler feeding target.
func NewScheduler(target Measurer) *Scheduler {
	return &Scheduler{
		target: target,
		pending: btree.NewG(32, func(a, b report) bool {
			return a.index < b.index
		}),
	}
}

// Report queues a measurement. A later report for the same index replaces
// the earlier one, unless its size is invalid: then the earlier report still
// applies, as it would have if every report were applied in call order.
func (s *Scheduler) Report(index int, size float64) {
	s.dirty = true
	if checkMeasurement(index, size) != nil {
		s.rejected = append(s.rejected, report{index: index, size: size})
		return
	}
	s.pending.ReplaceOrInsert(report{index: index, size: size})
}

// MarkDirty requests a recomputation without a measurement, e.g. after a
// scroll event.
func (s *Scheduler) MarkDirty() {
	s.dirty = true
}

// Dirty reports whether a Flush has work to do.
func (s *Scheduler) Dirty() bool {
	return s.dirty
}

// Pending returns the number of queued measurements, rejected ones included.
func (s *Scheduler) Pending() int {
	return s.pending.Len() + len(s.rejected)
}

// Flush applies every queued measurement and clears the dirty flag. It
// reports whether anything was pending; rejected measurements are joined
// into the returned error while the others still apply.
func (s *Scheduler) Flush() (bool, error) {
	if !s.dirty {
		return false, nil
	}
	var errs []error
	// Rejected sizes leave the target untouched, so they go first.
	for _, r := range s.rejected {
		if err := s.target.MeasureElement(r.index, r.size); err != nil {
			errs = append(errs, err)
		}
	}
	s.rejected = s.rejected[:0]
	s.pending.Ascend(func(r report) bool {
		if err := s.target.MeasureElement(r.index, r.size); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	s.pending.Clear(false)
	s.dirty = false
	return true, errors.Join(errs...)
}
