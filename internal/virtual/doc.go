// Package virtual decides which items of a large ordered collection must be
// materialized for a given scroll position and viewport, and where they sit.
//
// A Virtualizer owns a SizeStore with one size per item, estimated until the
// caller reports a measurement, and a cumulative offset index that is rebuilt
// lazily from the first stale item onward. Resolve turns a scroll offset into
// a Range, and the Virtualizer hands out VirtualItems for that range. Grid
// composes a row and a column Virtualizer. Scheduler batches measurements so
// a burst of them costs a single recomputation.
//
// Nothing here draws or scrolls: callers apply the offsets returned by
// ScrollToIndex themselves and position items by their Start offset.
//
//	v, err := virtual.New(
//	    virtual.WithCount(1000),
//	    virtual.WithEstimateSize(50),
//	    virtual.WithViewport(500),
//	)
//	if err != nil {
//	    return err
//	}
//	_ = v.SetScrollOffset(505)
//	for _, item := range v.VirtualItems() {
//	    draw(item.Index, item.Start, item.Size)
//	}
package virtual
