package storage

import "github.com/quartzdb/quartz/pkg/common"

// Segment is one chunk's worth of one column. A segment is exactly one
// of: a mutable value segment, an immutable dictionary segment, or a
// reference segment pointing into another table. The set is closed;
// code that needs the concrete representation switches on it.
type Segment interface {
	Size() int
	// At reads the polymorphic cell at an offset, mapping nulls onto
	// the null marker.
	At(offset common.ChunkOffset) (common.Value, error)
	EstimateMemoryUsage() uint64
}

// cellAppender is satisfied only by value segments. Chunk.Append probes
// for it to reject compressed or reference segments.
type cellAppender interface {
	Append(val common.Value) error
}
