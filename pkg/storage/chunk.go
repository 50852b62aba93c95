package storage

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/common"
)

// Chunk is one horizontal slice of a table: one segment per column,
// all of equal length. A chunk is append-only while every segment is a
// value segment; once compressed or assembled from reference segments
// it is effectively immutable.
type Chunk struct {
	segments []Segment
}

func NewChunk() *Chunk {
	return &Chunk{}
}

func (c *Chunk) AddSegment(seg Segment) error {
	if len(c.segments) >= common.MaxColumnCount {
		return fmt.Errorf("%w: limit %d", common.ErrTooManyColumns, common.MaxColumnCount)
	}
	c.segments = append(c.segments, seg)
	return nil
}

// Append adds one row. Every segment must still be a value segment;
// each cell append performs its own type check.
func (c *Chunk) Append(row []common.Value) error {
	if len(row) != len(c.segments) {
		return fmt.Errorf("%w: %d values for %d columns", common.ErrArity, len(row), len(c.segments))
	}
	for i, seg := range c.segments {
		appender, ok := seg.(cellAppender)
		if !ok {
			return fmt.Errorf("%w: column %d", common.ErrNotValueSegment, i)
		}
		if err := appender.Append(row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chunk) GetSegment(columnID common.ColumnID) (Segment, error) {
	if int(columnID) >= len(c.segments) {
		return nil, fmt.Errorf("%w: %d of %d", common.ErrInvalidColumnID, columnID, len(c.segments))
	}
	return c.segments[columnID], nil
}

func (c *Chunk) ColumnCount() int {
	return len(c.segments)
}

// Size is the row count. All segments share it.
func (c *Chunk) Size() int {
	if len(c.segments) == 0 {
		return 0
	}
	return c.segments[0].Size()
}

func (c *Chunk) EstimateMemoryUsage() uint64 {
	var total uint64
	for _, seg := range c.segments {
		total += seg.EstimateMemoryUsage()
	}
	return total
}
