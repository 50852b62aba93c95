package storage

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/util"
)

// ValueSegment holds one column slice as a dense value slice plus a
// validity mask. The mask is only consulted for nullable columns; a
// non-nullable segment never allocates one. Null cells keep the zero
// value of T in the value slice.
type ValueSegment[T common.ColumnType] struct {
	nullable bool
	values   []T
	validity util.Bitmap
}

func NewValueSegment[T common.ColumnType](nullable bool) *ValueSegment[T] {
	return &ValueSegment[T]{
		nullable: nullable,
	}
}

func (seg *ValueSegment[T]) Size() int {
	return len(seg.values)
}

func (seg *ValueSegment[T]) Nullable() bool {
	return seg.nullable
}

// Append adds one cell at the end of the segment.
func (seg *ValueSegment[T]) Append(val common.Value) error {
	if val.IsNull {
		if !seg.nullable {
			return fmt.Errorf("%w: null append", common.ErrNotNullable)
		}
		var zero T
		seg.growValidity()
		seg.values = append(seg.values, zero)
		seg.validity.SetInvalid(uint64(len(seg.values) - 1))
		return nil
	}
	typed, err := common.CastValue[T](val)
	if err != nil {
		return err
	}
	if seg.nullable {
		seg.growValidity()
	}
	seg.values = append(seg.values, typed)
	return nil
}

// growValidity keeps the mask capacity ahead of the value slice. New
// rows come up valid, so non-null appends need no further touch.
func (seg *ValueSegment[T]) growValidity() {
	old := len(seg.values)
	if seg.validity.Invalid() {
		return
	}
	if util.EntryCount(old+1) > len(seg.validity.Bits) {
		grown := int(util.NextPowerOfTwo(uint64(old + 1)))
		seg.validity.Resize(old, grown)
	}
}

func (seg *ValueSegment[T]) IsNull(offset common.ChunkOffset) bool {
	if !seg.nullable {
		return false
	}
	util.AssertFunc(int(offset) < len(seg.values))
	return !seg.validity.RowIsValid(uint64(offset))
}

// Get reads the typed value at an offset. Null cells fail.
func (seg *ValueSegment[T]) Get(offset common.ChunkOffset) (T, error) {
	var zero T
	if seg.IsNull(offset) {
		return zero, fmt.Errorf("%w: offset %d", common.ErrNullAccess, offset)
	}
	return seg.values[offset], nil
}

// GetTypedValue reads the typed value, reporting presence instead of
// failing on null cells.
func (seg *ValueSegment[T]) GetTypedValue(offset common.ChunkOffset) (T, bool) {
	var zero T
	if seg.IsNull(offset) {
		return zero, false
	}
	return seg.values[offset], true
}

func (seg *ValueSegment[T]) At(offset common.ChunkOffset) (common.Value, error) {
	if int(offset) >= len(seg.values) {
		return common.Value{},
			fmt.Errorf("%w: offset %d of %d", common.ErrOutOfBounds, offset, len(seg.values))
	}
	if seg.IsNull(offset) {
		return common.NewNullValue(common.DataTypeOf[T]()), nil
	}
	return common.MakeValue(seg.values[offset]), nil
}

func (seg *ValueSegment[T]) Values() []T {
	return seg.values
}

func (seg *ValueSegment[T]) Validity() *util.Bitmap {
	return &seg.validity
}

func (seg *ValueSegment[T]) EstimateMemoryUsage() uint64 {
	return common.SizeOfType(common.DataTypeOf[T]()) * uint64(len(seg.values))
}
