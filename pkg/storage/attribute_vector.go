package storage

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/common"
)

// AttributeVector stores one value id per row at a fixed byte width.
// The width is picked at dictionary construction and never changes, so
// vectors are built from a complete id slice and never grow.
type AttributeVector interface {
	Get(idx int) (common.ValueID, error)
	Set(idx int, vid common.ValueID) error
	Size() int
	// Width is the per-entry byte width: 1, 2 or 4.
	Width() int
}

type fixedWidth interface {
	uint8 | uint16 | uint32
}

type FixedWidthVector[T fixedWidth] struct {
	values []T
}

// maxOfWidth is the largest raw value the backing type holds. It is
// reserved as the null value id, so the largest usable id is one less.
func maxOfWidth[T fixedWidth]() common.ValueID {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 0xFF
	case uint16:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

func NewFixedWidthVector[T fixedWidth](ids []common.ValueID) (*FixedWidthVector[T], error) {
	vec := &FixedWidthVector[T]{
		values: make([]T, len(ids)),
	}
	for i, vid := range ids {
		if err := vec.Set(i, vid); err != nil {
			return nil, err
		}
	}
	return vec, nil
}

func (vec *FixedWidthVector[T]) Get(idx int) (common.ValueID, error) {
	if idx < 0 || idx >= len(vec.values) {
		return common.InvalidValueID,
			fmt.Errorf("%w: index %d of %d", common.ErrOutOfBounds, idx, len(vec.values))
	}
	return common.ValueID(vec.values[idx]), nil
}

func (vec *FixedWidthVector[T]) Set(idx int, vid common.ValueID) error {
	if idx < 0 || idx >= len(vec.values) {
		return fmt.Errorf("%w: index %d of %d", common.ErrOutOfBounds, idx, len(vec.values))
	}
	max := maxOfWidth[T]()
	if vid == common.InvalidValueID {
		// The global null sentinel narrows to the width's own null id.
		vec.values[idx] = T(max)
		return nil
	}
	if vid > max {
		return fmt.Errorf("%w: value id %d exceeds width max %d", common.ErrOverflow, vid, max)
	}
	vec.values[idx] = T(vid)
	return nil
}

func (vec *FixedWidthVector[T]) Size() int {
	return len(vec.values)
}

func (vec *FixedWidthVector[T]) Width() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	default:
		return 4
	}
}

// NewAttributeVector picks the narrowest width whose range still
// exceeds the dictionary size, keeping the width max free for the null
// id, then materializes the vector.
func NewAttributeVector(ids []common.ValueID, uniqueCount int) (AttributeVector, error) {
	switch {
	case uint64(uniqueCount) < 1<<8:
		return NewFixedWidthVector[uint8](ids)
	case uint64(uniqueCount) < 1<<16:
		return NewFixedWidthVector[uint16](ids)
	default:
		return NewFixedWidthVector[uint32](ids)
	}
}
