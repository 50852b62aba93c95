package storage

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/common"
)

// The closed type set makes representation dispatch a static switch:
// each helper instantiates its generic body once per element type.

// NewValueSegmentOfType builds an empty value segment for a column type.
func NewValueSegmentOfType(typ common.DataTypeId, nullable bool) (Segment, error) {
	switch typ {
	case common.DTID_INT:
		return NewValueSegment[int32](nullable), nil
	case common.DTID_LONG:
		return NewValueSegment[int64](nullable), nil
	case common.DTID_FLOAT:
		return NewValueSegment[float32](nullable), nil
	case common.DTID_DOUBLE:
		return NewValueSegment[float64](nullable), nil
	case common.DTID_STRING:
		return NewValueSegment[string](nullable), nil
	default:
		return nil, fmt.Errorf("%w: id %d", common.ErrUnknownType, int(typ))
	}
}

// CompressSegment builds the dictionary form of a value segment,
// resolved by the column's type.
func CompressSegment(typ common.DataTypeId, seg Segment) (Segment, error) {
	switch typ {
	case common.DTID_INT:
		return compressTyped[int32](seg)
	case common.DTID_LONG:
		return compressTyped[int64](seg)
	case common.DTID_FLOAT:
		return compressTyped[float32](seg)
	case common.DTID_DOUBLE:
		return compressTyped[float64](seg)
	case common.DTID_STRING:
		return compressTyped[string](seg)
	default:
		return nil, fmt.Errorf("%w: id %d", common.ErrUnknownType, int(typ))
	}
}

func compressTyped[T common.ColumnType](seg Segment) (Segment, error) {
	valueSeg, ok := seg.(*ValueSegment[T])
	if !ok {
		return nil, fmt.Errorf("%w: cannot compress %T", common.ErrNotValueSegment, seg)
	}
	return NewDictionarySegment(valueSeg)
}
