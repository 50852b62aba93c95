package storage

import (
	"fmt"
	"slices"
	"sort"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/util"
)

// DictionarySegment is the compressed form of a value segment: a sorted
// dictionary of the distinct non-null values plus a fixed-width
// attribute vector with one value id per row. Nulls are encoded as the
// width's reserved null id and never enter the dictionary. The segment
// is immutable once built.
type DictionarySegment[T common.ColumnType] struct {
	dictionary []T
	attrVec    AttributeVector
	nullVid    common.ValueID
}

// NewDictionarySegment compresses a value segment. Row order is
// preserved: attribute-vector index equals original row index.
func NewDictionarySegment[T common.ColumnType](src *ValueSegment[T]) (*DictionarySegment[T], error) {
	rows := src.Size()
	values := src.Values()

	dict := make([]T, 0, rows)
	for i := 0; i < rows; i++ {
		if !src.IsNull(common.ChunkOffset(i)) {
			dict = append(dict, values[i])
		}
	}
	slices.Sort(dict)
	dict = slices.Compact(dict)
	dict = slices.Clip(dict)

	seg := &DictionarySegment[T]{
		dictionary: dict,
		nullVid:    nullValueIDFor(len(dict)),
	}

	ids := make([]common.ValueID, rows)
	for i := 0; i < rows; i++ {
		if src.IsNull(common.ChunkOffset(i)) {
			ids[i] = seg.nullVid
			continue
		}
		pos, found := slices.BinarySearch(dict, values[i])
		util.AssertFunc(found)
		ids[i] = common.ValueID(pos)
	}
	attrVec, err := NewAttributeVector(ids, len(dict))
	if err != nil {
		return nil, err
	}
	seg.attrVec = attrVec
	return seg, nil
}

// nullValueIDFor mirrors the width choice of NewAttributeVector: the
// null id is the max raw value of the narrowest width whose range still
// exceeds the dictionary size.
func nullValueIDFor(uniqueCount int) common.ValueID {
	switch {
	case uint64(uniqueCount) < 1<<8:
		return 0xFF
	case uint64(uniqueCount) < 1<<16:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

func (seg *DictionarySegment[T]) Size() int {
	return seg.attrVec.Size()
}

func (seg *DictionarySegment[T]) Dictionary() []T {
	return seg.dictionary
}

func (seg *DictionarySegment[T]) AttributeVector() AttributeVector {
	return seg.attrVec
}

func (seg *DictionarySegment[T]) NullValueID() common.ValueID {
	return seg.nullVid
}

func (seg *DictionarySegment[T]) UniqueValuesCount() int {
	return len(seg.dictionary)
}

func (seg *DictionarySegment[T]) IsNull(offset common.ChunkOffset) bool {
	vid, err := seg.attrVec.Get(int(offset))
	util.AssertFunc(err == nil)
	return vid == seg.nullVid
}

// Get reads the typed value at an offset. Null cells fail.
func (seg *DictionarySegment[T]) Get(offset common.ChunkOffset) (T, error) {
	var zero T
	vid, err := seg.attrVec.Get(int(offset))
	if err != nil {
		return zero, err
	}
	if vid == seg.nullVid {
		return zero, fmt.Errorf("%w: offset %d", common.ErrNullAccess, offset)
	}
	return seg.dictionary[vid], nil
}

func (seg *DictionarySegment[T]) GetTypedValue(offset common.ChunkOffset) (T, bool) {
	var zero T
	vid, err := seg.attrVec.Get(int(offset))
	util.AssertFunc(err == nil)
	if vid == seg.nullVid {
		return zero, false
	}
	return seg.dictionary[vid], true
}

func (seg *DictionarySegment[T]) At(offset common.ChunkOffset) (common.Value, error) {
	vid, err := seg.attrVec.Get(int(offset))
	if err != nil {
		return common.Value{}, err
	}
	if vid == seg.nullVid {
		return common.NewNullValue(common.DataTypeOf[T]()), nil
	}
	return common.MakeValue(seg.dictionary[vid]), nil
}

// ValueOfValueID resolves a dictionary slot.
func (seg *DictionarySegment[T]) ValueOfValueID(vid common.ValueID) (T, error) {
	var zero T
	if int(vid) >= len(seg.dictionary) {
		return zero, fmt.Errorf("%w: %d of %d", common.ErrInvalidValueID, vid, len(seg.dictionary))
	}
	return seg.dictionary[vid], nil
}

// LowerBound is the id of the first dictionary entry >= value, or
// InvalidValueID past the end.
func (seg *DictionarySegment[T]) LowerBound(value T) common.ValueID {
	idx := sort.Search(len(seg.dictionary), func(i int) bool {
		return seg.dictionary[i] >= value
	})
	if idx == len(seg.dictionary) {
		return common.InvalidValueID
	}
	return common.ValueID(idx)
}

// UpperBound is the id of the first dictionary entry > value, or
// InvalidValueID past the end.
func (seg *DictionarySegment[T]) UpperBound(value T) common.ValueID {
	idx := sort.Search(len(seg.dictionary), func(i int) bool {
		return seg.dictionary[i] > value
	})
	if idx == len(seg.dictionary) {
		return common.InvalidValueID
	}
	return common.ValueID(idx)
}

// LowerBoundValue casts the cell to the element type first.
func (seg *DictionarySegment[T]) LowerBoundValue(value common.Value) (common.ValueID, error) {
	typed, err := common.CastValue[T](value)
	if err != nil {
		return common.InvalidValueID, err
	}
	return seg.LowerBound(typed), nil
}

func (seg *DictionarySegment[T]) UpperBoundValue(value common.Value) (common.ValueID, error) {
	typed, err := common.CastValue[T](value)
	if err != nil {
		return common.InvalidValueID, err
	}
	return seg.UpperBound(typed), nil
}

func (seg *DictionarySegment[T]) EstimateMemoryUsage() uint64 {
	elemSize := common.SizeOfType(common.DataTypeOf[T]())
	return uint64(seg.attrVec.Width())*uint64(seg.attrVec.Size()) +
		elemSize*uint64(len(seg.dictionary))
}
