package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzdb/quartz/pkg/common"
)

func buildStringSegment(t *testing.T) *ValueSegment[string] {
	t.Helper()
	seg := NewValueSegment[string](true)
	for _, s := range []string{"Bill", "Steve", "Alexander", "Steve", "Hasso", "Bill"} {
		require.NoError(t, seg.Append(common.NewStringValue(s)))
	}
	require.NoError(t, seg.Append(common.NewNullValue(common.DTID_STRING)))
	return seg
}

func Test_dictionarySegmentCompression(t *testing.T) {
	src := buildStringSegment(t)
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)

	assert.Equal(t, 7, dict.Size())
	assert.Equal(t, []string{"Alexander", "Bill", "Hasso", "Steve"}, dict.Dictionary())
	assert.Equal(t, 4, dict.UniqueValuesCount())
	assert.Equal(t, 1, dict.AttributeVector().Width())
	assert.Equal(t, common.ValueID(255), dict.NullValueID())

	vid, err := dict.AttributeVector().Get(6)
	require.NoError(t, err)
	assert.Equal(t, common.ValueID(255), vid)

	_, present := dict.GetTypedValue(6)
	assert.False(t, present)

	v, err := dict.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Bill", v)
}

func Test_dictionarySegmentRoundTrip(t *testing.T) {
	src := buildStringSegment(t)
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)
	require.Equal(t, src.Size(), dict.Size())

	for offset := 0; offset < src.Size(); offset++ {
		want, err := src.At(common.ChunkOffset(offset))
		require.NoError(t, err)
		got, err := dict.At(common.ChunkOffset(offset))
		require.NoError(t, err)
		assert.Equal(t, want, got, "offset %d", offset)
	}
}

func Test_dictionarySegmentSorted(t *testing.T) {
	src := NewValueSegment[int32](false)
	for _, v := range []int32{9, 3, 7, 3, 1, 9, 5} {
		require.NoError(t, src.Append(common.NewIntValue(v)))
	}
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)

	entries := dict.Dictionary()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1], entries[i])
	}
	for offset := 0; offset < src.Size(); offset++ {
		want, err := src.Get(common.ChunkOffset(offset))
		require.NoError(t, err)
		got, err := dict.Get(common.ChunkOffset(offset))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func Test_dictionarySegmentBounds(t *testing.T) {
	src := NewValueSegment[int32](false)
	for _, v := range []int32{0, 2, 4, 6, 8, 10} {
		require.NoError(t, src.Append(common.NewIntValue(v)))
	}
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)

	assert.Equal(t, common.ValueID(2), dict.LowerBound(4))
	assert.Equal(t, common.ValueID(3), dict.UpperBound(4))
	assert.Equal(t, common.ValueID(3), dict.LowerBound(5))
	assert.Equal(t, common.ValueID(3), dict.UpperBound(5))
	assert.Equal(t, common.InvalidValueID, dict.LowerBound(15))
	assert.Equal(t, common.InvalidValueID, dict.UpperBound(15))

	vid, err := dict.LowerBoundValue(common.NewIntValue(4))
	require.NoError(t, err)
	assert.Equal(t, common.ValueID(2), vid)

	_, err = dict.LowerBoundValue(common.NewStringValue("4"))
	assert.True(t, errors.Is(err, common.ErrTypeMismatch))
}

func Test_dictionarySegmentValueOfValueID(t *testing.T) {
	src := NewValueSegment[int32](false)
	for _, v := range []int32{10, 20} {
		require.NoError(t, src.Append(common.NewIntValue(v)))
	}
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)

	v, err := dict.ValueOfValueID(1)
	require.NoError(t, err)
	assert.Equal(t, int32(20), v)

	_, err = dict.ValueOfValueID(2)
	assert.True(t, errors.Is(err, common.ErrInvalidValueID))
}

func Test_dictionarySegmentWidthGrowth(t *testing.T) {
	src := NewValueSegment[int32](false)
	for i := 0; i < 256; i++ {
		require.NoError(t, src.Append(common.NewIntValue(int32(i))))
	}
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)
	assert.Equal(t, 256, dict.UniqueValuesCount())
	assert.Equal(t, 2, dict.AttributeVector().Width())
	assert.Equal(t, common.ValueID(0xFFFF), dict.NullValueID())

	// One fewer distinct value fits a single byte alongside the null id.
	src = NewValueSegment[int32](false)
	for i := 0; i < 255; i++ {
		require.NoError(t, src.Append(common.NewIntValue(int32(i))))
	}
	dict, err = NewDictionarySegment(src)
	require.NoError(t, err)
	assert.Equal(t, 1, dict.AttributeVector().Width())
}

func Test_dictionarySegmentMemoryUsage(t *testing.T) {
	src := NewValueSegment[int64](false)
	for i := 0; i < 100; i++ {
		require.NoError(t, src.Append(common.NewLongValue(int64(i%10))))
	}
	dict, err := NewDictionarySegment(src)
	require.NoError(t, err)

	// 1 byte per row plus 8 bytes per dictionary entry.
	assert.Equal(t, uint64(100+8*10), dict.EstimateMemoryUsage())
}
