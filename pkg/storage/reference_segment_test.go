package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzdb/quartz/pkg/common"
)

func buildRefTarget(t *testing.T) *Table {
	t.Helper()
	table := NewTable(2)
	require.NoError(t, table.AddColumn("v", "int", false))
	require.NoError(t, table.AddColumn("s", "string", true))
	rows := [][]common.Value{
		{common.NewIntValue(10), common.NewStringValue("a")},
		{common.NewIntValue(20), common.NewStringValue("b")},
		{common.NewIntValue(30), common.NewNullValue(common.DTID_STRING)},
	}
	for _, row := range rows {
		require.NoError(t, table.Append(row))
	}
	return table
}

func Test_referenceSegmentAt(t *testing.T) {
	table := buildRefTarget(t)
	pos := common.PosList{
		{Chunk: 1, Offset: 0},
		{Chunk: 0, Offset: 1},
		common.NullRowID,
	}
	seg, err := NewReferenceSegment(table, 0, &pos)
	require.NoError(t, err)
	assert.Equal(t, 3, seg.Size())

	val, err := seg.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(30), val.I64)

	val, err = seg.At(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), val.I64)

	// The null row id reads as a null cell of the column type.
	val, err = seg.At(2)
	require.NoError(t, err)
	assert.True(t, val.IsNull)
	assert.Equal(t, common.DTID_INT, val.Typ)

	_, err = seg.At(3)
	assert.True(t, errors.Is(err, common.ErrOutOfBounds))
}

func Test_referenceSegmentReadsNullsThrough(t *testing.T) {
	table := buildRefTarget(t)
	pos := common.PosList{{Chunk: 1, Offset: 0}}
	seg, err := NewReferenceSegment(table, 1, &pos)
	require.NoError(t, err)

	val, err := seg.At(0)
	require.NoError(t, err)
	assert.True(t, val.IsNull)
}

func Test_referenceSegmentValidation(t *testing.T) {
	table := buildRefTarget(t)

	badCol := common.PosList{{Chunk: 0, Offset: 0}}
	_, err := NewReferenceSegment(table, 5, &badCol)
	assert.True(t, errors.Is(err, common.ErrInvalidColumnID))

	badChunk := common.PosList{{Chunk: 7, Offset: 0}}
	_, err = NewReferenceSegment(table, 0, &badChunk)
	assert.True(t, errors.Is(err, common.ErrInvalidChunkID))

	badOffset := common.PosList{{Chunk: 0, Offset: 9}}
	_, err = NewReferenceSegment(table, 0, &badOffset)
	assert.True(t, errors.Is(err, common.ErrOutOfBounds))
}

func Test_referenceSegmentRejectsDerivedTarget(t *testing.T) {
	table := buildRefTarget(t)
	pos := common.PosList{{Chunk: 0, Offset: 0}}
	chunk := NewChunk()
	for col := 0; col < table.ColumnCount(); col++ {
		refSeg, err := NewReferenceSegment(table, common.ColumnID(col), &pos)
		require.NoError(t, err)
		require.NoError(t, chunk.AddSegment(refSeg))
	}
	derived, err := NewTableFromChunks(table, []*Chunk{chunk})
	require.NoError(t, err)

	_, err = NewReferenceSegment(derived, 0, &pos)
	assert.True(t, errors.Is(err, common.ErrNotValueSegment))
}

func Test_referenceSegmentSurvivesCompression(t *testing.T) {
	table := buildRefTarget(t)
	pos := common.PosList{{Chunk: 0, Offset: 0}, {Chunk: 0, Offset: 1}}
	seg, err := NewReferenceSegment(table, 0, &pos)
	require.NoError(t, err)

	require.NoError(t, table.CompressChunk(0))

	// Reads resolve through the table and see the compressed chunk.
	val, err := seg.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), val.I64)
	val, err = seg.At(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), val.I64)
}
