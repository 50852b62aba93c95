package storage

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/util"
)

// ReferenceSegment is an indirect column slice: a shared pos list of
// row ids into a materialized table. Reads delegate to whatever segment
// currently backs the referenced row. A reference segment never points
// at another reference segment; scan output construction flattens the
// indirection instead.
type ReferenceSegment struct {
	table    *Table
	columnID common.ColumnID
	posList  *common.PosList
}

// NewReferenceSegment requires a pos list whose row ids are valid
// against the referenced table, which must itself be materialized.
func NewReferenceSegment(table *Table, columnID common.ColumnID, posList *common.PosList) (*ReferenceSegment, error) {
	if int(columnID) >= table.ColumnCount() {
		return nil, fmt.Errorf("%w: %d of %d", common.ErrInvalidColumnID, columnID, table.ColumnCount())
	}
	if !table.Materialized() {
		return nil, fmt.Errorf("%w: referenced table is not materialized", common.ErrNotValueSegment)
	}
	for _, rid := range *posList {
		if rid.IsNull() {
			continue
		}
		chunk, err := table.GetChunk(rid.Chunk)
		if err != nil {
			return nil, err
		}
		if int(rid.Offset) >= chunk.Size() {
			return nil, fmt.Errorf("%w: row (%d,%d)", common.ErrOutOfBounds, rid.Chunk, rid.Offset)
		}
	}
	return &ReferenceSegment{
		table:    table,
		columnID: columnID,
		posList:  posList,
	}, nil
}

func (seg *ReferenceSegment) Size() int {
	return len(*seg.posList)
}

func (seg *ReferenceSegment) At(offset common.ChunkOffset) (common.Value, error) {
	if int(offset) >= len(*seg.posList) {
		return common.Value{},
			fmt.Errorf("%w: offset %d of %d", common.ErrOutOfBounds, offset, len(*seg.posList))
	}
	rid := (*seg.posList)[offset]
	if rid.IsNull() {
		typ, err := seg.table.ColumnType(seg.columnID)
		util.AssertFunc(err == nil)
		return common.NewNullValue(typ), nil
	}
	chunk, err := seg.table.GetChunk(rid.Chunk)
	if err != nil {
		return common.Value{}, err
	}
	referenced, err := chunk.GetSegment(seg.columnID)
	if err != nil {
		return common.Value{}, err
	}
	return referenced.At(rid.Offset)
}

func (seg *ReferenceSegment) PosList() *common.PosList {
	return seg.posList
}

func (seg *ReferenceSegment) ReferencedTable() *Table {
	return seg.table
}

func (seg *ReferenceSegment) ReferencedColumnID() common.ColumnID {
	return seg.columnID
}

func (seg *ReferenceSegment) EstimateMemoryUsage() uint64 {
	const rowIDSize = 8
	return uint64(cap(*seg.posList)) * rowIDSize
}
