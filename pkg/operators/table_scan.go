// Copyright 2025 quartzdb
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operators

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/storage"
	"github.com/quartzdb/quartz/pkg/util"
)

type ScanType int

const (
	SCAN_INVALID       ScanType = 0
	SCAN_EQUAL         ScanType = 1
	SCAN_NOT_EQUAL     ScanType = 2
	SCAN_LESS          ScanType = 3
	SCAN_LESS_EQUAL    ScanType = 4
	SCAN_GREATER       ScanType = 5
	SCAN_GREATER_EQUAL ScanType = 6
)

func (st ScanType) String() string {
	switch st {
	case SCAN_EQUAL:
		return "="
	case SCAN_NOT_EQUAL:
		return "<>"
	case SCAN_LESS:
		return "<"
	case SCAN_LESS_EQUAL:
		return "<="
	case SCAN_GREATER:
		return ">"
	case SCAN_GREATER_EQUAL:
		return ">="
	default:
		panic("usp")
	}
}

// filterFunc decides one row of the predicate column.
type filterFunc func(offset common.ChunkOffset) bool

// TableScan filters its input by a single-column predicate. The output
// table consists entirely of reference segments: into the input itself
// when the input is materialized, or into the tables the input already
// references when the input is derived, so indirection never nests.
type TableScan struct {
	baseOperator
	columnID    common.ColumnID
	scanType    ScanType
	searchValue common.Value

	// filterFuncs caches the per-segment decision function by segment
	// identity; each input segment is consulted at most twice per scan.
	filterFuncs map[storage.Segment]filterFunc
	// translated reuses pos-list translations across columns that
	// shared a pos list in a derived input.
	translated map[*common.PosList]*common.PosList
}

func NewTableScan(in Operator, columnID common.ColumnID, scanType ScanType, searchValue common.Value) *TableScan {
	ts := &TableScan{
		columnID:    columnID,
		scanType:    scanType,
		searchValue: searchValue,
	}
	ts.left = in
	return ts
}

func (ts *TableScan) ColumnID() common.ColumnID {
	return ts.columnID
}

func (ts *TableScan) ScanType() ScanType {
	return ts.scanType
}

func (ts *TableScan) SearchValue() common.Value {
	return ts.searchValue
}

func (ts *TableScan) Name() string {
	return fmt.Sprintf("TableScan(column #%d %s %s)",
		ts.columnID, ts.scanType, ts.searchValue)
}

func (ts *TableScan) Execute() error {
	if ts.output != nil {
		return nil
	}
	input, err := ts.leftInputTable()
	if err != nil {
		return err
	}
	columnType, err := input.ColumnType(ts.columnID)
	if err != nil {
		return err
	}
	ts.filterFuncs = make(map[storage.Segment]filterFunc)
	ts.translated = make(map[*common.PosList]*common.PosList)
	derived := !input.Materialized()

	var outChunks []*storage.Chunk
	for chunkIdx := 0; chunkIdx < input.ChunkCount(); chunkIdx++ {
		chunk, err := input.GetChunk(common.ChunkID(chunkIdx))
		if err != nil {
			return err
		}
		matches, err := ts.filterChunk(columnType, chunk)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			continue
		}
		outChunk, err := ts.buildOutputChunk(input, common.ChunkID(chunkIdx), chunk, matches, derived)
		if err != nil {
			return err
		}
		outChunks = append(outChunks, outChunk)
	}
	if len(outChunks) == 0 {
		empty, err := ts.buildEmptyChunk(input, derived)
		if err != nil {
			return err
		}
		outChunks = append(outChunks, empty)
	}

	output, err := storage.NewTableFromChunks(input, outChunks)
	if err != nil {
		return err
	}
	ts.output = output
	return nil
}

// filterChunk walks the predicate column of one chunk and collects the
// offsets of matching rows, in row order.
func (ts *TableScan) filterChunk(columnType common.DataTypeId, chunk *storage.Chunk) ([]common.ChunkOffset, error) {
	seg, err := chunk.GetSegment(ts.columnID)
	if err != nil {
		return nil, err
	}
	filter, err := ts.filterFuncForSegment(columnType, seg)
	if err != nil {
		return nil, err
	}
	var matches []common.ChunkOffset
	for offset := 0; offset < seg.Size(); offset++ {
		if filter(common.ChunkOffset(offset)) {
			matches = append(matches, common.ChunkOffset(offset))
		}
	}
	return matches, nil
}

// buildOutputChunk assembles one output chunk of reference segments.
func (ts *TableScan) buildOutputChunk(input *storage.Table, chunkID common.ChunkID,
	chunk *storage.Chunk, matches []common.ChunkOffset, derived bool) (*storage.Chunk, error) {
	outChunk := storage.NewChunk()
	if !derived {
		// One shared pos list into the input table for every column.
		pos := make(common.PosList, len(matches))
		for i, offset := range matches {
			pos[i] = common.RowID{Chunk: chunkID, Offset: offset}
		}
		for col := 0; col < input.ColumnCount(); col++ {
			refSeg, err := storage.NewReferenceSegment(input, common.ColumnID(col), &pos)
			if err != nil {
				return nil, err
			}
			if err = outChunk.AddSegment(refSeg); err != nil {
				return nil, err
			}
		}
		return outChunk, nil
	}
	// Derived input: translate matching offsets through each source
	// pos list so the output references the original tables directly.
	for col := 0; col < input.ColumnCount(); col++ {
		seg, err := chunk.GetSegment(common.ColumnID(col))
		if err != nil {
			return nil, err
		}
		srcRef, ok := seg.(*storage.ReferenceSegment)
		util.AssertFunc(ok)
		pos := ts.translatePosList(srcRef.PosList(), matches)
		refSeg, err := storage.NewReferenceSegment(srcRef.ReferencedTable(), srcRef.ReferencedColumnID(), pos)
		if err != nil {
			return nil, err
		}
		if err = outChunk.AddSegment(refSeg); err != nil {
			return nil, err
		}
	}
	return outChunk, nil
}

func (ts *TableScan) translatePosList(srcPos *common.PosList, matches []common.ChunkOffset) *common.PosList {
	if pos, has := ts.translated[srcPos]; has {
		return pos
	}
	pos := make(common.PosList, len(matches))
	for i, offset := range matches {
		pos[i] = (*srcPos)[offset]
	}
	ts.translated[srcPos] = &pos
	return &pos
}

// buildEmptyChunk keeps the output shape legal when nothing matched:
// a table needs at least one chunk, and a scan output is reference
// segments throughout.
func (ts *TableScan) buildEmptyChunk(input *storage.Table, derived bool) (*storage.Chunk, error) {
	outChunk := storage.NewChunk()
	emptyPos := &common.PosList{}
	for col := 0; col < input.ColumnCount(); col++ {
		target := input
		targetCol := common.ColumnID(col)
		if derived {
			chunk, err := input.GetChunk(0)
			if err != nil {
				return nil, err
			}
			seg, err := chunk.GetSegment(common.ColumnID(col))
			if err != nil {
				return nil, err
			}
			srcRef, ok := seg.(*storage.ReferenceSegment)
			util.AssertFunc(ok)
			target = srcRef.ReferencedTable()
			targetCol = srcRef.ReferencedColumnID()
		}
		refSeg, err := storage.NewReferenceSegment(target, targetCol, emptyPos)
		if err != nil {
			return nil, err
		}
		if err = outChunk.AddSegment(refSeg); err != nil {
			return nil, err
		}
	}
	return outChunk, nil
}

// filterFuncForSegment builds (or recalls) the decision function for
// one segment of the predicate column. Type resolution, representation
// dispatch and comparator construction happen once per segment, not
// once per row.
func (ts *TableScan) filterFuncForSegment(columnType common.DataTypeId, seg storage.Segment) (filterFunc, error) {
	if filter, has := ts.filterFuncs[seg]; has {
		return filter, nil
	}
	var filter filterFunc
	var err error
	if refSeg, isRef := seg.(*storage.ReferenceSegment); isRef {
		filter, err = ts.referenceFilter(columnType, refSeg)
	} else {
		switch columnType {
		case common.DTID_INT:
			filter, err = typedFilter[int32](ts, seg)
		case common.DTID_LONG:
			filter, err = typedFilter[int64](ts, seg)
		case common.DTID_FLOAT:
			filter, err = typedFilter[float32](ts, seg)
		case common.DTID_DOUBLE:
			filter, err = typedFilter[float64](ts, seg)
		case common.DTID_STRING:
			filter, err = typedFilter[string](ts, seg)
		default:
			err = fmt.Errorf("%w: id %d", common.ErrUnknownType, int(columnType))
		}
	}
	if err != nil {
		return nil, err
	}
	ts.filterFuncs[seg] = filter
	return filter, nil
}

// referenceFilter resolves each row id through the referenced table
// and applies the decision function of the underlying segment.
func (ts *TableScan) referenceFilter(columnType common.DataTypeId, refSeg *storage.ReferenceSegment) (filterFunc, error) {
	// The cast is validated here so the per-row path cannot fail.
	if _, err := castSearchValue(columnType, ts.searchValue); err != nil {
		return nil, err
	}
	return func(offset common.ChunkOffset) bool {
		rid := (*refSeg.PosList())[offset]
		if rid.IsNull() {
			return false
		}
		chunk, err := refSeg.ReferencedTable().GetChunk(rid.Chunk)
		util.AssertFunc(err == nil)
		underlying, err := chunk.GetSegment(refSeg.ReferencedColumnID())
		util.AssertFunc(err == nil)
		filter, err := ts.filterFuncForSegment(columnType, underlying)
		util.AssertFunc(err == nil)
		return filter(rid.Offset)
	}, nil
}

func castSearchValue(columnType common.DataTypeId, val common.Value) (common.Value, error) {
	switch columnType {
	case common.DTID_INT:
		_, err := common.CastValue[int32](val)
		return val, err
	case common.DTID_LONG:
		_, err := common.CastValue[int64](val)
		return val, err
	case common.DTID_FLOAT:
		_, err := common.CastValue[float32](val)
		return val, err
	case common.DTID_DOUBLE:
		_, err := common.CastValue[float64](val)
		return val, err
	case common.DTID_STRING:
		_, err := common.CastValue[string](val)
		return val, err
	default:
		return val, fmt.Errorf("%w: id %d", common.ErrUnknownType, int(columnType))
	}
}

// typedFilter builds the decision function for a materialized segment
// of element type T.
func typedFilter[T common.ColumnType](ts *TableScan, seg storage.Segment) (filterFunc, error) {
	searchValue, err := common.CastValue[T](ts.searchValue)
	if err != nil {
		return nil, err
	}
	switch typedSeg := seg.(type) {
	case *storage.ValueSegment[T]:
		compare := comparatorFor[T](ts.scanType)
		return func(offset common.ChunkOffset) bool {
			value, present := typedSeg.GetTypedValue(offset)
			return present && compare(value, searchValue)
		}, nil
	case *storage.DictionarySegment[T]:
		vidPred := valueIDPredicate(ts.scanType,
			typedSeg.LowerBound(searchValue), typedSeg.UpperBound(searchValue))
		nullVid := typedSeg.NullValueID()
		attrVec := typedSeg.AttributeVector()
		return func(offset common.ChunkOffset) bool {
			vid, err := attrVec.Get(int(offset))
			util.AssertFunc(err == nil)
			// Null rows never match, whatever the operator.
			if vid == nullVid {
				return false
			}
			return vidPred(vid)
		}, nil
	default:
		panic("usp")
	}
}

func comparatorFor[T common.ColumnType](scanType ScanType) func(value, search T) bool {
	switch scanType {
	case SCAN_EQUAL:
		return func(value, search T) bool { return value == search }
	case SCAN_NOT_EQUAL:
		return func(value, search T) bool { return value != search }
	case SCAN_LESS:
		return func(value, search T) bool { return value < search }
	case SCAN_LESS_EQUAL:
		return func(value, search T) bool { return value <= search }
	case SCAN_GREATER:
		return func(value, search T) bool { return value > search }
	case SCAN_GREATER_EQUAL:
		return func(value, search T) bool { return value >= search }
	default:
		panic("usp")
	}
}

// valueIDPredicate compares attribute-vector entries against the
// bounds of the search value in the sorted dictionary. When low equals
// high the search value is absent from the dictionary.
func valueIDPredicate(scanType ScanType, low, high common.ValueID) func(common.ValueID) bool {
	absent := low == high
	switch scanType {
	case SCAN_EQUAL:
		if absent {
			return func(common.ValueID) bool { return false }
		}
		return func(vid common.ValueID) bool { return vid == low }
	case SCAN_NOT_EQUAL:
		if absent {
			return func(common.ValueID) bool { return true }
		}
		return func(vid common.ValueID) bool { return vid != low }
	case SCAN_LESS:
		return func(vid common.ValueID) bool { return vid < low }
	case SCAN_LESS_EQUAL:
		if absent {
			return func(vid common.ValueID) bool { return vid < low }
		}
		return func(vid common.ValueID) bool { return vid <= low }
	case SCAN_GREATER:
		return func(vid common.ValueID) bool { return vid >= high }
	case SCAN_GREATER_EQUAL:
		return func(vid common.ValueID) bool { return vid >= low }
	default:
		panic("usp")
	}
}
