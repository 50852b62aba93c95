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

package storage

import (
	"fmt"

	"github.com/huandu/go-clone"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/util"
)

// Table is a schema plus an ordered list of chunks. Only the last
// chunk accepts appends; earlier chunks are sealed and may be swapped
// for their compressed form at any time. Readers never take the chunk
// lock: a chunk reference stays valid after a swap because the old
// chunk lives on through it.
type Table struct {
	targetChunkSize int
	columnNames     []string
	columnTypes     []common.DataTypeId
	columnNullables []bool
	chunks          []*Chunk
	stats           []*ColumnStats

	// chunkLock serializes every mutation of the chunk list: appends
	// to the tail, tail growth and the compression swap. Reentrant:
	// the append path grows the tail while already holding it.
	chunkLock *util.ReentryLock
}

// NewTable creates a table with no columns and a single empty chunk.
func NewTable(targetChunkSize int) *Table {
	util.AssertFunc(targetChunkSize > 0)
	table := &Table{
		targetChunkSize: targetChunkSize,
		chunkLock:       util.NewReentryLock(),
	}
	table.chunks = append(table.chunks, NewChunk())
	return table
}

// NewTableFromChunks copies the schema of src and adopts the supplied
// chunks in place of the default empty one. Scan operators assemble
// their output tables this way.
func NewTableFromChunks(src *Table, chunks []*Chunk) (*Table, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks supplied", common.ErrInvalidChunkID)
	}
	table := &Table{
		targetChunkSize: src.targetChunkSize,
		columnNames:     clone.Clone(src.columnNames).([]string),
		columnTypes:     clone.Clone(src.columnTypes).([]common.DataTypeId),
		columnNullables: clone.Clone(src.columnNullables).([]bool),
		chunks:          chunks,
		chunkLock:       util.NewReentryLock(),
	}
	for range table.columnNames {
		table.stats = append(table.stats, NewColumnStats())
	}
	return table, nil
}

// AddColumn registers a column on a table that has no rows yet.
func (t *Table) AddColumn(name string, typeName string, nullable bool) error {
	typ, err := common.ParseDataType(typeName)
	if err != nil {
		return err
	}
	if len(t.chunks) > 1 || t.chunks[0].Size() > 0 {
		return fmt.Errorf("%w: columns can only be added to an empty table", common.ErrNotEmpty)
	}
	seg, err := NewValueSegmentOfType(typ, nullable)
	if err != nil {
		return err
	}
	if err = t.chunks[0].AddSegment(seg); err != nil {
		return err
	}
	t.columnNames = append(t.columnNames, name)
	t.columnTypes = append(t.columnTypes, typ)
	t.columnNullables = append(t.columnNullables, nullable)
	t.stats = append(t.stats, NewColumnStats())
	return nil
}

// CreateNewChunk appends a fresh mutable tail chunk with one empty
// value segment per column.
func (t *Table) CreateNewChunk() error {
	t.chunkLock.Lock()
	defer t.chunkLock.Unlock()
	if len(t.chunks) >= common.MaxChunkCount {
		return fmt.Errorf("%w: limit %d", common.ErrTooManyChunks, common.MaxChunkCount)
	}
	chunk := NewChunk()
	for i, typ := range t.columnTypes {
		seg, err := NewValueSegmentOfType(typ, t.columnNullables[i])
		if err != nil {
			return err
		}
		if err = chunk.AddSegment(seg); err != nil {
			return err
		}
	}
	t.chunks = append(t.chunks, chunk)
	return nil
}

// Append adds one row to the tail chunk, rolling over to a new chunk
// when the tail is full. The whole tail-check-and-append runs under
// the chunk lock so it cannot observe a half-grown chunk list while
// compression is swapping or growing it from another goroutine.
func (t *Table) Append(row []common.Value) error {
	if len(row) != len(t.columnNames) {
		return fmt.Errorf("%w: %d values for %d columns", common.ErrArity, len(row), len(t.columnNames))
	}
	if err := t.appendToTail(row); err != nil {
		return err
	}
	for i, val := range row {
		t.stats[i].Update(val)
	}
	return nil
}

func (t *Table) appendToTail(row []common.Value) error {
	t.chunkLock.Lock()
	defer t.chunkLock.Unlock()
	if util.Back(t.chunks).Size() >= t.targetChunkSize {
		if err := t.CreateNewChunk(); err != nil {
			return err
		}
	}
	return util.Back(t.chunks).Append(row)
}

func (t *Table) ColumnCount() int {
	return len(t.columnNames)
}

func (t *Table) RowCount() uint64 {
	var rows uint64
	for _, chunk := range t.chunks {
		rows += uint64(chunk.Size())
	}
	return rows
}

func (t *Table) ChunkCount() int {
	return len(t.chunks)
}

func (t *Table) TargetChunkSize() int {
	return t.targetChunkSize
}

func (t *Table) ColumnNames() []string {
	return t.columnNames
}

func (t *Table) ColumnIDByName(name string) (common.ColumnID, error) {
	idx := util.FindIf(t.columnNames, func(n string) bool {
		return n == name
	})
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", common.ErrInvalidColumnName, name)
	}
	return common.ColumnID(idx), nil
}

func (t *Table) ColumnName(columnID common.ColumnID) (string, error) {
	if err := t.checkColumnID(columnID); err != nil {
		return "", err
	}
	return t.columnNames[columnID], nil
}

func (t *Table) ColumnType(columnID common.ColumnID) (common.DataTypeId, error) {
	if err := t.checkColumnID(columnID); err != nil {
		return common.DTID_INVALID, err
	}
	return t.columnTypes[columnID], nil
}

func (t *Table) ColumnNullable(columnID common.ColumnID) (bool, error) {
	if err := t.checkColumnID(columnID); err != nil {
		return false, err
	}
	return t.columnNullables[columnID], nil
}

func (t *Table) ColumnStats(columnID common.ColumnID) (*ColumnStats, error) {
	if err := t.checkColumnID(columnID); err != nil {
		return nil, err
	}
	return t.stats[columnID], nil
}

func (t *Table) checkColumnID(columnID common.ColumnID) error {
	if int(columnID) >= len(t.columnNames) {
		return fmt.Errorf("%w: %d of %d", common.ErrInvalidColumnID, columnID, len(t.columnNames))
	}
	return nil
}

// GetChunk hands out the chunk at an id without taking the chunk lock.
// A caller holding the returned chunk across a compression swap keeps
// reading the pre-swap contents.
func (t *Table) GetChunk(chunkID common.ChunkID) (*Chunk, error) {
	if int(chunkID) >= len(t.chunks) {
		return nil, fmt.Errorf("%w: %d of %d", common.ErrInvalidChunkID, chunkID, len(t.chunks))
	}
	return t.chunks[chunkID], nil
}

// Materialized reports whether the table consists of value and
// dictionary segments only. Tables are never mixed: either every
// segment is a reference segment or none is, so inspecting the first
// segment of the first chunk that has any segments suffices, even when
// that chunk holds no rows.
func (t *Table) Materialized() bool {
	for _, chunk := range t.chunks {
		if chunk.ColumnCount() == 0 {
			continue
		}
		seg, err := chunk.GetSegment(0)
		util.AssertFunc(err == nil)
		_, isRef := seg.(*ReferenceSegment)
		return !isRef
	}
	return true
}

// CompressChunk swaps the chunk at chunkID for its dictionary-encoded
// form, building one column per worker. If the target is the tail, a
// fresh tail is created first so racing appends land there and are not
// lost. The chunk being compressed is sealed by then, so the workers
// run outside the chunk lock and appends keep flowing while they
// build; only the swap itself locks. Readers holding the old chunk
// are unaffected.
func (t *Table) CompressChunk(chunkID common.ChunkID) error {
	chunk, err := t.sealChunkForCompression(chunkID)
	if err != nil {
		return err
	}
	compressed := make([]Segment, chunk.ColumnCount())
	var eg errgroup.Group
	for i := 0; i < chunk.ColumnCount(); i++ {
		columnIdx := i
		eg.Go(func() error {
			seg, err := chunk.GetSegment(common.ColumnID(columnIdx))
			if err != nil {
				return err
			}
			dictSeg, err := CompressSegment(t.columnTypes[columnIdx], seg)
			if err != nil {
				return err
			}
			compressed[columnIdx] = dictSeg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	newChunk := NewChunk()
	for _, seg := range compressed {
		if err := newChunk.AddSegment(seg); err != nil {
			return err
		}
	}
	util.Debug("compressed chunk",
		zap.Uint32("chunk", uint32(chunkID)),
		zap.Int("rows", chunk.Size()),
		zap.Int("columns", chunk.ColumnCount()),
		zap.Uint64("bytesBefore", chunk.EstimateMemoryUsage()),
		zap.Uint64("bytesAfter", newChunk.EstimateMemoryUsage()))

	t.chunkLock.Lock()
	defer t.chunkLock.Unlock()
	t.chunks[chunkID] = newChunk
	return nil
}

// sealChunkForCompression validates the chunk id and, when the target
// is the mutable tail, grows a fresh tail first so later appends have
// somewhere to go. Everything runs under the chunk lock; the returned
// chunk is no longer the tail and will see no further appends.
func (t *Table) sealChunkForCompression(chunkID common.ChunkID) (*Chunk, error) {
	t.chunkLock.Lock()
	defer t.chunkLock.Unlock()
	if int(chunkID) >= len(t.chunks) {
		return nil, fmt.Errorf("%w: %d of %d", common.ErrInvalidChunkID, chunkID, len(t.chunks))
	}
	if int(chunkID) == len(t.chunks)-1 {
		if err := t.CreateNewChunk(); err != nil {
			return nil, err
		}
	}
	return t.chunks[chunkID], nil
}
