package storage

import (
	"fmt"
	"io"
	"sync"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/util"
)

// StorageManager is the named-table registry. Names are kept in a
// sorted map so listing and printing come out in name order.
type StorageManager struct {
	mu     sync.RWMutex
	tables btree.Map[string, *Table]
}

// GStorageMgr is the process-wide registry. Embedders that want their
// own lifecycle create one with NewStorageManager instead.
var GStorageMgr = NewStorageManager()

func NewStorageManager() *StorageManager {
	return &StorageManager{}
}

func (mgr *StorageManager) AddTable(name string, table *Table) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if _, has := mgr.tables.Get(name); has {
		return fmt.Errorf("%w: %s", common.ErrDuplicateTable, name)
	}
	mgr.tables.Set(name, table)
	util.Debug("added table",
		zap.String("name", name),
		zap.Int("columns", table.ColumnCount()))
	return nil
}

func (mgr *StorageManager) DropTable(name string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if _, has := mgr.tables.Delete(name); !has {
		return fmt.Errorf("%w: %s", common.ErrUnknownTable, name)
	}
	util.Debug("dropped table", zap.String("name", name))
	return nil
}

func (mgr *StorageManager) GetTable(name string) (*Table, error) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	table, has := mgr.tables.Get(name)
	if !has {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownTable, name)
	}
	return table, nil
}

func (mgr *StorageManager) HasTable(name string) bool {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	_, has := mgr.tables.Get(name)
	return has
}

// TableNames lists the registered names in ascending order.
func (mgr *StorageManager) TableNames() []string {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.tables.Keys()
}

func (mgr *StorageManager) Reset() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.tables.Clear()
}

// Print writes one line per table: name, column, row and chunk counts.
func (mgr *StorageManager) Print(out io.Writer) error {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	var err error
	mgr.tables.Scan(func(name string, table *Table) bool {
		_, err = fmt.Fprintf(out, "%s: %d columns, %d rows, %d chunks\n",
			name, table.ColumnCount(), table.RowCount(), table.ChunkCount())
		return err == nil
	})
	return err
}
