package operators

import (
	"fmt"

	"github.com/quartzdb/quartz/pkg/storage"
)

// GetTable reads a named table from the registry. It has no inputs.
type GetTable struct {
	baseOperator
	mgr       *storage.StorageManager
	tableName string
}

// NewGetTable resolves against the process-wide registry.
func NewGetTable(tableName string) *GetTable {
	return NewGetTable2(storage.GStorageMgr, tableName)
}

// NewGetTable2 resolves against an explicit registry handle.
func NewGetTable2(mgr *storage.StorageManager, tableName string) *GetTable {
	return &GetTable{
		mgr:       mgr,
		tableName: tableName,
	}
}

func (op *GetTable) TableName() string {
	return op.tableName
}

func (op *GetTable) Name() string {
	return fmt.Sprintf("GetTable(%s)", op.tableName)
}

func (op *GetTable) Execute() error {
	if op.output != nil {
		return nil
	}
	table, err := op.mgr.GetTable(op.tableName)
	if err != nil {
		return err
	}
	op.output = table
	return nil
}
