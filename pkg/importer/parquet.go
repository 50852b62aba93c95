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

package importer

import (
	"fmt"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	pqReader "github.com/xitongsys/parquet-go/reader"
	"go.uber.org/zap"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/storage"
	"github.com/quartzdb/quartz/pkg/util"
)

// ImportParquetFile appends every row of a parquet file to the table.
// Columns are matched by position against the table schema.
func ImportParquetFile(table *storage.Table, path string) (int, error) {
	pqFile, err := pqLocal.NewLocalFileReader(path)
	if err != nil {
		return 0, err
	}
	defer pqFile.Close()

	reader, err := pqReader.NewParquetColumnReader(pqFile, 1)
	if err != nil {
		return 0, err
	}
	defer reader.ReadStop()

	numRows := int(reader.GetNumRows())
	columns := make([][]common.Value, table.ColumnCount())
	for col := 0; col < table.ColumnCount(); col++ {
		typ, err := table.ColumnType(common.ColumnID(col))
		if err != nil {
			return 0, err
		}
		values, _, _, err := reader.ReadColumnByIndex(int64(col), int64(numRows))
		if err != nil {
			return 0, err
		}
		if len(values) != numRows {
			return 0, fmt.Errorf("column %d has %d values, want %d", col, len(values), numRows)
		}
		cells := make([]common.Value, numRows)
		for i, field := range values {
			cells[i], err = parquetFieldToValue(field, typ)
			if err != nil {
				return 0, err
			}
		}
		columns[col] = cells
	}

	row := make([]common.Value, table.ColumnCount())
	for i := 0; i < numRows; i++ {
		for col := range columns {
			row[col] = columns[col][i]
		}
		if err = table.Append(row); err != nil {
			return i, err
		}
	}
	util.Info("imported parquet",
		zap.String("path", path),
		zap.Int("rows", numRows))
	return numRows, nil
}

func parquetFieldToValue(field any, typ common.DataTypeId) (common.Value, error) {
	if field == nil {
		return common.NewNullValue(typ), nil
	}
	switch typ {
	case common.DTID_INT:
		switch v := field.(type) {
		case int32:
			return common.NewIntValue(v), nil
		case int64:
			return common.NewIntValue(int32(v)), nil
		}
	case common.DTID_LONG:
		switch v := field.(type) {
		case int32:
			return common.NewLongValue(int64(v)), nil
		case int64:
			return common.NewLongValue(v), nil
		}
	case common.DTID_FLOAT:
		switch v := field.(type) {
		case float32:
			return common.NewFloatValue(v), nil
		case float64:
			return common.NewFloatValue(float32(v)), nil
		}
	case common.DTID_DOUBLE:
		switch v := field.(type) {
		case float32:
			return common.NewDoubleValue(float64(v)), nil
		case float64:
			return common.NewDoubleValue(v), nil
		}
	case common.DTID_STRING:
		if v, ok := field.(string); ok {
			return common.NewStringValue(v), nil
		}
	}
	return common.Value{}, fmt.Errorf("%w: parquet field %T for %s column",
		common.ErrTypeMismatch, field, typ)
}
