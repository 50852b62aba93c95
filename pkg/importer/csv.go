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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/storage"
	"github.com/quartzdb/quartz/pkg/util"
)

type CsvOptions struct {
	Delimiter rune
	Header    bool
	// NullToken marks a null cell, in addition to the empty field.
	NullToken string
}

func DefaultCsvOptions() CsvOptions {
	return CsvOptions{
		Delimiter: ',',
		NullToken: "NULL",
	}
}

// ImportCsvFile appends every row of a CSV file to the table. Fields
// are parsed by the table's column types; the null token and empty
// fields load as NULL.
func ImportCsvFile(table *storage.Table, path string, opts CsvOptions) (int, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0755)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	rows, err := ImportCsv(table, file, opts)
	if err != nil {
		return rows, err
	}
	util.Info("imported csv",
		zap.String("path", path),
		zap.Int("rows", rows))
	return rows, nil
}

func ImportCsv(table *storage.Table, in io.Reader, opts CsvOptions) (int, error) {
	reader := csv.NewReader(in)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	rows := 0
	first := true
	for {
		line, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return rows, err
		}
		if first && opts.Header {
			first = false
			continue
		}
		first = false
		if len(line) != table.ColumnCount() {
			return rows, fmt.Errorf("%w: %d fields for %d columns",
				common.ErrArity, len(line), table.ColumnCount())
		}
		row := make([]common.Value, len(line))
		for i, field := range line {
			typ, err := table.ColumnType(common.ColumnID(i))
			if err != nil {
				return rows, err
			}
			row[i], err = parseField(field, typ, opts.NullToken)
			if err != nil {
				return rows, err
			}
		}
		if err = table.Append(row); err != nil {
			return rows, err
		}
		rows++
	}
	return rows, nil
}

func parseField(field string, typ common.DataTypeId, nullToken string) (common.Value, error) {
	if field == "" || (nullToken != "" && field == nullToken) {
		return common.NewNullValue(typ), nil
	}
	switch typ {
	case common.DTID_INT:
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return common.Value{}, fmt.Errorf("%w: %q is not an int", common.ErrTypeMismatch, field)
		}
		return common.NewIntValue(int32(v)), nil
	case common.DTID_LONG:
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return common.Value{}, fmt.Errorf("%w: %q is not a long", common.ErrTypeMismatch, field)
		}
		return common.NewLongValue(v), nil
	case common.DTID_FLOAT:
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return common.Value{}, fmt.Errorf("%w: %q is not a float", common.ErrTypeMismatch, field)
		}
		return common.NewFloatValue(float32(v)), nil
	case common.DTID_DOUBLE:
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return common.Value{}, fmt.Errorf("%w: %q is not a double", common.ErrTypeMismatch, field)
		}
		return common.NewDoubleValue(v), nil
	case common.DTID_STRING:
		return common.NewStringValue(field), nil
	default:
		return common.Value{}, fmt.Errorf("%w: id %d", common.ErrUnknownType, int(typ))
	}
}
