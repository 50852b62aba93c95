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

package common

import "fmt"

// DataTypeId enumerates the closed set of column element types. Every
// type-generic operation in the engine is written once as a generic
// function and instantiated per member of this set through a switch on
// the id (see NewValueSegmentOfType and CompressSegment in pkg/storage).
type DataTypeId int

const (
	DTID_INVALID DataTypeId = 0
	DTID_INT     DataTypeId = 1
	DTID_LONG    DataTypeId = 2
	DTID_FLOAT   DataTypeId = 3
	DTID_DOUBLE  DataTypeId = 4
	DTID_STRING  DataTypeId = 5
)

// ColumnType constrains the Go element types backing the closed set.
type ColumnType interface {
	int32 | int64 | float32 | float64 | string
}

var dTypeIdToName = map[DataTypeId]string{
	DTID_INT:    "int",
	DTID_LONG:   "long",
	DTID_FLOAT:  "float",
	DTID_DOUBLE: "double",
	DTID_STRING: "string",
}

var dTypeNameToId = map[string]DataTypeId{
	"int":    DTID_INT,
	"long":   DTID_LONG,
	"float":  DTID_FLOAT,
	"double": DTID_DOUBLE,
	"string": DTID_STRING,
}

func (id DataTypeId) String() string {
	if s, has := dTypeIdToName[id]; has {
		return s
	}
	panic(fmt.Sprintf("usp %d", int(id)))
}

func (id DataTypeId) Valid() bool {
	_, has := dTypeIdToName[id]
	return has
}

// ParseDataType maps a runtime type name onto its id. Names outside the
// closed set fail with ErrUnknownType.
func ParseDataType(name string) (DataTypeId, error) {
	if id, has := dTypeNameToId[name]; has {
		return id, nil
	}
	return DTID_INVALID, fmt.Errorf("%w: %s", ErrUnknownType, name)
}

// DataTypeOf reports the id for a static element type.
func DataTypeOf[T ColumnType]() DataTypeId {
	var zero T
	switch any(zero).(type) {
	case int32:
		return DTID_INT
	case int64:
		return DTID_LONG
	case float32:
		return DTID_FLOAT
	case float64:
		return DTID_DOUBLE
	case string:
		return DTID_STRING
	default:
		panic("usp")
	}
}

// SizeOfType is the per-element byte size used by memory estimates.
// Strings count their header only; payload bytes are not tracked.
func SizeOfType(id DataTypeId) uint64 {
	switch id {
	case DTID_INT, DTID_FLOAT:
		return 4
	case DTID_LONG, DTID_DOUBLE:
		return 8
	case DTID_STRING:
		return 16
	default:
		panic(fmt.Sprintf("usp %d", int(id)))
	}
}
