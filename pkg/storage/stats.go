package storage

import (
	"encoding/binary"
	"math"
	"sync"

	hll "github.com/axiomhq/hyperloglog"

	"github.com/quartzdb/quartz/pkg/common"
)

// ColumnStats tracks per-column row, null and approximate distinct
// counts, maintained on the append path. Introspection only; nothing
// in the engine plans against these.
type ColumnStats struct {
	mu        sync.Mutex
	count     uint64
	nullCount uint64
	distinct  *hll.Sketch
}

func NewColumnStats() *ColumnStats {
	return &ColumnStats{
		distinct: hll.New14(),
	}
}

func (stats *ColumnStats) Update(val common.Value) {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	stats.count++
	if val.IsNull {
		stats.nullCount++
		return
	}
	stats.distinct.Insert(encodeStatsKey(val))
}

func (stats *ColumnStats) Count() uint64 {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return stats.count
}

func (stats *ColumnStats) NullCount() uint64 {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return stats.nullCount
}

// DistinctCount is a hyperloglog estimate, not an exact figure.
func (stats *ColumnStats) DistinctCount() uint64 {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return stats.distinct.Estimate()
}

func encodeStatsKey(val common.Value) []byte {
	switch val.Typ {
	case common.DTID_INT, common.DTID_LONG:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(val.I64))
		return buf[:]
	case common.DTID_FLOAT, common.DTID_DOUBLE:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(val.F64))
		return buf[:]
	default:
		return []byte(val.Str)
	}
}
