package layer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
)

// PropertiesRecord returns the columns as a single Arrow record with the index
// column first.  Column types are inferred: integers become int64, other
// numbers float64, booleans bool and everything else strings.  Missing values
// are nulls.  The caller must Release the record.
func PropertiesRecord(cols Columns, pool memory.Allocator) (arrow.Record, error) {
	if cols == nil {
		return nil, fmt.Errorf("no properties")
	}
	keys := cols.Keys()
	fields := make([]arrow.Field, len(keys))
	for i, key := range keys {
		if len(cols[key]) != cols.NumRows() {
			return nil, fmt.Errorf("property %q has %d values for %d objects", key, len(cols[key]), cols.NumRows())
		}
		fields[i] = arrow.Field{Name: key, Type: inferType(cols[key]), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for i, key := range keys {
		for _, v := range cols[key] {
			if v == nil {
				b.Field(i).AppendNull()
				continue
			}
			switch fb := b.Field(i).(type) {
			case *array.Int64Builder:
				n, _ := toInt64(v)
				fb.Append(n)
			case *array.Float64Builder:
				f, _ := toFloat64(v)
				fb.Append(f)
			case *array.BooleanBuilder:
				fb.Append(v.(bool))
			case *array.StringBuilder:
				fb.Append(fmt.Sprint(v))
			}
		}
	}
	return b.NewRecord(), nil
}

// WriteProperties writes the columns as an Arrow IPC stream.
func WriteProperties(w io.Writer, cols Columns) error {
	pool := memory.NewGoAllocator()
	record, err := PropertiesRecord(cols, pool)
	if err != nil {
		return err
	}
	defer record.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(record.Schema()), ipc.WithAllocator(pool))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func inferType(values []interface{}) arrow.DataType {
	allInt, allNum, allBool, seen := true, true, true, false
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		if _, ok := toInt64(v); !ok {
			allInt = false
		}
		if _, ok := toFloat64(v); !ok {
			allNum = false
		}
		if _, ok := v.(bool); !ok {
			allBool = false
		}
	}
	switch {
	case !seen:
		return arrow.BinaryTypes.String
	case allInt:
		return arrow.PrimitiveTypes.Int64
	case allNum:
		return arrow.PrimitiveTypes.Float64
	case allBool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
