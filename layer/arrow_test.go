package layer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
)

func TestPropertiesRecord(t *testing.T) {
	cols := Columns{
		"index": {json.Number("1"), json.Number("2"), json.Number("3")},
		"area":  {12.5, nil, json.Number("3")},
		"class": {"nucleus", "cytoplasm", nil},
		"valid": {true, false, true},
	}
	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)

	record, err := PropertiesRecord(cols, pool)
	if err != nil {
		t.Fatal(err)
	}
	defer record.Release()

	if record.NumRows() != 3 || record.NumCols() != 4 {
		t.Fatalf("expected 3x4 record, got %dx%d", record.NumRows(), record.NumCols())
	}
	schema := record.Schema()
	expected := []struct {
		name string
		typ  arrow.DataType
	}{
		{"index", arrow.PrimitiveTypes.Int64},
		{"area", arrow.PrimitiveTypes.Float64},
		{"class", arrow.BinaryTypes.String},
		{"valid", arrow.FixedWidthTypes.Boolean},
	}
	for i, e := range expected {
		f := schema.Field(i)
		if f.Name != e.name || !arrow.TypeEqual(f.Type, e.typ) {
			t.Errorf("field %d: expected %s %s, got %s %s", i, e.name, e.typ, f.Name, f.Type)
		}
	}
	index := record.Column(0).(*array.Int64)
	if index.Value(2) != 3 {
		t.Errorf("bad index value %d", index.Value(2))
	}
	if !record.Column(1).IsNull(1) || !record.Column(2).IsNull(2) {
		t.Errorf("missing values should be null")
	}
}

func TestWriteProperties(t *testing.T) {
	cols := TransformProperties(nil)
	if err := WriteProperties(&bytes.Buffer{}, cols); err == nil {
		t.Errorf("expected error writing nil properties")
	}

	cols = Columns{"index": {"a", "b"}, "x": {1, nil}}
	var buf bytes.Buffer
	if err := WriteProperties(&buf, cols); err != nil {
		t.Fatal(err)
	}
	rdr, err := ipc.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer rdr.Release()
	if !rdr.Next() {
		t.Fatalf("expected one record: %v", rdr.Err())
	}
	rec := rdr.Record()
	if rec.NumRows() != 2 {
		t.Errorf("expected 2 rows, got %d", rec.NumRows())
	}
	if s := rec.Column(0).(*array.String).Value(1); s != "b" {
		t.Errorf("expected index b, got %q", s)
	}
}
