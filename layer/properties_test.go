package layer

import (
	"reflect"
	"testing"

	"github.com/janelia-flyem/omezarr/ngff"
)

func TestTransformProperties(t *testing.T) {
	tests := []struct {
		name     string
		props    ngff.Properties
		expected Columns
	}{
		{
			name: "missing values",
			props: ngff.Properties{
				{ID: "a", Values: map[string]interface{}{"x": 1, "y": 2}},
				{ID: "b", Values: map[string]interface{}{"x": 3}},
			},
			expected: Columns{"x": {1, 3}, "y": {2, nil}, "index": {"a", "b"}},
		},
		{
			name: "order follows input",
			props: ngff.Properties{
				{ID: 1381343, Values: map[string]interface{}{"omero:roiId": 2}},
				{ID: 1381342, Values: map[string]interface{}{"omero:shapeId": 7}},
			},
			expected: Columns{
				"index":         {1381343, 1381342},
				"omero:roiId":   {2, nil},
				"omero:shapeId": {nil, 7},
			},
		},
		{
			name:     "empty",
			props:    ngff.Properties{},
			expected: Columns{"index": {}},
		},
		{
			name:     "nil",
			props:    nil,
			expected: nil,
		},
		{
			name: "index key ignored",
			props: ngff.Properties{
				{ID: 5, Values: map[string]interface{}{"index": 99, "z": true}},
			},
			expected: Columns{"index": {5}, "z": {true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformProperties(tt.props)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			for key, values := range got {
				if len(values) != got.NumRows() {
					t.Errorf("column %q has %d values for %d rows", key, len(values), got.NumRows())
				}
			}
		})
	}
}

func TestAsPropertiesMapping(t *testing.T) {
	props, err := asProperties(map[string]interface{}{
		"b": map[string]interface{}{"x": 3},
		"a": map[string]interface{}{"x": 1, "y": 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	cols := TransformProperties(props)
	expected := Columns{"x": {1, 3}, "y": {2, nil}, "index": {"a", "b"}}
	if !reflect.DeepEqual(cols, expected) {
		t.Errorf("expected %v, got %v", expected, cols)
	}

	if _, err := asProperties(map[string]interface{}{"a": 1}); err == nil {
		t.Errorf("expected error for non-mapping object properties")
	}
	if props, err := asProperties(nil); props != nil || err != nil {
		t.Errorf("nil properties should give nil, got %v, %v", props, err)
	}
}

func TestColumnsKeys(t *testing.T) {
	cols := Columns{"b": {1}, "index": {0}, "a": {2}}
	if keys := cols.Keys(); !reflect.DeepEqual(keys, []string{"index", "a", "b"}) {
		t.Errorf("unexpected key order %v", keys)
	}
}
