package layer

import (
	"fmt"
	"sort"

	"github.com/janelia-flyem/omezarr/ngff"
)

// IndexKey is the column holding object identifiers.
const IndexKey = "index"

// Columns is a property table by column, e.g.,
//
//	{
//	    "index":         [1381342, 1381343, ...],
//	    "omero:roiId":   [1381342, 1381343, ...],
//	    "omero:shapeId": [1682567, 1682567, ...],
//	}
//
// Every column has one value per object, nil where an object lacks the key.
type Columns map[string][]interface{}

// NumRows returns the number of objects.
func (c Columns) NumRows() int {
	return len(c[IndexKey])
}

// Keys returns the column names with IndexKey first and the rest sorted.
func (c Columns) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		if key != IndexKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if _, found := c[IndexKey]; found {
		keys = append([]string{IndexKey}, keys...)
	}
	return keys
}

// TransformProperties turns per-object properties into columns.  The index
// column lists object identifiers in the given order.  Nil properties give
// nil columns.
func TransformProperties(props ngff.Properties) Columns {
	if props == nil {
		return nil
	}

	// first, create columns for all existing keys...
	columns := Columns{}
	for _, obj := range props {
		for key := range obj.Values {
			if key != IndexKey {
				columns[key] = make([]interface{}, 0, len(props))
			}
		}
	}

	// ...then fill them, in case some objects don't have all the keys.
	columns[IndexKey] = make([]interface{}, 0, len(props))
	for _, obj := range props {
		columns[IndexKey] = append(columns[IndexKey], obj.ID)
		for key := range columns {
			if key == IndexKey {
				continue
			}
			columns[key] = append(columns[key], obj.Values[key])
		}
	}
	return columns
}

// asProperties accepts the ordered ngff.Properties or a mapping of object
// identifier to key/value mapping.  Mappings have no order, so their objects
// are taken in sorted identifier order.
func asProperties(v interface{}) (ngff.Properties, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case ngff.Properties:
		return p, nil
	case map[string]map[string]interface{}:
		props := make(ngff.Properties, 0, len(p))
		for _, id := range sortedKeys(p) {
			props = append(props, ngff.ObjectProperties{ID: id, Values: p[id]})
		}
		return props, nil
	case map[string]interface{}:
		props := make(ngff.Properties, 0, len(p))
		for _, id := range sortedKeys(p) {
			values, ok := p[id].(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("properties of object %q are %T, not a mapping", id, p[id])
			}
			props = append(props, ngff.ObjectProperties{ID: id, Values: values})
		}
		return props, nil
	}
	return nil, fmt.Errorf("can't use %T as label properties", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
