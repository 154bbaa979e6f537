package ngff

import "fmt"

// Metadata maps keyword to arbitrary values describing a node, e.g., "axes",
// "affine", "colormap" or "properties".
type Metadata map[string]interface{}

// Has returns true if the key is present, even with a nil value.
func (m Metadata) Has(key string) bool {
	_, found := m[key]
	return found
}

// GetString returns a string value.  An error is returned if the key exists
// but the value isn't a string.
func (m Metadata) GetString(key string) (s string, found bool, err error) {
	var v interface{}
	if v, found = m[key]; !found {
		return
	}
	var ok bool
	if s, ok = v.(string); !ok {
		err = fmt.Errorf("metadata %q is %T, not a string", key, v)
	}
	return
}

// Axes returns the ordered axis labels if an "axes" key is present.  An error
// is returned for values that are not a sequence of strings.
func (m Metadata) Axes() (axes []string, found bool, err error) {
	var v interface{}
	if v, found = m["axes"]; !found {
		return
	}
	switch a := v.(type) {
	case []string:
		axes = a
	case []interface{}:
		axes = make([]string, len(a))
		for i, x := range a {
			s, ok := x.(string)
			if !ok {
				return nil, true, fmt.Errorf("axis %d is %T, not a string", i, x)
			}
			axes[i] = s
		}
	default:
		err = fmt.Errorf("metadata \"axes\" is %T, not a sequence of axis labels", v)
	}
	return
}

// ObjectProperties holds the key/value annotations of one labeled object.
type ObjectProperties struct {
	ID     interface{}
	Values map[string]interface{}
}

// Properties is the ordered list of per-object annotations of a label image,
// in the order the objects were declared.
type Properties []ObjectProperties
