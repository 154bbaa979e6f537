package ngff

import (
	"encoding/json"
	"fmt"
)

// Array is a lazy handle on an n-dimensional array of a multiscale pyramid.
type Array interface {
	// Path is the store-relative location of the array.
	Path() string

	// Shape returns the extent of each dimension.  Callers must not modify it.
	Shape() []int

	DataType() DataType

	// Chunks returns the chunk extent of each dimension.
	Chunks() []int
}

// ZArray is an Array described by a Zarr v2 ".zarray" document.
type ZArray struct {
	path string
	meta ArrayMeta
	dt   DataType
}

// ArrayMeta is the decoded ".zarray" document.
type ArrayMeta struct {
	ZarrFormat int                    `json:"zarr_format"`
	Shape      []int                  `json:"shape"`
	Chunks     []int                  `json:"chunks"`
	DType      string                 `json:"dtype"`
	Compressor map[string]interface{} `json:"compressor"`
	FillValue  interface{}            `json:"fill_value"`
	Order      string                 `json:"order"`
	Filters    []interface{}          `json:"filters"`
}

// NewZArray returns an array handle from a ".zarray" document.
func NewZArray(path string, data []byte) (*ZArray, error) {
	var meta ArrayMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("bad .zarray for %q: %v", path, err)
	}
	if meta.ZarrFormat != 2 {
		return nil, fmt.Errorf("array %q has zarr_format %d, only 2 is supported", path, meta.ZarrFormat)
	}
	if len(meta.Chunks) != len(meta.Shape) {
		return nil, fmt.Errorf("array %q has %d chunk dimensions for %d-d shape", path, len(meta.Chunks), len(meta.Shape))
	}
	dt, err := ParseDType(meta.DType)
	if err != nil {
		return nil, fmt.Errorf("array %q: %v", path, err)
	}
	return &ZArray{path: path, meta: meta, dt: dt}, nil
}

func (a *ZArray) Path() string       { return a.path }
func (a *ZArray) Shape() []int       { return a.meta.Shape }
func (a *ZArray) Chunks() []int      { return a.meta.Chunks }
func (a *ZArray) DataType() DataType { return a.dt }
func (a *ZArray) Meta() ArrayMeta    { return a.meta }
func (a *ZArray) String() string     { return fmt.Sprintf("%s %v %s", a.path, a.meta.Shape, a.dt) }

// axisView is an array with one axis removed by fixing its index.
type axisView struct {
	src   Array
	axis  int
	index int
	shape []int
	chunk []int
}

// SelectIndex returns a view of a with the given axis removed by selecting
// index along it, i.e. the equivalent of a[:, index, ...] for axis 1.
func SelectIndex(a Array, axis, index int) (Array, error) {
	shape := a.Shape()
	if axis < 0 || axis >= len(shape) {
		return nil, fmt.Errorf("%w: axis %d of %d-d array %q", ErrAxisRange, axis, len(shape), a.Path())
	}
	if index < 0 || index >= shape[axis] {
		return nil, fmt.Errorf("%w: index %d along axis %d of size %d", ErrAxisRange, index, axis, shape[axis])
	}
	return &axisView{
		src:   a,
		axis:  axis,
		index: index,
		shape: dropInt(shape, axis),
		chunk: dropInt(a.Chunks(), axis),
	}, nil
}

func (v *axisView) Path() string       { return v.src.Path() }
func (v *axisView) Shape() []int       { return v.shape }
func (v *axisView) Chunks() []int      { return v.chunk }
func (v *axisView) DataType() DataType { return v.src.DataType() }

// Source returns the array the view selects from plus the fixed axis and index.
func (v *axisView) Source() (Array, int, int) { return v.src, v.axis, v.index }

func (v *axisView) String() string {
	return fmt.Sprintf("%s[axis %d = %d] %v %s", v.src.Path(), v.axis, v.index, v.shape, v.DataType())
}

func dropInt(in []int, i int) []int {
	if i < 0 || i >= len(in) {
		return append([]int(nil), in...)
	}
	out := make([]int, 0, len(in)-1)
	out = append(out, in[:i]...)
	return append(out, in[i+1:]...)
}

// NumElements returns the number of elements in the array.
func NumElements(a Array) int64 {
	n := int64(1)
	for _, s := range a.Shape() {
		n *= int64(s)
	}
	return n
}

// NBytes returns the uncompressed size of the array in bytes.
func NBytes(a Array) int64 {
	return NumElements(a) * a.DataType().Bytes()
}
