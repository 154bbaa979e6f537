package ngff

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotSquare is returned for affine matrices that are not square.
	ErrNotSquare = errors.New("affine is not a square matrix")

	// ErrAxisRange is returned when an axis or index lies outside an array or matrix.
	ErrAxisRange = errors.New("axis out of range")
)

// Affine is a homogeneous transformation matrix mapping array coordinates to
// physical space.  An n-d array has an (n+1)x(n+1) affine.
type Affine [][]float64

// Identity returns the n x n identity matrix.
func Identity(n int) Affine {
	a := make(Affine, n)
	for i := range a {
		a[i] = make([]float64, n)
		a[i][i] = 1
	}
	return a
}

// FromScaleTranslation returns the affine for an n-d array given per-axis
// scale and an optional per-axis translation.
func FromScaleTranslation(scale, translation []float64) (Affine, error) {
	n := len(scale)
	if translation != nil && len(translation) != n {
		return nil, fmt.Errorf("translation has %d values for %d-d scale", len(translation), n)
	}
	a := Identity(n + 1)
	for i, s := range scale {
		a[i][i] = s
		if translation != nil {
			a[i][n] = translation[i]
		}
	}
	return a, nil
}

// Dim returns the number of rows.
func (a Affine) Dim() int {
	return len(a)
}

// Validate checks the matrix is non-empty and square.
func (a Affine) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: empty matrix", ErrNotSquare)
	}
	for i, row := range a {
		if len(row) != len(a) {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrNotSquare, i, len(row), len(a))
		}
	}
	return nil
}

// DropDim returns a new matrix with row and column i removed.  The receiver
// is not modified.
func (a Affine) DropDim(i int) (Affine, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("%w: dimension %d of %dx%d affine", ErrAxisRange, i, len(a), len(a))
	}
	out := make(Affine, 0, len(a)-1)
	for r, row := range a {
		if r == i {
			continue
		}
		nr := make([]float64, 0, len(row)-1)
		nr = append(nr, row[:i]...)
		out = append(out, append(nr, row[i+1:]...))
	}
	return out, nil
}

// Equal returns true if both matrices have identical shape and values.
func (a Affine) Equal(b Affine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// AsAffine converts a metadata value into an Affine.  Accepted forms are an
// Affine, a [][]float64, or nested []interface{} rows of numbers as produced
// by JSON decoding.
func AsAffine(v interface{}) (Affine, error) {
	switch m := v.(type) {
	case Affine:
		return m, nil
	case [][]float64:
		return Affine(m), nil
	case []interface{}:
		a := make(Affine, len(m))
		for i, r := range m {
			row, ok := r.([]interface{})
			if !ok {
				if fr, isFloats := r.([]float64); isFloats {
					a[i] = fr
					continue
				}
				return nil, fmt.Errorf("affine row %d is %T, not a sequence", i, r)
			}
			a[i] = make([]float64, len(row))
			for j, x := range row {
				f, err := ToFloat(x)
				if err != nil {
					return nil, fmt.Errorf("affine element (%d,%d): %v", i, j, err)
				}
				a[i][j] = f
			}
		}
		return a, nil
	}
	return nil, fmt.Errorf("can't use %T as an affine matrix", v)
}

// ToFloat converts a decoded JSON number or Go numeric value into a float64.
func ToFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	}
	return 0, fmt.Errorf("%v (%T) is not a number", v, v)
}
