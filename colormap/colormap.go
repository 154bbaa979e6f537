/*
Package colormap realizes the color-map specifications found in OME-Zarr
channel metadata: names of well-known maps or inline color-stop data.
*/
package colormap

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/janelia-flyem/omezarr/ngff"
)

var (
	// ErrUnknown is returned when a colormap name has no registered map.
	ErrUnknown = errors.New("unknown colormap")

	// ErrBadStops is returned for color-stop data that can't form a colormap.
	ErrBadStops = errors.New("bad colormap stops")
)

// Color is an RGBA color with components in [0, 1].
type Color [4]float64

// Colormap linearly interpolates colors between control points in [0, 1].
type Colormap struct {
	Name     string
	Colors   []Color
	Controls []float64
}

// New returns a colormap for the colors, with controls evenly spaced over
// [0, 1] if none are given.
func New(name string, colors []Color, controls []float64) (*Colormap, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: no colors", ErrBadStops)
	}
	if len(colors) == 1 && controls == nil {
		colors = []Color{colors[0], colors[0]}
	}
	if controls == nil {
		controls = evenControls(len(colors))
	}
	if len(controls) != len(colors) {
		return nil, fmt.Errorf("%w: %d controls for %d colors", ErrBadStops, len(controls), len(colors))
	}
	if controls[0] != 0 || controls[len(controls)-1] != 1 {
		return nil, fmt.Errorf("%w: controls must start at 0 and end at 1", ErrBadStops)
	}
	if !sort.Float64sAreSorted(controls) {
		return nil, fmt.Errorf("%w: controls must be increasing", ErrBadStops)
	}
	return &Colormap{Name: name, Colors: colors, Controls: controls}, nil
}

func evenControls(n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = float64(i) / float64(n-1)
	}
	return c
}

// Map returns the color at t, clamped to [0, 1].
func (cm *Colormap) Map(t float64) Color {
	if t <= cm.Controls[0] {
		return cm.Colors[0]
	}
	last := len(cm.Controls) - 1
	if t >= cm.Controls[last] {
		return cm.Colors[last]
	}
	i := sort.SearchFloat64s(cm.Controls, t)
	lo, hi := cm.Controls[i-1], cm.Controls[i]
	f := (t - lo) / (hi - lo)
	var c Color
	for k := range c {
		c[k] = cm.Colors[i-1][k] + f*(cm.Colors[i][k]-cm.Colors[i-1][k])
	}
	return c
}

func (cm *Colormap) String() string {
	return fmt.Sprintf("colormap %q (%d colors)", cm.Name, len(cm.Colors))
}

// MarshalJSON implements the json.Marshaler interface.
func (cm *Colormap) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string    `json:"name"`
		Colors   []Color   `json:"colors"`
		Controls []float64 `json:"controls"`
	}{cm.Name, cm.Colors, cm.Controls})
}

// Realize returns v as a colormap: realized colormaps are returned unchanged,
// a string is looked up by name and anything else is read as color-stop data.
func Realize(v interface{}) (*Colormap, error) {
	switch cm := v.(type) {
	case *Colormap:
		return cm, nil
	case Colormap:
		return &cm, nil
	case string:
		return Get(cm)
	}
	return FromStops(v)
}

// FromStops builds a colormap from inline color-stop data: a sequence of
// colors, or a mapping with "colors" and optional "controls".  A color is a
// hex string or a sequence of 3 or 4 numbers; numbers above 1 are read on a
// 0-255 scale.
func FromStops(v interface{}) (*Colormap, error) {
	switch stops := v.(type) {
	case map[string]interface{}:
		colorsVal, found := stops["colors"]
		if !found {
			return nil, fmt.Errorf("%w: mapping has no \"colors\"", ErrBadStops)
		}
		colors, err := parseColors(colorsVal)
		if err != nil {
			return nil, err
		}
		var controls []float64
		if c, found := stops["controls"]; found && c != nil {
			if controls, err = parseFloats(c); err != nil {
				return nil, fmt.Errorf("%w: controls: %v", ErrBadStops, err)
			}
		}
		name, _ := stops["name"].(string)
		return New(name, colors, controls)
	default:
		colors, err := parseColors(v)
		if err != nil {
			return nil, err
		}
		return New("", colors, nil)
	}
}

func parseColors(v interface{}) ([]Color, error) {
	var items []interface{}
	switch c := v.(type) {
	case []interface{}:
		items = c
	case []string:
		for _, s := range c {
			items = append(items, s)
		}
	case [][]float64:
		for _, f := range c {
			items = append(items, f)
		}
	case []Color:
		return c, nil
	default:
		return nil, fmt.Errorf("%w: can't read colors from %T", ErrBadStops, v)
	}
	colors := make([]Color, len(items))
	for i, item := range items {
		c, err := parseColor(item)
		if err != nil {
			return nil, fmt.Errorf("%w: color %d: %v", ErrBadStops, i, err)
		}
		colors[i] = c
	}
	return colors, nil
}

func parseColor(v interface{}) (Color, error) {
	if s, ok := v.(string); ok {
		return ParseHex(s)
	}
	f, err := parseFloats(v)
	if err != nil {
		return Color{}, err
	}
	if len(f) != 3 && len(f) != 4 {
		return Color{}, fmt.Errorf("%d components, expected 3 or 4", len(f))
	}
	scale := 1.0
	for _, x := range f {
		if x > 1 {
			scale = 255
		}
	}
	c := Color{0, 0, 0, 1}
	for i, x := range f {
		c[i] = x / scale
	}
	return c, nil
}

func parseFloats(v interface{}) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []interface{}:
		out := make([]float64, len(x))
		for i, n := range x {
			f, err := ngff.ToFloat(n)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%T is not a sequence of numbers", v)
}

// ParseHex parses "RRGGBB" or "RRGGBBAA" with an optional leading "#".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("bad hex color %q", s)
	}
	c := Color{0, 0, 0, 1}
	for i := 0; i < len(h)/2; i++ {
		b, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("bad hex color %q: %v", s, err)
		}
		c[i] = float64(b) / 255
	}
	return c, nil
}
