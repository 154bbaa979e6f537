package colormap

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"gray", "Grey", "red", "viridis"} {
		cm, err := Get(name)
		if err != nil {
			t.Errorf("colormap %q: %v", name, err)
			continue
		}
		if cm.Controls[0] != 0 || cm.Controls[len(cm.Controls)-1] != 1 {
			t.Errorf("colormap %q has bad controls %v", name, cm.Controls)
		}
	}
	if _, err := Get("no-such-map"); !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
}

func TestFromStops(t *testing.T) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(`[[0, 0, 0], [1, 0, 0]]`), &decoded); err != nil {
		t.Fatal(err)
	}
	cm, err := FromStops(decoded)
	if err != nil {
		t.Fatal(err)
	}
	mid := cm.Map(0.5)
	if math.Abs(mid[0]-0.5) > 1e-9 || mid[1] != 0 || mid[3] != 1 {
		t.Errorf("bad midpoint color %v", mid)
	}

	cm, err = FromStops([]interface{}{"#000000", "00FF00"})
	if err != nil {
		t.Fatal(err)
	}
	if end := cm.Map(1); end != (Color{0, 1, 0, 1}) {
		t.Errorf("bad end color %v", end)
	}

	cm, err = FromStops([]interface{}{[]interface{}{0.0, 0.0, 0.0}, []interface{}{255.0, 128.0, 0.0}})
	if err != nil {
		t.Fatal(err)
	}
	if end := cm.Map(2); end[0] != 1 {
		t.Errorf("expected 0-255 scaling, got %v", end)
	}

	cm, err = FromStops(map[string]interface{}{
		"colors":   []interface{}{"#000000", "#ffffff", "#ff0000"},
		"controls": []interface{}{0.0, 0.25, 1.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c := cm.Map(0.25); c != (Color{1, 1, 1, 1}) {
		t.Errorf("expected white at control point, got %v", c)
	}

	bad := []interface{}{
		[]interface{}{},
		[]interface{}{"#zzzzzz"},
		[]interface{}{[]interface{}{1.0, 2.0}},
		map[string]interface{}{"controls": []interface{}{0.0, 1.0}},
		map[string]interface{}{"colors": []interface{}{"#000000", "#ffffff"}, "controls": []interface{}{0.0, 0.5}},
		42,
	}
	for i, v := range bad {
		if _, err := FromStops(v); !errors.Is(err, ErrBadStops) {
			t.Errorf("case %d: expected ErrBadStops, got %v", i, err)
		}
	}
}

func TestRealizeIdempotent(t *testing.T) {
	first, err := Realize("green")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Realize(first)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("realizing a realized colormap should return it unchanged")
	}
}

func TestSingleColor(t *testing.T) {
	cm, err := New("solid", []Color{{0.5, 0.5, 0.5, 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cm.Map(0.7) != (Color{0.5, 0.5, 0.5, 1}) {
		t.Errorf("single color map should be constant")
	}
}
