package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/janelia-flyem/omezarr/colormap"
	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/storage"
)

func zarray(dtype string, shape ...int) string {
	s, _ := json.Marshal(shape)
	return fmt.Sprintf(`{"zarr_format": 2, "shape": %s, "chunks": %s, "dtype": %q, "compressor": null, "fill_value": 0, "order": "C", "filters": null}`, s, s, dtype)
}

func openFixture(t *testing.T, name string, docs map[string]string) *Reader {
	t.Helper()
	ctx := context.Background()
	bucket := storage.MemBucket(name)
	for key, value := range docs {
		if err := bucket.WriteAll(ctx, key, []byte(value), nil); err != nil {
			t.Fatalf("can't write fixture %q: %v", key, err)
		}
	}
	store, err := storage.Open(ctx, "mem://"+name)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func readAll(t *testing.T, r *Reader) ([]*ngff.Node, error) {
	t.Helper()
	var nodes []*ngff.Node
	for node, err := range r.Nodes(context.Background()) {
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

var imageV04 = map[string]string{
	".zgroup": `{"zarr_format": 2}`,
	".zattrs": `{
		"multiscales": [{
			"version": "0.4",
			"name": "cells",
			"axes": [
				{"name": "c", "type": "channel"},
				{"name": "z", "type": "space"},
				{"name": "y", "type": "space"},
				{"name": "x", "type": "space"}
			],
			"datasets": [
				{"path": "0", "coordinateTransformations": [{"type": "scale", "scale": [1, 0.5, 0.25, 0.25]}]},
				{"path": "1", "coordinateTransformations": [{"type": "scale", "scale": [1, 1, 0.5, 0.5]}]}
			],
			"coordinateTransformations": [{"type": "translation", "translation": [0, 10, 0, 0]}]
		}],
		"omero": {
			"channels": [
				{"label": "DAPI", "color": "0000FF", "active": true, "window": {"start": 0, "end": 1500}},
				{"label": "GFP", "color": "00FF00", "active": false, "window": {"start": 10, "end": 900}}
			],
			"rdefs": {"model": "color"}
		}
	}`,
	"0/.zarray": zarray("<u2", 2, 16, 64, 64),
	"1/.zarray": zarray("<u2", 2, 8, 32, 32),
	"labels/.zgroup": `{"zarr_format": 2}`,
	"labels/.zattrs": `{"labels": ["nuclei"]}`,
	"labels/nuclei/.zattrs": `{
		"multiscales": [{
			"version": "0.4",
			"axes": [{"name": "z"}, {"name": "y"}, {"name": "x"}],
			"datasets": [{"path": "0", "coordinateTransformations": [{"type": "scale", "scale": [0.5, 0.25, 0.25]}]}]
		}],
		"image-label": {
			"version": "0.4",
			"colors": [{"label-value": 1, "rgba": [255, 0, 0, 255]}, {"label-value": 2, "rgba": [0, 255, 0]}],
			"properties": [
				{"label-value": 1, "area": 120, "class": "round"},
				{"label-value": 2, "area": 80}
			]
		}
	}`,
	"labels/nuclei/0/.zarray": zarray("<u4", 16, 64, 64),
}

func TestReadImageWithLabels(t *testing.T) {
	nodes, err := readAll(t, openFixture(t, "reader-v04", imageV04))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected image, labels group and label nodes, got %d nodes", len(nodes))
	}

	image := nodes[0]
	if image.IsLabel() || len(image.Data) != 2 {
		t.Fatalf("bad image node: %s", image)
	}
	if image.Data[0].Path() != "0" || image.Data[1].Shape()[1] != 8 {
		t.Errorf("levels not in dataset order: %v, %v", image.Data[0], image.Data[1])
	}
	axes, found, err := image.Metadata.Axes()
	if err != nil || !found || strings.Join(axes, "") != "czyx" {
		t.Errorf("bad axes %v (found %t): %v", axes, found, err)
	}
	affine, ok := image.Metadata["affine"].(ngff.Affine)
	if !ok {
		t.Fatalf("expected affine, got %T", image.Metadata["affine"])
	}
	expected, _ := ngff.FromScaleTranslation([]float64{1, 0.5, 0.25, 0.25}, []float64{0, 10, 0, 0})
	if !affine.Equal(expected) {
		t.Errorf("expected affine %v, got %v", expected, affine)
	}
	names, _ := image.Metadata["name"].([]interface{})
	if len(names) != 2 || names[0] != "DAPI" || names[1] != "GFP" {
		t.Errorf("bad channel names: %v", image.Metadata["name"])
	}
	visible, _ := image.Metadata["visible"].([]interface{})
	if len(visible) != 2 || visible[0] != true || visible[1] != false {
		t.Errorf("bad channel visibility: %v", image.Metadata["visible"])
	}
	limits, _ := image.Metadata["contrast_limits"].([]interface{})
	if len(limits) != 2 {
		t.Fatalf("bad contrast limits: %v", image.Metadata["contrast_limits"])
	}
	if l, ok := limits[1].([]float64); !ok || l[0] != 10 || l[1] != 900 {
		t.Errorf("bad contrast limits for channel 1: %v", limits[1])
	}
	cms, _ := image.Metadata["colormap"].([]interface{})
	if len(cms) != 2 {
		t.Fatalf("bad colormaps: %v", image.Metadata["colormap"])
	}
	cm, err := colormap.Realize(cms[0])
	if err != nil {
		t.Fatal(err)
	}
	if cm.Map(1) != (colormap.Color{0, 0, 1, 1}) {
		t.Errorf("expected DAPI colormap to end in blue, got %v", cm.Map(1))
	}

	group := nodes[1]
	if group.Path != LabelsGroup || len(group.Data) != 0 || group.IsLabel() {
		t.Errorf("bad labels group node: %s", group)
	}

	label := nodes[2]
	if !label.IsLabel() || label.Path != "labels/nuclei" || len(label.Data) != 1 {
		t.Fatalf("bad label node: %s", label)
	}
	if label.Metadata["name"] != "nuclei" || label.Metadata["visible"] != false {
		t.Errorf("bad label display metadata: %v", label.Metadata)
	}
	colors, _ := label.Metadata["color"].(map[int64]colormap.Color)
	if colors[1] != (colormap.Color{1, 0, 0, 1}) || colors[2] != (colormap.Color{0, 1, 0, 1}) {
		t.Errorf("bad label colors: %v", label.Metadata["color"])
	}
	props, ok := label.Metadata["properties"].(ngff.Properties)
	if !ok || len(props) != 2 {
		t.Fatalf("bad label properties: %v", label.Metadata["properties"])
	}
	if props[0].ID != json.Number("1") || props[0].Values["class"] != "round" {
		t.Errorf("bad first object properties: %+v", props[0])
	}
	if _, found := props[1].Values[LabelValueKey]; found {
		t.Errorf("label value should be the object id, not a property: %+v", props[1])
	}
}

// subtree re-roots the fixture documents under the prefix.
func subtree(docs map[string]string, prefix string) map[string]string {
	sub := make(map[string]string)
	for key, value := range docs {
		if strings.HasPrefix(key, prefix) {
			sub[strings.TrimPrefix(key, prefix)] = value
		}
	}
	return sub
}

func checkNucleiLabel(t *testing.T, label *ngff.Node) {
	t.Helper()
	if !label.IsLabel() || len(label.Data) != 1 {
		t.Fatalf("bad label node: %s", label)
	}
	if label.Metadata["visible"] != false {
		t.Errorf("expected hidden label image, got %v", label.Metadata)
	}
	colors, _ := label.Metadata["color"].(map[int64]colormap.Color)
	if colors[1] != (colormap.Color{1, 0, 0, 1}) {
		t.Errorf("bad label colors: %v", label.Metadata["color"])
	}
	if props, ok := label.Metadata["properties"].(ngff.Properties); !ok || len(props) != 2 {
		t.Errorf("bad label properties: %v", label.Metadata["properties"])
	}
}

func TestReadRootLabelImage(t *testing.T) {
	nodes, err := readAll(t, openFixture(t, "reader-root-label", subtree(imageV04, "labels/nuclei/")))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected only the label image, got %v", nodes)
	}
	checkNucleiLabel(t, nodes[0])
	if nodes[0].Path != "" || nodes[0].Metadata.Has("name") {
		t.Errorf("expected unnamed root label image, got %s: %v", nodes[0], nodes[0].Metadata)
	}

	named := subtree(imageV04, "labels/nuclei/")
	named[".zattrs"] = strings.Replace(named[".zattrs"], `"version": "0.4",`, `"version": "0.4", "name": "seg",`, 1)
	nodes, err = readAll(t, openFixture(t, "reader-root-label-named", named))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Metadata["name"] != "seg" {
		t.Errorf("expected root label image to keep its multiscale name, got %v", nodes)
	}
}

func TestReadRootLabelsGroup(t *testing.T) {
	nodes, err := readAll(t, openFixture(t, "reader-root-labels", subtree(imageV04, "labels/")))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected labels group and label nodes, got %v", nodes)
	}
	if nodes[0].IsLabel() || len(nodes[0].Data) != 0 || !nodes[0].Metadata.Has("labels") {
		t.Errorf("bad labels group node: %s", nodes[0])
	}
	checkNucleiLabel(t, nodes[1])
	if nodes[1].Path != "nuclei" || nodes[1].Metadata["name"] != "nuclei" {
		t.Errorf("bad label node %s: %v", nodes[1], nodes[1].Metadata)
	}
}

func TestLegacyVersions(t *testing.T) {
	tests := []struct {
		version  string
		axes     string
		wantAxes bool
	}{
		{"0.1", "", false},
		{"0.2", `"axes": ["t", "c", "z", "y", "x"],`, false},
		{"0.3", `"axes": ["t", "c", "z", "y", "x"],`, true},
	}
	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			docs := map[string]string{
				".zattrs":   fmt.Sprintf(`{"multiscales": [{"version": %q, %s "datasets": [{"path": "0"}]}]}`, tc.version, tc.axes),
				"0/.zarray": zarray("|u1", 1, 3, 4, 32, 32),
			}
			nodes, err := readAll(t, openFixture(t, "reader-legacy-"+tc.version, docs))
			if err != nil {
				t.Fatal(err)
			}
			if len(nodes) != 1 {
				t.Fatalf("expected 1 node, got %d", len(nodes))
			}
			if nodes[0].Metadata.Has("axes") != tc.wantAxes {
				t.Errorf("version %s: expected axes %t, got metadata %v", tc.version, tc.wantAxes, nodes[0].Metadata)
			}
			if nodes[0].Metadata.Has("affine") {
				t.Errorf("version %s should not have an affine", tc.version)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		docs map[string]string
	}{
		{"no datasets", map[string]string{
			".zattrs": `{"multiscales": [{"version": "0.4", "axes": ["y", "x"]}]}`,
		}},
		{"bad transform", map[string]string{
			".zattrs": `{"multiscales": [{"datasets": [{"path": "0", "coordinateTransformations": [{"type": "rotate"}]}]}]}`,
			"0/.zarray": zarray("<f4", 32, 32),
		}},
		{"missing array", map[string]string{
			".zattrs": `{"multiscales": [{"datasets": [{"path": "0"}, {"path": "1"}]}]}`,
			"0/.zarray": zarray("<f4", 32, 32),
		}},
		{"axes mismatch", map[string]string{
			".zattrs": `{"multiscales": [{"version": "0.4", "axes": [{"name": "x"}], "datasets": [{"path": "0"}]}]}`,
			"0/.zarray": zarray("<f4", 32, 32),
		}},
		{"scale mismatch", map[string]string{
			".zattrs": `{"multiscales": [{"version": "0.4", "datasets": [{"path": "0", "coordinateTransformations": [{"type": "scale", "scale": [1]}]}]}]}`,
			"0/.zarray": zarray("<f4", 32, 32),
		}},
		{"bad json", map[string]string{
			".zattrs": `{"multiscales": [`,
		}},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nodes, err := readAll(t, openFixture(t, fmt.Sprintf("reader-error-%d", i), tc.docs))
			if err == nil {
				t.Errorf("expected error, got %d nodes", len(nodes))
			}
		})
	}
}

func TestPlateHasNoData(t *testing.T) {
	docs := map[string]string{
		".zgroup":        `{"zarr_format": 2}`,
		".zattrs":        `{"plate": {"rows": [{"name": "A"}], "columns": [{"name": "1"}], "wells": [{"path": "A/1"}]}}`,
		"labels/.zattrs": `{"labels": ["ignored"]}`,
	}
	nodes, err := readAll(t, openFixture(t, "reader-plate", docs))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || len(nodes[0].Data) != 0 || !nodes[0].Metadata.Has("plate") {
		t.Errorf("expected a single data-less plate node, got %v", nodes)
	}
}

func TestEarlyStop(t *testing.T) {
	r := openFixture(t, "reader-early", imageV04)
	var count int
	for node, err := range r.Nodes(context.Background()) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if node.IsLabel() || count == 1 {
			break
		}
	}
	if count != 1 {
		t.Errorf("expected to stop after first node, read %d", count)
	}
}

func TestToAffine(t *testing.T) {
	tests := []struct {
		name       string
		transforms []transform
		expected   ngff.Affine
	}{
		{"none", nil, nil},
		{"identity", []transform{{Type: "identity"}}, nil},
		{"scale", []transform{{Type: "scale", Scale: []float64{2, 3}}}, ngff.Affine{{2, 0, 0}, {0, 3, 0}, {0, 0, 1}}},
		{"translate then scale", []transform{
			{Type: "translation", Translation: []float64{1, 1}},
			{Type: "scale", Scale: []float64{2, 4}},
		}, ngff.Affine{{2, 0, 2}, {0, 4, 4}, {0, 0, 1}}},
		{"scale then translate", []transform{
			{Type: "scale", Scale: []float64{2, 4}},
			{Type: "translation", Translation: []float64{1, 1}},
		}, ngff.Affine{{2, 0, 1}, {0, 4, 1}, {0, 0, 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			affine, err := toAffine(tc.transforms, 2)
			if err != nil {
				t.Fatal(err)
			}
			if tc.expected == nil {
				if affine != nil {
					t.Errorf("expected no affine, got %v", affine)
				}
				return
			}
			if !affine.Equal(tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, affine)
			}
		})
	}
}
