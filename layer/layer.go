package layer

import (
	"encoding/json"
	"fmt"

	"github.com/janelia-flyem/omezarr/ngff"
)

// Kind is the layer type understood by the host.
type Kind string

const (
	Image  Kind = "image"
	Labels Kind = "labels"
)

// MetadataKeys are the node metadata keys passed on to a layer.
var MetadataKeys = []string{"name", "visible", "contrast_limits", "colormap", "metadata", "affine", "blending"}

// Data is one layer: the multiscale arrays, the display metadata and the kind.
type Data struct {
	Arrays   []ngff.Array
	Metadata ngff.Metadata
	Kind     Kind
}

// ChannelAxis returns the channel axis if the layer is split into channels.
func (d Data) ChannelAxis() (int, bool) {
	axis, ok := d.Metadata["channel_axis"].(int)
	return axis, ok
}

// Name returns the layer name if it is a single string.
func (d Data) Name() string {
	name, _ := d.Metadata["name"].(string)
	return name
}

func (d Data) String() string {
	var shape []int
	if len(d.Arrays) > 0 {
		shape = d.Arrays[0].Shape()
	}
	return fmt.Sprintf("%s layer %v (%d scales) %v", d.Kind, shape, len(d.Arrays), d.Metadata)
}

type arrayJSON struct {
	Path     string        `json:"path"`
	Shape    []int         `json:"shape"`
	Chunks   []int         `json:"chunks"`
	DataType ngff.DataType `json:"dtype"`
}

// MarshalJSON implements the json.Marshaler interface.
func (d Data) MarshalJSON() ([]byte, error) {
	arrays := make([]arrayJSON, len(d.Arrays))
	for i, a := range d.Arrays {
		arrays[i] = arrayJSON{a.Path(), a.Shape(), a.Chunks(), a.DataType()}
	}
	return json.Marshal(struct {
		Data     []arrayJSON   `json:"data"`
		Metadata ngff.Metadata `json:"metadata"`
		Kind     Kind          `json:"layer_type"`
	}{arrays, d.Metadata, d.Kind})
}
