package reader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/janelia-flyem/omezarr/ngff"
)

// attributes are the OME-NGFF parts of a group's .zattrs.
type attributes struct {
	Multiscales []multiscale           `json:"multiscales"`
	Omero       *omero                 `json:"omero"`
	Labels      []string               `json:"labels"`
	ImageLabel  *imageLabel            `json:"image-label"`
	Plate       map[string]interface{} `json:"plate"`
	Well        map[string]interface{} `json:"well"`
}

type multiscale struct {
	Version    string      `json:"version"`
	Name       string      `json:"name"`
	Axes       []axis      `json:"axes"`
	Datasets   []dataset   `json:"datasets"`
	Transforms []transform `json:"coordinateTransformations"`
}

type dataset struct {
	Path       string      `json:"path"`
	Transforms []transform `json:"coordinateTransformations"`
}

type transform struct {
	Type        string    `json:"type"`
	Scale       []float64 `json:"scale"`
	Translation []float64 `json:"translation"`
}

// axis is a plain label before v0.4 and an object with a name after.
type axis struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func (a *axis) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &a.Name)
	}
	type plain axis
	return json.Unmarshal(b, (*plain)(a))
}

type omero struct {
	Channels []channel `json:"channels"`
	Rdefs    struct {
		Model string `json:"model"`
	} `json:"rdefs"`
}

type channel struct {
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Active *bool   `json:"active"`
	Window *window `json:"window"`
}

type window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type imageLabel struct {
	Version    string                   `json:"version"`
	Colors     []labelColor             `json:"colors"`
	Properties []map[string]interface{} `json:"properties"`
}

type labelColor struct {
	LabelValue json.Number `json:"label-value"`
	RGBA       []float64   `json:"rgba"`
}

// decodeAttrs validates a .zattrs document and returns both the raw mapping
// and its typed OME-NGFF view.  Numbers in the raw mapping are json.Number.
func decodeAttrs(key string, data []byte) (ngff.Metadata, *attributes, error) {
	var raw map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("can't decode %s: %v", key, err)
	}
	if err := validateAttrs(key, raw); err != nil {
		return nil, nil, err
	}
	attrs := new(attributes)
	dec = json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(attrs); err != nil {
		return nil, nil, fmt.Errorf("can't decode %s: %v", key, err)
	}
	return ngff.Metadata(raw), attrs, nil
}
