package reader

import (
	"fmt"

	"github.com/janelia-flyem/omezarr/colormap"
	"github.com/janelia-flyem/omezarr/ngff"
)

// LabelValueKey identifies the labeled object of image-label colors and properties.
const LabelValueKey = "label-value"

// addImageLabel adds the display settings of a label image: its name, hidden
// by default, the per-label colors and per-object properties.  An empty name
// leaves any name already in the metadata.
func addImageLabel(meta ngff.Metadata, name string, il *imageLabel) error {
	if name != "" {
		meta["name"] = name
	}
	meta["visible"] = false
	if il == nil {
		return nil
	}
	if len(il.Colors) > 0 {
		colors := make(map[int64]colormap.Color, len(il.Colors))
		for i, c := range il.Colors {
			label, err := c.LabelValue.Int64()
			if err != nil {
				ngff.Warningf("skipping color %d with bad label value %q\n", i, c.LabelValue)
				continue
			}
			color := colormap.Color{0, 0, 0, 1}
			switch len(c.RGBA) {
			case 3, 4:
				for j, x := range c.RGBA {
					color[j] = x / 255
				}
			default:
				return fmt.Errorf("color of label %d has %d components", label, len(c.RGBA))
			}
			colors[label] = color
		}
		meta["color"] = colors
	}
	if len(il.Properties) > 0 {
		props := make(ngff.Properties, 0, len(il.Properties))
		for i, p := range il.Properties {
			id, found := p[LabelValueKey]
			if !found {
				ngff.Warningf("skipping properties %d without %q\n", i, LabelValueKey)
				continue
			}
			values := make(map[string]interface{}, len(p)-1)
			for k, v := range p {
				if k != LabelValueKey {
					values[k] = v
				}
			}
			props = append(props, ngff.ObjectProperties{ID: id, Values: values})
		}
		meta["properties"] = props
	}
	return nil
}
