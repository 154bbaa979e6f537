package reader

import (
	"fmt"

	"github.com/janelia-flyem/omezarr/colormap"
	"github.com/janelia-flyem/omezarr/ngff"
)

// addOmero adds per-channel display settings from OMERO rendering metadata.
// Each list has one entry per channel.  Contrast limits are only added if
// every channel has a window.
func addOmero(meta ngff.Metadata, om *omero) {
	n := len(om.Channels)
	if n == 0 {
		return
	}
	names := make([]interface{}, n)
	visible := make([]interface{}, n)
	limits := make([]interface{}, n)
	colormaps := make([]interface{}, n)
	allWindows := true
	for i, ch := range om.Channels {
		if ch.Label != "" {
			names[i] = ch.Label
		} else {
			names[i] = fmt.Sprintf("channel %d", i)
		}
		visible[i] = ch.Active == nil || *ch.Active
		if ch.Window != nil {
			limits[i] = []float64{ch.Window.Start, ch.Window.End}
		} else {
			allWindows = false
		}
		if ch.Color == "" {
			colormaps[i] = "gray"
		} else if _, err := colormap.ParseHex(ch.Color); err != nil {
			ngff.Warningf("channel %d has bad color %q, using gray: %v\n", i, ch.Color, err)
			colormaps[i] = "gray"
		} else {
			colormaps[i] = []interface{}{"000000", ch.Color}
		}
	}
	meta["name"] = names
	meta["visible"] = visible
	if allWindows {
		meta["contrast_limits"] = limits
	}
	if om.Rdefs.Model != "greyscale" {
		meta["colormap"] = colormaps
	}
}
