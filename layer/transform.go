package layer

import (
	"fmt"
	"reflect"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/omezarr/colormap"
	"github.com/janelia-flyem/omezarr/ngff"
)

// labelChannelAxis is where a 5-d label image keeps its placeholder channel.
const labelChannelAxis = 1

// Transformer converts nodes to layers, logging through an injected Logger.
type Transformer struct {
	log ngff.Logger
}

// New returns a Transformer.  A nil logger uses the package-level ngff logger.
func New(log ngff.Logger) *Transformer {
	if log == nil {
		log = ngff.DefaultLogger()
	}
	return &Transformer{log: log}
}

// Transform converts nodes to layers with the package-level ngff logger.
func Transform(nodes ngff.Nodes) ([]Data, error) {
	return New(nil).Transform(nodes)
}

// Transform consumes the node sequence and returns one layer per node with
// data, in sequence order.  Nodes without data are skipped.  Any error,
// whether yielded by the sequence or raised by a node, aborts the transform.
func (t *Transformer) Transform(nodes ngff.Nodes) ([]Data, error) {
	results := []Data{}
	for node, err := range nodes {
		if err != nil {
			return nil, err
		}
		if node == nil || len(node.Data) == 0 {
			t.log.Debugf("skipping non-data %s\n", node)
			continue
		}
		t.log.Debugf("transforming %s\n", node)
		layer, err := t.transformNode(node)
		if err != nil {
			return nil, fmt.Errorf("can't transform node %q: %w", node.Path, err)
		}
		if ngff.DebugEnabled() {
			t.log.Debugf("Transformed: %s (metadata ~%s)\n", layer, humanize.Bytes(uint64(size.Of(layer.Metadata))))
		}
		results = append(results, layer)
	}
	return results, nil
}

func (t *Transformer) transformNode(node *ngff.Node) (Data, error) {
	data := node.Data
	shape := data[0].Shape()
	metadata := ngff.Metadata{}
	kind := Image
	perChannel := true

	if node.IsLabel() {
		kind = Labels
		copyKeys(metadata, node.Metadata)
		if len(shape) == 5 {
			// Labels have no real channel axis, but the image layers beside them
			// lose theirs when split into channels, so drop it here to keep
			// both at the same dimensionality.
			var err error
			if data, err = selectFirst(data, labelChannelAxis); err != nil {
				return Data{}, err
			}
			if err := reduceAffine(metadata, labelChannelAxis); err != nil {
				return Data{}, err
			}
		}
	} else {
		channelAxis, found, err := findChannelAxis(node.Metadata, shape)
		if err != nil {
			return Data{}, err
		}
		if found {
			metadata["channel_axis"] = channelAxis
			copyKeys(metadata, node.Metadata)
			// The host splits channels into separate layers outside the
			// transformed space, so the affine loses the channel dimension.
			if err := reduceAffine(metadata, channelAxis); err != nil {
				return Data{}, err
			}
		} else {
			// single channel, so metadata needs single items, not lists
			perChannel = false
			for _, key := range MetadataKeys {
				if v, found := node.Metadata[key]; found {
					if key == "affine" {
						// a matrix, not one entry per channel
						if affine, err := ngff.AsAffine(v); err == nil {
							metadata[key] = affine
							continue
						}
					}
					if item, ok := firstItem(v); ok {
						metadata[key] = item
					}
				}
			}
		}
	}

	if err := normalizeColormaps(metadata, perChannel); err != nil {
		return Data{}, err
	}

	props, err := asProperties(node.Metadata["properties"])
	if err != nil {
		return Data{}, err
	}
	if columns := TransformProperties(props); columns != nil {
		metadata["properties"] = columns
	}
	return Data{Arrays: data, Metadata: metadata, Kind: kind}, nil
}

func copyKeys(dst, src ngff.Metadata) {
	for _, key := range MetadataKeys {
		if v, found := src[key]; found {
			dst[key] = v
		}
	}
}

// findChannelAxis uses the "axes" labels if declared.  Older layouts without
// axes always put channels at ngff.ChannelDimension, which only counts as a
// channel axis if it holds more than one channel.
func findChannelAxis(meta ngff.Metadata, shape []int) (axis int, found bool, err error) {
	axes, hasAxes, err := meta.Axes()
	if err != nil {
		return 0, false, err
	}
	if hasAxes {
		for i, label := range axes {
			if label == "c" {
				return i, true, nil
			}
		}
		return 0, false, nil
	}
	if len(shape) <= ngff.ChannelDimension {
		return 0, false, fmt.Errorf("%w: %d-d array has no channel dimension %d", ngff.ErrAxisRange, len(shape), ngff.ChannelDimension)
	}
	if shape[ngff.ChannelDimension] > 1 {
		return ngff.ChannelDimension, true, nil
	}
	return 0, false, nil
}

func selectFirst(data []ngff.Array, axis int) ([]ngff.Array, error) {
	out := make([]ngff.Array, len(data))
	for i, a := range data {
		v, err := ngff.SelectIndex(a, axis, 0)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func reduceAffine(metadata ngff.Metadata, axis int) error {
	v, found := metadata["affine"]
	if !found || v == nil {
		return nil
	}
	affine, err := ngff.AsAffine(v)
	if err != nil {
		return err
	}
	reduced, err := affine.DropDim(axis)
	if err != nil {
		return err
	}
	metadata["affine"] = reduced
	return nil
}

// firstItem returns element 0 of a sequence.  Anything that isn't a
// non-empty sequence reports false.
func firstItem(v interface{}) (interface{}, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() > 0 {
			return rv.Index(0).Interface(), true
		}
	}
	return nil, false
}

// normalizeColormaps realizes colormap specifications.  A per-channel list is
// replaced by a new list so the node's own metadata is never aliased.
func normalizeColormaps(metadata ngff.Metadata, perChannel bool) error {
	v, found := metadata["colormap"]
	if !found || v == nil {
		return nil
	}
	if !perChannel {
		cm, err := colormap.Realize(v)
		if err != nil {
			return err
		}
		metadata["colormap"] = cm
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("colormap is %T, expected one entry per channel", v)
	}
	cms := make([]interface{}, rv.Len())
	for i := range cms {
		cm, err := colormap.Realize(rv.Index(i).Interface())
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		cms[i] = cm
	}
	metadata["colormap"] = cms
	return nil
}
