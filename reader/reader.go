/*
Package reader walks an OME-Zarr hierarchy and produces its nodes: the
multiscale image at the root, the "labels" group and each label image listed
in it.  Plates and wells are enumerated as nodes without data.
*/
package reader

import (
	"context"
	"fmt"
	"path"

	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/storage"
)

// LabelsGroup is the child group listing the label images of an image.
const LabelsGroup = "labels"

// Reader produces the nodes of the OME-Zarr hierarchy at the root of a store.
type Reader struct {
	store storage.Store
}

// New returns a Reader for the hierarchy in the store.
func New(store storage.Store) *Reader {
	return &Reader{store: store}
}

func (r *Reader) String() string {
	return fmt.Sprintf("OME-Zarr reader @ %s", r.store)
}

// Nodes returns the lazy node sequence of the hierarchy.  Nothing is read
// until the sequence is ranged over, and each range reads the store again.
// The root may be an image, a label image or a labels group.
func (r *Reader) Nodes(ctx context.Context) ngff.Nodes {
	return func(yield func(*ngff.Node, error) bool) {
		timedLog := ngff.NewTimeLog()
		root, attrs, err := r.readNode(ctx, "", false)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(root, nil) {
			return
		}
		if attrs == nil || attrs.Plate != nil || attrs.Well != nil {
			timedLog.Debugf("Read %s", r)
			return
		}
		if len(attrs.Labels) > 0 {
			if r.readLabels(ctx, "", attrs.Labels, yield) {
				timedLog.Debugf("Read labels group %s", r)
			}
			return
		}
		groupData, err := r.store.Get(ctx, storage.Join(LabelsGroup, storage.AttrsKey))
		if err != nil {
			yield(nil, fmt.Errorf("can't read labels group: %v", err))
			return
		}
		if groupData != nil {
			meta, group, err := decodeAttrs(storage.Join(LabelsGroup, storage.AttrsKey), groupData)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(ngff.NewNode(LabelsGroup, ngff.PlainNode, nil, meta), nil) {
				return
			}
			if !r.readLabels(ctx, LabelsGroup, group.Labels, yield) {
				return
			}
		}
		timedLog.Debugf("Read %s", r)
	}
}

// readLabels yields the label images listed by the labels group at the path.
// It returns false once the sequence is stopped or fails.
func (r *Reader) readLabels(ctx context.Context, group string, names []string, yield func(*ngff.Node, error) bool) bool {
	for _, name := range names {
		node, _, err := r.readNode(ctx, storage.Join(group, name), true)
		if err != nil {
			yield(nil, err)
			return false
		}
		if !yield(node, nil) {
			return false
		}
	}
	return true
}

// readNode builds the node for the group at the path.  A group without a
// .zattrs document gives a node without data and nil attributes.  The node is
// a label image when it is listed by a labels group or carries image-label.
func (r *Reader) readNode(ctx context.Context, nodePath string, listed bool) (*ngff.Node, *attributes, error) {
	kind := ngff.PlainNode
	if listed {
		kind = ngff.LabelNode
	}
	key := storage.Join(nodePath, storage.AttrsKey)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("can't read %s: %v", key, err)
	}
	if data == nil {
		ngff.Debugf("no %s in %s\n", key, r.store)
		return ngff.NewNode(nodePath, kind, nil, nil), nil, nil
	}
	raw, attrs, err := decodeAttrs(key, data)
	if err != nil {
		return nil, nil, err
	}
	if attrs.ImageLabel != nil {
		kind = ngff.LabelNode
	}

	meta := ngff.Metadata{}
	var arrays []ngff.Array
	switch {
	case attrs.Plate != nil:
		meta["plate"] = raw["plate"]
	case attrs.Well != nil:
		meta["well"] = raw["well"]
	case len(attrs.Multiscales) > 0:
		if arrays, err = r.readMultiscale(ctx, nodePath, attrs.Multiscales[0], meta); err != nil {
			return nil, nil, err
		}
	case len(attrs.Labels) > 0:
		meta["labels"] = raw["labels"]
	}
	if attrs.Omero != nil {
		addOmero(meta, attrs.Omero)
	}
	if kind == ngff.LabelNode {
		// the root keeps its multiscale name, if any
		var name string
		if nodePath != "" {
			name = path.Base(nodePath)
		}
		if err := addImageLabel(meta, name, attrs.ImageLabel); err != nil {
			return nil, nil, fmt.Errorf("label image %q: %v", nodePath, err)
		}
	}
	return ngff.NewNode(nodePath, kind, arrays, meta), attrs, nil
}
