package omezarr

import (
	"context"
	"fmt"

	"github.com/janelia-flyem/omezarr/layer"
	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/reader"
	"github.com/janelia-flyem/omezarr/storage"
)

// Version of the omezarr module.
const Version = "0.3.0"

// ReaderFunc reads the layers of the hierarchy it was created for.
type ReaderFunc func() ([]layer.Data, error)

// Resolver opens a path and returns a store if the path is a Zarr
// hierarchy, or nil, nil if it isn't.
type Resolver func(ctx context.Context, path string) (storage.Store, error)

// GetReader returns a reader function for the first of the paths, or nil,
// nil if it isn't a Zarr hierarchy.  Only one path is supported, so any
// others are ignored with a warning.
func GetReader(ctx context.Context, paths ...string) (ReaderFunc, error) {
	return GetReaderWith(ctx, storage.ParseURL, paths...)
}

// GetReaderWith is GetReader with paths opened by the given resolver.
func GetReaderWith(ctx context.Context, resolve Resolver, paths ...string) (ReaderFunc, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no path given to read")
	}
	if len(paths) > 1 {
		ngff.Warningf("more than one path is not currently supported, reading only %q\n", paths[0])
	}
	store, err := resolve(ctx, paths[0])
	if err != nil {
		return nil, err
	}
	if store == nil {
		ngff.Debugf("%q is not an OME-Zarr hierarchy\n", paths[0])
		return nil, nil
	}
	return TransformReader(ctx, reader.New(store)), nil
}

// NodeSource is anything producing a node sequence, e.g., a *reader.Reader.
type NodeSource interface {
	Nodes(ctx context.Context) ngff.Nodes
}

// TransformReader returns a reader function converting the source's nodes to
// layers each time it is called.
func TransformReader(ctx context.Context, src NodeSource) ReaderFunc {
	return func() ([]layer.Data, error) {
		return layer.Transform(src.Nodes(ctx))
	}
}
