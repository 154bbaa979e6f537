package reader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/storage"
)

// MaxConcurrentLoads bounds the array documents of a multiscale read at once.
var MaxConcurrentLoads = 8

// readMultiscale loads the levels of a multiscale, highest resolution first,
// and adds its name, axes and affine to the metadata.
func (r *Reader) readMultiscale(ctx context.Context, nodePath string, ms multiscale, meta ngff.Metadata) ([]ngff.Array, error) {
	version, err := ngff.ParseVersion(ms.Version)
	if err != nil {
		return nil, err
	}
	arrays, err := r.loadArrays(ctx, nodePath, ms.Datasets)
	if err != nil {
		return nil, err
	}
	ndim := len(arrays[0].Shape())

	if ms.Name != "" {
		meta["name"] = ms.Name
	}
	if ngff.HasAxes(version) && len(ms.Axes) > 0 {
		if len(ms.Axes) != ndim {
			return nil, fmt.Errorf("multiscale %q declares %d axes for %d-d arrays", nodePath, len(ms.Axes), ndim)
		}
		axes := make([]string, len(ms.Axes))
		for i, a := range ms.Axes {
			axes[i] = a.Name
		}
		meta["axes"] = axes
	} else if len(ms.Axes) > 0 {
		ngff.Debugf("ignoring axes of version %s multiscale %q\n", version, nodePath)
	}
	if ngff.HasAxisObjects(version) {
		var transforms []transform
		transforms = append(transforms, ms.Datasets[0].Transforms...)
		transforms = append(transforms, ms.Transforms...)
		affine, err := toAffine(transforms, ndim)
		if err != nil {
			return nil, fmt.Errorf("multiscale %q: %v", nodePath, err)
		}
		if affine != nil {
			meta["affine"] = affine
		}
	}
	return arrays, nil
}

func (r *Reader) loadArrays(ctx context.Context, nodePath string, datasets []dataset) ([]ngff.Array, error) {
	arrays := make([]ngff.Array, len(datasets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentLoads)
	for i, ds := range datasets {
		g.Go(func() error {
			arrayPath := storage.Join(nodePath, ds.Path)
			key := storage.Join(arrayPath, storage.ArrayKey)
			data, err := r.store.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("can't read %s: %v", key, err)
			}
			if data == nil {
				return fmt.Errorf("dataset %q has no %s", arrayPath, storage.ArrayKey)
			}
			if arrays[i], err = ngff.NewZArray(arrayPath, data); err != nil {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return arrays, nil
}

// toAffine composes scale and translation transformations, applied in order,
// into the affine of an n-d array.  A nil affine is returned if there are no
// transformations other than identity.
func toAffine(transforms []transform, ndim int) (ngff.Affine, error) {
	scale := make([]float64, ndim)
	translation := make([]float64, ndim)
	for i := range scale {
		scale[i] = 1
	}
	var used bool
	for _, t := range transforms {
		switch t.Type {
		case "identity":
		case "scale":
			if len(t.Scale) != ndim {
				return nil, fmt.Errorf("scale has %d values for %d-d arrays", len(t.Scale), ndim)
			}
			for i, s := range t.Scale {
				scale[i] *= s
				translation[i] *= s
			}
			used = true
		case "translation":
			if len(t.Translation) != ndim {
				return nil, fmt.Errorf("translation has %d values for %d-d arrays", len(t.Translation), ndim)
			}
			for i, d := range t.Translation {
				translation[i] += d
			}
			used = true
		default:
			return nil, fmt.Errorf("unknown coordinate transformation %q", t.Type)
		}
	}
	if !used {
		return nil, nil
	}
	return ngff.FromScaleTranslation(scale, translation)
}
