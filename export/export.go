/*
Package export writes the layers of an OME-Zarr image to a bucket: a JSON
manifest describing every layer and, for each labels layer with object
properties, an Arrow IPC file holding the property table.
*/
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/omezarr/layer"
	"github.com/janelia-flyem/omezarr/ngff"
)

// ManifestKey is the key of the manifest written at the bucket root.
const ManifestKey = "layers.json"

// Manifest describes the exported layers in read order.
type Manifest struct {
	Source  string    `json:"source"`
	Created time.Time `json:"created"`
	Layers  []Entry   `json:"layers"`
}

// Entry is one exported layer.
type Entry struct {
	Layer layer.Data `json:"layer"`

	// Properties is the key of the Arrow property table, if any.
	Properties string `json:"properties,omitempty"`

	// NBytes is the uncompressed size of the highest resolution array.
	NBytes int64  `json:"nbytes"`
	Size   string `json:"size"`
}

// PropertiesKey returns the key of the property table for the i-th layer.
func PropertiesKey(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("properties/%d.arrow", i)
	}
	return fmt.Sprintf("properties/%d-%s.arrow", i, name)
}

// Export writes the layers read from source into the bucket and returns the
// manifest it wrote.
func Export(ctx context.Context, bucket *blob.Bucket, source string, layers []layer.Data) (*Manifest, error) {
	timedLog := ngff.NewTimeLog()
	manifest := &Manifest{
		Source:  source,
		Created: time.Now().UTC(),
		Layers:  make([]Entry, len(layers)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, l := range layers {
		entry := &manifest.Layers[i]
		entry.Layer = l
		if len(l.Arrays) > 0 {
			entry.NBytes = ngff.NBytes(l.Arrays[0])
			entry.Size = humanize.Bytes(uint64(entry.NBytes))
		}
		cols, ok := l.Metadata["properties"].(layer.Columns)
		if !ok || cols.NumRows() == 0 {
			continue
		}
		entry.Properties = PropertiesKey(i, l.Name())
		g.Go(func() error {
			return writeProperties(gctx, bucket, entry.Properties, cols)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("can't encode manifest: %v", err)
	}
	if err := bucket.WriteAll(ctx, ManifestKey, data, &blob.WriterOptions{ContentType: "application/json"}); err != nil {
		return nil, fmt.Errorf("can't write manifest: %v", err)
	}
	timedLog.Infof("Exported %d layers of %s", len(layers), source)
	return manifest, nil
}

func writeProperties(ctx context.Context, bucket *blob.Bucket, key string, cols layer.Columns) error {
	var buf bytes.Buffer
	if err := layer.WriteProperties(&buf, cols); err != nil {
		return fmt.Errorf("can't encode properties %s: %v", key, err)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: "application/vnd.apache.arrow.stream"})
	if err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		w.Close()
		return fmt.Errorf("can't write properties %s: %v", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("can't write properties %s: %v", key, err)
	}
	ngff.Debugf("wrote %s properties to %s\n", humanize.Bytes(uint64(buf.Len())), key)
	return nil
}

// ReadManifest reads the manifest written by Export.  The layer entries are
// returned as raw JSON since array handles can't be rebuilt from it.
func ReadManifest(ctx context.Context, bucket *blob.Bucket) (source string, layers []json.RawMessage, err error) {
	data, err := bucket.ReadAll(ctx, ManifestKey)
	if err != nil {
		return "", nil, err
	}
	var m struct {
		Source string            `json:"source"`
		Layers []json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, fmt.Errorf("bad manifest: %v", err)
	}
	return m.Source, m.Layers, nil
}
