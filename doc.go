/*
Package omezarr reads OME-Zarr microscopy images and converts them into the
layer data a viewer displays: the multiscale arrays of an image or label
image, its display metadata and its layer kind.

A viewer asks for a reader for a path.  If the path names a Zarr hierarchy,
GetReader returns a function that reads the hierarchy and returns its layers:

	read, err := omezarr.GetReader(ctx, "s3://bucket/image.zarr")
	if err != nil {
		return err
	}
	if read == nil {
		// not a zarr hierarchy, try another reader
	}
	layers, err := read()

Multi-channel images keep their channel axis and carry a "channel_axis" key
so the viewer can split channels into separate layers.  Single-channel
images get single-valued metadata.  Label images are returned as "labels"
layers with their per-object properties in columnar form.

Command-line use

The omezarr command lists, exports and serves layers.  In the following,
the type of brackets designate <required parameter> and [optional parameter].

	omezarr about
	omezarr layers <path>
	omezarr export <path> <directory>
	omezarr [-config=/path/to/config.toml] [-http=:8000] serve

Paths may be local directories, file://, mem://, s3://, gs:// or http(s)://
URLs.
*/
package omezarr
