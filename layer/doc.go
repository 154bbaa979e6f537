/*
Package layer converts OME-Zarr hierarchy nodes into the layer records a
viewer consumes: the node's arrays, a display metadata mapping and a layer kind
of "image" or "labels".

Per node, Transform decides the kind, finds and strips a channel axis, reduces
the affine to match and reshapes per-object label properties into columns:

	layers, err := layer.Transform(reader.New(store).Nodes(ctx))

Transform consumes the node sequence once and returns either the complete list
or an error.  No partial list is returned.
*/
package layer
