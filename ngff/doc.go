/*
Package ngff holds the types shared by the OME-Zarr reader and the layer transformer:
hierarchy nodes, lazy array handles, affine transforms, metadata maps and the
leveled logging used throughout the module.

Nothing in this package performs storage I/O.  Arrays are handles that describe
shape, data type and chunking as recorded in a ".zarray" document; pixel values
are never decoded here.
*/
package ngff
