/*
Package server provides a web interface to the layers of OME-Zarr images so
web viewers can use them without reading OME-NGFF metadata themselves.

Layer lists are JSON, one object per layer with the array handles under
"data", the display metadata and the "layer_type".  Label property tables are
served as Arrow IPC streams.  Recently read layer lists are kept in memory.

The server is configured through a TOML file; see Config.
*/
package server
