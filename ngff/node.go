package ngff

import (
	"fmt"
	"iter"
)

// NodeKind is the closed set of node variants.
type NodeKind uint8

const (
	PlainNode NodeKind = iota
	LabelNode
)

func (k NodeKind) String() string {
	if k == LabelNode {
		return "label"
	}
	return "plain"
}

// Node is one addressable group of the OME-Zarr hierarchy.  Nodes without
// data, e.g., the "labels" group, are still enumerated.
type Node struct {
	Path     string
	Data     []Array
	Metadata Metadata

	kind NodeKind
}

// NewNode returns a node of the given kind.  A nil metadata map is replaced
// with an empty one.
func NewNode(path string, kind NodeKind, data []Array, meta Metadata) *Node {
	if meta == nil {
		meta = Metadata{}
	}
	return &Node{Path: path, Data: data, Metadata: meta, kind: kind}
}

func (n *Node) Kind() NodeKind {
	return n.kind
}

// IsLabel returns true if the node holds a label image.
func (n *Node) IsLabel() bool {
	return n.kind == LabelNode
}

func (n *Node) String() string {
	return fmt.Sprintf("%s node %q (%d arrays)", n.kind, n.Path, len(n.Data))
}

// Nodes is a lazily produced sequence of nodes.  A non-nil error ends the
// sequence.
type Nodes = iter.Seq2[*Node, error]

// NodeSlice returns a sequence over the given nodes.
func NodeSlice(nodes ...*Node) Nodes {
	return func(yield func(*Node, error) bool) {
		for _, n := range nodes {
			if !yield(n, nil) {
				return
			}
		}
	}
}
