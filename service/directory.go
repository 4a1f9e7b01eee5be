package service

import (
	"strings"

	"github.com/blazbratanic/service-broker/errors"
)

// NodeType classifies a directory node.
type NodeType int

const (
	// NodeNone means no live node exists under the name.
	NodeNone NodeType = iota
	// NodeGroup is an interior node addressing a set of services.
	NodeGroup
	// NodeService is a leaf holding a registered service.
	NodeService
)

// String returns a human-readable representation of the node type.
func (nt NodeType) String() string {
	switch nt {
	case NodeGroup:
		return "group"
	case NodeService:
		return "service"
	default:
		return "none"
	}
}

type nodeKind int

const (
	kindGroup nodeKind = iota
	kindService
	kindTombstone
)

// dirNode is one segment in the tree. Children are kept in insertion order
// so group walks are deterministic.
type dirNode struct {
	kind     nodeKind
	children map[string]*dirNode
	order    []string
}

func newDirNode(kind nodeKind) *dirNode {
	return &dirNode{kind: kind, children: make(map[string]*dirNode)}
}

func (n *dirNode) child(segment string) (*dirNode, bool) {
	c, ok := n.children[segment]
	return c, ok
}

func (n *dirNode) addChild(segment string, kind nodeKind) *dirNode {
	c := newDirNode(kind)
	n.children[segment] = c
	n.order = append(n.order, segment)
	return c
}

// Normalize collapses runs of dots and trims leading and trailing dots:
// "..a..b." becomes "a.b".
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))
	lastDot := true
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			if !lastDot {
				b.WriteByte('.')
				lastDot = true
			}
			continue
		}
		b.WriteByte(name[i])
		lastDot = false
	}
	return strings.TrimSuffix(b.String(), ".")
}

// Directory is a dotted-path namespace of service leaves and interior
// groups. Removal tombstones subtrees instead of splicing them out;
// tombstoned nodes report NodeNone and are skipped by walks until Prune
// physically drops them. Directory is not safe for concurrent use; the
// Broker serializes access.
type Directory struct {
	root *dirNode
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{root: newDirNode(kindGroup)}
}

// Add registers a service leaf under the normalized name, creating missing
// groups along the way. It fails with ErrNameInvalid when the normalized
// name is empty, and with ErrNameConflict when the name already exists as
// a group or as a live service.
func (d *Directory) Add(rawName string) error {
	name := Normalize(rawName)
	if name == "" {
		return errors.WrapInvalid(errors.ErrNameInvalid, "Directory", "Add", "validating name")
	}

	switch d.nodeType(name) {
	case NodeGroup, NodeService:
		return errors.WrapInvalid(errors.ErrNameConflict, "Directory", "Add", "adding "+name)
	}

	segments := strings.Split(name, ".")
	node := d.root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node.child(segment)
		switch {
		case !ok:
			child = node.addChild(segment, kindGroup)
		case child.kind == kindTombstone:
			// Adding through a removed subtree resurrects it as a group.
			child.kind = kindGroup
		case child.kind == kindService:
			// Groups and leaves share one namespace.
			return errors.WrapInvalid(errors.ErrNameConflict, "Directory", "Add", "adding "+name)
		}
		node = child
	}

	leafSegment := segments[len(segments)-1]
	if leaf, ok := node.child(leafSegment); ok {
		// Known tombstone; conflicts were ruled out above.
		leaf.kind = kindService
		leaf.children = make(map[string]*dirNode)
		leaf.order = nil
		return nil
	}
	node.addChild(leafSegment, kindService)
	return nil
}

// Remove tombstones the subtree rooted at the normalized name, dropping
// its children. Removing the empty name clears the whole directory.
// Removing a name with no node is a no-op.
func (d *Directory) Remove(rawName string) {
	name := Normalize(rawName)
	if name == "" {
		d.Clear()
		return
	}

	node, ok := d.find(name)
	if !ok {
		return
	}
	node.kind = kindTombstone
	node.children = make(map[string]*dirNode)
	node.order = nil
}

// Prune physically drops tombstoned subtrees.
func (d *Directory) Prune() {
	prune(d.root)
}

func prune(n *dirNode) {
	kept := n.order[:0]
	for _, segment := range n.order {
		child := n.children[segment]
		if child.kind == kindTombstone {
			delete(n.children, segment)
			continue
		}
		prune(child)
		kept = append(kept, segment)
	}
	n.order = kept
}

// List returns the fully-qualified names of all live service leaves under
// the normalized name, in pre-order with insertion order inside each
// group. An unknown name yields an empty list; the empty name lists the
// whole directory.
func (d *Directory) List(rawName string) []string {
	name := Normalize(rawName)

	node := d.root
	if name != "" {
		var ok bool
		node, ok = d.find(name)
		if !ok || node.kind == kindTombstone {
			return nil
		}
		if node.kind == kindService {
			return []string{name}
		}
	}

	var result []string
	walk(node, name, &result)
	return result
}

func walk(n *dirNode, prefix string, result *[]string) {
	for _, segment := range n.order {
		child := n.children[segment]
		full := segment
		if prefix != "" {
			full = prefix + "." + segment
		}
		switch child.kind {
		case kindService:
			*result = append(*result, full)
		case kindGroup:
			walk(child, full, result)
		}
	}
}

// NodeType reports whether the normalized name addresses a group, a
// service, or nothing. Tombstones report NodeNone.
func (d *Directory) NodeType(rawName string) NodeType {
	return d.nodeType(Normalize(rawName))
}

func (d *Directory) nodeType(name string) NodeType {
	if name == "" {
		return NodeNone
	}
	node, ok := d.find(name)
	if !ok {
		return NodeNone
	}
	switch node.kind {
	case kindService:
		return NodeService
	case kindGroup:
		return NodeGroup
	default:
		return NodeNone
	}
}

// Clear removes every node from the directory.
func (d *Directory) Clear() {
	d.root = newDirNode(kindGroup)
}

func (d *Directory) find(name string) (*dirNode, bool) {
	node := d.root
	for _, segment := range strings.Split(name, ".") {
		child, ok := node.child(segment)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}
