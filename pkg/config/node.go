package config

import (
	"slices"
	"strconv"
	"strings"
)

// Node is one organizational unit. Sheet, layout and start column declared on
// a node are inherited by the slots below it.
type Node struct {
	Name         string    `json:"name"`
	SheetName    string    `json:"sheetName,omitempty"`
	Shortcuts    []string  `json:"shortcuts,omitempty"`
	Layout       string    `json:"layout,omitempty"`
	UseSlotsFrom string    `json:"useSlotsFrom,omitempty"`
	Location     *Location `json:"location,omitempty"`
	Slots        []*Slot   `json:"slots,omitempty"`
	Children     []*Node   `json:"children,omitempty"`
}

// StartCol returns the column this node lends to its slots, if it defines one.
func (n *Node) StartCol() (int, bool) {
	if n == nil || n.Location == nil || n.Location.StartCol == nil {
		return 0, false
	}
	return *n.Location.StartCol, true
}

// SetStartCol sets the node's inherited column.
func (n *Node) SetStartCol(col int) {
	if n.Location == nil {
		n.Location = &Location{}
	}
	n.Location.StartCol = IntPtr(col)
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Shortcuts = slices.Clone(n.Shortcuts)
	c.Location = n.Location.Clone()
	c.Slots = cloneSlots(n.Slots)
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// =============================================================================
// Handles
// =============================================================================

// NodeID addresses a node by the child indices leading to it, joined by dots.
// "0" is the first root, "0.2" its third child.
type NodeID string

// RootID returns the handle of the i-th root node.
func RootID(i int) NodeID { return NodeID(strconv.Itoa(i)) }

// Child returns the handle of the i-th child of id.
func (id NodeID) Child(i int) NodeID {
	return NodeID(string(id) + "." + strconv.Itoa(i))
}

// Indices parses the handle into child indices.
func (id NodeID) Indices() ([]int, bool) {
	if id == "" {
		return nil, false
	}
	parts := strings.Split(string(id), ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Parent returns the parent handle and the node's index within it. For a root
// node the parent is empty.
func (id NodeID) Parent() (NodeID, int, bool) {
	idx, ok := id.Indices()
	if !ok {
		return "", 0, false
	}
	last := idx[len(idx)-1]
	s := string(id)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return NodeID(s[:i]), last, true
	}
	return "", last, true
}

// Origin tells whether a slot belongs to a node or to a shared template.
type Origin string

// Slot origins.
const (
	OriginNode     Origin = "node"
	OriginTemplate Origin = "template"
)

// SlotRef addresses a slot as seen from a node: either the node's own slot
// at Index, or the Index-th slot of the template the node references.
type SlotRef struct {
	Node     NodeID `json:"node"`
	Origin   Origin `json:"origin"`
	Template string `json:"template,omitempty"`
	Index    int    `json:"index"`
}

// Node resolves a handle against the live hierarchy.
func (d *Document) Node(id NodeID) (*Node, bool) {
	idx, ok := id.Indices()
	if !ok {
		return nil, false
	}
	nodes := d.Hierarchy
	var n *Node
	for _, i := range idx {
		if i >= len(nodes) || nodes[i] == nil {
			return nil, false
		}
		n = nodes[i]
		nodes = n.Children
	}
	return n, true
}

// Slot resolves a slot handle. A template handle only resolves while the node
// still references that template.
func (d *Document) Slot(ref SlotRef) (*Slot, bool) {
	n, ok := d.Node(ref.Node)
	if !ok || ref.Index < 0 {
		return nil, false
	}
	var slots []*Slot
	switch ref.Origin {
	case OriginNode:
		slots = n.Slots
	case OriginTemplate:
		if n.UseSlotsFrom != ref.Template {
			return nil, false
		}
		slots = d.SlotTemplates[ref.Template]
	default:
		return nil, false
	}
	if ref.Index >= len(slots) || slots[ref.Index] == nil {
		return nil, false
	}
	return slots[ref.Index], true
}

// =============================================================================
// Traversal
// =============================================================================

// WalkFunc is called for every node. path holds the node's ancestors followed
// by the node itself; callers may keep it.
type WalkFunc func(id NodeID, path []*Node)

// Walk visits nodes depth-first in pre-order, children in array order. Nil
// entries are skipped.
func Walk(roots []*Node, fn WalkFunc) {
	for i, n := range roots {
		walk(n, RootID(i), nil, fn)
	}
}

func walk(n *Node, id NodeID, parents []*Node, fn WalkFunc) {
	if n == nil {
		return
	}
	path := append(slices.Clip(parents), n)
	fn(id, path)
	for i, ch := range n.Children {
		walk(ch, id.Child(i), path, fn)
	}
}

// FindByName returns the first node, in pre-order, with the given name.
func (d *Document) FindByName(name string) (NodeID, *Node, bool) {
	var (
		foundID NodeID
		found   *Node
	)
	Walk(d.Hierarchy, func(id NodeID, path []*Node) {
		if found == nil && path[len(path)-1].Name == name {
			foundID, found = id, path[len(path)-1]
		}
	})
	return foundID, found, found != nil
}

// Lookup finds the node named by ref, which is either a handle such as "0.1"
// or a node name. Handles win when a name happens to look like one.
func (d *Document) Lookup(ref string) (NodeID, *Node, bool) {
	if n, ok := d.Node(NodeID(ref)); ok {
		return NodeID(ref), n, true
	}
	return d.FindByName(ref)
}

// PathNames returns the names of the nodes along id, root first.
func (d *Document) PathNames(id NodeID) []string {
	idx, ok := id.Indices()
	if !ok {
		return nil
	}
	var names []string
	nodes := d.Hierarchy
	for _, i := range idx {
		if i >= len(nodes) || nodes[i] == nil {
			return nil
		}
		names = append(names, nodes[i].Name)
		nodes = nodes[i].Children
	}
	return names
}

// =============================================================================
// Tree maintenance
// =============================================================================

// AddRoot appends a new root node and returns its handle.
func (d *Document) AddRoot(name string) NodeID {
	d.Hierarchy = append(d.Hierarchy, &Node{Name: name})
	return RootID(len(d.Hierarchy) - 1)
}

// AddChild appends a new child under parent.
func (d *Document) AddChild(parent NodeID, name string) (NodeID, bool) {
	p, ok := d.Node(parent)
	if !ok {
		return "", false
	}
	p.Children = append(p.Children, &Node{Name: name})
	return parent.Child(len(p.Children) - 1), true
}

// RemoveNode deletes a node and its subtree. Handles of later siblings shift.
func (d *Document) RemoveNode(id NodeID) bool {
	if _, ok := d.Node(id); !ok {
		return false
	}
	parent, i, _ := id.Parent()
	if parent == "" {
		d.Hierarchy = slices.Delete(d.Hierarchy, i, i+1)
		return true
	}
	p, _ := d.Node(parent)
	p.Children = slices.Delete(p.Children, i, i+1)
	return true
}
