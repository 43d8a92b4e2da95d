package config

import (
	"slices"
	"testing"
)

func sampleTree() *Document {
	return &Document{
		SlotTemplates: map[string][]*Slot{
			"T": {{Location: &Location{Row: IntPtr(1)}}},
		},
		Hierarchy: []*Node{
			{
				Name: "root",
				Children: []*Node{
					{Name: "a", Children: []*Node{{Name: "a1"}}},
					{Name: "b", UseSlotsFrom: "T", Slots: []*Slot{{Title: "own"}}},
				},
			},
			{Name: "second"},
		},
	}
}

func TestNodeIDIndices(t *testing.T) {
	tests := []struct {
		id   NodeID
		want []int
		ok   bool
	}{
		{"0", []int{0}, true},
		{"0.2.1", []int{0, 2, 1}, true},
		{"", nil, false},
		{"0..1", nil, false},
		{"a.b", nil, false},
		{"-1", nil, false},
	}
	for _, tt := range tests {
		got, ok := tt.id.Indices()
		if ok != tt.ok || !slices.Equal(got, tt.want) {
			t.Errorf("%q.Indices() = %v, %v; want %v, %v", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNodeIDParent(t *testing.T) {
	p, i, ok := NodeID("0.2.1").Parent()
	if !ok || p != "0.2" || i != 1 {
		t.Errorf("Parent() = %q, %d, %v", p, i, ok)
	}
	p, i, ok = NodeID("3").Parent()
	if !ok || p != "" || i != 3 {
		t.Errorf("root Parent() = %q, %d, %v", p, i, ok)
	}
}

func TestWalkPreOrder(t *testing.T) {
	d := sampleTree()
	var names []string
	var ids []NodeID
	Walk(d.Hierarchy, func(id NodeID, path []*Node) {
		names = append(names, path[len(path)-1].Name)
		ids = append(ids, id)
	})

	wantNames := []string{"root", "a", "a1", "b", "second"}
	wantIDs := []NodeID{"0", "0.0", "0.0.0", "0.1", "1"}
	if !slices.Equal(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
	if !slices.Equal(ids, wantIDs) {
		t.Errorf("ids = %v, want %v", ids, wantIDs)
	}
}

func TestWalkPathIsStable(t *testing.T) {
	d := sampleTree()
	var paths [][]*Node
	Walk(d.Hierarchy, func(_ NodeID, path []*Node) {
		paths = append(paths, path)
	})
	// a1's path must still read root > a > a1 after b was visited.
	if got := paths[2]; len(got) != 3 || got[1].Name != "a" || got[2].Name != "a1" {
		t.Errorf("retained path corrupted: %v", got)
	}
}

func TestWalkSkipsNil(t *testing.T) {
	count := 0
	Walk([]*Node{nil, {Name: "x", Children: []*Node{nil}}}, func(NodeID, []*Node) { count++ })
	if count != 1 {
		t.Errorf("visited %d nodes, want 1", count)
	}
}

func TestDocumentNodeAndSlot(t *testing.T) {
	d := sampleTree()

	n, ok := d.Node("0.1")
	if !ok || n.Name != "b" {
		t.Fatalf("Node(0.1) = %v, %v", n, ok)
	}
	if _, ok := d.Node("0.5"); ok {
		t.Error("Node(0.5) should not resolve")
	}

	own, ok := d.Slot(SlotRef{Node: "0.1", Origin: OriginNode, Index: 0})
	if !ok || own.Title != "own" {
		t.Errorf("node slot = %v, %v", own, ok)
	}
	tpl, ok := d.Slot(SlotRef{Node: "0.1", Origin: OriginTemplate, Template: "T", Index: 0})
	if !ok || tpl != d.SlotTemplates["T"][0] {
		t.Errorf("template slot = %v, %v", tpl, ok)
	}

	// Once the node stops referencing the template the handle goes stale.
	n.UseSlotsFrom = ""
	if _, ok := d.Slot(SlotRef{Node: "0.1", Origin: OriginTemplate, Template: "T", Index: 0}); ok {
		t.Error("stale template handle should not resolve")
	}
	if _, ok := d.Slot(SlotRef{Node: "0.1", Origin: OriginNode, Index: 3}); ok {
		t.Error("out of range node slot should not resolve")
	}
}

func TestTreeMaintenance(t *testing.T) {
	d := sampleTree()

	id := d.AddRoot("third")
	if id != "2" {
		t.Errorf("AddRoot id = %q, want 2", id)
	}
	child, ok := d.AddChild("0.0", "a2")
	if !ok || child != "0.0.1" {
		t.Errorf("AddChild = %q, %v", child, ok)
	}
	if _, ok := d.AddChild("9", "x"); ok {
		t.Error("AddChild under missing parent should fail")
	}

	if !d.RemoveNode("0.0") {
		t.Fatal("RemoveNode(0.0) failed")
	}
	n, _ := d.Node("0.0")
	if n.Name != "b" {
		t.Errorf("after removal 0.0 = %q, want b", n.Name)
	}
	if !d.RemoveNode("1") || len(d.Hierarchy) != 2 || d.Hierarchy[1].Name != "third" {
		t.Errorf("root removal failed: %d roots", len(d.Hierarchy))
	}
	if d.RemoveNode("7") {
		t.Error("RemoveNode of missing node should fail")
	}
}

func TestFindByNameAndPath(t *testing.T) {
	d := sampleTree()
	id, n, ok := d.FindByName("a1")
	if !ok || id != "0.0.0" || n.Name != "a1" {
		t.Errorf("FindByName = %q, %v, %v", id, n, ok)
	}
	if _, _, ok := d.FindByName("nope"); ok {
		t.Error("FindByName(nope) should fail")
	}
	if got := d.PathNames("0.0.0"); !slices.Equal(got, []string{"root", "a", "a1"}) {
		t.Errorf("PathNames = %v", got)
	}
}

func TestNodeCloneIndependent(t *testing.T) {
	d := sampleTree()
	c := d.Hierarchy[0].Clone()
	c.Children[1].Slots[0].Title = "changed"
	c.SetStartCol(5)
	if d.Hierarchy[0].Children[1].Slots[0].Title != "own" {
		t.Error("clone shares slots with original")
	}
	if _, ok := d.Hierarchy[0].StartCol(); ok {
		t.Error("clone shares location with original")
	}
}

func TestDocumentLookup(t *testing.T) {
	doc := sampleTree()
	doc.Hierarchy[1].Children = []*Node{{Name: "0.0"}}
	tests := []struct {
		ref    string
		wantID NodeID
		name   string
		ok     bool
	}{
		{"0.1", "0.1", "b", true},
		{"a1", "0.0.0", "a1", true},
		{"0.0", "0.0", "a", true},
		{"1.0", "1.0", "0.0", true},
		{"9", "", "", false},
		{"nobody", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, n, ok := doc.Lookup(tt.ref)
			if ok != tt.ok || id != tt.wantID {
				t.Fatalf("Lookup(%q) = %q, %v, want %q, %v", tt.ref, id, ok, tt.wantID, tt.ok)
			}
			if ok && n.Name != tt.name {
				t.Errorf("Lookup(%q) node = %q, want %q", tt.ref, n.Name, tt.name)
			}
		})
	}
}
