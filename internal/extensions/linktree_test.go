package extensions

import "testing"

func TestLinkTree(t *testing.T) {
	tree := NewLinkTree()

	tree.Add("server2.example.net", "hub.example.net", 1, "Server 2")
	tree.Add("hub.example.net", "hub.example.net", 0, "Example Hub")
	tree.Add("leaf1.example.net", "server1.example.net", 2, "Leaf 1")
	tree.Add("server1.example.net", "hub.example.net", 1, "Server 1")
	tree.Add("leaf2.example.net", "server2.example.net", 2, "")

	want := []string{
		"hub.example.net (0) Example Hub",
		"|_ server1.example.net (1) Server 1",
		"|  |_ leaf1.example.net (2) Leaf 1",
		"|_ server2.example.net (1) Server 2",
		"   |_ leaf2.example.net (2)",
	}
	got := tree.Lines()
	if len(got) != len(want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	if tree.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tree.Len())
	}
}

func TestLinkTreeNoRoot(t *testing.T) {
	tree := NewLinkTree()
	if lines := tree.Lines(); lines != nil {
		t.Errorf("empty tree rendered %q", lines)
	}
	tree.Add("a.example.net", "b.example.net", 1, "A")
	if lines := tree.Lines(); lines != nil {
		t.Errorf("rootless tree rendered %q", lines)
	}
}

func TestLinkTreeCycle(t *testing.T) {
	tree := NewLinkTree()
	tree.Add("hub", "hub", 0, "")
	tree.Add("a", "b", 1, "")
	tree.Add("b", "a", 1, "")

	if lines := tree.Lines(); len(lines) != 1 {
		t.Errorf("Lines() = %q, want only the root", lines)
	}
}
