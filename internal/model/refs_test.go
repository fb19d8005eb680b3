package model

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Save Changes", "save-changes"},
		{"  --Wi-Fi!! ", "wi-fi"},
		{strings.Repeat("a", 50), strings.Repeat("a", 40)},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNodeRef_UsesScrollableLandmarks(t *testing.T) {
	root := &Node{
		ID: "root", Type: "DecorView", Kind: KindOverlayRoot,
		Children: []*Node{
			{
				ID: "list", Type: "ListView", ResourceID: "settings_list", Kind: KindScrollable,
				Children: []*Node{
					{ID: "wifi", Type: "TextView", Text: "Wi-Fi"},
				},
			},
		},
	}
	Link(root)
	wifi := root.Children[0].Children[0]
	if got := NodeRef(wifi); got != "settings-list/wi-fi" {
		t.Errorf("unexpected ref %q", got)
	}
}

func TestNodeRef_FallsBackToType(t *testing.T) {
	n := &Node{ID: "x", Type: "ImageView"}
	if got := NodeRef(n); got != "imageview" {
		t.Errorf("expected 'imageview', got %q", got)
	}
}

func TestDeduplicateRefs(t *testing.T) {
	nodes := []FlatNode{{Ref: "ok"}, {Ref: "cancel"}, {Ref: "ok"}}
	DeduplicateRefs(nodes)
	if nodes[0].Ref != "ok.1" || nodes[2].Ref != "ok.2" {
		t.Errorf("unexpected refs %q %q", nodes[0].Ref, nodes[2].Ref)
	}
	if nodes[1].Ref != "cancel" {
		t.Errorf("expected unique ref untouched, got %q", nodes[1].Ref)
	}
}

func TestFindByRef(t *testing.T) {
	root := sampleTree()
	nodes := Descendants(root)

	n, err := FindByRef(nodes, "one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID != "row1" {
		t.Errorf("expected row1, got %q", n.ID)
	}

	if _, err := FindByRef(nodes, "missing"); err == nil {
		t.Error("expected error for missing ref")
	}
}

func TestFindByRef_Ambiguous(t *testing.T) {
	root := &Node{
		ID: "root", Type: "DecorView", Kind: KindOverlayRoot,
		Children: []*Node{
			{ID: "l1", Type: "ListView", ResourceID: "a", Kind: KindScrollable, Children: []*Node{{ID: "x1", Type: "TextView", Text: "Item"}}},
			{ID: "l2", Type: "ListView", ResourceID: "b", Kind: KindScrollable, Children: []*Node{{ID: "x2", Type: "TextView", Text: "Item"}}},
		},
	}
	Link(root)
	_, err := FindByRef(Descendants(root), "item")
	if err == nil || !strings.Contains(err.Error(), "multiple nodes") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
}
