package model

import "testing"

func TestFilterByType(t *testing.T) {
	nodes := []*Node{
		{ID: "a", Type: "Button"},
		{ID: "b", Type: "CheckBox", Supertypes: []string{"Button"}},
		{ID: "c", Type: "TextView"},
	}
	got := FilterByType(nodes, []string{"Button"})
	if len(got) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(got))
	}
	if len(FilterByType(nodes, nil)) != 3 {
		t.Error("expected empty type list to keep all nodes")
	}
}

func TestFilterShown(t *testing.T) {
	nodes := []*Node{{ID: "a", Shown: true}, {ID: "b"}}
	got := FilterShown(nodes)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected only 'a', got %v", got)
	}
}

func TestFilterByText_CaseInsensitive(t *testing.T) {
	nodes := []*Node{
		{ID: "a", Text: "Save changes"},
		{ID: "b", Hint: "search here"},
		{ID: "c", Error: "Invalid"},
		{ID: "d", Text: "Cancel"},
	}
	if got := FilterByText(nodes, "SAVE"); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected 'a' for SAVE, got %v", got)
	}
	if got := FilterByText(nodes, "search"); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected hint match, got %v", got)
	}
	if got := FilterByText(nodes, "invalid"); len(got) != 1 || got[0].ID != "c" {
		t.Errorf("expected error match, got %v", got)
	}
	if got := FilterByText(nodes, ""); len(got) != 4 {
		t.Errorf("expected empty text to keep all, got %d", len(got))
	}
}

func TestFilterByBounds(t *testing.T) {
	nodes := []*Node{
		{ID: "in", Bounds: [4]int{10, 10, 20, 20}},
		{ID: "out", Bounds: [4]int{500, 500, 20, 20}},
	}
	got := FilterByBounds(nodes, [4]int{0, 0, 100, 100})
	if len(got) != 1 || got[0].ID != "in" {
		t.Errorf("expected only 'in', got %v", got)
	}
}

func TestPruneEmptyLayouts(t *testing.T) {
	nodes := []FlatNode{
		{ID: "1", Type: "LinearLayout"},
		{ID: "2", Type: "FrameLayout", Label: "Header"},
		{ID: "3", Type: "Button", Text: "OK"},
	}
	got := PruneEmptyLayouts(nodes)
	if len(got) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "3" {
		t.Errorf("unexpected result %v", got)
	}
}
