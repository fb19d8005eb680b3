package model

import (
	"testing"
	"time"
)

func TestDiffNodes(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	prev := []FlatNode{
		{ID: "a", Type: "Button", Text: "Save"},
		{ID: "b", Type: "TextView", Text: "Old"},
	}
	curr := []FlatNode{
		{ID: "a", Type: "Button", Text: "Saved"},
		{ID: "c", Type: "TextView", Text: "New"},
	}
	changes := DiffNodes(prev, curr, ts)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %v", len(changes), changes)
	}

	byType := map[ChangeType]UIChange{}
	for _, c := range changes {
		byType[c.Type] = c
		if c.TS != ts.Unix() {
			t.Errorf("expected ts %d, got %d", ts.Unix(), c.TS)
		}
	}
	if c := byType[ChangeChanged]; c.ID != "a" || c.Changes["text"] != [2]string{"Save", "Saved"} {
		t.Errorf("unexpected changed entry %+v", c)
	}
	if c := byType[ChangeAdded]; c.Node == nil || c.Node.ID != "c" {
		t.Errorf("unexpected added entry %+v", c)
	}
	if c := byType[ChangeRemoved]; c.ID != "b" || c.Text != "Old" {
		t.Errorf("unexpected removed entry %+v", c)
	}
}

func TestDiffNodes_NoChanges(t *testing.T) {
	nodes := []FlatNode{{ID: "a", Type: "Button", Bounds: [4]int{0, 0, 1, 1}}}
	if got := DiffNodes(nodes, nodes, time.Now()); len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}
}

func TestIgnoreFields(t *testing.T) {
	changes := []UIChange{
		{Type: ChangeChanged, ID: "a", Changes: map[string][2]string{"bounds": {"x", "y"}}},
		{Type: ChangeChanged, ID: "b", Changes: map[string][2]string{"bounds": {"x", "y"}, "text": {"1", "2"}}},
		{Type: ChangeAdded, Node: &FlatNode{ID: "c"}},
	}
	got := IgnoreFields(changes, "bounds")
	if len(got) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got))
	}
	if got[0].ID != "b" || len(got[0].Changes) != 1 {
		t.Errorf("unexpected first change %+v", got[0])
	}
}
