package model

import (
	"math"
	"testing"
	"time"
)

func mergeFixture() *Node {
	a := NewFile("/m/a.txt", "a.txt", 1000, time.Time{}, 0)
	b := NewFile("/m/b.txt", "b.txt", 2000, time.Time{}, 0)
	c := NewFile("/m/sub/c.txt", "c.txt", 500, time.Time{}, 0)
	sub := NewDirectory("/m/sub", "sub", []*Node{c})
	return NewDirectory("/m", "m", []*Node{a, b, sub})
}

func TestMergeSmall(t *testing.T) {
	root := mergeFixture() // a=1000 b=2000 sub=500, total 3500

	items := MergeSmall(root, 0.5)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}

	if items[0].Name != "b.txt" || items[0].Merged {
		t.Errorf("first item = %+v, want unmerged b.txt", items[0])
	}
	if math.Abs(items[0].Percentage-57.142857) > 0.01 {
		t.Errorf("b.txt percentage = %f", items[0].Percentage)
	}
	if items[0].Node == nil || items[0].Node.Name != "b.txt" {
		t.Error("expected pass-through item to reference its node")
	}

	others := items[1]
	if !others.Merged || others.Name != OthersName {
		t.Fatalf("second item = %+v, want Others", others)
	}
	if others.MergedCount != 2 || others.Size != 1500 {
		t.Errorf("Others = count %d size %d, want 2 and 1500", others.MergedCount, others.Size)
	}
	if others.Node != nil {
		t.Error("Others must not reference a node")
	}
}

func TestMergeSmall_AtThresholdPassesThrough(t *testing.T) {
	a := NewFile("/x/a", "a", 50, time.Time{}, 0)
	b := NewFile("/x/b", "b", 50, time.Time{}, 0)
	root := NewDirectory("/x", "x", []*Node{a, b})

	items := MergeSmall(root, 0.5)
	if len(items) != 2 {
		t.Fatalf("expected both children unmerged, got %+v", items)
	}
	for _, it := range items {
		if it.Merged {
			t.Fatalf("item at threshold was merged: %+v", it)
		}
	}
}

func TestMergeSmall_EmptyResults(t *testing.T) {
	if got := MergeSmall(mergeFixture(), 0); got != nil {
		t.Errorf("threshold 0: got %+v", got)
	}
	if got := MergeSmall(NewDirectory("/e", "e", nil), 0.01); got != nil {
		t.Errorf("childless parent: got %+v", got)
	}
	zero := NewDirectory("/z", "z", []*Node{NewFile("/z/f", "f", 0, time.Time{}, 0)})
	if got := MergeSmall(zero, 0.01); got != nil {
		t.Errorf("zero-size parent: got %+v", got)
	}
	if got := MergeSmall(nil, 0.01); got != nil {
		t.Errorf("nil parent: got %+v", got)
	}
}

func TestMergeSmall_AllSmall(t *testing.T) {
	items := MergeSmall(mergeFixture(), 0.99)
	if len(items) != 1 || !items[0].Merged {
		t.Fatalf("expected single Others entry, got %+v", items)
	}
	if items[0].Size != 3500 || items[0].MergedCount != 3 {
		t.Errorf("Others = %+v", items[0])
	}
	if math.Abs(items[0].Percentage-100) > 1e-9 {
		t.Errorf("Others percentage = %f, want 100", items[0].Percentage)
	}
}
