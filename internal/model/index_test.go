package model

import "testing"

func TestPathIndex_Search(t *testing.T) {
	idx := NewPathIndex(sampleTree())

	got := idx.Search("c.txt")
	if len(got) != 1 || got[0] != "/test/sub/c.txt" {
		t.Fatalf("Search(c.txt) = %v", got)
	}

	if got := idx.Search(".TXT"); len(got) != 3 {
		t.Fatalf("case-insensitive Search(.TXT) = %v, want 3 hits", got)
	}

	if got := idx.Search("sub"); len(got) != 2 {
		t.Fatalf("Search(sub) = %v, want dir and its file", got)
	}

	if got := idx.Search("nonexistent"); len(got) != 0 {
		t.Fatalf("Search(nonexistent) = %v", got)
	}
}

func TestSizeIndex_TopN(t *testing.T) {
	idx := NewSizeIndex(sampleTree())

	if idx.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", idx.Len())
	}

	top := idx.TopN(2)
	if len(top) != 2 {
		t.Fatalf("TopN(2) returned %d entries", len(top))
	}
	if top[0].Path != "/test" || top[0].Size != 3507 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].Path != "/test/b.txt" || top[1].Size != 2000 {
		t.Errorf("top[1] = %+v", top[1])
	}

	if got := idx.TopN(0); len(got) != 0 {
		t.Errorf("TopN(0) = %v", got)
	}
	if got := idx.TopN(100); len(got) != idx.Len() {
		t.Errorf("TopN(100) returned %d, want %d", len(got), idx.Len())
	}
}
