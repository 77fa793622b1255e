package model

import (
	"sort"
	"strings"
)

// PathIndex supports substring search over every path in a tree.
type PathIndex struct {
	paths []string
}

// NewPathIndex collects the paths of root and all its descendants.
func NewPathIndex(root *Node) *PathIndex {
	idx := &PathIndex{}
	root.Walk(func(n *Node) bool {
		idx.paths = append(idx.paths, n.Path)
		return true
	})
	sort.Strings(idx.paths)
	return idx
}

// Search returns the sorted paths containing pattern, case-insensitively.
func (idx *PathIndex) Search(pattern string) []string {
	needle := strings.ToLower(pattern)
	var out []string
	for _, p := range idx.paths {
		if strings.Contains(strings.ToLower(p), needle) {
			out = append(out, p)
		}
	}
	return out
}

// SizeEntry pairs a path with its size.
type SizeEntry struct {
	Path string
	Size int64
	Type NodeType
}

// SizeIndex lists every node in a tree by descending size.
type SizeIndex struct {
	entries []SizeEntry
}

// NewSizeIndex collects root and all its descendants.
func NewSizeIndex(root *Node) *SizeIndex {
	idx := &SizeIndex{}
	root.Walk(func(n *Node) bool {
		idx.entries = append(idx.entries, SizeEntry{Path: n.Path, Size: n.Size, Type: n.Type})
		return true
	})
	sort.SliceStable(idx.entries, func(i, j int) bool {
		return idx.entries[i].Size > idx.entries[j].Size
	})
	return idx
}

// TopN returns up to n of the largest entries.
func (idx *SizeIndex) TopN(n int) []SizeEntry {
	if n <= 0 {
		return nil
	}
	return idx.entries[:min(n, len(idx.entries))]
}

// Len reports how many entries the index holds.
func (idx *SizeIndex) Len() int { return len(idx.entries) }
