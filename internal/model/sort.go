package model

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortField defines what to sort by.
type SortField int

const (
	SortBySize SortField = iota
	SortByName
	SortByCount
	SortByMtime
)

// SortOrder defines ascending or descending.
type SortOrder int

const (
	SortDesc SortOrder = iota
	SortAsc
)

// SortConfig holds sort preferences.
type SortConfig struct {
	Field SortField
	Order SortOrder
	// DirsFirst keeps directories before other entries regardless of sort.
	DirsFirst bool
}

// DefaultSort returns the default sort config (size descending).
func DefaultSort() SortConfig {
	return SortConfig{
		Field: SortBySize,
		Order: SortDesc,
	}
}

// ParseSortField maps a user-facing name to a SortField.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(s) {
	case "size":
		return SortBySize, true
	case "name":
		return SortByName, true
	case "count":
		return SortByCount, true
	case "mtime", "modified":
		return SortByMtime, true
	}
	return SortBySize, false
}

// SortChildren sorts a slice of nodes in place according to cfg.
func SortChildren(children []*Node, cfg SortConfig) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]

		if cfg.DirsFirst {
			aDir, bDir := a.IsDir(), b.IsDir()
			if aDir != bDir {
				return aDir
			}
		}

		// Swapping for descending keeps a strict weak ordering (equal items
		// still compare false).
		if cfg.Order == SortDesc {
			a, b = b, a
		}

		switch cfg.Field {
		case SortByName:
			return natural.Less(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortByCount:
			return a.FileCount+a.DirCount < b.FileCount+b.DirCount
		case SortByMtime:
			return a.Modified.Before(b.Modified)
		default:
			return a.Size < b.Size
		}
	})
}

// SortTree reorders the children of every directory under root. Only order
// changes; sizes and counts are left as built.
func SortTree(root *Node, cfg SortConfig) {
	root.Walk(func(n *Node) bool {
		if len(n.Children) > 1 {
			SortChildren(n.Children, cfg)
		}
		return true
	})
}
