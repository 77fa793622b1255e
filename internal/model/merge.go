package model

// OthersName labels the synthetic entry that collects small children.
const OthersName = "Others"

// MergedItem is one row of a threshold-merged view of a directory.
type MergedItem struct {
	Name        string
	Size        int64
	Percentage  float64
	Type        NodeType
	Merged      bool
	MergedCount int
	Node        *Node // nil for the Others entry
}

// MergeSmall folds every child of parent whose share of parent.Size is below
// threshold (a fraction, 0.01 = 1%) into a single Others item appended last.
// Children at or above the threshold pass through in their current order.
func MergeSmall(parent *Node, threshold float64) []MergedItem {
	if parent == nil || threshold <= 0 || parent.Size == 0 || len(parent.Children) == 0 {
		return nil
	}

	total := float64(parent.Size)
	var items []MergedItem
	var othersSize int64
	var othersCount int

	for _, c := range parent.Children {
		frac := float64(c.Size) / total
		if frac >= threshold {
			items = append(items, MergedItem{
				Name:       c.Name,
				Size:       c.Size,
				Percentage: frac * 100,
				Type:       c.Type,
				Node:       c,
			})
			continue
		}
		othersSize = saturatingAddInt64(othersSize, c.Size)
		othersCount++
	}

	if othersCount > 0 {
		items = append(items, MergedItem{
			Name:        OthersName,
			Size:        othersSize,
			Percentage:  float64(othersSize) / total * 100,
			Type:        TypeFile,
			Merged:      true,
			MergedCount: othersCount,
		})
	}
	return items
}
