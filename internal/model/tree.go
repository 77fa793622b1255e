package model

import (
	"fmt"
	"time"

	"github.com/sadopc/disklens/internal/util"
)

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)

// NodeType tags what kind of filesystem entry a Node describes.
type NodeType uint8

const (
	TypeFile NodeType = iota
	TypeDirectory
	TypeSymlink
	TypeOther
)

var nodeTypeNames = [...]string{
	TypeFile:      "file",
	TypeDirectory: "directory",
	TypeSymlink:   "symlink",
	TypeOther:     "other",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", uint8(t))
}

func (t NodeType) MarshalText() ([]byte, error) {
	if int(t) >= len(nodeTypeNames) {
		return nil, fmt.Errorf("unknown node type %d", uint8(t))
	}
	return []byte(nodeTypeNames[t]), nil
}

func (t *NodeType) UnmarshalText(text []byte) error {
	for i, name := range nodeTypeNames {
		if name == string(text) {
			*t = NodeType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node type %q", text)
}

// Node is one filesystem entry. Directory nodes carry their children and
// aggregate size and counts over them; the aggregates are computed once by
// NewDirectory and never recalculated.
type Node struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	SizeOnDisk int64     `json:"size_on_disk"` // mirrors Size until block-aware accounting exists
	Type       NodeType  `json:"type"`
	Children   []*Node   `json:"children,omitempty"`
	FileCount  int64     `json:"file_count"`
	DirCount   int64     `json:"dir_count"`
	Modified   time.Time `json:"modified"`        // zero when unknown
	Inode      uint64    `json:"inode,omitempty"` // zero when the platform exposes none
}

// NewFile builds a leaf for a regular file.
func NewFile(path, name string, size int64, modified time.Time, inode uint64) *Node {
	return &Node{
		Path:       path,
		Name:       name,
		Size:       size,
		SizeOnDisk: size,
		Type:       TypeFile,
		FileCount:  1,
		Modified:   modified,
		Inode:      inode,
	}
}

// NewSymlink builds a leaf for a symbolic link that is not followed. Size is
// the size of the link itself.
func NewSymlink(path, name string, size int64, modified time.Time, inode uint64) *Node {
	return &Node{
		Path:       path,
		Name:       name,
		Size:       size,
		SizeOnDisk: size,
		Type:       TypeSymlink,
		Modified:   modified,
		Inode:      inode,
	}
}

// NewOther builds a leaf for devices, sockets, pipes and anything else.
func NewOther(path, name string, modified time.Time, inode uint64) *Node {
	return &Node{
		Path:     path,
		Name:     name,
		Type:     TypeOther,
		Modified: modified,
		Inode:    inode,
	}
}

// NewDirectory builds a directory node and rolls its children's aggregates
// up into it. The directory counts itself in DirCount.
func NewDirectory(path, name string, children []*Node) *Node {
	d := &Node{
		Path:     path,
		Name:     name,
		Type:     TypeDirectory,
		DirCount: 1,
	}
	if len(children) > 0 {
		d.Children = children
	}
	for _, c := range d.Children {
		d.Size = saturatingAddInt64(d.Size, c.Size)
		d.SizeOnDisk = saturatingAddInt64(d.SizeOnDisk, c.SizeOnDisk)
		d.FileCount = saturatingAddInt64(d.FileCount, c.FileCount)
		d.DirCount = saturatingAddInt64(d.DirCount, c.DirCount)
	}
	return d
}

func (n *Node) IsDir() bool { return n.Type == TypeDirectory }

// Percentage returns n's share of total in percent, or 0 when total is 0.
func (n *Node) Percentage(total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n.Size) / float64(total) * 100
}

// HumanSize formats n.Size for display.
func (n *Node) HumanSize() string {
	return util.FormatSize(n.Size)
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func saturatingAddInt64(a, b int64) int64 {
	if b > 0 && a > maxInt64-b {
		return maxInt64
	}
	if b < 0 && a < minInt64-b {
		return minInt64
	}
	return a + b
}
