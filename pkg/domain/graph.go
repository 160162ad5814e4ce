package domain

import "fmt"

// NodeID identifies a node inside one document. Ids are never reused while the document lives.
type NodeID int

// Point is a location on the scene.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a pixel size, used for the export target.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Export limits: an RGBA image of MaxExportPixels takes 256 MiB.
const (
	MaxExportSide   = 16384
	MaxExportPixels = 64 << 20
)

// ValidateExport checks that s is a positive size within the export limits.
func (s Size) ValidateExport() error {
	if s.IsEmpty() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	if s.Width > MaxExportSide || s.Height > MaxExportSide || s.Width*s.Height > MaxExportPixels {
		return fmt.Errorf("%w: %dx%d is larger than %dx%d or %d pixels",
			ErrInvalidSize, s.Width, s.Height, MaxExportSide, MaxExportSide, MaxExportPixels)
	}
	return nil
}

// Node is a mind-map node.
type Node struct {
	ID        NodeID `json:"id"`
	Text      string `json:"text"`
	Location  Point  `json:"location"`
	Color     Color  `json:"color"`
	TextColor Color  `json:"text_color"`
}

// Edge connects two nodes. Its endpoints must exist in the same document.
type Edge struct {
	Source NodeID `json:"source"`
	Target NodeID `json:"target"`
	Text   string `json:"text,omitempty"`
}

// Connects reports whether the edge touches the given node.
func (e Edge) Connects(id NodeID) bool {
	return e.Source == id || e.Target == id
}

// DefaultNodeSize is the nominal footprint of a node on the scene.
var DefaultNodeSize = Size{Width: 200, Height: 75}

// MindMap is the serializable snapshot of a document graph.
type MindMap struct {
	Version         string `json:"version"`
	BackgroundColor Color  `json:"background_color"`
	EdgeColor       Color  `json:"edge_color"`
	Nodes           []Node `json:"nodes"`
	Edges           []Edge `json:"edges"`
}

// Node looks up a node of the snapshot by id.
func (m MindMap) Node(id NodeID) (Node, bool) {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
