package document

import (
	"fmt"
	"math"
	"sort"

	"github.com/aretw0/heimer/pkg/domain"
)

// MindMapVersion is written into every snapshot.
const MindMapVersion = "1.0"

// sceneMargin pads the bounding box of the nodes when sizing the scene.
const sceneMargin = 40

// Document is the in-memory mind map: the graph, the selection, the file it
// belongs to and whether it has unsaved edits.
// It is not safe for concurrent use; the mediator serializes access.
type Document struct {
	nodes      map[domain.NodeID]domain.Node
	edges      []domain.Edge
	nextID     domain.NodeID
	background domain.Color
	edgeColor  domain.Color

	filePath string
	modified bool

	selected     domain.NodeID
	hasSelection bool
}

// New creates an empty, unmodified document without a file.
func New() *Document {
	return &Document{
		nodes:      make(map[domain.NodeID]domain.Node),
		background: domain.White,
		edgeColor:  domain.DefaultEdgeColor,
	}
}

// NewNode builds a node with a fresh id. The node is not inserted.
func (d *Document) NewNode(text string, location domain.Point) domain.Node {
	id := d.nextID
	d.nextID++
	return domain.Node{
		ID:        id,
		Text:      text,
		Location:  location,
		Color:     domain.DefaultNodeColor,
		TextColor: domain.Black,
	}
}

// AddNode inserts a node. Re-inserting a removed node keeps its id.
func (d *Document) AddNode(n domain.Node) error {
	if _, ok := d.nodes[n.ID]; ok {
		return fmt.Errorf("%w: node %d already exists", domain.ErrInvalidReference, n.ID)
	}
	d.nodes[n.ID] = n
	if n.ID >= d.nextID {
		d.nextID = n.ID + 1
	}
	return nil
}

// RemoveNode deletes a node and every edge touching it.
// It returns what was removed so the deletion can be reverted.
func (d *Document) RemoveNode(id domain.NodeID) (domain.Node, []domain.Edge, error) {
	n, ok := d.nodes[id]
	if !ok {
		return domain.Node{}, nil, fmt.Errorf("%w: node %d", domain.ErrNotFound, id)
	}
	delete(d.nodes, id)

	var removed []domain.Edge
	kept := d.edges[:0]
	for _, e := range d.edges {
		if e.Connects(id) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	d.edges = kept

	if d.hasSelection && d.selected == id {
		d.ClearSelection()
	}
	return n, removed, nil
}

// Node looks up a node by id.
func (d *Document) Node(id domain.NodeID) (domain.Node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: node %d", domain.ErrNotFound, id)
	}
	return n, nil
}

// UpdateNode replaces the stored value of an existing node.
func (d *Document) UpdateNode(n domain.Node) error {
	if _, ok := d.nodes[n.ID]; !ok {
		return fmt.Errorf("%w: node %d", domain.ErrNotFound, n.ID)
	}
	d.nodes[n.ID] = n
	return nil
}

// AddEdge connects two existing, distinct, not yet connected nodes.
func (d *Document) AddEdge(e domain.Edge) error {
	if e.Source == e.Target {
		return fmt.Errorf("%w: node %d cannot connect to itself", domain.ErrInvalidReference, e.Source)
	}
	for _, id := range []domain.NodeID{e.Source, e.Target} {
		if _, ok := d.nodes[id]; !ok {
			return fmt.Errorf("%w: edge endpoint %d", domain.ErrInvalidReference, id)
		}
	}
	if d.connected(e.Source, e.Target) {
		return fmt.Errorf("%w: %d -> %d", domain.ErrDuplicateEdge, e.Source, e.Target)
	}
	d.edges = append(d.edges, e)
	return nil
}

// RemoveEdge disconnects source from target.
func (d *Document) RemoveEdge(source, target domain.NodeID) (domain.Edge, error) {
	for i, e := range d.edges {
		if e.Source == source && e.Target == target {
			d.edges = append(d.edges[:i], d.edges[i+1:]...)
			return e, nil
		}
	}
	return domain.Edge{}, fmt.Errorf("%w: edge %d -> %d", domain.ErrNotFound, source, target)
}

func (d *Document) connected(a, b domain.NodeID) bool {
	for _, e := range d.edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return true
		}
	}
	return false
}

// HasNodes reports whether the graph is not empty.
func (d *Document) HasNodes() bool {
	return len(d.nodes) > 0
}

// NodeCount returns the number of nodes.
func (d *Document) NodeCount() int {
	return len(d.nodes)
}

// Nodes returns the nodes ordered by id.
func (d *Document) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns the edges ordered by source then target.
func (d *Document) Edges() []domain.Edge {
	out := make([]domain.Edge, len(d.edges))
	copy(out, d.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// IsLeaf reports whether a node has no outgoing edge.
func (d *Document) IsLeaf(id domain.NodeID) (bool, error) {
	if _, ok := d.nodes[id]; !ok {
		return false, fmt.Errorf("%w: node %d", domain.ErrNotFound, id)
	}
	for _, e := range d.edges {
		if e.Source == id {
			return false, nil
		}
	}
	return true, nil
}

// Select makes a node the single selected node.
func (d *Document) Select(id domain.NodeID) error {
	if _, ok := d.nodes[id]; !ok {
		return fmt.Errorf("%w: node %d", domain.ErrNotFound, id)
	}
	d.selected = id
	d.hasSelection = true
	return nil
}

// Selected returns the selected node id, if any.
func (d *Document) Selected() (domain.NodeID, bool) {
	return d.selected, d.hasSelection
}

// ClearSelection drops the selection.
func (d *Document) ClearSelection() {
	d.selected = 0
	d.hasSelection = false
}

// BackgroundColor returns the scene background.
func (d *Document) BackgroundColor() domain.Color {
	return d.background
}

// SetBackgroundColor changes the scene background.
func (d *Document) SetBackgroundColor(c domain.Color) {
	d.background = c
}

// EdgeColor returns the color edges are drawn with.
func (d *Document) EdgeColor() domain.Color {
	return d.edgeColor
}

// FilePath returns the file the document was last opened from or saved to.
func (d *Document) FilePath() string {
	return d.filePath
}

// SetFilePath associates the document with a file.
func (d *Document) SetFilePath(path string) {
	d.filePath = path
}

// IsModified reports unsaved edits.
func (d *Document) IsModified() bool {
	return d.modified
}

// SetModified sets the unsaved-edits flag.
func (d *Document) SetModified(modified bool) {
	d.modified = modified
}

// Clear empties the graph and forgets the file. Id allocation restarts.
func (d *Document) Clear() {
	d.nodes = make(map[domain.NodeID]domain.Node)
	d.edges = nil
	d.nextID = 0
	d.background = domain.White
	d.edgeColor = domain.DefaultEdgeColor
	d.filePath = ""
	d.modified = false
	d.ClearSelection()
}

// Snapshot copies the graph into its serializable form.
func (d *Document) Snapshot() domain.MindMap {
	return domain.MindMap{
		Version:         MindMapVersion,
		BackgroundColor: d.background,
		EdgeColor:       d.edgeColor,
		Nodes:           d.Nodes(),
		Edges:           d.Edges(),
	}
}

// Restore replaces the graph with a snapshot. The snapshot is validated first
// and the document is left untouched when it is inconsistent.
// File path and modified flag are not changed.
func (d *Document) Restore(m domain.MindMap) error {
	restored := New()
	for _, n := range m.Nodes {
		if err := restored.AddNode(n); err != nil {
			return err
		}
	}
	for _, e := range m.Edges {
		if err := restored.AddEdge(e); err != nil {
			return err
		}
	}

	d.nodes = restored.nodes
	d.edges = restored.edges
	d.nextID = restored.nextID
	d.background = m.BackgroundColor
	d.edgeColor = m.EdgeColor
	if d.edgeColor == (domain.Color{}) {
		d.edgeColor = domain.DefaultEdgeColor
	}
	d.ClearSelection()
	return nil
}

// Bounds returns the size of the scene holding every node plus a margin.
// An empty scene has the size of a single node.
func (d *Document) Bounds() domain.Size {
	if len(d.nodes) == 0 {
		return domain.Size{
			Width:  domain.DefaultNodeSize.Width + 2*sceneMargin,
			Height: domain.DefaultNodeSize.Height + 2*sceneMargin,
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	halfW := float64(domain.DefaultNodeSize.Width) / 2
	halfH := float64(domain.DefaultNodeSize.Height) / 2
	for _, n := range d.nodes {
		minX = math.Min(minX, n.Location.X-halfW)
		minY = math.Min(minY, n.Location.Y-halfH)
		maxX = math.Max(maxX, n.Location.X+halfW)
		maxY = math.Max(maxY, n.Location.Y+halfH)
	}
	return domain.Size{
		Width:  int(math.Ceil(maxX-minX)) + 2*sceneMargin,
		Height: int(math.Ceil(maxY-minY)) + 2*sceneMargin,
	}
}
