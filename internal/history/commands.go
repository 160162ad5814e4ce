package history

import (
	"fmt"

	"github.com/aretw0/heimer/internal/document"
	"github.com/aretw0/heimer/pkg/domain"
)

// AddNode inserts a node, optionally hanging it under a parent with a structural edge.
type AddNode struct {
	Node   domain.Node
	Parent *domain.NodeID
}

func (c *AddNode) Do(doc *document.Document) error {
	if c.Parent != nil {
		if _, err := doc.Node(*c.Parent); err != nil {
			return fmt.Errorf("%w: parent %d", domain.ErrInvalidReference, *c.Parent)
		}
	}
	if err := doc.AddNode(c.Node); err != nil {
		return err
	}
	if c.Parent != nil {
		if err := doc.AddEdge(domain.Edge{Source: *c.Parent, Target: c.Node.ID}); err != nil {
			_, _, _ = doc.RemoveNode(c.Node.ID)
			return err
		}
	}
	return nil
}

func (c *AddNode) Undo(doc *document.Document) error {
	_, _, err := doc.RemoveNode(c.Node.ID)
	return err
}

func (c *AddNode) String() string {
	return fmt.Sprintf("add node %d", c.Node.ID)
}

// DeleteNode removes a node together with its edges.
type DeleteNode struct {
	ID domain.NodeID

	node  domain.Node
	edges []domain.Edge
}

func (c *DeleteNode) Do(doc *document.Document) error {
	node, edges, err := doc.RemoveNode(c.ID)
	if err != nil {
		return err
	}
	c.node = node
	c.edges = edges
	return nil
}

func (c *DeleteNode) Undo(doc *document.Document) error {
	if err := doc.AddNode(c.node); err != nil {
		return err
	}
	for _, e := range c.edges {
		if err := doc.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *DeleteNode) String() string {
	return fmt.Sprintf("delete node %d", c.ID)
}

// Connect adds an edge.
type Connect struct {
	Edge domain.Edge
}

func (c *Connect) Do(doc *document.Document) error {
	return doc.AddEdge(c.Edge)
}

func (c *Connect) Undo(doc *document.Document) error {
	_, err := doc.RemoveEdge(c.Edge.Source, c.Edge.Target)
	return err
}

func (c *Connect) String() string {
	return fmt.Sprintf("connect %d -> %d", c.Edge.Source, c.Edge.Target)
}

// Disconnect removes an edge.
type Disconnect struct {
	Source, Target domain.NodeID

	edge domain.Edge
}

func (c *Disconnect) Do(doc *document.Document) error {
	e, err := doc.RemoveEdge(c.Source, c.Target)
	if err != nil {
		return err
	}
	c.edge = e
	return nil
}

func (c *Disconnect) Undo(doc *document.Document) error {
	return doc.AddEdge(c.edge)
}

func (c *Disconnect) String() string {
	return fmt.Sprintf("disconnect %d -> %d", c.Source, c.Target)
}

// Move relocates a node.
type Move struct {
	ID domain.NodeID
	To domain.Point

	from domain.Point
}

func (c *Move) Do(doc *document.Document) error {
	n, err := doc.Node(c.ID)
	if err != nil {
		return err
	}
	c.from = n.Location
	n.Location = c.To
	return doc.UpdateNode(n)
}

func (c *Move) Undo(doc *document.Document) error {
	n, err := doc.Node(c.ID)
	if err != nil {
		return err
	}
	n.Location = c.from
	return doc.UpdateNode(n)
}

func (c *Move) String() string {
	return fmt.Sprintf("move node %d", c.ID)
}

// SetText changes the text of a node.
type SetText struct {
	ID   domain.NodeID
	Text string

	previous string
}

func (c *SetText) Do(doc *document.Document) error {
	n, err := doc.Node(c.ID)
	if err != nil {
		return err
	}
	c.previous = n.Text
	n.Text = c.Text
	return doc.UpdateNode(n)
}

func (c *SetText) Undo(doc *document.Document) error {
	n, err := doc.Node(c.ID)
	if err != nil {
		return err
	}
	n.Text = c.previous
	return doc.UpdateNode(n)
}

func (c *SetText) String() string {
	return fmt.Sprintf("set text of node %d", c.ID)
}

// SetBackground changes the scene background color.
type SetBackground struct {
	Color domain.Color

	previous domain.Color
}

func (c *SetBackground) Do(doc *document.Document) error {
	c.previous = doc.BackgroundColor()
	doc.SetBackgroundColor(c.Color)
	return nil
}

func (c *SetBackground) Undo(doc *document.Document) error {
	doc.SetBackgroundColor(c.previous)
	return nil
}

func (c *SetBackground) String() string {
	return "set background " + c.Color.Hex()
}
