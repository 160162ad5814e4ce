package alz

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/heimer/internal/fsutil"
	"github.com/aretw0/heimer/pkg/domain"
)

// FileExtension is the extension of native mind-map files.
const FileExtension = ".alz"

// Codec implements ports.Codec. Native files are XML; files ending in
// ".json" are read and written as JSON for interchange.
type Codec struct{}

// New creates a codec.
func New() *Codec {
	return &Codec{}
}

// Extension implements ports.Codec.
func (c *Codec) Extension() string {
	return FileExtension
}

type xmlDocument struct {
	XMLName   xml.Name  `xml:"heimer-mind-map"`
	Version   string    `xml:"version,attr"`
	Color     string    `xml:"color"`
	EdgeColor string    `xml:"edge-color"`
	Nodes     []xmlNode `xml:"node"`
	Edges     []xmlEdge `xml:"edge"`
}

type xmlNode struct {
	Index     int     `xml:"index,attr"`
	X         float64 `xml:"x,attr"`
	Y         float64 `xml:"y,attr"`
	Text      string  `xml:"text"`
	Color     string  `xml:"color"`
	TextColor string  `xml:"text-color"`
}

type xmlEdge struct {
	Index0 int    `xml:"index0,attr"`
	Index1 int    `xml:"index1,attr"`
	Text   string `xml:"text,omitempty"`
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load implements ports.Codec.
func (c *Codec) Load(ctx context.Context, path string) (domain.MindMap, error) {
	if err := ctx.Err(); err != nil {
		return domain.MindMap{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.MindMap{}, fmt.Errorf("failed to read mind map: %w", err)
	}
	if isJSON(path) {
		var m domain.MindMap
		if err := json.Unmarshal(data, &m); err != nil {
			return domain.MindMap{}, fmt.Errorf("failed to parse mind map: %w", err)
		}
		return m, nil
	}
	return Decode(data)
}

// Save implements ports.Codec.
func (c *Codec) Save(ctx context.Context, m domain.MindMap, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(m, "", "  ")
	} else {
		data, err = Encode(m)
	}
	if err != nil {
		return fmt.Errorf("failed to encode mind map: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0644)
}

// Encode renders a mind map as an XML document.
func Encode(m domain.MindMap) ([]byte, error) {
	doc := xmlDocument{
		Version:   m.Version,
		Color:     m.BackgroundColor.Hex(),
		EdgeColor: m.EdgeColor.Hex(),
	}
	for _, n := range m.Nodes {
		doc.Nodes = append(doc.Nodes, xmlNode{
			Index:     int(n.ID),
			X:         n.Location.X,
			Y:         n.Location.Y,
			Text:      n.Text,
			Color:     n.Color.Hex(),
			TextColor: n.TextColor.Hex(),
		})
	}
	for _, e := range m.Edges {
		doc.Edges = append(doc.Edges, xmlEdge{Index0: int(e.Source), Index1: int(e.Target), Text: e.Text})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// Decode parses an XML document. Missing colors fall back to the defaults.
func Decode(data []byte) (domain.MindMap, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return domain.MindMap{}, fmt.Errorf("failed to parse mind map: %w", err)
	}

	m := domain.MindMap{Version: doc.Version}
	var err error
	if m.BackgroundColor, err = colorOr(doc.Color, domain.White); err != nil {
		return domain.MindMap{}, err
	}
	if m.EdgeColor, err = colorOr(doc.EdgeColor, domain.DefaultEdgeColor); err != nil {
		return domain.MindMap{}, err
	}

	for _, xn := range doc.Nodes {
		n := domain.Node{
			ID:       domain.NodeID(xn.Index),
			Text:     xn.Text,
			Location: domain.Point{X: xn.X, Y: xn.Y},
		}
		if n.Color, err = colorOr(xn.Color, domain.DefaultNodeColor); err != nil {
			return domain.MindMap{}, err
		}
		if n.TextColor, err = colorOr(xn.TextColor, domain.Black); err != nil {
			return domain.MindMap{}, err
		}
		m.Nodes = append(m.Nodes, n)
	}
	for _, xe := range doc.Edges {
		m.Edges = append(m.Edges, domain.Edge{
			Source: domain.NodeID(xe.Index0),
			Target: domain.NodeID(xe.Index1),
			Text:   xe.Text,
		})
	}
	return m, nil
}

func colorOr(s string, def domain.Color) (domain.Color, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return domain.ParseColor(s)
}
