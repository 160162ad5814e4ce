package png

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/aretw0/heimer/internal/fsutil"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	defaultFontSize = 12.0
	padding         = 20.0
	cornerRadius    = 8.0
	arrowSize       = 8.0
	arrowAngle      = 0.5 // radians
)

// Exporter implements ports.Exporter by drawing the graph with gg.
type Exporter struct {
	fontSize float64

	once sync.Once
	font *truetype.Font
	err  error
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFontSize sets the node text size in points.
func WithFontSize(size float64) Option {
	return func(e *Exporter) {
		e.fontSize = size
	}
}

// New creates an exporter using the Go Mono font.
func New(opts ...Option) *Exporter {
	e := &Exporter{fontSize: defaultFontSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) face() (font.Face, error) {
	e.once.Do(func() {
		e.font, e.err = truetype.Parse(gomono.TTF)
	})
	if e.err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", e.err)
	}
	return truetype.NewFace(e.font, &truetype.Options{
		Size:    e.fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// viewport maps scene coordinates onto the image, keeping the aspect ratio.
type viewport struct {
	scale        float64
	offX, offY   float64
	minX, minY   float64
	nodeW, nodeH float64
}

func fit(m domain.MindMap, size domain.Size) viewport {
	halfW := float64(domain.DefaultNodeSize.Width) / 2
	halfH := float64(domain.DefaultNodeSize.Height) / 2
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range m.Nodes {
		minX = math.Min(minX, n.Location.X-halfW)
		minY = math.Min(minY, n.Location.Y-halfH)
		maxX = math.Max(maxX, n.Location.X+halfW)
		maxY = math.Max(maxY, n.Location.Y+halfH)
	}
	if len(m.Nodes) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}

	availW := math.Max(float64(size.Width)-2*padding, 1)
	availH := math.Max(float64(size.Height)-2*padding, 1)
	scale := math.Min(availW/(maxX-minX), availH/(maxY-minY))

	return viewport{
		scale: scale,
		offX:  (float64(size.Width) - (maxX-minX)*scale) / 2,
		offY:  (float64(size.Height) - (maxY-minY)*scale) / 2,
		minX:  minX,
		minY:  minY,
		nodeW: float64(domain.DefaultNodeSize.Width) * scale,
		nodeH: float64(domain.DefaultNodeSize.Height) * scale,
	}
}

func (v viewport) project(p domain.Point) (float64, float64) {
	return v.offX + (p.X-v.minX)*v.scale, v.offY + (p.Y-v.minY)*v.scale
}

// Render draws the mind map into a new context of the given size.
// Sizes outside the export limits are rejected before any allocation.
func (e *Exporter) Render(m domain.MindMap, size domain.Size, transparent bool) (*gg.Context, error) {
	if err := size.ValidateExport(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
	}
	face, err := e.face()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(size.Width, size.Height)
	if !transparent {
		dc.SetColor(m.BackgroundColor.RGBA())
		dc.Clear()
	}
	dc.SetFontFace(face)

	v := fit(m, size)

	// Edges first so nodes cover their ends.
	for _, edge := range m.Edges {
		src, okSrc := m.Node(edge.Source)
		dst, okDst := m.Node(edge.Target)
		if !okSrc || !okDst {
			continue
		}
		e.drawEdge(dc, v, m.EdgeColor, src, dst)
	}
	for _, n := range m.Nodes {
		e.drawNode(dc, v, n)
	}
	return dc, nil
}

func (e *Exporter) drawEdge(dc *gg.Context, v viewport, c domain.Color, src, dst domain.Node) {
	x1, y1 := v.project(src.Location)
	x2, y2 := v.project(dst.Location)

	dc.SetColor(c.RGBA())
	dc.SetLineWidth(math.Max(1, 2*v.scale))
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	// Tip on the border of the target box, approximated by its half height.
	tipX := x2 - dx*v.nodeH/2
	tipY := y2 - dy*v.nodeH/2
	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX-arrowSize*dx+arrowSize*dy*arrowAngle, tipY-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(tipX-arrowSize*dx-arrowSize*dy*arrowAngle, tipY-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func (e *Exporter) drawNode(dc *gg.Context, v viewport, n domain.Node) {
	cx, cy := v.project(n.Location)
	x := cx - v.nodeW/2
	y := cy - v.nodeH/2

	dc.DrawRoundedRectangle(x, y, v.nodeW, v.nodeH, cornerRadius*v.scale)
	dc.SetColor(n.Color.RGBA())
	dc.FillPreserve()
	dc.SetColor(n.TextColor.RGBA())
	dc.SetLineWidth(1)
	dc.Stroke()

	if n.Text != "" {
		dc.DrawStringWrapped(n.Text, cx, cy, 0.5, 0.5, v.nodeW-4, 1.2, gg.AlignCenter)
	}
}

// Export implements ports.Exporter.
func (e *Exporter) Export(ctx context.Context, m domain.MindMap, path string, size domain.Size, transparent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dc, err := e.Render(m, size, transparent)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return fsutil.WriteFileAtomic(path, buf.Bytes(), 0644)
}
