package ports

import (
	"context"

	"github.com/aretw0/heimer/pkg/domain"
)

// Codec reads and writes mind-map files.
type Codec interface {
	// Load parses the file at path.
	Load(ctx context.Context, path string) (domain.MindMap, error)

	// Save writes the mind map to path, replacing any existing file.
	Save(ctx context.Context, m domain.MindMap, path string) error

	// Extension is the file extension owned by the format, dot included.
	Extension() string
}

// Exporter renders a mind map to an image file.
// Implementations must not retain or modify the snapshot.
type Exporter interface {
	Export(ctx context.Context, m domain.MindMap, path string, size domain.Size, transparent bool) error
}
