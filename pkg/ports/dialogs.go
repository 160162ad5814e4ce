package ports

import (
	"context"

	"github.com/aretw0/heimer/pkg/domain"
)

// ExportRequest is what the user picked in the export dialog.
type ExportRequest struct {
	Path        string
	Size        domain.Size
	Transparent bool
}

// Dialogs are the blocking prompts shown by the driver.
// A false ok means the user canceled; an error means the prompt itself failed.
type Dialogs interface {
	// OpenFile asks for an existing file, starting at start.
	OpenFile(ctx context.Context, title, start, filter string) (path string, ok bool, err error)

	// SaveFile asks for a destination file, starting at start.
	SaveFile(ctx context.Context, title, start, filter string) (path string, ok bool, err error)

	// ConfirmUnsaved asks what to do with unsaved changes.
	ConfirmUnsaved(ctx context.Context, text, info string) (domain.UnsavedChoice, error)

	// PickColor asks for a color, preselecting def.
	PickColor(ctx context.Context, def domain.Color) (c domain.Color, ok bool, err error)

	// ExportSettings asks for the export target, prefilled with def.
	ExportSettings(ctx context.Context, def domain.Size) (req ExportRequest, ok bool, err error)
}

// Window is the main editor window as seen by the driver.
type Window interface {
	SetTitle(title string)
	ShowMessage(ctx context.Context, title, text string)
	Close(ctx context.Context) error
}
