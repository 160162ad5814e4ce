package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/heimer/internal/document"
	"github.com/aretw0/heimer/internal/history"
	"github.com/aretw0/heimer/internal/logging"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/ports"
)

// Mediator applies edits to the document and keeps the undo history and the
// modified flag consistent with them. It is safe for concurrent use; writers
// are serialized and readers see whole edits only.
type Mediator struct {
	mu      sync.RWMutex
	doc     *document.Document
	history *history.History

	codec     ports.Codec
	exporter  ports.Exporter
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	undoLimit int
}

// New creates a mediator holding an empty document.
func New(opts ...Option) *Mediator {
	m := &Mediator{
		doc:    document.New(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.history = history.New(m.undoLimit)
	return m
}

func (m *Mediator) observe(ctx context.Context, name string, err error) {
	if err != nil {
		m.logger.Debug("mediator operation failed", "op", name, "error", err)
	} else {
		m.logger.Debug("mediator operation", "op", name)
	}
	if m.hooks.OnOperation != nil {
		m.hooks.OnOperation(ctx, domain.NewOperationEvent(name, err))
	}
}

// apply runs an undoable edit. Callers must hold the write lock.
func (m *Mediator) apply(cmd history.Command) error {
	if err := m.history.Execute(m.doc, cmd); err != nil {
		return err
	}
	m.doc.SetModified(true)
	return nil
}

func (m *Mediator) edit(name string, cmd history.Command) error {
	m.mu.Lock()
	err := m.apply(cmd)
	m.mu.Unlock()

	m.observe(context.Background(), name, err)
	return err
}

// InitializeNewMindMap replaces the document with a fresh one holding a single root node.
// The result is unmodified and has no history.
func (m *Mediator) InitializeNewMindMap() domain.NodeID {
	m.mu.Lock()
	m.doc.Clear()
	m.history.Reset()
	root := m.doc.NewNode("", domain.Point{})
	_ = m.doc.AddNode(root)
	m.mu.Unlock()

	m.observe(context.Background(), "initialize", nil)
	return root.ID
}

// CreateAndAddNode creates a node at pos. When source is not nil the new node
// hangs under it with a structural edge; source must exist.
func (m *Mediator) CreateAndAddNode(source *domain.NodeID, pos domain.Point) (domain.NodeID, error) {
	return m.CreateAndAddTextNode(source, pos, "")
}

// CreateAndAddTextNode is CreateAndAddNode with an initial text, recorded as a single edit.
func (m *Mediator) CreateAndAddTextNode(source *domain.NodeID, pos domain.Point, text string) (domain.NodeID, error) {
	m.mu.Lock()
	var parent *domain.NodeID
	if source != nil {
		id := *source
		parent = &id
	}
	node := m.doc.NewNode(text, pos)
	err := m.apply(&history.AddNode{Node: node, Parent: parent})
	m.mu.Unlock()

	m.observe(context.Background(), "create_node", err)
	if err != nil {
		return 0, err
	}
	return node.ID, nil
}

// CreateFloatingNode creates a node with no parent.
func (m *Mediator) CreateFloatingNode(pos domain.Point) (domain.NodeID, error) {
	return m.CreateAndAddNode(nil, pos)
}

// DeleteNode removes a node and every edge touching it.
func (m *Mediator) DeleteNode(id domain.NodeID) error {
	return m.edit("delete_node", &history.DeleteNode{ID: id})
}

// ConnectNodes adds an edge between two existing nodes.
func (m *Mediator) ConnectNodes(source, target domain.NodeID) error {
	return m.edit("connect", &history.Connect{Edge: domain.Edge{Source: source, Target: target}})
}

// DisconnectNodes removes the edge from source to target.
func (m *Mediator) DisconnectNodes(source, target domain.NodeID) error {
	return m.edit("disconnect", &history.Disconnect{Source: source, Target: target})
}

// MoveNode relocates a node.
func (m *Mediator) MoveNode(id domain.NodeID, to domain.Point) error {
	return m.edit("move_node", &history.Move{ID: id, To: to})
}

// SetNodeText changes the text of a node.
func (m *Mediator) SetNodeText(id domain.NodeID, text string) error {
	return m.edit("set_text", &history.SetText{ID: id, Text: text})
}

// SetBackgroundColor changes the scene background. The change is undoable.
func (m *Mediator) SetBackgroundColor(c domain.Color) error {
	return m.edit("set_background", &history.SetBackground{Color: c})
}

// Undo reverts the latest edit. It reports false when there was nothing to undo.
func (m *Mediator) Undo() (bool, error) {
	return m.step("undo", m.history.Undo)
}

// Redo re-applies the latest undone edit. It reports false when there was nothing to redo.
func (m *Mediator) Redo() (bool, error) {
	return m.step("redo", m.history.Redo)
}

func (m *Mediator) step(name string, fn func(*document.Document) (bool, error)) (bool, error) {
	m.mu.Lock()
	changed, err := fn(m.doc)
	if changed {
		m.doc.SetModified(true)
	}
	m.mu.Unlock()

	m.observe(context.Background(), name, err)
	return changed, err
}

// OpenMindMap replaces the document with the file at path. On failure the
// current document is untouched and the error wraps domain.ErrIOFailure.
func (m *Mediator) OpenMindMap(ctx context.Context, path string) error {
	err := m.open(ctx, path)
	m.observe(ctx, "open", err)
	return err
}

func (m *Mediator) open(ctx context.Context, path string) error {
	if m.codec == nil {
		return fmt.Errorf("%w: no codec configured", domain.ErrIOFailure)
	}
	loaded, err := m.codec.Load(ctx, path)
	if err != nil {
		return wrapIO("open", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.doc.Restore(loaded); err != nil {
		return wrapIO("open", path, err)
	}
	m.doc.SetFilePath(path)
	m.doc.SetModified(false)
	m.history.Reset()
	m.logger.Info("mind map opened", "path", path, "nodes", m.doc.NodeCount())
	return nil
}

// SaveMindMap writes the document to its current file.
// It returns domain.ErrNoFile when the document has never been saved.
func (m *Mediator) SaveMindMap(ctx context.Context) error {
	m.mu.Lock()
	path := m.doc.FilePath()
	var err error
	if path == "" {
		err = domain.ErrNoFile
	} else {
		err = m.save(ctx, path)
	}
	m.mu.Unlock()

	m.observe(ctx, "save", err)
	return err
}

// SaveMindMapAs writes the document to path and makes path its file.
func (m *Mediator) SaveMindMapAs(ctx context.Context, path string) error {
	m.mu.Lock()
	err := m.save(ctx, path)
	if err == nil {
		m.doc.SetFilePath(path)
	}
	m.mu.Unlock()

	m.observe(ctx, "save_as", err)
	return err
}

// save writes under the write lock so no edit can slip between the write and the flag reset.
func (m *Mediator) save(ctx context.Context, path string) error {
	if m.codec == nil {
		return fmt.Errorf("%w: no codec configured", domain.ErrIOFailure)
	}
	if err := m.codec.Save(ctx, m.doc.Snapshot(), path); err != nil {
		return wrapIO("save", path, err)
	}
	m.doc.SetModified(false)
	m.logger.Info("mind map saved", "path", path)
	return nil
}

// ExportToPNG renders the current graph to path. An empty size means the scene size.
// It never changes the document or its history.
func (m *Mediator) ExportToPNG(ctx context.Context, path string, size domain.Size, transparent bool) error {
	m.mu.RLock()
	snapshot := m.doc.Snapshot()
	if size.IsEmpty() {
		size = m.doc.Bounds()
	}
	m.mu.RUnlock()

	var err error
	if m.exporter == nil {
		err = fmt.Errorf("%w: no exporter configured", domain.ErrIOFailure)
	} else if exportErr := m.exporter.Export(ctx, snapshot, path, size, transparent); exportErr != nil {
		err = wrapIO("export", path, exportErr)
	}

	m.observe(ctx, "export", err)
	return err
}

func wrapIO(op, path string, err error) error {
	if errors.Is(err, domain.ErrIOFailure) {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
	return fmt.Errorf("%s %s: %w: %w", op, path, domain.ErrIOFailure, err)
}

// SetSelectedNode selects a node.
func (m *Mediator) SetSelectedNode(id domain.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Select(id)
}

// ClearSelection drops the selection.
func (m *Mediator) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.ClearSelection()
}

// SelectedNode returns the selected node, if any.
func (m *Mediator) SelectedNode() (domain.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.doc.Selected()
	if !ok {
		return domain.Node{}, false
	}
	n, err := m.doc.Node(id)
	return n, err == nil
}

// GetNodeByIndex looks up a node.
func (m *Mediator) GetNodeByIndex(id domain.NodeID) (domain.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Node(id)
}

// IsLeafNode reports whether a node has no children.
func (m *Mediator) IsLeafNode(id domain.NodeID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.IsLeaf(id)
}

// HasNodes reports whether the graph is not empty.
func (m *Mediator) HasNodes() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.HasNodes()
}

// NodeCount returns the number of nodes.
func (m *Mediator) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.NodeCount()
}

// IsModified reports unsaved edits.
func (m *Mediator) IsModified() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.IsModified()
}

// IsUndoable reports whether Undo would change something.
func (m *Mediator) IsUndoable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.CanUndo()
}

// IsRedoable reports whether Redo would change something.
func (m *Mediator) IsRedoable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.CanRedo()
}

// HistoryDepth returns the sizes of the undo and redo stacks.
func (m *Mediator) HistoryDepth() (undo, redo int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.UndoLen(), m.history.RedoLen()
}

// CanBeSaved reports whether the document has a file to be saved to.
func (m *Mediator) CanBeSaved() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.FilePath() != ""
}

// FilePath returns the file of the document, empty when never saved.
func (m *Mediator) FilePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.FilePath()
}

// FileName returns the base name of the document file, empty when never saved.
func (m *Mediator) FileName() string {
	path := m.FilePath()
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// FileExtension is the extension of the configured codec, empty without one.
func (m *Mediator) FileExtension() string {
	if m.codec == nil {
		return ""
	}
	return m.codec.Extension()
}

// BackgroundColor returns the scene background.
func (m *Mediator) BackgroundColor() domain.Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.BackgroundColor()
}

// SceneSize is the default export size: the nodes' bounding box plus a margin.
func (m *Mediator) SceneSize() domain.Size {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Bounds()
}

// Guards returns the facts the workflow state machine branches on.
func (m *Mediator) Guards() domain.Guards {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Guards{
		IsModified: m.doc.IsModified(),
		HasNodes:   m.doc.HasNodes(),
		HasFile:    m.doc.FilePath() != "",
	}
}

// Snapshot returns a copy of the graph for renderers.
func (m *Mediator) Snapshot() domain.MindMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Snapshot()
}
