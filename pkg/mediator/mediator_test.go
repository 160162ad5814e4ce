package mediator_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/mediator"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memCodec keeps "files" in a map.
type memCodec struct {
	mu    sync.Mutex
	files map[string]domain.MindMap
	fail  error
}

func newMemCodec() *memCodec {
	return &memCodec{files: make(map[string]domain.MindMap)}
}

func (c *memCodec) Load(ctx context.Context, path string) (domain.MindMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.files[path]
	if !ok {
		return domain.MindMap{}, errors.New("no such file")
	}
	return m, nil
}

func (c *memCodec) Save(ctx context.Context, m domain.MindMap, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.files[path] = m
	return nil
}

func (c *memCodec) Extension() string { return ".alz" }

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, mm domain.MindMap, path string, size domain.Size, transparent bool) error {
	args := m.Called(ctx, mm, path, size, transparent)
	return args.Error(0)
}

func newMediator(t *testing.T, opts ...mediator.Option) (*mediator.Mediator, domain.NodeID) {
	t.Helper()
	m := mediator.New(opts...)
	root := m.InitializeNewMindMap()
	return m, root
}

func TestMediator_InitializeNewMindMap(t *testing.T) {
	m, root := newMediator(t)

	assert.Equal(t, 1, m.NodeCount())
	assert.False(t, m.IsModified())
	assert.False(t, m.IsUndoable())
	_, err := m.GetNodeByIndex(root)
	assert.NoError(t, err)
}

func TestMediator_CreateAndAddNode(t *testing.T) {
	m, root := newMediator(t)

	id, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)
	assert.True(t, m.IsModified())
	assert.True(t, m.IsUndoable())
	assert.Equal(t, 2, m.NodeCount())
	assert.Contains(t, m.Snapshot().Edges, domain.Edge{Source: root, Target: id})

	leaf, err := m.IsLeafNode(root)
	require.NoError(t, err)
	assert.False(t, leaf)
}

func TestMediator_CreateAndAddNode_InvalidSource(t *testing.T) {
	m, _ := newMediator(t)
	missing := domain.NodeID(42)

	_, err := m.CreateAndAddNode(&missing, domain.Point{})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.False(t, m.IsModified())
	assert.Equal(t, 1, m.NodeCount())
}

func TestMediator_CreateAndAddTextNode_SingleEdit(t *testing.T) {
	m, root := newMediator(t)

	id, err := m.CreateAndAddTextNode(&root, domain.Point{X: 250}, "idea")
	require.NoError(t, err)
	n, err := m.GetNodeByIndex(id)
	require.NoError(t, err)
	assert.Equal(t, "idea", n.Text)

	undo, _ := m.HistoryDepth()
	assert.Equal(t, 1, undo)

	_, err = m.Undo()
	require.NoError(t, err)
	assert.Equal(t, 1, m.NodeCount())
}

func TestMediator_CreateFloatingNode(t *testing.T) {
	m, _ := newMediator(t)

	_, err := m.CreateFloatingNode(domain.Point{X: -300})
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().Edges)
}

func TestMediator_DeleteNode(t *testing.T) {
	m, root := newMediator(t)
	child, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)
	require.NoError(t, m.SetSelectedNode(child))

	require.NoError(t, m.DeleteNode(child))

	_, err = m.GetNodeByIndex(child)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, m.Snapshot().Edges)
	_, ok := m.SelectedNode()
	assert.False(t, ok)

	assert.ErrorIs(t, m.DeleteNode(child), domain.ErrNotFound)
}

func TestMediator_UndoRedoRoundTrip(t *testing.T) {
	m, root := newMediator(t)
	child, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)

	before := m.Snapshot()
	require.NoError(t, m.DeleteNode(child))
	after := m.Snapshot()

	ok, err := m.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(before, m.Snapshot()))
	assert.True(t, m.IsRedoable())

	ok, err = m.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(after, m.Snapshot()))
}

func TestMediator_NewEditAfterUndoDropsRedo(t *testing.T) {
	m, root := newMediator(t)
	_, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)
	_, err = m.CreateAndAddNode(&root, domain.Point{X: 400})
	require.NoError(t, err)

	_, _ = m.Undo()
	_, _ = m.Undo()
	_, redo := m.HistoryDepth()
	require.Equal(t, 2, redo)

	require.NoError(t, m.SetNodeText(root, "topic"))
	assert.False(t, m.IsRedoable())
}

func TestMediator_UndoOnEmptyHistory(t *testing.T) {
	m, _ := newMediator(t)

	ok, err := m.Undo()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.IsModified())
}

func TestMediator_EditsMarkModified(t *testing.T) {
	edits := map[string]func(m *mediator.Mediator, root, child domain.NodeID) error{
		"move":       func(m *mediator.Mediator, root, _ domain.NodeID) error { return m.MoveNode(root, domain.Point{X: 1}) },
		"text":       func(m *mediator.Mediator, root, _ domain.NodeID) error { return m.SetNodeText(root, "x") },
		"disconnect": func(m *mediator.Mediator, root, child domain.NodeID) error { return m.DisconnectNodes(root, child) },
		"background": func(m *mediator.Mediator, _, _ domain.NodeID) error {
			return m.SetBackgroundColor(domain.MustParseColor("#333333"))
		},
		"connect": func(m *mediator.Mediator, _, child domain.NodeID) error {
			other, err := m.CreateFloatingNode(domain.Point{Y: 300})
			if err != nil {
				return err
			}
			return m.ConnectNodes(child, other)
		},
	}

	codec := newMemCodec()
	for name, edit := range edits {
		t.Run(name, func(t *testing.T) {
			m, root := newMediator(t, mediator.WithCodec(codec))
			child, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
			require.NoError(t, err)
			require.NoError(t, m.SaveMindMapAs(context.Background(), name+".alz"))
			require.False(t, m.IsModified())

			require.NoError(t, edit(m, root, child))
			assert.True(t, m.IsModified())
		})
	}
}

func TestMediator_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	codec := newMemCodec()
	m, root := newMediator(t, mediator.WithCodec(codec))
	_, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)

	assert.ErrorIs(t, m.SaveMindMap(ctx), domain.ErrNoFile)
	assert.False(t, m.CanBeSaved())

	require.NoError(t, m.SaveMindMapAs(ctx, "/maps/one.alz"))
	assert.False(t, m.IsModified())
	assert.Equal(t, "one.alz", m.FileName())
	assert.True(t, m.Guards().HasFile)

	require.NoError(t, m.SetNodeText(root, "edited"))
	require.NoError(t, m.SaveMindMap(ctx))
	assert.False(t, m.IsModified())
	saved := m.Snapshot()

	other, _ := newMediator(t, mediator.WithCodec(codec))
	_, err = other.CreateFloatingNode(domain.Point{})
	require.NoError(t, err)

	require.NoError(t, other.OpenMindMap(ctx, "/maps/one.alz"))
	assert.Equal(t, "/maps/one.alz", other.FilePath())
	assert.False(t, other.IsModified())
	assert.False(t, other.IsUndoable())
	assert.False(t, other.IsRedoable())
	assert.Empty(t, cmp.Diff(saved, other.Snapshot()))
}

func TestMediator_OpenFailureKeepsDocument(t *testing.T) {
	m, root := newMediator(t, mediator.WithCodec(newMemCodec()))
	_, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)
	before := m.Snapshot()

	err = m.OpenMindMap(context.Background(), "/missing.alz")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
	assert.Empty(t, cmp.Diff(before, m.Snapshot()))
	assert.True(t, m.IsModified())
	assert.Empty(t, m.FilePath())
}

func TestMediator_SaveFailureKeepsState(t *testing.T) {
	codec := newMemCodec()
	m, root := newMediator(t, mediator.WithCodec(codec))
	_, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)

	codec.fail = errors.New("read-only file system")
	err = m.SaveMindMapAs(context.Background(), "/ro/map.alz")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
	assert.True(t, m.IsModified())
	assert.Empty(t, m.FilePath())
}

func TestMediator_WithoutCodec(t *testing.T) {
	m, _ := newMediator(t)
	assert.ErrorIs(t, m.OpenMindMap(context.Background(), "x.alz"), domain.ErrIOFailure)
	assert.ErrorIs(t, m.SaveMindMapAs(context.Background(), "x.alz"), domain.ErrIOFailure)
}

func TestMediator_ExportIsReadOnly(t *testing.T) {
	exporter := new(MockExporter)
	m, root := newMediator(t, mediator.WithExporter(exporter))
	_, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
	require.NoError(t, err)
	_, _ = m.Undo()

	modified := m.IsModified()
	undo, redo := m.HistoryDepth()

	exporter.On("Export", mock.Anything, mock.Anything, "ok.png", domain.Size{Width: 640, Height: 480}, true).Return(nil).Once()
	exporter.On("Export", mock.Anything, mock.Anything, "fail.png", m.SceneSize(), false).Return(errors.New("boom")).Once()

	require.NoError(t, m.ExportToPNG(context.Background(), "ok.png", domain.Size{Width: 640, Height: 480}, true))
	err = m.ExportToPNG(context.Background(), "fail.png", domain.Size{}, false)
	assert.ErrorIs(t, err, domain.ErrIOFailure)

	exporter.AssertExpectations(t)
	assert.Equal(t, modified, m.IsModified())
	u, r := m.HistoryDepth()
	assert.Equal(t, undo, u)
	assert.Equal(t, redo, r)
}

func TestMediator_Hooks(t *testing.T) {
	var names []string
	var failures int
	hooks := domain.LifecycleHooks{
		OnOperation: func(ctx context.Context, e *domain.OperationEvent) {
			names = append(names, e.Name)
			if e.IsError {
				failures++
			}
		},
	}

	m, _ := newMediator(t, mediator.WithLifecycleHooks(hooks))
	_ = m.DeleteNode(99)

	assert.Equal(t, []string{"initialize", "delete_node"}, names)
	assert.Equal(t, 1, failures)
}

func TestMediator_ConcurrentReaders(t *testing.T) {
	m, root := newMediator(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Guards()
				_ = m.Snapshot()
			}
		}()
	}
	for i := 0; i < 50; i++ {
		_, err := m.CreateAndAddNode(&root, domain.Point{X: float64(i)})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, 51, m.NodeCount())
}

func TestMediator_FileExtension(t *testing.T) {
	m, _ := newMediator(t, mediator.WithCodec(newMemCodec()))
	assert.Equal(t, ".alz", m.FileExtension())

	bare, _ := newMediator(t)
	assert.Empty(t, bare.FileExtension())
}
