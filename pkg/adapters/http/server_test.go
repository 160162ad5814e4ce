package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	heimerhttp "github.com/aretw0/heimer/pkg/adapters/http"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubState struct{ snap domain.Snapshot }

func (s stubState) State() domain.Snapshot { return s.snap }

type stubDocument struct {
	guards domain.Guards
	m      domain.MindMap
}

func (d stubDocument) Guards() domain.Guards    { return d.guards }
func (d stubDocument) Snapshot() domain.MindMap { return d.m }

func newServer(opts ...heimerhttp.Option) *heimerhttp.Server {
	state := stubState{snap: domain.Snapshot{State: domain.StateShowNotSavedDialog, Pending: domain.OperationClose}}
	doc := stubDocument{
		guards: domain.Guards{IsModified: true, HasNodes: true},
		m: domain.MindMap{
			Version:         "1.0",
			BackgroundColor: domain.White,
			EdgeColor:       domain.DefaultEdgeColor,
			Nodes:           []domain.Node{{ID: 0, Text: "root"}, {ID: 1, Text: "child"}},
			Edges:           []domain.Edge{{Source: 0, Target: 1}},
		},
	}
	return heimerhttp.NewServer(state, doc, opts...)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := get(t, newServer().Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Info(t *testing.T) {
	rec := get(t, newServer(heimerhttp.WithVersion("1.2.3")).Handler(), "/info")
	assert.JSONEq(t, `{"app":"heimer","version":"1.2.3"}`, rec.Body.String())
}

func TestServer_State(t *testing.T) {
	rec := get(t, newServer().Handler(), "/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp heimerhttp.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StateShowNotSavedDialog, resp.State)
	assert.Equal(t, domain.OperationClose, resp.Pending)
	assert.True(t, resp.Guards.IsModified)
	assert.False(t, resp.Guards.HasFile)
}

func TestServer_Graph(t *testing.T) {
	rec := get(t, newServer().Handler(), "/graph")
	require.Equal(t, http.StatusOK, rec.Code)

	var m domain.MindMap
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Len(t, m.Nodes, 2)
	assert.Equal(t, "child", m.Nodes[1].Text)
	assert.Equal(t, domain.DefaultEdgeColor, m.EdgeColor)
}

func TestServer_Metrics(t *testing.T) {
	rec := get(t, newServer().Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics are only mounted when configured")

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "heimer_up 1\n")
	})
	rec = get(t, newServer(heimerhttp.WithMetrics(metrics)).Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "heimer_up 1\n", rec.Body.String())
}

func TestServer_Events(t *testing.T) {
	s := newServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			if line == "" {
				return strings.Join(lines, "\n")
			}
			lines = append(lines, line)
		}
	}

	assert.Equal(t, "event: ping\ndata: connected", readEvent())
	require.Eventually(t, func() bool { return s.Streams.Len() == 1 }, time.Second, 10*time.Millisecond)

	s.Hooks().OnTransition(ctx, domain.NewTransitionEvent(domain.ActionRequestClose,
		domain.InitialSnapshot(),
		domain.Snapshot{State: domain.StateTryCloseWindow, Pending: domain.OperationNone},
		domain.Guards{}))

	event := readEvent()
	assert.True(t, strings.HasPrefix(event, "event: transition\ndata: "), event)
	assert.Contains(t, event, `"action":"RequestClose"`)
	assert.Contains(t, event, `"to":"TryCloseWindow"`)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := heimerhttp.NewStreamManager()
	ch, cancel := sm.Subscribe()
	assert.Equal(t, 1, sm.Len())

	sm.Broadcast("hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Len())
	_, open := <-ch
	assert.False(t, open)

	sm.Broadcast("ignored")
}
