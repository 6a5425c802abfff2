package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chazu/mindscape/pkg/config"
	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMap(title string) *mindmap.Map {
	root := mindmap.NewNode("root", "Root")
	a := mindmap.NewNode("a", "A")
	a.AddChild(mindmap.NewNode("a1", "A1"))
	root.AddChild(a, mindmap.NewNode("b", "B"))
	return mindmap.NewMap(title, root)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Camera.Duration = config.Duration(20 * time.Millisecond)
	cfg.Camera.FrameInterval = config.Duration(2 * time.Millisecond)
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(cfg, sampleMap("Sample"))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads messages until one of the wanted type arrives.
func next(t *testing.T, conn *websocket.Conn, typ string) outMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg outMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestSessionInitialScene(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)

	msg := next(t, conn, msgScene)
	require.NotNil(t, msg.Scene)
	assert.Equal(t, "Sample", msg.Scene.Title)
	assert.Equal(t, "tree", msg.Scene.Mode)
	assert.Len(t, msg.Scene.Nodes, 3)
	assert.Len(t, msg.Scene.Connections, 2)
	assert.Equal(t, []string{"root"}, msg.Scene.Expanded)
}

func TestSessionToggleAnimatesCamera(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	next(t, conn, msgScene)

	require.NoError(t, conn.WriteJSON(inMessage{Type: msgToggle, ID: "a"}))
	sc := next(t, conn, msgScene)
	assert.Len(t, sc.Scene.Nodes, 4)
	assert.Equal(t, "a", sc.Scene.FocusedID)
	require.NotNil(t, sc.Scene.CameraTarget)

	var last outMessage
	for !last.Done {
		last = next(t, conn, msgCamera)
	}
	require.NotNil(t, last.Pose)
	assert.Equal(t, sc.Scene.CameraTarget.Position, last.Pose.Position)
	assert.Equal(t, sc.Scene.CameraTarget.LookAt, last.Pose.LookAt)
}

func TestSessionRequests(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	next(t, conn, msgScene)

	require.NoError(t, conn.WriteJSON(inMessage{Type: msgLayout, Mode: "radial"}))
	assert.Equal(t, "radial", next(t, conn, msgScene).Scene.Mode)

	require.NoError(t, conn.WriteJSON(inMessage{Type: msgDepth, Depth: 0}))
	sc := next(t, conn, msgScene).Scene
	assert.Len(t, sc.Nodes, 1)
	assert.Empty(t, sc.Connections)

	require.NoError(t, conn.WriteJSON(inMessage{Type: msgFocusMode, On: false}))
	assert.False(t, next(t, conn, msgScene).Scene.FocusMode)

	require.NoError(t, conn.WriteJSON(inMessage{Type: msgDetail, ID: "a"}))
	d := next(t, conn, msgDetail)
	require.NotNil(t, d.Detail)
	assert.Equal(t, []string{"A1"}, d.Detail.Children)

	require.NoError(t, conn.WriteJSON(inMessage{Type: msgLayout, Mode: "spiral"}))
	assert.Contains(t, next(t, conn, msgError).Error, "spiral")

	require.NoError(t, conn.WriteJSON(inMessage{Type: "dance"}))
	assert.Contains(t, next(t, conn, msgError).Error, "unknown message type")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	assert.Contains(t, next(t, conn, msgError).Error, "malformed")
}

func TestSetMapReloadsSessions(t *testing.T) {
	s, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	next(t, conn, msgScene)

	s.SetMap(sampleMap("Replaced"))
	assert.Equal(t, "Replaced", next(t, conn, msgScene).Scene.Title)
	assert.Equal(t, "Replaced", s.Map().Title)
}

func TestExport(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/api/mindmap")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	m, err := mindmap.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Sample", m.Title)
	assert.Equal(t, 4, m.Count())
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>Mindscape</title>")
}

func TestMetricsEndpoint(t *testing.T) {
	s, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	next(t, conn, msgScene)
	require.NoError(t, conn.WriteJSON(inMessage{Type: msgFit}))
	next(t, conn, msgScene)

	families, err := s.registry.Gather()
	require.NoError(t, err)
	got := map[string]bool{}
	for _, mf := range families {
		got[mf.GetName()] = true
		if mf.GetName() == "mindscape_sessions_active" {
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, got["mindscape_layout_duration_seconds"])
	assert.True(t, got["mindscape_viewer_events_total"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mindscape_viewer_events_total{kind="fit"} 1`)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(cfg, sampleMap("Sample"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}

func dataURL(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw)
}
