package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workiq/weave/internal/engine"
)

func dialWebSocket(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) engine.Event {
	t.Helper()
	require.NoError(t,
		conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev engine.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebSocketStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	conn := dialWebSocket(t, ts.URL)

	res, err := http.Post(
		ts.URL+"/run/welcome", "application/json",
		strings.NewReader(`{"name":"Ada"}`),
	)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	execID := res.Header.Get("X-Execution-Id")

	started := readEvent(t, conn)
	assert.Equal(t, engine.EventChainStarted, started.Type)
	assert.Equal(t, execID, started.ExecutionID)

	step := readEvent(t, conn)
	assert.Equal(t, engine.EventStepCompleted, step.Type)
	assert.Equal(t, 0, step.StepIndex)

	done := readEvent(t, conn)
	assert.Equal(t, engine.EventChainSucceeded, done.Type)
	assert.Equal(t, execID, done.ExecutionID)
}

func TestWebSocketChainFailure(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	conn := dialWebSocket(t, ts.URL)

	res, err := http.Post(
		ts.URL+"/run/doomed", "application/json",
		strings.NewReader(`{}`),
	)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusBadGateway, res.StatusCode)

	started := readEvent(t, conn)
	assert.Equal(t, engine.EventChainStarted, started.Type)

	failed := readEvent(t, conn)
	assert.Equal(t, engine.EventChainFailed, failed.Type)
	assert.NotEmpty(t, failed.Error)
}

func TestWebSocketCloseAll(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	conn := dialWebSocket(t, ts.URL)
	env.server.CloseWebSockets()

	require.NoError(t,
		conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
