package server

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	srv := New(DefaultConfig(), logger)
	srv.ensureRoutes()
	return httptest.NewServer(srv.mux)
}

func dialWS(t *testing.T, httpServer *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestHealthEndpoint(t *testing.T) {
	httpServer := newTestServer(t)
	defer httpServer.Close()

	resp, err := httpServer.Client().Get(httpServer.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSolveRequestStreamsProgressThenResult(t *testing.T) {
	httpServer := newTestServer(t)
	defer httpServer.Close()

	conn := dialWS(t, httpServer)
	defer conn.Close()

	req := SolveRequestData{
		Board:         "2h 3h 4d 6d 7s",
		HeroRange:     "QQ,KK,AA",
		VillainRange:  "QQ,KK,AA",
		HeroSide:      "ip",
		BetSize:       0.5,
		StackSize:     0.5,
		StartingPot:   1.0,
		MaxIterations: 20,
	}
	msg, err := NewMessage(MessageTypeSolveRequest, req)
	require.NoError(t, err)
	msg.RequestID = "req-1"

	require.NoError(t, conn.WriteJSON(msg))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	sawResult := false
	for !sawResult {
		var resp Message
		require.NoError(t, conn.ReadJSON(&resp))

		switch resp.Type {
		case MessageTypeProgress:
			var p ProgressData
			require.NoError(t, json.Unmarshal(resp.Data, &p))
		case MessageTypeResult:
			var r ResultData
			require.NoError(t, json.Unmarshal(resp.Data, &r))
			assert.NotEmpty(t, r.Variables, "expected non-empty variables in result")
			sawResult = true
		case MessageTypeError:
			var e ErrorData
			_ = json.Unmarshal(resp.Data, &e)
			t.Fatalf("unexpected error frame: %s: %s", e.Code, e.Message)
		}
	}
}

func TestSolveRequestInvalidScenarioReturnsError(t *testing.T) {
	httpServer := newTestServer(t)
	defer httpServer.Close()

	conn := dialWS(t, httpServer)
	defer conn.Close()

	msg, err := NewMessage(MessageTypeSolveRequest, SolveRequestData{})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp Message
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, MessageTypeError, resp.Type, "expected error frame for an empty scenario")
}
