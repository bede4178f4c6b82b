package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestBroadcastToClients(t *testing.T) {
	hub, srv := startHub(t)

	all := dial(t, srv, "")
	atRisk := dial(t, srv, "?consensus=At%20Risk")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	healthy := models.HistoryEntry{ID: "a", Consensus: models.Healthy, ConsensusConfidence: 75}
	risky := models.HistoryEntry{ID: "b", Consensus: models.AtRisk, ConsensusConfidence: 100}
	require.NoError(t, hub.Consume(context.Background(), healthy))
	require.NoError(t, hub.Consume(context.Background(), risky))

	ev := readEvent(t, all)
	assert.Equal(t, "prediction", ev.Type)
	assert.Equal(t, "a", ev.Entry.ID)
	assert.Equal(t, "b", readEvent(t, all).Entry.ID)

	// the filtered client never sees the healthy entry
	ev = readEvent(t, atRisk)
	assert.Equal(t, "b", ev.Entry.ID)
	assert.Equal(t, models.AtRisk, ev.Entry.Consensus)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRejectsUnknownFilter(t *testing.T) {
	_, srv := startHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?consensus=Sick"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
