package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helmetkiosk/internal/dto"
	"helmetkiosk/internal/logger"
)

func newHubServer(t *testing.T, hub *HubService, greeting []byte) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, greeting)
		defer hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func TestHub_GreetingThenBroadcast(t *testing.T) {
	hub := NewHubService(logger.NewDiscard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	greeting, err := Encode(dto.EventState, dto.KioskState{Page: "live", Loop: "stopped"})
	require.NoError(t, err)
	conn := dial(t, newHubServer(t, hub, greeting))

	first := readEvent(t, conn)
	assert.Equal(t, dto.EventState, first["type"])

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hub.Publish(dto.EventPage, dto.PagePayload{Page: "dashboard"}))

	second := readEvent(t, conn)
	assert.Equal(t, dto.EventPage, second["type"])
	assert.Equal(t, map[string]interface{}{"page": "dashboard"}, second["data"])
}

func TestHub_ClientCountFollowsDisconnect(t *testing.T) {
	hub := NewHubService(logger.NewDiscard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newHubServer(t, hub, nil)
	a := dial(t, srv)
	dial(t, srv)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, time.Millisecond)

	a.Close()
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, time.Millisecond)
}

func TestHub_BroadcastAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHubService(logger.NewDiscard())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*4; i++ {
			hub.Broadcast([]byte(`{}`))
		}
		hub.Unregister(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked after shutdown")
	}
}

func TestEncode_Envelope(t *testing.T) {
	message, err := Encode(dto.EventAlert, dto.Alert{Level: dto.AlertError, Message: "Camera unavailable"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"alert","data":{"level":"error","message":"Camera unavailable"}}`, string(message))
}
