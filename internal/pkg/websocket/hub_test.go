package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeSession(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, session string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + session
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, session string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount(session) == n },
		2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishReachesOnlyTheSession(t *testing.T) {
	hub, srv := startHub(t)
	mine := dial(t, srv, "s1")
	other := dial(t, srv, "s2")
	waitForClients(t, hub, "s1", 1)
	waitForClients(t, hub, "s2", 1)

	hub.Publish("s1", TypeSessionChanged, map[string]string{"kind": "signed_in"})

	require.NoError(t, mine.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := mine.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeSessionChanged, msg.Type)
	assert.Equal(t, "signed_in", msg.Data["kind"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "other sessions receive nothing")
}

func TestHub_ClientUnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "s1")
	waitForClients(t, hub, "s1", 1)

	require.NoError(t, conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, "")))
	conn.Close()
	waitForClients(t, hub, "s1", 0)
}

func TestCheckSameOrigin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://app.test/api/v1/events", nil)
	assert.True(t, checkSameOrigin(r))

	r.Header.Set("Origin", "http://app.test")
	assert.True(t, checkSameOrigin(r))

	r.Header.Set("Origin", "http://evil.test")
	assert.False(t, checkSameOrigin(r))
}
