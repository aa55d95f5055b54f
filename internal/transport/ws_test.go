package transport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simviewer/internal/logger"
	"simviewer/internal/wire"
)

func TestSocketDecodesStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state_update","components":[{"id":"j1","position":5}]}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{oops`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"base":{"type":"basic_component"}}`))
		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	s := Dial(u.Hostname(), port, new(logger.Logger))
	defer s.Close()

	msg := receive(t, s)
	up, ok := msg.(*wire.StateUpdate)
	require.True(t, ok)
	assert.Equal(t, "j1", up.Components[0].ID)

	// The malformed frame is dropped; the snapshot after it still arrives.
	msg = receive(t, s)
	snap, ok := msg.(wire.Snapshot)
	require.True(t, ok)
	assert.Contains(t, snap, "base")
}

func receive(t *testing.T, s *Socket) any {
	t.Helper()
	select {
	case msg := <-s.Messages:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no message before deadline")
		return nil
	}
}
