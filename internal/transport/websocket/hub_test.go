package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/host"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	s := httptest.NewServer(hub)
	t.Cleanup(s.Close)

	u := "ws" + strings.TrimPrefix(s.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestHubHelloAndSnapshots(t *testing.T) {
	hub := NewHub(Config{Scene: "dodge", Keys: []string{"ArrowLeft"}}, log.Nop())
	conn := dial(t, hub)

	env := readEnvelope(t, conn)
	require.Equal(t, TypeHello, env.Type)
	var hello Hello
	require.NoError(t, json.Unmarshal(env.Payload, &hello))
	assert.Equal(t, "dodge", hello.Scene)
	assert.NotEmpty(t, hello.ClientID)
	waitClients(t, hub, 1)

	o := scene.NewObject(scene.KindObstacle, "rock")
	o.Position = scene.V(1, 0, 4)
	snap := scene.Capture("dodge", 7, 1.5, 2, scene.Camera{FOV: 75}, scene.NewRegistry(o))
	require.NoError(t, hub.Render(context.Background(), snap))

	env = readEnvelope(t, conn)
	require.Equal(t, TypeSnapshot, env.Type)
	var got scene.Snapshot
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.EqualValues(t, 7, got.Frame)
	require.Len(t, got.Objects, 1)
	assert.Equal(t, scene.KindObstacle, got.Objects[0].Kind)
	assert.Equal(t, o.Position, got.Objects[0].Position)

	hub.Notify(context.Background(), loop.CollisionEvent{Frame: 8, Elapsed: 1.5, Hits: 2})
	env = readEnvelope(t, conn)
	require.Equal(t, TypeCollision, env.Type)
	var col Collision
	require.NoError(t, json.Unmarshal(env.Payload, &col))
	assert.Equal(t, 2, col.Hits)
	assert.Equal(t, 1.5, col.Elapsed)
}

func TestLateClientGetsLastSnapshot(t *testing.T) {
	hub := NewHub(Config{Scene: "cube"}, log.Nop())
	snap := scene.Capture("cube", 3, 0, 0, scene.Camera{}, scene.NewRegistry())
	require.NoError(t, hub.Render(context.Background(), snap))

	conn := dial(t, hub)
	assert.Equal(t, TypeHello, readEnvelope(t, conn).Type)
	assert.Equal(t, TypeSnapshot, readEnvelope(t, conn).Type)
}

func TestHubForwardsInput(t *testing.T) {
	hub := NewHub(Config{}, log.Nop())
	conn := dial(t, hub)
	readEnvelope(t, conn)
	in := hub.Inputs()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"t":"bogus"}`)))
	require.NoError(t, conn.WriteJSON(Envelope{Type: TypeKey, Payload: json.RawMessage(`{"key":"ArrowLeft"}`)}))
	require.NoError(t, conn.WriteJSON(Envelope{Type: TypeResize, Payload: json.RawMessage(`{"width":800,"height":600}`)}))

	select {
	case k := <-in.Keys:
		assert.Equal(t, "ArrowLeft", k)
	case <-time.After(2 * time.Second):
		t.Fatal("key never arrived")
	}
	select {
	case sz := <-in.Resizes:
		assert.Equal(t, host.Size{Width: 800, Height: 600}, sz)
	case <-time.After(2 * time.Second):
		t.Fatal("resize never arrived")
	}
}

func TestDecodeInbound(t *testing.T) {
	msg, err := decodeInbound([]byte(`{"t":"key","p":{"key":"ArrowUp"}}`))
	require.NoError(t, err)
	assert.Equal(t, "ArrowUp", msg.key)

	for _, raw := range []string{`nope`, `{"t":"key","p":{}}`, `{"t":"snapshot"}`, `{"t":"resize","p":"x"}`} {
		_, err = decodeInbound([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidMessage, raw)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(Config{}, log.Nop())
	conn := dial(t, hub)
	readEnvelope(t, conn)
	waitClients(t, hub, 1)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())
	assert.ErrorIs(t, hub.Render(context.Background(), scene.Snapshot{}), ErrHubClosed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
